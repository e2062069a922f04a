// Package users manages the admin-access accounts keyed by email. Accounts
// carry the role and zone the token endpoint hands out; write access is
// restricted to super admins at the HTTP gate.
package users

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"zonegrid.org/internal/auth"
	"zonegrid.org/internal/docstore"
)

const userCollection = "admin-access"

var (
	ErrUserExists   = errors.New("users: user already exists")
	ErrUserNotFound = errors.New("users: user not found")
	ErrInvalidEmail = errors.New("users: invalid email")
)

// Account is one admin-access record.
type Account struct {
	Email        string    `json:"email"`
	Role         auth.Role `json:"role"`
	Zone         string    `json:"zone,omitempty"`
	CreatedDate  time.Time `json:"createdDate"`
	LastModified time.Time `json:"lastModified"`
}

// Directory stores and lists accounts.
type Directory struct {
	accounts docstore.Collection
	now      func() time.Time
}

// NewDirectory builds a directory over the given store.
func NewDirectory(store docstore.Store) *Directory {
	return &Directory{accounts: store.Collection(userCollection), now: time.Now}
}

// Create stores a new account. The email is the document key; a duplicate
// fails with ErrUserExists.
func (d *Directory) Create(ctx context.Context, email string, role auth.Role, zone string) (Account, error) {
	email, err := normalizeEmail(email)
	if err != nil {
		return Account{}, err
	}
	if !auth.ValidRole(role) {
		return Account{}, fmt.Errorf("%w: %s", auth.ErrInvalidRole, role)
	}

	if _, err := d.accounts.Get(ctx, email); err == nil {
		return Account{}, fmt.Errorf("%w: %s", ErrUserExists, email)
	} else if !errors.Is(err, docstore.ErrNotFound) {
		return Account{}, err
	}

	now := d.now().UTC()
	acct := Account{Email: email, Role: role, Zone: zone, CreatedDate: now, LastModified: now}
	if err := d.accounts.Put(ctx, email, accountFields(acct)); err != nil {
		return Account{}, err
	}
	return acct, nil
}

// Update changes the role and/or zone of an existing account. At least one
// field must be supplied; nil leaves the field untouched.
func (d *Directory) Update(ctx context.Context, email string, role *auth.Role, zone *string) (Account, error) {
	email, err := normalizeEmail(email)
	if err != nil {
		return Account{}, err
	}
	if role == nil && zone == nil {
		return Account{}, errors.New("users: nothing to update")
	}
	if role != nil && !auth.ValidRole(*role) {
		return Account{}, fmt.Errorf("%w: %s", auth.ErrInvalidRole, *role)
	}

	update := map[string]any{"lastModified": d.now().UTC().Format(time.RFC3339)}
	if role != nil {
		update["role"] = string(*role)
	}
	if zone != nil {
		update["zone"] = *zone
	}
	if err := d.accounts.Update(ctx, email, update); err != nil {
		if errors.Is(err, docstore.ErrNotFound) {
			return Account{}, fmt.Errorf("%w: %s", ErrUserNotFound, email)
		}
		return Account{}, err
	}

	doc, err := d.accounts.Get(ctx, email)
	if err != nil {
		return Account{}, err
	}
	return accountFromFields(doc), nil
}

// List returns every account in key (email) order.
func (d *Directory) List(ctx context.Context) ([]Account, error) {
	docs, err := d.accounts.Query().Documents(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]Account, 0, len(docs))
	for _, doc := range docs {
		out = append(out, accountFromFields(doc))
	}
	return out, nil
}

func normalizeEmail(email string) (string, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	at := strings.Index(email, "@")
	if at < 1 || at == len(email)-1 || !strings.Contains(email[at:], ".") {
		return "", fmt.Errorf("%w: %q", ErrInvalidEmail, email)
	}
	return email, nil
}

func accountFields(acct Account) map[string]any {
	fields := map[string]any{
		"email":        acct.Email,
		"role":         string(acct.Role),
		"createdDate":  acct.CreatedDate.Format(time.RFC3339),
		"lastModified": acct.LastModified.Format(time.RFC3339),
	}
	if acct.Zone != "" {
		fields["zone"] = acct.Zone
	}
	return fields
}

func accountFromFields(doc docstore.Document) Account {
	acct := Account{
		Email: stringField(doc.Fields, "email"),
		Role:  auth.Role(stringField(doc.Fields, "role")),
		Zone:  stringField(doc.Fields, "zone"),
	}
	if acct.Email == "" {
		acct.Email = doc.Key
	}
	if ts := stringField(doc.Fields, "createdDate"); ts != "" {
		if parsed, err := time.Parse(time.RFC3339, ts); err == nil {
			acct.CreatedDate = parsed
		}
	}
	if ts := stringField(doc.Fields, "lastModified"); ts != "" {
		if parsed, err := time.Parse(time.RFC3339, ts); err == nil {
			acct.LastModified = parsed
		}
	}
	return acct
}

func stringField(fields map[string]any, name string) string {
	if v, ok := fields[name].(string); ok {
		return v
	}
	return ""
}
