package httpapi

import (
	"net/http"
	"strings"

	"zonegrid.org/internal/audit"
	"zonegrid.org/internal/auth"
)

type createUserRequest struct {
	Email string `json:"email"`
	Role  string `json:"role"`
	Zone  string `json:"zone,omitempty"`
}

type updateUserRequest struct {
	Email string  `json:"email"`
	Role  *string `json:"role,omitempty"`
	Zone  *string `json:"zone,omitempty"`
}

func (a *API) handleUsers(w http.ResponseWriter, r *http.Request) {
	// User management is super_admin territory regardless of the permission
	// table; the role predicate layers on top of the resource grant.
	claims, err := requireAccess(r.Context(), auth.ResourceUsers, requiredUserAction(r.Method))
	if err != nil {
		handleDomainError(w, r, err)
		return
	}
	if err := auth.RequireRole(claims, auth.RoleSuperAdmin); err != nil {
		handleDomainError(w, r, err)
		return
	}

	switch r.Method {
	case http.MethodPost:
		a.createUser(w, r)
	case http.MethodPut:
		a.updateUser(w, r)
	case http.MethodGet:
		a.listUsers(w, r)
	default:
		methodNotAllowed(w, r, http.MethodPost, http.MethodPut, http.MethodGet)
	}
}

func requiredUserAction(method string) string {
	if method == http.MethodGet {
		return auth.ActionRead
	}
	return auth.ActionWrite
}

func (a *API) createUser(w http.ResponseWriter, r *http.Request) {
	var req createUserRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, r, http.StatusBadRequest, "VALIDATION_ERROR", err.Error())
		return
	}

	acct, err := a.users.Create(r.Context(), req.Email, auth.Role(strings.TrimSpace(req.Role)), strings.TrimSpace(req.Zone))
	if err != nil {
		handleDomainError(w, r, err)
		return
	}

	_ = audit.LogEvent(r.Context(), "users.create", map[string]any{
		"email": acct.Email,
		"role":  string(acct.Role),
	})

	writeJSON(w, http.StatusCreated, acct)
}

func (a *API) updateUser(w http.ResponseWriter, r *http.Request) {
	var req updateUserRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, r, http.StatusBadRequest, "VALIDATION_ERROR", err.Error())
		return
	}
	if req.Role == nil && req.Zone == nil {
		writeError(w, r, http.StatusBadRequest, "VALIDATION_ERROR", "role or zone is required")
		return
	}

	var role *auth.Role
	if req.Role != nil {
		v := auth.Role(strings.TrimSpace(*req.Role))
		role = &v
	}

	acct, err := a.users.Update(r.Context(), req.Email, role, req.Zone)
	if err != nil {
		handleDomainError(w, r, err)
		return
	}

	_ = audit.LogEvent(r.Context(), "users.update", map[string]any{
		"email": acct.Email,
		"role":  string(acct.Role),
	})

	writeJSON(w, http.StatusOK, acct)
}

func (a *API) listUsers(w http.ResponseWriter, r *http.Request) {
	accounts, err := a.users.List(r.Context())
	if err != nil {
		handleDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"users": accounts})
}
