package users

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"zonegrid.org/internal/auth"
	"zonegrid.org/internal/docstore/mem"
)

func TestCreateAndList(t *testing.T) {
	dir := NewDirectory(mem.New())
	ctx := context.Background()

	acct, err := dir.Create(ctx, "Alice@Example.com", auth.RoleZoneAdmin, "GSEZ")
	require.NoError(t, err)
	assert.Equal(t, "alice@example.com", acct.Email, "email stored lowercased")
	assert.Equal(t, auth.RoleZoneAdmin, acct.Role)
	assert.Equal(t, "GSEZ", acct.Zone)
	assert.False(t, acct.CreatedDate.IsZero())
	assert.Equal(t, acct.CreatedDate, acct.LastModified)

	_, err = dir.Create(ctx, "bob@example.com", auth.RoleNormalUser, "")
	require.NoError(t, err)

	all, err := dir.List(ctx)
	require.NoError(t, err)
	require.Len(t, all, 2)
	assert.Equal(t, "alice@example.com", all[0].Email, "accounts list in email order")
	assert.Equal(t, "bob@example.com", all[1].Email)
}

func TestCreateDuplicateFails(t *testing.T) {
	dir := NewDirectory(mem.New())
	ctx := context.Background()

	_, err := dir.Create(ctx, "alice@example.com", auth.RoleNormalUser, "")
	require.NoError(t, err)

	_, err = dir.Create(ctx, "ALICE@example.com", auth.RoleSuperAdmin, "")
	assert.ErrorIs(t, err, ErrUserExists)
}

func TestCreateValidation(t *testing.T) {
	dir := NewDirectory(mem.New())
	ctx := context.Background()

	_, err := dir.Create(ctx, "not-an-email", auth.RoleNormalUser, "")
	assert.ErrorIs(t, err, ErrInvalidEmail)

	_, err = dir.Create(ctx, "alice@example.com", auth.Role("owner"), "")
	assert.ErrorIs(t, err, auth.ErrInvalidRole)
}

func TestUpdate(t *testing.T) {
	dir := NewDirectory(mem.New())
	ctx := context.Background()

	created, err := dir.Create(ctx, "alice@example.com", auth.RoleNormalUser, "")
	require.NoError(t, err)

	role := auth.RoleZoneAdmin
	zone := "GDIZ"
	updated, err := dir.Update(ctx, "alice@example.com", &role, &zone)
	require.NoError(t, err)
	assert.Equal(t, auth.RoleZoneAdmin, updated.Role)
	assert.Equal(t, "GDIZ", updated.Zone)
	assert.Equal(t, created.CreatedDate, updated.CreatedDate, "creation time is immutable")

	// Role-only update keeps the zone.
	role2 := auth.RoleSuperAdmin
	updated, err = dir.Update(ctx, "alice@example.com", &role2, nil)
	require.NoError(t, err)
	assert.Equal(t, auth.RoleSuperAdmin, updated.Role)
	assert.Equal(t, "GDIZ", updated.Zone)
}

func TestUpdateErrors(t *testing.T) {
	dir := NewDirectory(mem.New())
	ctx := context.Background()

	role := auth.RoleNormalUser
	_, err := dir.Update(ctx, "ghost@example.com", &role, nil)
	assert.ErrorIs(t, err, ErrUserNotFound)

	_, err = dir.Create(ctx, "alice@example.com", auth.RoleNormalUser, "")
	require.NoError(t, err)

	_, err = dir.Update(ctx, "alice@example.com", nil, nil)
	assert.Error(t, err, "empty update must fail")

	bad := auth.Role("owner")
	_, err = dir.Update(ctx, "alice@example.com", &bad, nil)
	assert.ErrorIs(t, err, auth.ErrInvalidRole)
}
