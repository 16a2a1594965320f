// AngelaMos | 2026
// service_test.go

package user

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/carterperez-dev/invoice-manager/internal/core"
)

func newTestService(users ...User) (*Service, *memRepo, *fakeRevoker) {
	repo := newMemRepo(users...)
	revoker := &fakeRevoker{}
	return NewService(repo, revoker), repo, revoker
}

func ptr[T any](v T) *T { return &v }

func TestService_CreateUser(t *testing.T) {
	svc, repo, _ := newTestService(seedUsers()...)

	u, err := svc.CreateUser(t.Context(), CreateUserRequest{
		Email:    "  New.Person@Company.com ",
		Name:     "New Person",
		Password: "secret1",
		Role:     RoleAccountant,
	})
	require.NoError(t, err)
	assert.Equal(t, "new.person@company.com", u.Email)
	assert.True(t, u.IsActive)
	assert.NotEqual(t, "secret1", u.PasswordHash)

	ok, err := core.VerifyPassword("secret1", repo.users[u.ID].PasswordHash)
	require.NoError(t, err)
	assert.True(t, ok)

	_, err = svc.CreateUser(t.Context(), CreateUserRequest{
		Email: "ADMIN@company.com", Name: "Dup", Password: "secret1", Role: RoleViewer,
	})
	assert.ErrorIs(t, err, core.ErrDuplicateKey)

	_, err = svc.CreateUser(t.Context(), CreateUserRequest{
		Email: "x@company.com", Name: "X", Password: "secret1", Role: "Owner",
	})
	appErr, ok := core.AsAppError(err)
	require.True(t, ok)
	assert.Equal(t, http.StatusBadRequest, appErr.StatusCode)
}

func TestService_GetByEmailExcludesDeleted(t *testing.T) {
	svc, _, _ := newTestService(seedUsers()...)

	info, err := svc.GetByEmail(t.Context(), "Viewer@Company.com")
	require.NoError(t, err)
	assert.Equal(t, "u-viewer", info.ID)
	assert.True(t, info.IsActive)

	require.NoError(t, svc.DeleteUser(t.Context(), "u-admin", "u-viewer"))

	_, err = svc.GetByEmail(t.Context(), "viewer@company.com")
	assert.ErrorIs(t, err, core.ErrNotFound)
	_, err = svc.GetByID(t.Context(), "u-viewer")
	assert.ErrorIs(t, err, core.ErrNotFound)
}

func TestService_UpdateUser(t *testing.T) {
	t.Run("empty body", func(t *testing.T) {
		svc, repo, _ := newTestService(seedUsers()...)
		_, err := svc.UpdateUser(t.Context(), "u-viewer", UpdateUserRequest{})
		appErr, ok := core.AsAppError(err)
		require.True(t, ok)
		assert.Equal(t, http.StatusBadRequest, appErr.StatusCode)
		assert.Zero(t, repo.updates)
	})

	t.Run("invalid role leaves store untouched", func(t *testing.T) {
		svc, repo, _ := newTestService(seedUsers()...)
		_, err := svc.UpdateUser(t.Context(), "u-viewer", UpdateUserRequest{Role: ptr("Owner")})
		appErr, ok := core.AsAppError(err)
		require.True(t, ok)
		assert.Equal(t, http.StatusBadRequest, appErr.StatusCode)
		assert.Zero(t, repo.updates)
		assert.Equal(t, RoleViewer, repo.users["u-viewer"].Role)
	})

	t.Run("role change", func(t *testing.T) {
		svc, _, revoker := newTestService(seedUsers()...)
		u, err := svc.UpdateUser(t.Context(), "u-viewer", UpdateUserRequest{Role: ptr(RoleAccountant)})
		require.NoError(t, err)
		assert.Equal(t, RoleAccountant, u.Role)
		assert.Empty(t, revoker.calls())
	})

	t.Run("email taken", func(t *testing.T) {
		svc, _, _ := newTestService(seedUsers()...)
		_, err := svc.UpdateUser(t.Context(), "u-viewer", UpdateUserRequest{Email: ptr("admin@company.com")})
		assert.ErrorIs(t, err, core.ErrDuplicateKey)
	})

	t.Run("same email is not a conflict", func(t *testing.T) {
		svc, _, _ := newTestService(seedUsers()...)
		_, err := svc.UpdateUser(t.Context(), "u-viewer", UpdateUserRequest{Email: ptr("VIEWER@company.com")})
		require.NoError(t, err)
	})

	t.Run("deactivation revokes sessions", func(t *testing.T) {
		svc, _, revoker := newTestService(seedUsers()...)
		u, err := svc.UpdateUser(t.Context(), "u-viewer", UpdateUserRequest{IsActive: ptr(false)})
		require.NoError(t, err)
		assert.False(t, u.IsActive)
		assert.Equal(t, []string{"u-viewer"}, revoker.calls())
	})

	t.Run("password change revokes sessions", func(t *testing.T) {
		svc, repo, revoker := newTestService(seedUsers()...)
		_, err := svc.UpdateUser(t.Context(), "u-acct", UpdateUserRequest{Password: ptr("newpass")})
		require.NoError(t, err)
		assert.Equal(t, []string{"u-acct"}, revoker.calls())

		ok, err := core.VerifyPassword("newpass", repo.users["u-acct"].PasswordHash)
		require.NoError(t, err)
		assert.True(t, ok)
	})

	t.Run("missing user", func(t *testing.T) {
		svc, _, _ := newTestService(seedUsers()...)
		_, err := svc.UpdateUser(t.Context(), "nope", UpdateUserRequest{Name: ptr("x")})
		assert.ErrorIs(t, err, core.ErrNotFound)
	})
}

func TestService_DeleteUser(t *testing.T) {
	svc, repo, revoker := newTestService(seedUsers()...)

	err := svc.DeleteUser(t.Context(), "u-admin", "u-admin")
	appErr, ok := core.AsAppError(err)
	require.True(t, ok)
	assert.Equal(t, http.StatusForbidden, appErr.StatusCode)
	assert.Nil(t, repo.users["u-admin"].DeletedAt)

	require.NoError(t, svc.DeleteUser(t.Context(), "u-admin", "u-acct"))
	assert.NotNil(t, repo.users["u-acct"].DeletedAt)
	assert.Equal(t, []string{"u-acct"}, revoker.calls())

	assert.ErrorIs(t, svc.DeleteUser(t.Context(), "u-admin", "u-acct"), core.ErrNotFound)
}

func TestService_ListUsers(t *testing.T) {
	svc, _, _ := newTestService(seedUsers()...)
	require.NoError(t, svc.DeleteUser(t.Context(), "u-admin", "u-viewer"))

	users, total, err := svc.ListUsers(t.Context(), ListUsersParams{})
	require.NoError(t, err)
	assert.Equal(t, 2, total)
	assert.Len(t, users, 2)

	_, total, err = svc.ListUsers(t.Context(), ListUsersParams{IncludeDeleted: true})
	require.NoError(t, err)
	assert.Equal(t, 3, total)

	users, _, err = svc.ListUsers(t.Context(), ListUsersParams{Role: RoleAdmin})
	require.NoError(t, err)
	require.Len(t, users, 1)
	assert.Equal(t, "u-admin", users[0].ID)

	_, _, err = svc.ListUsers(t.Context(), ListUsersParams{Role: "admin"})
	assert.True(t, core.IsAppError(err))
}

func TestService_SeedDefaultUsers(t *testing.T) {
	svc, repo, _ := newTestService()

	n, err := svc.SeedDefaultUsers(t.Context())
	require.NoError(t, err)
	assert.Equal(t, 3, n)

	admin, err := repo.GetByEmail(t.Context(), "admin@company.com")
	require.NoError(t, err)
	assert.Equal(t, RoleAdmin, admin.Role)
	assert.Equal(t, "John Admin", admin.Name)
	ok, err := core.VerifyPassword(DefaultSeedPassword, admin.PasswordHash)
	require.NoError(t, err)
	assert.True(t, ok)

	n, err = svc.SeedDefaultUsers(t.Context())
	require.NoError(t, err)
	assert.Zero(t, n)
}

func TestUpdateUserRequest_IsEmpty(t *testing.T) {
	assert.True(t, UpdateUserRequest{}.IsEmpty())
	assert.False(t, UpdateUserRequest{IsActive: ptr(false)}.IsEmpty())
	assert.False(t, UpdateUserRequest{Name: ptr("")}.IsEmpty())
}
