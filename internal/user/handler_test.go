// AngelaMos | 2026
// handler_test.go

package user

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/carterperez-dev/invoice-manager/internal/core"
	"github.com/carterperez-dev/invoice-manager/internal/middleware"
)

type tokenTable map[string]*middleware.AccessTokenClaims

func (t tokenTable) VerifyAccessToken(
	_ context.Context,
	token string,
) (*middleware.AccessTokenClaims, error) {
	if c, ok := t[token]; ok {
		return c, nil
	}
	return nil, core.ErrTokenInvalid
}

var testTokens = tokenTable{
	"admin":  {UserID: "u-admin", Email: "admin@company.com", Role: RoleAdmin},
	"viewer": {UserID: "u-viewer", Email: "viewer@company.com", Role: RoleViewer},
}

func newTestRouter(t *testing.T) (http.Handler, *memRepo, *fakeRevoker) {
	t.Helper()
	svc, repo, revoker := newTestService(seedUsers()...)

	r := chi.NewRouter()
	r.Route("/api", func(r chi.Router) {
		NewHandler(svc).RegisterRoutes(r, middleware.Authenticator(testTokens))
	})
	return r, repo, revoker
}

func call(h http.Handler, method, path, token, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.AddCookie(&http.Cookie{Name: middleware.AccessTokenCookie, Value: token})
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

type envelope struct {
	Success bool            `json:"success"`
	Data    json.RawMessage `json:"data"`
	Error   string          `json:"error"`
	Message string          `json:"message"`
	Meta    *core.Meta      `json:"meta"`
}

func decode(t *testing.T, rec *httptest.ResponseRecorder) envelope {
	t.Helper()
	var env envelope
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &env))
	return env
}

func TestHandler_Access(t *testing.T) {
	r, _, _ := newTestRouter(t)

	tests := []struct {
		name   string
		method string
		path   string
		token  string
		body   string
		want   int
	}{
		{"list anonymous", http.MethodGet, "/api/users", "", "", http.StatusUnauthorized},
		{"list viewer", http.MethodGet, "/api/users", "viewer", "", http.StatusForbidden},
		{"list admin", http.MethodGet, "/api/users", "admin", "", http.StatusOK},
		{"get viewer", http.MethodGet, "/api/users/u-admin", "viewer", "", http.StatusOK},
		{"get missing", http.MethodGet, "/api/users/nope", "viewer", "", http.StatusNotFound},
		{"create viewer", http.MethodPost, "/api/users", "viewer", `{}`, http.StatusForbidden},
		{"update viewer", http.MethodPut, "/api/users/u-viewer", "viewer", `{"name":"x"}`, http.StatusForbidden},
		{"delete viewer", http.MethodDelete, "/api/users/u-acct", "viewer", "", http.StatusForbidden},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := call(r, tt.method, tt.path, tt.token, tt.body)
			assert.Equal(t, tt.want, rec.Code, rec.Body.String())
			assert.Equal(t, tt.want < 400, decode(t, rec).Success)
		})
	}
}

func TestHandler_CreateUser(t *testing.T) {
	r, _, _ := newTestRouter(t)

	rec := call(r, http.MethodPost, "/api/users", "admin",
		`{"email":"new@company.com","name":"New","password":"secret1","role":"Viewer"}`)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	env := decode(t, rec)
	assert.Equal(t, "User created successfully", env.Message)
	var created UserResponse
	require.NoError(t, json.Unmarshal(env.Data, &created))
	assert.Equal(t, "new@company.com", created.Email)
	assert.True(t, created.IsActive)
	assert.NotContains(t, rec.Body.String(), "password")

	rec = call(r, http.MethodPost, "/api/users", "admin",
		`{"email":"new@company.com","name":"Again","password":"secret1","role":"Viewer"}`)
	assert.Equal(t, http.StatusConflict, rec.Code)

	rec = call(r, http.MethodPost, "/api/users", "admin",
		`{"email":"bad","name":"","password":"123","role":"Owner"}`)
	require.Equal(t, http.StatusBadRequest, rec.Code)
	msg := decode(t, rec).Message
	assert.Contains(t, msg, "email must be a valid email address")
	assert.Contains(t, msg, "password must be at least 6 characters long")
	assert.Contains(t, msg, "role must be one of: Admin, Accountant, Viewer")

	rec = call(r, http.MethodPost, "/api/users", "admin", `{not json`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestHandler_UpdateUser(t *testing.T) {
	r, repo, revoker := newTestRouter(t)

	rec := call(r, http.MethodPut, "/api/users/u-viewer", "admin", `{}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = call(r, http.MethodPut, "/api/users/u-viewer", "admin", `{"role":"SuperUser"}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Zero(t, repo.updates)

	rec = call(r, http.MethodPut, "/api/users/u-viewer", "admin", `{"email":"admin@company.com"}`)
	assert.Equal(t, http.StatusConflict, rec.Code)

	rec = call(r, http.MethodPut, "/api/users/u-viewer", "admin", `{"is_active":false,"name":"Mike V"}`)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	env := decode(t, rec)
	assert.Equal(t, "User updated successfully", env.Message)
	var updated UserResponse
	require.NoError(t, json.Unmarshal(env.Data, &updated))
	assert.False(t, updated.IsActive)
	assert.Equal(t, "Mike V", updated.Name)
	assert.Equal(t, []string{"u-viewer"}, revoker.calls())

	rec = call(r, http.MethodPut, "/api/users/nope", "admin", `{"name":"x"}`)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestHandler_DeleteUser(t *testing.T) {
	r, _, _ := newTestRouter(t)

	rec := call(r, http.MethodDelete, "/api/users/u-admin", "admin", "")
	assert.Equal(t, http.StatusForbidden, rec.Code)

	rec = call(r, http.MethodDelete, "/api/users/u-viewer", "admin", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "User deleted successfully", decode(t, rec).Message)

	rec = call(r, http.MethodGet, "/api/users/u-viewer", "admin", "")
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = call(r, http.MethodDelete, "/api/users/u-viewer", "admin", "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestHandler_ListUsers(t *testing.T) {
	r, _, _ := newTestRouter(t)
	require.Equal(t, http.StatusOK,
		call(r, http.MethodDelete, "/api/users/u-acct", "admin", "").Code)

	rec := call(r, http.MethodGet, "/api/users?page_size=1", "admin", "")
	require.Equal(t, http.StatusOK, rec.Code)
	env := decode(t, rec)
	require.NotNil(t, env.Meta)
	assert.Equal(t, 2, env.Meta.Total)
	assert.Equal(t, 2, env.Meta.TotalPages)
	assert.Equal(t, 1, env.Meta.PageSize)

	rec = call(r, http.MethodGet, "/api/users?includeDeleted=true", "admin", "")
	assert.Equal(t, 3, decode(t, rec).Meta.Total)

	rec = call(r, http.MethodGet, "/api/users?include_deleted=1&role=Accountant", "admin", "")
	env = decode(t, rec)
	var users []UserResponse
	require.NoError(t, json.Unmarshal(env.Data, &users))
	require.Len(t, users, 1)
	assert.NotNil(t, users[0].DeletedAt)

	rec = call(r, http.MethodGet, "/api/users?search=sarah", "admin", "")
	assert.Equal(t, 0, decode(t, rec).Meta.Total)

	rec = call(r, http.MethodGet, "/api/users?role=root", "admin", "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}
