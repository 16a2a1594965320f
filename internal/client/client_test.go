// AngelaMos | 2026
// client_test.go

package client

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/carterperez-dev/invoice-manager/internal/auth"
	"github.com/carterperez-dev/invoice-manager/internal/core"
	"github.com/carterperez-dev/invoice-manager/internal/invoice"
)

// fakeAPI mimics the cookie session of the real server: login sets both
// cookies, refresh swaps the access cookie, resources demand the current one.
type fakeAPI struct {
	mu            sync.Mutex
	validAccess   string
	refreshOK     bool
	refreshCalls  int
	resourceCalls int
}

func (f *fakeAPI) setCookie(w http.ResponseWriter, name, value string) {
	http.SetCookie(w, &http.Cookie{Name: name, Value: value, Path: "/", HttpOnly: true})
}

func (f *fakeAPI) authorized(r *http.Request) bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.resourceCalls++
	c, err := r.Cookie("accessToken")
	return err == nil && c.Value == f.validAccess
}

func (f *fakeAPI) router() http.Handler {
	r := chi.NewRouter()

	r.Post("/api/auth/login", func(w http.ResponseWriter, r *http.Request) {
		var req auth.LoginRequest
		_ = json.NewDecoder(r.Body).Decode(&req)
		if req.Password != "password123" {
			core.Unauthorized(w, "Invalid email or password")
			return
		}
		f.mu.Lock()
		f.validAccess = "access-1"
		f.mu.Unlock()
		f.setCookie(w, "accessToken", "access-1")
		f.setCookie(w, "refreshToken", "refresh-1")
		core.OKWithMessage(w, auth.AuthResponse{
			User: auth.UserResponse{ID: "u-1", Email: req.Email, Role: "Admin"},
		}, "Login successful")
	})

	r.Post("/api/auth/refresh", func(w http.ResponseWriter, r *http.Request) {
		f.mu.Lock()
		defer f.mu.Unlock()
		f.refreshCalls++
		c, err := r.Cookie("refreshToken")
		if err != nil || c.Value != "refresh-1" || !f.refreshOK {
			core.JSONError(w, core.TokenInvalidError())
			return
		}
		f.validAccess = "access-2"
		f.setCookie(w, "accessToken", "access-2")
		core.OKWithMessage(w, nil, "Token refreshed successfully")
	})

	r.Get("/api/invoices", func(w http.ResponseWriter, r *http.Request) {
		if !f.authorized(r) {
			core.Unauthorized(w, "authentication required")
			return
		}
		core.Paginated(w, []invoice.InvoiceResponse{{ID: "INV-001", CustomerName: "John Smith"}}, 1, 20, 1)
	})

	r.Get("/api/invoices/export", func(w http.ResponseWriter, r *http.Request) {
		if !f.authorized(r) {
			core.Unauthorized(w, "authentication required")
			return
		}
		w.Header().Set("Content-Type", "text/csv")
		_, _ = w.Write([]byte("Invoice ID\nINV-001\n"))
	})

	r.Get("/api/users", func(w http.ResponseWriter, r *http.Request) {
		if !f.authorized(r) {
			core.Unauthorized(w, "authentication required")
			return
		}
		core.Forbidden(w, "admin access required")
	})

	return r
}

func newTestClient(t *testing.T, api *fakeAPI) *Client {
	t.Helper()
	srv := httptest.NewServer(api.router())
	t.Cleanup(srv.Close)

	c, err := New(srv.URL)
	require.NoError(t, err)
	return c
}

func (f *fakeAPI) expireAccess() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.validAccess = "rotated"
}

func TestLoginAndList(t *testing.T) {
	api := &fakeAPI{}
	c := newTestClient(t, api)

	u, err := c.Login(t.Context(), "admin@company.com", "password123")
	require.NoError(t, err)
	assert.Equal(t, "Admin", u.Role)

	page, err := c.ListInvoices(t.Context(), ListOptions{Status: "Paid"})
	require.NoError(t, err)
	require.Len(t, page.Items, 1)
	assert.Equal(t, "INV-001", page.Items[0].ID)
	assert.Equal(t, 1, page.Meta.Total)
	assert.Zero(t, api.refreshCalls)
}

func TestLoginFailureDoesNotRefresh(t *testing.T) {
	api := &fakeAPI{refreshOK: true}
	c := newTestClient(t, api)

	_, err := c.Login(t.Context(), "admin@company.com", "nope")
	require.Error(t, err)
	assert.Equal(t, http.StatusUnauthorized, StatusCode(err))
	assert.Contains(t, err.Error(), "Invalid email or password")
	assert.Zero(t, api.refreshCalls)
}

func TestRefreshAndRetryOnce(t *testing.T) {
	api := &fakeAPI{refreshOK: true}
	c := newTestClient(t, api)

	_, err := c.Login(t.Context(), "admin@company.com", "password123")
	require.NoError(t, err)
	api.expireAccess()

	page, err := c.ListInvoices(t.Context(), ListOptions{})
	require.NoError(t, err)
	assert.Len(t, page.Items, 1)
	assert.Equal(t, 1, api.refreshCalls)
	assert.Equal(t, 2, api.resourceCalls)
}

func TestRefreshFailureExpiresSession(t *testing.T) {
	api := &fakeAPI{refreshOK: false}
	c := newTestClient(t, api)

	_, err := c.Login(t.Context(), "admin@company.com", "password123")
	require.NoError(t, err)
	api.expireAccess()

	_, err = c.ListInvoices(t.Context(), ListOptions{})
	require.ErrorIs(t, err, ErrSessionExpired)
	assert.Equal(t, 1, api.refreshCalls)
	assert.Equal(t, 1, api.resourceCalls)
}

func TestExportRefreshes(t *testing.T) {
	api := &fakeAPI{refreshOK: true}
	c := newTestClient(t, api)

	_, err := c.Login(t.Context(), "admin@company.com", "password123")
	require.NoError(t, err)
	api.expireAccess()

	body, err := c.Export(t.Context(), "csv", ListOptions{Page: 4})
	require.NoError(t, err)
	assert.Contains(t, string(body), "INV-001")
	assert.Equal(t, 1, api.refreshCalls)
}

func TestForbiddenIsAPIError(t *testing.T) {
	api := &fakeAPI{refreshOK: true}
	c := newTestClient(t, api)

	_, err := c.Login(t.Context(), "viewer@company.com", "password123")
	require.NoError(t, err)

	_, err = c.ListUsers(t.Context(), ListOptions{})
	require.Error(t, err)

	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, http.StatusForbidden, apiErr.StatusCode)
	assert.Equal(t, "FORBIDDEN", apiErr.Code)
	assert.Equal(t, "admin access required", apiErr.Message)
	assert.Zero(t, api.refreshCalls)
}
