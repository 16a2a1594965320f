// AngelaMos | 2026
// auth.go

package middleware

import (
	"context"
	"errors"
	"net/http"
	"slices"
	"strings"

	"github.com/carterperez-dev/invoice-manager/internal/core"
)

const (
	AccessTokenCookie = "accessToken"

	adminRole = "Admin"
)

type TokenVerifier interface {
	VerifyAccessToken(
		ctx context.Context,
		token string,
	) (*AccessTokenClaims, error)
}

// AccessTokenClaims is what handlers see of a verified access token.
type AccessTokenClaims struct {
	UserID    string
	Email     string
	Role      string
	TokenID   string
	ExpiresAt int64
}

// Authenticator rejects the request with 401 unless it carries a valid
// access token.
func Authenticator(verifier TokenVerifier) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			claims, err := authenticate(r, verifier)
			if err != nil {
				writeAuthError(w, err)
				return
			}
			next.ServeHTTP(w, r.WithContext(withClaims(r.Context(), claims)))
		})
	}
}

// OptionalAuth attaches claims when a valid token is present and lets the
// request through either way.
func OptionalAuth(verifier TokenVerifier) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if claims, err := authenticate(r, verifier); err == nil {
				r = r.WithContext(withClaims(r.Context(), claims))
			}
			next.ServeHTTP(w, r)
		})
	}
}

var errNoToken = errors.New("no access token")

func authenticate(r *http.Request, verifier TokenVerifier) (*AccessTokenClaims, error) {
	token := ExtractToken(r)
	if token == "" {
		return nil, errNoToken
	}
	return verifier.VerifyAccessToken(r.Context(), token)
}

func writeAuthError(w http.ResponseWriter, err error) {
	var appErr *core.AppError
	switch {
	case errors.Is(err, errNoToken):
		appErr = core.UnauthorizedError("authentication required")
	case errors.As(err, &appErr):
	case errors.Is(err, core.ErrTokenExpired):
		appErr = core.TokenExpiredError()
	case errors.Is(err, core.ErrTokenRevoked):
		appErr = core.TokenRevokedError()
	default:
		appErr = core.TokenInvalidError()
	}
	core.JSONError(w, appErr)
}

// RequireRole must run after Authenticator. A request without claims gets
// 401, a role outside the list gets 403.
func RequireRole(roles ...string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			claims := GetClaims(r.Context())
			switch {
			case claims == nil:
				core.JSONError(w, core.UnauthorizedError("authentication required"))
			case !slices.Contains(roles, claims.Role):
				core.JSONError(w, core.ForbiddenError("insufficient permissions"))
			default:
				next.ServeHTTP(w, r)
			}
		})
	}
}

func RequireAdmin(next http.Handler) http.Handler {
	return RequireRole(adminRole)(next)
}

// ExtractToken prefers an Authorization: Bearer header, which the CLI and
// scripts use, over the accessToken cookie the browser sends.
func ExtractToken(r *http.Request) string {
	scheme, token, ok := strings.Cut(r.Header.Get("Authorization"), " ")
	if ok && strings.EqualFold(scheme, "bearer") {
		if token = strings.TrimSpace(token); token != "" {
			return token
		}
	}

	if c, err := r.Cookie(AccessTokenCookie); err == nil {
		return c.Value
	}
	return ""
}

func withClaims(ctx context.Context, claims *AccessTokenClaims) context.Context {
	return context.WithValue(ctx, claimsKey, claims)
}

func GetClaims(ctx context.Context) *AccessTokenClaims {
	claims, _ := ctx.Value(claimsKey).(*AccessTokenClaims)
	return claims
}

func GetUserID(ctx context.Context) string {
	if c := GetClaims(ctx); c != nil {
		return c.UserID
	}
	return ""
}

func GetUserRole(ctx context.Context) string {
	if c := GetClaims(ctx); c != nil {
		return c.Role
	}
	return ""
}

func IsAuthenticated(ctx context.Context) bool {
	return GetUserID(ctx) != ""
}

func IsAdmin(ctx context.Context) bool {
	return GetUserRole(ctx) == adminRole
}
