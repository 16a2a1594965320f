// AngelaMos | 2026
// cookies.go

package auth

import (
	"net/http"
	"time"

	"github.com/carterperez-dev/invoice-manager/internal/config"
	"github.com/carterperez-dev/invoice-manager/internal/middleware"
)

const RefreshTokenCookie = "refreshToken"

// CookieWriter sets and clears the httpOnly token cookies.
type CookieWriter struct {
	domain     string
	secure     bool
	sameSite   http.SameSite
	accessTTL  time.Duration
	refreshTTL time.Duration
}

func NewCookieWriter(cfg config.CookieConfig, jwtCfg config.JWTConfig) *CookieWriter {
	return &CookieWriter{
		domain:     cfg.Domain,
		secure:     cfg.Secure,
		sameSite:   cfg.SameSiteMode(),
		accessTTL:  jwtCfg.AccessTokenExpire,
		refreshTTL: jwtCfg.RefreshTokenExpire,
	}
}

func (c *CookieWriter) SetTokens(w http.ResponseWriter, access, refresh string) {
	http.SetCookie(w, c.cookie(middleware.AccessTokenCookie, access, c.accessTTL))
	http.SetCookie(w, c.cookie(RefreshTokenCookie, refresh, c.refreshTTL))
}

func (c *CookieWriter) Clear(w http.ResponseWriter) {
	for _, name := range []string{middleware.AccessTokenCookie, RefreshTokenCookie} {
		cookie := c.cookie(name, "", 0)
		cookie.MaxAge = -1
		cookie.Expires = time.Unix(0, 0)
		http.SetCookie(w, cookie)
	}
}

func (c *CookieWriter) cookie(name, value string, ttl time.Duration) *http.Cookie {
	return &http.Cookie{
		Name:     name,
		Value:    value,
		Path:     "/",
		Domain:   c.domain,
		MaxAge:   int(ttl.Seconds()),
		HttpOnly: true,
		Secure:   c.secure,
		SameSite: c.sameSite,
	}
}
