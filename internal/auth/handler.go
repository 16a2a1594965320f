// AngelaMos | 2026
// handler.go

package auth

import (
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"

	"github.com/carterperez-dev/invoice-manager/internal/core"
	"github.com/carterperez-dev/invoice-manager/internal/middleware"
)

type Handler struct {
	service   *Service
	cookies   *CookieWriter
	validator *validator.Validate
}

func NewHandler(service *Service, cookies *CookieWriter) *Handler {
	return &Handler{
		service:   service,
		cookies:   cookies,
		validator: core.NewValidator(),
	}
}

func (h *Handler) RegisterRoutes(
	r chi.Router,
	authenticator func(http.Handler) http.Handler,
	loginLimiter func(http.Handler) http.Handler,
) {
	r.Route("/auth", func(r chi.Router) {
		r.With(loginLimiter).Post("/login", h.Login)
		r.Post("/refresh", h.Refresh)
		r.Post("/logout", h.Logout)

		r.Group(func(r chi.Router) {
			r.Use(authenticator)
			r.Get("/me", h.GetMe)
			r.Post("/logout-all", h.LogoutAll)
			r.Get("/sessions", h.GetSessions)
			r.Delete("/sessions/{sessionID}", h.RevokeSession)
			r.Post("/change-password", h.ChangePassword)
		})
	})
}

func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	var req LoginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		core.BadRequest(w, "invalid request body")
		return
	}

	req.Email = strings.ToLower(strings.TrimSpace(req.Email))
	if err := h.validator.Struct(req); err != nil {
		core.BadRequest(w, core.FormatValidationError(err))
		return
	}

	result, err := h.service.Login(
		r.Context(),
		req,
		r.UserAgent(),
		middleware.ClientIP(r),
	)
	if err != nil {
		if errors.Is(err, ErrInvalidCredentials) {
			slog.WarnContext(r.Context(), "login failed", "email", req.Email)
			core.Unauthorized(w, "Invalid email or password")
			return
		}
		core.InternalServerError(w, r, err)
		return
	}

	h.cookies.SetTokens(w, result.AccessToken, result.RefreshToken)
	slog.InfoContext(r.Context(), "user logged in",
		"user_id", result.Response.User.ID,
		"role", result.Response.User.Role,
	)
	core.OKWithMessage(w, result.Response, "Login successful")
}

func (h *Handler) Refresh(w http.ResponseWriter, r *http.Request) {
	token := refreshTokenFromRequest(r)
	if token == "" {
		core.Unauthorized(w, "refresh token is required")
		return
	}

	result, err := h.service.Refresh(
		r.Context(),
		token,
		r.UserAgent(),
		middleware.ClientIP(r),
	)
	if errors.Is(err, ErrRefreshSuperseded) {
		// a parallel request already rotated this token and set new cookies
		core.JSONError(w, core.NewAppError(
			err,
			"refresh token was already rotated, retry with the latest cookies",
			http.StatusConflict,
			"TOKEN_ALREADY_ROTATED",
		))
		return
	}
	if err != nil {
		h.cookies.Clear(w)
		switch {
		case errors.Is(err, ErrTokenReuse):
			core.JSONError(w, core.NewAppError(
				core.ErrTokenRevoked,
				"security alert: token reuse detected, all sessions revoked",
				http.StatusUnauthorized,
				"TOKEN_REUSE_DETECTED",
			))
		case errors.Is(err, ErrAccountUnavailable):
			core.Unauthorized(w, "user account is not available")
		case errors.Is(err, core.ErrTokenExpired):
			core.JSONError(w, core.TokenExpiredError())
		case errors.Is(err, core.ErrTokenRevoked):
			core.JSONError(w, core.TokenRevokedError())
		case errors.Is(err, core.ErrTokenInvalid):
			core.JSONError(w, core.TokenInvalidError())
		default:
			core.InternalServerError(w, r, err)
		}
		return
	}

	h.cookies.SetTokens(w, result.AccessToken, result.RefreshToken)
	core.OKWithMessage(w, result.Response, "Token refreshed successfully")
}

// Logout always succeeds for the caller; revocation failures are logged.
func (h *Handler) Logout(w http.ResponseWriter, r *http.Request) {
	err := h.service.Logout(
		r.Context(),
		refreshTokenFromRequest(r),
		middleware.ExtractToken(r),
	)
	if err != nil {
		slog.ErrorContext(r.Context(), "logout revocation failed", "error", err)
	}

	h.cookies.Clear(w)
	core.OKWithMessage(w, nil, "Logout successful")
}

func (h *Handler) LogoutAll(w http.ResponseWriter, r *http.Request) {
	claims := middleware.GetClaims(r.Context())
	if claims == nil {
		core.Unauthorized(w, "authentication required")
		return
	}

	if err := h.service.LogoutAll(r.Context(), claims); err != nil {
		core.InternalServerError(w, r, err)
		return
	}

	h.cookies.Clear(w)
	core.OKWithMessage(w, nil, "All sessions revoked")
}

func (h *Handler) GetSessions(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserID(r.Context())

	sessions, err := h.service.GetActiveSessions(r.Context(), userID)
	if err != nil {
		core.InternalServerError(w, r, err)
		return
	}

	core.OK(w, SessionsResponse{Sessions: sessions})
}

func (h *Handler) RevokeSession(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserID(r.Context())
	sessionID := chi.URLParam(r, "sessionID")

	if err := h.service.RevokeSession(r.Context(), userID, sessionID); err != nil {
		if errors.Is(err, core.ErrNotFound) {
			core.NotFound(w, "session")
			return
		}
		core.InternalServerError(w, r, err)
		return
	}

	core.OKWithMessage(w, nil, "Session revoked")
}

func (h *Handler) ChangePassword(w http.ResponseWriter, r *http.Request) {
	claims := middleware.GetClaims(r.Context())
	if claims == nil {
		core.Unauthorized(w, "authentication required")
		return
	}

	var req ChangePasswordRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		core.BadRequest(w, "invalid request body")
		return
	}

	if err := h.validator.Struct(req); err != nil {
		core.BadRequest(w, core.FormatValidationError(err))
		return
	}

	err := h.service.ChangePassword(
		r.Context(),
		claims,
		req.CurrentPassword,
		req.NewPassword,
	)
	if err != nil {
		if errors.Is(err, ErrInvalidCredentials) {
			core.Unauthorized(w, "current password is incorrect")
			return
		}
		if errors.Is(err, core.ErrNotFound) {
			core.NotFound(w, "user")
			return
		}
		core.InternalServerError(w, r, err)
		return
	}

	h.cookies.Clear(w)
	core.OKWithMessage(w, nil, "Password changed, please sign in again")
}

func (h *Handler) GetMe(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserID(r.Context())

	user, err := h.service.GetCurrentUser(r.Context(), userID)
	if err != nil {
		if errors.Is(err, core.ErrNotFound) {
			core.NotFound(w, "user")
			return
		}
		core.InternalServerError(w, r, err)
		return
	}

	core.OK(w, user)
}

// refreshTokenFromRequest prefers the cookie and falls back to a JSON body
// for non-browser clients.
func refreshTokenFromRequest(r *http.Request) string {
	if cookie, err := r.Cookie(RefreshTokenCookie); err == nil && cookie.Value != "" {
		return cookie.Value
	}

	if r.Body == nil {
		return ""
	}

	var req RefreshRequest
	if err := json.NewDecoder(io.LimitReader(r.Body, 8<<10)).Decode(&req); err != nil {
		return ""
	}
	return strings.TrimSpace(req.RefreshToken)
}
