// AngelaMos | 2026
// service.go

package auth

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/carterperez-dev/invoice-manager/internal/core"
	"github.com/carterperez-dev/invoice-manager/internal/middleware"
)

var (
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrTokenReuse         = errors.New("token reuse detected")
	ErrAccountUnavailable = errors.New("account not available")
	ErrRefreshSuperseded  = errors.New("refresh token already rotated")
)

// reuseGrace is how long a rotated refresh token may be replayed without
// counting as theft. Browsers fire parallel refreshes on page load.
const reuseGrace = 10 * time.Second

type UserInfo struct {
	ID           string
	Email        string
	Name         string
	PasswordHash string
	Role         string
	IsActive     bool
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

type UserProvider interface {
	GetByEmail(ctx context.Context, email string) (*UserInfo, error)
	GetByID(ctx context.Context, id string) (*UserInfo, error)
	UpdatePassword(ctx context.Context, userID, passwordHash string) error
}

// DenyList holds access-token IDs that were logged out before expiry.
type DenyList interface {
	Add(ctx context.Context, jti string, expiresAt time.Time) error
	Contains(ctx context.Context, jti string) (bool, error)
}

type Service struct {
	repo         Repository
	jwt          *JWTManager
	userProvider UserProvider
	denyList     DenyList
}

func NewService(
	repo Repository,
	jwt *JWTManager,
	userProvider UserProvider,
	denyList DenyList,
) *Service {
	return &Service{
		repo:         repo,
		jwt:          jwt,
		userProvider: userProvider,
		denyList:     denyList,
	}
}

// Login answers unknown email, wrong password and disabled account with the
// same ErrInvalidCredentials after the same amount of hashing work.
func (s *Service) Login(
	ctx context.Context,
	req LoginRequest,
	userAgent, ipAddress string,
) (*AuthResult, error) {
	user, err := s.userProvider.GetByEmail(ctx, req.Email)
	if err != nil {
		if errors.Is(err, core.ErrNotFound) {
			//nolint:errcheck // timing attack prevention - always verify to prevent enumeration
			_, _, _ = core.VerifyPasswordTimingSafe(req.Password, nil)
			return nil, ErrInvalidCredentials
		}
		return nil, fmt.Errorf("get user: %w", err)
	}

	valid, newHash, err := core.VerifyPasswordTimingSafe(
		req.Password,
		&user.PasswordHash,
	)
	if err != nil {
		slog.ErrorContext(ctx, "stored password hash unreadable",
			"user_id", user.ID,
			"error", err,
		)
		return nil, ErrInvalidCredentials
	}

	if !valid || !user.IsActive {
		return nil, ErrInvalidCredentials
	}

	if newHash != "" {
		if err := s.userProvider.UpdatePassword(ctx, user.ID, newHash); err != nil {
			slog.WarnContext(ctx, "password rehash failed",
				"user_id", user.ID,
				"error", err,
			)
		}
	}

	return s.issue(ctx, user, userAgent, ipAddress, "", "")
}

// Refresh rotates a refresh token. The role in the new access token comes
// from the store, so role changes apply on the next refresh.
func (s *Service) Refresh(
	ctx context.Context,
	refreshToken, userAgent, ipAddress string,
) (*AuthResult, error) {
	claims, err := s.jwt.ParseRefreshToken(refreshToken)
	if err != nil {
		return nil, fmt.Errorf("refresh: %w", err)
	}

	stored, err := s.repo.FindByID(ctx, claims.TokenID)
	if err != nil {
		if errors.Is(err, core.ErrNotFound) {
			return nil, fmt.Errorf("refresh: %w", core.ErrTokenInvalid)
		}
		return nil, fmt.Errorf("find token: %w", err)
	}

	if !core.CompareTokenHash(refreshToken, stored.TokenHash) ||
		stored.UserID != claims.UserID {
		return nil, fmt.Errorf("refresh: %w", core.ErrTokenInvalid)
	}

	if stored.IsUsed {
		if rotatedWithinGrace(stored) {
			return nil, ErrRefreshSuperseded
		}
		s.revokeFamily(ctx, stored)
		return nil, ErrTokenReuse
	}

	if stored.IsRevoked() {
		return nil, fmt.Errorf("refresh: %w", core.ErrTokenRevoked)
	}
	if stored.IsExpired() {
		return nil, fmt.Errorf("refresh: %w", core.ErrTokenExpired)
	}

	user, err := s.userProvider.GetByID(ctx, stored.UserID)
	if err != nil {
		if errors.Is(err, core.ErrNotFound) {
			return nil, ErrAccountUnavailable
		}
		return nil, fmt.Errorf("get user: %w", err)
	}

	if !user.IsActive {
		s.revokeFamily(ctx, stored)
		return nil, ErrAccountUnavailable
	}

	newTokenID := uuid.New().String()
	if err := s.repo.MarkAsUsed(ctx, stored.ID, newTokenID); err != nil {
		// lost the race to a concurrent refresh with the same token
		if errors.Is(err, core.ErrNotFound) {
			return nil, ErrRefreshSuperseded
		}
		return nil, fmt.Errorf("rotate token: %w", err)
	}

	return s.issue(ctx, user, userAgent, ipAddress, stored.FamilyID, newTokenID)
}

func rotatedWithinGrace(t *RefreshToken) bool {
	return !t.IsRevoked() && t.UsedAt != nil && time.Since(*t.UsedAt) < reuseGrace
}

// Logout revokes whatever session material is presented. Tokens that do
// not verify are ignored.
func (s *Service) Logout(
	ctx context.Context,
	refreshToken, accessToken string,
) error {
	var errs []error

	if refreshToken != "" {
		if claims, err := s.jwt.ParseRefreshToken(refreshToken); err == nil {
			if err := s.repo.RevokeByID(ctx, claims.TokenID); err != nil &&
				!errors.Is(err, core.ErrNotFound) {
				errs = append(errs, fmt.Errorf("revoke refresh token: %w", err))
			}
		}
	}

	if accessToken != "" {
		if claims, err := s.jwt.ParseAccessToken(accessToken); err == nil {
			if err := s.denyAccessToken(ctx, claims); err != nil {
				errs = append(errs, err)
			}
		}
	}

	return errors.Join(errs...)
}

func (s *Service) LogoutAll(
	ctx context.Context,
	claims *middleware.AccessTokenClaims,
) error {
	if _, err := s.repo.RevokeAllForUser(ctx, claims.UserID); err != nil {
		return fmt.Errorf("revoke all tokens: %w", err)
	}

	return s.denyAccessToken(ctx, claims)
}

// VerifyAccessToken satisfies middleware.TokenVerifier.
func (s *Service) VerifyAccessToken(
	ctx context.Context,
	token string,
) (*middleware.AccessTokenClaims, error) {
	claims, err := s.jwt.ParseAccessToken(token)
	if err != nil {
		return nil, err
	}

	if s.denyList == nil || claims.TokenID == "" {
		return claims, nil
	}

	denied, err := s.denyList.Contains(ctx, claims.TokenID)
	if err != nil {
		slog.WarnContext(ctx, "deny list unavailable, accepting token",
			"error", err,
		)
		return claims, nil
	}
	if denied {
		return nil, fmt.Errorf("verify token: %w", core.ErrTokenRevoked)
	}

	return claims, nil
}

func (s *Service) GetActiveSessions(
	ctx context.Context,
	userID string,
) ([]SessionInfo, error) {
	tokens, err := s.repo.GetActiveSessionsForUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("get sessions: %w", err)
	}

	sessions := make([]SessionInfo, 0, len(tokens))
	for i := range tokens {
		sessions = append(sessions, tokens[i].ToSessionInfo())
	}

	return sessions, nil
}

func (s *Service) RevokeSession(
	ctx context.Context,
	userID, sessionID string,
) error {
	token, err := s.repo.FindByID(ctx, sessionID)
	if err != nil {
		return fmt.Errorf("find session: %w", err)
	}

	if token.UserID != userID {
		return fmt.Errorf("revoke session: %w", core.ErrNotFound)
	}

	if err := s.repo.RevokeByID(ctx, sessionID); err != nil {
		return fmt.Errorf("revoke session: %w", err)
	}

	return nil
}

func (s *Service) ChangePassword(
	ctx context.Context,
	claims *middleware.AccessTokenClaims,
	currentPassword, newPassword string,
) error {
	user, err := s.userProvider.GetByID(ctx, claims.UserID)
	if err != nil {
		return fmt.Errorf("get user: %w", err)
	}

	valid, err := core.VerifyPassword(currentPassword, user.PasswordHash)
	if err != nil {
		return fmt.Errorf("verify password: %w", err)
	}

	if !valid {
		return ErrInvalidCredentials
	}

	newHash, err := core.HashPassword(newPassword)
	if err != nil {
		return fmt.Errorf("hash password: %w", err)
	}

	if err := s.userProvider.UpdatePassword(ctx, user.ID, newHash); err != nil {
		return fmt.Errorf("update password: %w", err)
	}

	return s.LogoutAll(ctx, claims)
}

// GetCurrentUser reloads the caller from the store. Deactivated accounts
// are reported as not found.
func (s *Service) GetCurrentUser(
	ctx context.Context,
	userID string,
) (*UserResponse, error) {
	user, err := s.userProvider.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}

	if !user.IsActive {
		return nil, fmt.Errorf("get current user: %w", core.ErrNotFound)
	}

	resp := toUserResponse(user)
	return &resp, nil
}

func (s *Service) issue(
	ctx context.Context,
	user *UserInfo,
	userAgent, ipAddress, familyID, tokenID string,
) (*AuthResult, error) {
	access, err := s.jwt.CreateAccessToken(AccessTokenClaims{
		UserID: user.ID,
		Email:  user.Email,
		Role:   user.Role,
	})
	if err != nil {
		return nil, fmt.Errorf("create access token: %w", err)
	}

	refresh, err := s.jwt.CreateRefreshToken(user.ID, tokenID, familyID)
	if err != nil {
		return nil, fmt.Errorf("create refresh token: %w", err)
	}

	row := &RefreshToken{
		ID:        refresh.ID,
		UserID:    user.ID,
		TokenHash: refresh.Hash,
		FamilyID:  refresh.FamilyID,
		ExpiresAt: refresh.ExpiresAt,
		UserAgent: userAgent,
		IPAddress: ipAddress,
	}

	if err := s.repo.Create(ctx, row); err != nil {
		return nil, fmt.Errorf("store refresh token: %w", err)
	}

	return &AuthResult{
		Response: AuthResponse{
			User: toUserResponse(user),
			Tokens: TokenResponse{
				AccessToken: access.Token,
				TokenType:   "Bearer",
				ExpiresIn:   int(time.Until(access.ExpiresAt).Round(time.Second).Seconds()),
				ExpiresAt:   access.ExpiresAt,
			},
		},
		AccessToken:      access.Token,
		RefreshToken:     refresh.Token,
		RefreshExpiresAt: refresh.ExpiresAt,
	}, nil
}

func (s *Service) denyAccessToken(
	ctx context.Context,
	claims *middleware.AccessTokenClaims,
) error {
	if s.denyList == nil || claims.TokenID == "" {
		return nil
	}

	if err := s.denyList.Add(
		ctx,
		claims.TokenID,
		time.Unix(claims.ExpiresAt, 0),
	); err != nil {
		return fmt.Errorf("deny access token: %w", err)
	}

	return nil
}

func (s *Service) revokeFamily(ctx context.Context, token *RefreshToken) {
	if err := s.repo.RevokeByFamilyID(ctx, token.FamilyID); err != nil {
		slog.ErrorContext(ctx, "revoke token family failed",
			"family_id", token.FamilyID,
			"error", err,
		)
		return
	}

	slog.WarnContext(ctx, "refresh token family revoked",
		"user_id", token.UserID,
		"family_id", token.FamilyID,
	)
}

func toUserResponse(user *UserInfo) UserResponse {
	return UserResponse{
		ID:        user.ID,
		Email:     user.Email,
		Name:      user.Name,
		Role:      user.Role,
		IsActive:  user.IsActive,
		CreatedAt: user.CreatedAt,
		UpdatedAt: user.UpdatedAt,
	}
}
