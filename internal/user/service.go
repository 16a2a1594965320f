// AngelaMos | 2026
// service.go

package user

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/google/uuid"

	"github.com/carterperez-dev/invoice-manager/internal/auth"
	"github.com/carterperez-dev/invoice-manager/internal/core"
)

const DefaultSeedPassword = "password123"

// SessionRevoker ends every refresh session of a user. auth.Repository
// satisfies it.
type SessionRevoker interface {
	RevokeAllForUser(ctx context.Context, userID string) (int64, error)
}

type Service struct {
	repo     Repository
	sessions SessionRevoker
}

func NewService(repo Repository, sessions SessionRevoker) *Service {
	return &Service{repo: repo, sessions: sessions}
}

func (s *Service) GetByID(
	ctx context.Context,
	id string,
) (*auth.UserInfo, error) {
	user, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	return toUserInfo(user), nil
}

func (s *Service) GetByEmail(
	ctx context.Context,
	email string,
) (*auth.UserInfo, error) {
	user, err := s.repo.GetByEmail(ctx, normalizeEmail(email))
	if err != nil {
		return nil, err
	}

	return toUserInfo(user), nil
}

func (s *Service) UpdatePassword(
	ctx context.Context,
	userID, passwordHash string,
) error {
	return s.repo.UpdatePassword(ctx, userID, passwordHash)
}

func (s *Service) CreateUser(
	ctx context.Context,
	req CreateUserRequest,
) (*User, error) {
	if !IsValidRole(req.Role) {
		return nil, core.BadRequestError("role must be one of: Admin, Accountant, Viewer")
	}

	email := normalizeEmail(req.Email)

	exists, err := s.repo.ExistsByEmail(ctx, email, "")
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, fmt.Errorf("create user: %w", core.ErrDuplicateKey)
	}

	hash, err := core.HashPassword(req.Password)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	user := &User{
		ID:           uuid.New().String(),
		Email:        email,
		PasswordHash: hash,
		Name:         strings.TrimSpace(req.Name),
		Role:         req.Role,
		IsActive:     true,
	}

	if err := s.repo.Create(ctx, user); err != nil {
		return nil, err
	}

	return user, nil
}

func (s *Service) GetUser(ctx context.Context, id string) (*User, error) {
	return s.repo.GetByID(ctx, id)
}

// UpdateUser applies a partial update. Input is checked before the store
// is touched, and sessions are revoked when the account is deactivated or
// its password changes.
func (s *Service) UpdateUser(
	ctx context.Context,
	id string,
	req UpdateUserRequest,
) (*User, error) {
	if req.IsEmpty() {
		return nil, core.BadRequestError("no fields to update")
	}
	if req.Role != nil && !IsValidRole(*req.Role) {
		return nil, core.BadRequestError("role must be one of: Admin, Accountant, Viewer")
	}

	user, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if req.Email != nil {
		email := normalizeEmail(*req.Email)
		if email != user.Email {
			exists, err := s.repo.ExistsByEmail(ctx, email, user.ID)
			if err != nil {
				return nil, err
			}
			if exists {
				return nil, fmt.Errorf("update user: %w", core.ErrDuplicateKey)
			}
			user.Email = email
		}
	}

	if req.Name != nil {
		user.Name = strings.TrimSpace(*req.Name)
	}

	if req.Role != nil {
		user.Role = *req.Role
	}

	wasActive := user.IsActive
	if req.IsActive != nil {
		user.IsActive = *req.IsActive
	}

	if req.Password != nil {
		hash, err := core.HashPassword(*req.Password)
		if err != nil {
			return nil, fmt.Errorf("hash password: %w", err)
		}
		user.PasswordHash = hash
	}

	if err := s.repo.Update(ctx, user); err != nil {
		return nil, err
	}

	if (wasActive && !user.IsActive) || req.Password != nil {
		s.revokeSessions(ctx, user.ID)
	}

	return user, nil
}

// DeleteUser soft deletes targetID. Admins cannot delete themselves.
func (s *Service) DeleteUser(
	ctx context.Context,
	requesterID, targetID string,
) error {
	if requesterID == targetID {
		return core.ForbiddenError("you cannot delete your own account")
	}

	if err := s.repo.SoftDelete(ctx, targetID); err != nil {
		return err
	}

	s.revokeSessions(ctx, targetID)
	return nil
}

func (s *Service) ListUsers(
	ctx context.Context,
	params ListUsersParams,
) ([]User, int, error) {
	if params.Role != "" && !IsValidRole(params.Role) {
		return nil, 0, core.BadRequestError("role must be one of: Admin, Accountant, Viewer")
	}
	return s.repo.List(ctx, params)
}

type seedUser struct {
	name  string
	email string
	role  string
}

var defaultUsers = []seedUser{
	{name: "John Admin", email: "admin@company.com", role: RoleAdmin},
	{name: "Sarah Accountant", email: "accountant@company.com", role: RoleAccountant},
	{name: "Mike Viewer", email: "viewer@company.com", role: RoleViewer},
}

// SeedDefaultUsers creates one account per role when no Admin exists yet.
// It returns how many accounts were created.
func (s *Service) SeedDefaultUsers(ctx context.Context) (int, error) {
	admins, err := s.repo.CountByRole(ctx, RoleAdmin)
	if err != nil {
		return 0, err
	}
	if admins > 0 {
		return 0, nil
	}

	created := 0
	for _, du := range defaultUsers {
		_, err := s.CreateUser(ctx, CreateUserRequest{
			Email:    du.email,
			Name:     du.name,
			Password: DefaultSeedPassword,
			Role:     du.role,
		})
		if errors.Is(err, core.ErrDuplicateKey) {
			continue
		}
		if err != nil {
			return created, fmt.Errorf("seed %s: %w", du.email, err)
		}
		created++
	}

	if created > 0 {
		slog.InfoContext(ctx, "default users seeded", "count", created)
	}

	return created, nil
}

func (s *Service) revokeSessions(ctx context.Context, userID string) {
	if s.sessions == nil {
		return
	}

	n, err := s.sessions.RevokeAllForUser(ctx, userID)
	if err != nil {
		slog.ErrorContext(ctx, "revoke user sessions failed",
			"user_id", userID,
			"error", err,
		)
		return
	}

	slog.InfoContext(ctx, "user sessions revoked",
		"user_id", userID,
		"count", n,
	)
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func toUserInfo(u *User) *auth.UserInfo {
	return &auth.UserInfo{
		ID:           u.ID,
		Email:        u.Email,
		Name:         u.Name,
		PasswordHash: u.PasswordHash,
		Role:         u.Role,
		IsActive:     u.IsActive,
		CreatedAt:    u.CreatedAt,
		UpdatedAt:    u.UpdatedAt,
	}
}

var _ auth.UserProvider = (*Service)(nil)
