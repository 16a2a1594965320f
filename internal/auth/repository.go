// AngelaMos | 2026
// repository.go

package auth

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"go.opentelemetry.io/otel/attribute"

	"github.com/carterperez-dev/invoice-manager/internal/core"
)

// Repository persists refresh tokens. Every refresh consumes one row and
// creates its successor in the same family.
type Repository interface {
	Create(ctx context.Context, token *RefreshToken) error
	FindByID(ctx context.Context, id string) (*RefreshToken, error)
	MarkAsUsed(ctx context.Context, id, replacedByID string) error
	RevokeByID(ctx context.Context, id string) error
	RevokeByFamilyID(ctx context.Context, familyID string) error
	RevokeAllForUser(ctx context.Context, userID string) (int64, error)
	GetActiveSessionsForUser(
		ctx context.Context,
		userID string,
	) ([]RefreshToken, error)
	DeleteExpired(ctx context.Context, olderThan time.Duration) (int64, error)
}

const selectRefreshToken = `
	SELECT id, user_id, token_hash, family_id, expires_at, created_at,
		is_used, used_at, revoked_at, replaced_by_id, user_agent, ip_address
	FROM refresh_tokens`

type repository struct {
	db core.DBTX
}

func NewRepository(db core.DBTX) Repository {
	return &repository{db: db}
}

func (r *repository) Create(ctx context.Context, token *RefreshToken) error {
	ctx, span := core.StartSpan(ctx, "refresh_tokens.create",
		attribute.String("user.id", token.UserID))
	defer span.End()

	const query = `
		INSERT INTO refresh_tokens (
			id, user_id, token_hash, family_id, expires_at, user_agent, ip_address
		) VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING created_at`

	err := r.db.GetContext(ctx, &token.CreatedAt, query,
		token.ID, token.UserID, token.TokenHash, token.FamilyID,
		token.ExpiresAt, token.UserAgent, token.IPAddress,
	)
	if err != nil {
		core.SetSpanError(ctx, err)
		return fmt.Errorf("create refresh token: %w", err)
	}
	return nil
}

func (r *repository) FindByID(ctx context.Context, id string) (*RefreshToken, error) {
	var token RefreshToken
	err := r.db.GetContext(ctx, &token, selectRefreshToken+` WHERE id = $1`, id)
	switch {
	case errors.Is(err, sql.ErrNoRows):
		return nil, fmt.Errorf("find refresh token: %w", core.ErrNotFound)
	case err != nil:
		return nil, fmt.Errorf("find refresh token: %w", err)
	}
	return &token, nil
}

// MarkAsUsed only matches a row that is still unused and unrevoked, so of
// two concurrent refreshes with one token exactly one wins.
func (r *repository) MarkAsUsed(ctx context.Context, id, replacedByID string) error {
	n, err := r.exec(ctx, "mark refresh token used", `
		UPDATE refresh_tokens
		SET is_used = true, used_at = NOW(), replaced_by_id = $2
		WHERE id = $1 AND is_used = false AND revoked_at IS NULL`,
		id, replacedByID)
	return requireOne(n, err, "mark refresh token used")
}

func (r *repository) RevokeByID(ctx context.Context, id string) error {
	n, err := r.revokeWhere(ctx, "id", id)
	return requireOne(n, err, "revoke refresh token")
}

// RevokeByFamilyID is the response to a reused token: the whole chain of
// rotations descending from one login dies.
func (r *repository) RevokeByFamilyID(ctx context.Context, familyID string) error {
	_, err := r.revokeWhere(ctx, "family_id", familyID)
	return err
}

func (r *repository) RevokeAllForUser(ctx context.Context, userID string) (int64, error) {
	ctx, span := core.StartSpan(ctx, "refresh_tokens.revoke_user",
		attribute.String("user.id", userID))
	defer span.End()

	n, err := r.revokeWhere(ctx, "user_id", userID)
	if err != nil {
		core.SetSpanError(ctx, err)
	}
	return n, err
}

// revokeWhere is only called with the fixed column names above.
func (r *repository) revokeWhere(ctx context.Context, column, value string) (int64, error) {
	query := `
		UPDATE refresh_tokens
		SET revoked_at = NOW()
		WHERE ` + column + ` = $1 AND revoked_at IS NULL`
	return r.exec(ctx, "revoke refresh tokens by "+column, query, value)
}

func (r *repository) GetActiveSessionsForUser(
	ctx context.Context,
	userID string,
) ([]RefreshToken, error) {
	query := selectRefreshToken + `
		WHERE user_id = $1
			AND revoked_at IS NULL
			AND is_used = false
			AND expires_at > NOW()
		ORDER BY created_at DESC`

	var tokens []RefreshToken
	if err := r.db.SelectContext(ctx, &tokens, query, userID); err != nil {
		return nil, fmt.Errorf("list active sessions: %w", err)
	}
	return tokens, nil
}

// DeleteExpired drops rows that expired more than olderThan ago. Reuse
// detection only needs a row while its token could still be presented.
func (r *repository) DeleteExpired(ctx context.Context, olderThan time.Duration) (int64, error) {
	return r.exec(ctx, "delete expired refresh tokens",
		`DELETE FROM refresh_tokens WHERE expires_at < $1`,
		time.Now().Add(-olderThan))
}

func (r *repository) exec(ctx context.Context, op, query string, args ...any) (int64, error) {
	res, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}
	return n, nil
}

func requireOne(n int64, err error, op string) error {
	if err != nil {
		return err
	}
	if n == 0 {
		return fmt.Errorf("%s: %w", op, core.ErrNotFound)
	}
	return nil
}
