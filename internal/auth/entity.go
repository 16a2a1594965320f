// AngelaMos | 2026
// entity.go

package auth

import (
	"time"
)

// RefreshToken is one row of refresh_tokens. ID equals the jti of the
// signed refresh token; only its SHA-256 is stored.
type RefreshToken struct {
	ID           string     `db:"id"`
	UserID       string     `db:"user_id"`
	TokenHash    string     `db:"token_hash"`
	FamilyID     string     `db:"family_id"`
	ExpiresAt    time.Time  `db:"expires_at"`
	CreatedAt    time.Time  `db:"created_at"`
	IsUsed       bool       `db:"is_used"`
	UsedAt       *time.Time `db:"used_at"`
	RevokedAt    *time.Time `db:"revoked_at"`
	ReplacedByID *string    `db:"replaced_by_id"`
	UserAgent    string     `db:"user_agent"`
	IPAddress    string     `db:"ip_address"`
}

func (t *RefreshToken) IsExpired() bool {
	return time.Now().After(t.ExpiresAt)
}

func (t *RefreshToken) IsRevoked() bool {
	return t.RevokedAt != nil
}

func (t *RefreshToken) IsValid() bool {
	return !t.IsExpired() && !t.IsRevoked() && !t.IsUsed
}

func (t *RefreshToken) ToSessionInfo() SessionInfo {
	return SessionInfo{
		ID:        t.ID,
		UserAgent: t.UserAgent,
		IPAddress: t.IPAddress,
		CreatedAt: t.CreatedAt,
		ExpiresAt: t.ExpiresAt,
	}
}
