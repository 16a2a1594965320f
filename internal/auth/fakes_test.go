// AngelaMos | 2026
// fakes_test.go

package auth

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/carterperez-dev/invoice-manager/internal/core"
)

func errorsIsAny(err error, targets ...error) bool {
	for _, target := range targets {
		if errors.Is(err, target) {
			return true
		}
	}
	return false
}

type memRepo struct {
	mu     sync.Mutex
	tokens map[string]*RefreshToken
}

func newMemRepo() *memRepo {
	return &memRepo{tokens: map[string]*RefreshToken{}}
}

func (m *memRepo) Create(_ context.Context, token *RefreshToken) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	token.CreatedAt = time.Now()
	cp := *token
	m.tokens[token.ID] = &cp
	return nil
}

func (m *memRepo) FindByID(_ context.Context, id string) (*RefreshToken, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	t, ok := m.tokens[id]
	if !ok {
		return nil, core.ErrNotFound
	}
	cp := *t
	return &cp, nil
}

func (m *memRepo) MarkAsUsed(_ context.Context, id, replacedByID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	t, ok := m.tokens[id]
	if !ok || t.IsUsed || t.RevokedAt != nil {
		return core.ErrNotFound
	}
	now := time.Now()
	t.IsUsed = true
	t.UsedAt = &now
	t.ReplacedByID = &replacedByID
	return nil
}

func (m *memRepo) RevokeByID(_ context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	t, ok := m.tokens[id]
	if !ok || t.RevokedAt != nil {
		return core.ErrNotFound
	}
	now := time.Now()
	t.RevokedAt = &now
	return nil
}

func (m *memRepo) RevokeByFamilyID(_ context.Context, familyID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	now := time.Now()
	for _, t := range m.tokens {
		if t.FamilyID == familyID && t.RevokedAt == nil {
			t.RevokedAt = &now
		}
	}
	return nil
}

func (m *memRepo) RevokeAllForUser(_ context.Context, userID string) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	now := time.Now()
	var n int64
	for _, t := range m.tokens {
		if t.UserID == userID && t.RevokedAt == nil {
			t.RevokedAt = &now
			n++
		}
	}
	return n, nil
}

func (m *memRepo) GetActiveSessionsForUser(_ context.Context, userID string) ([]RefreshToken, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []RefreshToken
	for _, t := range m.tokens {
		if t.UserID == userID && t.IsValid() {
			out = append(out, *t)
		}
	}
	return out, nil
}

func (m *memRepo) DeleteExpired(context.Context, time.Duration) (int64, error) {
	return 0, nil
}

func (m *memRepo) get(id string) *RefreshToken {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.tokens[id]
}

// backdateUse moves a rotated token's used_at into the past.
func (m *memRepo) backdateUse(id string, by time.Duration) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if t := m.tokens[id]; t != nil && t.UsedAt != nil {
		at := t.UsedAt.Add(-by)
		t.UsedAt = &at
	}
}

type memUsers struct {
	mu    sync.Mutex
	users map[string]*UserInfo
}

func newMemUsers(t interface{ Fatalf(string, ...any) }) *memUsers {
	hash, err := core.HashPassword("password123")
	if err != nil {
		t.Fatalf("hash: %v", err)
	}
	return &memUsers{users: map[string]*UserInfo{
		"u-admin": {
			ID: "u-admin", Email: "admin@company.com", Name: "Admin User",
			PasswordHash: hash, Role: "Admin", IsActive: true,
		},
		"u-viewer": {
			ID: "u-viewer", Email: "viewer@company.com", Name: "Viewer User",
			PasswordHash: hash, Role: "Viewer", IsActive: true,
		},
		"u-disabled": {
			ID: "u-disabled", Email: "disabled@company.com", Name: "Disabled",
			PasswordHash: hash, Role: "Accountant", IsActive: false,
		},
	}}
}

func (m *memUsers) GetByEmail(_ context.Context, email string) (*UserInfo, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, u := range m.users {
		if u.Email == email {
			cp := *u
			return &cp, nil
		}
	}
	return nil, core.ErrNotFound
}

func (m *memUsers) GetByID(_ context.Context, id string) (*UserInfo, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	u, ok := m.users[id]
	if !ok {
		return nil, core.ErrNotFound
	}
	cp := *u
	return &cp, nil
}

func (m *memUsers) UpdatePassword(_ context.Context, userID, passwordHash string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	u, ok := m.users[userID]
	if !ok {
		return core.ErrNotFound
	}
	u.PasswordHash = passwordHash
	return nil
}

func (m *memUsers) set(id string, fn func(u *UserInfo)) {
	m.mu.Lock()
	defer m.mu.Unlock()
	fn(m.users[id])
}
