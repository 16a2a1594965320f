// AngelaMos | 2026
// fakes_test.go

package user

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/carterperez-dev/invoice-manager/internal/core"
)

type memRepo struct {
	mu      sync.Mutex
	users   map[string]*User
	updates int
}

func newMemRepo(users ...User) *memRepo {
	m := &memRepo{users: map[string]*User{}}
	for i := range users {
		u := users[i]
		m.users[u.ID] = &u
	}
	return m
}

func (m *memRepo) Create(_ context.Context, user *User) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, u := range m.users {
		if u.DeletedAt == nil && strings.EqualFold(u.Email, user.Email) {
			return core.ErrDuplicateKey
		}
	}
	now := time.Now()
	user.CreatedAt, user.UpdatedAt = now, now
	cp := *user
	m.users[user.ID] = &cp
	return nil
}

func (m *memRepo) GetByID(_ context.Context, id string) (*User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	u, ok := m.users[id]
	if !ok || u.DeletedAt != nil {
		return nil, core.ErrNotFound
	}
	cp := *u
	return &cp, nil
}

func (m *memRepo) GetByEmail(_ context.Context, email string) (*User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, u := range m.users {
		if u.DeletedAt == nil && strings.EqualFold(u.Email, email) {
			cp := *u
			return &cp, nil
		}
	}
	return nil, core.ErrNotFound
}

func (m *memRepo) Update(_ context.Context, user *User) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	u, ok := m.users[user.ID]
	if !ok || u.DeletedAt != nil {
		return core.ErrNotFound
	}
	m.updates++
	user.UpdatedAt = time.Now()
	cp := *user
	m.users[user.ID] = &cp
	return nil
}

func (m *memRepo) UpdatePassword(_ context.Context, id, passwordHash string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	u, ok := m.users[id]
	if !ok || u.DeletedAt != nil {
		return core.ErrNotFound
	}
	u.PasswordHash = passwordHash
	return nil
}

func (m *memRepo) SoftDelete(_ context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	u, ok := m.users[id]
	if !ok || u.DeletedAt != nil {
		return core.ErrNotFound
	}
	now := time.Now()
	u.DeletedAt = &now
	u.IsActive = false
	return nil
}

func (m *memRepo) List(_ context.Context, params ListUsersParams) ([]User, int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	params.Normalize()

	var out []User
	for _, u := range m.users {
		if u.DeletedAt != nil && !params.IncludeDeleted {
			continue
		}
		if params.Role != "" && u.Role != params.Role {
			continue
		}
		if params.Search != "" &&
			!strings.Contains(strings.ToLower(u.Email+" "+u.Name), strings.ToLower(params.Search)) {
			continue
		}
		out = append(out, *u)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Email < out[j].Email })

	total := len(out)
	start := min(params.Offset(), total)
	end := min(start+params.PageSize, total)
	return out[start:end], total, nil
}

func (m *memRepo) ExistsByEmail(_ context.Context, email, excludeID string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, u := range m.users {
		if u.ID != excludeID && u.DeletedAt == nil && strings.EqualFold(u.Email, email) {
			return true, nil
		}
	}
	return false, nil
}

func (m *memRepo) CountByRole(_ context.Context, role string) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	n := 0
	for _, u := range m.users {
		if u.DeletedAt == nil && u.Role == role {
			n++
		}
	}
	return n, nil
}

type fakeRevoker struct {
	mu      sync.Mutex
	revoked []string
}

func (f *fakeRevoker) RevokeAllForUser(_ context.Context, userID string) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.revoked = append(f.revoked, userID)
	return 1, nil
}

func (f *fakeRevoker) calls() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.revoked...)
}

func seedUsers() []User {
	now := time.Now()
	return []User{
		{ID: "u-admin", Email: "admin@company.com", Name: "John Admin", Role: RoleAdmin, IsActive: true, CreatedAt: now},
		{ID: "u-acct", Email: "accountant@company.com", Name: "Sarah Accountant", Role: RoleAccountant, IsActive: true, CreatedAt: now},
		{ID: "u-viewer", Email: "viewer@company.com", Name: "Mike Viewer", Role: RoleViewer, IsActive: true, CreatedAt: now},
	}
}
