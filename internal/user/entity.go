// AngelaMos | 2026
// entity.go

package user

import (
	"time"
)

type User struct {
	ID           string     `db:"id"`
	Email        string     `db:"email"`
	PasswordHash string     `db:"password_hash"`
	Name         string     `db:"name"`
	Role         string     `db:"role"`
	IsActive     bool       `db:"is_active"`
	CreatedAt    time.Time  `db:"created_at"`
	UpdatedAt    time.Time  `db:"updated_at"`
	DeletedAt    *time.Time `db:"deleted_at"`
}

func (u *User) IsDeleted() bool {
	return u.DeletedAt != nil
}

func (u *User) IsAdmin() bool {
	return u.Role == RoleAdmin
}

const (
	RoleAdmin      = "Admin"
	RoleAccountant = "Accountant"
	RoleViewer     = "Viewer"
)

func IsValidRole(role string) bool {
	switch role {
	case RoleAdmin, RoleAccountant, RoleViewer:
		return true
	}
	return false
}
