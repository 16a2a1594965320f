// AngelaMos | 2026
// dto.go

package user

import (
	"time"
)

type CreateUserRequest struct {
	Email    string `json:"email"    validate:"required,email,max=255"`
	Name     string `json:"name"     validate:"required,min=1,max=100"`
	Password string `json:"password" validate:"required,min=6,max=128"`
	Role     string `json:"role"     validate:"required,oneof=Admin Accountant Viewer"`
}

// UpdateUserRequest is a partial update; nil fields are left unchanged.
type UpdateUserRequest struct {
	Email    *string `json:"email,omitempty"     validate:"omitempty,email,max=255"`
	Name     *string `json:"name,omitempty"      validate:"omitempty,min=1,max=100"`
	Password *string `json:"password,omitempty"  validate:"omitempty,min=6,max=128"`
	Role     *string `json:"role,omitempty"      validate:"omitempty,oneof=Admin Accountant Viewer"`
	IsActive *bool   `json:"is_active,omitempty"`
}

func (r UpdateUserRequest) IsEmpty() bool {
	return r.Email == nil &&
		r.Name == nil &&
		r.Password == nil &&
		r.Role == nil &&
		r.IsActive == nil
}

type UserResponse struct {
	ID        string     `json:"id"`
	Email     string     `json:"email"`
	Name      string     `json:"name"`
	Role      string     `json:"role"`
	IsActive  bool       `json:"is_active"`
	CreatedAt time.Time  `json:"created_at"`
	UpdatedAt time.Time  `json:"updated_at"`
	DeletedAt *time.Time `json:"deleted_at,omitempty"`
}

type ListUsersParams struct {
	Page           int
	PageSize       int
	Search         string
	Role           string
	IncludeDeleted bool
}

func (p *ListUsersParams) Normalize() {
	if p.Page < 1 {
		p.Page = 1
	}
	if p.PageSize < 1 {
		p.PageSize = 20
	}
	if p.PageSize > 100 {
		p.PageSize = 100
	}
}

func (p *ListUsersParams) Offset() int {
	return (p.Page - 1) * p.PageSize
}

func ToUserResponse(u *User) UserResponse {
	return UserResponse{
		ID:        u.ID,
		Email:     u.Email,
		Name:      u.Name,
		Role:      u.Role,
		IsActive:  u.IsActive,
		CreatedAt: u.CreatedAt,
		UpdatedAt: u.UpdatedAt,
		DeletedAt: u.DeletedAt,
	}
}

func ToUserResponseList(users []User) []UserResponse {
	responses := make([]UserResponse, 0, len(users))
	for i := range users {
		responses = append(responses, ToUserResponse(&users[i]))
	}
	return responses
}
