// AngelaMos | 2026
// dto.go

package customer

import (
	"time"
)

type CreateCustomerRequest struct {
	Name    string `json:"name"    validate:"required,min=1,max=255"`
	Email   string `json:"email"   validate:"required,email,max=255"`
	Company string `json:"company" validate:"required,min=1,max=255"`
	Phone   string `json:"phone"   validate:"omitempty,max=50"`
	Address string `json:"address" validate:"omitempty,max=500"`
}

type UpdateCustomerRequest struct {
	Name    *string `json:"name,omitempty"    validate:"omitempty,min=1,max=255"`
	Email   *string `json:"email,omitempty"   validate:"omitempty,email,max=255"`
	Company *string `json:"company,omitempty" validate:"omitempty,min=1,max=255"`
	Phone   *string `json:"phone,omitempty"   validate:"omitempty,max=50"`
	Address *string `json:"address,omitempty" validate:"omitempty,max=500"`
}

func (r UpdateCustomerRequest) IsEmpty() bool {
	return r.Name == nil &&
		r.Email == nil &&
		r.Company == nil &&
		r.Phone == nil &&
		r.Address == nil
}

type CustomerResponse struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	Company   string    `json:"company"`
	Phone     string    `json:"phone"`
	Address   string    `json:"address"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

type ListCustomersParams struct {
	Page     int
	PageSize int
	Search   string
}

func (p *ListCustomersParams) Normalize() {
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

func (p *ListCustomersParams) Offset() int {
	return (p.Page - 1) * p.PageSize
}

func ToCustomerResponse(c *Customer) CustomerResponse {
	return CustomerResponse{
		ID:        c.ID,
		Name:      c.Name,
		Email:     c.Email,
		Company:   c.Company,
		Phone:     c.Phone,
		Address:   c.Address,
		CreatedAt: c.CreatedAt,
		UpdatedAt: c.UpdatedAt,
	}
}

func ToCustomerResponseList(customers []Customer) []CustomerResponse {
	out := make([]CustomerResponse, 0, len(customers))
	for i := range customers {
		out = append(out, ToCustomerResponse(&customers[i]))
	}
	return out
}
