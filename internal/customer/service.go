// AngelaMos | 2026
// service.go

package customer

import (
	"context"
	"strings"

	"github.com/google/uuid"

	"github.com/carterperez-dev/invoice-manager/internal/core"
)

type Service struct {
	repo Repository
}

func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

func (s *Service) CreateCustomer(
	ctx context.Context,
	req CreateCustomerRequest,
) (*Customer, error) {
	c := &Customer{
		ID:      uuid.New().String(),
		Name:    strings.TrimSpace(req.Name),
		Email:   strings.ToLower(strings.TrimSpace(req.Email)),
		Company: strings.TrimSpace(req.Company),
		Phone:   strings.TrimSpace(req.Phone),
		Address: strings.TrimSpace(req.Address),
	}

	if err := s.repo.Create(ctx, c); err != nil {
		return nil, err
	}

	return c, nil
}

func (s *Service) GetCustomer(ctx context.Context, id string) (*Customer, error) {
	return s.repo.GetByID(ctx, id)
}

func (s *Service) UpdateCustomer(
	ctx context.Context,
	id string,
	req UpdateCustomerRequest,
) (*Customer, error) {
	if req.IsEmpty() {
		return nil, core.BadRequestError("no fields to update")
	}

	c, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if req.Name != nil {
		c.Name = strings.TrimSpace(*req.Name)
	}
	if req.Email != nil {
		c.Email = strings.ToLower(strings.TrimSpace(*req.Email))
	}
	if req.Company != nil {
		c.Company = strings.TrimSpace(*req.Company)
	}
	if req.Phone != nil {
		c.Phone = strings.TrimSpace(*req.Phone)
	}
	if req.Address != nil {
		c.Address = strings.TrimSpace(*req.Address)
	}

	if err := s.repo.Update(ctx, c); err != nil {
		return nil, err
	}

	return c, nil
}

func (s *Service) DeleteCustomer(ctx context.Context, id string) error {
	return s.repo.SoftDelete(ctx, id)
}

func (s *Service) ListCustomers(
	ctx context.Context,
	params ListCustomersParams,
) ([]Customer, int, error) {
	return s.repo.List(ctx, params)
}
