// AngelaMos | 2026
// repository.go

package customer

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/carterperez-dev/invoice-manager/internal/core"
)

type Repository interface {
	Create(ctx context.Context, c *Customer) error
	GetByID(ctx context.Context, id string) (*Customer, error)
	Update(ctx context.Context, c *Customer) error
	SoftDelete(ctx context.Context, id string) error
	List(ctx context.Context, params ListCustomersParams) ([]Customer, int, error)
}

const customerColumns = `id, name, email, company, phone, address,
		       created_at, updated_at, deleted_at`

type repository struct {
	db core.DBTX
}

func NewRepository(db core.DBTX) Repository {
	return &repository{db: db}
}

func (r *repository) Create(ctx context.Context, c *Customer) error {
	query := `
		INSERT INTO customers (id, name, email, company, phone, address)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING created_at, updated_at`

	err := r.db.GetContext(ctx, c, query,
		c.ID, c.Name, c.Email, c.Company, c.Phone, c.Address)
	if err != nil {
		return fmt.Errorf("create customer: %w", err)
	}

	return nil
}

func (r *repository) GetByID(ctx context.Context, id string) (*Customer, error) {
	query := `
		SELECT ` + customerColumns + `
		FROM customers
		WHERE id = $1 AND deleted_at IS NULL`

	var c Customer
	err := r.db.GetContext(ctx, &c, query, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("get customer: %w", core.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("get customer: %w", err)
	}

	return &c, nil
}

func (r *repository) Update(ctx context.Context, c *Customer) error {
	query := `
		UPDATE customers
		SET name = $2, email = $3, company = $4, phone = $5, address = $6,
		    updated_at = NOW()
		WHERE id = $1 AND deleted_at IS NULL
		RETURNING updated_at`

	err := r.db.GetContext(ctx, &c.UpdatedAt, query,
		c.ID, c.Name, c.Email, c.Company, c.Phone, c.Address)
	if errors.Is(err, sql.ErrNoRows) {
		return fmt.Errorf("update customer: %w", core.ErrNotFound)
	}
	if err != nil {
		return fmt.Errorf("update customer: %w", err)
	}

	return nil
}

func (r *repository) SoftDelete(ctx context.Context, id string) error {
	query := `
		UPDATE customers
		SET deleted_at = NOW(), updated_at = NOW()
		WHERE id = $1 AND deleted_at IS NULL`

	result, err := r.db.ExecContext(ctx, query, id)
	if err != nil {
		return fmt.Errorf("delete customer: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("delete customer: %w", err)
	}
	if rows == 0 {
		return fmt.Errorf("delete customer: %w", core.ErrNotFound)
	}

	return nil
}

func (r *repository) List(
	ctx context.Context,
	params ListCustomersParams,
) ([]Customer, int, error) {
	params.Normalize()

	where := "deleted_at IS NULL"
	args := []any{}
	if params.Search != "" {
		where += " AND (name ILIKE $1 OR email ILIKE $1 OR company ILIKE $1)"
		args = append(args, "%"+core.EscapeLike(params.Search)+"%")
	}

	var total int
	countQuery := "SELECT COUNT(*) FROM customers WHERE " + where
	if err := r.db.GetContext(ctx, &total, countQuery, args...); err != nil {
		return nil, 0, fmt.Errorf("count customers: %w", err)
	}

	query := fmt.Sprintf(`
		SELECT %s
		FROM customers
		WHERE %s
		ORDER BY name ASC, id ASC
		LIMIT $%d OFFSET $%d`,
		customerColumns, where, len(args)+1, len(args)+2)

	args = append(args, params.PageSize, params.Offset())

	customers := []Customer{}
	if err := r.db.SelectContext(ctx, &customers, query, args...); err != nil {
		return nil, 0, fmt.Errorf("list customers: %w", err)
	}

	return customers, total, nil
}
