// AngelaMos | 2026
// repository.go

package invoice

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"go.opentelemetry.io/otel/attribute"

	"github.com/carterperez-dev/invoice-manager/internal/core"
)

type Repository interface {
	NextID(ctx context.Context) (string, error)
	Create(ctx context.Context, inv *Invoice) error
	GetByID(ctx context.Context, id string) (*Invoice, error)
	Update(ctx context.Context, inv *Invoice) error
	SoftDelete(ctx context.Context, id string) error
	List(ctx context.Context, params ListInvoicesParams) ([]Invoice, int, error)
	TotalsByStatus(ctx context.Context) ([]StatusTotal, error)
}

const invoiceSelect = `
		SELECT i.id, i.customer_id, c.name AS customer_name, i.type,
		       i.start_date, i.end_date, i.status, i.amount, i.send_status,
		       i.created_at, i.updated_at, i.deleted_at
		FROM invoices i
		JOIN customers c ON c.id = i.customer_id`

type repository struct {
	db core.DBTX
}

func NewRepository(db core.DBTX) Repository {
	return &repository{db: db}
}

func (r *repository) NextID(ctx context.Context) (string, error) {
	var n int64
	if err := r.db.GetContext(ctx, &n, `SELECT nextval('invoice_number_seq')`); err != nil {
		return "", fmt.Errorf("next invoice id: %w", err)
	}
	return FormatID(n), nil
}

func (r *repository) Create(ctx context.Context, inv *Invoice) error {
	ctx, span := core.StartSpan(ctx, "invoices.create",
		attribute.String("invoice.id", inv.ID),
		attribute.String("invoice.type", inv.Type))
	defer span.End()

	query := `
		INSERT INTO invoices (
			id, customer_id, type, start_date, end_date,
			status, amount, send_status
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING created_at, updated_at`

	err := r.db.GetContext(ctx, inv, query,
		inv.ID,
		inv.CustomerID,
		inv.Type,
		inv.StartDate,
		inv.EndDate,
		inv.Status,
		inv.Amount,
		inv.SendStatus,
	)
	if err != nil {
		if core.IsForeignKeyError(err) {
			return fmt.Errorf("create invoice: unknown customer: %w", core.ErrInvalidInput)
		}
		if core.IsDuplicateKeyError(err) {
			return fmt.Errorf("create invoice: %w", core.ErrDuplicateKey)
		}
		if core.IsNumericOverflowError(err) {
			return fmt.Errorf("create invoice: amount out of range: %w", core.ErrInvalidInput)
		}
		core.SetSpanError(ctx, err)
		return fmt.Errorf("create invoice: %w", err)
	}

	return nil
}

func (r *repository) GetByID(ctx context.Context, id string) (*Invoice, error) {
	query := invoiceSelect + `
		WHERE i.id = $1 AND i.deleted_at IS NULL`

	var inv Invoice
	err := r.db.GetContext(ctx, &inv, query, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("get invoice: %w", core.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("get invoice: %w", err)
	}

	return &inv, nil
}

func (r *repository) Update(ctx context.Context, inv *Invoice) error {
	query := `
		UPDATE invoices
		SET type = $2, start_date = $3, end_date = $4, status = $5,
		    amount = $6, send_status = $7, updated_at = NOW()
		WHERE id = $1 AND deleted_at IS NULL
		RETURNING updated_at`

	err := r.db.GetContext(ctx, &inv.UpdatedAt, query,
		inv.ID,
		inv.Type,
		inv.StartDate,
		inv.EndDate,
		inv.Status,
		inv.Amount,
		inv.SendStatus,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return fmt.Errorf("update invoice: %w", core.ErrNotFound)
	}
	if core.IsNumericOverflowError(err) {
		return fmt.Errorf("update invoice: amount out of range: %w", core.ErrInvalidInput)
	}
	if err != nil {
		return fmt.Errorf("update invoice: %w", err)
	}

	return nil
}

func (r *repository) SoftDelete(ctx context.Context, id string) error {
	query := `
		UPDATE invoices
		SET deleted_at = NOW(), updated_at = NOW()
		WHERE id = $1 AND deleted_at IS NULL`

	result, err := r.db.ExecContext(ctx, query, id)
	if err != nil {
		return fmt.Errorf("delete invoice: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("delete invoice: %w", err)
	}
	if rows == 0 {
		return fmt.Errorf("delete invoice: %w", core.ErrNotFound)
	}

	return nil
}

func (r *repository) List(
	ctx context.Context,
	params ListInvoicesParams,
) ([]Invoice, int, error) {
	params.Normalize()

	ctx, span := core.StartSpan(ctx, "invoices.list",
		attribute.Int("page", params.Page))
	defer span.End()

	conditions := []string{"i.deleted_at IS NULL"}
	var args []any
	argIdx := 1

	add := func(cond string, arg any) {
		conditions = append(conditions, fmt.Sprintf(cond, argIdx))
		args = append(args, arg)
		argIdx++
	}

	if params.Status != "" {
		add("i.status = $%d", params.Status)
	}
	if params.Type != "" {
		add("i.type = $%d", params.Type)
	}
	if params.CustomerID != "" {
		add("i.customer_id = $%d", params.CustomerID)
	}
	if params.Search != "" {
		conditions = append(conditions, fmt.Sprintf(
			"(i.id ILIKE $%d OR c.name ILIKE $%d)", argIdx, argIdx))
		args = append(args, "%"+core.EscapeLike(params.Search)+"%")
		argIdx++
	}

	whereClause := strings.Join(conditions, " AND ")

	countQuery := `
		SELECT COUNT(*)
		FROM invoices i
		JOIN customers c ON c.id = i.customer_id
		WHERE ` + whereClause

	var total int
	if err := r.db.GetContext(ctx, &total, countQuery, args...); err != nil {
		core.SetSpanError(ctx, err)
		return nil, 0, fmt.Errorf("count invoices: %w", err)
	}

	query := fmt.Sprintf(`%s
		WHERE %s
		ORDER BY i.created_at DESC, i.id DESC
		LIMIT $%d OFFSET $%d`,
		invoiceSelect, whereClause, argIdx, argIdx+1)

	args = append(args, params.PageSize, params.Offset())

	invoices := []Invoice{}
	if err := r.db.SelectContext(ctx, &invoices, query, args...); err != nil {
		core.SetSpanError(ctx, err)
		return nil, 0, fmt.Errorf("list invoices: %w", err)
	}

	return invoices, total, nil
}

func (r *repository) TotalsByStatus(ctx context.Context) ([]StatusTotal, error) {
	query := `
		SELECT status, COUNT(*) AS count, COALESCE(SUM(amount), 0) AS amount
		FROM invoices
		WHERE deleted_at IS NULL
		GROUP BY status`

	totals := []StatusTotal{}
	if err := r.db.SelectContext(ctx, &totals, query); err != nil {
		return nil, fmt.Errorf("invoice totals: %w", err)
	}

	return totals, nil
}
