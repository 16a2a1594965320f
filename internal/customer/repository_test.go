// AngelaMos | 2026
// repository_test.go

package customer

import (
	"database/sql"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/carterperez-dev/invoice-manager/internal/core"
)

var customerCols = []string{
	"id", "name", "email", "company", "phone", "address",
	"created_at", "updated_at", "deleted_at",
}

func newMockRepo(t *testing.T) (Repository, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() {
		assert.NoError(t, mock.ExpectationsWereMet())
		_ = db.Close()
	})
	return NewRepository(sqlx.NewDb(db, "pgx")), mock
}

func TestRepository_CreateAndGet(t *testing.T) {
	repo, mock := newMockRepo(t)
	now := time.Now()

	mock.ExpectQuery(regexp.QuoteMeta("INSERT INTO customers")).
		WithArgs("c-1", "Ann", "ann@acme.io", "Acme", "", "").
		WillReturnRows(sqlmock.NewRows([]string{"created_at", "updated_at"}).AddRow(now, now))

	c := &Customer{ID: "c-1", Name: "Ann", Email: "ann@acme.io", Company: "Acme"}
	require.NoError(t, repo.Create(t.Context(), c))
	assert.Equal(t, now, c.CreatedAt)

	mock.ExpectQuery(`SELECT .+ FROM customers WHERE id = \$1 AND deleted_at IS NULL`).
		WithArgs("c-1").
		WillReturnRows(sqlmock.NewRows(customerCols).
			AddRow("c-1", "Ann", "ann@acme.io", "Acme", "555", "Main St", now, now, nil))

	got, err := repo.GetByID(t.Context(), "c-1")
	require.NoError(t, err)
	assert.Equal(t, "Main St", got.Address)

	mock.ExpectQuery(`SELECT .+ FROM customers`).WithArgs("gone").WillReturnError(sql.ErrNoRows)
	_, err = repo.GetByID(t.Context(), "gone")
	assert.ErrorIs(t, err, core.ErrNotFound)
}

func TestRepository_List(t *testing.T) {
	repo, mock := newMockRepo(t)

	mock.ExpectQuery(regexp.QuoteMeta(
		"SELECT COUNT(*) FROM customers WHERE deleted_at IS NULL AND (name ILIKE $1 OR email ILIKE $1 OR company ILIKE $1)")).
		WithArgs("%acme%").
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(0))
	mock.ExpectQuery(`ORDER BY name ASC, id ASC LIMIT \$2 OFFSET \$3`).
		WithArgs("%acme%", 20, 0).
		WillReturnRows(sqlmock.NewRows(customerCols))

	customers, total, err := repo.List(t.Context(), ListCustomersParams{Search: "acme"})
	require.NoError(t, err)
	assert.Zero(t, total)
	assert.Empty(t, customers)
}

func TestRepository_SoftDelete(t *testing.T) {
	repo, mock := newMockRepo(t)

	mock.ExpectExec(regexp.QuoteMeta("UPDATE customers SET deleted_at = NOW()")).
		WithArgs("c-1").
		WillReturnResult(sqlmock.NewResult(0, 0))

	assert.ErrorIs(t, repo.SoftDelete(t.Context(), "c-1"), core.ErrNotFound)
}
