// AngelaMos | 2026
// database_test.go

package core

import (
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPgErrorClassification(t *testing.T) {
	dup := fmt.Errorf("insert user: %w", &pgconn.PgError{Code: "23505"})
	fk := fmt.Errorf("insert invoice: %w", &pgconn.PgError{Code: "23503"})

	assert.True(t, IsDuplicateKeyError(dup))
	assert.False(t, IsForeignKeyError(dup))
	assert.True(t, IsForeignKeyError(fk))
	assert.False(t, IsDuplicateKeyError(errors.New("other")))

	overflow := fmt.Errorf("update invoice: %w", &pgconn.PgError{Code: "22003"})
	assert.True(t, IsNumericOverflowError(overflow))
	assert.False(t, IsNumericOverflowError(fk))
}

func TestEscapeLike(t *testing.T) {
	assert.Equal(t, `50\%`, EscapeLike("50%"))
	assert.Equal(t, `a\_b`, EscapeLike("a_b"))
	assert.Equal(t, `c:\\d`, EscapeLike(`c:\d`))
	assert.Equal(t, "plain", EscapeLike("plain"))
}

func TestJitteredDuration(t *testing.T) {
	base := 7 * time.Minute
	for range 20 {
		d := jitteredDuration(base)
		assert.GreaterOrEqual(t, d, base)
		assert.LessOrEqual(t, d, base+base/7)
	}
	assert.Equal(t, time.Duration(0), jitteredDuration(0))
}

func TestInTx(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()
	sdb := sqlx.NewDb(db, "pgx")

	t.Run("commits on success", func(t *testing.T) {
		mock.ExpectBegin()
		mock.ExpectExec("UPDATE users").WillReturnResult(sqlmock.NewResult(0, 1))
		mock.ExpectCommit()

		err := InTx(t.Context(), sdb, func(tx *sqlx.Tx) error {
			_, execErr := tx.ExecContext(t.Context(), "UPDATE users SET name = 'x'")
			return execErr
		})
		require.NoError(t, err)
	})

	t.Run("rolls back on error", func(t *testing.T) {
		mock.ExpectBegin()
		mock.ExpectRollback()

		sentinel := errors.New("stop")
		err := InTx(t.Context(), sdb, func(_ *sqlx.Tx) error {
			return sentinel
		})
		assert.ErrorIs(t, err, sentinel)
	})

	require.NoError(t, mock.ExpectationsWereMet())
}
