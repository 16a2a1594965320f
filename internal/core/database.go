// AngelaMos | 2026
// database.go

package core

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"math/rand/v2"
	"strings"
	"time"

	"github.com/jackc/pgx/v5/pgconn"
	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/jmoiron/sqlx"

	"github.com/carterperez-dev/invoice-manager/internal/config"
)

const (
	pgUniqueViolation     = "23505"
	pgForeignKeyViolation = "23503"
	pgNumericOutOfRange   = "22003"

	connectTimeout = 5 * time.Second
)

// Database wraps the sqlx pool opened through the pgx stdlib driver.
type Database struct {
	DB *sqlx.DB
}

func NewDatabase(ctx context.Context, cfg config.DatabaseConfig) (*Database, error) {
	db, err := sqlx.Open("pgx", cfg.URL)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	configurePool(db, cfg)

	d := &Database{DB: db}
	if err := d.Ping(ctx); err != nil {
		_ = db.Close() //nolint:errcheck // already failing
		return nil, err
	}
	return d, nil
}

func configurePool(db *sqlx.DB, cfg config.DatabaseConfig) {
	db.SetMaxOpenConns(cfg.MaxOpenConns)
	db.SetMaxIdleConns(cfg.MaxIdleConns)
	db.SetConnMaxIdleTime(cfg.ConnMaxIdleTime)
	// replicas of the API should not recycle their connections in lockstep
	db.SetConnMaxLifetime(jitteredDuration(cfg.ConnMaxLifetime))
}

func jitteredDuration(base time.Duration) time.Duration {
	if base <= 0 {
		return base
	}
	//nolint:gosec // G404: pool jitter, not security sensitive
	return base + time.Duration(rand.Int64N(int64(base/7)+1))
}

func (d *Database) Ping(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, connectTimeout)
	defer cancel()

	if err := d.DB.PingContext(ctx); err != nil {
		return fmt.Errorf("ping database: %w", err)
	}
	return nil
}

func (d *Database) Stats() sql.DBStats {
	return d.DB.Stats()
}

func (d *Database) Close() error {
	if d == nil || d.DB == nil {
		return nil
	}
	return d.DB.Close()
}

// DBTX lets repositories run against the pool or inside InTx.
type DBTX interface {
	sqlx.ExtContext
	GetContext(ctx context.Context, dest any, query string, args ...any) error
	SelectContext(ctx context.Context, dest any, query string, args ...any) error
}

// InTx commits when fn returns nil and rolls back otherwise, including on
// panic, which is re-raised after the rollback.
func InTx(ctx context.Context, db *sqlx.DB, fn func(tx *sqlx.Tx) error) (err error) {
	tx, err := db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}

	committed := false
	defer func() {
		if committed {
			return
		}
		if p := recover(); p != nil {
			_ = tx.Rollback() //nolint:errcheck // panicking anyway
			panic(p)
		}
		if rbErr := tx.Rollback(); rbErr != nil {
			err = fmt.Errorf("rollback failed: %w (original: %w)", rbErr, err)
		}
	}()

	if err = fn(tx); err != nil {
		return err
	}

	if err = tx.Commit(); err != nil {
		committed = true
		return fmt.Errorf("commit transaction: %w", err)
	}
	committed = true
	return nil
}

func IsDuplicateKeyError(err error) bool {
	return hasPgCode(err, pgUniqueViolation)
}

func IsForeignKeyError(err error) bool {
	return hasPgCode(err, pgForeignKeyViolation)
}

func IsNumericOverflowError(err error) bool {
	return hasPgCode(err, pgNumericOutOfRange)
}

func hasPgCode(err error, code string) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == code
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

// EscapeLike escapes the ILIKE wildcards in user supplied search text.
func EscapeLike(s string) string {
	return likeEscaper.Replace(s)
}
