// AngelaMos | 2026
// migrate.go

package database

import (
	"context"
	"database/sql"
	"embed"
	"fmt"
	"log/slog"
	"os"
	"strings"
	"sync"

	"github.com/pressly/goose/v3"
)

//go:embed migrations/*.sql
var migrations embed.FS

const migrationsDir = "migrations"

// goose keeps its base FS and dialect in package globals.
var gooseMu sync.Mutex

var gooseUp = func(
	ctx context.Context,
	db *sql.DB,
	dir string,
	opts ...goose.OptionsFunc,
) error {
	return goose.UpContext(ctx, db, dir, opts...)
}

// Migrate applies every embedded migration that has not run yet.
func Migrate(ctx context.Context, db *sql.DB) error {
	gooseMu.Lock()
	defer gooseMu.Unlock()

	goose.SetBaseFS(migrations)
	goose.SetLogger(gooseLogger{})
	if err := goose.SetDialect("postgres"); err != nil {
		return fmt.Errorf("set migration dialect: %w", err)
	}

	if err := gooseUp(ctx, db, migrationsDir); err != nil {
		return fmt.Errorf("run migrations: %w", err)
	}

	return nil
}

type gooseLogger struct{}

func (gooseLogger) Printf(format string, v ...any) {
	slog.Info(strings.TrimSpace(fmt.Sprintf(format, v...)), "component", "migrations")
}

func (gooseLogger) Fatalf(format string, v ...any) {
	slog.Error(strings.TrimSpace(fmt.Sprintf(format, v...)), "component", "migrations")
	os.Exit(1)
}

// Seeder creates the default accounts. user.Service satisfies it.
type Seeder interface {
	SeedDefaultUsers(ctx context.Context) (int, error)
}

type InitResult struct {
	Migrated    bool `json:"migrated"`
	SeededUsers int  `json:"seeded_users"`
}

// Initializer brings an empty or outdated database up to date.
type Initializer struct {
	db      *sql.DB
	seeder  Seeder
	migrate func(ctx context.Context, db *sql.DB) error
}

func NewInitializer(db *sql.DB, seeder Seeder) *Initializer {
	return &Initializer{db: db, seeder: seeder, migrate: Migrate}
}

func (i *Initializer) Run(ctx context.Context, seed bool) (*InitResult, error) {
	if err := i.migrate(ctx, i.db); err != nil {
		return nil, err
	}

	result := &InitResult{Migrated: true}
	if !seed || i.seeder == nil {
		return result, nil
	}

	n, err := i.seeder.SeedDefaultUsers(ctx)
	if err != nil {
		return result, fmt.Errorf("seed users: %w", err)
	}
	result.SeededUsers = n

	return result, nil
}
