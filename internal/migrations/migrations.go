// Package migrations embeds the database schema and applies it with goose.
package migrations

import (
	"context"
	"database/sql"
	"embed"
	"fmt"

	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/pressly/goose/v3"
)

//go:embed *.sql
var FS embed.FS

// Up applies all pending migrations to the database at databaseURL.
func Up(ctx context.Context, databaseURL string) error {
	return run(ctx, databaseURL, func(db *sql.DB) error {
		return goose.UpContext(ctx, db, ".")
	})
}

// Reset rolls every migration back and applies them again.
// Intended for integration tests.
func Reset(ctx context.Context, databaseURL string) error {
	return run(ctx, databaseURL, func(db *sql.DB) error {
		if err := goose.ResetContext(ctx, db, "."); err != nil {
			return err
		}
		return goose.UpContext(ctx, db, ".")
	})
}

func run(ctx context.Context, databaseURL string, fn func(db *sql.DB) error) error {
	db, err := sql.Open("pgx", databaseURL)
	if err != nil {
		return fmt.Errorf("open database: %w", err)
	}
	defer db.Close()

	if err := db.PingContext(ctx); err != nil {
		return fmt.Errorf("ping database: %w", err)
	}

	goose.SetBaseFS(FS)
	if err := goose.SetDialect("postgres"); err != nil {
		return fmt.Errorf("set dialect: %w", err)
	}

	if err := fn(db); err != nil {
		return fmt.Errorf("migrate: %w", err)
	}
	return nil
}
