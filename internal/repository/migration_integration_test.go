//go:build integration

package repository

import (
	"context"
	"testing"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/murmur/murmur/internal/migrations"
	"github.com/murmur/murmur/internal/testutil"
)

// ============================================================================
// Migration Integration Tests
// ============================================================================

func TestIntegrationMigration_ApplyAllTables(t *testing.T) {
	ctx, pool := testutil.NewDatabase(t)

	for _, table := range []string{"users", "transcriptions", "goose_db_version"} {
		t.Run(table, func(t *testing.T) {
			exists, err := tableExists(ctx, pool, table)
			if err != nil {
				t.Fatalf("tableExists failed: %v", err)
			}
			if !exists {
				t.Errorf("Table %q should exist after migrations", table)
			}
		})
	}
}

func TestIntegrationMigration_TableColumns(t *testing.T) {
	ctx, pool := testutil.NewDatabase(t)

	expected := map[string][]string{
		"users":          {"id", "email", "password_hash", "created_at"},
		"transcriptions": {"id", "user_id", "text", "created_at"},
	}

	for table, cols := range expected {
		for _, col := range cols {
			t.Run(table+"."+col, func(t *testing.T) {
				exists, err := columnExists(ctx, pool, table, col)
				if err != nil {
					t.Fatalf("columnExists failed: %v", err)
				}
				if !exists {
					t.Errorf("Column %q should exist in %s table", col, table)
				}
			})
		}
	}
}

func TestIntegrationMigration_Constraints(t *testing.T) {
	ctx, pool := testutil.NewDatabase(t)

	_, err := pool.Exec(ctx, `INSERT INTO users (id, email, password_hash) VALUES ('u1', 'a@example.com', 'h')`)
	if err != nil {
		t.Fatalf("insert user: %v", err)
	}

	// email is unique
	_, err = pool.Exec(ctx, `INSERT INTO users (id, email, password_hash) VALUES ('u2', 'a@example.com', 'h')`)
	if !isUniqueViolation(err) {
		t.Errorf("expected unique violation for duplicate email, got %v", err)
	}

	// transcriptions reference users
	_, err = pool.Exec(ctx, `INSERT INTO transcriptions (id, user_id, text) VALUES ('t1', 'missing', 'x')`)
	if !hasCode(err, "23503") {
		t.Errorf("expected foreign key violation, got %v", err)
	}

	// text is required
	_, err = pool.Exec(ctx, `INSERT INTO transcriptions (id, user_id, text) VALUES ('t2', 'u1', NULL)`)
	if !hasCode(err, "23502") {
		t.Errorf("expected not null violation, got %v", err)
	}
}

func TestIntegrationMigration_HistoryIndex(t *testing.T) {
	ctx, pool := testutil.NewDatabase(t)

	var exists bool
	err := pool.QueryRow(ctx, `
		SELECT EXISTS (
			SELECT FROM pg_indexes
			WHERE schemaname = 'public'
			AND indexname = 'idx_transcriptions_user_created'
		)
	`).Scan(&exists)
	if err != nil {
		t.Fatalf("query index: %v", err)
	}
	if !exists {
		t.Error("history index should exist after migrations")
	}
}

func TestIntegrationMigration_Idempotency(t *testing.T) {
	ctx, pool := testutil.NewDatabase(t)
	dsn := testutil.RequireEnv(t, "DATABASE_URL")

	if err := migrations.Up(ctx, dsn); err != nil {
		t.Fatalf("second Up should be a no-op: %v", err)
	}

	// Reset drops and recreates the schema, so data does not survive.
	if _, err := pool.Exec(ctx, `INSERT INTO users (id, email, password_hash) VALUES ('u1', 'a@example.com', 'h')`); err != nil {
		t.Fatalf("insert user: %v", err)
	}
	if err := migrations.Reset(ctx, dsn); err != nil {
		t.Fatalf("reset: %v", err)
	}

	var count int
	if err := pool.QueryRow(ctx, `SELECT COUNT(*) FROM users`).Scan(&count); err != nil {
		t.Fatalf("count users: %v", err)
	}
	if count != 0 {
		t.Errorf("expected empty users table after reset, got %d rows", count)
	}
}

// ============================================================================
// Helper Functions
// ============================================================================

func tableExists(ctx context.Context, pool *pgxpool.Pool, tableName string) (bool, error) {
	var exists bool
	err := pool.QueryRow(ctx, `
		SELECT EXISTS (
			SELECT FROM information_schema.tables
			WHERE table_schema = 'public'
			AND table_name = $1
		)
	`, tableName).Scan(&exists)
	return exists, err
}

func columnExists(ctx context.Context, pool *pgxpool.Pool, tableName, columnName string) (bool, error) {
	var exists bool
	err := pool.QueryRow(ctx, `
		SELECT EXISTS (
			SELECT FROM information_schema.columns
			WHERE table_schema = 'public'
			AND table_name = $1
			AND column_name = $2
		)
	`, tableName, columnName).Scan(&exists)
	return exists, err
}
