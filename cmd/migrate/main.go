package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/joho/godotenv"

	"github.com/afrigis/user-feedback/internal/logging"
	"github.com/afrigis/user-feedback/internal/repository"
)

func usage() {
	fmt.Fprintln(os.Stderr, `Usage: migrate [command]

Commands:
  (default)   apply pending migrations
  down        roll back the most recently applied migration
  status      list migrations and whether they are applied
  reset       drop every table and recreate from the consolidated schema
  fresh       drop every table and apply all migrations in order`)
	os.Exit(1)
}

func main() {
	_ = godotenv.Load()
	_ = godotenv.Load("../.env")
	logging.Setup(os.Getenv("LOG_LEVEL"))

	dbURL := os.Getenv("DATABASE_URL")
	if dbURL == "" {
		logging.Fatal("DATABASE_URL must be set")
	}

	ctx := context.Background()
	pool, err := repository.NewPool(ctx, dbURL)
	if err != nil {
		logging.Fatal("connect failed", "error", err)
	}
	defer pool.Close()

	m := &migrator{pool: pool, dir: findMigrationDir()}

	cmd := ""
	if len(os.Args) > 1 {
		cmd = os.Args[1]
	}

	switch cmd {
	case "":
		err = m.up(ctx)
	case "down":
		err = m.down(ctx)
	case "status":
		err = m.status(ctx)
	case "reset":
		if err = m.runFile(ctx, "000_drop_all.sql"); err == nil {
			err = m.consolidated(ctx)
		}
	case "fresh":
		if err = m.runFile(ctx, "000_drop_all.sql"); err == nil {
			err = m.up(ctx)
		}
	default:
		usage()
	}
	if err != nil {
		pool.Close()
		logging.Fatal("migrate failed", "command", cmd, "error", err)
	}
}

func findMigrationDir() string {
	dir := "migrations"
	if _, err := os.Stat(dir); os.IsNotExist(err) {
		dir = "../migrations"
	}
	return dir
}

type migrator struct {
	pool *pgxpool.Pool
	dir  string
}

// upFiles returns migration names (without the .up.sql suffix) in order.
func upFiles(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("read migrations dir: %w", err)
	}
	var names []string
	for _, e := range entries {
		if !e.IsDir() && strings.HasSuffix(e.Name(), ".up.sql") {
			names = append(names, strings.TrimSuffix(e.Name(), ".up.sql"))
		}
	}
	sort.Strings(names)
	return names, nil
}

// pending keeps the names not present in applied, preserving order.
func pending(names []string, applied map[string]bool) []string {
	var out []string
	for _, n := range names {
		if !applied[n] {
			out = append(out, n)
		}
	}
	return out
}

func (m *migrator) ensureTable(ctx context.Context) error {
	_, err := m.pool.Exec(ctx, `CREATE TABLE IF NOT EXISTS schema_migrations (
		name TEXT PRIMARY KEY,
		applied_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
	)`)
	return err
}

func (m *migrator) applied(ctx context.Context) (map[string]bool, error) {
	if err := m.ensureTable(ctx); err != nil {
		return nil, err
	}
	rows, err := m.pool.Query(ctx, "SELECT name FROM schema_migrations")
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	applied := make(map[string]bool)
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, err
		}
		applied[name] = true
	}
	return applied, rows.Err()
}

func (m *migrator) up(ctx context.Context) error {
	names, err := upFiles(m.dir)
	if err != nil {
		return err
	}
	applied, err := m.applied(ctx)
	if err != nil {
		return err
	}

	todo := pending(names, applied)
	for _, name := range todo {
		if err := m.runFile(ctx, name+".up.sql"); err != nil {
			return fmt.Errorf("migration %s: %w", name, err)
		}
		if _, err := m.pool.Exec(ctx, "INSERT INTO schema_migrations (name) VALUES ($1)", name); err != nil {
			return fmt.Errorf("record migration %s: %w", name, err)
		}
		slog.Info("migration completed", "migration", name)
	}

	if len(todo) == 0 {
		slog.Info("all migrations already applied")
	} else {
		slog.Info("migrations completed", "count", len(todo))
	}
	return nil
}

func (m *migrator) down(ctx context.Context) error {
	if err := m.ensureTable(ctx); err != nil {
		return err
	}
	var name string
	err := m.pool.QueryRow(ctx, "SELECT name FROM schema_migrations ORDER BY name DESC LIMIT 1").Scan(&name)
	if err != nil {
		return errors.New("no applied migrations")
	}
	if err := m.runFile(ctx, name+".down.sql"); err != nil {
		return fmt.Errorf("rollback %s: %w", name, err)
	}
	if _, err := m.pool.Exec(ctx, "DELETE FROM schema_migrations WHERE name=$1", name); err != nil {
		return err
	}
	slog.Info("migration rolled back", "migration", name)
	return nil
}

func (m *migrator) status(ctx context.Context) error {
	names, err := upFiles(m.dir)
	if err != nil {
		return err
	}
	applied, err := m.applied(ctx)
	if err != nil {
		return err
	}
	for _, n := range names {
		slog.Info("migration", "name", n, "applied", applied[n])
	}
	return nil
}

// consolidated applies 000_consolidated.sql and marks every migration as applied.
func (m *migrator) consolidated(ctx context.Context) error {
	if err := m.runFile(ctx, "000_consolidated.sql"); err != nil {
		return err
	}
	if err := m.ensureTable(ctx); err != nil {
		return err
	}
	names, err := upFiles(m.dir)
	if err != nil {
		return err
	}
	for _, n := range names {
		if _, err := m.pool.Exec(ctx, "INSERT INTO schema_migrations (name) VALUES ($1) ON CONFLICT DO NOTHING", n); err != nil {
			return err
		}
	}
	slog.Info("consolidated schema applied", "migrations_marked", len(names))
	return nil
}

func (m *migrator) runFile(ctx context.Context, filename string) error {
	sql, err := os.ReadFile(filepath.Join(m.dir, filename))
	if err != nil {
		return err
	}
	_, err = m.pool.Exec(ctx, string(sql))
	return err
}
