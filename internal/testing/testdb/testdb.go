// Package testdb spins up isolated SurrealDB environments for tests that
// need a real database. Every call to New gets its own namespace with the
// schema migrations applied, so tests can run in parallel without seeing
// each other's rows.
//
//	tdb := testdb.New(t)
//	defer tdb.Close()
//
//	repo := repository.NewPostRepository(tdb.DB)
package testdb

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/forgo/inkwell/internal/database"
)

// TestDB wraps a live database connection scoped to a throwaway namespace.
type TestDB struct {
	DB        database.Database
	Namespace string
	Database  string
}

// Schema statements are read from disk once per test binary.
var (
	schemaOnce sync.Once
	schema     []string
	schemaErr  error
)

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func testConfig() database.Config {
	return database.Config{
		Host:     envOr("TEST_DB_HOST", "localhost"),
		Port:     envOr("TEST_DB_PORT", "8000"),
		User:     envOr("TEST_DB_USER", "root"),
		Password: envOr("TEST_DB_PASSWORD", "root"),
	}
}

// freshNamespace returns a namespace name no other test will pick.
// SurrealDB identifiers cannot contain hyphens, so the UUID is flattened.
func freshNamespace() string {
	return "test_" + strings.ReplaceAll(uuid.NewString(), "-", "")
}

// migrationsDir walks up from the working directory until it finds the
// migrations folder. INKWELL_ROOT overrides the search when tests run from
// an unusual location, such as an IDE test runner.
func migrationsDir() (string, error) {
	if root := os.Getenv("INKWELL_ROOT"); root != "" {
		return filepath.Join(root, "migrations"), nil
	}

	dir := "migrations"
	for i := 0; i < 5; i++ {
		if info, err := os.Stat(dir); err == nil && info.IsDir() {
			return dir, nil
		}
		dir = filepath.Join("..", dir)
	}
	return "", fmt.Errorf("migrations directory not found; set INKWELL_ROOT")
}

// loadSchema reads every numbered .surql migration in lexical order.
// seed.surql carries demo content, not schema, and is skipped.
func loadSchema() ([]string, error) {
	schemaOnce.Do(func() {
		dir, err := migrationsDir()
		if err != nil {
			schemaErr = err
			return
		}

		entries, err := os.ReadDir(dir)
		if err != nil {
			schemaErr = fmt.Errorf("reading %s: %w", dir, err)
			return
		}

		var names []string
		for _, e := range entries {
			if strings.HasSuffix(e.Name(), ".surql") && e.Name() != "seed.surql" {
				names = append(names, e.Name())
			}
		}
		sort.Strings(names)

		for _, name := range names {
			content, err := os.ReadFile(filepath.Join(dir, name))
			if err != nil {
				schemaErr = fmt.Errorf("reading %s: %w", name, err)
				return
			}
			schema = append(schema, string(content))
		}
	})

	return schema, schemaErr
}

// New connects to the test database, switches to a fresh namespace, and
// applies the schema. It fails the test if the database is unreachable.
func New(t *testing.T) *TestDB {
	t.Helper()

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	cfg := testConfig()
	cfg.Namespace = freshNamespace()
	cfg.Database = "inkwell"

	db := database.NewSurrealDB(cfg)
	if err := db.Connect(ctx); err != nil {
		t.Fatalf("testdb: connect: %v", err)
	}

	stmts, err := loadSchema()
	if err != nil {
		db.Close()
		t.Fatalf("testdb: %v", err)
	}
	for i, stmt := range stmts {
		if err := db.Execute(ctx, stmt, nil); err != nil {
			db.Close()
			t.Fatalf("testdb: applying migration %d: %v", i+1, err)
		}
	}

	return &TestDB{
		DB:        db,
		Namespace: cfg.Namespace,
		Database:  cfg.Database,
	}
}

// Close drops the test namespace and disconnects. Cleanup failures are
// ignored: the namespace name is unique and will never be reused anyway.
func (tdb *TestDB) Close() {
	if tdb.DB == nil {
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	_ = tdb.DB.Execute(ctx, "REMOVE NAMESPACE "+tdb.Namespace, nil)
	tdb.DB.Close()
}
