package db

import (
	"context"
	"flag"
	"log"
	"os"
	"testing"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
)

// testPool is shared by every test in the package; nil in -short mode.
var testPool *pgxpool.Pool

func TestMain(m *testing.M) {
	flag.Parse()
	if testing.Short() {
		os.Exit(m.Run())
	}

	ctx := context.Background()
	container, err := postgres.Run(ctx,
		"postgres:16-alpine",
		postgres.WithDatabase("testdb"),
		postgres.WithUsername("test"),
		postgres.WithPassword("test"),
		postgres.BasicWaitStrategies(),
	)
	if err != nil {
		log.Fatalf("starting postgres container: %v", err)
	}

	code := run(ctx, m, container)
	if err := testcontainers.TerminateContainer(container); err != nil {
		log.Printf("terminating postgres container: %v", err)
	}
	os.Exit(code)
}

func run(ctx context.Context, m *testing.M, container *postgres.PostgresContainer) int {
	dsn, err := container.ConnectionString(ctx, "sslmode=disable")
	if err != nil {
		log.Printf("getting connection string: %v", err)
		return 1
	}
	if _, err := RunMigrations(ctx, dsn); err != nil {
		log.Printf("running migrations: %v", err)
		return 1
	}

	d, err := New(ctx, dsn)
	if err != nil {
		log.Printf("connecting to test db: %v", err)
		return 1
	}
	defer d.Close()
	testPool = d.Pool()

	return m.Run()
}

// setupTestDB returns the shared pool with empty tables.
func setupTestDB(tb testing.TB) *pgxpool.Pool {
	tb.Helper()
	if testPool == nil {
		tb.Skip("database tests need a postgres container; run without -short")
	}
	if _, err := testPool.Exec(context.Background(), "TRUNCATE crafting_plans CASCADE"); err != nil {
		tb.Fatalf("truncating plans: %v", err)
	}
	return testPool
}
