//go:build integration

package store

import (
	"context"
	"fmt"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"
	pgdriver "gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/pushcola/coupon-indexer/internal/store/schema"
)

var testDB *gorm.DB

// TestMain runs the store suite against COUPON_INDEXER_TEST_DSN when set,
// otherwise against a throwaway postgres container.
func TestMain(m *testing.M) {
	os.Exit(runWithDatabase(m))
}

func runWithDatabase(m *testing.M) int {
	ctx := context.Background()

	dsn, stop, err := testDSN(ctx)
	if err != nil {
		fmt.Fprintf(os.Stderr, "store: %v\n", err)
		return 1
	}
	defer stop()

	testDB, err = gorm.Open(pgdriver.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "store: open database: %v\n", err)
		return 1
	}
	if err := Migrate(testDB); err != nil {
		fmt.Fprintf(os.Stderr, "store: migrate: %v\n", err)
		return 1
	}

	return m.Run()
}

func testDSN(ctx context.Context) (string, func(), error) {
	if dsn := os.Getenv("COUPON_INDEXER_TEST_DSN"); dsn != "" {
		return dsn, func() {}, nil
	}

	container, err := postgres.Run(ctx,
		"postgres:18-alpine",
		postgres.WithDatabase("coupon_indexer_test"),
		postgres.WithUsername("postgres"),
		postgres.WithPassword("postgres"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(30*time.Second)),
	)
	if err != nil {
		return "", nil, fmt.Errorf("start postgres container: %w", err)
	}
	stop := func() {
		if err := container.Terminate(ctx); err != nil {
			fmt.Fprintf(os.Stderr, "store: terminate container: %v\n", err)
		}
	}

	dsn, err := container.ConnectionString(ctx, "sslmode=disable")
	if err != nil {
		stop()
		return "", nil, fmt.Errorf("container connection string: %w", err)
	}
	return dsn, stop, nil
}

// truncateAll empties every table so each test starts from a clean database
func truncateAll(t *testing.T) Store {
	for _, model := range schema.Models() {
		stmt := &gorm.Statement{DB: testDB}
		require.NoError(t, stmt.Parse(model))
		require.NoError(t, testDB.Exec(fmt.Sprintf("TRUNCATE TABLE %s", stmt.Schema.Table)).Error)
	}

	return NewPGStore(testDB)
}

func TestPostgreSQLStore(t *testing.T) {
	require.NotNil(t, testDB, "test database not initialized")

	RunStoreTests(t, truncateAll)
}
