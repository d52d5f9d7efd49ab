package testutil

import (
	"context"
	"os"
	"testing"

	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"

	"github.com/udisondev/itemcode/internal/stash"
)

// DBAddrEnv points tests at an existing PostgreSQL instead of a testcontainer.
const DBAddrEnv = "DB_ADDR"

// SetupTestDB возвращает DSN мигрированной PostgreSQL базы.
// Если задан DB_ADDR — использует его, иначе поднимает testcontainer
// (модуль postgres с BasicWaitStrategies: log occurrence(2) + port check).
// В -short режиме тест пропускается.
func SetupTestDB(tb testing.TB) string {
	tb.Helper()
	if testing.Short() {
		tb.Skip("skipping PostgreSQL test in short mode")
	}
	ctx := context.Background()

	dsn := os.Getenv(DBAddrEnv)
	if dsn == "" {
		container, err := postgres.Run(ctx,
			"postgres:16-alpine",
			postgres.WithDatabase("testdb"),
			postgres.WithUsername("test"),
			postgres.WithPassword("test"),
			postgres.BasicWaitStrategies(),
		)
		if err != nil {
			tb.Fatalf("starting postgres container: %v", err)
		}
		tb.Cleanup(func() {
			if err := testcontainers.TerminateContainer(container); err != nil {
				tb.Logf("terminating postgres container: %v", err)
			}
		})

		dsn, err = container.ConnectionString(ctx, "sslmode=disable")
		if err != nil {
			tb.Fatalf("getting connection string: %v", err)
		}
	}

	if err := stash.Migrate(ctx, dsn); err != nil {
		tb.Fatalf("running migrations: %v", err)
	}
	return dsn
}
