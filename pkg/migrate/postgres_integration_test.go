package migrate

import (
	"context"
	"os"
	"testing"

	"github.com/angelmondragon/storefront-backend/pkg/config"
	"github.com/angelmondragon/storefront-backend/pkg/db"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
)

func TestMigrationsOnPostgres(t *testing.T) {
	if testing.Short() || os.Getenv("STOREFRONT_INTEGRATION") == "" {
		t.Skip("set STOREFRONT_INTEGRATION=1 to run container-backed tests")
	}

	ctx := context.Background()
	pgContainer, err := postgres.Run(ctx, "postgres:17.6-alpine3.22",
		postgres.WithDatabase("storefront"),
		postgres.WithUsername("storefront"),
		postgres.WithPassword("storefront"),
		postgres.BasicWaitStrategies(),
	)
	testcontainers.CleanupContainer(t, pgContainer)
	require.NoError(t, err)

	dsn, err := pgContainer.ConnectionString(ctx, "sslmode=disable")
	require.NoError(t, err)

	client, err := db.New(ctx, config.DBConfig{Driver: config.DriverPostgres, DSN: dsn}, nil)
	require.NoError(t, err)
	t.Cleanup(func() { _ = client.Close() })

	sqlDB, err := client.DB().DB()
	require.NoError(t, err)

	require.NoError(t, Run(ctx, sqlDB, DialectPostgres, migrationsDir, "up"))

	_, err = sqlDB.ExecContext(ctx, `INSERT INTO payment_events (id, payment_id, status) VALUES (gen_random_uuid(), 42, 'approved')`)
	require.NoError(t, err)
	_, err = sqlDB.ExecContext(ctx, `INSERT INTO payment_events (id, payment_id, status) VALUES (gen_random_uuid(), 42, 'approved')`)
	require.True(t, db.IsUniqueViolation(err, "payment_events_payment_status_key"), "got %v", err)

	require.NoError(t, Run(ctx, sqlDB, DialectPostgres, migrationsDir, "reset"))
}
