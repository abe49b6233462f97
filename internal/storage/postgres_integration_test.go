//go:build integration

package storage

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"
)

func TestFeedbackRepository_Postgres(t *testing.T) {
	ctx := context.Background()

	container, err := postgres.Run(ctx,
		"postgres:16-alpine",
		postgres.WithDatabase("crime_analytics_test"),
		postgres.WithUsername("test"),
		postgres.WithPassword("test"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(60*time.Second),
		),
	)
	require.NoError(t, err)
	t.Cleanup(func() {
		if err := container.Terminate(ctx); err != nil {
			t.Logf("Failed to terminate postgres container: %v", err)
		}
	})

	dsn, err := container.ConnectionString(ctx, "sslmode=disable")
	require.NoError(t, err)

	db, err := Open(ctx, Config{Driver: DriverPostgres, DSN: dsn, MaxOpenConns: 4})
	require.NoError(t, err)
	defer db.Close()

	require.NoError(t, Migrate(ctx, db, DriverPostgres))
	// Migrations are repeatable.
	require.NoError(t, Migrate(ctx, db, DriverPostgres))

	repo := NewFeedbackRepository(db)
	fb := &Feedback{Name: "Meera", Email: "meera@example.org", Message: "Please add 2021 data"}
	require.NoError(t, repo.Create(ctx, fb))

	got, err := repo.GetByID(ctx, fb.ID)
	require.NoError(t, err)
	assert.Equal(t, fb.ID, got.ID)
	assert.Equal(t, fb.Message, got.Message)

	list, err := repo.List(ctx, 10)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, "Meera", list[0].Name)
}
