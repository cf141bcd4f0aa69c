//go:build integration

package repository

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/ipede/album-catalog/internal/domain"
	"github.com/ipede/album-catalog/internal/infrastructure/database"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"
	"go.uber.org/zap"
)

// setupTestContainerWithMigrations starts PostgreSQL and applies the SQL migrations
func setupTestContainerWithMigrations(t *testing.T) *database.Postgres {
	ctx := context.Background()

	req := testcontainers.ContainerRequest{
		Image:        "postgres:15-alpine",
		ExposedPorts: []string{"5432/tcp"},
		Env: map[string]string{
			"POSTGRES_USER":     "test",
			"POSTGRES_PASSWORD": "test",
			"POSTGRES_DB":       "test",
		},
		WaitingFor: wait.ForAll(
			wait.ForLog("database system is ready to accept connections").WithOccurrence(2),
			wait.ForListeningPort("5432/tcp"),
		),
	}

	container, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: req,
		Started:          true,
	})
	require.NoError(t, err)
	t.Cleanup(func() {
		_ = container.Terminate(ctx)
	})

	host, err := container.Host(ctx)
	require.NoError(t, err)
	port, err := container.MappedPort(ctx, "5432")
	require.NoError(t, err)

	dbURL := fmt.Sprintf("postgres://test:test@%s:%s/test?sslmode=disable", host, port.Port())

	var db *database.Postgres
	for i := 0; i < 10; i++ {
		db, err = database.Connect(ctx, dbURL, zap.NewNop())
		if err == nil {
			break
		}
		time.Sleep(time.Second)
	}
	require.NoError(t, err)
	t.Cleanup(db.Close)

	require.NoError(t, database.RunMigrations(dbURL, "../../../migrations", zap.NewNop()))
	return db
}

func TestUserRepository(t *testing.T) {
	db := setupTestContainerWithMigrations(t)
	repo := NewUserRepository(db, zap.NewNop())
	ctx := context.Background()

	alice := domain.NewUser("alice", "hash-a", []string{domain.RoleUser, domain.RoleAdmin})
	require.NoError(t, repo.Create(ctx, alice))

	t.Run("find by username", func(t *testing.T) {
		found, err := repo.FindByUsername(ctx, "alice")
		require.NoError(t, err)
		assert.Equal(t, alice.ID, found.ID)
		assert.Equal(t, "hash-a", found.Password)
		assert.Equal(t, []string{domain.RoleUser, domain.RoleAdmin}, found.Roles)
		assert.True(t, found.Active)
	})

	t.Run("unknown username", func(t *testing.T) {
		_, err := repo.FindByUsername(ctx, "nobody")
		assert.ErrorIs(t, err, domain.ErrUserNotFound)
	})

	t.Run("duplicate username", func(t *testing.T) {
		err := repo.Create(ctx, domain.NewUser("alice", "hash-b", nil))
		assert.ErrorIs(t, err, domain.ErrUserAlreadyExists)
	})

	t.Run("exists by username", func(t *testing.T) {
		exists, err := repo.ExistsByUsername(ctx, "alice")
		require.NoError(t, err)
		assert.True(t, exists)

		exists, err = repo.ExistsByUsername(ctx, "nobody")
		require.NoError(t, err)
		assert.False(t, exists)
	})

	t.Run("list", func(t *testing.T) {
		require.NoError(t, repo.Create(ctx, domain.NewUser("bob", "hash-b", nil)))

		users, err := repo.List(ctx, 10, 0)
		require.NoError(t, err)
		require.Len(t, users, 2)
		for _, u := range users {
			assert.Empty(t, u.Password)
		}

		users, err = repo.List(ctx, 1, 1)
		require.NoError(t, err)
		assert.Len(t, users, 1)
	})
}
