package testutil

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"
)

const (
	postgresImage    = "postgres:16-alpine"
	postgresUser     = "bibliothek"
	postgresPassword = "bibliothek"
)

// PostgresContainer wraps a PostgreSQL server container for testing.
type PostgresContainer struct {
	container testcontainers.Container
	host      string
	port      string
}

// NewPostgresContainer creates and starts a new PostgreSQL container.
func NewPostgresContainer(ctx context.Context, t *testing.T) (*PostgresContainer, error) {
	t.Helper()

	container, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: testcontainers.ContainerRequest{
			Image:        postgresImage,
			ExposedPorts: []string{"5432/tcp"},
			Env: map[string]string{
				"POSTGRES_USER":     postgresUser,
				"POSTGRES_PASSWORD": postgresPassword,
				"POSTGRES_DB":       "postgres",
			},
			// The server restarts once after initdb.
			WaitingFor: wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(2 * time.Minute),
		},
		Started: true,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to start PostgreSQL container: %w", err)
	}

	host, err := container.Host(ctx)
	if err != nil {
		_ = container.Terminate(ctx)
		return nil, fmt.Errorf("failed to get container host: %w", err)
	}

	port, err := container.MappedPort(ctx, "5432/tcp")
	if err != nil {
		_ = container.Terminate(ctx)
		return nil, fmt.Errorf("failed to get container port: %w", err)
	}

	return &PostgresContainer{container: container, host: host, port: port.Port()}, nil
}

// DSN returns the connection string for database.
func (c *PostgresContainer) DSN(database string) string {
	return fmt.Sprintf("host=%s port=%s user=%s password=%s dbname=%s sslmode=disable",
		c.host, c.port, postgresUser, postgresPassword, database)
}

// Terminate stops and removes the PostgreSQL container.
func (c *PostgresContainer) Terminate(ctx context.Context) error {
	if c.container != nil {
		if err := c.container.Terminate(ctx); err != nil {
			return fmt.Errorf("failed to terminate container: %w", err)
		}
	}
	return nil
}

// SetupPostgresTest starts PostgreSQL for a test and registers its cleanup.
// It skips the test in short mode.
func SetupPostgresTest(t *testing.T) *PostgresContainer {
	t.Helper()

	if testing.Short() {
		t.Skip("Skipping integration test in short mode")
	}

	ctx := context.Background()
	c, err := NewPostgresContainer(ctx, t)
	if err != nil {
		t.Fatalf("Failed to create PostgreSQL container: %v", err)
	}
	t.Cleanup(func() {
		if err := c.Terminate(context.Background()); err != nil {
			t.Logf("Failed to terminate PostgreSQL container: %v", err)
		}
	})
	return c
}
