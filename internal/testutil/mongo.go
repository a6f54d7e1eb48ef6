package testutil

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"
)

const mongoImage = "mongo:7"

// MongoContainer wraps a MongoDB server container for testing.
type MongoContainer struct {
	container testcontainers.Container
	uri       string
}

// NewMongoContainer creates and starts a new MongoDB container.
func NewMongoContainer(ctx context.Context, t *testing.T) (*MongoContainer, error) {
	t.Helper()

	container, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: testcontainers.ContainerRequest{
			Image:        mongoImage,
			ExposedPorts: []string{"27017/tcp"},
			WaitingFor: wait.ForLog("Waiting for connections").
				WithStartupTimeout(2 * time.Minute),
		},
		Started: true,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to start MongoDB container: %w", err)
	}

	host, err := container.Host(ctx)
	if err != nil {
		_ = container.Terminate(ctx)
		return nil, fmt.Errorf("failed to get container host: %w", err)
	}

	port, err := container.MappedPort(ctx, "27017/tcp")
	if err != nil {
		_ = container.Terminate(ctx)
		return nil, fmt.Errorf("failed to get container port: %w", err)
	}

	return &MongoContainer{
		container: container,
		uri:       fmt.Sprintf("mongodb://%s:%s", host, port.Port()),
	}, nil
}

// URI returns the connection string of the MongoDB server.
func (c *MongoContainer) URI() string {
	return c.uri
}

// Terminate stops and removes the MongoDB container.
func (c *MongoContainer) Terminate(ctx context.Context) error {
	if c.container != nil {
		if err := c.container.Terminate(ctx); err != nil {
			return fmt.Errorf("failed to terminate container: %w", err)
		}
	}
	return nil
}

// SetupMongoTest starts MongoDB for a test and registers its cleanup.
// It skips the test in short mode.
func SetupMongoTest(t *testing.T) *MongoContainer {
	t.Helper()

	if testing.Short() {
		t.Skip("Skipping integration test in short mode")
	}

	ctx := context.Background()
	c, err := NewMongoContainer(ctx, t)
	if err != nil {
		t.Fatalf("Failed to create MongoDB container: %v", err)
	}
	t.Cleanup(func() {
		if err := c.Terminate(context.Background()); err != nil {
			t.Logf("Failed to terminate MongoDB container: %v", err)
		}
	})
	return c
}
