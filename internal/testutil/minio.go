// Package testutil provides container-backed integration test utilities.
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
	minioImage     = "minio/minio:latest"
	minioAccessKey = "minioadmin"
	minioSecretKey = "minioadmin"
)

// MinioContainer wraps a MinIO server container for testing.
type MinioContainer struct {
	container testcontainers.Container
	endpoint  string
}

// NewMinioContainer creates and starts a new MinIO container.
func NewMinioContainer(ctx context.Context, t *testing.T) (*MinioContainer, error) {
	t.Helper()

	container, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: testcontainers.ContainerRequest{
			Image:        minioImage,
			ExposedPorts: []string{"9000/tcp"},
			Cmd:          []string{"server", "/data"},
			Env: map[string]string{
				"MINIO_ROOT_USER":     minioAccessKey,
				"MINIO_ROOT_PASSWORD": minioSecretKey,
			},
			WaitingFor: wait.ForHTTP("/minio/health/live").
				WithPort("9000/tcp").
				WithStartupTimeout(2 * time.Minute),
		},
		Started: true,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to start MinIO container: %w", err)
	}

	host, err := container.Host(ctx)
	if err != nil {
		_ = container.Terminate(ctx)
		return nil, fmt.Errorf("failed to get container host: %w", err)
	}

	port, err := container.MappedPort(ctx, "9000/tcp")
	if err != nil {
		_ = container.Terminate(ctx)
		return nil, fmt.Errorf("failed to get container port: %w", err)
	}

	return &MinioContainer{
		container: container,
		endpoint:  fmt.Sprintf("%s:%s", host, port.Port()),
	}, nil
}

// Endpoint returns the host:port of the MinIO server.
func (c *MinioContainer) Endpoint() string {
	return c.endpoint
}

// Credentials returns the root access and secret keys.
func (c *MinioContainer) Credentials() (accessKey, secretKey string) {
	return minioAccessKey, minioSecretKey
}

// Terminate stops and removes the MinIO container.
func (c *MinioContainer) Terminate(ctx context.Context) error {
	if c.container != nil {
		if err := c.container.Terminate(ctx); err != nil {
			return fmt.Errorf("failed to terminate container: %w", err)
		}
	}
	return nil
}

// SetupMinioTest starts MinIO for a test and registers its cleanup.
// It skips the test in short mode.
func SetupMinioTest(t *testing.T) *MinioContainer {
	t.Helper()

	if testing.Short() {
		t.Skip("Skipping integration test in short mode")
	}

	ctx := context.Background()
	c, err := NewMinioContainer(ctx, t)
	if err != nil {
		t.Fatalf("Failed to create MinIO container: %v", err)
	}
	t.Cleanup(func() {
		if err := c.Terminate(context.Background()); err != nil {
			t.Logf("Failed to terminate MinIO container: %v", err)
		}
	})
	return c
}
