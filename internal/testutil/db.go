// internal/testutil/db.go
package testutil

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/St1cky1/task-tracker/internal/infrastructure/client"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"
)

const (
	testDBUser     = "tracker"
	testDBPassword = "tracker"
	testDBName     = "tracker_test"
)

// TestDB holds the test database pool and container
type TestDB struct {
	Pool      *pgxpool.Pool
	container testcontainers.Container
}

// SetupTestDB starts a PostgreSQL container, applies migrations and returns a connected pool.
// The test is skipped in -short mode or when Docker is not available.
func SetupTestDB(t *testing.T, migrationsURL string) *TestDB {
	t.Helper()
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}
	ctx := context.Background()

	req := testcontainers.ContainerRequest{
		Image:        "postgres:15",
		ExposedPorts: []string{"5432/tcp"},
		Env: map[string]string{
			"POSTGRES_USER":     testDBUser,
			"POSTGRES_PASSWORD": testDBPassword,
			"POSTGRES_DB":       testDBName,
		},
		WaitingFor: wait.ForListeningPort("5432/tcp").WithStartupTimeout(60 * time.Second),
	}

	pgContainer, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: req,
		Started:          true,
	})
	if err != nil {
		t.Skipf("PostgreSQL container is not available: %v", err)
	}

	host, err := pgContainer.Host(ctx)
	if err != nil {
		terminate(t, pgContainer)
		t.Fatal(err)
	}
	port, err := pgContainer.MappedPort(ctx, "5432")
	if err != nil {
		terminate(t, pgContainer)
		t.Fatal(err)
	}

	connStr := fmt.Sprintf("postgres://%s:%s@%s:%s/%s?sslmode=disable",
		testDBUser, testDBPassword, host, port.Port(), testDBName)

	// Wait for DB to be ready
	var pg *client.PostgresClient
	for i := 0; i < 10; i++ {
		pg, err = client.NewPostgresClient(ctx, connStr)
		if err == nil {
			break
		}
		time.Sleep(500 * time.Millisecond)
	}
	if err != nil {
		terminate(t, pgContainer)
		t.Fatalf("Failed to connect to test DB after retries: %v", err)
	}

	if err := client.RunMigrations(migrationsURL, connStr); err != nil {
		pg.Close()
		terminate(t, pgContainer)
		t.Fatalf("Failed to apply migrations: %v", err)
	}

	return &TestDB{
		Pool:      pg.Pool,
		container: pgContainer,
	}
}

// Teardown closes the pool and terminates the container
func (td *TestDB) Teardown(t *testing.T) {
	td.Pool.Close()
	terminate(t, td.container)
}

// Truncate empties all tables between test cases
func (td *TestDB) Truncate(t *testing.T) {
	t.Helper()
	_, err := td.Pool.Exec(context.Background(),
		`TRUNCATE employee_avatar, tasks, users, employees RESTART IDENTITY CASCADE`)
	if err != nil {
		t.Fatalf("Failed to truncate tables: %v", err)
	}
}

func terminate(t *testing.T, c testcontainers.Container) {
	if err := c.Terminate(context.Background()); err != nil {
		t.Fatalf("Failed to terminate container: %v", err)
	}
}
