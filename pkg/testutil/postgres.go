package testutil

import (
	"context"
	"io/fs"
	"testing"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"

	pkgpostgres "github.com/letsema/mfi/pkg/postgres"
)

// PostgresContainer is a throwaway PostgreSQL instance with an open pool.
type PostgresContainer struct {
	Container *postgres.PostgresContainer
	Pool      *pgxpool.Pool
	DSN       string
}

// NewPostgresContainer starts PostgreSQL and applies the migrations found
// under dir in migrations. Cleanup is registered on t.
func NewPostgresContainer(ctx context.Context, t *testing.T, migrations fs.FS, dir string) *PostgresContainer {
	t.Helper()

	c, err := postgres.Run(ctx,
		"postgres:16-alpine",
		postgres.WithDatabase("letsema_mfi"),
		postgres.WithUsername("letsema"),
		postgres.WithPassword("letsema"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(60*time.Second),
		),
	)
	if err != nil {
		t.Fatalf("start postgres container: %v", err)
	}

	pc := &PostgresContainer{Container: c}
	t.Cleanup(func() { pc.terminate(t) })

	pc.DSN, err = c.ConnectionString(ctx, "sslmode=disable")
	if err != nil {
		t.Fatalf("postgres connection string: %v", err)
	}

	if err := pkgpostgres.RunMigrations(pc.DSN, migrations, dir); err != nil {
		t.Fatalf("apply migrations: %v", err)
	}

	pc.Pool, err = pgxpool.New(ctx, pc.DSN)
	if err != nil {
		t.Fatalf("open pool: %v", err)
	}
	return pc
}

func (pc *PostgresContainer) terminate(t *testing.T) {
	t.Helper()
	if pc.Pool != nil {
		pc.Pool.Close()
	}
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := pc.Container.Terminate(ctx); err != nil {
		t.Logf("terminate postgres container: %v", err)
	}
}
