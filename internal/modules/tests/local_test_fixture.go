package tests

import (
	"context"
	"fmt"
	"os"
	"sync"
	"testing"
	"time"

	sqlmigration "github.com/dibaihss/serverless-api-Azure-Ludo/internal/sql-migrations"
	"github.com/dibaihss/serverless-api-Azure-Ludo/internal/modules/env"

	"github.com/docker/go-connections/nat"
	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
	"github.com/redis/go-redis/v9"
	"github.com/testcontainers/testcontainers-go"
	tcpostgres "github.com/testcontainers/testcontainers-go/modules/postgres"
	tcredis "github.com/testcontainers/testcontainers-go/modules/redis"
	"github.com/testcontainers/testcontainers-go/wait"
	"go.uber.org/zap"
)

const (
	postgresImage = "postgres:16-alpine"
	redisImage    = "redis:7-alpine"
)

type FixtureOption func(*LocalTestFixture)

func WithRedis() FixtureOption {
	return func(f *LocalTestFixture) {
		f.withRedis = true
	}
}

// LocalTestFixture owns the stores integration tests run against. With
// SKIP_INFRASTRUCTURE=true it reuses DATABASE_URL and REDIS_URL from the
// environment instead of starting containers.
type LocalTestFixture struct {
	withRedis bool

	postgres *tcpostgres.PostgresContainer
	redis    *tcredis.RedisContainer

	DatabaseURL string
	RedisURL    string

	startErr error
	once     sync.Once
	db       *sqlx.DB
}

func NewLocalTestFixture(opts ...FixtureOption) *LocalTestFixture {
	f := &LocalTestFixture{}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

// Start never fails the test binary. A fixture that could not start makes the
// tests that need it skip.
func (f *LocalTestFixture) Start(ctx context.Context) {
	f.startErr = startRecovered(ctx, f.start)
	if f.startErr != nil {
		fmt.Fprintf(os.Stderr, "integration infrastructure unavailable: %v\n", f.startErr)
	}
}

// startRecovered turns a panic raised while starting infrastructure (the
// container provider panics when no Docker host is found) into an error.
func startRecovered(ctx context.Context, start func(context.Context) error) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("starting test infrastructure panicked: %v", r)
		}
	}()

	return start(ctx)
}

func (f *LocalTestFixture) start(ctx context.Context) error {
	if env.SkipInfrastructure() {
		f.DatabaseURL = os.Getenv("DATABASE_URL")
		f.RedisURL = os.Getenv("REDIS_URL")
		if f.DatabaseURL == "" {
			return fmt.Errorf("DATABASE_URL is required when SKIP_INFRASTRUCTURE is set")
		}
		return sqlmigration.Run(f.DatabaseURL, zap.NewNop())
	}

	if err := f.startPostgres(ctx); err != nil {
		return err
	}

	if f.withRedis {
		if err := f.startRedis(ctx); err != nil {
			return err
		}
	}

	return sqlmigration.Run(f.DatabaseURL, zap.NewNop())
}

func (f *LocalTestFixture) startPostgres(ctx context.Context) error {
	pgPort := nat.Port("5432/tcp")

	container, err := tcpostgres.Run(ctx,
		postgresImage,
		tcpostgres.WithDatabase("ludo"),
		tcpostgres.WithUsername("ludo"),
		tcpostgres.WithPassword("ludo"),
		testcontainers.WithWaitStrategy(
			wait.ForSQL(pgPort, "postgres", func(host string, port nat.Port) string {
				return fmt.Sprintf("postgres://ludo:ludo@%s:%s/ludo?sslmode=disable", host, port.Port())
			}).WithStartupTimeout(60*time.Second),
		),
	)
	if err != nil {
		return fmt.Errorf("failed to start postgres container: %w", err)
	}
	f.postgres = container

	dsn, err := container.ConnectionString(ctx, "sslmode=disable")
	if err != nil {
		return fmt.Errorf("failed to read postgres connection string: %w", err)
	}
	f.DatabaseURL = dsn

	return nil
}

func (f *LocalTestFixture) startRedis(ctx context.Context) error {
	container, err := tcredis.Run(ctx, redisImage)
	if err != nil {
		return fmt.Errorf("failed to start redis container: %w", err)
	}
	f.redis = container

	url, err := container.ConnectionString(ctx)
	if err != nil {
		return fmt.Errorf("failed to read redis connection string: %w", err)
	}
	f.RedisURL = url

	return nil
}

func (f *LocalTestFixture) Stop(ctx context.Context) error {
	if f.db != nil {
		_ = f.db.Close()
	}

	if env.SkipInfrastructure() {
		return nil
	}

	if f.redis != nil {
		if err := testcontainers.TerminateContainer(f.redis); err != nil {
			return err
		}
	}

	if f.postgres != nil {
		return testcontainers.TerminateContainer(f.postgres)
	}

	return nil
}

// DB returns a pool shared by all tests of the package, skipping the test
// when no database is available.
func (f *LocalTestFixture) DB(t testing.TB) *sqlx.DB {
	t.Helper()

	if f.startErr != nil || f.DatabaseURL == "" {
		t.Skipf("postgres unavailable: %v", f.startErr)
	}

	var connectErr error
	f.once.Do(func() {
		f.db, connectErr = sqlx.Connect("postgres", f.DatabaseURL)
		if f.db != nil {
			f.db.SetMaxOpenConns(32)
		}
	})
	if connectErr != nil {
		t.Fatalf("failed to connect to postgres: %v", connectErr)
	}
	if f.db == nil {
		t.Skip("postgres unavailable")
	}

	return f.db
}

// Reset empties every lobby table.
func (f *LocalTestFixture) Reset(t testing.TB) {
	t.Helper()

	const stmt = `TRUNCATE session_users, sessions, users RESTART IDENTITY CASCADE;`
	if _, err := f.DB(t).Exec(stmt); err != nil {
		t.Fatalf("failed to reset database: %v", err)
	}
}

func (f *LocalTestFixture) Redis(t testing.TB) *redis.Client {
	t.Helper()

	if f.startErr != nil || f.RedisURL == "" {
		t.Skipf("redis unavailable: %v", f.startErr)
	}

	opts, err := redis.ParseURL(f.RedisURL)
	if err != nil {
		t.Fatalf("invalid redis url: %v", err)
	}

	client := redis.NewClient(opts)
	t.Cleanup(func() { _ = client.Close() })

	if err := client.FlushDB(context.Background()).Err(); err != nil {
		t.Fatalf("failed to flush redis: %v", err)
	}

	return client
}

// CreateUser inserts a registered user and returns its id.
func (f *LocalTestFixture) CreateUser(t testing.TB, name string) int64 {
	t.Helper()

	var id int64
	const stmt = `
		INSERT INTO
			users (name, is_guest)
		VALUES
			($1, false)
		RETURNING id;`
	if err := f.DB(t).Get(&id, stmt, name); err != nil {
		t.Fatalf("failed to create user: %v", err)
	}

	return id
}
