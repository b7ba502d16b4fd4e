package integration_testing

import (
	"context"
	"database/sql"
	"fmt"
	"net/http"
	"os"
	"strconv"

	"github.com/2beens/workoutlog/internal"
	"github.com/2beens/workoutlog/internal/config"

	_ "github.com/lib/pq"
	"github.com/ory/dockertest/v3"
	"github.com/ory/dockertest/v3/docker"
)

const (
	serverHost     = "127.0.0.1"
	postgresDBName = "workoutlog"
	postgresUser   = "postgres"
	postgresPass   = "postgres"
)

func redisSetup(pool *dockertest.Pool) (string, func(), error) {
	redisResource, err := pool.RunWithOptions(&dockertest.RunOptions{
		Repository: "redis",
		Name:       "workoutlog-redis",
		Tag:        "6.2",
	}, func(config *docker.HostConfig) {
		config.AutoRemove = true
	})
	if err != nil {
		return "", nil, fmt.Errorf("run redis: %s", err)
	}

	redisPort := redisResource.GetPort("6379/tcp")
	return redisPort, func() {
		_ = redisResource.Close()
	}, nil
}

func postgresSetup(pool *dockertest.Pool) (string, *sql.DB, func(), error) {
	pgResource, err := pool.RunWithOptions(&dockertest.RunOptions{
		Repository: "postgres",
		Tag:        "15",
		Env: []string{
			"POSTGRES_USER=" + postgresUser,
			"POSTGRES_PASSWORD=" + postgresPass,
			"POSTGRES_DB=" + postgresDBName,
		},
	}, func(config *docker.HostConfig) {
		config.AutoRemove = true
		config.RestartPolicy = docker.RestartPolicy{
			Name: "no",
		}
	})
	if err != nil {
		return "", nil, nil, fmt.Errorf("dockerpool run postgres: %s", err)
	}
	cleanup := func() {
		_ = pgResource.Close()
	}

	pgPort := pgResource.GetPort("5432/tcp")
	dsn := fmt.Sprintf(
		"postgres://%s:%s@localhost:%s/%s?sslmode=disable",
		postgresUser, postgresPass, pgPort, postgresDBName,
	)
	db, err := sql.Open("postgres", dsn)
	if err != nil {
		cleanup()
		return "", nil, nil, fmt.Errorf("open db conn: %s", err)
	}

	// the container takes a while to accept connections
	if err := pool.Retry(db.Ping); err != nil {
		cleanup()
		return "", nil, nil, fmt.Errorf("ping db: %s", err)
	}

	return pgPort, db, cleanup, nil
}

func testConfig(backend, redisPort, postgresPort string, port int) (*config.Config, error) {
	dataDir, err := os.MkdirTemp("", "workoutlog-it-*")
	if err != nil {
		return nil, err
	}
	cfg := &config.Config{
		Environment:           "development",
		Host:                  serverHost,
		Port:                  port,
		LogLevel:              "debug",
		PrometheusMetricsHost: serverHost,
		PrometheusMetricsPort: strconv.Itoa(port + 1),
		StorageBackend:        backend,
		DataDir:               dataDir,
		RedisHost:             "localhost",
		RedisPort:             redisPort,
		RedisKeyPrefix:        "workoutlog-it-" + backend,
		PostgresHost:          "localhost",
		PostgresPort:          postgresPort,
		PostgresDBName:        postgresDBName,
	}
	cfg.ApplyDefaults()
	return cfg, cfg.Validate()
}

func startServer(ctx context.Context, pool *dockertest.Pool, cfg *config.Config) (*internal.Server, func(), error) {
	server, err := internal.NewServer(
		ctx,
		internal.NewServerParams{
			Config:                  cfg,
			SessionSecret:           []byte("integration-test-secret"),
			RedisPassword:           "",
			PostgresUser:            postgresUser,
			PostgresPassword:        postgresPass,
			HoneycombTracingEnabled: false,
		},
	)
	if err != nil {
		return nil, nil, fmt.Errorf("new server: %w", err)
	}

	if err := server.Serve(cfg.Host, cfg.Port); err != nil {
		server.GracefulShutdown()
		return nil, nil, err
	}

	endpoint := fmt.Sprintf("http://%s:%d/api/workouts", cfg.Host, cfg.Port)
	if err := pool.Retry(func() error {
		resp, err := http.Get(endpoint)
		if err != nil {
			return err
		}
		_ = resp.Body.Close()
		if resp.StatusCode != http.StatusOK {
			return fmt.Errorf("server not ready: %d", resp.StatusCode)
		}
		return nil
	}); err != nil {
		server.GracefulShutdown()
		return nil, nil, fmt.Errorf("wait for server: %w", err)
	}

	return server, func() {
		server.GracefulShutdown()
		_ = os.RemoveAll(cfg.DataDir)
	}, nil
}
