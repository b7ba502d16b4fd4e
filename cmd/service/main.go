package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/2beens/workoutlog/internal"
	"github.com/2beens/workoutlog/internal/config"
	"github.com/2beens/workoutlog/internal/logging"
	"github.com/2beens/workoutlog/pkg"

	"github.com/gorilla/securecookie"
	log "github.com/sirupsen/logrus"
)

func main() {
	fmt.Println("starting workoutlog ...")

	env := flag.String("env", "development", "environment [prod | production | dev | development]")
	configPath := flag.String("config", "./config.toml", "path for the TOML config file")
	flag.Parse()

	cfg, err := config.Load(*env, *configPath)
	if err != nil {
		panic(err)
	}

	logging.Setup(logging.LoggerSetupParams{
		LogFileName:      cfg.LogsPath,
		LogToStdout:      cfg.LogToStdout,
		LogLevel:         cfg.LogLevel,
		LogFormatJSON:    cfg.LogFormatJSON,
		Environment:      cfg.Environment,
		SentryEnabled:    cfg.SentryEnabled,
		SentryDSN:        os.Getenv("SENTRY_DSN"),
		SentryServerName: "workoutlog",
	})
	log.Warnf("---->> running in [%s] environment", cfg.Environment)

	if err := run(cfg); err != nil {
		log.Fatalf("workoutlog: %s", err)
	}
}

func run(cfg *config.Config) error {
	log.Debugf("listening on %s:%d, metrics on %s:%s", cfg.Host, cfg.Port, cfg.PrometheusMetricsHost, cfg.PrometheusMetricsPort)
	log.Debugf("storage backend: [%s], chart path: [%s]", cfg.StorageBackend, cfg.ChartPath)

	if cfg.StorageBackend == config.BackendDisk {
		if err := pkg.EnsureDir(cfg.DataDir); err != nil {
			return fmt.Errorf("create data dir: %w", err)
		}
		log.Infof("data dir: %s", cfg.DataDir)
	}

	chOsInterrupt := make(chan os.Signal, 1)
	signal.Notify(chOsInterrupt, os.Interrupt, syscall.SIGTERM)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	server, err := internal.NewServer(ctx, serverParamsFromEnv(cfg))
	if err != nil {
		return fmt.Errorf("new server: %w", err)
	}

	if err := server.Serve(cfg.Host, cfg.Port); err != nil {
		return fmt.Errorf("serve: %w", err)
	}

	receivedSig := <-chOsInterrupt
	log.Warnf("signal [%s] received, shutting down ...", receivedSig)
	cancel()

	server.GracefulShutdown()
	return nil
}

// serverParamsFromEnv collects the secrets, which never live in config.toml.
func serverParamsFromEnv(cfg *config.Config) internal.NewServerParams {
	params := internal.NewServerParams{
		Config:                  cfg,
		SessionSecret:           []byte(os.Getenv("WORKOUTLOG_SESSION_SECRET")),
		RedisPassword:           os.Getenv("WORKOUTLOG_REDIS_PASS"),
		PostgresUser:            os.Getenv("WORKOUTLOG_POSTGRES_USER"),
		PostgresPassword:        os.Getenv("WORKOUTLOG_POSTGRES_PASS"),
		HoneycombTracingEnabled: pkg.BoolEnv("HONEYCOMB_ENABLED"),
	}

	if len(params.SessionSecret) == 0 {
		// flash cookies from before a restart will not decode, fine for one-shot messages
		log.Warnln("session secret not set, use WORKOUTLOG_SESSION_SECRET. generating a random one")
		params.SessionSecret = securecookie.GenerateRandomKey(32)
	}
	if cfg.UsesRedis() && params.RedisPassword == "" {
		log.Warnln("redis password not set. use WORKOUTLOG_REDIS_PASS")
	}
	if cfg.StorageBackend == config.BackendPostgres && params.PostgresPassword == "" {
		log.Warnln("postgres password not set. use WORKOUTLOG_POSTGRES_PASS")
	}
	if params.HoneycombTracingEnabled {
		if os.Getenv("HONEYCOMB_API_KEY") == "" {
			log.Warnln("HONEYCOMB_API_KEY env var not set")
		}
		if os.Getenv("OTEL_SERVICE_NAME") == "" {
			log.Debugln("OTEL_SERVICE_NAME env var not set")
		}
	}

	return params
}
