package storage

import (
	"context"
	"errors"
	"fmt"

	"github.com/2beens/workoutlog/internal/telemetry/tracing"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"go.opentelemetry.io/otel/attribute"
)

const artifactsTableSQL = `
CREATE TABLE IF NOT EXISTS workoutlog_artifact
(
    name       TEXT PRIMARY KEY,
    data       BYTEA       NOT NULL,
    updated_at TIMESTAMPTZ NOT NULL DEFAULT now()
);`

type pgxPool interface {
	Exec(ctx context.Context, sql string, arguments ...any) (pgconn.CommandTag, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// PostgresBackend keeps the artifacts as rows of the workoutlog_artifact table.
type PostgresBackend struct {
	db pgxPool
}

// NewPostgresBackend creates the artifacts table if it does not exist yet.
func NewPostgresBackend(ctx context.Context, db pgxPool) (*PostgresBackend, error) {
	if _, err := db.Exec(ctx, artifactsTableSQL); err != nil {
		return nil, fmt.Errorf("create artifacts table: %w", err)
	}
	return &PostgresBackend{
		db: db,
	}, nil
}

func (p *PostgresBackend) Read(ctx context.Context, name string) (_ []byte, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "postgresBackend.read")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()
	span.SetAttributes(attribute.String("artifact", name))

	if err := validateName(name); err != nil {
		return nil, err
	}

	var data []byte
	err = p.db.QueryRow(
		ctx,
		`SELECT data FROM workoutlog_artifact WHERE name = $1;`,
		name,
	).Scan(&data)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrArtifactNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("select artifact [%s]: %w", name, err)
	}
	return data, nil
}

func (p *PostgresBackend) Write(ctx context.Context, name string, data []byte) (err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "postgresBackend.write")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()
	span.SetAttributes(attribute.String("artifact", name))

	if err := validateName(name); err != nil {
		return err
	}

	_, err = p.db.Exec(
		ctx,
		`
			INSERT INTO workoutlog_artifact (name, data, updated_at)
			VALUES ($1, $2, now())
			ON CONFLICT (name) DO UPDATE SET data = EXCLUDED.data, updated_at = now();`,
		name, data,
	)
	if err != nil {
		return fmt.Errorf("upsert artifact [%s]: %w", name, err)
	}
	return nil
}

