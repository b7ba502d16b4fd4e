package storage

import (
	"context"
	"errors"
	"fmt"

	"github.com/2beens/workoutlog/internal/telemetry/tracing"

	"github.com/go-redis/redis/v8"
	"go.opentelemetry.io/otel/attribute"
)

// RedisBackend stores every artifact under its own key: <prefix>:<name>.
type RedisBackend struct {
	client *redis.Client
	prefix string
}

func NewRedisBackend(client *redis.Client, prefix string) *RedisBackend {
	return &RedisBackend{
		client: client,
		prefix: prefix,
	}
}

func (r *RedisBackend) key(name string) string {
	if r.prefix == "" {
		return name
	}
	return r.prefix + ":" + name
}

func (r *RedisBackend) Read(ctx context.Context, name string) (_ []byte, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "redisBackend.read")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()
	span.SetAttributes(attribute.String("artifact", name))

	if err := validateName(name); err != nil {
		return nil, err
	}

	data, err := r.client.Get(ctx, r.key(name)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, ErrArtifactNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("redis get [%s]: %w", name, err)
	}
	return data, nil
}

func (r *RedisBackend) Write(ctx context.Context, name string, data []byte) (err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "redisBackend.write")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()
	span.SetAttributes(attribute.String("artifact", name))

	if err := validateName(name); err != nil {
		return err
	}

	if err := r.client.Set(ctx, r.key(name), data, 0).Err(); err != nil {
		return fmt.Errorf("redis set [%s]: %w", name, err)
	}
	return nil
}

