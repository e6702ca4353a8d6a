package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/trace"

	"github.com/mehdi-chebbi/k8s-chat/internal/chat"
)

const defaultSessionTTL = 24 * time.Hour

// Mirror keeps recent session history in Redis under session:{id} with a
// sliding TTL.
type Mirror struct {
	redis  *redis.Client
	ttl    time.Duration
	tracer trace.Tracer
}

func NewMirror(client *redis.Client, ttl time.Duration) *Mirror {
	if client == nil {
		panic("store: redis client cannot be nil")
	}
	if ttl <= 0 {
		ttl = defaultSessionTTL
	}
	return &Mirror{
		redis:  client,
		ttl:    ttl,
		tracer: otel.Tracer("k8schat.internal.store.mirror"),
	}
}

func (m *Mirror) Save(ctx context.Context, sessionID string, turns []chat.Turn) error {
	ctx, span := m.tracer.Start(ctx, "store.mirror_save")
	defer span.End()

	data, err := json.Marshal(turns)
	if err != nil {
		span.RecordError(err)
		return fmt.Errorf("store: encode session: %w", err)
	}
	if err := m.redis.Set(ctx, sessionKey(sessionID), data, m.ttl).Err(); err != nil {
		span.RecordError(err)
		return fmt.Errorf("store: mirror session: %w", err)
	}
	return nil
}

// Load returns the mirrored turns, or (nil, nil) on a miss.
func (m *Mirror) Load(ctx context.Context, sessionID string) ([]chat.Turn, error) {
	ctx, span := m.tracer.Start(ctx, "store.mirror_load")
	defer span.End()

	data, err := m.redis.Get(ctx, sessionKey(sessionID)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, nil
	}
	if err != nil {
		span.RecordError(err)
		return nil, fmt.Errorf("store: read mirror: %w", err)
	}

	var turns []chat.Turn
	if err := json.Unmarshal(data, &turns); err != nil {
		span.RecordError(err)
		return nil, fmt.Errorf("store: decode mirror: %w", err)
	}
	return turns, nil
}

func (m *Mirror) Delete(ctx context.Context, sessionID string) error {
	ctx, span := m.tracer.Start(ctx, "store.mirror_delete")
	defer span.End()

	if err := m.redis.Del(ctx, sessionKey(sessionID)).Err(); err != nil {
		span.RecordError(err)
		return fmt.Errorf("store: delete mirror: %w", err)
	}
	return nil
}

func sessionKey(id string) string {
	return fmt.Sprintf("session:%s", id)
}
