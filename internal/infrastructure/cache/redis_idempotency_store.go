package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/jhoicas/estoque-api/pkg/config"
	"github.com/redis/go-redis/v9"
)

var _ IdempotencyStore = (*RedisIdempotencyStore)(nil)

const defaultKeyPrefix = "estoque:idempotency:"

// RedisIdempotencyStore implementación compartida entre instancias (SETNX + TTL).
type RedisIdempotencyStore struct {
	client    redis.UniversalClient
	keyPrefix string
}

// NewRedisIdempotencyStore conecta a Redis y verifica la conexión.
func NewRedisIdempotencyStore(ctx context.Context, cfg config.RedisConfig) (*RedisIdempotencyStore, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})
	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := client.Ping(pingCtx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("redis: conectar a %s: %w", cfg.Addr, err)
	}
	return NewRedisIdempotencyStoreWithClient(client, ""), nil
}

// NewRedisIdempotencyStoreWithClient usa un cliente existente.
func NewRedisIdempotencyStoreWithClient(client redis.UniversalClient, keyPrefix string) *RedisIdempotencyStore {
	if keyPrefix == "" {
		keyPrefix = defaultKeyPrefix
	}
	return &RedisIdempotencyStore{client: client, keyPrefix: keyPrefix}
}

func (s *RedisIdempotencyStore) Reserve(ctx context.Context, key string, ttl time.Duration) (bool, error) {
	pending, _ := json.Marshal(Entry{Pending: true})
	ok, err := s.client.SetNX(ctx, s.keyPrefix+key, pending, ttl).Result()
	if err != nil {
		return false, fmt.Errorf("redis: reservar clave: %w", err)
	}
	return ok, nil
}

func (s *RedisIdempotencyStore) Get(ctx context.Context, key string) (*Entry, error) {
	raw, err := s.client.Get(ctx, s.keyPrefix+key).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("redis: leer clave: %w", err)
	}
	var e Entry
	if err := json.Unmarshal(raw, &e); err != nil {
		return nil, fmt.Errorf("redis: decodificar entrada: %w", err)
	}
	return &e, nil
}

func (s *RedisIdempotencyStore) Complete(ctx context.Context, key string, entry Entry, ttl time.Duration) error {
	entry.Pending = false
	raw, err := json.Marshal(entry)
	if err != nil {
		return fmt.Errorf("redis: codificar entrada: %w", err)
	}
	if err := s.client.Set(ctx, s.keyPrefix+key, raw, ttl).Err(); err != nil {
		return fmt.Errorf("redis: guardar respuesta: %w", err)
	}
	return nil
}

func (s *RedisIdempotencyStore) Release(ctx context.Context, key string) error {
	if err := s.client.Del(ctx, s.keyPrefix+key).Err(); err != nil {
		return fmt.Errorf("redis: liberar clave: %w", err)
	}
	return nil
}

func (s *RedisIdempotencyStore) Close() error {
	return s.client.Close()
}
