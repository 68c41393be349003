package ratelimit

import (
	"context"
	"time"

	"github.com/zeromicro/go-zero/core/stores/redis"
)

// kv is the part of *redis.Redis the storage needs.
type kv interface {
	GetCtx(ctx context.Context, key string) (string, error)
	SetCtx(ctx context.Context, key, value string) error
	SetexCtx(ctx context.Context, key, value string, seconds int) error
	DelCtx(ctx context.Context, keys ...string) (int, error)
	KeysCtx(ctx context.Context, pattern string) ([]string, error)
}

// Storage implements fiber.Storage on Redis so limiter counters are shared
// between instances.
type Storage struct {
	client kv
	prefix string
}

const defaultPrefix = "greenledger:ratelimit:"

// NewRedisStorage connects to addr and fails when the server does not answer.
func NewRedisStorage(addr, pass string) (*Storage, error) {
	client, err := redis.NewRedis(redis.RedisConf{Host: addr, Type: redis.NodeType, Pass: pass})
	if err != nil {
		return nil, err
	}
	return newStorage(client), nil
}

func newStorage(client kv) *Storage {
	return &Storage{client: client, prefix: defaultPrefix}
}

func (s *Storage) Get(key string) ([]byte, error) {
	val, err := s.client.GetCtx(context.Background(), s.prefix+key)
	if err != nil || val == "" {
		return nil, err
	}
	return []byte(val), nil
}

func (s *Storage) Set(key string, val []byte, exp time.Duration) error {
	if len(key) == 0 || len(val) == 0 {
		return nil
	}
	ctx := context.Background()
	if exp <= 0 {
		return s.client.SetCtx(ctx, s.prefix+key, string(val))
	}
	return s.client.SetexCtx(ctx, s.prefix+key, string(val), seconds(exp))
}

func (s *Storage) Delete(key string) error {
	_, err := s.client.DelCtx(context.Background(), s.prefix+key)
	return err
}

// Reset removes every key under the storage prefix.
func (s *Storage) Reset() error {
	ctx := context.Background()
	keys, err := s.client.KeysCtx(ctx, s.prefix+"*")
	if err != nil || len(keys) == 0 {
		return err
	}
	_, err = s.client.DelCtx(ctx, keys...)
	return err
}

func (s *Storage) Close() error { return nil }

// seconds rounds exp up to whole seconds, at least one.
func seconds(exp time.Duration) int {
	n := int((exp + time.Second - 1) / time.Second)
	if n < 1 {
		return 1
	}
	return n
}
