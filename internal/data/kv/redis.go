package kv

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	goredis "github.com/redis/go-redis/v9"

	"github.com/hphuyvu-stack/inclusing/internal/platform/logger"
)

type RedisConfig struct {
	Addr     string
	Password string
	DB       int
	Prefix   string
}

type redisStorage struct {
	log    *logger.Logger
	rdb    goredis.UniversalClient
	prefix string
}

// NewRedisClient dials and pings Redis.
func NewRedisClient(ctx context.Context, cfg RedisConfig) (*goredis.Client, error) {
	if strings.TrimSpace(cfg.Addr) == "" {
		return nil, fmt.Errorf("missing REDIS_ADDR")
	}
	rdb := goredis.NewClient(&goredis.Options{
		Addr:        cfg.Addr,
		Password:    cfg.Password,
		DB:          cfg.DB,
		DialTimeout: 5 * time.Second,
	})
	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := rdb.Ping(pingCtx).Err(); err != nil {
		_ = rdb.Close()
		return nil, fmt.Errorf("redis ping: %w", err)
	}
	return rdb, nil
}

// NewRedisStorage keeps each value under "<prefix>:<owner>:<key>" with no expiry.
func NewRedisStorage(rdb goredis.UniversalClient, prefix string, log *logger.Logger) Storage {
	prefix = strings.TrimSpace(prefix)
	if prefix == "" {
		prefix = "a11y"
	}
	return &redisStorage{log: log.With("repo", "RedisSettingsStorage"), rdb: rdb, prefix: prefix}
}

func (s *redisStorage) redisKey(owner, key string) string {
	return s.prefix + ":" + owner + ":" + key
}

func (s *redisStorage) Get(ctx context.Context, owner, key string) ([]byte, bool, error) {
	if err := checkOwnerKey(owner, key); err != nil {
		return nil, false, err
	}
	raw, err := s.rdb.Get(ctx, s.redisKey(owner, key)).Bytes()
	if errors.Is(err, goredis.Nil) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	return raw, true, nil
}

func (s *redisStorage) Put(ctx context.Context, owner, key string, value []byte) error {
	if err := checkOwnerKey(owner, key); err != nil {
		return err
	}
	return s.rdb.Set(ctx, s.redisKey(owner, key), value, 0).Err()
}

func (s *redisStorage) Delete(ctx context.Context, owner, key string) error {
	if err := checkOwnerKey(owner, key); err != nil {
		return err
	}
	return s.rdb.Del(ctx, s.redisKey(owner, key)).Err()
}
