package storage

import (
	"context"
	"fmt"

	"github.com/redis/go-redis/v9"

	"tutor-dashboard/board"
	"tutor-dashboard/config"
)

// OpenBoardKV opens the backend selected by cfg.Backend. The returned close
// func releases it and is never nil.
func OpenBoardKV(ctx context.Context, cfg *config.Config) (board.KV, func() error, error) {
	noop := func() error { return nil }
	switch cfg.Backend {
	case config.BackendMemory:
		return NewMemoryKV(), noop, nil
	case config.BackendBolt:
		kv, err := OpenBolt(cfg.BoltPath)
		if err != nil {
			return nil, noop, err
		}
		return kv, kv.Close, nil
	case config.BackendRedis:
		opts, err := ParseRedisOptions(cfg.RedisConn)
		if err != nil {
			return nil, noop, err
		}
		rc := redis.NewClient(opts)
		if err := rc.Ping(ctx).Err(); err != nil {
			_ = rc.Close()
			return nil, noop, fmt.Errorf("redis ping: %w", err)
		}
		return NewRedisKV(rc, cfg.RedisPrefix), rc.Close, nil
	case config.BackendTable:
		kv, err := NewTableKV(cfg.StorageConn, cfg.BoardTable)
		if err != nil {
			return nil, noop, err
		}
		if err := kv.EnsureTable(ctx); err != nil {
			return nil, noop, fmt.Errorf("ensure table %s: %w", cfg.BoardTable, err)
		}
		return kv, noop, nil
	default:
		return nil, noop, fmt.Errorf("unknown board backend %q", cfg.Backend)
	}
}
