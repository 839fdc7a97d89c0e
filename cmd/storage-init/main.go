package main

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"
	log "github.com/sirupsen/logrus"

	"tutor-dashboard/board"
	"tutor-dashboard/config"
	"tutor-dashboard/storage"
)

func main() {
	cfg, err := config.Load(".env")
	if err != nil {
		log.Fatalf("config: %v", err)
	}
	if cfg.Debug {
		log.SetLevel(log.DebugLevel)
	}
	log.WithField("backend", cfg.Backend).Info("storage init starting")

	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()

	if err := initBoard(ctx, cfg); err != nil {
		log.Fatalf("board storage: %v", err)
	}

	if cfg.DatabaseURL != "" {
		db, err := storage.OpenPostgres(ctx, cfg.DatabaseURL)
		if err != nil {
			log.Fatalf("postgres: %v", err)
		}
		_ = db.Close()
		log.Info("postgres reachable")
	}

	if err := evictPanels(ctx, cfg); err != nil {
		log.Fatalf("panel cache: %v", err)
	}

	log.Info("storage init complete")
}

// initBoard creates the backing table or bucket and writes an empty board
// under any key that has never been written.
func initBoard(ctx context.Context, cfg *config.Config) error {
	kv, closeKV, err := storage.OpenBoardKV(ctx, cfg)
	if err != nil {
		return err
	}
	defer closeKV()

	empty := map[string][]byte{
		cfg.TasksKey:     []byte("{}"),
		cfg.SchedulesKey: []byte("[]"),
	}
	for key, value := range empty {
		if err := seed(ctx, kv, key, value); err != nil {
			return err
		}
	}
	return nil
}

func seed(ctx context.Context, kv board.KV, key string, value []byte) error {
	existing, err := kv.Get(ctx, key)
	if err != nil {
		return err
	}
	if existing != nil {
		log.WithField("key", key).Debug("board key present")
		return nil
	}
	log.WithField("key", key).Info("seeding empty board key")
	return kv.Put(ctx, key, value)
}

// evictPanels drops cached panel data so the first requests after a deploy
// read the database again.
func evictPanels(ctx context.Context, cfg *config.Config) error {
	if cfg.RedisConn == "" {
		return nil
	}
	opts, err := storage.ParseRedisOptions(cfg.RedisConn)
	if err != nil {
		return err
	}
	client := redis.NewClient(opts)
	defer client.Close()

	if err := client.Ping(ctx).Err(); err != nil {
		return err
	}
	storage.NewCache(storage.NoPanels{}, client, cfg.PanelCacheTTL).Evict(ctx)
	log.Info("panel cache evicted")
	return nil
}
