package main

import (
	"context"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/redis/go-redis/v9"
	log "github.com/sirupsen/logrus"

	"tutor-dashboard/api"
	"tutor-dashboard/board"
	"tutor-dashboard/config"
	"tutor-dashboard/storage"
)

const startupTimeout = 30 * time.Second

func main() {
	cfg, err := config.Load(".env")
	if err != nil {
		log.Fatalf("config: %v", err)
	}
	logger := log.New()
	if cfg.Debug {
		log.SetLevel(log.DebugLevel)
		logger.SetLevel(log.DebugLevel)
	}

	ctx, cancel := context.WithTimeout(context.Background(), startupTimeout)
	defer cancel()

	kv, closeKV, err := storage.OpenBoardKV(ctx, cfg)
	if err != nil {
		log.Fatalf("board storage: %v", err)
	}
	defer closeKV()

	store := board.New(kv,
		board.WithLogger(logger),
		board.WithKeys(board.Keys{Tasks: cfg.TasksKey, Schedules: cfg.SchedulesKey}),
	)
	if err := store.Load(ctx); err != nil {
		log.Fatalf("board load: %v", err)
	}

	panels, closePanels := openPanels(ctx, cfg, logger)
	defer closePanels()

	e := echo.New()
	e.Use(middleware.CORSWithConfig(middleware.CORSConfig{
		AllowOrigins: []string{"*"},
		AllowHeaders: []string{echo.HeaderOrigin, echo.HeaderContentType, echo.HeaderAccept, echo.HeaderContentEncoding},
	}))
	e.Use(api.GzipRequestMiddleware(8 << 20))

	api.Register(e, store, panels, logger, cfg.RequestTimeout)

	e.Logger.Fatal(e.Start(cfg.ListenAddr))
}

// openPanels connects the platform database when DATABASE_URL is set and
// wraps it with the Redis cache when REDIS_CONNECTION_STRING is set. The
// returned func closes whatever was opened.
func openPanels(ctx context.Context, cfg *config.Config, logger *log.Logger) (api.Panels, func()) {
	if cfg.DatabaseURL == "" {
		logger.Warn("DATABASE_URL not set; dashboard panels will be empty")
		return storage.NoPanels{}, func() {}
	}
	db, err := storage.OpenPostgres(ctx, cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("postgres: %v", err)
	}
	if cfg.RedisConn == "" || cfg.PanelCacheTTL == 0 {
		return db, func() { _ = db.Close() }
	}
	opts, err := storage.ParseRedisOptions(cfg.RedisConn)
	if err != nil {
		log.Fatalf("redis: %v", err)
	}
	client := redis.NewClient(opts)
	return storage.NewCache(db, client, cfg.PanelCacheTTL), func() {
		_ = client.Close()
		_ = db.Close()
	}
}
