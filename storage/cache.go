package storage

import (
	"context"
	"time"

	"github.com/bytedance/sonic"
	"github.com/redis/go-redis/v9"

	"tutor-dashboard/domain"
)

type panelBackend interface {
	Users(ctx context.Context) ([]domain.User, error)
	Tutors(ctx context.Context) ([]domain.Tutor, error)
	Payments(ctx context.Context) ([]domain.Payment, error)
	Sessions(ctx context.Context) ([]domain.Session, error)
	SessionNotes(ctx context.Context) ([]domain.SessionNote, error)
	TutorsWithSubjects(ctx context.Context) ([]domain.Subject, error)
}

const (
	usersCacheKey       = "panels:users"
	tutorsCacheKey      = "panels:tutors"
	paymentsCacheKey    = "panels:payments"
	sessionsCacheKey    = "panels:sessions"
	notesCacheKey       = "panels:session-notes"
	subjectTutorsCacheK = "panels:tutors-with-subjects"
)

// Cache wraps a panel backend with Redis-backed read-through caching.
type Cache struct {
	base  panelBackend
	redis *redis.Client
	ttl   time.Duration
}

// NewCache creates a caching wrapper using the provided Redis client and TTL.
// A nil client or zero TTL disables caching.
func NewCache(base panelBackend, client *redis.Client, ttl time.Duration) *Cache {
	if base == nil {
		panic("storage.NewCache: base backend is nil")
	}
	if ttl < 0 {
		ttl = 0
	}
	return &Cache{base: base, redis: client, ttl: ttl}
}

func (c *Cache) Users(ctx context.Context) ([]domain.User, error) {
	return cached(ctx, c, usersCacheKey, c.base.Users)
}

func (c *Cache) Tutors(ctx context.Context) ([]domain.Tutor, error) {
	return cached(ctx, c, tutorsCacheKey, c.base.Tutors)
}

func (c *Cache) Payments(ctx context.Context) ([]domain.Payment, error) {
	return cached(ctx, c, paymentsCacheKey, c.base.Payments)
}

func (c *Cache) Sessions(ctx context.Context) ([]domain.Session, error) {
	return cached(ctx, c, sessionsCacheKey, c.base.Sessions)
}

func (c *Cache) SessionNotes(ctx context.Context) ([]domain.SessionNote, error) {
	return cached(ctx, c, notesCacheKey, c.base.SessionNotes)
}

func (c *Cache) TutorsWithSubjects(ctx context.Context) ([]domain.Subject, error) {
	return cached(ctx, c, subjectTutorsCacheK, c.base.TutorsWithSubjects)
}

// Evict drops every cached panel.
func (c *Cache) Evict(ctx context.Context) {
	if c.redis == nil {
		return
	}
	_, _ = c.redis.Del(ctx, usersCacheKey, tutorsCacheKey, paymentsCacheKey,
		sessionsCacheKey, notesCacheKey, subjectTutorsCacheK).Result()
}

func cached[T any](ctx context.Context, c *Cache, key string, fetch func(context.Context) ([]T, error)) ([]T, error) {
	if items, ok := load[T](ctx, c, key); ok {
		return items, nil
	}
	items, err := fetch(ctx)
	if err != nil {
		return nil, err
	}
	store(ctx, c, key, items)
	return items, nil
}

func load[T any](ctx context.Context, c *Cache, key string) ([]T, bool) {
	if c.redis == nil || c.ttl == 0 {
		return nil, false
	}
	data, err := c.redis.Get(ctx, key).Bytes()
	if err != nil {
		if err != redis.Nil {
			// On redis errors fall back to the backing storage without failing.
			_ = c.redis.Del(ctx, key).Err()
		}
		return nil, false
	}
	var items []T
	if err := sonic.ConfigStd.Unmarshal(data, &items); err != nil || items == nil {
		_ = c.redis.Del(ctx, key).Err()
		return nil, false
	}
	return items, true
}

func store[T any](ctx context.Context, c *Cache, key string, items []T) {
	if c.redis == nil || c.ttl == 0 {
		return
	}
	data, err := sonic.ConfigStd.Marshal(items)
	if err != nil {
		return
	}
	_ = c.redis.Set(ctx, key, data, c.ttl).Err()
}
