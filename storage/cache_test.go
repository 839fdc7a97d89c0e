package storage

import (
	"context"
	"errors"
	"reflect"
	"testing"
	"time"

	miniredis "github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"

	"tutor-dashboard/domain"
)

type stubPanels struct {
	NoPanels
	tutorsFn   func(ctx context.Context) ([]domain.Tutor, error)
	paymentsFn func(ctx context.Context) ([]domain.Payment, error)
}

func (s *stubPanels) Tutors(ctx context.Context) ([]domain.Tutor, error) {
	if s.tutorsFn == nil {
		return nil, errors.New("unexpected Tutors call")
	}
	return s.tutorsFn(ctx)
}

func (s *stubPanels) Payments(ctx context.Context) ([]domain.Payment, error) {
	if s.paymentsFn == nil {
		return nil, errors.New("unexpected Payments call")
	}
	return s.paymentsFn(ctx)
}

func newTestRedis(t *testing.T) (*miniredis.Miniredis, *redis.Client) {
	t.Helper()
	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("start miniredis: %v", err)
	}
	t.Cleanup(mr.Close)

	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return mr, client
}

func TestCacheTutorsMissThenHit(t *testing.T) {
	mr, client := newTestRedis(t)
	ctx := context.Background()
	subject := int64(1)
	expected := []domain.Tutor{{ID: 1, UserID: 10, SubjectID: &subject, HourlyRate: 25, User: &domain.User{ID: 10, FirstName: "Ada"}}}

	var calls int
	cache := NewCache(&stubPanels{
		tutorsFn: func(context.Context) ([]domain.Tutor, error) {
			calls++
			return append([]domain.Tutor(nil), expected...), nil
		},
	}, client, time.Minute)

	tutors, err := cache.Tutors(ctx)
	if err != nil {
		t.Fatalf("fetch tutors: %v", err)
	}
	if !reflect.DeepEqual(tutors, expected) {
		t.Fatalf("unexpected tutors: %#v", tutors)
	}
	if ttl := mr.TTL(tutorsCacheKey); ttl <= 0 || ttl > time.Minute {
		t.Fatalf("unexpected TTL: %v", ttl)
	}

	cached, err := cache.Tutors(ctx)
	if err != nil {
		t.Fatalf("fetch cached tutors: %v", err)
	}
	if !reflect.DeepEqual(cached, expected) {
		t.Fatalf("unexpected cached tutors: %#v", cached)
	}
	if calls != 1 {
		t.Fatalf("expected cached fetch to avoid backend, calls=%d", calls)
	}
}

func TestCacheBackendErrorIsNotCached(t *testing.T) {
	mr, client := newTestRedis(t)
	boom := errors.New("db down")
	cache := NewCache(&stubPanels{
		paymentsFn: func(context.Context) ([]domain.Payment, error) { return nil, boom },
	}, client, time.Minute)

	if _, err := cache.Payments(context.Background()); !errors.Is(err, boom) {
		t.Fatalf("expected backend error, got %v", err)
	}
	if mr.Exists(paymentsCacheKey) {
		t.Fatalf("errors must not be cached")
	}
}

func TestCacheCorruptEntryFallsBack(t *testing.T) {
	mr, client := newTestRedis(t)
	if err := mr.Set(paymentsCacheKey, "{broken"); err != nil {
		t.Fatalf("seed: %v", err)
	}
	expected := []domain.Payment{{ID: 7, Amount: 40}}
	cache := NewCache(&stubPanels{
		paymentsFn: func(context.Context) ([]domain.Payment, error) { return expected, nil },
	}, client, time.Minute)

	got, err := cache.Payments(context.Background())
	if err != nil {
		t.Fatalf("fetch payments: %v", err)
	}
	if !reflect.DeepEqual(got, expected) {
		t.Fatalf("unexpected payments: %#v", got)
	}
	raw, err := mr.Get(paymentsCacheKey)
	if err != nil || raw == "{broken" {
		t.Fatalf("expected corrupt entry to be replaced, got %q err=%v", raw, err)
	}
}

func TestCacheDisabledWithoutTTL(t *testing.T) {
	mr, client := newTestRedis(t)
	var calls int
	cache := NewCache(&stubPanels{
		tutorsFn: func(context.Context) ([]domain.Tutor, error) {
			calls++
			return []domain.Tutor{{ID: 1}}, nil
		},
	}, client, 0)

	for i := 0; i < 2; i++ {
		if _, err := cache.Tutors(context.Background()); err != nil {
			t.Fatalf("fetch tutors: %v", err)
		}
	}
	if calls != 2 {
		t.Fatalf("expected every call to reach the backend, got %d", calls)
	}
	if mr.Exists(tutorsCacheKey) {
		t.Fatalf("nothing should be cached")
	}
}

func TestCacheEvict(t *testing.T) {
	mr, client := newTestRedis(t)
	cache := NewCache(&stubPanels{
		tutorsFn: func(context.Context) ([]domain.Tutor, error) { return []domain.Tutor{{ID: 1}}, nil },
	}, client, time.Minute)

	if _, err := cache.Tutors(context.Background()); err != nil {
		t.Fatalf("fetch tutors: %v", err)
	}
	cache.Evict(context.Background())
	if mr.Exists(tutorsCacheKey) {
		t.Fatalf("expected cache to be evicted")
	}
}

func TestCacheWithoutRedisPassesThrough(t *testing.T) {
	cache := NewCache(NoPanels{}, nil, time.Minute)
	users, err := cache.Users(context.Background())
	if err != nil || users == nil || len(users) != 0 {
		t.Fatalf("unexpected users: %#v err=%v", users, err)
	}
	cache.Evict(context.Background())
}
