package storage

import (
	"context"
	"path/filepath"
	"testing"

	miniredis "github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
)

type kv interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Put(ctx context.Context, key string, value []byte) error
}

func exerciseKV(t *testing.T, store kv) {
	t.Helper()
	ctx := context.Background()

	got, err := store.Get(ctx, "tasks")
	if err != nil {
		t.Fatalf("get missing: %v", err)
	}
	if got != nil {
		t.Fatalf("expected nil for missing key, got %q", got)
	}

	if err := store.Put(ctx, "tasks", []byte(`{"Needed":["study"]}`)); err != nil {
		t.Fatalf("put: %v", err)
	}
	if err := store.Put(ctx, "tasks", []byte(`{"Needed":["study","exam"]}`)); err != nil {
		t.Fatalf("overwrite: %v", err)
	}
	got, err = store.Get(ctx, "tasks")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if string(got) != `{"Needed":["study","exam"]}` {
		t.Fatalf("unexpected value: %s", got)
	}

	other, err := store.Get(ctx, "schedules")
	if err != nil || other != nil {
		t.Fatalf("expected schedules to be untouched, got %q err=%v", other, err)
	}
}

func TestMemoryKV(t *testing.T) {
	exerciseKV(t, NewMemoryKV())
}

func TestMemoryKVCopiesValues(t *testing.T) {
	m := NewMemoryKV()
	ctx := context.Background()
	value := []byte("abc")
	if err := m.Put(ctx, "k", value); err != nil {
		t.Fatalf("put: %v", err)
	}
	value[0] = 'x'
	got, _ := m.Get(ctx, "k")
	if string(got) != "abc" {
		t.Fatalf("stored value aliased caller slice: %s", got)
	}
}

func TestBoltKV(t *testing.T) {
	path := filepath.Join(t.TempDir(), "data", "board.db")
	store, err := OpenBolt(path)
	if err != nil {
		t.Fatalf("open bolt: %v", err)
	}
	exerciseKV(t, store)
	if err := store.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}

	reopened, err := OpenBolt(path)
	if err != nil {
		t.Fatalf("reopen bolt: %v", err)
	}
	t.Cleanup(func() { _ = reopened.Close() })
	got, err := reopened.Get(context.Background(), "tasks")
	if err != nil {
		t.Fatalf("get after reopen: %v", err)
	}
	if string(got) != `{"Needed":["study","exam"]}` {
		t.Fatalf("value did not survive reopen: %s", got)
	}
}

func TestRedisKV(t *testing.T) {
	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("start miniredis: %v", err)
	}
	t.Cleanup(mr.Close)

	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	exerciseKV(t, NewRedisKV(client, "board:"))
	if !mr.Exists("board:tasks") {
		t.Fatalf("expected prefixed key to be written")
	}
	if ttl := mr.TTL("board:tasks"); ttl != 0 {
		t.Fatalf("expected board keys to never expire, got %v", ttl)
	}
}

func TestParseRedisOptions(t *testing.T) {
	tests := []struct {
		name     string
		conn     string
		addr     string
		password string
		tls      bool
		wantErr  bool
	}{
		{name: "url", conn: "redis://:secret@localhost:6380/0", addr: "localhost:6380", password: "secret"},
		{name: "azure", conn: "cache.redis.cache.windows.net:6380,password=secret,ssl=True,abortConnect=False", addr: "cache.redis.cache.windows.net:6380", password: "secret", tls: true},
		{name: "plain host", conn: "localhost:6379", addr: "localhost:6379"},
		{name: "empty", conn: "", wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			opts, err := ParseRedisOptions(tt.conn)
			if tt.wantErr {
				if err == nil {
					t.Fatalf("expected error")
				}
				return
			}
			if err != nil {
				t.Fatalf("parse: %v", err)
			}
			if opts.Addr != tt.addr || opts.Password != tt.password || (opts.TLSConfig != nil) != tt.tls {
				t.Fatalf("unexpected options: addr=%s password=%s tls=%v", opts.Addr, opts.Password, opts.TLSConfig != nil)
			}
		})
	}
}

func TestDecodeBoardEntity(t *testing.T) {
	data := []byte(`{"PartitionKey":"board","RowKey":"tasks","Value":"{\"Needed\":[]}"}`)
	value, err := decodeBoardEntity(data)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if string(value) != `{"Needed":[]}` {
		t.Fatalf("unexpected value: %s", value)
	}
}
