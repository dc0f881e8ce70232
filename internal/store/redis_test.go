package store

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
)

func newMiniRedis(t *testing.T) (*RedisStore, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	rdb, err := NewRedisClient(context.Background(), mr.Addr(), "")
	if err != nil {
		t.Fatalf("connect: %v", err)
	}
	t.Cleanup(func() { rdb.Close() })
	return NewRedisStore(rdb), mr
}

func TestRedisStoreDelete(t *testing.T) {
	s, _ := newMiniRedis(t)
	exerciseDelete(t, s)
}

func TestRedisStoreTTL(t *testing.T) {
	ctx := context.Background()
	s, mr := newMiniRedis(t)
	if err := s.Set(ctx, "session:a:token", "abc", time.Minute); err != nil {
		t.Fatalf("set: %v", err)
	}
	if ttl := mr.TTL("session:a:token"); ttl != time.Minute {
		t.Fatalf("expected 1m ttl, got %v", ttl)
	}
	mr.FastForward(2 * time.Minute)
	if _, ok, err := s.Get(ctx, "session:a:token"); ok || err != nil {
		t.Fatalf("expected expired key, got ok=%v err=%v", ok, err)
	}
}

func TestRedisStoreMissingKey(t *testing.T) {
	s, _ := newMiniRedis(t)
	v, ok, err := s.Get(context.Background(), "nope")
	if err != nil || ok || v != "" {
		t.Fatalf("expected clean miss, got %q %v %v", v, ok, err)
	}
}

func TestNewRedisClientUnreachable(t *testing.T) {
	mr := miniredis.RunT(t)
	addr := mr.Addr()
	mr.Close()
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	if _, err := NewRedisClient(ctx, addr, ""); err == nil {
		t.Fatalf("expected ping failure")
	}
}
