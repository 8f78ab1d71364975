package session

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	redislib "github.com/redis/go-redis/v9"
)

type memoryStore struct {
	mu   sync.Mutex
	data map[string]string
	ttls map[string]time.Duration
}

func newMemoryStore() *memoryStore {
	return &memoryStore{data: map[string]string{}, ttls: map[string]time.Duration{}}
}

func (m *memoryStore) Set(ctx context.Context, key string, value any, ttl time.Duration) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.data[key] = fmt.Sprint(value)
	m.ttls[key] = ttl
	return nil
}

func (m *memoryStore) Get(ctx context.Context, key string) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	val, ok := m.data[key]
	if !ok {
		return "", redislib.Nil
	}
	return val, nil
}

func (m *memoryStore) Del(ctx context.Context, keys ...string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, key := range keys {
		delete(m.data, key)
	}
	return nil
}

func (m *memoryStore) AccessSessionKey(accessID string) string {
	return "sess:" + accessID
}

func TestManagerSessionLifecycle(t *testing.T) {
	store := newMemoryStore()
	manager, err := newManager(store, time.Hour)
	if err != nil {
		t.Fatalf("newManager: %v", err)
	}

	ctx := context.Background()
	accessID := NewAccessID()
	userID := uuid.New()
	if err := manager.Open(ctx, accessID, userID); err != nil {
		t.Fatalf("open: %v", err)
	}
	if got := store.data["sess:"+accessID]; got != userID.String() {
		t.Fatalf("expected user id stored, got %q", got)
	}
	if got := store.ttls["sess:"+accessID]; got != time.Hour {
		t.Fatalf("expected session ttl 1h, got %s", got)
	}

	ok, err := manager.HasSession(ctx, accessID)
	if err != nil || !ok {
		t.Fatalf("expected live session, got ok=%v err=%v", ok, err)
	}

	if err := manager.Revoke(ctx, accessID); err != nil {
		t.Fatalf("revoke: %v", err)
	}
	if err := manager.Revoke(ctx, accessID); err != nil {
		t.Fatalf("second revoke should be a no-op: %v", err)
	}
	ok, err = manager.HasSession(ctx, accessID)
	if err != nil || ok {
		t.Fatalf("expected revoked session, got ok=%v err=%v", ok, err)
	}
}

func TestManagerRejectsBlankAccessID(t *testing.T) {
	manager, _ := newManager(newMemoryStore(), time.Minute)

	if err := manager.Open(context.Background(), "  ", uuid.New()); !errors.Is(err, ErrBlankAccessID) {
		t.Fatalf("expected ErrBlankAccessID, got %v", err)
	}
	if _, err := manager.HasSession(context.Background(), ""); !errors.Is(err, ErrBlankAccessID) {
		t.Fatalf("expected ErrBlankAccessID, got %v", err)
	}
}

func TestNewManagerRequiresPositiveTTL(t *testing.T) {
	if _, err := newManager(newMemoryStore(), 0); err == nil {
		t.Fatal("expected error for zero ttl")
	}
}

type brokenStore struct{ *memoryStore }

func (b brokenStore) Get(ctx context.Context, key string) (string, error) {
	return "", errors.New("connection reset")
}

func TestManagerHasSessionSurfacesStoreErrors(t *testing.T) {
	manager, _ := newManager(brokenStore{newMemoryStore()}, time.Minute)

	if _, err := manager.HasSession(context.Background(), "abc"); err == nil {
		t.Fatal("expected store error to propagate")
	}
}
