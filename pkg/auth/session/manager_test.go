package session

import (
	"context"
	"errors"
	"testing"
	"time"

	redislib "github.com/redis/go-redis/v9"
)

type fakeStore struct {
	data map[string]string
}

func newFakeStore() *fakeStore {
	return &fakeStore{data: map[string]string{}}
}

func (f *fakeStore) Set(ctx context.Context, key string, value any, ttl time.Duration) error {
	f.data[key] = value.(string)
	return nil
}

func (f *fakeStore) Get(ctx context.Context, key string) (string, error) {
	v, ok := f.data[key]
	if !ok {
		return "", redislib.Nil
	}
	return v, nil
}

func (f *fakeStore) Del(ctx context.Context, keys ...string) error {
	for _, key := range keys {
		delete(f.data, key)
	}
	return nil
}

type fakeKeyer struct{}

func (fakeKeyer) AccessSessionKey(accessID string) string {
	return "cd:session:access:" + accessID
}

func newTestManager(store *fakeStore) *Manager {
	return &Manager{store: store, keyer: fakeKeyer{}, ttl: time.Hour}
}

func TestGenerateAndHasSession(t *testing.T) {
	store := newFakeStore()
	mgr := newTestManager(store)
	ctx := context.Background()

	token, err := mgr.Generate(ctx, "access-1")
	if err != nil {
		t.Fatalf("generate failed: %v", err)
	}
	if token == "" {
		t.Fatal("expected non-empty refresh token")
	}

	ok, err := mgr.HasSession(ctx, "access-1")
	if err != nil {
		t.Fatalf("has session failed: %v", err)
	}
	if !ok {
		t.Fatal("expected active session")
	}

	ok, err = mgr.HasSession(ctx, "access-unknown")
	if err != nil {
		t.Fatalf("has session failed: %v", err)
	}
	if ok {
		t.Fatal("expected no session for unknown access id")
	}
}

func TestRotateInvalidatesOldSession(t *testing.T) {
	store := newFakeStore()
	mgr := newTestManager(store)
	ctx := context.Background()

	token, err := mgr.Generate(ctx, "access-1")
	if err != nil {
		t.Fatalf("generate failed: %v", err)
	}

	newAccessID, newToken, err := mgr.Rotate(ctx, "access-1", token)
	if err != nil {
		t.Fatalf("rotate failed: %v", err)
	}
	if newAccessID == "" || newToken == "" {
		t.Fatal("expected new session credentials")
	}

	ok, err := mgr.HasSession(ctx, "access-1")
	if err != nil {
		t.Fatalf("has session failed: %v", err)
	}
	if ok {
		t.Fatal("old session should be revoked after rotation")
	}

	ok, err = mgr.HasSession(ctx, newAccessID)
	if err != nil {
		t.Fatalf("has session failed: %v", err)
	}
	if !ok {
		t.Fatal("new session should be active after rotation")
	}
}

func TestRotateRejectsWrongToken(t *testing.T) {
	store := newFakeStore()
	mgr := newTestManager(store)
	ctx := context.Background()

	if _, err := mgr.Generate(ctx, "access-1"); err != nil {
		t.Fatalf("generate failed: %v", err)
	}

	_, _, err := mgr.Rotate(ctx, "access-1", "not-the-token")
	if !errors.Is(err, ErrInvalidRefreshToken) {
		t.Fatalf("expected ErrInvalidRefreshToken, got %v", err)
	}
}

func TestRevoke(t *testing.T) {
	store := newFakeStore()
	mgr := newTestManager(store)
	ctx := context.Background()

	if _, err := mgr.Generate(ctx, "access-1"); err != nil {
		t.Fatalf("generate failed: %v", err)
	}
	if err := mgr.Revoke(ctx, "access-1"); err != nil {
		t.Fatalf("revoke failed: %v", err)
	}
	ok, err := mgr.HasSession(ctx, "access-1")
	if err != nil {
		t.Fatalf("has session failed: %v", err)
	}
	if ok {
		t.Fatal("expected revoked session")
	}
}
