package redis

import (
	"context"
	"testing"
	"time"
)

func TestIdempotencyCheckAndSetNewKey(t *testing.T) {
	client, mr := newTestRedisClient(t)
	defer mr.Close()
	defer client.Close()

	store := NewIdempotencyStore(client)
	ctx := context.Background()

	exists, _, err := store.CheckAndSet(ctx, "k1", nil, time.Minute)
	if err != nil {
		t.Fatalf("check failed: %v", err)
	}
	if exists {
		t.Fatalf("expected new key")
	}
}

func TestIdempotencyCheckAndSetReplay(t *testing.T) {
	client, mr := newTestRedisClient(t)
	defer mr.Close()
	defer client.Close()

	store := NewIdempotencyStore(client)
	ctx := context.Background()

	if _, _, err := store.CheckAndSet(ctx, "k1", []byte(`{"status":"COMMITTED"}`), time.Minute); err != nil {
		t.Fatalf("first check failed: %v", err)
	}

	exists, stored, err := store.CheckAndSet(ctx, "k1", nil, time.Minute)
	if err != nil {
		t.Fatalf("second check failed: %v", err)
	}
	if !exists {
		t.Fatalf("expected replay for existing key")
	}
	if string(stored) != `{"status":"COMMITTED"}` {
		t.Fatalf("unexpected stored response %s", stored)
	}
}

func TestIdempotencyUpdate(t *testing.T) {
	client, mr := newTestRedisClient(t)
	defer mr.Close()
	defer client.Close()

	store := NewIdempotencyStore(client)
	ctx := context.Background()

	if _, _, err := store.CheckAndSet(ctx, "k1", nil, time.Minute); err != nil {
		t.Fatalf("claim failed: %v", err)
	}

	if err := store.Update(ctx, "k1", []byte("final"), time.Minute); err != nil {
		t.Fatalf("update failed: %v", err)
	}

	exists, stored, err := store.CheckAndSet(ctx, "k1", nil, time.Minute)
	if err != nil {
		t.Fatalf("check failed: %v", err)
	}
	if !exists || string(stored) != "final" {
		t.Fatalf("expected final response, got exists=%v stored=%s", exists, stored)
	}
}
