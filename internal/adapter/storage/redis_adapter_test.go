package storage

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
)

func getRedisClient(t *testing.T) (*miniredis.Miniredis, *redis.Client) {
	t.Helper()

	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("failed to start miniredis: %v", err)
	}

	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() {
		client.Close()
		mr.Close()
	})

	return mr, client
}

func TestPurchaseCache_SetGet(t *testing.T) {
	_, client := getRedisClient(t)
	ctx := context.Background()
	adapter := NewRedisAdapter(client, time.Minute, time.Hour)
	p := testPurchase()

	if err := adapter.SetPurchase(ctx, p); err != nil {
		t.Fatalf("SetPurchase failed: %v", err)
	}

	got, err := adapter.GetPurchase(ctx, p.ID)
	if err != nil {
		t.Fatalf("GetPurchase failed: %v", err)
	}
	if got == nil || *got != p {
		t.Errorf("expected %+v, got %+v", p, got)
	}
}

func TestPurchaseCache_Miss(t *testing.T) {
	_, client := getRedisClient(t)
	adapter := NewRedisAdapter(client, time.Minute, time.Hour)

	got, err := adapter.GetPurchase(context.Background(), "unknown")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != nil {
		t.Errorf("expected cache miss, got %+v", got)
	}
}

func TestPurchaseCache_TTL(t *testing.T) {
	mr, client := getRedisClient(t)
	ctx := context.Background()
	adapter := NewRedisAdapter(client, time.Minute, time.Hour)
	p := testPurchase()

	adapter.SetPurchase(ctx, p)

	if ttl := mr.TTL("purchase:" + p.ID); ttl != time.Minute {
		t.Errorf("expected TTL 1m, got %v", ttl)
	}

	mr.FastForward(2 * time.Minute)

	got, _ := adapter.GetPurchase(ctx, p.ID)
	if got != nil {
		t.Error("expected entry to expire")
	}
}

func TestPurchaseCache_Delete(t *testing.T) {
	mr, client := getRedisClient(t)
	ctx := context.Background()
	adapter := NewRedisAdapter(client, time.Minute, time.Hour)
	p := testPurchase()

	adapter.SetPurchase(ctx, p)
	if err := adapter.DeletePurchase(ctx, p.ID); err != nil {
		t.Fatalf("DeletePurchase failed: %v", err)
	}

	if mr.Exists("purchase:" + p.ID) {
		t.Error("expected key to be removed")
	}
}

func TestSetIdempotency(t *testing.T) {
	mr, client := getRedisClient(t)
	ctx := context.Background()
	adapter := NewRedisAdapter(client, time.Minute, 24*time.Hour)

	ok, err := adapter.SetIdempotency(ctx, "idempotency:test")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !ok {
		t.Error("expected first set to succeed")
	}

	ok, err = adapter.SetIdempotency(ctx, "idempotency:test")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if ok {
		t.Error("expected second set to fail")
	}

	if ttl := mr.TTL("idempotency:test"); ttl != 24*time.Hour {
		t.Errorf("expected TTL 24h, got %v", ttl)
	}
}

func TestSetIdempotency_Concurrent(t *testing.T) {
	_, client := getRedisClient(t)
	ctx := context.Background()
	adapter := NewRedisAdapter(client, time.Minute, time.Hour)

	var successCount atomic.Int32
	var wg sync.WaitGroup

	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			ok, err := adapter.SetIdempotency(ctx, "idempotency:concurrent")
			if err == nil && ok {
				successCount.Add(1)
			}
		}()
	}

	wg.Wait()

	if successCount.Load() != 1 {
		t.Errorf("expected exactly 1 success, got %d", successCount.Load())
	}
}
