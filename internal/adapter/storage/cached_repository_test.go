package storage

import (
	"context"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/rl1809/car-purchase/internal/core/domain"
)

func newCachedRepo(t *testing.T) (*CachedRepository, *MemoryAdapter, *RedisAdapter) {
	_, client := getRedisClient(t)
	mem := NewMemoryAdapter()
	cache := NewRedisAdapter(client, time.Minute, time.Hour)
	log := slog.New(slog.NewTextHandler(io.Discard, nil))

	return NewCachedRepository(log, mem, cache), mem, cache
}

func TestCachedRepository_FillsOnMiss(t *testing.T) {
	repo, mem, cache := newCachedRepo(t)
	ctx := context.Background()
	p := testPurchase()
	mem.Insert(ctx, p)

	got, err := repo.FindByID(ctx, p.ID)
	if err != nil {
		t.Fatalf("FindByID failed: %v", err)
	}
	if got == nil || *got != p {
		t.Fatalf("expected %+v, got %+v", p, got)
	}

	cached, _ := cache.GetPurchase(ctx, p.ID)
	if cached == nil {
		t.Error("expected purchase to be cached after read")
	}
}

func TestCachedRepository_MissingNotCached(t *testing.T) {
	repo, _, cache := newCachedRepo(t)
	ctx := context.Background()

	got, err := repo.FindByID(ctx, "missing")
	if err != nil || got != nil {
		t.Fatalf("expected nil, nil; got %+v, %v", got, err)
	}

	cached, _ := cache.GetPurchase(ctx, "missing")
	if cached != nil {
		t.Error("absent purchase must not be cached")
	}
}

func TestCachedRepository_UpdateInvalidates(t *testing.T) {
	repo, mem, _ := newCachedRepo(t)
	ctx := context.Background()
	p := testPurchase()
	mem.Insert(ctx, p)

	// Warm the cache
	repo.FindByID(ctx, p.ID)

	updated := p.PurchaseFields
	updated.Price = 1
	found, err := repo.ReplaceFields(ctx, p.ID, updated)
	if err != nil || !found {
		t.Fatalf("ReplaceFields failed: found=%v err=%v", found, err)
	}

	got, _ := repo.FindByID(ctx, p.ID)
	if got == nil || got.Price != 1 {
		t.Errorf("expected updated price 1, got %+v", got)
	}
}

func TestCachedRepository_DeleteInvalidates(t *testing.T) {
	repo, mem, _ := newCachedRepo(t)
	ctx := context.Background()
	p := testPurchase()
	mem.Insert(ctx, p)

	repo.FindByID(ctx, p.ID)

	found, err := repo.Delete(ctx, p.ID)
	if err != nil || !found {
		t.Fatalf("Delete failed: found=%v err=%v", found, err)
	}

	got, _ := repo.FindByID(ctx, p.ID)
	if got != nil {
		t.Errorf("expected deleted purchase to be gone, got %+v", got)
	}
}

func TestCachedRepository_CacheDownReadsFallBack(t *testing.T) {
	mr, client := getRedisClient(t)
	mem := NewMemoryAdapter()
	log := slog.New(slog.NewTextHandler(io.Discard, nil))
	repo := NewCachedRepository(log, mem, NewRedisAdapter(client, time.Minute, time.Hour))
	ctx := context.Background()

	p := testPurchase()
	mem.Insert(ctx, p)
	mr.Close()

	got, err := repo.FindByID(ctx, p.ID)
	if err != nil {
		t.Fatalf("expected store fallback, got error: %v", err)
	}
	if got == nil || *got != p {
		t.Errorf("expected %+v, got %+v", p, got)
	}

	found, err := repo.Delete(ctx, p.ID)
	if err == nil || found {
		t.Errorf("expected delete to be refused without cache, got found=%v err=%v", found, err)
	}
	if stored, _ := mem.FindByID(ctx, p.ID); stored == nil {
		t.Error("expected purchase to stay in the store")
	}
}

func TestCachedRepository_InvalidationFailureBlocksWrite(t *testing.T) {
	mr, client := getRedisClient(t)
	mem := NewMemoryAdapter()
	log := slog.New(slog.NewTextHandler(io.Discard, nil))
	repo := NewCachedRepository(log, mem, NewRedisAdapter(client, time.Minute, time.Hour))
	ctx := context.Background()

	p := testPurchase()
	mem.Insert(ctx, p)

	// Warm the cache
	repo.FindByID(ctx, p.ID)

	mr.SetError("READONLY cache unavailable")

	found, err := repo.Delete(ctx, p.ID)
	if err == nil || found {
		t.Fatalf("expected delete to fail while cache is unavailable, got found=%v err=%v", found, err)
	}

	updated := p.PurchaseFields
	updated.Price = 1
	found, err = repo.ReplaceFields(ctx, p.ID, updated)
	if err == nil || found {
		t.Fatalf("expected update to fail while cache is unavailable, got found=%v err=%v", found, err)
	}

	stored, _ := mem.FindByID(ctx, p.ID)
	if stored == nil || *stored != p {
		t.Fatalf("expected store untouched, got %+v", stored)
	}

	mr.SetError("")

	found, err = repo.Delete(ctx, p.ID)
	if err != nil || !found {
		t.Fatalf("expected delete to succeed once cache recovers, got found=%v err=%v", found, err)
	}

	got, err := repo.FindByID(ctx, p.ID)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != nil {
		t.Errorf("expected deleted purchase to be gone, got %+v", got)
	}
}

func TestMemoryAdapter_ListOrdered(t *testing.T) {
	mem := NewMemoryAdapter()
	ctx := context.Background()

	for _, id := range []string{"c", "a", "b"} {
		mem.Insert(ctx, domain.NewPurchase(id, domain.PurchaseFields{UserID: "u1"}))
	}
	mem.Insert(ctx, domain.NewPurchase("d", domain.PurchaseFields{UserID: "u2"}))

	all, _ := mem.FindAll(ctx)
	if len(all) != 4 || all[0].ID != "a" || all[3].ID != "d" {
		t.Errorf("expected ordered ids a..d, got %+v", all)
	}

	mine, _ := mem.FindByUser(ctx, "u1")
	if len(mine) != 3 {
		t.Errorf("expected 3 purchases for u1, got %d", len(mine))
	}
}
