package storage

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/rl1809/car-purchase/internal/core/domain"
	"github.com/rl1809/car-purchase/internal/port"
)

// CachedRepository puts a read-through cache in front of a PurchaseRepository.
// Cache errors are logged and the store stays the source of truth.
type CachedRepository struct {
	port.PurchaseRepository
	cache port.PurchaseCache
	log   *slog.Logger
}

func NewCachedRepository(log *slog.Logger, repo port.PurchaseRepository, cache port.PurchaseCache) *CachedRepository {
	return &CachedRepository{
		PurchaseRepository: repo,
		cache:              cache,
		log:                log,
	}
}

func (c *CachedRepository) FindByID(ctx context.Context, id string) (*domain.Purchase, error) {
	cached, err := c.cache.GetPurchase(ctx, id)
	if err != nil {
		c.log.WarnContext(ctx, "purchase cache read failed", "purchase_id", id, "err", err)
	}
	if cached != nil {
		return cached, nil
	}

	p, err := c.PurchaseRepository.FindByID(ctx, id)
	if err != nil || p == nil {
		return p, err
	}

	if err := c.cache.SetPurchase(ctx, *p); err != nil {
		c.log.WarnContext(ctx, "purchase cache fill failed", "purchase_id", id, "err", err)
	}

	return p, nil
}

// ReplaceFields drops the cached entry before and after the store write. If
// the first drop fails the store is left untouched, so a stale entry can never
// outlive a successful write.
func (c *CachedRepository) ReplaceFields(ctx context.Context, id string, fields domain.PurchaseFields) (bool, error) {
	if err := c.cache.DeletePurchase(ctx, id); err != nil {
		return false, fmt.Errorf("invalidate cached purchase: %w", err)
	}

	found, err := c.PurchaseRepository.ReplaceFields(ctx, id, fields)
	if err != nil || !found {
		return found, err
	}

	c.invalidate(ctx, id)
	return true, nil
}

func (c *CachedRepository) Delete(ctx context.Context, id string) (bool, error) {
	if err := c.cache.DeletePurchase(ctx, id); err != nil {
		return false, fmt.Errorf("invalidate cached purchase: %w", err)
	}

	found, err := c.PurchaseRepository.Delete(ctx, id)
	if err != nil || !found {
		return found, err
	}

	c.invalidate(ctx, id)
	return true, nil
}

// invalidate clears entries refilled by readers between the first drop and
// the store write.
func (c *CachedRepository) invalidate(ctx context.Context, id string) {
	if err := c.cache.DeletePurchase(ctx, id); err != nil {
		c.log.WarnContext(ctx, "purchase cache invalidation failed", "purchase_id", id, "err", err)
	}
}
