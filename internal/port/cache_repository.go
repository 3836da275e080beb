package port

import (
	"context"

	"github.com/rl1809/car-purchase/internal/core/domain"
)

type PurchaseCache interface {
	// GetPurchase returns nil without error on a cache miss
	GetPurchase(ctx context.Context, id string) (*domain.Purchase, error)

	SetPurchase(ctx context.Context, purchase domain.Purchase) error

	DeletePurchase(ctx context.Context, id string) error
}

type IdempotencyStore interface {
	// SetIdempotency sets a key for idempotency check, returns false if already exists
	SetIdempotency(ctx context.Context, key string) (bool, error)
}
