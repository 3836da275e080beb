package port

import (
	"context"

	"github.com/rl1809/car-purchase/internal/core/domain"
)

type PurchaseRepository interface {
	// Insert stores a new purchase; the caller guarantees the ID is unique
	Insert(ctx context.Context, purchase domain.Purchase) error

	// FindByID returns nil without error when the purchase does not exist
	FindByID(ctx context.Context, id string) (*domain.Purchase, error)

	// FindAll returns every purchase ordered by ID
	FindAll(ctx context.Context) ([]domain.Purchase, error)

	// FindByUser returns the purchases of one user ordered by ID
	FindByUser(ctx context.Context, userID string) ([]domain.Purchase, error)

	// ReplaceFields overwrites all mutable fields, reports whether the purchase existed
	ReplaceFields(ctx context.Context, id string, fields domain.PurchaseFields) (bool, error)

	// Delete removes the purchase, reports whether it existed
	Delete(ctx context.Context, id string) (bool, error)
}
