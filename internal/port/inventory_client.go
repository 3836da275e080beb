package port

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/rl1809/car-purchase/internal/core/domain"
)

var ErrCarNotFound = errors.New("car not found")

// RemoteError is returned by an InventoryClient when the inventory service
// answers with a non-2xx status.
type RemoteError struct {
	Op         string
	StatusCode int
	Message    string
}

func (e *RemoteError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("%s: inventory returned %d", e.Op, e.StatusCode)
	}
	return fmt.Sprintf("%s: inventory returned %d: %s", e.Op, e.StatusCode, e.Message)
}

func (e *RemoteError) Is(target error) bool {
	return target == ErrCarNotFound && e.StatusCode == http.StatusNotFound
}

type InventoryClient interface {
	// GetCar fetches the full car resource
	GetCar(ctx context.Context, carID string) (domain.Car, error)

	// SetUnavailable writes the full car resource back with available=false
	SetUnavailable(ctx context.Context, carID string, car domain.Car) error
}
