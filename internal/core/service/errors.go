package service

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/rl1809/car-purchase/internal/port"
)

var (
	ErrDuplicateRequest = errors.New("duplicate request")
	ErrPurchaseNotFound = errors.New("purchase not found")
	ErrNoPurchases      = errors.New("empty")
)

// UpstreamError reports that the purchase was persisted but the inventory
// service did not accept the availability change. StatusCode is the status
// the caller should see.
type UpstreamError struct {
	PurchaseID string
	CarID      string
	Step       string
	StatusCode int
	Message    string
	Err        error
}

func (e *UpstreamError) Error() string {
	return fmt.Sprintf("purchase %s: %s %s: %v", e.PurchaseID, e.Step, e.CarID, e.Err)
}

func (e *UpstreamError) Unwrap() error {
	return e.Err
}

func newUpstreamError(purchaseID, carID, step string, err error) *UpstreamError {
	ue := &UpstreamError{
		PurchaseID: purchaseID,
		CarID:      carID,
		Step:       step,
		StatusCode: http.StatusBadGateway,
		Message:    "inventory service unavailable",
		Err:        err,
	}

	var remote *port.RemoteError
	switch {
	case errors.As(err, &remote):
		ue.StatusCode = remote.StatusCode
		ue.Message = remote.Message
		if ue.Message == "" {
			ue.Message = http.StatusText(remote.StatusCode)
		}
		if errors.Is(err, port.ErrCarNotFound) {
			ue.Message = "car not found"
		}
	case errors.Is(err, context.DeadlineExceeded):
		ue.StatusCode = http.StatusGatewayTimeout
		ue.Message = "inventory service timed out"
	}

	return ue
}
