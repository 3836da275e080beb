package handler

import (
	"errors"

	"github.com/rl1809/car-purchase/internal/core/domain"
)

var errMissingFields = errors.New("missing required fields")

func validateFields(f domain.PurchaseFields) error {
	if f.UserID == "" || f.CarID == "" || f.UserName == "" || f.CarName == "" {
		return errMissingFields
	}
	if f.Price < 0 || f.Discount < 0 {
		return errors.New("price and discount must be non-negative")
	}
	return nil
}
