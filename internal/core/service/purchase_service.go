package service

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/rl1809/car-purchase/internal/core/domain"
	"github.com/rl1809/car-purchase/internal/port"
)

const idempotencyKeyPrefix = "idempotency:purchase:"

type PurchaseService struct {
	log         *slog.Logger
	repo        port.PurchaseRepository
	inventory   port.InventoryClient
	idempotency port.IdempotencyStore
	tracer      trace.Tracer
	newID       func() string
}

// NewPurchaseService wires the service. idempotency may be nil, in which case
// request IDs are ignored.
func NewPurchaseService(log *slog.Logger, repo port.PurchaseRepository, inventory port.InventoryClient, idempotency port.IdempotencyStore) *PurchaseService {
	return &PurchaseService{
		log:         log,
		repo:        repo,
		inventory:   inventory,
		idempotency: idempotency,
		tracer:      otel.Tracer("purchase-service"),
		newID:       func() string { return uuid.New().String() },
	}
}

// CreatePurchase persists a purchase and then marks its car unavailable in
// the inventory service. The returned ID is non-empty whenever the purchase
// was persisted, including when the inventory update fails with an
// *UpstreamError. Nothing is rolled back in that case.
func (s *PurchaseService) CreatePurchase(ctx context.Context, requestID string, fields domain.PurchaseFields) (string, error) {
	ctx, span := s.tracer.Start(ctx, "PurchaseService.CreatePurchase",
		trace.WithAttributes(attribute.String("car.id", fields.CarID), attribute.String("user.id", fields.UserID)))
	defer span.End()

	if requestID != "" && s.idempotency != nil {
		ok, err := s.idempotency.SetIdempotency(ctx, idempotencyKeyPrefix+requestID)
		if err != nil {
			return "", fmt.Errorf("idempotency check failed: %w", err)
		}
		if !ok {
			return "", ErrDuplicateRequest
		}
	}

	purchase := domain.NewPurchase(s.newID(), fields)
	span.SetAttributes(attribute.String("purchase.id", purchase.ID))

	if err := s.repo.Insert(ctx, purchase); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "persist purchase")
		return "", fmt.Errorf("persist purchase: %w", err)
	}

	car, err := s.inventory.GetCar(ctx, purchase.CarID)
	if err != nil {
		return purchase.ID, s.inventoryFailure(ctx, span, purchase, "fetch car", err)
	}

	car.MarkUnavailable()

	if err := s.inventory.SetUnavailable(ctx, purchase.CarID, car); err != nil {
		return purchase.ID, s.inventoryFailure(ctx, span, purchase, "update car", err)
	}

	s.log.InfoContext(ctx, "purchase created", "purchase_id", purchase.ID, "car_id", purchase.CarID)
	return purchase.ID, nil
}

func (s *PurchaseService) inventoryFailure(ctx context.Context, span trace.Span, purchase domain.Purchase, step string, err error) error {
	ue := newUpstreamError(purchase.ID, purchase.CarID, step, err)

	span.RecordError(err)
	span.SetStatus(codes.Error, step)
	s.log.WarnContext(ctx, "purchase persisted but car availability not updated",
		"purchase_id", purchase.ID,
		"car_id", purchase.CarID,
		"step", step,
		"status", ue.StatusCode,
		"err", err,
	)

	return ue
}

func (s *PurchaseService) GetPurchase(ctx context.Context, id string) (domain.Purchase, error) {
	purchase, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return domain.Purchase{}, fmt.Errorf("find purchase: %w", err)
	}
	if purchase == nil {
		return domain.Purchase{}, ErrPurchaseNotFound
	}

	return *purchase, nil
}

func (s *PurchaseService) UpdatePurchase(ctx context.Context, id string, fields domain.PurchaseFields) error {
	found, err := s.repo.ReplaceFields(ctx, id, fields)
	if err != nil {
		return fmt.Errorf("update purchase: %w", err)
	}
	if !found {
		return ErrPurchaseNotFound
	}

	return nil
}

func (s *PurchaseService) DeletePurchase(ctx context.Context, id string) error {
	found, err := s.repo.Delete(ctx, id)
	if err != nil {
		return fmt.Errorf("delete purchase: %w", err)
	}
	if !found {
		return ErrPurchaseNotFound
	}

	return nil
}

func (s *PurchaseService) ListPurchases(ctx context.Context) ([]domain.Purchase, error) {
	purchases, err := s.repo.FindAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("list purchases: %w", err)
	}
	if len(purchases) == 0 {
		return nil, ErrNoPurchases
	}

	return purchases, nil
}

func (s *PurchaseService) ListPurchasesByUser(ctx context.Context, userID string) ([]domain.Purchase, error) {
	purchases, err := s.repo.FindByUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("list purchases for user: %w", err)
	}
	if len(purchases) == 0 {
		return nil, ErrNoPurchases
	}

	return purchases, nil
}
