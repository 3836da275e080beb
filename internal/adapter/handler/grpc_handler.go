package handler

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"github.com/rl1809/car-purchase/internal/core/domain"
	"github.com/rl1809/car-purchase/internal/core/service"
)

type GRPCHandler struct {
	log             *slog.Logger
	purchaseService *service.PurchaseService
}

func NewGRPCHandler(log *slog.Logger, purchaseService *service.PurchaseService) *GRPCHandler {
	return &GRPCHandler{log: log, purchaseService: purchaseService}
}

func (h *GRPCHandler) CreatePurchase(ctx context.Context, req *CreatePurchaseRequest) (*CreatePurchaseResponse, error) {
	if err := validateFields(req.Purchase); err != nil {
		return nil, status.Error(codes.InvalidArgument, err.Error())
	}

	id, err := h.purchaseService.CreatePurchase(ctx, req.RequestID, req.Purchase)
	if err != nil {
		return nil, h.toStatus(ctx, err)
	}

	return &CreatePurchaseResponse{ID: id, Message: "created:" + id}, nil
}

func (h *GRPCHandler) GetPurchase(ctx context.Context, req *GetPurchaseRequest) (*GetPurchaseResponse, error) {
	purchase, err := h.purchaseService.GetPurchase(ctx, req.ID)
	if err != nil {
		return nil, h.toStatus(ctx, err)
	}

	return &GetPurchaseResponse{Purchase: purchase}, nil
}

func (h *GRPCHandler) UpdatePurchase(ctx context.Context, req *UpdatePurchaseRequest) (*MessageReply, error) {
	if err := validateFields(req.Purchase); err != nil {
		return nil, status.Error(codes.InvalidArgument, err.Error())
	}

	if err := h.purchaseService.UpdatePurchase(ctx, req.ID, req.Purchase); err != nil {
		return nil, h.toStatus(ctx, err)
	}

	return &MessageReply{Message: "updated:" + req.ID}, nil
}

func (h *GRPCHandler) DeletePurchase(ctx context.Context, req *DeletePurchaseRequest) (*MessageReply, error) {
	if err := h.purchaseService.DeletePurchase(ctx, req.ID); err != nil {
		return nil, h.toStatus(ctx, err)
	}

	return &MessageReply{Message: "deleted:" + req.ID}, nil
}

func (h *GRPCHandler) ListPurchases(ctx context.Context, req *ListPurchasesRequest) (*ListPurchasesResponse, error) {
	list := h.purchaseService.ListPurchases
	if req.UserID != "" {
		list = func(ctx context.Context) ([]domain.Purchase, error) {
			return h.purchaseService.ListPurchasesByUser(ctx, req.UserID)
		}
	}

	purchases, err := list(ctx)
	if err != nil {
		return nil, h.toStatus(ctx, err)
	}

	return &ListPurchasesResponse{Purchases: purchases}, nil
}

func (h *GRPCHandler) toStatus(ctx context.Context, err error) error {
	var upstream *service.UpstreamError

	switch {
	case errors.Is(err, service.ErrPurchaseNotFound):
		return status.Error(codes.NotFound, "purchase not found")
	case errors.Is(err, service.ErrNoPurchases):
		return status.Error(codes.NotFound, "empty")
	case errors.Is(err, service.ErrDuplicateRequest):
		return status.Error(codes.AlreadyExists, "duplicate request")
	case errors.As(err, &upstream):
		code := codes.Unavailable
		switch upstream.StatusCode {
		case http.StatusNotFound:
			code = codes.FailedPrecondition
		case http.StatusGatewayTimeout:
			code = codes.DeadlineExceeded
		}
		return status.Errorf(code, "purchase %s: inventory %d: %s", upstream.PurchaseID, upstream.StatusCode, upstream.Message)
	case errors.Is(err, context.DeadlineExceeded):
		return status.Error(codes.DeadlineExceeded, "request timed out")
	default:
		h.log.ErrorContext(ctx, "grpc request failed", "err", err)
		return status.Error(codes.Internal, "internal error")
	}
}

func (h *GRPCHandler) UnaryLogger(ctx context.Context, req interface{}, info *grpc.UnaryServerInfo, next grpc.UnaryHandler) (interface{}, error) {
	start := time.Now()
	resp, err := next(ctx, req)

	h.log.InfoContext(ctx, "grpc request",
		"method", info.FullMethod,
		"code", status.Code(err).String(),
		"duration", time.Since(start),
	)

	return resp, err
}

// UnaryTimeout bounds every call by d, whatever deadline the client sent.
func UnaryTimeout(d time.Duration) grpc.UnaryServerInterceptor {
	return func(ctx context.Context, req interface{}, info *grpc.UnaryServerInfo, next grpc.UnaryHandler) (interface{}, error) {
		if d <= 0 {
			return next(ctx, req)
		}

		ctx, cancel := context.WithTimeout(ctx, d)
		defer cancel()

		return next(ctx, req)
	}
}
