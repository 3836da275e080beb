package handler

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/rl1809/car-purchase/internal/core/domain"
	"github.com/rl1809/car-purchase/internal/core/service"
)

const idempotencyHeader = "Idempotency-Key"

type HTTPHandler struct {
	log             *slog.Logger
	purchaseService *service.PurchaseService
	requestTimeout  time.Duration
}

type MessageResponse struct {
	Message string `json:"message"`
	ID      string `json:"id,omitempty"`
}

func NewHTTPHandler(log *slog.Logger, purchaseService *service.PurchaseService, requestTimeout time.Duration) *HTTPHandler {
	return &HTTPHandler{
		log:             log,
		purchaseService: purchaseService,
		requestTimeout:  requestTimeout,
	}
}

func (h *HTTPHandler) Routes() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(h.logRequests)
	r.Use(middleware.Recoverer)
	if h.requestTimeout > 0 {
		r.Use(middleware.Timeout(h.requestTimeout))
	}

	r.Get("/health", h.HealthCheck)

	r.Post("/purchase", h.CreatePurchase)
	r.Get("/purchase/{id}", h.GetPurchase)
	r.Put("/purchase/{id}", h.UpdatePurchase)
	r.Delete("/purchase/{id}", h.DeletePurchase)

	r.Get("/purchases", h.ListPurchases)
	r.Get("/purchases/{user_id}", h.ListPurchasesByUser)

	return r
}

func (h *HTTPHandler) CreatePurchase(w http.ResponseWriter, r *http.Request) {
	fields, ok := h.decodeFields(w, r)
	if !ok {
		return
	}

	id, err := h.purchaseService.CreatePurchase(r.Context(), r.Header.Get(idempotencyHeader), fields)
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, MessageResponse{Message: "created:" + id})
}

func (h *HTTPHandler) GetPurchase(w http.ResponseWriter, r *http.Request) {
	purchase, err := h.purchaseService.GetPurchase(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, purchase)
}

func (h *HTTPHandler) UpdatePurchase(w http.ResponseWriter, r *http.Request) {
	fields, ok := h.decodeFields(w, r)
	if !ok {
		return
	}

	id := chi.URLParam(r, "id")
	if err := h.purchaseService.UpdatePurchase(r.Context(), id, fields); err != nil {
		h.writeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, MessageResponse{Message: "updated:" + id})
}

func (h *HTTPHandler) DeletePurchase(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if err := h.purchaseService.DeletePurchase(r.Context(), id); err != nil {
		h.writeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, MessageResponse{Message: "deleted:" + id})
}

func (h *HTTPHandler) ListPurchases(w http.ResponseWriter, r *http.Request) {
	purchases, err := h.purchaseService.ListPurchases(r.Context())
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, purchases)
}

func (h *HTTPHandler) ListPurchasesByUser(w http.ResponseWriter, r *http.Request) {
	purchases, err := h.purchaseService.ListPurchasesByUser(r.Context(), chi.URLParam(r, "user_id"))
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, purchases)
}

func (h *HTTPHandler) HealthCheck(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (h *HTTPHandler) decodeFields(w http.ResponseWriter, r *http.Request) (domain.PurchaseFields, bool) {
	var fields domain.PurchaseFields
	if err := json.NewDecoder(r.Body).Decode(&fields); err != nil {
		writeJSON(w, http.StatusBadRequest, MessageResponse{Message: "invalid request body"})
		return fields, false
	}

	if err := validateFields(fields); err != nil {
		writeJSON(w, http.StatusBadRequest, MessageResponse{Message: err.Error()})
		return fields, false
	}

	return fields, true
}

func (h *HTTPHandler) writeError(w http.ResponseWriter, r *http.Request, err error) {
	var upstream *service.UpstreamError

	switch {
	case errors.Is(err, service.ErrPurchaseNotFound):
		writeJSON(w, http.StatusNotFound, MessageResponse{Message: "purchase not found"})
	case errors.Is(err, service.ErrNoPurchases):
		writeJSON(w, http.StatusNotFound, MessageResponse{Message: "empty"})
	case errors.Is(err, service.ErrDuplicateRequest):
		writeJSON(w, http.StatusConflict, MessageResponse{Message: "duplicate request"})
	case errors.As(err, &upstream):
		writeJSON(w, upstream.StatusCode, MessageResponse{Message: upstream.Message, ID: upstream.PurchaseID})
	case errors.Is(err, context.DeadlineExceeded):
		writeJSON(w, http.StatusGatewayTimeout, MessageResponse{Message: "request timed out"})
	default:
		h.log.ErrorContext(r.Context(), "request failed",
			"method", r.Method,
			"path", r.URL.Path,
			"request_id", middleware.GetReqID(r.Context()),
			"err", err,
		)
		writeJSON(w, http.StatusInternalServerError, MessageResponse{Message: "internal error"})
	}
}

func (h *HTTPHandler) logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		start := time.Now()

		next.ServeHTTP(ww, r)

		h.log.InfoContext(r.Context(), "http request",
			"method", r.Method,
			"path", r.URL.Path,
			"status", ww.Status(),
			"duration", time.Since(start),
			"request_id", middleware.GetReqID(r.Context()),
		)
	})
}

func writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}
