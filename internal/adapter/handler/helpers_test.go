package handler

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/rl1809/car-purchase/internal/adapter/inventory"
	"github.com/rl1809/car-purchase/internal/adapter/storage"
	"github.com/rl1809/car-purchase/internal/core/domain"
	"github.com/rl1809/car-purchase/internal/core/service"
	"github.com/rl1809/car-purchase/internal/port"
)

// carServer is a minimal stand-in for the inventory service.
type carServer struct {
	mu       sync.Mutex
	cars     map[string]map[string]any
	requests []string
	failPut  int
}

func (s *carServer) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.requests = append(s.requests, r.Method+" "+r.URL.Path)
	id := strings.TrimPrefix(r.URL.Path, "/car/")

	car, ok := s.cars[id]
	if !ok {
		w.WriteHeader(http.StatusNotFound)
		w.Write([]byte(`{"message":"car not found"}`))
		return
	}

	switch r.Method {
	case http.MethodGet:
		json.NewEncoder(w).Encode(car)
	case http.MethodPut:
		if s.failPut != 0 {
			w.WriteHeader(s.failPut)
			w.Write([]byte(`{"message":"inventory rejected update"}`))
			return
		}
		var updated map[string]any
		json.NewDecoder(r.Body).Decode(&updated)
		s.cars[id] = updated
	}
}

type testEnv struct {
	cars    *carServer
	repo    *storage.MemoryAdapter
	service *service.PurchaseService
	log     *slog.Logger
}

func setupTestEnv(t *testing.T) *testEnv {
	return setupTestEnvWith(t, nil, nil)
}

// setupTestEnvWith builds the service on wrap(memory store) when wrap is set.
func setupTestEnvWith(t *testing.T, wrap func(*storage.MemoryAdapter) port.PurchaseRepository, idempotency port.IdempotencyStore) *testEnv {
	t.Helper()

	cars := &carServer{cars: map[string]map[string]any{
		"c9": {"id": "c9", "name": "Model X", "available": true},
	}}
	srv := httptest.NewServer(cars)
	t.Cleanup(srv.Close)

	log := slog.New(slog.NewTextHandler(io.Discard, nil))
	mem := storage.NewMemoryAdapter()

	var repo port.PurchaseRepository = mem
	if wrap != nil {
		repo = wrap(mem)
	}
	svc := service.NewPurchaseService(log, repo, inventory.NewHTTPClient(srv.URL, time.Second), idempotency)

	return &testEnv{cars: cars, repo: mem, service: svc, log: log}
}

// failingRepo refuses every insert.
type failingRepo struct {
	*storage.MemoryAdapter
}

func (failingRepo) Insert(ctx context.Context, p domain.Purchase) error {
	return errors.New("connection refused")
}

// hangingRepo blocks inserts until the request context ends.
type hangingRepo struct {
	*storage.MemoryAdapter
}

func (hangingRepo) Insert(ctx context.Context, p domain.Purchase) error {
	<-ctx.Done()
	return ctx.Err()
}
