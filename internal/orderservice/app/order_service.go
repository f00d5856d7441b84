package app

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/tmavn/ordertrack/internal/orderservice/domain"
	"github.com/tmavn/ordertrack/internal/orderservice/repository"
	"github.com/tmavn/ordertrack/internal/platform/moduleaccess"
	"github.com/tmavn/ordertrack/internal/platform/restclient"
)

// OrderService owns the order lifecycle. Deleting an order never removes
// the row; it moves the order to the Failed state.
type OrderService struct {
	orders  repository.OrderRepository
	access  *moduleaccess.Registry
	rest    *restclient.Client
	logger  *slog.Logger
	nowFunc func() time.Time
}

func NewOrderService(
	orders repository.OrderRepository,
	access *moduleaccess.Registry,
	rest *restclient.Client,
	logger *slog.Logger,
) *OrderService {
	return &OrderService{
		orders:  orders,
		access:  access,
		rest:    rest,
		logger:  logger.With("component", "order_service"),
		nowFunc: time.Now,
	}
}

func (s *OrderService) FindAll(ctx context.Context) ([]*domain.Order, error) {
	return s.orders.List(ctx)
}

func (s *OrderService) FindByID(ctx context.Context, id string) (*domain.Order, error) {
	return s.orders.GetByID(ctx, id)
}

func (s *OrderService) Exists(ctx context.Context, id string) (bool, error) {
	return s.orders.Exists(ctx, id)
}

// Create stamps order/modify dates, fetches the order's notes from the
// OPS module and persists the result.
func (s *OrderService) Create(ctx context.Context, order *domain.Order) (*domain.Order, error) {
	now := s.nowFunc().Format(domain.DatePattern)
	order.ID = ""
	order.OrderDate = now
	order.ModifyDate = now

	notes, err := s.fetchNotes(ctx, order)
	if err != nil {
		return nil, err
	}
	order.Notes = notes

	created, err := s.orders.Create(ctx, order)
	if err != nil {
		return nil, err
	}
	s.logger.DebugContext(ctx, "order created", "order_id", created.ID, "state", created.State)
	return created, nil
}

// Put replaces every field of an existing order except its id and
// original order date.
func (s *OrderService) Put(ctx context.Context, id string, order *domain.Order) (*domain.Order, error) {
	oldOrder, err := s.orders.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	oldOrder.Description = order.Description
	oldOrder.State = order.State
	oldOrder.ModifyDate = s.nowFunc().Format(domain.DatePattern)

	updated, err := s.orders.Update(ctx, oldOrder)
	if err != nil {
		return nil, err
	}
	s.logger.DebugContext(ctx, "order replaced", "order_id", id, "state", updated.State)
	return updated, nil
}

// Patch merges the non-empty fields of patch into the stored order.
func (s *OrderService) Patch(ctx context.Context, id string, patch *domain.Order) (*domain.Order, error) {
	oldOrder, err := s.orders.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if patch.Description != "" {
		oldOrder.Description = patch.Description
	}
	if patch.State != "" {
		oldOrder.State = patch.State
	}
	oldOrder.ModifyDate = s.nowFunc().Format(domain.DatePattern)

	patched, err := s.orders.Update(ctx, oldOrder)
	if err != nil {
		return nil, err
	}
	s.logger.DebugContext(ctx, "order patched", "order_id", id, "state", patched.State)
	return patched, nil
}

// Delete moves the order to the Failed state instead of removing it.
func (s *OrderService) Delete(ctx context.Context, id string) (*domain.Order, error) {
	order, err := s.orders.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	order.State = domain.StateFailed
	order.ModifyDate = s.nowFunc().Format(domain.DatePattern)

	deleted, err := s.orders.Update(ctx, order)
	if err != nil {
		return nil, err
	}
	s.logger.DebugContext(ctx, "order marked failed", "order_id", id)
	return deleted, nil
}

// fetchNotes asks the OPS module for the notes belonging to a new order.
// The gateway never returns an error, so failures show up as non-2xx
// results.
func (s *OrderService) fetchNotes(ctx context.Context, order *domain.Order) ([]domain.Note, error) {
	url, ok := s.access.FindURL(moduleaccess.ModuleOPS, moduleaccess.ResourceCreateOrder)
	if !ok {
		return nil, fmt.Errorf("no module access URL for %s/%s",
			moduleaccess.ModuleOPS, moduleaccess.ResourceCreateOrder)
	}

	result := s.rest.Post(ctx, url, restclient.Request{
		Body:     order,
		Response: new(json.RawMessage),
		Outside:  true,
	})
	if result.StatusCode >= 400 {
		return nil, fmt.Errorf("OPS CreateOrder call failed with status %d: %s",
			result.StatusCode, string(result.Body))
	}

	var notes []domain.Note
	if err := json.Unmarshal(result.Body, &notes); err != nil {
		return nil, fmt.Errorf("failed to parse notes from OPS response: %w", err)
	}
	return notes, nil
}
