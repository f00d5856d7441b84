package http

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/tmavn/ordertrack/internal/orderservice/domain"
	"github.com/tmavn/ordertrack/internal/orderservice/repository/postgres"
	"github.com/tmavn/ordertrack/internal/platform/jsonvalidate"
	"github.com/tmavn/ordertrack/internal/platform/restclient"
)

const maxRequestBodySize = 1 << 20 // 1 MB

// OrderManager is what the handler needs from the order service.
// An interface so tests can mock it.
type OrderManager interface {
	FindAll(ctx context.Context) ([]*domain.Order, error)
	FindByID(ctx context.Context, id string) (*domain.Order, error)
	Exists(ctx context.Context, id string) (bool, error)
	Create(ctx context.Context, order *domain.Order) (*domain.Order, error)
	Put(ctx context.Context, id string, order *domain.Order) (*domain.Order, error)
	Patch(ctx context.Context, id string, patch *domain.Order) (*domain.Order, error)
	Delete(ctx context.Context, id string) (*domain.Order, error)
}

// StateChangeNotifier triggers webhook fan-out after a mutation.
type StateChangeNotifier interface {
	NotifyStateChange(ctx context.Context, userID string, newOrder, oldOrder *domain.Order)
}

type OrderHandler struct {
	orders      OrderManager
	stateChange StateChangeNotifier
	baseDir     string
	logger      *slog.Logger
}

func NewOrderHandler(orders OrderManager, stateChange StateChangeNotifier, baseDir string, logger *slog.Logger) *OrderHandler {
	return &OrderHandler{
		orders:      orders,
		stateChange: stateChange,
		baseDir:     baseDir,
		logger:      logger.With("component", "order_handler"),
	}
}

func (h *OrderHandler) Routes(r chi.Router) {
	r.Get("/", h.listOrders)
	r.Get("/{id}", h.getOrder)
	r.Post("/", h.addOrder)
	r.Put("/{id}", h.putOrder)
	r.Patch("/{id}", h.patchOrder)
	r.Delete("/{id}", h.deleteOrder)
}

func (h *OrderHandler) listOrders(w http.ResponseWriter, r *http.Request) {
	orders, err := h.orders.FindAll(r.Context())
	if err != nil {
		h.logger.ErrorContext(r.Context(), "failed to list orders", "error", err)
		writeJSON(w, h.logger, http.StatusInternalServerError, nil)
		return
	}
	if orders == nil {
		orders = []*domain.Order{}
	}
	writeJSON(w, h.logger, http.StatusOK, orders)
}

func (h *OrderHandler) getOrder(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	order, err := h.orders.FindByID(r.Context(), id)
	if err != nil {
		if errors.Is(err, postgres.ErrOrderNotFound) {
			writeJSON(w, h.logger, http.StatusNotFound, nil)
			return
		}
		h.logger.ErrorContext(r.Context(), "failed to get order", "order_id", id, "error", err)
		writeJSON(w, h.logger, http.StatusInternalServerError, nil)
		return
	}
	writeJSON(w, h.logger, http.StatusOK, order)
}

func (h *OrderHandler) addOrder(w http.ResponseWriter, r *http.Request) {
	body, ok := h.validatedBody(w, r, jsonvalidate.SchemaOrderDataPost)
	if !ok {
		return
	}

	var order domain.Order
	if err := json.Unmarshal(body, &order); err != nil {
		writeMessage(w, h.logger, http.StatusBadRequest, jsonvalidate.MsgJSONFormatNG)
		return
	}

	created, err := h.orders.Create(r.Context(), &order)
	if err != nil {
		h.logger.ErrorContext(r.Context(), "failed to create order", "error", err)
		writeJSON(w, h.logger, http.StatusInternalServerError, nil)
		return
	}

	h.stateChange.NotifyStateChange(r.Context(), r.Header.Get(restclient.HeaderUserID), created, nil)
	writeJSON(w, h.logger, http.StatusCreated, created)
}

func (h *OrderHandler) putOrder(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	body, ok := h.validatedBody(w, r, jsonvalidate.SchemaOrderDataPut)
	if !ok {
		return
	}

	var order domain.Order
	if err := json.Unmarshal(body, &order); err != nil {
		writeMessage(w, h.logger, http.StatusBadRequest, jsonvalidate.MsgJSONFormatNG)
		return
	}
	// Full replace must address the same order in path and body.
	if order.ID != id {
		writeMessage(w, h.logger, http.StatusBadRequest, jsonvalidate.MsgJSONFormatNG)
		return
	}

	h.mutateOrder(w, r, id, func(ctx context.Context) (*domain.Order, error) {
		return h.orders.Put(ctx, id, &order)
	})
}

func (h *OrderHandler) patchOrder(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	body, ok := h.validatedBody(w, r, jsonvalidate.SchemaOrderDataPatch)
	if !ok {
		return
	}

	var patch domain.Order
	if err := json.Unmarshal(body, &patch); err != nil {
		writeMessage(w, h.logger, http.StatusBadRequest, jsonvalidate.MsgJSONFormatNG)
		return
	}

	h.mutateOrder(w, r, id, func(ctx context.Context) (*domain.Order, error) {
		return h.orders.Patch(ctx, id, &patch)
	})
}

func (h *OrderHandler) deleteOrder(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	exists, err := h.orders.Exists(r.Context(), id)
	if err != nil {
		h.logger.ErrorContext(r.Context(), "failed to check order", "order_id", id, "error", err)
		writeJSON(w, h.logger, http.StatusInternalServerError, nil)
		return
	}
	if !exists {
		writeJSON(w, h.logger, http.StatusNotFound, nil)
		return
	}

	oldOrder, err := h.orders.FindByID(r.Context(), id)
	if err != nil {
		h.logger.ErrorContext(r.Context(), "failed to load order", "order_id", id, "error", err)
		writeJSON(w, h.logger, http.StatusInternalServerError, nil)
		return
	}

	deleted, err := h.orders.Delete(r.Context(), id)
	if err != nil {
		h.logger.ErrorContext(r.Context(), "failed to delete order", "order_id", id, "error", err)
		writeJSON(w, h.logger, http.StatusInternalServerError, nil)
		return
	}

	h.stateChange.NotifyStateChange(r.Context(), r.Header.Get(restclient.HeaderUserID), deleted, oldOrder)
	w.WriteHeader(http.StatusOK)
}

// mutateOrder runs the exists/snapshot/mutate/notify sequence shared by
// PUT and PATCH.
func (h *OrderHandler) mutateOrder(w http.ResponseWriter, r *http.Request, id string, mutate func(context.Context) (*domain.Order, error)) {
	exists, err := h.orders.Exists(r.Context(), id)
	if err != nil {
		h.logger.ErrorContext(r.Context(), "failed to check order", "order_id", id, "error", err)
		writeJSON(w, h.logger, http.StatusInternalServerError, nil)
		return
	}
	if !exists {
		writeJSON(w, h.logger, http.StatusNotFound, nil)
		return
	}

	oldOrder, err := h.orders.FindByID(r.Context(), id)
	if err != nil {
		h.logger.ErrorContext(r.Context(), "failed to load order", "order_id", id, "error", err)
		writeJSON(w, h.logger, http.StatusInternalServerError, nil)
		return
	}

	updated, err := mutate(r.Context())
	if err != nil {
		h.logger.ErrorContext(r.Context(), "failed to update order", "order_id", id, "error", err)
		writeJSON(w, h.logger, http.StatusInternalServerError, nil)
		return
	}

	h.stateChange.NotifyStateChange(r.Context(), r.Header.Get(restclient.HeaderUserID), updated, oldOrder)
	writeJSON(w, h.logger, http.StatusCreated, updated)
}

// validatedBody reads the request body and checks it against the given
// schema, answering 400 with the classified message on any failure.
func (h *OrderHandler) validatedBody(w http.ResponseWriter, r *http.Request, schemaRef string) ([]byte, bool) {
	r.Body = http.MaxBytesReader(w, r.Body, maxRequestBodySize)
	body, err := io.ReadAll(r.Body)
	if err != nil {
		h.logger.WarnContext(r.Context(), "failed to read request body", "error", err)
		writeMessage(w, h.logger, http.StatusBadRequest, jsonvalidate.MsgJSONFormatNG)
		return nil, false
	}

	result := jsonvalidate.Validate(jsonvalidate.SchemaPath(h.baseDir, schemaRef), body)
	if !result.Success {
		h.logger.DebugContext(r.Context(), "request body failed validation",
			"schema", schemaRef, "message", result.Message)
		writeMessage(w, h.logger, http.StatusBadRequest, result.Message)
		return nil, false
	}
	return body, true
}
