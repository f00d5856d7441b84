package http

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/tmavn/ordertrack/internal/orderservice/domain"
	"github.com/tmavn/ordertrack/internal/orderservice/repository/postgres"
	"github.com/tmavn/ordertrack/internal/platform/jsonvalidate"
)

// ListenerManager is what the handler needs from the listener service.
type ListenerManager interface {
	FindAll(ctx context.Context) ([]*domain.Listener, error)
	FindByID(ctx context.Context, id int64) (*domain.Listener, error)
	Exists(ctx context.Context, id int64) (bool, error)
	Create(ctx context.Context, listener *domain.Listener) (*domain.Listener, error)
	Put(ctx context.Context, id int64, listener *domain.Listener) (*domain.Listener, error)
	Patch(ctx context.Context, id int64, patch *domain.Listener) (*domain.Listener, error)
	Delete(ctx context.Context, id int64) error
}

type ListenerHandler struct {
	listeners ListenerManager
	baseDir   string
	logger    *slog.Logger
}

func NewListenerHandler(listeners ListenerManager, baseDir string, logger *slog.Logger) *ListenerHandler {
	return &ListenerHandler{
		listeners: listeners,
		baseDir:   baseDir,
		logger:    logger.With("component", "listener_handler"),
	}
}

func (h *ListenerHandler) Routes(r chi.Router) {
	r.Get("/", h.listListeners)
	r.Get("/{id}", h.getListener)
	r.Post("/", h.addListener)
	r.Put("/{id}", h.putListener)
	r.Patch("/{id}", h.patchListener)
	r.Delete("/{id}", h.deleteListener)
}

func (h *ListenerHandler) listListeners(w http.ResponseWriter, r *http.Request) {
	listeners, err := h.listeners.FindAll(r.Context())
	if err != nil {
		h.logger.ErrorContext(r.Context(), "failed to list listeners", "error", err)
		writeJSON(w, h.logger, http.StatusInternalServerError, nil)
		return
	}
	if listeners == nil {
		listeners = []*domain.Listener{}
	}
	writeJSON(w, h.logger, http.StatusOK, listeners)
}

func (h *ListenerHandler) getListener(w http.ResponseWriter, r *http.Request) {
	id, ok := h.listenerID(w, r)
	if !ok {
		return
	}
	listener, err := h.listeners.FindByID(r.Context(), id)
	if err != nil {
		if errors.Is(err, postgres.ErrListenerNotFound) {
			writeJSON(w, h.logger, http.StatusNotFound, nil)
			return
		}
		h.logger.ErrorContext(r.Context(), "failed to get listener", "listener_id", id, "error", err)
		writeJSON(w, h.logger, http.StatusInternalServerError, nil)
		return
	}
	writeJSON(w, h.logger, http.StatusOK, listener)
}

func (h *ListenerHandler) addListener(w http.ResponseWriter, r *http.Request) {
	listener, ok := h.validatedListener(w, r, jsonvalidate.SchemaListenerInfoPost)
	if !ok {
		return
	}

	created, err := h.listeners.Create(r.Context(), listener)
	if err != nil {
		h.logger.ErrorContext(r.Context(), "failed to create listener", "error", err)
		writeJSON(w, h.logger, http.StatusInternalServerError, nil)
		return
	}
	writeJSON(w, h.logger, http.StatusCreated, created)
}

func (h *ListenerHandler) putListener(w http.ResponseWriter, r *http.Request) {
	id, ok := h.listenerID(w, r)
	if !ok {
		return
	}
	listener, ok := h.validatedListener(w, r, jsonvalidate.SchemaListenerInfoPut)
	if !ok {
		return
	}

	updated, err := h.listeners.Put(r.Context(), id, listener)
	if err != nil {
		if errors.Is(err, postgres.ErrListenerNotFound) {
			writeJSON(w, h.logger, http.StatusNotFound, nil)
			return
		}
		h.logger.ErrorContext(r.Context(), "failed to update listener", "listener_id", id, "error", err)
		writeJSON(w, h.logger, http.StatusInternalServerError, nil)
		return
	}
	writeJSON(w, h.logger, http.StatusCreated, updated)
}

func (h *ListenerHandler) patchListener(w http.ResponseWriter, r *http.Request) {
	id, ok := h.listenerID(w, r)
	if !ok {
		return
	}
	patch, ok := h.validatedListener(w, r, jsonvalidate.SchemaListenerInfoPatch)
	if !ok {
		return
	}

	patched, err := h.listeners.Patch(r.Context(), id, patch)
	if err != nil {
		if errors.Is(err, postgres.ErrListenerNotFound) {
			writeJSON(w, h.logger, http.StatusNotFound, nil)
			return
		}
		h.logger.ErrorContext(r.Context(), "failed to patch listener", "listener_id", id, "error", err)
		writeJSON(w, h.logger, http.StatusInternalServerError, nil)
		return
	}
	writeJSON(w, h.logger, http.StatusCreated, patched)
}

func (h *ListenerHandler) deleteListener(w http.ResponseWriter, r *http.Request) {
	id, ok := h.listenerID(w, r)
	if !ok {
		return
	}
	if err := h.listeners.Delete(r.Context(), id); err != nil {
		if errors.Is(err, postgres.ErrListenerNotFound) {
			writeJSON(w, h.logger, http.StatusNotFound, nil)
			return
		}
		h.logger.ErrorContext(r.Context(), "failed to delete listener", "listener_id", id, "error", err)
		writeJSON(w, h.logger, http.StatusInternalServerError, nil)
		return
	}
	w.WriteHeader(http.StatusOK)
}

func (h *ListenerHandler) listenerID(w http.ResponseWriter, r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		writeJSON(w, h.logger, http.StatusNotFound, nil)
		return 0, false
	}
	return id, true
}

func (h *ListenerHandler) validatedListener(w http.ResponseWriter, r *http.Request, schemaRef string) (*domain.Listener, bool) {
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

	var listener domain.Listener
	if err := json.Unmarshal(body, &listener); err != nil {
		writeMessage(w, h.logger, http.StatusBadRequest, jsonvalidate.MsgJSONFormatNG)
		return nil, false
	}
	return &listener, true
}
