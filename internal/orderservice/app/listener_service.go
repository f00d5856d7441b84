package app

import (
	"context"
	"log/slog"

	"github.com/tmavn/ordertrack/internal/orderservice/domain"
	"github.com/tmavn/ordertrack/internal/orderservice/repository"
)

// ListenerService manages webhook subscriptions. The dispatcher only ever
// reads from it; mutation happens through the REST surface.
type ListenerService struct {
	listeners repository.ListenerRepository
	logger    *slog.Logger
}

func NewListenerService(listeners repository.ListenerRepository, logger *slog.Logger) *ListenerService {
	return &ListenerService{
		listeners: listeners,
		logger:    logger.With("component", "listener_service"),
	}
}

func (s *ListenerService) FindAll(ctx context.Context) ([]*domain.Listener, error) {
	return s.listeners.List(ctx)
}

func (s *ListenerService) FindByID(ctx context.Context, id int64) (*domain.Listener, error) {
	return s.listeners.GetByID(ctx, id)
}

func (s *ListenerService) FindByUserID(ctx context.Context, userID string) ([]*domain.Listener, error) {
	return s.listeners.FindByUserID(ctx, userID)
}

func (s *ListenerService) Exists(ctx context.Context, id int64) (bool, error) {
	return s.listeners.Exists(ctx, id)
}

func (s *ListenerService) Create(ctx context.Context, listener *domain.Listener) (*domain.Listener, error) {
	listener.ID = 0
	created, err := s.listeners.Create(ctx, listener)
	if err != nil {
		return nil, err
	}
	s.logger.DebugContext(ctx, "listener registered",
		"listener_id", created.ID, "user_id", created.UserID, "callback", created.Callback)
	return created, nil
}

// Put replaces the stored listener with the supplied one.
func (s *ListenerService) Put(ctx context.Context, id int64, listener *domain.Listener) (*domain.Listener, error) {
	listener.ID = id
	return s.listeners.Update(ctx, listener)
}

// Patch merges the non-empty fields of patch into the stored listener.
func (s *ListenerService) Patch(ctx context.Context, id int64, patch *domain.Listener) (*domain.Listener, error) {
	old, err := s.listeners.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if patch.UserID != "" {
		old.UserID = patch.UserID
	}
	if patch.Callback != "" {
		old.Callback = patch.Callback
	}
	if patch.Query != "" {
		old.Query = patch.Query
	}
	return s.listeners.Update(ctx, old)
}

func (s *ListenerService) Delete(ctx context.Context, id int64) error {
	return s.listeners.Delete(ctx, id)
}
