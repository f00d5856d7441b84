package app

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/tmavn/ordertrack/internal/orderservice/domain"
	"github.com/tmavn/ordertrack/internal/orderservice/repository"
	"github.com/tmavn/ordertrack/internal/platform/restclient"
)

// StateChangeService fans out webhook notifications when an order changes
// state. Delivery is best-effort: one audit row per matched listener is
// persisted before each callback, failures are logged and never retried.
type StateChangeService struct {
	listeners repository.ListenerRepository
	notifies  repository.StateChangeNotifyRepository
	rest      *restclient.Client
	logger    *slog.Logger
}

func NewStateChangeService(
	listeners repository.ListenerRepository,
	notifies repository.StateChangeNotifyRepository,
	rest *restclient.Client,
	logger *slog.Logger,
) *StateChangeService {
	return &StateChangeService{
		listeners: listeners,
		notifies:  notifies,
		rest:      rest,
		logger:    logger.With("component", "state_change_service"),
	}
}

// NotifyStateChange dispatches notifications for the transition from
// oldOrder to newOrder. Fire-and-forget: the caller observes no outcome.
// A nil oldOrder (freshly created order) always counts as a change.
func (s *StateChangeService) NotifyStateChange(ctx context.Context, userID string, newOrder, oldOrder *domain.Order) {
	if !stateChanged(oldOrder, newOrder) {
		s.logger.DebugContext(ctx, "state unchanged, nothing to notify", "order_id", newOrder.ID, "state", newOrder.State)
		return
	}

	listeners, err := s.listeners.FindByUserID(ctx, userID)
	if err != nil {
		s.logger.ErrorContext(ctx, "failed to load listeners", "user_id", userID, "error", err)
		return
	}

	for _, listener := range listeners {
		if !matchesQuery(listener.Query, newOrder.State) {
			s.logger.DebugContext(ctx, "listener filter did not match",
				"listener_id", listener.ID, "query", listener.Query, "state", newOrder.State)
			continue
		}

		notify := &domain.StateChangeNotify{
			TriggerID:   uuid.NewString(),
			TriggerTime: time.Now().UTC(),
			TriggerType: domain.TriggerTypeStateChange,
			TriggerData: newOrder,
		}
		// The audit row must exist before the callback goes out, even if
		// the callback never completes.
		created, err := s.notifies.Create(ctx, notify)
		if err != nil {
			s.logger.ErrorContext(ctx, "failed to persist state change notify",
				"listener_id", listener.ID, "order_id", newOrder.ID, "error", err)
			continue
		}
		s.sendNotify(ctx, listener, created)
	}
}

// sendNotify posts the notification to one listener without blocking the
// caller. Completion is observed only by the logging goroutine, so one
// listener's failure cannot affect its siblings.
func (s *StateChangeService) sendNotify(ctx context.Context, listener *domain.Listener, notify *domain.StateChangeNotify) {
	headers := map[string]string{
		restclient.HeaderUserID: listener.UserID,
	}

	// The HTTP request that triggered this dispatch will complete long
	// before the webhook does; detach from its cancellation.
	sendCtx := context.WithoutCancel(ctx)
	results := s.rest.PostAsync(sendCtx, listener.Callback, restclient.Request{
		Headers: headers,
		Body:    notify,
		Outside: true,
	})

	callback := listener.Callback
	triggerID := notify.TriggerID
	go func() {
		result := <-results
		if result.StatusCode >= 400 {
			s.logger.Error("state change notify delivery failed",
				"callback", callback, "trigger_id", triggerID,
				"status", result.StatusCode, "body", string(result.Body))
			return
		}
		s.logger.Debug("state change notify delivered",
			"callback", callback, "trigger_id", triggerID,
			"status", result.StatusCode, "body", string(result.Body))
	}()
}

func stateChanged(oldOrder, newOrder *domain.Order) bool {
	if oldOrder == nil {
		return true
	}
	return oldOrder.State != newOrder.State
}

// matchesQuery evaluates a listener filter expression against the new
// state. "state=" with values matches by substring containment (the query
// value is schema-validated to legal states at registration, and no legal
// state is a substring of another); an absent key or empty value matches
// everything.
func matchesQuery(query, newState string) bool {
	idx := strings.Index(query, "state=")
	if idx < 0 {
		return true
	}
	values := query[idx+len("state="):]
	if values == "" {
		return true
	}
	return strings.Contains(values, newState)
}
