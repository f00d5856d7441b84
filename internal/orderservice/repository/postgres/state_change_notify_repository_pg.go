package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/tmavn/ordertrack/internal/orderservice/domain"
	"github.com/tmavn/ordertrack/internal/orderservice/repository"
)

type pgStateChangeNotifyRepository struct {
	db DB
}

// NewPgStateChangeNotifyRepository creates the PostgreSQL-backed audit
// trail repository.
func NewPgStateChangeNotifyRepository(db DB) repository.StateChangeNotifyRepository {
	return &pgStateChangeNotifyRepository{db: db}
}

func (r *pgStateChangeNotifyRepository) Create(ctx context.Context, notify *domain.StateChangeNotify) (*domain.StateChangeNotify, error) {
	if notify.TriggerID == "" {
		notify.TriggerID = uuid.NewString()
	}
	if notify.TriggerTime.IsZero() {
		notify.TriggerTime = time.Now().UTC()
	}

	var orderID any
	if notify.TriggerData != nil {
		orderID = notify.TriggerData.ID
	}

	query := `
		INSERT INTO state_change_notify (trigger_id, trigger_time, trigger_type, order_id)
		VALUES ($1, $2, $3, $4)
	`
	_, err := r.db.Exec(ctx, query, notify.TriggerID, notify.TriggerTime, notify.TriggerType, orderID)
	if err != nil {
		return nil, fmt.Errorf("failed to insert state change notify: %w", err)
	}
	return notify, nil
}
