// Package repository declares the persistence ports of the order service.
// Implementations live in the postgres subpackage.
package repository

import (
	"context"

	"github.com/tmavn/ordertrack/internal/orderservice/domain"
)

type OrderRepository interface {
	Create(ctx context.Context, order *domain.Order) (*domain.Order, error)
	GetByID(ctx context.Context, id string) (*domain.Order, error)
	List(ctx context.Context) ([]*domain.Order, error)
	Update(ctx context.Context, order *domain.Order) (*domain.Order, error)
	Exists(ctx context.Context, id string) (bool, error)
}

type ListenerRepository interface {
	Create(ctx context.Context, listener *domain.Listener) (*domain.Listener, error)
	GetByID(ctx context.Context, id int64) (*domain.Listener, error)
	List(ctx context.Context) ([]*domain.Listener, error)
	FindByUserID(ctx context.Context, userID string) ([]*domain.Listener, error)
	Update(ctx context.Context, listener *domain.Listener) (*domain.Listener, error)
	Delete(ctx context.Context, id int64) error
	Exists(ctx context.Context, id int64) (bool, error)
}

// StateChangeNotifyRepository persists the audit trail of dispatched
// notifications. Records are write-once.
type StateChangeNotifyRepository interface {
	Create(ctx context.Context, notify *domain.StateChangeNotify) (*domain.StateChangeNotify, error)
}
