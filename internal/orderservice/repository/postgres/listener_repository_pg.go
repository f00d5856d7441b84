package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/tmavn/ordertrack/internal/orderservice/domain"
	"github.com/tmavn/ordertrack/internal/orderservice/repository"
)

var ErrListenerNotFound = errors.New("listener not found")

type pgListenerRepository struct {
	db DB
}

// NewPgListenerRepository creates the PostgreSQL-backed ListenerRepository.
func NewPgListenerRepository(db DB) repository.ListenerRepository {
	return &pgListenerRepository{db: db}
}

func (r *pgListenerRepository) Create(ctx context.Context, listener *domain.Listener) (*domain.Listener, error) {
	query := `
		INSERT INTO listener_info (user_id, callback, query)
		VALUES ($1, $2, $3)
		RETURNING id
	`
	err := r.db.QueryRow(ctx, query, listener.UserID, listener.Callback, listener.Query).
		Scan(&listener.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to insert listener: %w", err)
	}
	return listener, nil
}

func (r *pgListenerRepository) GetByID(ctx context.Context, id int64) (*domain.Listener, error) {
	listener := &domain.Listener{}
	query := `SELECT id, user_id, callback, query FROM listener_info WHERE id = $1`
	err := r.db.QueryRow(ctx, query, id).
		Scan(&listener.ID, &listener.UserID, &listener.Callback, &listener.Query)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrListenerNotFound
		}
		return nil, fmt.Errorf("failed to get listener %d: %w", id, err)
	}
	return listener, nil
}

func (r *pgListenerRepository) List(ctx context.Context) ([]*domain.Listener, error) {
	return r.queryListeners(ctx, `SELECT id, user_id, callback, query FROM listener_info ORDER BY id ASC`)
}

func (r *pgListenerRepository) FindByUserID(ctx context.Context, userID string) ([]*domain.Listener, error) {
	return r.queryListeners(ctx,
		`SELECT id, user_id, callback, query FROM listener_info WHERE user_id = $1 ORDER BY id ASC`, userID)
}

func (r *pgListenerRepository) Update(ctx context.Context, listener *domain.Listener) (*domain.Listener, error) {
	query := `
		UPDATE listener_info
		SET user_id = $2, callback = $3, query = $4
		WHERE id = $1
	`
	tag, err := r.db.Exec(ctx, query, listener.ID, listener.UserID, listener.Callback, listener.Query)
	if err != nil {
		return nil, fmt.Errorf("failed to update listener %d: %w", listener.ID, err)
	}
	if tag.RowsAffected() == 0 {
		return nil, ErrListenerNotFound
	}
	return listener, nil
}

func (r *pgListenerRepository) Delete(ctx context.Context, id int64) error {
	tag, err := r.db.Exec(ctx, `DELETE FROM listener_info WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete listener %d: %w", id, err)
	}
	if tag.RowsAffected() == 0 {
		return ErrListenerNotFound
	}
	return nil
}

func (r *pgListenerRepository) Exists(ctx context.Context, id int64) (bool, error) {
	var exists bool
	err := r.db.QueryRow(ctx, `SELECT EXISTS(SELECT 1 FROM listener_info WHERE id = $1)`, id).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("failed to check listener %d: %w", id, err)
	}
	return exists, nil
}

func (r *pgListenerRepository) queryListeners(ctx context.Context, query string, args ...any) ([]*domain.Listener, error) {
	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query listeners: %w", err)
	}
	defer rows.Close()

	var listeners []*domain.Listener
	for rows.Next() {
		var l domain.Listener
		if err := rows.Scan(&l.ID, &l.UserID, &l.Callback, &l.Query); err != nil {
			return nil, fmt.Errorf("failed to scan listener row: %w", err)
		}
		listeners = append(listeners, &l)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return listeners, nil
}
