package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/tmavn/ordertrack/internal/orderservice/domain"
	"github.com/tmavn/ordertrack/internal/orderservice/repository"
)

var ErrOrderNotFound = errors.New("order not found")

type pgOrderRepository struct {
	db DB
}

// NewPgOrderRepository creates the PostgreSQL-backed OrderRepository.
func NewPgOrderRepository(db DB) repository.OrderRepository {
	return &pgOrderRepository{db: db}
}

func (r *pgOrderRepository) Create(ctx context.Context, order *domain.Order) (*domain.Order, error) {
	if order.ID == "" {
		order.ID = uuid.NewString()
	}

	query := `
		INSERT INTO order_data (id, description, state, order_date, modify_date)
		VALUES ($1, $2, $3, $4, $5)
	`
	_, err := r.db.Exec(ctx, query,
		order.ID, order.Description, order.State, order.OrderDate, order.ModifyDate,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to insert order: %w", err)
	}

	if err := r.insertNotes(ctx, order.ID, order.Notes); err != nil {
		return nil, err
	}
	return order, nil
}

func (r *pgOrderRepository) GetByID(ctx context.Context, id string) (*domain.Order, error) {
	order := &domain.Order{}
	query := `
		SELECT id, description, state, order_date, modify_date
		FROM order_data WHERE id = $1
	`
	err := r.db.QueryRow(ctx, query, id).Scan(
		&order.ID, &order.Description, &order.State, &order.OrderDate, &order.ModifyDate,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrOrderNotFound
		}
		return nil, fmt.Errorf("failed to get order %s: %w", id, err)
	}

	notes, err := r.notesForOrder(ctx, id)
	if err != nil {
		return nil, err
	}
	order.Notes = notes
	return order, nil
}

func (r *pgOrderRepository) List(ctx context.Context) ([]*domain.Order, error) {
	query := `
		SELECT id, description, state, order_date, modify_date
		FROM order_data ORDER BY order_date ASC
	`
	rows, err := r.db.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to list orders: %w", err)
	}
	defer rows.Close()

	var orders []*domain.Order
	for rows.Next() {
		var order domain.Order
		if err := rows.Scan(&order.ID, &order.Description, &order.State, &order.OrderDate, &order.ModifyDate); err != nil {
			return nil, fmt.Errorf("failed to scan order row: %w", err)
		}
		orders = append(orders, &order)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return orders, nil
}

func (r *pgOrderRepository) Update(ctx context.Context, order *domain.Order) (*domain.Order, error) {
	query := `
		UPDATE order_data
		SET description = $2, state = $3, order_date = $4, modify_date = $5
		WHERE id = $1
	`
	tag, err := r.db.Exec(ctx, query,
		order.ID, order.Description, order.State, order.OrderDate, order.ModifyDate,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to update order %s: %w", order.ID, err)
	}
	if tag.RowsAffected() == 0 {
		return nil, ErrOrderNotFound
	}
	return order, nil
}

func (r *pgOrderRepository) Exists(ctx context.Context, id string) (bool, error) {
	var exists bool
	err := r.db.QueryRow(ctx, `SELECT EXISTS(SELECT 1 FROM order_data WHERE id = $1)`, id).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("failed to check order %s: %w", id, err)
	}
	return exists, nil
}

func (r *pgOrderRepository) insertNotes(ctx context.Context, orderID string, notes []domain.Note) error {
	for i := range notes {
		query := `
			INSERT INTO note (author, date, text, order_id)
			VALUES ($1, $2, $3, $4)
			RETURNING id
		`
		err := r.db.QueryRow(ctx, query, notes[i].Author, notes[i].Date, notes[i].Text, orderID).
			Scan(&notes[i].ID)
		if err != nil {
			return fmt.Errorf("failed to insert note for order %s: %w", orderID, err)
		}
	}
	return nil
}

func (r *pgOrderRepository) notesForOrder(ctx context.Context, orderID string) ([]domain.Note, error) {
	rows, err := r.db.Query(ctx, `SELECT id, author, date, text FROM note WHERE order_id = $1 ORDER BY id ASC`, orderID)
	if err != nil {
		return nil, fmt.Errorf("failed to list notes for order %s: %w", orderID, err)
	}
	defer rows.Close()

	var notes []domain.Note
	for rows.Next() {
		var n domain.Note
		if err := rows.Scan(&n.ID, &n.Author, &n.Date, &n.Text); err != nil {
			return nil, fmt.Errorf("failed to scan note row: %w", err)
		}
		notes = append(notes, n)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return notes, nil
}
