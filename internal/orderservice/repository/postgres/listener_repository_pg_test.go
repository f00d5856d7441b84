package postgres

import (
	"context"
	"testing"

	"github.com/jackc/pgx/v5"
	"github.com/pashagolub/pgxmock/v3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tmavn/ordertrack/internal/orderservice/domain"
	"github.com/tmavn/ordertrack/internal/orderservice/repository"
)

func setupListenerTest(t *testing.T) (repository.ListenerRepository, pgxmock.PgxPoolIface) {
	mockPool, err := pgxmock.NewPool()
	require.NoError(t, err)
	return NewPgListenerRepository(mockPool), mockPool
}

func TestPgListenerRepository_Create(t *testing.T) {
	repo, mockPool := setupListenerTest(t)
	defer mockPool.Close()

	listener := &domain.Listener{UserID: "u1", Callback: "http://cb", Query: "state=Completed"}

	mockPool.ExpectQuery(`INSERT INTO listener_info`).
		WithArgs("u1", "http://cb", "state=Completed").
		WillReturnRows(mockPool.NewRows([]string{"id"}).AddRow(int64(7)))

	created, err := repo.Create(context.Background(), listener)
	require.NoError(t, err)
	assert.Equal(t, int64(7), created.ID)
	assert.NoError(t, mockPool.ExpectationsWereMet())
}

func TestPgListenerRepository_GetByID_NotFound(t *testing.T) {
	repo, mockPool := setupListenerTest(t)
	defer mockPool.Close()

	mockPool.ExpectQuery(`SELECT id, user_id, callback, query FROM listener_info`).
		WithArgs(int64(9)).WillReturnError(pgx.ErrNoRows)

	_, err := repo.GetByID(context.Background(), 9)
	assert.ErrorIs(t, err, ErrListenerNotFound)
	assert.NoError(t, mockPool.ExpectationsWereMet())
}

func TestPgListenerRepository_FindByUserID(t *testing.T) {
	repo, mockPool := setupListenerTest(t)
	defer mockPool.Close()

	rows := mockPool.NewRows([]string{"id", "user_id", "callback", "query"}).
		AddRow(int64(1), "u1", "http://cb1", "").
		AddRow(int64(2), "u1", "http://cb2", "state=Failed")

	mockPool.ExpectQuery(`SELECT id, user_id, callback, query FROM listener_info WHERE user_id`).
		WithArgs("u1").WillReturnRows(rows)

	listeners, err := repo.FindByUserID(context.Background(), "u1")
	require.NoError(t, err)
	require.Len(t, listeners, 2)
	assert.Equal(t, "state=Failed", listeners[1].Query)
	assert.NoError(t, mockPool.ExpectationsWereMet())
}

func TestPgListenerRepository_Update_NotFound(t *testing.T) {
	repo, mockPool := setupListenerTest(t)
	defer mockPool.Close()

	mockPool.ExpectExec(`UPDATE listener_info`).
		WithArgs(int64(3), "u1", "http://cb", "").
		WillReturnResult(pgxmock.NewResult("UPDATE", 0))

	_, err := repo.Update(context.Background(), &domain.Listener{ID: 3, UserID: "u1", Callback: "http://cb"})
	assert.ErrorIs(t, err, ErrListenerNotFound)
	assert.NoError(t, mockPool.ExpectationsWereMet())
}

func TestPgListenerRepository_Delete(t *testing.T) {
	repo, mockPool := setupListenerTest(t)
	defer mockPool.Close()

	t.Run("Deleted", func(t *testing.T) {
		mockPool.ExpectExec(`DELETE FROM listener_info`).
			WithArgs(int64(3)).
			WillReturnResult(pgxmock.NewResult("DELETE", 1))

		require.NoError(t, repo.Delete(context.Background(), 3))
		assert.NoError(t, mockPool.ExpectationsWereMet())
	})

	t.Run("NotFound", func(t *testing.T) {
		mockPool.ExpectExec(`DELETE FROM listener_info`).
			WithArgs(int64(4)).
			WillReturnResult(pgxmock.NewResult("DELETE", 0))

		assert.ErrorIs(t, repo.Delete(context.Background(), 4), ErrListenerNotFound)
		assert.NoError(t, mockPool.ExpectationsWereMet())
	})
}
