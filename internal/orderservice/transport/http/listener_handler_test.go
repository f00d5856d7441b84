package http

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/tmavn/ordertrack/internal/orderservice/domain"
	"github.com/tmavn/ordertrack/internal/orderservice/repository/postgres"
	"github.com/tmavn/ordertrack/internal/platform/jsonvalidate"
)

type MockListenerManager struct {
	mock.Mock
}

func (m *MockListenerManager) FindAll(ctx context.Context) ([]*domain.Listener, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*domain.Listener), args.Error(1)
}

func (m *MockListenerManager) FindByID(ctx context.Context, id int64) (*domain.Listener, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Listener), args.Error(1)
}

func (m *MockListenerManager) Exists(ctx context.Context, id int64) (bool, error) {
	args := m.Called(ctx, id)
	return args.Bool(0), args.Error(1)
}

func (m *MockListenerManager) Create(ctx context.Context, l *domain.Listener) (*domain.Listener, error) {
	args := m.Called(ctx, l)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Listener), args.Error(1)
}

func (m *MockListenerManager) Put(ctx context.Context, id int64, l *domain.Listener) (*domain.Listener, error) {
	args := m.Called(ctx, id, l)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Listener), args.Error(1)
}

func (m *MockListenerManager) Patch(ctx context.Context, id int64, patch *domain.Listener) (*domain.Listener, error) {
	args := m.Called(ctx, id, patch)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Listener), args.Error(1)
}

func (m *MockListenerManager) Delete(ctx context.Context, id int64) error {
	return m.Called(ctx, id).Error(0)
}

func setupListenerHandler(t *testing.T) (*MockListenerManager, chi.Router) {
	t.Helper()
	listeners := new(MockListenerManager)
	handler := NewListenerHandler(listeners, writeTestSchemas(t), testLogger())
	r := chi.NewRouter()
	handler.Routes(r)
	return listeners, r
}

func TestListenerHandler_Add(t *testing.T) {
	listeners, router := setupListenerHandler(t)

	created := &domain.Listener{ID: 5, UserID: "u1", Callback: "http://cb", Query: "state=Completed"}
	listeners.On("Create", mock.Anything, mock.AnythingOfType("*domain.Listener")).Return(created, nil)

	req := httptest.NewRequest(http.MethodPost, "/",
		strings.NewReader(`{"userId":"u1","callback":"http://cb","query":"state=Completed"}`))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusCreated, rec.Code)
	assert.Contains(t, rec.Body.String(), `"id":5`)
}

func TestListenerHandler_Add_MissingCallback(t *testing.T) {
	listeners, router := setupListenerHandler(t)

	req := httptest.NewRequest(http.MethodPost, "/",
		strings.NewReader(`{"userId":"u1"}`))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, jsonvalidate.MsgMandatoryAttrNG+"callback", rec.Body.String())
	listeners.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
}

func TestListenerHandler_NonNumericID(t *testing.T) {
	_, router := setupListenerHandler(t)

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/not-a-number", nil))

	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestListenerHandler_Get(t *testing.T) {
	listeners, router := setupListenerHandler(t)

	listeners.On("FindByID", mock.Anything, int64(3)).
		Return(&domain.Listener{ID: 3, UserID: "u1", Callback: "http://cb"}, nil)

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/3", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"userId":"u1"`)
}

func TestListenerHandler_Put_NotFound(t *testing.T) {
	listeners, router := setupListenerHandler(t)

	listeners.On("Put", mock.Anything, int64(9), mock.AnythingOfType("*domain.Listener")).
		Return(nil, postgres.ErrListenerNotFound)

	req := httptest.NewRequest(http.MethodPut, "/9",
		strings.NewReader(`{"userId":"u1","callback":"http://cb"}`))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestListenerHandler_Delete(t *testing.T) {
	listeners, router := setupListenerHandler(t)

	t.Run("Deleted", func(t *testing.T) {
		listeners.On("Delete", mock.Anything, int64(3)).Return(nil).Once()

		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, httptest.NewRequest(http.MethodDelete, "/3", nil))
		assert.Equal(t, http.StatusOK, rec.Code)
	})

	t.Run("NotFound", func(t *testing.T) {
		listeners.On("Delete", mock.Anything, int64(4)).Return(postgres.ErrListenerNotFound).Once()

		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, httptest.NewRequest(http.MethodDelete, "/4", nil))
		assert.Equal(t, http.StatusNotFound, rec.Code)
	})
}
