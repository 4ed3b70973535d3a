package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	"pos-service/internal/domain"
	"pos-service/internal/infra"
	"pos-service/internal/repository"
)

var (
	_ repository.Store = (*MockStore)(nil)
	_ infra.Publisher  = (*MockPublisher)(nil)
)

// MockStore mocks every repository. Transaction runs fn against the mock itself.
type MockStore struct {
	mock.Mock
}

type MockPublisher struct {
	mock.Mock
}

func (m *MockPublisher) Publish(ctx context.Context, routingKey string, data any) error {
	args := m.Called(ctx, routingKey, data)
	return args.Error(0)
}

func (m *MockStore) Transaction(ctx context.Context, fn func(tx repository.Store) error) error {
	return fn(m)
}

func (m *MockStore) CreateCategory(ctx context.Context, c *domain.Category) error {
	args := m.Called(ctx, c)
	return args.Error(0)
}

func (m *MockStore) FindCategoryByID(ctx context.Context, id uint64) (*domain.Category, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Category), args.Error(1)
}

func (m *MockStore) FindCategoryBySlug(ctx context.Context, slug string) (*domain.Category, error) {
	args := m.Called(ctx, slug)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Category), args.Error(1)
}

func (m *MockStore) FindCategoriesWithItems(ctx context.Context) ([]domain.Category, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Category), args.Error(1)
}

func (m *MockStore) CountItemsInCategory(ctx context.Context, id uint64) (int64, error) {
	args := m.Called(ctx, id)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockStore) DeleteCategory(ctx context.Context, id uint64) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *MockStore) CreateMenuItem(ctx context.Context, item *domain.MenuItem) error {
	args := m.Called(ctx, item)
	return args.Error(0)
}

func (m *MockStore) FindMenuItemByID(ctx context.Context, id uint64) (*domain.MenuItem, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.MenuItem), args.Error(1)
}

func (m *MockStore) FindMenuItemsByIDs(ctx context.Context, ids []uint64) ([]domain.MenuItem, error) {
	args := m.Called(ctx, ids)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.MenuItem), args.Error(1)
}

func (m *MockStore) SaveMenuItem(ctx context.Context, item *domain.MenuItem) error {
	args := m.Called(ctx, item)
	return args.Error(0)
}

func (m *MockStore) SetMenuItemAvailability(ctx context.Context, id uint64, isAvailable bool) error {
	args := m.Called(ctx, id, isAvailable)
	return args.Error(0)
}

func (m *MockStore) DeleteMenuItem(ctx context.Context, id uint64) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *MockStore) CreateOrder(ctx context.Context, o *domain.Order) error {
	args := m.Called(ctx, o)
	return args.Error(0)
}

func (m *MockStore) FindOrderByID(ctx context.Context, id uint64) (*domain.Order, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Order), args.Error(1)
}

func (m *MockStore) ListOrders(ctx context.Context, f repository.OrderFilter) ([]domain.Order, error) {
	args := m.Called(ctx, f)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Order), args.Error(1)
}

func (m *MockStore) CountOrders(ctx context.Context, f repository.OrderFilter) (int64, error) {
	args := m.Called(ctx, f)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockStore) SumOrderTotals(ctx context.Context, f repository.OrderFilter) (int64, error) {
	args := m.Called(ctx, f)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockStore) UpdateOrderStatus(ctx context.Context, id uint64, from, to domain.OrderStatus) error {
	args := m.Called(ctx, id, from, to)
	return args.Error(0)
}

func (m *MockStore) UpdatePaymentMethod(ctx context.Context, id uint64, method domain.PaymentMethod) error {
	args := m.Called(ctx, id, method)
	return args.Error(0)
}

func (m *MockStore) FindOrderItemByID(ctx context.Context, id uint64) (*domain.OrderItem, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.OrderItem), args.Error(1)
}

func (m *MockStore) SetOrderItemReady(ctx context.Context, id uint64, isReady bool) error {
	args := m.Called(ctx, id, isReady)
	return args.Error(0)
}
