package repository

import (
	"context"

	"pos-service/internal/domain"
)

// Lookups return *domain.NotFoundError when the row does not exist.

type CategoryRepository interface {
	CreateCategory(ctx context.Context, c *domain.Category) error
	FindCategoryByID(ctx context.Context, id uint64) (*domain.Category, error)
	FindCategoryBySlug(ctx context.Context, slug string) (*domain.Category, error)
	FindCategoriesWithItems(ctx context.Context) ([]domain.Category, error)
	CountItemsInCategory(ctx context.Context, id uint64) (int64, error)
	DeleteCategory(ctx context.Context, id uint64) error
}

type MenuItemRepository interface {
	CreateMenuItem(ctx context.Context, m *domain.MenuItem) error
	FindMenuItemByID(ctx context.Context, id uint64) (*domain.MenuItem, error)
	// FindMenuItemsByIDs returns the items that exist, with Category loaded.
	FindMenuItemsByIDs(ctx context.Context, ids []uint64) ([]domain.MenuItem, error)
	SaveMenuItem(ctx context.Context, m *domain.MenuItem) error
	SetMenuItemAvailability(ctx context.Context, id uint64, isAvailable bool) error
	// DeleteMenuItem detaches order items that reference the menu item before deleting it.
	DeleteMenuItem(ctx context.Context, id uint64) error
}

type OrderFilter struct {
	Statuses        []domain.OrderStatus
	ExcludeStatuses []domain.OrderStatus
	UnpaidOnly      bool
	NewestFirst     bool
	Limit           int
}

type OrderRepository interface {
	// CreateOrder inserts the order and all of its items.
	CreateOrder(ctx context.Context, o *domain.Order) error
	// FindOrderByID loads items with their menu item and category.
	FindOrderByID(ctx context.Context, id uint64) (*domain.Order, error)
	ListOrders(ctx context.Context, f OrderFilter) ([]domain.Order, error)
	CountOrders(ctx context.Context, f OrderFilter) (int64, error)
	SumOrderTotals(ctx context.Context, f OrderFilter) (int64, error)
	// UpdateOrderStatus moves the order from one status to another and fails
	// with *domain.InvalidTransitionError when it is no longer in from.
	UpdateOrderStatus(ctx context.Context, id uint64, from, to domain.OrderStatus) error
	UpdatePaymentMethod(ctx context.Context, id uint64, method domain.PaymentMethod) error
	FindOrderItemByID(ctx context.Context, id uint64) (*domain.OrderItem, error)
	SetOrderItemReady(ctx context.Context, id uint64, isReady bool) error
}

// Store groups the repositories so a unit of work can run against one transaction.
type Store interface {
	CategoryRepository
	MenuItemRepository
	OrderRepository
	// Transaction runs fn against a Store bound to a single transaction. fn's
	// error rolls everything back.
	Transaction(ctx context.Context, fn func(tx Store) error) error
}
