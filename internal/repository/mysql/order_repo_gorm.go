package mysql

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"

	"pos-service/internal/domain"
	"pos-service/internal/repository"
)

func (s *store) CreateOrder(ctx context.Context, o *domain.Order) error {
	res := s.db.WithContext(ctx).Create(o)
	if res.Error != nil {
		return fmt.Errorf("create order: %w", res.Error)
	}
	if o.ID == 0 {
		return errors.New("create order: no id assigned")
	}
	return nil
}

func withItems(db *gorm.DB) *gorm.DB {
	return db.
		Preload("Items", func(db *gorm.DB) *gorm.DB { return db.Order("id ASC") }).
		Preload("Items.MenuItem.Category")
}

func (s *store) FindOrderByID(ctx context.Context, id uint64) (*domain.Order, error) {
	var o domain.Order
	if err := withItems(s.db.WithContext(ctx)).First(&o, id).Error; err != nil {
		return nil, notFound(err, "order", id)
	}
	return &o, nil
}

func applyFilter(db *gorm.DB, f repository.OrderFilter) *gorm.DB {
	if len(f.Statuses) > 0 {
		db = db.Where("status IN ?", f.Statuses)
	}
	if len(f.ExcludeStatuses) > 0 {
		db = db.Where("status NOT IN ?", f.ExcludeStatuses)
	}
	if f.UnpaidOnly {
		db = db.Where("payment_method IS NULL")
	}
	return db
}

func (s *store) ListOrders(ctx context.Context, f repository.OrderFilter) ([]domain.Order, error) {
	q := applyFilter(withItems(s.db.WithContext(ctx)), f)
	if f.NewestFirst {
		q = q.Order("created_at DESC").Order("id DESC")
	} else {
		q = q.Order("created_at ASC").Order("id ASC")
	}
	if f.Limit > 0 {
		q = q.Limit(f.Limit)
	}
	var out []domain.Order
	if err := q.Find(&out).Error; err != nil {
		return nil, fmt.Errorf("list orders: %w", err)
	}
	return out, nil
}

func (s *store) CountOrders(ctx context.Context, f repository.OrderFilter) (int64, error) {
	var n int64
	if err := applyFilter(s.db.WithContext(ctx).Model(&domain.Order{}), f).Count(&n).Error; err != nil {
		return 0, fmt.Errorf("count orders: %w", err)
	}
	return n, nil
}

func (s *store) SumOrderTotals(ctx context.Context, f repository.OrderFilter) (int64, error) {
	var sum int64
	err := applyFilter(s.db.WithContext(ctx).Model(&domain.Order{}), f).
		Select("COALESCE(SUM(total), 0)").
		Scan(&sum).Error
	if err != nil {
		return 0, fmt.Errorf("sum order totals: %w", err)
	}
	return sum, nil
}

func (s *store) UpdateOrderStatus(ctx context.Context, id uint64, from, to domain.OrderStatus) error {
	res := s.db.WithContext(ctx).Model(&domain.Order{}).
		Where("id = ? AND status = ?", id, from).
		Update("status", to)
	if res.Error != nil {
		return fmt.Errorf("update order status: %w", res.Error)
	}
	if res.RowsAffected > 0 {
		return nil
	}

	var current domain.Order
	err := s.db.WithContext(ctx).Select("id", "status").First(&current, id).Error
	if err != nil {
		return notFound(err, "order", id)
	}
	return &domain.InvalidTransitionError{From: current.Status, To: to}
}

// UpdatePaymentMethod only touches unpaid orders so two concurrent payments
// cannot both succeed.
func (s *store) UpdatePaymentMethod(ctx context.Context, id uint64, method domain.PaymentMethod) error {
	res := s.db.WithContext(ctx).Model(&domain.Order{}).
		Where("id = ? AND payment_method IS NULL", id).
		Update("payment_method", method)
	if res.Error != nil {
		return fmt.Errorf("update payment method: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return &domain.ConflictError{Reason: fmt.Sprintf("order %d is already paid", id)}
	}
	return nil
}

func (s *store) FindOrderItemByID(ctx context.Context, id uint64) (*domain.OrderItem, error) {
	var it domain.OrderItem
	if err := s.db.WithContext(ctx).Preload("MenuItem.Category").First(&it, id).Error; err != nil {
		return nil, notFound(err, "order item", id)
	}
	return &it, nil
}

func (s *store) SetOrderItemReady(ctx context.Context, id uint64, isReady bool) error {
	res := s.db.WithContext(ctx).Model(&domain.OrderItem{}).Where("id = ?", id).Update("is_ready", isReady)
	if res.Error != nil {
		return fmt.Errorf("set order item ready: %w", res.Error)
	}
	return nil
}
