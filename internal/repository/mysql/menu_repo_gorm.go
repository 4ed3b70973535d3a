package mysql

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"pos-service/internal/domain"
)

func (s *store) CreateCategory(ctx context.Context, c *domain.Category) error {
	err := s.db.WithContext(ctx).Omit(clause.Associations).Create(c).Error
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return &domain.ConflictError{Reason: fmt.Sprintf("category slug %q already exists", c.Slug)}
	}
	if err != nil {
		return fmt.Errorf("create category: %w", err)
	}
	return nil
}

func (s *store) FindCategoryByID(ctx context.Context, id uint64) (*domain.Category, error) {
	var c domain.Category
	if err := s.db.WithContext(ctx).First(&c, id).Error; err != nil {
		return nil, notFound(err, "category", id)
	}
	return &c, nil
}

func (s *store) FindCategoryBySlug(ctx context.Context, slug string) (*domain.Category, error) {
	var c domain.Category
	err := s.db.WithContext(ctx).Where("slug = ?", slug).First(&c).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, &domain.NotFoundError{Entity: "category " + slug}
	}
	if err != nil {
		return nil, fmt.Errorf("find category by slug: %w", err)
	}
	return &c, nil
}

func (s *store) FindCategoriesWithItems(ctx context.Context) ([]domain.Category, error) {
	var out []domain.Category
	err := s.db.WithContext(ctx).
		Preload("Items", func(db *gorm.DB) *gorm.DB { return db.Order("id ASC") }).
		Order("id ASC").
		Find(&out).Error
	if err != nil {
		return nil, fmt.Errorf("find categories: %w", err)
	}
	return out, nil
}

func (s *store) CountItemsInCategory(ctx context.Context, id uint64) (int64, error) {
	var n int64
	if err := s.db.WithContext(ctx).Model(&domain.MenuItem{}).Where("category_id = ?", id).Count(&n).Error; err != nil {
		return 0, fmt.Errorf("count items in category: %w", err)
	}
	return n, nil
}

func (s *store) DeleteCategory(ctx context.Context, id uint64) error {
	res := s.db.WithContext(ctx).Delete(&domain.Category{}, id)
	if res.Error != nil {
		return fmt.Errorf("delete category: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return domain.NewNotFoundError("category", id)
	}
	return nil
}

func (s *store) CreateMenuItem(ctx context.Context, m *domain.MenuItem) error {
	if err := s.db.WithContext(ctx).Omit(clause.Associations).Create(m).Error; err != nil {
		return fmt.Errorf("create menu item: %w", err)
	}
	return nil
}

func (s *store) FindMenuItemByID(ctx context.Context, id uint64) (*domain.MenuItem, error) {
	var m domain.MenuItem
	if err := s.db.WithContext(ctx).Preload("Category").First(&m, id).Error; err != nil {
		return nil, notFound(err, "menu item", id)
	}
	return &m, nil
}

func (s *store) FindMenuItemsByIDs(ctx context.Context, ids []uint64) ([]domain.MenuItem, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	var out []domain.MenuItem
	if err := s.db.WithContext(ctx).Preload("Category").Where("id IN ?", ids).Find(&out).Error; err != nil {
		return nil, fmt.Errorf("find menu items: %w", err)
	}
	return out, nil
}

func (s *store) SaveMenuItem(ctx context.Context, m *domain.MenuItem) error {
	if err := s.db.WithContext(ctx).Omit(clause.Associations).Save(m).Error; err != nil {
		return fmt.Errorf("save menu item: %w", err)
	}
	return nil
}

func (s *store) SetMenuItemAvailability(ctx context.Context, id uint64, isAvailable bool) error {
	res := s.db.WithContext(ctx).Model(&domain.MenuItem{}).Where("id = ?", id).Update("is_available", isAvailable)
	if res.Error != nil {
		return fmt.Errorf("set availability: %w", res.Error)
	}
	return nil
}

func (s *store) DeleteMenuItem(ctx context.Context, id uint64) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(&domain.OrderItem{}).Where("menu_item_id = ?", id).Update("menu_item_id", nil).Error; err != nil {
			return fmt.Errorf("detach order items: %w", err)
		}
		res := tx.Delete(&domain.MenuItem{}, id)
		if res.Error != nil {
			return fmt.Errorf("delete menu item: %w", res.Error)
		}
		if res.RowsAffected == 0 {
			return domain.NewNotFoundError("menu item", id)
		}
		return nil
	})
}
