package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/go-redis/redis/v8"
	"github.com/sirupsen/logrus"
	"golang.org/x/sync/singleflight"

	"pos-service/internal/domain"
	"pos-service/internal/repository"
)

const (
	catalogCacheKey = "menu:categories"
	catalogCacheTTL = 30 * time.Second
)

type MenuService struct {
	store       repository.Store
	redisClient *redis.Client
	group       singleflight.Group
	log         *logrus.Entry
}

func NewMenuService(store repository.Store, log *logrus.Entry) *MenuService {
	return &MenuService{store: store, log: log}
}

// SetRedisClient enables the catalog cache. Without it every listing reads the
// database.
func (s *MenuService) SetRedisClient(client *redis.Client) {
	s.redisClient = client
}

func (s *MenuService) CreateCategory(ctx context.Context, name, categoryType string) (*domain.Category, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, domain.NewValidationError("name", "must not be empty")
	}
	t, err := domain.ParseCategoryType(categoryType)
	if err != nil {
		return nil, err
	}
	slug := domain.Slugify(name)
	if slug == "" {
		return nil, domain.NewValidationError("name", "must contain a letter or digit")
	}

	_, err = s.store.FindCategoryBySlug(ctx, slug)
	switch {
	case err == nil:
		return nil, &domain.ConflictError{Reason: fmt.Sprintf("category %q already exists", slug)}
	case !errors.Is(err, domain.ErrNotFound):
		return nil, err
	}

	c := &domain.Category{Name: name, Slug: slug, Type: t}
	if err := s.store.CreateCategory(ctx, c); err != nil {
		return nil, err
	}
	s.invalidateCatalog(ctx)
	return c, nil
}

func (s *MenuService) CreateItem(ctx context.Context, name string, price int64, categoryID uint64) (*domain.MenuItem, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, domain.NewValidationError("name", "must not be empty")
	}
	if price < 0 {
		return nil, domain.NewValidationError("price", "must not be negative")
	}
	cat, err := s.store.FindCategoryByID(ctx, categoryID)
	if err != nil {
		return nil, err
	}

	item := &domain.MenuItem{Name: name, Price: price, CategoryID: cat.ID, IsAvailable: true}
	if err := s.store.CreateMenuItem(ctx, item); err != nil {
		return nil, err
	}
	item.Category = cat
	s.invalidateCatalog(ctx)
	return item, nil
}

// MenuItemUpdate holds the fields to change; nil means keep.
type MenuItemUpdate struct {
	Name        *string
	Price       *int64
	CategoryID  *uint64
	IsAvailable *bool
}

// UpdateItem never touches existing orders; their lines keep the snapshot
// taken when they were placed.
func (s *MenuService) UpdateItem(ctx context.Context, id uint64, u MenuItemUpdate) (*domain.MenuItem, error) {
	item, err := s.store.FindMenuItemByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if u.Name != nil {
		name := strings.TrimSpace(*u.Name)
		if name == "" {
			return nil, domain.NewValidationError("name", "must not be empty")
		}
		item.Name = name
	}
	if u.Price != nil {
		if *u.Price < 0 {
			return nil, domain.NewValidationError("price", "must not be negative")
		}
		item.Price = *u.Price
	}
	if u.CategoryID != nil && *u.CategoryID != item.CategoryID {
		cat, err := s.store.FindCategoryByID(ctx, *u.CategoryID)
		if err != nil {
			return nil, err
		}
		item.CategoryID = cat.ID
		item.Category = cat
	}
	if u.IsAvailable != nil {
		item.IsAvailable = *u.IsAvailable
	}

	if err := s.store.SaveMenuItem(ctx, item); err != nil {
		return nil, err
	}
	s.invalidateCatalog(ctx)
	return item, nil
}

// SetAvailability is idempotent.
func (s *MenuService) SetAvailability(ctx context.Context, id uint64, isAvailable bool) (*domain.MenuItem, error) {
	item, err := s.store.FindMenuItemByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := s.store.SetMenuItemAvailability(ctx, id, isAvailable); err != nil {
		return nil, err
	}
	item.IsAvailable = isAvailable
	s.invalidateCatalog(ctx)
	s.log.WithFields(logrus.Fields{"menu_item_id": id, "available": isAvailable}).Info("availability changed")
	return item, nil
}

// DeleteCategory refuses while the category still owns items.
func (s *MenuService) DeleteCategory(ctx context.Context, id uint64) error {
	if _, err := s.store.FindCategoryByID(ctx, id); err != nil {
		return err
	}
	n, err := s.store.CountItemsInCategory(ctx, id)
	if err != nil {
		return err
	}
	if n > 0 {
		return &domain.ConflictError{Reason: fmt.Sprintf("category %d still has %d menu item(s)", id, n)}
	}
	if err := s.store.DeleteCategory(ctx, id); err != nil {
		return err
	}
	s.invalidateCatalog(ctx)
	return nil
}

func (s *MenuService) DeleteItem(ctx context.Context, id uint64) error {
	if err := s.store.DeleteMenuItem(ctx, id); err != nil {
		return err
	}
	s.invalidateCatalog(ctx)
	return nil
}

// ListCatalog returns every category with its items. Concurrent misses share
// one database read.
func (s *MenuService) ListCatalog(ctx context.Context) ([]domain.Category, error) {
	if cats, ok := s.cachedCatalog(ctx); ok {
		return cats, nil
	}

	v, err, _ := s.group.Do(catalogCacheKey, func() (interface{}, error) {
		cats, err := s.store.FindCategoriesWithItems(ctx)
		if err != nil {
			return nil, err
		}
		s.cacheCatalog(ctx, cats)
		return cats, nil
	})
	if err != nil {
		return nil, err
	}
	return v.([]domain.Category), nil
}

// WarmupCatalogCache fills the cache ahead of the first request.
func (s *MenuService) WarmupCatalogCache(ctx context.Context) error {
	if s.redisClient == nil {
		return nil
	}
	cats, err := s.store.FindCategoriesWithItems(ctx)
	if err != nil {
		return err
	}
	s.cacheCatalog(ctx, cats)
	return nil
}

func (s *MenuService) cachedCatalog(ctx context.Context) ([]domain.Category, bool) {
	if s.redisClient == nil {
		return nil, false
	}
	b, err := s.redisClient.Get(ctx, catalogCacheKey).Bytes()
	if err != nil {
		if !errors.Is(err, redis.Nil) {
			s.log.WithError(err).Debug("catalog cache read failed")
		}
		return nil, false
	}
	var cats []domain.Category
	if err := json.Unmarshal(b, &cats); err != nil {
		return nil, false
	}
	return cats, true
}

func (s *MenuService) cacheCatalog(ctx context.Context, cats []domain.Category) {
	if s.redisClient == nil {
		return
	}
	data, err := json.Marshal(cats)
	if err != nil {
		return
	}
	if err := s.redisClient.Set(ctx, catalogCacheKey, data, catalogCacheTTL).Err(); err != nil {
		s.log.WithError(err).Debug("catalog cache write failed")
	}
}

func (s *MenuService) invalidateCatalog(ctx context.Context) {
	if s.redisClient == nil {
		return
	}
	if err := s.redisClient.Del(ctx, catalogCacheKey).Err(); err != nil {
		s.log.WithError(err).Warn("catalog cache invalidation failed")
	}
}
