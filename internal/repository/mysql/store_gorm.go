package mysql

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"pos-service/internal/domain"
	"pos-service/internal/repository"
)

type store struct {
	db *gorm.DB
}

// NewStore works with any gorm dialect; the service runs it on MySQL and
// tests run it on SQLite.
func NewStore(db *gorm.DB) repository.Store {
	return &store{db: db}
}

func (s *store) Transaction(ctx context.Context, fn func(tx repository.Store) error) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(&store{db: tx})
	})
}

func notFound(err error, entity string, id uint64) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return domain.NewNotFoundError(entity, id)
	}
	return err
}
