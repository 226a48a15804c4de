package sql

import (
	"context"

	"gorm.io/gorm"

	"accounts/internal/entity"
	"accounts/internal/model"
)

// GormRepository implements model.Repository using GORM
type GormRepository struct {
	db *gorm.DB
}

// NewGormRepository creates a new repository instance
func NewGormRepository(db *gorm.DB) *GormRepository {
	return &GormRepository{db: db}
}

// Transaction 在单个事务内执行 fn。fn 返回错误时回滚，否则提交。
func (r *GormRepository) Transaction(ctx context.Context, fn func(tx model.Repository) error) error {
	if r == nil || r.db == nil {
		return errRepoNotInitialised
	}
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(&GormRepository{db: tx})
	})
}

// calculatePagination calculates pagination metrics
func (r *GormRepository) calculatePagination(totalCount int64, page, pageSize int) *entity.Meta {
	if pageSize <= 0 {
		pageSize = 20
	}
	if page <= 0 {
		page = 1
	}

	return &entity.Meta{
		Total:    totalCount,
		Page:     int64(page),
		PageSize: int64(pageSize),
	}
}

var _ model.Repository = (*GormRepository)(nil)
