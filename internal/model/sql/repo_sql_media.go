package sql

import (
	"context"
	"fmt"

	"gorm.io/gorm"

	"accounts/internal/entity"
)

// CreateMedia persists a new media record.
func (r *GormRepository) CreateMedia(ctx context.Context, media *entity.Media) error {
	if r == nil || r.db == nil {
		return errRepoNotInitialised
	}
	if media == nil {
		return fmt.Errorf("media is nil")
	}
	return r.db.WithContext(ctx).Create(media).Error
}

// GetMediaByUserID loads the user's current profile photo record.
func (r *GormRepository) GetMediaByUserID(ctx context.Context, userID uint) (*entity.Media, error) {
	if r == nil || r.db == nil {
		return nil, errRepoNotInitialised
	}
	if userID == 0 {
		return nil, fmt.Errorf("invalid user id")
	}
	var media entity.Media
	if err := r.db.WithContext(ctx).Where("user_id = ?", userID).First(&media).Error; err != nil {
		return nil, err
	}
	return &media, nil
}

// DeleteMedia removes a media record by ID.
func (r *GormRepository) DeleteMedia(ctx context.Context, id uint) error {
	if r == nil || r.db == nil {
		return errRepoNotInitialised
	}
	if id == 0 {
		return fmt.Errorf("invalid media id")
	}
	result := r.db.WithContext(ctx).Delete(&entity.Media{}, id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}
