package sql

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"gorm.io/gorm"

	"accounts/internal/entity"
)

var errRepoNotInitialised = errors.New("repository not initialised")

// CreateUser persists a new user record.
func (r *GormRepository) CreateUser(ctx context.Context, user *entity.User) error {
	if r == nil || r.db == nil {
		return errRepoNotInitialised
	}
	if user == nil {
		return fmt.Errorf("user is nil")
	}
	return r.db.WithContext(ctx).Omit("Role", "Photo").Create(user).Error
}

// UpdateUser updates an existing user entry.
func (r *GormRepository) UpdateUser(ctx context.Context, id uint, updates entity.UserUpdates) error {
	if r == nil || r.db == nil {
		return errRepoNotInitialised
	}
	if id == 0 {
		return fmt.Errorf("invalid user id")
	}
	if updates.IsEmpty() {
		return nil
	}
	return r.db.WithContext(ctx).Model(&entity.User{}).Where("id = ?", id).Updates(updates.ToMap()).Error
}

// GetUserByID loads an active user by ID with role, permissions and photo.
func (r *GormRepository) GetUserByID(ctx context.Context, id uint) (*entity.User, error) {
	if r == nil || r.db == nil {
		return nil, errRepoNotInitialised
	}
	if id == 0 {
		return nil, fmt.Errorf("invalid user id")
	}
	var user entity.User
	if err := r.db.WithContext(ctx).
		Preload("Role.Permissions").
		Preload("Photo").
		First(&user, id).Error; err != nil {
		return nil, err
	}
	return &user, nil
}

// GetUserByEmail loads an active user by email. Soft-deleted rows are
// excluded; they cannot log in.
func (r *GormRepository) GetUserByEmail(ctx context.Context, email string) (*entity.User, error) {
	if r == nil || r.db == nil {
		return nil, errRepoNotInitialised
	}
	trimmed := strings.TrimSpace(email)
	if trimmed == "" {
		return nil, fmt.Errorf("email is empty")
	}

	var user entity.User
	if err := r.db.WithContext(ctx).
		Preload("Role.Permissions").
		Preload("Photo").
		Where("email = ?", trimmed).
		First(&user).Error; err != nil {
		return nil, err
	}
	return &user, nil
}

// EmailTaken reports whether any row, soft-deleted included, already holds
// the email. The unique index spans trashed rows, so a scoped check would
// let the insert race into a constraint violation.
func (r *GormRepository) EmailTaken(ctx context.Context, email string, excludeID uint) (bool, error) {
	if r == nil || r.db == nil {
		return false, errRepoNotInitialised
	}
	trimmed := strings.TrimSpace(email)
	if trimmed == "" {
		return false, fmt.Errorf("email is empty")
	}
	query := r.db.WithContext(ctx).Unscoped().Model(&entity.User{}).Where("email = ?", trimmed)
	if excludeID != 0 {
		query = query.Where("id <> ?", excludeID)
	}
	var count int64
	if err := query.Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

// ListUsers returns paginated active users.
func (r *GormRepository) ListUsers(ctx context.Context, params *entity.UserQuery) ([]entity.User, *entity.Meta, error) {
	if r == nil || r.db == nil {
		return nil, nil, errRepoNotInitialised
	}

	query := r.db.WithContext(ctx).Model(&entity.User{})
	if params != nil {
		if trimmed := strings.TrimSpace(params.Role); trimmed != "" {
			query = query.Joins("JOIN roles ON roles.id = users.role_id").Where("roles.code = ?", trimmed)
		}
		if keyword := strings.TrimSpace(params.Keyword); keyword != "" {
			kw := "%" + strings.ToLower(keyword) + "%"
			query = query.Where("LOWER(users.email) LIKE ? OR LOWER(users.name) LIKE ?", kw, kw)
		}
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, nil, err
	}

	page := 1
	pageSize := 20
	if params != nil {
		if params.Page > 0 {
			page = int(params.Page)
		}
		if params.PageSize > 0 {
			pageSize = int(params.PageSize)
		}
	}

	offset := (page - 1) * pageSize
	if offset < 0 {
		offset = 0
	}

	var users []entity.User
	if err := query.
		Preload("Role.Permissions").
		Preload("Photo").
		Order("users.id DESC").
		Offset(offset).Limit(pageSize).
		Find(&users).Error; err != nil {
		return nil, nil, err
	}

	meta := r.calculatePagination(total, page, pageSize)
	return users, meta, nil
}

// ListTrashedUsers returns soft-deleted users only.
func (r *GormRepository) ListTrashedUsers(ctx context.Context) ([]entity.User, error) {
	if r == nil || r.db == nil {
		return nil, errRepoNotInitialised
	}
	var users []entity.User
	if err := r.db.WithContext(ctx).
		Unscoped().
		Preload("Role").
		Where("deleted_at IS NOT NULL").
		Order("deleted_at DESC").
		Find(&users).Error; err != nil {
		return nil, err
	}
	return users, nil
}

// GetTrashedUserByID loads a soft-deleted user by ID.
func (r *GormRepository) GetTrashedUserByID(ctx context.Context, id uint) (*entity.User, error) {
	if r == nil || r.db == nil {
		return nil, errRepoNotInitialised
	}
	if id == 0 {
		return nil, fmt.Errorf("invalid user id")
	}
	var user entity.User
	if err := r.db.WithContext(ctx).
		Unscoped().
		Preload("Role").
		Where("id = ? AND deleted_at IS NOT NULL", id).
		First(&user).Error; err != nil {
		return nil, err
	}
	return &user, nil
}

// SoftDeleteUser marks a user deleted. The row keeps its id and role so a
// later restore brings the account back unchanged.
func (r *GormRepository) SoftDeleteUser(ctx context.Context, id uint) error {
	if r == nil || r.db == nil {
		return errRepoNotInitialised
	}
	if id == 0 {
		return fmt.Errorf("invalid user id")
	}
	result := r.db.WithContext(ctx).Delete(&entity.User{}, id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// RestoreUser clears the soft-delete marker.
func (r *GormRepository) RestoreUser(ctx context.Context, id uint) error {
	if r == nil || r.db == nil {
		return errRepoNotInitialised
	}
	if id == 0 {
		return fmt.Errorf("invalid user id")
	}
	result := r.db.WithContext(ctx).
		Unscoped().
		Model(&entity.User{}).
		Where("id = ? AND deleted_at IS NOT NULL", id).
		Update("deleted_at", nil)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// CountUsers returns total active user count.
func (r *GormRepository) CountUsers(ctx context.Context) (int64, error) {
	if r == nil || r.db == nil {
		return 0, errRepoNotInitialised
	}
	var count int64
	if err := r.db.WithContext(ctx).Model(&entity.User{}).Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}
