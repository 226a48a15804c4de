package sql

import (
	"context"
	"fmt"
	"strings"

	"accounts/internal/entity"
)

// CreateRole persists a new role.
func (r *GormRepository) CreateRole(ctx context.Context, role *entity.Role) error {
	if r == nil || r.db == nil {
		return errRepoNotInitialised
	}
	if role == nil {
		return fmt.Errorf("role is nil")
	}
	return r.db.WithContext(ctx).Omit("Permissions").Create(role).Error
}

// GetRoleByID loads a role scoped to a guard context with its permissions.
func (r *GormRepository) GetRoleByID(ctx context.Context, id uint, guard string) (*entity.Role, error) {
	if r == nil || r.db == nil {
		return nil, errRepoNotInitialised
	}
	if id == 0 {
		return nil, fmt.Errorf("invalid role id")
	}
	query := r.db.WithContext(ctx).Preload("Permissions")
	if trimmed := strings.TrimSpace(guard); trimmed != "" {
		query = query.Where("guard_name = ?", trimmed)
	}
	var role entity.Role
	if err := query.First(&role, id).Error; err != nil {
		return nil, err
	}
	return &role, nil
}

// GetRoleByCode loads a role by its machine code.
func (r *GormRepository) GetRoleByCode(ctx context.Context, code string) (*entity.Role, error) {
	if r == nil || r.db == nil {
		return nil, errRepoNotInitialised
	}
	trimmed := strings.TrimSpace(code)
	if trimmed == "" {
		return nil, fmt.Errorf("role code is empty")
	}
	var role entity.Role
	if err := r.db.WithContext(ctx).
		Preload("Permissions").
		Where("code = ?", trimmed).
		First(&role).Error; err != nil {
		return nil, err
	}
	return &role, nil
}

// ListRoles returns all roles with permissions.
func (r *GormRepository) ListRoles(ctx context.Context) ([]entity.Role, error) {
	if r == nil || r.db == nil {
		return nil, errRepoNotInitialised
	}
	var roles []entity.Role
	if err := r.db.WithContext(ctx).
		Preload("Permissions").
		Order("id ASC").
		Find(&roles).Error; err != nil {
		return nil, err
	}
	return roles, nil
}

// CreatePermission persists a new permission.
func (r *GormRepository) CreatePermission(ctx context.Context, permission *entity.Permission) error {
	if r == nil || r.db == nil {
		return errRepoNotInitialised
	}
	if permission == nil {
		return fmt.Errorf("permission is nil")
	}
	return r.db.WithContext(ctx).Create(permission).Error
}

// GetPermissionByCode loads a permission by its machine code.
func (r *GormRepository) GetPermissionByCode(ctx context.Context, code string) (*entity.Permission, error) {
	if r == nil || r.db == nil {
		return nil, errRepoNotInitialised
	}
	trimmed := strings.TrimSpace(code)
	if trimmed == "" {
		return nil, fmt.Errorf("permission code is empty")
	}
	var permission entity.Permission
	if err := r.db.WithContext(ctx).Where("code = ?", trimmed).First(&permission).Error; err != nil {
		return nil, err
	}
	return &permission, nil
}

// GrantPermissions attaches permissions to a role, replacing nothing that is
// already granted.
func (r *GormRepository) GrantPermissions(ctx context.Context, role *entity.Role, permissions []entity.Permission) error {
	if r == nil || r.db == nil {
		return errRepoNotInitialised
	}
	if role == nil {
		return fmt.Errorf("role is nil")
	}
	if len(permissions) == 0 {
		return nil
	}
	return r.db.WithContext(ctx).Model(role).Association("Permissions").Append(&permissions)
}
