package model

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"accounts/internal/auth"
	"accounts/internal/config"
	"accounts/internal/entity"
)

type permissionSeed struct {
	Name string
	Code string
}

var defaultPermissions = []permissionSeed{
	{Name: "View users", Code: "view-users"},
	{Name: "Create users", Code: "create-users"},
	{Name: "Edit users", Code: "edit-users"},
	{Name: "Enable or disable users", Code: "switch-users"},
	{Name: "Delete users", Code: "delete-users"},
	{Name: "Restore users", Code: "restore-users"},
}

// Seed ensures the default roles/permissions exist and, when the users table
// is empty, creates the two bootstrap accounts. Safe to run on every start.
func Seed(ctx context.Context, repo Repository, cfg config.Config) error {
	if repo == nil {
		return nil
	}

	permissions, err := seedPermissions(ctx, repo)
	if err != nil {
		return err
	}

	adminRole, err := seedRole(ctx, repo, "Administrator", entity.RoleCodeAdmin, permissions, nil)
	if err != nil {
		return err
	}

	// user 角色持有除 view-users 外的全部权限
	userRole, err := seedRole(ctx, repo, "User", entity.RoleCodeUser, permissions, []string{"view-users"})
	if err != nil {
		return err
	}

	if !cfg.SeedBootstrapUsers {
		return nil
	}
	return seedBootstrapUsers(ctx, repo, adminRole, userRole)
}

func seedPermissions(ctx context.Context, repo Repository) ([]entity.Permission, error) {
	out := make([]entity.Permission, 0, len(defaultPermissions))
	for _, seed := range defaultPermissions {
		existing, err := repo.GetPermissionByCode(ctx, seed.Code)
		switch {
		case err == nil:
			out = append(out, *existing)
		case errors.Is(err, gorm.ErrRecordNotFound):
			permission := entity.Permission{
				Name:      seed.Name,
				Code:      seed.Code,
				GuardName: entity.GuardAPI,
			}
			if err := repo.CreatePermission(ctx, &permission); err != nil {
				return nil, err
			}
			out = append(out, permission)
		default:
			return nil, err
		}
	}
	return out, nil
}

func seedRole(ctx context.Context, repo Repository, name, code string, permissions []entity.Permission, exclude []string) (*entity.Role, error) {
	existing, err := repo.GetRoleByCode(ctx, code)
	if err == nil {
		return existing, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	role := entity.Role{
		Name:      name,
		Code:      code,
		GuardName: entity.GuardAPI,
	}
	if err := repo.CreateRole(ctx, &role); err != nil {
		return nil, err
	}

	excluded := make(map[string]struct{}, len(exclude))
	for _, excludedCode := range exclude {
		excluded[excludedCode] = struct{}{}
	}
	granted := make([]entity.Permission, 0, len(permissions))
	for _, permission := range permissions {
		if _, skip := excluded[permission.Code]; skip {
			continue
		}
		granted = append(granted, permission)
	}
	if err := repo.GrantPermissions(ctx, &role, granted); err != nil {
		return nil, err
	}
	return &role, nil
}

func seedBootstrapUsers(ctx context.Context, repo Repository, adminRole, userRole *entity.Role) error {
	count, err := repo.CountUsers(ctx)
	if err != nil {
		return err
	}
	if count > 0 {
		return nil
	}

	hash, err := auth.HashPassword("admin")
	if err != nil {
		return err
	}

	seeds := []entity.User{
		{Email: "admin@nomail.com", Name: "John", PasswordHash: hash, Status: true, RoleID: adminRole.ID},
		{Email: "user@nomail.com", Name: "Jane", PasswordHash: hash, Status: true, RoleID: userRole.ID},
	}
	for i := range seeds {
		if err := repo.CreateUser(ctx, &seeds[i]); err != nil {
			return err
		}
		media := entity.Media{File: "photos/profile.jpg", UserID: seeds[i].ID}
		if err := repo.CreateMedia(ctx, &media); err != nil {
			return err
		}
	}
	return nil
}
