package model

import (
	"accounts/internal/entity"
	"context"
)

// Repository 定义数据库操作接口。
//
// Transaction 在单个数据库事务内执行 fn，fn 收到的 Repository 绑定该事务；
// fn 返回错误或中途 panic 时整个事务回滚，任何路径上都不会留下半个写入。
// 通知等事务外副作用由调用方在 Transaction 返回后自行触发。
type Repository interface {
	Transaction(ctx context.Context, fn func(tx Repository) error) error

	// 用户。读取默认排除软删除行；Trashed 系列显式操作软删除行。
	CreateUser(ctx context.Context, user *entity.User) error
	UpdateUser(ctx context.Context, id uint, updates entity.UserUpdates) error
	GetUserByID(ctx context.Context, id uint) (*entity.User, error)
	GetUserByEmail(ctx context.Context, email string) (*entity.User, error)
	EmailTaken(ctx context.Context, email string, excludeID uint) (bool, error)
	ListUsers(ctx context.Context, params *entity.UserQuery) ([]entity.User, *entity.Meta, error)
	ListTrashedUsers(ctx context.Context) ([]entity.User, error)
	GetTrashedUserByID(ctx context.Context, id uint) (*entity.User, error)
	SoftDeleteUser(ctx context.Context, id uint) error
	RestoreUser(ctx context.Context, id uint) error
	CountUsers(ctx context.Context) (int64, error)

	// 角色与权限
	CreateRole(ctx context.Context, role *entity.Role) error
	GetRoleByID(ctx context.Context, id uint, guard string) (*entity.Role, error)
	GetRoleByCode(ctx context.Context, code string) (*entity.Role, error)
	ListRoles(ctx context.Context) ([]entity.Role, error)
	CreatePermission(ctx context.Context, permission *entity.Permission) error
	GetPermissionByCode(ctx context.Context, code string) (*entity.Permission, error)
	GrantPermissions(ctx context.Context, role *entity.Role, permissions []entity.Permission) error

	// 头像
	CreateMedia(ctx context.Context, media *entity.Media) error
	GetMediaByUserID(ctx context.Context, userID uint) (*entity.Media, error)
	DeleteMedia(ctx context.Context, id uint) error

	// 审计日志：只追加、只倒序读取。
	RecordEvent(ctx context.Context, event string) error
	ListAuditLogs(ctx context.Context) ([]entity.AuditLog, error)
}
