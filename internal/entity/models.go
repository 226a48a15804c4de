package entity

import (
	"time"

	"gorm.io/gorm"
)

const (
	// GuardAPI 是本服务唯一的认证上下文。角色与权限均限定在该上下文内。
	GuardAPI = "api"

	RoleCodeAdmin = "admin"
	RoleCodeUser  = "user"
)

// User 表示持久化的用户账户。Status 为启用开关；停用只在下一次请求经过
// 会话中间件时生效，已签发的 Token 不会被主动吊销。
type User struct {
	ID           uint           `gorm:"primarykey" json:"id"`
	CreatedAt    time.Time      `json:"created_at"`
	UpdatedAt    time.Time      `json:"updated_at"`
	DeletedAt    gorm.DeletedAt `gorm:"index" json:"-"`
	Email        string         `gorm:"column:email;type:varchar(255);uniqueIndex;not null" json:"email"`
	Name         string         `gorm:"column:name;type:varchar(255);not null" json:"name"`
	PasswordHash string         `gorm:"column:password_hash;type:varchar(255);not null" json:"-"`
	Status       bool           `gorm:"column:status;not null;default:true" json:"status"`
	LastLoginAt  *time.Time     `gorm:"column:last_login_at" json:"last_login_at"`
	RoleID       uint           `gorm:"column:role_id;index" json:"role_id"`
	Role         *Role          `json:"role,omitempty"`
	Photo        *Media         `gorm:"foreignKey:UserID" json:"photo,omitempty"`
}

// TableName 指定表名。
func (User) TableName() string {
	return "users"
}

// IsDeleted 判断用户是否已被软删除。
func (u *User) IsDeleted() bool {
	return u != nil && u.DeletedAt.Valid
}

// PermissionCodes 返回用户角色授予的权限码集合。会话构建时调用一次，
// 之后随请求上下文传递，不再回表。
func (u *User) PermissionCodes() []string {
	if u == nil || u.Role == nil {
		return []string{}
	}
	codes := make([]string, 0, len(u.Role.Permissions))
	for _, p := range u.Role.Permissions {
		codes = append(codes, p.Code)
	}
	return codes
}

// RoleCode 返回用户角色的机器码，未加载角色时返回空串。
func (u *User) RoleCode() string {
	if u == nil || u.Role == nil {
		return ""
	}
	return u.Role.Code
}

// Role 表示一个可分配的角色。用户同一时刻只持有一个角色，分配是替换而非叠加。
type Role struct {
	ID          uint           `gorm:"primarykey" json:"id"`
	CreatedAt   time.Time      `json:"created_at"`
	UpdatedAt   time.Time      `json:"updated_at"`
	DeletedAt   gorm.DeletedAt `gorm:"index" json:"-"`
	Name        string         `gorm:"column:name;type:varchar(255);not null" json:"name"`
	Code        string         `gorm:"column:code;type:varchar(50);uniqueIndex;not null" json:"code"`
	GuardName   string         `gorm:"column:guard_name;type:varchar(50);not null;default:api" json:"guard_name"`
	Permissions []Permission   `gorm:"many2many:role_permissions" json:"permissions,omitempty"`
}

// TableName 指定表名。
func (Role) TableName() string {
	return "roles"
}

// Permission 表示一项可授予角色的权限。
type Permission struct {
	ID        uint      `gorm:"primarykey" json:"id"`
	CreatedAt time.Time `json:"created_at"`
	Name      string    `gorm:"column:name;type:varchar(255);not null" json:"name"`
	Code      string    `gorm:"column:code;type:varchar(50);uniqueIndex;not null" json:"code"`
	GuardName string    `gorm:"column:guard_name;type:varchar(50);not null;default:api" json:"guard_name"`
}

// TableName 指定表名。
func (Permission) TableName() string {
	return "permissions"
}

// Media 表示绑定到用户的头像文件引用。每个用户最多持有一条有效记录，
// 替换头像时旧记录连同存储对象一并删除。
type Media struct {
	ID        uint      `gorm:"primarykey" json:"id"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
	File      string    `gorm:"column:file;type:varchar(512);not null" json:"file"`
	UserID    uint      `gorm:"column:user_id;index;not null" json:"user_id"`
}

// TableName 指定表名。
func (Media) TableName() string {
	return "media"
}

// AuditLog 是追加写入的审计事件。Event 为纯文本快照，不引用任何外键，
// 因此其生命周期独立于用户记录。没有任何更新或删除入口。
type AuditLog struct {
	ID        uint      `gorm:"primarykey" json:"id"`
	CreatedAt time.Time `json:"created_at"`
	Event     string    `gorm:"column:event;type:text;not null" json:"event"`
}

// TableName 指定表名。
func (AuditLog) TableName() string {
	return "audit_logs"
}
