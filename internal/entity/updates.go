package entity

import "time"

// UserUpdates 用户更新字段。nil 表示该字段不变。
type UserUpdates struct {
	Email        *string
	Name         *string
	PasswordHash *string
	Status       *bool
	RoleID       *uint
	LastLoginAt  *time.Time
}

// ToMap 转换为 GORM 更新 map（内部使用）
func (u UserUpdates) ToMap() map[string]interface{} {
	updates := make(map[string]interface{})
	if u.Email != nil {
		updates["email"] = *u.Email
	}
	if u.Name != nil {
		updates["name"] = *u.Name
	}
	if u.PasswordHash != nil {
		updates["password_hash"] = *u.PasswordHash
	}
	if u.Status != nil {
		updates["status"] = *u.Status
	}
	if u.RoleID != nil {
		updates["role_id"] = *u.RoleID
	}
	if u.LastLoginAt != nil {
		updates["last_login_at"] = *u.LastLoginAt
	}
	return updates
}

// IsEmpty 检查是否没有任何更新字段
func (u UserUpdates) IsEmpty() bool {
	return len(u.ToMap()) == 0
}
