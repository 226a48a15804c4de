package service

import "errors"

// 业务错误。API 层负责把它们映射为对应的 HTTP 状态码。
var (
	// ErrInvalidCredentials 邮箱未知或密码错误（401）。
	ErrInvalidCredentials = errors.New("invalid credentials")
	// ErrAccountDisabled 密码正确但账户被停用（403）。停用账户的用户
	// 应被告知联系管理员，而不是收到笼统的认证失败。
	ErrAccountDisabled = errors.New("account disabled")
	// ErrEmailTaken 邮箱已被占用（422/409）。
	ErrEmailTaken = errors.New("email already taken")
	// ErrWrongCurrentPassword 修改密码时当前密码校验失败（400）。
	ErrWrongCurrentPassword = errors.New("current password is incorrect")
	// ErrPasswordMismatch 新密码与确认密码不一致（422）。
	ErrPasswordMismatch = errors.New("password confirmation does not match")
	// ErrPasswordFieldsRequired 密码三件套填写不完整（422）。
	ErrPasswordFieldsRequired = errors.New("current, new and confirmation passwords are all required")
	// ErrUserNotFound 目标用户不存在（404）。
	ErrUserNotFound = errors.New("user not found")
	// ErrRoleNotFound 角色不存在或不属于 api 守卫上下文（404）。
	ErrRoleNotFound = errors.New("role not found")
)
