package entity

import "time"

// UserSummary is a lightweight user description returned to clients.
type UserSummary struct {
	ID          uint         `json:"id"`
	Email       string       `json:"email"`
	Name        string       `json:"name"`
	Role        *RoleSummary `json:"role,omitempty"`
	Status      bool         `json:"status"`
	LastLoginAt *time.Time   `json:"last_login_at"`
	PhotoURL    string       `json:"photo_url,omitempty"`
	CreatedAt   time.Time    `json:"created_at"`
	UpdatedAt   time.Time    `json:"updated_at"`
	DeletedAt   *time.Time   `json:"deleted_at,omitempty"`
}

// UserQuery supports listing users with pagination.
type UserQuery struct {
	BaseParams
	Role    string `json:"role" form:"role" query:"role"`
	Keyword string `json:"keyword" form:"keyword" query:"keyword"`
}

// AuthLoginRequest is the login request payload.
type AuthLoginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

// LoginResponse carries the identity, the role and the resolved permission
// set back to the client after a successful login. The token itself travels
// in the auth_token cookie, never in the body.
type LoginResponse struct {
	Status      string      `json:"status"`
	Code        int         `json:"code"`
	Message     string      `json:"message"`
	Profile     UserSummary `json:"profile"`
	Roles       []string    `json:"roles"`
	Permissions []string    `json:"permissions"`
}

// UserCreateRequest is the payload for creating a user. Password is optional;
// when absent a random one is generated and mailed to the new account.
type UserCreateRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Name     string `json:"name" binding:"required"`
	Password string `json:"password,omitempty"`
	RoleID   uint   `json:"role_id" binding:"required"`
}

// UserUpdateRequest is the payload for the administrative update endpoint.
type UserUpdateRequest struct {
	Email    string  `json:"email" binding:"required,email"`
	Name     string  `json:"name" binding:"required"`
	Password *string `json:"password,omitempty"`
}

// ProfileUpdateRequest is the payload for the self-service profile endpoint.
// The three password fields are all-or-nothing: supplying any of them makes
// all of them required.
type ProfileUpdateRequest struct {
	Email              string `json:"email" binding:"required,email"`
	Name               string `json:"name" binding:"required"`
	CurrentPassword    string `json:"current_password,omitempty"`
	NewPassword        string `json:"new_password,omitempty"`
	ConfirmNewPassword string `json:"confirm_new_password,omitempty"`
}

// RoleUpdateRequest replaces the user's single role assignment.
type RoleUpdateRequest struct {
	RoleID uint `json:"role_id" binding:"required"`
}

// UserListResponse is the response body for listing users.
type UserListResponse struct {
	Users []UserSummary `json:"users"`
	Meta  *Meta         `json:"meta,omitempty"`
}
