package entity

// RoleSummary 返回给客户端的角色描述。
type RoleSummary struct {
	ID          uint     `json:"id"`
	Name        string   `json:"name"`
	Code        string   `json:"code"`
	GuardName   string   `json:"guard_name"`
	Permissions []string `json:"permissions,omitempty"`
}
