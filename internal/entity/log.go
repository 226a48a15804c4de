package entity

import "time"

// AuditLogItem 是审计日志的读取视图，CreatedAtHuman 在读取时渲染为
// 相对时间（如 "2 hours ago"），不落库。
type AuditLogItem struct {
	ID             uint      `json:"id"`
	Event          string    `json:"event"`
	CreatedAt      time.Time `json:"created_at"`
	CreatedAtHuman string    `json:"created_at_human"`
}
