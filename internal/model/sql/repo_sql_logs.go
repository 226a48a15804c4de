package sql

import (
	"context"
	"fmt"
	"strings"

	"accounts/internal/entity"
)

// RecordEvent appends an audit entry. There is deliberately no update or
// delete counterpart anywhere in the repository.
func (r *GormRepository) RecordEvent(ctx context.Context, event string) error {
	if r == nil || r.db == nil {
		return errRepoNotInitialised
	}
	trimmed := strings.TrimSpace(event)
	if trimmed == "" {
		return fmt.Errorf("event is empty")
	}
	return r.db.WithContext(ctx).Create(&entity.AuditLog{Event: trimmed}).Error
}

// ListAuditLogs returns all audit entries, newest first.
func (r *GormRepository) ListAuditLogs(ctx context.Context) ([]entity.AuditLog, error) {
	if r == nil || r.db == nil {
		return nil, errRepoNotInitialised
	}
	var logs []entity.AuditLog
	if err := r.db.WithContext(ctx).Order("created_at DESC").Find(&logs).Error; err != nil {
		return nil, err
	}
	return logs, nil
}
