package api

import (
	"context"
	"net/http"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"accounts/internal/entity"
)

// ListAuditLogs 列出审计日志，新的在前。created_at_human 在读取时计算，
// 不落库。仅管理员可见。
func (h *HTTPHandler) ListAuditLogs(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), 10*time.Second)
	defer cancel()

	logs, err := h.repo.ListAuditLogs(ctx)
	if err != nil {
		logrus.WithError(err).Error("failed to list audit logs")
		InternalError(c, "failed to list audit logs")
		return
	}

	items := make([]entity.AuditLogItem, 0, len(logs))
	for _, log := range logs {
		items = append(items, entity.AuditLogItem{
			ID:             log.ID,
			Event:          log.Event,
			CreatedAt:      log.CreatedAt,
			CreatedAtHuman: humanize.Time(log.CreatedAt),
		})
	}

	SuccessResponse(c, http.StatusOK, "audit logs", gin.H{"logs": items})
}
