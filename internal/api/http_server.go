package api

import (
	"strings"
	"time"

	"accounts/internal/auth"
	"accounts/internal/config"
	"accounts/internal/entity"
	"accounts/internal/model"
	"accounts/internal/notify"
	"accounts/internal/service"
	"accounts/internal/storage"
)

// HTTPHandler HTTP 请求处理器
type HTTPHandler struct {
	cfg               config.Config
	repo              model.Repository
	storage           storage.Storage
	storagePublicBase string
	authManager       *auth.Manager

	// 服务层
	accountService *service.AccountService
}

// NewHTTPHandler 创建 HTTP 处理器实例
func NewHTTPHandler(cfg config.Config, repo model.Repository, store storage.Storage, notifier notify.Notifier) (*HTTPHandler, error) {
	expiry := time.Duration(cfg.JWTExpirationMinutes) * time.Minute
	authManager, err := auth.NewManager(cfg.JWTSecret, cfg.JWTIssuer, expiry)
	if err != nil {
		return nil, err
	}

	accountSvc := service.NewAccountService(repo, notifier, store)

	return &HTTPHandler{
		cfg:               cfg,
		repo:              repo,
		storage:           store,
		storagePublicBase: normalisePublicBase(cfg.StoragePublicBaseURL),
		authManager:       authManager,
		accountService:    accountSvc,
	}, nil
}

// normalisePublicBase 规范化公共 URL 基础路径
func normalisePublicBase(value string) string {
	trimmed := strings.TrimSpace(value)
	if trimmed == "" {
		trimmed = "/files"
	}
	if strings.HasPrefix(trimmed, "http://") || strings.HasPrefix(trimmed, "https://") {
		return strings.TrimRight(trimmed, "/")
	}
	if !strings.HasPrefix(trimmed, "/") {
		trimmed = "/" + trimmed
	}
	return strings.TrimRight(trimmed, "/")
}

// publicURL 把存储键转换为客户端可访问的 URL。
func (h *HTTPHandler) publicURL(key string) string {
	key = strings.TrimLeft(strings.TrimSpace(key), "/")
	if key == "" {
		return ""
	}
	return h.storagePublicBase + "/" + key
}

func makeRoleSummary(role *entity.Role) *entity.RoleSummary {
	if role == nil {
		return nil
	}
	permissions := make([]string, 0, len(role.Permissions))
	for _, p := range role.Permissions {
		permissions = append(permissions, p.Code)
	}
	return &entity.RoleSummary{
		ID:          role.ID,
		Name:        role.Name,
		Code:        role.Code,
		GuardName:   role.GuardName,
		Permissions: permissions,
	}
}

func (h *HTTPHandler) makeUserSummary(user *entity.User) entity.UserSummary {
	if user == nil {
		return entity.UserSummary{}
	}
	summary := entity.UserSummary{
		ID:          user.ID,
		Email:       user.Email,
		Name:        user.Name,
		Role:        makeRoleSummary(user.Role),
		Status:      user.Status,
		LastLoginAt: user.LastLoginAt,
		CreatedAt:   user.CreatedAt,
		UpdatedAt:   user.UpdatedAt,
	}
	if user.Photo != nil {
		summary.PhotoURL = h.publicURL(user.Photo.File)
	}
	if user.DeletedAt.Valid {
		deletedAt := user.DeletedAt.Time
		summary.DeletedAt = &deletedAt
	}
	return summary
}
