package api

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"accounts/internal/entity"
	"accounts/internal/service"
)

// ListUsers 分页列出未删除用户，支持按角色码与关键字过滤。
func (h *HTTPHandler) ListUsers(c *gin.Context) {
	var query entity.UserQuery
	if err := c.ShouldBindQuery(&query); err != nil {
		InvalidPayload(c)
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), 10*time.Second)
	defer cancel()

	users, meta, err := h.repo.ListUsers(ctx, &query)
	if err != nil {
		logrus.WithError(err).Error("failed to list users")
		InternalError(c, "failed to list users")
		return
	}

	summaries := make([]entity.UserSummary, 0, len(users))
	for i := range users {
		summaries = append(summaries, h.makeUserSummary(&users[i]))
	}

	SuccessResponse(c, http.StatusOK, "users", entity.UserListResponse{
		Users: summaries,
		Meta:  meta,
	})
}

// GetUser 返回单个用户，并为查看者记一条查看事件。
func (h *HTTPHandler) GetUser(c *gin.Context) {
	id, ok := parseIDParam(c)
	if !ok {
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
	defer cancel()

	user, err := h.repo.GetUserByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			ErrorResponse(c, http.StatusNotFound, "user not found")
			return
		}
		logrus.WithError(err).WithField("user_id", id).Error("failed to load user")
		InternalError(c, "failed to load user")
		return
	}

	if requestUser := CurrentUser(c); requestUser != nil {
		actor, actorErr := h.repo.GetUserByID(ctx, requestUser.ID)
		if actorErr == nil {
			if auditErr := h.accountService.RecordUserView(ctx, actor, user); auditErr != nil {
				logrus.WithError(auditErr).Warn("failed to record user view")
			}
		}
	}

	SuccessResponse(c, http.StatusOK, "user", h.makeUserSummary(user))
}

// CreateUser 管理端创建用户。未提供密码时生成随机密码并随注册邮件下发。
func (h *HTTPHandler) CreateUser(c *gin.Context) {
	var req entity.UserCreateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		InvalidPayload(c)
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), 15*time.Second)
	defer cancel()

	actor, ok := h.loadActor(ctx, c)
	if !ok {
		return
	}

	user, err := h.accountService.Register(ctx, actor, req)
	if err != nil {
		RespondServiceError(c, err)
		return
	}

	SuccessResponse(c, http.StatusCreated, "user created", h.makeUserSummary(user))
}

// UpdateUser 管理端更新用户资料，可选重置密码。
func (h *HTTPHandler) UpdateUser(c *gin.Context) {
	id, ok := parseIDParam(c)
	if !ok {
		return
	}

	var req entity.UserUpdateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		InvalidPayload(c)
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), 15*time.Second)
	defer cancel()

	actor, ok := h.loadActor(ctx, c)
	if !ok {
		return
	}

	user, err := h.accountService.Update(ctx, actor, id, req)
	if err != nil {
		RespondServiceError(c, err)
		return
	}

	SuccessResponse(c, http.StatusOK, "user updated", h.makeUserSummary(user))
}

// UpdateProfile 自助更新。路径 id 必须是当前用户自己。
func (h *HTTPHandler) UpdateProfile(c *gin.Context) {
	id, ok := parseIDParam(c)
	if !ok {
		return
	}

	requestUser := CurrentUser(c)
	if requestUser == nil || requestUser.ID != id {
		Forbidden(c, "cannot update another user's profile")
		return
	}

	var req entity.ProfileUpdateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		InvalidPayload(c)
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), 15*time.Second)
	defer cancel()

	user, err := h.accountService.UpdateProfile(ctx, id, req)
	if err != nil {
		RespondServiceError(c, err)
		return
	}

	SuccessResponse(c, http.StatusOK, "profile updated", h.makeUserSummary(user))
}

// UpdateRole 替换用户的角色归属。
func (h *HTTPHandler) UpdateRole(c *gin.Context) {
	id, ok := parseIDParam(c)
	if !ok {
		return
	}

	var req entity.RoleUpdateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		InvalidPayload(c)
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), 10*time.Second)
	defer cancel()

	actor, ok := h.loadActor(ctx, c)
	if !ok {
		return
	}

	user, err := h.accountService.UpdateRole(ctx, actor, id, req.RoleID)
	if err != nil {
		RespondServiceError(c, err)
		return
	}

	SuccessResponse(c, http.StatusOK, "role updated", h.makeUserSummary(user))
}

// ToggleStatus 翻转账户启用开关。
func (h *HTTPHandler) ToggleStatus(c *gin.Context) {
	id, ok := parseIDParam(c)
	if !ok {
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), 10*time.Second)
	defer cancel()

	actor, ok := h.loadActor(ctx, c)
	if !ok {
		return
	}

	user, err := h.accountService.ToggleStatus(ctx, actor, id)
	if err != nil {
		RespondServiceError(c, err)
		return
	}

	message := "account disabled"
	if user.Status {
		message = "account enabled"
	}
	SuccessResponse(c, http.StatusOK, message, h.makeUserSummary(user))
}

// DeleteUser 软删除用户。行可经 /users/restore/:id 恢复。
func (h *HTTPHandler) DeleteUser(c *gin.Context) {
	id, ok := parseIDParam(c)
	if !ok {
		return
	}

	requestUser := CurrentUser(c)
	if requestUser != nil && requestUser.ID == id {
		Forbidden(c, "cannot delete your own account")
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), 10*time.Second)
	defer cancel()

	actor, ok := h.loadActor(ctx, c)
	if !ok {
		return
	}

	if err := h.accountService.Destroy(ctx, actor, id); err != nil {
		RespondServiceError(c, err)
		return
	}

	SuccessResponse(c, http.StatusOK, "user deleted", nil)
}

// RestoreUser 恢复软删除的用户。
func (h *HTTPHandler) RestoreUser(c *gin.Context) {
	id, ok := parseIDParam(c)
	if !ok {
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), 10*time.Second)
	defer cancel()

	actor, ok := h.loadActor(ctx, c)
	if !ok {
		return
	}

	user, err := h.accountService.Restore(ctx, actor, id)
	if err != nil {
		RespondServiceError(c, err)
		return
	}

	SuccessResponse(c, http.StatusOK, "user restored", h.makeUserSummary(user))
}

// ListTrashedUsers 列出回收站中的用户。
func (h *HTTPHandler) ListTrashedUsers(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), 10*time.Second)
	defer cancel()

	users, err := h.repo.ListTrashedUsers(ctx)
	if err != nil {
		logrus.WithError(err).Error("failed to list trashed users")
		InternalError(c, "failed to list trashed users")
		return
	}

	summaries := make([]entity.UserSummary, 0, len(users))
	for i := range users {
		summaries = append(summaries, h.makeUserSummary(&users[i]))
	}

	SuccessResponse(c, http.StatusOK, "trashed users", entity.UserListResponse{Users: summaries})
}

// ListRoles 列出全部可分配角色。
func (h *HTTPHandler) ListRoles(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
	defer cancel()

	roles, err := h.repo.ListRoles(ctx)
	if err != nil {
		logrus.WithError(err).Error("failed to list roles")
		InternalError(c, "failed to list roles")
		return
	}

	summaries := make([]entity.RoleSummary, 0, len(roles))
	for i := range roles {
		summaries = append(summaries, *makeRoleSummary(&roles[i]))
	}

	SuccessResponse(c, http.StatusOK, "roles", gin.H{"roles": summaries})
}

// loadActor 读取当前操作者的完整记录，供服务层写审计。
func (h *HTTPHandler) loadActor(ctx context.Context, c *gin.Context) (*entity.User, bool) {
	requestUser := CurrentUser(c)
	if requestUser == nil {
		AbortUnauthorized(c, "token not provided")
		return nil, false
	}
	actor, err := h.repo.GetUserByID(ctx, requestUser.ID)
	if err != nil {
		if errors.Is(err, service.ErrUserNotFound) || errors.Is(err, gorm.ErrRecordNotFound) {
			AbortUnauthorized(c, "user not found")
			return nil, false
		}
		logrus.WithError(err).WithField("user_id", requestUser.ID).Error("failed to load actor")
		InternalError(c, "internal server error")
		return nil, false
	}
	return actor, true
}

func parseIDParam(c *gin.Context) (uint, bool) {
	raw := c.Param("id")
	id, err := strconv.ParseUint(raw, 10, 64)
	if err != nil || id == 0 {
		ErrorResponse(c, http.StatusBadRequest, "invalid user id")
		return 0, false
	}
	return uint(id), true
}
