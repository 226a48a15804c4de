package api

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"accounts/internal/entity"
)

// Login 校验凭证并签发会话 Cookie。Token 不进响应体。
func (h *HTTPHandler) Login(c *gin.Context) {
	var req entity.AuthLoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		InvalidPayload(c)
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), 10*time.Second)
	defer cancel()

	user, err := h.accountService.Login(ctx, req.Email, req.Password)
	if err != nil {
		RespondServiceError(c, err)
		return
	}

	token, expiresAt, err := h.authManager.GenerateToken(user)
	if err != nil {
		logrus.WithError(err).Error("failed to generate token")
		InternalError(c, "failed to create session")
		return
	}

	h.setAuthCookie(c, token, expiresAt)
	c.JSON(http.StatusOK, entity.LoginResponse{
		Status:      statusSuccess,
		Code:        http.StatusOK,
		Message:     "login successful",
		Profile:     h.makeUserSummary(user),
		Roles:       []string{user.RoleCode()},
		Permissions: user.PermissionCodes(),
	})
}

// Logout 记录审计并清除会话 Cookie。Token 无服务端失效机制，
// 过期前它在密码学意义上仍然有效。
func (h *HTTPHandler) Logout(c *gin.Context) {
	requestUser := CurrentUser(c)

	ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
	defer cancel()

	actor, err := h.repo.GetUserByID(ctx, requestUser.ID)
	if err == nil {
		if auditErr := h.accountService.Logout(ctx, actor); auditErr != nil {
			logrus.WithError(auditErr).Warn("failed to record logout event")
		}
	}

	h.clearAuthCookie(c)
	SuccessResponse(c, http.StatusOK, "logged out", nil)
}

// Refresh 用仍然有效的会话换发一个新 Token，重置过期时间。
func (h *HTTPHandler) Refresh(c *gin.Context) {
	requestUser := CurrentUser(c)

	ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
	defer cancel()

	user, err := h.repo.GetUserByID(ctx, requestUser.ID)
	if err != nil {
		logrus.WithError(err).WithField("user_id", requestUser.ID).Error("failed to load user for refresh")
		InternalError(c, "failed to refresh session")
		return
	}

	token, expiresAt, err := h.authManager.GenerateToken(user)
	if err != nil {
		logrus.WithError(err).Error("failed to generate token")
		InternalError(c, "failed to refresh session")
		return
	}

	h.setAuthCookie(c, token, expiresAt)
	SuccessResponse(c, http.StatusOK, "token refreshed", gin.H{
		"expires_at": expiresAt,
	})
}

// Profile 返回当前用户的完整资料，并记一条查看事件。
func (h *HTTPHandler) Profile(c *gin.Context) {
	requestUser := CurrentUser(c)

	ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
	defer cancel()

	user, err := h.repo.GetUserByID(ctx, requestUser.ID)
	if err != nil {
		logrus.WithError(err).WithField("user_id", requestUser.ID).Error("failed to load profile")
		InternalError(c, "failed to load profile")
		return
	}

	if err := h.accountService.RecordProfileView(ctx, user); err != nil {
		logrus.WithError(err).Warn("failed to record profile view")
	}

	SuccessResponse(c, http.StatusOK, "profile", h.makeUserSummary(user))
}
