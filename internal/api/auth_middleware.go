package api

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"accounts/internal/auth"
	"accounts/internal/entity"
)

const (
	currentUserContextKey = "current-user"
)

// RequestUser 存储请求上下文中的认证用户信息。权限码在会话构建时解析一次，
// 之后不再回表。
type RequestUser struct {
	ID          uint
	Email       string
	Name        string
	Role        string
	Permissions []string
}

// IsAdmin 判断用户是否具有管理员角色
func (u *RequestUser) IsAdmin() bool {
	return u != nil && u.Role == entity.RoleCodeAdmin
}

// HasPermission 判断会话权限集是否包含指定权限码
func (u *RequestUser) HasPermission(code string) bool {
	if u == nil {
		return false
	}
	for _, p := range u.Permissions {
		if p == code {
			return true
		}
	}
	return false
}

// AuthMiddleware 会话认证中间件。Token 经 auth_token Cookie 传输；
// 每个请求做一次签名校验加一次按键用户读取，期间重读账户的启用与删除
// 状态，不信任 Token 内嵌的快照。
func (h *HTTPHandler) AuthMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		tokenString, err := c.Cookie(authCookieName)
		if err != nil || tokenString == "" {
			AbortUnauthorized(c, "token not provided")
			return
		}

		claims, err := h.authManager.ParseToken(tokenString)
		if err != nil {
			if errors.Is(err, auth.ErrTokenExpired) {
				// 清掉 Cookie，客户端不再重发死 Token
				h.clearAuthCookie(c)
				AbortUnauthorized(c, "token expired")
				return
			}
			logrus.WithError(err).Warn("failed to parse session token")
			AbortUnauthorized(c, "invalid token")
			return
		}

		ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
		defer cancel()

		user, err := h.repo.GetUserByID(ctx, claims.UserID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				AbortUnauthorized(c, "user not found")
				return
			}
			logrus.WithError(err).WithField("user_id", claims.UserID).Error("failed to load user")
			c.AbortWithStatusJSON(http.StatusInternalServerError, Envelope{
				Status:  statusError,
				Code:    http.StatusInternalServerError,
				Message: "failed to verify session",
			})
			return
		}

		if !user.Status {
			// Token 本身有效，只是访问被拒，Cookie 保留
			AbortUnauthorized(c, "account disabled")
			return
		}

		requestUser := &RequestUser{
			ID:          user.ID,
			Email:       user.Email,
			Name:        user.Name,
			Role:        user.RoleCode(),
			Permissions: user.PermissionCodes(),
		}

		c.Set(currentUserContextKey, requestUser)
		c.Next()
	}
}

// RequireAdmin 管理员权限守卫中间件
func (h *HTTPHandler) RequireAdmin() gin.HandlerFunc {
	return func(c *gin.Context) {
		user := CurrentUser(c)
		if user == nil || !user.IsAdmin() {
			c.AbortWithStatusJSON(http.StatusForbidden, Envelope{
				Status:  statusError,
				Code:    http.StatusForbidden,
				Message: "administrator role required",
			})
			return
		}
		c.Next()
	}
}

// RequirePermission 按权限码守卫单条路由。权限集来自会话构建时的角色解析。
func (h *HTTPHandler) RequirePermission(code string) gin.HandlerFunc {
	return func(c *gin.Context) {
		user := CurrentUser(c)
		if user == nil || !user.HasPermission(code) {
			c.AbortWithStatusJSON(http.StatusForbidden, Envelope{
				Status:  statusError,
				Code:    http.StatusForbidden,
				Message: "insufficient permissions",
			})
			return
		}
		c.Next()
	}
}

// CurrentUser 从上下文获取当前认证用户
func CurrentUser(c *gin.Context) *RequestUser {
	value, exists := c.Get(currentUserContextKey)
	if !exists {
		return nil
	}
	user, ok := value.(*RequestUser)
	if !ok {
		return nil
	}
	return user
}
