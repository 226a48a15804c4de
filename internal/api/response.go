package api

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"accounts/internal/service"
)

const (
	statusSuccess = "success"
	statusError   = "error"
)

// Envelope 统一的响应结构。code 重复 HTTP 状态码，便于前端只看响应体。
type Envelope struct {
	Status  string `json:"status"`
	Code    int    `json:"code"`
	Message string `json:"message"`
	Data    any    `json:"data,omitempty"`
	Error   any    `json:"error,omitempty"`
}

// SuccessResponse 返回统一格式的成功响应
func SuccessResponse(c *gin.Context, status int, message string, data any) {
	c.JSON(status, Envelope{
		Status:  statusSuccess,
		Code:    status,
		Message: message,
		Data:    data,
	})
}

// ErrorResponse 返回统一格式的错误响应
func ErrorResponse(c *gin.Context, status int, message string) {
	c.JSON(status, Envelope{
		Status:  statusError,
		Code:    status,
		Message: message,
	})
}

// ErrorResponseWithDetails 返回带字段详情的错误响应
func ErrorResponseWithDetails(c *gin.Context, status int, message string, details any) {
	c.JSON(status, Envelope{
		Status:  statusError,
		Code:    status,
		Message: message,
		Error:   details,
	})
}

// AbortUnauthorized 401 并终止后续处理
func AbortUnauthorized(c *gin.Context, message string) {
	c.AbortWithStatusJSON(http.StatusUnauthorized, Envelope{
		Status:  statusError,
		Code:    http.StatusUnauthorized,
		Message: message,
	})
}

// Forbidden 403 禁止访问
func Forbidden(c *gin.Context, message string) {
	ErrorResponse(c, http.StatusForbidden, message)
}

// InternalError 500 服务器内部错误，对外只给通用信息
func InternalError(c *gin.Context, message string) {
	ErrorResponse(c, http.StatusInternalServerError, message)
}

// InvalidPayload 无效的请求体
func InvalidPayload(c *gin.Context) {
	ErrorResponse(c, http.StatusBadRequest, "invalid request payload")
}

// RespondServiceError 把服务层的业务错误映射到 HTTP 响应。
// 未识别的错误一律 500，不向客户端泄漏内部细节。
func RespondServiceError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrInvalidCredentials):
		ErrorResponse(c, http.StatusUnauthorized, "invalid credentials")
	case errors.Is(err, service.ErrAccountDisabled):
		ErrorResponse(c, http.StatusForbidden, "account disabled")
	case errors.Is(err, service.ErrEmailTaken):
		ErrorResponseWithDetails(c, http.StatusUnprocessableEntity, "email already taken", gin.H{"field": "email"})
	case errors.Is(err, service.ErrWrongCurrentPassword):
		ErrorResponse(c, http.StatusBadRequest, "current password is incorrect")
	case errors.Is(err, service.ErrPasswordMismatch):
		ErrorResponseWithDetails(c, http.StatusUnprocessableEntity, "password confirmation does not match", gin.H{"field": "confirm_new_password"})
	case errors.Is(err, service.ErrPasswordFieldsRequired):
		ErrorResponse(c, http.StatusUnprocessableEntity, "current, new and confirmation passwords are all required")
	case errors.Is(err, service.ErrUserNotFound):
		ErrorResponse(c, http.StatusNotFound, "user not found")
	case errors.Is(err, service.ErrRoleNotFound):
		ErrorResponse(c, http.StatusNotFound, "role not found")
	default:
		logrus.WithError(err).Error("unhandled service error")
		InternalError(c, "internal server error")
	}
}
