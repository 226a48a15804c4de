package main

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"

	"accounts/internal/api"
	"accounts/internal/config"
	"accounts/internal/model"
	"accounts/internal/model/sql"
	"accounts/internal/notify"
	"accounts/internal/storage"
)

func main() {
	// .env 不存在时静默继续，环境变量仍然生效
	_ = godotenv.Load()

	// 初始化配置
	cfg, err := config.ParseConfig()
	if err != nil {
		logrus.WithError(err).Error("Failed to parse config")
		return
	}

	// 初始化logger
	logrus.SetFormatter(&logrus.JSONFormatter{})
	logrus.SetLevel(logrus.InfoLevel)

	repo, err := sql.InitRepository(&cfg)
	if err != nil {
		logrus.WithError(err).Error("failed to initialise repository")
		return
	}

	if err := model.Seed(context.Background(), repo, cfg); err != nil {
		logrus.WithError(err).Warn("failed to seed roles and permissions")
	}

	store, err := storage.NewStorage(cfg)
	if err != nil {
		logrus.WithError(err).Error("failed to initialise storage")
		return
	}

	notifier, err := notify.NewNotifier(cfg)
	if err != nil {
		logrus.WithError(err).Error("failed to initialise notifier")
		return
	}

	httpHandler, err := api.NewHTTPHandler(cfg, repo, store, notifier)
	if err != nil {
		logrus.WithError(err).Error("failed to initialise http handler")
		return
	}

	// 设置Gin模式
	gin.SetMode(gin.ReleaseMode)
	r := gin.New()

	// 添加中间件
	r.Use(LoggingMiddleware())
	r.Use(CORSMiddleware())
	r.Use(gin.Recovery())

	r.GET("/health", func(c *gin.Context) { c.JSON(http.StatusOK, gin.H{"status": "ok"}) })

	r.POST("/login", httpHandler.Login)

	users := r.Group("/users")
	users.Use(httpHandler.AuthMiddleware())
	users.POST("/logout", httpHandler.Logout)
	users.GET("/refresh", httpHandler.Refresh)
	users.POST("/refresh", httpHandler.Refresh)
	users.GET("/profile/get", httpHandler.Profile)
	users.GET("/roles/get", httpHandler.ListRoles)
	users.POST("/update-profile/:id", httpHandler.UpdateProfile)
	users.POST("/update-profile-photo/:id", httpHandler.UpdateProfilePhoto)

	// 按权限码守卫管理操作；审计日志额外要求管理员角色
	users.GET("", httpHandler.RequirePermission("view-users"), httpHandler.ListUsers)
	users.POST("", httpHandler.RequirePermission("create-users"), httpHandler.CreateUser)
	users.GET("/trash", httpHandler.RequirePermission("restore-users"), httpHandler.ListTrashedUsers)
	users.GET("/logs/get", httpHandler.RequireAdmin(), httpHandler.ListAuditLogs)
	users.GET("/:id", httpHandler.RequirePermission("view-users"), httpHandler.GetUser)
	users.PUT("/:id", httpHandler.RequirePermission("edit-users"), httpHandler.UpdateUser)
	users.DELETE("/:id", httpHandler.RequirePermission("delete-users"), httpHandler.DeleteUser)
	users.POST("/restore/:id", httpHandler.RequirePermission("restore-users"), httpHandler.RestoreUser)
	users.POST("/update-role/:id", httpHandler.RequirePermission("edit-users"), httpHandler.UpdateRole)
	users.PATCH("/toggle-status/:id", httpHandler.RequirePermission("switch-users"), httpHandler.ToggleStatus)

	if localProvider, ok := store.(storage.LocalBaseDirProvider); ok {
		publicPrefix := strings.TrimSpace(cfg.StoragePublicBaseURL)
		if publicPrefix == "" {
			publicPrefix = "/files"
		}
		if !strings.HasPrefix(publicPrefix, "http://") && !strings.HasPrefix(publicPrefix, "https://") {
			if !strings.HasPrefix(publicPrefix, "/") {
				publicPrefix = "/" + publicPrefix
			}
			r.Static(publicPrefix, localProvider.LocalBaseDir())
		}
	}

	serverHost := fmt.Sprintf("0.0.0.0:%s", cfg.HTTPPort)
	logrus.WithField("host", serverHost).Info("服务器启动")
	// 创建HTTP服务器
	httpServer := &http.Server{
		Addr:         serverHost,
		Handler:      r,
		ReadTimeout:  60 * time.Second,
		WriteTimeout: 60 * time.Second,
		IdleTimeout:  300 * time.Second,
	}
	err = httpServer.ListenAndServe()
	if err != nil && err != http.ErrServerClosed {
		logrus.WithError(err).Error("服务器启动失败")
	}
}

// CORSMiddleware CORS跨域中间件
func CORSMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		origin := c.GetHeader("Origin")
		if origin != "" {
			// Cookie 会话要求回显具体 Origin，通配符下浏览器拒绝携带凭证
			c.Header("Access-Control-Allow-Origin", origin)
			c.Header("Vary", "Origin")
		}
		c.Header("Access-Control-Allow-Methods", "GET, POST, PUT, PATCH, DELETE, OPTIONS")
		c.Header("Access-Control-Allow-Headers", "Content-Type, X-Requested-With")
		c.Header("Access-Control-Allow-Credentials", "true")
		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}
		c.Next()
	}
}

// LoggingMiddleware 日志记录中间件
func LoggingMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		// 处理请求
		c.Next()
		// 记录请求结束
		duration := time.Since(start)
		logrus.WithFields(logrus.Fields{
			"method":    c.Request.Method,
			"path":      c.Request.URL.Path,
			"status":    c.Writer.Status(),
			"duration":  duration.String(),
			"size":      c.Writer.Size(),
			"client_ip": c.ClientIP(),
		}).Info("http_request")
	}
}
