package router

import (
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/emmanuelwilliam/AITS-group-E/backend/config"
	"github.com/emmanuelwilliam/AITS-group-E/backend/internal/api/handler"
	"github.com/emmanuelwilliam/AITS-group-E/backend/internal/api/middleware"
	"github.com/emmanuelwilliam/AITS-group-E/backend/internal/model"
	"github.com/emmanuelwilliam/AITS-group-E/backend/pkg/jwt"
	"github.com/emmanuelwilliam/AITS-group-E/backend/pkg/redis"
)

// Setup 初始化并返回 Gin 路由引擎
func Setup(cfg *config.Config, h *handler.Handler, jwtMgr *jwt.Manager, rdb *redis.Client, logger *zap.Logger) *gin.Engine {
	gin.SetMode(gin.ReleaseMode)

	r := gin.New()

	// ── 全局中间件 ──
	r.Use(gin.Recovery())
	r.Use(middleware.RequestID())
	r.Use(middleware.Logger(logger))
	r.Use(middleware.SecurityHeaders())
	r.Use(middleware.CORS(cfg.Server.CORS.AllowOrigins))
	r.Use(middleware.BodyLimit(1 << 20))

	// ── 健康检查 ──
	r.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "ok"})
	})

	// ── API v1 ──
	v1 := r.Group("/api/v1")
	{
		// 认证模块（无需认证；登录与注册按 IP 限流）
		auth := v1.Group("/auth")
		{
			register := auth.Group("/register")
			register.Use(middleware.RateLimit(rdb, 10, time.Minute))
			{
				register.POST("/student", h.Auth.RegisterStudent)
				register.POST("/lecturer", h.Auth.RegisterLecturer)
				register.POST("/admin", h.Auth.RegisterAdmin)
			}
			auth.POST("/verify-email", middleware.RateLimit(rdb, 10, time.Minute), h.Auth.VerifyEmail)
			auth.POST("/login", middleware.RateLimit(rdb, 20, time.Minute), h.Auth.Login)
			auth.POST("/refresh", h.Auth.RefreshToken)
		}

		// 需要认证的路由
		authorized := v1.Group("")
		authorized.Use(middleware.JWTAuth(jwtMgr, rdb))
		{
			authorized.POST("/auth/logout", h.Auth.Logout)
			authorized.GET("/auth/me", h.Auth.Me)
			authorized.PUT("/auth/password", h.Auth.ChangePassword)

			// 工单模块
			issues := authorized.Group("/issues")
			{
				issues.POST("", middleware.RoleAuth(model.RoleStudent), h.Issue.Create)
				issues.GET("/mine", middleware.RoleAuth(model.RoleStudent), h.Issue.ListMine)
				issues.GET("", middleware.RoleAuth(model.RoleAdmin, model.RoleLecturer), h.Issue.List)
				issues.GET("/statistics", middleware.RoleAuth(model.RoleAdmin), h.Issue.Statistics)
				issues.GET("/statistics/export", middleware.RoleAuth(model.RoleAdmin), h.Export.ExportStatistics)
				issues.GET("/:id", h.Issue.Get) // 本人/受理人约束在 Service 层
				issues.PUT("/:id/assign", middleware.RoleAuth(model.RoleAdmin), h.Issue.Assign)
				issues.PUT("/:id/status", middleware.RoleAuth(model.RoleLecturer), h.Issue.UpdateStatus)
			}

			// 通知模块
			notifications := authorized.Group("/notifications")
			{
				notifications.GET("", h.Notification.List)
				notifications.PUT("/read-all", h.Notification.MarkAllRead)
				notifications.PUT("/:id/read", h.Notification.MarkRead)
			}

			// 用户目录模块（管理端）
			users := authorized.Group("/users")
			users.Use(middleware.RoleAuth(model.RoleAdmin))
			{
				users.GET("/students", h.User.ListStudents)
				users.GET("/lecturers", h.User.ListLecturers)
				users.GET("/administrators", h.User.ListAdministrators)
				users.GET("/login-history", h.User.ListLoginHistory)
				users.GET("/:id", h.User.Get)
			}

			// 状态查找表
			authorized.GET("/statuses", h.User.ListStatuses)
		}
	}

	return r
}
