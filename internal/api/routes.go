package api

import (
	"log/slog"

	"github.com/gin-gonic/gin"
	"github.com/hibiken/asynq"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"

	"github.com/chiranjibts89/Blu-Ko-AI/internal/api/middleware"
	"github.com/chiranjibts89/Blu-Ko-AI/internal/auth"
	"github.com/chiranjibts89/Blu-Ko-AI/internal/config"
	"github.com/chiranjibts89/Blu-Ko-AI/internal/storage"
)

// RegisterRoutes 注册 API 路由，不包含 /api 前缀。
func RegisterRoutes(
	router *gin.Engine,
	cfg *config.Config,
	db *gorm.DB,
	asynqClient *asynq.Client,
	authService *auth.AuthService,
	redisClient *redis.Client,
	logger *slog.Logger,
	storageClient *storage.Client,
) {
	resumeHandler := NewResumeHandler(db, asynqClient, storageClient, cfg.API.PublicBaseURL)
	profileHandler := NewProfileHandler(db)
	shareHandler := NewShareHandler(db)
	webhookHandler := NewWebhookHandler(db, logger)
	authHandler := NewAuthHandler(db, authService, redisClient, logger, cfg.Auth.LoginRateLimitPerHour)
	wsHandler := NewWsHandler(redisClient, authService, logger, nil)
	authMiddleware := middleware.AuthMiddleware(authService)

	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	// 聊天机器人回传入口：方法分发与 CORS 由处理器内部完成。
	router.Any("/webhooks/chatbot", webhookHandler.HandleChatbot)

	// 公开分享页，无需鉴权。
	router.GET("/shared-resume/:shareToken", shareHandler.GetSharedResume)

	v1 := router.Group("/v1")
	{
		v1.GET("/ws", wsHandler.HandleConnection)

		authGroup := v1.Group("/auth")
		{
			authGroup.POST("/register", authHandler.Register)
			authGroup.POST("/login", authHandler.Login)
			authGroup.POST("/refresh", authHandler.Refresh)
			authGroup.POST("/logout", authMiddleware, authHandler.Logout)
		}

		resumeGroup := v1.Group("/resumes")
		resumeGroup.Use(authMiddleware)
		{
			resumeGroup.GET("", resumeHandler.ListResumes)
			resumeGroup.POST("/generate", resumeHandler.GenerateResume)
			resumeGroup.GET("/:id", resumeHandler.GetResume)
			resumeGroup.DELETE("/:id", resumeHandler.DeleteResume)
			resumeGroup.POST("/:id/share", resumeHandler.ShareResume)
			resumeGroup.DELETE("/:id/share", resumeHandler.UnshareResume)
			resumeGroup.GET("/:id/export/html", resumeHandler.ExportHTML)
			resumeGroup.POST("/:id/export/pdf", resumeHandler.ExportPDF)
			resumeGroup.GET("/:id/export/pdf/link", resumeHandler.GetDownloadLink)
		}

		profileGroup := v1.Group("/profile")
		profileGroup.Use(authMiddleware)
		{
			profileGroup.GET("", profileHandler.GetProfile)
			profileGroup.PUT("", profileHandler.UpdateProfile)
			profileGroup.GET("/sections", profileHandler.GetSections)
		}
	}
}
