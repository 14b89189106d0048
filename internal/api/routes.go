package api

import (
	"log/slog"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"

	"resumeKit/internal/api/middleware"
)

// RegisterRoutes 注册 API 路由，不包含 /api 前缀。
func RegisterRoutes(
	router *gin.Engine,
	resumeHandler *ResumeHandler,
	validator middleware.TokenValidator,
	redisClient *redis.Client,
	logger *slog.Logger,
	allowedOrigins []string,
) {
	wsHandler := NewWsHandler(RedisSubscriber{Client: redisClient}, validator, logger, allowedOrigins)
	authMiddleware := middleware.AuthMiddleware(validator)

	v1 := router.Group("/v1")
	{
		v1.GET("/ws", wsHandler.HandleConnection)

		resumeGroup := v1.Group("/resumes")
		resumeGroup.Use(authMiddleware)
		{
			registerResumeRoutes(resumeGroup, resumeHandler)
		}
	}
}

func registerResumeRoutes(g *gin.RouterGroup, h *ResumeHandler) {
	g.GET("/:id", h.GetResume)
	g.GET("/:id/sections", h.GetSections)
	g.GET("/:id/preview", h.GetPreview)
	g.POST("/:id/export", h.Export)
	g.GET("/:id/exports/:job_id", h.GetExportJob)
	g.POST("/:id/suggestions", h.Suggest)
}
