package handler

import (
	"time"

	"github.com/gin-gonic/gin"

	"github.com/lectern-dev/lectern/internal/middleware"
)

type RouterDeps struct {
	Auth        *AuthHandler
	Chapters    *ChapterHandler
	Personalize *PersonalizeHandler
	Translate   *TranslateHandler
	RAG         *RAGHandler
	Usage       *UsageHandler
	JWTSecret   []byte
	// GenerateWindow throttles the endpoints that may call a provider.
	GenerateWindow time.Duration
}

func RegisterRoutes(api *gin.RouterGroup, deps RouterDeps) {
	api.POST("/auth/register", deps.Auth.Register)
	api.POST("/auth/login", deps.Auth.Login)

	authGroup := api.Group("")
	authGroup.Use(middleware.JWTAuth(deps.JWTSecret))

	authGroup.GET("/auth/me", deps.Auth.Me)

	authGroup.GET("/chapters", deps.Chapters.List)
	authGroup.GET("/chapters/:id", deps.Chapters.Get)
	authGroup.GET("/chapters/:id/chunks", deps.RAG.Chunks)

	genGroup := authGroup.Group("")
	genGroup.Use(middleware.RateLimit(deps.GenerateWindow))
	genGroup.POST("/personalize", deps.Personalize.Personalize)
	genGroup.POST("/translate", deps.Translate.Translate)

	authGroup.POST("/personalize/labels", deps.Personalize.Labels)
	authGroup.DELETE("/personalize/cache", deps.Personalize.InvalidateMine)
	authGroup.GET("/personalize/cache-stats", deps.Personalize.Stats)

	authGroup.DELETE("/translate/cache/:id", deps.Translate.InvalidateChapter)
	authGroup.GET("/translate/cache-stats", deps.Translate.Stats)

	authGroup.POST("/rag/reindex", deps.RAG.Reindex)
	authGroup.GET("/rag/search", deps.RAG.Search)

	authGroup.GET("/usage/me", deps.Usage.Mine)
}
