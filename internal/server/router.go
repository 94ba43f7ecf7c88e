package server

import (
	"strings"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"

	"github.com/everyskill/everyskill-backend/internal/handlers"
	"github.com/everyskill/everyskill-backend/internal/middleware"
	"github.com/everyskill/everyskill-backend/internal/utils"
)

type RouterConfig struct {
	AuthHandler    *handlers.AuthHandler
	AuthMiddleware *middleware.AuthMiddleware
	UserHandler    *handlers.UserHandler
	SkillHandler   *handlers.SkillHandler
	ReviewHandler  *handlers.ReviewHandler
}

func NewRouter(cfg RouterConfig) *gin.Engine {
	router := gin.Default()
	router.Use(otelgin.Middleware("everyskill-api"))

	origins := utils.GetEnv("CORS_ALLOW_ORIGINS", "http://localhost:3000", nil)
	router.Use(cors.New(cors.Config{
		AllowOrigins:     strings.Split(origins, ","),
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "PATCH", "OPTIONS"},
		AllowHeaders:     []string{"Authorization", "Content-Type", "X-Requested-With"},
		AllowCredentials: true,
	}))

	// Public
	router.GET("/healthcheck", handlers.HealthCheck)
	router.POST("/register", cfg.AuthHandler.Register)
	router.POST("/login", cfg.AuthHandler.Login)
	router.POST("/refresh", cfg.AuthHandler.Refresh)

	// Protected
	protected := router.Group("/")
	protected.Use(cfg.AuthMiddleware.RequireAuth())

	protected.POST("/logout", cfg.AuthHandler.Logout)
	protected.GET("/user", cfg.UserHandler.GetMe)
	protected.POST("/user/api-keys", cfg.UserHandler.CreateAPIKey)
	protected.GET("/user/api-keys", cfg.UserHandler.ListAPIKeys)
	protected.DELETE("/user/api-keys/:id", cfg.UserHandler.DeleteAPIKey)

	protected.POST("/skills", cfg.SkillHandler.Create)
	protected.GET("/skills", cfg.SkillHandler.Search)
	protected.GET("/skills/mine", cfg.SkillHandler.ListMine)
	protected.GET("/skills/:id", cfg.SkillHandler.Get)
	protected.PATCH("/skills/:id", cfg.SkillHandler.Update)
	protected.DELETE("/skills/:id", cfg.SkillHandler.Delete)
	protected.POST("/skills/:id/fork", cfg.SkillHandler.Fork)
	protected.GET("/skills/:id/versions", cfg.SkillHandler.ListVersions)

	protected.POST("/skills/:id/submit", cfg.ReviewHandler.Submit)
	protected.POST("/skills/:id/review", cfg.ReviewHandler.Advisory)
	protected.GET("/skills/:id/review", cfg.ReviewHandler.Get)
	protected.POST("/skills/:id/decision", cfg.SkillHandler.Decide)

	return router
}
