package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/everyskill/everyskill-backend/internal/clients/openai"
	"github.com/everyskill/everyskill-backend/internal/db"
	"github.com/everyskill/everyskill-backend/internal/handlers"
	"github.com/everyskill/everyskill-backend/internal/logger"
	"github.com/everyskill/everyskill-backend/internal/middleware"
	"github.com/everyskill/everyskill-backend/internal/observability"
	"github.com/everyskill/everyskill-backend/internal/repos"
	"github.com/everyskill/everyskill-backend/internal/review"
	"github.com/everyskill/everyskill-backend/internal/server"
	"github.com/everyskill/everyskill-backend/internal/services"
	"github.com/everyskill/everyskill-backend/internal/utils"
)

func main() {
	// Logger
	logMode := os.Getenv("LOG_MODE")
	if logMode == "" {
		logMode = "development"
	}
	log, err := logger.New(logMode)
	if err != nil {
		fmt.Printf("Failed to init logger: %v\n", err)
		os.Exit(1)
	}
	defer log.Sync()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	otelShutdown := observability.InitOTel(ctx, log, observability.OtelConfig{
		ServiceName: "everyskill-api",
		Environment: utils.GetEnv("ENVIRONMENT", "development", log),
		Version:     utils.GetEnv("SERVICE_VERSION", "dev", log),
	})

	// Env
	log.Info("Loading environment variables from main...")
	jwtSecretKey := utils.GetEnv("JWT_SECRET_KEY", "defaultsecret", log)
	accessTokenTTL := utils.GetEnvAsInt("ACCESS_TOKEN_TTL", 3600, log)
	refreshTokenTTL := utils.GetEnvAsInt("REFRESH_TOKEN_TTL", 86400, log)
	approveThreshold := utils.GetEnvAsInt("REVIEW_APPROVE_THRESHOLD", review.DefaultApproveThreshold, log)

	// Postgres
	postgresService, err := db.NewPostgresService(log)
	if err != nil {
		log.Error("Postgres init failed", "error", err)
		os.Exit(1)
	}
	if err := postgresService.AutoMigrateAll(); err != nil {
		log.Error("Postgres auto migration failed", "error", err)
		os.Exit(1)
	}
	thePG := postgresService.DB()

	// Repos
	log.Info("Setting up Repos from main...")
	tenantRepo := repos.NewTenantRepo(thePG, log)
	userRepo := repos.NewUserRepo(thePG, log)
	userTokenRepo := repos.NewUserTokenRepo(thePG, log)
	apiKeyRepo := repos.NewAPIKeyRepo(thePG, log)
	skillRepo := repos.NewSkillRepo(thePG, log)
	skillReviewRepo := repos.NewSkillReviewRepo(thePG, log)
	skillVersionRepo := repos.NewSkillVersionRepo(thePG, log)
	aiCallLogRepo := repos.NewAICallLogRepo(thePG, log)

	// Review generator. A missing credential leaves the generator nil:
	// submissions then fail as a precondition before any status write.
	var generator *review.Generator
	openaiClient, err := openai.NewClient(log)
	if err != nil {
		log.Warn("OpenAI client not configured, AI review disabled", "error", err)
	} else {
		generator = review.NewGenerator(openaiClient, log)
	}

	// Services
	log.Info("Setting up Services from main...")
	authService := services.NewAuthService(thePG, log, tenantRepo, userRepo, userTokenRepo, jwtSecretKey, time.Duration(accessTokenTTL)*time.Second, time.Duration(refreshTokenTTL)*time.Second)
	userService := services.NewUserService(thePG, log, userRepo)
	apiKeyService := services.NewAPIKeyService(thePG, log, apiKeyRepo)
	skillService := services.NewSkillService(thePG, log, skillRepo, skillVersionRepo)
	submissionService := services.NewSubmissionService(thePG, log, skillRepo, skillReviewRepo, skillVersionRepo, aiCallLogRepo, generator, approveThreshold)
	reviewService := services.NewReviewService(thePG, log, skillRepo, skillReviewRepo, aiCallLogRepo, generator)

	// Handlers
	log.Info("Setting up handlers from main...")
	authHandler := handlers.NewAuthHandler(authService)
	userHandler := handlers.NewUserHandler(userService, apiKeyService)
	skillHandler := handlers.NewSkillHandler(log, skillService)
	reviewHandler := handlers.NewReviewHandler(log, submissionService, reviewService)

	// Middleware
	authMiddleware := middleware.NewAuthMiddleware(log, authService)

	// Router
	log.Info("Setting up router from main...")
	router := server.NewRouter(server.RouterConfig{
		AuthHandler:    authHandler,
		AuthMiddleware: authMiddleware,
		UserHandler:    userHandler,
		SkillHandler:   skillHandler,
		ReviewHandler:  reviewHandler,
	})

	port := utils.GetEnv("PORT", "8080", log)
	httpServer := &http.Server{
		Addr:    ":" + port,
		Handler: router,
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		log.Info("Server listening", "port", port)
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if otelShutdown != nil {
			_ = otelShutdown(shutdownCtx)
		}
		return httpServer.Shutdown(shutdownCtx)
	})
	if err := g.Wait(); err != nil {
		log.Error("Server failed", "error", err)
		os.Exit(1)
	}
}
