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
	"github.com/everyskill/everyskill-backend/internal/logger"
	"github.com/everyskill/everyskill-backend/internal/mcpserver"
	"github.com/everyskill/everyskill-backend/internal/observability"
	"github.com/everyskill/everyskill-backend/internal/ratelimit"
	"github.com/everyskill/everyskill-backend/internal/repos"
	"github.com/everyskill/everyskill-backend/internal/review"
	"github.com/everyskill/everyskill-backend/internal/services"
	"github.com/everyskill/everyskill-backend/internal/utils"
)

func main() {
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
		ServiceName: "everyskill-mcp",
		Environment: utils.GetEnv("ENVIRONMENT", "development", log),
		Version:     mcpserver.Version,
	})

	approveThreshold := utils.GetEnvAsInt("REVIEW_APPROVE_THRESHOLD", review.DefaultApproveThreshold, log)
	rateLimit := utils.GetEnvAsInt("MCP_RATE_LIMIT", 60, log)

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

	apiKeyRepo := repos.NewAPIKeyRepo(thePG, log)
	skillRepo := repos.NewSkillRepo(thePG, log)
	skillReviewRepo := repos.NewSkillReviewRepo(thePG, log)
	skillVersionRepo := repos.NewSkillVersionRepo(thePG, log)
	aiCallLogRepo := repos.NewAICallLogRepo(thePG, log)

	var generator *review.Generator
	openaiClient, err := openai.NewClient(log)
	if err != nil {
		log.Warn("OpenAI client not configured, AI review disabled", "error", err)
	} else {
		generator = review.NewGenerator(openaiClient, log)
	}

	apiKeyService := services.NewAPIKeyService(thePG, log, apiKeyRepo)
	skillService := services.NewSkillService(thePG, log, skillRepo, skillVersionRepo)
	submissionService := services.NewSubmissionService(thePG, log, skillRepo, skillReviewRepo, skillVersionRepo, aiCallLogRepo, generator, approveThreshold)
	reviewService := services.NewReviewService(thePG, log, skillRepo, skillReviewRepo, aiCallLogRepo, generator)

	// Per-key fixed window. Redis-backed when REDIS_ADDR is set so the
	// window is shared across replicas; in-process otherwise.
	var limiter ratelimit.Limiter
	if os.Getenv("REDIS_ADDR") != "" {
		limiter, err = ratelimit.NewRedisLimiter(log, rateLimit, time.Minute)
		if err != nil {
			log.Error("Redis limiter init failed", "error", err)
			os.Exit(1)
		}
	} else {
		limiter = ratelimit.NewFixedWindow(rateLimit, time.Minute)
	}

	mcpSrv := mcpserver.New(log, apiKeyService, skillService, submissionService, reviewService, limiter)

	port := utils.GetEnv("MCP_PORT", "8081", log)
	httpServer := &http.Server{
		Addr:    ":" + port,
		Handler: mcpSrv.Handler(),
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		log.Info("MCP server listening", "port", port)
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
		log.Error("MCP server failed", "error", err)
		os.Exit(1)
	}
}
