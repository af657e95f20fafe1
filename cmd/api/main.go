package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/smartcia/assessment-api/internal/config"
	"github.com/smartcia/assessment-api/internal/database"
	"github.com/smartcia/assessment-api/internal/grading"
	"github.com/smartcia/assessment-api/internal/handler"
	"github.com/smartcia/assessment-api/internal/kv"
	"github.com/smartcia/assessment-api/internal/middleware"
	"github.com/smartcia/assessment-api/internal/presentation"
	"github.com/smartcia/assessment-api/internal/repository"
	"github.com/smartcia/assessment-api/internal/router"
	"github.com/smartcia/assessment-api/internal/service"
	"github.com/smartcia/assessment-api/pkg/ai"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load configuration: %v", err)
	}

	logger := zerolog.New(os.Stdout).With().Timestamp().Logger()

	var redisClient *redis.Client
	if cfg.RedisURL != "" {
		redisClient, err = database.ConnectRedis(cfg.RedisURL)
		if err != nil {
			log.Fatalf("failed to connect to redis: %v", err)
		}
		defer redisClient.Close()
	}

	store, err := openStore(cfg, redisClient)
	if err != nil {
		log.Fatalf("failed to open storage: %v", err)
	}

	evaluator, generator, err := buildAIClients(cfg, logger)
	if err != nil {
		log.Fatalf("failed to configure ai provider: %v", err)
	}

	validate := validator.New(validator.WithRequiredStructEnabled())

	examRepo := repository.NewExamRepository(store)
	submissionRepo := repository.NewSubmissionRepository(store)
	feedbackRepo := repository.NewFeedbackRepository(store)
	activityRepo := repository.NewActivityLogRepository(store)
	sessionRepo := repository.NewSessionRepository(store)

	oracle := grading.NewOracle(evaluator, cfg.GradingTimeout, logger)
	builder := presentation.NewBuilder(nil)

	activityService := service.NewActivityService(activityRepo, logger)
	authService := service.NewAuthService(sessionRepo, validate, cfg.JWTSecret, cfg.TokenTTL, logger)
	examService := service.NewExamService(examRepo, builder, validate, logger)
	analyticsService := service.NewAnalyticsService(examRepo, submissionRepo, redisClient, cfg.AnalyticsCacheTTL, logger)
	submissionService := service.NewSubmissionService(submissionRepo, examRepo, oracle, validate, activityService, analyticsService, logger)
	gradingService := service.NewGradingService(submissionRepo, examRepo, validate, activityService, analyticsService, logger)
	feedbackService := service.NewFeedbackService(feedbackRepo, validate, logger)

	var generationService service.GenerationService
	if generator != nil {
		generationService = service.NewGenerationService(generator, validate, logger)
	}

	authHandler := handler.NewAuthHandler(authService, logger)
	examHandler := handler.NewExamHandler(examService, generationService, logger)
	submissionHandler := handler.NewSubmissionHandler(submissionService, gradingService, logger)
	feedbackHandler := handler.NewFeedbackHandler(feedbackService, logger)
	analyticsHandler := handler.NewAnalyticsHandler(analyticsService, logger)
	activityHandler := handler.NewActivityHandler(activityService, logger)

	app := fiber.New(fiber.Config{
		AppName:      cfg.AppName,
		ServerHeader: cfg.AppName,
	})

	middleware.Register(app, middleware.Config{Logger: &logger})
	router.Register(app, cfg, router.Dependencies{
		AuthHandler:       authHandler,
		ExamHandler:       examHandler,
		SubmissionHandler: submissionHandler,
		FeedbackHandler:   feedbackHandler,
		AnalyticsHandler:  analyticsHandler,
		ActivityHandler:   activityHandler,
		JWTMiddleware:     middleware.JWTProtected(cfg.JWTSecret),
	})

	go func() {
		if err := app.Listen(cfg.HTTPAddress()); err != nil {
			log.Fatalf("failed to start server: %v", err)
		}
	}()

	waitForShutdown(app)
}

func openStore(cfg config.Config, redisClient *redis.Client) (kv.Store, error) {
	switch cfg.StorageDriver {
	case config.StorageSQLite:
		db, err := database.ConnectSQLite(cfg.SQLitePath)
		if err != nil {
			return nil, err
		}
		return kv.NewGormStore(db)
	case config.StoragePostgres:
		db, err := database.ConnectPostgres(cfg.DatabaseURL)
		if err != nil {
			return nil, err
		}
		return kv.NewGormStore(db)
	case config.StorageRedis:
		if redisClient == nil {
			client, err := database.ConnectRedis(cfg.RedisURL)
			if err != nil {
				return nil, err
			}
			redisClient = client
		}
		return kv.NewRedisStore(redisClient), nil
	default:
		return kv.NewMemoryStore(), nil
	}
}

// buildAIClients picks the grading evaluator and, for providers that support
// it, the question generator. A provider without generation support leaves the
// generator nil and the generate endpoint disabled.
func buildAIClients(cfg config.Config, logger zerolog.Logger) (ai.Evaluator, ai.Generator, error) {
	switch cfg.AIProvider {
	case "anthropic":
		evaluator, err := ai.NewAnthropicEvaluator(ai.AnthropicConfig{
			APIKey:  cfg.AnthropicAPIKey,
			BaseURL: cfg.AnthropicBaseURL,
			Model:   cfg.AnthropicModel,
			Logger:  logger,
		})
		if err != nil {
			return nil, nil, err
		}
		logger.Warn().Msg("anthropic provider has no question generator; the generate endpoint is disabled")
		return evaluator, nil, nil
	default:
		openAICfg := ai.OpenAIConfig{
			APIKey:  cfg.OpenAIAPIKey,
			BaseURL: cfg.OpenAIBaseURL,
			Model:   cfg.OpenAIModel,
			Logger:  logger,
		}
		evaluator, err := ai.NewOpenAIEvaluator(openAICfg)
		if err != nil {
			return nil, nil, err
		}
		generator, err := ai.NewOpenAIGenerator(openAICfg)
		if err != nil {
			return nil, nil, err
		}
		return evaluator, generator, nil
	}
}

func waitForShutdown(app *fiber.App) {
	shutdownCtx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	<-shutdownCtx.Done()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := app.ShutdownWithContext(ctx); err != nil {
		log.Printf("graceful shutdown failed: %v", err)
	}

	log.Println("server stopped")
}
