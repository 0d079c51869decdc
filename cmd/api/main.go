package main

import (
	"context"
	"errors"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/nats-io/nats.go"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/noah-isme/codelab-grader/internal/catalog"
	"github.com/noah-isme/codelab-grader/internal/config"
	"github.com/noah-isme/codelab-grader/internal/database"
	"github.com/noah-isme/codelab-grader/internal/events"
	"github.com/noah-isme/codelab-grader/internal/grading"
	"github.com/noah-isme/codelab-grader/internal/handler"
	"github.com/noah-isme/codelab-grader/internal/middleware"
	"github.com/noah-isme/codelab-grader/internal/repository"
	"github.com/noah-isme/codelab-grader/internal/router"
	"github.com/noah-isme/codelab-grader/internal/service"
	"github.com/noah-isme/codelab-grader/pkg/ai"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load configuration: %v", err)
	}

	logger := zerolog.New(os.Stdout).With().Timestamp().Str("service", cfg.AppName).Logger()

	problems, err := catalog.LoadFile(cfg.ProblemsPath)
	if err != nil {
		log.Fatalf("failed to load problem catalog: %v", err)
	}

	db, err := database.Connect(cfg.DatabaseDriver, cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("failed to connect to database: %v", err)
	}

	if err := database.Migrate(db); err != nil {
		log.Fatalf("failed to migrate database: %v", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	var redisClient *redis.Client
	if cfg.RedisURL != "" {
		redisClient, err = database.ConnectRedis(ctx, cfg.RedisURL)
		if err != nil {
			log.Fatalf("failed to connect to redis: %v", err)
		}
		defer redisClient.Close()
	}

	var natsConn *nats.Conn
	if cfg.NATSURL != "" {
		natsConn, err = database.ConnectNATS(cfg.NATSURL, cfg.AppName)
		if err != nil {
			log.Fatalf("failed to connect to nats: %v", err)
		}
		defer natsConn.Close()
	}

	grader, err := newGrader(ctx, cfg, logger)
	if err != nil {
		log.Fatalf("failed to create grader: %v", err)
	}

	var publisher events.Publisher
	if redisClient != nil || natsConn != nil {
		publisher = events.NewBrokerPublisher(redisClient, natsConn, cfg.EventsChannel, logger)
	}

	validate := validator.New(validator.WithRequiredStructEnabled())
	queue := grading.NewQueue()

	submissionRepo := repository.NewSubmissionRepository(db)
	studentRepo := repository.NewStudentRepository(db)
	classroomRepo := repository.NewClassroomRepository(db)

	worker := grading.NewWorker(grading.WorkerConfig{
		Queue:     queue,
		Store:     submissionRepo,
		Grader:    grader,
		Publisher: publisher,
		Interval:  cfg.GradingInterval,
		Logger:    logger,
	})

	workerDone := make(chan struct{})
	go func() {
		defer close(workerDone)
		if err := worker.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
			logger.Error().Err(err).Msg("grading worker stopped unexpectedly")
		}
	}()

	submissionService := service.NewSubmissionService(submissionRepo, studentRepo, problems, queue, validate, logger)
	studentService := service.NewStudentService(studentRepo, classroomRepo, submissionRepo, problems, validate, logger)
	classroomService := service.NewClassroomService(classroomRepo, problems, validate, logger)
	statusService := service.NewStatusService(classroomRepo, studentRepo, submissionRepo, problems, redisClient, cfg.StatusCacheTTL, logger)

	app := fiber.New(fiber.Config{
		AppName:      cfg.AppName,
		ServerHeader: cfg.AppName,
	})

	middleware.Register(app, middleware.Config{Logger: &logger, AccessLog: cfg.AppEnv == "development"})
	router.Register(app, cfg, router.Dependencies{
		SubmissionHandler: handler.NewSubmissionHandler(submissionService, logger),
		StudentHandler:    handler.NewStudentHandler(studentService, classroomService, logger),
		AdminHandler:      handler.NewAdminHandler(classroomService, statusService, logger),
		Queue:             queue,
		SubmitLimiter:     middleware.RateLimit("submit", cfg.SubmitRateLimit, time.Minute),
	})

	go func() {
		if err := app.Listen(cfg.HTTPAddress()); err != nil {
			log.Fatalf("failed to start server: %v", err)
		}
	}()

	logger.Info().
		Str("address", cfg.HTTPAddress()).
		Str("ai_provider", cfg.AIProvider).
		Dur("grading_interval", cfg.GradingInterval).
		Int("problems_courses", len(problems.Courses())).
		Msg("codelab grader started")

	waitForShutdown(ctx, app, workerDone, queue)
}

func newGrader(ctx context.Context, cfg config.Config, logger zerolog.Logger) (ai.Grader, error) {
	switch cfg.AIProvider {
	case "openai":
		return ai.NewOpenAIGrader(ai.OpenAIConfig{
			APIKey: cfg.OpenAIAPIKey,
			Model:  cfg.AIModel,
			Logger: logger,
		})
	default:
		return ai.NewGeminiGrader(ctx, ai.GeminiConfig{
			APIKey: cfg.GeminiAPIKey,
			Model:  cfg.AIModel,
			Logger: logger,
		})
	}
}

func waitForShutdown(ctx context.Context, app *fiber.App, workerDone <-chan struct{}, queue *grading.Queue) {
	<-ctx.Done()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := app.ShutdownWithContext(shutdownCtx); err != nil {
		log.Printf("graceful shutdown failed: %v", err)
	}

	select {
	case <-workerDone:
	case <-shutdownCtx.Done():
		log.Printf("grading worker did not stop in time")
	}

	if pending := queue.Len(); pending > 0 {
		log.Printf("%d queued submissions were not graded and remain in grading state", pending)
	}

	log.Println("server stopped")
}
