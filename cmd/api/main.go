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
	"github.com/rs/zerolog"

	"github.com/spark-iq/spark-iq-api/internal/config"
	"github.com/spark-iq/spark-iq-api/internal/database"
	"github.com/spark-iq/spark-iq-api/internal/handler"
	"github.com/spark-iq/spark-iq-api/internal/middleware"
	"github.com/spark-iq/spark-iq-api/internal/models"
	"github.com/spark-iq/spark-iq-api/internal/repository"
	"github.com/spark-iq/spark-iq-api/internal/router"
	"github.com/spark-iq/spark-iq-api/internal/service"
	"github.com/spark-iq/spark-iq-api/pkg/ai"
	cloud "github.com/spark-iq/spark-iq-api/pkg/cloudinary"
	"github.com/spark-iq/spark-iq-api/pkg/news"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load configuration: %v", err)
	}

	logger := zerolog.New(os.Stdout).With().Timestamp().Logger()

	db, err := database.ConnectPostgres(cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("failed to connect to database: %v", err)
	}

	if err := db.AutoMigrate(
		&models.User{},
		&models.Assignment{},
		&models.Submission{},
		&models.AttendanceRecord{},
		&models.Notification{},
		&models.ChatMessage{},
	); err != nil {
		log.Fatalf("failed to migrate database: %v", err)
	}

	redisClient, err := database.ConnectRedis(cfg.RedisURL)
	if err != nil {
		log.Fatalf("failed to connect to redis: %v", err)
	}
	defer redisClient.Close()

	natsConn, err := database.ConnectNATS(cfg.NATSURL, cfg.AppName)
	if err != nil {
		// Single-node deployments run without NATS; fan-out stays on redis.
		logger.Warn().Err(err).Msg("nats unavailable, cross-node fan-out disabled")
		natsConn = nil
	} else {
		defer natsConn.Drain()
	}

	uploader, err := cloud.New(cloud.Config{
		CloudName: cfg.CloudinaryCloudName,
		APIKey:    cfg.CloudinaryAPIKey,
		APISecret: cfg.CloudinaryAPISecret,
		Folder:    cfg.CloudinaryUploadFolder,
	}, logger)
	if err != nil {
		log.Fatalf("failed to create cloudinary client: %v", err)
	}

	grader, err := ai.NewOpenAIGrader(ai.OpenAIConfig{
		APIKey: cfg.OpenAIAPIKey,
		Model:  cfg.AIModel,
		Logger: logger,
	})
	if err != nil {
		log.Fatalf("failed to create grader: %v", err)
	}

	validate := validator.New(validator.WithRequiredStructEnabled())

	assignmentRepo := repository.NewAssignmentRepository(db)
	submissionRepo := repository.NewSubmissionRepository(db)
	userRepo := repository.NewUserRepository(db)
	attendanceRepo := repository.NewAttendanceRepository(db)
	notificationRepo := repository.NewNotificationRepository(db)
	chatRepo := repository.NewChatRepository(db)

	notificationService := service.NewNotificationService(notificationRepo, redisClient, cfg.ChannelBase, natsConn, validate, logger)
	chatService := service.NewChatService(chatRepo, redisClient, cfg.ChannelBase, natsConn, validate, logger)
	extractor := service.NewContentExtractor(logger)
	assignmentService := service.NewAssignmentService(assignmentRepo, validate, logger)
	submissionService := service.NewSubmissionService(submissionRepo, assignmentRepo, validate, uploader, extractor, grader, notificationService, logger)
	dashboardService := service.NewDashboardService(assignmentRepo, submissionRepo, redisClient, cfg.DashboardCacheTTL, logger)
	attendanceService := service.NewAttendanceService(attendanceRepo, userRepo, validate, logger)
	meetingService := service.NewMeetingService(cfg.MeetingDomain, cfg.MeetingRoomPrefix, validate, logger)

	runCtx, stopConsumers := context.WithCancel(context.Background())
	defer stopConsumers()
	notificationService.Start(runCtx)
	chatService.Start(runCtx)

	deps := router.Dependencies{
		AssignmentHandler:   handler.NewAssignmentHandler(assignmentService, logger),
		SubmissionHandler:   handler.NewSubmissionHandler(submissionService, dashboardService, logger),
		DashboardHandler:    handler.NewDashboardHandler(dashboardService, logger),
		AttendanceHandler:   handler.NewAttendanceHandler(attendanceService, logger),
		NotificationHandler: handler.NewNotificationHandler(notificationService, logger, cfg.StreamTimeout),
		ChatHandler:         handler.NewChatHandler(chatService, logger),
		MeetingHandler:      handler.NewMeetingHandler(meetingService, logger),
		JWTMiddleware:       middleware.JWTProtected(cfg.JWTSecret),
	}

	if cfg.NewsAPIKey != "" {
		newsClient, err := news.NewClient(news.Config{
			BaseURL: cfg.NewsBaseURL,
			APIKey:  cfg.NewsAPIKey,
			Logger:  logger,
		})
		if err != nil {
			log.Fatalf("failed to create news client: %v", err)
		}
		newsService := service.NewNewsService(newsClient, redisClient, validate, logger)
		deps.NewsHandler = handler.NewNewsHandler(newsService, logger)
	} else {
		logger.Warn().Msg("news api key missing, news feed disabled")
	}

	app := fiber.New(fiber.Config{
		AppName:      cfg.AppName,
		ServerHeader: cfg.AppName,
	})

	middleware.Register(app, middleware.Config{Logger: &logger})
	router.Register(app, cfg, deps)

	go func() {
		if err := app.Listen(cfg.HTTPAddress()); err != nil {
			log.Fatalf("failed to start server: %v", err)
		}
	}()

	waitForShutdown(app)
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
