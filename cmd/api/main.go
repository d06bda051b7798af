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
	"github.com/nats-io/nats.go"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/uwuweb/uwuweb-api/internal/config"
	"github.com/uwuweb/uwuweb-api/internal/database"
	"github.com/uwuweb/uwuweb-api/internal/handler"
	"github.com/uwuweb/uwuweb-api/internal/middleware"
	"github.com/uwuweb/uwuweb-api/internal/repository"
	"github.com/uwuweb/uwuweb-api/internal/router"
	"github.com/uwuweb/uwuweb-api/internal/service"
	"github.com/uwuweb/uwuweb-api/pkg/filestore"
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

	if err := database.Migrate(db); err != nil {
		log.Fatalf("failed to migrate database: %v", err)
	}

	var redisClient *redis.Client
	if cfg.RedisURL != "" {
		redisClient, err = database.ConnectRedis(cfg.RedisURL)
		if err != nil {
			log.Fatalf("failed to connect to redis: %v", err)
		}
		defer redisClient.Close()
	}

	var natsConn *nats.Conn
	if cfg.NATSURL != "" {
		natsConn, err = database.ConnectNATS(cfg.NATSURL)
		if err != nil {
			log.Fatalf("failed to connect to nats: %v", err)
		}
		defer natsConn.Close()
	}

	files, err := filestore.New(filestore.Config{
		Dir:      cfg.UploadDir,
		MaxBytes: cfg.MaxUploadBytes,
	}, logger)
	if err != nil {
		log.Fatalf("failed to create file store: %v", err)
	}

	validate := validator.New(validator.WithRequiredStructEnabled())

	userRepo := repository.NewUserRepository(db)
	rosterRepo := repository.NewRosterRepository(db)
	attendanceRepo := repository.NewAttendanceRepository(db)
	periodRepo := repository.NewPeriodRepository(db)
	gradeRepo := repository.NewGradeRepository(db)
	notificationRepo := repository.NewNotificationRepository(db)

	accessService := service.NewAccessService(rosterRepo, logger)
	authService := service.NewAuthService(userRepo, cfg.JWTSecret, cfg.JWTTTL, validate, logger)
	notificationService := service.NewNotificationService(notificationRepo, userRepo, redisClient, natsConn, cfg.EventChannel, logger)
	attendanceService := service.NewAttendanceService(attendanceRepo, periodRepo, rosterRepo, accessService, redisClient, cfg.SummaryCacheTTL, validate, logger)
	justificationService := service.NewJustificationService(attendanceRepo, accessService, files, notificationService, attendanceService, validate, logger)
	gradeService := service.NewGradeService(gradeRepo, rosterRepo, accessService, validate, logger)

	authHandler := handler.NewAuthHandler(authService, logger)
	justificationHandler := handler.NewJustificationHandler(justificationService, logger)
	attendanceHandler := handler.NewAttendanceHandler(attendanceService, logger)
	gradeHandler := handler.NewGradeHandler(gradeService, logger)
	notificationHandler := handler.NewNotificationHandler(notificationService, logger)

	app := fiber.New(fiber.Config{
		AppName:      cfg.AppName,
		ServerHeader: cfg.AppName,
	})

	middleware.Register(app, middleware.Config{Logger: &logger})
	router.Register(app, cfg, router.Dependencies{
		AuthHandler:          authHandler,
		JustificationHandler: justificationHandler,
		AttendanceHandler:    attendanceHandler,
		GradeHandler:         gradeHandler,
		NotificationHandler:  notificationHandler,
		JWTMiddleware:        middleware.JWTProtected(cfg.JWTSecret),
	})

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
