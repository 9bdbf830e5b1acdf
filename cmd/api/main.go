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

	"github.com/edubridge-kr/lms-api/internal/config"
	"github.com/edubridge-kr/lms-api/internal/database"
	"github.com/edubridge-kr/lms-api/internal/handler"
	"github.com/edubridge-kr/lms-api/internal/identity"
	"github.com/edubridge-kr/lms-api/internal/middleware"
	"github.com/edubridge-kr/lms-api/internal/models"
	"github.com/edubridge-kr/lms-api/internal/repository"
	"github.com/edubridge-kr/lms-api/internal/router"
	"github.com/edubridge-kr/lms-api/internal/service"
	cloud "github.com/edubridge-kr/lms-api/pkg/cloudinary"
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
		&models.Profile{},
		&models.Course{},
		&models.Assignment{},
		&models.Enrollment{},
		&models.Submission{},
		&models.Grade{},
		&models.Attachment{},
		&models.ActivityLog{},
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
		log.Fatalf("failed to connect to nats: %v", err)
	}
	if natsConn != nil {
		defer natsConn.Close()
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

	validate := validator.New(validator.WithRequiredStructEnabled())

	profileRepo := repository.NewProfileRepository(db)
	courseRepo := repository.NewCourseRepository(db)
	assignmentRepo := repository.NewAssignmentRepository(db)
	enrollmentRepo := repository.NewEnrollmentRepository(db)
	submissionRepo := repository.NewSubmissionRepository(db)
	gradeRepo := repository.NewGradeRepository(db)
	attachmentRepo := repository.NewAttachmentRepository(db)
	activityRepo := repository.NewActivityLogRepository(db)

	viewCache := service.NewViewCache(redisClient, cfg.DashboardCacheTTL, logger)
	events := service.NewNATSEventPublisher(natsConn, cfg.EventSubjectBase, logger)
	guards := service.NewGuardService(identity.ContextProvider{}, profileRepo, courseRepo, enrollmentRepo, logger)

	activityService := service.NewActivityService(activityRepo, logger)
	profileService := service.NewProfileService(guards, profileRepo, validate, logger)
	courseService := service.NewCourseService(guards, courseRepo, validate, viewCache, activityService, logger)
	assignmentService := service.NewAssignmentService(guards, assignmentRepo, validate, viewCache, events, logger)
	enrollmentService := service.NewEnrollmentService(guards, enrollmentRepo, courseRepo, viewCache, events, logger)
	submissionService := service.NewSubmissionService(guards, submissionRepo, assignmentRepo, validate, viewCache, events, activityService, logger)
	gradingService := service.NewGradingService(guards, gradeRepo, submissionRepo, assignmentRepo, validate, viewCache, events, activityService, logger)
	learnerDashboard := service.NewLearnerDashboardService(guards, enrollmentRepo, assignmentRepo, submissionRepo, viewCache, logger)
	instructorDashboard := service.NewInstructorDashboardService(guards, courseRepo, enrollmentRepo, assignmentRepo, submissionRepo, logger)
	uploadService := service.NewUploadService(guards, uploader, attachmentRepo, cfg.UploadMaxSizeMB, logger)

	app := fiber.New(fiber.Config{
		AppName:      cfg.AppName,
		ServerHeader: cfg.AppName,
	})

	middleware.Register(app, middleware.Config{Logger: &logger})
	router.Register(app, cfg, router.Dependencies{
		CourseHandler:     handler.NewCourseHandler(courseService, logger),
		AssignmentHandler: handler.NewAssignmentHandler(assignmentService, logger),
		SubmissionHandler: handler.NewSubmissionHandler(submissionService, gradingService, logger),
		EnrollmentHandler: handler.NewEnrollmentHandler(enrollmentService, logger),
		CatalogHandler:    handler.NewCatalogHandler(courseService, logger),
		ProfileHandler:    handler.NewProfileHandler(profileService, logger),
		DashboardHandler:  handler.NewDashboardHandler(learnerDashboard, instructorDashboard, logger),
		UploadHandler:     handler.NewUploadHandler(uploadService, logger),
		ActivityHandler:   handler.NewActivityHandler(activityService, logger),
		JWTMiddleware:     middleware.JWTProtected(cfg.JWTSecret),
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
