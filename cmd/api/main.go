package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"go.uber.org/zap"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"

	"edutrust/student-portal/student-portal-backend/internal/activities"
	"edutrust/student-portal/student-portal-backend/internal/appeals"
	"edutrust/student-portal/student-portal-backend/internal/audit"
	"edutrust/student-portal/student-portal-backend/internal/config"
	"edutrust/student-portal/student-portal-backend/internal/fraud"
)

func main() {
	// Initialize logger
	logger, _ := zap.NewDevelopment()
	defer logger.Sync()

	// .env is optional; real deployments set variables directly
	_ = godotenv.Load()

	// Load configuration
	cfg, err := config.LoadConfig("config.json")
	if err != nil {
		logger.Fatal("Failed to load config", zap.Error(err))
	}

	// Connect to database
	db, err := gorm.Open(postgres.Open(cfg.Database.GetDatabaseURL()), &gorm.Config{})
	if err != nil {
		logger.Fatal("Failed to connect to database", zap.Error(err))
	}
	sqlDB, err := db.DB()
	if err != nil {
		logger.Fatal("Failed to access database pool", zap.Error(err))
	}
	defer sqlDB.Close()
	sqlDB.SetMaxOpenConns(cfg.Database.MaxConnections)
	sqlDB.SetMaxIdleConns(cfg.Database.MaxIdleConns)

	if err := db.AutoMigrate(
		&activities.Activity{},
		&fraud.Alert{},
		&appeals.Appeal{},
		&audit.Entry{},
	); err != nil {
		logger.Fatal("Failed to migrate database", zap.Error(err))
	}

	// Audit Trail
	auditRepo := audit.NewRepository(db)
	auditRecorder := audit.NewRecorder(auditRepo, logger)
	auditHandler := audit.NewHandler(auditRecorder, logger)

	// Verification Pipeline
	scorer := activities.NewScorer(activities.RandomBase)
	thresholds := activities.Thresholds{
		AutoVerify: cfg.Verification.AutoVerifyThreshold,
		AutoReject: cfg.Verification.AutoRejectThreshold,
		Review:     cfg.Verification.ReviewThreshold,
	}
	activityRepo := activities.NewRepository(db)
	activityService := activities.NewService(activityRepo, scorer, auditRecorder, logger,
		thresholds, cfg.Verification.AppealScoreThreshold)
	activityHandler := activities.NewHandler(activityService, logger)

	// Appeals
	appealRepo := appeals.NewRepository(db)
	appealService := appeals.NewService(appealRepo, activityService, auditRecorder, logger)
	appealHandler := appeals.NewHandler(appealService, logger)
	activityService.SetAppealResolver(appealService)

	// Fraud Alert Registry
	fraudRepo := fraud.NewRepository(db)
	fraudService := fraud.NewService(fraudRepo, auditRecorder, logger, cfg.Fraud.LowConfidenceThreshold)
	fraudHandler := fraud.NewHandler(fraudService, logger)

	sweeper := fraud.NewSweeper(activityRepo, fraudService, logger)
	if err := sweeper.Start(cfg.Fraud.SweepSchedule); err != nil {
		logger.Fatal("Failed to start fraud sweeper", zap.Error(err))
	}
	defer sweeper.Stop()

	// Setup Router
	router := gin.Default()

	// CORS Middleware
	router.Use(func(c *gin.Context) {
		c.Writer.Header().Set("Access-Control-Allow-Origin", "*")
		c.Writer.Header().Set("Access-Control-Allow-Credentials", "true")
		c.Writer.Header().Set("Access-Control-Allow-Headers", "Content-Type, Content-Length, Accept-Encoding, Authorization, accept, origin, Cache-Control, X-Requested-With")
		c.Writer.Header().Set("Access-Control-Allow-Methods", "POST, OPTIONS, GET, PUT, DELETE")

		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(204)
			return
		}

		c.Next()
	})

	// Register Routes
	api := router.Group("/api/v1")
	{
		activityHandler.RegisterRoutes(api)
		appealHandler.RegisterRoutes(api)
		fraudHandler.RegisterRoutes(api)
		auditHandler.RegisterRoutes(api)
	}

	// Health Check
	router.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{
			"status":    "healthy",
			"timestamp": time.Now(),
		})
	})

	// Start Server
	srv := &http.Server{
		Addr:    fmt.Sprintf(":%d", cfg.Server.Port),
		Handler: router,
	}

	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("listen failed", zap.Error(err))
		}
	}()

	logger.Info("Server started", zap.Int("port", cfg.Server.Port))

	// Graceful Shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Info("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		logger.Fatal("Server forced to shutdown:", zap.Error(err))
	}

	logger.Info("Server exiting")
}
