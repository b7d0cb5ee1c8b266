package main

import (
	"context"
	"embed"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/vairaleo03/classrent/config"
	"github.com/vairaleo03/classrent/config/db"
	redisclient "github.com/vairaleo03/classrent/config/redis"
	"github.com/vairaleo03/classrent/logger"
	"github.com/vairaleo03/classrent/middlewares/cors"
	"github.com/vairaleo03/classrent/routes"
	"github.com/vairaleo03/classrent/scheduler"
	"github.com/vairaleo03/classrent/utils/calendar"
	"github.com/vairaleo03/classrent/utils/mail"
)

//go:embed templates/email/*
var embeddedEmailTemplates embed.FS

func init() {
	logger.InitLoggers()
	config.LoadEnv()
}

func main() {
	db.Connect()
	defer db.Close()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := db.Migrate(ctx, db.DB); err != nil {
		logger.ErrorLogger.Errorf("Schema migration failed: %v", err)
		os.Exit(1)
	}

	mail.InitTemplates(embeddedEmailTemplates)
	logger.InfoLogger.Info("Email templates initialized.")

	rdb, err := redisclient.GetRedisClient(ctx)
	if err != nil {
		logger.ErrorLogger.Errorf("Redis is required for reminders and rate limiting: %v", err)
		os.Exit(1)
	}
	defer redisclient.CloseRedis()

	calendarSync := calendar.NewFromEnv()

	reminders := scheduler.NewReminderScheduler(db.DB, rdb, 30*time.Second)
	go func() {
		if err := reminders.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
			logger.ErrorLogger.Errorf("Reminder scheduler stopped: %v", err)
		}
	}()

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(cors.CorsMiddleware())

	routes.RegisterBookingRoutes(r, db.DB, calendarSync, reminders)
	routes.RegisterCalendarRoutes(r, db.DB)
	routes.RegisterSpaceRoutes(r, db.DB)

	r.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{"message": "ok from classrent booking service"})
	})

	port := os.Getenv("PORT")
	if port == "" {
		port = "8081"
	}

	srv := &http.Server{
		Addr:    ":" + port,
		Handler: r,
	}

	go func() {
		logger.InfoLogger.Infof("Server starting on port %s", port)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.ErrorLogger.Errorf("Server error: %v", err)
			stop()
		}
	}()

	<-ctx.Done()
	logger.InfoLogger.Info("Shutting down...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.ErrorLogger.Errorf("Server shutdown error: %v", err)
	}
}
