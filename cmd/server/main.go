package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"net/http"
	"time"

	"worklog-backend/internal/auth"
	"worklog-backend/internal/cache"
	"worklog-backend/internal/config"
	"worklog-backend/internal/database"
	"worklog-backend/internal/db"
	"worklog-backend/internal/handlers"
	"worklog-backend/internal/health"
	h "worklog-backend/internal/http"
	"worklog-backend/internal/middleware"
	"worklog-backend/internal/notify"
	"worklog-backend/internal/repositories"
	"worklog-backend/internal/services"
	"worklog-backend/internal/storage"
	"worklog-backend/migrations"
)

func main() {
	port := flag.Int("port", 0, "Server port (overrides config)")
	flag.Parse()

	// Load configuration
	cfg := config.Load()
	if *port != 0 {
		cfg.Server.Port = *port
	}

	// Connect to PostgreSQL
	pool := db.Connect(cfg)
	defer pool.Close()

	// Initialize Redis cache (optional - graceful fallback if unavailable)
	if err := cache.Init(); err != nil {
		log.Printf("[Redis] Cache unavailable: %v (unread counters hit the database)", err)
	} else {
		log.Println("[Redis] Cache connected successfully")
	}

	// Run database migrations
	// Uses embedded migrations for standalone binary operation
	log.Println("Running database migrations...")
	migrator := database.NewMigrator(pool, migrations.FS, ".")
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := migrator.RunMigrations(ctx); err != nil {
		log.Fatalf("Failed to run migrations: %v", err)
	}

	// Initialize health checker
	healthChecker := health.NewHealthChecker(pool)

	// Initialize JWT manager
	jwtManager := auth.NewJWTManager(cfg)

	// Initialize object storage for attachments (optional)
	objectStore := storage.New(cfg)

	// Initialize repositories
	userRepo := repositories.NewUserRepository(pool)
	projectRepo := repositories.NewProjectRepository(pool)
	employeeRepo := repositories.NewEmployeeRepository(pool)
	workLogRepo := repositories.NewWorkLogRepository(pool)
	notificationRepo := repositories.NewNotificationRepository(pool)

	// Start the websocket push hub
	hub := notify.NewHub()
	go hub.Run()

	// Initialize services
	userService := services.NewUserService(userRepo, jwtManager)
	projectService := services.NewProjectService(projectRepo, employeeRepo)
	workLogService := services.NewWorkLogService(workLogRepo, userRepo, projectRepo)
	workLogService.SetNotifier(hub)
	notificationService := services.NewNotificationService(notificationRepo)
	reportService := services.NewReportService(workLogRepo, employeeRepo)

	// Initialize middleware
	authMiddleware := middleware.NewAuthMiddleware(jwtManager, userRepo)
	corsMiddleware := middleware.NewCORS(cfg)

	// Initialize handlers
	authHandler := handlers.NewAuthHandler(userService)
	workLogHandler := handlers.NewWorkLogHandler(workLogService)
	notificationHandler := handlers.NewNotificationHandler(notificationService)
	projectHandler := handlers.NewProjectHandler(projectService)
	reportHandler := handlers.NewReportHandler(reportService)
	uploadHandler := handlers.NewUploadHandler(workLogService, objectStore)
	healthHandler := handlers.NewHealthHandler(healthChecker)

	// Create router
	router := h.NewRouter(
		authHandler, workLogHandler, notificationHandler, projectHandler,
		reportHandler, uploadHandler, healthHandler, hub, authMiddleware,
	)

	// Wrap with panic recovery and metrics middleware
	handler := middleware.PanicRecovery(middleware.MetricsMiddleware(corsMiddleware(router)))

	// Start server
	addr := fmt.Sprintf(":%d", cfg.Server.Port)
	log.Printf("Server running on %s", addr)
	if err := http.ListenAndServe(addr, handler); err != nil {
		log.Fatalf("Server failed to start: %v", err)
	}
}
