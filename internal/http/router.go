package http

import (
	"net/http"

	"worklog-backend/internal/handlers"
	"worklog-backend/internal/middleware"
	"worklog-backend/internal/models"
	"worklog-backend/internal/notify"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

func NewRouter(
	authHandler *handlers.AuthHandler,
	workLogHandler *handlers.WorkLogHandler,
	notificationHandler *handlers.NotificationHandler,
	projectHandler *handlers.ProjectHandler,
	reportHandler *handlers.ReportHandler,
	uploadHandler *handlers.UploadHandler,
	healthHandler *handlers.HealthHandler,
	hub *notify.Hub,
	authMiddleware *middleware.AuthMiddleware,
) *mux.Router {
	r := mux.NewRouter()

	// Public API routes - Authentication
	r.HandleFunc("/auth/register", authHandler.Register).Methods("POST")
	r.HandleFunc("/auth/login", authHandler.Login).Methods("POST")

	// Protected API routes - Work Logs
	logsAPI := r.PathPrefix("/api/work-logs").Subrouter()
	logsAPI.Use(authMiddleware.Authenticate)
	logsAPI.HandleFunc("", workLogHandler.List).Methods("GET")
	logsAPI.HandleFunc("", authMiddleware.RequireRole(models.RoleTeamLeader)(http.HandlerFunc(workLogHandler.Create)).ServeHTTP).Methods("POST")
	logsAPI.HandleFunc("/{id}", workLogHandler.Get).Methods("GET")
	logsAPI.HandleFunc("/{id}", authMiddleware.RequireRole(models.RoleTeamLeader)(http.HandlerFunc(workLogHandler.Update)).ServeHTTP).Methods("PUT")
	logsAPI.HandleFunc("/{id}", authMiddleware.RequireRole(models.RoleTeamLeader)(http.HandlerFunc(workLogHandler.Delete)).ServeHTTP).Methods("DELETE")
	logsAPI.HandleFunc("/{id}/submit", authMiddleware.RequireRole(models.RoleTeamLeader)(http.HandlerFunc(workLogHandler.Submit)).ServeHTTP).Methods("PUT")
	logsAPI.HandleFunc("/{id}/approve", authMiddleware.RequireRole(models.RoleManager)(http.HandlerFunc(workLogHandler.Approve)).ServeHTTP).Methods("PUT")
	logsAPI.HandleFunc("/{id}/pdf", reportHandler.ExportWorkLogPDF).Methods("GET")
	logsAPI.HandleFunc("/{id}/photos", authMiddleware.RequireRole(models.RoleTeamLeader)(http.HandlerFunc(uploadHandler.UploadPhoto)).ServeHTTP).Methods("POST")
	logsAPI.HandleFunc("/{id}/documents", authMiddleware.RequireRole(models.RoleTeamLeader)(http.HandlerFunc(uploadHandler.UploadDocument)).ServeHTTP).Methods("POST")
	logsAPI.HandleFunc("/{id}/attachments", uploadHandler.Download).Methods("GET")

	// Protected API routes - Notifications
	notificationsAPI := r.PathPrefix("/api/notifications").Subrouter()
	notificationsAPI.Use(authMiddleware.Authenticate)
	notificationsAPI.HandleFunc("", notificationHandler.List).Methods("GET")
	notificationsAPI.HandleFunc("/unread-count", notificationHandler.UnreadCount).Methods("GET")
	notificationsAPI.HandleFunc("/read-all", notificationHandler.MarkAllRead).Methods("PATCH")
	notificationsAPI.HandleFunc("/{id}/read", notificationHandler.MarkRead).Methods("PATCH")

	// Websocket push for the notification bell
	r.Handle("/ws/notifications", authMiddleware.Authenticate(http.HandlerFunc(hub.ServeWS))).Methods("GET")

	// Protected API routes - Projects and crew (reference data)
	projectsAPI := r.PathPrefix("/api/projects").Subrouter()
	projectsAPI.Use(authMiddleware.Authenticate)
	projectsAPI.HandleFunc("", projectHandler.ListProjects).Methods("GET")
	projectsAPI.HandleFunc("", authMiddleware.RequireRole(models.RoleManager)(http.HandlerFunc(projectHandler.CreateProject)).ServeHTTP).Methods("POST")

	employeesAPI := r.PathPrefix("/api/employees").Subrouter()
	employeesAPI.Use(authMiddleware.Authenticate)
	employeesAPI.HandleFunc("", projectHandler.ListEmployees).Methods("GET")
	employeesAPI.HandleFunc("", authMiddleware.RequireRole(models.RoleManager)(http.HandlerFunc(projectHandler.CreateEmployee)).ServeHTTP).Methods("POST")

	// Protected API routes - Team leader directory (manager filter dropdown)
	r.Handle("/api/team-leaders",
		authMiddleware.RequireRole(models.RoleManager)(http.HandlerFunc(authHandler.ListTeamLeaders))).Methods("GET")

	// Protected API routes - System stats (manager dashboard)
	r.Handle("/api/system-stats",
		authMiddleware.RequireRole(models.RoleManager)(http.HandlerFunc(healthHandler.SystemStats))).Methods("GET")

	// Health endpoint (no auth required - for probes)
	r.HandleFunc("/health", healthHandler.BasicHealth).Methods("GET")

	// Metrics endpoint (Prometheus format)
	r.Handle("/metrics", promhttp.Handler())

	return r
}
