package routes

import (
	"net/http"

	"noticeboard/internal/handlers"
	"noticeboard/internal/middleware"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

func InitRoutes(
	router *mux.Router,
	jwtSecret string,
	authHandler *handlers.AuthHandler,
	userHandler *handlers.UserHandler,
	headlineHandler *handlers.HeadlineHandler,
	uploadHandler *handlers.UploadHandler,
	inviteHandler *handlers.InviteHandler,
) {
	router.Use(middleware.RequestID)
	router.Use(middleware.Logging)
	router.Use(middleware.Metrics)
	router.Use(middleware.Recoverer)

	router.Handle("/metrics", promhttp.Handler()).Methods("GET")

	api := router.PathPrefix("/api").Subrouter()

	// --- Публичные маршруты ---
	api.HandleFunc("/register", authHandler.Register).Methods("POST")
	api.HandleFunc("/login", authHandler.Login).Methods("POST")
	api.HandleFunc("/refresh", authHandler.Refresh).Methods("POST")
	api.HandleFunc("/logout", authHandler.Logout).Methods("POST")

	api.HandleFunc("/headlines/public", headlineHandler.PublicHeadlines).Methods("GET")

	api.HandleFunc("/admin/check-first", userHandler.CheckFirst).Methods("GET")
	api.HandleFunc("/admin/setup", userHandler.Setup).Methods("POST")

	api.HandleFunc("/invite/validate", inviteHandler.Validate).Methods("GET")
	api.HandleFunc("/invite/validate", inviteHandler.Consume).Methods("POST")

	// --- Защищённые сессией, только admin ---
	protected := api.PathPrefix("").Subrouter()
	protected.Use(func(next http.Handler) http.Handler {
		return middleware.SessionAuth(jwtSecret, next)
	})

	admin := protected.PathPrefix("").Subrouter()
	admin.Use(middleware.OnlyRole("admin"))

	admin.HandleFunc("/headlines/admin", headlineHandler.AdminHeadlines).Methods("GET")
	admin.HandleFunc("/headlines", headlineHandler.CreateHeadline).Methods("POST")
	admin.HandleFunc("/headlines/{id}", headlineHandler.GetHeadline).Methods("GET")
	admin.HandleFunc("/headlines/{id}", headlineHandler.UpdateHeadline).Methods("PUT")
	admin.HandleFunc("/headlines/{id}", headlineHandler.DeleteHeadline).Methods("DELETE")

	admin.HandleFunc("/headlines/{id}/cover", uploadHandler.UploadCover).Methods("POST")
	admin.HandleFunc("/headlines/{id}/attachments", uploadHandler.UploadAttachments).Methods("POST")

	admin.HandleFunc("/admin/users", userHandler.ListUsers).Methods("GET")
	admin.HandleFunc("/admin/users/{id}", userHandler.GetUser).Methods("GET")
	admin.HandleFunc("/users/{id}/role", userHandler.SetRole).Methods("PUT")
	admin.HandleFunc("/users/{id}/role", userHandler.DeleteUser).Methods("DELETE")

	admin.HandleFunc("/invite", inviteHandler.Issue).Methods("POST")
}
