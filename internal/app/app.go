package app

import (
	"strconv"

	"noticeboard/internal/config"
	"noticeboard/internal/db"
	"noticeboard/internal/handlers"
	"noticeboard/internal/repository"
	"noticeboard/internal/routes"
	"noticeboard/internal/services"

	"github.com/gorilla/mux"
)

func InitApp(cfg *config.Config) (*mux.Router, error) {
	conn, err := db.NewPostgresConnection(cfg)
	if err != nil {
		return nil, err
	}

	// Репозитории
	userRepo := repository.NewUserRepository(conn)
	headlineRepo := repository.NewHeadlineRepo(conn)
	inviteRepo := repository.NewInviteRepository(conn)

	// Сервисы
	storageService, err := services.NewStorageService(cfg)
	if err != nil {
		return nil, err
	}
	authService := services.NewAuthService(userRepo)
	headlineService := services.NewHeadlineService(headlineRepo, storageService)

	ttlDays, _ := strconv.Atoi(cfg.InviteTTLDays)
	inviteService := services.NewInviteService(inviteRepo, cfg.BaseURL, ttlDays)

	// Хендлеры
	authHandler := handlers.NewAuthHandler(authService, cfg)
	userHandler := handlers.NewUserHandler(authService)
	headlineHandler := handlers.NewHeadlineHandler(headlineService)
	uploadHandler := handlers.NewUploadHandler(storageService, headlineService)
	inviteHandler := handlers.NewInviteHandler(inviteService)

	// Автопубликация отложенных объявлений
	services.StartAutoPublish(headlineRepo)

	// Маршруты
	router := mux.NewRouter()
	routes.InitRoutes(router, cfg.JWTSecret, authHandler, userHandler, headlineHandler, uploadHandler, inviteHandler)

	return router, nil
}
