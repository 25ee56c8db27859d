package main

import (
	"fmt"
	"log"
	"net/http"
	"os"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/vaulty-hq/vaulty/internal/api"
	"github.com/vaulty-hq/vaulty/internal/api/handlers"
	"github.com/vaulty-hq/vaulty/internal/api/middleware"
	apiservices "github.com/vaulty-hq/vaulty/internal/api/services"
	"github.com/vaulty-hq/vaulty/internal/auth"
	"github.com/vaulty-hq/vaulty/internal/config"
	"github.com/vaulty-hq/vaulty/internal/repositories"
	"github.com/vaulty-hq/vaulty/internal/services"
	"github.com/vaulty-hq/vaulty/internal/storage"
)

func main() {
	cfg := config.Load()
	if cfg.JWTSecret == "" {
		log.Fatal("JWT_SECRET must be set")
	}

	logger := logrus.New()
	logger.SetFormatter(&logrus.JSONFormatter{})
	logger.SetOutput(os.Stdout)
	logger.SetLevel(logrus.InfoLevel)

	db, err := repositories.Connect(cfg)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}

	var store storage.Storage
	switch cfg.StorageBackend {
	case "r2":
		store = storage.NewR2Storage(cfg.R2)
	case "local":
		store, err = storage.NewLocalStorage(cfg.UploadDir)
		if err != nil {
			log.Fatalf("Failed to initialize storage: %v", err)
		}
	default:
		log.Fatalf("Unsupported STORAGE_BACKEND %q", cfg.StorageBackend)
	}

	userRepo := repositories.NewUserRepository(db)
	projectRepo := repositories.NewProjectRepository(db)
	fileRepo := repositories.NewFileRepository(db)

	tokens := auth.NewTokenService(cfg.JWTSecret, cfg.JWTExpiry)
	authService := services.NewAuthService(userRepo, tokens, logger)
	projectService := services.NewProjectService(projectRepo, fileRepo, store, logger)
	fileService := services.NewFileService(fileRepo, projectRepo, store, cfg.MaxFileSize, logger)

	resolver := middleware.NewResolver(tokens, projectRepo)
	oauthConfig := apiservices.NewGoogleOauthConfig(cfg.Google)

	router := api.SetupRouter(cfg, logger, resolver, api.Handlers{
		Auth:     handlers.NewAuthHandler(authService, oauthConfig, logger),
		Projects: handlers.NewProjectHandler(projectService, logger),
		Files:    handlers.NewFileHandler(fileService, cfg.MaxFileSize, logger),
		Public:   handlers.NewPublicHandler(fileService, logger),
	})

	server := &http.Server{
		Addr:         fmt.Sprintf(":%s", cfg.Port),
		Handler:      router,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 60 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	logger.Infof("Starting Vaulty server on port %s", cfg.Port)

	if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		log.Fatalf("Could not listen on port %s: %v", cfg.Port, err)
	}
}
