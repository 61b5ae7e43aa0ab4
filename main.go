package main

import (
	"fmt"
	"log"

	"github.com/gin-gonic/gin"

	"shortlink/auth"
	"shortlink/config"
	"shortlink/database"
	"shortlink/handlers"
	"shortlink/repository"
	"shortlink/services"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	db, err := database.Connect(cfg)
	if err != nil {
		log.Fatalf("Failed to set up database: %v", err)
	}

	urlRepo := repository.NewUrlRepository(db)
	clickRepo := repository.NewClickRepository(db)

	shortener := services.NewShortenerService(urlRepo, clickRepo, cfg)
	analytics := services.NewAnalyticsService(urlRepo, clickRepo)
	authService := auth.NewService(cfg.Auth.Secret)

	handler := handlers.New(shortener, analytics, authService, cfg)

	router := gin.Default()
	handler.RegisterRoutes(router)

	addr := fmt.Sprintf(":%d", cfg.Server.Port)
	log.Printf("Short URL service starting on %s", addr)
	if err := router.Run(addr); err != nil {
		log.Fatalf("Failed to start server: %v", err)
	}
}
