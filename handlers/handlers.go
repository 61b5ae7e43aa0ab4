package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"shortlink/auth"
	"shortlink/config"
	"shortlink/services"
)

// reservedPaths are route keywords that can never be treated as a short URL
// identifier, neither on redirect nor as a user-chosen alias.
var reservedPaths = map[string]bool{
	"health":    true,
	"api":       true,
	"analytics": true,
	"urls":      true,
	"info":      true,
	"delete":    true,
	"shorten":   true,
}

type Handler struct {
	shortener *services.ShortenerService
	analytics *services.AnalyticsService
	auth      *auth.Service
	cfg       *config.Config
}

func New(shortener *services.ShortenerService, analytics *services.AnalyticsService, authSvc *auth.Service, cfg *config.Config) *Handler {
	return &Handler{
		shortener: shortener,
		analytics: analytics,
		auth:      authSvc,
		cfg:       cfg,
	}
}

// RegisterRoutes wires every endpoint onto the router. The catch-all redirect
// route must stay last so the literal routes win.
func (h *Handler) RegisterRoutes(router *gin.Engine) {
	router.POST("/shorten", h.CreateShortURL)
	router.GET("/urls", h.ListURLs)
	router.GET("/info/:identifier", h.GetURLInfo)
	router.DELETE("/delete/:identifier", h.DeleteURL)

	router.POST("/api/auth/token", h.IssueToken)

	analytics := router.Group("/analytics")
	{
		analytics.GET("/:identifier", h.GetURLAnalytics)

		admin := analytics.Group("/admin")
		admin.Use(h.auth.Middleware())
		{
			admin.GET("/recent-activity", h.RecentActivity)
			admin.GET("/global-stats", h.GlobalStats)
		}
	}

	router.GET("/:identifier", h.Redirect)
}

// errorStatus maps service failures onto HTTP status codes.
func errorStatus(err error) int {
	switch {
	case errors.Is(err, services.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, services.ErrAliasTaken):
		return http.StatusConflict
	case errors.Is(err, services.ErrInvalidURL),
		errors.Is(err, services.ErrInvalidAlias),
		errors.Is(err, services.ErrExpiryInPast):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

func abortWithError(c *gin.Context, err error) {
	c.JSON(errorStatus(err), gin.H{"error": err.Error()})
}
