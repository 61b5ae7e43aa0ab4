package handlers

import (
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"shortlink/services"
)

type CreateURLRequest struct {
	OriginalURL string     `json:"original_url" binding:"required"`
	Alias       *string    `json:"alias"`
	ExpiresAt   *time.Time `json:"expires_at"`
}

// CreateShortURL handles POST /shorten.
func (h *Handler) CreateShortURL(c *gin.Context) {
	var request CreateURLRequest
	if err := c.ShouldBindJSON(&request); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if request.Alias != nil && reservedPaths[strings.ToLower(strings.TrimSpace(*request.Alias))] {
		c.JSON(http.StatusBadRequest, gin.H{"error": "alias collides with a reserved path"})
		return
	}

	response, err := h.shortener.Create(request.OriginalURL, request.Alias, request.ExpiresAt)
	if err != nil {
		abortWithError(c, err)
		return
	}

	c.JSON(http.StatusCreated, response)
}

// GetURLInfo handles GET /info/:identifier.
func (h *Handler) GetURLInfo(c *gin.Context) {
	response, err := h.shortener.GetInfo(c.Param("identifier"))
	if err != nil {
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, response)
}

// ListURLs handles GET /urls.
func (h *Handler) ListURLs(c *gin.Context) {
	responses, err := h.shortener.ListAll()
	if err != nil {
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, responses)
}

// DeleteURL handles DELETE /delete/:identifier.
func (h *Handler) DeleteURL(c *gin.Context) {
	if err := h.shortener.Delete(c.Param("identifier")); err != nil {
		abortWithError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// Redirect handles GET /:identifier, records the click and sends the visitor
// to the original URL.
func (h *Handler) Redirect(c *gin.Context) {
	identifier := c.Param("identifier")
	if reservedPaths[identifier] {
		c.JSON(http.StatusNotFound, gin.H{"error": services.ErrNotFound.Error()})
		return
	}

	ipAddress := c.ClientIP()
	userAgent := optional(c.Request.UserAgent())
	referrer := optional(c.Request.Referer())

	originalURL, err := h.shortener.ResolveAndRecord(identifier, ipAddress, userAgent, referrer)
	if err != nil {
		abortWithError(c, err)
		return
	}

	c.Redirect(http.StatusFound, originalURL)
}

func optional(value string) *string {
	if value == "" {
		return nil
	}
	return &value
}
