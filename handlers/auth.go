package handlers

import (
	"crypto/subtle"
	"net/http"

	"github.com/gin-gonic/gin"
)

type TokenRequest struct {
	AdminKey string `json:"admin_key" binding:"required"`
}

// IssueToken handles POST /api/auth/token: exchanges the configured admin key
// for a bearer token accepted by the admin analytics endpoints.
func (h *Handler) IssueToken(c *gin.Context) {
	var request TokenRequest
	if err := c.ShouldBindJSON(&request); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if h.cfg.Auth.AdminKey == "" ||
		subtle.ConstantTimeCompare([]byte(request.AdminKey), []byte(h.cfg.Auth.AdminKey)) != 1 {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid admin key"})
		return
	}

	token, err := h.auth.GenerateToken()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to issue token"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"token": token})
}
