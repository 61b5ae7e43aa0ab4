package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
)

// GetURLAnalytics handles GET /analytics/:identifier.
func (h *Handler) GetURLAnalytics(c *gin.Context) {
	analytics, err := h.analytics.UrlAnalytics(c.Param("identifier"))
	if err != nil {
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, analytics)
}

// RecentActivity handles GET /analytics/admin/recent-activity.
func (h *Handler) RecentActivity(c *gin.Context) {
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "10"))

	activity, err := h.analytics.RecentActivity(limit)
	if err != nil {
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"recent_clicks": activity,
		"count":         len(activity),
	})
}

// GlobalStats handles GET /analytics/admin/global-stats.
func (h *Handler) GlobalStats(c *gin.Context) {
	stats, err := h.analytics.GlobalStats()
	if err != nil {
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, stats)
}
