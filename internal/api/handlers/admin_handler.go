package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
)

const defaultLogLimit = 100

// ListReconciliations handles GET /reconcile: payments whose pending ride
// is still stored, newest first
func (h *Handlers) ListReconciliations(c *gin.Context) {
	h.listLog(c, h.Reconcile)
}

// ListNotificationFailures handles GET /notifications/failed
func (h *Handlers) ListNotificationFailures(c *gin.Context) {
	h.listLog(c, h.NotifyFailures)
}

func (h *Handlers) listLog(c *gin.Context, log LogReader) {
	if log == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "Log store unavailable"})
		return
	}

	limit := int64(defaultLogLimit)
	if raw := c.Query("limit"); raw != "" {
		n, err := strconv.ParseInt(raw, 10, 64)
		if err != nil || n <= 0 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "limit must be a positive integer"})
			return
		}
		limit = n
	}

	entries, err := log.Recent(c.Request.Context(), limit)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, entries)
}
