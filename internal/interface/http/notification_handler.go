package http

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// Notifications returns the history with the unread count.
func (h *Handler) Notifications(c *gin.Context) {
	feed, err := h.notifySvc.List(c.Request.Context())
	if err != nil {
		abortWithError(c, fromDomain(err, "notifications_failed"))
		return
	}
	c.JSON(http.StatusOK, toFeedResponse(feed, h.now()))
}

// Reminders lists each scheduled reminder's next slot.
func (h *Handler) Reminders(c *gin.Context) {
	upcoming, err := h.notifySvc.Upcoming(c.Request.Context())
	if err != nil {
		abortWithError(c, fromDomain(err, "notifications_failed"))
		return
	}
	c.JSON(http.StatusOK, gin.H{"reminders": toReminderDTOs(upcoming, h.clock())})
}

// MarkRead flags one notification as read.
func (h *Handler) MarkRead(c *gin.Context) {
	if err := h.notifySvc.MarkRead(c.Request.Context(), c.Param("id")); err != nil {
		abortWithError(c, fromDomain(err, "notifications_failed"))
		return
	}
	c.Status(http.StatusNoContent)
}

// MarkAllRead flags every notification as read.
func (h *Handler) MarkAllRead(c *gin.Context) {
	if err := h.notifySvc.MarkAllRead(c.Request.Context()); err != nil {
		abortWithError(c, fromDomain(err, "notifications_failed"))
		return
	}
	c.Status(http.StatusNoContent)
}

// RemoveNotification deletes one notification.
func (h *Handler) RemoveNotification(c *gin.Context) {
	if err := h.notifySvc.Remove(c.Request.Context(), c.Param("id")); err != nil {
		abortWithError(c, fromDomain(err, "notifications_failed"))
		return
	}
	c.Status(http.StatusNoContent)
}

// ClearNotifications empties the history.
func (h *Handler) ClearNotifications(c *gin.Context) {
	if err := h.notifySvc.Clear(c.Request.Context()); err != nil {
		abortWithError(c, fromDomain(err, "notifications_failed"))
		return
	}
	c.Status(http.StatusNoContent)
}

// UsageAlert fires a high usage alert when usage exceeds the threshold.
func (h *Handler) UsageAlert(c *gin.Context) {
	var req usageAlertRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, NewHTTPError(http.StatusBadRequest, "invalid_request", errMessage(err), err))
		return
	}
	n, err := h.notifySvc.UsageAlert(c.Request.Context(), *req.UsageKWh, *req.ThresholdKWh)
	if err != nil {
		abortWithError(c, fromDomain(err, "notifications_failed"))
		return
	}
	c.JSON(http.StatusOK, usageAlertResponse{Fired: n != nil, Notification: n})
}

// BillPrediction sends the monthly bill trend notification.
func (h *Handler) BillPrediction(c *gin.Context) {
	var req billPredictionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, NewHTTPError(http.StatusBadRequest, "invalid_request", errMessage(err), err))
		return
	}
	n, err := h.notifySvc.BillPrediction(c.Request.Context(), *req.Predicted, *req.Previous)
	if err != nil {
		abortWithError(c, fromDomain(err, "notifications_failed"))
		return
	}
	c.JSON(http.StatusCreated, n)
}
