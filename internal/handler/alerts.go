package handler

import (
	"net/http"

	"pipeflow/internal/alert"
	"pipeflow/internal/middleware"
	"pipeflow/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

type AlertHandler struct {
	alerts service.AlertService
}

func NewAlertHandler(alerts service.AlertService) *AlertHandler {
	return &AlertHandler{alerts: alerts}
}

// Feed godoc
// @Summary  Unified alert feed for the authenticated user
// @Tags     alerts
// @Success  200 {array} alert.Alert
// @Router   /alerts [get]
func (h *AlertHandler) Feed(c *gin.Context) {
	claims := middleware.GetClaims(c)
	viewer := alert.Viewer{ID: middleware.UserID(c), Role: claims.Role}
	c.JSON(http.StatusOK, h.alerts.Feed(c.Request.Context(), viewer))
}

// MarkRead godoc
// @Summary  Mark one durable notification as read
// @Tags     alerts
// @Param    id path string true "notification id"
// @Success  204
// @Router   /notifications/{id}/read [post]
func (h *AlertHandler) MarkRead(c *gin.Context) {
	id, ok := parseUUIDParam(c, "id")
	if !ok {
		return
	}
	userID := middleware.UserID(c)
	if userID == uuid.Nil {
		c.Status(http.StatusUnauthorized)
		return
	}
	if err := h.alerts.MarkNotificationRead(c.Request.Context(), id, userID); err != nil {
		writeError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}
