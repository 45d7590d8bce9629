package handlers

import (
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sandy2008/recovery-compass/internal/services"
)

type NotificationHandler struct {
	reminderService *services.ReminderService
}

func NewNotificationHandler(reminderService *services.ReminderService) *NotificationHandler {
	return &NotificationHandler{
		reminderService: reminderService,
	}
}

// Remind sends the caller a "log today" push if today is not logged yet
func (h *NotificationHandler) Remind(c *gin.Context) {
	userID := c.GetString("userID")
	if userID == "" {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	today := time.Now().Format("2006-01-02")
	response, err := h.reminderService.Remind(c.Request.Context(), userID, today)
	if err != nil {
		// Check if it's a cooldown error
		if strings.HasPrefix(err.Error(), "cooldown_active:") {
			c.JSON(http.StatusTooManyRequests, gin.H{
				"error":       "cooldown_active",
				"availableAt": strings.TrimPrefix(err.Error(), "cooldown_active:"),
			})
			return
		}

		if err.Error() == "no_fcm_token" {
			c.JSON(http.StatusBadRequest, gin.H{"error": "no_fcm_token"})
			return
		}

		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, response)
}

// CheckCooldown reports whether another reminder can be sent yet
func (h *NotificationHandler) CheckCooldown(c *gin.Context) {
	userID := c.GetString("userID")
	if userID == "" {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	response, err := h.reminderService.CheckCooldown(c.Request.Context(), userID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, response)
}
