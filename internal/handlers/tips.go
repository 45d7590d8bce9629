package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sandy2008/recovery-compass/internal/models"
	"github.com/sandy2008/recovery-compass/internal/services"
)

type TipHandler struct {
	logService *services.LogService
}

func NewTipHandler(logService *services.LogService) *TipHandler {
	return &TipHandler{
		logService: logService,
	}
}

type generateTipsRequest struct {
	Source string                  `json:"source"` // "latest" (default) or "manual"
	Manual *models.ManualTipRequest `json:"manual,omitempty"`
}

// GenerateTips regenerates recovery tips from the latest log, or from
// manual input when the user has no logs yet. Tips produced from a stored
// log are written back onto it.
func (h *TipHandler) GenerateTips(c *gin.Context) {
	userID := c.GetString("userID")
	if userID == "" {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	var req generateTipsRequest
	if err := c.ShouldBindJSON(&req); err != nil && err.Error() != "EOF" {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if req.Source == "manual" {
		if req.Manual == nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "manual input is required"})
			return
		}
		tips, err := h.logService.GenerateManualTips(c.Request.Context(), userID, req.Manual)
		if err != nil {
			c.JSON(http.StatusBadGateway, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusOK, gin.H{"tips": tips})
		return
	}

	tips, err := h.logService.RegenerateTips(c.Request.Context(), userID)
	if err != nil {
		if err.Error() == "no logs found" {
			c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusBadGateway, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{"tips": tips})
}
