package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sandy2008/recovery-compass/internal/models"
	"github.com/sandy2008/recovery-compass/internal/repository"
	"github.com/sandy2008/recovery-compass/pkg/utils"
)

type ProfileHandler struct {
	userRepo *repository.UserRepository
}

func NewProfileHandler() *ProfileHandler {
	return &ProfileHandler{
		userRepo: repository.NewUserRepository(),
	}
}

// GetProfile returns the current user's profile
func (h *ProfileHandler) GetProfile(c *gin.Context) {
	userID := c.GetString("userID")
	if userID == "" {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	profile, err := h.userRepo.GetUserByID(c.Request.Context(), userID)
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "profile not found"})
		return
	}

	c.JSON(http.StatusOK, profile)
}

// UpdateProfile updates name and surgery information. Email is immutable.
func (h *ProfileHandler) UpdateProfile(c *gin.Context) {
	userID := c.GetString("userID")
	if userID == "" {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	var req models.UpdateProfileRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if err := utils.ValidateISODate(req.SurgeryDate); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if err := h.userRepo.UpdateProfile(c.Request.Context(), userID, req.Name, req.SurgeryType, req.SurgeryDate); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true})
}
