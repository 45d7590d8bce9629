package handlers

import (
	"errors"
	"io"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sandy2008/recovery-compass/internal/models"
	"github.com/sandy2008/recovery-compass/internal/repository"
	"github.com/sandy2008/recovery-compass/internal/services"
	"github.com/sandy2008/recovery-compass/pkg/utils"
)

type LogHandler struct {
	logService *services.LogService
	logRepo    *repository.LogRepository
}

func NewLogHandler(logService *services.LogService, logRepo *repository.LogRepository) *LogHandler {
	return &LogHandler{
		logService: logService,
		logRepo:    logRepo,
	}
}

// CreateLog submits a new daily log for a date (multipart form with an
// optional photo part). Returns 409 when a log for the date already exists.
func (h *LogHandler) CreateLog(c *gin.Context) {
	userID := c.GetString("userID")
	if userID == "" {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	sub, ok := h.parseSubmission(c)
	if !ok {
		return
	}
	if sub.Date == "" {
		sub.Date = time.Now().Format("2006-01-02")
	}

	result, err := h.logService.SubmitLog(c.Request.Context(), userID, "", sub)
	if err != nil {
		respondSubmitError(c, err)
		return
	}

	c.JSON(http.StatusCreated, submitResponse(result))
}

// UpdateLog edits an existing daily log in place
func (h *LogHandler) UpdateLog(c *gin.Context) {
	userID := c.GetString("userID")
	if userID == "" {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	logID := c.Param("logId")
	if logID == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "logId is required"})
		return
	}

	sub, ok := h.parseSubmission(c)
	if !ok {
		return
	}
	if sub.Date == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "date is required"})
		return
	}

	result, err := h.logService.SubmitLog(c.Request.Context(), userID, logID, sub)
	if err != nil {
		respondSubmitError(c, err)
		return
	}

	c.JSON(http.StatusOK, submitResponse(result))
}

// ListLogs returns the user's logs ordered by date
func (h *LogHandler) ListLogs(c *gin.Context) {
	userID := c.GetString("userID")
	if userID == "" {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	// Parse pagination params
	page := 1
	limit := 50
	if pageStr := c.Query("page"); pageStr != "" {
		if p, err := strconv.Atoi(pageStr); err == nil && p > 0 {
			page = p
		}
	}
	if limitStr := c.Query("limit"); limitStr != "" {
		if l, err := strconv.Atoi(limitStr); err == nil && l > 0 && l <= 100 {
			limit = l
		}
	}

	logs, total, err := h.logRepo.ListLogs(c.Request.Context(), userID, page, limit)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, models.LogListResponse{Logs: logs, Total: total})
}

// GetLog returns a single log by document ID
func (h *LogHandler) GetLog(c *gin.Context) {
	userID := c.GetString("userID")
	if userID == "" {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	logID := c.Param("logId")
	entry, err := h.logRepo.GetLogByID(c.Request.Context(), userID, logID)
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "log not found"})
		return
	}

	c.JSON(http.StatusOK, entry)
}

// GetLogByDate returns the log for a calendar date, if any
func (h *LogHandler) GetLogByDate(c *gin.Context) {
	userID := c.GetString("userID")
	if userID == "" {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	date := c.Param("date")
	if err := utils.ValidateISODate(date); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	entry, err := h.logRepo.FindLogByDate(c.Request.Context(), userID, date)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	if entry == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "no log for this date"})
		return
	}

	c.JSON(http.StatusOK, entry)
}

// QuickMood logs today's mood without a full submission
func (h *LogHandler) QuickMood(c *gin.Context) {
	userID := c.GetString("userID")
	if userID == "" {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	var req models.MoodRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	today := time.Now().Format("2006-01-02")
	entry, created, err := h.logService.QuickLogMood(c.Request.Context(), userID, req.Mood, today)
	if err != nil {
		var vErr *services.ValidationError
		if errors.As(err, &vErr) {
			c.JSON(http.StatusBadRequest, gin.H{"error": vErr.Message, "field": vErr.Field})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	status := http.StatusOK
	if created {
		status = http.StatusCreated
	}
	c.JSON(status, gin.H{"log": entry, "created": created})
}

// parseSubmission reads the multipart daily log form. On failure it writes
// the error response itself and returns ok=false.
func (h *LogHandler) parseSubmission(c *gin.Context) (*services.LogSubmission, bool) {
	sub := &services.LogSubmission{
		Date:             c.PostForm("date"),
		MedicationsTaken: c.PostFormArray("medicationsTaken"),
		CustomMedication: c.PostForm("customMedication"),
		Mood:             c.PostForm("mood"),
		Notes:            c.PostForm("notes"),
		RemovePhoto:      c.PostForm("removePhoto") == "true",
	}

	var err error
	if sub.PainLevel, err = strconv.Atoi(c.DefaultPostForm("painLevel", "0")); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "painLevel must be a number"})
		return nil, false
	}
	if sub.SwellingLevel, err = strconv.Atoi(c.DefaultPostForm("swellingLevel", "0")); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "swellingLevel must be a number"})
		return nil, false
	}
	if sub.MedicationsTaken == nil {
		sub.MedicationsTaken = []string{}
	}

	file, header, err := c.Request.FormFile("photo")
	if err == nil {
		defer file.Close()
		data, readErr := io.ReadAll(file)
		if readErr != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "could not read photo"})
			return nil, false
		}
		contentType := header.Header.Get("Content-Type")
		sub.Photo = &services.PhotoUpload{
			Filename:    header.Filename,
			ContentType: contentType,
			Data:        data,
		}
	} else if err != http.ErrMissingFile && err.Error() != "request Content-Type isn't multipart/form-data" {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return nil, false
	}

	return sub, true
}

func respondSubmitError(c *gin.Context, err error) {
	var vErr *services.ValidationError
	switch {
	case errors.As(err, &vErr):
		c.JSON(http.StatusBadRequest, gin.H{"error": vErr.Message, "field": vErr.Field})
	case errors.Is(err, repository.ErrDuplicateDate):
		c.JSON(http.StatusConflict, gin.H{"error": "log_exists", "message": err.Error()})
	case errors.Is(err, services.ErrPhotoUpload):
		c.JSON(http.StatusBadGateway, gin.H{"error": err.Error()})
	default:
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
	}
}

// submitResponse separates the log outcome from the tip outcome: a tip
// failure is reported alongside a successfully persisted log.
func submitResponse(result *services.SubmitResult) gin.H {
	resp := gin.H{
		"log":     result.Log,
		"created": result.Created,
	}
	if result.TipErr != nil {
		resp["tipError"] = result.TipErr.Error()
	} else if result.Tips != "" {
		resp["tips"] = result.Tips
	}
	return resp
}
