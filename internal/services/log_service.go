package services

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/sandy2008/recovery-compass/internal/models"
	"github.com/sandy2008/recovery-compass/internal/repository"
)

const (
	MaxPhotoSize   = 5 * 1024 * 1024 // 5MB
	MaxNotesLength = 1000

	// NoNotesPlaceholder is sent to the tip model when the user left notes empty
	NoNotesPlaceholder = "No additional notes."
)

var allowedPhotoTypes = map[string]bool{
	"image/jpeg": true,
	"image/png":  true,
	"image/webp": true,
	"image/gif":  true,
}

// ErrPhotoUpload marks an attachment failure that aborted the submission
var ErrPhotoUpload = errors.New("photo upload failed")

// ValidationError is a field-scoped input rejection. It is detected before
// any storage or model call is issued.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return e.Message
}

// PhotoUpload carries a new photo attachment through a submission
type PhotoUpload struct {
	Filename    string
	ContentType string
	Data        []byte
}

// LogSubmission is a candidate daily log payload
type LogSubmission struct {
	Date             string
	PainLevel        int
	SwellingLevel    int
	MedicationsTaken []string
	CustomMedication string
	Mood             string
	Notes            string
	Photo            *PhotoUpload // nil when the attachment is unchanged
	RemovePhoto      bool         // clear the stored photo without replacement
}

// SubmitResult reports the two units of work separately: the persisted log,
// and the tip enrichment outcome. A tip failure never rolls back the log.
type SubmitResult struct {
	Log     *models.DailyLog `json:"log"`
	Created bool             `json:"created"`
	Tips    string           `json:"tips,omitempty"`
	TipErr  error            `json:"-"`
}

type LogRepository interface {
	CreateLog(ctx context.Context, userID string, log *models.DailyLog) (string, error)
	UpdateLog(ctx context.Context, userID, logID string, log *models.DailyLog) error
	SetLogFields(ctx context.Context, userID, logID string, fields map[string]interface{}) error
	GetLogByID(ctx context.Context, userID, logID string) (*models.DailyLog, error)
	FindLogByDate(ctx context.Context, userID, date string) (*models.DailyLog, error)
	GetLatestLog(ctx context.Context, userID string) (*models.DailyLog, error)
}

type PhotoStore interface {
	Upload(ctx context.Context, path string, data []byte, contentType string) (string, error)
	Delete(ctx context.Context, path string) error
}

type TipGenerator interface {
	GenerateRecoveryTips(ctx context.Context, input *TipInput) (string, error)
}

type ProfileReader interface {
	GetUserByID(ctx context.Context, userID string) (*models.UserProfile, error)
}

type LogService struct {
	logs   LogRepository
	users  ProfileReader
	photos PhotoStore
	tips   TipGenerator
	now    func() time.Time
}

func NewLogService(logs LogRepository, users ProfileReader, photos PhotoStore, tips TipGenerator) *LogService {
	return &LogService{
		logs:   logs,
		users:  users,
		photos: photos,
		tips:   tips,
		now:    time.Now,
	}
}

// SubmitLog runs the daily log upsert workflow: validate, resolve the
// medication set, reconcile the photo attachment, create or update the
// record, then attempt tip generation and write the tips back.
// logID is the edit target; empty means create for sub.Date.
func (s *LogService) SubmitLog(ctx context.Context, userID, logID string, sub *LogSubmission) (*SubmitResult, error) {
	if err := validateSubmission(sub); err != nil {
		return nil, err
	}

	var existing *models.DailyLog
	if logID != "" {
		var err error
		existing, err = s.logs.GetLogByID(ctx, userID, logID)
		if err != nil {
			return nil, errors.New("log not found")
		}
	} else {
		// Refuse to create a second log for the same date. The repository
		// repeats this check transactionally; this read answers the common
		// conflict path without mutating anything.
		found, err := s.logs.FindLogByDate(ctx, userID, sub.Date)
		if err != nil {
			return nil, err
		}
		if found != nil {
			return nil, repository.ErrDuplicateDate
		}
	}

	medications, customMedication := resolveMedications(sub.MedicationsTaken, sub.CustomMedication)

	photoURL, photoPath, err := s.reconcilePhoto(ctx, userID, existing, sub)
	if err != nil {
		return nil, err
	}

	now := s.now()
	entry := &models.DailyLog{
		UserID:           userID,
		Date:             sub.Date,
		PainLevel:        sub.PainLevel,
		SwellingLevel:    sub.SwellingLevel,
		MedicationsTaken: medications,
		CustomMedication: customMedication,
		Mood:             sub.Mood,
		Notes:            sub.Notes,
		PhotoURL:         photoURL,
		PhotoPath:        photoPath,
		UpdatedAt:        now,
	}

	created := false
	if existing != nil {
		entry.CreatedAt = existing.CreatedAt
		entry.RecoveryTips = existing.RecoveryTips
		if err := s.logs.UpdateLog(ctx, userID, logID, entry); err != nil {
			return nil, err
		}
		entry.ID = logID
	} else {
		entry.CreatedAt = now
		id, err := s.logs.CreateLog(ctx, userID, entry)
		if err != nil {
			return nil, err
		}
		entry.ID = id
		created = true
	}

	result := &SubmitResult{Log: entry, Created: created}

	// Tip generation is a separate unit of work: the log is already durable
	// and a failure here is reported on its own channel.
	tips, tipErr := s.generateAndAttachTips(ctx, userID, entry, tipPhotoSource(sub.Photo, existing))
	if tipErr != nil {
		result.TipErr = tipErr
	} else {
		result.Tips = tips
		entry.RecoveryTips = tips
	}

	return result, nil
}

// QuickLogMood sets today's mood: it updates today's log when one exists,
// otherwise it creates a minimal log carrying only the mood.
func (s *LogService) QuickLogMood(ctx context.Context, userID, mood, today string) (*models.DailyLog, bool, error) {
	if !models.IsValidMood(mood) {
		return nil, false, &ValidationError{Field: "mood", Message: "mood must be one of the allowed emoji"}
	}

	latest, err := s.logs.GetLatestLog(ctx, userID)
	if err != nil {
		return nil, false, err
	}

	now := s.now()
	if latest != nil && latest.Date == today {
		err := s.logs.SetLogFields(ctx, userID, latest.ID, map[string]interface{}{
			"mood":      mood,
			"updatedAt": now,
		})
		if err != nil {
			return nil, false, err
		}
		latest.Mood = mood
		latest.UpdatedAt = now
		return latest, false, nil
	}

	entry := &models.DailyLog{
		UserID:           userID,
		Date:             today,
		Mood:             mood,
		PainLevel:        0,
		SwellingLevel:    0,
		MedicationsTaken: []string{},
		CreatedAt:        now,
		UpdatedAt:        now,
	}
	id, err := s.logs.CreateLog(ctx, userID, entry)
	if err != nil {
		return nil, false, err
	}
	entry.ID = id
	return entry, true, nil
}

// RegenerateTips re-runs tip generation for the user's latest log and
// writes the result back onto it
func (s *LogService) RegenerateTips(ctx context.Context, userID string) (string, error) {
	latest, err := s.logs.GetLatestLog(ctx, userID)
	if err != nil {
		return "", err
	}
	if latest == nil {
		return "", errors.New("no logs found")
	}

	return s.generateAndAttachTips(ctx, userID, latest, latest.PhotoURL)
}

// GenerateManualTips produces tips from ad-hoc input without touching any log
func (s *LogService) GenerateManualTips(ctx context.Context, userID string, req *models.ManualTipRequest) (string, error) {
	profile, err := s.users.GetUserByID(ctx, userID)
	if err != nil {
		return "", errors.New("user profile not found")
	}

	notes := req.Notes
	if notes == "" {
		notes = NoNotesPlaceholder
	}

	return s.tips.GenerateRecoveryTips(ctx, &TipInput{
		PainLevel:       req.PainLevel,
		SwellingLevel:   req.SwellingLevel,
		MedicationTaken: req.MedicationTaken,
		Notes:           notes,
		SurgeryType:     surgeryTypeOrDefault(profile),
		SurgeryDate:     surgeryDateOrDefault(profile),
		UserName:        profile.Name,
	})
}

func (s *LogService) generateAndAttachTips(ctx context.Context, userID string, entry *models.DailyLog, photoSource string) (string, error) {
	profile, err := s.users.GetUserByID(ctx, userID)
	if err != nil {
		return "", fmt.Errorf("user profile not found: %w", err)
	}

	notes := entry.Notes
	if notes == "" {
		notes = NoNotesPlaceholder
	}

	medicationTaken := strings.Join(entry.MedicationsTaken, ", ")
	if entry.CustomMedication != "" {
		medicationTaken = medicationTaken + ", " + entry.CustomMedication
	}

	tips, err := s.tips.GenerateRecoveryTips(ctx, &TipInput{
		PainLevel:       entry.PainLevel,
		SwellingLevel:   entry.SwellingLevel,
		MedicationTaken: medicationTaken,
		Notes:           notes,
		PhotoDataURI:    photoSource,
		SurgeryType:     surgeryTypeOrDefault(profile),
		SurgeryDate:     surgeryDateOrDefault(profile),
		UserName:        profile.Name,
	})
	if err != nil {
		return "", err
	}

	err = s.logs.SetLogFields(ctx, userID, entry.ID, map[string]interface{}{
		"recoveryTips": tips,
		"updatedAt":    s.now(),
	})
	if err != nil {
		return "", fmt.Errorf("failed to save tips: %w", err)
	}

	return tips, nil
}

// reconcilePhoto walks the attachment state machine. A new upload replaces
// any stored object (old object deleted best-effort); RemovePhoto clears the
// stored object; otherwise the existing URL/path carry forward unchanged.
func (s *LogService) reconcilePhoto(ctx context.Context, userID string, existing *models.DailyLog, sub *LogSubmission) (photoURL, photoPath string, err error) {
	if existing != nil {
		photoURL = existing.PhotoURL
		photoPath = existing.PhotoPath
	}

	if sub.Photo != nil {
		if photoPath != "" {
			if err := s.photos.Delete(ctx, photoPath); err != nil {
				log.Printf("⚠️ Old photo not found or deletion failed: %v", err)
			}
		}
		path := fmt.Sprintf("users/%s/logs/%s_%s", userID, sub.Date, sub.Photo.Filename)
		url, err := s.photos.Upload(ctx, path, sub.Photo.Data, sub.Photo.ContentType)
		if err != nil {
			return "", "", fmt.Errorf("%w: %v", ErrPhotoUpload, err)
		}
		return url, path, nil
	}

	if sub.RemovePhoto && photoPath != "" {
		if err := s.photos.Delete(ctx, photoPath); err != nil {
			log.Printf("⚠️ Old photo not found or deletion failed: %v", err)
		}
		return "", "", nil
	}

	return photoURL, photoPath, nil
}

// tipPhotoSource picks what the model sees: the transient upload for a
// new/changed photo, otherwise the previously stored retrieval URL
func tipPhotoSource(photo *PhotoUpload, existing *models.DailyLog) string {
	if photo != nil {
		return fmt.Sprintf("data:%s;base64,%s", photo.ContentType, base64.StdEncoding.EncodeToString(photo.Data))
	}
	if existing != nil {
		return existing.PhotoURL
	}
	return ""
}

func surgeryTypeOrDefault(profile *models.UserProfile) string {
	if profile.SurgeryType == "" {
		return "General Surgery"
	}
	return profile.SurgeryType
}

func surgeryDateOrDefault(profile *models.UserProfile) string {
	if profile.SurgeryDate == "" {
		return "Not specified"
	}
	return profile.SurgeryDate
}

// resolveMedications promotes a custom "Other" entry into the stored list.
// The custom value replaces the literal "Other" and is also retained
// separately; without a custom value, customMedication stays cleared.
func resolveMedications(meds []string, custom string) ([]string, string) {
	hasOther := false
	for _, m := range meds {
		if m == "Other" {
			hasOther = true
			break
		}
	}
	if !hasOther || custom == "" {
		return meds, ""
	}

	resolved := make([]string, 0, len(meds))
	for _, m := range meds {
		if m != "Other" {
			resolved = append(resolved, m)
		}
	}
	return append(resolved, custom), custom
}

func validateSubmission(sub *LogSubmission) error {
	if _, err := time.Parse("2006-01-02", sub.Date); err != nil {
		return &ValidationError{Field: "date", Message: "invalid date"}
	}
	if sub.PainLevel < 0 || sub.PainLevel > 10 {
		return &ValidationError{Field: "painLevel", Message: "pain level must be between 0 and 10"}
	}
	if sub.SwellingLevel < 0 || sub.SwellingLevel > 10 {
		return &ValidationError{Field: "swellingLevel", Message: "swelling level must be between 0 and 10"}
	}
	if len(sub.Notes) > MaxNotesLength {
		return &ValidationError{Field: "notes", Message: "notes can be up to 1000 characters"}
	}
	if sub.Mood != "" && !models.IsValidMood(sub.Mood) {
		return &ValidationError{Field: "mood", Message: "mood must be one of the allowed emoji"}
	}
	if sub.Photo != nil {
		if len(sub.Photo.Data) > MaxPhotoSize {
			return &ValidationError{Field: "photo", Message: "max image size is 5MB"}
		}
		if !allowedPhotoTypes[sub.Photo.ContentType] {
			return &ValidationError{Field: "photo", Message: "only .jpg, .png, .webp, and .gif formats are supported"}
		}
	}
	return nil
}
