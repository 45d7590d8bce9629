package models

import "time"

// DailyLog is one day's recovery status entry for a user. There is at most
// one log per (user, date); the repository refuses duplicate dates on create.
type DailyLog struct {
	ID               string    `firestore:"-" json:"id,omitempty"` // Firestore document ID
	UserID           string    `firestore:"userId" json:"userId"`
	Date             string    `firestore:"date" json:"date"` // ISO date, YYYY-MM-DD
	PainLevel        int       `firestore:"painLevel" json:"painLevel"`
	SwellingLevel    int       `firestore:"swellingLevel" json:"swellingLevel"`
	MedicationsTaken []string  `firestore:"medicationsTaken" json:"medicationsTaken"`
	CustomMedication string    `firestore:"customMedication,omitempty" json:"customMedication,omitempty"`
	Mood             string    `firestore:"mood,omitempty" json:"mood,omitempty"` // Emoji character
	Notes            string    `firestore:"notes,omitempty" json:"notes,omitempty"`
	PhotoURL         string    `firestore:"photoUrl,omitempty" json:"photoUrl,omitempty"`   // Storage download URL
	PhotoPath        string    `firestore:"photoPath,omitempty" json:"photoPath,omitempty"` // Storage path for deletion
	RecoveryTips     string    `firestore:"recoveryTips,omitempty" json:"recoveryTips,omitempty"` // AI generated tips
	CreatedAt        time.Time `firestore:"createdAt" json:"createdAt"`
	UpdatedAt        time.Time `firestore:"updatedAt" json:"updatedAt"`
}

// MoodEmojis is the fixed set of moods a log may carry
var MoodEmojis = []string{"😊", "🙂", "😐", "😟", "😢", "😣"}

// DefaultMedications are the medications offered as checkboxes in the client
var DefaultMedications = []string{
	"Paracetamol",
	"Ibuprofen",
	"Prescription Opioids (e.g., Oxycodone)",
	"Antibiotics",
	"Anti-inflammatory drugs",
}

// IsValidMood reports whether mood is one of the allowed emoji
func IsValidMood(mood string) bool {
	for _, m := range MoodEmojis {
		if m == mood {
			return true
		}
	}
	return false
}

// MoodRequest represents the quick mood log request body
type MoodRequest struct {
	Mood string `json:"mood" binding:"required"`
}

// LogListResponse represents the log listing response
type LogListResponse struct {
	Logs  []*DailyLog `json:"logs"`
	Total int         `json:"total"`
}

// ManualTipRequest represents a tip generation request when no log exists
type ManualTipRequest struct {
	PainLevel       int    `json:"painLevel" binding:"min=0,max=10"`
	SwellingLevel   int    `json:"swellingLevel" binding:"min=0,max=10"`
	MedicationTaken string `json:"medicationTaken"`
	Notes           string `json:"notes"`
}
