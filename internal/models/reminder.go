package models

import "time"

// ReminderCooldown blocks repeat "log today" pushes for a user
type ReminderCooldown struct {
	CooldownID string    `firestore:"cooldownId" json:"cooldownId"`
	UserID     string    `firestore:"userId" json:"userId"`
	SentAt     time.Time `firestore:"sentAt" json:"sentAt"`
	ExpiresAt  time.Time `firestore:"expiresAt" json:"expiresAt"`
}

// ReminderResponse represents the reminder trigger response
type ReminderResponse struct {
	Sent            bool       `json:"sent"`
	AlreadyLogged   bool       `json:"alreadyLogged"`
	NextAvailableAt *time.Time `json:"nextAvailableAt,omitempty"`
}

// CooldownResponse represents the reminder cooldown check response
type CooldownResponse struct {
	OnCooldown  bool       `json:"onCooldown"`
	AvailableAt *time.Time `json:"availableAt,omitempty"`
}
