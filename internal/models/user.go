package models

import "time"

// UserProfile represents a patient account
type UserProfile struct {
	UserID       string    `firestore:"userId" json:"userId"`
	Name         string    `firestore:"name" json:"name"`
	Email        string    `firestore:"email" json:"email"`
	PasswordHash string    `firestore:"passwordHash" json:"-"` // Don't expose in JSON
	SurgeryType  string    `firestore:"surgeryType,omitempty" json:"surgeryType,omitempty"`
	SurgeryDate  string    `firestore:"surgeryDate,omitempty" json:"surgeryDate,omitempty"` // ISO date, YYYY-MM-DD
	FCMToken     string    `firestore:"fcmToken,omitempty" json:"fcmToken,omitempty"`
	CreatedAt    time.Time `firestore:"createdAt" json:"createdAt"`
	UpdatedAt    time.Time `firestore:"updatedAt" json:"updatedAt"`
}

// RegisterRequest represents the registration request body
type RegisterRequest struct {
	Name        string `json:"name" binding:"required,min=2"`
	Email       string `json:"email" binding:"required,email"`
	Password    string `json:"password" binding:"required,min=6"`
	SurgeryType string `json:"surgeryType"`
	SurgeryDate string `json:"surgeryDate"`
}

// LoginRequest represents the login request body
type LoginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

// AuthResponse represents the authentication response
type AuthResponse struct {
	UserID string `json:"userId"`
	Name   string `json:"name"`
	Email  string `json:"email"`
	Token  string `json:"token"`
}

// UpdateProfileRequest represents the profile update request body.
// Email is intentionally absent: it cannot be changed.
type UpdateProfileRequest struct {
	Name        string `json:"name" binding:"required,min=2"`
	SurgeryType string `json:"surgeryType" binding:"required,min=2"`
	SurgeryDate string `json:"surgeryDate" binding:"required"`
}

// UpdateFCMTokenRequest represents the FCM token update request
type UpdateFCMTokenRequest struct {
	FCMToken string `json:"fcmToken" binding:"required"`
}
