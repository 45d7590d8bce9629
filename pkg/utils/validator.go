package utils

import (
	"errors"
	"regexp"
	"time"
)

var emailRegex = regexp.MustCompile(`^[a-zA-Z0-9._%+\-]+@[a-zA-Z0-9.\-]+\.[a-zA-Z]{2,}$`)

// ValidateName validates a display name
func ValidateName(name string) error {
	if len(name) < 2 || len(name) > 100 {
		return errors.New("name must be between 2 and 100 characters")
	}
	return nil
}

// ValidateEmail validates email format
func ValidateEmail(email string) error {
	if !emailRegex.MatchString(email) {
		return errors.New("invalid email address")
	}
	return nil
}

// ValidatePassword validates password format
func ValidatePassword(password string) error {
	if len(password) < 6 {
		return errors.New("password must be at least 6 characters")
	}
	return nil
}

// ValidateISODate validates a YYYY-MM-DD calendar date
func ValidateISODate(date string) error {
	if _, err := time.Parse("2006-01-02", date); err != nil {
		return errors.New("date must be in YYYY-MM-DD format")
	}
	return nil
}
