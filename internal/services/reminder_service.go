package services

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"firebase.google.com/go/messaging"
	"github.com/sandy2008/recovery-compass/internal/config"
	"github.com/sandy2008/recovery-compass/internal/models"
)

// Reminders repeat at most once per cooldown window
const defaultReminderCooldownMinutes = 720

type CooldownRepository interface {
	CreateCooldown(ctx context.Context, userID string, cooldownMinutes int) error
	CheckActiveCooldown(ctx context.Context, userID string) (*models.ReminderCooldown, error)
}

type Pusher interface {
	SendPush(ctx context.Context, fcmToken, title, body string, data map[string]string) error
}

// ReminderService sends a "log today" push to users who have not yet
// submitted a daily log for the current date.
type ReminderService struct {
	users     ProfileReader
	logs      LogRepository
	cooldowns CooldownRepository
	push      Pusher
}

func NewReminderService(users ProfileReader, logs LogRepository, cooldowns CooldownRepository, push Pusher) *ReminderService {
	return &ReminderService{
		users:     users,
		logs:      logs,
		cooldowns: cooldowns,
		push:      push,
	}
}

// Remind sends the user a log reminder for today, gated by the reminder
// cooldown and by whether today's log already exists.
func (s *ReminderService) Remind(ctx context.Context, userID, today string) (*models.ReminderResponse, error) {
	activeCooldown, err := s.cooldowns.CheckActiveCooldown(ctx, userID)
	if err != nil {
		return nil, err
	}
	if activeCooldown != nil {
		return nil, fmt.Errorf("cooldown_active:%s", activeCooldown.ExpiresAt.Format(time.RFC3339))
	}

	user, err := s.users.GetUserByID(ctx, userID)
	if err != nil {
		return nil, errors.New("user not found")
	}
	if user.FCMToken == "" {
		return nil, errors.New("no_fcm_token")
	}

	existing, err := s.logs.FindLogByDate(ctx, userID, today)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return &models.ReminderResponse{Sent: false, AlreadyLogged: true}, nil
	}

	err = s.push.SendPush(ctx, user.FCMToken,
		"Recovery Compass",
		fmt.Sprintf("Hi %s, don't forget to log today's recovery status!", user.Name),
		map[string]string{
			"type": "log_reminder",
			"date": today,
		})
	if err != nil {
		return nil, fmt.Errorf("failed to send reminder: %w", err)
	}

	if err := s.cooldowns.CreateCooldown(ctx, userID, defaultReminderCooldownMinutes); err != nil {
		log.Printf("Failed to record reminder cooldown for %s: %v", userID, err)
	}

	return &models.ReminderResponse{Sent: true}, nil
}

// CheckCooldown reports the user's active reminder cooldown
func (s *ReminderService) CheckCooldown(ctx context.Context, userID string) (*models.CooldownResponse, error) {
	cooldown, err := s.cooldowns.CheckActiveCooldown(ctx, userID)
	if err != nil {
		return nil, err
	}

	if cooldown == nil {
		return &models.CooldownResponse{
			OnCooldown:  false,
			AvailableAt: nil,
		}, nil
	}

	return &models.CooldownResponse{
		OnCooldown:  true,
		AvailableAt: &cooldown.ExpiresAt,
	}, nil
}

// FCMPusher sends pushes via Firebase Cloud Messaging
type FCMPusher struct{}

func (p *FCMPusher) SendPush(ctx context.Context, fcmToken, title, body string, data map[string]string) error {
	client, err := config.FirebaseApp.Messaging(ctx)
	if err != nil {
		return fmt.Errorf("failed to get messaging client: %w", err)
	}

	message := &messaging.Message{
		Token: fcmToken,
		Notification: &messaging.Notification{
			Title: title,
			Body:  body,
		},
		Data: data,
		Android: &messaging.AndroidConfig{
			Priority: "high",
			Notification: &messaging.AndroidNotification{
				ChannelID: "reminder_channel",
			},
		},
		APNS: &messaging.APNSConfig{
			Payload: &messaging.APNSPayload{
				Aps: &messaging.Aps{
					Sound: "default",
				},
			},
		},
	}

	_, err = client.Send(ctx, message)
	if err != nil {
		return fmt.Errorf("failed to send FCM: %w", err)
	}

	preview := fcmToken
	if len(preview) > 20 {
		preview = preview[:20]
	}
	log.Printf("✅ Reminder sent to token: %s...", preview)
	return nil
}
