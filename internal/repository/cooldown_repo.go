package repository

import (
	"context"
	"time"

	"cloud.google.com/go/firestore"
	"github.com/sandy2008/recovery-compass/internal/config"
	"github.com/sandy2008/recovery-compass/internal/models"
	"google.golang.org/api/iterator"
)

type CooldownRepository struct {
	client *firestore.Client
}

func NewCooldownRepository() *CooldownRepository {
	return &CooldownRepository{
		client: config.FirestoreClient,
	}
}

// CreateCooldown records a sent reminder with the given cooldown duration in minutes
func (r *CooldownRepository) CreateCooldown(ctx context.Context, userID string, cooldownMinutes int) error {
	now := time.Now()

	cooldown := models.ReminderCooldown{
		UserID:    userID,
		SentAt:    now,
		ExpiresAt: now.Add(time.Duration(cooldownMinutes) * time.Minute),
	}

	docRef, _, err := r.client.Collection("reminderCooldowns").Add(ctx, cooldown)
	if err != nil {
		return err
	}

	// Update with the generated ID
	_, err = docRef.Update(ctx, []firestore.Update{
		{Path: "cooldownId", Value: docRef.ID},
	})
	return err
}

// CheckActiveCooldown returns the user's active reminder cooldown, if any
func (r *CooldownRepository) CheckActiveCooldown(ctx context.Context, userID string) (*models.ReminderCooldown, error) {
	now := time.Now()

	iter := r.client.Collection("reminderCooldowns").
		Where("userId", "==", userID).
		Where("expiresAt", ">", now).
		OrderBy("expiresAt", firestore.Desc).
		Limit(1).
		Documents(ctx)

	doc, err := iter.Next()
	if err == iterator.Done {
		return nil, nil // No active cooldown
	}
	if err != nil {
		return nil, err
	}

	var cooldown models.ReminderCooldown
	if err := doc.DataTo(&cooldown); err != nil {
		return nil, err
	}

	return &cooldown, nil
}

// CleanupExpiredCooldowns removes expired cooldowns (optional cleanup)
func (r *CooldownRepository) CleanupExpiredCooldowns(ctx context.Context) error {
	now := time.Now()

	iter := r.client.Collection("reminderCooldowns").
		Where("expiresAt", "<", now).
		Documents(ctx)

	batch := r.client.Batch()
	count := 0

	for {
		doc, err := iter.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return err
		}

		batch.Delete(doc.Ref)
		count++

		// Firestore batch limit is 500
		if count >= 500 {
			if _, err := batch.Commit(ctx); err != nil {
				return err
			}
			batch = r.client.Batch()
			count = 0
		}
	}

	if count > 0 {
		_, err := batch.Commit(ctx)
		return err
	}

	return nil
}
