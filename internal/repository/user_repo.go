package repository

import (
	"context"
	"errors"
	"strings"
	"time"

	"cloud.google.com/go/firestore"
	"github.com/sandy2008/recovery-compass/internal/config"
	"github.com/sandy2008/recovery-compass/internal/models"
	"google.golang.org/api/iterator"
)

type UserRepository struct {
	client *firestore.Client
}

func NewUserRepository() *UserRepository {
	return &UserRepository{
		client: config.FirestoreClient,
	}
}

// CreateUser creates a new user profile in Firestore
func (r *UserRepository) CreateUser(ctx context.Context, user *models.UserProfile) error {
	_, err := r.client.Collection("users").Doc(user.UserID).Set(ctx, user)
	return err
}

// GetUserByID retrieves a user profile by their ID
func (r *UserRepository) GetUserByID(ctx context.Context, userID string) (*models.UserProfile, error) {
	doc, err := r.client.Collection("users").Doc(userID).Get(ctx)
	if err != nil {
		return nil, err
	}

	var user models.UserProfile
	if err := doc.DataTo(&user); err != nil {
		return nil, err
	}

	return &user, nil
}

// GetUserByEmail retrieves a user profile by email (lowercased before storage)
func (r *UserRepository) GetUserByEmail(ctx context.Context, email string) (*models.UserProfile, error) {
	iter := r.client.Collection("users").Where("email", "==", strings.ToLower(email)).Limit(1).Documents(ctx)
	doc, err := iter.Next()
	if err == iterator.Done {
		return nil, errors.New("user not found")
	}
	if err != nil {
		return nil, err
	}

	var user models.UserProfile
	if err := doc.DataTo(&user); err != nil {
		return nil, err
	}

	return &user, nil
}

// UpdateProfile updates the mutable profile fields
func (r *UserRepository) UpdateProfile(ctx context.Context, userID, name, surgeryType, surgeryDate string) error {
	_, err := r.client.Collection("users").Doc(userID).Update(ctx, []firestore.Update{
		{Path: "name", Value: name},
		{Path: "surgeryType", Value: surgeryType},
		{Path: "surgeryDate", Value: surgeryDate},
		{Path: "updatedAt", Value: time.Now()},
	})
	return err
}

// UpdateFCMToken updates the user's FCM token
func (r *UserRepository) UpdateFCMToken(ctx context.Context, userID, fcmToken string) error {
	_, err := r.client.Collection("users").Doc(userID).Update(ctx, []firestore.Update{
		{Path: "fcmToken", Value: fcmToken},
	})
	return err
}
