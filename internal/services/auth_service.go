package services

import (
	"context"
	"crypto/rand"
	"encoding/base64"
	"errors"
	"strings"
	"time"

	"github.com/sandy2008/recovery-compass/internal/models"
	"github.com/sandy2008/recovery-compass/internal/repository"
	"github.com/sandy2008/recovery-compass/pkg/utils"
	"golang.org/x/crypto/bcrypt"
)

type AuthService struct {
	userRepo *repository.UserRepository
}

func NewAuthService() *AuthService {
	return &AuthService{
		userRepo: repository.NewUserRepository(),
	}
}

// Register creates a new patient account with its profile document
func (s *AuthService) Register(ctx context.Context, req *models.RegisterRequest) (*models.AuthResponse, error) {
	if err := utils.ValidateName(req.Name); err != nil {
		return nil, err
	}
	if err := utils.ValidateEmail(req.Email); err != nil {
		return nil, err
	}
	if err := utils.ValidatePassword(req.Password); err != nil {
		return nil, err
	}
	if req.SurgeryDate != "" {
		if err := utils.ValidateISODate(req.SurgeryDate); err != nil {
			return nil, err
		}
	}

	email := strings.ToLower(req.Email)

	// Check if the email is already registered
	existingUser, _ := s.userRepo.GetUserByEmail(ctx, email)
	if existingUser != nil {
		return nil, errors.New("email already registered")
	}

	// Hash password
	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}

	userID := generateUserID()
	now := time.Now()

	user := &models.UserProfile{
		UserID:       userID,
		Name:         req.Name,
		Email:        email,
		PasswordHash: string(hashedPassword),
		SurgeryType:  req.SurgeryType,
		SurgeryDate:  req.SurgeryDate,
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	if err := s.userRepo.CreateUser(ctx, user); err != nil {
		return nil, err
	}

	token := generateToken()
	GetTokenStore().StoreToken(token, userID)

	return &models.AuthResponse{
		UserID: userID,
		Name:   req.Name,
		Email:  email,
		Token:  token,
	}, nil
}

// Login authenticates a user by email and password
func (s *AuthService) Login(ctx context.Context, req *models.LoginRequest) (*models.AuthResponse, error) {
	user, err := s.userRepo.GetUserByEmail(ctx, strings.ToLower(req.Email))
	if err != nil {
		return nil, errors.New("invalid email or password")
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.Password)); err != nil {
		return nil, errors.New("invalid email or password")
	}

	token := generateToken()
	GetTokenStore().StoreToken(token, user.UserID)

	return &models.AuthResponse{
		UserID: user.UserID,
		Name:   user.Name,
		Email:  user.Email,
		Token:  token,
	}, nil
}

// UpdateFCMToken updates the user's FCM token
func (s *AuthService) UpdateFCMToken(ctx context.Context, userID, fcmToken string) error {
	if fcmToken == "" {
		return errors.New("fcm token cannot be empty")
	}
	return s.userRepo.UpdateFCMToken(ctx, userID, fcmToken)
}

// Logout invalidates a user's token
func (s *AuthService) Logout(token string) {
	GetTokenStore().DeleteToken(token)
}

// Helper functions

func generateUserID() string {
	b := make([]byte, 16)
	rand.Read(b)
	return base64.URLEncoding.EncodeToString(b)
}

func generateToken() string {
	b := make([]byte, 32)
	rand.Read(b)
	return base64.URLEncoding.EncodeToString(b)
}
