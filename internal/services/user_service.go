package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"golang.org/x/crypto/bcrypt"

	"github.com/Dias221467/Questline/internal/models"
	"github.com/Dias221467/Questline/internal/repository"
	"github.com/sirupsen/logrus"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// UserService encapsulates the business logic for user operations.
type UserService struct {
	repo UserStore
	cost int
}

// NewUserService creates a new instance of UserService.
func NewUserService(repo UserStore) *UserService {
	return &UserService{
		repo: repo,
		cost: bcrypt.DefaultCost,
	}
}

// WithHashCost lowers the bcrypt cost, for tests.
func (s *UserService) WithHashCost(cost int) *UserService {
	s.cost = cost
	return s
}

// RegisterUser registers a new user after hashing their password.
func (s *UserService) RegisterUser(ctx context.Context, in SignUpInput) (*models.User, error) {
	in.Email = strings.ToLower(strings.TrimSpace(in.Email))
	if err := validateStruct(in, "invalid sign-up"); err != nil {
		logrus.WithError(err).Warn("Rejected registration payload")
		return nil, err
	}

	// Hash the user's password.
	hashedPwd, err := bcrypt.GenerateFromPassword([]byte(in.Password), s.cost)
	if err != nil {
		logrus.WithError(err).Error("Password hashing failed")
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	user := &models.User{
		Email:          in.Email,
		Name:           strings.TrimSpace(in.Name),
		HashedPassword: string(hashedPwd),
		Role:           models.RoleUser,
	}

	createdUser, err := s.repo.CreateUser(ctx, user)
	if err != nil {
		if errors.Is(err, repository.ErrConflict) {
			logrus.WithField("email", in.Email).Warn("Email already in use")
		}
		return nil, fmt.Errorf("failed to register user: %w", err)
	}

	logrus.WithFields(logrus.Fields{
		"userID": createdUser.ID.Hex(),
		"role":   createdUser.Role,
	}).Info("User registered successfully")
	return createdUser, nil
}

// AuthenticateUser verifies the email and password and returns the user if credentials are valid.
func (s *UserService) AuthenticateUser(ctx context.Context, email, password string) (*models.User, error) {
	email = strings.ToLower(strings.TrimSpace(email))

	user, err := s.repo.GetUserByEmail(ctx, email)
	if err != nil {
		logrus.WithField("email", email).Warn("User not found")
		return nil, ErrInvalidCredential
	}

	// Compare the provided password with the hashed password.
	if err := bcrypt.CompareHashAndPassword([]byte(user.HashedPassword), []byte(password)); err != nil {
		logrus.WithField("email", email).Warn("Invalid credentials")
		return nil, ErrInvalidCredential
	}

	logrus.WithField("userID", user.ID.Hex()).Info("User authenticated successfully")
	return user, nil
}

// GetUser retrieves a user by their ID.
func (s *UserService) GetUser(ctx context.Context, id primitive.ObjectID) (*models.User, error) {
	user, err := s.repo.GetUserByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to get user: %w", err)
	}
	return user, nil
}

// UpdateLastActive stamps the user's latest authenticated request.
func (s *UserService) UpdateLastActive(ctx context.Context, id primitive.ObjectID) error {
	return s.repo.UpdateLastActive(ctx, id, time.Now())
}

func (s *UserService) ListUserIDs(ctx context.Context) ([]primitive.ObjectID, error) {
	return s.repo.ListUserIDs(ctx)
}
