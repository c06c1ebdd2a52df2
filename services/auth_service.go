package services

import (
	"context"
	"strings"
	"time"

	"github.com/go-faster/errors"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"github.com/restaurant-oms/oms-api/models"
)

const (
	minPasswordLength = 6
	minUsernameLength = 3
	maxUsernameLength = 50
)

// AuthResult is returned by a successful login or registration.
type AuthResult struct {
	Token     string       `json:"token"`
	ExpiresAt time.Time    `json:"expiresAt"`
	User      *models.User `json:"user"`
}

// AuthService manages staff accounts and issues access tokens.
type AuthService struct {
	db     *gorm.DB
	tokens *TokenManager
	lg     *zap.Logger
}

// NewAuthService creates an auth service.
func NewAuthService(db *gorm.DB, tokens *TokenManager, lg *zap.Logger) *AuthService {
	return &AuthService{db: db, tokens: tokens, lg: lg.Named("auth")}
}

// Tokens exposes the token manager used by the HTTP identity gate.
func (s *AuthService) Tokens() *TokenManager {
	return s.tokens
}

func validateCredentials(username, password string) error {
	if n := len(username); n < minUsernameLength || n > maxUsernameLength {
		return NewValidationError("INVALID_USERNAME", "Username must be between 3 and 50 characters")
	}
	return validatePassword(password)
}

func validatePassword(password string) error {
	if len(password) < minPasswordLength {
		return NewValidationError("INVALID_PASSWORD", "Password must be at least 6 characters")
	}
	if len(password) > 72 {
		return NewValidationError("INVALID_PASSWORD", "Password must be at most 72 characters")
	}
	return nil
}

// Register creates a staff account and signs it in.
func (s *AuthService) Register(ctx context.Context, username, password string) (*AuthResult, error) {
	username = strings.TrimSpace(username)
	if err := validateCredentials(username, password); err != nil {
		return nil, err
	}

	user, err := s.createUser(ctx, username, password, models.RoleStaff)
	if err != nil {
		return nil, err
	}

	s.lg.Info("User registered", zap.Uint("user_id", user.ID), zap.String("username", user.Username))
	return s.issue(user)
}

// Login checks a username and password and issues a token. Unknown users
// and wrong passwords are indistinguishable to the caller.
func (s *AuthService) Login(ctx context.Context, username, password string) (*AuthResult, error) {
	username = strings.TrimSpace(username)
	if username == "" || password == "" {
		return nil, NewValidationError("VALIDATION_ERROR", "Username and password are required")
	}

	var user models.User
	if err := s.db.WithContext(ctx).Where("username = ?", username).First(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			s.lg.Info("Login failed", zap.String("username", username), zap.String("reason", "unknown user"))
			return nil, NewInvalidCredentialsError()
		}
		return nil, internal(err, "Failed to load user")
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		s.lg.Info("Login failed", zap.String("username", username), zap.String("reason", "password mismatch"))
		return nil, NewInvalidCredentialsError()
	}

	return s.issue(&user)
}

// Authenticate verifies a bearer token.
func (s *AuthService) Authenticate(ctx context.Context, token string) (*Claims, error) {
	return s.tokens.Authenticate(ctx, token)
}

// GetUser returns a user by id.
func (s *AuthService) GetUser(ctx context.Context, id uint) (*models.User, error) {
	var user models.User
	if err := s.db.WithContext(ctx).First(&user, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, NewNotFoundError("USER_NOT_FOUND", "User not found")
		}
		return nil, internal(err, "Failed to load user")
	}
	return &user, nil
}

// ChangePassword replaces a user's password after checking the current one.
func (s *AuthService) ChangePassword(ctx context.Context, id uint, current, next string) error {
	user, err := s.GetUser(ctx, id)
	if err != nil {
		return err
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(current)); err != nil {
		return NewValidationError("INCORRECT_PASSWORD", "Current password is incorrect")
	}
	if err := validatePassword(next); err != nil {
		return err
	}

	hash, err := hashPassword(next)
	if err != nil {
		return err
	}
	if err := s.db.WithContext(ctx).Model(user).Update("password_hash", hash).Error; err != nil {
		return internal(err, "Failed to update password")
	}

	s.lg.Info("Password changed", zap.Uint("user_id", id))
	return nil
}

// EnsureAdmin creates the bootstrap admin account when it does not exist.
// Empty credentials disable the bootstrap.
func (s *AuthService) EnsureAdmin(ctx context.Context, username, password string) error {
	username = strings.TrimSpace(username)
	if username == "" || password == "" {
		return nil
	}

	var count int64
	if err := s.db.WithContext(ctx).Model(&models.User{}).Where("username = ?", username).Count(&count).Error; err != nil {
		return internal(err, "Failed to look up admin user")
	}
	if count > 0 {
		return nil
	}

	if err := validateCredentials(username, password); err != nil {
		return err
	}
	user, err := s.createUser(ctx, username, password, models.RoleAdmin)
	if err != nil {
		return err
	}

	s.lg.Info("Admin user created", zap.Uint("user_id", user.ID), zap.String("username", username))
	return nil
}

func (s *AuthService) createUser(ctx context.Context, username, password, role string) (*models.User, error) {
	var count int64
	if err := s.db.WithContext(ctx).Unscoped().Model(&models.User{}).Where("username = ?", username).Count(&count).Error; err != nil {
		return nil, internal(err, "Failed to look up user")
	}
	if count > 0 {
		return nil, NewConflictError("USERNAME_TAKEN", "Username already exists")
	}

	hash, err := hashPassword(password)
	if err != nil {
		return nil, err
	}

	user := models.User{Username: username, PasswordHash: hash, Role: role}
	if err := s.db.WithContext(ctx).Create(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, NewConflictError("USERNAME_TAKEN", "Username already exists")
		}
		return nil, internal(err, "Failed to create user")
	}
	return &user, nil
}

func (s *AuthService) issue(user *models.User) (*AuthResult, error) {
	token, expires, err := s.tokens.Issue(user)
	if err != nil {
		return nil, internal(err, "Failed to issue token")
	}
	return &AuthResult{Token: token, ExpiresAt: expires, User: user}, nil
}

func hashPassword(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", internal(err, "Failed to hash password")
	}
	return string(hash), nil
}
