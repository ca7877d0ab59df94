// internal/domain/user/service.go
package user

import (
	"errors"

	"github.com/your-org/storefront-backend/internal/config"
	"github.com/your-org/storefront-backend/internal/pkg/apperror"
	"github.com/your-org/storefront-backend/internal/pkg/auth"
	"gorm.io/gorm"
)

// Service handles user registration and authentication. Orders reference
// users only optionally; sessions are not tied to authentication.
type Service struct {
	db              *gorm.DB
	config          *config.Config
	passwordManager *auth.PasswordManager
	jwtManager      *auth.JWTManager
}

// NewService creates a new user service
func NewService(db *gorm.DB, cfg *config.Config) *Service {
	return &Service{
		db:              db,
		config:          cfg,
		passwordManager: auth.NewPasswordManager(cfg),
		jwtManager:      auth.NewJWTManager(cfg),
	}
}

// RegisterRequest represents user registration data
type RegisterRequest struct {
	Name     string `json:"name" binding:"required"`
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

// LoginRequest represents user login data
type LoginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

// Identity is the authenticated user identity exposed to collaborators.
type Identity struct {
	UserID  uint   `json:"user_id"`
	Name    string `json:"name"`
	Email   string `json:"email"`
	IsAdmin bool   `json:"is_admin"`
}

// AuthResponse represents authentication response
type AuthResponse struct {
	Identity    Identity `json:"identity"`
	AccessToken string   `json:"access_token"`
}

// Register creates a new user account and returns its identity with an
// access token.
func (s *Service) Register(req *RegisterRequest) (*AuthResponse, error) {
	var existing User
	result := s.db.Where("email = ?", req.Email).First(&existing)
	if result.Error == nil {
		return nil, apperror.Validation("email_taken", "user with this email already exists")
	}
	if !errors.Is(result.Error, gorm.ErrRecordNotFound) {
		return nil, apperror.Store(result.Error)
	}

	hashedPassword, err := s.passwordManager.HashPassword(req.Password)
	if err != nil {
		return nil, apperror.Validation("weak_password", err.Error())
	}

	u := User{
		Name:     req.Name,
		Email:    req.Email,
		Password: hashedPassword,
	}
	if err := s.db.Create(&u).Error; err != nil {
		return nil, apperror.Store(err)
	}

	return s.authResponse(&u)
}

// Authenticate verifies credentials and returns the user identity with an
// access token, or an auth error.
func (s *Service) Authenticate(req *LoginRequest) (*AuthResponse, error) {
	var u User
	err := s.db.Where("email = ?", req.Email).First(&u).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperror.Validation("invalid_credentials", "invalid email or password")
		}
		return nil, apperror.Store(err)
	}

	if err := s.passwordManager.VerifyPassword(req.Password, u.Password); err != nil {
		return nil, apperror.Validation("invalid_credentials", "invalid email or password")
	}

	return s.authResponse(&u)
}

func (s *Service) authResponse(u *User) (*AuthResponse, error) {
	token, err := s.jwtManager.GenerateAccessToken(u.ID, u.Email, u.IsAdmin)
	if err != nil {
		return nil, apperror.Store(err)
	}
	return &AuthResponse{
		Identity: Identity{
			UserID:  u.ID,
			Name:    u.Name,
			Email:   u.Email,
			IsAdmin: u.IsAdmin,
		},
		AccessToken: token,
	}, nil
}
