package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v4"
	"golang.org/x/crypto/bcrypt"
)

const (
	RoleAdmin     = "admin"
	adminUserID   = 1
	tokenLifetime = 24 * time.Hour
	bcryptCost    = 12
)

type AuthService interface {
	Login(ctx context.Context, input LoginInput) (string, error)
}

type LoginInput struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// AdminCredentials is the single administrator account; PasswordHash is a bcrypt hash.
type AdminCredentials struct {
	Email        string
	PasswordHash string
}

type authService struct {
	admin     AdminCredentials
	jwtSecret []byte
}

func NewAuthService(admin AdminCredentials, jwtSecret string) AuthService {
	return &authService{admin: admin, jwtSecret: []byte(jwtSecret)}
}

// Login checks the administrator credentials and returns a signed token.
func (s *authService) Login(ctx context.Context, input LoginInput) (string, error) {
	if s.admin.Email == "" || s.admin.PasswordHash == "" {
		return "", ErrLoginDisabled
	}
	if !strings.EqualFold(strings.TrimSpace(input.Email), s.admin.Email) {
		return "", ErrInvalidCredentials
	}

	err := bcrypt.CompareHashAndPassword([]byte(s.admin.PasswordHash), []byte(input.Password))
	if err != nil {
		if errors.Is(err, bcrypt.ErrMismatchedHashAndPassword) {
			return "", ErrInvalidCredentials
		}
		return "", fmt.Errorf("failed to compare password hash: %w", err)
	}

	now := timeNow()
	claims := jwt.MapClaims{
		"user_id": adminUserID,
		"role":    RoleAdmin,
		"email":   s.admin.Email,
		"exp":     now.Add(tokenLifetime).Unix(),
		"iat":     now.Unix(),
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.jwtSecret)
	if err != nil {
		return "", fmt.Errorf("failed to sign token: %w", err)
	}
	return token, nil
}

// HashPassword produces the bcrypt hash expected in ADMIN_PASSWORD_HASH.
func HashPassword(password string) (string, error) {
	if password == "" {
		return "", fmt.Errorf("%w: password must not be empty", ErrValidationFailed)
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcryptCost)
	if err != nil {
		return "", fmt.Errorf("failed to hash password: %w", err)
	}
	return string(hash), nil
}
