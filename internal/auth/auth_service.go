// Package auth handles registration, login and token issuance. The
// core never verifies credentials itself; everything downstream
// trusts the user id the middleware extracts from the token.
package auth

import (
	"errors"
	"time"

	"social-service/internal/models"
	"social-service/internal/repository"
	"social-service/pkg/apperrors"

	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

type AuthService struct {
	users     repository.UserRepository
	jwtSecret string
	jwtExpire time.Duration
}

func NewAuthService(users repository.UserRepository, secret string, expire time.Duration) *AuthService {
	return &AuthService{
		users:     users,
		jwtSecret: secret,
		jwtExpire: expire,
	}
}

type RegisterRequest struct {
	Username string `json:"username" binding:"required"`
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required,min=6"`
}

type LoginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

type LoginResponse struct {
	Token string            `json:"token"`
	User  models.PublicUser `json:"user"`
}

func (s *AuthService) Register(req RegisterRequest) (*models.User, error) {
	exists, err := s.users.ExistsByEmail(req.Email)
	if err != nil {
		return nil, apperrors.Unavailable(err, "failed to check email")
	}
	if exists {
		return nil, apperrors.Conflict("email already registered")
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, apperrors.Wrap(apperrors.KindUnknown, err, "failed to hash password")
	}

	user := &models.User{
		Username: req.Username,
		Email:    req.Email,
		Password: string(hashed),
	}
	if err := s.users.Create(user); err != nil {
		return nil, apperrors.Unavailable(err, "failed to create user")
	}
	return user, nil
}

func (s *AuthService) Login(req LoginRequest) (*LoginResponse, error) {
	user, err := s.users.FindByEmail(req.Email)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.Forbidden("invalid credentials")
		}
		return nil, apperrors.Unavailable(err, "failed to load user")
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(req.Password)); err != nil {
		return nil, apperrors.Forbidden("invalid credentials")
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"user_id": user.ID,
		"email":   user.Email,
		"exp":     time.Now().Add(s.jwtExpire).Unix(),
	})

	signed, err := token.SignedString([]byte(s.jwtSecret))
	if err != nil {
		return nil, apperrors.Wrap(apperrors.KindUnknown, err, "failed to sign token")
	}

	return &LoginResponse{
		Token: signed,
		User:  user.Public(),
	}, nil
}
