package service

import (
	"context"
	"errors"
	"log"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
	"wcircle.app/watchcircle/internal/model"
	"wcircle.app/watchcircle/internal/repository"
	"wcircle.app/watchcircle/pkg/apperror"
)

type RegisterInput struct {
	Username    string
	Email       string
	Password    string
	DisplayName string
	IsPrivate   bool
}

type LoginInput struct {
	Email    string
	Password string
}

type AuthResponse struct {
	Token     string      `json:"token"`
	ExpiresAt time.Time   `json:"expires_at"`
	User      *model.User `json:"user"`
}

type AuthService interface {
	Register(ctx context.Context, input RegisterInput) (*AuthResponse, error)
	Login(ctx context.Context, input LoginInput) (*AuthResponse, error)
}

type authService struct {
	userRepo repository.UserRepository
	search   SearchService
	secret   string
	tokenTTL time.Duration
}

func NewAuthService(userRepo repository.UserRepository, search SearchService, secret string) AuthService {
	if secret == "" {
		secret = "12345"
	}

	return &authService{
		userRepo: userRepo,
		search:   search,
		secret:   secret,
		tokenTTL: 72 * time.Hour,
	}
}

func (s *authService) Register(ctx context.Context, input RegisterInput) (*AuthResponse, error) {
	if existing, err := s.userRepo.FindByEmail(ctx, input.Email); err == nil && existing != nil {
		return nil, apperror.New(400, "email already registered", apperror.ErrBadRequest)
	}
	if existing, err := s.userRepo.FindByUsername(ctx, input.Username); err == nil && existing != nil {
		return nil, apperror.New(400, "username already taken", apperror.ErrBadRequest)
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(input.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}

	displayName := input.DisplayName
	if displayName == "" {
		displayName = input.Username
	}

	user := &model.User{
		Username:     input.Username,
		Email:        input.Email,
		PasswordHash: string(hashed),
		IsPrivate:    input.IsPrivate,
		Profile:      &model.Profile{DisplayName: displayName},
	}
	if err := s.userRepo.Create(ctx, user); err != nil {
		return nil, err
	}

	// Search indexing is best-effort; registration already committed.
	if s.search != nil {
		if err := s.search.IndexUser(user); err != nil {
			log.Printf("register: failed to index user %s: %v", user.ID, err)
		}
	}

	return s.buildAuthResponse(user)
}

func (s *authService) Login(ctx context.Context, input LoginInput) (*AuthResponse, error) {
	user, err := s.userRepo.FindByEmail(ctx, input.Email)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperror.New(401, "invalid credentials", apperror.ErrUnauthorized)
		}
		return nil, err
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(input.Password)); err != nil {
		return nil, apperror.New(401, "invalid credentials", apperror.ErrUnauthorized)
	}

	return s.buildAuthResponse(user)
}

func (s *authService) buildAuthResponse(user *model.User) (*AuthResponse, error) {
	expiresAt := time.Now().Add(s.tokenTTL)

	claims := jwt.RegisteredClaims{
		Subject:   user.ID.String(),
		ExpiresAt: jwt.NewNumericDate(expiresAt),
		IssuedAt:  jwt.NewNumericDate(time.Now()),
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString([]byte(s.secret))
	if err != nil {
		return nil, err
	}

	return &AuthResponse{
		Token:     signed,
		ExpiresAt: expiresAt,
		User:      user,
	}, nil
}
