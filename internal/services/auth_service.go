package services

import (
	"context"
	"errors"

	"proposal-market/internal/auth"
	"proposal-market/internal/models"
	"proposal-market/internal/repository"

	"golang.org/x/crypto/bcrypt"
)

var (
	// ErrEmailTaken means the email is already registered.
	ErrEmailTaken = errors.New("email already registered")
	// ErrInvalidCredentials means the email/password pair does not match an
	// active account.
	ErrInvalidCredentials = errors.New("invalid credentials")
)

type AuthService struct {
	repo *repository.Repository
}

func NewAuthService(repo *repository.Repository) *AuthService {
	return &AuthService{repo: repo}
}

// Register creates a buyer or seller account. Admin accounts are provisioned
// out of band, never through the public endpoint.
func (s *AuthService) Register(ctx context.Context, req *models.RegisterRequest) (*models.User, string, error) {
	if _, err := s.repo.GetUserByEmail(ctx, req.Email); err == nil {
		return nil, "", ErrEmailTaken
	} else if !errors.Is(err, repository.ErrNotFound) {
		return nil, "", err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, "", err
	}

	user := &models.User{
		Email:        req.Email,
		PasswordHash: string(hash),
		Role:         models.UserRole(req.Role),
		FirstName:    req.FirstName,
		LastName:     req.LastName,
		Company:      req.Company,
		Position:     req.Position,
		Phone:        req.Phone,
		IsActive:     true,
	}
	if err := s.repo.CreateUser(ctx, user); err != nil {
		return nil, "", err
	}

	token, err := auth.GenerateToken(user.ID, user.Email, string(user.Role))
	if err != nil {
		return nil, "", err
	}
	return user, token, nil
}

// Login verifies credentials and issues a JWT
func (s *AuthService) Login(ctx context.Context, req *models.LoginRequest) (*models.User, string, error) {
	user, err := s.repo.GetUserByEmail(ctx, req.Email)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, "", ErrInvalidCredentials
		}
		return nil, "", err
	}
	if !user.IsActive {
		return nil, "", ErrInvalidCredentials
	}
	if bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.Password)) != nil {
		return nil, "", ErrInvalidCredentials
	}

	token, err := auth.GenerateToken(user.ID, user.Email, string(user.Role))
	if err != nil {
		return nil, "", err
	}
	return user, token, nil
}
