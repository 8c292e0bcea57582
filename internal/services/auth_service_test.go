package services

import (
	"context"
	"errors"
	"testing"

	"proposal-market/internal/auth"
	"proposal-market/internal/models"
	"proposal-market/internal/repository"
)

func TestRegisterAndLogin(t *testing.T) {
	auth.InitJWT("test-secret")
	db := setupTestDB(t)
	repo := repository.NewRepository(db)
	service := NewAuthService(repo)
	ctx := context.Background()

	req := &models.RegisterRequest{
		Email:     "buyer@example.com",
		Password:  "correct-horse",
		Role:      string(models.RoleBuyer),
		FirstName: "Ada",
		LastName:  "Lovelace",
	}

	user, token, err := service.Register(ctx, req)
	if err != nil {
		t.Fatalf("Register failed: %v", err)
	}
	if token == "" {
		t.Error("expected a token on registration")
	}
	if user.PasswordHash == req.Password {
		t.Error("password must not be stored in the clear")
	}

	if _, _, err := service.Register(ctx, req); !errors.Is(err, ErrEmailTaken) {
		t.Fatalf("expected ErrEmailTaken, got %v", err)
	}

	if _, _, err := service.Login(ctx, &models.LoginRequest{Email: req.Email, Password: "wrong"}); !errors.Is(err, ErrInvalidCredentials) {
		t.Fatalf("expected ErrInvalidCredentials for wrong password, got %v", err)
	}
	if _, _, err := service.Login(ctx, &models.LoginRequest{Email: "nobody@example.com", Password: "x"}); !errors.Is(err, ErrInvalidCredentials) {
		t.Fatalf("expected ErrInvalidCredentials for unknown email, got %v", err)
	}

	logged, token, err := service.Login(ctx, &models.LoginRequest{Email: req.Email, Password: req.Password})
	if err != nil {
		t.Fatalf("Login failed: %v", err)
	}
	if logged.ID != user.ID || token == "" {
		t.Error("expected the registered account and a fresh token")
	}

	// Deactivated accounts cannot log in.
	db.Model(&models.User{}).Where("id = ?", user.ID).Update("is_active", false)
	if _, _, err := service.Login(ctx, &models.LoginRequest{Email: req.Email, Password: req.Password}); !errors.Is(err, ErrInvalidCredentials) {
		t.Fatalf("expected ErrInvalidCredentials for inactive account, got %v", err)
	}
}
