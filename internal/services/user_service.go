package services

import (
	"context"

	"proposal-market/internal/models"
	"proposal-market/internal/repository"
)

type UserService struct {
	repo *repository.Repository
}

func NewUserService(repo *repository.Repository) *UserService {
	return &UserService{repo: repo}
}

// GetProfile returns the caller's own account
func (s *UserService) GetProfile(ctx context.Context, identity models.Identity) (*models.User, error) {
	return s.repo.GetUserByID(ctx, identity.UserID)
}

// ListBuyers returns active buyer accounts for allow-list selection.
// Sellers and admins only.
func (s *UserService) ListBuyers(ctx context.Context, identity models.Identity, search string, limit, offset int) ([]*models.User, int64, error) {
	if identity.Role != models.RoleSeller && identity.Role != models.RoleAdmin {
		return nil, 0, ErrAuthorizationDenied
	}
	return s.repo.ListBuyers(ctx, search, limit, offset)
}
