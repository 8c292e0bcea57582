package repository

import (
	"context"
	"errors"

	"proposal-market/internal/models"

	"gorm.io/gorm"
)

var (
	// ErrNotFound means the entity does not exist.
	ErrNotFound = errors.New("repository: not found")
	// ErrConflict means a concurrent write was detected by the optimistic
	// version check. Callers reload and retry once before surfacing it.
	ErrConflict = errors.New("repository: concurrent write conflict")
)

type Repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// DB exposes the underlying handle for aggregate queries
func (r *Repository) DB() *gorm.DB {
	return r.db
}

func translateError(err error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return ErrNotFound
	}
	return err
}

// GetUserByID retrieves a user by ID
func (r *Repository) GetUserByID(ctx context.Context, userID uint) (*models.User, error) {
	var user models.User
	if err := r.db.WithContext(ctx).Where("id = ?", userID).First(&user).Error; err != nil {
		return nil, translateError(err)
	}
	return &user, nil
}

// GetUserByEmail retrieves a user by email
func (r *Repository) GetUserByEmail(ctx context.Context, email string) (*models.User, error) {
	var user models.User
	if err := r.db.WithContext(ctx).Where("email = ?", email).First(&user).Error; err != nil {
		return nil, translateError(err)
	}
	return &user, nil
}

// CreateUser creates a new user account
func (r *Repository) CreateUser(ctx context.Context, user *models.User) error {
	return r.db.WithContext(ctx).Create(user).Error
}

// GetActiveBuyers retrieves the active buyer accounts among the given IDs
func (r *Repository) GetActiveBuyers(ctx context.Context, ids []uint) ([]*models.User, error) {
	var buyers []*models.User
	err := r.db.WithContext(ctx).
		Where("id IN ? AND role = ? AND is_active = ?", ids, models.RoleBuyer, true).
		Find(&buyers).Error
	if err != nil {
		return nil, err
	}
	return buyers, nil
}

// ListBuyers retrieves active buyers for target selection
func (r *Repository) ListBuyers(ctx context.Context, search string, limit, offset int) ([]*models.User, int64, error) {
	q := r.db.WithContext(ctx).Model(&models.User{}).
		Where("role = ? AND is_active = ?", models.RoleBuyer, true)
	if search != "" {
		like := "%" + search + "%"
		q = q.Where("email LIKE ? OR first_name LIKE ? OR last_name LIKE ?", like, like, like)
	}

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var buyers []*models.User
	err := q.Order("created_at DESC").Limit(limit).Offset(offset).Find(&buyers).Error
	if err != nil {
		return nil, 0, err
	}
	return buyers, total, nil
}

// CreateAuditLog writes one audit record
func (r *Repository) CreateAuditLog(ctx context.Context, entry *models.AuditLog) error {
	return r.db.WithContext(ctx).Create(entry).Error
}

// GetAuditLogs retrieves recent audit records, newest first
func (r *Repository) GetAuditLogs(ctx context.Context, limit, offset int) ([]*models.AuditLog, error) {
	var logs []*models.AuditLog
	err := r.db.WithContext(ctx).
		Order("created_at DESC").
		Limit(limit).
		Offset(offset).
		Find(&logs).Error
	if err != nil {
		return nil, err
	}
	return logs, nil
}
