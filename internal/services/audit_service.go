package services

import (
	"context"
	"log"

	"proposal-market/internal/models"
	"proposal-market/internal/repository"
)

// AuditService records actor actions. Recording is fire-and-forget: a
// failed write is logged and swallowed so it can never roll back the state
// transition it describes.
type AuditService struct {
	repo *repository.Repository
}

func NewAuditService(repo *repository.Repository) *AuditService {
	return &AuditService{repo: repo}
}

// Record writes one audit entry
func (s *AuditService) Record(ctx context.Context, actorID uint, action, resourceType, resourceID string, details models.JSONB) {
	entry := &models.AuditLog{
		ActorID:      actorID,
		Action:       action,
		ResourceType: resourceType,
		ResourceID:   resourceID,
		Details:      details,
	}
	if err := s.repo.CreateAuditLog(ctx, entry); err != nil {
		log.Printf("audit: failed to record %s on %s %s: %v", action, resourceType, resourceID, err)
	}
}

// List returns recent audit entries, newest first
func (s *AuditService) List(ctx context.Context, limit, offset int) ([]*models.AuditLog, error) {
	return s.repo.GetAuditLogs(ctx, limit, offset)
}
