package repository

import (
	"context"
	"time"

	"proposal-market/internal/models"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// CreateProposal creates a new proposal draft
func (r *Repository) CreateProposal(ctx context.Context, proposal *models.Proposal) error {
	return r.db.WithContext(ctx).Create(proposal).Error
}

// GetProposalByID retrieves a proposal with its allow-list
func (r *Repository) GetProposalByID(ctx context.Context, id uuid.UUID) (*models.Proposal, error) {
	var proposal models.Proposal
	err := r.db.WithContext(ctx).
		Preload("TargetBuyers").
		Where("id = ?", id).
		First(&proposal).Error
	if err != nil {
		return nil, translateError(err)
	}
	return &proposal, nil
}

// SaveProposal persists a mutated proposal under the optimistic version
// check. The read-compute-write cycle of a transition is one logical unit:
// if the row changed since it was loaded, no rows match and ErrConflict is
// returned instead of silently overwriting the concurrent transition.
func (r *Repository) SaveProposal(ctx context.Context, proposal *models.Proposal) error {
	current := proposal.Version
	proposal.Version = current + 1
	res := r.db.WithContext(ctx).
		Model(&models.Proposal{}).
		Where("id = ? AND version = ?", proposal.ID, current).
		Select("*").
		Omit("id", "created_at", "TargetBuyers", "Seller").
		Updates(proposal)
	if res.Error != nil {
		proposal.Version = current
		return res.Error
	}
	if res.RowsAffected == 0 {
		proposal.Version = current
		return ErrConflict
	}
	return nil
}

// DeleteProposal removes a proposal row and its allow-list entries
func (r *Repository) DeleteProposal(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("proposal_id = ?", id).Delete(&models.ProposalTarget{}).Error; err != nil {
			return err
		}
		return tx.Where("id = ?", id).Delete(&models.Proposal{}).Error
	})
}

// AddProposalTargets appends buyers to the allow-list, skipping duplicates
func (r *Repository) AddProposalTargets(ctx context.Context, proposalID uuid.UUID, buyerIDs []uint) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		for _, buyerID := range buyerIDs {
			var count int64
			if err := tx.Model(&models.ProposalTarget{}).
				Where("proposal_id = ? AND buyer_id = ?", proposalID, buyerID).
				Count(&count).Error; err != nil {
				return err
			}
			if count > 0 {
				continue
			}
			target := models.ProposalTarget{
				ProposalID: proposalID,
				BuyerID:    buyerID,
				SentAt:     time.Now(),
			}
			if err := tx.Create(&target).Error; err != nil {
				return err
			}
		}
		return nil
	})
}

// IncrementProposalStats bumps the monotonic counters atomically
func (r *Repository) IncrementProposalStats(ctx context.Context, id uuid.UUID, views, interests, downloads int64) error {
	updates := map[string]interface{}{}
	if views != 0 {
		updates["view_count"] = gorm.Expr("view_count + ?", views)
	}
	if interests != 0 {
		updates["interest_count"] = gorm.Expr("interest_count + ?", interests)
	}
	if downloads != 0 {
		updates["download_count"] = gorm.Expr("download_count + ?", downloads)
	}
	if len(updates) == 0 {
		return nil
	}
	return r.db.WithContext(ctx).
		Model(&models.Proposal{}).
		Where("id = ?", id).
		Updates(updates).Error
}

// ProposalFilter narrows a proposal listing
type ProposalFilter struct {
	SellerID *uint
	BuyerID  *uint // restricts to proposals visible to this buyer
	Status   models.ProposalStatus
	Industry string
	DealType string
	Search   string
	Limit    int
	Offset   int
}

// ListProposals retrieves proposals matching the filter with a total count.
// When BuyerID is set the query is restricted to published proposals that
// are public, allow-listed for the buyer, or already have a submission
// thread with the buyer.
func (r *Repository) ListProposals(ctx context.Context, filter ProposalFilter) ([]*models.Proposal, int64, error) {
	q := r.db.WithContext(ctx).Model(&models.Proposal{})

	if filter.SellerID != nil {
		q = q.Where("seller_id = ?", *filter.SellerID)
	}
	if filter.BuyerID != nil {
		q = q.Where("status = ?", models.ProposalStatusPublished).
			Where(
				r.db.Where("is_public = ?", true).
					Or("id IN (?)", r.db.Model(&models.ProposalTarget{}).
						Select("proposal_id").
						Where("buyer_id = ?", *filter.BuyerID)).
					Or("id IN (?)", r.db.Model(&models.Submission{}).
						Select("proposal_id").
						Where("buyer_id = ?", *filter.BuyerID)),
			)
	}
	if filter.Status != "" {
		q = q.Where("status = ?", filter.Status)
	}
	if filter.Industry != "" {
		q = q.Where("industry = ?", filter.Industry)
	}
	if filter.DealType != "" {
		q = q.Where("deal_type = ?", filter.DealType)
	}
	if filter.Search != "" {
		like := "%" + filter.Search + "%"
		q = q.Where("title LIKE ? OR company_name LIKE ? OR executive_summary LIKE ?", like, like, like)
	}

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var proposals []*models.Proposal
	err := q.Preload("TargetBuyers").
		Order("created_at DESC").
		Limit(filter.Limit).
		Offset(filter.Offset).
		Find(&proposals).Error
	if err != nil {
		return nil, 0, err
	}
	return proposals, total, nil
}

// ListPendingDeleteRequests retrieves proposals with an unresolved delete request
func (r *Repository) ListPendingDeleteRequests(ctx context.Context, limit, offset int) ([]*models.Proposal, error) {
	var proposals []*models.Proposal
	err := r.db.WithContext(ctx).
		Where("delete_requested = ? AND delete_approved_by IS NULL", true).
		Order("delete_requested_at ASC").
		Limit(limit).
		Offset(offset).
		Find(&proposals).Error
	if err != nil {
		return nil, err
	}
	return proposals, nil
}
