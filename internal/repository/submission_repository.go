package repository

import (
	"context"

	"proposal-market/internal/models"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// CreateSubmission creates a new submission thread
func (r *Repository) CreateSubmission(ctx context.Context, sub *models.Submission) error {
	return r.db.WithContext(ctx).Create(sub).Error
}

// GetSubmissionByID retrieves a submission with its interaction log
func (r *Repository) GetSubmissionByID(ctx context.Context, id uuid.UUID) (*models.Submission, error) {
	var sub models.Submission
	err := r.db.WithContext(ctx).
		Preload("Interactions", func(db *gorm.DB) *gorm.DB {
			return db.Order("submission_interactions.created_at ASC")
		}).
		Where("id = ?", id).
		First(&sub).Error
	if err != nil {
		return nil, translateError(err)
	}
	return &sub, nil
}

// FindSubmission retrieves the unique thread for a (proposal, buyer) pair
func (r *Repository) FindSubmission(ctx context.Context, proposalID uuid.UUID, buyerID uint) (*models.Submission, error) {
	var sub models.Submission
	err := r.db.WithContext(ctx).
		Preload("Interactions").
		Where("proposal_id = ? AND buyer_id = ?", proposalID, buyerID).
		First(&sub).Error
	if err != nil {
		return nil, translateError(err)
	}
	return &sub, nil
}

// SaveSubmission persists a mutated submission together with newly appended
// interaction records in one transaction, under the optimistic version
// check. Either the status change and its evidence trail both commit, or
// neither does.
func (r *Repository) SaveSubmission(ctx context.Context, sub *models.Submission, appended []*models.SubmissionInteraction) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		current := sub.Version
		sub.Version = current + 1
		res := tx.Model(&models.Submission{}).
			Where("id = ? AND version = ?", sub.ID, current).
			Select("*").
			Omit("id", "created_at", "Interactions").
			Updates(sub)
		if res.Error != nil {
			sub.Version = current
			return res.Error
		}
		if res.RowsAffected == 0 {
			sub.Version = current
			return ErrConflict
		}
		for _, interaction := range appended {
			interaction.SubmissionID = sub.ID
			if err := tx.Create(interaction).Error; err != nil {
				return err
			}
		}
		return nil
	})
}

// CountInteractions counts log entries of one type for a submission
func (r *Repository) CountInteractions(ctx context.Context, submissionID uuid.UUID, itype models.InteractionType) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&models.SubmissionInteraction{}).
		Where("submission_id = ? AND type = ?", submissionID, itype).
		Count(&count).Error
	return count, err
}

// SubmissionFilter narrows a submission listing
type SubmissionFilter struct {
	BuyerID  *uint
	SellerID *uint
	Status   models.SubmissionStatus
	Limit    int
	Offset   int
}

// ListSubmissions retrieves submissions matching the filter, newest first
func (r *Repository) ListSubmissions(ctx context.Context, filter SubmissionFilter) ([]*models.Submission, int64, error) {
	q := r.db.WithContext(ctx).Model(&models.Submission{})

	if filter.BuyerID != nil {
		q = q.Where("buyer_id = ?", *filter.BuyerID)
	}
	if filter.SellerID != nil {
		q = q.Where("seller_id = ?", *filter.SellerID)
	}
	if filter.Status != "" {
		q = q.Where("status = ?", filter.Status)
	}

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var subs []*models.Submission
	err := q.Order("sent_at DESC").
		Limit(filter.Limit).
		Offset(filter.Offset).
		Find(&subs).Error
	if err != nil {
		return nil, 0, err
	}
	return subs, total, nil
}

// CountSubmissions counts threads for a seller in the given statuses
func (r *Repository) CountSubmissions(ctx context.Context, sellerID uint, statuses []models.SubmissionStatus) (int64, error) {
	q := r.db.WithContext(ctx).Model(&models.Submission{}).Where("seller_id = ?", sellerID)
	if len(statuses) > 0 {
		q = q.Where("status IN ?", statuses)
	}
	var count int64
	err := q.Count(&count).Error
	return count, err
}

// SellerEngagementTotals aggregates engagement numbers across a seller's threads
func (r *Repository) SellerEngagementTotals(ctx context.Context, sellerID uint) (avgEngagement, avgResponseTime float64, totalViews, totalDownloads int64, err error) {
	row := struct {
		AvgEngagement   float64
		AvgResponseTime float64
		TotalViews      int64
		TotalDownloads  int64
	}{}
	err = r.db.WithContext(ctx).
		Model(&models.Submission{}).
		Select("COALESCE(AVG(engagement_score), 0) AS avg_engagement, COALESCE(AVG(response_time), 0) AS avg_response_time, COALESCE(SUM(view_count), 0) AS total_views, COALESCE(SUM(download_count), 0) AS total_downloads").
		Where("seller_id = ?", sellerID).
		Scan(&row).Error
	return row.AvgEngagement, row.AvgResponseTime, row.TotalViews, row.TotalDownloads, err
}

// SellerStatusBreakdown counts a seller's threads per status
func (r *Repository) SellerStatusBreakdown(ctx context.Context, sellerID uint) (map[models.SubmissionStatus]int64, error) {
	var rows []struct {
		Status models.SubmissionStatus
		Count  int64
	}
	err := r.db.WithContext(ctx).
		Model(&models.Submission{}).
		Select("status, COUNT(*) AS count").
		Where("seller_id = ?", sellerID).
		Group("status").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}
	breakdown := make(map[models.SubmissionStatus]int64, len(rows))
	for _, row := range rows {
		breakdown[row.Status] = row.Count
	}
	return breakdown, nil
}

// CreateComment creates a comment on a submission thread
func (r *Repository) CreateComment(ctx context.Context, comment *models.Comment) error {
	return r.db.WithContext(ctx).Create(comment).Error
}

// GetCommentByID retrieves one comment
func (r *Repository) GetCommentByID(ctx context.Context, id uint) (*models.Comment, error) {
	var comment models.Comment
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&comment).Error; err != nil {
		return nil, translateError(err)
	}
	return &comment, nil
}

// UpdateComment persists comment flag changes
func (r *Repository) UpdateComment(ctx context.Context, comment *models.Comment) error {
	return r.db.WithContext(ctx).Save(comment).Error
}

// ListComments retrieves a submission's comments, newest first. Private
// comments are filtered to the viewer unless the viewer is an admin.
func (r *Repository) ListComments(ctx context.Context, submissionID uuid.UUID, viewer models.Identity, limit, offset int) ([]*models.Comment, int64, error) {
	q := r.db.WithContext(ctx).Model(&models.Comment{}).Where("submission_id = ?", submissionID)
	if viewer.Role != models.RoleAdmin {
		q = q.Where("is_private = ? OR author_id = ?", false, viewer.UserID)
	}

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var comments []*models.Comment
	err := q.Preload("Author").
		Order("created_at DESC").
		Limit(limit).
		Offset(offset).
		Find(&comments).Error
	if err != nil {
		return nil, 0, err
	}
	return comments, total, nil
}
