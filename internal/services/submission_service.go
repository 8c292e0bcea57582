package services

import (
	"context"
	"errors"
	"time"

	"proposal-market/internal/models"
	"proposal-market/internal/repository"

	"github.com/google/uuid"
)

// setStatus applies a funnel transition and returns the status_change
// record for the interaction log, carrying where the thread came from,
// where it went and who moved it. A no-op transition returns nil.
func setStatus(sub *models.Submission, to models.SubmissionStatus, actorID uint, metadata models.JSONB) *models.SubmissionInteraction {
	if sub.Status == to {
		return nil
	}
	details := models.JSONB{
		"from":     string(sub.Status),
		"to":       string(to),
		"actor_id": actorID,
	}
	if len(metadata) > 0 {
		details["metadata"] = metadata
	}
	sub.Status = to
	return &models.SubmissionInteraction{Type: models.InteractionStatusChange, Details: details}
}

// markResponded records the first substantive buyer response
func markResponded(sub *models.Submission) {
	if sub.RespondedAt != nil {
		return
	}
	now := time.Now()
	sub.RespondedAt = &now
	sub.UpdateResponseTime()
}

type SubmissionService struct {
	repo  *repository.Repository
	audit *AuditService
}

func NewSubmissionService(repo *repository.Repository, audit *AuditService) *SubmissionService {
	return &SubmissionService{repo: repo, audit: audit}
}

// withRetry runs a load-mutate-save cycle under the optimistic version
// check, recomputing the engagement score from the interaction log before
// every save. The mutation returns the interactions it appends so the
// status change and its evidence commit together.
func (s *SubmissionService) withRetry(ctx context.Context, id uuid.UUID, mutate func(*models.Submission) ([]*models.SubmissionInteraction, error)) (*models.Submission, error) {
	for attempt := 0; ; attempt++ {
		sub, err := s.repo.GetSubmissionByID(ctx, id)
		if err != nil {
			return nil, err
		}
		appended, err := mutate(sub)
		if err != nil {
			return nil, err
		}

		if err := s.recomputeScore(ctx, sub, appended); err != nil {
			return nil, err
		}

		err = s.repo.SaveSubmission(ctx, sub, appended)
		if err == nil {
			return sub, nil
		}
		if !errors.Is(err, repository.ErrConflict) || attempt > 0 {
			return nil, err
		}
	}
}

func (s *SubmissionService) recomputeScore(ctx context.Context, sub *models.Submission, appended []*models.SubmissionInteraction) error {
	questions, err := s.repo.CountInteractions(ctx, sub.ID, models.InteractionQuestion)
	if err != nil {
		return err
	}
	interests, err := s.repo.CountInteractions(ctx, sub.ID, models.InteractionInterest)
	if err != nil {
		return err
	}
	for _, interaction := range appended {
		switch interaction.Type {
		case models.InteractionQuestion:
			questions++
		case models.InteractionInterest:
			interests++
		}
	}
	sub.RecomputeEngagementScore(int(questions), int(interests))
	return nil
}

// Get retrieves a submission visible to the caller. Contact payloads are
// redacted until the exchange has been approved.
func (s *SubmissionService) Get(ctx context.Context, identity models.Identity, id uuid.UUID) (*models.Submission, error) {
	sub, err := s.repo.GetSubmissionByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if !CanViewSubmission(identity, sub) {
		return nil, ErrAuthorizationDenied
	}
	redactContacts(sub)
	return sub, nil
}

func redactContacts(sub *models.Submission) {
	if sub.ContactApprovedAt == nil {
		sub.BuyerContact = models.ContactInfo{}
		sub.SellerContact = models.ContactInfo{}
	}
}

// RecordView registers a buyer viewing the proposal through this thread
func (s *SubmissionService) RecordView(ctx context.Context, identity models.Identity, id uuid.UUID) (*models.Submission, error) {
	return s.withRetry(ctx, id, func(sub *models.Submission) ([]*models.SubmissionInteraction, error) {
		if !IsSubmissionBuyer(identity, sub) {
			return nil, ErrAuthorizationDenied
		}
		if sub.Status.IsTerminal() {
			return nil, ErrTerminalState
		}
		now := time.Now()
		if sub.FirstViewedAt == nil {
			sub.FirstViewedAt = &now
		}
		sub.LastViewedAt = &now
		sub.ViewCount++
		appended := []*models.SubmissionInteraction{{Type: models.InteractionView}}
		// Only the first view moves the thread out of sent.
		if sub.Status == models.SubmissionStatusSent {
			if change := setStatus(sub, models.SubmissionStatusViewed, identity.UserID, nil); change != nil {
				appended = append(appended, change)
			}
		}
		return appended, nil
	})
}

// RecordDownload registers a document download by the buyer
func (s *SubmissionService) RecordDownload(ctx context.Context, identity models.Identity, id uuid.UUID) (*models.Submission, error) {
	sub, err := s.withRetry(ctx, id, func(sub *models.Submission) ([]*models.SubmissionInteraction, error) {
		if !IsSubmissionBuyer(identity, sub) {
			return nil, ErrAuthorizationDenied
		}
		if sub.Status.IsTerminal() {
			return nil, ErrTerminalState
		}
		sub.DownloadCount++
		return []*models.SubmissionInteraction{{Type: models.InteractionDownload}}, nil
	})
	if err != nil {
		return nil, err
	}
	if err := s.repo.IncrementProposalStats(ctx, sub.ProposalID, 0, 0, 1); err != nil {
		return nil, err
	}
	return sub, nil
}

// ExpressInterest records the buyer's interest level and feedback
func (s *SubmissionService) ExpressInterest(ctx context.Context, identity models.Identity, id uuid.UUID, req *models.InterestRequest) (*models.Submission, error) {
	if !ValidInvestmentCapacity(req.InvestmentCapacityMin, req.InvestmentCapacityMax) {
		return nil, &ValidationError{Fields: []FieldError{
			{Field: "investment_capacity_min", Message: "capacity range is invalid"},
		}}
	}
	sub, err := s.withRetry(ctx, id, func(sub *models.Submission) ([]*models.SubmissionInteraction, error) {
		if !IsSubmissionBuyer(identity, sub) {
			return nil, ErrAuthorizationDenied
		}
		if sub.Status.IsTerminal() {
			return nil, ErrTerminalState
		}
		sub.InterestLevel = models.InterestLevel(req.InterestLevel)
		sub.FeedbackComments = req.Comments
		if req.InvestmentCapacityMin != nil {
			sub.InvestmentCapacityMin.Decimal = *req.InvestmentCapacityMin
			sub.InvestmentCapacityMin.Valid = true
		}
		if req.InvestmentCapacityMax != nil {
			sub.InvestmentCapacityMax.Decimal = *req.InvestmentCapacityMax
			sub.InvestmentCapacityMax.Valid = true
		}
		markResponded(sub)
		// Interest always lands the thread on interested, no matter how
		// deep into the funnel it already was.
		appended := []*models.SubmissionInteraction{{
			Type:    models.InteractionInterest,
			Details: models.JSONB{"interest_level": req.InterestLevel},
		}}
		if change := setStatus(sub, models.SubmissionStatusInterested, identity.UserID, nil); change != nil {
			appended = append(appended, change)
		}
		return appended, nil
	})
	if err != nil {
		return nil, err
	}
	if err := s.repo.IncrementProposalStats(ctx, sub.ProposalID, 0, 1, 0); err != nil {
		return nil, err
	}
	s.audit.Record(ctx, identity.UserID, "submission.interest", "submission", id.String(),
		models.JSONB{"interest_level": req.InterestLevel})
	return sub, nil
}

// ExpressInterestInProposal records interest straight against a published
// proposal. Buyers discovering a public proposal have no thread yet, so
// one is opened on first contact; repeat calls reuse the existing thread.
func (s *SubmissionService) ExpressInterestInProposal(ctx context.Context, identity models.Identity, proposalID uuid.UUID, req *models.InterestRequest) (*models.Submission, error) {
	if identity.Role != models.RoleBuyer {
		return nil, ErrAuthorizationDenied
	}
	sub, err := s.repo.FindSubmission(ctx, proposalID, identity.UserID)
	if errors.Is(err, repository.ErrNotFound) {
		sub, err = s.openThread(ctx, identity, proposalID)
	}
	if err != nil {
		return nil, err
	}
	return s.ExpressInterest(ctx, identity, sub.ID, req)
}

func (s *SubmissionService) openThread(ctx context.Context, identity models.Identity, proposalID uuid.UUID) (*models.Submission, error) {
	proposal, err := s.repo.GetProposalByID(ctx, proposalID)
	if err != nil {
		return nil, err
	}
	if !CanViewProposal(identity, proposal, false) {
		return nil, ErrAuthorizationDenied
	}
	sub := &models.Submission{
		ID:         uuid.New(),
		ProposalID: proposal.ID,
		BuyerID:    identity.UserID,
		SellerID:   proposal.SellerID,
		Status:     models.SubmissionStatusSent,
		SentAt:     time.Now(),
		Version:    1,
	}
	if err := s.repo.CreateSubmission(ctx, sub); err != nil {
		// A concurrent open may have won the unique (proposal, buyer) index.
		if existing, findErr := s.repo.FindSubmission(ctx, proposalID, identity.UserID); findErr == nil {
			return existing, nil
		}
		return nil, err
	}
	s.audit.Record(ctx, identity.UserID, "submission.open", "submission", sub.ID.String(),
		models.JSONB{"proposal_id": proposalID.String()})
	return sub, nil
}

// AddComment posts a comment on the thread. A buyer question moves the
// thread into questioned and counts toward the engagement score.
func (s *SubmissionService) AddComment(ctx context.Context, identity models.Identity, id uuid.UUID, req *models.AddCommentRequest) (*models.Comment, error) {
	var comment *models.Comment
	_, err := s.withRetry(ctx, id, func(sub *models.Submission) ([]*models.SubmissionInteraction, error) {
		if !CanViewSubmission(identity, sub) {
			return nil, ErrAuthorizationDenied
		}
		if sub.Status.IsTerminal() {
			return nil, ErrTerminalState
		}
		// The comment row is written once; a conflicting save re-runs the
		// transition against fresh state without duplicating it.
		if comment == nil {
			comment = &models.Comment{
				SubmissionID:     sub.ID,
				AuthorID:         identity.UserID,
				Content:          req.Content,
				Type:             models.CommentType(req.Type),
				RequiresResponse: req.RequiresResponse,
				IsPrivate:        req.IsPrivate,
			}
			if err := s.repo.CreateComment(ctx, comment); err != nil {
				return nil, err
			}
		}

		if IsSubmissionBuyer(identity, sub) && comment.Type == models.CommentQuestion {
			markResponded(sub)
			appended := []*models.SubmissionInteraction{{
				Type:    models.InteractionQuestion,
				Details: models.JSONB{"comment_id": comment.ID},
			}}
			// A question only moves a thread the buyer has just viewed.
			if sub.Status == models.SubmissionStatusViewed {
				if change := setStatus(sub, models.SubmissionStatusQuestioned, identity.UserID, nil); change != nil {
					appended = append(appended, change)
				}
			}
			return appended, nil
		}
		return nil, nil
	})
	if err != nil {
		return nil, err
	}
	return comment, nil
}

// ReplyToComment answers an existing comment on the thread
func (s *SubmissionService) ReplyToComment(ctx context.Context, identity models.Identity, id uuid.UUID, parentID uint, req *models.ReplyRequest) (*models.Comment, error) {
	sub, err := s.repo.GetSubmissionByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if !CanViewSubmission(identity, sub) {
		return nil, ErrAuthorizationDenied
	}
	parent, err := s.repo.GetCommentByID(ctx, parentID)
	if err != nil {
		return nil, err
	}
	if parent.SubmissionID != sub.ID {
		return nil, repository.ErrNotFound
	}

	reply := &models.Comment{
		SubmissionID: sub.ID,
		AuthorID:     identity.UserID,
		Content:      req.Content,
		Type:         models.CommentClarification,
		ParentID:     &parent.ID,
	}
	if err := s.repo.CreateComment(ctx, reply); err != nil {
		return nil, err
	}

	if parent.RequiresResponse && !parent.IsAnswered && identity.UserID != parent.AuthorID {
		parent.IsAnswered = true
		if err := s.repo.UpdateComment(ctx, parent); err != nil {
			return nil, err
		}
	}
	return reply, nil
}

// ListComments returns the thread's comments visible to the caller
func (s *SubmissionService) ListComments(ctx context.Context, identity models.Identity, id uuid.UUID, limit, offset int) ([]*models.Comment, int64, error) {
	sub, err := s.repo.GetSubmissionByID(ctx, id)
	if err != nil {
		return nil, 0, err
	}
	if !CanViewSubmission(identity, sub) {
		return nil, 0, ErrAuthorizationDenied
	}
	return s.repo.ListComments(ctx, id, identity, limit, offset)
}

// SignNda records the buyer's NDA signature. The signature is recorded at
// most once and unlocks the contact-exchange protocol.
func (s *SubmissionService) SignNda(ctx context.Context, identity models.Identity, id uuid.UUID, req *models.SignNdaRequest, ipAddress, userAgent string) (*models.Submission, error) {
	if !req.Agreed {
		return nil, &ValidationError{Fields: []FieldError{
			{Field: "agreed", Message: "the agreement must be accepted"},
		}}
	}
	sub, err := s.withRetry(ctx, id, func(sub *models.Submission) ([]*models.SubmissionInteraction, error) {
		if !IsSubmissionBuyer(identity, sub) {
			return nil, ErrAuthorizationDenied
		}
		if sub.Status.IsTerminal() {
			return nil, ErrTerminalState
		}
		if sub.NdaSignedAt != nil {
			return nil, ErrNdaAlreadySigned
		}
		now := time.Now()
		sub.NdaSignedAt = &now
		sub.NdaIPAddress = ipAddress
		sub.NdaUserAgent = userAgent
		// Signing alone is not a buyer response; RespondedAt stays until a
		// question or an expression of interest arrives.
		var appended []*models.SubmissionInteraction
		if change := setStatus(sub, models.SubmissionStatusNdaSigned, identity.UserID, models.JSONB{"signature": req.DigitalSignature}); change != nil {
			appended = append(appended, change)
		}
		return appended, nil
	})
	if err != nil {
		return nil, err
	}
	s.audit.Record(ctx, identity.UserID, "submission.nda_signed", "submission", id.String(), nil)
	return sub, nil
}

// RequestContactExchange files the buyer's request to exchange contact
// details, moving the thread to detail_requested while the seller decides.
// It requires a signed NDA and may be filed once.
func (s *SubmissionService) RequestContactExchange(ctx context.Context, identity models.Identity, id uuid.UUID, req *models.ContactExchangeRequest) (*models.Submission, error) {
	sub, err := s.withRetry(ctx, id, func(sub *models.Submission) ([]*models.SubmissionInteraction, error) {
		if !IsSubmissionBuyer(identity, sub) {
			return nil, ErrAuthorizationDenied
		}
		if sub.Status.IsTerminal() {
			return nil, ErrTerminalState
		}
		if err := RequireSignedNDA(sub); err != nil {
			return nil, err
		}
		if sub.ContactApprovedAt != nil {
			return nil, ErrAlreadyApproved
		}
		if sub.ContactRequestedAt != nil {
			return nil, ErrAlreadyRequested
		}
		now := time.Now()
		sub.ContactRequestedAt = &now
		appended := []*models.SubmissionInteraction{{
			Type:    models.InteractionContactRequest,
			Details: models.JSONB{"message": req.Message},
		}}
		if change := setStatus(sub, models.SubmissionStatusDetailRequested, identity.UserID, nil); change != nil {
			appended = append(appended, change)
		}
		return appended, nil
	})
	if err != nil {
		return nil, err
	}
	s.audit.Record(ctx, identity.UserID, "submission.contact_requested", "submission", id.String(), nil)
	return sub, nil
}

// ApproveContactExchange is the thread seller's approval of a pending
// contact request. Nobody else, admins included, may release the payloads;
// both parties' contacts become visible from here on.
func (s *SubmissionService) ApproveContactExchange(ctx context.Context, identity models.Identity, id uuid.UUID, req *models.ApproveContactRequest) (*models.Submission, error) {
	sub, err := s.withRetry(ctx, id, func(sub *models.Submission) ([]*models.SubmissionInteraction, error) {
		if !IsSubmissionSeller(identity, sub) {
			return nil, ErrAuthorizationDenied
		}
		if sub.Status.IsTerminal() {
			return nil, ErrTerminalState
		}
		if err := RequireSignedNDA(sub); err != nil {
			return nil, err
		}
		if sub.ContactRequestedAt == nil {
			return nil, ErrNoRequestPending
		}
		if sub.ContactApprovedAt != nil {
			return nil, ErrAlreadyApproved
		}

		buyer, err := s.repo.GetUserByID(ctx, sub.BuyerID)
		if err != nil {
			return nil, err
		}
		now := time.Now()
		sub.ContactApprovedAt = &now
		sub.ContactApprovedBy = &identity.UserID
		sub.SellerContact = req.SellerContact
		sub.BuyerContact = models.ContactInfo{
			Email:    buyer.Email,
			Phone:    buyer.Phone,
			Company:  buyer.Company,
			Position: buyer.Position,
		}
		var appended []*models.SubmissionInteraction
		if change := setStatus(sub, models.SubmissionStatusContactExchanged, identity.UserID, nil); change != nil {
			appended = append(appended, change)
		}
		return appended, nil
	})
	if err != nil {
		return nil, err
	}
	s.audit.Record(ctx, identity.UserID, "submission.contact_approved", "submission", id.String(), nil)
	return sub, nil
}

// Close moves the thread into a terminal state. Buyers may only reject;
// sellers and admins may close a deal, reject or archive.
func (s *SubmissionService) Close(ctx context.Context, identity models.Identity, id uuid.UUID, req *models.CloseSubmissionRequest) (*models.Submission, error) {
	target := models.SubmissionStatus(req.Status)
	if !target.IsTerminal() {
		return nil, &ValidationError{Fields: []FieldError{
			{Field: "status", Message: "status must be terminal"},
		}}
	}
	sub, err := s.withRetry(ctx, id, func(sub *models.Submission) ([]*models.SubmissionInteraction, error) {
		switch {
		case identity.Role == models.RoleAdmin:
		case IsSubmissionSeller(identity, sub):
		case IsSubmissionBuyer(identity, sub):
			if target != models.SubmissionStatusRejected {
				return nil, ErrAuthorizationDenied
			}
		default:
			return nil, ErrAuthorizationDenied
		}
		if sub.Status.IsTerminal() {
			return nil, ErrTerminalState
		}
		now := time.Now()
		sub.ClosedAt = &now
		var appended []*models.SubmissionInteraction
		if change := setStatus(sub, target, identity.UserID, models.JSONB{"reason": req.Reason}); change != nil {
			appended = append(appended, change)
		}
		return appended, nil
	})
	if err != nil {
		return nil, err
	}
	s.audit.Record(ctx, identity.UserID, "submission.close", "submission", id.String(),
		models.JSONB{"status": req.Status, "reason": req.Reason})
	return sub, nil
}

// List returns the caller's submission threads
func (s *SubmissionService) List(ctx context.Context, identity models.Identity, status string, limit, offset int) ([]*models.Submission, int64, error) {
	filter := repository.SubmissionFilter{
		Status: models.SubmissionStatus(status),
		Limit:  limit,
		Offset: offset,
	}
	switch identity.Role {
	case models.RoleBuyer:
		filter.BuyerID = &identity.UserID
	case models.RoleSeller:
		filter.SellerID = &identity.UserID
	case models.RoleAdmin:
		// unrestricted
	default:
		return nil, 0, ErrAuthorizationDenied
	}
	subs, total, err := s.repo.ListSubmissions(ctx, filter)
	if err != nil {
		return nil, 0, err
	}
	for _, sub := range subs {
		redactContacts(sub)
	}
	return subs, total, nil
}

// SellerAnalytics aggregates engagement across the seller's threads
func (s *SubmissionService) SellerAnalytics(ctx context.Context, identity models.Identity, sellerID uint) (*models.SubmissionAnalytics, error) {
	if identity.Role != models.RoleAdmin {
		if identity.Role != models.RoleSeller || identity.UserID != sellerID {
			return nil, ErrAuthorizationDenied
		}
	}

	total, err := s.repo.CountSubmissions(ctx, sellerID, nil)
	if err != nil {
		return nil, err
	}
	closedDeals, err := s.repo.CountSubmissions(ctx, sellerID, []models.SubmissionStatus{models.SubmissionStatusDealClosed})
	if err != nil {
		return nil, err
	}
	terminal, err := s.repo.CountSubmissions(ctx, sellerID, []models.SubmissionStatus{
		models.SubmissionStatusDealClosed,
		models.SubmissionStatusRejected,
		models.SubmissionStatusArchived,
	})
	if err != nil {
		return nil, err
	}
	avgEngagement, avgResponseTime, totalViews, totalDownloads, err := s.repo.SellerEngagementTotals(ctx, sellerID)
	if err != nil {
		return nil, err
	}
	breakdown, err := s.repo.SellerStatusBreakdown(ctx, sellerID)
	if err != nil {
		return nil, err
	}

	analytics := &models.SubmissionAnalytics{
		TotalSubmissions:  total,
		ActiveSubmissions: total - terminal,
		ClosedDeals:       closedDeals,
		AvgEngagement:     avgEngagement,
		AvgResponseTime:   avgResponseTime,
		TotalViews:        totalViews,
		TotalDownloads:    totalDownloads,
		StatusBreakdown:   breakdown,
	}
	if total > 0 {
		analytics.ConversionRate = float64(closedDeals) / float64(total) * 100
	}
	return analytics, nil
}
