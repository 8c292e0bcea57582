package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"proposal-market/internal/models"
	"proposal-market/internal/repository"

	"github.com/google/uuid"
	"github.com/lib/pq"
)

// proposalActions maps each status to the actions legal from it, used to
// build transition errors the caller can act on.
var proposalActions = map[models.ProposalStatus][]string{
	models.ProposalStatusDraft:         {"edit", "submit", "delete"},
	models.ProposalStatusPendingReview: {"approve", "reject"},
	models.ProposalStatusApproved:      {"publish"},
	models.ProposalStatusRejected:      {"edit", "submit"},
	models.ProposalStatusPublished:     {"archive", "request_delete"},
	models.ProposalStatusArchived:      nil,
}

func invalidProposalTransition(p *models.Proposal, action string) error {
	return &InvalidStateTransitionError{
		Current: string(p.Status),
		Action:  action,
		Allowed: proposalActions[p.Status],
	}
}

type ProposalService struct {
	repo  *repository.Repository
	audit *AuditService
}

func NewProposalService(repo *repository.Repository, audit *AuditService) *ProposalService {
	return &ProposalService{repo: repo, audit: audit}
}

// withRetry runs a load-mutate-save cycle under the optimistic version
// check. On a version conflict the entity is reloaded and the mutation runs
// once more against fresh state; a transition that is no longer legal then
// fails with the lifecycle error instead of a conflict.
func (s *ProposalService) withRetry(ctx context.Context, id uuid.UUID, mutate func(*models.Proposal) error) (*models.Proposal, error) {
	for attempt := 0; ; attempt++ {
		proposal, err := s.repo.GetProposalByID(ctx, id)
		if err != nil {
			return nil, err
		}
		if err := mutate(proposal); err != nil {
			return nil, err
		}
		err = s.repo.SaveProposal(ctx, proposal)
		if err == nil {
			return proposal, nil
		}
		if !errors.Is(err, repository.ErrConflict) || attempt > 0 {
			return nil, err
		}
	}
}

// Create creates a new draft for the calling seller
func (s *ProposalService) Create(ctx context.Context, identity models.Identity, req *models.CreateProposalRequest) (*models.Proposal, error) {
	if identity.Role != models.RoleSeller {
		return nil, ErrAuthorizationDenied
	}
	if err := validateEnums(req); err != nil {
		return nil, err
	}

	proposal := &models.Proposal{
		ID:       uuid.New(),
		SellerID: identity.UserID,
		Status:   models.ProposalStatusDraft,
		Version:  1,
	}
	applyProposalRequest(proposal, req)

	if err := s.repo.CreateProposal(ctx, proposal); err != nil {
		return nil, err
	}
	s.audit.Record(ctx, identity.UserID, "proposal.create", "proposal", proposal.ID.String(), nil)
	return proposal, nil
}

// Get retrieves a proposal the caller is allowed to see. A buyer read of a
// published proposal counts as a view on the proposal's aggregate stats.
func (s *ProposalService) Get(ctx context.Context, identity models.Identity, id uuid.UUID) (*models.Proposal, error) {
	proposal, err := s.repo.GetProposalByID(ctx, id)
	if err != nil {
		return nil, err
	}

	hasSubmission := false
	if identity.Role == models.RoleBuyer {
		if _, err := s.repo.FindSubmission(ctx, id, identity.UserID); err == nil {
			hasSubmission = true
		} else if !errors.Is(err, repository.ErrNotFound) {
			return nil, err
		}
	}

	if !CanViewProposal(identity, proposal, hasSubmission) {
		return nil, ErrAuthorizationDenied
	}

	if identity.Role == models.RoleBuyer {
		if err := s.repo.IncrementProposalStats(ctx, id, 1, 0, 0); err != nil {
			return nil, err
		}
		proposal.ViewCount++
	}
	return proposal, nil
}

// Update replaces the content of an editable proposal
func (s *ProposalService) Update(ctx context.Context, identity models.Identity, id uuid.UUID, req *models.CreateProposalRequest) (*models.Proposal, error) {
	if err := validateEnums(req); err != nil {
		return nil, err
	}
	return s.withRetry(ctx, id, func(p *models.Proposal) error {
		if !p.IsOwner(identity.UserID) && identity.Role != models.RoleAdmin {
			return ErrAuthorizationDenied
		}
		if !p.CanEdit() {
			return invalidProposalTransition(p, "edit")
		}
		applyProposalRequest(p, req)
		return nil
	})
}

// SubmitForReview moves a draft or rejected proposal into the review queue.
// The field-level completeness guard runs here, not at draft save time.
func (s *ProposalService) SubmitForReview(ctx context.Context, identity models.Identity, id uuid.UUID) (*models.Proposal, error) {
	proposal, err := s.withRetry(ctx, id, func(p *models.Proposal) error {
		if !CanSubmitForReview(identity, p) {
			if !p.IsOwner(identity.UserID) {
				return ErrAuthorizationDenied
			}
			return invalidProposalTransition(p, "submit")
		}
		if err := ValidateForSubmission(p); err != nil {
			return err
		}
		now := time.Now()
		p.Status = models.ProposalStatusPendingReview
		p.SubmittedAt = &now
		// A resubmission clears the previous review record.
		p.ReviewedBy = nil
		p.ReviewedAt = nil
		p.ReviewComments = ""
		p.ReviewAction = ""
		return nil
	})
	if err != nil {
		return nil, err
	}
	s.audit.Record(ctx, identity.UserID, "proposal.submit", "proposal", id.String(), nil)
	return proposal, nil
}

// Approve records an admin approval
func (s *ProposalService) Approve(ctx context.Context, identity models.Identity, id uuid.UUID, req *models.ReviewRequest) (*models.Proposal, error) {
	return s.review(ctx, identity, id, req, models.ReviewActionApproved)
}

// Reject records an admin rejection; the seller may edit and resubmit
func (s *ProposalService) Reject(ctx context.Context, identity models.Identity, id uuid.UUID, req *models.ReviewRequest) (*models.Proposal, error) {
	return s.review(ctx, identity, id, req, models.ReviewActionRejected)
}

func (s *ProposalService) review(ctx context.Context, identity models.Identity, id uuid.UUID, req *models.ReviewRequest, action models.ReviewAction) (*models.Proposal, error) {
	verb := "approve"
	if action == models.ReviewActionRejected {
		verb = "reject"
	}
	proposal, err := s.withRetry(ctx, id, func(p *models.Proposal) error {
		if identity.Role != models.RoleAdmin {
			return ErrAuthorizationDenied
		}
		if !p.CanReview() {
			return invalidProposalTransition(p, verb)
		}
		now := time.Now()
		p.ReviewedBy = &identity.UserID
		p.ReviewedAt = &now
		p.ReviewComments = req.Comments
		p.ReviewAction = action
		if action == models.ReviewActionApproved {
			p.Status = models.ProposalStatusApproved
			p.ApprovedAt = &now
		} else {
			p.Status = models.ProposalStatusRejected
			p.RejectedAt = &now
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	s.audit.Record(ctx, identity.UserID, "proposal."+string(action), "proposal", id.String(),
		models.JSONB{"comments": req.Comments})
	return proposal, nil
}

// Publish makes an approved proposal publicly visible to all buyers
func (s *ProposalService) Publish(ctx context.Context, identity models.Identity, id uuid.UUID) (*models.Proposal, error) {
	proposal, err := s.withRetry(ctx, id, func(p *models.Proposal) error {
		if !CanPublishProposal(identity, p) {
			if !p.IsOwner(identity.UserID) && identity.Role != models.RoleAdmin {
				return ErrAuthorizationDenied
			}
			return invalidProposalTransition(p, "publish")
		}
		now := time.Now()
		p.Status = models.ProposalStatusPublished
		p.IsPublic = true
		p.PublishedAt = &now
		return nil
	})
	if err != nil {
		return nil, err
	}
	s.audit.Record(ctx, identity.UserID, "proposal.publish", "proposal", id.String(), nil)
	return proposal, nil
}

// SendToBuyers publishes an approved proposal to an explicit buyer
// allow-list and opens a submission thread for each buyer. On an already
// published proposal it extends the allow-list instead. Buyers that already
// have a thread keep their existing one.
func (s *ProposalService) SendToBuyers(ctx context.Context, identity models.Identity, id uuid.UUID, buyerIDs []uint) (*models.Proposal, error) {
	if len(buyerIDs) == 0 {
		return nil, ErrInvalidBuyers
	}
	buyers, err := s.repo.GetActiveBuyers(ctx, buyerIDs)
	if err != nil {
		return nil, err
	}
	if len(buyers) != len(dedupe(buyerIDs)) {
		return nil, ErrInvalidBuyers
	}

	proposal, err := s.withRetry(ctx, id, func(p *models.Proposal) error {
		if !p.IsOwner(identity.UserID) && identity.Role != models.RoleAdmin {
			return ErrAuthorizationDenied
		}
		switch p.Status {
		case models.ProposalStatusApproved:
			now := time.Now()
			p.Status = models.ProposalStatusPublished
			p.PublishedAt = &now
		case models.ProposalStatusPublished:
			// extending the allow-list
		default:
			return invalidProposalTransition(p, "publish")
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	if err := s.repo.AddProposalTargets(ctx, id, buyerIDs); err != nil {
		return nil, err
	}

	var opened int
	for _, buyer := range buyers {
		_, err := s.repo.FindSubmission(ctx, id, buyer.ID)
		if err == nil {
			continue
		}
		if !errors.Is(err, repository.ErrNotFound) {
			return nil, err
		}
		sub := &models.Submission{
			ID:         uuid.New(),
			ProposalID: id,
			BuyerID:    buyer.ID,
			SellerID:   proposal.SellerID,
			Status:     models.SubmissionStatusSent,
			SentAt:     time.Now(),
			Version:    1,
		}
		if err := s.repo.CreateSubmission(ctx, sub); err != nil {
			return nil, err
		}
		opened++
	}

	s.audit.Record(ctx, identity.UserID, "proposal.send", "proposal", id.String(),
		models.JSONB{"buyers": fmt.Sprintf("%d", len(buyers)), "threads_opened": fmt.Sprintf("%d", opened)})
	return s.repo.GetProposalByID(ctx, id)
}

// Archive retires a published proposal from buyer listings
func (s *ProposalService) Archive(ctx context.Context, identity models.Identity, id uuid.UUID) (*models.Proposal, error) {
	proposal, err := s.withRetry(ctx, id, func(p *models.Proposal) error {
		if !CanArchiveProposal(identity, p) {
			if !p.IsOwner(identity.UserID) && identity.Role != models.RoleAdmin {
				return ErrAuthorizationDenied
			}
			return invalidProposalTransition(p, "archive")
		}
		now := time.Now()
		p.Status = models.ProposalStatusArchived
		p.ArchivedAt = &now
		return nil
	})
	if err != nil {
		return nil, err
	}
	s.audit.Record(ctx, identity.UserID, "proposal.archive", "proposal", id.String(), nil)
	return proposal, nil
}

// Delete removes a draft outright. Anything past draft must go through the
// delete-request protocol so buyer-facing history is never silently erased.
func (s *ProposalService) Delete(ctx context.Context, identity models.Identity, id uuid.UUID) error {
	proposal, err := s.repo.GetProposalByID(ctx, id)
	if err != nil {
		return err
	}
	if !CanDeleteProposal(identity, proposal) {
		if !proposal.IsOwner(identity.UserID) {
			return ErrAuthorizationDenied
		}
		return invalidProposalTransition(proposal, "delete")
	}
	if err := s.repo.DeleteProposal(ctx, id); err != nil {
		return err
	}
	s.audit.Record(ctx, identity.UserID, "proposal.delete", "proposal", id.String(), nil)
	return nil
}

// RequestDelete files a delete request against a published proposal
func (s *ProposalService) RequestDelete(ctx context.Context, identity models.Identity, id uuid.UUID, reason string) (*models.Proposal, error) {
	proposal, err := s.withRetry(ctx, id, func(p *models.Proposal) error {
		if !p.IsOwner(identity.UserID) {
			return ErrAuthorizationDenied
		}
		if p.Status != models.ProposalStatusPublished {
			return invalidProposalTransition(p, "request_delete")
		}
		if p.DeleteRequested {
			return ErrDeleteRequestPending
		}
		now := time.Now()
		p.DeleteRequested = true
		p.DeleteRequestedAt = &now
		p.DeleteReason = reason
		return nil
	})
	if err != nil {
		return nil, err
	}
	s.audit.Record(ctx, identity.UserID, "proposal.delete_request", "proposal", id.String(),
		models.JSONB{"reason": reason})
	return proposal, nil
}

// ApproveDelete resolves a pending delete request. The proposal is archived
// rather than removed so submission threads keep a valid parent.
func (s *ProposalService) ApproveDelete(ctx context.Context, identity models.Identity, id uuid.UUID) (*models.Proposal, error) {
	proposal, err := s.withRetry(ctx, id, func(p *models.Proposal) error {
		if identity.Role != models.RoleAdmin {
			return ErrAuthorizationDenied
		}
		if !p.DeleteRequested || p.DeleteApprovedBy != nil {
			return ErrNoDeleteRequest
		}
		now := time.Now()
		p.DeleteApprovedBy = &identity.UserID
		p.Status = models.ProposalStatusArchived
		p.ArchivedAt = &now
		return nil
	})
	if err != nil {
		return nil, err
	}
	s.audit.Record(ctx, identity.UserID, "proposal.delete_approve", "proposal", id.String(), nil)
	return proposal, nil
}

// ListParams narrows a proposal listing for the caller
type ListParams struct {
	Status   string
	Industry string
	DealType string
	Search   string
	Limit    int
	Offset   int
}

// List returns the proposals visible to the caller. Sellers see their own,
// buyers see published proposals they have access to, admins see everything.
func (s *ProposalService) List(ctx context.Context, identity models.Identity, params ListParams) ([]*models.Proposal, int64, error) {
	filter := repository.ProposalFilter{
		Status:   models.ProposalStatus(params.Status),
		Industry: params.Industry,
		DealType: params.DealType,
		Search:   params.Search,
		Limit:    params.Limit,
		Offset:   params.Offset,
	}
	switch identity.Role {
	case models.RoleSeller:
		filter.SellerID = &identity.UserID
	case models.RoleBuyer:
		filter.BuyerID = &identity.UserID
	case models.RoleAdmin:
		// unrestricted
	default:
		return nil, 0, ErrAuthorizationDenied
	}
	return s.repo.ListProposals(ctx, filter)
}

// ListPendingDeleteRequests returns unresolved delete requests for admins
func (s *ProposalService) ListPendingDeleteRequests(ctx context.Context, identity models.Identity, limit, offset int) ([]*models.Proposal, error) {
	if identity.Role != models.RoleAdmin {
		return nil, ErrAuthorizationDenied
	}
	return s.repo.ListPendingDeleteRequests(ctx, limit, offset)
}

func applyProposalRequest(p *models.Proposal, req *models.CreateProposalRequest) {
	p.Title = req.Title
	p.Industry = req.Industry
	p.ExecutiveSummary = req.ExecutiveSummary
	p.Description = req.Description
	p.TargetMarket = req.TargetMarket

	p.CompanyName = req.CompanyName
	p.CompanyFounded = req.CompanyFounded
	p.CompanyEmployees = req.CompanyEmployees
	p.CompanyLocation = req.CompanyLocation
	p.CompanyWebsite = req.CompanyWebsite
	p.CompanyDescription = req.CompanyDescription

	p.AnnualRevenue = req.AnnualRevenue
	p.RevenueYear = req.RevenueYear
	p.GrowthRate = req.GrowthRate
	p.Profitability = models.Profitability(req.Profitability)

	p.DealType = models.DealType(req.DealType)
	p.InvestmentAmount = req.InvestmentAmount
	p.ValuationMin = req.ValuationMin
	p.ValuationMax = req.ValuationMax
	p.Timeline = req.Timeline
	p.DealStructure = req.DealStructure

	p.CompetitiveAdvantages = pq.StringArray(req.CompetitiveAdvantages)
	p.Tags = pq.StringArray(req.Tags)
	p.IsPublic = req.IsPublic
}

func validateEnums(req *models.CreateProposalRequest) error {
	var fields []FieldError
	if req.DealType != "" {
		valid := false
		for _, dt := range models.DealTypes {
			if models.DealType(req.DealType) == dt {
				valid = true
				break
			}
		}
		if !valid {
			fields = append(fields, FieldError{Field: "deal_type", Message: "unknown deal type"})
		}
	}
	if len(fields) > 0 {
		return &ValidationError{Fields: fields}
	}
	return nil
}

func dedupe(ids []uint) []uint {
	seen := make(map[uint]struct{}, len(ids))
	out := ids[:0:0]
	for _, id := range ids {
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out
}
