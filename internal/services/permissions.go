package services

import (
	"proposal-market/internal/models"
)

// Permission predicates are pure functions over (identity, entity). They
// never touch storage and never fail: callers translate false into
// ErrAuthorizationDenied. Status guards are delegated to the lifecycle's
// own Can* helpers so policy and lifecycle cannot diverge.

// CanViewProposal reports whether the caller may read the proposal.
// hasSubmission tells whether the buyer already has a thread against it.
func CanViewProposal(identity models.Identity, proposal *models.Proposal, hasSubmission bool) bool {
	if identity.Role == models.RoleAdmin {
		return true
	}
	if proposal.IsOwner(identity.UserID) {
		return true
	}
	if identity.Role != models.RoleBuyer {
		return false
	}
	if proposal.Status != models.ProposalStatusPublished {
		return false
	}
	return proposal.IsPublic || proposal.IsTargetedAt(identity.UserID) || hasSubmission
}

// CanEditProposal reports whether the caller may modify proposal content
func CanEditProposal(identity models.Identity, proposal *models.Proposal) bool {
	return proposal.IsOwner(identity.UserID) && proposal.CanEdit()
}

// CanSubmitForReview reports whether the caller may submit the proposal
func CanSubmitForReview(identity models.Identity, proposal *models.Proposal) bool {
	return proposal.IsOwner(identity.UserID) && proposal.CanSubmit()
}

// CanReviewProposal reports whether the caller may approve or reject
func CanReviewProposal(identity models.Identity, proposal *models.Proposal) bool {
	return identity.Role == models.RoleAdmin && proposal.CanReview()
}

// CanPublishProposal reports whether the caller may publish
func CanPublishProposal(identity models.Identity, proposal *models.Proposal) bool {
	if !proposal.CanPublish() {
		return false
	}
	return identity.Role == models.RoleAdmin || proposal.IsOwner(identity.UserID)
}

// CanArchiveProposal reports whether the caller may archive
func CanArchiveProposal(identity models.Identity, proposal *models.Proposal) bool {
	if !proposal.CanArchive() {
		return false
	}
	return identity.Role == models.RoleAdmin || proposal.IsOwner(identity.UserID)
}

// CanDeleteProposal reports whether the caller may delete directly. Only
// drafts qualify; anything that reached publication goes through the
// delete-request protocol instead.
func CanDeleteProposal(identity models.Identity, proposal *models.Proposal) bool {
	return proposal.IsOwner(identity.UserID) && proposal.Status == models.ProposalStatusDraft
}

// CanViewSubmission reports whether the caller may read the thread
func CanViewSubmission(identity models.Identity, sub *models.Submission) bool {
	return identity.Role == models.RoleAdmin ||
		identity.UserID == sub.BuyerID ||
		identity.UserID == sub.SellerID
}

// IsSubmissionBuyer reports whether the caller is the buyer of the thread
func IsSubmissionBuyer(identity models.Identity, sub *models.Submission) bool {
	return identity.Role == models.RoleBuyer && identity.UserID == sub.BuyerID
}

// IsSubmissionSeller reports whether the caller is the seller of the thread
func IsSubmissionSeller(identity models.Identity, sub *models.Submission) bool {
	return identity.Role == models.RoleSeller && identity.UserID == sub.SellerID
}
