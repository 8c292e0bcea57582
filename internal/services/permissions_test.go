package services

import (
	"testing"

	"proposal-market/internal/models"
)

func TestCanViewProposal(t *testing.T) {
	seller := models.Identity{UserID: 1, Role: models.RoleSeller}
	admin := models.Identity{UserID: 2, Role: models.RoleAdmin}
	buyer := models.Identity{UserID: 3, Role: models.RoleBuyer}
	otherSeller := models.Identity{UserID: 4, Role: models.RoleSeller}

	tests := []struct {
		name          string
		identity      models.Identity
		status        models.ProposalStatus
		isPublic      bool
		targeted      bool
		hasSubmission bool
		want          bool
	}{
		{"owner sees own draft", seller, models.ProposalStatusDraft, false, false, false, true},
		{"admin sees everything", admin, models.ProposalStatusDraft, false, false, false, true},
		{"other seller never sees", otherSeller, models.ProposalStatusPublished, true, false, false, false},
		{"buyer blocked from draft", buyer, models.ProposalStatusDraft, true, true, false, false},
		{"buyer blocked from pending", buyer, models.ProposalStatusPendingReview, true, false, false, false},
		{"buyer sees public published", buyer, models.ProposalStatusPublished, true, false, false, true},
		{"buyer blocked from private published", buyer, models.ProposalStatusPublished, false, false, false, false},
		{"targeted buyer sees private published", buyer, models.ProposalStatusPublished, false, true, false, true},
		{"thread holder sees private published", buyer, models.ProposalStatusPublished, false, false, true, true},
		{"buyer blocked from archived", buyer, models.ProposalStatusArchived, true, false, false, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			proposal := &models.Proposal{
				SellerID: 1,
				Status:   tt.status,
				IsPublic: tt.isPublic,
			}
			if tt.targeted {
				proposal.TargetBuyers = []models.ProposalTarget{{BuyerID: tt.identity.UserID}}
			}
			if got := CanViewProposal(tt.identity, proposal, tt.hasSubmission); got != tt.want {
				t.Errorf("CanViewProposal() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestEditAndSubmitGuards(t *testing.T) {
	owner := models.Identity{UserID: 1, Role: models.RoleSeller}
	stranger := models.Identity{UserID: 9, Role: models.RoleSeller}

	editable := map[models.ProposalStatus]bool{
		models.ProposalStatusDraft:         true,
		models.ProposalStatusPendingReview: false,
		models.ProposalStatusApproved:      false,
		models.ProposalStatusRejected:      true,
		models.ProposalStatusPublished:     false,
		models.ProposalStatusArchived:      false,
	}

	for _, status := range models.ProposalStatuses {
		proposal := &models.Proposal{SellerID: 1, Status: status}
		if got := CanEditProposal(owner, proposal); got != editable[status] {
			t.Errorf("CanEditProposal(%s) = %v, want %v", status, got, editable[status])
		}
		// Editability and submittability coincide in this lifecycle.
		if got := CanSubmitForReview(owner, proposal); got != editable[status] {
			t.Errorf("CanSubmitForReview(%s) = %v, want %v", status, got, editable[status])
		}
		if CanEditProposal(stranger, proposal) {
			t.Errorf("stranger must never edit, status %s", status)
		}
	}
}

func TestReviewAndArchiveGuards(t *testing.T) {
	admin := models.Identity{UserID: 2, Role: models.RoleAdmin}
	owner := models.Identity{UserID: 1, Role: models.RoleSeller}

	pending := &models.Proposal{SellerID: 1, Status: models.ProposalStatusPendingReview}
	if !CanReviewProposal(admin, pending) {
		t.Error("admin should review pending proposal")
	}
	if CanReviewProposal(owner, pending) {
		t.Error("owner must not review own proposal")
	}

	approved := &models.Proposal{SellerID: 1, Status: models.ProposalStatusApproved}
	if !CanPublishProposal(owner, approved) {
		t.Error("owner should publish approved proposal")
	}
	if CanPublishProposal(models.Identity{UserID: 3, Role: models.RoleBuyer}, approved) {
		t.Error("buyer must not publish")
	}

	published := &models.Proposal{SellerID: 1, Status: models.ProposalStatusPublished}
	if !CanArchiveProposal(owner, published) {
		t.Error("owner should archive published proposal")
	}
	if CanDeleteProposal(owner, published) {
		t.Error("published proposal must not be directly deletable")
	}
	if !CanDeleteProposal(owner, &models.Proposal{SellerID: 1, Status: models.ProposalStatusDraft}) {
		t.Error("owner should delete own draft")
	}
}

func TestSubmissionVisibility(t *testing.T) {
	sub := &models.Submission{BuyerID: 3, SellerID: 1}

	if !CanViewSubmission(models.Identity{UserID: 3, Role: models.RoleBuyer}, sub) {
		t.Error("buyer party should view the thread")
	}
	if !CanViewSubmission(models.Identity{UserID: 1, Role: models.RoleSeller}, sub) {
		t.Error("seller party should view the thread")
	}
	if !CanViewSubmission(models.Identity{UserID: 2, Role: models.RoleAdmin}, sub) {
		t.Error("admin should view the thread")
	}
	if CanViewSubmission(models.Identity{UserID: 9, Role: models.RoleBuyer}, sub) {
		t.Error("stranger must not view the thread")
	}
}
