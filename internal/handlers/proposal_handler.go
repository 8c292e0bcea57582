package handlers

import (
	"context"
	"net/http"

	"proposal-market/internal/auth"
	"proposal-market/internal/models"
	"proposal-market/internal/services"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

type ProposalHandler struct {
	proposalService *services.ProposalService
}

func NewProposalHandler(proposalService *services.ProposalService) *ProposalHandler {
	return &ProposalHandler{
		proposalService: proposalService,
	}
}

// Create creates a new proposal draft
// POST /api/proposals
func (h *ProposalHandler) Create(c *gin.Context) {
	identity, ok := auth.CurrentIdentity(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	var req models.CreateProposalRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	proposal, err := h.proposalService.Create(c.Request.Context(), identity, &req)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, proposal)
}

// Get retrieves one proposal
// GET /api/proposals/:id
func (h *ProposalHandler) Get(c *gin.Context) {
	identity, ok := auth.CurrentIdentity(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid proposal id"})
		return
	}

	proposal, err := h.proposalService.Get(c.Request.Context(), identity, id)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, proposal)
}

// Update replaces the content of an editable proposal
// PUT /api/proposals/:id
func (h *ProposalHandler) Update(c *gin.Context) {
	identity, ok := auth.CurrentIdentity(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid proposal id"})
		return
	}

	var req models.CreateProposalRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	proposal, err := h.proposalService.Update(c.Request.Context(), identity, id, &req)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, proposal)
}

// List returns the proposals visible to the caller
// GET /api/proposals
func (h *ProposalHandler) List(c *gin.Context) {
	identity, ok := auth.CurrentIdentity(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	limit, offset := parsePagination(c)
	params := services.ListParams{
		Status:   c.Query("status"),
		Industry: c.Query("industry"),
		DealType: c.Query("deal_type"),
		Search:   c.Query("search"),
		Limit:    limit,
		Offset:   offset,
	}

	proposals, total, err := h.proposalService.List(c.Request.Context(), identity, params)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"proposals": proposals, "total": total})
}

// SubmitForReview moves a draft into the review queue
// POST /api/proposals/:id/submit
func (h *ProposalHandler) SubmitForReview(c *gin.Context) {
	h.transition(c, h.proposalService.SubmitForReview)
}

// Publish makes an approved proposal public
// POST /api/proposals/:id/publish
func (h *ProposalHandler) Publish(c *gin.Context) {
	h.transition(c, h.proposalService.Publish)
}

// Archive retires a published proposal
// POST /api/proposals/:id/archive
func (h *ProposalHandler) Archive(c *gin.Context) {
	h.transition(c, h.proposalService.Archive)
}

func (h *ProposalHandler) transition(c *gin.Context, op func(ctx context.Context, identity models.Identity, id uuid.UUID) (*models.Proposal, error)) {
	identity, ok := auth.CurrentIdentity(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid proposal id"})
		return
	}

	proposal, err := op(c.Request.Context(), identity, id)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, proposal)
}

// SendToBuyers publishes a proposal to selected buyers
// POST /api/proposals/:id/send
func (h *ProposalHandler) SendToBuyers(c *gin.Context) {
	identity, ok := auth.CurrentIdentity(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid proposal id"})
		return
	}

	var req models.SendToBuyersRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	proposal, err := h.proposalService.SendToBuyers(c.Request.Context(), identity, id, req.BuyerIDs)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, proposal)
}

// Delete removes a draft
// DELETE /api/proposals/:id
func (h *ProposalHandler) Delete(c *gin.Context) {
	identity, ok := auth.CurrentIdentity(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid proposal id"})
		return
	}

	if err := h.proposalService.Delete(c.Request.Context(), identity, id); err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "proposal deleted"})
}

// RequestDelete files a delete request against a published proposal
// POST /api/proposals/:id/delete-request
func (h *ProposalHandler) RequestDelete(c *gin.Context) {
	identity, ok := auth.CurrentIdentity(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid proposal id"})
		return
	}

	var req models.DeleteRequestInput
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	proposal, err := h.proposalService.RequestDelete(c.Request.Context(), identity, id, req.Reason)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, proposal)
}
