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

type AdminHandler struct {
	proposalService *services.ProposalService
	auditService    *services.AuditService
}

func NewAdminHandler(proposalService *services.ProposalService, auditService *services.AuditService) *AdminHandler {
	return &AdminHandler{
		proposalService: proposalService,
		auditService:    auditService,
	}
}

// ListReviewQueue returns proposals awaiting review
// GET /api/admin/proposals/pending
func (h *AdminHandler) ListReviewQueue(c *gin.Context) {
	identity, ok := auth.CurrentIdentity(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	limit, offset := parsePagination(c)
	params := services.ListParams{
		Status: string(models.ProposalStatusPendingReview),
		Limit:  limit,
		Offset: offset,
	}

	proposals, total, err := h.proposalService.List(c.Request.Context(), identity, params)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"proposals": proposals, "total": total})
}

// Approve records an admin approval
// POST /api/admin/proposals/:id/approve
func (h *AdminHandler) Approve(c *gin.Context) {
	h.review(c, h.proposalService.Approve)
}

// Reject records an admin rejection
// POST /api/admin/proposals/:id/reject
func (h *AdminHandler) Reject(c *gin.Context) {
	h.review(c, h.proposalService.Reject)
}

type reviewOp func(ctx context.Context, identity models.Identity, id uuid.UUID, req *models.ReviewRequest) (*models.Proposal, error)

func (h *AdminHandler) review(c *gin.Context, op reviewOp) {
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

	var req models.ReviewRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	proposal, err := op(c.Request.Context(), identity, id, &req)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, proposal)
}

// ListDeleteRequests returns unresolved delete requests
// GET /api/admin/proposals/delete-requests
func (h *AdminHandler) ListDeleteRequests(c *gin.Context) {
	identity, ok := auth.CurrentIdentity(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	limit, offset := parsePagination(c)
	proposals, err := h.proposalService.ListPendingDeleteRequests(c.Request.Context(), identity, limit, offset)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"proposals": proposals})
}

// ApproveDelete resolves a pending delete request
// POST /api/admin/proposals/:id/delete-approve
func (h *AdminHandler) ApproveDelete(c *gin.Context) {
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

	proposal, err := h.proposalService.ApproveDelete(c.Request.Context(), identity, id)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, proposal)
}

// ListAuditLog returns recent audit entries
// GET /api/admin/audit
func (h *AdminHandler) ListAuditLog(c *gin.Context) {
	limit, offset := parsePagination(c)
	logs, err := h.auditService.List(c.Request.Context(), limit, offset)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"entries": logs})
}
