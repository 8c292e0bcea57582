package handlers

import (
	"context"
	"net/http"
	"strconv"

	"proposal-market/internal/auth"
	"proposal-market/internal/models"
	"proposal-market/internal/services"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

type SubmissionHandler struct {
	submissionService *services.SubmissionService
}

func NewSubmissionHandler(submissionService *services.SubmissionService) *SubmissionHandler {
	return &SubmissionHandler{
		submissionService: submissionService,
	}
}

// Get retrieves one submission thread
// GET /api/submissions/:id
func (h *SubmissionHandler) Get(c *gin.Context) {
	identity, id, ok := h.resolve(c)
	if !ok {
		return
	}

	sub, err := h.submissionService.Get(c.Request.Context(), identity, id)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, sub)
}

// List returns the caller's submission threads
// GET /api/submissions
func (h *SubmissionHandler) List(c *gin.Context) {
	identity, ok := auth.CurrentIdentity(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	limit, offset := parsePagination(c)
	subs, total, err := h.submissionService.List(c.Request.Context(), identity, c.Query("status"), limit, offset)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"submissions": subs, "total": total})
}

// RecordView registers a buyer view on the thread
// POST /api/submissions/:id/view
func (h *SubmissionHandler) RecordView(c *gin.Context) {
	h.event(c, h.submissionService.RecordView)
}

// RecordDownload registers a document download
// POST /api/submissions/:id/download
func (h *SubmissionHandler) RecordDownload(c *gin.Context) {
	h.event(c, h.submissionService.RecordDownload)
}

func (h *SubmissionHandler) event(c *gin.Context, op func(ctx context.Context, identity models.Identity, id uuid.UUID) (*models.Submission, error)) {
	identity, id, ok := h.resolve(c)
	if !ok {
		return
	}

	sub, err := op(c.Request.Context(), identity, id)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, sub)
}

// ExpressInterest records the buyer's interest and feedback
// POST /api/submissions/:id/interest
func (h *SubmissionHandler) ExpressInterest(c *gin.Context) {
	identity, id, ok := h.resolve(c)
	if !ok {
		return
	}

	var req models.InterestRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	sub, err := h.submissionService.ExpressInterest(c.Request.Context(), identity, id, &req)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, sub)
}

// ExpressProposalInterest records buyer interest against a proposal,
// opening the submission thread on first contact
// POST /api/proposals/:id/interest
func (h *SubmissionHandler) ExpressProposalInterest(c *gin.Context) {
	identity, ok := auth.CurrentIdentity(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	proposalID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid proposal id"})
		return
	}

	var req models.InterestRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	sub, err := h.submissionService.ExpressInterestInProposal(c.Request.Context(), identity, proposalID, &req)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, sub)
}

// GetNdaTemplate returns the platform NDA text
// GET /api/nda/template
func (h *SubmissionHandler) GetNdaTemplate(c *gin.Context) {
	c.JSON(http.StatusOK, services.GetNdaTemplate())
}

// SignNda records the buyer's NDA signature
// POST /api/submissions/:id/nda
func (h *SubmissionHandler) SignNda(c *gin.Context) {
	identity, id, ok := h.resolve(c)
	if !ok {
		return
	}

	var req models.SignNdaRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	sub, err := h.submissionService.SignNda(c.Request.Context(), identity, id, &req,
		c.ClientIP(), c.Request.UserAgent())
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, sub)
}

// RequestContactExchange files the buyer's contact request
// POST /api/submissions/:id/contact-request
func (h *SubmissionHandler) RequestContactExchange(c *gin.Context) {
	identity, id, ok := h.resolve(c)
	if !ok {
		return
	}

	var req models.ContactExchangeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	sub, err := h.submissionService.RequestContactExchange(c.Request.Context(), identity, id, &req)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, sub)
}

// ApproveContactExchange is the seller's approval of a pending request
// POST /api/submissions/:id/contact-approve
func (h *SubmissionHandler) ApproveContactExchange(c *gin.Context) {
	identity, id, ok := h.resolve(c)
	if !ok {
		return
	}

	var req models.ApproveContactRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	sub, err := h.submissionService.ApproveContactExchange(c.Request.Context(), identity, id, &req)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, sub)
}

// Close moves the thread into a terminal state
// POST /api/submissions/:id/close
func (h *SubmissionHandler) Close(c *gin.Context) {
	identity, id, ok := h.resolve(c)
	if !ok {
		return
	}

	var req models.CloseSubmissionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	sub, err := h.submissionService.Close(c.Request.Context(), identity, id, &req)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, sub)
}

// AddComment posts a comment or question on the thread
// POST /api/submissions/:id/comments
func (h *SubmissionHandler) AddComment(c *gin.Context) {
	identity, id, ok := h.resolve(c)
	if !ok {
		return
	}

	var req models.AddCommentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	comment, err := h.submissionService.AddComment(c.Request.Context(), identity, id, &req)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, comment)
}

// ReplyToComment answers an existing comment
// POST /api/submissions/:id/comments/:commentId/reply
func (h *SubmissionHandler) ReplyToComment(c *gin.Context) {
	identity, id, ok := h.resolve(c)
	if !ok {
		return
	}

	parentID, ok := intParam(c, "commentId")
	if !ok {
		return
	}

	var req models.ReplyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	reply, err := h.submissionService.ReplyToComment(c.Request.Context(), identity, id, parentID, &req)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, reply)
}

// ListComments returns the thread's comments visible to the caller
// GET /api/submissions/:id/comments
func (h *SubmissionHandler) ListComments(c *gin.Context) {
	identity, id, ok := h.resolve(c)
	if !ok {
		return
	}

	limit, offset := parsePagination(c)
	comments, total, err := h.submissionService.ListComments(c.Request.Context(), identity, id, limit, offset)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"comments": comments, "total": total})
}

// SellerAnalytics aggregates engagement across the seller's threads
// GET /api/submissions/analytics
func (h *SubmissionHandler) SellerAnalytics(c *gin.Context) {
	identity, ok := auth.CurrentIdentity(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	sellerID := identity.UserID
	if s, ok := intQuery(c, "seller_id"); ok && s > 0 {
		sellerID = uint(s)
	}

	analytics, err := h.submissionService.SellerAnalytics(c.Request.Context(), identity, sellerID)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, analytics)
}

func (h *SubmissionHandler) resolve(c *gin.Context) (models.Identity, uuid.UUID, bool) {
	identity, ok := auth.CurrentIdentity(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return models.Identity{}, uuid.Nil, false
	}

	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid submission id"})
		return models.Identity{}, uuid.Nil, false
	}
	return identity, id, true
}

func intParam(c *gin.Context, key string) (uint, bool) {
	v, err := strconv.ParseUint(c.Param(key), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid " + key})
		return 0, false
	}
	return uint(v), true
}
