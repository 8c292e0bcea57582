package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type SubmissionStatus string

const (
	SubmissionStatusSent             SubmissionStatus = "sent"
	SubmissionStatusViewed           SubmissionStatus = "viewed"
	SubmissionStatusInterested       SubmissionStatus = "interested"
	SubmissionStatusQuestioned       SubmissionStatus = "questioned"
	SubmissionStatusNdaSigned        SubmissionStatus = "nda_signed"
	SubmissionStatusDetailRequested  SubmissionStatus = "detail_requested"
	SubmissionStatusUnderNegotiation SubmissionStatus = "under_negotiation"
	SubmissionStatusContactExchanged SubmissionStatus = "contact_exchanged"
	SubmissionStatusDealClosed       SubmissionStatus = "deal_closed"
	SubmissionStatusRejected         SubmissionStatus = "rejected"
	SubmissionStatusArchived         SubmissionStatus = "archived"
)

// IsTerminal reports whether no further transitions are permitted
func (s SubmissionStatus) IsTerminal() bool {
	switch s {
	case SubmissionStatusDealClosed, SubmissionStatusRejected, SubmissionStatusArchived:
		return true
	}
	return false
}

type InteractionType string

const (
	InteractionView           InteractionType = "view"
	InteractionDownload       InteractionType = "download"
	InteractionQuestion       InteractionType = "question"
	InteractionInterest       InteractionType = "interest"
	InteractionContactRequest InteractionType = "contact_request"
	InteractionStatusChange   InteractionType = "status_change"
)

type InterestLevel string

const (
	InterestVeryHigh InterestLevel = "very_high"
	InterestHigh     InterestLevel = "high"
	InterestMedium   InterestLevel = "medium"
	InterestLow      InterestLevel = "low"
)

// ContactInfo is one party's contact payload revealed on contact exchange
type ContactInfo struct {
	Email    string `gorm:"size:255" json:"email"`
	Phone    string `gorm:"size:50" json:"phone"`
	Company  string `gorm:"size:200" json:"company"`
	Position string `gorm:"size:100" json:"position"`
}

// Submission is one buyer's engagement thread against one proposal.
// Exactly one exists per (proposal, buyer) pair; it is archived, never deleted.
type Submission struct {
	ID         uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	ProposalID uuid.UUID `gorm:"type:uuid;not null;index:idx_submission_pair,unique" json:"proposal_id"`
	BuyerID    uint      `gorm:"not null;index:idx_submission_pair,unique;index" json:"buyer_id"`
	// Denormalized for seller-side queries.
	SellerID uint `gorm:"not null;index" json:"seller_id"`

	Status SubmissionStatus `gorm:"size:50;not null;default:sent;index" json:"status"`

	// NDA signature metadata, set at most once.
	NdaSignedAt    *time.Time `json:"nda_signed_at"`
	NdaIPAddress   string     `gorm:"size:64" json:"nda_ip_address"`
	NdaUserAgent   string     `gorm:"size:500" json:"nda_user_agent"`
	NdaDocumentURL string     `gorm:"size:500" json:"nda_document_url"`

	// Contact-exchange protocol state.
	ContactRequestedAt *time.Time  `json:"contact_requested_at"`
	ContactApprovedAt  *time.Time  `json:"contact_approved_at"`
	ContactApprovedBy  *uint       `json:"contact_approved_by"`
	BuyerContact       ContactInfo `gorm:"embedded;embeddedPrefix:buyer_contact_" json:"buyer_contact"`
	SellerContact      ContactInfo `gorm:"embedded;embeddedPrefix:seller_contact_" json:"seller_contact"`

	// Buyer feedback recorded with an interest event.
	InterestLevel         InterestLevel       `gorm:"size:50" json:"interest_level"`
	FeedbackComments      string              `gorm:"size:2000" json:"feedback_comments"`
	InvestmentCapacityMin decimal.NullDecimal `gorm:"type:decimal(20,2)" json:"investment_capacity_min"`
	InvestmentCapacityMax decimal.NullDecimal `gorm:"type:decimal(20,2)" json:"investment_capacity_max"`

	SentAt        time.Time  `json:"sent_at"`
	FirstViewedAt *time.Time `json:"first_viewed_at"`
	LastViewedAt  *time.Time `json:"last_viewed_at"`
	RespondedAt   *time.Time `json:"responded_at"`
	ClosedAt      *time.Time `json:"closed_at"`

	ViewCount     int `gorm:"default:0" json:"view_count"`
	DownloadCount int `gorm:"default:0" json:"download_count"`
	// Hours between first send and first substantive response.
	ResponseTime *int `json:"response_time"`
	// Derived 0-100, recomputed on every save, never set directly.
	EngagementScore int `gorm:"default:0" json:"engagement_score"`

	Interactions []SubmissionInteraction `gorm:"foreignKey:SubmissionID" json:"interactions,omitempty"`

	// Optimistic lock for status/score writes.
	Version int `gorm:"not null;default:1" json:"version"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// TableName specifies the table name for Submission model
func (Submission) TableName() string {
	return "submissions"
}

// SubmissionInteraction is one append-only interaction log entry
type SubmissionInteraction struct {
	ID           uint            `gorm:"primaryKey" json:"id"`
	SubmissionID uuid.UUID       `gorm:"type:uuid;not null;index" json:"submission_id"`
	Type         InteractionType `gorm:"size:50;not null" json:"type"`
	Details      JSONB           `gorm:"type:jsonb" json:"details"`
	CreatedAt    time.Time       `json:"created_at"`
}

func (SubmissionInteraction) TableName() string {
	return "submission_interactions"
}

// Engagement scoring constants. The formula is an established business rule;
// the weights are fixed, only the current status bonus applies.
var engagementStatusBonus = map[SubmissionStatus]int{
	SubmissionStatusViewed:           5,
	SubmissionStatusInterested:       10,
	SubmissionStatusQuestioned:       15,
	SubmissionStatusNdaSigned:        20,
	SubmissionStatusDetailRequested:  25,
	SubmissionStatusUnderNegotiation: 30,
	SubmissionStatusContactExchanged: 40,
	SubmissionStatusDealClosed:       50,
}

// RecomputeEngagementScore derives the 0-100 engagement score from the
// submission's counters, interaction counts and current status. Callers pass
// the question/interest counts from the append-only interaction log.
func (s *Submission) RecomputeEngagementScore(questionCount, interestCount int) {
	score := 0

	if s.ViewCount > 0 {
		score += 20
	}
	if s.DownloadCount > 0 {
		score += 20
	}

	score += min(questionCount*15, 30)
	score += min(interestCount*10, 20)

	score += engagementStatusBonus[s.Status]

	if s.RespondedAt != nil {
		latency := s.RespondedAt.Sub(s.SentAt)
		if latency <= 24*time.Hour {
			score += 10
		} else if latency <= 72*time.Hour {
			score += 5
		}
	}

	if score > 100 {
		score = 100
	}
	if score < 0 {
		score = 0
	}
	s.EngagementScore = score
}

// UpdateResponseTime recomputes the response latency in whole hours
func (s *Submission) UpdateResponseTime() {
	if s.RespondedAt == nil {
		return
	}
	hours := int(s.RespondedAt.Sub(s.SentAt).Round(time.Hour) / time.Hour)
	s.ResponseTime = &hours
}

// InterestRequest represents a buyer expressing interest in a proposal
type InterestRequest struct {
	InterestLevel         string           `json:"interest_level" binding:"required,oneof=very_high high medium low"`
	Comments              string           `json:"comments"`
	InvestmentCapacityMin *decimal.Decimal `json:"investment_capacity_min"`
	InvestmentCapacityMax *decimal.Decimal `json:"investment_capacity_max"`
}

// SignNdaRequest represents a buyer signing the NDA for a submission
type SignNdaRequest struct {
	Agreed           bool   `json:"agreed" binding:"required"`
	DigitalSignature string `json:"digital_signature" binding:"required"`
}

// ContactExchangeRequest is the buyer's request to exchange contact details
type ContactExchangeRequest struct {
	Message string `json:"message"`
}

// ApproveContactRequest carries the seller's contact payload on approval
type ApproveContactRequest struct {
	SellerContact ContactInfo `json:"seller_contact" binding:"required"`
}

// CloseSubmissionRequest moves a submission into a terminal state
type CloseSubmissionRequest struct {
	Status string `json:"status" binding:"required,oneof=deal_closed rejected archived"`
	Reason string `json:"reason"`
}

// SubmissionAnalytics aggregates a seller's engagement numbers
type SubmissionAnalytics struct {
	TotalSubmissions  int64                        `json:"total_submissions"`
	ActiveSubmissions int64                        `json:"active_submissions"`
	ClosedDeals       int64                        `json:"closed_deals"`
	ConversionRate    float64                      `json:"conversion_rate"`
	AvgEngagement     float64                      `json:"avg_engagement"`
	AvgResponseTime   float64                      `json:"avg_response_time"`
	TotalViews        int64                        `json:"total_views"`
	TotalDownloads    int64                        `json:"total_downloads"`
	StatusBreakdown   map[SubmissionStatus]int64   `json:"status_breakdown"`
}
