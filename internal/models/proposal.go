package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"
	"github.com/shopspring/decimal"
)

type ProposalStatus string

const (
	ProposalStatusDraft         ProposalStatus = "draft"
	ProposalStatusPendingReview ProposalStatus = "pending_review"
	ProposalStatusApproved      ProposalStatus = "approved"
	ProposalStatusRejected      ProposalStatus = "rejected"
	ProposalStatusPublished     ProposalStatus = "published"
	ProposalStatusArchived      ProposalStatus = "archived"
)

// ProposalStatuses lists every valid proposal status
var ProposalStatuses = []ProposalStatus{
	ProposalStatusDraft,
	ProposalStatusPendingReview,
	ProposalStatusApproved,
	ProposalStatusRejected,
	ProposalStatusPublished,
	ProposalStatusArchived,
}

type DealType string

const (
	DealTypeAcquisition  DealType = "acquisition"
	DealTypeInvestment   DealType = "investment"
	DealTypePartnership  DealType = "partnership"
	DealTypeJointVenture DealType = "joint_venture"
)

// DealTypes lists the supported transaction types
var DealTypes = []DealType{
	DealTypeAcquisition,
	DealTypeInvestment,
	DealTypePartnership,
	DealTypeJointVenture,
}

type Profitability string

const (
	ProfitabilityProfitable Profitability = "profitable"
	ProfitabilityBreakEven  Profitability = "break_even"
	ProfitabilityGrowing    Profitability = "growing"
	ProfitabilityEarlyStage Profitability = "early_stage"
)

type ReviewAction string

const (
	ReviewActionApproved ReviewAction = "approved"
	ReviewActionRejected ReviewAction = "rejected"
)

// Proposal represents one seller's M&A/investment pitch and its lifecycle status
type Proposal struct {
	ID       uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	SellerID uint      `gorm:"not null;index" json:"seller_id"`
	Seller   *User     `gorm:"foreignKey:SellerID" json:"seller,omitempty"`

	Title            string `gorm:"size:100;not null" json:"title"`
	Industry         string `gorm:"size:50;not null;index" json:"industry"`
	ExecutiveSummary string `gorm:"size:500" json:"executive_summary"`
	Description      string `gorm:"type:text" json:"description"`
	TargetMarket     string `gorm:"size:500" json:"target_market"`

	CompanyName        string `gorm:"size:100" json:"company_name"`
	CompanyFounded     int    `json:"company_founded"`
	CompanyEmployees   string `gorm:"size:50" json:"company_employees"`
	CompanyLocation    string `gorm:"size:100" json:"company_location"`
	CompanyWebsite     string `gorm:"size:200" json:"company_website"`
	CompanyDescription string `gorm:"size:1000" json:"company_description"`

	AnnualRevenue decimal.Decimal `gorm:"type:decimal(20,2)" json:"annual_revenue"`
	RevenueYear   int             `json:"revenue_year"`
	GrowthRate    float64         `json:"growth_rate"`
	Profitability Profitability   `gorm:"size:50" json:"profitability"`

	DealType         DealType        `gorm:"size:50;index" json:"deal_type"`
	InvestmentAmount decimal.Decimal `gorm:"type:decimal(20,2)" json:"investment_amount"`
	ValuationMin     decimal.Decimal `gorm:"type:decimal(20,2)" json:"valuation_min"`
	ValuationMax     decimal.Decimal `gorm:"type:decimal(20,2)" json:"valuation_max"`
	Timeline         string          `gorm:"size:200" json:"timeline"`
	DealStructure    string          `gorm:"size:1000" json:"deal_structure"`

	CompetitiveAdvantages pq.StringArray `gorm:"type:text" json:"competitive_advantages"`
	Tags                  pq.StringArray `gorm:"type:text" json:"tags"`

	Status   ProposalStatus `gorm:"size:50;not null;default:draft;index" json:"status"`
	IsPublic bool           `gorm:"default:false" json:"is_public"`

	// Allow-list snapshot: buyers the proposal was explicitly sent to.
	TargetBuyers []ProposalTarget `gorm:"foreignKey:ProposalID" json:"target_buyers,omitempty"`

	// Review record, overwritten on each re-review.
	ReviewedBy     *uint        `json:"reviewed_by"`
	ReviewedAt     *time.Time   `json:"reviewed_at"`
	ReviewComments string       `gorm:"size:1000" json:"review_comments"`
	ReviewAction   ReviewAction `gorm:"size:50" json:"review_action"`

	// Delete-request protocol for published proposals.
	DeleteRequested   bool       `gorm:"default:false" json:"delete_requested"`
	DeleteRequestedAt *time.Time `json:"delete_requested_at"`
	DeleteReason      string     `gorm:"size:500" json:"delete_reason"`
	DeleteApprovedBy  *uint      `json:"delete_approved_by"`

	ViewCount     int64 `gorm:"default:0" json:"view_count"`
	InterestCount int64 `gorm:"default:0" json:"interest_count"`
	DownloadCount int64 `gorm:"default:0" json:"download_count"`

	// Optimistic lock for status/score writes.
	Version int `gorm:"not null;default:1" json:"version"`

	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
	SubmittedAt *time.Time `json:"submitted_at"`
	ApprovedAt  *time.Time `json:"approved_at"`
	RejectedAt  *time.Time `json:"rejected_at"`
	PublishedAt *time.Time `json:"published_at"`
	ArchivedAt  *time.Time `json:"archived_at"`
}

// TableName specifies the table name for Proposal model
func (Proposal) TableName() string {
	return "proposals"
}

// IsOwner reports whether the given user created the proposal
func (p *Proposal) IsOwner(userID uint) bool {
	return p.SellerID == userID
}

// CanEdit reports whether the proposal content may still be modified
func (p *Proposal) CanEdit() bool {
	return p.Status == ProposalStatusDraft || p.Status == ProposalStatusRejected
}

// CanSubmit reports whether the proposal may be submitted for review
func (p *Proposal) CanSubmit() bool {
	return p.Status == ProposalStatusDraft || p.Status == ProposalStatusRejected
}

// CanReview reports whether an admin may approve or reject the proposal
func (p *Proposal) CanReview() bool {
	return p.Status == ProposalStatusPendingReview
}

// CanPublish reports whether the proposal may be published
func (p *Proposal) CanPublish() bool {
	return p.Status == ProposalStatusApproved
}

// CanArchive reports whether the proposal may be archived
func (p *Proposal) CanArchive() bool {
	return p.Status == ProposalStatusPublished
}

// IsTargetedAt reports whether the buyer is on the explicit allow-list
func (p *Proposal) IsTargetedAt(buyerID uint) bool {
	for _, tb := range p.TargetBuyers {
		if tb.BuyerID == buyerID {
			return true
		}
	}
	return false
}

// ProposalTarget is one allow-list entry: a buyer the proposal was sent to
type ProposalTarget struct {
	ID         uint      `gorm:"primaryKey" json:"id"`
	ProposalID uuid.UUID `gorm:"type:uuid;not null;index:idx_proposal_buyer,unique" json:"proposal_id"`
	BuyerID    uint      `gorm:"not null;index:idx_proposal_buyer,unique" json:"buyer_id"`
	SentAt     time.Time `json:"sent_at"`
}

func (ProposalTarget) TableName() string {
	return "proposal_targets"
}

// CreateProposalRequest represents a request to create or update a proposal draft
type CreateProposalRequest struct {
	Title            string `json:"title" binding:"required"`
	Industry         string `json:"industry" binding:"required"`
	ExecutiveSummary string `json:"executive_summary"`
	Description      string `json:"description"`
	TargetMarket     string `json:"target_market"`

	CompanyName        string `json:"company_name"`
	CompanyFounded     int    `json:"company_founded"`
	CompanyEmployees   string `json:"company_employees"`
	CompanyLocation    string `json:"company_location"`
	CompanyWebsite     string `json:"company_website"`
	CompanyDescription string `json:"company_description"`

	AnnualRevenue decimal.Decimal `json:"annual_revenue"`
	RevenueYear   int             `json:"revenue_year"`
	GrowthRate    float64         `json:"growth_rate"`
	Profitability string          `json:"profitability"`

	DealType         string          `json:"deal_type"`
	InvestmentAmount decimal.Decimal `json:"investment_amount"`
	ValuationMin     decimal.Decimal `json:"valuation_min"`
	ValuationMax     decimal.Decimal `json:"valuation_max"`
	Timeline         string          `json:"timeline"`
	DealStructure    string          `json:"deal_structure"`

	CompetitiveAdvantages []string `json:"competitive_advantages"`
	Tags                  []string `json:"tags"`
	IsPublic              bool     `json:"is_public"`
}

// ReviewRequest carries the admin comment for an approve/reject decision
type ReviewRequest struct {
	Comments string `json:"comments"`
}

// SendToBuyersRequest publishes a proposal to an explicit set of buyers
type SendToBuyersRequest struct {
	BuyerIDs []uint `json:"buyer_ids"`
}

// DeleteRequestInput carries the seller's reason for a delete request
type DeleteRequestInput struct {
	Reason string `json:"reason" binding:"required"`
}
