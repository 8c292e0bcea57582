package services

import (
	"strings"

	"proposal-market/internal/models"

	"github.com/shopspring/decimal"
)

// ValidateForSubmission checks the field-level guard for the
// draft -> pending_review transition. All failures are collected so the
// seller sees the complete list at once.
func ValidateForSubmission(p *models.Proposal) error {
	var fields []FieldError

	if len(strings.TrimSpace(p.Title)) < 5 {
		fields = append(fields, FieldError{Field: "title", Message: "title must be at least 5 characters"})
	}
	if len(strings.TrimSpace(p.ExecutiveSummary)) < 10 {
		fields = append(fields, FieldError{Field: "executive_summary", Message: "executive summary must be at least 10 characters"})
	}
	if len(strings.TrimSpace(p.Description)) < 50 {
		fields = append(fields, FieldError{Field: "description", Message: "description must be at least 50 characters"})
	}
	if len(strings.TrimSpace(p.TargetMarket)) < 10 {
		fields = append(fields, FieldError{Field: "target_market", Message: "target market must be at least 10 characters"})
	}
	if !p.InvestmentAmount.IsPositive() {
		fields = append(fields, FieldError{Field: "investment_amount", Message: "investment amount must be positive"})
	}
	if p.DealType == "" {
		fields = append(fields, FieldError{Field: "deal_type", Message: "deal type is required"})
	}
	if p.ValuationMin.IsPositive() && p.ValuationMax.IsPositive() &&
		p.ValuationMin.GreaterThanOrEqual(p.ValuationMax) {
		fields = append(fields, FieldError{Field: "valuation_min", Message: "minimum valuation must be below maximum valuation"})
	}

	if len(fields) > 0 {
		return &ValidationError{Fields: fields}
	}
	return nil
}

// ValidInvestmentCapacity checks an optional capacity range
func ValidInvestmentCapacity(min, max *decimal.Decimal) bool {
	if min != nil && min.IsNegative() {
		return false
	}
	if max != nil && max.IsNegative() {
		return false
	}
	if min != nil && max != nil && min.GreaterThan(*max) {
		return false
	}
	return true
}
