package services

import (
	"errors"
	"strings"
	"testing"

	"proposal-market/internal/models"

	"github.com/shopspring/decimal"
)

func completeProposal() *models.Proposal {
	return &models.Proposal{
		Title:            "SaaS platform acquisition",
		ExecutiveSummary: "Profitable B2B SaaS with recurring revenue.",
		Description:      strings.Repeat("solid recurring revenue base ", 3),
		TargetMarket:     "Mid-market logistics operators",
		InvestmentAmount: decimal.NewFromInt(1_000_000),
		DealType:         models.DealTypeAcquisition,
		ValuationMin:     decimal.NewFromInt(4_000_000),
		ValuationMax:     decimal.NewFromInt(6_000_000),
	}
}

func TestValidateForSubmissionPasses(t *testing.T) {
	if err := ValidateForSubmission(completeProposal()); err != nil {
		t.Fatalf("expected complete proposal to validate, got %v", err)
	}
}

func TestValidateForSubmissionCollectsAllFailures(t *testing.T) {
	p := &models.Proposal{
		Title:            "abc",
		ExecutiveSummary: "short",
		Description:      "short",
		TargetMarket:     "short",
		InvestmentAmount: decimal.Zero,
		DealType:         "",
	}

	err := ValidateForSubmission(p)
	var validationErr *ValidationError
	if !errors.As(err, &validationErr) {
		t.Fatalf("expected ValidationError, got %v", err)
	}

	want := []string{"title", "executive_summary", "description", "target_market", "investment_amount", "deal_type"}
	if len(validationErr.Fields) != len(want) {
		t.Fatalf("expected %d field errors, got %d: %v", len(want), len(validationErr.Fields), validationErr.Fields)
	}
	for i, field := range want {
		if validationErr.Fields[i].Field != field {
			t.Errorf("field %d: expected %s, got %s", i, field, validationErr.Fields[i].Field)
		}
	}
}

func TestValidateForSubmissionValuationRange(t *testing.T) {
	p := completeProposal()
	p.ValuationMin = decimal.NewFromInt(10)
	p.ValuationMax = decimal.NewFromInt(5)

	err := ValidateForSubmission(p)
	var validationErr *ValidationError
	if !errors.As(err, &validationErr) {
		t.Fatalf("expected ValidationError, got %v", err)
	}
	if validationErr.Fields[0].Field != "valuation_min" {
		t.Errorf("expected valuation_min failure, got %v", validationErr.Fields)
	}

	// Whitespace does not count toward minimum lengths.
	p = completeProposal()
	p.TargetMarket = "          \t\n   "
	if err := ValidateForSubmission(p); err == nil {
		t.Error("expected whitespace-only target market to fail")
	}
}

func TestValidInvestmentCapacity(t *testing.T) {
	ten := decimal.NewFromInt(10)
	five := decimal.NewFromInt(5)
	neg := decimal.NewFromInt(-1)

	if !ValidInvestmentCapacity(nil, nil) {
		t.Error("absent range should be valid")
	}
	if !ValidInvestmentCapacity(&five, &ten) {
		t.Error("ordered range should be valid")
	}
	if ValidInvestmentCapacity(&ten, &five) {
		t.Error("inverted range should be invalid")
	}
	if ValidInvestmentCapacity(&neg, nil) {
		t.Error("negative minimum should be invalid")
	}
}
