package services

import (
	"context"
	"fmt"
	"testing"
	"time"

	"proposal-market/internal/models"
	"proposal-market/internal/repository"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func setupTestDB(t *testing.T) *gorm.DB {
	// :memory: is unique per connection unless using cache=shared, so the
	// handle is shared across the process and tables are cleaned per test.
	db, err := gorm.Open(sqlite.Open("file::memory:?cache=shared"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("failed to connect database: %v", err)
	}

	err = db.AutoMigrate(
		&models.User{},
		&models.Proposal{},
		&models.ProposalTarget{},
		&models.Submission{},
		&models.SubmissionInteraction{},
		&models.Comment{},
		&models.AuditLog{},
	)
	if err != nil {
		t.Fatalf("failed to migrate database: %v", err)
	}

	// Clean all tables
	db.Exec("DELETE FROM submission_interactions")
	db.Exec("DELETE FROM comments")
	db.Exec("DELETE FROM submissions")
	db.Exec("DELETE FROM proposal_targets")
	db.Exec("DELETE FROM proposals")
	db.Exec("DELETE FROM audit_logs")
	db.Exec("DELETE FROM users")

	return db
}

type testEnv struct {
	db          *gorm.DB
	repo        *repository.Repository
	proposals   *ProposalService
	submissions *SubmissionService
}

func newTestEnv(t *testing.T) *testEnv {
	db := setupTestDB(t)
	repo := repository.NewRepository(db)
	audit := NewAuditService(repo)
	return &testEnv{
		db:          db,
		repo:        repo,
		proposals:   NewProposalService(repo, audit),
		submissions: NewSubmissionService(repo, audit),
	}
}

func seedUser(t *testing.T, db *gorm.DB, id uint, role models.UserRole) models.Identity {
	user := models.User{
		ID:           id,
		Email:        fmt.Sprintf("user%d@example.com", id),
		PasswordHash: "x",
		Role:         role,
		FirstName:    "Test",
		LastName:     fmt.Sprintf("User%d", id),
		Company:      "Test Co",
		Phone:        "555-0100",
		IsActive:     true,
	}
	if err := db.Create(&user).Error; err != nil {
		t.Fatalf("failed to seed user %d: %v", id, err)
	}
	return models.Identity{UserID: id, Role: role}
}

func validProposalRequest() *models.CreateProposalRequest {
	return &models.CreateProposalRequest{
		Title:            "SaaS platform acquisition",
		Industry:         "software",
		ExecutiveSummary: "Profitable B2B SaaS with recurring revenue.",
		Description: "A bootstrapped B2B SaaS platform serving mid-market logistics " +
			"companies with route optimization and fleet telemetry dashboards.",
		TargetMarket:     "Mid-market logistics operators in Europe",
		CompanyName:      "Fleetwise GmbH",
		DealType:         string(models.DealTypeAcquisition),
		InvestmentAmount: decimal.NewFromInt(2_500_000),
		ValuationMin:     decimal.NewFromInt(8_000_000),
		ValuationMax:     decimal.NewFromInt(12_000_000),
	}
}

// seedPublishedProposal creates an approved, published proposal for the seller
func seedPublishedProposal(t *testing.T, env *testEnv, seller, admin models.Identity) *models.Proposal {
	ctx := context.Background()

	proposal, err := env.proposals.Create(ctx, seller, validProposalRequest())
	if err != nil {
		t.Fatalf("failed to create proposal: %v", err)
	}
	if _, err := env.proposals.SubmitForReview(ctx, seller, proposal.ID); err != nil {
		t.Fatalf("failed to submit proposal: %v", err)
	}
	if _, err := env.proposals.Approve(ctx, admin, proposal.ID, &models.ReviewRequest{Comments: "ok"}); err != nil {
		t.Fatalf("failed to approve proposal: %v", err)
	}
	proposal, err = env.proposals.Publish(ctx, seller, proposal.ID)
	if err != nil {
		t.Fatalf("failed to publish proposal: %v", err)
	}
	return proposal
}

// seedSubmission creates a thread directly against a published proposal
func seedSubmission(t *testing.T, env *testEnv, proposal *models.Proposal, buyerID uint) *models.Submission {
	sub := &models.Submission{
		ID:         uuid.New(),
		ProposalID: proposal.ID,
		BuyerID:    buyerID,
		SellerID:   proposal.SellerID,
		Status:     models.SubmissionStatusSent,
		SentAt:     time.Now().Add(-2 * time.Hour),
		Version:    1,
	}
	if err := env.repo.CreateSubmission(context.Background(), sub); err != nil {
		t.Fatalf("failed to seed submission: %v", err)
	}
	return sub
}
