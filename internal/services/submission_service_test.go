package services

import (
	"context"
	"errors"
	"testing"

	"proposal-market/internal/models"

	"gorm.io/gorm"
)

func TestNdaGateAndContactExchange(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	seller := seedUser(t, env.db, 1, models.RoleSeller)
	admin := seedUser(t, env.db, 2, models.RoleAdmin)
	buyer := seedUser(t, env.db, 3, models.RoleBuyer)

	proposal := seedPublishedProposal(t, env, seller, admin)
	sub := seedSubmission(t, env, proposal, buyer.UserID)

	// Contact exchange is locked until the NDA is signed.
	_, err := env.submissions.RequestContactExchange(ctx, buyer, sub.ID, &models.ContactExchangeRequest{})
	if !errors.Is(err, ErrNdaRequired) {
		t.Fatalf("expected ErrNdaRequired, got %v", err)
	}

	signed, err := env.submissions.SignNda(ctx, buyer, sub.ID, &models.SignNdaRequest{
		Agreed:           true,
		DigitalSignature: "Test User3",
	}, "203.0.113.9", "go-test")
	if err != nil {
		t.Fatalf("SignNda failed: %v", err)
	}
	if signed.NdaSignedAt == nil || signed.Status != models.SubmissionStatusNdaSigned {
		t.Fatalf("expected nda_signed thread, got %s signedAt=%v", signed.Status, signed.NdaSignedAt)
	}
	if signed.NdaIPAddress != "203.0.113.9" {
		t.Errorf("expected signature IP recorded, got %q", signed.NdaIPAddress)
	}
	if signed.RespondedAt != nil {
		t.Error("a signature alone is not a buyer response")
	}

	// The signature is recorded at most once.
	_, err = env.submissions.SignNda(ctx, buyer, sub.ID, &models.SignNdaRequest{Agreed: true, DigitalSignature: "x"}, "", "")
	if !errors.Is(err, ErrNdaAlreadySigned) {
		t.Fatalf("expected ErrNdaAlreadySigned, got %v", err)
	}

	// Approval before any request is meaningless.
	_, err = env.submissions.ApproveContactExchange(ctx, seller, sub.ID, &models.ApproveContactRequest{
		SellerContact: models.ContactInfo{Email: "seller@example.com"},
	})
	if !errors.Is(err, ErrNoRequestPending) {
		t.Fatalf("expected ErrNoRequestPending, got %v", err)
	}

	requested, err := env.submissions.RequestContactExchange(ctx, buyer, sub.ID, &models.ContactExchangeRequest{Message: "keen to talk"})
	if err != nil {
		t.Fatalf("RequestContactExchange failed: %v", err)
	}
	if requested.Status != models.SubmissionStatusDetailRequested || requested.ContactRequestedAt == nil {
		t.Fatalf("expected detail_requested with request recorded, got %s", requested.Status)
	}

	_, err = env.submissions.RequestContactExchange(ctx, buyer, sub.ID, &models.ContactExchangeRequest{})
	if !errors.Is(err, ErrAlreadyRequested) {
		t.Fatalf("expected ErrAlreadyRequested, got %v", err)
	}

	// Only the thread's seller approves, not the buyer and not an admin.
	_, err = env.submissions.ApproveContactExchange(ctx, buyer, sub.ID, &models.ApproveContactRequest{})
	if !errors.Is(err, ErrAuthorizationDenied) {
		t.Fatalf("expected ErrAuthorizationDenied for buyer approval, got %v", err)
	}
	_, err = env.submissions.ApproveContactExchange(ctx, admin, sub.ID, &models.ApproveContactRequest{
		SellerContact: models.ContactInfo{Email: "admin@example.com"},
	})
	if !errors.Is(err, ErrAuthorizationDenied) {
		t.Fatalf("expected ErrAuthorizationDenied for admin approval, got %v", err)
	}

	approved, err := env.submissions.ApproveContactExchange(ctx, seller, sub.ID, &models.ApproveContactRequest{
		SellerContact: models.ContactInfo{Email: "seller@example.com", Phone: "555-0101"},
	})
	if err != nil {
		t.Fatalf("ApproveContactExchange failed: %v", err)
	}
	if approved.Status != models.SubmissionStatusContactExchanged {
		t.Fatalf("expected contact_exchanged, got %s", approved.Status)
	}
	if approved.SellerContact.Email != "seller@example.com" {
		t.Error("expected seller contact payload to be stored")
	}
	if approved.BuyerContact.Email != "user3@example.com" {
		t.Errorf("expected buyer contact snapshot from profile, got %q", approved.BuyerContact.Email)
	}

	_, err = env.submissions.ApproveContactExchange(ctx, seller, sub.ID, &models.ApproveContactRequest{})
	if !errors.Is(err, ErrAlreadyApproved) {
		t.Fatalf("expected ErrAlreadyApproved, got %v", err)
	}
}

func TestContactRedactionBeforeApproval(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	seller := seedUser(t, env.db, 1, models.RoleSeller)
	admin := seedUser(t, env.db, 2, models.RoleAdmin)
	buyer := seedUser(t, env.db, 3, models.RoleBuyer)

	proposal := seedPublishedProposal(t, env, seller, admin)
	sub := seedSubmission(t, env, proposal, buyer.UserID)

	// Plant payloads directly to prove the read path strips them.
	env.db.Model(&models.Submission{}).Where("id = ?", sub.ID).
		Updates(map[string]interface{}{
			"buyer_contact_email":  "leak@example.com",
			"seller_contact_email": "leak@example.com",
		})

	got, err := env.submissions.Get(ctx, seller, sub.ID)
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if got.BuyerContact.Email != "" || got.SellerContact.Email != "" {
		t.Error("expected contact payloads redacted before exchange approval")
	}

	// A stranger cannot read the thread at all.
	outsider := seedUser(t, env.db, 4, models.RoleBuyer)
	if _, err := env.submissions.Get(ctx, outsider, sub.ID); !errors.Is(err, ErrAuthorizationDenied) {
		t.Fatalf("expected ErrAuthorizationDenied for outsider, got %v", err)
	}
}

func TestTerminalStateBlocksTransitions(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	seller := seedUser(t, env.db, 1, models.RoleSeller)
	admin := seedUser(t, env.db, 2, models.RoleAdmin)
	buyer := seedUser(t, env.db, 3, models.RoleBuyer)

	proposal := seedPublishedProposal(t, env, seller, admin)
	sub := seedSubmission(t, env, proposal, buyer.UserID)

	closed, err := env.submissions.Close(ctx, seller, sub.ID, &models.CloseSubmissionRequest{
		Status: string(models.SubmissionStatusRejected),
		Reason: "not a fit",
	})
	if err != nil {
		t.Fatalf("Close failed: %v", err)
	}
	if closed.Status != models.SubmissionStatusRejected || closed.ClosedAt == nil {
		t.Fatalf("expected rejected closed thread, got %s", closed.Status)
	}

	if _, err := env.submissions.RecordView(ctx, buyer, sub.ID); !errors.Is(err, ErrTerminalState) {
		t.Fatalf("expected ErrTerminalState for view on closed thread, got %v", err)
	}
	if _, err := env.submissions.SignNda(ctx, buyer, sub.ID, &models.SignNdaRequest{Agreed: true, DigitalSignature: "x"}, "", ""); !errors.Is(err, ErrTerminalState) {
		t.Fatalf("expected ErrTerminalState for nda on closed thread, got %v", err)
	}
	if _, err := env.submissions.Close(ctx, seller, sub.ID, &models.CloseSubmissionRequest{Status: "archived"}); !errors.Is(err, ErrTerminalState) {
		t.Fatalf("expected ErrTerminalState for double close, got %v", err)
	}
}

func TestBuyerMayOnlyReject(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	seller := seedUser(t, env.db, 1, models.RoleSeller)
	admin := seedUser(t, env.db, 2, models.RoleAdmin)
	buyer := seedUser(t, env.db, 3, models.RoleBuyer)

	proposal := seedPublishedProposal(t, env, seller, admin)
	sub := seedSubmission(t, env, proposal, buyer.UserID)

	_, err := env.submissions.Close(ctx, buyer, sub.ID, &models.CloseSubmissionRequest{Status: string(models.SubmissionStatusDealClosed)})
	if !errors.Is(err, ErrAuthorizationDenied) {
		t.Fatalf("expected ErrAuthorizationDenied for buyer closing deal, got %v", err)
	}

	closed, err := env.submissions.Close(ctx, buyer, sub.ID, &models.CloseSubmissionRequest{Status: string(models.SubmissionStatusRejected)})
	if err != nil {
		t.Fatalf("buyer reject failed: %v", err)
	}
	if closed.Status != models.SubmissionStatusRejected {
		t.Fatalf("expected rejected, got %s", closed.Status)
	}
}

func TestEngagementScoreScenario(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	seller := seedUser(t, env.db, 1, models.RoleSeller)
	admin := seedUser(t, env.db, 2, models.RoleAdmin)
	buyer := seedUser(t, env.db, 3, models.RoleBuyer)

	proposal := seedPublishedProposal(t, env, seller, admin)
	sub := seedSubmission(t, env, proposal, buyer.UserID)

	// view, view, question, then interest. Views are worth 20 once, one
	// question 15, one interest 10, interested status 10 and the fast
	// response bonus 10: 65 in total.
	if _, err := env.submissions.RecordView(ctx, buyer, sub.ID); err != nil {
		t.Fatalf("RecordView failed: %v", err)
	}
	if _, err := env.submissions.RecordView(ctx, buyer, sub.ID); err != nil {
		t.Fatalf("RecordView failed: %v", err)
	}
	if _, err := env.submissions.AddComment(ctx, buyer, sub.ID, &models.AddCommentRequest{
		Content: "What share of revenue is recurring?",
		Type:    string(models.CommentQuestion),
	}); err != nil {
		t.Fatalf("AddComment failed: %v", err)
	}
	if _, err := env.submissions.ExpressInterest(ctx, buyer, sub.ID, &models.InterestRequest{
		InterestLevel: string(models.InterestHigh),
		Comments:      "strong fit",
	}); err != nil {
		t.Fatalf("ExpressInterest failed: %v", err)
	}

	got, err := env.submissions.Get(ctx, seller, sub.ID)
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if got.Status != models.SubmissionStatusInterested {
		t.Fatalf("expected interested after the interest event, got %s", got.Status)
	}
	if got.EngagementScore != 65 {
		t.Errorf("expected engagement score 65, got %d", got.EngagementScore)
	}
	if got.RespondedAt == nil || got.ResponseTime == nil {
		t.Fatal("expected response latency recorded")
	}
	if *got.ResponseTime != 2 {
		t.Errorf("expected response time 2h, got %d", *got.ResponseTime)
	}

	// The interaction log holds the full trail in order, each funnel move
	// journaled next to the event that caused it.
	wantTypes := []models.InteractionType{
		models.InteractionView,
		models.InteractionStatusChange, // sent -> viewed
		models.InteractionView,
		models.InteractionQuestion,
		models.InteractionStatusChange, // viewed -> questioned
		models.InteractionInterest,
		models.InteractionStatusChange, // questioned -> interested
	}
	if len(got.Interactions) != len(wantTypes) {
		t.Fatalf("expected %d interactions, got %d", len(wantTypes), len(got.Interactions))
	}
	for i, want := range wantTypes {
		if got.Interactions[i].Type != want {
			t.Errorf("interaction %d: expected %s, got %s", i, want, got.Interactions[i].Type)
		}
	}
	first := got.Interactions[1].Details
	if first["from"] != "sent" || first["to"] != "viewed" {
		t.Errorf("expected journaled sent->viewed move, got %v", first)
	}
	if actor, ok := first["actor_id"].(float64); !ok || uint(actor) != buyer.UserID {
		t.Errorf("expected the buyer recorded as actor, got %v", first["actor_id"])
	}

	// Proposal aggregate interest counter moved too.
	reloaded, err := env.repo.GetProposalByID(ctx, proposal.ID)
	if err != nil {
		t.Fatalf("reload failed: %v", err)
	}
	if reloaded.InterestCount != 1 {
		t.Errorf("expected proposal interest count 1, got %d", reloaded.InterestCount)
	}
}

func TestEngagementScoreNeverExceeds100(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	seller := seedUser(t, env.db, 1, models.RoleSeller)
	admin := seedUser(t, env.db, 2, models.RoleAdmin)
	buyer := seedUser(t, env.db, 3, models.RoleBuyer)

	proposal := seedPublishedProposal(t, env, seller, admin)
	sub := seedSubmission(t, env, proposal, buyer.UserID)

	if _, err := env.submissions.RecordView(ctx, buyer, sub.ID); err != nil {
		t.Fatal(err)
	}
	if _, err := env.submissions.RecordDownload(ctx, buyer, sub.ID); err != nil {
		t.Fatal(err)
	}
	for i := 0; i < 5; i++ {
		if _, err := env.submissions.AddComment(ctx, buyer, sub.ID, &models.AddCommentRequest{
			Content: "Another diligence question about the pipeline.",
			Type:    string(models.CommentQuestion),
		}); err != nil {
			t.Fatal(err)
		}
	}
	for i := 0; i < 4; i++ {
		if _, err := env.submissions.ExpressInterest(ctx, buyer, sub.ID, &models.InterestRequest{
			InterestLevel: string(models.InterestVeryHigh),
		}); err != nil {
			t.Fatal(err)
		}
	}
	if _, err := env.submissions.SignNda(ctx, buyer, sub.ID, &models.SignNdaRequest{Agreed: true, DigitalSignature: "x"}, "", ""); err != nil {
		t.Fatal(err)
	}
	if _, err := env.submissions.RequestContactExchange(ctx, buyer, sub.ID, &models.ContactExchangeRequest{}); err != nil {
		t.Fatal(err)
	}
	sub2, err := env.submissions.ApproveContactExchange(ctx, seller, sub.ID, &models.ApproveContactRequest{
		SellerContact: models.ContactInfo{Email: "s@example.com"},
	})
	if err != nil {
		t.Fatal(err)
	}
	if sub2.EngagementScore != 100 {
		t.Errorf("expected clamped score 100, got %d", sub2.EngagementScore)
	}
}

func TestQuestionCommentFlow(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	seller := seedUser(t, env.db, 1, models.RoleSeller)
	admin := seedUser(t, env.db, 2, models.RoleAdmin)
	buyer := seedUser(t, env.db, 3, models.RoleBuyer)

	proposal := seedPublishedProposal(t, env, seller, admin)
	sub := seedSubmission(t, env, proposal, buyer.UserID)

	if _, err := env.submissions.RecordView(ctx, buyer, sub.ID); err != nil {
		t.Fatalf("RecordView failed: %v", err)
	}

	question, err := env.submissions.AddComment(ctx, buyer, sub.ID, &models.AddCommentRequest{
		Content:          "How sticky is the customer base?",
		Type:             string(models.CommentQuestion),
		RequiresResponse: true,
	})
	if err != nil {
		t.Fatalf("AddComment failed: %v", err)
	}

	got, err := env.submissions.Get(ctx, buyer, sub.ID)
	if err != nil {
		t.Fatal(err)
	}
	if got.Status != models.SubmissionStatusQuestioned {
		t.Fatalf("expected questioned, got %s", got.Status)
	}

	reply, err := env.submissions.ReplyToComment(ctx, seller, sub.ID, question.ID, &models.ReplyRequest{
		Content: "Net revenue retention has been above 110% for three years.",
	})
	if err != nil {
		t.Fatalf("ReplyToComment failed: %v", err)
	}
	if reply.ParentID == nil || *reply.ParentID != question.ID {
		t.Error("expected reply to reference its parent")
	}

	parent, err := env.repo.GetCommentByID(ctx, question.ID)
	if err != nil {
		t.Fatal(err)
	}
	if !parent.IsAnswered {
		t.Error("expected question to be marked answered after seller reply")
	}

	comments, total, err := env.submissions.ListComments(ctx, buyer, sub.ID, 10, 0)
	if err != nil {
		t.Fatalf("ListComments failed: %v", err)
	}
	if total != 2 || len(comments) != 2 {
		t.Errorf("expected 2 comments, got total=%d len=%d", total, len(comments))
	}
}

func TestFunnelTransitionRules(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	seller := seedUser(t, env.db, 1, models.RoleSeller)
	admin := seedUser(t, env.db, 2, models.RoleAdmin)
	buyer := seedUser(t, env.db, 3, models.RoleBuyer)

	proposal := seedPublishedProposal(t, env, seller, admin)
	sub := seedSubmission(t, env, proposal, buyer.UserID)

	// A question before any view leaves the stage alone.
	if _, err := env.submissions.AddComment(ctx, buyer, sub.ID, &models.AddCommentRequest{
		Content: "Is the founder staying on after the sale?",
		Type:    string(models.CommentQuestion),
	}); err != nil {
		t.Fatalf("AddComment failed: %v", err)
	}
	got, err := env.submissions.Get(ctx, buyer, sub.ID)
	if err != nil {
		t.Fatal(err)
	}
	if got.Status != models.SubmissionStatusSent {
		t.Fatalf("expected question on an unviewed thread to keep sent, got %s", got.Status)
	}

	// Interest lands the thread on interested even from a later stage.
	if _, err := env.submissions.SignNda(ctx, buyer, sub.ID, &models.SignNdaRequest{Agreed: true, DigitalSignature: "x"}, "", ""); err != nil {
		t.Fatal(err)
	}
	expressed, err := env.submissions.ExpressInterest(ctx, buyer, sub.ID, &models.InterestRequest{
		InterestLevel: string(models.InterestMedium),
	})
	if err != nil {
		t.Fatalf("ExpressInterest failed: %v", err)
	}
	if expressed.Status != models.SubmissionStatusInterested {
		t.Fatalf("expected interest to set interested, got %s", expressed.Status)
	}
}

func TestProposalInterestOpensThread(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	seller := seedUser(t, env.db, 1, models.RoleSeller)
	admin := seedUser(t, env.db, 2, models.RoleAdmin)
	buyer := seedUser(t, env.db, 3, models.RoleBuyer)

	proposal := seedPublishedProposal(t, env, seller, admin)

	// No fan-out happened: the buyer discovers the public proposal cold
	// and the first expression of interest opens the thread.
	sub, err := env.submissions.ExpressInterestInProposal(ctx, buyer, proposal.ID, &models.InterestRequest{
		InterestLevel: string(models.InterestHigh),
	})
	if err != nil {
		t.Fatalf("ExpressInterestInProposal failed: %v", err)
	}
	if sub.Status != models.SubmissionStatusInterested {
		t.Fatalf("expected interested, got %s", sub.Status)
	}
	if sub.BuyerID != buyer.UserID || sub.SellerID != seller.UserID {
		t.Error("expected the thread to bind buyer and seller")
	}

	// Repeat interest reuses the same thread.
	again, err := env.submissions.ExpressInterestInProposal(ctx, buyer, proposal.ID, &models.InterestRequest{
		InterestLevel: string(models.InterestVeryHigh),
	})
	if err != nil {
		t.Fatal(err)
	}
	if again.ID != sub.ID {
		t.Errorf("expected one thread per buyer and proposal, got %s and %s", sub.ID, again.ID)
	}
	var count int64
	env.db.Model(&models.Submission{}).Where("proposal_id = ?", proposal.ID).Count(&count)
	if count != 1 {
		t.Errorf("expected 1 submission row, got %d", count)
	}

	// Sellers cannot open threads and unpublished proposals take none.
	if _, err := env.submissions.ExpressInterestInProposal(ctx, seller, proposal.ID, &models.InterestRequest{
		InterestLevel: string(models.InterestLow),
	}); !errors.Is(err, ErrAuthorizationDenied) {
		t.Fatalf("expected ErrAuthorizationDenied for seller, got %v", err)
	}
	draft, err := env.proposals.Create(ctx, seller, validProposalRequest())
	if err != nil {
		t.Fatal(err)
	}
	if _, err := env.submissions.ExpressInterestInProposal(ctx, buyer, draft.ID, &models.InterestRequest{
		InterestLevel: string(models.InterestLow),
	}); !errors.Is(err, ErrAuthorizationDenied) {
		t.Fatalf("expected ErrAuthorizationDenied for a draft proposal, got %v", err)
	}
}

func TestCommentSurvivesConflictingSave(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	seller := seedUser(t, env.db, 1, models.RoleSeller)
	admin := seedUser(t, env.db, 2, models.RoleAdmin)
	buyer := seedUser(t, env.db, 3, models.RoleBuyer)

	proposal := seedPublishedProposal(t, env, seller, admin)
	sub := seedSubmission(t, env, proposal, buyer.UserID)

	if _, err := env.submissions.RecordView(ctx, buyer, sub.ID); err != nil {
		t.Fatal(err)
	}

	// Make the first save lose the version check so the comment path has
	// to retry against fresh state.
	stale := false
	err := env.db.Callback().Update().Before("gorm:update").Register("stale_once", func(tx *gorm.DB) {
		if stale || tx.Statement.Table != "submissions" {
			return
		}
		stale = true
		tx.Session(&gorm.Session{NewDB: true}).Exec("UPDATE submissions SET version = version + 1 WHERE id = ?", sub.ID)
	})
	if err != nil {
		t.Fatal(err)
	}
	defer env.db.Callback().Update().Remove("stale_once")

	comment, err := env.submissions.AddComment(ctx, buyer, sub.ID, &models.AddCommentRequest{
		Content: "How long is the average contract?",
		Type:    string(models.CommentQuestion),
	})
	if err != nil {
		t.Fatalf("AddComment failed: %v", err)
	}
	if !stale {
		t.Fatal("expected the first save to go stale")
	}
	if comment.ID == 0 {
		t.Error("expected a persisted comment")
	}

	var count int64
	env.db.Model(&models.Comment{}).Where("submission_id = ?", sub.ID).Count(&count)
	if count != 1 {
		t.Errorf("expected exactly one comment after the retried save, got %d", count)
	}
	got, err := env.submissions.Get(ctx, buyer, sub.ID)
	if err != nil {
		t.Fatal(err)
	}
	if got.Status != models.SubmissionStatusQuestioned {
		t.Errorf("expected questioned after the retry, got %s", got.Status)
	}
}

func TestSellerAnalytics(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	seller := seedUser(t, env.db, 1, models.RoleSeller)
	admin := seedUser(t, env.db, 2, models.RoleAdmin)
	buyerA := seedUser(t, env.db, 3, models.RoleBuyer)
	buyerB := seedUser(t, env.db, 4, models.RoleBuyer)

	proposal := seedPublishedProposal(t, env, seller, admin)
	subA := seedSubmission(t, env, proposal, buyerA.UserID)
	seedSubmission(t, env, proposal, buyerB.UserID)

	if _, err := env.submissions.RecordView(ctx, buyerA, subA.ID); err != nil {
		t.Fatal(err)
	}
	if _, err := env.submissions.Close(ctx, seller, subA.ID, &models.CloseSubmissionRequest{
		Status: string(models.SubmissionStatusDealClosed),
	}); err != nil {
		t.Fatal(err)
	}

	// Other sellers cannot read these numbers.
	if _, err := env.submissions.SellerAnalytics(ctx, buyerA, seller.UserID); !errors.Is(err, ErrAuthorizationDenied) {
		t.Fatalf("expected ErrAuthorizationDenied, got %v", err)
	}

	analytics, err := env.submissions.SellerAnalytics(ctx, seller, seller.UserID)
	if err != nil {
		t.Fatalf("SellerAnalytics failed: %v", err)
	}
	if analytics.TotalSubmissions != 2 {
		t.Errorf("expected 2 submissions, got %d", analytics.TotalSubmissions)
	}
	if analytics.ClosedDeals != 1 {
		t.Errorf("expected 1 closed deal, got %d", analytics.ClosedDeals)
	}
	if analytics.ActiveSubmissions != 1 {
		t.Errorf("expected 1 active submission, got %d", analytics.ActiveSubmissions)
	}
	if analytics.ConversionRate != 50 {
		t.Errorf("expected 50%% conversion, got %f", analytics.ConversionRate)
	}
	if analytics.TotalViews != 1 {
		t.Errorf("expected 1 total view, got %d", analytics.TotalViews)
	}
	if analytics.StatusBreakdown[models.SubmissionStatusDealClosed] != 1 {
		t.Errorf("expected breakdown to count the closed deal, got %v", analytics.StatusBreakdown)
	}
}
