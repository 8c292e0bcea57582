package services

import (
	"time"

	"proposal-market/internal/models"
)

// RequireSignedNDA is the gate shared by the contact-exchange protocol and
// every read path that exposes exchanged contact payloads.
func RequireSignedNDA(sub *models.Submission) error {
	if sub.NdaSignedAt == nil {
		return ErrNdaRequired
	}
	return nil
}

// NdaTemplate is the platform non-disclosure agreement presented to buyers
type NdaTemplate struct {
	Title       string    `json:"title"`
	Content     string    `json:"content"`
	Version     string    `json:"version"`
	LastUpdated time.Time `json:"last_updated"`
}

// GetNdaTemplate returns the current NDA text
func GetNdaTemplate() NdaTemplate {
	return NdaTemplate{
		Title: "Non-Disclosure Agreement",
		Content: `This Non-Disclosure Agreement is entered into between the disclosing
party (the seller) and the receiving party (the buyer) through the platform.

1. Confidential Information covers all business information disclosed through
   the platform, including business plans, financial data, technical material,
   customer information and operating models.
2. The receiving party shall keep the information strictly confidential,
   shall not disclose it to any third party, and shall not use it for any
   purpose other than evaluating the proposed transaction.
3. Excluded is information that is publicly available, already known to the
   receiving party, lawfully obtained from a third party, or required to be
   disclosed by law.
4. This agreement takes effect upon signature and remains in force for five
   years.
5. Breach of this agreement gives rise to liability for damages and any
   further remedies available at law.`,
		Version:     "1.0",
		LastUpdated: time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC),
	}
}
