package models

import (
	"testing"
	"time"
)

func TestRecomputeEngagementScore(t *testing.T) {
	base := time.Date(2024, 6, 1, 9, 0, 0, 0, time.UTC)
	after := func(d time.Duration) *time.Time {
		ts := base.Add(d)
		return &ts
	}

	tests := []struct {
		name      string
		sub       Submission
		questions int
		interests int
		want      int
	}{
		{
			name: "untouched thread",
			sub:  Submission{Status: SubmissionStatusSent, SentAt: base},
			want: 0,
		},
		{
			name: "single fast view",
			sub: Submission{
				Status:    SubmissionStatusViewed,
				SentAt:    base,
				ViewCount: 1,
			},
			want: 25, // 20 view + 5 status
		},
		{
			name: "view counts once regardless of volume",
			sub: Submission{
				Status:    SubmissionStatusViewed,
				SentAt:    base,
				ViewCount: 40,
			},
			want: 25,
		},
		{
			name: "questions cap at two",
			sub: Submission{
				Status:    SubmissionStatusQuestioned,
				SentAt:    base,
				ViewCount: 1,
			},
			questions: 5,
			want:      65, // 20 + 30 cap + 15 status
		},
		{
			name: "interests cap at two",
			sub: Submission{
				Status:    SubmissionStatusInterested,
				SentAt:    base,
				ViewCount: 1,
			},
			interests: 7,
			want:      50, // 20 + 20 cap + 10 status
		},
		{
			name: "fast response bonus",
			sub: Submission{
				Status:      SubmissionStatusInterested,
				SentAt:      base,
				ViewCount:   1,
				RespondedAt: after(3 * time.Hour),
			},
			interests: 1,
			want:      60, // 20 + 10 + 10 status + 10 latency
		},
		{
			name: "slower response bonus",
			sub: Submission{
				Status:      SubmissionStatusInterested,
				SentAt:      base,
				ViewCount:   1,
				RespondedAt: after(48 * time.Hour),
			},
			interests: 1,
			want:      55, // 20 + 10 + 10 status + 5 latency
		},
		{
			name: "no bonus past 72h",
			sub: Submission{
				Status:      SubmissionStatusInterested,
				SentAt:      base,
				ViewCount:   1,
				RespondedAt: after(100 * time.Hour),
			},
			interests: 1,
			want:      50,
		},
		{
			name: "deal closed clamps at 100",
			sub: Submission{
				Status:        SubmissionStatusDealClosed,
				SentAt:        base,
				ViewCount:     3,
				DownloadCount: 2,
				RespondedAt:   after(time.Hour),
			},
			questions: 4,
			interests: 4,
			want:      100, // 20+20+30+20+50+10 = 150 clamped
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sub := tt.sub
			sub.RecomputeEngagementScore(tt.questions, tt.interests)
			if sub.EngagementScore != tt.want {
				t.Errorf("score = %d, want %d", sub.EngagementScore, tt.want)
			}
		})
	}
}

func TestLatencyBonusBoundaries(t *testing.T) {
	base := time.Now()

	// Exactly 24h still earns the full bonus, exactly 72h the reduced one.
	sub := Submission{Status: SubmissionStatusSent, SentAt: base}
	at24 := base.Add(24 * time.Hour)
	sub.RespondedAt = &at24
	sub.RecomputeEngagementScore(0, 0)
	if sub.EngagementScore != 10 {
		t.Errorf("24h boundary: score = %d, want 10", sub.EngagementScore)
	}

	at72 := base.Add(72 * time.Hour)
	sub.RespondedAt = &at72
	sub.RecomputeEngagementScore(0, 0)
	if sub.EngagementScore != 5 {
		t.Errorf("72h boundary: score = %d, want 5", sub.EngagementScore)
	}

	// A sub-hour response still registers the bonus even though the stored
	// latency rounds down to zero hours.
	at30m := base.Add(30 * time.Minute)
	sub.RespondedAt = &at30m
	sub.RecomputeEngagementScore(0, 0)
	if sub.EngagementScore != 10 {
		t.Errorf("sub-hour response: score = %d, want 10", sub.EngagementScore)
	}
	sub.UpdateResponseTime()
	if sub.ResponseTime == nil || *sub.ResponseTime != 1 {
		// 30 minutes rounds to 1 hour
		t.Errorf("response time = %v, want 1", sub.ResponseTime)
	}
}

func TestSubmissionStatusIsTerminal(t *testing.T) {
	terminal := []SubmissionStatus{
		SubmissionStatusDealClosed,
		SubmissionStatusRejected,
		SubmissionStatusArchived,
	}
	active := []SubmissionStatus{
		SubmissionStatusSent,
		SubmissionStatusViewed,
		SubmissionStatusInterested,
		SubmissionStatusQuestioned,
		SubmissionStatusNdaSigned,
		SubmissionStatusDetailRequested,
		SubmissionStatusUnderNegotiation,
		SubmissionStatusContactExchanged,
	}

	for _, s := range terminal {
		if !s.IsTerminal() {
			t.Errorf("%s should be terminal", s)
		}
	}
	for _, s := range active {
		if s.IsTerminal() {
			t.Errorf("%s should not be terminal", s)
		}
	}
}
