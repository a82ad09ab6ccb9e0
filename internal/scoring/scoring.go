// Package scoring computes match scores between a donation and recipient
// candidates. Two interchangeable strategies implement the Strategy
// interface: a semantic-embedding strategy and a rule-based fallback.
package scoring

import (
	"context"

	"github.com/Vievek/zero-hunger-sub000/internal/model"
)

// QualifyThreshold is the minimum total score a candidate must exceed to be
// offered the donation.
const QualifyThreshold = 0.3

// Score is the structured result for one (donation, candidate) pair. Every
// sub-score and Total lies in [0,1].
type Score struct {
	Similarity  float64 `json:"similarity,omitempty"`
	Keyword     float64 `json:"keyword,omitempty"`
	Proximity   float64 `json:"proximity"`
	Dietary     float64 `json:"dietary"`
	Capacity    float64 `json:"capacity"`
	OrgAffinity float64 `json:"org_affinity,omitempty"`
	Total       float64 `json:"total"`
	Strategy    string  `json:"strategy"`
}

// Strategy scores one candidate for one donation.
type Strategy interface {
	Name() string
	Score(ctx context.Context, d *model.Donation, c *model.RecipientCandidate) (Score, error)
}

// Ranked pairs a candidate with its score, sorted descending by Total.
type Ranked struct {
	Candidate model.RecipientCandidate
	Score     Score
}
