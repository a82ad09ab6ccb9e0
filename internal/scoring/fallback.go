package scoring

import (
	"context"
	"fmt"

	"github.com/Vievek/zero-hunger-sub000/internal/model"
)

// RuleStrategy is the deterministic fallback: keyword overlap plus proximity,
// dietary, capacity and organization-affinity components. It never errors for
// healthy input and needs no external services.
type RuleStrategy struct{}

// NewRuleStrategy returns the rule-based scoring strategy.
func NewRuleStrategy() *RuleStrategy {
	return &RuleStrategy{}
}

func (s *RuleStrategy) Name() string { return "rules" }

func (s *RuleStrategy) Score(_ context.Context, d *model.Donation, c *model.RecipientCandidate) (Score, error) {
	if d == nil || c == nil {
		return Score{}, fmt.Errorf("donation and candidate are required")
	}

	score := Score{
		Keyword:     keywordScore(d, c),
		Proximity:   proximityScore(d.Location, c.Location),
		Dietary:     dietaryScore(c.DietaryRestrictions, d.Categories, d.Tags),
		Capacity:    capacityScore(c, false),
		OrgAffinity: organizationAffinity(c.OrgType),
		Strategy:    s.Name(),
	}

	score.Total = 0.30*score.Keyword +
		0.25*score.Proximity +
		0.20*score.Dietary +
		0.15*score.Capacity +
		0.10*score.OrgAffinity

	return score, nil
}
