package scoring

import (
	"context"
	"errors"
	"testing"

	"github.com/Vievek/zero-hunger-sub000/internal/model"
	"go.uber.org/zap"
)

func TestProximityScore(t *testing.T) {
	here := &model.Location{Lat: 6.9271, Lng: 79.8612}

	if got := proximityScore(here, here); got != 1.0 {
		t.Fatalf("expected 1.0 for identical locations, got %v", got)
	}

	if got := proximityScore(nil, here); got != 0.5 {
		t.Fatalf("expected neutral 0.5 for missing location, got %v", got)
	}

	far := &model.Location{Lat: here.Lat + 1.0, Lng: here.Lng}
	if got := proximityScore(here, far); got != 0.2 {
		t.Fatalf("expected floor 0.2 beyond the cap, got %v", got)
	}

	near := &model.Location{Lat: here.Lat + 0.05, Lng: here.Lng}
	if got := proximityScore(here, near); got != 1.0 {
		t.Fatalf("expected 1.0 within the closest band, got %v", got)
	}
}

func TestDietaryScore(t *testing.T) {
	if got := dietaryScore([]string{"vegan"}, []string{"meat"}, nil); got != 0.1 {
		t.Fatalf("expected single-conflict penalty 0.1, got %v", got)
	}

	if got := dietaryScore([]string{"vegan", "gluten_free"}, []string{"meat"}, []string{"bread"}); got != 0.1*0.1 {
		t.Fatalf("expected stacked penalty 0.01, got %v", got)
	}

	if got := dietaryScore([]string{"vegan"}, []string{"vegetables"}, nil); got != 1.0 {
		t.Fatalf("expected 1.0 without conflicts, got %v", got)
	}

	if got := dietaryScore([]string{"unknown_restriction"}, []string{"meat"}, nil); got != 1.0 {
		t.Fatalf("expected unknown restrictions to be ignored, got %v", got)
	}

	// Restriction names are normalized, so spacing and case do not matter.
	if got := dietaryScore([]string{"  Gluten Free "}, []string{"bread"}, nil); got != 0.1 {
		t.Fatalf("expected normalized restriction to conflict, got %v", got)
	}
}

func TestCapacityScore(t *testing.T) {
	cases := []struct {
		load, capacity int
		embedding      bool
		expect         float64
	}{
		{10, 10, false, 0},
		{8, 10, false, 0.2},
		{6, 10, false, 0.4},
		{5, 10, true, 0.5},
		{5, 10, false, 0.6},
		{4, 10, false, 0.6},
		{2, 10, false, 0.8},
		{0, 10, false, 1.0},
		{0, 10, true, 1.0},
	}

	for _, tc := range cases {
		c := &model.RecipientCandidate{Capacity: tc.capacity, CurrentLoad: tc.load}
		if got := capacityScore(c, tc.embedding); got != tc.expect {
			t.Fatalf("load %d/%d embedding=%v: expected %v, got %v",
				tc.load, tc.capacity, tc.embedding, tc.expect, got)
		}
	}
}

func TestKeywordScore(t *testing.T) {
	d := &model.Donation{
		Categories: []string{"vegetables"},
		Tags:       []string{"fresh"},
	}
	c := &model.RecipientCandidate{PreferredCategories: []string{"Vegetables"}}

	if got := keywordScore(d, c); got != 0.5 {
		t.Fatalf("expected 1 of 2 terms matched = 0.5, got %v", got)
	}

	empty := &model.Donation{}
	if got := keywordScore(empty, c); got != 0 {
		t.Fatalf("expected 0 for a donation without terms, got %v", got)
	}

	conflicted := &model.Donation{Categories: []string{"meat"}}
	strict := &model.RecipientCandidate{
		PreferredCategories: []string{"meat"},
		DietaryRestrictions: []string{"vegan"},
	}
	if got := keywordScore(conflicted, strict); got != 0.1 {
		t.Fatalf("expected dietary penalty on keyword score, got %v", got)
	}
}

func TestOrganizationAffinity(t *testing.T) {
	if got := organizationAffinity("food_bank"); got != 1.0 {
		t.Fatalf("expected 1.0 for food bank, got %v", got)
	}
	if got := organizationAffinity("Food Bank"); got != 1.0 {
		t.Fatalf("expected normalized org type to match, got %v", got)
	}
	if got := organizationAffinity("someone_else"); got != defaultOrgAffinity {
		t.Fatalf("expected default affinity, got %v", got)
	}
}

func TestRuleStrategyScoresIdealCandidate(t *testing.T) {
	loc := &model.Location{Lat: 6.9, Lng: 79.8}
	d := &model.Donation{
		ID:         "d1",
		Categories: []string{"vegetables"},
		Location:   loc,
	}
	c := &model.RecipientCandidate{
		ID:                  "r1",
		OrgType:             "food_bank",
		Capacity:            10,
		PreferredCategories: []string{"vegetables"},
		Location:            loc,
		Verified:            true,
	}

	score, err := NewRuleStrategy().Score(context.Background(), d, c)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if score.Total != 1.0 {
		t.Fatalf("expected a perfect candidate to score 1.0, got %v", score.Total)
	}
	if score.Strategy != "rules" {
		t.Fatalf("unexpected strategy label: %s", score.Strategy)
	}
	if score.Total <= QualifyThreshold {
		t.Fatalf("expected score above the qualify threshold")
	}
}

func TestRuleStrategyRejectsNilInput(t *testing.T) {
	if _, err := NewRuleStrategy().Score(context.Background(), nil, nil); err == nil {
		t.Fatalf("expected error for nil input")
	}
}

type stubEmbedder struct {
	vectors map[string][]float64
	err     error
}

func (s *stubEmbedder) Embed(_ context.Context, text string) ([]float64, error) {
	if s.err != nil {
		return nil, s.err
	}
	if vec, ok := s.vectors[text]; ok {
		return vec, nil
	}
	return []float64{1, 0, 0}, nil
}

func TestEmbeddingStrategyBlendsSimilarity(t *testing.T) {
	loc := &model.Location{Lat: 6.9, Lng: 79.8}
	d := &model.Donation{ID: "d1", Title: "Rice packs", Location: loc}
	c := &model.RecipientCandidate{ID: "r1", Name: "Shelter", Capacity: 10, Location: loc}

	strategy := NewEmbeddingStrategy(&stubEmbedder{})

	score, err := strategy.Score(context.Background(), d, c)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	// Identical stub vectors: similarity 1, proximity 1, dietary 1, capacity 1.
	if score.Total != 1.0 {
		t.Fatalf("expected 1.0, got %v", score.Total)
	}
	if score.Similarity != 1.0 {
		t.Fatalf("expected similarity 1.0, got %v", score.Similarity)
	}
	if score.Strategy != "embedding" {
		t.Fatalf("unexpected strategy label: %s", score.Strategy)
	}
}

func TestEmbeddingStrategyPropagatesOracleErrors(t *testing.T) {
	strategy := NewEmbeddingStrategy(&stubEmbedder{err: errors.New("quota exceeded")})

	d := &model.Donation{ID: "d1", Title: "Rice"}
	c := &model.RecipientCandidate{ID: "r1", Name: "Shelter", Capacity: 10}

	if _, err := strategy.Score(context.Background(), d, c); err == nil {
		t.Fatalf("expected oracle error to propagate")
	}
}

type failingStrategy struct {
	calls int
}

func (s *failingStrategy) Name() string { return "embedding" }

func (s *failingStrategy) Score(_ context.Context, _ *model.Donation, _ *model.RecipientCandidate) (Score, error) {
	s.calls++
	return Score{}, errors.New("embedding oracle down")
}

func TestEngineFailsOpenAndStaysDegraded(t *testing.T) {
	primary := &failingStrategy{}
	engine := NewEngine(primary, NewRuleStrategy(), zap.NewNop())

	loc := &model.Location{Lat: 6.9, Lng: 79.8}
	d := &model.Donation{ID: "d1", Categories: []string{"vegetables"}, Location: loc}
	candidates := []model.RecipientCandidate{
		{ID: "r1", OrgType: "food_bank", Capacity: 10, PreferredCategories: []string{"vegetables"}, Location: loc, Verified: true},
	}

	ranked := engine.Rank(context.Background(), d, candidates)
	if len(ranked) != 1 {
		t.Fatalf("expected 1 ranked candidate after fail-open, got %d", len(ranked))
	}
	if ranked[0].Score.Strategy != "rules" {
		t.Fatalf("expected rules strategy after degradation, got %s", ranked[0].Score.Strategy)
	}
	if engine.ActiveStrategy() != "rules" {
		t.Fatalf("expected engine to stay degraded")
	}

	callsAfterFirst := primary.calls
	engine.Rank(context.Background(), d, candidates)
	if primary.calls != callsAfterFirst {
		t.Fatalf("degraded engine must not retry the primary strategy")
	}
}

func TestEngineDropsUnqualifiedAndFullCandidates(t *testing.T) {
	engine := NewEngine(nil, NewRuleStrategy(), zap.NewNop())

	loc := &model.Location{Lat: 6.9, Lng: 79.8}
	d := &model.Donation{ID: "d1", Categories: []string{"vegetables"}, Tags: []string{"dairy"}, Location: loc}
	candidates := []model.RecipientCandidate{
		{ID: "full", OrgType: "food_bank", Capacity: 5, CurrentLoad: 5, PreferredCategories: []string{"vegetables"}, Location: loc, Verified: true},
		{ID: "poor", OrgType: "other", Capacity: 10, CurrentLoad: 9, DietaryRestrictions: []string{"lactose_intolerant"}, Location: &model.Location{Lat: 20, Lng: 20}, Verified: true},
		{ID: "good", OrgType: "shelter", Capacity: 10, PreferredCategories: []string{"vegetables"}, Location: loc, Verified: true},
	}

	ranked := engine.Rank(context.Background(), d, candidates)
	if len(ranked) != 1 {
		t.Fatalf("expected only the qualifying candidate, got %d", len(ranked))
	}
	if ranked[0].Candidate.ID != "good" {
		t.Fatalf("unexpected winner: %s", ranked[0].Candidate.ID)
	}
}

func TestEngineSortsDescending(t *testing.T) {
	engine := NewEngine(nil, NewRuleStrategy(), zap.NewNop())

	loc := &model.Location{Lat: 6.9, Lng: 79.8}
	d := &model.Donation{ID: "d1", Categories: []string{"vegetables"}, Location: loc}
	candidates := []model.RecipientCandidate{
		{ID: "weaker", OrgType: "community_center", Capacity: 10, CurrentLoad: 5, PreferredCategories: []string{"vegetables"}, Location: loc, Verified: true},
		{ID: "stronger", OrgType: "food_bank", Capacity: 10, PreferredCategories: []string{"vegetables"}, Location: loc, Verified: true},
	}

	ranked := engine.Rank(context.Background(), d, candidates)
	if len(ranked) != 2 {
		t.Fatalf("expected 2 ranked candidates, got %d", len(ranked))
	}
	if ranked[0].Candidate.ID != "stronger" {
		t.Fatalf("expected descending order, got %s first", ranked[0].Candidate.ID)
	}
	if ranked[0].Score.Total < ranked[1].Score.Total {
		t.Fatalf("scores out of order: %v < %v", ranked[0].Score.Total, ranked[1].Score.Total)
	}
}
