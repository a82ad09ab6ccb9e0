package scoring

import (
	"context"
	"fmt"
	"strings"

	"github.com/Vievek/zero-hunger-sub000/internal/embed"
	"github.com/Vievek/zero-hunger-sub000/internal/model"
)

// EmbeddingStrategy scores by cosine similarity of the donation text against
// the recipient profile text, blended with the shared sub-scores. Oracle
// errors propagate so the engine can fail open to the rule strategy.
type EmbeddingStrategy struct {
	embedder embed.Embedder
}

// NewEmbeddingStrategy returns the embedding-based scoring strategy.
func NewEmbeddingStrategy(embedder embed.Embedder) *EmbeddingStrategy {
	return &EmbeddingStrategy{embedder: embedder}
}

func (s *EmbeddingStrategy) Name() string { return "embedding" }

func (s *EmbeddingStrategy) Score(ctx context.Context, d *model.Donation, c *model.RecipientCandidate) (Score, error) {
	if d == nil || c == nil {
		return Score{}, fmt.Errorf("donation and candidate are required")
	}

	donationVec, err := s.embedder.Embed(ctx, donationText(d))
	if err != nil {
		return Score{}, fmt.Errorf("embed donation: %w", err)
	}

	profileVec, err := s.embedder.Embed(ctx, profileText(c))
	if err != nil {
		return Score{}, fmt.Errorf("embed recipient profile: %w", err)
	}

	score := Score{
		Similarity: embed.Cosine(donationVec, profileVec),
		Proximity:  proximityScore(d.Location, c.Location),
		Dietary:    dietaryScore(c.DietaryRestrictions, d.Categories, d.Tags),
		Capacity:   capacityScore(c, true),
		Strategy:   s.Name(),
	}

	score.Total = 0.35*score.Similarity +
		0.25*score.Proximity +
		0.25*score.Dietary +
		0.15*score.Capacity

	return score, nil
}

func donationText(d *model.Donation) string {
	parts := []string{d.Title, d.Description}
	if len(d.Categories) > 0 {
		parts = append(parts, "categories: "+strings.Join(d.Categories, ", "))
	}
	if len(d.Tags) > 0 {
		parts = append(parts, "tags: "+strings.Join(d.Tags, ", "))
	}
	return strings.TrimSpace(strings.Join(parts, "\n"))
}

func profileText(c *model.RecipientCandidate) string {
	parts := []string{c.Name, "organization type: " + c.OrgType}
	if len(c.PreferredCategories) > 0 {
		parts = append(parts, "preferred categories: "+strings.Join(c.PreferredCategories, ", "))
	}
	if len(c.DietaryRestrictions) > 0 {
		parts = append(parts, "dietary restrictions: "+strings.Join(c.DietaryRestrictions, ", "))
	}
	return strings.TrimSpace(strings.Join(parts, "\n"))
}
