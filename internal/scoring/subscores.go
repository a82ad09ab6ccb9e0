package scoring

import (
	"math"
	"strings"

	"github.com/Vievek/zero-hunger-sub000/internal/model"
)

// proximityCapDegrees bounds the planar distance normalization. Anything
// beyond half a degree scores as far as it gets.
const proximityCapDegrees = 0.5

// dietaryConflicts maps a recipient restriction to donation categories/tags
// it cannot coexist with.
var dietaryConflicts = map[string][]string{
	"vegan":              {"meat", "dairy", "eggs", "honey", "fish", "gelatin"},
	"vegetarian":         {"meat", "fish", "gelatin"},
	"halal":              {"pork", "alcohol"},
	"kosher":             {"pork", "shellfish"},
	"gluten_free":        {"wheat", "bread", "pasta", "gluten"},
	"nut_free":           {"nuts", "peanuts"},
	"lactose_intolerant": {"dairy", "milk", "cheese"},
}

// dietaryPenalty is the multiplicative hit per violated restriction.
const dietaryPenalty = 0.1

var orgAffinity = map[string]float64{
	"food_bank":        1.0,
	"shelter":          0.9,
	"charity":          0.8,
	"ngo":              0.8,
	"community_center": 0.7,
}

const defaultOrgAffinity = 0.6

// proximityScore maps planar distance through a step curve. A missing
// location on either side yields the neutral 0.5.
func proximityScore(a, b *model.Location) float64 {
	if a == nil || b == nil {
		return 0.5
	}

	dx := a.Lat - b.Lat
	dy := a.Lng - b.Lng
	distance := math.Sqrt(dx*dx + dy*dy)

	closeness := 1.0 - math.Min(distance, proximityCapDegrees)/proximityCapDegrees
	switch {
	case closeness > 0.8:
		return 1.0
	case closeness > 0.6:
		return 0.8
	case closeness > 0.4:
		return 0.6
	case closeness > 0.2:
		return 0.4
	default:
		return 0.2
	}
}

// dietaryScore starts at 1.0 and multiplies by dietaryPenalty for every
// recipient restriction conflicting with a donation category or tag.
func dietaryScore(restrictions, categories, tags []string) float64 {
	score := 1.0
	content := normalizeSet(append(append([]string{}, categories...), tags...))

	for _, restriction := range restrictions {
		conflicts, ok := dietaryConflicts[normalizeTerm(restriction)]
		if !ok {
			continue
		}
		for _, conflict := range conflicts {
			if content[conflict] {
				score *= dietaryPenalty
				break
			}
		}
	}

	return score
}

// capacityScore is a step function of utilization. The embedding variant
// replaces the 0.6 tier with a single 0.5 tier.
func capacityScore(c *model.RecipientCandidate, embeddingVariant bool) float64 {
	util := c.Utilization()
	switch {
	case util >= 1.0:
		return 0
	case util >= 0.8:
		return 0.2
	case embeddingVariant && util >= 0.5:
		return 0.5
	case !embeddingVariant && util >= 0.6:
		return 0.4
	case util >= 0.4:
		return 0.6
	case util >= 0.2:
		return 0.8
	default:
		return 1.0
	}
}

// keywordScore is the overlap of donation categories/tags with the
// recipient's preferred categories, normalized by the donation's term count,
// penalized per violated dietary restriction.
func keywordScore(d *model.Donation, c *model.RecipientCandidate) float64 {
	terms := normalizeSet(append(append([]string{}, d.Categories...), d.Tags...))
	if len(terms) == 0 {
		return 0
	}

	preferred := normalizeSet(c.PreferredCategories)
	matched := 0
	for term := range terms {
		if preferred[term] {
			matched++
		}
	}

	score := float64(matched) / float64(len(terms))

	content := normalizeSet(append(append([]string{}, d.Categories...), d.Tags...))
	for _, restriction := range c.DietaryRestrictions {
		conflicts, ok := dietaryConflicts[normalizeTerm(restriction)]
		if !ok {
			continue
		}
		for _, conflict := range conflicts {
			if content[conflict] {
				score *= dietaryPenalty
				break
			}
		}
	}

	return score
}

func organizationAffinity(orgType string) float64 {
	if affinity, ok := orgAffinity[normalizeTerm(orgType)]; ok {
		return affinity
	}
	return defaultOrgAffinity
}

func normalizeSet(terms []string) map[string]bool {
	set := make(map[string]bool, len(terms))
	for _, term := range terms {
		if normalized := normalizeTerm(term); normalized != "" {
			set[normalized] = true
		}
	}
	return set
}

func normalizeTerm(term string) string {
	term = strings.ToLower(strings.TrimSpace(term))
	return strings.ReplaceAll(term, " ", "_")
}
