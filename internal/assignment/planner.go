package assignment

import (
	"context"
	"errors"
	"math/rand"
	"time"

	"github.com/Vievek/zero-hunger-sub000/internal/model"
	"go.uber.org/zap"
)

// ErrNoCouriers is returned when the candidate pool is empty.
var ErrNoCouriers = errors.New("no available couriers")

const (
	generations    = 50
	maxPopulation  = 20
	mutationRate   = 0.1
	tournamentSize = 3
)

// Planner runs a genetic search over the courier pool, using the fitness
// model to score individuals. Individuals are indices into the pool, so the
// winner is always a pool member.
type Planner struct {
	model  *FitnessModel
	logger *zap.Logger
	rng    *rand.Rand
}

// NewPlanner builds a planner. A zero seed derives one from the clock.
func NewPlanner(model *FitnessModel, seed int64, logger *zap.Logger) *Planner {
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	return &Planner{
		model:  model,
		logger: logger,
		rng:    rand.New(rand.NewSource(seed)),
	}
}

// Select returns the fittest courier found for the pickup. A single-courier
// pool short-circuits without running the search.
func (p *Planner) Select(ctx context.Context, pool []model.Volunteer, pickup model.Location, urgency model.Urgency) (*model.Volunteer, error) {
	switch len(pool) {
	case 0:
		return nil, ErrNoCouriers
	case 1:
		return &pool[0], nil
	}

	// Fitness is fixed per courier within one run; memoize so the search
	// costs one oracle call per pool member at most.
	cached := make([]float64, len(pool))
	computed := make([]bool, len(pool))
	fitness := func(i int) float64 {
		if !computed[i] {
			cached[i] = p.model.Fitness(ctx, &pool[i], pickup, urgency)
			computed[i] = true
		}
		return cached[i]
	}

	size := 2 * len(pool)
	if size > maxPopulation {
		size = maxPopulation
	}

	population := make([]int, size)
	for i := range population {
		population[i] = p.rng.Intn(len(pool))
	}

	best := population[0]
	for gen := 0; gen < generations; gen++ {
		elite := population[0]
		for _, individual := range population[1:] {
			if fitness(individual) > fitness(elite) {
				elite = individual
			}
		}
		if fitness(elite) > fitness(best) {
			best = elite
		}

		next := make([]int, 0, size)
		next = append(next, elite)
		for len(next) < size {
			parent1 := p.tournament(population, fitness)
			parent2 := p.tournament(population, fitness)

			child := parent1
			if p.rng.Intn(2) == 1 {
				child = parent2
			}
			if p.rng.Float64() < mutationRate {
				child = p.rng.Intn(len(pool))
			}
			next = append(next, child)
		}
		population = next
	}

	winner := &pool[best]
	p.logger.Debug("genetic search finished",
		zap.Int("pool", len(pool)),
		zap.String("volunteer_id", winner.ID),
		zap.Float64("fitness", fitness(best)),
	)

	return winner, nil
}

func (p *Planner) tournament(population []int, fitness func(int) float64) int {
	best := population[p.rng.Intn(len(population))]
	for i := 1; i < tournamentSize; i++ {
		challenger := population[p.rng.Intn(len(population))]
		if fitness(challenger) > fitness(best) {
			best = challenger
		}
	}
	return best
}
