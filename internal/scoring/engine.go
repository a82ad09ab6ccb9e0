package scoring

import (
	"context"
	"sort"
	"sync"

	"github.com/Vievek/zero-hunger-sub000/internal/model"
	"go.uber.org/zap"
)

// Engine drives a Strategy over a candidate batch. When the primary strategy
// errors the engine fails open: the affected candidate and every later one
// are scored with the fallback, and the engine stays degraded for the rest of
// its lifetime. Per-candidate failures never abort the batch.
type Engine struct {
	primary  Strategy
	fallback Strategy
	logger   *zap.Logger

	mu       sync.Mutex
	degraded bool
}

// NewEngine builds an engine. primary may be nil, in which case the fallback
// strategy is the only one used.
func NewEngine(primary Strategy, fallback *RuleStrategy, logger *zap.Logger) *Engine {
	return &Engine{
		primary:  primary,
		fallback: fallback,
		logger:   logger,
		degraded: primary == nil,
	}
}

// ActiveStrategy returns the name of the strategy the next Rank call will use.
func (e *Engine) ActiveStrategy() string {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.degraded {
		return e.fallback.Name()
	}
	return e.primary.Name()
}

// Rank scores all candidates with the active strategy, drops those at or
// below the qualify threshold and candidates already at capacity, and returns
// the rest sorted descending by total score.
func (e *Engine) Rank(ctx context.Context, d *model.Donation, candidates []model.RecipientCandidate) []Ranked {
	return e.rank(ctx, d, candidates, e.active())
}

// RankFallback forces the rule-based strategy regardless of engine state.
func (e *Engine) RankFallback(ctx context.Context, d *model.Donation, candidates []model.RecipientCandidate) []Ranked {
	return e.rank(ctx, d, candidates, e.fallback)
}

func (e *Engine) active() Strategy {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.degraded {
		return e.fallback
	}
	return e.primary
}

func (e *Engine) degrade(err error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.degraded {
		return
	}
	e.degraded = true
	e.logger.Warn("scoring strategy degraded to rules",
		zap.String("from", e.primary.Name()),
		zap.Error(err),
	)
}

func (e *Engine) rank(ctx context.Context, d *model.Donation, candidates []model.RecipientCandidate, strategy Strategy) []Ranked {
	ranked := make([]Ranked, 0, len(candidates))

	for i := range candidates {
		c := &candidates[i]

		// At-capacity recipients are excluded upstream; scoring them
		// would always produce capacity 0, so skip outright.
		if !c.HasSpareCapacity() {
			continue
		}

		score, err := strategy.Score(ctx, d, c)
		if err != nil && strategy != e.fallback {
			// Fail open once, then stay on rules for the run.
			e.degrade(err)
			strategy = e.fallback
			score, err = strategy.Score(ctx, d, c)
		}
		if err != nil {
			e.logger.Warn("scoring candidate failed, skipping",
				zap.String("donation_id", d.ID),
				zap.String("recipient_id", c.ID),
				zap.Error(err),
			)
			continue
		}

		if score.Total <= QualifyThreshold {
			continue
		}

		ranked = append(ranked, Ranked{Candidate: *c, Score: score})
	}

	sort.SliceStable(ranked, func(i, j int) bool {
		return ranked[i].Score.Total > ranked[j].Score.Total
	})

	return ranked
}
