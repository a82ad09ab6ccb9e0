// Package matching ranks recipient candidates for active donations and
// applies recipient accept/decline responses.
package matching

import (
	"context"
	"fmt"
	"time"

	"github.com/Vievek/zero-hunger-sub000/internal/metrics"
	"github.com/Vievek/zero-hunger-sub000/internal/model"
	"github.com/Vievek/zero-hunger-sub000/internal/notify"
	"github.com/Vievek/zero-hunger-sub000/internal/scoring"
	"github.com/Vievek/zero-hunger-sub000/internal/store"
	"go.uber.org/zap"
)

// MaxOffers caps how many top-ranked recipients receive an offer.
const MaxOffers = 3

// Selector drives the scoring engine over all eligible recipients for a
// donation and persists the top-ranked offers.
type Selector struct {
	store    store.Store
	engine   *scoring.Engine
	notifier notify.Dispatcher
	metrics  *metrics.Metrics
	logger   *zap.Logger
}

// NewSelector builds a match selector.
func NewSelector(st store.Store, engine *scoring.Engine, notifier notify.Dispatcher, m *metrics.Metrics, logger *zap.Logger) *Selector {
	return &Selector{store: st, engine: engine, notifier: notifier, metrics: m, logger: logger}
}

// Match ranks candidates for an active donation and writes the top offers.
// Zero qualifying candidates is not an error: the donation stays active and
// remains eligible for a future re-scan or direct manual acceptance.
func (s *Selector) Match(ctx context.Context, donationID string) error {
	d, err := s.store.GetDonation(ctx, donationID)
	if err != nil {
		return fmt.Errorf("get donation: %w", err)
	}

	if d.Status != model.DonationActive {
		return fmt.Errorf("donation %s is %s, not active: %w", donationID, d.Status, store.ErrConflict)
	}

	candidates, err := s.store.ListEligibleRecipients(ctx)
	if err != nil {
		return fmt.Errorf("list eligible recipients: %w", err)
	}

	s.metrics.MatchRuns.Inc()
	started := time.Now()

	ranked := s.engine.Rank(ctx, d, candidates)

	// An empty embedding run gets one more chance on rules before the
	// donation is left unmatched.
	if len(ranked) == 0 && s.engine.ActiveStrategy() != "rules" {
		s.logger.Info("embedding strategy yielded no qualifiers, re-running with rules",
			zap.String("donation_id", donationID),
		)
		s.metrics.StrategyFallbacks.Inc()
		ranked = s.engine.RankFallback(ctx, d, candidates)
	}

	s.metrics.ScoringDuration.Observe(time.Since(started).Seconds())

	if len(ranked) == 0 {
		s.logger.Info("no qualifying recipients, donation stays active",
			zap.String("donation_id", donationID),
			zap.Int("candidates", len(candidates)),
		)
		return nil
	}

	if len(ranked) > MaxOffers {
		ranked = ranked[:MaxOffers]
	}

	offers := make([]model.Offer, 0, len(ranked))
	for _, r := range ranked {
		offers = append(offers, model.Offer{
			ID:          model.NewID(),
			DonationID:  donationID,
			RecipientID: r.Candidate.ID,
			Score:       r.Score.Total,
			Status:      model.OfferOffered,
			Method:      model.OfferMethodRanked,
		})
	}

	if err := s.store.SaveOffers(ctx, donationID, offers); err != nil {
		return fmt.Errorf("save offers: %w", err)
	}
	s.metrics.OffersWritten.Add(float64(len(offers)))

	for _, offer := range offers {
		if err := s.notifier.Notify(ctx, offer.RecipientID, notify.KindOfferReceived, map[string]any{
			"donation_id": donationID,
			"title":       d.Title,
			"urgency":     string(d.Urgency),
		}); err != nil {
			s.logger.Warn("offer notification failed",
				zap.String("recipient_id", offer.RecipientID), zap.Error(err))
		}
	}

	s.logger.Info("ranked offers written",
		zap.String("donation_id", donationID),
		zap.Int("candidates", len(candidates)),
		zap.Int("offers", len(offers)),
		zap.Float64("top_score", ranked[0].Score.Total),
		zap.String("strategy", ranked[0].Score.Strategy),
	)

	return nil
}
