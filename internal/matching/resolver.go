package matching

import (
	"context"
	"errors"
	"fmt"

	"github.com/Vievek/zero-hunger-sub000/internal/metrics"
	"github.com/Vievek/zero-hunger-sub000/internal/model"
	"github.com/Vievek/zero-hunger-sub000/internal/store"
	"go.uber.org/zap"
)

// ReasonOtherAccepted is recorded on every offer declined because a different
// recipient won the donation.
const ReasonOtherAccepted = "Another recipient accepted the donation"

// manualAcceptScore is the fixed moderate score recorded when a recipient
// accepts outside the ranked-offer flow.
const manualAcceptScore = 0.5

// Resolver applies recipient accept/decline responses with single-winner
// semantics. The winner is decided by the store's conditional update, so two
// concurrent accepts cannot both succeed.
type Resolver struct {
	store   store.Store
	metrics *metrics.Metrics
	logger  *zap.Logger
}

// NewResolver builds a response resolver.
func NewResolver(st store.Store, m *metrics.Metrics, logger *zap.Logger) *Resolver {
	return &Resolver{store: st, metrics: m, logger: logger}
}

// Accept claims the donation for the recipient. An existing offered entry is
// promoted; a missing entry on an active donation becomes a manual-acceptance
// offer. Re-accepting an already-won offer is a no-op. Accepting a donation
// in any other state, or one claimed by someone else, is a state conflict.
func (r *Resolver) Accept(ctx context.Context, donationID, recipientID string) error {
	d, err := r.store.GetDonation(ctx, donationID)
	if err != nil {
		return fmt.Errorf("get donation: %w", err)
	}

	if offer := d.OfferFor(recipientID); offer != nil && offer.Status == model.OfferAccepted {
		return nil
	}

	method := model.OfferMethodManual
	score := manualAcceptScore
	if offer := d.OfferFor(recipientID); offer != nil {
		if offer.Status == model.OfferDeclined {
			return fmt.Errorf("offer already declined for recipient %s: %w", recipientID, store.ErrConflict)
		}
		method = offer.Method
		score = offer.Score
	}

	if err := r.store.AcceptDonation(ctx, donationID, recipientID); err != nil {
		if errors.Is(err, store.ErrConflict) {
			// Lost the race or wrong state; distinguish idempotent
			// re-accept from a genuine conflict.
			current, getErr := r.store.GetDonation(ctx, donationID)
			if getErr == nil && current.AcceptedBy == recipientID {
				return nil
			}
			r.metrics.AcceptConflicts.Inc()
			return fmt.Errorf("donation %s cannot be accepted: %w", donationID, store.ErrConflict)
		}
		return fmt.Errorf("accept donation: %w", err)
	}

	if err := r.store.ResolveOffers(ctx, donationID, recipientID, method, score, ReasonOtherAccepted); err != nil {
		// The claim itself already succeeded; offer bookkeeping is
		// repairable and must not undo the acceptance.
		r.logger.Error("resolving offers after acceptance failed",
			zap.String("donation_id", donationID),
			zap.String("recipient_id", recipientID),
			zap.Error(err),
		)
	}

	r.metrics.Acceptances.Inc()
	r.logger.Info("donation accepted",
		zap.String("donation_id", donationID),
		zap.String("recipient_id", recipientID),
		zap.String("method", method),
	)

	return nil
}

// Decline records a decline for an offered entry; it fails when no offered
// entry exists for the recipient.
func (r *Resolver) Decline(ctx context.Context, donationID, recipientID, reason string) error {
	if err := r.store.DeclineOffer(ctx, donationID, recipientID, reason); err != nil {
		return err
	}

	r.logger.Info("offer declined",
		zap.String("donation_id", donationID),
		zap.String("recipient_id", recipientID),
		zap.String("reason", reason),
	)

	return nil
}
