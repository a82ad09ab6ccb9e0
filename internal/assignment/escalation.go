package assignment

import (
	"context"
	"errors"
	"time"

	"github.com/cenkalti/backoff/v4"

	"github.com/Vievek/zero-hunger-sub000/internal/metrics"
	"github.com/Vievek/zero-hunger-sub000/internal/model"
	"github.com/Vievek/zero-hunger-sub000/internal/notify"
	"github.com/Vievek/zero-hunger-sub000/internal/store"
	"github.com/Vievek/zero-hunger-sub000/internal/utils"
	"go.uber.org/zap"
)

// State is the escalation controller's position in the assignment lifecycle.
type State string

const (
	StateSearching         State = "searching"
	StateAssigned          State = "assigned"
	StateRetryScheduled    State = "retry_scheduled"
	StateEmergencyFallback State = "emergency_fallback"
	StateFailed            State = "failed"
)

// EmergencyPolicy controls which courier the emergency scan binds.
type EmergencyPolicy string

const (
	// EmergencyFirstFit binds the first scanned courier passing the live
	// capacity check: availability over optimality.
	EmergencyFirstFit EmergencyPolicy = "first_fit"
	// EmergencyBestFit ranks the scanned couriers by fitness before
	// attempting to bind.
	EmergencyBestFit EmergencyPolicy = "best_fit"
)

// Config bounds the controller's retry and fallback behavior.
type Config struct {
	// RetryInitial is the delay before the first re-search; RetryMax caps
	// every later delay.
	RetryInitial time.Duration
	RetryMax     time.Duration
	// MaxAttempts bounds the total number of search attempts. The task is
	// left pending for manual rescan once exhausted.
	MaxAttempts        int
	EmergencyScanLimit int
	EmergencyPolicy    EmergencyPolicy
}

// DefaultConfig matches production policy: 5 then 10 minute delays, six
// attempts, a five-courier emergency scan bound first-fit.
func DefaultConfig() Config {
	return Config{
		RetryInitial:       5 * time.Minute,
		RetryMax:           10 * time.Minute,
		MaxAttempts:        6,
		EmergencyScanLimit: 5,
		EmergencyPolicy:    EmergencyFirstFit,
	}
}

// Controller drives the planner across retries, exclusions and emergency
// fallback until a courier is bound or the attempt is abandoned.
type Controller struct {
	store    store.Store
	planner  *Planner
	model    *FitnessModel
	notifier notify.Dispatcher
	metrics  *metrics.Metrics
	logger   *zap.Logger
	cfg      Config
}

// NewController builds an escalation controller.
func NewController(st store.Store, planner *Planner, model *FitnessModel, notifier notify.Dispatcher, m *metrics.Metrics, cfg Config, logger *zap.Logger) *Controller {
	if cfg.MaxAttempts <= 0 {
		cfg.MaxAttempts = 1
	}
	if cfg.EmergencyScanLimit <= 0 {
		cfg.EmergencyScanLimit = 5
	}
	return &Controller{
		store:    st,
		planner:  planner,
		model:    model,
		notifier: notifier,
		metrics:  m,
		logger:   logger,
		cfg:      cfg,
	}
}

// Assign runs the search loop for a pending task until it is bound, the
// retry budget is exhausted, or the emergency path terminates. Retries wait
// in-process; a dropped context leaves the task pending.
func (c *Controller) Assign(ctx context.Context, taskID string) State {
	policy := backoff.NewExponentialBackOff()
	policy.InitialInterval = c.cfg.RetryInitial
	policy.MaxInterval = c.cfg.RetryMax
	policy.Multiplier = 2
	policy.RandomizationFactor = 0
	policy.MaxElapsedTime = 0
	policy.Reset()

	for attempt := 1; ; attempt++ {
		state := c.search(ctx, taskID)
		if state != StateRetryScheduled {
			return state
		}

		c.metrics.AssignmentRetries.Inc()

		if attempt >= c.cfg.MaxAttempts {
			c.logger.Warn("assignment retry budget exhausted, task left pending",
				zap.String("task_id", taskID),
				zap.Int("attempts", attempt),
			)
			c.metrics.AssignmentFailures.Inc()
			return StateRetryScheduled
		}

		delay := policy.NextBackOff()
		c.logger.Info("no suitable courier, retry scheduled",
			zap.String("task_id", taskID),
			zap.Int("attempt", attempt),
			zap.Duration("delay", delay),
		)

		if err := utils.WaitFor(ctx, delay); err != nil {
			c.logger.Warn("retry wait interrupted, task left pending",
				zap.String("task_id", taskID),
				zap.Error(err),
			)
			return StateRetryScheduled
		}
	}
}

// search performs one Searching pass. Degradable outcomes (empty pool, no
// suitable courier) come back as RetryScheduled; anything unexpected falls
// through to the emergency path.
func (c *Controller) search(ctx context.Context, taskID string) State {
	task, err := c.store.GetTask(ctx, taskID)
	if err != nil {
		c.logger.Error("loading task failed", zap.String("task_id", taskID), zap.Error(err))
		return StateFailed
	}

	if task.Status != model.TaskPending {
		// Already bound or cancelled out from under us.
		if task.VolunteerID != "" {
			return StateAssigned
		}
		return StateFailed
	}

	pool, err := c.store.ListAvailableVolunteers(ctx)
	if err != nil {
		c.logger.Error("listing volunteers failed, entering emergency fallback",
			zap.String("task_id", task.ID), zap.Error(err))
		return c.emergency(ctx, task)
	}

	if len(pool) == 0 {
		return StateRetryScheduled
	}

	pickup := pickupLocation(task)

	winner, err := c.planner.Select(ctx, pool, pickup, task.Urgency)
	if err != nil {
		if errors.Is(err, ErrNoCouriers) {
			return StateRetryScheduled
		}
		c.logger.Error("planner failed, entering emergency fallback",
			zap.String("task_id", task.ID), zap.Error(err))
		return c.emergency(ctx, task)
	}

	err = c.bind(ctx, task, winner, notify.KindTaskAssigned)
	if err == nil {
		return StateAssigned
	}
	if !errors.Is(err, store.ErrConflict) {
		c.logger.Error("bind failed, entering emergency fallback",
			zap.String("task_id", task.ID), zap.Error(err))
		return c.emergency(ctx, task)
	}

	// The winner failed the live capacity check. One more planner pass
	// over the remaining pool; if that also fails, stop here.
	c.logger.Info("courier failed bind-time capacity check, retrying without it",
		zap.String("task_id", task.ID),
		zap.String("volunteer_id", winner.ID),
	)

	remaining := excludeVolunteer(pool, winner.ID)
	second, err := c.planner.Select(ctx, remaining, pickup, task.Urgency)
	if err != nil {
		return StateRetryScheduled
	}

	if err := c.bind(ctx, task, second, notify.KindTaskAssigned); err != nil {
		return StateRetryScheduled
	}
	return StateAssigned
}

// emergency scans a handful of active couriers regardless of availability
// and binds by policy. Exhausting the scan is a terminal failure that needs
// manual intervention.
func (c *Controller) emergency(ctx context.Context, task *model.Task) State {
	pool, err := c.store.ListActiveVolunteers(ctx, c.cfg.EmergencyScanLimit)
	if err != nil {
		c.logger.Error("emergency scan failed", zap.String("task_id", task.ID), zap.Error(err))
		c.metrics.AssignmentFailures.Inc()
		return StateFailed
	}

	if c.cfg.EmergencyPolicy == EmergencyBestFit {
		pickup := pickupLocation(task)
		sortByFitness(ctx, c.model, pool, pickup, task.Urgency)
	}

	for i := range pool {
		candidate := &pool[i]
		if err := c.bind(ctx, task, candidate, notify.KindEmergencyTask); err != nil {
			if errors.Is(err, store.ErrConflict) {
				continue
			}
			c.logger.Error("emergency bind failed",
				zap.String("task_id", task.ID),
				zap.String("volunteer_id", candidate.ID),
				zap.Error(err),
			)
			continue
		}

		c.metrics.EmergencyAssignments.Inc()
		return StateAssigned
	}

	c.logger.Error("emergency fallback exhausted, manual intervention required",
		zap.String("task_id", task.ID),
		zap.Int("scanned", len(pool)),
	)
	c.metrics.AssignmentFailures.Inc()
	return StateFailed
}

// bind performs the guarded assignment and the follow-up donation updates.
// The notification is fire-and-forget.
func (c *Controller) bind(ctx context.Context, task *model.Task, v *model.Volunteer, kind string) error {
	if err := c.store.BindTaskVolunteer(ctx, task.ID, v.ID); err != nil {
		return err
	}

	if err := c.store.UpdateDonationStatus(ctx, task.DonationID, model.DonationMatched, model.DonationScheduled); err != nil {
		c.logger.Warn("donation status update after bind failed",
			zap.String("donation_id", task.DonationID), zap.Error(err))
	}
	if err := c.store.SetDonationVolunteer(ctx, task.DonationID, v.ID); err != nil {
		c.logger.Warn("recording assigned volunteer failed",
			zap.String("donation_id", task.DonationID), zap.Error(err))
	}

	if err := c.notifier.Notify(ctx, v.ID, kind, map[string]any{
		"task_id":     task.ID,
		"donation_id": task.DonationID,
		"urgency":     string(task.Urgency),
	}); err != nil {
		c.logger.Warn("assignment notification failed",
			zap.String("volunteer_id", v.ID), zap.Error(err))
	}

	c.metrics.Assignments.Inc()
	c.logger.Info("task bound to volunteer",
		zap.String("task_id", task.ID),
		zap.String("volunteer_id", v.ID),
		zap.String("kind", kind),
	)

	return nil
}

func pickupLocation(task *model.Task) model.Location {
	if task.Pickup != nil {
		return *task.Pickup
	}
	return model.Location{}
}

func excludeVolunteer(pool []model.Volunteer, id string) []model.Volunteer {
	remaining := make([]model.Volunteer, 0, len(pool))
	for _, v := range pool {
		if v.ID != id {
			remaining = append(remaining, v)
		}
	}
	return remaining
}

func sortByFitness(ctx context.Context, m *FitnessModel, pool []model.Volunteer, pickup model.Location, urgency model.Urgency) {
	scores := make(map[string]float64, len(pool))
	for i := range pool {
		scores[pool[i].ID] = m.Fitness(ctx, &pool[i], pickup, urgency)
	}
	for i := 1; i < len(pool); i++ {
		for j := i; j > 0 && scores[pool[j].ID] > scores[pool[j-1].ID]; j-- {
			pool[j], pool[j-1] = pool[j-1], pool[j]
		}
	}
}
