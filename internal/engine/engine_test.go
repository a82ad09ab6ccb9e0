package engine

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"

	"github.com/Vievek/zero-hunger-sub000/internal/assignment"
	"github.com/Vievek/zero-hunger-sub000/internal/geo"
	"github.com/Vievek/zero-hunger-sub000/internal/matching"
	"github.com/Vievek/zero-hunger-sub000/internal/metrics"
	"github.com/Vievek/zero-hunger-sub000/internal/model"
	"github.com/Vievek/zero-hunger-sub000/internal/notify"
	"github.com/Vievek/zero-hunger-sub000/internal/routing"
	"github.com/Vievek/zero-hunger-sub000/internal/scoring"
	"github.com/Vievek/zero-hunger-sub000/internal/store"
	"github.com/Vievek/zero-hunger-sub000/internal/store/storetest"
)

var hub = model.Location{Lat: 6.9271, Lng: 79.8612}

func newTestEngine(st *storetest.Fake) *Engine {
	logger := zap.NewNop()
	m := metrics.New(prometheus.NewRegistry())

	oracle := geo.NewCache(geo.NewDegrading(geo.NewEstimator(), logger), time.Minute)
	dispatcher := notify.NewLogDispatcher(logger)
	scoringEngine := scoring.NewEngine(nil, scoring.NewRuleStrategy(), logger)
	selector := matching.NewSelector(st, scoringEngine, dispatcher, m, logger)
	resolver := matching.NewResolver(st, m, logger)

	fitness := assignment.NewFitnessModel(oracle, logger)
	planner := assignment.NewPlanner(fitness, 42, logger)
	cfg := assignment.Config{
		RetryInitial:       time.Millisecond,
		RetryMax:           2 * time.Millisecond,
		MaxAttempts:        2,
		EmergencyScanLimit: 5,
		EmergencyPolicy:    assignment.EmergencyFirstFit,
	}
	controller := assignment.NewController(st, planner, fitness, dispatcher, m, cfg, logger)
	optimizer := routing.NewOptimizer(oracle, logger)

	return New(st, selector, resolver, controller, optimizer, logger)
}

func seedWorld(st *storetest.Fake) {
	ctx := context.Background()
	st.CreateDonation(ctx, &model.Donation{
		ID:         "d1",
		Title:      "Vegetable crates",
		Categories: []string{"vegetables"},
		Status:     model.DonationPending,
		Urgency:    model.UrgencyHigh,
		Location:   &hub,
	})
	st.Recipients["r1"] = &model.RecipientCandidate{
		ID: "r1", Name: "Food Bank", OrgType: "food_bank",
		Capacity: 10, PreferredCategories: []string{"vegetables"},
		Location: &hub, Verified: true,
	}
	st.Volunteers["v1"] = &model.Volunteer{
		ID: "v1", Name: "Asha", Location: &hub,
		Vehicle: model.VehicleBike, Available: true, Active: true,
		MaxConcurrentTasks: 3,
	}
}

func TestEngineMatchesCreatedDonation(t *testing.T) {
	st := storetest.New()
	seedWorld(st)

	e := newTestEngine(st)
	e.HandleDonationCreated("d1")
	e.Wait()

	d, err := st.GetDonation(context.Background(), "d1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if d.Status != model.DonationActive {
		t.Fatalf("expected activated donation, got %s", d.Status)
	}
	if len(d.Offers) != 1 || d.Offers[0].RecipientID != "r1" {
		t.Fatalf("expected one offer for r1, got %+v", d.Offers)
	}
}

func TestEngineAcceptRunsAssignmentAndRouting(t *testing.T) {
	st := storetest.New()
	seedWorld(st)

	e := newTestEngine(st)
	e.HandleDonationCreated("d1")
	e.Wait()

	if err := e.Accept(context.Background(), "d1", "r1"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	e.Wait()

	d, _ := st.GetDonation(context.Background(), "d1")
	if d.Status != model.DonationScheduled {
		t.Fatalf("expected scheduled donation after assignment, got %s", d.Status)
	}
	if d.AcceptedBy != "r1" || d.AssignedVolunteer != "v1" {
		t.Fatalf("unexpected donation bookkeeping: %+v", d)
	}

	var task *model.Task
	for id := range st.Tasks {
		task, _ = st.GetTask(context.Background(), id)
	}
	if task == nil {
		t.Fatalf("expected a task to be created")
	}
	if task.Status != model.TaskAssigned || task.VolunteerID != "v1" {
		t.Fatalf("unexpected task: %+v", task)
	}
	if task.Dropoff == nil {
		t.Fatalf("expected the recipient location as dropoff")
	}
	if task.Route == nil || len(task.Route.Waypoints) == 0 {
		t.Fatalf("expected an optimized route on the task")
	}
}

func TestEngineAcceptPropagatesConflicts(t *testing.T) {
	st := storetest.New()
	seedWorld(st)

	e := newTestEngine(st)
	e.HandleDonationCreated("d1")
	e.Wait()

	if err := e.Accept(context.Background(), "d1", "r1"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	e.Wait()

	err := e.Accept(context.Background(), "d1", "someone-else")
	if !errors.Is(err, store.ErrConflict) {
		t.Fatalf("expected conflict for the losing recipient, got %v", err)
	}
	e.Wait()
}

func TestEngineDecline(t *testing.T) {
	st := storetest.New()
	seedWorld(st)

	e := newTestEngine(st)
	e.HandleDonationCreated("d1")
	e.Wait()

	if err := e.Decline(context.Background(), "d1", "r1", "closed today"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	d, _ := st.GetDonation(context.Background(), "d1")
	offer := d.OfferFor("r1")
	if offer == nil || offer.Status != model.OfferDeclined {
		t.Fatalf("expected declined offer, got %+v", offer)
	}
	if d.Status != model.DonationActive {
		t.Fatalf("declines must not move the donation, got %s", d.Status)
	}
}
