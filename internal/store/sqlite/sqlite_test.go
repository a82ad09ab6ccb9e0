package sqlite

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/Vievek/zero-hunger-sub000/internal/model"
	"github.com/Vievek/zero-hunger-sub000/internal/store"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()

	s, err := New(filepath.Join(t.TempDir(), "engine.db"))
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })

	return s
}

func seedDonation(t *testing.T, s *Store, status model.DonationStatus) *model.Donation {
	t.Helper()

	d := &model.Donation{
		ID:         model.NewID(),
		DonorID:    "donor-1",
		Title:      "Surplus vegetables",
		Categories: []string{"vegetables"},
		Tags:       []string{"fresh"},
		Urgency:    model.UrgencyHigh,
		Status:     status,
		Location:   &model.Location{Lat: 6.9271, Lng: 79.8612},
	}
	require.NoError(t, s.CreateDonation(context.Background(), d))
	return d
}

func TestDonationRoundTrip(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	created := seedDonation(t, s, model.DonationPending)

	d, err := s.GetDonation(ctx, created.ID)
	require.NoError(t, err)
	require.Equal(t, created.Title, d.Title)
	require.Equal(t, []string{"vegetables"}, d.Categories)
	require.Equal(t, []string{"fresh"}, d.Tags)
	require.NotNil(t, d.Location)
	require.InDelta(t, 6.9271, d.Location.Lat, 1e-9)
	require.Equal(t, model.DonationPending, d.Status)

	_, err = s.GetDonation(ctx, "missing")
	require.ErrorIs(t, err, store.ErrNotFound)
}

func TestUpdateDonationStatusGuards(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	d := seedDonation(t, s, model.DonationPending)

	require.NoError(t, s.UpdateDonationStatus(ctx, d.ID, model.DonationPending, model.DonationActive))

	// Re-running the same transition loses the guard.
	err := s.UpdateDonationStatus(ctx, d.ID, model.DonationPending, model.DonationActive)
	require.ErrorIs(t, err, store.ErrConflict)

	// Backward transitions are rejected before touching the row.
	err = s.UpdateDonationStatus(ctx, d.ID, model.DonationActive, model.DonationPending)
	require.ErrorIs(t, err, store.ErrConflict)

	err = s.UpdateDonationStatus(ctx, "missing", model.DonationPending, model.DonationActive)
	require.ErrorIs(t, err, store.ErrNotFound)

	listed, err := s.ListDonationsByStatus(ctx, model.DonationActive)
	require.NoError(t, err)
	require.Len(t, listed, 1)
	require.Equal(t, d.ID, listed[0].ID)
}

func TestAcceptDonationSingleWinner(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	d := seedDonation(t, s, model.DonationActive)

	require.NoError(t, s.AcceptDonation(ctx, d.ID, "r1"))

	got, err := s.GetDonation(ctx, d.ID)
	require.NoError(t, err)
	require.Equal(t, model.DonationMatched, got.Status)
	require.Equal(t, "r1", got.AcceptedBy)

	// The second claim loses the WHERE guard.
	err = s.AcceptDonation(ctx, d.ID, "r2")
	require.ErrorIs(t, err, store.ErrConflict)

	got, err = s.GetDonation(ctx, d.ID)
	require.NoError(t, err)
	require.Equal(t, "r1", got.AcceptedBy)

	err = s.AcceptDonation(ctx, "missing", "r1")
	require.ErrorIs(t, err, store.ErrNotFound)
}

func TestSaveAndResolveOffers(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	d := seedDonation(t, s, model.DonationActive)

	offers := []model.Offer{
		{DonationID: d.ID, RecipientID: "r1", Score: 0.9, Status: model.OfferOffered, Method: model.OfferMethodRanked},
		{DonationID: d.ID, RecipientID: "r2", Score: 0.8, Status: model.OfferOffered, Method: model.OfferMethodRanked},
		{DonationID: d.ID, RecipientID: "r3", Score: 0.7, Status: model.OfferOffered, Method: model.OfferMethodRanked},
	}
	require.NoError(t, s.SaveOffers(ctx, d.ID, offers))

	require.NoError(t, s.ResolveOffers(ctx, d.ID, "r2", model.OfferMethodRanked, 0.8, "Another recipient accepted the donation"))

	got, err := s.GetDonation(ctx, d.ID)
	require.NoError(t, err)
	require.Len(t, got.Offers, 3)

	for _, offer := range got.Offers {
		switch offer.RecipientID {
		case "r2":
			require.Equal(t, model.OfferAccepted, offer.Status)
			require.NotNil(t, offer.RespondedAt)
		default:
			require.Equal(t, model.OfferDeclined, offer.Status)
			require.Equal(t, "Another recipient accepted the donation", offer.DeclineReason)
		}
	}
}

func TestResolveOffersInsertsManualEntry(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	d := seedDonation(t, s, model.DonationActive)

	require.NoError(t, s.ResolveOffers(ctx, d.ID, "walk-in", model.OfferMethodManual, 0.5, ""))

	got, err := s.GetDonation(ctx, d.ID)
	require.NoError(t, err)
	require.Len(t, got.Offers, 1)
	require.Equal(t, "walk-in", got.Offers[0].RecipientID)
	require.Equal(t, model.OfferAccepted, got.Offers[0].Status)
	require.Equal(t, model.OfferMethodManual, got.Offers[0].Method)
}

func TestDeclineOffer(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	d := seedDonation(t, s, model.DonationActive)
	require.NoError(t, s.SaveOffers(ctx, d.ID, []model.Offer{
		{DonationID: d.ID, RecipientID: "r1", Score: 0.9, Status: model.OfferOffered, Method: model.OfferMethodRanked},
	}))

	require.NoError(t, s.DeclineOffer(ctx, d.ID, "r1", "no fridge space"))

	got, err := s.GetDonation(ctx, d.ID)
	require.NoError(t, err)
	require.Equal(t, model.OfferDeclined, got.Offers[0].Status)
	require.Equal(t, "no fridge space", got.Offers[0].DeclineReason)

	// A declined entry cannot be declined again.
	err = s.DeclineOffer(ctx, d.ID, "r1", "")
	require.ErrorIs(t, err, store.ErrNotFound)
}

func TestListEligibleRecipients(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, s.CreateRecipient(ctx, &model.RecipientCandidate{
		ID: "eligible", Name: "Food Bank", OrgType: "food_bank",
		Capacity: 10, CurrentLoad: 3,
		DietaryRestrictions: []string{"vegan"},
		PreferredCategories: []string{"vegetables"},
		Location:            &model.Location{Lat: 6.9, Lng: 79.8},
		Verified:            true,
	}))
	require.NoError(t, s.CreateRecipient(ctx, &model.RecipientCandidate{
		ID: "unverified", Capacity: 10, Verified: false,
	}))
	require.NoError(t, s.CreateRecipient(ctx, &model.RecipientCandidate{
		ID: "full", Capacity: 5, CurrentLoad: 5, Verified: true,
	}))

	eligible, err := s.ListEligibleRecipients(ctx)
	require.NoError(t, err)
	require.Len(t, eligible, 1)
	require.Equal(t, "eligible", eligible[0].ID)
	require.Equal(t, []string{"vegan"}, eligible[0].DietaryRestrictions)
	require.Equal(t, []string{"vegetables"}, eligible[0].PreferredCategories)

	r, err := s.GetRecipient(ctx, "eligible")
	require.NoError(t, err)
	require.True(t, r.Verified)
	require.NotNil(t, r.Location)

	_, err = s.GetRecipient(ctx, "missing")
	require.ErrorIs(t, err, store.ErrNotFound)
}

func TestVolunteerListsAndBind(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, s.CreateVolunteer(ctx, &model.Volunteer{
		ID: "v1", Name: "Asha", Vehicle: model.VehicleBike,
		Available: true, Active: true, MaxConcurrentTasks: 1,
		Location: &model.Location{Lat: 6.9, Lng: 79.8},
	}))
	require.NoError(t, s.CreateVolunteer(ctx, &model.Volunteer{
		ID: "v2", Name: "Nuwan", Vehicle: model.VehicleCar,
		Available: false, Active: true, MaxConcurrentTasks: 2,
	}))
	require.NoError(t, s.CreateVolunteer(ctx, &model.Volunteer{
		ID: "v3", Name: "Retired", Active: false,
	}))

	available, err := s.ListAvailableVolunteers(ctx)
	require.NoError(t, err)
	require.Len(t, available, 1)
	require.Equal(t, "v1", available[0].ID)

	active, err := s.ListActiveVolunteers(ctx, 5)
	require.NoError(t, err)
	require.Len(t, active, 2)

	limited, err := s.ListActiveVolunteers(ctx, 1)
	require.NoError(t, err)
	require.Len(t, limited, 1)

	d := seedDonation(t, s, model.DonationMatched)
	task := &model.Task{DonationID: d.ID, Pickup: &model.Location{Lat: 6.9, Lng: 79.8}, Urgency: model.UrgencyNormal}
	require.NoError(t, s.CreateTask(ctx, task))

	require.NoError(t, s.BindTaskVolunteer(ctx, task.ID, "v1"))

	bound, err := s.GetTask(ctx, task.ID)
	require.NoError(t, err)
	require.Equal(t, model.TaskAssigned, bound.Status)
	require.Equal(t, "v1", bound.VolunteerID)

	v, err := s.GetVolunteer(ctx, "v1")
	require.NoError(t, err)
	require.Equal(t, 1, v.ActiveTaskCount)

	// The task is no longer pending, so a second bind fails.
	err = s.BindTaskVolunteer(ctx, task.ID, "v2")
	require.ErrorIs(t, err, store.ErrConflict)

	// v1 is now at their concurrency limit; the live check rejects them and
	// the rollback leaves the count untouched.
	second := &model.Task{DonationID: d.ID, Urgency: model.UrgencyNormal}
	require.NoError(t, s.CreateTask(ctx, second))
	err = s.BindTaskVolunteer(ctx, second.ID, "v1")
	require.ErrorIs(t, err, store.ErrConflict)

	v, err = s.GetVolunteer(ctx, "v1")
	require.NoError(t, err)
	require.Equal(t, 1, v.ActiveTaskCount)

	pending, err := s.GetTask(ctx, second.ID)
	require.NoError(t, err)
	require.Equal(t, model.TaskPending, pending.Status)
}

func TestPendingWaypointsAndRoute(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, s.CreateVolunteer(ctx, &model.Volunteer{
		ID: "v1", Available: true, Active: true, MaxConcurrentTasks: 5,
	}))

	d := seedDonation(t, s, model.DonationMatched)
	task := &model.Task{
		DonationID: d.ID,
		Pickup:     &model.Location{Lat: 1, Lng: 1},
		Dropoff:    &model.Location{Lat: 2, Lng: 2},
		Urgency:    model.UrgencyNormal,
	}
	require.NoError(t, s.CreateTask(ctx, task))
	require.NoError(t, s.BindTaskVolunteer(ctx, task.ID, "v1"))

	waypoints, err := s.PendingWaypoints(ctx, "v1")
	require.NoError(t, err)
	require.Len(t, waypoints, 2)
	require.Equal(t, model.WaypointPickup, waypoints[0].Kind)
	require.Equal(t, model.WaypointDropoff, waypoints[1].Kind)
	require.Equal(t, task.ID, waypoints[0].TaskID)

	route := &model.OptimizedRoute{
		Waypoints:    waypoints,
		Order:        []int{0, 1},
		TotalMeters:  1500,
		TotalSeconds: 300,
	}
	require.NoError(t, s.UpdateTaskRoute(ctx, task.ID, route))

	got, err := s.GetTask(ctx, task.ID)
	require.NoError(t, err)
	require.NotNil(t, got.Route)
	require.Equal(t, []int{0, 1}, got.Route.Order)
	require.InDelta(t, 1500, got.Route.TotalMeters, 1e-9)

	err = s.UpdateTaskRoute(ctx, "missing", route)
	require.ErrorIs(t, err, store.ErrNotFound)

	empty, err := s.PendingWaypoints(ctx, "nobody")
	require.NoError(t, err)
	require.Empty(t, empty)
}
