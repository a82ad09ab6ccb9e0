// Package storetest provides an in-memory Store with the same conditional
// update semantics as the sqlite implementation, for component tests.
package storetest

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/Vievek/zero-hunger-sub000/internal/model"
	"github.com/Vievek/zero-hunger-sub000/internal/store"
)

// Fake is a mutex-guarded in-memory store. Function fields, when set,
// override the corresponding method so tests can inject failures.
type Fake struct {
	mu         sync.Mutex
	Donations  map[string]*model.Donation
	Recipients map[string]*model.RecipientCandidate
	Volunteers map[string]*model.Volunteer
	Tasks      map[string]*model.Task

	ListEligibleRecipientsFn  func(ctx context.Context) ([]model.RecipientCandidate, error)
	ListAvailableVolunteersFn func(ctx context.Context) ([]model.Volunteer, error)
	ListActiveVolunteersFn    func(ctx context.Context, limit int) ([]model.Volunteer, error)
	BindTaskVolunteerFn       func(ctx context.Context, taskID, volunteerID string) error
	SaveOffersFn              func(ctx context.Context, donationID string, offers []model.Offer) error
}

var _ store.Store = (*Fake)(nil)

// New returns an empty fake store.
func New() *Fake {
	return &Fake{
		Donations:  make(map[string]*model.Donation),
		Recipients: make(map[string]*model.RecipientCandidate),
		Volunteers: make(map[string]*model.Volunteer),
		Tasks:      make(map[string]*model.Task),
	}
}

func (f *Fake) CreateDonation(_ context.Context, d *model.Donation) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	copied := *d
	f.Donations[d.ID] = &copied
	return nil
}

func (f *Fake) GetDonation(_ context.Context, id string) (*model.Donation, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	d, ok := f.Donations[id]
	if !ok {
		return nil, store.ErrNotFound
	}
	copied := *d
	copied.Offers = append([]model.Offer(nil), d.Offers...)
	return &copied, nil
}

func (f *Fake) ListDonationsByStatus(_ context.Context, status model.DonationStatus) ([]model.Donation, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []model.Donation
	for _, d := range f.Donations {
		if d.Status == status {
			out = append(out, *d)
		}
	}
	return out, nil
}

func (f *Fake) UpdateDonationStatus(_ context.Context, id string, from, to model.DonationStatus) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	d, ok := f.Donations[id]
	if !ok {
		return store.ErrNotFound
	}
	if d.Status != from {
		return fmt.Errorf("donation %s is %s, not %s: %w", id, d.Status, from, store.ErrConflict)
	}
	d.Status = to
	return nil
}

func (f *Fake) SetDonationVolunteer(_ context.Context, id, volunteerID string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	d, ok := f.Donations[id]
	if !ok {
		return store.ErrNotFound
	}
	d.AssignedVolunteer = volunteerID
	return nil
}

func (f *Fake) AcceptDonation(_ context.Context, donationID, recipientID string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	d, ok := f.Donations[donationID]
	if !ok {
		return store.ErrNotFound
	}
	if d.Status != model.DonationActive || d.AcceptedBy != "" {
		return store.ErrConflict
	}
	d.Status = model.DonationMatched
	d.AcceptedBy = recipientID
	return nil
}

func (f *Fake) SaveOffers(ctx context.Context, donationID string, offers []model.Offer) error {
	if f.SaveOffersFn != nil {
		return f.SaveOffersFn(ctx, donationID, offers)
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	d, ok := f.Donations[donationID]
	if !ok {
		return store.ErrNotFound
	}
	d.Offers = append([]model.Offer(nil), offers...)
	return nil
}

func (f *Fake) ResolveOffers(_ context.Context, donationID, recipientID, method string, score float64, reason string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	d, ok := f.Donations[donationID]
	if !ok {
		return store.ErrNotFound
	}

	now := time.Now()
	found := false
	for i := range d.Offers {
		offer := &d.Offers[i]
		switch {
		case offer.RecipientID == recipientID:
			offer.Status = model.OfferAccepted
			offer.Method = method
			offer.Score = score
			offer.RespondedAt = &now
			found = true
		case offer.Status == model.OfferOffered:
			offer.Status = model.OfferDeclined
			offer.DeclineReason = reason
			offer.RespondedAt = &now
		}
	}
	if !found {
		d.Offers = append(d.Offers, model.Offer{
			ID:          model.NewID(),
			DonationID:  donationID,
			RecipientID: recipientID,
			Score:       score,
			Status:      model.OfferAccepted,
			Method:      method,
			RespondedAt: &now,
		})
	}
	return nil
}

func (f *Fake) DeclineOffer(_ context.Context, donationID, recipientID, reason string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	d, ok := f.Donations[donationID]
	if !ok {
		return store.ErrNotFound
	}
	for i := range d.Offers {
		offer := &d.Offers[i]
		if offer.RecipientID == recipientID && offer.Status == model.OfferOffered {
			now := time.Now()
			offer.Status = model.OfferDeclined
			offer.DeclineReason = reason
			offer.RespondedAt = &now
			return nil
		}
	}
	return store.ErrNotFound
}

func (f *Fake) GetRecipient(_ context.Context, id string) (*model.RecipientCandidate, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	r, ok := f.Recipients[id]
	if !ok {
		return nil, store.ErrNotFound
	}
	copied := *r
	return &copied, nil
}

func (f *Fake) ListEligibleRecipients(ctx context.Context) ([]model.RecipientCandidate, error) {
	if f.ListEligibleRecipientsFn != nil {
		return f.ListEligibleRecipientsFn(ctx)
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []model.RecipientCandidate
	for _, r := range f.Recipients {
		if r.Verified && r.HasSpareCapacity() {
			out = append(out, *r)
		}
	}
	return out, nil
}

func (f *Fake) GetVolunteer(_ context.Context, id string) (*model.Volunteer, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	v, ok := f.Volunteers[id]
	if !ok {
		return nil, store.ErrNotFound
	}
	copied := *v
	return &copied, nil
}

func (f *Fake) ListAvailableVolunteers(ctx context.Context) ([]model.Volunteer, error) {
	if f.ListAvailableVolunteersFn != nil {
		return f.ListAvailableVolunteersFn(ctx)
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []model.Volunteer
	for _, v := range f.Volunteers {
		if v.Available && v.Active {
			out = append(out, *v)
		}
	}
	return out, nil
}

func (f *Fake) ListActiveVolunteers(ctx context.Context, limit int) ([]model.Volunteer, error) {
	if f.ListActiveVolunteersFn != nil {
		return f.ListActiveVolunteersFn(ctx, limit)
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []model.Volunteer
	for _, v := range f.Volunteers {
		if !v.Active {
			continue
		}
		out = append(out, *v)
		if len(out) == limit {
			break
		}
	}
	return out, nil
}

func (f *Fake) CreateTask(_ context.Context, t *model.Task) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	copied := *t
	f.Tasks[t.ID] = &copied
	return nil
}

func (f *Fake) GetTask(_ context.Context, id string) (*model.Task, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	t, ok := f.Tasks[id]
	if !ok {
		return nil, store.ErrNotFound
	}
	copied := *t
	return &copied, nil
}

func (f *Fake) BindTaskVolunteer(ctx context.Context, taskID, volunteerID string) error {
	if f.BindTaskVolunteerFn != nil {
		return f.BindTaskVolunteerFn(ctx, taskID, volunteerID)
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	t, ok := f.Tasks[taskID]
	if !ok {
		return store.ErrNotFound
	}
	v, ok := f.Volunteers[volunteerID]
	if !ok {
		return store.ErrNotFound
	}
	if t.Status != model.TaskPending {
		return store.ErrConflict
	}
	if !v.Active || !v.HasCapacity() {
		return store.ErrConflict
	}
	v.ActiveTaskCount++
	t.Status = model.TaskAssigned
	t.VolunteerID = volunteerID
	return nil
}

func (f *Fake) PendingWaypoints(_ context.Context, volunteerID string) ([]model.Waypoint, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []model.Waypoint
	for _, t := range f.Tasks {
		if t.VolunteerID != volunteerID {
			continue
		}
		if t.Status == model.TaskDelivered || t.Status == model.TaskCancelled {
			continue
		}
		if t.Pickup != nil && t.Status != model.TaskPickedUp && t.Status != model.TaskInTransit {
			out = append(out, model.Waypoint{TaskID: t.ID, Kind: model.WaypointPickup, Location: *t.Pickup})
		}
		if t.Dropoff != nil {
			out = append(out, model.Waypoint{TaskID: t.ID, Kind: model.WaypointDropoff, Location: *t.Dropoff})
		}
	}
	return out, nil
}

func (f *Fake) UpdateTaskRoute(_ context.Context, taskID string, route *model.OptimizedRoute) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	t, ok := f.Tasks[taskID]
	if !ok {
		return store.ErrNotFound
	}
	t.Route = route
	return nil
}
