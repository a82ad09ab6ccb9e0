// Package store defines the persistence boundary for donations, offers,
// recipients, volunteers and tasks. Implementations must provide atomic
// conditional updates; the engine never assumes multi-record transactions.
package store

import (
	"context"
	"errors"

	"github.com/Vievek/zero-hunger-sub000/internal/model"
)

var (
	// ErrNotFound is returned when a record does not exist.
	ErrNotFound = errors.New("record not found")
	// ErrConflict is returned when a conditional update loses its guard:
	// a state transition from an unexpected status, an acceptance race
	// lost to another recipient, or a volunteer failing the live
	// capacity check at bind time.
	ErrConflict = errors.New("state conflict")
)

// Store is the persistence collaborator used by all engine components.
type Store interface {
	CreateDonation(ctx context.Context, d *model.Donation) error
	GetDonation(ctx context.Context, id string) (*model.Donation, error)
	ListDonationsByStatus(ctx context.Context, status model.DonationStatus) ([]model.Donation, error)

	// UpdateDonationStatus transitions the donation from one status to
	// another, failing with ErrConflict when the current status differs.
	UpdateDonationStatus(ctx context.Context, id string, from, to model.DonationStatus) error
	SetDonationVolunteer(ctx context.Context, id, volunteerID string) error

	// AcceptDonation atomically claims the donation for the recipient.
	// The update applies only while the donation is active and unclaimed,
	// so concurrent accepts produce exactly one winner.
	AcceptDonation(ctx context.Context, donationID, recipientID string) error

	SaveOffers(ctx context.Context, donationID string, offers []model.Offer) error

	// ResolveOffers marks the winner's offer accepted (inserting a manual
	// offer when none exists) and declines every other offered entry with
	// the provided reason.
	ResolveOffers(ctx context.Context, donationID, recipientID, method string, score float64, reason string) error

	// DeclineOffer declines a single offered entry; ErrNotFound when no
	// offered entry exists for the recipient.
	DeclineOffer(ctx context.Context, donationID, recipientID, reason string) error

	GetRecipient(ctx context.Context, id string) (*model.RecipientCandidate, error)
	// ListEligibleRecipients returns verified recipients with spare capacity.
	ListEligibleRecipients(ctx context.Context) ([]model.RecipientCandidate, error)

	GetVolunteer(ctx context.Context, id string) (*model.Volunteer, error)
	// ListAvailableVolunteers returns volunteers that are both available
	// and active.
	ListAvailableVolunteers(ctx context.Context) ([]model.Volunteer, error)
	// ListActiveVolunteers returns up to limit active volunteers
	// regardless of their availability flag (emergency fallback pool).
	ListActiveVolunteers(ctx context.Context, limit int) ([]model.Volunteer, error)

	CreateTask(ctx context.Context, t *model.Task) error
	GetTask(ctx context.Context, id string) (*model.Task, error)

	// BindTaskVolunteer assigns the volunteer to a pending task. The
	// volunteer's live task count is re-checked against their concurrency
	// limit as part of the update; ErrConflict when the check fails.
	BindTaskVolunteer(ctx context.Context, taskID, volunteerID string) error

	// PendingWaypoints returns pickup/dropoff stops of the volunteer's
	// unfinished tasks, for route sequencing.
	PendingWaypoints(ctx context.Context, volunteerID string) ([]model.Waypoint, error)
	UpdateTaskRoute(ctx context.Context, taskID string, route *model.OptimizedRoute) error
}
