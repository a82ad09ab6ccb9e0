// Package model defines the core domain records shared by the matching,
// response, assignment and routing components.
package model

import (
	"time"

	"github.com/google/uuid"
)

// DonationStatus tracks a donation through its lifecycle. Transitions are
// forward-only; cancellation is allowed from any non-terminal state.
type DonationStatus string

const (
	DonationPending    DonationStatus = "pending"
	DonationProcessing DonationStatus = "processing"
	DonationActive     DonationStatus = "active"
	DonationMatched    DonationStatus = "matched"
	DonationScheduled  DonationStatus = "scheduled"
	DonationPickedUp   DonationStatus = "picked_up"
	DonationDelivered  DonationStatus = "delivered"
	DonationCancelled  DonationStatus = "cancelled"
)

var donationOrder = map[DonationStatus]int{
	DonationPending:    0,
	DonationProcessing: 1,
	DonationActive:     2,
	DonationMatched:    3,
	DonationScheduled:  4,
	DonationPickedUp:   5,
	DonationDelivered:  6,
}

// CanTransitionTo reports whether moving to next keeps the status progression
// monotonic. Cancellation is reachable from every non-terminal state.
func (s DonationStatus) CanTransitionTo(next DonationStatus) bool {
	if s == DonationDelivered || s == DonationCancelled {
		return false
	}
	if next == DonationCancelled {
		return true
	}
	cur, ok := donationOrder[s]
	if !ok {
		return false
	}
	nxt, ok := donationOrder[next]
	if !ok {
		return false
	}
	return nxt > cur
}

// Urgency reflects how quickly perishable goods must move.
type Urgency string

const (
	UrgencyNormal   Urgency = "normal"
	UrgencyHigh     Urgency = "high"
	UrgencyCritical Urgency = "critical"
)

// OfferStatus tracks a single ranked offer to a recipient.
type OfferStatus string

const (
	OfferOffered  OfferStatus = "offered"
	OfferAccepted OfferStatus = "accepted"
	OfferDeclined OfferStatus = "declined"
)

// Offer creation methods.
const (
	OfferMethodRanked = "ranked"
	OfferMethodManual = "manual"
)

// TaskStatus tracks a pickup task; transitions are forward-only.
type TaskStatus string

const (
	TaskPending   TaskStatus = "pending"
	TaskAssigned  TaskStatus = "assigned"
	TaskPickedUp  TaskStatus = "picked_up"
	TaskInTransit TaskStatus = "in_transit"
	TaskDelivered TaskStatus = "delivered"
	TaskCancelled TaskStatus = "cancelled"
)

// Vehicle classes a volunteer may operate.
type Vehicle string

const (
	VehicleNone  Vehicle = "none"
	VehicleBike  Vehicle = "bike"
	VehicleCar   Vehicle = "car"
	VehicleVan   Vehicle = "van"
	VehicleTruck Vehicle = "truck"
)

// Location is a planar coordinate pair in degrees. The engine deliberately
// avoids great-circle math; distances are bounded planar approximations.
type Location struct {
	Lat float64 `json:"lat"`
	Lng float64 `json:"lng"`
}

// Offer is one entry of a donation's ranked recipient list.
type Offer struct {
	ID            string      `json:"id"`
	DonationID    string      `json:"donation_id"`
	RecipientID   string      `json:"recipient_id"`
	Score         float64     `json:"score"`
	Status        OfferStatus `json:"status"`
	Method        string      `json:"method"`
	RespondedAt   *time.Time  `json:"responded_at,omitempty"`
	DeclineReason string      `json:"decline_reason,omitempty"`
}

// Donation carries the metadata the upstream intake workflow populates before
// the donation becomes eligible for matching.
type Donation struct {
	ID                string         `json:"id"`
	DonorID           string         `json:"donor_id"`
	Title             string         `json:"title"`
	Description       string         `json:"description"`
	Categories        []string       `json:"categories"`
	Tags              []string       `json:"tags"`
	FreshnessScore    float64        `json:"freshness_score"`
	Urgency           Urgency        `json:"urgency"`
	Status            DonationStatus `json:"status"`
	Location          *Location      `json:"location,omitempty"`
	Offers            []Offer        `json:"offers,omitempty"`
	AcceptedBy        string         `json:"accepted_by,omitempty"`
	AssignedVolunteer string         `json:"assigned_volunteer,omitempty"`
	CreatedAt         time.Time      `json:"created_at"`
	UpdatedAt         time.Time      `json:"updated_at"`
}

// OfferFor returns the offer for the given recipient, or nil.
func (d *Donation) OfferFor(recipientID string) *Offer {
	for i := range d.Offers {
		if d.Offers[i].RecipientID == recipientID {
			return &d.Offers[i]
		}
	}
	return nil
}

// AcceptedOffer returns the single accepted offer, or nil.
func (d *Donation) AcceptedOffer() *Offer {
	for i := range d.Offers {
		if d.Offers[i].Status == OfferAccepted {
			return &d.Offers[i]
		}
	}
	return nil
}

// RecipientCandidate is the read-only view of a recipient organization used
// during scoring. Only verified candidates are eligible.
type RecipientCandidate struct {
	ID                  string    `json:"id"`
	Name                string    `json:"name"`
	OrgType             string    `json:"org_type"`
	Capacity            int       `json:"capacity"`
	CurrentLoad         int       `json:"current_load"`
	DietaryRestrictions []string  `json:"dietary_restrictions"`
	PreferredCategories []string  `json:"preferred_categories"`
	Location            *Location `json:"location,omitempty"`
	Verified            bool      `json:"verified"`
}

// HasSpareCapacity reports whether the recipient can take on more load.
func (r *RecipientCandidate) HasSpareCapacity() bool {
	return r.Capacity > 0 && r.CurrentLoad < r.Capacity
}

// Utilization returns currentLoad/capacity, treating zero capacity as full.
func (r *RecipientCandidate) Utilization() float64 {
	if r.Capacity <= 0 {
		return 1.0
	}
	return float64(r.CurrentLoad) / float64(r.Capacity)
}

// Volunteer is a courier candidate for pickup tasks.
type Volunteer struct {
	ID                 string    `json:"id"`
	Name               string    `json:"name"`
	Location           *Location `json:"location,omitempty"`
	Vehicle            Vehicle   `json:"vehicle"`
	Available          bool      `json:"available"`
	Active             bool      `json:"active"`
	ActiveTaskCount    int       `json:"active_task_count"`
	MaxConcurrentTasks int       `json:"max_concurrent_tasks"`
}

// HasCapacity reports whether the volunteer can take one more task.
func (v *Volunteer) HasCapacity() bool {
	return v.ActiveTaskCount < v.MaxConcurrentTasks
}

// WaypointKind marks a waypoint as a pickup or dropoff stop.
type WaypointKind string

const (
	WaypointPickup  WaypointKind = "pickup"
	WaypointDropoff WaypointKind = "dropoff"
)

// Waypoint is one stop of a volunteer's route.
type Waypoint struct {
	TaskID   string       `json:"task_id"`
	Kind     WaypointKind `json:"kind"`
	Location Location     `json:"location"`
}

// OptimizedRoute is derived, recomputable data attached to a task. It is
// never authoritative for any decision.
type OptimizedRoute struct {
	Waypoints    []Waypoint `json:"waypoints"`
	Order        []int      `json:"order"`
	TotalMeters  float64    `json:"total_meters"`
	TotalSeconds float64    `json:"total_seconds"`
	Polyline     string     `json:"polyline,omitempty"`
}

// Task is the physical-movement job created once a donation is accepted.
type Task struct {
	ID          string          `json:"id"`
	DonationID  string          `json:"donation_id"`
	Status      TaskStatus      `json:"status"`
	VolunteerID string          `json:"volunteer_id,omitempty"`
	Pickup      *Location       `json:"pickup,omitempty"`
	Dropoff     *Location       `json:"dropoff,omitempty"`
	Route       *OptimizedRoute `json:"route,omitempty"`
	Urgency     Urgency         `json:"urgency"`
	CreatedAt   time.Time       `json:"created_at"`
	UpdatedAt   time.Time       `json:"updated_at"`
}

// NewID returns a fresh identifier for donations, offers and tasks.
func NewID() string {
	return uuid.NewString()
}
