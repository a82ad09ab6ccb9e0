// Package assignment selects a volunteer courier for pickup tasks: a scalar
// fitness model, a genetic-search planner over the courier pool, and the
// escalation controller that drives retries and emergency fallback.
package assignment

import (
	"context"
	"time"

	"github.com/Vievek/zero-hunger-sub000/internal/geo"
	"github.com/Vievek/zero-hunger-sub000/internal/model"
	"go.uber.org/zap"
)

// noLocationFitness keeps couriers without a location selectable under
// mutation while making them lose to anyone with coordinates.
const noLocationFitness = 0.1

// longTripMeters is the distance beyond which bike and foot couriers lose
// half their fuel score.
const longTripMeters = 5000.0

var vehicleScores = map[model.Vehicle]float64{
	model.VehicleBike:  0.6,
	model.VehicleCar:   0.8,
	model.VehicleVan:   0.9,
	model.VehicleTruck: 1.0,
	model.VehicleNone:  0.3,
}

var fuelScores = map[model.Vehicle]float64{
	model.VehicleBike:  1.0,
	model.VehicleNone:  0.9,
	model.VehicleCar:   0.7,
	model.VehicleVan:   0.5,
	model.VehicleTruck: 0.3,
}

var urgencyScores = map[model.Urgency]float64{
	model.UrgencyCritical: 1.5,
	model.UrgencyHigh:     1.3,
	model.UrgencyNormal:   1.0,
}

// FitnessModel computes a scalar fitness for one (courier, pickup) pair.
type FitnessModel struct {
	oracle geo.Oracle
	logger *zap.Logger
}

// NewFitnessModel builds a fitness model over the given traffic oracle.
func NewFitnessModel(oracle geo.Oracle, logger *zap.Logger) *FitnessModel {
	return &FitnessModel{oracle: oracle, logger: logger}
}

// Fitness blends distance, vehicle class, availability, workload, urgency,
// fuel efficiency and traffic into one scalar.
func (m *FitnessModel) Fitness(ctx context.Context, v *model.Volunteer, pickup model.Location, urgency model.Urgency) float64 {
	if v.Location == nil {
		return noLocationFitness
	}

	leg, err := m.oracle.Distance(ctx, *v.Location, pickup, time.Now())
	if err != nil {
		// The degrading oracle normally absorbs failures; an error here
		// means no oracle layer at all, so use its defaults.
		m.logger.Debug("distance lookup failed in fitness, using defaults", zap.Error(err))
		leg = geo.Leg{Meters: 5000, Seconds: 600, TrafficMultiplier: 1.0}
	}

	distanceScore := 1.0 / (1.0 + leg.Meters*leg.TrafficMultiplier/1000.0)

	availability := 0.0
	if v.Available {
		availability = 1.0
	}

	workloadPenalty := 1.0 - 0.2*float64(v.ActiveTaskCount)
	if workloadPenalty < 0 {
		workloadPenalty = 0
	}

	urgencyScore, ok := urgencyScores[urgency]
	if !ok {
		urgencyScore = urgencyScores[model.UrgencyNormal]
	}

	fuelScore := fuelScores[v.Vehicle]
	if leg.Meters > longTripMeters && (v.Vehicle == model.VehicleBike || v.Vehicle == model.VehicleNone) {
		fuelScore *= 0.5
	}

	return 0.25*distanceScore +
		0.20*vehicleScores[v.Vehicle] +
		0.15*availability +
		0.15*workloadPenalty +
		0.10*urgencyScore +
		0.10*fuelScore +
		0.05*(1.0-leg.TrafficMultiplier)
}
