package geo

import (
	"context"
	"time"

	"github.com/Vievek/zero-hunger-sub000/internal/model"
	"go.uber.org/zap"
)

// Conservative defaults served when the underlying oracle fails.
const (
	fallbackMeters     = 5000.0
	fallbackSeconds    = 600.0
	fallbackMultiplier = 1.0
)

// Degrading wraps an Oracle and swallows its failures: distance queries fall
// back to fixed constants, route optimization to the original waypoint order
// with zero totals. Callers never see provider errors.
type Degrading struct {
	inner  Oracle
	logger *zap.Logger
}

// NewDegrading wraps inner with conservative-default degradation.
func NewDegrading(inner Oracle, logger *zap.Logger) *Degrading {
	return &Degrading{inner: inner, logger: logger}
}

func (d *Degrading) Distance(ctx context.Context, origin, dest model.Location, departAt time.Time) (Leg, error) {
	leg, err := d.inner.Distance(ctx, origin, dest, departAt)
	if err != nil {
		d.logger.Warn("distance lookup failed, using defaults", zap.Error(err))
		return Leg{
			Meters:            fallbackMeters,
			Seconds:           fallbackSeconds,
			TrafficMultiplier: fallbackMultiplier,
		}, nil
	}
	if leg.TrafficMultiplier <= 0 {
		leg.TrafficMultiplier = fallbackMultiplier
	}
	return leg, nil
}

func (d *Degrading) OptimizeRoute(ctx context.Context, waypoints []model.Location) (Route, error) {
	route, err := d.inner.OptimizeRoute(ctx, waypoints)
	if err != nil {
		d.logger.Warn("route optimization failed, keeping input order",
			zap.Int("waypoints", len(waypoints)),
			zap.Error(err),
		)
		return Route{Order: identityOrder(len(waypoints))}, nil
	}
	return route, nil
}
