// Package routing sequences a volunteer's pending waypoints into one ordered
// route using the traffic oracle's trip-optimization capability.
package routing

import (
	"context"

	"github.com/Vievek/zero-hunger-sub000/internal/geo"
	"github.com/Vievek/zero-hunger-sub000/internal/model"
	"go.uber.org/zap"
)

// Optimizer reorders multi-stop routes. Its output is advisory: callers must
// treat a zero-total route as "unoptimized", never as an error.
type Optimizer struct {
	oracle geo.Oracle
	logger *zap.Logger
}

// NewOptimizer builds a route optimizer over the given oracle.
func NewOptimizer(oracle geo.Oracle, logger *zap.Logger) *Optimizer {
	return &Optimizer{oracle: oracle, logger: logger}
}

// Optimize returns the waypoints in optimized visit order. Fewer than two
// waypoints come back unchanged with zero totals, as does any oracle failure.
func (o *Optimizer) Optimize(ctx context.Context, waypoints []model.Waypoint) model.OptimizedRoute {
	route := model.OptimizedRoute{
		Waypoints: waypoints,
		Order:     identityOrder(len(waypoints)),
	}

	if len(waypoints) < 2 {
		return route
	}

	locations := make([]model.Location, len(waypoints))
	for i, wp := range waypoints {
		locations[i] = wp.Location
	}

	optimized, err := o.oracle.OptimizeRoute(ctx, locations)
	if err != nil || len(optimized.Order) != len(waypoints) {
		o.logger.Warn("route optimization unavailable, keeping input order",
			zap.Int("waypoints", len(waypoints)),
			zap.Error(err),
		)
		return route
	}

	ordered := make([]model.Waypoint, len(waypoints))
	for position, index := range optimized.Order {
		ordered[position] = waypoints[index]
	}

	return model.OptimizedRoute{
		Waypoints:    ordered,
		Order:        optimized.Order,
		TotalMeters:  optimized.TotalMeters,
		TotalSeconds: optimized.TotalSeconds,
		Polyline:     optimized.Polyline,
	}
}

func identityOrder(n int) []int {
	order := make([]int, n)
	for i := range order {
		order[i] = i
	}
	return order
}
