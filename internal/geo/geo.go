// Package geo abstracts the external distance/traffic/route provider and the
// degradation and caching layers around it.
package geo

import (
	"context"
	"time"

	"github.com/Vievek/zero-hunger-sub000/internal/model"
)

// Leg is a single origin->destination measurement.
type Leg struct {
	Meters            float64
	Seconds           float64
	TrafficMultiplier float64
}

// Route is the result of a waypoint-reordering request. Order holds indices
// into the requested waypoint slice.
type Route struct {
	Order        []int
	TotalMeters  float64
	TotalSeconds float64
	Polyline     string
}

// Oracle answers distance and route-optimization queries. Callers must treat
// results as advisory: they are never authoritative for bind decisions.
type Oracle interface {
	Distance(ctx context.Context, origin, dest model.Location, departAt time.Time) (Leg, error)
	OptimizeRoute(ctx context.Context, waypoints []model.Location) (Route, error)
}

func identityOrder(n int) []int {
	order := make([]int, n)
	for i := range order {
		order[i] = i
	}
	return order
}
