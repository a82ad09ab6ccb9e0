package geo

import (
	"context"
	"math"
	"time"

	"github.com/Vievek/zero-hunger-sub000/internal/model"
)

const (
	// metersPerDegree is the equatorial scale of one degree. The engine
	// operates on city-scale distances where the planar error is small.
	metersPerDegree = 111_320.0

	// averageSpeedMPS approximates urban driving speed (30 km/h).
	averageSpeedMPS = 8.33
)

// Estimator is the zero-dependency Oracle used when no route provider is
// configured. Distances are planar Euclidean; route ordering is a greedy
// nearest-neighbor pass starting from the first waypoint.
type Estimator struct{}

// NewEstimator returns a planar estimator.
func NewEstimator() *Estimator {
	return &Estimator{}
}

func (e *Estimator) Distance(_ context.Context, origin, dest model.Location, _ time.Time) (Leg, error) {
	meters := planarMeters(origin, dest)
	return Leg{
		Meters:            meters,
		Seconds:           meters / averageSpeedMPS,
		TrafficMultiplier: 1.0,
	}, nil
}

func (e *Estimator) OptimizeRoute(_ context.Context, waypoints []model.Location) (Route, error) {
	if len(waypoints) < 2 {
		return Route{Order: identityOrder(len(waypoints))}, nil
	}

	order := make([]int, 0, len(waypoints))
	visited := make([]bool, len(waypoints))

	current := 0
	order = append(order, current)
	visited[current] = true
	total := 0.0

	for len(order) < len(waypoints) {
		next := -1
		best := math.MaxFloat64
		for i, wp := range waypoints {
			if visited[i] {
				continue
			}
			d := planarMeters(waypoints[current], wp)
			if d < best {
				best = d
				next = i
			}
		}
		order = append(order, next)
		visited[next] = true
		total += best
		current = next
	}

	return Route{
		Order:        order,
		TotalMeters:  total,
		TotalSeconds: total / averageSpeedMPS,
	}, nil
}

func planarMeters(a, b model.Location) float64 {
	dx := a.Lat - b.Lat
	dy := a.Lng - b.Lng
	return math.Sqrt(dx*dx+dy*dy) * metersPerDegree
}
