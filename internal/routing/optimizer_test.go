package routing

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/Vievek/zero-hunger-sub000/internal/geo"
	"github.com/Vievek/zero-hunger-sub000/internal/model"
	"go.uber.org/zap"
)

type stubOracle struct {
	route geo.Route
	err   error
}

func (s *stubOracle) Distance(_ context.Context, _, _ model.Location, _ time.Time) (geo.Leg, error) {
	return geo.Leg{TrafficMultiplier: 1}, nil
}

func (s *stubOracle) OptimizeRoute(_ context.Context, _ []model.Location) (geo.Route, error) {
	return s.route, s.err
}

func waypointFixture() []model.Waypoint {
	return []model.Waypoint{
		{TaskID: "t1", Kind: model.WaypointPickup, Location: model.Location{Lat: 1, Lng: 1}},
		{TaskID: "t1", Kind: model.WaypointDropoff, Location: model.Location{Lat: 2, Lng: 2}},
		{TaskID: "t2", Kind: model.WaypointPickup, Location: model.Location{Lat: 3, Lng: 3}},
	}
}

func TestOptimizeReordersWaypoints(t *testing.T) {
	oracle := &stubOracle{route: geo.Route{
		Order:        []int{2, 0, 1},
		TotalMeters:  1234,
		TotalSeconds: 567,
	}}
	optimizer := NewOptimizer(oracle, zap.NewNop())

	route := optimizer.Optimize(context.Background(), waypointFixture())

	if len(route.Waypoints) != 3 {
		t.Fatalf("expected 3 waypoints, got %d", len(route.Waypoints))
	}
	if route.Waypoints[0].TaskID != "t2" {
		t.Fatalf("expected t2 pickup first, got %s", route.Waypoints[0].TaskID)
	}
	if route.TotalMeters != 1234 || route.TotalSeconds != 567 {
		t.Fatalf("expected totals to carry over, got %v/%v", route.TotalMeters, route.TotalSeconds)
	}
}

func TestOptimizeKeepsOrderOnOracleFailure(t *testing.T) {
	oracle := &stubOracle{err: errors.New("provider down")}
	optimizer := NewOptimizer(oracle, zap.NewNop())

	waypoints := waypointFixture()
	route := optimizer.Optimize(context.Background(), waypoints)

	for i := range waypoints {
		if route.Waypoints[i].TaskID != waypoints[i].TaskID || route.Order[i] != i {
			t.Fatalf("expected input order preserved at %d", i)
		}
	}
	if route.TotalMeters != 0 || route.TotalSeconds != 0 {
		t.Fatalf("unoptimized route must carry zero totals")
	}
}

func TestOptimizeKeepsOrderOnMalformedOracleResult(t *testing.T) {
	oracle := &stubOracle{route: geo.Route{Order: []int{0}}}
	optimizer := NewOptimizer(oracle, zap.NewNop())

	route := optimizer.Optimize(context.Background(), waypointFixture())
	if len(route.Order) != 3 {
		t.Fatalf("expected identity order on length mismatch, got %v", route.Order)
	}
}

func TestOptimizeShortRoutesUnchanged(t *testing.T) {
	optimizer := NewOptimizer(&stubOracle{err: errors.New("must not be called")}, zap.NewNop())

	single := []model.Waypoint{{TaskID: "t1", Kind: model.WaypointPickup}}
	route := optimizer.Optimize(context.Background(), single)

	if len(route.Waypoints) != 1 || route.Order[0] != 0 {
		t.Fatalf("expected single waypoint unchanged, got %+v", route)
	}

	empty := optimizer.Optimize(context.Background(), nil)
	if len(empty.Waypoints) != 0 || len(empty.Order) != 0 {
		t.Fatalf("expected empty route, got %+v", empty)
	}
}
