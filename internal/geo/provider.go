package geo

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/Vievek/zero-hunger-sub000/internal/model"
	"go.uber.org/zap"
)

// Provider queries an OSRM-compatible routing service over HTTP.
type Provider struct {
	baseURL    string
	logger     *zap.Logger
	HTTPClient *http.Client
}

// NewProvider creates a provider for the given OSRM-style endpoint.
func NewProvider(baseURL string, logger *zap.Logger) *Provider {
	return &Provider{
		baseURL: strings.TrimRight(baseURL, "/"),
		logger:  logger,
		HTTPClient: &http.Client{
			Timeout: 10 * time.Second,
		},
	}
}

type routeResponse struct {
	Code   string `json:"code"`
	Routes []struct {
		Distance float64 `json:"distance"`
		Duration float64 `json:"duration"`
		Geometry string  `json:"geometry"`
	} `json:"routes"`
}

type tripResponse struct {
	Code      string `json:"code"`
	Waypoints []struct {
		WaypointIndex int `json:"waypoint_index"`
	} `json:"waypoints"`
	Trips []struct {
		Distance float64 `json:"distance"`
		Duration float64 `json:"duration"`
		Geometry string  `json:"geometry"`
	} `json:"trips"`
}

func (p *Provider) Distance(ctx context.Context, origin, dest model.Location, departAt time.Time) (Leg, error) {
	coords := coordinatePath([]model.Location{origin, dest})

	q := url.Values{}
	q.Set("overview", "false")
	if !departAt.IsZero() {
		q.Set("depart", strconv.FormatInt(departAt.Unix(), 10))
	}

	var response routeResponse
	if err := p.getJSON(ctx, "/route/v1/driving/"+coords, q, &response); err != nil {
		return Leg{}, err
	}

	if response.Code != "Ok" || len(response.Routes) == 0 {
		return Leg{}, fmt.Errorf("route provider returned code %q", response.Code)
	}

	route := response.Routes[0]
	leg := Leg{
		Meters:            route.Distance,
		Seconds:           route.Duration,
		TrafficMultiplier: 1.0,
	}

	// The provider bakes traffic into duration; the multiplier is the
	// ratio against a free-flow estimate over the same distance.
	if freeFlow := route.Distance / averageSpeedMPS; freeFlow > 0 && route.Duration > freeFlow {
		leg.TrafficMultiplier = route.Duration / freeFlow
	}

	return leg, nil
}

func (p *Provider) OptimizeRoute(ctx context.Context, waypoints []model.Location) (Route, error) {
	if len(waypoints) < 2 {
		return Route{Order: identityOrder(len(waypoints))}, nil
	}

	q := url.Values{}
	q.Set("roundtrip", "false")
	q.Set("source", "first")

	var response tripResponse
	if err := p.getJSON(ctx, "/trip/v1/driving/"+coordinatePath(waypoints), q, &response); err != nil {
		return Route{}, err
	}

	if response.Code != "Ok" || len(response.Trips) == 0 || len(response.Waypoints) != len(waypoints) {
		return Route{}, fmt.Errorf("trip provider returned code %q", response.Code)
	}

	// waypoint_index is the visit position of each input point; invert it
	// into visit order.
	order := make([]int, len(waypoints))
	for input, wp := range response.Waypoints {
		if wp.WaypointIndex < 0 || wp.WaypointIndex >= len(order) {
			return Route{}, fmt.Errorf("trip provider returned waypoint index %d out of range", wp.WaypointIndex)
		}
		order[wp.WaypointIndex] = input
	}

	trip := response.Trips[0]
	return Route{
		Order:        order,
		TotalMeters:  trip.Distance,
		TotalSeconds: trip.Duration,
		Polyline:     trip.Geometry,
	}, nil
}

func (p *Provider) getJSON(ctx context.Context, path string, q url.Values, target any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, p.baseURL+path, nil)
	if err != nil {
		return err
	}
	req.Header.Set("Accept", "application/json")
	req.URL.RawQuery = q.Encode()

	p.logger.Debug("route provider request", zap.String("url", req.URL.String()))

	resp, err := p.HTTPClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("bad status: %s", resp.Status)
	}

	return json.NewDecoder(resp.Body).Decode(target)
}

func coordinatePath(points []model.Location) string {
	parts := make([]string, len(points))
	for i, pt := range points {
		// OSRM expects lng,lat ordering.
		parts[i] = fmt.Sprintf("%f,%f", pt.Lng, pt.Lat)
	}
	return strings.Join(parts, ";")
}
