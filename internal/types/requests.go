package types

import "strings"

// TrafficModel names the assumption the provider uses to project travel
// time under uncertain future traffic.
type TrafficModel string

const (
	TrafficBestGuess   TrafficModel = "best_guess"
	TrafficPessimistic TrafficModel = "pessimistic"
	TrafficOptimistic  TrafficModel = "optimistic"
)

// DepartureNow is the sentinel that selects the provider's current-time
// shortcut instead of an explicit departure timestamp.
const DepartureNow = "now"

// MaxWaypoints is the per-request waypoint cap.
const MaxWaypoints = 8

// RouteRequest describes a single upstream route query.
type RouteRequest struct {
	Origin           string       `json:"origin"`
	Destination      string       `json:"destination"`
	Waypoints        []string     `json:"waypoints,omitempty"`
	AvoidTolls       bool         `json:"avoid_tolls"`
	AvoidHighways    bool         `json:"avoid_highways"`
	DepartureTime    string       `json:"departure_time"`
	TrafficModel     TrafficModel `json:"traffic_model"`
	WantAlternatives bool         `json:"want_alternatives"`
}

// Normalize trims the endpoints, drops empty waypoints and fills unset
// defaults. Validating the result is the dispatcher's job.
func (r *RouteRequest) Normalize() {
	r.Origin = strings.TrimSpace(r.Origin)
	r.Destination = strings.TrimSpace(r.Destination)

	if len(r.Waypoints) > 0 {
		kept := r.Waypoints[:0]
		for _, wp := range r.Waypoints {
			wp = strings.TrimSpace(wp)
			if wp != "" {
				kept = append(kept, wp)
			}
		}
		r.Waypoints = kept
	}

	if r.DepartureTime == "" {
		r.DepartureTime = DepartureNow
	}
	if r.TrafficModel == "" {
		r.TrafficModel = TrafficBestGuess
	}
}

// CompareOption is one named option set for route comparison.
type CompareOption struct {
	Name          string       `json:"name"`
	AvoidTolls    bool         `json:"avoidTolls"`
	AvoidHighways bool         `json:"avoidHighways"`
	TrafficModel  TrafficModel `json:"trafficModel,omitempty"`
}

// VehicleOptions carries the cost-estimation inputs.
type VehicleOptions struct {
	FuelEfficiency float64 `json:"fuelEfficiency"` // liters per 100 km
	FuelPrice      float64 `json:"fuelPrice"`      // per liter
}
