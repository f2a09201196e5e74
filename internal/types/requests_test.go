package types

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRouteRequest_Normalize(t *testing.T) {
	req := &RouteRequest{
		Origin:      "  Berlin ",
		Destination: "Hamburg\t",
		Waypoints:   []string{" Potsdam ", "", "   ", "Magdeburg"},
	}

	req.Normalize()

	assert.Equal(t, "Berlin", req.Origin)
	assert.Equal(t, "Hamburg", req.Destination)
	assert.Equal(t, []string{"Potsdam", "Magdeburg"}, req.Waypoints)
	assert.Equal(t, DepartureNow, req.DepartureTime)
	assert.Equal(t, TrafficBestGuess, req.TrafficModel)
}

func TestRouteRequest_Normalize_KeepsExplicitValues(t *testing.T) {
	req := &RouteRequest{
		Origin:        "Berlin",
		Destination:   "Hamburg",
		DepartureTime: "1735689600",
		TrafficModel:  TrafficOptimistic,
	}

	req.Normalize()

	assert.Equal(t, "1735689600", req.DepartureTime)
	assert.Equal(t, TrafficOptimistic, req.TrafficModel)
}
