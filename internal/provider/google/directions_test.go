package google

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tributary-ai/route-gateway/internal/provider"
	"github.com/tributary-ai/route-gateway/internal/types"
)

func newTestProvider(t *testing.T, handler http.HandlerFunc) *DirectionsProvider {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	return NewDirectionsProvider(&Config{
		APIKey:  "test-key",
		BaseURL: server.URL,
	}, logrus.New())
}

const successBody = `{
	"status": "OK",
	"routes": [{
		"summary": "A4",
		"overview_polyline": {"points": "abc123"},
		"warnings": ["toll road ahead"],
		"legs": [{
			"distance": {"text": "12.3 km", "value": 12345},
			"duration": {"text": "20 mins", "value": 1200},
			"duration_in_traffic": {"text": "25 mins", "value": 1500},
			"steps": [{
				"html_instructions": "Turn <b>left</b> onto Main St",
				"distance": {"text": "0.5 km", "value": 500},
				"duration": {"text": "2 mins", "value": 120},
				"maneuver": "turn-left"
			}]
		}]
	}]
}`

func TestDirectionsProvider_FetchRoute(t *testing.T) {
	p := newTestProvider(t, func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, successBody)
	})

	route, err := p.FetchRoute(context.Background(), &types.RouteRequest{
		Origin:      "Berlin",
		Destination: "Hamburg",
	})
	require.NoError(t, err)

	assert.Equal(t, "A4", route.Summary)
	assert.Equal(t, 12345, route.DistanceMeters)
	assert.Equal(t, 1200, route.DurationSeconds)
	assert.Equal(t, 1500, route.DurationInTrafficSeconds)
	assert.Equal(t, "abc123", route.Polyline)
	assert.Equal(t, []string{"toll road ahead"}, route.Warnings)

	require.Len(t, route.Steps, 1)
	assert.Equal(t, "Turn left onto Main St", route.Steps[0].Instruction)
	assert.Equal(t, "turn-left", route.Steps[0].Maneuver)
}

func TestDirectionsProvider_FetchRoute_NoTrafficFigure(t *testing.T) {
	p := newTestProvider(t, func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{
			"status": "OK",
			"routes": [{
				"summary": "A4",
				"legs": [{
					"distance": {"value": 10000},
					"duration": {"value": 900}
				}]
			}]
		}`)
	})

	route, err := p.FetchRoute(context.Background(), &types.RouteRequest{
		Origin:      "Berlin",
		Destination: "Hamburg",
	})
	require.NoError(t, err)

	// Without a traffic-aware figure the base duration stands in.
	assert.Equal(t, 900, route.DurationInTrafficSeconds)
}

func TestDirectionsProvider_FetchRoute_StatusMapping(t *testing.T) {
	tests := []struct {
		status string
		kind   provider.ErrorKind
	}{
		{"ZERO_RESULTS", provider.ErrNoResults},
		{"NOT_FOUND", provider.ErrLocationNotFound},
		{"OVER_QUERY_LIMIT", provider.ErrQuotaExceeded},
		{"OVER_DAILY_LIMIT", provider.ErrQuotaExceeded},
		{"REQUEST_DENIED", provider.ErrRequestDenied},
		{"INVALID_REQUEST", provider.ErrUnknown},
		{"UNKNOWN_ERROR", provider.ErrUnknown},
	}

	for _, tt := range tests {
		t.Run(tt.status, func(t *testing.T) {
			p := newTestProvider(t, func(w http.ResponseWriter, r *http.Request) {
				fmt.Fprintf(w, `{"status": %q, "routes": []}`, tt.status)
			})

			route, err := p.FetchRoute(context.Background(), &types.RouteRequest{
				Origin:      "Berlin",
				Destination: "Hamburg",
			})

			assert.Nil(t, route)
			var providerErr *provider.Error
			require.ErrorAs(t, err, &providerErr)
			assert.Equal(t, tt.kind, providerErr.Kind)
		})
	}
}

func TestDirectionsProvider_FetchRoute_ErrorMessagePassthrough(t *testing.T) {
	p := newTestProvider(t, func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"status": "REQUEST_DENIED", "error_message": "The provided API key is invalid."}`)
	})

	_, err := p.FetchRoute(context.Background(), &types.RouteRequest{
		Origin:      "Berlin",
		Destination: "Hamburg",
	})

	require.Error(t, err)
	assert.Contains(t, err.Error(), "The provided API key is invalid.")
}

func TestDirectionsProvider_FetchRoute_OKWithoutRoutes(t *testing.T) {
	p := newTestProvider(t, func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"status": "OK", "routes": []}`)
	})

	_, err := p.FetchRoute(context.Background(), &types.RouteRequest{
		Origin:      "Berlin",
		Destination: "Hamburg",
	})

	var providerErr *provider.Error
	require.ErrorAs(t, err, &providerErr)
	assert.Equal(t, provider.ErrNoResults, providerErr.Kind)
}

func TestDirectionsProvider_FetchRoute_TransportError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	server.Close()

	p := NewDirectionsProvider(&Config{APIKey: "test-key", BaseURL: server.URL}, logrus.New())

	_, err := p.FetchRoute(context.Background(), &types.RouteRequest{
		Origin:      "Berlin",
		Destination: "Hamburg",
	})

	var providerErr *provider.Error
	require.ErrorAs(t, err, &providerErr)
	assert.Equal(t, provider.ErrUnknown, providerErr.Kind)
}

func TestDirectionsProvider_BuildQuery(t *testing.T) {
	p := NewDirectionsProvider(&Config{APIKey: "test-key"}, logrus.New())

	query := p.buildQuery(&types.RouteRequest{
		Origin:        "Berlin",
		Destination:   "Hamburg",
		Waypoints:     []string{"Potsdam", "Magdeburg"},
		AvoidTolls:    true,
		AvoidHighways: true,
		DepartureTime: types.DepartureNow,
		TrafficModel:  types.TrafficPessimistic,
	})

	assert.Equal(t, "Berlin", query.Get("origin"))
	assert.Equal(t, "Hamburg", query.Get("destination"))
	assert.Equal(t, "test-key", query.Get("key"))
	assert.Equal(t, "Potsdam|Magdeburg", query.Get("waypoints"))
	assert.Equal(t, "tolls|highways", query.Get("avoid"))
	assert.Equal(t, "now", query.Get("departure_time"))
	assert.Equal(t, "pessimistic", query.Get("traffic_model"))
	assert.Empty(t, query.Get("alternatives"))
}

func TestDirectionsProvider_BuildQuery_Minimal(t *testing.T) {
	p := NewDirectionsProvider(&Config{APIKey: "test-key"}, logrus.New())

	query := p.buildQuery(&types.RouteRequest{
		Origin:      "Berlin",
		Destination: "Hamburg",
	})

	assert.Empty(t, query.Get("waypoints"))
	assert.Empty(t, query.Get("avoid"))
	assert.Empty(t, query.Get("departure_time"))
	assert.Equal(t, "best_guess", query.Get("traffic_model"))
}

func TestDirectionsProvider_BuildQuery_ExplicitDeparture(t *testing.T) {
	p := NewDirectionsProvider(&Config{APIKey: "test-key"}, logrus.New())

	query := p.buildQuery(&types.RouteRequest{
		Origin:        "Berlin",
		Destination:   "Hamburg",
		DepartureTime: "1735689600",
	})

	assert.Equal(t, "1735689600", query.Get("departure_time"))
}

func TestDirectionsProvider_BuildQuery_Alternatives(t *testing.T) {
	p := NewDirectionsProvider(&Config{APIKey: "test-key"}, logrus.New())

	query := p.buildQuery(&types.RouteRequest{
		Origin:           "Berlin",
		Destination:      "Hamburg",
		WantAlternatives: true,
	})

	assert.Equal(t, "true", query.Get("alternatives"))
}

func TestStripMarkup(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{"bold tag", "Turn <b>left</b> onto Main St", "Turn left onto Main St"},
		{"nested tags", `Take exit <div style="font-size:0.9em">12A</div>`, "Take exit 12A"},
		{"entities", "Continue on A4 &amp; merge", "Continue on A4 & merge"},
		{"plain text", "Head north", "Head north"},
		{"empty", "", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, StripMarkup(tt.input))
		})
	}
}

func TestDirectionsProvider_GetProviderName(t *testing.T) {
	p := NewDirectionsProvider(&Config{APIKey: "test-key"}, logrus.New())
	assert.Equal(t, "google-directions", p.GetProviderName())
}
