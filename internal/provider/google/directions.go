package google

import (
	"context"
	"encoding/json"
	"fmt"
	"html"
	"net/http"
	"net/url"
	"regexp"
	"strings"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/tributary-ai/route-gateway/internal/provider"
	"github.com/tributary-ai/route-gateway/internal/types"
)

const defaultBaseURL = "https://maps.googleapis.com/maps/api/directions/json"

// separator joins waypoint and avoid lists in Directions queries.
const separator = "|"

// DirectionsProvider implements provider.RouteProvider against the
// Google Directions API.
type DirectionsProvider struct {
	config *Config
	client *http.Client
	logger *logrus.Logger
}

// Config holds Google Directions configuration.
type Config struct {
	APIKey  string        `yaml:"api_key"`
	BaseURL string        `yaml:"base_url"`
	Timeout time.Duration `yaml:"timeout"`
}

// NewDirectionsProvider creates a Directions-backed route provider.
func NewDirectionsProvider(config *Config, logger *logrus.Logger) *DirectionsProvider {
	if config.BaseURL == "" {
		config.BaseURL = defaultBaseURL
	}
	if config.Timeout == 0 {
		config.Timeout = 30 * time.Second
	}

	return &DirectionsProvider{
		config: config,
		client: &http.Client{Timeout: config.Timeout},
		logger: logger,
	}
}

// GetProviderName returns the provider name.
func (p *DirectionsProvider) GetProviderName() string {
	return "google-directions"
}

// Directions API wire types. Only the consumed fields are declared.

type directionsResponse struct {
	Status       string            `json:"status"`
	ErrorMessage string            `json:"error_message"`
	Routes       []directionsRoute `json:"routes"`
}

type directionsRoute struct {
	Summary          string          `json:"summary"`
	Legs             []directionsLeg `json:"legs"`
	OverviewPolyline struct {
		Points string `json:"points"`
	} `json:"overview_polyline"`
	Warnings []string `json:"warnings"`
}

type directionsLeg struct {
	Distance          textValue        `json:"distance"`
	Duration          textValue        `json:"duration"`
	DurationInTraffic *textValue       `json:"duration_in_traffic"`
	Steps             []directionsStep `json:"steps"`
}

type directionsStep struct {
	HTMLInstructions string    `json:"html_instructions"`
	Distance         textValue `json:"distance"`
	Duration         textValue `json:"duration"`
	Maneuver         string    `json:"maneuver"`
}

type textValue struct {
	Text  string `json:"text"`
	Value int    `json:"value"`
}

// FetchRoute resolves one route query. Failures come back as
// *provider.Error with the upstream status mapped onto a stable kind.
func (p *DirectionsProvider) FetchRoute(ctx context.Context, req *types.RouteRequest) (*types.Route, error) {
	query := p.buildQuery(req)

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodGet, p.config.BaseURL+"?"+query.Encode(), nil)
	if err != nil {
		return nil, provider.NewError(provider.ErrUnknown, "failed to build directions request: %v", err)
	}

	start := time.Now()
	resp, err := p.client.Do(httpReq)
	if err != nil {
		p.logger.WithError(err).Error("Directions API call failed")
		return nil, provider.NewError(provider.ErrUnknown, "directions request failed: %v", err)
	}
	defer resp.Body.Close()

	var body directionsResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return nil, provider.NewError(provider.ErrUnknown, "failed to decode directions response: %v", err)
	}

	p.logger.WithFields(logrus.Fields{
		"provider":    p.GetProviderName(),
		"status":      body.Status,
		"routes":      len(body.Routes),
		"duration_ms": time.Since(start).Milliseconds(),
	}).Debug("Directions query completed")

	if err := classifyStatus(body.Status, body.ErrorMessage); err != nil {
		return nil, err
	}
	if len(body.Routes) == 0 {
		return nil, provider.NewError(provider.ErrNoResults, "no routes returned for %s -> %s", req.Origin, req.Destination)
	}

	return convertRoute(&body.Routes[0]), nil
}

// buildQuery maps a RouteRequest onto Directions query parameters.
func (p *DirectionsProvider) buildQuery(req *types.RouteRequest) url.Values {
	query := url.Values{}
	query.Set("origin", req.Origin)
	query.Set("destination", req.Destination)
	query.Set("key", p.config.APIKey)

	if len(req.Waypoints) > 0 {
		query.Set("waypoints", strings.Join(req.Waypoints, separator))
	}

	var avoid []string
	if req.AvoidTolls {
		avoid = append(avoid, "tolls")
	}
	if req.AvoidHighways {
		avoid = append(avoid, "highways")
	}
	if len(avoid) > 0 {
		query.Set("avoid", strings.Join(avoid, separator))
	}

	// The "now" sentinel uses the provider's current-time shortcut;
	// anything else is passed through untouched.
	if req.DepartureTime == types.DepartureNow {
		query.Set("departure_time", "now")
	} else if req.DepartureTime != "" {
		query.Set("departure_time", req.DepartureTime)
	}

	model := req.TrafficModel
	if model == "" {
		model = types.TrafficBestGuess
	}
	query.Set("traffic_model", string(model))

	if req.WantAlternatives {
		query.Set("alternatives", "true")
	}

	return query
}

// classifyStatus maps a Directions status onto the provider error
// taxonomy. OK yields nil.
func classifyStatus(status, errorMessage string) error {
	if status == "OK" {
		return nil
	}

	message := status
	if errorMessage != "" {
		message = fmt.Sprintf("%s: %s", status, errorMessage)
	}

	switch status {
	case "ZERO_RESULTS":
		return provider.NewError(provider.ErrNoResults, "no route found (%s)", message)
	case "NOT_FOUND":
		return provider.NewError(provider.ErrLocationNotFound, "location could not be resolved (%s)", message)
	case "OVER_QUERY_LIMIT", "OVER_DAILY_LIMIT":
		return provider.NewError(provider.ErrQuotaExceeded, "upstream quota exceeded (%s)", message)
	case "REQUEST_DENIED":
		return provider.NewError(provider.ErrRequestDenied, "upstream denied the request (%s)", message)
	default:
		return provider.NewError(provider.ErrUnknown, "upstream returned %s", message)
	}
}

// convertRoute normalizes the first leg of a Directions route. The
// gateway only ever consumes one route and one leg per query.
func convertRoute(route *directionsRoute) *types.Route {
	result := &types.Route{
		Summary:  route.Summary,
		Polyline: route.OverviewPolyline.Points,
		Warnings: route.Warnings,
	}

	if len(route.Legs) == 0 {
		return result
	}
	leg := route.Legs[0]

	result.DistanceMeters = leg.Distance.Value
	result.DurationSeconds = leg.Duration.Value
	if leg.DurationInTraffic != nil {
		result.DurationInTrafficSeconds = leg.DurationInTraffic.Value
	} else {
		// No traffic-aware figure applicable; fall back to the base duration.
		result.DurationInTrafficSeconds = leg.Duration.Value
	}

	result.Steps = make([]types.Step, 0, len(leg.Steps))
	for _, step := range leg.Steps {
		result.Steps = append(result.Steps, types.Step{
			Instruction: StripMarkup(step.HTMLInstructions),
			Distance:    step.Distance.Text,
			Duration:    step.Duration.Text,
			Maneuver:    step.Maneuver,
		})
	}

	return result
}

var markupTags = regexp.MustCompile(`<[^>]*>`)

// StripMarkup removes markup tags from instruction text, preserving
// inner text and whitespace, and decodes HTML entities.
func StripMarkup(s string) string {
	return html.UnescapeString(markupTags.ReplaceAllString(s, ""))
}

// Ensure DirectionsProvider implements the RouteProvider interface.
var _ provider.RouteProvider = (*DirectionsProvider)(nil)
