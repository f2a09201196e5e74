package dispatch

import (
	"context"
	"strings"
	"sync"

	"github.com/tributary-ai/route-gateway/internal/routing"
	"github.com/tributary-ai/route-gateway/internal/types"
)

// Default cost-estimation assumptions when the caller omits
// vehicleOptions.
const (
	defaultFuelEfficiency = 8.0
	defaultFuelPrice      = 1.50
)

func (d *Dispatcher) handleCalculateRoute(ctx context.Context, args map[string]interface{}) (interface{}, error) {
	req, err := routeRequestFromArgs(args)
	if err != nil {
		return nil, err
	}

	route, err := d.provider.FetchRoute(ctx, req)
	if err != nil {
		return nil, err
	}

	return shapeRoute(route), nil
}

func (d *Dispatcher) handleCompareRoutes(ctx context.Context, args map[string]interface{}) (interface{}, error) {
	base, err := routeRequestFromArgs(args)
	if err != nil {
		return nil, err
	}

	options, err := compareOptionsFromArgs(args)
	if err != nil {
		return nil, err
	}

	// The implicit default option set always leads, then the supplied
	// sets in request order.
	labels := make([]string, 0, len(options)+1)
	sources := make([]string, 0, len(options)+1)
	requests := make([]*types.RouteRequest, 0, len(options)+1)

	labels = append(labels, "default")
	sources = append(sources, "default")
	requests = append(requests, &types.RouteRequest{
		Origin:        base.Origin,
		Destination:   base.Destination,
		Waypoints:     base.Waypoints,
		DepartureTime: types.DepartureNow,
		TrafficModel:  types.TrafficBestGuess,
	})

	for _, opt := range options {
		labels = append(labels, opt.Name)
		sources = append(sources, describeOptions(opt))

		model := opt.TrafficModel
		if model == "" {
			model = types.TrafficBestGuess
		}
		requests = append(requests, &types.RouteRequest{
			Origin:        base.Origin,
			Destination:   base.Destination,
			Waypoints:     base.Waypoints,
			AvoidTolls:    opt.AvoidTolls,
			AvoidHighways: opt.AvoidHighways,
			DepartureTime: types.DepartureNow,
			TrafficModel:  model,
		})
	}

	// Concurrent fan-out; results re-associate with their label by
	// index, not by arrival order. Await-all: a failed leg fails the
	// whole comparison since partial comparisons are not an output shape.
	routes := make([]*types.Route, len(requests))
	errs := make([]error, len(requests))
	var wg sync.WaitGroup
	for i, req := range requests {
		wg.Add(1)
		go func(i int, req *types.RouteRequest) {
			defer wg.Done()
			routes[i], errs[i] = d.provider.FetchRoute(ctx, req)
		}(i, req)
	}
	wg.Wait()

	for _, err := range errs {
		if err != nil {
			return nil, err
		}
	}

	entries := make([]types.ComparisonEntry, len(routes))
	for i, route := range routes {
		entries[i] = types.ComparisonEntry{
			Label:         labels[i],
			Route:         route,
			SourceOptions: sources[i],
		}
	}

	comparison, err := routing.Compare(entries)
	if err != nil {
		return nil, err
	}

	payload := types.ComparisonPayload{
		Entries:     make([]types.ComparisonEntryPayload, len(comparison.Entries)),
		Recommended: comparison.Entries[comparison.Recommended].Label,
		Fastest:     comparison.Entries[comparison.Fastest].Label,
		Shortest:    comparison.Entries[comparison.Shortest].Label,
	}
	for i, entry := range comparison.Entries {
		payload.Entries[i] = types.ComparisonEntryPayload{
			Label:         entry.Label,
			SourceOptions: entry.SourceOptions,
			Route:         shapeRoute(entry.Route),
		}
	}

	return payload, nil
}

func (d *Dispatcher) handleGetLiveTraffic(ctx context.Context, args map[string]interface{}) (interface{}, error) {
	req, err := routeRequestFromArgs(args)
	if err != nil {
		return nil, err
	}
	if departure := getString(args, "departureTime"); departure != "" {
		req.DepartureTime = departure
	}

	route, err := d.provider.FetchRoute(ctx, req)
	if err != nil {
		return nil, err
	}

	level, err := routing.ClassifyTraffic(route)
	if err != nil {
		return nil, err
	}

	return types.TrafficPayload{
		Summary:           route.Summary,
		Duration:          FormatDuration(route.DurationSeconds),
		DurationInTraffic: FormatDuration(route.DurationInTrafficSeconds),
		Delay:             FormatDuration(route.DurationInTrafficSeconds - route.DurationSeconds),
		Condition:         string(level),
	}, nil
}

func (d *Dispatcher) handleEstimateCosts(ctx context.Context, args map[string]interface{}) (interface{}, error) {
	req, err := routeRequestFromArgs(args)
	if err != nil {
		return nil, err
	}

	fuelEfficiency := defaultFuelEfficiency
	fuelPrice := defaultFuelPrice
	if vehicle, ok := args["vehicleOptions"].(map[string]interface{}); ok {
		if v, ok := vehicle["fuelEfficiency"].(float64); ok {
			fuelEfficiency = v
		}
		if v, ok := vehicle["fuelPrice"].(float64); ok {
			fuelPrice = v
		}
	}

	route, err := d.provider.FetchRoute(ctx, req)
	if err != nil {
		return nil, err
	}

	estimate, err := routing.EstimateCost(route, fuelEfficiency, fuelPrice)
	if err != nil {
		return nil, err
	}

	return types.CostPayload{
		Distance: FormatDistance(route.DistanceMeters),
		Estimate: *estimate,
	}, nil
}

// routeRequestFromArgs builds a normalized, validated RouteRequest from
// the common tool arguments (origin, destination, waypoints, options).
func routeRequestFromArgs(args map[string]interface{}) (*types.RouteRequest, error) {
	req := &types.RouteRequest{
		Origin:      getString(args, "origin"),
		Destination: getString(args, "destination"),
		Waypoints:   getStringSlice(args, "waypoints"),
	}

	if options, ok := args["options"].(map[string]interface{}); ok {
		req.AvoidTolls, _ = options["avoidTolls"].(bool)
		req.AvoidHighways, _ = options["avoidHighways"].(bool)
		if departure, ok := options["departureTime"].(string); ok {
			req.DepartureTime = departure
		}
		if model, ok := options["trafficModel"].(string); ok {
			req.TrafficModel = types.TrafficModel(model)
		}
	}

	req.Normalize()

	if req.Origin == "" {
		return nil, newError(CodeInvalidArgument, "origin must not be empty")
	}
	if req.Destination == "" {
		return nil, newError(CodeInvalidArgument, "destination must not be empty")
	}
	if len(req.Waypoints) > types.MaxWaypoints {
		return nil, newError(CodeInvalidArgument, "at most %d waypoints are supported, got %d",
			types.MaxWaypoints, len(req.Waypoints))
	}

	return req, nil
}

// compareOptionsFromArgs extracts the ordered compareOptions sets.
func compareOptionsFromArgs(args map[string]interface{}) ([]types.CompareOption, error) {
	raw, ok := args["compareOptions"].([]interface{})
	if !ok {
		return nil, nil
	}

	options := make([]types.CompareOption, 0, len(raw))
	for i, item := range raw {
		set, ok := item.(map[string]interface{})
		if !ok {
			return nil, newError(CodeInvalidArgument, "compareOptions[%d] must be an object", i)
		}

		opt := types.CompareOption{Name: strings.TrimSpace(getString(set, "name"))}
		if opt.Name == "" {
			return nil, newError(CodeInvalidArgument, "compareOptions[%d] needs a non-empty name", i)
		}
		opt.AvoidTolls, _ = set["avoidTolls"].(bool)
		opt.AvoidHighways, _ = set["avoidHighways"].(bool)
		if model, ok := set["trafficModel"].(string); ok {
			opt.TrafficModel = types.TrafficModel(model)
		}
		options = append(options, opt)
	}

	return options, nil
}

// describeOptions renders an option set as a stable source descriptor.
func describeOptions(opt types.CompareOption) string {
	var parts []string
	if opt.AvoidTolls {
		parts = append(parts, "avoid_tolls")
	}
	if opt.AvoidHighways {
		parts = append(parts, "avoid_highways")
	}
	if opt.TrafficModel != "" && opt.TrafficModel != types.TrafficBestGuess {
		parts = append(parts, "traffic_"+string(opt.TrafficModel))
	}
	if len(parts) == 0 {
		return "default"
	}
	return strings.Join(parts, "+")
}

// Argument helpers. Tool arguments arrive as decoded JSON, so numbers
// are float64 and absent keys are simply missing.

func getString(args map[string]interface{}, key string) string {
	value, _ := args[key].(string)
	return value
}

func getStringSlice(args map[string]interface{}, key string) []string {
	raw, ok := args[key].([]interface{})
	if !ok {
		return nil
	}
	values := make([]string, 0, len(raw))
	for _, item := range raw {
		if s, ok := item.(string); ok {
			values = append(values, s)
		}
	}
	return values
}
