package dispatch

import (
	"github.com/getkin/kin-openapi/openapi3"

	"github.com/tributary-ai/route-gateway/internal/routing"
	"github.com/tributary-ai/route-gateway/internal/types"
)

// Tool names accepted by the dispatcher.
const (
	ToolCalculateRoute = "calculate_route"
	ToolCompareRoutes  = "compare_routes"
	ToolGetLiveTraffic = "get_live_traffic"
	ToolEstimateCosts  = "estimate_costs"
)

// ToolDefinition describes one dispatchable tool: its name, a caller
// facing description and the argument schema it validates against.
type ToolDefinition struct {
	Name        string           `json:"name"`
	Description string           `json:"description"`
	Schema      *openapi3.Schema `json:"input_schema"`
}

// Catalog returns the tool definitions in their published order.
func Catalog() []ToolDefinition {
	return []ToolDefinition{
		{
			Name:        ToolCalculateRoute,
			Description: "Calculate a driving route between two locations, with optional waypoints and routing options.",
			Schema:      calculateRouteSchema(),
		},
		{
			Name:        ToolCompareRoutes,
			Description: "Compare route alternatives between two locations under different option sets and rank them.",
			Schema:      compareRoutesSchema(),
		},
		{
			Name:        ToolGetLiveTraffic,
			Description: "Look up current traffic conditions on the route between two locations.",
			Schema:      liveTrafficSchema(),
		},
		{
			Name:        ToolEstimateCosts,
			Description: "Estimate fuel and toll costs for the route between two locations.",
			Schema:      estimateCostsSchema(),
		},
	}
}

func trafficModelSchema() *openapi3.Schema {
	return openapi3.NewStringSchema().WithEnum(
		string(types.TrafficBestGuess),
		string(types.TrafficPessimistic),
		string(types.TrafficOptimistic),
	)
}

func waypointsSchema() *openapi3.Schema {
	return openapi3.NewArraySchema().
		WithItems(openapi3.NewStringSchema()).
		WithMaxItems(types.MaxWaypoints)
}

// routeOptionsSchema is shared by calculate_route's options object and
// each compare_routes option set.
func routeOptionsSchema() *openapi3.Schema {
	return openapi3.NewObjectSchema().
		WithProperty("avoidTolls", openapi3.NewBoolSchema()).
		WithProperty("avoidHighways", openapi3.NewBoolSchema()).
		WithProperty("departureTime", openapi3.NewStringSchema()).
		WithProperty("trafficModel", trafficModelSchema())
}

func calculateRouteSchema() *openapi3.Schema {
	schema := openapi3.NewObjectSchema().
		WithProperty("origin", openapi3.NewStringSchema()).
		WithProperty("destination", openapi3.NewStringSchema()).
		WithProperty("waypoints", waypointsSchema()).
		WithProperty("options", routeOptionsSchema())
	schema.Required = []string{"origin", "destination"}
	return schema
}

func compareRoutesSchema() *openapi3.Schema {
	optionSet := openapi3.NewObjectSchema().
		WithProperty("name", openapi3.NewStringSchema()).
		WithProperty("avoidTolls", openapi3.NewBoolSchema()).
		WithProperty("avoidHighways", openapi3.NewBoolSchema()).
		WithProperty("trafficModel", trafficModelSchema())
	optionSet.Required = []string{"name"}

	schema := openapi3.NewObjectSchema().
		WithProperty("origin", openapi3.NewStringSchema()).
		WithProperty("destination", openapi3.NewStringSchema()).
		WithProperty("waypoints", waypointsSchema()).
		WithProperty("compareOptions", openapi3.NewArraySchema().WithItems(optionSet))
	schema.Required = []string{"origin", "destination"}
	return schema
}

func liveTrafficSchema() *openapi3.Schema {
	schema := openapi3.NewObjectSchema().
		WithProperty("origin", openapi3.NewStringSchema()).
		WithProperty("destination", openapi3.NewStringSchema()).
		WithProperty("departureTime", openapi3.NewStringSchema())
	schema.Required = []string{"origin", "destination"}
	return schema
}

func estimateCostsSchema() *openapi3.Schema {
	vehicle := openapi3.NewObjectSchema().
		WithProperty("fuelEfficiency", openapi3.NewFloat64Schema().
			WithMin(routing.MinFuelEfficiency).WithMax(routing.MaxFuelEfficiency)).
		WithProperty("fuelPrice", openapi3.NewFloat64Schema().
			WithMin(routing.MinFuelPrice).WithMax(routing.MaxFuelPrice))

	schema := openapi3.NewObjectSchema().
		WithProperty("origin", openapi3.NewStringSchema()).
		WithProperty("destination", openapi3.NewStringSchema()).
		WithProperty("vehicleOptions", vehicle)
	schema.Required = []string{"origin", "destination"}
	return schema
}
