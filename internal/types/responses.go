package types

// Step is one turn-by-turn instruction of a route leg. Instruction text
// has provider markup already stripped.
type Step struct {
	Instruction string `json:"instruction"`
	Distance    string `json:"distance"`
	Duration    string `json:"duration"`
	Maneuver    string `json:"maneuver,omitempty"`
}

// Route is the normalized result of one provider query. Immutable once
// constructed; owned by the handler that requested it.
type Route struct {
	Summary                  string   `json:"summary"`
	DistanceMeters           int      `json:"distance_meters"`
	DurationSeconds          int      `json:"duration_seconds"`
	DurationInTrafficSeconds int      `json:"duration_in_traffic_seconds"`
	Steps                    []Step   `json:"steps"`
	Polyline                 string   `json:"polyline,omitempty"`
	Warnings                 []string `json:"warnings,omitempty"`
}

// ComparisonEntry pairs a fetched route with the option set that
// produced it.
type ComparisonEntry struct {
	Label         string `json:"label"`
	Route         *Route `json:"route"`
	SourceOptions string `json:"source_options"`
}

// ComparisonResult ranks a set of comparison entries. Recommended,
// Fastest and Shortest are indices into Entries; ties go to the lowest
// index.
type ComparisonResult struct {
	Entries     []ComparisonEntry `json:"entries"`
	Recommended int               `json:"recommended"`
	Fastest     int               `json:"fastest"`
	Shortest    int               `json:"shortest"`
}

// CostAssumptions echoes the inputs a cost estimate was computed from.
type CostAssumptions struct {
	FuelEfficiencyLPer100Km float64 `json:"fuel_efficiency_l_per_100km"`
	FuelPricePerLiter       float64 `json:"fuel_price_per_liter"`
	TollRatePerKm           float64 `json:"toll_rate_per_km"`
}

// CostEstimate holds trip cost amounts rounded to two decimal places.
// The toll amount is a flat per-km approximation, not a toll lookup.
type CostEstimate struct {
	FuelCost    float64         `json:"fuel_cost"`
	TollCost    float64         `json:"toll_cost"`
	TotalCost   float64         `json:"total_cost"`
	Assumptions CostAssumptions `json:"assumptions"`
}

// ToolError is the uniform failure half of a tool result.
type ToolError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// ToolMetadata accompanies every tool result.
type ToolMetadata struct {
	Timestamp  string                 `json:"timestamp"`
	Tool       string                 `json:"tool"`
	Parameters map[string]interface{} `json:"parameters,omitempty"`
}

// ToolResult is the envelope returned for every tool invocation,
// successful or not. The transport never sees handler failures as
// faults; Success distinguishes the outcome.
type ToolResult struct {
	Success  bool         `json:"success"`
	Data     interface{}  `json:"data,omitempty"`
	Error    *ToolError   `json:"error,omitempty"`
	Metadata ToolMetadata `json:"metadata"`
}
