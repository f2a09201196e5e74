package types

// Shaped payloads returned inside the tool result envelope. Formatted
// fields always travel next to a raw field so callers never re-parse
// display text.

// FormattedDistance pairs a kilometer display string with raw meters.
type FormattedDistance struct {
	Text   string `json:"text"`
	Meters int    `json:"meters"`
}

// FormattedDuration pairs a display string with raw seconds.
type FormattedDuration struct {
	Text    string `json:"text"`
	Seconds int    `json:"seconds"`
}

// RoutePayload is the shaped form of a single route.
type RoutePayload struct {
	Summary           string            `json:"summary"`
	Distance          FormattedDistance `json:"distance"`
	Duration          FormattedDuration `json:"duration"`
	DurationInTraffic FormattedDuration `json:"duration_in_traffic"`
	Steps             []Step            `json:"steps"`
	Polyline          string            `json:"polyline,omitempty"`
	Warnings          []string          `json:"warnings,omitempty"`
}

// ComparisonEntryPayload is one shaped comparison row.
type ComparisonEntryPayload struct {
	Label         string       `json:"label"`
	SourceOptions string       `json:"source_options"`
	Route         RoutePayload `json:"route"`
}

// ComparisonPayload is the shaped form of a route comparison. The
// selection fields name the winning entry's label.
type ComparisonPayload struct {
	Entries     []ComparisonEntryPayload `json:"entries"`
	Recommended string                   `json:"recommended"`
	Fastest     string                   `json:"fastest"`
	Shortest    string                   `json:"shortest"`
}

// TrafficPayload is the shaped form of a live-traffic lookup.
type TrafficPayload struct {
	Summary           string            `json:"summary"`
	Duration          FormattedDuration `json:"duration"`
	DurationInTraffic FormattedDuration `json:"duration_in_traffic"`
	Delay             FormattedDuration `json:"delay"`
	Condition         string            `json:"condition"`
}

// CostPayload is the shaped form of a cost estimate.
type CostPayload struct {
	Distance FormattedDistance `json:"distance"`
	Estimate CostEstimate      `json:"estimate"`
}
