package routing

import (
	"fmt"
	"math"

	"github.com/tributary-ai/route-gateway/internal/types"
)

// TollRatePerKm is the flat toll approximation applied to every route.
// This is a documented rough estimate, not a toll-road lookup.
const TollRatePerKm = 0.05

// Accepted ranges for cost-estimation inputs. Out-of-range values are
// rejected, never clamped.
const (
	MinFuelEfficiency = 3.0
	MaxFuelEfficiency = 25.0
	MinFuelPrice      = 0.5
	MaxFuelPrice      = 5.0
)

// TrafficLevel buckets the congestion ratio of a route.
type TrafficLevel string

const (
	TrafficLight    TrafficLevel = "light"
	TrafficModerate TrafficLevel = "moderate"
	TrafficHeavy    TrafficLevel = "heavy"
	TrafficSevere   TrafficLevel = "severe"
)

// InvalidInputError reports aggregate inputs that have no defined
// result, such as a zero-duration route.
type InvalidInputError struct {
	Message string
}

func (e *InvalidInputError) Error() string {
	return e.Message
}

func invalidInput(format string, args ...interface{}) error {
	return &InvalidInputError{Message: fmt.Sprintf(format, args...)}
}

// Compare ranks already-fetched routes. Pure function, no I/O. Entry
// order is preserved; selection indices break ties toward the lowest
// index, so equal values always resolve to the first-listed entry.
func Compare(entries []types.ComparisonEntry) (*types.ComparisonResult, error) {
	if len(entries) == 0 {
		return nil, invalidInput("comparison requires at least one entry")
	}

	result := &types.ComparisonResult{Entries: entries}
	for i, entry := range entries {
		if entry.Route == nil {
			return nil, invalidInput("comparison entry %q has no route", entry.Label)
		}
		if entry.Route.DurationInTrafficSeconds < entries[result.Fastest].Route.DurationInTrafficSeconds {
			result.Fastest = i
		}
		if entry.Route.DistanceMeters < entries[result.Shortest].Route.DistanceMeters {
			result.Shortest = i
		}
	}

	// Recommendation currently follows the fastest-in-traffic rule but is
	// reported separately so the two can diverge without breaking callers.
	result.Recommended = result.Fastest

	return result, nil
}

// EstimateCost computes a trip cost estimate from a route's distance.
// fuelEfficiency is liters per 100 km in [3,25]; fuelPrice is per liter
// in [0.5,5]. Amounts are rounded half away from zero to two decimals.
func EstimateCost(route *types.Route, fuelEfficiency, fuelPrice float64) (*types.CostEstimate, error) {
	if fuelEfficiency < MinFuelEfficiency || fuelEfficiency > MaxFuelEfficiency {
		return nil, invalidInput("fuel efficiency %.2f outside accepted range [%.0f, %.0f] l/100km",
			fuelEfficiency, MinFuelEfficiency, MaxFuelEfficiency)
	}
	if fuelPrice < MinFuelPrice || fuelPrice > MaxFuelPrice {
		return nil, invalidInput("fuel price %.2f outside accepted range [%.1f, %.1f] per liter",
			fuelPrice, MinFuelPrice, MaxFuelPrice)
	}

	distanceKm := float64(route.DistanceMeters) / 1000.0
	fuelCost := roundCurrency(distanceKm / 100.0 * fuelEfficiency * fuelPrice)
	tollCost := roundCurrency(distanceKm * TollRatePerKm)

	return &types.CostEstimate{
		FuelCost:  fuelCost,
		TollCost:  tollCost,
		TotalCost: roundCurrency(fuelCost + tollCost),
		Assumptions: types.CostAssumptions{
			FuelEfficiencyLPer100Km: fuelEfficiency,
			FuelPricePerLiter:       fuelPrice,
			TollRatePerKm:           TollRatePerKm,
		},
	}, nil
}

// ClassifyTraffic buckets the delay ratio of a route. The boundaries are
// half-open: a ratio of exactly 0.1 is moderate, not light.
func ClassifyTraffic(route *types.Route) (TrafficLevel, error) {
	if route.DurationSeconds <= 0 {
		return "", invalidInput("cannot classify traffic for a route with duration %ds", route.DurationSeconds)
	}

	ratio := float64(route.DurationInTrafficSeconds-route.DurationSeconds) / float64(route.DurationSeconds)
	switch {
	case ratio < 0.1:
		return TrafficLight, nil
	case ratio < 0.3:
		return TrafficModerate, nil
	case ratio < 0.5:
		return TrafficHeavy, nil
	default:
		return TrafficSevere, nil
	}
}

// roundCurrency rounds half away from zero to two decimal places.
func roundCurrency(amount float64) float64 {
	return math.Round(amount*100) / 100
}
