package dispatch

import (
	"fmt"

	"github.com/tributary-ai/route-gateway/internal/types"
)

// FormatDistance renders meters as kilometers to one decimal place,
// keeping the raw value alongside.
func FormatDistance(meters int) types.FormattedDistance {
	return types.FormattedDistance{
		Text:   fmt.Sprintf("%.1f km", float64(meters)/1000.0),
		Meters: meters,
	}
}

// FormatDuration renders seconds as "Nh Mm" past the hour mark and
// "Mm" below it. Zero or negative durations render as "0m"; the raw
// seconds field is preserved untouched.
func FormatDuration(seconds int) types.FormattedDuration {
	return types.FormattedDuration{
		Text:    durationText(seconds),
		Seconds: seconds,
	}
}

func durationText(seconds int) string {
	if seconds <= 0 {
		return "0m"
	}

	minutes := seconds / 60
	if minutes < 60 {
		return fmt.Sprintf("%dm", minutes)
	}
	return fmt.Sprintf("%dh %dm", minutes/60, minutes%60)
}

// shapeRoute converts a normalized route into its display payload.
func shapeRoute(route *types.Route) types.RoutePayload {
	return types.RoutePayload{
		Summary:           route.Summary,
		Distance:          FormatDistance(route.DistanceMeters),
		Duration:          FormatDuration(route.DurationSeconds),
		DurationInTraffic: FormatDuration(route.DurationInTrafficSeconds),
		Steps:             route.Steps,
		Polyline:          route.Polyline,
		Warnings:          route.Warnings,
	}
}
