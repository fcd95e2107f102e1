package telemetry

import (
	"fmt"
	"math"
	"time"
)

// Snapshot is one complete space-weather reading
type Snapshot struct {
	TakenAt     time.Time
	WindSpeed   float64 // km/s
	WindDensity float64 // particles/cm³
	KpIndex     float64 // 0–9
	FlareClass  string  // A/B/C/M/X plus magnitude, e.g. "M5.2"
	FlareFlux   float64 // W/m², GOES 0.1–0.8 nm band
}

// ClassFromFlux derives the GOES X-ray flare class from a long-band flux.
// Decade boundaries: A < 1e-7, B < 1e-6, C < 1e-5, M < 1e-4, X above.
// The magnitude is the flux relative to the class floor, so 5e-6 W/m² is C5.0.
func ClassFromFlux(flux float64) string {
	if math.IsNaN(flux) || flux <= 0 {
		return "A0.0"
	}

	switch {
	case flux < 1e-7:
		return fmt.Sprintf("A%.1f", flux/1e-8)
	case flux < 1e-6:
		return fmt.Sprintf("B%.1f", flux/1e-7)
	case flux < 1e-5:
		return fmt.Sprintf("C%.1f", flux/1e-6)
	case flux < 1e-4:
		return fmt.Sprintf("M%.1f", flux/1e-5)
	default:
		return fmt.Sprintf("X%.1f", flux/1e-4)
	}
}
