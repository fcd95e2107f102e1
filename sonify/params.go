package sonify

import (
	"math"
	"strings"
)

// Mode selects which soundscape the engine renders
type Mode int

const (
	ModeMagnetosphere Mode = iota // solar wind buffeting the magnetic field
	ModeSun                       // the low roar of the photosphere
)

func (m Mode) String() string {
	switch m {
	case ModeMagnetosphere:
		return "magnetosphere"
	case ModeSun:
		return "sun"
	default:
		return "unknown"
	}
}

// Telemetry is the engine's view of one space-weather reading.
// Values are sanitized before any parameter mapping, so malformed data
// (NaN, negatives, out-of-range Kp) never reaches graph construction.
type Telemetry struct {
	WindSpeed   float64 // km/s
	WindDensity float64 // particles/cm³
	KpIndex     float64 // 0–9 planetary index
	FlareClass  string  // letter A/B/C/M/X plus magnitude, e.g. "M5.2"
	FlareFlux   float64 // W/m²
}

func clampFinite(v, lo, hi float64) float64 {
	if math.IsNaN(v) {
		return lo
	}
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

// sanitize clamps every field to its valid range
func (t Telemetry) sanitize() Telemetry {
	t.WindSpeed = clampFinite(t.WindSpeed, 0, math.MaxFloat64)
	t.WindDensity = clampFinite(t.WindDensity, 0, math.MaxFloat64)
	t.KpIndex = clampFinite(t.KpIndex, 0, 9)
	t.FlareFlux = clampFinite(t.FlareFlux, 0, math.MaxFloat64)
	t.FlareClass = strings.ToUpper(strings.TrimSpace(t.FlareClass))
	return t
}

// Layer mix levels for the magnetosphere drone and wind hiss. The noise and
// tone levels of the sun mode come from the flare mapping below.
const (
	magToneGain = 0.25
	magHissGain = 0.25
)

// MagnetosphereParams are the synthesis targets for ModeMagnetosphere
type MagnetosphereParams struct {
	DroneFreq  float64 // base drone oscillator, Hz
	DetuneFreq float64 // slightly sharp twin for beating
	SubFreq    float64 // sub octave

	TremoloRate  float64 // Kp-driven amplitude wobble, Hz
	TremoloDepth float64

	HissCenter float64 // bandpass center for the solar-wind hiss, Hz
	HissQ      float64
	HissGain   float64

	ToneGain     float64
	GranularGain float64 // dust-impact layer level
	GrainDensity float64 // sanitized particle density feeding grain probability
}

// MapMagnetosphere maps telemetry to magnetosphere synthesis parameters.
// Faster wind raises the drone pitch and hiss brightness; a disturbed
// geomagnetic field (high Kp) speeds up the tremolo; denser particle
// streams push the granular layer forward.
func MapMagnetosphere(t Telemetry) MagnetosphereParams {
	t = t.sanitize()

	base := 150 + (clampFinite(t.WindSpeed, 0, 1000)-300)*0.1
	return MagnetosphereParams{
		DroneFreq:    base,
		DetuneFreq:   base * 1.01,
		SubFreq:      base * 0.5,
		TremoloRate:  math.Max(0.5, t.KpIndex/2),
		TremoloDepth: 0.1,
		HissCenter:   300 + t.WindSpeed*0.5,
		HissQ:        0.5,
		HissGain:     magHissGain,
		ToneGain:     magToneGain,
		GranularGain: math.Min(t.WindDensity/15, 1) * 0.15,
		GrainDensity: t.WindDensity,
	}
}

// SunParams are the synthesis targets for ModeSun
type SunParams struct {
	CarrierFreq float64 // fixed triangle carrier, Hz
	DetuneFreq  float64 // sine twin for beating

	TremoloRate  float64 // slow surface churn
	TremoloDepth float64

	NoiseCutoff float64 // lowpass on the static layer, stepped by flare class
	GeigerRate  float64 // square-wave AM on the noise gain, Hz
	GeigerDepth float64

	NoiseGain float64
	ToneGain  float64
}

// MapSun maps telemetry to sun synthesis parameters. The carrier is fixed;
// only the static layer's brightness responds to flare activity, opening the
// filter one class step at a time.
func MapSun(t Telemetry) SunParams {
	t = t.sanitize()

	cutoff := 350.0
	switch {
	case strings.Contains(t.FlareClass, "X"):
		cutoff = 3000
	case strings.Contains(t.FlareClass, "M"):
		cutoff = 1200
	case strings.Contains(t.FlareClass, "C"):
		cutoff = 500
	}

	return SunParams{
		CarrierFreq:  60,
		DetuneFreq:   60 * 1.01,
		TremoloRate:  0.3,
		TremoloDepth: 0.1,
		NoiseCutoff:  cutoff,
		GeigerRate:   12,
		GeigerDepth:  0.1,
		NoiseGain:    0.45,
		ToneGain:     0.2,
	}
}
