package sonify

import (
	"math"
	"testing"
)

// TestMagnetosphereDroneBounds verifies the drone frequency stays within its
// documented band for any wind speed, including malformed input
func TestMagnetosphereDroneBounds(t *testing.T) {
	speeds := []float64{-100, 0, 250, 300, 750, 1000, 2500, 1e9, math.NaN(), math.Inf(1)}

	for _, speed := range speeds {
		p := MapMagnetosphere(Telemetry{WindSpeed: speed})
		if math.IsNaN(p.DroneFreq) || math.IsInf(p.DroneFreq, 0) {
			t.Fatalf("Drone frequency not finite for speed %v", speed)
		}
		if p.DroneFreq < 95 || p.DroneFreq > 245 {
			t.Errorf("Drone frequency %v outside [95, 245] for speed %v", p.DroneFreq, speed)
		}
		if p.DetuneFreq != p.DroneFreq*1.01 {
			t.Errorf("Detune %v, want %v", p.DetuneFreq, p.DroneFreq*1.01)
		}
		if p.SubFreq != p.DroneFreq*0.5 {
			t.Errorf("Sub %v, want %v", p.SubFreq, p.DroneFreq*0.5)
		}
	}
}

// TestMagnetosphereScenario verifies the documented telemetry scenario
func TestMagnetosphereScenario(t *testing.T) {
	snap := Telemetry{WindSpeed: 750, WindDensity: 12, KpIndex: 6, FlareClass: "X2.0"}
	p := MapMagnetosphere(snap)

	if p.DroneFreq != 195 {
		t.Errorf("Drone frequency = %v, want 195", p.DroneFreq)
	}
	if math.Abs(p.GranularGain-0.12) > 1e-12 {
		t.Errorf("Granular gain = %v, want 0.12", p.GranularGain)
	}
	if p.TremoloRate != 3 {
		t.Errorf("Tremolo rate = %v, want 3 (kp 6 / 2)", p.TremoloRate)
	}
	if p.HissCenter != 300+750*0.5 {
		t.Errorf("Hiss center = %v, want 675", p.HissCenter)
	}
	if p.HissQ != 0.5 {
		t.Errorf("Hiss Q = %v, want 0.5", p.HissQ)
	}
}

// TestMagnetosphereTremoloFloor verifies calm fields keep a minimum wobble
func TestMagnetosphereTremoloFloor(t *testing.T) {
	tests := []struct {
		kp   float64
		want float64
	}{
		{0, 0.5},
		{0.5, 0.5},
		{1, 0.5},
		{2, 1},
		{6, 3},
		{9, 4.5},
		{15, 4.5}, // clamped to 9
		{math.NaN(), 0.5},
		{-3, 0.5},
	}

	for _, tc := range tests {
		p := MapMagnetosphere(Telemetry{KpIndex: tc.kp})
		if p.TremoloRate != tc.want {
			t.Errorf("Tremolo rate for kp %v = %v, want %v", tc.kp, p.TremoloRate, tc.want)
		}
	}
}

// TestMagnetosphereGranularSaturation verifies the dust layer gain caps at
// density 15
func TestMagnetosphereGranularSaturation(t *testing.T) {
	tests := []struct {
		density float64
		want    float64
	}{
		{0, 0},
		{7.5, 0.075},
		{15, 0.15},
		{60, 0.15},
	}

	for _, tc := range tests {
		p := MapMagnetosphere(Telemetry{WindDensity: tc.density})
		if math.Abs(p.GranularGain-tc.want) > 1e-12 {
			t.Errorf("Granular gain for density %v = %v, want %v", tc.density, p.GranularGain, tc.want)
		}
	}
}

// TestSunCutoffByFlareClass verifies the static filter steps with flare class
func TestSunCutoffByFlareClass(t *testing.T) {
	tests := []struct {
		class string
		want  float64
	}{
		{"", 350},
		{"A1.0", 350},
		{"B4.2", 350},
		{"C3.1", 500},
		{"c3.1", 500}, // case-insensitive via sanitize
		{"M5.0", 1200},
		{"X2.0", 3000},
		{"X17.4", 3000},
	}

	for _, tc := range tests {
		p := MapSun(Telemetry{FlareClass: tc.class})
		if p.NoiseCutoff != tc.want {
			t.Errorf("Cutoff for class %q = %v, want %v", tc.class, p.NoiseCutoff, tc.want)
		}
	}
}

// TestSunFixedParameters verifies the carrier and layer constants
func TestSunFixedParameters(t *testing.T) {
	p := MapSun(Telemetry{WindSpeed: 750, WindDensity: 12, KpIndex: 6, FlareClass: "X2.0"})

	if p.CarrierFreq != 60 {
		t.Errorf("Carrier = %v, want 60", p.CarrierFreq)
	}
	if p.DetuneFreq != 60*1.01 {
		t.Errorf("Detune = %v, want 60.6", p.DetuneFreq)
	}
	if p.NoiseGain != 0.45 {
		t.Errorf("Noise gain = %v, want 0.45", p.NoiseGain)
	}
	if p.ToneGain != 0.2 {
		t.Errorf("Tone gain = %v, want 0.2", p.ToneGain)
	}
	if p.GeigerRate != 12 || p.GeigerDepth != 0.1 {
		t.Errorf("Geiger = %v Hz depth %v, want 12 Hz depth 0.1", p.GeigerRate, p.GeigerDepth)
	}
	if p.TremoloRate != 0.3 || p.TremoloDepth != 0.1 {
		t.Errorf("Tremolo = %v Hz depth %v, want 0.3 Hz depth 0.1", p.TremoloRate, p.TremoloDepth)
	}
}

// TestSanitizeMalformedTelemetry verifies bad readings clamp instead of
// propagating
func TestSanitizeMalformedTelemetry(t *testing.T) {
	dirty := Telemetry{
		WindSpeed:   math.NaN(),
		WindDensity: -40,
		KpIndex:     math.Inf(1),
		FlareClass:  "  m5.2 ",
		FlareFlux:   math.NaN(),
	}

	clean := dirty.sanitize()
	if clean.WindSpeed != 0 {
		t.Errorf("WindSpeed = %v, want 0", clean.WindSpeed)
	}
	if clean.WindDensity != 0 {
		t.Errorf("WindDensity = %v, want 0", clean.WindDensity)
	}
	if clean.KpIndex != 9 {
		t.Errorf("KpIndex = %v, want 9 (+Inf clamps to range ceiling)", clean.KpIndex)
	}
	if clean.FlareClass != "M5.2" {
		t.Errorf("FlareClass = %q, want \"M5.2\"", clean.FlareClass)
	}
	if clean.FlareFlux != 0 {
		t.Errorf("FlareFlux = %v, want 0", clean.FlareFlux)
	}
}
