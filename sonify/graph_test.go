package sonify

import (
	"math"
	"math/rand"
	"testing"
)

func testTelemetry() Telemetry {
	return Telemetry{WindSpeed: 750, WindDensity: 12, KpIndex: 6, FlareClass: "X2.0"}
}

// TestBuildGraphMagnetosphereTopology verifies the solar-wind graph wiring
func TestBuildGraphMagnetosphereTopology(t *testing.T) {
	rng := rand.New(rand.NewSource(1))
	g := BuildGraph(ModeMagnetosphere, testTelemetry(), rng, testRate)

	if g.Mode != ModeMagnetosphere {
		t.Errorf("Graph mode = %v", g.Mode)
	}
	if g.Root() == nil {
		t.Fatal("Expected non-nil root streamer")
	}

	if got := g.CountKind(NodeOscillator); got != 3 {
		t.Errorf("Oscillators = %d, want 3 (drone, detune, sub)", got)
	}
	if got := g.CountKind(NodeNoise); got != 2 {
		t.Errorf("Noise sources = %d, want 2 (hiss, granular)", got)
	}
	if got := g.CountKind(NodeFilter); got != 1 {
		t.Errorf("Filters = %d, want 1 (hiss bandpass)", got)
	}
	if got := g.CountKind(NodeTremolo); got != 1 {
		t.Errorf("Tremolos = %d, want 1", got)
	}
	if got := g.CountKind(NodeGain); got != 3 {
		t.Errorf("Gains = %d, want 3 (tone, hiss, granular)", got)
	}
}

// TestBuildGraphSunTopology verifies the photosphere graph wiring
func TestBuildGraphSunTopology(t *testing.T) {
	rng := rand.New(rand.NewSource(1))
	g := BuildGraph(ModeSun, testTelemetry(), rng, testRate)

	if got := g.CountKind(NodeOscillator); got != 2 {
		t.Errorf("Oscillators = %d, want 2 (carrier, detune)", got)
	}
	if got := g.CountKind(NodeNoise); got != 1 {
		t.Errorf("Noise sources = %d, want 1", got)
	}
	if got := g.CountKind(NodeFilter); got != 1 {
		t.Errorf("Filters = %d, want 1 (flare lowpass)", got)
	}
	if got := g.CountKind(NodeTremolo); got != 2 {
		t.Errorf("Tremolos = %d, want 2 (churn, geiger)", got)
	}
	if got := g.CountKind(NodeGain); got != 2 {
		t.Errorf("Gains = %d, want 2 (tone, noise)", got)
	}
}

// TestBuildGraphRepeatableTopology verifies rebuilding for the same telemetry
// produces an identical node census (fresh noise, same structure)
func TestBuildGraphRepeatableTopology(t *testing.T) {
	rng := rand.New(rand.NewSource(3))

	for _, mode := range []Mode{ModeMagnetosphere, ModeSun} {
		a := BuildGraph(mode, testTelemetry(), rng, testRate)
		b := BuildGraph(mode, testTelemetry(), rng, testRate)

		if a.NodeCount() != b.NodeCount() {
			t.Errorf("Mode %v: node counts differ (%d vs %d)", mode, a.NodeCount(), b.NodeCount())
		}
		for kind := NodeOscillator; kind <= NodeTremolo; kind++ {
			if a.CountKind(kind) != b.CountKind(kind) {
				t.Errorf("Mode %v kind %v: counts differ", mode, kind)
			}
		}
	}
}

// TestBuildGraphFreshNoise verifies each build owns a distinct noise
// realization
func TestBuildGraphFreshNoise(t *testing.T) {
	rng := rand.New(rand.NewSource(5))
	a := BuildGraph(ModeSun, testTelemetry(), rng, testRate)
	b := BuildGraph(ModeSun, testTelemetry(), rng, testRate)

	bufOf := func(g *Graph) NoiseBuffer {
		for _, n := range g.Nodes {
			if src, ok := n.(*noiseSource); ok {
				return src.buf
			}
		}
		t.Fatal("No noise source in graph")
		return nil
	}

	bufA, bufB := bufOf(a), bufOf(b)
	same := true
	for i := range bufA {
		if bufA[i] != bufB[i] {
			same = false
			break
		}
	}
	if same {
		t.Error("Expected distinct noise buffers across builds")
	}
}

// TestGraphRendersFiniteAudio pulls a second of audio from both graphs and
// checks it is finite and non-silent
func TestGraphRendersFiniteAudio(t *testing.T) {
	rng := rand.New(rand.NewSource(8))

	for _, mode := range []Mode{ModeMagnetosphere, ModeSun} {
		g := BuildGraph(mode, testTelemetry(), rng, testRate)
		samples := pull(g.Root(), int(testRate))

		energy := 0.0
		for i, s := range samples {
			if math.IsNaN(s[0]) || math.IsInf(s[0], 0) {
				t.Fatalf("Mode %v: non-finite sample at %d", mode, i)
			}
			energy += s[0] * s[0]
		}
		if energy == 0 {
			t.Errorf("Mode %v: graph rendered silence", mode)
		}
	}
}
