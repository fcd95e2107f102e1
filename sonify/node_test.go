package sonify

import (
	"math"
	"testing"
	"time"

	"github.com/gopxl/beep"
)

const testRate = beep.SampleRate(44100)

// dcSource emits a constant value, for isolating gain behavior
type dcSource struct {
	value float64
}

func (s *dcSource) Stream(samples [][2]float64) (n int, ok bool) {
	for i := range samples {
		samples[i][0] = s.value
		samples[i][1] = s.value
	}
	return len(samples), true
}

func (s *dcSource) Err() error { return nil }

func pull(s beep.Streamer, n int) [][2]float64 {
	out := make([][2]float64, 0, n)
	buf := make([][2]float64, 512)
	for len(out) < n {
		chunk := buf
		if remaining := n - len(out); remaining < len(chunk) {
			chunk = buf[:remaining]
		}
		got, ok := s.Stream(chunk)
		out = append(out, chunk[:got]...)
		if !ok {
			break
		}
	}
	return out
}

// TestOscillatorBounded verifies every shape stays inside [-1, 1]
func TestOscillatorBounded(t *testing.T) {
	shapes := []WaveShape{WaveSine, WaveSquare, WaveSaw, WaveTriangle}

	for _, shape := range shapes {
		osc := NewOscillator(shape, 440, testRate)
		for i, s := range pull(osc, 4096) {
			if s[0] < -1 || s[0] > 1 {
				t.Fatalf("Shape %v sample %d out of range: %v", shape, i, s[0])
			}
			if s[0] != s[1] {
				t.Fatalf("Shape %v sample %d channels differ", shape, i)
			}
		}
	}
}

// TestOscillatorFrequency verifies the sine completes the expected number of
// cycles by counting upward zero crossings
func TestOscillatorFrequency(t *testing.T) {
	osc := NewOscillator(WaveSine, 100, testRate)
	samples := pull(osc, int(testRate)) // one second

	crossings := 0
	for i := 1; i < len(samples); i++ {
		if samples[i-1][0] <= 0 && samples[i][0] > 0 {
			crossings++
		}
	}

	if crossings < 99 || crossings > 101 {
		t.Errorf("Expected ~100 cycles, counted %d upward crossings", crossings)
	}
}

// TestNoiseSourceLoops verifies the buffer repeats seamlessly
func TestNoiseSourceLoops(t *testing.T) {
	src := NewNoiseSource(NoiseBuffer{0.1, 0.2, 0.3})
	samples := pull(src, 7)

	want := []float64{0.1, 0.2, 0.3, 0.1, 0.2, 0.3, 0.1}
	for i, w := range want {
		if samples[i][0] != w {
			t.Errorf("Sample %d = %v, want %v", i, samples[i][0], w)
		}
	}
}

// TestNoiseSourceEmptyBuffer verifies an empty buffer yields silence, not a
// panic
func TestNoiseSourceEmptyBuffer(t *testing.T) {
	src := NewNoiseSource(nil)
	for i, s := range pull(src, 64) {
		if s[0] != 0 {
			t.Fatalf("Sample %d = %v, want silence", i, s[0])
		}
	}
}

// TestGainRampSmooth verifies a volume change never jumps between
// consecutive samples
func TestGainRampSmooth(t *testing.T) {
	g := NewGain(&dcSource{value: 1}, 0, testRate)
	g.RampTo(0.3, 100*time.Millisecond)

	samples := pull(g, int(testRate)/5) // 200 ms, past ramp end
	maxStep := 0.3/float64(testRate.N(100*time.Millisecond)) + 1e-9

	for i := 1; i < len(samples); i++ {
		delta := math.Abs(samples[i][0] - samples[i-1][0])
		if delta > maxStep {
			t.Fatalf("Gain discontinuity at sample %d: delta %v > %v", i, delta, maxStep)
		}
	}

	if final := samples[len(samples)-1][0]; math.Abs(final-0.3) > 1e-9 {
		t.Errorf("Final level %v, want 0.3", final)
	}
}

// TestGainRampDownAndRetarget verifies a newer ramp supersedes the old one
// without overshoot
func TestGainRampDownAndRetarget(t *testing.T) {
	g := NewGain(&dcSource{value: 1}, 1, testRate)
	g.RampTo(0, 100*time.Millisecond)
	pull(g, int(testRate)/50) // 20 ms into the fade

	mid := g.Level()
	if mid >= 1 || mid <= 0 {
		t.Fatalf("Expected mid-fade level inside (0, 1), got %v", mid)
	}

	g.RampTo(0.8, 100*time.Millisecond)
	pull(g, int(testRate)/2)

	if got := g.Level(); math.Abs(got-0.8) > 1e-9 {
		t.Errorf("Level after retarget %v, want 0.8", got)
	}
	if got := g.Target(); got != 0.8 {
		t.Errorf("Target %v, want 0.8", got)
	}
}

// TestGainZeroDurationRamp verifies a zero-duration ramp still avoids an
// instantaneous jump across one sample
func TestGainZeroDurationRamp(t *testing.T) {
	g := NewGain(&dcSource{value: 1}, 0, testRate)
	g.RampTo(1, 0)

	samples := pull(g, 4)
	if samples[0][0] != 1 {
		t.Errorf("Expected one-sample ramp to land immediately, got %v", samples[0][0])
	}
}

// TestTremoloDepth verifies modulation stays within [1-depth, 1+depth]
func TestTremoloDepth(t *testing.T) {
	trem := NewTremolo(&dcSource{value: 1}, WaveSine, 5, 0.1, testRate)
	samples := pull(trem, int(testRate)) // one second, five full LFO cycles

	min, max := math.Inf(1), math.Inf(-1)
	for _, s := range samples {
		if s[0] < min {
			min = s[0]
		}
		if s[0] > max {
			max = s[0]
		}
	}

	if min < 0.9-1e-6 || max > 1.1+1e-6 {
		t.Errorf("Tremolo range [%v, %v], want within [0.9, 1.1]", min, max)
	}
	if max-min < 0.15 {
		t.Errorf("Tremolo barely modulating: range %v", max-min)
	}
}

// TestTremoloSquareChops verifies the square LFO alternates between exactly
// two levels
func TestTremoloSquareChops(t *testing.T) {
	trem := NewTremolo(&dcSource{value: 1}, WaveSquare, 12, 0.1, testRate)

	levels := map[float64]bool{}
	for _, s := range pull(trem, int(testRate)/4) {
		levels[math.Round(s[0]*1e9)/1e9] = true
	}

	if len(levels) != 2 {
		t.Errorf("Square tremolo produced %d levels, want 2", len(levels))
	}
	if !levels[1.1] || !levels[0.9] {
		t.Errorf("Square tremolo levels %v, want 1.1 and 0.9", levels)
	}
}

// TestFilterStable verifies the biquad output remains finite under noise input
func TestFilterStable(t *testing.T) {
	for _, shape := range []FilterShape{FilterLowpass, FilterBandpass} {
		src := NewNoiseSource(NoiseBuffer{0.9, -0.8, 0.7, -0.6, 0.5, -0.4})
		f := NewFilter(src, shape, 1000, 0.5, testRate)

		for i, s := range pull(f, int(testRate)) {
			if math.IsNaN(s[0]) || math.IsInf(s[0], 0) {
				t.Fatalf("Filter shape %v produced non-finite sample at %d", shape, i)
			}
		}
	}
}

// TestBandpassRejectsDC verifies the bandpass removes the zero-frequency
// component a lowpass keeps
func TestBandpassRejectsDC(t *testing.T) {
	mean := func(shape FilterShape) float64 {
		f := NewFilter(&dcSource{value: 1}, shape, 500, 0.5, testRate)
		samples := pull(f, int(testRate))
		// skip the settling transient
		sum := 0.0
		tail := samples[len(samples)/2:]
		for _, s := range tail {
			sum += s[0]
		}
		return sum / float64(len(tail))
	}

	if bp := mean(FilterBandpass); math.Abs(bp) > 0.01 {
		t.Errorf("Bandpass passes DC: mean %v", bp)
	}
	if lp := mean(FilterLowpass); lp < 0.9 {
		t.Errorf("Lowpass should pass DC near unity: mean %v", lp)
	}
}

// TestFilterCutoffClampedToNyquist verifies extreme cutoffs do not blow up
func TestFilterCutoffClampedToNyquist(t *testing.T) {
	src := NewNoiseSource(NoiseBuffer{0.5, -0.5})
	f := NewFilter(src, FilterLowpass, 1e12, 0.7071, testRate)

	for i, s := range pull(f, 4096) {
		if math.IsNaN(s[0]) || math.IsInf(s[0], 0) {
			t.Fatalf("Non-finite sample at %d with extreme cutoff", i)
		}
	}
}
