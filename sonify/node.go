package sonify

import (
	"math"
	"sync"
	"time"

	"github.com/gopxl/beep"
)

// WaveShape defines oscillator wave shapes
type WaveShape int

const (
	WaveSine WaveShape = iota
	WaveSquare
	WaveSaw
	WaveTriangle
)

// NodeKind identifies a node's role in the signal graph
type NodeKind int

const (
	NodeOscillator NodeKind = iota
	NodeNoise
	NodeFilter
	NodeGain
	NodeTremolo
)

// Node is a synthesis node: a streamer that knows its role, so tests can
// inspect graph topology without an audio device.
type Node interface {
	beep.Streamer
	Kind() NodeKind
}

// oscillator generates an endless waveform via a phase accumulator
type oscillator struct {
	freq  float64
	phase float64
	shape WaveShape
	rate  beep.SampleRate
}

// NewOscillator creates a free-running oscillator node
func NewOscillator(shape WaveShape, freq float64, rate beep.SampleRate) Node {
	return &oscillator{freq: freq, shape: shape, rate: rate}
}

func (o *oscillator) Stream(samples [][2]float64) (n int, ok bool) {
	for i := range samples {
		var val float64
		switch o.shape {
		case WaveSine:
			val = math.Sin(2 * math.Pi * o.phase)
		case WaveSquare:
			if o.phase < 0.5 {
				val = 1.0
			} else {
				val = -1.0
			}
		case WaveSaw:
			val = 2.0 * (o.phase - 0.5)
		case WaveTriangle:
			if o.phase < 0.5 {
				val = 4.0*o.phase - 1.0
			} else {
				val = 3.0 - 4.0*o.phase
			}
		}

		samples[i][0] = val
		samples[i][1] = val

		o.phase += o.freq / float64(o.rate)
		o.phase = o.phase - math.Floor(o.phase) // keep in [0, 1)
	}
	return len(samples), true
}

func (o *oscillator) Err() error     { return nil }
func (o *oscillator) Kind() NodeKind { return NodeOscillator }

// noiseSource loops a finite noise buffer to approximate an infinite source
type noiseSource struct {
	buf NoiseBuffer
	pos int
}

// NewNoiseSource creates a looping noise node from an owned buffer
func NewNoiseSource(buf NoiseBuffer) Node {
	return &noiseSource{buf: buf}
}

func (s *noiseSource) Stream(samples [][2]float64) (n int, ok bool) {
	if len(s.buf) == 0 {
		for i := range samples {
			samples[i][0] = 0
			samples[i][1] = 0
		}
		return len(samples), true
	}
	for i := range samples {
		v := s.buf[s.pos]
		samples[i][0] = v
		samples[i][1] = v
		s.pos++
		if s.pos >= len(s.buf) {
			s.pos = 0
		}
	}
	return len(samples), true
}

func (s *noiseSource) Err() error     { return nil }
func (s *noiseSource) Kind() NodeKind { return NodeNoise }

// FilterShape selects the biquad response
type FilterShape int

const (
	FilterLowpass FilterShape = iota
	FilterBandpass
)

// biquad is an RBJ cookbook filter with per-channel state
type biquad struct {
	src beep.Streamer

	b0, b1, b2 float64
	a1, a2     float64

	x1, x2 [2]float64
	y1, y2 [2]float64
}

// NewFilter creates a biquad filter node over src. Bandpass uses the
// constant-0dB-peak-gain form.
func NewFilter(src beep.Streamer, shape FilterShape, cutoff, q float64, rate beep.SampleRate) Node {
	f := &biquad{src: src}

	// Nyquist guard
	maxF := float64(rate) * 0.49
	if cutoff > maxF {
		cutoff = maxF
	}
	if cutoff < 1 {
		cutoff = 1
	}
	if q < 0.01 {
		q = 0.01
	}

	w0 := 2 * math.Pi * cutoff / float64(rate)
	cosW := math.Cos(w0)
	alpha := math.Sin(w0) / (2 * q)

	var b0, b1, b2, a0, a1, a2 float64
	switch shape {
	case FilterLowpass:
		b0 = (1 - cosW) / 2
		b1 = 1 - cosW
		b2 = (1 - cosW) / 2
	case FilterBandpass:
		b0 = alpha
		b1 = 0
		b2 = -alpha
	}
	a0 = 1 + alpha
	a1 = -2 * cosW
	a2 = 1 - alpha

	f.b0 = b0 / a0
	f.b1 = b1 / a0
	f.b2 = b2 / a0
	f.a1 = a1 / a0
	f.a2 = a2 / a0
	return f
}

func (f *biquad) Stream(samples [][2]float64) (n int, ok bool) {
	n, ok = f.src.Stream(samples)
	for i := 0; i < n; i++ {
		for ch := 0; ch < 2; ch++ {
			x := samples[i][ch]
			y := f.b0*x + f.b1*f.x1[ch] + f.b2*f.x2[ch] - f.a1*f.y1[ch] - f.a2*f.y2[ch]
			f.x2[ch] = f.x1[ch]
			f.x1[ch] = x
			f.y2[ch] = f.y1[ch]
			f.y1[ch] = y
			samples[i][ch] = y
		}
	}
	return n, ok
}

func (f *biquad) Err() error     { return f.src.Err() }
func (f *biquad) Kind() NodeKind { return NodeFilter }

// tremolo modulates the wrapped stream's amplitude with a low-frequency
// oscillator: out = in * (1 + depth*lfo), lfo in [-1, 1]
type tremolo struct {
	src   beep.Streamer
	shape WaveShape
	rate  float64 // LFO Hz
	depth float64
	phase float64
	sr    beep.SampleRate
}

// NewTremolo creates an LFO amplitude-modulation node over src
func NewTremolo(src beep.Streamer, shape WaveShape, lfoRate, depth float64, sr beep.SampleRate) Node {
	return &tremolo{src: src, shape: shape, rate: lfoRate, depth: depth, sr: sr}
}

func (t *tremolo) Stream(samples [][2]float64) (n int, ok bool) {
	n, ok = t.src.Stream(samples)
	for i := 0; i < n; i++ {
		var lfo float64
		switch t.shape {
		case WaveSquare:
			if t.phase < 0.5 {
				lfo = 1.0
			} else {
				lfo = -1.0
			}
		default:
			lfo = math.Sin(2 * math.Pi * t.phase)
		}
		mod := 1 + t.depth*lfo

		samples[i][0] *= mod
		samples[i][1] *= mod

		t.phase += t.rate / float64(t.sr)
		t.phase = t.phase - math.Floor(t.phase)
	}
	return n, ok
}

func (t *tremolo) Err() error     { return t.src.Err() }
func (t *tremolo) Kind() NodeKind { return NodeTremolo }

// Gain scales the wrapped stream and ramps linearly toward a target level.
// Every level change goes through the ramp, so playing audio never sees a
// gain discontinuity. Safe for concurrent use: the speaker goroutine pulls
// Stream while the controller adjusts the target.
type Gain struct {
	mu     sync.Mutex
	src    beep.Streamer
	gain   float64
	target float64
	step   float64 // per-sample increment while ramping
	sr     beep.SampleRate
}

// NewGain creates a gain node at the given initial level
func NewGain(src beep.Streamer, level float64, sr beep.SampleRate) *Gain {
	return &Gain{src: src, gain: level, target: level, sr: sr}
}

// RampTo moves the gain linearly to target over d. A zero or negative d
// still ramps over one sample rather than jumping.
func (g *Gain) RampTo(target float64, d time.Duration) {
	g.mu.Lock()
	defer g.mu.Unlock()

	g.target = target
	steps := float64(g.sr.N(d))
	if steps < 1 {
		steps = 1
	}
	g.step = (target - g.gain) / steps
}

// Level reports the current (possibly mid-ramp) gain
func (g *Gain) Level() float64 {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.gain
}

// Target reports the gain the node is ramping toward
func (g *Gain) Target() float64 {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.target
}

func (g *Gain) Stream(samples [][2]float64) (n int, ok bool) {
	n, ok = g.src.Stream(samples)

	g.mu.Lock()
	for i := 0; i < n; i++ {
		if g.step != 0 {
			g.gain += g.step
			if (g.step > 0 && g.gain >= g.target) || (g.step < 0 && g.gain <= g.target) {
				g.gain = g.target
				g.step = 0
			}
		}
		samples[i][0] *= g.gain
		samples[i][1] *= g.gain
	}
	g.mu.Unlock()
	return n, ok
}

func (g *Gain) Err() error     { return g.src.Err() }
func (g *Gain) Kind() NodeKind { return NodeGain }
