package sonify

import (
	"math/rand"

	"github.com/gopxl/beep"
)

// Graph is one mode's complete signal graph: every synthesis node plus the
// summed root streamer that the master bus pulls from. Exclusively owned by
// the Controller; a graph is built, played, and discarded as a unit.
type Graph struct {
	Mode  Mode
	Nodes []Node

	root beep.Streamer
}

// Root returns the summed output of all layers
func (g *Graph) Root() beep.Streamer {
	return g.root
}

// NodeCount reports the number of synthesis nodes in the graph
func (g *Graph) NodeCount() int {
	return len(g.Nodes)
}

// CountKind reports how many nodes of the given kind the graph contains
func (g *Graph) CountKind(k NodeKind) int {
	count := 0
	for _, n := range g.Nodes {
		if n.Kind() == k {
			count++
		}
	}
	return count
}

// graphBuilder tracks created nodes so the finished graph owns its handles
type graphBuilder struct {
	graph *Graph
	sr    beep.SampleRate
}

func (b *graphBuilder) add(n Node) Node {
	b.graph.Nodes = append(b.graph.Nodes, n)
	return n
}

func (b *graphBuilder) gain(src beep.Streamer, level float64) *Gain {
	g := NewGain(src, level, b.sr)
	b.graph.Nodes = append(b.graph.Nodes, g)
	return g
}

// BuildGraph constructs the full signal graph for the given mode from the
// current telemetry. Construction is pure streamer wiring: no I/O, no audio
// device interaction. Noise buffers are generated fresh on every build, so
// each playback gets a distinct realization.
func BuildGraph(mode Mode, t Telemetry, rng *rand.Rand, sr beep.SampleRate) *Graph {
	b := &graphBuilder{
		graph: &Graph{Mode: mode},
		sr:    sr,
	}

	switch mode {
	case ModeSun:
		b.buildSun(MapSun(t), rng)
	default:
		b.buildMagnetosphere(MapMagnetosphere(t), rng)
	}
	return b.graph
}

// buildMagnetosphere wires the solar-wind soundscape: a three-oscillator
// drone with Kp-driven tremolo, a bandpassed pink-noise wind hiss, and a
// granular dust-impact layer.
func (b *graphBuilder) buildMagnetosphere(p MagnetosphereParams, rng *rand.Rand) {
	drone := beep.Mix(
		b.add(NewOscillator(WaveSine, p.DroneFreq, b.sr)),
		b.add(NewOscillator(WaveSine, p.DetuneFreq, b.sr)),
		b.add(NewOscillator(WaveSine, p.SubFreq, b.sr)),
	)
	wobble := b.add(NewTremolo(drone, WaveSine, p.TremoloRate, p.TremoloDepth, b.sr))
	tone := b.gain(wobble, p.ToneGain)

	pink := b.add(NewNoiseSource(PinkNoise(rng, int(b.sr), NoiseDuration)))
	hissBand := b.add(NewFilter(pink, FilterBandpass, p.HissCenter, p.HissQ, b.sr))
	hiss := b.gain(hissBand, p.HissGain)

	grains := b.add(NewNoiseSource(GranularNoise(rng, int(b.sr), NoiseDuration, p.GrainDensity)))
	granular := b.gain(grains, p.GranularGain)

	b.graph.root = beep.Mix(tone, hiss, granular)
}

// buildSun wires the photosphere soundscape: a fixed low carrier pair with a
// slow amplitude churn, and a lowpassed static layer whose brightness follows
// the flare class, chopped by a square-wave Geiger modulation.
func (b *graphBuilder) buildSun(p SunParams, rng *rand.Rand) {
	carriers := beep.Mix(
		b.add(NewOscillator(WaveTriangle, p.CarrierFreq, b.sr)),
		b.add(NewOscillator(WaveSine, p.DetuneFreq, b.sr)),
	)
	churn := b.add(NewTremolo(carriers, WaveSine, p.TremoloRate, p.TremoloDepth, b.sr))
	tone := b.gain(churn, p.ToneGain)

	static := b.add(NewNoiseSource(PinkNoise(rng, int(b.sr), NoiseDuration)))
	lowpassQ := 0.7071 // Butterworth
	filtered := b.add(NewFilter(static, FilterLowpass, p.NoiseCutoff, lowpassQ, b.sr))
	geiger := b.add(NewTremolo(filtered, WaveSquare, p.GeigerRate, p.GeigerDepth, b.sr))
	noise := b.gain(geiger, p.NoiseGain)

	b.graph.root = beep.Mix(tone, noise)
}
