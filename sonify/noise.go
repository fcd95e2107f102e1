package sonify

import (
	"math/rand"
	"time"
)

// NoiseBuffer is mono float64 samples in [-1, 1], looped during playback
type NoiseBuffer []float64

// NoiseDuration is the length of every generated noise buffer. Buffers are
// regenerated on each graph build, so each playback gets a fresh realization.
const NoiseDuration = 5 * time.Second

// NewNoiseRand returns the default random source for noise generation.
// Tests inject a fixed-seed source instead.
func NewNoiseRand() *rand.Rand {
	return rand.New(rand.NewSource(time.Now().UnixNano()))
}

// PinkNoise generates a pink noise buffer using the Paul Kellet filter bank
// approximation of the Voss-McCartney algorithm: six leaky accumulators
// driven by uniform white noise, summed with fixed weights.
func PinkNoise(rng *rand.Rand, sampleRate int, duration time.Duration) NoiseBuffer {
	samples := int(float64(sampleRate) * duration.Seconds())
	buf := make(NoiseBuffer, samples)

	var b0, b1, b2, b3, b4, b5, b6 float64
	for i := 0; i < samples; i++ {
		white := rng.Float64()*2 - 1
		b0 = 0.99886*b0 + white*0.0555179
		b1 = 0.99332*b1 + white*0.0750759
		b2 = 0.96900*b2 + white*0.1538520
		b3 = 0.86650*b3 + white*0.3104856
		b4 = 0.55000*b4 + white*0.5329522
		b5 = -0.7616*b5 - white*0.0168980
		buf[i] = (b0 + b1 + b2 + b3 + b4 + b5 + b6 + white*0.5362) * 0.11
		// b6 feeds the next sample
		b6 = white * 0.115926
	}
	return buf
}

// GrainChance maps a particle density (particles/cm³) to the per-sample
// probability of a grain impulse. Floors at 0.0005, saturates at 0.01
// (density >= 95) so dense streams never saturate the channel.
func GrainChance(density float64) float64 {
	if density < 0 {
		density = 0
	}
	chance := 0.0005 + density/10000
	if chance > 0.01 {
		chance = 0.01
	}
	return chance
}

// grainAmplitude attenuates unit impulses so stacked grains stay inside the mix
const grainAmplitude = 0.8

// GranularNoise generates a mostly-silent buffer where each sample
// independently becomes a sharp impulse with probability GrainChance(density).
// Models discrete dust/particle impacts on the magnetosphere.
func GranularNoise(rng *rand.Rand, sampleRate int, duration time.Duration, density float64) NoiseBuffer {
	samples := int(float64(sampleRate) * duration.Seconds())
	buf := make(NoiseBuffer, samples)
	chance := GrainChance(density)

	for i := 0; i < samples; i++ {
		if rng.Float64() < chance {
			buf[i] = grainAmplitude
		}
	}
	return buf
}
