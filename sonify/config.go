package sonify

import (
	"os"
	"strconv"
	"time"
)

// Config carries the engine's tunables. The transition timings are empirical
// constants kept configurable rather than derived.
type Config struct {
	SampleRate int           // render rate, Hz
	Buffer     time.Duration // device buffer handed to the sink

	FadeOut     time.Duration // stop/switch fade before teardown
	VolumeRamp  time.Duration // smoothing applied to volume changes
	SwitchDelay time.Duration // gap between teardown and rebuild on mode switch

	Volume float64 // initial master volume, 0–1
	Mode   Mode    // initial mode
}

// DefaultConfig returns the engine defaults
func DefaultConfig() Config {
	return Config{
		SampleRate:  44100,
		Buffer:      100 * time.Millisecond,
		FadeOut:     120 * time.Millisecond,
		VolumeRamp:  100 * time.Millisecond,
		SwitchDelay: 50 * time.Millisecond,
		Volume:      0.5,
		Mode:        ModeMagnetosphere,
	}
}

// LoadConfig builds a config from defaults plus environment overrides
func LoadConfig() Config {
	cfg := DefaultConfig()

	// Master volume (0-100 converted to 0.0-1.0)
	if volume := os.Getenv("HELIOWATCH_VOLUME"); volume != "" {
		if val, err := strconv.Atoi(volume); err == nil {
			cfg.Volume = float64(val) / 100.0
			if cfg.Volume < 0 {
				cfg.Volume = 0
			}
			if cfg.Volume > 1 {
				cfg.Volume = 1
			}
		}
	}

	if mode := os.Getenv("HELIOWATCH_MODE"); mode != "" {
		switch mode {
		case "sun":
			cfg.Mode = ModeSun
		case "magnetosphere":
			cfg.Mode = ModeMagnetosphere
		}
	}

	if rate := os.Getenv("HELIOWATCH_SAMPLE_RATE"); rate != "" {
		if val, err := strconv.Atoi(rate); err == nil && val >= 8000 && val <= 192000 {
			cfg.SampleRate = val
		}
	}

	return cfg
}

// normalize fills in zero values so a partially populated config is usable
func (c Config) normalize() Config {
	def := DefaultConfig()
	if c.SampleRate <= 0 {
		c.SampleRate = def.SampleRate
	}
	if c.Buffer <= 0 {
		c.Buffer = def.Buffer
	}
	if c.FadeOut <= 0 {
		c.FadeOut = def.FadeOut
	}
	if c.VolumeRamp <= 0 {
		c.VolumeRamp = def.VolumeRamp
	}
	if c.SwitchDelay <= 0 {
		c.SwitchDelay = def.SwitchDelay
	}
	if c.Volume < 0 {
		c.Volume = 0
	}
	if c.Volume > 1 {
		c.Volume = 1
	}
	return c
}
