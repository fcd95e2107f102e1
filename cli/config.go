package cli

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/pelletier/go-toml/v2"

	"github.com/auroralabs/heliowatch/sonify"
	"github.com/auroralabs/heliowatch/telemetry"
)

// Telemetry configures the SWPC data sources and poll cadence.
type Telemetry struct {
	PlasmaURL    string `toml:"plasma_url"`
	KpURL        string `toml:"kp_url"`
	XrayURL      string `toml:"xray_url"`
	ProxyPrefix  string `toml:"proxy_prefix"`
	PollInterval int    `toml:"poll_interval"` // seconds
}

// Database configures the local snapshot history.
type Database struct {
	Path          string `toml:"path"`
	RetentionDays int    `toml:"retention_days"`
}

// Audio configures the sonification engine.
type Audio struct {
	Enabled       bool   `toml:"enabled"`
	Volume        int    `toml:"volume"` // 0-100
	Mode          string `toml:"mode"`   // "magnetosphere" or "sun"
	SampleRate    int    `toml:"sample_rate"`
	FadeOutMs     int    `toml:"fade_out_ms"`
	VolumeRampMs  int    `toml:"volume_ramp_ms"`
	SwitchDelayMs int    `toml:"switch_delay_ms"`
}

// Logging configures log output. The dashboard command always logs to a
// file since the TUI owns the terminal.
type Logging struct {
	Level string `toml:"level"`
	File  string `toml:"file"`
}

// Config encapsulates all configuration values for heliowatch.
type Config struct {
	Telemetry Telemetry `toml:"telemetry"`
	Database  Database  `toml:"database"`
	Audio     Audio     `toml:"audio"`
	Logging   Logging   `toml:"logging"`
}

// Default returns the configuration used when no file is present.
func Default() Config {
	ep := telemetry.DefaultEndpoints()
	return Config{
		Telemetry: Telemetry{
			PlasmaURL:    ep.Plasma,
			KpURL:        ep.Kp,
			XrayURL:      ep.Xray,
			PollInterval: 60,
		},
		Database: Database{
			Path:          "~/.local/share/heliowatch/history.db",
			RetentionDays: 30,
		},
		Audio: Audio{
			Enabled:    true,
			Volume:     50,
			Mode:       "magnetosphere",
			SampleRate: 44100,
		},
		Logging: Logging{
			Level: "info",
			File:  "~/.local/share/heliowatch/heliowatch.log",
		},
	}
}

// DefaultConfigPath returns the default configuration file location.
func DefaultConfigPath() (string, error) {
	return expandPath("~/.config/heliowatch/config.toml")
}

// LoadConfig locates, parses, and normalizes a configuration file. When path
// is empty the default location is used; a missing file yields the defaults.
func LoadConfig(path string) (Config, string, error) {
	cfg := Default()

	resolved, exists, err := resolveConfigPath(path)
	if err != nil {
		return Config{}, "", err
	}

	if exists {
		file, err := os.Open(resolved)
		if err != nil {
			return Config{}, "", fmt.Errorf("open config: %w", err)
		}
		defer file.Close()

		if err := toml.NewDecoder(file).Decode(&cfg); err != nil {
			return Config{}, "", fmt.Errorf("parse config: %w", err)
		}
	}

	if err := cfg.normalize(); err != nil {
		return Config{}, "", err
	}

	return cfg, resolved, nil
}

func resolveConfigPath(path string) (string, bool, error) {
	if path != "" {
		expanded, err := expandPath(path)
		if err != nil {
			return "", false, err
		}
		if _, err := os.Stat(expanded); err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				return "", false, fmt.Errorf("config file not found: %s", expanded)
			}
			return "", false, fmt.Errorf("stat config: %w", err)
		}
		return expanded, true, nil
	}

	defaultPath, err := DefaultConfigPath()
	if err != nil {
		return "", false, err
	}
	if info, err := os.Stat(defaultPath); err == nil && !info.IsDir() {
		return defaultPath, true, nil
	}
	return defaultPath, false, nil
}

func (c *Config) normalize() error {
	def := Default()

	if strings.TrimSpace(c.Telemetry.PlasmaURL) == "" {
		c.Telemetry.PlasmaURL = def.Telemetry.PlasmaURL
	}
	if strings.TrimSpace(c.Telemetry.KpURL) == "" {
		c.Telemetry.KpURL = def.Telemetry.KpURL
	}
	if strings.TrimSpace(c.Telemetry.XrayURL) == "" {
		c.Telemetry.XrayURL = def.Telemetry.XrayURL
	}
	if c.Telemetry.PollInterval < 10 {
		c.Telemetry.PollInterval = def.Telemetry.PollInterval
	}

	if c.Database.RetentionDays <= 0 {
		c.Database.RetentionDays = def.Database.RetentionDays
	}

	if c.Audio.Volume < 0 {
		c.Audio.Volume = 0
	}
	if c.Audio.Volume > 100 {
		c.Audio.Volume = 100
	}
	switch strings.ToLower(strings.TrimSpace(c.Audio.Mode)) {
	case "", "magnetosphere":
		c.Audio.Mode = "magnetosphere"
	case "sun":
		c.Audio.Mode = "sun"
	default:
		return fmt.Errorf("unknown audio mode %q", c.Audio.Mode)
	}
	if c.Audio.SampleRate < 8000 || c.Audio.SampleRate > 192000 {
		c.Audio.SampleRate = def.Audio.SampleRate
	}

	for _, p := range []*string{&c.Database.Path, &c.Logging.File} {
		expanded, err := expandPath(*p)
		if err != nil {
			return err
		}
		*p = expanded
	}
	return nil
}

// Endpoints converts the telemetry section to the client's endpoint set.
func (c Config) Endpoints() telemetry.Endpoints {
	return telemetry.Endpoints{
		Plasma: c.Telemetry.PlasmaURL,
		Kp:     c.Telemetry.KpURL,
		Xray:   c.Telemetry.XrayURL,
	}
}

// EngineConfig converts the audio section to an engine config. Zero timing
// overrides fall back to the engine defaults.
func (c Config) EngineConfig() sonify.Config {
	ec := sonify.DefaultConfig()
	ec.Volume = float64(c.Audio.Volume) / 100.0
	ec.SampleRate = c.Audio.SampleRate
	if c.Audio.Mode == "sun" {
		ec.Mode = sonify.ModeSun
	}
	if c.Audio.FadeOutMs > 0 {
		ec.FadeOut = time.Duration(c.Audio.FadeOutMs) * time.Millisecond
	}
	if c.Audio.VolumeRampMs > 0 {
		ec.VolumeRamp = time.Duration(c.Audio.VolumeRampMs) * time.Millisecond
	}
	if c.Audio.SwitchDelayMs > 0 {
		ec.SwitchDelay = time.Duration(c.Audio.SwitchDelayMs) * time.Millisecond
	}
	return ec
}

func expandPath(path string) (string, error) {
	path = strings.TrimSpace(path)
	if path == "" {
		return "", nil
	}
	if path == "~" || strings.HasPrefix(path, "~/") {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("resolve home directory: %w", err)
		}
		path = filepath.Join(home, strings.TrimPrefix(path, "~"))
	}
	abs, err := filepath.Abs(path)
	if err != nil {
		return "", fmt.Errorf("resolve path %q: %w", path, err)
	}
	return abs, nil
}
