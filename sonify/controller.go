package sonify

import (
	"errors"
	"math/rand"
	"sync"

	"github.com/gopxl/beep"
)

// PlaybackState is the only engine state visible to external callers
type PlaybackState struct {
	IsPlaying bool
	Mode      Mode
	Volume    float64
}

// Controller owns the active signal graph and the master bus, and mediates
// every start/stop/switch/volume request. At most one graph is alive at a
// time; the master bus exists only while playing; volume survives mode
// switches and stop/start cycles.
//
// Transitions that need to wait (fade-out before teardown, the gap between
// teardown and rebuild) are scheduled on the Clock and carry a transition
// version; a newer transition supersedes any pending continuation, so
// overlapping requests never stack or leak nodes.
type Controller struct {
	mu    sync.Mutex
	cfg   Config
	clock Clock
	sink  Sink
	rng   *rand.Rand

	playing bool
	mode    Mode
	volume  float64
	latest  Telemetry

	graph  *Graph
	master *Gain

	transition    uint64
	pendingUnlock bool

	nodesBuilt   int
	nodesDropped int
}

// NewController creates an idle controller. A nil clock uses the system
// clock; a nil sink uses the speaker.
func NewController(cfg Config, clock Clock, sink Sink) *Controller {
	cfg = cfg.normalize()
	if clock == nil {
		clock = NewSystemClock()
	}
	if sink == nil {
		sink = NewSpeakerSink(cfg.Buffer)
	}
	return &Controller{
		cfg:    cfg,
		clock:  clock,
		sink:   sink,
		rng:    NewNoiseRand(),
		mode:   cfg.Mode,
		volume: cfg.Volume,
	}
}

// SetRand replaces the noise random source; tests inject a fixed seed
func (c *Controller) SetRand(rng *rand.Rand) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.rng = rng
}

// UpdateTelemetry records the latest reading. It takes effect on the next
// graph build (start or mode switch); a playing graph is never re-patched
// mid-flight.
func (c *Controller) UpdateTelemetry(t Telemetry) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.latest = t
}

// Start transitions Idle → Playing. No-op when already playing. A host
// without an audio backend leaves the controller Idle and returns
// ErrBackendUnavailable; a host demanding a user gesture starts silently
// and unlocks on a later call.
func (c *Controller) Start() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.playing {
		return nil
	}

	// Supersede any pending teardown and finish it now, so the old graph is
	// gone strictly before the new one is built.
	c.transition++
	c.teardownLocked()

	return c.buildAndPlayLocked()
}

// buildAndPlayLocked constructs the current mode's graph into a fresh master
// bus and hands it to the sink. On backend failure the fully built graph is
// discarded and state stays Idle.
func (c *Controller) buildAndPlayLocked() error {
	sr := beep.SampleRate(c.cfg.SampleRate)
	g := BuildGraph(c.mode, c.latest, c.rng, sr)
	m := NewGain(g.Root(), c.volume, sr)

	if err := c.sink.Start(sr, m); err != nil {
		if errors.Is(err, ErrPlaybackDeferred) {
			c.pendingUnlock = true
		} else {
			return err
		}
	}

	c.graph = g
	c.master = m
	c.playing = true
	c.nodesBuilt += g.NodeCount()
	return nil
}

// Stop transitions Playing → Idle: the master bus fades to silence, then the
// graph is torn down once the fade has elapsed. No-op when already idle.
func (c *Controller) Stop() {
	c.mu.Lock()
	defer c.mu.Unlock()

	if !c.playing {
		return
	}

	c.playing = false
	if c.master != nil {
		c.master.RampTo(0, c.cfg.FadeOut)
	}

	c.transition++
	version := c.transition
	c.clock.AfterFunc(c.cfg.FadeOut, func() {
		c.mu.Lock()
		defer c.mu.Unlock()
		if c.transition != version {
			return // superseded by a newer transition
		}
		c.teardownLocked()
	})
}

// SwitchMode changes the active soundscape. Idle: records the mode for the
// next Start. Playing: fades out, tears down, and rebuilds for the new mode
// after a short gap. Same mode: no-op, never restarts audio.
func (c *Controller) SwitchMode(mode Mode) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.retryUnlockLocked()

	if mode == c.mode {
		return
	}
	c.mode = mode

	if !c.playing {
		return // lazy: next Start builds the new mode
	}

	if c.master != nil {
		c.master.RampTo(0, c.cfg.FadeOut)
	}

	c.transition++
	version := c.transition
	c.clock.AfterFunc(c.cfg.FadeOut, func() {
		c.mu.Lock()
		defer c.mu.Unlock()
		if c.transition != version {
			return
		}
		c.teardownLocked()

		c.clock.AfterFunc(c.cfg.SwitchDelay, func() {
			c.mu.Lock()
			defer c.mu.Unlock()
			if c.transition != version {
				return
			}
			if !c.playing {
				return
			}
			// Rebuild failure leaves the controller idle
			if err := c.buildAndPlayLocked(); err != nil {
				c.playing = false
			}
		})
	})
}

// SetVolume clamps v to [0,1] and, while playing, ramps the master bus
// toward it; there is never an instantaneous jump. While idle the value is
// stored for the next Start.
func (c *Controller) SetVolume(v float64) {
	if v < 0 {
		v = 0
	}
	if v > 1 {
		v = 1
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	c.retryUnlockLocked()

	c.volume = v
	if c.playing && c.master != nil {
		c.master.RampTo(v, c.cfg.VolumeRamp)
	}
}

// Toggle starts when idle and stops when playing
func (c *Controller) Toggle() error {
	if c.IsPlaying() {
		c.Stop()
		return nil
	}
	return c.Start()
}

// Close tears everything down synchronously and releases the sink. No node
// outlives the controller.
func (c *Controller) Close() {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.transition++
	c.playing = false
	c.teardownLocked()
	c.sink.Close()
}

// teardownLocked stops and discards the active graph and master bus
func (c *Controller) teardownLocked() {
	if c.graph != nil {
		c.nodesDropped += c.graph.NodeCount()
		c.graph = nil
	}
	if c.master != nil {
		c.master = nil
		c.sink.Clear()
	}
}

// retryUnlockLocked lazily retries a deferred playback unlock on a user
// gesture, per hosts that gate audio behind interaction
func (c *Controller) retryUnlockLocked() {
	if !c.pendingUnlock || !c.playing || c.master == nil {
		return
	}
	if err := c.sink.Start(beep.SampleRate(c.cfg.SampleRate), c.master); err == nil {
		c.pendingUnlock = false
	}
}

// IsPlaying reports whether a graph is active (possibly mid-fade on its way
// out does not count)
func (c *Controller) IsPlaying() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.playing
}

// Mode returns the current (or pending) soundscape
func (c *Controller) Mode() Mode {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.mode
}

// Volume returns the persistent master volume
func (c *Controller) Volume() float64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.volume
}

// State returns the externally visible playback state
func (c *Controller) State() PlaybackState {
	c.mu.Lock()
	defer c.mu.Unlock()
	return PlaybackState{IsPlaying: c.playing, Mode: c.mode, Volume: c.volume}
}

// Graph exposes the live graph for topology inspection; nil while idle
func (c *Controller) Graph() *Graph {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.graph
}

// NodeChurn reports cumulative nodes built and dropped over the controller's
// lifetime, for transition diagnostics
func (c *Controller) NodeChurn() (built, dropped int) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.nodesBuilt, c.nodesDropped
}
