package sonify

import (
	"errors"
	"fmt"
	"time"

	"github.com/gopxl/beep"
	"github.com/gopxl/beep/speaker"
)

// Sentinel errors
var (
	// ErrBackendUnavailable means the host cannot provide an audio device.
	// Start absorbs it into staying Idle; it is status, not a crash.
	ErrBackendUnavailable = errors.New("audio backend unavailable")

	// ErrPlaybackDeferred means the host requires a user gesture before
	// audio may render. Playback proceeds structurally but silently until a
	// later Start call on the same root succeeds.
	ErrPlaybackDeferred = errors.New("audio playback deferred until user gesture")
)

// Sink is the output boundary: the single audio device capability the master
// bus connects to. Calling Start again with the same root retries a deferred
// unlock; sinks must not double-attach.
type Sink interface {
	Start(sr beep.SampleRate, root beep.Streamer) error
	Clear()
	Close()
}

// NopSink discards all audio. It lets the controller run its full lifecycle
// on hosts where sound is disabled.
type NopSink struct{}

func (NopSink) Start(beep.SampleRate, beep.Streamer) error { return nil }
func (NopSink) Clear()                                     {}
func (NopSink) Close()                                     {}

// SpeakerSink renders through the host audio device via beep's speaker
type SpeakerSink struct {
	buffer      time.Duration
	initialized bool
	current     beep.Streamer
}

// NewSpeakerSink creates a speaker-backed sink with the given device buffer
func NewSpeakerSink(buffer time.Duration) *SpeakerSink {
	if buffer <= 0 {
		buffer = 100 * time.Millisecond
	}
	return &SpeakerSink{buffer: buffer}
}

// Start initializes the device on first use and attaches root to it
func (s *SpeakerSink) Start(sr beep.SampleRate, root beep.Streamer) error {
	if !s.initialized {
		if err := speaker.Init(sr, sr.N(s.buffer)); err != nil {
			return fmt.Errorf("%w: %v", ErrBackendUnavailable, err)
		}
		s.initialized = true
	}
	if s.current == root {
		return nil
	}
	s.current = root
	speaker.Play(root)
	return nil
}

// Clear detaches everything from the device; the device stays open for the
// next Start
func (s *SpeakerSink) Clear() {
	s.current = nil
	if s.initialized {
		speaker.Clear()
	}
}

// Close releases the audio device
func (s *SpeakerSink) Close() {
	if s.initialized {
		speaker.Clear()
		speaker.Close()
		s.initialized = false
	}
	s.current = nil
}
