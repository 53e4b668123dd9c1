package audio

import (
	"time"

	"github.com/faiface/beep"
	"github.com/faiface/beep/speaker"
)

// Output is a sink that mixes streamers into the audio device.
//
// Lock and Unlock guard mutations of streamers that are already playing.
type Output interface {
	Init(sampleRate beep.SampleRate, bufferSize int) error
	Play(s ...beep.Streamer)
	Clear()
	Lock()
	Unlock()
}

// Speaker is the Output backed by the system audio device.
type Speaker struct{}

// NewSpeaker creates a new Speaker.
func NewSpeaker() *Speaker {
	return &Speaker{}
}

// Init opens the audio device.
func (s *Speaker) Init(sampleRate beep.SampleRate, bufferSize int) error {
	return speaker.Init(sampleRate, bufferSize)
}

// Play starts mixing the streamers.
func (s *Speaker) Play(st ...beep.Streamer) {
	speaker.Play(st...)
}

// Clear removes all streamers from the mixer.
func (s *Speaker) Clear() {
	speaker.Clear()
}

// Lock locks the speaker mixer.
func (s *Speaker) Lock() {
	speaker.Lock()
}

// Unlock unlocks the speaker mixer.
func (s *Speaker) Unlock() {
	speaker.Unlock()
}

// Close closes the audio device.
func (s *Speaker) Close() {
	speaker.Close()
}

// Clock is a monotonic time source.
type Clock interface {
	Now() time.Duration
}

// MonotonicClock measures time elapsed since its creation.
type MonotonicClock struct {
	origin time.Time
}

// NewMonotonicClock creates a clock starting at zero.
func NewMonotonicClock() *MonotonicClock {
	return &MonotonicClock{origin: time.Now()}
}

// Now returns the monotonic time since the clock was created.
func (c *MonotonicClock) Now() time.Duration {
	return time.Since(c.origin)
}
