package audio

import (
	"errors"
	"fmt"
	"math"
	"sync"
	"time"

	"github.com/faiface/beep"
	"github.com/faiface/beep/effects"
)

// ErrUnavailable is returned by operations on an unusable Transport.
var ErrUnavailable = errors.New("audio transport unavailable")

// Options configures a Transport.
type Options struct {
	// SampleRate is the output sample rate. Decoded audio is resampled to it.
	SampleRate beep.SampleRate

	// BufferSize is the output latency.
	BufferSize time.Duration

	// Codec is the codec the host must be able to decode.
	// Empty disables the check.
	Codec string

	// Trims maps a codec name to the trim policy applied by Trim.
	Trims map[string]TrimPolicy

	// Clock is the transport clock. Defaults to a MonotonicClock.
	Clock Clock

	// Volume is the initial gain in [0,1].
	Volume float64

	// VolumeStep is the gain change of IncreaseVolume and DecreaseVolume.
	VolumeStep float64
}

// DefaultOptions returns options for 44.1kHz MP3 playback at full volume.
func DefaultOptions() Options {
	return Options{
		SampleRate: beep.SampleRate(44100),
		BufferSize: 100 * time.Millisecond,
		Codec:      CodecMP3,
		Volume:     1,
		VolumeStep: 0.1,
	}
}

// Transport plays one looping buffer and exposes its clock.
//
// A Transport that failed to initialize is unusable: Usable returns false,
// Reason explains why, and every operation does nothing.
type Transport struct {
	out   Output
	opts  Options
	clock Clock

	usable bool
	reason string

	ctrl    *beep.Ctrl
	gain    *effects.Gain
	buf     *Buffer
	start   time.Duration
	playing bool

	volume     float64
	lastVolume float64
	muted      bool

	mu sync.RWMutex
}

// New creates a Transport on out and initializes the output.
func New(out Output, opts Options) *Transport {
	defaults := DefaultOptions()
	if opts.SampleRate <= 0 {
		opts.SampleRate = defaults.SampleRate
	}
	if opts.BufferSize <= 0 {
		opts.BufferSize = defaults.BufferSize
	}
	if opts.VolumeStep <= 0 {
		opts.VolumeStep = defaults.VolumeStep
	}
	if opts.Clock == nil {
		opts.Clock = NewMonotonicClock()
	}

	t := &Transport{
		out:    out,
		opts:   opts,
		clock:  opts.Clock,
		volume: clampVolume(opts.Volume),
	}

	switch {
	case out == nil:
		t.reason = "no audio output available"
	case opts.Codec != "" && !Supported(opts.Codec):
		t.reason = fmt.Sprintf("audio codec %q is not supported", opts.Codec)
	default:
		if err := out.Init(opts.SampleRate, opts.SampleRate.N(opts.BufferSize)); err != nil {
			t.reason = fmt.Sprintf("audio output init failed: %v", err)
		} else {
			t.usable = true
		}
	}

	return t
}

// Usable reports whether the transport can decode and play audio.
func (t *Transport) Usable() bool {
	return t.usable
}

// Reason returns why the transport is unusable.
func (t *Transport) Reason() string {
	return t.reason
}

// Load decodes encoded audio bytes into a buffer.
//
// The playback state is not changed, whether decoding succeeds or not.
func (t *Transport) Load(data []byte) (*Buffer, error) {
	if !t.usable {
		return nil, fmt.Errorf("%w: %s", ErrUnavailable, t.reason)
	}
	return decode(data, t.opts.SampleRate)
}

// Trim applies the trim policy registered for the buffer's codec.
func (t *Transport) Trim(buf *Buffer) *Buffer {
	if !t.usable || buf == nil {
		return buf
	}
	return t.opts.Trims[buf.Codec()].Apply(buf)
}

// Play starts looping buf from its first sample.
//
// Any current playback is stopped first. The stream is handed to the output
// paused; the start instant is recorded while holding the output lock and
// the stream is unpaused in the same critical section, so the clock never
// runs ahead of the audio. onStarted is called once playback is active.
func (t *Transport) Play(buf *Buffer, onStarted func()) {
	if !t.usable || buf == nil || buf.Len() == 0 {
		return
	}

	t.Stop()

	t.mu.Lock()
	t.gain = &effects.Gain{
		Streamer: beep.Loop(-1, buf.Streamer(0, buf.Len())),
		Gain:     t.gainValue(),
	}
	t.ctrl = &beep.Ctrl{Streamer: t.gain, Paused: true}
	t.out.Play(t.ctrl)

	t.out.Lock()
	t.ctrl.Paused = false
	t.start = t.clock.Now()
	t.out.Unlock()

	t.buf = buf
	t.playing = true
	t.mu.Unlock()

	if onStarted != nil {
		onStarted()
	}
}

// Stop halts playback and resets the clock. Calling Stop while stopped
// does nothing.
func (t *Transport) Stop() {
	if !t.usable {
		return
	}

	t.mu.Lock()
	defer t.mu.Unlock()

	if !t.playing {
		return
	}

	t.out.Lock()
	t.ctrl.Paused = true
	t.ctrl.Streamer = nil
	t.out.Unlock()
	t.out.Clear()

	t.ctrl = nil
	t.gain = nil
	t.buf = nil
	t.start = 0
	t.playing = false
}

// Playing reports whether a buffer is playing.
func (t *Transport) Playing() bool {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.playing
}

// Duration returns the length of one loop, or zero when stopped.
func (t *Transport) Duration() time.Duration {
	t.mu.RLock()
	defer t.mu.RUnlock()
	if t.buf == nil {
		return 0
	}
	return t.buf.Duration()
}

// Buffer returns the playing buffer, or nil when stopped.
func (t *Transport) Buffer() *Buffer {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.buf
}

// Elapsed returns the seconds since playback started.
//
// The value keeps growing across loop boundaries.
func (t *Transport) Elapsed() float64 {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.elapsed()
}

func (t *Transport) elapsed() float64 {
	if !t.playing {
		return 0
	}
	return (t.clock.Now() - t.start).Seconds()
}

// Progress returns the elapsed time in loop durations.
//
// The value is not wrapped: 2.5 means halfway through the third loop.
func (t *Transport) Progress() float64 {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.progress()
}

func (t *Transport) progress() float64 {
	if !t.playing {
		return 0
	}
	length := t.buf.Duration().Seconds()
	if length <= 0 {
		return 0
	}
	return t.elapsed() / length
}

// Phase returns the position within the current loop, in [0,1).
func (t *Transport) Phase() float64 {
	t.mu.RLock()
	defer t.mu.RUnlock()

	p := t.progress()
	phase := p - math.Floor(p)
	if phase >= 1 {
		phase = 0
	}
	return phase
}

// SetMute mutes or unmutes playback. Unmuting restores the volume that was
// set before muting.
func (t *Transport) SetMute(mute bool) {
	if !t.usable {
		return
	}

	t.mu.Lock()
	defer t.mu.Unlock()
	t.setMute(mute)
	t.applyGain()
}

func (t *Transport) setMute(mute bool) {
	if mute == t.muted {
		return
	}
	if mute {
		t.lastVolume = t.volume
		t.volume = 0
	} else {
		t.volume = t.lastVolume
	}
	t.muted = mute
}

// ToggleMute flips the mute state.
func (t *Transport) ToggleMute() {
	if !t.usable {
		return
	}

	t.mu.Lock()
	defer t.mu.Unlock()
	t.setMute(!t.muted)
	t.applyGain()
}

// IncreaseVolume unmutes and raises the volume by one step.
func (t *Transport) IncreaseVolume() {
	t.stepVolume(1)
}

// DecreaseVolume unmutes and lowers the volume by one step.
func (t *Transport) DecreaseVolume() {
	t.stepVolume(-1)
}

func (t *Transport) stepVolume(direction float64) {
	if !t.usable {
		return
	}

	t.mu.Lock()
	defer t.mu.Unlock()
	t.setMute(false)
	t.volume = clampVolume(t.volume + direction*t.opts.VolumeStep)
	t.applyGain()
}

// SetVolume sets the volume, clamped to [0,1].
func (t *Transport) SetVolume(v float64) {
	if !t.usable {
		return
	}

	t.mu.Lock()
	defer t.mu.Unlock()
	t.volume = clampVolume(v)
	t.applyGain()
}

// Volume returns the current volume; zero while muted.
func (t *Transport) Volume() float64 {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.volume
}

// Muted reports whether playback is muted.
func (t *Transport) Muted() bool {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.muted
}

// gainValue converts the linear volume into an effects.Gain value,
// which scales samples by 1+Gain.
func (t *Transport) gainValue() float64 {
	return t.volume - 1
}

func (t *Transport) applyGain() {
	if t.gain == nil {
		return
	}
	t.out.Lock()
	t.gain.Gain = t.gainValue()
	t.out.Unlock()
}

func clampVolume(v float64) float64 {
	v = math.Round(v*1000) / 1000
	return math.Max(0, math.Min(1, v))
}
