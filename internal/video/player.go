package video

import (
	"errors"
	"fmt"
	"math"
	"sync"
	"time"
)

// ErrEmptyVideo is returned when opening a video without data.
var ErrEmptyVideo = errors.New("empty video asset")

// Clock is a monotonic time source.
type Clock interface {
	Now() time.Duration
}

type systemClock struct {
	origin time.Time
}

func (c systemClock) Now() time.Duration {
	return time.Since(c.origin)
}

// Player is a looping playhead whose position advances at the playback
// rate.
//
// Changing the rate rebases the playhead at the current position, so the
// position stays continuous.
type Player struct {
	clock    Clock
	duration float64

	playing bool
	base    float64
	anchor  time.Duration
	rate    float64

	mu sync.Mutex
}

// NewPlayer creates a stopped player for a video of duration seconds.
func NewPlayer(clock Clock, duration float64) *Player {
	if clock == nil {
		clock = systemClock{origin: time.Now()}
	}
	return &Player{clock: clock, duration: duration, rate: 1}
}

// Duration returns the video length in seconds.
func (p *Player) Duration() float64 {
	return p.duration
}

// Play starts playback from the beginning.
func (p *Player) Play() {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.base = 0
	p.anchor = p.clock.Now()
	p.playing = true
}

// Pause freezes the playhead.
func (p *Player) Pause() {
	p.mu.Lock()
	defer p.mu.Unlock()

	if !p.playing {
		return
	}
	p.base = p.position()
	p.playing = false
}

// Playing reports whether the playhead is advancing.
func (p *Player) Playing() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.playing
}

// CurrentTime returns the position in seconds, in [0, Duration).
func (p *Player) CurrentTime() float64 {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.position()
}

// PlaybackRate returns the current playback rate.
func (p *Player) PlaybackRate() float64 {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.rate
}

// SetPlaybackRate changes the speed of the playhead. Negative rates are
// treated as zero.
func (p *Player) SetPlaybackRate(rate float64) {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.base = p.position()
	p.anchor = p.clock.Now()
	p.rate = math.Max(rate, 0)
}

func (p *Player) position() float64 {
	pos := p.base
	if p.playing {
		pos += p.rate * (p.clock.Now() - p.anchor).Seconds()
	}
	if p.duration <= 0 {
		return 0
	}
	pos = math.Mod(pos, p.duration)
	if pos < 0 {
		pos += p.duration
	}
	return pos
}

// Host opens software players for video assets.
//
// Players only keep a playhead: the video bytes are checked and then
// dropped, and no pixels are decoded or shown. A host that renders video
// supplies its own VideoHost; this one drives rate correction and status
// output in terminal hosts.
type Host struct {
	clock Clock
}

// NewHost creates a Host whose players run on clock. A nil clock uses the
// system monotonic clock.
func NewHost(clock Clock) *Host {
	return &Host{clock: clock}
}

// SupportsPlaybackRate reports whether players opened by the host accept
// rate changes.
func (h *Host) SupportsPlaybackRate() bool {
	return true
}

// Open creates a playhead for a fetched video asset of duration seconds.
// data is not decoded.
func (h *Host) Open(data []byte, duration float64) (*Player, error) {
	if len(data) == 0 {
		return nil, ErrEmptyVideo
	}
	if duration <= 0 {
		return nil, fmt.Errorf("invalid video duration %v", duration)
	}
	return NewPlayer(h.clock, duration), nil
}
