package beatsync

import "image"

// Surface is a drawing target for image frames.
type Surface interface {
	// Clear erases the surface.
	Clear()

	// Draw draws img scaled to fit the surface, centered.
	Draw(img image.Image)
}

// Mode renders the visual for a song beat. It is implemented by *FrameMode
// and *VideoMode only.
type Mode interface {
	render(e *Engine, songBeat float64)
	reset()
}

// FrameMode draws asset frames on a Surface.
type FrameMode struct {
	surface Surface
	frames  []image.Image
	last    int
}

// NewFrameMode creates a FrameMode drawing frames (indexed by asset frame
// number) on surface.
func NewFrameMode(surface Surface, frames []image.Image) *FrameMode {
	return &FrameMode{surface: surface, frames: frames, last: -1}
}

// Frame returns the asset frame drawn last, or -1.
func (m *FrameMode) Frame() int {
	return m.last
}

func (m *FrameMode) render(e *Engine, songBeat float64) {
	pos := e.FrameIndexFor(songBeat)
	frame := e.seq[pos]
	e.status.Position = pos
	e.status.Frame = frame

	if frame == m.last {
		return
	}
	m.last = frame

	m.surface.Clear()
	if frame < len(m.frames) && m.frames[frame] != nil {
		m.surface.Draw(m.frames[frame])
	}
}

func (m *FrameMode) reset() {
	m.last = -1
}

// VideoMode keeps a VideoPlayer aligned to the beat by adjusting its
// playback rate.
type VideoMode struct {
	player   VideoPlayer
	baseRate float64
	gain     float64
}

// NewVideoMode creates a VideoMode. Non-positive baseRate and gain fall
// back to 1 and DefaultDriftGain.
func NewVideoMode(player VideoPlayer, baseRate, gain float64) *VideoMode {
	if baseRate <= 0 {
		baseRate = 1
	}
	if gain <= 0 {
		gain = DefaultDriftGain
	}
	return &VideoMode{player: player, baseRate: baseRate, gain: gain}
}

func (m *VideoMode) render(e *Engine, songBeat float64) {
	duration := m.player.Duration()
	if duration <= 0 {
		return
	}

	target := VideoTarget(songBeat, duration, e.animBeats, float64(e.cfg.SyncOffset))
	rate := CorrectPlaybackRate(m.player.CurrentTime(), target, duration, m.baseRate, m.gain)
	m.player.SetPlaybackRate(rate)

	e.status.VideoTarget = target
	e.status.PlaybackRate = rate
}

func (m *VideoMode) reset() {
	m.player.SetPlaybackRate(m.baseRate)
}
