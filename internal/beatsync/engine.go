package beatsync

import "fmt"

// ProgressSource supplies the audio loop position.
//
// Progress is measured in loop durations and is not wrapped.
type ProgressSource interface {
	Playing() bool
	Progress() float64
}

// Status describes the most recent tick.
type Status struct {
	// SongBeat is the adjusted song beat.
	SongBeat float64

	// Position is the index into the frame sequence (image mode).
	Position int

	// Frame is the asset frame shown (image mode).
	Frame int

	// VideoTarget is the video time aimed for, in seconds (video mode).
	VideoTarget float64

	// PlaybackRate is the video rate set last (video mode).
	PlaybackRate float64

	// Ticks counts ticks that rendered.
	Ticks int
}

// Engine turns loop progress into visual updates.
//
// An Engine is not safe for concurrent use; Tick is meant to be called
// from a single render loop.
type Engine struct {
	cfg       LoopConfig
	seq       []int
	timeline  [][]int
	animBeats int
	tracker   *BeatTracker
	mode      Mode
	status    Status
}

// NewEngine validates cfg, builds its frame sequence and beat timeline,
// and binds the rendering mode.
func NewEngine(cfg LoopConfig, mode Mode) (*Engine, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	e := &Engine{
		cfg:       cfg,
		animBeats: cfg.AnimationBeats(),
		tracker:   NewBeatTracker(cfg),
		mode:      mode,
	}

	switch m := mode.(type) {
	case *FrameMode:
		if cfg.VideoMode {
			return nil, invalid("image-sequence mode for a video loop")
		}
		if len(m.frames) < cfg.FrameCount {
			return nil, invalid("%d frames loaded, %d configured", len(m.frames), cfg.FrameCount)
		}
		seq, err := BuildFrameSequence(cfg)
		if err != nil {
			return nil, err
		}
		e.seq = seq
		e.timeline = BuildBeatTimeline(cfg.Beats, seq)
	case *VideoMode:
		if !cfg.VideoMode {
			return nil, invalid("video mode for an image-sequence loop")
		}
	default:
		return nil, fmt.Errorf("unsupported mode %T", mode)
	}

	return e, nil
}

// Sequence returns the frame sequence. Empty in video mode.
func (e *Engine) Sequence() []int {
	return e.seq
}

// Timeline returns the beat timeline, or nil.
func (e *Engine) Timeline() [][]int {
	return e.timeline
}

// SongBeat advances the beat tracker to progress and returns the song beat.
func (e *Engine) SongBeat(progress float64) float64 {
	return e.tracker.Position(progress)
}

// FrameIndexFor returns the frame sequence position for songBeat.
func (e *Engine) FrameIndexFor(songBeat float64) int {
	return FrameIndexFor(songBeat, len(e.seq), e.animBeats, e.timeline, e.cfg.SyncOffset)
}

// Tick renders the visual for the current progress of src. It does nothing
// while src is not playing.
func (e *Engine) Tick(src ProgressSource) {
	if src == nil || !src.Playing() {
		return
	}

	beat := e.SongBeat(src.Progress())
	e.status.SongBeat = beat
	e.mode.render(e, beat)
	e.status.Ticks++
}

// Reset rewinds the beat tracker and forgets the last rendered visual.
func (e *Engine) Reset() {
	e.tracker.Reset()
	e.mode.reset()
	e.status = Status{}
}

// Status returns the state of the most recent tick.
func (e *Engine) Status() Status {
	return e.status
}
