package beatsync

import (
	"errors"
	"fmt"
)

// ErrConfigurationInvalid is returned for loop configurations that cannot
// produce a usable frame sequence or beat grid.
var ErrConfigurationInvalid = errors.New("invalid loop configuration")

// SkipSymbol marks a beatmap beat with no strong onset.
const SkipSymbol = '.'

// LoopConfig describes one sync session.
type LoopConfig struct {
	// SongBeatsPerLoop is the number of beats in one audio loop.
	// Zero derives it from the beatmap length.
	SongBeatsPerLoop int

	// Beatmap holds one symbol per song beat. Optional.
	Beatmap string

	// AnimationBeatsPerLoop is the number of beats one visual loop spans.
	// Zero derives it from the length of Beats.
	AnimationBeatsPerLoop int

	// FrameCount is the number of asset frames in image-sequence mode.
	FrameCount int

	// FrameKeyframes lists 1-indexed frames whose consecutive pairs are
	// traversed forwards or backwards. Optional.
	FrameKeyframes []int

	// Pingpong mirrors the sequence, excluding both endpoints.
	Pingpong bool

	// Beats lists 1-indexed offsets into the frame sequence where each
	// animation beat starts. Optional.
	Beats []int

	// SyncOffset shifts the visual. In image mode it is a number of
	// sequence positions; in video mode it is seconds.
	SyncOffset int

	// VideoMode selects video playback instead of an image sequence.
	VideoMode bool

	// VideoDuration is the video length in seconds, in video mode.
	VideoDuration float64
}

// SongBeats returns the effective number of song beats per loop.
func (c LoopConfig) SongBeats() int {
	if c.SongBeatsPerLoop > 0 {
		return c.SongBeatsPerLoop
	}
	return len([]rune(c.Beatmap))
}

// AnimationBeats returns the effective number of animation beats per loop.
func (c LoopConfig) AnimationBeats() int {
	if c.AnimationBeatsPerLoop > 0 {
		return c.AnimationBeatsPerLoop
	}
	return len(c.Beats)
}

// Validate checks the configuration and returns an error wrapping
// ErrConfigurationInvalid describing the first problem found.
func (c LoopConfig) Validate() error {
	if c.SongBeatsPerLoop < 0 || c.SongBeats() <= 0 {
		return invalid("song beats per loop must be positive")
	}
	if n := len([]rune(c.Beatmap)); n > 0 && n != c.SongBeats() {
		return invalid("beatmap has %d beats, song has %d", n, c.SongBeats())
	}
	if c.AnimationBeatsPerLoop < 0 || c.AnimationBeats() <= 0 {
		return invalid("animation beats per loop must be positive")
	}
	if len(c.Beats) > 0 && len(c.Beats) != c.AnimationBeats() {
		return invalid("%d beat offsets given for %d animation beats", len(c.Beats), c.AnimationBeats())
	}

	if c.VideoMode {
		if c.VideoDuration <= 0 {
			return invalid("video duration must be positive")
		}
		return nil
	}

	if c.FrameCount <= 0 {
		return invalid("frame count must be positive")
	}
	for _, k := range c.FrameKeyframes {
		if k < 1 || k > c.FrameCount {
			return invalid("keyframe %d outside frames 1..%d", k, c.FrameCount)
		}
	}

	seq, err := BuildFrameSequence(c)
	if err != nil {
		return err
	}
	for i, b := range c.Beats {
		if b < 1 || b > len(seq) {
			return invalid("beat offset %d outside sequence 1..%d", b, len(seq))
		}
		if i > 0 && b <= c.Beats[i-1] {
			return invalid("beat offsets must be strictly increasing")
		}
	}

	return nil
}

func invalid(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrConfigurationInvalid, fmt.Sprintf(format, args...))
}
