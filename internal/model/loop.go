package model

import (
	"net/url"
	"path/filepath"
	"strings"

	"github.com/handiism/syncloop/internal/beatsync"
	ioutils "github.com/handiism/syncloop/internal/io"
)

// Loop represents a sync loop: one song and the animation that follows it.
//
// Loop contains everything needed to load and play a loop:
//   - Title for display
//   - Song with its location, beat count and optional beatmap
//   - Animation with its frame pattern (or video) and beat layout
//
// Asset locations are resolved against the location of the loop document
// when the loop is created via NewLoop, so relative file names in a
// document work both for local directories and for web servers.
//
// Example:
//
//	loop := NewLoop("Dance", "https://example.com/loops/dance.json", song, anim)
//	// loop.Song.Location = "https://example.com/loops/dance.mp3"
type Loop struct {
	// Title is the loop title. Empty falls back to the song title.
	Title string

	// Source is the location the loop document was read from.
	Source string

	// Song is the looping audio.
	Song *Song

	// Animation is the visual that follows the song.
	Animation *Animation
}

// Song describes the looping audio of a Loop.
type Song struct {
	// Location is the URL or file path of the encoded audio.
	Location string

	// Title is the song title.
	Title string

	// BeatsPerLoop is the number of beats in one loop.
	// Zero derives it from the beatmap length.
	BeatsPerLoop int

	// Beatmap holds one symbol per beat, '.' marking beats without a
	// strong onset. Optional.
	Beatmap string
}

// Animation describes the visual of a Loop, either an image sequence or a
// video.
type Animation struct {
	// Location is the frame file pattern. It contains the %FRAME%
	// placeholder, replaced with the 1-indexed frame number.
	Location string

	// Frames is the number of frame images.
	Frames int

	// FrameTextPadding is the width the frame number is zero-padded to.
	FrameTextPadding int

	// BeatsPerLoop is the number of beats one animation loop spans.
	BeatsPerLoop int

	// FrameKeyframes lists 1-indexed keyframes traversed in order.
	FrameKeyframes []int

	// Pingpong plays the frames forwards then backwards.
	Pingpong bool

	// Beats lists 1-indexed frame sequence positions where beats start.
	Beats []int

	// SyncOffset shifts the animation, in frames or video seconds.
	SyncOffset int

	// Video replaces the image sequence when set.
	Video *Video
}

// Video is a looping video clip.
type Video struct {
	// Location is the URL or file path of the video.
	Location string

	// Duration is the clip length in seconds.
	Duration float64
}

// NewLoop creates a new Loop with asset locations resolved against source.
func NewLoop(title, source string, song *Song, anim *Animation) *Loop {
	loop := &Loop{
		Title:     title,
		Source:    source,
		Song:      song,
		Animation: anim,
	}

	if song != nil {
		song.Location = ResolveLocation(source, song.Location)
	}
	if anim != nil {
		if anim.Location != "" {
			anim.Location = ResolveLocation(source, anim.Location)
		}
		if anim.Video != nil {
			anim.Video.Location = ResolveLocation(source, anim.Video.Location)
		}
	}

	return loop
}

// DisplayTitle returns the loop title, or the song title if the loop has none.
func (l *Loop) DisplayTitle() string {
	if l.Title != "" {
		return l.Title
	}
	if l.Song != nil {
		return l.Song.Title
	}
	return ""
}

// HasVideo returns true if the animation is a video.
func (l *Loop) HasVideo() bool {
	return l.Animation != nil && l.Animation.Video != nil
}

// FrameLocations returns the location of every frame image, in frame order.
//
// Returns nil in video mode.
func (l *Loop) FrameLocations() []string {
	if l.Animation == nil || l.HasVideo() {
		return nil
	}
	return ioutils.FrameFileNames(l.Animation.Location, l.Animation.Frames, l.Animation.FrameTextPadding)
}

// AssetCount returns the number of assets Prepare loads: the song plus
// every frame, or the song plus the video.
func (l *Loop) AssetCount() int {
	if l.HasVideo() {
		return 2
	}
	return 1 + len(l.FrameLocations())
}

// ToLoopConfig converts the loop to a sync engine configuration.
func (l *Loop) ToLoopConfig() beatsync.LoopConfig {
	var cfg beatsync.LoopConfig

	if l.Song != nil {
		cfg.SongBeatsPerLoop = l.Song.BeatsPerLoop
		cfg.Beatmap = l.Song.Beatmap
	}

	if a := l.Animation; a != nil {
		cfg.AnimationBeatsPerLoop = a.BeatsPerLoop
		cfg.FrameCount = a.Frames
		cfg.FrameKeyframes = a.FrameKeyframes
		cfg.Pingpong = a.Pingpong
		cfg.Beats = a.Beats
		cfg.SyncOffset = a.SyncOffset
		if a.Video != nil {
			cfg.VideoMode = true
			cfg.VideoDuration = a.Video.Duration
		}
	}

	return cfg
}

// IsRemote reports whether location is an http or https URL.
func IsRemote(location string) bool {
	u, err := url.Parse(location)
	if err != nil {
		return false
	}
	return u.Scheme == "http" || u.Scheme == "https"
}

// ResolveLocation resolves ref against the location of the document that
// referenced it.
//
// Absolute URLs and absolute paths are returned unchanged. A relative ref
// resolves against a remote base as a URL reference, and against a local
// base relative to the base file's directory.
//
// Example:
//
//	ResolveLocation("https://example.com/loops/a.json", "a.mp3")
//	// Returns "https://example.com/loops/a.mp3"
//	ResolveLocation("/srv/loops/a.yaml", "img/%FRAME%.png")
//	// Returns "/srv/loops/img/%FRAME%.png"
func ResolveLocation(base, ref string) string {
	if ref == "" || IsRemote(ref) || filepath.IsAbs(ref) || base == "" {
		return ref
	}

	if IsRemote(base) {
		b, err := url.Parse(base)
		if err != nil {
			return ref
		}
		// Keep the frame placeholder out of percent-encoding.
		r, err := url.Parse(strings.ReplaceAll(ref, ioutils.FramePlaceholder, "FRAMEPLACEHOLDER"))
		if err != nil {
			return ref
		}
		resolved := b.ResolveReference(r).String()
		return strings.ReplaceAll(resolved, "FRAMEPLACEHOLDER", ioutils.FramePlaceholder)
	}

	return filepath.Join(filepath.Dir(base), filepath.FromSlash(ref))
}
