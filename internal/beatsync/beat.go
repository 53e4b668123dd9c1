package beatsync

import "math"

// BeatTracker converts loop progress into a running song beat.
//
// It applies the beatmap drift accumulator on top of the raw beat. The
// accumulator only moves forward; call Reset before replaying from the
// start.
type BeatTracker struct {
	songBeats int
	skips     []bool

	loops int

	lastBeat int
	offset   int
}

// NewBeatTracker creates a tracker for the song beats and beatmap of c.
func NewBeatTracker(c LoopConfig) *BeatTracker {
	t := &BeatTracker{songBeats: c.SongBeats()}
	if c.Beatmap != "" {
		for _, r := range c.Beatmap {
			t.skips = append(t.skips, r == SkipSymbol)
		}
	}
	return t
}

// Reset clears loop counting and the drift accumulator.
func (t *BeatTracker) Reset() {
	t.loops = 0
	t.lastBeat = 0
	t.offset = 0
}

// Position returns the song beat for progress measured in loop durations.
//
// Progress is not wrapped: 2.25 is a quarter into the third loop. Skipped
// ticks are harmless since every whole beat up to progress is accounted
// for in one call.
func (t *BeatTracker) Position(progress float64) float64 {
	if progress < 0 {
		progress = 0
	}
	t.loops = int(math.Floor(progress))

	return t.Adjust(float64(t.songBeats) * progress)
}

// Adjust applies the beatmap to a raw fractional beat.
//
// Every whole beat passed since the last call that is marked as a skip
// adds one to the offset. When raw falls inside a skip beat its fraction
// is dropped, which holds the visual still for the whole beat. Without a
// beatmap raw is returned as is. Raw beats must not decrease between calls.
func (t *BeatTracker) Adjust(raw float64) float64 {
	if len(t.skips) == 0 {
		return raw
	}

	for float64(t.lastBeat+1) <= raw {
		if t.skip(t.lastBeat) {
			t.offset++
		}
		t.lastBeat++
	}

	if t.skip(int(math.Floor(raw))) {
		raw = math.Floor(raw)
	}

	return raw - float64(t.offset)
}

// Offset returns the number of skip beats consumed so far.
func (t *BeatTracker) Offset() int {
	return t.offset
}

// Loops returns the number of completed loops at the last Position.
func (t *BeatTracker) Loops() int {
	return t.loops
}

func (t *BeatTracker) skip(beat int) bool {
	return t.skips[modInt(beat, len(t.skips))]
}
