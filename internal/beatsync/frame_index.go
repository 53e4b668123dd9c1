package beatsync

import "math"

// FrameIndexFor returns the position in seq shown at songBeat.
//
// With a timeline the beat is reduced modulo animBeats and the fractional
// part indexes into that beat's range. Without one the beat scales
// linearly over the whole sequence. syncOffset is added last and the
// result is reduced with a true modulo, so any finite beat (negative
// included) maps into [0, len(seq)).
func FrameIndexFor(songBeat float64, seqLen, animBeats int, timeline [][]int, syncOffset int) int {
	if seqLen <= 0 {
		return 0
	}
	if math.IsNaN(songBeat) || math.IsInf(songBeat, 0) || animBeats <= 0 {
		return modInt(syncOffset, seqLen)
	}

	b := modFloat(songBeat, float64(animBeats))

	var pos int
	if len(timeline) > 0 {
		beat := clamp(int(math.Floor(b)), 0, len(timeline)-1)
		positions := timeline[beat]
		if len(positions) > 0 {
			frac := b - math.Floor(b)
			pos = positions[clamp(int(math.Floor(float64(len(positions))*frac)), 0, len(positions)-1)]
		}
	} else {
		pos = int(math.Floor(float64(seqLen) * b / float64(animBeats)))
	}

	return modInt(pos+syncOffset, seqLen)
}

// modInt is the mathematical modulo: the result has the sign of n.
func modInt(a, n int) int {
	return ((a % n) + n) % n
}

func modFloat(a, n float64) float64 {
	m := math.Mod(a, n)
	if m < 0 {
		m += n
	}
	if m >= n {
		m = 0
	}
	return m
}

func clamp(v, lo, hi int) int {
	return max(lo, min(v, hi))
}
