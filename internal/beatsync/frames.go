package beatsync

// BuildFrameSequence returns the 0-indexed asset frames of one animation
// loop.
//
// With keyframes, each consecutive pair (a, b) emits a, a±1, ... up to but
// excluding b, and the final keyframe closes the traversal. Without them
// the sequence is every frame in order. Ping-pong appends the reversed
// sequence without its two endpoints.
func BuildFrameSequence(c LoopConfig) ([]int, error) {
	var seq []int

	if len(c.FrameKeyframes) > 0 {
		keys := c.FrameKeyframes
		for i := 0; i < len(keys)-1; i++ {
			a, b := keys[i], keys[i+1]
			if b < a {
				for j := a; j > b; j-- {
					seq = append(seq, j-1)
				}
			} else {
				for j := a; j < b; j++ {
					seq = append(seq, j-1)
				}
			}
		}
		// last frame inclusive
		seq = append(seq, keys[len(keys)-1]-1)
	} else {
		seq = make([]int, 0, max(c.FrameCount, 0))
		for i := 0; i < c.FrameCount; i++ {
			seq = append(seq, i)
		}
	}

	if c.Pingpong {
		seq = pingpong(seq)
	}

	if len(seq) == 0 {
		return nil, invalid("frame sequence is empty")
	}
	return seq, nil
}

// pingpong appends seq[n-2], ..., seq[1] to seq.
func pingpong(seq []int) []int {
	n := len(seq)
	if n <= 2 {
		return seq
	}

	out := make([]int, 0, 2*n-2)
	out = append(out, seq...)
	for i := n - 2; i >= 1; i-- {
		out = append(out, seq[i])
	}
	return out
}

// BuildBeatTimeline partitions the positions of seq into one range per
// entry of beats (1-indexed starts).
//
// Range i covers [beats[i]-1, beats[i+1]-1). The last range runs to the
// end of the sequence and then wraps around to [0, beats[0]-1). Ranges
// hold positions in seq, not asset frames. Returns nil when beats is empty.
func BuildBeatTimeline(beats []int, seq []int) [][]int {
	if len(beats) == 0 {
		return nil
	}

	timeline := make([][]int, 0, len(beats))
	for i, start := range beats {
		end := len(seq)
		if i+1 < len(beats) {
			end = beats[i+1] - 1
		}

		positions := make([]int, 0, max(end-start+1, 0))
		for p := start - 1; p < end; p++ {
			positions = append(positions, p)
		}
		timeline = append(timeline, positions)
	}

	last := len(timeline) - 1
	for p := 0; p < beats[0]-1; p++ {
		timeline[last] = append(timeline[last], p)
	}

	return timeline
}
