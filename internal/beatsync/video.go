package beatsync

// DefaultDriftGain is the proportional gain of video drift correction.
const DefaultDriftGain = 5.0

// VideoPlayer is a looping video whose playback rate can be changed.
type VideoPlayer interface {
	// Duration returns the video length in seconds.
	Duration() float64

	// CurrentTime returns the playback position in seconds.
	CurrentTime() float64

	// SetPlaybackRate changes the playback speed; 1 is normal speed.
	SetPlaybackRate(rate float64)
}

// VideoTarget returns the video position in seconds that matches songBeat,
// wrapped into [0, duration).
func VideoTarget(songBeat, duration float64, animBeats int, syncOffset float64) float64 {
	if duration <= 0 || animBeats <= 0 {
		return 0
	}
	target := duration/float64(animBeats)*songBeat + syncOffset
	return modFloat(target, duration)
}

// CorrectPlaybackRate returns the playback rate that steers current towards
// target.
//
// The signed error is wrapped into [-duration/2, duration/2] so the
// correction takes the shorter way around the loop, then expressed as a
// fraction of the duration. The rate is baseRate*(1-error*gain), never
// negative.
func CorrectPlaybackRate(current, target, duration, baseRate, gain float64) float64 {
	if duration <= 0 {
		return baseRate
	}

	drift := modFloat(current-target+duration/2, duration) - duration/2
	rate := baseRate * (1 - drift/duration*gain)
	return max(rate, 0)
}
