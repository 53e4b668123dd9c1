package audio

import "math"

// TrimPolicy is the number of sample frames stripped from each end of a
// decoded buffer. Counts are in frames of the encoded audio and are scaled
// when the buffer was resampled.
type TrimPolicy struct {
	Leading  int
	Trailing int
}

// LAMETrim removes the encoder delay and padding LAME adds to MP3 files.
var LAMETrim = TrimPolicy{Leading: 2258, Trailing: 1000}

// IsZero reports whether the policy leaves buffers untouched.
func (p TrimPolicy) IsZero() bool {
	return p.Leading <= 0 && p.Trailing <= 0
}

// Apply returns a copy of buf without the leading and trailing frames.
//
// buf is returned unchanged when the policy is zero or would remove every
// frame.
func (p TrimPolicy) Apply(buf *Buffer) *Buffer {
	if buf == nil || p.IsZero() {
		return buf
	}

	scale := float64(buf.Format().SampleRate) / float64(buf.SourceRate())
	lead := int(math.Round(float64(max(p.Leading, 0)) * scale))
	trail := int(math.Round(float64(max(p.Trailing, 0)) * scale))
	if lead+trail >= buf.Len() {
		return buf
	}

	return buf.slice(lead, buf.Len()-trail)
}
