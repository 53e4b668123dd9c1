package audio

import (
	"time"

	"github.com/faiface/beep"
)

// Buffer holds decoded PCM audio for one loop.
type Buffer struct {
	pcm        *beep.Buffer
	codec      string
	sourceRate beep.SampleRate
}

// Len returns the number of sample frames in the buffer.
func (b *Buffer) Len() int {
	return b.pcm.Len()
}

// Format returns the PCM format of the buffer.
func (b *Buffer) Format() beep.Format {
	return b.pcm.Format()
}

// Codec returns the name of the codec the buffer was decoded from.
func (b *Buffer) Codec() string {
	return b.codec
}

// SourceRate returns the sample rate of the encoded audio, before any
// resampling to the output rate.
func (b *Buffer) SourceRate() beep.SampleRate {
	if b.sourceRate == 0 {
		return b.pcm.Format().SampleRate
	}
	return b.sourceRate
}

// Duration returns the playback length of the buffer.
func (b *Buffer) Duration() time.Duration {
	return b.pcm.Format().SampleRate.D(b.pcm.Len())
}

// Streamer returns a streamer over sample frames [from, to).
func (b *Buffer) Streamer(from, to int) beep.StreamSeeker {
	return b.pcm.Streamer(from, to)
}

// slice copies frames [from, to) into a new buffer.
func (b *Buffer) slice(from, to int) *Buffer {
	pcm := beep.NewBuffer(b.pcm.Format())
	pcm.Append(b.pcm.Streamer(from, to))
	return &Buffer{pcm: pcm, codec: b.codec, sourceRate: b.sourceRate}
}
