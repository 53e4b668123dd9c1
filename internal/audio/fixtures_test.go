package audio

import (
	"math"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	goaudio "github.com/go-audio/audio"
	"github.com/go-audio/wav"

	"github.com/faiface/beep"
)

// wavFixture encodes frames of a 440Hz stereo sine as 16-bit PCM WAV.
func wavFixture(t *testing.T, sampleRate, frames int) []byte {
	t.Helper()

	path := filepath.Join(t.TempDir(), "fixture.wav")
	f, err := os.Create(path)
	if err != nil {
		t.Fatalf("create fixture: %v", err)
	}

	data := make([]int, frames*2)
	for i := 0; i < frames; i++ {
		v := int(8000 * math.Sin(2*math.Pi*440*float64(i)/float64(sampleRate)))
		data[2*i] = v
		data[2*i+1] = v
	}

	enc := wav.NewEncoder(f, sampleRate, 16, 2, 1)
	buf := &goaudio.IntBuffer{
		Format:         &goaudio.Format{NumChannels: 2, SampleRate: sampleRate},
		Data:           data,
		SourceBitDepth: 16,
	}
	if err := enc.Write(buf); err != nil {
		t.Fatalf("encode fixture: %v", err)
	}
	if err := enc.Close(); err != nil {
		t.Fatalf("close encoder: %v", err)
	}
	if err := f.Close(); err != nil {
		t.Fatalf("close fixture: %v", err)
	}

	out, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read fixture: %v", err)
	}
	return out
}

type fakeOutput struct {
	mu sync.Mutex

	initErr      error
	initRate     beep.SampleRate
	played       []beep.Streamer
	pausedOnPlay []bool
	clears       int
}

func (o *fakeOutput) Init(sampleRate beep.SampleRate, bufferSize int) error {
	o.initRate = sampleRate
	return o.initErr
}

func (o *fakeOutput) Play(s ...beep.Streamer) {
	for _, st := range s {
		o.played = append(o.played, st)
		if ctrl, ok := st.(*beep.Ctrl); ok {
			o.pausedOnPlay = append(o.pausedOnPlay, ctrl.Paused)
		}
	}
}

func (o *fakeOutput) Clear() {
	o.clears++
	o.played = nil
}

func (o *fakeOutput) Lock()   { o.mu.Lock() }
func (o *fakeOutput) Unlock() { o.mu.Unlock() }

type fakeClock struct {
	now time.Duration
}

func (c *fakeClock) Now() time.Duration { return c.now }

func newTestTransport(t *testing.T, opts Options) (*Transport, *fakeOutput, *fakeClock) {
	t.Helper()

	out := &fakeOutput{}
	clock := &fakeClock{now: 5 * time.Second}
	opts.Clock = clock
	if opts.Codec == "" {
		opts.Codec = CodecWAV
	}
	if opts.Volume == 0 {
		opts.Volume = 1
	}

	tr := New(out, opts)
	if !tr.Usable() {
		t.Fatalf("transport unusable: %s", tr.Reason())
	}
	return tr, out, clock
}
