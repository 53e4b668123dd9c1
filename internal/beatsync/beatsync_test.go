package beatsync

import (
	"errors"
	"image"
	"math"
	"math/rand"
	"reflect"
	"testing"
)

func TestBuildFrameSequence(t *testing.T) {
	tests := []struct {
		name string
		cfg  LoopConfig
		want []int
	}{
		{"plain", LoopConfig{FrameCount: 4}, []int{0, 1, 2, 3}},
		{"forward then back", LoopConfig{FrameCount: 4, FrameKeyframes: []int{1, 4, 2}}, []int{0, 1, 2, 3, 2, 1}},
		{"reverse only", LoopConfig{FrameCount: 5, FrameKeyframes: []int{5, 1}}, []int{4, 3, 2, 1, 0}},
		{"single keyframe", LoopConfig{FrameCount: 5, FrameKeyframes: []int{3}}, []int{2}},
		{"repeated keyframe", LoopConfig{FrameCount: 5, FrameKeyframes: []int{2, 2, 3}}, []int{1, 2}},
		{"pingpong", LoopConfig{FrameCount: 4, Pingpong: true}, []int{0, 1, 2, 3, 2, 1}},
		{"pingpong of two", LoopConfig{FrameCount: 2, Pingpong: true}, []int{0, 1}},
		{"pingpong of one", LoopConfig{FrameCount: 1, Pingpong: true}, []int{0}},
		{"keyframes and pingpong", LoopConfig{FrameCount: 6, FrameKeyframes: []int{2, 5}, Pingpong: true}, []int{1, 2, 3, 4, 3, 2}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := BuildFrameSequence(tt.cfg)
			if err != nil {
				t.Fatalf("BuildFrameSequence() error = %v", err)
			}
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("BuildFrameSequence() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestBuildFrameSequence_Empty(t *testing.T) {
	_, err := BuildFrameSequence(LoopConfig{FrameCount: 0})
	if !errors.Is(err, ErrConfigurationInvalid) {
		t.Errorf("error = %v, want ErrConfigurationInvalid", err)
	}
}

func TestBuildFrameSequence_ValidFrames(t *testing.T) {
	rng := rand.New(rand.NewSource(1))

	for i := 0; i < 200; i++ {
		frames := 1 + rng.Intn(20)
		cfg := LoopConfig{FrameCount: frames, Pingpong: rng.Intn(2) == 0}
		for k := rng.Intn(5); k > 0; k-- {
			cfg.FrameKeyframes = append(cfg.FrameKeyframes, 1+rng.Intn(frames))
		}

		seq, err := BuildFrameSequence(cfg)
		if err != nil {
			t.Fatalf("%+v: error = %v", cfg, err)
		}
		if len(seq) < 1 {
			t.Fatalf("%+v: empty sequence", cfg)
		}
		for _, f := range seq {
			if f < 0 || f >= frames {
				t.Fatalf("%+v: frame %d outside [0,%d)", cfg, f, frames)
			}
		}
	}
}

func TestPingpong_Palindrome(t *testing.T) {
	for n := 3; n <= 12; n++ {
		base, _ := BuildFrameSequence(LoopConfig{FrameCount: n})
		got, _ := BuildFrameSequence(LoopConfig{FrameCount: n, Pingpong: true})

		if len(got) != 2*n-2 {
			t.Errorf("n=%d: len = %d, want %d", n, len(got), 2*n-2)
		}
		if !reflect.DeepEqual(got[:n], base) {
			t.Errorf("n=%d: prefix = %v, want %v", n, got[:n], base)
		}
		// cyclic palindrome: reading backwards from 0 gives the same loop
		for i := range got {
			if got[i] != got[(len(got)-i)%len(got)] {
				t.Errorf("n=%d: %v is not a cyclic palindrome", n, got)
				break
			}
		}
	}
}

func TestBuildBeatTimeline(t *testing.T) {
	seq8 := []int{0, 1, 2, 3, 4, 5, 6, 7}

	tests := []struct {
		name  string
		beats []int
		seq   []int
		want  [][]int
	}{
		{"no beats", nil, seq8, nil},
		{"starts at first position", []int{1, 5}, seq8, [][]int{{0, 1, 2, 3}, {4, 5, 6, 7}}},
		{"last range wraps", []int{2, 6}, seq8, [][]int{{1, 2, 3, 4}, {5, 6, 7, 0}}},
		{"single beat wraps fully", []int{3}, []int{9, 8, 7, 6, 5}, [][]int{{2, 3, 4, 0, 1}}},
		{"uneven", []int{1, 2, 7}, seq8, [][]int{{0}, {1, 2, 3, 4, 5}, {6, 7}}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := BuildBeatTimeline(tt.beats, tt.seq)
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("BuildBeatTimeline() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestBuildBeatTimeline_CoversEveryPositionOnce(t *testing.T) {
	seq := make([]int, 12)
	timeline := BuildBeatTimeline([]int{3, 4, 9}, seq)

	seen := make(map[int]int)
	for _, positions := range timeline {
		if len(positions) == 0 {
			t.Error("empty beat range")
		}
		for _, p := range positions {
			seen[p]++
		}
	}
	for p := range seq {
		if seen[p] != 1 {
			t.Errorf("position %d covered %d times", p, seen[p])
		}
	}
}

func TestBeatTracker_Beatmap(t *testing.T) {
	tracker := NewBeatTracker(LoopConfig{Beatmap: ".xx."})

	steps := []struct {
		progress   float64
		want       float64
		wantOffset int
	}{
		{0, 0, 0},       // raw beat 0 lies in a skip beat
		{0.125, 0, 0},   // raw 0.5 truncated
		{0.25, 0, 1},    // beat 0 crossed
		{0.375, 0.5, 1}, // raw 1.5
		{0.625, 1.5, 1}, // raw 2.5
		{0.8, 2, 1},     // raw 3.2 truncated in skip beat 3
		{0.95, 2, 1},    // raw 3.8 truncated
		{1, 2, 2},       // second loop: raw 4, beat 3 crossed, beat 0 is a skip
		{1.125, 2, 2},   // raw 4.5 truncated
		{1.375, 2.5, 3}, // raw 5.5
	}

	for i, s := range steps {
		got := tracker.Position(s.progress)
		if math.Abs(got-s.want) > 1e-9 {
			t.Errorf("step %d: Position(%v) = %v, want %v", i, s.progress, got, s.want)
		}
		if tracker.Offset() != s.wantOffset {
			t.Errorf("step %d: Offset() = %d, want %d", i, tracker.Offset(), s.wantOffset)
		}
	}

	if tracker.Loops() != 1 {
		t.Errorf("Loops() = %d, want 1", tracker.Loops())
	}

	tracker.Reset()
	if got := tracker.Position(0.375); got != 0.5 || tracker.Offset() != 1 {
		t.Errorf("after Reset: Position = %v offset %d, want 0.5 offset 1", got, tracker.Offset())
	}
}

func TestBeatTracker_NoBeatmap(t *testing.T) {
	tracker := NewBeatTracker(LoopConfig{SongBeatsPerLoop: 8})

	if got := tracker.Position(0.5); got != 4 {
		t.Errorf("Position(0.5) = %v, want 4", got)
	}
	if got := tracker.Position(1.25); got != 10 {
		t.Errorf("Position(1.25) = %v, want 10", got)
	}
}

func TestBeatTracker_StalledTicks(t *testing.T) {
	tests := []struct {
		name       string
		beatmap    string
		progress   []float64
		want       float64
		wantLoops  int
		wantOffset int
	}{
		{
			name:      "no beatmap, more than a loop between ticks",
			progress:  []float64{0.5, 1.75},
			want:      7,
			wantLoops: 1,
		},
		{
			name:      "no beatmap, several loops between ticks",
			progress:  []float64{0.1, 3.5},
			want:      14,
			wantLoops: 3,
		},
		{
			name:       "beatmap skips of every missed loop are counted",
			beatmap:    ".xx.",
			progress:   []float64{0.375, 2.375},
			want:       4.5, // raw 9.5, five skip beats consumed
			wantLoops:  2,
			wantOffset: 5,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tracker := NewBeatTracker(LoopConfig{SongBeatsPerLoop: 4, Beatmap: tt.beatmap})
			var got float64
			for _, p := range tt.progress {
				got = tracker.Position(p)
			}
			if math.Abs(got-tt.want) > 1e-9 {
				t.Errorf("Position() = %v, want %v", got, tt.want)
			}
			if tracker.Loops() != tt.wantLoops {
				t.Errorf("Loops() = %d, want %d", tracker.Loops(), tt.wantLoops)
			}
			if tracker.Offset() != tt.wantOffset {
				t.Errorf("Offset() = %d, want %d", tracker.Offset(), tt.wantOffset)
			}
		})
	}
}

func TestBeatTracker_Monotonic(t *testing.T) {
	rng := rand.New(rand.NewSource(7))
	maps := []string{".", "x", ".xx.", "x...", "x.x.x.x.", "..x", "x..xx...x"}

	for _, beatmap := range maps {
		tracker := NewBeatTracker(LoopConfig{Beatmap: beatmap})
		prev := math.Inf(-1)
		raw := 0.0
		for i := 0; i < 2000; i++ {
			raw += rng.Float64() * 0.3
			got := tracker.Adjust(raw)
			if got < prev {
				t.Fatalf("beatmap %q: output decreased from %v to %v at raw %v", beatmap, prev, got, raw)
			}
			prev = got
		}
	}
}

func TestFrameIndexFor_Scenario(t *testing.T) {
	tests := []struct {
		beat float64
		want int
	}{
		{0, 0},
		{1.5, 3},
		{3.99, 7},
		{4, 0},
		{-0.5, 7},
	}

	for _, tt := range tests {
		if got := FrameIndexFor(tt.beat, 8, 4, nil, 0); got != tt.want {
			t.Errorf("FrameIndexFor(%v) = %d, want %d", tt.beat, got, tt.want)
		}
	}
}

func TestFrameIndexFor_RoundTrip(t *testing.T) {
	for seqLen := 1; seqLen <= 30; seqLen++ {
		for beats := 1; beats <= 12; beats++ {
			for k := 0; k < beats; k++ {
				want := seqLen * k / beats
				if got := FrameIndexFor(float64(k), seqLen, beats, nil, 0); got != want {
					t.Errorf("len=%d beats=%d k=%d: got %d, want %d", seqLen, beats, k, got, want)
				}
			}
		}
	}
}

func TestFrameIndexFor_Total(t *testing.T) {
	seq := []int{0, 1, 2, 3, 4, 5, 6, 7}
	timeline := BuildBeatTimeline([]int{2, 6}, seq)
	beats := []float64{0, -0.0001, -3.7, -1e9, 1e9, 123.456, 1e300, -1e300, math.NaN(), math.Inf(1), math.Inf(-1)}

	for _, tl := range [][][]int{nil, timeline} {
		for _, offset := range []int{0, 3, -11} {
			for _, b := range beats {
				got := FrameIndexFor(b, len(seq), 2, tl, offset)
				if got < 0 || got >= len(seq) {
					t.Errorf("FrameIndexFor(%v, offset %d) = %d, outside [0,8)", b, offset, got)
				}
			}
		}
	}
}

func TestFrameIndexFor_Timeline(t *testing.T) {
	seq := []int{0, 1, 2, 3, 4, 5, 6, 7}
	timeline := BuildBeatTimeline([]int{2, 6}, seq)

	tests := []struct {
		name   string
		beat   float64
		offset int
		want   int
	}{
		{"beat 0 start", 0, 0, 1},
		{"beat 0 last quarter", 0.75, 0, 4},
		{"beat 1 start", 1, 0, 5},
		{"beat 1 wraps to start", 1.9, 0, 0},
		{"next loop", 2.25, 0, 2},
		{"negative beat", -0.1, 0, 0},
		{"offset", 1, 2, 7},
		{"offset wraps", 1.5, 2, 1},
		{"negative offset", 0, -3, 6},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := FrameIndexFor(tt.beat, len(seq), 2, timeline, tt.offset); got != tt.want {
				t.Errorf("FrameIndexFor(%v) = %d, want %d", tt.beat, got, tt.want)
			}
		})
	}
}

func TestVideoTarget(t *testing.T) {
	tests := []struct {
		name   string
		beat   float64
		offset float64
		want   float64
	}{
		{"first beat", 1, 0, 2},
		{"second loop", 5, 0, 2},
		{"offset", 1, 1, 3},
		{"negative beat", -1, 0, 6},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := VideoTarget(tt.beat, 8, 4, tt.offset); math.Abs(got-tt.want) > 1e-9 {
				t.Errorf("VideoTarget() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestCorrectPlaybackRate(t *testing.T) {
	tests := []struct {
		name    string
		current float64
		target  float64
		base    float64
		want    float64
	}{
		{"in sync", 4, 4, 1, 1},
		{"ten percent ahead", 1, 0, 1, 0.5},
		{"thirty percent ahead clamps", 3, 0, 1, 0},
		{"ten percent behind", 0, 1, 1, 1.5},
		{"behind across the loop end", 9.5, 0.5, 1, 1.5},
		{"ahead across the loop end", 0.5, 9.5, 1, 0.5},
		{"scaled base rate", 1, 0, 2, 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := CorrectPlaybackRate(tt.current, tt.target, 10, tt.base, DefaultDriftGain)
			if math.Abs(got-tt.want) > 1e-9 {
				t.Errorf("CorrectPlaybackRate() = %v, want %v", got, tt.want)
			}
			if got < 0 {
				t.Errorf("negative rate %v", got)
			}
		})
	}
}

func TestLoopConfig_Validate(t *testing.T) {
	tests := []struct {
		name    string
		cfg     LoopConfig
		wantErr bool
	}{
		{"minimal", LoopConfig{SongBeatsPerLoop: 4, AnimationBeatsPerLoop: 4, FrameCount: 8}, false},
		{"derived from beatmap and beats", LoopConfig{Beatmap: "x.x.", Beats: []int{1, 5}, FrameCount: 8}, false},
		{"video", LoopConfig{SongBeatsPerLoop: 4, AnimationBeatsPerLoop: 2, VideoMode: true, VideoDuration: 3}, false},
		{"no song beats", LoopConfig{AnimationBeatsPerLoop: 4, FrameCount: 8}, true},
		{"negative song beats", LoopConfig{SongBeatsPerLoop: -1, Beatmap: "xx", AnimationBeatsPerLoop: 4, FrameCount: 8}, true},
		{"beatmap length mismatch", LoopConfig{SongBeatsPerLoop: 4, Beatmap: "x.x", AnimationBeatsPerLoop: 4, FrameCount: 8}, true},
		{"no animation beats", LoopConfig{SongBeatsPerLoop: 4, FrameCount: 8}, true},
		{"beats count mismatch", LoopConfig{SongBeatsPerLoop: 4, AnimationBeatsPerLoop: 3, Beats: []int{1, 5}, FrameCount: 8}, true},
		{"no frames", LoopConfig{SongBeatsPerLoop: 4, AnimationBeatsPerLoop: 4}, true},
		{"keyframe out of range", LoopConfig{SongBeatsPerLoop: 4, AnimationBeatsPerLoop: 4, FrameCount: 8, FrameKeyframes: []int{1, 9}}, true},
		{"keyframe zero", LoopConfig{SongBeatsPerLoop: 4, AnimationBeatsPerLoop: 4, FrameCount: 8, FrameKeyframes: []int{0, 3}}, true},
		{"beats not increasing", LoopConfig{SongBeatsPerLoop: 4, Beats: []int{5, 1}, FrameCount: 8}, true},
		{"beats past sequence", LoopConfig{SongBeatsPerLoop: 4, Beats: []int{1, 9}, FrameCount: 8}, true},
		{"beats within pingpong sequence", LoopConfig{SongBeatsPerLoop: 4, Beats: []int{1, 9}, FrameCount: 8, Pingpong: true}, false},
		{"video without duration", LoopConfig{SongBeatsPerLoop: 4, AnimationBeatsPerLoop: 2, VideoMode: true}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.cfg.Validate()
			if (err != nil) != tt.wantErr {
				t.Fatalf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
			if err != nil && !errors.Is(err, ErrConfigurationInvalid) {
				t.Errorf("Validate() error = %v, want ErrConfigurationInvalid", err)
			}
		})
	}
}

type fakeSource struct {
	playing  bool
	progress float64
}

func (s *fakeSource) Playing() bool     { return s.playing }
func (s *fakeSource) Progress() float64 { return s.progress }

type fakeSurface struct {
	clears int
	drawn  []image.Image
}

func (s *fakeSurface) Clear()               { s.clears++ }
func (s *fakeSurface) Draw(img image.Image) { s.drawn = append(s.drawn, img) }

func testFrames(n int) []image.Image {
	frames := make([]image.Image, n)
	for i := range frames {
		frames[i] = image.NewRGBA(image.Rect(0, 0, i+1, 1))
	}
	return frames
}

func TestEngine_FrameModeTick(t *testing.T) {
	surface := &fakeSurface{}
	frames := testFrames(8)
	cfg := LoopConfig{SongBeatsPerLoop: 4, AnimationBeatsPerLoop: 4, FrameCount: 8}

	e, err := NewEngine(cfg, NewFrameMode(surface, frames))
	if err != nil {
		t.Fatalf("NewEngine() error = %v", err)
	}

	src := &fakeSource{progress: 0.5}
	e.Tick(src)
	if len(surface.drawn) != 0 {
		t.Fatal("Tick drew while not playing")
	}

	src.playing = true
	src.progress = 0
	e.Tick(src)
	e.Tick(src)          // same frame, no redraw
	src.progress = 0.375 // beat 1.5
	e.Tick(src)

	if len(surface.drawn) != 2 || surface.clears != 2 {
		t.Fatalf("draws = %d clears = %d, want 2 and 2", len(surface.drawn), surface.clears)
	}
	if surface.drawn[0] != frames[0] || surface.drawn[1] != frames[3] {
		t.Error("drew the wrong frames")
	}

	st := e.Status()
	if st.Frame != 3 || st.Position != 3 || st.SongBeat != 1.5 || st.Ticks != 3 {
		t.Errorf("Status() = %+v", st)
	}

	e.Reset()
	src.progress = 0.375
	e.Tick(src)
	if len(surface.drawn) != 3 {
		t.Error("Reset did not force a redraw")
	}
}

func TestEngine_DrawsAssetFrameOfPosition(t *testing.T) {
	surface := &fakeSurface{}
	frames := testFrames(4)
	cfg := LoopConfig{SongBeatsPerLoop: 6, AnimationBeatsPerLoop: 6, FrameCount: 4, Pingpong: true}

	e, err := NewEngine(cfg, NewFrameMode(surface, frames))
	if err != nil {
		t.Fatalf("NewEngine() error = %v", err)
	}

	// sequence 0 1 2 3 2 1; beat 4.2 is position 4, asset frame 2
	e.Tick(&fakeSource{playing: true, progress: 0.7})
	if st := e.Status(); st.Position != 4 || st.Frame != 2 {
		t.Errorf("Status() = %+v, want position 4 frame 2", st)
	}
	if surface.drawn[0] != frames[2] {
		t.Error("drew the wrong frame")
	}
}

func TestEngine_TicksMoreThanALoopApart(t *testing.T) {
	tests := []struct {
		name      string
		progress  []float64
		wantBeat  float64
		wantFrame int
	}{
		{"one loop missed", []float64{0.5, 1.75}, 7, 14},
		{"several loops missed", []float64{0.25, 4.5}, 18, 4},
		{"first tick late", []float64{2.25}, 9, 2},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := LoopConfig{SongBeatsPerLoop: 4, AnimationBeatsPerLoop: 8, FrameCount: 16}
			e, err := NewEngine(cfg, NewFrameMode(&fakeSurface{}, testFrames(16)))
			if err != nil {
				t.Fatalf("NewEngine() error = %v", err)
			}

			src := &fakeSource{playing: true}
			for _, p := range tt.progress {
				src.progress = p
				e.Tick(src)
			}

			st := e.Status()
			if math.Abs(st.SongBeat-tt.wantBeat) > 1e-9 || st.Frame != tt.wantFrame {
				t.Errorf("Status() = %+v, want song beat %v frame %d", st, tt.wantBeat, tt.wantFrame)
			}
		})
	}
}

type fakePlayer struct {
	duration float64
	current  float64
	rates    []float64
}

func (p *fakePlayer) Duration() float64         { return p.duration }
func (p *fakePlayer) CurrentTime() float64      { return p.current }
func (p *fakePlayer) SetPlaybackRate(r float64) { p.rates = append(p.rates, r) }

func TestEngine_VideoModeTick(t *testing.T) {
	player := &fakePlayer{duration: 10, current: 1}
	cfg := LoopConfig{SongBeatsPerLoop: 4, AnimationBeatsPerLoop: 4, VideoMode: true, VideoDuration: 10}

	e, err := NewEngine(cfg, NewVideoMode(player, 1, 0))
	if err != nil {
		t.Fatalf("NewEngine() error = %v", err)
	}

	e.Tick(&fakeSource{playing: true, progress: 0})
	if len(player.rates) != 1 || math.Abs(player.rates[0]-0.5) > 1e-9 {
		t.Errorf("rates = %v, want [0.5]", player.rates)
	}
	if st := e.Status(); st.PlaybackRate != player.rates[0] || st.VideoTarget != 0 {
		t.Errorf("Status() = %+v", st)
	}

	e.Tick(&fakeSource{playing: false})
	if len(player.rates) != 1 {
		t.Error("Tick adjusted rate while not playing")
	}
}

func TestNewEngine_Rejects(t *testing.T) {
	imageCfg := LoopConfig{SongBeatsPerLoop: 4, AnimationBeatsPerLoop: 4, FrameCount: 8}
	videoCfg := LoopConfig{SongBeatsPerLoop: 4, AnimationBeatsPerLoop: 4, VideoMode: true, VideoDuration: 2}

	tests := []struct {
		name string
		cfg  LoopConfig
		mode Mode
	}{
		{"invalid config", LoopConfig{}, NewFrameMode(&fakeSurface{}, nil)},
		{"too few frames", imageCfg, NewFrameMode(&fakeSurface{}, testFrames(3))},
		{"video mode for images", imageCfg, NewVideoMode(&fakePlayer{duration: 2}, 1, 5)},
		{"frame mode for video", videoCfg, NewFrameMode(&fakeSurface{}, testFrames(8))},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := NewEngine(tt.cfg, tt.mode); !errors.Is(err, ErrConfigurationInvalid) {
				t.Errorf("NewEngine() error = %v, want ErrConfigurationInvalid", err)
			}
		})
	}
}
