package session

import (
	"context"
	"errors"
	"fmt"
	"image"
	"math"
	"sync"

	"github.com/handiism/syncloop/internal/audio"
	"github.com/handiism/syncloop/internal/beatsync"
	"github.com/handiism/syncloop/internal/config"
	"github.com/handiism/syncloop/internal/http"
	ioutils "github.com/handiism/syncloop/internal/io"
	"github.com/handiism/syncloop/internal/model"
	"github.com/handiism/syncloop/internal/render"
	"github.com/handiism/syncloop/internal/video"
	"golang.org/x/sync/errgroup"
)

var (
	// ErrCapabilityUnsupported is returned when the host cannot play the
	// loop: no usable audio transport, or a video host without playback
	// rate control for a video loop.
	ErrCapabilityUnsupported = errors.New("capability unsupported")

	// ErrNotReady is returned by Start before Prepare succeeded.
	ErrNotReady = errors.New("session not ready")
)

// ProgressLevel indicates the severity/type of a progress message.
type ProgressLevel int

const (
	LevelInfo ProgressLevel = iota
	LevelVerbose
	LevelWarning
	LevelError
	LevelSuccess
)

// ProgressEvent represents a session progress update.
type ProgressEvent struct {
	Message string
	Level   ProgressLevel
}

// State is the lifecycle state of a Session.
type State int

const (
	// StateIdle means assets are not loaded yet.
	StateIdle State = iota

	// StateReady means every asset is loaded and the engine is built.
	StateReady

	// StateRunning means the song is playing and ticks render.
	StateRunning
)

// String returns the lowercase state name.
func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateReady:
		return "ready"
	case StateRunning:
		return "running"
	default:
		return "unknown"
	}
}

// Fetcher reads an asset location into memory.
type Fetcher interface {
	Fetch(ctx context.Context, location string, onProgress func(read, total int64)) ([]byte, error)
}

// VideoHost opens video players for fetched video assets.
type VideoHost interface {
	// SupportsPlaybackRate reports whether opened players accept rate changes.
	SupportsPlaybackRate() bool

	// Open creates a player for a video asset of duration seconds.
	Open(data []byte, duration float64) (*video.Player, error)
}

// Options configures a Session. Zero fields get defaults built from
// Settings.
type Options struct {
	Settings   *config.Settings
	Fetcher    Fetcher
	Transport  *audio.Transport
	Surface    beatsync.Surface
	VideoHost  VideoHost
	OnProgress func(ProgressEvent)
}

// Session loads a loop's assets and runs its sync engine against the
// audio transport.
type Session struct {
	loop         *model.Loop
	cfg          beatsync.LoopConfig
	settings     *config.Settings
	fetcher      Fetcher
	transport    *audio.Transport
	surface      beatsync.Surface
	videoHost    VideoHost
	imageService *ioutils.ImageService

	state     State
	songData  []byte
	tags      audio.Tags
	frames    []image.Image
	player    *video.Player
	engine    *beatsync.Engine
	status    beatsync.Status
	fractions []float64

	onProgress func(ProgressEvent)
	mu         sync.RWMutex

	// tickMu serializes engine access. Surfaces run under it, so nothing
	// reachable from a Surface may take it.
	tickMu sync.Mutex
}

// New creates a Session for loop.
//
// Capabilities are checked before the loop configuration, and both before
// anything is loaded: an unusable transport, or a video loop on a host
// without playback rate control, fails with ErrCapabilityUnsupported; an
// invalid configuration fails with beatsync.ErrConfigurationInvalid.
func New(loop *model.Loop, opts Options) (*Session, error) {
	if loop == nil {
		return nil, errors.New("nil loop")
	}

	settings := opts.Settings
	if settings == nil {
		settings = config.DefaultSettings()
	}

	transport := opts.Transport
	if transport == nil {
		transport = audio.New(audio.NewSpeaker(), settings.ToTransportOptions())
	}
	if !transport.Usable() {
		return nil, fmt.Errorf("%w: %s", ErrCapabilityUnsupported, transport.Reason())
	}

	videoHost := opts.VideoHost
	if videoHost == nil {
		videoHost = video.NewHost(nil)
	}

	cfg := loop.ToLoopConfig()
	if cfg.VideoMode && !videoHost.SupportsPlaybackRate() {
		return nil, fmt.Errorf("%w: video playback rate control", ErrCapabilityUnsupported)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	fetcher := opts.Fetcher
	if fetcher == nil {
		fetcher = http.NewClient(settings.HTTPTimeout(), settings.UserAgent)
	}

	surface := opts.Surface
	if surface == nil {
		surface = render.NewCanvas(settings.CanvasWidth, settings.CanvasHeight, render.ScalerByName(settings.Scaler))
	}

	return &Session{
		loop:         loop,
		cfg:          cfg,
		settings:     settings,
		fetcher:      fetcher,
		transport:    transport,
		surface:      surface,
		videoHost:    videoHost,
		imageService: ioutils.NewImageService(),
		fractions:    make([]float64, loop.AssetCount()),
		onProgress:   opts.OnProgress,
	}, nil
}

// Prepare fetches the song and every frame (or the video) concurrently,
// decodes the frames, and builds the sync engine.
//
// The session becomes Ready once every load has finished. If any load
// fails, the error is returned and the session stays Idle. Calling Prepare
// on a prepared session does nothing.
func (s *Session) Prepare(ctx context.Context) error {
	if s.State() != StateIdle {
		return nil
	}

	s.mu.Lock()
	for i := range s.fractions {
		s.fractions[i] = 0
	}
	s.mu.Unlock()

	locations := s.loop.FrameLocations()
	frames := make([]image.Image, len(locations))
	var songData []byte
	var player *video.Player

	s.progress(ProgressEvent{Message: fmt.Sprintf("Loading %d assets for %s", len(s.fractions), s.loop.DisplayTitle()), Level: LevelInfo})

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(max(s.settings.MaxConcurrentLoads, 1))

	g.Go(func() error {
		data, err := s.fetcher.Fetch(ctx, s.loop.Song.Location, func(read, total int64) {
			if total > 0 {
				s.setFraction(0, float64(read)/float64(total))
			}
		})
		if err != nil {
			return fmt.Errorf("song %s: %w", s.loop.Song.Location, err)
		}
		songData = data
		s.setFraction(0, 1)
		s.progress(ProgressEvent{Message: fmt.Sprintf("Loaded song: %s", s.loop.Song.Location), Level: LevelVerbose})
		return nil
	})

	if s.loop.HasVideo() {
		v := s.loop.Animation.Video
		g.Go(func() error {
			data, err := s.fetcher.Fetch(ctx, v.Location, nil)
			if err != nil {
				return fmt.Errorf("video %s: %w", v.Location, err)
			}
			p, err := s.videoHost.Open(data, v.Duration)
			if err != nil {
				return fmt.Errorf("video %s: %w", v.Location, err)
			}
			player = p
			s.setFraction(1, 1)
			s.progress(ProgressEvent{Message: fmt.Sprintf("Loaded video: %s", v.Location), Level: LevelVerbose})
			return nil
		})
	}

	for i, location := range locations {
		i, location := i, location
		g.Go(func() error {
			data, err := s.fetcher.Fetch(ctx, location, nil)
			if err != nil {
				return fmt.Errorf("frame %d: %w", i+1, err)
			}
			img, err := s.imageService.DecodeFrame(ctx, data, s.settings.MaxFrameSize)
			if err != nil {
				return fmt.Errorf("frame %d: %w", i+1, err)
			}
			frames[i] = img
			s.setFraction(i+1, 1)
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		s.progress(ProgressEvent{Message: fmt.Sprintf("Error loading %s: %v", s.loop.DisplayTitle(), err), Level: LevelError})
		return err
	}

	tags, err := audio.ReadTags(songData)
	if err != nil {
		s.progress(ProgressEvent{Message: fmt.Sprintf("Error reading song tags: %v", err), Level: LevelWarning})
	}

	var mode beatsync.Mode
	if player != nil {
		mode = beatsync.NewVideoMode(player, s.settings.BasePlaybackRate, s.settings.DriftGain)
	} else {
		if canvas, ok := s.surface.(*render.Canvas); ok && len(frames) > 0 {
			canvas.ResizeToFit(frames[0], s.settings.CanvasWidth, s.settings.CanvasHeight)
		}
		mode = beatsync.NewFrameMode(s.surface, frames)
	}

	engine, err := beatsync.NewEngine(s.cfg, mode)
	if err != nil {
		s.progress(ProgressEvent{Message: fmt.Sprintf("Error building engine: %v", err), Level: LevelError})
		return err
	}

	s.mu.Lock()
	s.songData = songData
	s.tags = tags
	s.frames = frames
	s.player = player
	s.engine = engine
	s.status = beatsync.Status{}
	s.state = StateReady
	s.mu.Unlock()

	s.progress(ProgressEvent{Message: fmt.Sprintf("Loaded %s (%d assets)", s.loop.DisplayTitle(), len(s.fractions)), Level: LevelSuccess})
	return nil
}

// Start decodes the song and starts the loop.
//
// The session is Running once the transport reports playback has started.
// A decode failure is reported, returned, and leaves the session Ready.
// Calling Start on a running session does nothing.
func (s *Session) Start() error {
	s.mu.RLock()
	state := s.state
	data := s.songData
	player := s.player
	engine := s.engine
	s.mu.RUnlock()

	switch state {
	case StateRunning:
		return nil
	case StateIdle:
		return ErrNotReady
	}

	buf, err := s.transport.Load(data)
	if err != nil {
		s.progress(ProgressEvent{Message: fmt.Sprintf("Error decoding song: %v", err), Level: LevelError})
		return err
	}

	trimmed := s.transport.Trim(buf)
	if trimmed.Len() != buf.Len() {
		s.progress(ProgressEvent{Message: fmt.Sprintf("Trimmed %d samples of encoder padding", buf.Len()-trimmed.Len()), Level: LevelVerbose})
	}

	s.tickMu.Lock()
	engine.Reset()
	s.tickMu.Unlock()

	s.mu.Lock()
	s.status = beatsync.Status{}
	s.mu.Unlock()

	if player != nil {
		player.Play()
	}

	s.transport.Play(trimmed, func() {
		s.mu.Lock()
		s.state = StateRunning
		s.mu.Unlock()
		s.progress(ProgressEvent{Message: fmt.Sprintf("Playing %s", s.loop.DisplayTitle()), Level: LevelSuccess})
	})

	return nil
}

// Tick advances the sync engine by one frame. It does nothing unless the
// session is Running.
//
// The session lock is not held while the engine renders, so a Surface may
// call Stop, State or Status from inside a tick.
func (s *Session) Tick() {
	s.tickMu.Lock()
	defer s.tickMu.Unlock()

	s.mu.RLock()
	running := s.state == StateRunning
	engine := s.engine
	s.mu.RUnlock()

	if !running {
		return
	}
	engine.Tick(s.transport)
	status := engine.Status()

	s.mu.Lock()
	s.status = status
	s.mu.Unlock()
}

// Stop halts playback and returns a running session to Ready. Calling Stop
// when not running does nothing. Stop may be called from inside a tick;
// the engine is rewound by the next Start.
func (s *Session) Stop() {
	s.mu.Lock()
	if s.state != StateRunning {
		s.mu.Unlock()
		return
	}
	s.state = StateReady
	player := s.player
	s.mu.Unlock()

	s.transport.Stop()
	if player != nil {
		player.Pause()
	}

	s.progress(ProgressEvent{Message: fmt.Sprintf("Stopped %s", s.loop.DisplayTitle()), Level: LevelInfo})
}

// State returns the lifecycle state.
func (s *Session) State() State {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.state
}

// Progress returns the load progress in [0,1]: the mean of the per-asset
// fractions.
func (s *Session) Progress() float64 {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if len(s.fractions) == 0 {
		return 0
	}
	var sum float64
	for _, f := range s.fractions {
		sum += f
	}
	return sum / float64(len(s.fractions))
}

// Status returns the engine status of the last tick.
func (s *Session) Status() beatsync.Status {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.status
}

// Tags returns the song's ID3 tags, once prepared.
func (s *Session) Tags() audio.Tags {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.tags
}

// Transport returns the audio transport.
func (s *Session) Transport() *audio.Transport {
	return s.transport
}

// Surface returns the drawing surface of image-sequence loops.
func (s *Session) Surface() beatsync.Surface {
	return s.surface
}

// Player returns the video player of video loops, or nil.
func (s *Session) Player() *video.Player {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.player
}

// Loop returns the loop being played.
func (s *Session) Loop() *model.Loop {
	return s.loop
}

func (s *Session) setFraction(i int, f float64) {
	s.mu.Lock()
	s.fractions[i] = math.Max(0, math.Min(1, f))
	s.mu.Unlock()
}

func (s *Session) progress(event ProgressEvent) {
	if s.onProgress != nil {
		s.onProgress(event)
	}
}
