package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"github.com/chzyer/readline"
	log "github.com/sirupsen/logrus"

	"github.com/handiism/syncloop/internal/audio"
	"github.com/handiism/syncloop/internal/config"
	"github.com/handiism/syncloop/internal/http"
	ioutils "github.com/handiism/syncloop/internal/io"
	"github.com/handiism/syncloop/internal/loopdoc"
	"github.com/handiism/syncloop/internal/render"
	"github.com/handiism/syncloop/internal/session"
)

func main() {
	// Command line flags
	var (
		loopFlag     = flag.String("loop", "", "Loop document URL or path")
		configFlag   = flag.String("config", "", "Path to config file")
		trimFlag     = flag.String("trim", "", "Trim preset: none, lame or custom (overrides config)")
		durationFlag = flag.Duration("duration", 0, "Stop after this long (0 plays until interrupted)")
		snapshotFlag = flag.String("snapshot", "", "Directory to save a snapshot of the last frame to")
		consoleFlag  = flag.Bool("console", false, "Read commands (-, +, m, status, quit) from an interactive console")
		verboseFlag  = flag.Bool("verbose", false, "Show verbose output")
		dryRunFlag   = flag.Bool("dry-run", false, "Load the loop without playing it")
	)

	flag.Parse()

	location := *loopFlag
	if location == "" && flag.NArg() > 0 {
		location = flag.Arg(0)
	}

	if location == "" {
		fmt.Println("SyncLoop - Play animations locked to the beat of a looping song")
		fmt.Println()
		fmt.Println("Usage:")
		fmt.Println("  syncloop -loop <URL or path> [options]")
		fmt.Println("  syncloop <URL or path> [options]")
		fmt.Println()
		fmt.Println("For interactive mode, use: syncloop-tui")
		fmt.Println()
		flag.PrintDefaults()
		os.Exit(1)
	}

	log.SetFormatter(&log.TextFormatter{FullTimestamp: true, TimestampFormat: "15:04:05.000"})
	log.SetLevel(log.InfoLevel)
	if *verboseFlag {
		log.SetLevel(log.DebugLevel)
	}

	// Load config
	settings := config.DefaultSettings()
	if *configFlag != "" {
		var err error
		settings, err = config.Load(*configFlag)
		if err != nil {
			log.WithError(err).Fatal("Error loading config")
		}
	}

	// Apply flags
	if *trimFlag != "" {
		settings.TrimPreset = *trimFlag
	}

	// Handle interrupts
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	go func() {
		<-sigCh
		log.Info("Interrupted, stopping...")
		cancel()
	}()

	client := http.NewClient(settings.HTTPTimeout(), settings.UserAgent)

	loop, err := loopdoc.NewParser().Load(ctx, client, location)
	if err != nil {
		log.WithError(err).Fatal("Error loading loop document")
	}

	logger := log.WithField("loop", loop.DisplayTitle())

	speaker := audio.NewSpeaker()
	defer speaker.Close()

	s, err := session.New(loop, session.Options{
		Settings:   settings,
		Fetcher:    client,
		Transport:  audio.New(speaker, settings.ToTransportOptions()),
		OnProgress: func(event session.ProgressEvent) { logEvent(logger, event) },
	})
	if err != nil {
		logger.WithError(err).Fatal("Cannot play loop")
	}

	if err := s.Prepare(ctx); err != nil {
		if ctx.Err() != nil {
			logger.Info("Loading cancelled")
			os.Exit(130)
		}
		logger.WithError(err).Fatal("Error loading assets")
	}

	if tags := s.Tags(); !tags.IsZero() {
		logger.WithFields(log.Fields{
			"title":  tags.Title,
			"artist": tags.Artist,
			"album":  tags.Album,
			"bpm":    tags.BPM,
		}).Info("Song tags")
	}

	if *dryRunFlag {
		logger.Info("Dry run - not playing")
		return
	}

	if err := s.Start(); err != nil {
		logger.WithError(err).Fatal("Error starting playback")
	}

	if *durationFlag > 0 {
		time.AfterFunc(*durationFlag, cancel)
	}

	if *consoleFlag {
		go runConsole(ctx, cancel, s, logger)
	}

	runTicks(ctx, s, settings, logger)

	s.Stop()

	if *snapshotFlag != "" {
		if err := saveSnapshot(ctx, s, *snapshotFlag); err != nil {
			logger.WithError(err).Error("Error saving snapshot")
		}
	}
}

// runTicks drives the session at the configured tick rate until ctx is done.
func runTicks(ctx context.Context, s *session.Session, settings *config.Settings, logger *log.Entry) {
	ticker := time.NewTicker(settings.TickInterval())
	defer ticker.Stop()

	report := time.NewTicker(time.Second)
	defer report.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.Tick()
		case <-report.C:
			st := s.Status()
			logger.WithFields(log.Fields{
				"beat":  fmt.Sprintf("%.2f", st.SongBeat),
				"frame": st.Frame,
				"rate":  fmt.Sprintf("%.3f", st.PlaybackRate),
				"ticks": st.Ticks,
			}).Debug("Status")
		}
	}
}

// runConsole reads playback commands until quit, EOF or ctx is done.
func runConsole(ctx context.Context, cancel context.CancelFunc, s *session.Session, logger *log.Entry) {
	rl, err := readline.NewEx(&readline.Config{
		Prompt: ">> ",
		AutoComplete: readline.NewPrefixCompleter(
			readline.PcItem("status"),
			readline.PcItem("mute"),
			readline.PcItem("quit"),
		),
	})
	if err != nil {
		logger.WithError(err).Warn("Console unavailable")
		return
	}
	defer rl.Close()

	go func() {
		<-ctx.Done()
		rl.Close()
	}()

	fmt.Println("Commands: - (volume down), + (volume up), m (mute), status, quit")

	for {
		line, err := rl.Readline()
		if err == readline.ErrInterrupt || err == io.EOF {
			cancel()
			return
		}
		if err != nil {
			return
		}

		transport := s.Transport()
		switch strings.TrimSpace(line) {
		case "-":
			transport.DecreaseVolume()
			fmt.Printf("Volume: %.0f%%\n", transport.Volume()*100)
		case "+", "=":
			transport.IncreaseVolume()
			fmt.Printf("Volume: %.0f%%\n", transport.Volume()*100)
		case "m", "mute":
			transport.ToggleMute()
			fmt.Printf("Muted: %v\n", transport.Muted())
		case "status":
			st := s.Status()
			fmt.Printf("State: %s | Beat: %.2f | Frame: %d | Rate: %.3f | Volume: %.0f%%\n",
				s.State(), st.SongBeat, st.Frame+1, st.PlaybackRate, transport.Volume()*100)
		case "q", "quit", "exit":
			cancel()
			return
		case "":
		default:
			fmt.Printf("Unknown command %q\n", line)
		}
	}
}

// saveSnapshot writes the current canvas to dir as a PNG named after the loop.
func saveSnapshot(ctx context.Context, s *session.Session, dir string) error {
	canvas, ok := s.Surface().(*render.Canvas)
	if !ok || s.Player() != nil {
		return fmt.Errorf("loop has no canvas to snapshot")
	}

	data, err := ioutils.NewImageService().EncodeSnapshot(ctx, canvas.Snapshot(), ioutils.FormatPNG)
	if err != nil {
		return err
	}

	name := ioutils.SanitizeFileName(s.Loop().DisplayTitle())
	if name == "" {
		name = "snapshot"
	}
	path := filepath.Join(dir, name+".png")
	if err := ioutils.WriteFile(ctx, path, data); err != nil {
		return err
	}

	log.WithField("path", path).Info("Saved snapshot")
	return nil
}

// logEvent maps session progress levels onto log levels.
func logEvent(logger *log.Entry, event session.ProgressEvent) {
	switch event.Level {
	case session.LevelError:
		logger.Error(event.Message)
	case session.LevelWarning:
		logger.Warn(event.Message)
	case session.LevelSuccess:
		logger.WithField("status", "ok").Info(event.Message)
	case session.LevelInfo:
		logger.Info(event.Message)
	default:
		logger.Debug(event.Message)
	}
}
