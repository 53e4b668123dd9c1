// Package session provides the orchestration logic that turns a loop
// definition into a running, beat-synchronized visual.
//
// # Session
//
// The Session coordinates the whole lifecycle:
//
//  1. Check host capabilities and validate the loop configuration
//  2. Fetch the song and every frame (or the video) concurrently
//  3. Decode frames and read the song's ID3 tags
//  4. Build the sync engine
//  5. Decode, trim and start the song
//  6. Tick the engine from the host's render loop
//
// # Basic Usage
//
//	s, err := session.New(loop, session.Options{
//	    Settings: settings,
//	    OnProgress: func(event session.ProgressEvent) {
//	        fmt.Println(event.Message)
//	    },
//	})
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	if err := s.Prepare(ctx); err != nil {
//	    log.Fatal(err)
//	}
//	if err := s.Start(); err != nil {
//	    log.Fatal(err)
//	}
//
//	for range time.Tick(settings.TickInterval()) {
//	    s.Tick()
//	}
//
// # States
//
// A session moves Idle -> Ready on a successful Prepare, Ready -> Running
// once playback has started, and back to Ready on Stop.
//
// # Concurrency
//
// Assets load in parallel, limited by settings.MaxConcurrentLoads.
// Load progress is the mean of the per-asset fractions; the song reports
// byte-level progress, the other assets complete in one step.
//
// # Progress Tracking
//
// Progress is reported via a callback function that receives ProgressEvent:
//
//	type ProgressEvent struct {
//	    Message string
//	    Level   ProgressLevel // Info, Verbose, Warning, Error, Success
//	}
//
// # Failures
//
// A failed fetch cancels the remaining loads and Prepare returns its error.
// Nothing is retried; a host calls Prepare again to recover.
package session
