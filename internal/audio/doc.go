// Package audio provides the audio transport of a sync loop: decoding,
// looping playback, volume control, and the authoritative playback clock.
//
// # Transport
//
// A Transport wraps an Output (the system speaker in production) and a
// Clock. It is created once per process and checked before use:
//
//	t := audio.New(audio.NewSpeaker(), opts)
//	if !t.Usable() {
//	    log.Fatal(t.Reason())
//	}
//
//	buf, err := t.Load(data)
//	if err != nil {
//	    // errors.Is(err, audio.ErrDecodeFailure)
//	}
//	t.Play(t.Trim(buf), func() {
//	    fmt.Println("playing")
//	})
//
// Playback always loops. Progress grows without bound across loops, while
// Phase is the position within the current loop in [0,1).
//
// # Codecs
//
// MP3 and WAV are registered. The codec of a byte slice is sniffed from
// its header, so asset file extensions are never trusted.
//
// # Trim Policies
//
// Some MP3 encoders pad the stream with silence at both ends, which breaks
// gapless looping. A TrimPolicy per codec strips a fixed number of samples
// from each end. LAMETrim is the policy for LAME-encoded files.
//
// # Tags
//
// ReadTags extracts ID3 metadata (title, artist, album, BPM) from MP3 data.
package audio
