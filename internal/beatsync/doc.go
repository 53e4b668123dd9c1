// Package beatsync maps the audio loop clock onto a visual loop.
//
// Every tick the Engine reads the unwrapped loop progress from a
// ProgressSource (the audio transport), converts it to a song beat, and then either draws the asset
// frame for that beat or steers a video player's playback rate so the video
// converges on the beat.
//
// # Song Beats
//
// A song beat is a fractional position on the loop's beat grid. A beatmap
// marks beats without a strong onset with the skip symbol '.'; the
// BeatTracker holds the visual still during those beats and subtracts them
// from the running beat count, so the animation only advances on beats
// that are heard.
//
// # Frame Sequences
//
// BuildFrameSequence expands a LoopConfig into the ordered traversal of
// asset frames for one animation loop, honoring keyframes and ping-pong.
// BuildBeatTimeline optionally partitions that traversal into one sub-range
// per animation beat.
//
// # Modes
//
// A Mode is either a *FrameMode (image sequence drawn on a Surface) or a
// *VideoMode (playback rate correction of a VideoPlayer).
package beatsync
