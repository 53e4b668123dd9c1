// Package video provides a software video playhead for video-mode loops.
//
// A Player tracks the position of a looping video of known duration on a
// monotonic clock and supports changing its playback rate at any time,
// which is all the drift correction of the sync engine needs. Host opens
// players for fetched video assets.
package video
