// Package model defines the core data structures used throughout
// the syncloop application.
//
// # Loop
//
// Loop represents a song and the animation synchronized to it, with asset
// locations resolved against the loop document:
//
//	loop := model.NewLoop("Title", "/srv/loops/dance.json", song, anim)
//
// # Song
//
// Song holds the audio location, its beats per loop and an optional beatmap
// where '.' marks beats without a strong onset.
//
// # Animation
//
// Animation is either an image sequence, addressed by a %FRAME% file
// pattern, or a Video with a known duration.
//
// # Engine Configuration
//
// ToLoopConfig converts a Loop to the configuration consumed by the
// beatsync engine:
//
//	engine, err := beatsync.NewEngine(loop.ToLoopConfig(), mode)
package model
