// Package config provides configuration management for syncloop.
//
// This package handles:
//   - Loading and saving settings from JSON files
//   - Default configuration values
//   - Conversion to audio transport options and trim policies
//
// # Default Settings
//
// Use DefaultSettings() to get sensible defaults:
//
//	settings := config.DefaultSettings()
//	// 44.1kHz output, MP3 required
//	// Up to 8 assets loaded concurrently
//	// 60 engine ticks per second
//
// # Loading from File
//
//	settings, err := config.Load("/path/to/config.json")
//	if err != nil {
//	    // Uses defaults if file doesn't exist
//	}
//
// # Saving Settings
//
//	settings.TrimPreset = config.TrimLAME
//	err := settings.Save("/path/to/config.json")
//
// # Configuration Options
//
// Settings includes options for:
//   - Audio output and volume
//   - Encoder padding trim
//   - Concurrent asset loading and HTTP behavior
//   - Video drift correction
//   - Canvas size, scaling and terminal preview
package config
