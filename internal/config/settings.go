package config

import (
	"encoding/json"
	"os"
	"path/filepath"
	"time"

	"github.com/faiface/beep"

	"github.com/handiism/syncloop/internal/audio"
	"github.com/handiism/syncloop/internal/render"
)

// Trim presets accepted by Settings.TrimPreset.
const (
	TrimNone   = "none"
	TrimLAME   = "lame"
	TrimCustom = "custom"
)

// Settings holds all configuration options.
type Settings struct {
	// Audio settings
	SampleRate     int     `json:"sample_rate"`
	OutputBufferMs int     `json:"output_buffer_ms"`
	RequiredCodec  string  `json:"required_codec"`
	InitialVolume  float64 `json:"initial_volume"`
	VolumeStep     float64 `json:"volume_step"`

	// Trim settings
	TrimPreset          string `json:"trim_preset"` // none, lame, custom
	TrimLeadingSamples  int    `json:"trim_leading_samples"`
	TrimTrailingSamples int    `json:"trim_trailing_samples"`

	// Loading settings
	MaxConcurrentLoads int    `json:"max_concurrent_loads"`
	HTTPTimeoutSeconds int    `json:"http_timeout_seconds"`
	UserAgent          string `json:"user_agent"`
	MaxFrameSize       int    `json:"max_frame_size"` // 0 keeps frames at full size

	// Sync settings
	DriftGain        float64 `json:"drift_gain"`
	BasePlaybackRate float64 `json:"base_playback_rate"`
	TickRate         int     `json:"tick_rate"`

	// Display settings
	Scaler         string `json:"scaler"` // nearest, approx, bilinear, catmullrom
	CanvasWidth    int    `json:"canvas_width"`
	CanvasHeight   int    `json:"canvas_height"`
	PreviewColumns int    `json:"preview_columns"`
	PreviewRows    int    `json:"preview_rows"`
}

// DefaultSettings returns settings with default values.
func DefaultSettings() *Settings {
	return &Settings{
		SampleRate:     44100,
		OutputBufferMs: 100,
		RequiredCodec:  audio.CodecMP3,
		InitialVolume:  1,
		VolumeStep:     0.1,

		TrimPreset: TrimNone,

		MaxConcurrentLoads: 8,
		HTTPTimeoutSeconds: 60,
		UserAgent:          "syncloop",

		DriftGain:        5,
		BasePlaybackRate: 1,
		TickRate:         60,

		Scaler:         render.ScalerCatmullRom,
		CanvasWidth:    640,
		CanvasHeight:   360,
		PreviewColumns: 48,
		PreviewRows:    14,
	}
}

// Load reads settings from a JSON file.
//
// A missing file yields the default settings.
func Load(path string) (*Settings, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return DefaultSettings(), nil
		}
		return nil, err
	}

	settings := DefaultSettings()
	if err := json.Unmarshal(data, settings); err != nil {
		return nil, err
	}

	return settings, nil
}

// Save writes settings to a JSON file.
func (s *Settings) Save(path string) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return err
	}

	data, err := json.MarshalIndent(s, "", "  ")
	if err != nil {
		return err
	}

	return os.WriteFile(path, data, 0644)
}

// ToTransportOptions converts settings to audio transport options.
func (s *Settings) ToTransportOptions() audio.Options {
	return audio.Options{
		SampleRate: beep.SampleRate(s.SampleRate),
		BufferSize: time.Duration(s.OutputBufferMs) * time.Millisecond,
		Codec:      s.RequiredCodec,
		Trims:      s.ToTrimPolicies(),
		Volume:     s.InitialVolume,
		VolumeStep: s.VolumeStep,
	}
}

// ToTrimPolicies converts the trim preset to per-codec trim policies.
//
// The lame preset removes the encoder padding of MP3 files. The custom
// preset applies the configured sample counts to every supported codec.
func (s *Settings) ToTrimPolicies() map[string]audio.TrimPolicy {
	switch s.TrimPreset {
	case TrimLAME:
		return map[string]audio.TrimPolicy{audio.CodecMP3: audio.LAMETrim}
	case TrimCustom:
		policy := audio.TrimPolicy{Leading: s.TrimLeadingSamples, Trailing: s.TrimTrailingSamples}
		trims := make(map[string]audio.TrimPolicy)
		for _, codec := range audio.Codecs() {
			trims[codec] = policy
		}
		return trims
	default:
		return nil
	}
}

// HTTPTimeout returns the HTTP timeout as a duration.
func (s *Settings) HTTPTimeout() time.Duration {
	return time.Duration(s.HTTPTimeoutSeconds) * time.Second
}

// TickInterval returns the interval between engine ticks.
func (s *Settings) TickInterval() time.Duration {
	if s.TickRate <= 0 {
		return time.Second / 60
	}
	return time.Second / time.Duration(s.TickRate)
}
