package dto

import (
	"github.com/handiism/syncloop/internal/model"
)

// Document represents a deserialized loop document.
//
// The same field names are used by the JSON, YAML and embedded HTML forms.
type Document struct {
	Title     string         `json:"title" yaml:"title"`
	Song      *JSONSong      `json:"song" yaml:"song"`
	Animation *JSONAnimation `json:"animation" yaml:"animation"`
}

// JSONSong contains the song section of a loop document.
type JSONSong struct {
	Filename     string `json:"filename" yaml:"filename"`
	Title        string `json:"title" yaml:"title"`
	BeatsPerLoop int    `json:"beatsPerLoop" yaml:"beatsPerLoop"`
	Beatmap      string `json:"beatmap" yaml:"beatmap"`
}

// JSONAnimation contains the animation section of a loop document.
type JSONAnimation struct {
	Filename         string     `json:"filename" yaml:"filename"`
	Frames           int        `json:"frames" yaml:"frames"`
	FrameTextPadding int        `json:"frameTextPadding" yaml:"frameTextPadding"`
	BeatsPerLoop     int        `json:"beatsPerLoop" yaml:"beatsPerLoop"`
	FrameKeyframes   []int      `json:"frameKeyframes" yaml:"frameKeyframes"`
	Pingpong         bool       `json:"pingpong" yaml:"pingpong"`
	Beats            []int      `json:"beats" yaml:"beats"`
	SyncOffset       int        `json:"syncOffset" yaml:"syncOffset"`
	Video            *JSONVideo `json:"video" yaml:"video"`
}

// JSONVideo contains the optional video of an animation.
type JSONVideo struct {
	Filename string  `json:"filename" yaml:"filename"`
	Duration float64 `json:"duration" yaml:"duration"`
}

// ToLoop converts Document to a model.Loop whose asset locations are
// resolved against source.
func (d *Document) ToLoop(source string) *model.Loop {
	var song *model.Song
	if d.Song != nil {
		song = &model.Song{
			Location:     d.Song.Filename,
			Title:        d.Song.Title,
			BeatsPerLoop: d.Song.BeatsPerLoop,
			Beatmap:      d.Song.Beatmap,
		}
	}

	var anim *model.Animation
	if a := d.Animation; a != nil {
		anim = &model.Animation{
			Location:         a.Filename,
			Frames:           a.Frames,
			FrameTextPadding: a.FrameTextPadding,
			BeatsPerLoop:     a.BeatsPerLoop,
			FrameKeyframes:   a.FrameKeyframes,
			Pingpong:         a.Pingpong,
			Beats:            a.Beats,
			SyncOffset:       a.SyncOffset,
		}
		if a.Video != nil {
			anim.Video = &model.Video{
				Location: a.Video.Filename,
				Duration: a.Video.Duration,
			}
		}
	}

	return model.NewLoop(d.Title, source, song, anim)
}
