package audio

import (
	"bytes"
	"strconv"
	"strings"

	"github.com/bogem/id3v2"
)

// Tags holds the ID3 metadata of a song.
type Tags struct {
	// Title comes from the TIT2 frame.
	Title string

	// Artist comes from the TPE1 frame.
	Artist string

	// Album comes from the TALB frame.
	Album string

	// BPM comes from the TBPM frame; zero when absent or malformed.
	BPM float64

	// Artwork is the front cover picture, if one is attached.
	Artwork []byte
}

// IsZero reports whether no metadata was found.
func (t Tags) IsZero() bool {
	return t.Title == "" && t.Artist == "" && t.Album == "" && t.BPM == 0 && len(t.Artwork) == 0
}

// String formats the tags as "Artist - Title".
func (t Tags) String() string {
	switch {
	case t.Artist != "" && t.Title != "":
		return t.Artist + " - " + t.Title
	case t.Title != "":
		return t.Title
	default:
		return t.Artist
	}
}

// ReadTags parses the ID3v2 tag at the start of MP3 data.
//
// Data without a tag yields zero Tags and no error.
//
// Example:
//
//	tags, err := audio.ReadTags(mp3Bytes)
//	if err == nil && tags.BPM > 0 {
//	    fmt.Printf("%s at %.0f BPM\n", tags, tags.BPM)
//	}
func ReadTags(data []byte) (Tags, error) {
	if !bytes.HasPrefix(data, []byte("ID3")) {
		return Tags{}, nil
	}

	tag, err := id3v2.ParseReader(bytes.NewReader(data), id3v2.Options{Parse: true})
	if err != nil {
		return Tags{}, err
	}
	defer tag.Close()

	tags := Tags{
		Title:  tag.Title(),
		Artist: tag.Artist(),
		Album:  tag.Album(),
	}

	// Tempo (TBPM)
	if bpm := strings.TrimSpace(tag.GetTextFrame(tag.CommonID("BPM")).Text); bpm != "" {
		if v, err := strconv.ParseFloat(bpm, 64); err == nil && v > 0 {
			tags.BPM = v
		}
	}

	// Front cover (APIC)
	for _, f := range tag.GetFrames(tag.CommonID("Attached picture")) {
		pic, ok := f.(id3v2.PictureFrame)
		if !ok {
			continue
		}
		if tags.Artwork == nil || pic.PictureType == id3v2.PTFrontCover {
			tags.Artwork = pic.Picture
		}
	}

	return tags, nil
}
