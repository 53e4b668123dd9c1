package audio

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"sort"

	"github.com/faiface/beep"
	"github.com/faiface/beep/mp3"
	"github.com/faiface/beep/wav"
)

var (
	// ErrDecodeFailure is returned when audio bytes cannot be decoded.
	ErrDecodeFailure = errors.New("audio decode failure")

	// ErrUnsupportedCodec is returned for codecs without a registered decoder.
	ErrUnsupportedCodec = errors.New("unsupported audio codec")
)

// Codec names.
const (
	CodecMP3 = "mp3"
	CodecWAV = "wav"
)

// DecodeFunc decodes an encoded stream into a beep streamer.
type DecodeFunc func(r io.Reader) (beep.StreamSeekCloser, beep.Format, error)

var decoders = map[string]DecodeFunc{
	CodecMP3: func(r io.Reader) (beep.StreamSeekCloser, beep.Format, error) {
		return mp3.Decode(io.NopCloser(r))
	},
	CodecWAV: wav.Decode,
}

// Supported reports whether a decoder is registered for codec.
func Supported(codec string) bool {
	_, ok := decoders[codec]
	return ok
}

// Codecs returns the registered codec names, sorted.
func Codecs() []string {
	names := make([]string, 0, len(decoders))
	for name := range decoders {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// SniffCodec guesses the codec of data from its header.
//
// Returns an empty string when the header is not recognized.
func SniffCodec(data []byte) string {
	switch {
	case len(data) >= 12 && bytes.Equal(data[0:4], []byte("RIFF")) && bytes.Equal(data[8:12], []byte("WAVE")):
		return CodecWAV
	case len(data) >= 3 && bytes.Equal(data[0:3], []byte("ID3")):
		return CodecMP3
	case len(data) >= 2 && data[0] == 0xFF && data[1]&0xE0 == 0xE0:
		// MPEG audio frame sync
		return CodecMP3
	}
	return ""
}

// decode decodes data into a buffer at the given sample rate.
func decode(data []byte, sampleRate beep.SampleRate) (*Buffer, error) {
	codec := SniffCodec(data)
	if codec == "" {
		return nil, fmt.Errorf("%w: unrecognized encoding", ErrDecodeFailure)
	}

	decodeFn, ok := decoders[codec]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedCodec, codec)
	}

	stream, format, err := decodeFn(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrDecodeFailure, codec, err)
	}
	defer stream.Close()

	sourceRate := format.SampleRate
	var source beep.Streamer = stream
	if sampleRate != 0 && format.SampleRate != sampleRate {
		source = beep.Resample(4, format.SampleRate, sampleRate, stream)
		format.SampleRate = sampleRate
	}

	pcm := beep.NewBuffer(format)
	pcm.Append(source)
	if err := stream.Err(); err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrDecodeFailure, codec, err)
	}
	if pcm.Len() == 0 {
		return nil, fmt.Errorf("%w: %s: no audio frames", ErrDecodeFailure, codec)
	}

	return &Buffer{pcm: pcm, codec: codec, sourceRate: sourceRate}, nil
}
