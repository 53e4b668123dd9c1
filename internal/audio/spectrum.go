package audio

import (
	"math"
	"math/cmplx"

	"github.com/mjibson/go-dsp/fft"
)

// spectrumWindow is the number of frames analysed per spectrum.
const spectrumWindow = 1024

// Spectrum returns band magnitudes in [0,1] for the window of audio
// starting at phase (a loop fraction in [0,1)).
//
// Bands are spaced logarithmically from the lowest to the Nyquist bin.
// A buffer shorter than the window yields all-zero bands.
func (b *Buffer) Spectrum(phase float64, bands int) []float64 {
	out := make([]float64, max(bands, 0))
	if bands <= 0 || b.Len() < spectrumWindow {
		return out
	}

	phase -= math.Floor(phase)
	start := int(phase * float64(b.Len()))
	if start+spectrumWindow > b.Len() {
		start = b.Len() - spectrumWindow
	}

	samples := make([][2]float64, spectrumWindow)
	b.pcm.Streamer(start, start+spectrumWindow).Stream(samples)

	// Mono mix with a Hann window
	window := make([]float64, spectrumWindow)
	for i, s := range samples {
		hann := 0.5 * (1 - math.Cos(2*math.Pi*float64(i)/float64(spectrumWindow-1)))
		window[i] = (s[0] + s[1]) / 2 * hann
	}

	coeffs := fft.FFTReal(window)
	bins := spectrumWindow / 2

	for band := 0; band < bands; band++ {
		lo := bandEdge(band, bands, bins)
		hi := max(bandEdge(band+1, bands, bins), lo+1)

		var peak float64
		for i := lo; i < hi && i < bins; i++ {
			peak = math.Max(peak, cmplx.Abs(coeffs[i]))
		}
		// A full-scale sine peaks near bins/2 after windowing
		out[band] = math.Min(1, peak/(float64(bins)/2))
	}

	return out
}

func bandEdge(band, bands, bins int) int {
	return int(math.Pow(float64(bins), float64(band)/float64(bands)))
}
