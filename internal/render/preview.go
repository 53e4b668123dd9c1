package render

import (
	"image"
	"strings"

	"golang.org/x/image/draw"
)

// ramp orders characters from dark to light.
const ramp = " .:-=+*#%@"

// Preview renders img as cols x rows characters, darker pixels mapping to
// sparser characters.
func Preview(img image.Image, cols, rows int) string {
	if img == nil || cols <= 0 || rows <= 0 || img.Bounds().Empty() {
		return ""
	}

	small := image.NewGray(image.Rect(0, 0, cols, rows))
	draw.ApproxBiLinear.Scale(small, small.Bounds(), img, img.Bounds(), draw.Src, nil)

	var b strings.Builder
	b.Grow((cols + 1) * rows)
	for y := 0; y < rows; y++ {
		for x := 0; x < cols; x++ {
			lum := small.GrayAt(x, y).Y
			b.WriteByte(ramp[int(lum)*(len(ramp)-1)/255])
		}
		if y < rows-1 {
			b.WriteByte('\n')
		}
	}
	return b.String()
}
