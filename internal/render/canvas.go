package render

import (
	"image"
	"image/color"
	"math"
	"strings"
	"sync"

	"golang.org/x/image/draw"
)

// Scaler names accepted by ScalerByName.
const (
	ScalerNearest    = "nearest"
	ScalerApprox     = "approx"
	ScalerBilinear   = "bilinear"
	ScalerCatmullRom = "catmullrom"
)

// ScalerByName returns the interpolator for name, defaulting to Catmull-Rom.
func ScalerByName(name string) draw.Scaler {
	switch strings.ToLower(name) {
	case ScalerNearest:
		return draw.NearestNeighbor
	case ScalerApprox:
		return draw.ApproxBiLinear
	case ScalerBilinear:
		return draw.BiLinear
	default:
		return draw.CatmullRom
	}
}

// FitRect returns the largest rectangle with the aspect ratio of a srcW x
// srcH image that fits a dstW x dstH area, centered in it.
func FitRect(srcW, srcH, dstW, dstH int) image.Rectangle {
	if srcW <= 0 || srcH <= 0 || dstW <= 0 || dstH <= 0 {
		return image.Rectangle{}
	}

	ratio := float64(srcW) / float64(srcH)
	width, height := dstW, dstH

	if scaled := float64(dstH) * ratio; scaled > float64(dstW) {
		// Width is the limiting factor
		height = int(math.Floor(float64(dstW) / ratio))
	} else {
		// Height is the limiting factor
		width = int(math.Floor(scaled))
	}

	x := (dstW - width) / 2
	y := (dstH - height) / 2
	return image.Rect(x, y, x+width, y+height)
}

// Canvas is an RGBA drawing surface.
//
// Canvas is safe for concurrent use, so a display goroutine can read it
// while the render loop draws.
type Canvas struct {
	img        *image.RGBA
	scaler     draw.Scaler
	background color.Color
	draws      int
	mu         sync.RWMutex
}

// NewCanvas creates a width x height canvas drawing with scaler.
// A nil scaler uses Catmull-Rom.
func NewCanvas(width, height int, scaler draw.Scaler) *Canvas {
	if scaler == nil {
		scaler = draw.CatmullRom
	}
	c := &Canvas{
		img:        image.NewRGBA(image.Rect(0, 0, max(width, 1), max(height, 1))),
		scaler:     scaler,
		background: color.Black,
	}
	c.Clear()
	return c
}

// Resize replaces the canvas with a cleared width x height one.
func (c *Canvas) Resize(width, height int) {
	c.mu.Lock()
	c.img = image.NewRGBA(image.Rect(0, 0, max(width, 1), max(height, 1)))
	c.mu.Unlock()
	c.Clear()
}

// ResizeToFit sizes the canvas to the largest rectangle with the aspect
// ratio of frame that fits a windowW x windowH window.
func (c *Canvas) ResizeToFit(frame image.Image, windowW, windowH int) {
	r := FitRect(frame.Bounds().Dx(), frame.Bounds().Dy(), windowW, windowH)
	c.Resize(r.Dx(), r.Dy())
}

// Clear fills the canvas with the background color.
func (c *Canvas) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()
	draw.Draw(c.img, c.img.Bounds(), image.NewUniform(c.background), image.Point{}, draw.Src)
}

// Draw scales img to fit the canvas and draws it centered.
func (c *Canvas) Draw(img image.Image) {
	c.mu.Lock()
	defer c.mu.Unlock()

	bounds := c.img.Bounds()
	dst := FitRect(img.Bounds().Dx(), img.Bounds().Dy(), bounds.Dx(), bounds.Dy())
	if dst.Empty() {
		return
	}
	c.scaler.Scale(c.img, dst, img, img.Bounds(), draw.Over, nil)
	c.draws++
}

// Draws returns how many frames were drawn.
func (c *Canvas) Draws() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.draws
}

// Bounds returns the canvas bounds.
func (c *Canvas) Bounds() image.Rectangle {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.img.Bounds()
}

// Snapshot returns a copy of the canvas contents.
func (c *Canvas) Snapshot() *image.RGBA {
	c.mu.RLock()
	defer c.mu.RUnlock()

	out := image.NewRGBA(c.img.Bounds())
	copy(out.Pix, c.img.Pix)
	return out
}
