// Package render provides the drawing surface for image-sequence loops.
//
// A Canvas is an in-memory RGBA surface. Frames are scaled to the largest
// size that fits the canvas while keeping their aspect ratio, and centered.
// Preview turns the canvas into a block of characters for terminal display.
package render
