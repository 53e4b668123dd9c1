// Package ioutils provides file and image helpers for sync loop assets.
//
// This package contains functions for:
//   - Expanding frame file name patterns (%FRAME% placeholders)
//   - Decoding frame images, optionally downscaled
//   - Encoding canvas snapshots
//   - File writing, directory creation, and filename sanitization
//
// Functions that accept a context.Context reserve it for cancellation,
// though decoding itself is not interruptible.
package ioutils
