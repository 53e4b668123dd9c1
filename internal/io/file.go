package ioutils

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"
)

// FramePlaceholder is replaced by the frame number in frame file patterns.
const FramePlaceholder = "%FRAME%"

var (
	invalidChars  = regexp.MustCompile(`[<>:"/\\|?*\x00-\x1f]`)
	trailingDots  = regexp.MustCompile(`\.+$`)
	repeatedSpace = regexp.MustCompile(`\s+`)
)

// FrameFileName expands the frame placeholder of pattern with the 1-indexed
// frame number n, zero-padded to padding digits.
//
// Numbers wider than padding are never truncated.
//
// Example:
//
//	FrameFileName("img/frame_%FRAME%.png", 7, 3) // Returns "img/frame_007.png"
//	FrameFileName("img/frame_%FRAME%.png", 7, 0) // Returns "img/frame_7.png"
func FrameFileName(pattern string, n, padding int) string {
	num := fmt.Sprintf("%0*d", max(padding, 0), n)
	return strings.ReplaceAll(pattern, FramePlaceholder, num)
}

// FrameFileNames expands pattern for frames 1..count.
func FrameFileNames(pattern string, count, padding int) []string {
	names := make([]string, 0, max(count, 0))
	for i := 1; i <= count; i++ {
		names = append(names, FrameFileName(pattern, i, padding))
	}
	return names
}

// WriteFile writes data to a file, creating it and its parent directories
// if necessary.
//
// The file is created with mode 0644. If the file already exists,
// it is truncated before writing.
func WriteFile(ctx context.Context, path string, data []byte) error {
	if err := EnsureDir(filepath.Dir(path)); err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

// SanitizeFileName removes or replaces characters that are invalid in file/folder names.
//
// The following transformations are applied:
//   - Invalid characters (<>:"/\|?* and control chars 0x00-0x1f) → underscore
//   - Trailing dots → removed (Windows limitation)
//   - Multiple whitespace → single space
//   - Trailing whitespace → removed
//
// Example:
//
//	SanitizeFileName("Loop: Part 1/2") // Returns "Loop_ Part 1_2"
func SanitizeFileName(name string) string {
	name = invalidChars.ReplaceAllString(name, "_")
	name = trailingDots.ReplaceAllString(name, "")
	name = repeatedSpace.ReplaceAllString(name, " ")
	return strings.TrimRight(name, " ")
}

// EnsureDir creates a directory and all parent directories if they don't exist.
//
// Directories are created with mode 0755 (rwxr-xr-x).
// If the directory already exists, no error is returned.
func EnsureDir(path string) error {
	return os.MkdirAll(path, 0755)
}
