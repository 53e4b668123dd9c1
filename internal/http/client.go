package http

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"time"
)

// Client fetches loop documents and assets over HTTP or from local files.
//
// Client provides:
//   - Configured User-Agent header
//   - Timeout handling
//   - In-memory fetches with progress tracking
//   - Transparent file:// and plain path support
//
// Example usage:
//
//	client := NewClient(60*time.Second, "syncloop")
//
//	// Fetch a loop document
//	doc, err := client.Get(ctx, "https://example.com/loops/dance.json")
//
//	// Fetch the song with progress
//	data, err := client.Fetch(ctx, songURL, func(read, total int64) {
//	    percent := float64(read) / float64(total) * 100
//	    fmt.Printf("%.1f%%\n", percent)
//	})
type Client struct {
	httpClient *http.Client
	userAgent  string
}

// NewClient creates a new HTTP client.
//
// A non-positive timeout defaults to 60 seconds and an empty userAgent
// defaults to "syncloop".
func NewClient(timeout time.Duration, userAgent string) *Client {
	if timeout <= 0 {
		timeout = 60 * time.Second
	}
	if userAgent == "" {
		userAgent = "syncloop"
	}
	return &Client{
		httpClient: &http.Client{
			Timeout: timeout,
		},
		userAgent: userAgent,
	}
}

// ProgressWriter wraps a writer to track transfer progress.
//
// Use this to monitor large transfers by providing an OnUpdate callback
// that receives the current bytes written and total expected bytes.
//
// Example:
//
//	pw := &ProgressWriter{
//	    Writer: &buf,
//	    Total:  contentLength,
//	    OnUpdate: func(written, total int64) {
//	        fmt.Printf("%d / %d bytes\n", written, total)
//	    },
//	}
//	io.Copy(pw, response.Body)
type ProgressWriter struct {
	// Writer is the underlying writer to write data to.
	Writer io.Writer

	// Total is the expected total bytes, or -1 if unknown.
	Total int64

	// Written is the current number of bytes written.
	Written int64

	// OnUpdate is called after each Write with current progress.
	// Parameters are (bytesWritten, totalExpected).
	OnUpdate func(written, total int64)
}

// Write implements io.Writer, tracking progress and calling OnUpdate.
func (pw *ProgressWriter) Write(p []byte) (int, error) {
	n, err := pw.Writer.Write(p)
	pw.Written += int64(n)
	if pw.OnUpdate != nil {
		pw.OnUpdate(pw.Written, pw.Total)
	}
	return n, err
}

// Get fetches location and returns its content.
//
// This is a convenience wrapper around Fetch without progress tracking.
//
// Example:
//
//	data, err := client.Get(ctx, "https://example.com/frame_01.png")
func (c *Client) Get(ctx context.Context, location string) ([]byte, error) {
	return c.Fetch(ctx, location, nil)
}

// Fetch reads location into memory with an optional progress callback.
//
// Locations with an http or https scheme are requested with GET and the
// configured User-Agent header. Anything else is read from the local file
// system, with file:// URLs converted to paths.
//
// Parameters:
//   - ctx: Context for cancellation
//   - location: URL or file path to read
//   - onProgress: Optional callback called with (bytesRead, totalBytes)
//     Pass nil to disable progress tracking
//
// Returns an error if:
//   - The request or file open fails
//   - The response status is not 200 OK
//   - Reading the content fails
func (c *Client) Fetch(ctx context.Context, location string, onProgress func(read, total int64)) ([]byte, error) {
	body, total, err := c.open(ctx, location)
	if err != nil {
		return nil, err
	}
	defer body.Close()

	var buf bytes.Buffer
	if total > 0 {
		buf.Grow(int(total))
	}

	var writer io.Writer = &buf
	if onProgress != nil {
		writer = &ProgressWriter{
			Writer:   &buf,
			Total:    total,
			OnUpdate: onProgress,
		}
	}

	if _, err := io.Copy(writer, body); err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	return buf.Bytes(), nil
}

// open returns a reader for location and its expected size, or -1 if the
// size is unknown.
func (c *Client) open(ctx context.Context, location string) (io.ReadCloser, int64, error) {
	u, err := url.Parse(location)
	if err == nil && (u.Scheme == "http" || u.Scheme == "https") {
		return c.openRemote(ctx, location)
	}

	path := location
	if err == nil && u.Scheme == "file" {
		path = u.Path
	}

	file, err := os.Open(path)
	if err != nil {
		return nil, 0, err
	}

	total := int64(-1)
	if info, err := file.Stat(); err == nil {
		total = info.Size()
	}

	return file, total, nil
}

func (c *Client) openRemote(ctx context.Context, location string) (io.ReadCloser, int64, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, location, nil)
	if err != nil {
		return nil, 0, err
	}
	req.Header.Set("User-Agent", c.userAgent)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, 0, err
	}

	if resp.StatusCode != http.StatusOK {
		resp.Body.Close()
		return nil, 0, fmt.Errorf("HTTP %d: %s", resp.StatusCode, resp.Status)
	}

	return resp.Body, resp.ContentLength, nil
}
