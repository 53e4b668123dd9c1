// Package http provides a client for fetching loop documents and assets.
//
// The Client in this package handles:
//   - User-Agent headers
//   - In-memory fetches with progress tracking
//   - Local files and file:// URLs alongside http(s)
//   - Timeout handling
//
// # Basic Usage
//
//	client := http.NewClient(60*time.Second, "syncloop")
//
//	// Fetch a loop document
//	doc, err := client.Get(ctx, "https://example.com/loops/dance.json")
//
//	// Fetch audio with progress callback
//	data, err := client.Fetch(ctx, songURL, func(read, total int64) {
//	    fmt.Printf("%.1f%%\n", float64(read)/float64(total)*100)
//	})
//
// # Progress Tracking
//
// The ProgressWriter type can be used to wrap any io.Writer for progress tracking:
//
//	pw := &http.ProgressWriter{
//	    Writer:   &buf,
//	    Total:    contentLength,
//	    OnUpdate: func(written, total int64) { /* update UI */ },
//	}
package http
