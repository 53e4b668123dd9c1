package loopdoc

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"html"
	"path/filepath"
	"regexp"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/handiism/syncloop/internal/loopdoc/dto"
	"github.com/handiism/syncloop/internal/model"
)

var (
	// ErrNoDocument is returned when content holds no loop document.
	//
	// This typically occurs when:
	//   - An HTML page has no data-syncloop attribute
	//   - The content is empty
	//   - The content is neither JSON nor YAML
	ErrNoDocument = errors.New("no loop document found")

	// ErrIncompleteDocument is returned when a document lacks the song or
	// the animation.
	ErrIncompleteDocument = errors.New("incomplete loop document")
)

// Format identifies the encoding of a loop document.
type Format int

const (
	// FormatJSON is a plain JSON document.
	FormatJSON Format = iota

	// FormatYAML is a YAML document.
	FormatYAML

	// FormatHTML is an HTML page embedding the JSON document.
	FormatHTML
)

// String returns the lowercase format name.
func (f Format) String() string {
	switch f {
	case FormatJSON:
		return "json"
	case FormatYAML:
		return "yaml"
	case FormatHTML:
		return "html"
	default:
		return "unknown"
	}
}

var trailingComma = regexp.MustCompile(`,(\s*[}\]])`)

// Parser extracts loop definitions from loop documents.
//
// A loop document is JSON, YAML, or an HTML page that embeds the JSON in a
// data-syncloop attribute. The Parser detects the encoding, fixes any
// hand-written JSON quirks, and deserializes the document into a Loop model.
//
// Example usage:
//
//	parser := NewParser()
//
//	data, _ := os.ReadFile("/srv/loops/dance.yaml")
//
//	loop, err := parser.Parse(data, "/srv/loops/dance.yaml")
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	fmt.Printf("Loop: %s (%d frames)\n", loop.DisplayTitle(), loop.Animation.Frames)
type Parser struct{}

// NewParser creates a new Parser.
func NewParser() *Parser {
	return &Parser{}
}

// Fetcher reads a document location into memory.
type Fetcher interface {
	Get(ctx context.Context, location string) ([]byte, error)
}

// Load fetches the document at location and parses it.
//
// Relative local paths are made absolute first, so asset locations resolve
// against the document's directory regardless of later working directory
// changes.
//
// Example:
//
//	loop, err := parser.Load(ctx, http.NewClient(timeout, agent), "loops/dance.yaml")
func (p *Parser) Load(ctx context.Context, f Fetcher, location string) (*model.Loop, error) {
	if !model.IsRemote(location) && !strings.HasPrefix(location, "file://") {
		if abs, err := filepath.Abs(location); err == nil {
			location = abs
		}
	}

	content, err := f.Get(ctx, location)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch loop document: %w", err)
	}

	return p.Parse(content, location)
}

// Parse extracts a loop from document content read from source.
//
// This method performs the following steps:
//  1. Detects the document format from its content
//  2. Extracts the embedded JSON from HTML pages
//  3. Fixes trailing commas in JSON
//  4. Deserializes the document
//  5. Resolves asset locations against source
//
// Returns an error if:
//   - No document can be found (ErrNoDocument)
//   - The document cannot be deserialized
//   - The song or the animation is missing (ErrIncompleteDocument)
//
// Example:
//
//	loop, err := parser.Parse(data, "https://example.com/loops/dance.json")
//	if err != nil {
//	    return fmt.Errorf("failed to parse loop: %w", err)
//	}
func (p *Parser) Parse(content []byte, source string) (*model.Loop, error) {
	format, err := DetectFormat(content)
	if err != nil {
		return nil, err
	}

	var doc dto.Document

	switch format {
	case FormatHTML:
		data, err := extractLoopData(string(content))
		if err != nil {
			return nil, fmt.Errorf("could not retrieve loop data: %w", err)
		}
		if err := json.Unmarshal([]byte(fixJSON(data)), &doc); err != nil {
			return nil, fmt.Errorf("failed to parse embedded loop JSON: %w", err)
		}
	case FormatJSON:
		if err := json.Unmarshal([]byte(fixJSON(string(content))), &doc); err != nil {
			return nil, fmt.Errorf("failed to parse loop JSON: %w", err)
		}
	case FormatYAML:
		if err := yaml.Unmarshal(content, &doc); err != nil {
			return nil, fmt.Errorf("failed to parse loop YAML: %w", err)
		}
	}

	if doc.Song == nil || doc.Song.Filename == "" {
		return nil, fmt.Errorf("%w: missing song filename", ErrIncompleteDocument)
	}
	if doc.Animation == nil {
		return nil, fmt.Errorf("%w: missing animation", ErrIncompleteDocument)
	}
	if doc.Animation.Video == nil && doc.Animation.Filename == "" {
		return nil, fmt.Errorf("%w: missing animation filename", ErrIncompleteDocument)
	}

	return doc.ToLoop(source), nil
}

// DetectFormat reports the encoding of a loop document.
func DetectFormat(content []byte) (Format, error) {
	trimmed := bytes.TrimSpace(content)
	switch {
	case len(trimmed) == 0:
		return 0, ErrNoDocument
	case trimmed[0] == '{':
		return FormatJSON, nil
	case trimmed[0] == '<':
		return FormatHTML, nil
	default:
		return FormatYAML, nil
	}
}

// extractLoopData extracts the data-syncloop JSON string from HTML.
//
// Loop pages embed the document like this:
//
//	<div ... data-syncloop="{...JSON...}">
//
// The attribute value is HTML-unescaped, since characters like quotes are
// escaped as &quot; inside an attribute.
func extractLoopData(htmlContent string) (string, error) {
	const startString = `data-syncloop="{`
	const stopString = `}"`

	startIndex := strings.Index(htmlContent, startString)
	if startIndex == -1 {
		return "", ErrNoDocument
	}

	startIndex += len(startString) - 1 // Include the opening brace
	remaining := htmlContent[startIndex:]

	endIndex := strings.Index(remaining, stopString)
	if endIndex == -1 {
		return "", fmt.Errorf("could not find end of loop data")
	}

	loopData := remaining[:endIndex+1]
	return html.UnescapeString(loopData), nil
}

// fixJSON removes trailing commas before closing braces and brackets,
// which hand-written documents often carry:
//
//	{"beats": [1, 5, 9,],}
//
// becomes
//
//	{"beats": [1, 5, 9]}
func fixJSON(data string) string {
	return trailingComma.ReplaceAllString(data, "$1")
}
