package loopdoc

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"reflect"
	"testing"
)

type fileFetcher struct{}

func (fileFetcher) Get(ctx context.Context, location string) ([]byte, error) {
	return os.ReadFile(location)
}

const jsonDoc = `{
	"title": "Dance",
	"song": {"filename": "dance.mp3", "title": "Dance Song", "beatmap": "x.x.x.xx"},
	"animation": {
		"filename": "img/dance_%FRAME%.png",
		"frames": 12,
		"frameTextPadding": 2,
		"frameKeyframes": [1, 12, 6],
		"pingpong": true,
		"beats": [1, 4, 7, 10,],
		"syncOffset": 1
	}
}`

const yamlDoc = `
title: Dance
song:
  filename: dance.mp3
  title: Dance Song
  beatmap: "x.x.x.xx"
animation:
  filename: img/dance_%FRAME%.png
  frames: 12
  frameTextPadding: 2
  frameKeyframes: [1, 12, 6]
  pingpong: true
  beats: [1, 4, 7, 10]
  syncOffset: 1
`

const htmlDoc = `<html>
	<div id="loop" data-syncloop="{
		&quot;title&quot;:&quot;Dance&quot;,
		&quot;song&quot;:{&quot;filename&quot;:&quot;dance.mp3&quot;,&quot;title&quot;:&quot;Dance Song&quot;,&quot;beatmap&quot;:&quot;x.x.x.xx&quot;},
		&quot;animation&quot;:{&quot;filename&quot;:&quot;img/dance_%FRAME%.png&quot;,&quot;frames&quot;:12,&quot;frameTextPadding&quot;:2,
			&quot;frameKeyframes&quot;:[1,12,6],&quot;pingpong&quot;:true,&quot;beats&quot;:[1,4,7,10],&quot;syncOffset&quot;:1}
	}"></div>
	</html>`

func TestParser_Parse(t *testing.T) {
	tests := []struct {
		name    string
		content string
	}{
		{"json", jsonDoc},
		{"yaml", yamlDoc},
		{"html", htmlDoc},
	}

	parser := NewParser()

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			loop, err := parser.Parse([]byte(tt.content), "https://example.com/loops/dance.json")
			if err != nil {
				t.Fatalf("Parse failed: %v", err)
			}

			if loop.Title != "Dance" {
				t.Errorf("Title = %q, want %q", loop.Title, "Dance")
			}
			if loop.Song.Location != "https://example.com/loops/dance.mp3" {
				t.Errorf("Song.Location = %q", loop.Song.Location)
			}
			if loop.Song.Beatmap != "x.x.x.xx" {
				t.Errorf("Song.Beatmap = %q", loop.Song.Beatmap)
			}
			if loop.Animation.Frames != 12 || !loop.Animation.Pingpong || loop.Animation.SyncOffset != 1 {
				t.Errorf("Animation = %+v", loop.Animation)
			}
			if !reflect.DeepEqual(loop.Animation.Beats, []int{1, 4, 7, 10}) {
				t.Errorf("Animation.Beats = %v", loop.Animation.Beats)
			}
			if got := loop.FrameLocations()[11]; got != "https://example.com/loops/img/dance_12.png" {
				t.Errorf("FrameLocations()[11] = %q", got)
			}
			if err := loop.ToLoopConfig().Validate(); err != nil {
				t.Errorf("Validate() error = %v", err)
			}
		})
	}
}

func TestParser_ParseVideo(t *testing.T) {
	content := `{"song": {"filename": "a.mp3", "beatsPerLoop": 4},
		"animation": {"beatsPerLoop": 8, "video": {"filename": "clip.webm", "duration": 3.5}}}`

	loop, err := NewParser().Parse([]byte(content), "/srv/loops/a.json")
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}
	if !loop.HasVideo() {
		t.Fatal("HasVideo() = false")
	}
	if loop.Animation.Video.Location != "/srv/loops/clip.webm" {
		t.Errorf("Video.Location = %q", loop.Animation.Video.Location)
	}
	if loop.Animation.Video.Duration != 3.5 {
		t.Errorf("Video.Duration = %v", loop.Animation.Video.Duration)
	}
}

func TestParser_ParseErrors(t *testing.T) {
	tests := []struct {
		name    string
		content string
		wantErr error
	}{
		{"empty", "  \n", ErrNoDocument},
		{"html without data", `<html><body>No loop here</body></html>`, ErrNoDocument},
		{"missing song", `{"animation": {"filename": "%FRAME%.png", "frames": 2}}`, ErrIncompleteDocument},
		{"missing animation", `{"song": {"filename": "a.mp3"}}`, ErrIncompleteDocument},
		{"missing frames pattern", `{"song": {"filename": "a.mp3"}, "animation": {"frames": 2}}`, ErrIncompleteDocument},
		{"malformed json", `{"song": }`, nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewParser().Parse([]byte(tt.content), "")
			if err == nil {
				t.Fatal("expected error but got none")
			}
			if tt.wantErr != nil && !errors.Is(err, tt.wantErr) {
				t.Errorf("error = %v, want %v", err, tt.wantErr)
			}
		})
	}
}

func TestDetectFormat(t *testing.T) {
	tests := []struct {
		content string
		want    Format
	}{
		{`  {"a": 1}`, FormatJSON},
		{"<!doctype html><html></html>", FormatHTML},
		{"title: x\n", FormatYAML},
	}

	for _, tt := range tests {
		t.Run(tt.want.String(), func(t *testing.T) {
			got, err := DetectFormat([]byte(tt.content))
			if err != nil {
				t.Fatalf("DetectFormat() error = %v", err)
			}
			if got != tt.want {
				t.Errorf("DetectFormat() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestExtractLoopData(t *testing.T) {
	tests := []struct {
		name    string
		html    string
		want    string
		wantErr bool
	}{
		{
			name: "valid data-syncloop",
			html: `<html><div data-syncloop="{&quot;title&quot;:&quot;Test&quot;}"></div></html>`,
			want: `{"title":"Test"}`,
		},
		{
			name:    "missing data-syncloop",
			html:    `<html><body>No loop data</body></html>`,
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := extractLoopData(tt.html)
			if tt.wantErr {
				if err == nil {
					t.Error("expected error but got none")
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got != tt.want {
				t.Errorf("extractLoopData() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestFixJSON(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{
			name:  "trailing comma in array",
			input: `{"beats": [1, 5, 9,]}`,
			want:  `{"beats": [1, 5, 9]}`,
		},
		{
			name:  "trailing comma in object",
			input: "{\"a\": 1,\n}",
			want:  "{\"a\": 1\n}",
		},
		{
			name:  "no change needed",
			input: `{"beats": [1, 5, 9]}`,
			want:  `{"beats": [1, 5, 9]}`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := fixJSON(tt.input)
			if got != tt.want {
				t.Errorf("fixJSON() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestParser_Load(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "dance.yaml")
	if err := os.WriteFile(path, []byte(yamlDoc), 0644); err != nil {
		t.Fatal(err)
	}

	loop, err := NewParser().Load(context.Background(), fileFetcher{}, path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if want := filepath.Join(dir, "dance.mp3"); loop.Song.Location != want {
		t.Errorf("Song.Location = %q, want %q", loop.Song.Location, want)
	}

	if _, err := NewParser().Load(context.Background(), fileFetcher{}, filepath.Join(dir, "missing.yaml")); err == nil {
		t.Error("Load() of missing document returned no error")
	}
}
