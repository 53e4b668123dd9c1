// Package loopdoc parses loop documents into Loop models.
//
// A loop document names the song and the animation of a sync loop and
// describes how they line up:
//
//	title: Dance
//	song:
//	  filename: dance.mp3
//	  beatmap: "x.x.x.xx"
//	animation:
//	  filename: frames/dance_%FRAME%.png
//	  frames: 12
//	  frameTextPadding: 2
//	  beats: [1, 4, 7, 10]
//
// # Parsing
//
// Use the Parser to read a document from any supported encoding:
//
//	parser := loopdoc.NewParser()
//	loop, err := parser.Parse(content, location)
//	if err != nil {
//	    log.Fatal(err)
//	}
//
// # Document Encodings
//
// Documents are JSON, YAML, or an HTML page embedding the JSON document in
// a `data-syncloop` attribute. The encoding is detected from the content.
// Trailing commas in JSON are tolerated.
package loopdoc
