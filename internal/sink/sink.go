// Package sink writes events to their destination as they are produced.
//
// Every Write goes straight to the underlying writer, so on failure later in
// a pass the output already holds the lines for all earlier events.
package sink

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"golang.org/x/text/encoding"

	"github.com/bwprot/bwprotanalyzer/internal/codepage"
	"github.com/bwprot/bwprotanalyzer/internal/render"
	"github.com/bwprot/bwprotanalyzer/pkg/errclass"
	"github.com/bwprot/bwprotanalyzer/pkg/model"
)

// Format selects the output representation.
type Format string

const (
	FormatText  Format = "text"
	FormatJSONL Format = "jsonl"
)

// ParseFormat validates a format name.
func ParseFormat(s string) (Format, error) {
	switch Format(strings.ToLower(strings.TrimSpace(s))) {
	case FormatText, "":
		return FormatText, nil
	case FormatJSONL, "json":
		return FormatJSONL, nil
	default:
		return "", fmt.Errorf("unknown output format %q", s)
	}
}

// Stats counts what a sink did with the events it was given.
type Stats struct {
	Written int `json:"written"`
	Dropped int `json:"dropped"`
}

// Sink consumes events in file order.
type Sink interface {
	Write(ev model.Event) error
	Stats() Stats
	Close() error
}

// Create opens the destination for format. An empty path selects stdout,
// which is written as UTF-8 and never closed. Files are truncated and
// written in enc.
func Create(path string, format Format, enc encoding.Encoding, r *render.Renderer) (Sink, error) {
	if path == "" {
		return New(os.Stdout, nil, format, nil, r), nil
	}

	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return nil, errclass.ErrOutputUnwritable.WithMessagef("create output dir: %v", err)
	}
	f, err := os.Create(path)
	if err != nil {
		return nil, errclass.ErrOutputUnwritable.WithMessagef("create output: %v", err)
	}
	return New(f, f, format, enc, r), nil
}

// New wraps w. closer, if non-nil, is closed by Close. A nil enc writes UTF-8.
func New(w io.Writer, closer io.Closer, format Format, enc encoding.Encoding, r *render.Renderer) Sink {
	if format == FormatJSONL {
		return &JSONLSink{enc: json.NewEncoder(w), closer: closer}
	}
	if enc != nil {
		w = codepage.NewEncodingWriter(w, enc)
	}
	return &TextSink{w: w, closer: closer, renderer: r}
}

// TextSink writes rendered log lines.
type TextSink struct {
	w        io.Writer
	closer   io.Closer
	renderer *render.Renderer
	stats    Stats
}

// Write renders ev and appends it. Events the renderer does not know are
// counted as dropped and produce no output.
func (s *TextSink) Write(ev model.Event) error {
	text, ok := s.renderer.Render(ev)
	if !ok {
		s.stats.Dropped++
		return nil
	}
	if _, err := io.WriteString(s.w, text+"\n"); err != nil {
		return errclass.ErrOutputUnwritable.WithMessagef("write event from line %d: %v", ev.Line, err)
	}
	s.stats.Written++
	return nil
}

// Stats returns the write counters.
func (s *TextSink) Stats() Stats { return s.stats }

// Close closes the destination file, if any.
func (s *TextSink) Close() error { return closeOnce(&s.closer) }

// JSONLSink writes one JSON object per event.
type JSONLSink struct {
	enc    *json.Encoder
	closer io.Closer
	stats  Stats
}

// Write appends ev as a JSON line.
func (s *JSONLSink) Write(ev model.Event) error {
	if err := s.enc.Encode(ev); err != nil {
		return errclass.ErrOutputUnwritable.WithMessagef("write event from line %d: %v", ev.Line, err)
	}
	s.stats.Written++
	return nil
}

// Stats returns the write counters.
func (s *JSONLSink) Stats() Stats { return s.stats }

// Close closes the destination file, if any.
func (s *JSONLSink) Close() error { return closeOnce(&s.closer) }

func closeOnce(c *io.Closer) error {
	if *c == nil {
		return nil
	}
	err := (*c).Close()
	*c = nil
	if err != nil {
		return errclass.ErrOutputUnwritable.WithMessagef("close output: %v", err)
	}
	return nil
}
