package protocol

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/charmap"

	"github.com/bwprot/bwprotanalyzer/internal/codepage"
	"github.com/bwprot/bwprotanalyzer/pkg/errclass"
	"github.com/bwprot/bwprotanalyzer/pkg/logging"
	"github.com/bwprot/bwprotanalyzer/pkg/model"
)

const maxLineSize = 1 << 20

// Options configures a Reader.
type Options struct {
	// Encoding of the raw file. Nil means Windows-1252.
	Encoding encoding.Encoding
	// Location timestamps are interpreted in. Nil means time.Local.
	Location *time.Location
	// FlushTrailing emits the last block even though no header follows it.
	// By default that block is dropped.
	FlushTrailing bool
	// SkipMalformed logs and skips blocks that fail to parse instead of
	// aborting the pass.
	SkipMalformed bool
	// Logger receives diagnostics. Nil means the global logger.
	Logger *logging.Logger
}

// Stats summarizes a pass.
type Stats struct {
	Lines           int  `json:"lines"`
	Events          int  `json:"events"`
	Skipped         int  `json:"skipped_blocks"`
	DroppedTrailing bool `json:"dropped_trailing_block"`
	TrackedFields   int  `json:"tracked_fields"`
}

// Reader is a forward-only cursor over the events of one protocol file.
//
//	r, err := protocol.Open(path, protocol.Options{})
//	if err != nil { ... }
//	defer r.Close()
//	for r.Next() {
//		ev := r.Event()
//	}
//	if err := r.Err(); err != nil { ... }
//
// A Reader owns its Tracker; it cannot be rewound. Re-open the source for
// another pass.
type Reader struct {
	scanner *bufio.Scanner
	closer  io.Closer
	tracker *Tracker
	builder *Builder
	opts    Options
	log     *logging.Logger

	open    Block
	started bool
	lineNo  int

	event model.Event
	err   error
	done  bool
	stats Stats
}

// NewReader returns a Reader decoding r with opts.Encoding.
func NewReader(r io.Reader, opts Options) *Reader {
	enc := opts.Encoding
	if enc == nil {
		enc = charmap.Windows1252
	}
	log := opts.Logger
	if log == nil {
		log = logging.Global()
	}

	scanner := bufio.NewScanner(codepage.NewDecodingReader(r, enc))
	scanner.Buffer(make([]byte, 0, 64*1024), maxLineSize)

	tracker := NewTracker()
	return &Reader{
		scanner: scanner,
		tracker: tracker,
		builder: NewBuilder(tracker, opts.Location),
		opts:    opts,
		log:     log,
	}
}

// Open opens the protocol file at path. The caller must Close the Reader.
func Open(path string, opts Options) (*Reader, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open protocol: %w", err)
	}
	r := NewReader(f, opts)
	r.closer = f
	return r, nil
}

// Next advances to the next event. It returns false at the end of input or
// on the first error, after which Err reports the cause.
func (r *Reader) Next() bool {
	if r.done {
		return false
	}

	for r.scanner.Scan() {
		r.lineNo++
		text := strings.TrimSuffix(r.scanner.Text(), "\r")
		if strings.TrimSpace(text) == "" {
			continue
		}
		r.stats.Lines++

		if !IsHeaderLine(text) {
			r.open.Lines = append(r.open.Lines, Line{No: r.lineNo, Text: text})
			continue
		}

		prev, hadPrev := r.open, r.started
		r.started = true
		r.open = Block{Lines: []Line{{No: r.lineNo, Text: text}}}
		if !hadPrev {
			if len(prev.Lines) > 0 {
				r.log.Debug("discarding lines before first header", map[string]any{"lines": len(prev.Lines)})
			}
			continue
		}
		if r.emit(prev) {
			return true
		}
		if r.done {
			return false
		}
	}

	r.done = true
	if err := r.scanner.Err(); err != nil {
		r.err = errclass.ErrInputUnreadable.WithMessagef("line %d: %v", r.lineNo+1, err)
		return false
	}
	if !r.started {
		return false
	}
	if !r.opts.FlushTrailing {
		r.stats.DroppedTrailing = true
		r.log.Warn("last block not followed by a header, dropped", map[string]any{"line": r.open.Start()})
		return false
	}
	return r.emit(r.open)
}

// emit builds block into the current event. On failure it either records
// the error and stops the pass or, with SkipMalformed, counts the block.
func (r *Reader) emit(block Block) bool {
	ev, err := r.builder.Build(block)
	if err != nil {
		if r.opts.SkipMalformed {
			r.stats.Skipped++
			r.log.Warn("skipping malformed block", map[string]any{"line": block.Start(), "error": err.Error()})
			return false
		}
		r.err = err
		r.done = true
		return false
	}

	r.event = ev
	r.stats.Events++
	if r.log.Enabled(logging.LevelDebug) {
		r.log.Debug("event", map[string]any{
			"line":        ev.Line,
			"record_type": ev.RecordType,
			"status":      ev.Status.Keyword(),
			"changes":     len(ev.Changes),
		})
	}
	return true
}

// Event returns the event produced by the last successful call to Next.
func (r *Reader) Event() model.Event {
	return r.event
}

// Err returns the error that ended the pass, if any.
func (r *Reader) Err() error {
	return r.err
}

// Stats returns counters for the pass so far.
func (r *Reader) Stats() Stats {
	s := r.stats
	s.TrackedFields = r.tracker.Len()
	return s
}

// Close releases the underlying file when the Reader was created by Open.
func (r *Reader) Close() error {
	if r.closer == nil {
		return nil
	}
	err := r.closer.Close()
	r.closer = nil
	return err
}
