package protocol

import (
	"errors"
	"time"

	"github.com/bwprot/bwprotanalyzer/pkg/model"
)

// Line is one non-blank raw line with its 1-based position in the source.
type Line struct {
	No   int
	Text string
}

// Block is a header line followed by the lines up to the next header.
type Block struct {
	Lines []Line
}

// Start returns the line number of the block's header line.
func (b Block) Start() int {
	if len(b.Lines) == 0 {
		return 0
	}
	return b.Lines[0].No
}

// Builder turns blocks into events, diffing attribute lines against a Tracker.
type Builder struct {
	tracker *Tracker
	loc     *time.Location
}

// NewBuilder creates a builder bound to tracker. A nil loc means time.Local.
func NewBuilder(tracker *Tracker, loc *time.Location) *Builder {
	if loc == nil {
		loc = time.Local
	}
	return &Builder{tracker: tracker, loc: loc}
}

// Build converts one block into an event.
//
// The first line is parsed as header, the second as index line and every
// further line as attribute edit. Attribute edits are applied to the tracker
// in line order, and only once every line of the block has parsed.
func (b *Builder) Build(block Block) (model.Event, error) {
	if len(block.Lines) == 0 {
		return model.Event{}, malformed(KindHeader, "", "empty block")
	}

	first := block.Lines[0]
	h, err := ParseHeaderLine(first.Text, b.loc)
	if err != nil {
		return model.Event{}, atLine(err, first.No)
	}

	event := model.Event{
		RecordType: h.RecordType,
		User:       h.User,
		Timestamp:  h.Timestamp,
		Status:     h.Status,
		Info:       h.Info,
		Changes:    []model.FieldChange{},
		Line:       first.No,
	}
	if len(block.Lines) < 2 {
		return event, nil
	}

	second := block.Lines[1]
	idx, err := ParseIndexLine(second.Text)
	if err != nil {
		return model.Event{}, atLine(err, second.No)
	}
	event.RecordIndex = idx.RecordIndex
	event.IndexInfo = idx.Description

	attrs := make([]Attribute, 0, len(block.Lines)-2)
	for _, l := range block.Lines[2:] {
		attr, err := ParseAttributeLine(l.Text)
		if err != nil {
			return model.Event{}, atLine(err, l.No)
		}
		attrs = append(attrs, attr)
	}
	for _, attr := range attrs {
		change := b.tracker.Update(idx.RecordIndex, h.RecordType, attr.Field, attr.Value)
		event.Changes = append(event.Changes, change)
	}
	return event, nil
}

func atLine(err error, no int) error {
	var le *LineError
	if errors.As(err, &le) {
		le.Line = no
	}
	return err
}
