package protocol

import (
	"fmt"
	"strconv"
	"strings"
	"time"
	"unicode"

	"github.com/bwprot/bwprotanalyzer/pkg/errclass"
	"github.com/bwprot/bwprotanalyzer/pkg/model"
)

// Line prefixes of the three record kinds.
const (
	HeaderMarker    = "@PR"
	IndexMarker     = "@IN"
	AttributeMarker = "@AE"
)

// timestampLayout matches "dd.mm.yyyy HH:MM:SS" after date and time are joined.
const timestampLayout = "02.01.2006 15:04:05"

// LineKind names the role a raw line plays inside a block.
type LineKind string

const (
	KindHeader    LineKind = "header"
	KindIndex     LineKind = "index"
	KindAttribute LineKind = "attribute"
)

// Header holds the fields of an @PR line.
type Header struct {
	RecordType string
	User       string
	Timestamp  time.Time
	Status     model.Status
	Info       string
}

// Index holds the fields of an @IN line.
type Index struct {
	RecordIndex string
	Description string
}

// Attribute holds the fields of an @AE line.
type Attribute struct {
	Field string
	Value string
}

// LineError reports a line that could not be classified.
// It unwraps to errclass.ErrMalformedLine or errclass.ErrUnknownStatus.
type LineError struct {
	Kind LineKind
	Line int // 1-based, 0 when unknown
	Text string
	Err  error
}

func (e *LineError) Error() string {
	if e.Line > 0 {
		return fmt.Sprintf("line %d: %s line: %v", e.Line, e.Kind, e.Err)
	}
	return fmt.Sprintf("%s line: %v", e.Kind, e.Err)
}

func (e *LineError) Unwrap() error {
	return e.Err
}

func malformed(kind LineKind, text, format string, args ...any) *LineError {
	return &LineError{
		Kind: kind,
		Text: text,
		Err:  errclass.ErrMalformedLine.WithMessagef(format, args...),
	}
}

// IsHeaderLine reports whether line opens a new block.
func IsHeaderLine(line string) bool {
	return strings.HasPrefix(line, HeaderMarker)
}

func splitFields(line string) []string {
	return strings.Split(strings.TrimRight(line, "\r\n"), ",")
}

// ParseHeaderLine parses "@PR,<type>,<user>,<dd.mm.yyyy>,<HH:MM:SS>,<status>,<info>".
// Fields after the info field are ignored.
func ParseHeaderLine(line string, loc *time.Location) (Header, error) {
	fields := splitFields(line)
	if len(fields) < 7 {
		return Header{}, malformed(KindHeader, line, "expected 7 fields, got %d", len(fields))
	}
	if loc == nil {
		loc = time.Local
	}

	ts, err := time.ParseInLocation(timestampLayout, fields[3]+" "+fields[4], loc)
	if err != nil {
		return Header{}, malformed(KindHeader, line, "bad timestamp %q %q", fields[3], fields[4])
	}

	code, err := strconv.Atoi(strings.TrimSpace(fields[5]))
	if err != nil {
		return Header{}, malformed(KindHeader, line, "bad status %q", fields[5])
	}
	status, err := model.ParseStatus(code)
	if err != nil {
		return Header{}, &LineError{
			Kind: KindHeader,
			Text: line,
			Err:  errclass.ErrUnknownStatus.WithMessagef("status code %d", code),
		}
	}

	return Header{
		RecordType: fields[1],
		User:       fields[2],
		Timestamp:  ts,
		Status:     status,
		Info:       fields[6],
	}, nil
}

// ParseIndexLine parses "@IN,<index><blanks><description>". The payload is
// fixed-width; the record index is its first whitespace-delimited token.
func ParseIndexLine(line string) (Index, error) {
	fields := splitFields(line)
	if len(fields) < 2 {
		return Index{}, malformed(KindIndex, line, "expected 2 fields, got %d", len(fields))
	}

	payload := strings.TrimLeftFunc(fields[1], unicode.IsSpace)
	if payload == "" {
		return Index{}, malformed(KindIndex, line, "empty record index")
	}

	idx, rest := payload, ""
	if cut := strings.IndexFunc(payload, unicode.IsSpace); cut >= 0 {
		idx, rest = payload[:cut], payload[cut:]
	}
	return Index{
		RecordIndex: idx,
		Description: strings.TrimSpace(rest),
	}, nil
}

// ParseAttributeLine parses "@AE,<field>,<value>[,...]". The value is kept verbatim.
func ParseAttributeLine(line string) (Attribute, error) {
	fields := splitFields(line)
	if len(fields) < 3 {
		return Attribute{}, malformed(KindAttribute, line, "expected 3 fields, got %d", len(fields))
	}
	return Attribute{Field: fields[1], Value: fields[2]}, nil
}
