// Package codepage resolves the legacy single-byte encodings BWPROT files are
// written in and wraps readers and writers to translate them.
package codepage

import (
	"bufio"
	"io"
	"strings"

	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/encoding/ianaindex"
	"golang.org/x/text/encoding/unicode"

	"github.com/bwprot/bwprotanalyzer/pkg/errclass"
)

// Default is the code page the business application writes.
const Default = "cp1252"

var known = map[string]encoding.Encoding{
	"cp1252":       charmap.Windows1252,
	"windows-1252": charmap.Windows1252,
	"iso-8859-1":   charmap.ISO8859_1,
	"latin1":       charmap.ISO8859_1,
	"iso-8859-15":  charmap.ISO8859_15,
	"latin9":       charmap.ISO8859_15,
	"cp850":        charmap.CodePage850,
	"cp437":        charmap.CodePage437,
	"utf-8":        unicode.UTF8,
	"utf8":         unicode.UTF8,
}

// Lookup returns the encoding registered under name. An empty name selects Default.
func Lookup(name string) (encoding.Encoding, error) {
	key := strings.ToLower(strings.TrimSpace(name))
	if key == "" {
		key = Default
	}
	if enc, ok := known[key]; ok {
		return enc, nil
	}
	enc, err := ianaindex.IANA.Encoding(key)
	if err != nil || enc == nil {
		return nil, errclass.ErrEncodingUnsupported.WithMessagef("unknown encoding %q", name)
	}
	return enc, nil
}

// NewDecodingReader returns a reader yielding UTF-8 text decoded from r.
// For UTF-8 input a leading byte order mark is dropped.
func NewDecodingReader(r io.Reader, enc encoding.Encoding) io.Reader {
	if enc == unicode.UTF8 {
		return withoutBOM(r)
	}
	return enc.NewDecoder().Reader(r)
}

// NewEncodingWriter returns a writer encoding UTF-8 text into enc before it
// reaches w. Runes the code page cannot represent are replaced.
func NewEncodingWriter(w io.Writer, enc encoding.Encoding) io.Writer {
	if enc == unicode.UTF8 {
		return w
	}
	return encoding.ReplaceUnsupported(enc.NewEncoder()).Writer(w)
}

const (
	bom0 = 0xef
	bom1 = 0xbb
	bom2 = 0xbf
)

func withoutBOM(r io.Reader) io.Reader {
	buf := bufio.NewReader(r)
	b, err := buf.Peek(3)
	if err != nil {
		return buf
	}
	if b[0] == bom0 && b[1] == bom1 && b[2] == bom2 {
		_, _ = buf.Discard(3)
	}
	return buf
}
