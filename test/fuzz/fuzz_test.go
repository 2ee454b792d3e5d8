//go:build go1.18
// +build go1.18

// Fuzzing tests for the protocol parser
//
// This package contains fuzz targets for the line classifiers and the event
// stream. They check that arbitrary input never panics and that whatever is
// accepted satisfies the parser's guarantees.
//
// Running fuzz tests:
//   go test -fuzz=FuzzParseHeaderLine -fuzztime=30s ./test/fuzz/...
//   go test -fuzz=FuzzReader -fuzztime=1m ./test/fuzz/...

package fuzz

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"strings"
	"testing"
	"time"
	"unicode"

	xunicode "golang.org/x/text/encoding/unicode"

	"github.com/bwprot/bwprotanalyzer/internal/protocol"
	"github.com/bwprot/bwprotanalyzer/pkg/errclass"
	"github.com/bwprot/bwprotanalyzer/pkg/logging"
	"github.com/bwprot/bwprotanalyzer/pkg/model"
)

// FuzzParseHeaderLine tests header parsing with random inputs.
func FuzzParseHeaderLine(f *testing.F) {
	f.Add("@PR,018,700,14.11.2020,21:00:00,1,PutRelation 00018")
	f.Add("@PR,000,700,14.11.2020,20:59:00,0,Programmstart")
	f.Add("@PR,018,700,14.11.2020,21:00:00, 4 ,x,extra,fields")
	f.Add("@PR,018,700,31.02.2020,21:00:00,1,x")
	f.Add("@PR,018,700,14.11.2020,21:00:00,9,x")
	f.Add("@PR,,,,,,")
	f.Add("@PR")
	f.Add("")
	f.Add("@PR,018,700,14.11.2020,21:00:00,1,x\r\n")

	f.Fuzz(func(t *testing.T, line string) {
		h, err := protocol.ParseHeaderLine(line, time.UTC)
		_, err2 := protocol.ParseHeaderLine(line, time.UTC)
		if (err == nil) != (err2 == nil) {
			t.Fatalf("inconsistent result for %q: %v vs %v", line, err, err2)
		}
		if err != nil {
			return
		}

		if !h.Status.Valid() {
			t.Errorf("accepted invalid status %d for %q", h.Status, line)
		}

		// A trailing line break inside the info field would be trimmed
		// once it becomes the last field.
		if strings.TrimRight(h.Info, "\r\n") != h.Info {
			return
		}

		// Formatting the parsed fields back must parse to the same header.
		again := fmt.Sprintf("@PR,%s,%s,%s,%d,%s",
			h.RecordType, h.User, h.Timestamp.Format("02.01.2006,15:04:05"), int(h.Status), h.Info)
		h2, err := protocol.ParseHeaderLine(again, time.UTC)
		if err != nil {
			t.Fatalf("reformatted header %q rejected: %v", again, err)
		}
		if h2 != h {
			t.Errorf("round trip mismatch: %+v vs %+v", h, h2)
		}
	})
}

// FuzzParseIndexLine tests index line parsing with random inputs.
func FuzzParseIndexLine(f *testing.F) {
	f.Add("@IN,CON002                    Containererfassung")
	f.Add("@IN,   CON002")
	f.Add("@IN,")
	f.Add("@IN,\t\t")
	f.Add("@IN")
	f.Add("@IN,A B,C")

	f.Fuzz(func(t *testing.T, line string) {
		idx, err := protocol.ParseIndexLine(line)
		if err != nil {
			return
		}
		if idx.RecordIndex == "" {
			t.Errorf("accepted empty record index for %q", line)
		}
		if strings.IndexFunc(idx.RecordIndex, unicode.IsSpace) >= 0 {
			t.Errorf("record index %q contains whitespace", idx.RecordIndex)
		}
		if strings.TrimSpace(idx.Description) != idx.Description {
			t.Errorf("description %q not trimmed", idx.Description)
		}
	})
}

// FuzzReader feeds random files through the event stream and checks that
// every previous value is the value last recorded for the same field.
func FuzzReader(f *testing.F) {
	f.Add([]byte("@PR,018,700,14.11.2020,21:00:00,1,x\n@IN,CON002\n@AE,F,1\n@PR,018,700,14.11.2020,21:00:00,1,x\n@IN,CON002\n@AE,F,2\n@PR,000,700,14.11.2020,21:00:00,0,x\n"))
	f.Add([]byte("@AE,F,1\n@PR,018,700,14.11.2020,21:00:00,1,x\n"))
	f.Add([]byte("@PR,018,700,14.11.2020,21:00:00,1,x\n@IN,\n@PR,018,700,14.11.2020,21:00:00,1,x\n"))
	f.Add([]byte("\r\n\r\n"))
	f.Add([]byte{})

	f.Fuzz(func(t *testing.T, data []byte) {
		log := logging.NewLogger(logging.LevelError)
		log.SetOutput(io.Discard)
		r := protocol.NewReader(bytes.NewReader(data), protocol.Options{
			Encoding:      xunicode.UTF8,
			Location:      time.UTC,
			SkipMalformed: true,
			FlushTrailing: true,
			Logger:        log,
		})
		defer r.Close()

		seen := map[string]string{}
		events := 0
		for r.Next() {
			ev := r.Event()
			events++
			for _, c := range ev.Changes {
				key := ev.RecordIndex + "_" + ev.RecordType + "_" + c.Field
				want, ok := seen[key]
				if !ok {
					want = model.UnknownValue
				}
				if c.PreviousValue != want {
					t.Fatalf("field %q of %s/%s: previous %q, want %q",
						c.Field, ev.RecordType, ev.RecordIndex, c.PreviousValue, want)
				}
				seen[key] = c.Value
			}
		}
		if err := r.Err(); err != nil {
			// Only read errors end a pass when malformed blocks are skipped.
			if !errors.Is(err, errclass.ErrInputUnreadable) {
				t.Fatalf("unexpected error: %v", err)
			}
		}

		stats := r.Stats()
		if stats.Events != events {
			t.Errorf("stats report %d events, saw %d", stats.Events, events)
		}
	})
}
