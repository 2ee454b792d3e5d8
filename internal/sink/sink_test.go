package sink_test

import (
	"bufio"
	"bytes"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/text/encoding/charmap"

	"github.com/bwprot/bwprotanalyzer/internal/render"
	"github.com/bwprot/bwprotanalyzer/internal/sink"
	"github.com/bwprot/bwprotanalyzer/pkg/errclass"
	"github.com/bwprot/bwprotanalyzer/pkg/model"
)

var ts = time.Date(2020, 11, 14, 21, 0, 0, 0, time.UTC)

func renderer(t *testing.T) *render.Renderer {
	t.Helper()
	r, err := render.New(render.Options{})
	require.NoError(t, err)
	return r
}

func events() []model.Event {
	return []model.Event{
		{RecordType: "000", User: "Jürgen", Timestamp: ts, Status: model.StatusNew, Line: 1},
		{RecordType: "018", User: "700", Timestamp: ts, Status: model.Status(8), Line: 2},
		{
			RecordType: "018", User: "700", Timestamp: ts, Status: model.StatusChange, RecordIndex: "K1", Line: 3,
			Changes: []model.FieldChange{{Field: "NAME", Value: "Müßig", PreviousValue: model.UnknownValue}},
		},
	}
}

func TestParseFormat(t *testing.T) {
	f, err := sink.ParseFormat("")
	require.NoError(t, err)
	assert.Equal(t, sink.FormatText, f)

	f, err = sink.ParseFormat("JSONL")
	require.NoError(t, err)
	assert.Equal(t, sink.FormatJSONL, f)

	_, err = sink.ParseFormat("csv")
	assert.Error(t, err)
}

func TestTextSink_WritesCodePage(t *testing.T) {
	var buf bytes.Buffer
	s := sink.New(&buf, nil, sink.FormatText, charmap.Windows1252, renderer(t))

	for _, ev := range events() {
		require.NoError(t, s.Write(ev))
	}
	require.NoError(t, s.Close())

	assert.Equal(t, sink.Stats{Written: 2, Dropped: 1}, s.Stats())

	decoded, err := charmap.Windows1252.NewDecoder().Bytes(buf.Bytes())
	require.NoError(t, err)
	assert.Equal(t,
		"2020-11-14 21:00:00\t000\tSTART\tJürgen\tBenutzer Jürgen hat sich angemeldet\n"+
			"2020-11-14 21:00:00\t018\tCHANGE\t700\tBenutzer 700 hat Datensatz K1 im Bereich 018 geändert:\n"+
			"    NAME: unbekannt -> Müßig\n",
		string(decoded))

	// ü is one byte in cp1252.
	assert.Contains(t, buf.String(), "J\xfcrgen")
}

func TestJSONLSink(t *testing.T) {
	var buf bytes.Buffer
	s := sink.New(&buf, nil, sink.FormatJSONL, nil, renderer(t))

	for _, ev := range events() {
		require.NoError(t, s.Write(ev))
	}
	assert.Equal(t, 3, s.Stats().Written)

	scanner := bufio.NewScanner(&buf)
	var got []map[string]any
	for scanner.Scan() {
		var m map[string]any
		require.NoError(t, json.Unmarshal(scanner.Bytes(), &m))
		got = append(got, m)
	}
	require.Len(t, got, 3)
	assert.Equal(t, "NEW", got[0]["status"])
	assert.Equal(t, "Jürgen", got[0]["user"])
	assert.Equal(t, "CHANGE", got[2]["status"])

	changes := got[2]["changes"].([]any)
	require.Len(t, changes, 1)
	assert.Equal(t, "unbekannt", changes[0].(map[string]any)["previous_value"])
}

func TestCreate_File(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out", "protocol.log")

	s, err := sink.Create(path, sink.FormatText, charmap.Windows1252, renderer(t))
	require.NoError(t, err)
	require.NoError(t, s.Write(events()[0]))
	require.NoError(t, s.Close())
	require.NoError(t, s.Close())

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	decoded, err := charmap.Windows1252.NewDecoder().Bytes(data)
	require.NoError(t, err)
	assert.Contains(t, string(decoded), "Benutzer Jürgen hat sich angemeldet")
}

func TestCreate_TruncatesExisting(t *testing.T) {
	path := filepath.Join(t.TempDir(), "protocol.log")
	require.NoError(t, os.WriteFile(path, []byte("old content\n"), 0644))

	s, err := sink.Create(path, sink.FormatText, charmap.Windows1252, renderer(t))
	require.NoError(t, err)
	require.NoError(t, s.Close())

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Empty(t, data)
}

func TestCreate_Unwritable(t *testing.T) {
	dir := t.TempDir()
	blocker := filepath.Join(dir, "file")
	require.NoError(t, os.WriteFile(blocker, nil, 0644))

	_, err := sink.Create(filepath.Join(blocker, "out.log"), sink.FormatText, nil, renderer(t))
	require.Error(t, err)
	assert.True(t, errors.Is(err, errclass.ErrOutputUnwritable))
}

type failingWriter struct{}

func (failingWriter) Write([]byte) (int, error) { return 0, errors.New("disk full") }

func TestTextSink_WriteError(t *testing.T) {
	s := sink.New(failingWriter{}, nil, sink.FormatText, nil, renderer(t))
	err := s.Write(events()[0])
	require.Error(t, err)
	assert.True(t, errors.Is(err, errclass.ErrOutputUnwritable))
	assert.Contains(t, err.Error(), "disk full")
}
