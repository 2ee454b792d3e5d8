package metrics

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bwprot/bwprotanalyzer/pkg/model"
)

func sampleEvents() []model.Event {
	return []model.Event{
		{RecordType: "000", Status: model.StatusNew},
		{RecordType: "018", Status: model.StatusChange, Changes: []model.FieldChange{
			{Field: "A", Value: "1", PreviousValue: model.UnknownValue},
			{Field: "B", Value: "x", PreviousValue: "x"},
		}},
		{RecordType: "018", Status: model.StatusChange, Changes: []model.FieldChange{
			{Field: "A", Value: "2", PreviousValue: "1"},
		}},
		{RecordType: "018", Status: model.StatusPrint},
	}
}

func TestRecordEvent(t *testing.T) {
	r := NewRegistry()
	for _, ev := range sampleEvents() {
		r.RecordEvent(ev)
	}

	assert.Equal(t, 2.0, testutil.ToFloat64(r.events.WithLabelValues("CHANGE", "018")))
	assert.Equal(t, 1.0, testutil.ToFloat64(r.events.WithLabelValues("NEW", "000")))
	assert.Equal(t, 3.0, testutil.ToFloat64(r.fieldChanges))
	assert.Equal(t, 1.0, testutil.ToFloat64(r.suppressedChanges))
}

func TestSummary(t *testing.T) {
	r := NewRegistry()
	for _, ev := range sampleEvents() {
		r.RecordEvent(ev)
	}
	r.RecordPass(150*time.Millisecond, 2, 1, true)

	s, err := r.Summary()
	require.NoError(t, err)

	assert.Equal(t, 4, s.Events)
	assert.Equal(t, 3, s.FieldChanges)
	assert.Equal(t, 1, s.SuppressedChanges)
	assert.Equal(t, 2, s.SkippedBlocks)
	assert.Equal(t, 1, s.DroppedEvents)
	assert.True(t, s.DroppedTrailing)

	assert.Equal(t, []Count{
		{Status: "NEW", RecordType: "000", Events: 1},
		{Status: "CHANGE", RecordType: "018", Events: 2},
		{Status: "PRINT", RecordType: "018", Events: 1},
	}, s.ByType)
	assert.Equal(t, []Count{
		{Status: "CHANGE", Events: 2},
		{Status: "NEW", Events: 1},
		{Status: "PRINT", Events: 1},
	}, s.ByStatus)
}

func TestSummary_Empty(t *testing.T) {
	s, err := NewRegistry().Summary()
	require.NoError(t, err)
	assert.Equal(t, 0, s.Events)
	assert.Empty(t, s.ByType)
	assert.False(t, s.DroppedTrailing)
}

func TestWriteTextfile(t *testing.T) {
	r := NewRegistry()
	for _, ev := range sampleEvents() {
		r.RecordEvent(ev)
	}
	r.RecordPass(time.Second, 0, 0, false)

	path := filepath.Join(t.TempDir(), "bwprot.prom")
	require.NoError(t, r.WriteTextfile(path))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	text := string(data)
	assert.True(t, strings.Contains(text, `bwprot_events_total{record_type="018",status="CHANGE"} 2`), text)
	assert.Contains(t, text, "bwprot_field_changes_total 3")
	assert.Contains(t, text, "bwprot_parse_duration_seconds 1")
	assert.Contains(t, text, "bwprot_dropped_trailing_block 0")
}
