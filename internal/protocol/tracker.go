package protocol

import "github.com/bwprot/bwprotanalyzer/pkg/model"

// Tracker remembers the last value assigned to every (record index,
// record type, field) triple seen during one pass over a protocol file.
//
// The file only ever records new values; the tracker supplies the old one.
// A Tracker must not be shared between passes.
type Tracker struct {
	fields map[string]model.FieldChange
}

// NewTracker creates an empty tracker.
func NewTracker() *Tracker {
	return &Tracker{fields: make(map[string]model.FieldChange)}
}

func trackerKey(recordIndex, recordType, field string) string {
	return recordIndex + "_" + recordType + "_" + field
}

// Update records value for the field and returns the change against the
// previously recorded value, or model.UnknownValue on first sight.
func (t *Tracker) Update(recordIndex, recordType, field, value string) model.FieldChange {
	key := trackerKey(recordIndex, recordType, field)

	previous := model.UnknownValue
	if old, ok := t.fields[key]; ok {
		previous = old.Value
	}

	change := model.FieldChange{Field: field, Value: value, PreviousValue: previous}
	t.fields[key] = change
	return change
}

// Len returns the number of tracked keys.
func (t *Tracker) Len() int {
	return len(t.fields)
}
