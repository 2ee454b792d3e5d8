package model

import (
	"fmt"
	"strings"
	"time"
)

// FieldChange is one attribute assignment together with the value it replaced.
type FieldChange struct {
	Field         string `json:"field"`
	Value         string `json:"value"`
	PreviousValue string `json:"previous_value"`
}

// Changed reports whether the assignment altered the stored value.
func (c FieldChange) Changed() bool {
	return c.Value != c.PreviousValue
}

func (c FieldChange) String() string {
	return fmt.Sprintf("<Änderung %s: %s -> %s>", c.Field, strings.TrimSpace(c.PreviousValue), strings.TrimSpace(c.Value))
}

// Event is one protocol entry: a header line plus its optional index and attribute lines.
type Event struct {
	RecordType  string        `json:"record_type"`
	User        string        `json:"user"`
	Timestamp   time.Time     `json:"timestamp"`
	Status      Status        `json:"status"`
	RecordIndex string        `json:"record_index"`
	Changes     []FieldChange `json:"changes"`
	Info        string        `json:"info,omitempty"`
	IndexInfo   string        `json:"index_info,omitempty"`
	Line        int           `json:"line"`
}

// IsHeaderOnly reports whether the event came from a block without index line.
func (e Event) IsHeaderOnly() bool {
	return e.RecordIndex == "" && len(e.Changes) == 0
}

// String returns a one-line German summary of the event.
func (e Event) String() string {
	ts := e.Timestamp.Format(TimestampLayout)
	if e.Status == StatusNew {
		switch e.RecordType {
		case "000":
			return fmt.Sprintf("<Programmstart von Benutzer %s am %s>", e.User, ts)
		case "001":
			return fmt.Sprintf("<Programmende von Benutzer %s am %s>", e.User, ts)
		}
	}
	label := e.Status.String()
	if label == "" {
		return fmt.Sprintf("<Datensatz %s in Bereich %s von Benutzer %s am %s>", e.RecordIndex, e.RecordType, e.User, ts)
	}
	return fmt.Sprintf("<%s Datensatz %s in Bereich %s von Benutzer %s am %s>", label, e.RecordIndex, e.RecordType, e.User, ts)
}
