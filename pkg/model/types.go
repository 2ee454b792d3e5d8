package model

import "fmt"

// Status is the operation code carried in a protocol header line.
type Status int

const (
	StatusNew                     Status = 0
	StatusChange                  Status = 1
	StatusDelete                  Status = 2
	StatusPrint                   Status = 3
	StatusDeleteThroughProcessing Status = 4
)

// UnknownValue is the previous value reported for a field that was never seen before.
const UnknownValue = "unbekannt"

// TimestampLayout is how event timestamps are printed.
const TimestampLayout = "2006-01-02 15:04:05"

var statusKeywords = map[Status]string{
	StatusNew:                     "NEW",
	StatusChange:                  "CHANGE",
	StatusDelete:                  "DELETE",
	StatusPrint:                   "PRINT",
	StatusDeleteThroughProcessing: "DELETEWANDL",
}

var statusLabels = map[Status]string{
	StatusNew:                     "Neuer",
	StatusChange:                  "Geänderter",
	StatusDelete:                  "Gelöschter",
	StatusPrint:                   "Gedruckter",
	StatusDeleteThroughProcessing: "Gewandelter",
}

// ParseStatus maps a raw status code onto a Status.
func ParseStatus(code int) (Status, error) {
	s := Status(code)
	if !s.Valid() {
		return 0, fmt.Errorf("unknown status code %d", code)
	}
	return s, nil
}

// Valid reports whether s is one of the five defined codes.
func (s Status) Valid() bool {
	_, ok := statusKeywords[s]
	return ok
}

// Keyword returns the upper-case tag used in rendered log lines.
func (s Status) Keyword() string {
	if k, ok := statusKeywords[s]; ok {
		return k
	}
	return fmt.Sprintf("STATUS%d", int(s))
}

// String returns the German adjective describing the record state.
func (s Status) String() string {
	if l, ok := statusLabels[s]; ok {
		return l
	}
	return ""
}

func (s Status) MarshalText() ([]byte, error) {
	return []byte(s.Keyword()), nil
}

func (s *Status) UnmarshalText(text []byte) error {
	for st, k := range statusKeywords {
		if k == string(text) {
			*s = st
			return nil
		}
	}
	return fmt.Errorf("unknown status %q", string(text))
}
