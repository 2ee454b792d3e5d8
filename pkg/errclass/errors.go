package errclass

import "fmt"

// BWError is a stable, machine-readable error class.
type BWError struct {
	Code    string
	Message string
}

func (e *BWError) Error() string {
	if e.Message == "" {
		return e.Code
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *BWError) Is(target error) bool {
	t, ok := target.(*BWError)
	return ok && e.Code == t.Code
}

// WithMessage returns a new BWError with the same Code but a specific message.
func (e *BWError) WithMessage(msg string) *BWError {
	return &BWError{Code: e.Code, Message: msg}
}

// WithMessagef returns a new BWError with a formatted message.
func (e *BWError) WithMessagef(format string, args ...any) *BWError {
	return &BWError{Code: e.Code, Message: fmt.Sprintf(format, args...)}
}

// Error classes surfaced by the analyzer.
var (
	ErrMalformedLine       = &BWError{Code: "E_MALFORMED_LINE"}
	ErrUnknownStatus       = &BWError{Code: "E_UNKNOWN_STATUS"}
	ErrInputUnreadable     = &BWError{Code: "E_INPUT_UNREADABLE"}
	ErrOutputUnwritable    = &BWError{Code: "E_OUTPUT_UNWRITABLE"}
	ErrEncodingUnsupported = &BWError{Code: "E_ENCODING_UNSUPPORTED"}
	ErrConfigInvalid       = &BWError{Code: "E_CONFIG_INVALID"}
)
