package parse

import (
	"encoding/json"
	"errors"
	"fmt"
)

// Every error produced while turning a live times response into
// model values matches ErrLiveTimes.
var ErrLiveTimes = errors.New("live times")

type kindError struct {
	msg string
}

func (e *kindError) Error() string { return e.msg }
func (e *kindError) Unwrap() error { return ErrLiveTimes }

var (
	// API key rejected.
	ErrAuthentication error = &kindError{"authentication failed"}

	// Invalid parameter, or server side processing failure.
	ErrServer error = &kindError{"server error"}

	ErrMaintenance      error = &kindError{"system under maintenance"}
	ErrSystemOverloaded error = &kindError{"system overloaded"}

	// Fault code we don't know about.
	ErrUnknown error = &kindError{"unknown server error"}

	// Response isn't shaped the way it should be.
	ErrMalformedResponse error = &kindError{"malformed response"}

	// Fetching the response failed. Never produced by this
	// package, but used to wrap transport errors so callers can
	// deal with a single taxonomy.
	ErrIO error = &kindError{"i/o error"}
)

var faultKinds = map[string]error{
	"INVALID_APP_KEY":    ErrAuthentication,
	"INVALID_PARAMETER":  ErrServer,
	"PROCESSING_ERROR":   ErrServer,
	"SYSTEM_MAINTENANCE": ErrMaintenance,
	"SYSTEM_OVERLOADED":  ErrSystemOverloaded,
}

// A fault reported by the server in place of data.
type FaultError struct {
	Code string
	kind error
}

func (e *FaultError) Error() string {
	return fmt.Sprintf("%s (faultcode %s)", e.kind, e.Code)
}

func (e *FaultError) Unwrap() error {
	return e.kind
}

// Checks a response for a server reported fault. Returns nil if there
// is none, and a *FaultError otherwise.
func CheckForError(doc Document) error {
	raw, found := doc["faultcode"]
	if !found {
		return nil
	}

	var code string
	if err := json.Unmarshal(raw, &code); err != nil {
		// Present but not a string. Still a fault, just not
		// one we recognize.
		return &FaultError{Code: string(raw), kind: ErrUnknown}
	}

	kind, known := faultKinds[code]
	if !known {
		kind = ErrUnknown
	}

	return &FaultError{Code: code, kind: kind}
}
