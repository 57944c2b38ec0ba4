package listening

import (
	"errors"
	"fmt"
)

// Error kinds reported by the source parsers. Each aborts the load of the
// offending file; no partial results are returned.
var (
	// ErrSourceRead covers missing or unreadable files and a missing sheet.
	ErrSourceRead = errors.New("source read error")
	// ErrSchema means an expected column or field is absent.
	ErrSchema = errors.New("schema error")
	// ErrTimestamp means a row's timestamp doesn't match the exact expected format.
	ErrTimestamp = errors.New("timestamp parse error")
	// ErrValue means a numeric field is malformed or negative.
	ErrValue = errors.New("invalid value")
)

// SourceError ties a parse failure to the file and, when known, the row that
// caused it.
type SourceError struct {
	Platform Platform
	Path     string
	Row      int // 1-based data row, 0 when the error is not row specific
	Kind     error
	Err      error
}

func (e *SourceError) Error() string {
	msg := fmt.Sprintf("%s export %q: %v", e.Platform, e.Path, e.Kind)
	if e.Row > 0 {
		msg += fmt.Sprintf(" (row %d)", e.Row)
	}
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

// Unwrap exposes both the error kind and the underlying cause, so that
// errors.Is works against the sentinels above as well as e.g. fs.ErrNotExist.
func (e *SourceError) Unwrap() []error {
	errs := []error{e.Kind}
	if e.Err != nil {
		errs = append(errs, e.Err)
	}
	return errs
}
