package loader

import (
	"errors"
	"fmt"
	"strings"
)

// Sentinel causes carried by LoadError.
var (
	ErrMissingColumns = errors.New("missing required columns")
	ErrMalformedRow   = errors.New("malformed row")
	ErrEmptySource    = errors.New("source has no header row")
	ErrUnavailable    = errors.New("source unavailable")
)

// LoadError reports why a channel table could not be loaded.
type LoadError struct {
	Source  string   // file path, URL, or redacted DSN
	Row     int      // 1-based data row; 0 when not row specific
	Column  string   // offending column, if any
	Missing []string // required columns absent from the header
	Err     error
}

func (e *LoadError) Error() string {
	var b strings.Builder
	b.WriteString("load ")
	b.WriteString(e.Source)
	switch {
	case len(e.Missing) > 0:
		fmt.Fprintf(&b, ": %v: %s", ErrMissingColumns, strings.Join(e.Missing, ", "))
		return b.String()
	case e.Row > 0 && e.Column != "":
		fmt.Fprintf(&b, ": row %d column %s", e.Row, e.Column)
	case e.Row > 0:
		fmt.Fprintf(&b, ": row %d", e.Row)
	}
	if e.Err != nil {
		b.WriteString(": ")
		b.WriteString(e.Err.Error())
	}
	return b.String()
}

// Unwrap returns the underlying cause.
func (e *LoadError) Unwrap() error {
	if len(e.Missing) > 0 && e.Err == nil {
		return ErrMissingColumns
	}
	return e.Err
}

func rowError(source string, row int, column string, err error) *LoadError {
	return &LoadError{Source: source, Row: row, Column: column, Err: fmt.Errorf("%w: %w", ErrMalformedRow, err)}
}
