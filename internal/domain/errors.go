package domain

import (
	"errors"
	"fmt"
	"strings"
)

// The pipeline's failure taxonomy. Every stage either returns its artifact or
// one of these terminal errors; there is no partial success. Per-cell parse
// failures are not errors at all — they degrade to missing values — and only
// an aggregate outcome (zero surviving rows) becomes fatal.

// DecodeError reports that no candidate encoding both decoded the upload
// cleanly and passed the content-plausibility check.
type DecodeError struct {
	Tried []string
}

func (e *DecodeError) Error() string {
	return fmt.Sprintf("decode: no candidate encoding produced recognizable text (tried %s)",
		strings.Join(e.Tried, ", "))
}

// HeaderNotFoundError reports that no line within the scan window matched the
// header marker tokens.
type HeaderNotFoundError struct {
	Window int
}

func (e *HeaderNotFoundError) Error() string {
	return fmt.Sprintf("header: no column header row found in the first %d lines", e.Window)
}

// TabularParseError reports an empty header row or a table with no consistent
// delimiter.
type TabularParseError struct {
	Reason string
}

func (e *TabularParseError) Error() string {
	return "table: " + e.Reason
}

// TypeCoercionError reports a missing timestamp column or a table where no
// row survived timestamp parsing.
type TypeCoercionError struct {
	Reason string
}

func (e *TypeCoercionError) Error() string {
	return "coerce: " + e.Reason
}

// ErrorName returns the taxonomy name for a pipeline error, or "InternalError"
// for anything outside the taxonomy. Used by the HTTP surface to tag failure
// responses.
func ErrorName(err error) string {
	var (
		decodeErr *DecodeError
		headerErr *HeaderNotFoundError
		tableErr  *TabularParseError
		coerceErr *TypeCoercionError
	)
	switch {
	case errors.As(err, &decodeErr):
		return "DecodeError"
	case errors.As(err, &headerErr):
		return "HeaderNotFoundError"
	case errors.As(err, &tableErr):
		return "TabularParseError"
	case errors.As(err, &coerceErr):
		return "TypeCoercionError"
	default:
		return "InternalError"
	}
}
