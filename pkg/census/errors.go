package census

import "errors"

var (
	ErrShortPreamble   = errors.New("file ends before the column header")
	ErrMissingColumn   = errors.New("expected column not found")
	ErrInvalidEncoding = errors.New("invalid text encoding")
	ErrMalformedRow    = errors.New("malformed row")
)
