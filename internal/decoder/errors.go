// File path: internal/decoder/errors.go
package decoder

import "fmt"

// EncodingError reports an unknown or unsupported code page name.
type EncodingError struct {
	Name string
}

func (e *EncodingError) Error() string {
	return fmt.Sprintf("decoder: unknown code page %q", e.Name)
}

// BoundaryError reports a buffer that does not divide into whole
// records of the schema's fixed length.
type BoundaryError struct {
	BufferLen int
	RecordLen int
}

func (e *BoundaryError) Error() string {
	if e.BufferLen == 0 {
		return fmt.Sprintf("decoder: empty buffer for %d byte records", e.RecordLen)
	}
	return fmt.Sprintf("decoder: buffer of %d bytes is not a multiple of the %d byte record length (remainder %d)",
		e.BufferLen, e.RecordLen, e.BufferLen%e.RecordLen)
}

// FieldError wraps a decode failure with the record index and the
// qualified field name where it occurred.
type FieldError struct {
	Record int
	Field  string
	Err    error
}

func (e *FieldError) Error() string {
	return fmt.Sprintf("decoder: record %d field %s: %v", e.Record, e.Field, e.Err)
}

func (e *FieldError) Unwrap() error { return e.Err }
