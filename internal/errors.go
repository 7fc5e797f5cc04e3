package internal

import "fmt"

// FileAccessError is returned when a source cannot be opened or read, or when
// a destination cannot be written.
type FileAccessError struct {
	Op   string
	Path string
	Err  error
}

func (e *FileAccessError) Error() string {
	return fmt.Sprintf("file access: %s %s: %v", e.Op, e.Path, e.Err)
}

func (e *FileAccessError) Unwrap() error {
	return e.Err
}

// ParseError is returned when a CSV line cannot be decoded into a record.
type ParseError struct {
	Line int
	Err  error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("parse: line %d: %v", e.Line, e.Err)
}

func (e *ParseError) Unwrap() error {
	return e.Err
}

// NumericError is returned for a coordinate that is not a number when
// non-numeric values are configured to fail the conversion.
type NumericError struct {
	Line  int
	Field string
	Value string
}

func (e *NumericError) Error() string {
	return fmt.Sprintf("numeric: line %d: field %q: %q is not a number", e.Line, e.Field, e.Value)
}
