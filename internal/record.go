package internal

import (
	"bytes"
	"encoding/json"
	"math"

	"go.uber.org/zap/zapcore"
)

// Record is a struct that contains a set of fields and their corresponding values.
// It is used to represent a row of data from a source.
// Field order is critical for some serializers, so we keep them in a separate slice.
type Record struct {
	fields []string
	values []any
}

// NewRecord builds a record over fields and values. The fields slice may be
// shared between records; Set never mutates it in place.
func NewRecord(fields []string, values []any) *Record {
	return &Record{
		fields: fields,
		values: values,
	}
}

func (r *Record) Fields() []string {
	return r.fields
}

func (r *Record) Values() []any {
	return r.values
}

func (r *Record) index(field string) int {
	for i, f := range r.fields {
		if f == field {
			return i
		}
	}
	return -1
}

// Get returns the value stored under field.
func (r *Record) Get(field string) (any, bool) {
	i := r.index(field)
	if i < 0 {
		return nil, false
	}
	return r.values[i], true
}

// Set replaces the value of field in place, or appends the field at the end
// when the record does not have it yet.
func (r *Record) Set(field string, value any) {
	if i := r.index(field); i >= 0 {
		r.values[i] = value
		return
	}
	r.fields = append(r.fields[:len(r.fields):len(r.fields)], field)
	r.values = append(r.values[:len(r.values):len(r.values)], value)
}

// MarshalJSON encodes the record as an object whose keys follow field order.
// Non-finite floats are encoded as null. Integral floats below 1e21 are
// written in plain decimal form.
func (r *Record) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, field := range r.fields {
		if i > 0 {
			buf.WriteByte(',')
		}
		if err := encodeValue(&buf, field); err != nil {
			return nil, err
		}
		buf.WriteByte(':')
		if err := encodeValue(&buf, r.values[i]); err != nil {
			return nil, err
		}
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

func encodeValue(buf *bytes.Buffer, v any) error {
	if f, ok := v.(float64); ok && (math.IsNaN(f) || math.IsInf(f, 0)) {
		buf.WriteString("null")
		return nil
	}

	enc := json.NewEncoder(buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(v); err != nil {
		return err
	}
	// Encode terminates every value with a newline
	buf.Truncate(buf.Len() - 1)
	return nil
}

func (r *Record) MarshalLogObject(enc zapcore.ObjectEncoder) error {
	for i, field := range r.fields {
		switch v := r.values[i].(type) {
		case string:
			enc.AddString(field, v)
		case int64:
			enc.AddInt64(field, v)
		case float64:
			enc.AddFloat64(field, v)
		default:
			if err := enc.AddReflected(field, v); err != nil {
				return err
			}
		}
	}
	return nil
}
