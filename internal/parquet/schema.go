package parquet

import (
	"fmt"
	"math"
	"strings"

	"github.com/turbolytics/csvjson/internal"
)

const (
	TypeInt64     = "INT64"
	TypeByteArray = "BYTE_ARRAY"

	ConvertedTypeUTF8 = "UTF8"

	RepetitionOptional = "OPTIONAL"
)

type Field struct {
	Name           string
	Type           string
	ConvertedType  string
	RepetitionType string
}

type Schema []Field

// SchemaFromRecords derives a schema from the union of record fields in
// first-seen order. Coordinate fields are INT64, everything else is UTF8
// text. All fields are OPTIONAL so NaN coordinates can be stored as null.
func SchemaFromRecords(records []*internal.Record, coordinates []string) Schema {
	isCoordinate := make(map[string]bool, len(coordinates))
	for _, c := range coordinates {
		isCoordinate[c] = true
	}

	seen := make(map[string]bool)
	var s Schema
	add := func(name string) {
		if seen[name] {
			return
		}
		seen[name] = true

		f := Field{
			Name:           name,
			Type:           TypeByteArray,
			ConvertedType:  ConvertedTypeUTF8,
			RepetitionType: RepetitionOptional,
		}
		if isCoordinate[name] {
			f.Type = TypeInt64
			f.ConvertedType = ""
		}
		s = append(s, f)
	}

	for _, r := range records {
		for _, name := range r.Fields() {
			add(name)
		}
	}
	// an empty collection still produces a file with the coordinate columns
	for _, c := range coordinates {
		add(c)
	}

	return s
}

func (s Schema) ToGoParquetSchema() []string {
	schema := make([]string, len(s))
	for i, field := range s {
		parts := []string{
			fmt.Sprintf("name=%s", field.Name),
			fmt.Sprintf("type=%s", field.Type),
		}
		if field.ConvertedType != "" {
			parts = append(parts, fmt.Sprintf("convertedtype=%s", field.ConvertedType))
		}
		if field.RepetitionType != "" {
			parts = append(parts, fmt.Sprintf("repetitiontype=%s", field.RepetitionType))
		}
		schema[i] = strings.Join(parts, ", ")
	}

	return schema
}

// RecordToParquetRow lays out r in schema order. Fields the record does not
// have, and coordinates that are not numbers, become nil. Coordinates
// outside the int64 range are an error.
func (s Schema) RecordToParquetRow(r *internal.Record) ([]any, error) {
	values := make(map[string]any, len(r.Fields()))
	for i, v := range r.Values() {
		values[r.Fields()[i]] = v
	}

	row := make([]any, len(s))
	for i, field := range s {
		v := values[field.Name]
		if v == nil {
			continue
		}

		switch field.Type {
		case TypeInt64:
			switch n := v.(type) {
			case int64:
				row[i] = n
			case float64:
				if math.IsNaN(n) || math.IsInf(n, 0) {
					continue
				}
				if n < math.MinInt64 || n >= math.MaxInt64 {
					return nil, fmt.Errorf("field %q: %v is out of range for %s", field.Name, n, field.Type)
				}
				row[i] = int64(n)
			default:
				return nil, fmt.Errorf("field %q: cannot store %T as %s", field.Name, v, field.Type)
			}
		case TypeByteArray:
			if str, ok := v.(string); ok {
				row[i] = str
			} else {
				row[i] = fmt.Sprint(v)
			}
		default:
			return nil, fmt.Errorf("field %q: unsupported type %q", field.Name, field.Type)
		}
	}

	return row, nil
}
