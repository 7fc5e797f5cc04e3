package parquet

import (
	"bytes"
	"context"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/turbolytics/csvjson/internal"
	"github.com/turbolytics/csvjson/internal/stdout"
)

func records() []*internal.Record {
	fields := []string{"x", "y", "z", "name"}
	return []*internal.Record{
		internal.NewRecord(fields, []any{int64(1), int64(3), int64(0), "Alpha"}),
		internal.NewRecord(fields, []any{int64(10), math.NaN(), int64(8), "Beta"}),
	}
}

func TestSchemaFromRecords(t *testing.T) {
	t.Run("coordinates are int64, the rest utf8", func(t *testing.T) {
		s := SchemaFromRecords(records(), []string{"x", "y", "z"})
		assert.Equal(t, []string{
			"name=x, type=INT64, repetitiontype=OPTIONAL",
			"name=y, type=INT64, repetitiontype=OPTIONAL",
			"name=z, type=INT64, repetitiontype=OPTIONAL",
			"name=name, type=BYTE_ARRAY, convertedtype=UTF8, repetitiontype=OPTIONAL",
		}, s.ToGoParquetSchema())
	})

	t.Run("union of fields in first seen order", func(t *testing.T) {
		rs := []*internal.Record{
			internal.NewRecord([]string{"x", "name"}, []any{int64(1), "Alpha"}),
			internal.NewRecord([]string{"x", "name", "y"}, []any{int64(2), "Beta", int64(3)}),
		}
		s := SchemaFromRecords(rs, []string{"x", "y", "z"})

		var names []string
		for _, f := range s {
			names = append(names, f.Name)
		}
		assert.Equal(t, []string{"x", "name", "y", "z"}, names)
	})

	t.Run("empty collection keeps coordinates", func(t *testing.T) {
		s := SchemaFromRecords(nil, []string{"x", "y", "z"})
		assert.Len(t, s, 3)
	})
}

func TestRecordToParquetRow(t *testing.T) {
	s := SchemaFromRecords(records(), []string{"x", "y", "z"})

	t.Run("values in schema order", func(t *testing.T) {
		row, err := s.RecordToParquetRow(records()[0])
		require.NoError(t, err)
		assert.Equal(t, []any{int64(1), int64(3), int64(0), "Alpha"}, row)
	})

	t.Run("NaN becomes nil", func(t *testing.T) {
		row, err := s.RecordToParquetRow(records()[1])
		require.NoError(t, err)
		assert.Equal(t, []any{int64(10), nil, int64(8), "Beta"}, row)
	})

	t.Run("missing field becomes nil", func(t *testing.T) {
		r := internal.NewRecord([]string{"x"}, []any{int64(1)})
		row, err := s.RecordToParquetRow(r)
		require.NoError(t, err)
		assert.Equal(t, []any{int64(1), nil, nil, nil}, row)
	})

	t.Run("coordinate beyond int64 is an error", func(t *testing.T) {
		r := internal.NewRecord([]string{"x"}, []any{float64(1e20)})
		_, err := s.RecordToParquetRow(r)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "out of range")
	})

	t.Run("text in coordinate column", func(t *testing.T) {
		r := internal.NewRecord([]string{"x"}, []any{"1.4"})
		_, err := s.RecordToParquetRow(r)
		assert.Error(t, err)
	})
}

func TestPreserver(t *testing.T) {
	t.Run("repository required", func(t *testing.T) {
		_, err := New()
		assert.Error(t, err)
	})

	t.Run("invalid parallelism", func(t *testing.T) {
		_, err := New(WithRepository(stdout.New()), WithParallelism(0))
		assert.Error(t, err)
	})

	t.Run("writes a parquet file", func(t *testing.T) {
		var buf bytes.Buffer
		p, err := New(WithRepository(stdout.New(stdout.WithWriter(&buf))))
		require.NoError(t, err)

		require.NoError(t, p.Preserve(context.Background(), "earth.parquet", records()))

		out := bytes.TrimSuffix(buf.Bytes(), []byte("\n"))
		require.Greater(t, len(out), 8)
		assert.Equal(t, []byte("PAR1"), out[:4])
		assert.Equal(t, []byte("PAR1"), out[len(out)-4:])
	})
}
