package parquet

import (
	"bytes"
	"context"
	"fmt"

	"github.com/xitongsys/parquet-go-source/writerfile"
	goparquet "github.com/xitongsys/parquet-go/parquet"
	"github.com/xitongsys/parquet-go/writer"
	"go.uber.org/zap"

	"github.com/turbolytics/csvjson/internal"
	"github.com/turbolytics/csvjson/internal/position"
)

type Option func(*Preserver)

func WithLogger(logger *zap.Logger) Option {
	return func(p *Preserver) {
		p.logger = logger
	}
}

func WithRepository(repository internal.Repository) Option {
	return func(p *Preserver) {
		p.repository = repository
	}
}

func WithCoordinates(fields []string) Option {
	return func(p *Preserver) {
		if len(fields) > 0 {
			p.coordinates = fields
		}
	}
}

func WithParallelism(np int64) Option {
	return func(p *Preserver) {
		p.parallelism = np
	}
}

// Preserver writes the record collection as a single snappy compressed
// parquet file.
type Preserver struct {
	logger      *zap.Logger
	repository  internal.Repository
	coordinates []string
	parallelism int64
}

func New(opts ...Option) (*Preserver, error) {
	p := &Preserver{
		logger:      zap.NewNop(),
		coordinates: position.DefaultFields,
		parallelism: 1,
	}

	for _, opt := range opts {
		opt(p)
	}

	if p.repository == nil {
		return nil, fmt.Errorf("parquet preserver: no repository configured")
	}
	if p.parallelism < 1 {
		return nil, fmt.Errorf("parquet preserver: parallelism must be positive, got %d", p.parallelism)
	}

	return p, nil
}

// Encode renders records into parquet bytes.
func (p *Preserver) Encode(records []*internal.Record) ([]byte, error) {
	schema := SchemaFromRecords(records, p.coordinates)

	var buf bytes.Buffer
	pw, err := writer.NewCSVWriter(schema.ToGoParquetSchema(), writerfile.NewWriterFile(&buf), p.parallelism)
	if err != nil {
		return nil, fmt.Errorf("parquet writer: %w", err)
	}
	pw.CompressionType = goparquet.CompressionCodec_SNAPPY

	for _, r := range records {
		row, err := schema.RecordToParquetRow(r)
		if err != nil {
			return nil, err
		}
		if err := pw.Write(row); err != nil {
			return nil, fmt.Errorf("parquet write: %w", err)
		}
	}

	if err := pw.WriteStop(); err != nil {
		return nil, fmt.Errorf("parquet write stop: %w", err)
	}

	return buf.Bytes(), nil
}

func (p *Preserver) Preserve(ctx context.Context, key string, records []*internal.Record) error {
	bs, err := p.Encode(records)
	if err != nil {
		return err
	}

	p.logger.Debug("preserving parquet file",
		zap.String("key", key),
		zap.Int("records", len(records)),
		zap.Int("bytes", len(bs)),
	)

	return p.repository.Write(ctx, key, bytes.NewReader(bs))
}
