// Package converter runs the CSV to position document pipeline: decode the
// source row by row, round the coordinates, collect every row, then
// serialize and write the collection once.
package converter

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/turbolytics/csvjson/internal"
	"github.com/turbolytics/csvjson/internal/catalog"
	lcsv "github.com/turbolytics/csvjson/internal/csv"
	"github.com/turbolytics/csvjson/internal/local"
	"github.com/turbolytics/csvjson/internal/position"
	"github.com/turbolytics/csvjson/internal/preserver"
)

const (
	DefaultSourcePath = "earth.csv"
	DefaultOutputKey  = "json/earth.json"
)

type Option func(*Converter)

func WithLogger(logger *zap.Logger) Option {
	return func(c *Converter) {
		c.logger = logger
	}
}

func WithSource(source *lcsv.Source) Option {
	return func(c *Converter) {
		c.source = source
	}
}

func WithTransformer(transformer *position.Transformer) Option {
	return func(c *Converter) {
		c.transformer = transformer
	}
}

func WithPreserver(p internal.Preserver) Option {
	return func(c *Converter) {
		c.preserver = p
	}
}

// WithRepository sets where the catalog is written, and where the default
// JSON preserver writes when no preserver is given.
func WithRepository(repository internal.Repository) Option {
	return func(c *Converter) {
		c.repository = repository
	}
}

func WithOutputKey(key string) Option {
	return func(c *Converter) {
		c.outputKey = key
	}
}

// WithCatalogKey enables writing the run catalog as JSON under key.
func WithCatalogKey(key string) Option {
	return func(c *Converter) {
		c.catalogKey = key
	}
}

type Converter struct {
	logger      *zap.Logger
	source      *lcsv.Source
	transformer *position.Transformer
	preserver   internal.Preserver
	repository  internal.Repository
	outputKey   string
	catalogKey  string
}

func New(opts ...Option) *Converter {
	c := &Converter{
		logger:    zap.NewNop(),
		outputKey: DefaultOutputKey,
	}

	for _, opt := range opts {
		opt(c)
	}

	if c.source == nil {
		c.source = lcsv.NewSource(DefaultSourcePath, lcsv.WithLogger(c.logger))
	}
	if c.transformer == nil {
		c.transformer = position.New(position.WithLogger(c.logger))
	}
	if c.repository == nil {
		c.repository = local.New(".", local.WithLogger(c.logger))
	}
	if c.preserver == nil {
		c.preserver = preserver.NewJSON(
			preserver.WithRepository(c.repository),
			preserver.WithLogger(c.logger),
		)
	}
	return c
}

// Run converts earth.csv into json/earth.json relative to the working
// directory.
func Run() error {
	_, err := New().Convert(context.Background())
	return err
}

// Convert performs one conversion run. The returned catalog is populated on
// both success and failure. Nothing is written to the output key unless the
// whole source was read and transformed without error.
func (c *Converter) Convert(ctx context.Context) (*catalog.Catalog, error) {
	cat := catalog.New(uuid.New(), c.source.Name(), c.outputKey)
	l := c.logger.With(zap.String("id", cat.ID))

	l.Info("converting",
		zap.String("source", cat.Source),
		zap.String("target", cat.Target),
	)

	records, err := c.collect(ctx, l, cat)
	if err == nil {
		err = c.preserver.Preserve(ctx, c.outputKey, records)
	}
	if err == nil {
		cat.NumRecordsProcessed = len(records)
		l.Info("CSV file successfully processed",
			zap.Int("num_source_records", cat.NumSourceRecords),
			zap.Int("num_records_processed", cat.NumRecordsProcessed),
			zap.Int("num_records_skipped", cat.NumRecordsSkipped),
			zap.Int("num_non_numeric_records", cat.NumNonNumericRecords),
		)
	}

	cat.Finish(err)

	if c.catalogKey != "" {
		if cerr := c.writeCatalog(ctx, cat); cerr != nil {
			l.Error("writing catalog", zap.Error(cerr))
			if err == nil {
				err = cerr
			}
		}
	}

	return cat, err
}

func (c *Converter) collect(ctx context.Context, l *zap.Logger, cat *catalog.Catalog) ([]*internal.Record, error) {
	snapshot, err := c.source.Snapshot(ctx)
	if err != nil {
		return nil, err
	}
	defer snapshot.Close()

	l.Debug("reading rows", zap.Strings("header", snapshot.Header()))

	records := make([]*internal.Record, 0)
	for {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		record, err := snapshot.Next()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, err
		}

		cat.NumSourceRecords++

		outcome, err := c.transformer.Transform(record)
		if err != nil {
			var ne *internal.NumericError
			if errors.As(err, &ne) {
				ne.Line = snapshot.Line()
			}
			return nil, err
		}

		switch outcome {
		case position.Skip:
			cat.NumRecordsSkipped++
			l.Debug("skipped row", zap.Int("line", snapshot.Line()))
			continue
		case position.Flagged:
			cat.NumNonNumericRecords++
		}

		l.Debug("row", zap.Object("row", record))
		records = append(records, record)
	}

	return records, nil
}

func (c *Converter) writeCatalog(ctx context.Context, cat *catalog.Catalog) error {
	bs, err := json.Marshal(cat)
	if err != nil {
		return err
	}
	return c.repository.Write(ctx, c.catalogKey, bytes.NewReader(bs))
}
