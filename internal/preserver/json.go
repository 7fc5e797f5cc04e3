package preserver

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"

	"go.uber.org/zap"

	"github.com/turbolytics/csvjson/internal"
)

// DefaultDocumentKey is the single key of the output document.
const DefaultDocumentKey = "position"

type JSONOption func(*JSON)

func WithRepository(repository internal.Repository) JSONOption {
	return func(j *JSON) {
		j.repository = repository
	}
}

func WithDocumentKey(key string) JSONOption {
	return func(j *JSON) {
		if key != "" {
			j.documentKey = key
		}
	}
}

// WithIndent pretty prints the document. An empty indent keeps it compact.
func WithIndent(indent string) JSONOption {
	return func(j *JSON) {
		j.indent = indent
	}
}

func WithLogger(logger *zap.Logger) JSONOption {
	return func(j *JSON) {
		j.logger = logger
	}
}

// JSON writes the whole record collection as {"<document key>": [...]}.
type JSON struct {
	repository  internal.Repository
	documentKey string
	indent      string
	logger      *zap.Logger
}

func NewJSON(opts ...JSONOption) *JSON {
	j := &JSON{
		documentKey: DefaultDocumentKey,
		logger:      zap.NewNop(),
	}

	for _, opt := range opts {
		opt(j)
	}
	return j
}

// Encode serializes records wrapped in the output document. The result has
// no trailing newline.
func (j *JSON) Encode(records []*internal.Record) ([]byte, error) {
	if records == nil {
		records = []*internal.Record{}
	}

	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if j.indent != "" {
		enc.SetIndent("", j.indent)
	}

	if err := enc.Encode(map[string]any{j.documentKey: records}); err != nil {
		return nil, fmt.Errorf("encode json document: %w", err)
	}

	return bytes.TrimSuffix(buf.Bytes(), []byte("\n")), nil
}

func (j *JSON) Preserve(ctx context.Context, key string, records []*internal.Record) error {
	if j.repository == nil {
		return fmt.Errorf("json preserver: no repository configured")
	}

	bs, err := j.Encode(records)
	if err != nil {
		return err
	}

	j.logger.Debug("preserving json document",
		zap.String("key", key),
		zap.Int("records", len(records)),
		zap.Int("bytes", len(bs)),
	)

	return j.repository.Write(ctx, key, bytes.NewReader(bs))
}
