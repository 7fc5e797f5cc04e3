package csv

import (
	"context"
	"encoding/csv"
	"errors"
	"io"
	"os"

	"go.uber.org/zap"
	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"

	"github.com/turbolytics/csvjson/internal"
)

type Source struct {
	Path      string
	Delimiter rune

	logger *zap.Logger
}

func (s *Source) Name() string {
	return s.Path
}

// Snapshot is a single sequential pass over the source file.
type Snapshot struct {
	file   *os.File
	reader *csv.Reader
	path   string

	header []string
	fields []string
	// index maps a column position to its position in fields
	index []int
	line  int
}

func (s *Snapshot) Close() error {
	return s.file.Close()
}

// Header returns the raw header row as read from the file.
func (s *Snapshot) Header() []string {
	return s.header
}

// Line returns the line number the most recently returned record started on.
func (s *Snapshot) Line() int {
	return s.line
}

// Next returns the next record, or io.EOF once the file is exhausted.
func (s *Snapshot) Next() (*internal.Record, error) {
	if s.reader == nil {
		return nil, io.EOF
	}

	row, err := s.reader.Read()
	if err == io.EOF {
		return nil, io.EOF
	}
	if err != nil {
		return nil, wrapError(s.path, err)
	}

	s.line, _ = s.reader.FieldPos(0)

	values := make([]any, len(s.fields))
	for i, v := range row {
		values[s.index[i]] = v
	}

	return internal.NewRecord(s.fields, values), nil
}

// Snapshot opens the file and consumes the header row. An empty file yields
// a snapshot with no header and no records.
func (s *Source) Snapshot(ctx context.Context) (*Snapshot, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	f, err := os.Open(s.Path)
	if err != nil {
		return nil, &internal.FileAccessError{Op: "open", Path: s.Path, Err: err}
	}

	// strip a leading UTF-8 byte order mark, pass everything else through untouched
	r := csv.NewReader(transform.NewReader(f, unicode.BOMOverride(transform.Nop)))
	r.Comma = s.Delimiter

	snapshot := &Snapshot{
		file: f,
		path: s.Path,
	}

	header, err := r.Read()
	if err == io.EOF {
		s.logger.Debug("empty source", zap.String("path", s.Path))
		return snapshot, nil
	}
	if err != nil {
		f.Close()
		return nil, wrapError(s.Path, err)
	}

	snapshot.reader = r
	snapshot.header = header
	snapshot.fields, snapshot.index = dedupe(header)

	s.logger.Debug("opened source", zap.String("path", s.Path))

	return snapshot, nil
}

// dedupe collapses repeated header names: the first occurrence keeps its
// position and later columns with the same name overwrite its value.
func dedupe(header []string) ([]string, []int) {
	fields := make([]string, 0, len(header))
	index := make([]int, len(header))
	seen := make(map[string]int, len(header))
	for i, name := range header {
		if j, ok := seen[name]; ok {
			index[i] = j
			continue
		}
		seen[name] = len(fields)
		index[i] = len(fields)
		fields = append(fields, name)
	}
	return fields, index
}

func wrapError(path string, err error) error {
	var pe *csv.ParseError
	if errors.As(err, &pe) {
		return &internal.ParseError{Line: pe.Line, Err: err}
	}
	return &internal.FileAccessError{Op: "read", Path: path, Err: err}
}

type SourceOption func(*Source)

func WithDelimiter(delimiter rune) SourceOption {
	return func(s *Source) {
		s.Delimiter = delimiter
	}
}

func WithLogger(logger *zap.Logger) SourceOption {
	return func(s *Source) {
		s.logger = logger
	}
}

func NewSource(path string, opts ...SourceOption) *Source {
	s := Source{
		Path:      path,
		Delimiter: ',',
		logger:    zap.NewNop(),
	}

	for _, opt := range opts {
		opt(&s)
	}

	return &s
}
