// Package position rounds the coordinate fields of decoded records.
//
// Coordinates are parsed leniently: leading whitespace is skipped and the
// longest numeric prefix is used, so "1.5abc" is 1.5 and "" is not a number.
// Rounding is half-up toward positive infinity: 2.5 is 3, -1.5 is -1 and
// -0.5 is 0.
package position

import (
	"fmt"
	"math"
	"regexp"
	"strconv"
	"strings"
	"unicode"

	"go.uber.org/zap"

	"github.com/turbolytics/csvjson/internal"
)

// Policy decides what happens to a record whose coordinate is not a number.
type Policy string

const (
	// PolicyPassthrough stores NaN in the field and keeps the record.
	PolicyPassthrough Policy = "passthrough"
	// PolicySkip drops the record.
	PolicySkip Policy = "skip"
	// PolicyFail aborts the conversion.
	PolicyFail Policy = "fail"
)

func ParsePolicy(s string) (Policy, error) {
	switch p := Policy(strings.ToLower(strings.TrimSpace(s))); p {
	case PolicyPassthrough, PolicySkip, PolicyFail:
		return p, nil
	case "":
		return PolicyPassthrough, nil
	default:
		return "", fmt.Errorf("unknown non-numeric policy: %q", s)
	}
}

type Outcome int

const (
	// Keep means every coordinate was rounded.
	Keep Outcome = iota
	// Flagged means the record is kept with at least one NaN coordinate.
	Flagged
	// Skip means the record must be dropped.
	Skip
)

func (o Outcome) String() string {
	switch o {
	case Keep:
		return "keep"
	case Flagged:
		return "flagged"
	case Skip:
		return "skip"
	}
	return "unknown"
}

// DefaultFields are the coordinate fields rounded when none are configured.
var DefaultFields = []string{"x", "y", "z"}

var leadingNumber = regexp.MustCompile(`^[+-]?(Infinity|(\d+\.?\d*|\.\d+)([eE][+-]?\d+)?)`)

// ParseFloat returns the number at the start of s, or NaN when s does not
// start with one.
func ParseFloat(s string) float64 {
	s = strings.TrimLeftFunc(s, func(r rune) bool {
		return unicode.IsSpace(r) || r == '\ufeff'
	})

	m := leadingNumber.FindString(s)
	if m == "" {
		return math.NaN()
	}

	f, err := strconv.ParseFloat(m, 64)
	if err != nil {
		// out of range values come back as ±Inf alongside ErrRange
		if ne, ok := err.(*strconv.NumError); ok && ne.Err == strconv.ErrRange {
			return f
		}
		return math.NaN()
	}
	return f
}

// Round rounds half-up toward positive infinity.
func Round(f float64) float64 {
	r := math.Floor(f)
	if f-r >= 0.5 {
		r++
	}
	return r
}

// Coordinate parses and rounds s. The value is an int64 when it fits and a
// float64 holding an integral value otherwise. It reports false when s is
// not a number or rounds to ±Inf.
func Coordinate(s string) (any, bool) {
	r := Round(ParseFloat(s))
	if math.IsNaN(r) || math.IsInf(r, 0) {
		return nil, false
	}
	if r < math.MinInt64 || r >= math.MaxInt64 {
		return r, true
	}
	return int64(r), true
}

type Transformer struct {
	fields []string
	policy Policy
	logger *zap.Logger
}

type Option func(*Transformer)

func WithFields(fields []string) Option {
	return func(t *Transformer) {
		if len(fields) > 0 {
			t.fields = fields
		}
	}
}

func WithPolicy(policy Policy) Option {
	return func(t *Transformer) {
		t.policy = policy
	}
}

func WithLogger(logger *zap.Logger) Option {
	return func(t *Transformer) {
		t.logger = logger
	}
}

func New(opts ...Option) *Transformer {
	t := &Transformer{
		fields: DefaultFields,
		policy: PolicyPassthrough,
		logger: zap.NewNop(),
	}

	for _, opt := range opts {
		opt(t)
	}
	return t
}

func (t *Transformer) Fields() []string {
	return t.fields
}

func (t *Transformer) Policy() Policy {
	return t.policy
}

// Transform replaces each coordinate field of r with its rounded value.
// Missing fields are treated as empty text and appended to r.
// Under PolicyFail the returned *internal.NumericError has no line set.
func (t *Transformer) Transform(r *internal.Record) (Outcome, error) {
	outcome := Keep
	for _, field := range t.fields {
		raw, _ := r.Get(field)
		text, _ := raw.(string)

		if v, ok := Coordinate(text); ok {
			r.Set(field, v)
			continue
		}

		switch t.policy {
		case PolicyFail:
			return Skip, &internal.NumericError{Field: field, Value: text}
		case PolicySkip:
			t.logger.Debug("non-numeric coordinate, skipping record",
				zap.String("field", field),
				zap.String("value", text),
			)
			return Skip, nil
		}

		t.logger.Debug("non-numeric coordinate",
			zap.String("field", field),
			zap.String("value", text),
		)
		r.Set(field, math.NaN())
		outcome = Flagged
	}
	return outcome, nil
}
