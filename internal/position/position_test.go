package position

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/turbolytics/csvjson/internal"
)

func TestRound(t *testing.T) {
	testCases := []struct {
		in   float64
		want float64
	}{
		{3.2, 3},
		{2.5, 3},
		{2.4999, 2},
		{-1.5, -1},
		{-1.51, -2},
		{-0.5, 0},
		{0.49999999999999994, 0},
		{7.7, 8},
		{-3.3, -3},
		{10, 10},
	}

	for _, tc := range testCases {
		assert.Equal(t, tc.want, Round(tc.in), "Round(%v)", tc.in)
	}

	assert.True(t, math.IsNaN(Round(math.NaN())))
	assert.True(t, math.IsInf(Round(math.Inf(-1)), -1))
}

func TestParseFloat(t *testing.T) {
	testCases := []struct {
		name string
		in   string
		want float64
	}{
		{"integer", "10", 10},
		{"decimal", "-3.3", -3.3},
		{"explicit plus", "+2.5", 2.5},
		{"leading dot", ".5", 0.5},
		{"trailing dot", "1.", 1},
		{"exponent", "1.5e2", 150},
		{"dangling exponent", "2e", 2},
		{"leading whitespace", "  \t4.2", 4.2},
		{"trailing garbage", "1.5abc", 1.5},
		{"hex prefix", "0x10", 0},
		{"infinity", "-Infinity", math.Inf(-1)},
		{"overflow", "1e400", math.Inf(1)},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, ParseFloat(tc.in))
		})
	}

	for _, in := range []string{"", "abc", "-", ".", "inf", "NaN", "e5"} {
		assert.True(t, math.IsNaN(ParseFloat(in)), "ParseFloat(%q)", in)
	}
}

func TestCoordinate(t *testing.T) {
	testCases := []struct {
		in   string
		want any
	}{
		{"2.6", int64(3)},
		{"-0.5", int64(0)},
		{"9.2e18", int64(9200000000000000000)},
		{"1e19", float64(1e19)},
		{"-1e19", float64(-1e19)},
		{"1e20", float64(1e20)},
		{"9.3e18", float64(9.3e18)},
	}

	for _, tc := range testCases {
		v, ok := Coordinate(tc.in)
		assert.True(t, ok, "Coordinate(%q)", tc.in)
		assert.Equal(t, tc.want, v, "Coordinate(%q)", tc.in)
	}

	for _, in := range []string{"", "abc", "Infinity", "-Infinity", "1e400"} {
		_, ok := Coordinate(in)
		assert.False(t, ok, "Coordinate(%q)", in)
	}
}

func TestParsePolicy(t *testing.T) {
	for in, want := range map[string]Policy{
		"":            PolicyPassthrough,
		"passthrough": PolicyPassthrough,
		" Skip ":      PolicySkip,
		"FAIL":        PolicyFail,
	} {
		p, err := ParsePolicy(in)
		require.NoError(t, err)
		assert.Equal(t, want, p)
	}

	_, err := ParsePolicy("drop")
	assert.Error(t, err)
}

func TestTransformer(t *testing.T) {
	record := func(values ...any) *internal.Record {
		return internal.NewRecord([]string{"x", "y", "z", "name"}, values)
	}

	t.Run("rounds coordinates and keeps other fields", func(t *testing.T) {
		r := record("1.4", "2.6", "-0.5", "Alpha")
		outcome, err := New().Transform(r)
		require.NoError(t, err)
		assert.Equal(t, Keep, outcome)
		assert.Equal(t, []any{int64(1), int64(3), int64(0), "Alpha"}, r.Values())
	})

	t.Run("passthrough stores NaN", func(t *testing.T) {
		r := record("abc", "2", "3", "Alpha")
		outcome, err := New().Transform(r)
		require.NoError(t, err)
		assert.Equal(t, Flagged, outcome)

		x, _ := r.Get("x")
		assert.True(t, math.IsNaN(x.(float64)))
		y, _ := r.Get("y")
		assert.Equal(t, int64(2), y)
	})

	t.Run("missing field is appended as NaN", func(t *testing.T) {
		r := internal.NewRecord([]string{"x", "y", "name"}, []any{"1", "2", "Alpha"})
		outcome, err := New().Transform(r)
		require.NoError(t, err)
		assert.Equal(t, Flagged, outcome)
		assert.Equal(t, []string{"x", "y", "name", "z"}, r.Fields())
	})

	t.Run("skip policy", func(t *testing.T) {
		r := record("1", "", "3", "Alpha")
		outcome, err := New(WithPolicy(PolicySkip)).Transform(r)
		require.NoError(t, err)
		assert.Equal(t, Skip, outcome)
	})

	t.Run("fail policy", func(t *testing.T) {
		r := record("1", "2", "north", "Alpha")
		_, err := New(WithPolicy(PolicyFail)).Transform(r)

		var ne *internal.NumericError
		require.ErrorAs(t, err, &ne)
		assert.Equal(t, "z", ne.Field)
		assert.Equal(t, "north", ne.Value)
	})

	t.Run("values beyond int64 stay numeric", func(t *testing.T) {
		r := record("1e20", "9.3e18", "-2.5", "Far")
		outcome, err := New(WithPolicy(PolicyFail)).Transform(r)
		require.NoError(t, err)
		assert.Equal(t, Keep, outcome)
		assert.Equal(t, []any{float64(1e20), float64(9.3e18), int64(-2), "Far"}, r.Values())
	})

	t.Run("custom fields", func(t *testing.T) {
		r := internal.NewRecord([]string{"lat", "lon", "x"}, []any{"1.5", "-2.5", "keep"})
		tr := New(WithFields([]string{"lat", "lon"}))
		assert.Equal(t, []string{"lat", "lon"}, tr.Fields())

		outcome, err := tr.Transform(r)
		require.NoError(t, err)
		assert.Equal(t, Keep, outcome)
		assert.Equal(t, []any{int64(2), int64(-2), "keep"}, r.Values())
	})

	t.Run("empty field list keeps defaults", func(t *testing.T) {
		assert.Equal(t, DefaultFields, New(WithFields(nil)).Fields())
	})
}
