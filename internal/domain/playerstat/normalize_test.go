package playerstat

import (
	"encoding/json"
	"errors"
	"testing"

	"github.com/bytedance/sonic"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNormalize_FullUpstreamRecord(t *testing.T) {
	payload := `{
		"Player name": "B Bonds",
		"position": "LF",
		"Games": 2986,
		"At-bat": 9847,
		"Runs": 2227,
		"Hits": 2935,
		"Double (2B)": 601,
		"third baseman": 77,
		"home run": 762,
		"run batted in": 1996,
		"a walk": 2558,
		"Strikeouts": 1539,
		"stolen base": 514,
		"Caught stealing": "141",
		"AVG": 0.298,
		"On-base Percentage": 0.444,
		"Slugging Percentage": 0.607,
		"On-base Plus Slugging": 1.051
	}`
	var raw map[string]any
	require.NoError(t, sonic.UnmarshalString(payload, &raw))

	rec, err := Normalize(raw)
	require.NoError(t, err)

	assert.Equal(t, Record{
		PlayerName:         "B Bonds",
		Position:           "LF",
		Games:              2986,
		AtBat:              9847,
		Runs:               2227,
		Hits:               2935,
		Double2B:           601,
		ThirdBaseman:       77,
		HomeRun:            762,
		RunBattedIn:        1996,
		AWalk:              2558,
		Strikeouts:         1539,
		StolenBase:         514,
		CaughtStealing:     141,
		Avg:                0.298,
		OnBasePercentage:   0.444,
		SluggingPercentage: 0.607,
		OnBasePlusSlugging: 1.051,
	}, rec)
}

func TestNormalize_EndToEndSample(t *testing.T) {
	rec, err := Normalize(map[string]any{
		"Player name":     "A",
		"Games":           float64(10),
		"Caught stealing": "--",
	})
	require.NoError(t, err)
	assert.Equal(t, Record{PlayerName: "A", Games: 10}, rec)
}

func TestNormalize_CaughtStealingSentinel(t *testing.T) {
	tests := []struct {
		name string
		raw  any
		want int64
	}{
		{name: "sentinel", raw: "--", want: 0},
		{name: "json number", raw: float64(7), want: 7},
		{name: "integer string", raw: "12", want: 12},
		{name: "padded integer string", raw: " 3 ", want: 3},
		{name: "json.Number", raw: json.Number("9"), want: 9},
		{name: "fractional number truncates", raw: 4.9, want: 4},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			rec, err := Normalize(map[string]any{"Caught stealing": tc.raw})
			require.NoError(t, err)
			assert.Equal(t, tc.want, rec.CaughtStealing)
		})
	}
}

func TestNormalize_SentinelOnlyAppliesToCaughtStealing(t *testing.T) {
	_, err := Normalize(map[string]any{"stolen base": "--"})
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrCoercion))

	var coercionErr *CoercionError
	require.True(t, errors.As(err, &coercionErr))
	assert.Equal(t, FieldStolenBase, coercionErr.Field)
	assert.Equal(t, KindInt, coercionErr.Kind)
}

func TestNormalize_MissingAndNullFieldsTakeDefaults(t *testing.T) {
	rec, err := Normalize(map[string]any{
		"Player name": "C",
		"AVG":         nil,
		"unrelated":   "ignored",
	})
	require.NoError(t, err)
	assert.Equal(t, Record{PlayerName: "C"}, rec)

	empty, err := Normalize(map[string]any{})
	require.NoError(t, err)
	assert.Equal(t, Record{}, empty)
}

func TestNormalize_PassesOutOfRangeValuesThrough(t *testing.T) {
	rec, err := Normalize(map[string]any{"Games": float64(-5), "AVG": 1.5})
	require.NoError(t, err)
	assert.Equal(t, int64(-5), rec.Games)
	assert.Equal(t, 1.5, rec.Avg)
}

func TestNormalize_CoercionFailures(t *testing.T) {
	tests := []struct {
		name  string
		raw   map[string]any
		field Field
	}{
		{name: "non numeric int", raw: map[string]any{"Games": "ten"}, field: FieldGames},
		{name: "non numeric float", raw: map[string]any{"AVG": ".--"}, field: FieldAvg},
		{name: "object as string", raw: map[string]any{"position": map[string]any{"x": 1}}, field: FieldPosition},
		{name: "array as int", raw: map[string]any{"Hits": []any{1}}, field: FieldHits},
		{name: "nan string float", raw: map[string]any{"AVG": "NaN"}, field: FieldAvg},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			_, err := Normalize(tc.raw)
			var coercionErr *CoercionError
			require.True(t, errors.As(err, &coercionErr), "expected CoercionError, got %v", err)
			assert.Equal(t, tc.field, coercionErr.Field)
		})
	}
}

func TestNormalize_NumericNameIsFormatted(t *testing.T) {
	rec, err := Normalize(map[string]any{"Player name": float64(42), "position": true})
	require.NoError(t, err)
	assert.Equal(t, "42", rec.PlayerName)
	assert.Equal(t, "true", rec.Position)
}

func TestSourceKeys_CoverCanonicalSchemaOnce(t *testing.T) {
	seen := make(map[Field]int)
	for _, sk := range SourceKeys() {
		seen[sk.Field]++
	}
	for _, f := range Fields() {
		assert.Equal(t, 1, seen[f], "field %s", f)
	}
	assert.Len(t, seen, len(Fields()))
}
