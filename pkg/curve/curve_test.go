package curve

import (
	"encoding/json"
	"math"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/morphinspector/morphinspector/pkg/biometric"
)

func TestCurveJSONFormat(t *testing.T) {
	c := Curve{{X: 0.1, Y: 0.9}, {X: 0.2, Y: 0.8}}
	data, err := json.Marshal(c)
	require.NoError(t, err)
	assert.JSONEq(t, `[[0.1,0.2],[0.9,0.8]]`, string(data))

	data, err = json.Marshal(Curve{})
	require.NoError(t, err)
	assert.Equal(t, `[[],[]]`, string(data))
}

func TestCurveJSONRoundTripIsExact(t *testing.T) {
	c := Curve{
		{X: 1.0 / 3.0, Y: 2.0 / 3.0},
		{X: math.SmallestNonzeroFloat64, Y: math.MaxFloat64},
		{X: 0.1 + 0.2, Y: 1e-17},
		{X: 0, Y: 1},
	}
	data, err := json.Marshal(c)
	require.NoError(t, err)

	var back Curve
	require.NoError(t, json.Unmarshal(data, &back))
	require.Len(t, back, len(c))
	for i := range c {
		assert.Equal(t, math.Float64bits(c[i].X), math.Float64bits(back[i].X))
		assert.Equal(t, math.Float64bits(c[i].Y), math.Float64bits(back[i].Y))
	}
}

func TestCurveUnmarshalRejectsMalformed(t *testing.T) {
	tests := []struct {
		name string
		data string
	}{
		{"one array", `[[0.1]]`},
		{"three arrays", `[[0.1],[0.2],[0.3]]`},
		{"length mismatch", `[[0.1,0.2],[0.3]]`},
		{"not arrays", `{"x":[1]}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var c Curve
			err := json.Unmarshal([]byte(tt.data), &c)
			require.ErrorIs(t, err, ErrMalformedCurve)
		})
	}
}

func TestFromSweepDET(t *testing.T) {
	s := &biometric.Sweep{
		Protocol:   biometric.ProtocolDET,
		Thresholds: []float64{0.25, 0.5},
		Counts: []biometric.Confusion{
			{TP: 4, FN: 0, FP: 3, TN: 1},
			{TP: 2, FN: 2, FP: 1, TN: 3},
		},
	}
	c, omitted, err := FromSweep(s, DegenerateError)
	require.NoError(t, err)
	require.Zero(t, omitted)
	require.Equal(t, Curve{{X: 0, Y: 0.75}, {X: 0.5, Y: 0.25}}, c)
}

func TestFromSweepROC(t *testing.T) {
	s := &biometric.Sweep{
		Protocol:   biometric.ProtocolROC,
		Thresholds: []float64{0.5},
		Counts:     []biometric.Confusion{{TP: 3, FN: 1, FP: 1, TN: 1}},
	}
	c, _, err := FromSweep(s, DegenerateError)
	require.NoError(t, err)
	require.Equal(t, Curve{{X: 0.5, Y: 0.75}}, c)
}

func TestFromSweepDegenerate(t *testing.T) {
	s := &biometric.Sweep{
		Protocol:   biometric.ProtocolDET,
		Thresholds: []float64{0, 0.5},
		Counts: []biometric.Confusion{
			{FP: 2},
			{TP: 1, FN: 1, FP: 1, TN: 1},
		},
	}

	_, _, err := FromSweep(s, DegenerateError)
	require.True(t, biometric.IsDegenerateRate(err))

	c, omitted, err := FromSweep(s, DegenerateOmit)
	require.NoError(t, err)
	require.Equal(t, 1, omitted)
	require.Equal(t, Curve{{X: 0.5, Y: 0.5}}, c)
}

func TestParseDegeneratePolicy(t *testing.T) {
	p, err := ParseDegeneratePolicy("")
	require.NoError(t, err)
	require.Equal(t, DegenerateError, p)

	p, err = ParseDegeneratePolicy("OMIT")
	require.NoError(t, err)
	require.Equal(t, DegenerateOmit, p)

	_, err = ParseDegeneratePolicy("sentinel")
	require.Error(t, err)
}

func TestNearestStatistic(t *testing.T) {
	c := Curve{
		{X: 0.9, Y: 0.0},
		{X: 0.5, Y: 0.04},
		{X: 0.4, Y: 0.06},
		{X: 0.1, Y: 0.5},
		{X: 0.0, Y: 1.0},
	}

	v, err := NearestStatistic(c, 0.01)
	require.NoError(t, err)
	assert.Equal(t, 0.9, v)

	v, err = NearestStatistic(c, 1.0)
	require.NoError(t, err)
	assert.Equal(t, 0.0, v)

	v, err = NearestStatistic(c, 0.45)
	require.NoError(t, err)
	assert.Equal(t, 0.1, v)

	_, err = NearestStatistic(nil, 0.1)
	require.ErrorIs(t, err, ErrEmptyCurve)
}

func TestNearestStatisticTieTakesFirst(t *testing.T) {
	c := Curve{{X: 0.7, Y: 0.25}, {X: 0.3, Y: 0.75}}
	v, err := NearestStatistic(c, 0.5)
	require.NoError(t, err)
	assert.Equal(t, 0.7, v)

	c = Curve{{X: 0.2, Y: 0.1}, {X: 0.8, Y: 0.1}}
	v, err = NearestStatistic(c, 0.1)
	require.NoError(t, err)
	assert.Equal(t, 0.2, v)
}

func TestAreaUnderCurveSortsByX(t *testing.T) {
	ordered := Curve{{X: 0, Y: 0}, {X: 0.5, Y: 1}, {X: 1, Y: 1}}
	shuffled := Curve{{X: 1, Y: 1}, {X: 0, Y: 0}, {X: 0.5, Y: 1}}

	a, err := AreaUnderCurve(ordered)
	require.NoError(t, err)
	assert.InDelta(t, 0.75, a, 1e-12)

	b, err := AreaUnderCurve(shuffled)
	require.NoError(t, err)
	assert.InDelta(t, a, b, 1e-12)

	assert.Equal(t, Point{X: 1, Y: 1}, shuffled[0], "input must not be reordered")

	single, err := AreaUnderCurve(Curve{{X: 0.3, Y: 0.3}})
	require.NoError(t, err)
	assert.Zero(t, single)

	_, err = AreaUnderCurve(Curve{})
	require.ErrorIs(t, err, ErrEmptyCurve)
}

func TestDETStatisticsDefaults(t *testing.T) {
	c := Curve{{X: 0, Y: 1}, {X: 0.2, Y: 0.1}, {X: 0.6, Y: 0.05}, {X: 0.95, Y: 0.01}}
	stats, err := DETStatistics(c, nil)
	require.NoError(t, err)
	require.Equal(t, []Statistic{
		{Target: 1.0, Value: 0},
		{Target: 0.1, Value: 0.2},
		{Target: 0.05, Value: 0.6},
		{Target: 0.01, Value: 0.95},
	}, stats)

	stats, err = DETStatistics(c, []float64{0.5})
	require.NoError(t, err)
	require.Len(t, stats, 1)
}

func TestWriteReadFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "curves", "det.json")
	c := Curve{{X: 0.25, Y: 0.5}}

	require.NoError(t, WriteFile(path, c, false))
	back, err := ReadFile(path)
	require.NoError(t, err)
	require.Equal(t, c, back)

	err = WriteFile(path, Curve{{X: 1, Y: 1}}, false)
	require.ErrorIs(t, err, ErrExists)
	back, err = ReadFile(path)
	require.NoError(t, err)
	require.Equal(t, c, back)

	require.NoError(t, WriteFile(path, Curve{{X: 1, Y: 1}}, true))
	back, err = ReadFile(path)
	require.NoError(t, err)
	require.Equal(t, Curve{{X: 1, Y: 1}}, back)
}
