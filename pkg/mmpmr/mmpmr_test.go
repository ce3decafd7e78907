package mmpmr

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/morphinspector/morphinspector/pkg/dump"
)

func TestComputeSingleMorph(t *testing.T) {
	res, err := Compute([]Sample{{Morph: "a-b", FirstA: 0.1, FirstB: 0.9}}, []float64{0.5}, 1)
	require.NoError(t, err)
	require.Equal(t, []Result{{Tau: 0.5, Rate: 0.9}}, res)
}

func TestComputeKeepsTauOrderAndZeroes(t *testing.T) {
	samples := []Sample{
		{Morph: "m1", FirstA: 0.1, FirstB: 0.9},
		{Morph: "m2", FirstA: 0.4, FirstB: 0.3},
	}
	res, err := Compute(samples, []float64{1.0, 0.2, 0.5}, 2)
	require.NoError(t, err)
	require.Len(t, res, 3)

	assert.Equal(t, 1.0, res[0].Tau)
	assert.Zero(t, res[0].Rate)

	assert.Equal(t, 0.2, res[1].Tau)
	assert.InDelta(t, (0.9+0.4)/2, res[1].Rate, 1e-12)

	assert.Equal(t, 0.5, res[2].Tau)
	assert.InDelta(t, 0.45, res[2].Rate, 1e-12)
}

func TestComputeStrictlyGreater(t *testing.T) {
	res, err := Compute([]Sample{{FirstA: 0.5, FirstB: 0.5}}, []float64{0.5}, 1)
	require.NoError(t, err)
	assert.Zero(t, res[0].Rate)
}

func TestComputeTotalIncludesSkips(t *testing.T) {
	morphs := []*dump.MorphComparison{
		{
			Probe: "00_0-01_0.png.csv", IdentityA: "00", IdentityB: "01",
			ToA: []dump.Record{{Candidate: "00_1.jpg", Distance: 0.8}, {Candidate: "00_2.jpg", Distance: 0.1}},
			ToB: []dump.Record{{Candidate: "01_1.jpg", Distance: 0.6}},
		},
		{
			Probe: "02_0-03_0.png.csv", IdentityA: "02", IdentityB: "03",
			ToA: []dump.Record{{Candidate: "02_1.jpg", Distance: 0.7}},
		},
	}
	samples, skipped := SamplesFrom(morphs)
	require.Len(t, samples, 1)
	require.Len(t, skipped, 1)
	assert.True(t, dump.IsMissingComparison(skipped[0].Err))
	assert.Equal(t, Sample{Morph: "00_0-01_0.png.csv", FirstA: 0.8, FirstB: 0.6}, samples[0])

	res, err := Compute(samples, []float64{0.5}, len(morphs))
	require.NoError(t, err)
	assert.InDelta(t, 0.4, res[0].Rate, 1e-12)
}

func TestComputeRejectsEmptyTotal(t *testing.T) {
	_, err := Compute(nil, []float64{0.5}, 0)
	require.ErrorIs(t, err, ErrNoMorphs)
}
