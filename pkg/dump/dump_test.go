package dump

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

const l2 = "VGG-Face_euclidean_l2"

func writeDump(t *testing.T, dir, name string, rows [][2]string) string {
	t.Helper()
	var sb strings.Builder
	sb.WriteString("\tidentity\t" + l2 + "\n")
	for i, r := range rows {
		sb.WriteString(strings.Join([]string{strconv.Itoa(i), r[0], r[1]}, "\t"))
		sb.WriteString("\n")
	}
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(sb.String()), 0o644))
	return path
}

func TestParseMorphName(t *testing.T) {
	tests := []struct {
		in      string
		a, b    string
		wantErr bool
	}{
		{in: "00_0-01_0.png.csv", a: "00", b: "01"},
		{in: "/data/morphs/123_03-456_01.jpg", a: "123", b: "456"},
		{in: "00_0.png.csv", wantErr: true},
		{in: "_0-01_0.png", wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseMorphName(tt.in)
			if tt.wantErr {
				require.Error(t, err)
				require.True(t, IsMalformedRecord(err))
				return
			}
			require.NoError(t, err)
			require.Equal(t, tt.a, got.IdentityA)
			require.Equal(t, tt.b, got.IdentityB)
		})
	}
}

func TestParseStillName(t *testing.T) {
	id, err := ParseStillName("stills/00_1.jpg.csv")
	require.NoError(t, err)
	require.Equal(t, "00", id)

	_, err = ParseStillName("nounderscore.jpg.csv")
	require.True(t, IsMalformedRecord(err))
}

func TestReadTableDetectsMetricAndDropsIndex(t *testing.T) {
	in := "\tidentity\tVGG-Face_cosine\n0\t/db/00_2.jpg\t0.25\n1\tC:\\db\\01_1.jpg\t\n"
	table, err := ReadTable(strings.NewReader(in), "x.csv", "")
	require.NoError(t, err)
	require.Equal(t, "VGG-Face_cosine", table.Metric)
	require.Len(t, table.Records, 2)
	require.Equal(t, "00_2.jpg", table.Records[0].Candidate)
	require.Equal(t, 0.25, table.Records[0].Distance)
	require.Equal(t, "01_1.jpg", table.Records[1].Candidate)
	require.True(t, math.IsNaN(table.Records[1].Distance))
}

func TestReadTableMissingColumns(t *testing.T) {
	_, err := ReadTable(strings.NewReader("\tpath\t"+l2+"\n"), "x.csv", "")
	require.True(t, IsMalformedRecord(err))

	_, err = ReadTable(strings.NewReader("\tidentity\tscore\n"), "x.csv", "")
	require.True(t, IsMalformedRecord(err))

	_, err = ReadTable(strings.NewReader("\tidentity\tVGG-Face_cosine\n"), "x.csv", l2)
	require.True(t, IsMalformedRecord(err))

	_, err = ReadTable(strings.NewReader(""), "x.csv", "")
	require.True(t, IsMalformedRecord(err))
}

func TestParseMorphPartitionsByIdentity(t *testing.T) {
	dir := t.TempDir()
	path := writeDump(t, dir, "00_0-01_0.png.csv", [][2]string{
		{"db/01_2.jpg", "0.7"},
		{"db/00_1.jpg", "0.2"},
		{"db/02_1.jpg", "0.1"},
		{"db/00_2.jpg", "0.4"},
	})

	mc, err := ParseMorph(path, Options{Metric: l2})
	require.NoError(t, err)
	require.Equal(t, "00", mc.IdentityA)
	require.Equal(t, "01", mc.IdentityB)
	require.Equal(t, map[string]float64{"00_1.jpg": 0.2, "00_2.jpg": 0.4}, mc.DistancesA())
	require.Equal(t, map[string]float64{"01_2.jpg": 0.7}, mc.DistancesB())

	a, b, err := mc.Means()
	require.NoError(t, err)
	require.InDelta(t, 0.3, a, 1e-12)
	require.InDelta(t, 0.7, b, 1e-12)

	fa, fb, err := mc.First()
	require.NoError(t, err)
	require.Equal(t, 0.2, fa)
	require.Equal(t, 0.7, fb)
}

func TestParseMorphMissingIdentity(t *testing.T) {
	dir := t.TempDir()
	path := writeDump(t, dir, "00_0-01_0.png.csv", [][2]string{
		{"db/00_1.jpg", "0.2"},
		{"db/02_1.jpg", "0.1"},
	})

	_, err := ParseMorph(path, Options{})
	require.Error(t, err)
	require.True(t, IsMissingComparison(err))

	var mce *MissingComparisonError
	require.ErrorAs(t, err, &mce)
	require.Equal(t, "01", mce.Identity)
}

func TestNaNPolicy(t *testing.T) {
	dir := t.TempDir()
	path := writeDump(t, dir, "00_0-01_0.png.csv", [][2]string{
		{"db/00_1.jpg", "0.2"},
		{"db/00_2.jpg", "NaN"},
		{"db/01_1.jpg", "0.6"},
	})

	_, err := ParseMorph(path, Options{NaNPolicy: NaNRaise})
	require.True(t, IsMissingComparison(err))

	mc, err := ParseMorph(path, Options{NaNPolicy: NaNOmit})
	require.NoError(t, err)
	a, _, err := mc.Means()
	require.NoError(t, err)
	require.Equal(t, 0.2, a)

	stillPath := writeDump(t, dir, "00_1.jpg.csv", [][2]string{{"db/00_2.jpg", ""}, {"db/00_3.jpg", "0.5"}})
	_, err = ParseStill(stillPath, Options{})
	require.True(t, IsMalformedRecord(err))

	sc, err := ParseStill(stillPath, Options{NaNPolicy: NaNOmit})
	require.NoError(t, err)
	require.Equal(t, []float64{0.5}, sc.Informative())

	for _, cell := range []string{"inf", "-Inf", "+inf"} {
		infPath := writeDump(t, dir, "02_0-03_0.png.csv", [][2]string{{"db/02_1.jpg", cell}, {"db/03_1.jpg", "0.4"}})
		_, err = ParseMorph(infPath, Options{NaNPolicy: NaNOmit})
		require.True(t, IsMalformedRecord(err), "cell %q", cell)
	}
}

func TestParseNaNPolicy(t *testing.T) {
	p, err := ParseNaNPolicy("")
	require.NoError(t, err)
	require.Equal(t, NaNRaise, p)

	p, err = ParseNaNPolicy("OMIT")
	require.NoError(t, err)
	require.Equal(t, NaNOmit, p)

	_, err = ParseNaNPolicy("ignore")
	require.Error(t, err)
}

func TestStillInformativeExcludesSelf(t *testing.T) {
	sc := &StillComparison{Records: []Record{
		{Candidate: "00_2", Distance: 0},
		{Candidate: "01_1", Distance: 0.42},
		{Candidate: "01_2", Distance: 0.55},
	}}
	require.Equal(t, []float64{0.42, 0.55}, sc.Informative())
}

func TestLoadMorphsSkipsAndCounts(t *testing.T) {
	dir := t.TempDir()
	writeDump(t, dir, "00_0-01_0.png.csv", [][2]string{{"db/00_1.jpg", "0.3"}, {"db/01_1.jpg", "0.6"}})
	writeDump(t, dir, "00_0-02_0.png.csv", [][2]string{{"db/00_1.jpg", "0.3"}})
	writeDump(t, dir, "badname.csv", [][2]string{{"db/00_1.jpg", "0.3"}})
	require.NoError(t, os.Mkdir(filepath.Join(dir, "rank_a"), 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(dir, ".DS_Store"), nil, 0o644))

	batch, err := LoadMorphs(context.Background(), dir, Options{})
	require.NoError(t, err)
	require.Equal(t, 3, batch.Files)
	require.Len(t, batch.Comparisons, 1)
	require.Len(t, batch.Skipped, 2)
}

func TestNewSkipStoresCode(t *testing.T) {
	missing := NewSkip("04_0-05_0.png.csv", fmt.Errorf("accumulate: %w", NewMissingComparisonError("04_0-05_0.png.csv", "05")))
	require.Equal(t, CodeMissingComparison, missing.Code)
	require.Equal(t, CodeMalformedRecord, NewSkip("bad.csv", NewMalformedRecordError("bad.csv", "no header")).Code)
	require.Empty(t, NewSkip("x.csv", errors.New("permission denied")).Code)

	data, err := json.Marshal(missing)
	require.NoError(t, err)
	var back Skip
	require.NoError(t, json.Unmarshal(data, &back))
	require.Nil(t, back.Err)
	require.Equal(t, CodeMissingComparison, back.Code)
}

func TestLoadEmptyDirIsFatal(t *testing.T) {
	_, err := LoadStills(context.Background(), t.TempDir(), Options{})
	require.ErrorIs(t, err, ErrNoInput)

	_, err = LoadMorphs(context.Background(), filepath.Join(t.TempDir(), "missing"), Options{})
	require.Error(t, err)
}

func TestLoadStills(t *testing.T) {
	dir := t.TempDir()
	writeDump(t, dir, "00_1.jpg.csv", [][2]string{{"db/00_2.jpg", "0.0"}, {"db/01_1.jpg", "0.42"}, {"db/01_2.jpg", "0.55"}})

	batch, err := LoadStills(context.Background(), dir, Options{Metric: l2})
	require.NoError(t, err)
	require.Len(t, batch.Comparisons, 1)
	require.Equal(t, "00", batch.Comparisons[0].Identity)
	require.Len(t, batch.Comparisons[0].Distances(), 3)
}
