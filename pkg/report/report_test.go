package report

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/boxprint/boxprint/pkg/likelihood"
	"github.com/boxprint/boxprint/pkg/metrics"
	"github.com/boxprint/boxprint/pkg/taxonomy"
)

func sampleTable() *likelihood.Table {
	return &likelihood.Table{
		Device: "D01",
		Cells: []likelihood.Cell{
			{Platform: "non-SN", Class: "native"},
			{Platform: "non-SN", Class: "ffmpeg"},
			{Platform: "Facebook", Class: "native"},
		},
		Pairs: []likelihood.Pair{
			{A: 0, B: 1, Entries: []likelihood.Entry{{Symbol: "n", Ratio: 1.5}, {Symbol: "c", Ratio: 0.1}, {Symbol: "t", Ratio: -1.2}}},
			{A: 0, B: 2, Entries: []likelihood.Entry{{Symbol: "c", Ratio: 0.2}}},
			{A: 1, B: 2, Entries: []likelihood.Entry{{Symbol: "x", Ratio: 2}}},
		},
	}
}

func TestWriteSaliency(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "D01")

	paths, warnings, err := WriteSaliency(dir, sampleTable(), 1)
	require.NoError(t, err)
	require.Len(t, paths, 2)
	require.Len(t, warnings, 1)
	assert.ErrorIs(t, warnings[0], likelihood.ErrVocabularyEmpty)

	assert.Equal(t, filepath.Join(dir, "non-SN-native_vs_non-SN-ffmpeg.txt"), paths[0])
	data, err := os.ReadFile(paths[0])
	require.NoError(t, err)
	assert.Equal(t, "-1.2000 t\n 1.5000 n\n", string(data))

	_, err = os.Stat(filepath.Join(dir, "non-SN-native_vs_Facebook-native.txt"))
	assert.True(t, os.IsNotExist(err))
}

func TestWriteSaliency_NothingSalient(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "out")

	paths, warnings, err := WriteSaliency(dir, sampleTable(), 5)
	require.NoError(t, err)
	assert.Empty(t, paths)
	assert.Len(t, warnings, 3)

	_, err = os.Stat(dir)
	assert.True(t, os.IsNotExist(err))
}

func TestSaliencyDir(t *testing.T) {
	tbl := sampleTable()
	assert.Equal(t, filepath.Join("r", "D01"), SaliencyDir("r", tbl))
	tbl.UseOS = true
	assert.Equal(t, filepath.Join("r", "D01-os"), SaliencyDir("r", tbl))
	tbl.Device = ""
	assert.Equal(t, filepath.Join("r", "all-os"), SaliencyDir("r", tbl))
}

func TestAccuracyByDevice(t *testing.T) {
	s := metrics.Summarize([]string{"Native", "Tampered"}, map[string]metrics.Labels{
		"D01": {True: []int{0, 1}, Pred: []int{0, 1}},
		"D02": {True: []int{0, 1}, Pred: []int{1, 1}},
		"X99": {True: []int{0}, Pred: []int{1}},
	})

	rows := AccuracyByDevice(s, taxonomy.Default())
	require.Len(t, rows, 3)
	assert.Equal(t, "X99", rows[0].Device)
	assert.Empty(t, rows[0].Brand)
	assert.Equal(t, "D02", rows[1].Device)
	assert.Equal(t, "Apple", rows[1].Brand)
	assert.InDelta(t, 0.5, rows[1].Accuracy, 1e-9)
	assert.Equal(t, "D01", rows[2].Device)
	assert.Equal(t, "Samsung", rows[2].Brand)

	headers, cells := Table(rows)
	assert.Len(t, headers, 5)
	assert.Equal(t, []string{"D01", "Samsung", "2", "1.0000", "1.0000"}, cells[2])
}

func TestWriteConfusion(t *testing.T) {
	s := metrics.Summarize([]string{"Native", "Tampered"}, map[string]metrics.Labels{
		"D01": {True: []int{0, 0, 1, 1}, Pred: []int{0, 1, 1, 1}},
	})

	var buf bytes.Buffer
	require.NoError(t, WriteConfusion(&buf, s))
	out := buf.String()
	assert.Contains(t, out, "Tampered")
	assert.Contains(t, out, "0.500")
	assert.Contains(t, out, "TPR 1.0000")
	assert.Contains(t, out, "TNR 0.5000")
}
