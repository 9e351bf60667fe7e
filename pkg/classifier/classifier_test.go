package classifier

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func separable() ([][]uint8, []int) {
	x := [][]uint8{
		{1, 0, 1}, {1, 0, 0}, {1, 1, 0}, {1, 1, 1},
		{0, 0, 1}, {0, 1, 0}, {0, 1, 1}, {0, 0, 0},
	}
	y := []int{1, 1, 1, 1, 0, 0, 0, 0}
	return x, y
}

func TestTree_FitsSeparableData(t *testing.T) {
	x, y := separable()
	m, err := (&TreeTrainer{MinSamplesLeaf: 1, Balanced: true}).Fit(x, y, 2)
	require.NoError(t, err)

	pred, err := m.Predict(x)
	require.NoError(t, err)
	assert.Equal(t, y, pred)

	tree := m.(*Tree)
	assert.Equal(t, 0, tree.Nodes[0].Feature)
	assert.Equal(t, 1, tree.Depth())
}

func TestTree_MinSamplesLeafStopsGrowth(t *testing.T) {
	x, y := separable()
	m, err := (&TreeTrainer{MinSamplesLeaf: 12}).Fit(x, y, 2)
	require.NoError(t, err)

	tree := m.(*Tree)
	require.Len(t, tree.Nodes, 1)
	assert.True(t, tree.Nodes[0].IsLeaf())
	assert.Equal(t, 0, tree.Nodes[0].Class, "ties go to the lowest label")
}

func TestTree_BalancedWeights(t *testing.T) {
	// one positive among five; balanced weighting makes the classes equal mass
	x := [][]uint8{{0}, {0}, {0}, {0}, {1}}
	y := []int{0, 0, 0, 0, 1}

	w := classWeights(y, 3, true)
	assert.InDelta(t, 5.0/8.0, w[0], 1e-12)
	assert.InDelta(t, 5.0/2.0, w[1], 1e-12)
	assert.Equal(t, 0.0, w[2])

	m, err := (&TreeTrainer{MinSamplesLeaf: 1, Balanced: true}).Fit(x, y, 3)
	require.NoError(t, err)
	pred, err := m.Predict([][]uint8{{1}, {0}})
	require.NoError(t, err)
	assert.Equal(t, []int{1, 0}, pred)
}

func TestTree_MaxDepth(t *testing.T) {
	x := [][]uint8{{0, 0}, {0, 1}, {1, 0}, {1, 1}}
	y := []int{0, 1, 1, 0}

	deep, err := (&TreeTrainer{MinSamplesLeaf: 1}).Fit(x, y, 2)
	require.NoError(t, err)
	pred, err := deep.Predict(x)
	require.NoError(t, err)
	assert.Equal(t, y, pred)

	shallow, err := (&TreeTrainer{MinSamplesLeaf: 1, MaxDepth: 1}).Fit(x, y, 2)
	require.NoError(t, err)
	assert.LessOrEqual(t, shallow.(*Tree).Depth(), 1)
}

func TestFit_Validation(t *testing.T) {
	tr := &TreeTrainer{}

	_, err := tr.Fit(nil, nil, 2)
	assert.ErrorIs(t, err, ErrEmptyTrainingSet)

	_, err = tr.Fit([][]uint8{{1}, {1, 0}}, []int{0, 1}, 2)
	assert.ErrorIs(t, err, ErrDimensionMismatch)

	_, err = tr.Fit([][]uint8{{1}}, []int{0, 1}, 2)
	assert.ErrorIs(t, err, ErrDimensionMismatch)

	_, err = tr.Fit([][]uint8{{1}}, []int{2}, 2)
	assert.ErrorIs(t, err, ErrLabelRange)
}

func TestTree_PredictDimensionMismatch(t *testing.T) {
	x, y := separable()
	m, err := (&TreeTrainer{MinSamplesLeaf: 1}).Fit(x, y, 2)
	require.NoError(t, err)

	_, err = m.Predict([][]uint8{{1}})
	assert.ErrorIs(t, err, ErrDimensionMismatch)
}

func TestTree_EmptyVocabulary(t *testing.T) {
	x := [][]uint8{{}, {}, {}}
	y := []int{1, 1, 0}
	m, err := (&TreeTrainer{MinSamplesLeaf: 1}).Fit(x, y, 2)
	require.NoError(t, err)

	pred, err := m.Predict([][]uint8{{}})
	require.NoError(t, err)
	assert.Equal(t, []int{1}, pred)
}

func TestEncodeDecode_Tree(t *testing.T) {
	x, y := separable()
	m, err := (&TreeTrainer{MinSamplesLeaf: 1, Balanced: true}).Fit(x, y, 2)
	require.NoError(t, err)

	enc, err := Encode(m)
	require.NoError(t, err)
	assert.Equal(t, BackendTree, enc.Backend)

	back, err := Decode(enc)
	require.NoError(t, err)
	assert.Equal(t, m, back)
}

func TestNewTrainer(t *testing.T) {
	tr, err := NewTrainer(DefaultConfig())
	require.NoError(t, err)
	assert.IsType(t, &TreeTrainer{}, tr)
	assert.Equal(t, 12, tr.(*TreeTrainer).MinSamplesLeaf)

	_, err = NewTrainer(Config{Backend: "forest"})
	assert.ErrorIs(t, err, ErrUnknownBackend)

	assert.Equal(t, []string{BackendBayes, BackendTree}, Backends())
}

func TestBayes_FitPredict(t *testing.T) {
	x, y := separable()
	tr, err := NewTrainer(Config{Backend: BackendBayes, MinClassSize: 1})
	require.NoError(t, err)

	m, err := tr.Fit(x, y, 2)
	require.NoError(t, err)
	assert.Equal(t, BackendBayes, m.Backend())

	pred, err := m.Predict(x)
	require.NoError(t, err)
	require.Len(t, pred, len(x))
	for _, p := range pred {
		assert.Contains(t, []int{0, 1}, p)
	}

	_, err = m.Predict([][]uint8{{1}})
	assert.ErrorIs(t, err, ErrDimensionMismatch)
}

func TestDocument(t *testing.T) {
	assert.Equal(t, "feature0 feature2", document([]uint8{1, 0, 1}))
	assert.Equal(t, emptyDocument, document([]uint8{0, 0}))
}
