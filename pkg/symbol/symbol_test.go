package symbol

import (
	"slices"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleTree() *Tree {
	return NewTree().Node("moov", NewTree().
		Node("trak-0", NewTree().
			Leaf("@handlerType", "vide").
			Leaf("@duration", "1200")).
		Node("trak-1", NewTree().
			Leaf("@handlerType", "soun")))
}

func TestSymbols_EmptyTree(t *testing.T) {
	assert.Empty(t, Extract(NewTree(), DefaultOptions()))
	assert.Empty(t, Extract(nil, DefaultOptions()))

	onlyNodes := NewTree().Node("moov", NewTree().Node("udta", nil))
	seq := FromTree(onlyNodes, DefaultOptions())
	assert.Empty(t, seq)
	assert.NotNil(t, seq)
}

func TestSymbols_LeafEmitsPathAndValue(t *testing.T) {
	got := Extract(sampleTree(), DefaultOptions())

	assert.Equal(t, []string{
		"moov/trak/@handlerType",
		"moov/trak/@handlerType=vide",
		"moov/trak/@duration",
		"moov/trak/@handlerType",
		"moov/trak/@handlerType=soun",
	}, got)
}

func TestSymbols_DenylistedKeyOnlyBarePath(t *testing.T) {
	seq := FromTree(sampleTree(), DefaultOptions())

	assert.True(t, seq.Contains("moov/trak/@duration"))
	for _, s := range seq {
		assert.False(t, strings.HasPrefix(s, "moov/trak/@duration="), "unexpected %s", s)
	}
}

func TestSymbols_KeepFinalNumber(t *testing.T) {
	tests := []struct {
		name string
		keep bool
		want Sequence
	}{
		{
			name: "strip",
			keep: false,
			want: Of("moov/trak/@duration", "moov/trak/@handlerType",
				"moov/trak/@handlerType=soun", "moov/trak/@handlerType=vide"),
		},
		{
			name: "keep",
			keep: true,
			want: Of("moov/trak-0/@duration", "moov/trak-0/@handlerType", "moov/trak-0/@handlerType=vide",
				"moov/trak-1/@handlerType", "moov/trak-1/@handlerType=soun"),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			opts := DefaultOptions()
			opts.KeepFinalNumber = tt.keep
			assert.Equal(t, tt.want, FromTree(sampleTree(), opts))
		})
	}
}

func TestSymbols_StripsOnlyTrailingDigits(t *testing.T) {
	tree := NewTree().Node("a-1-2", NewTree().Node("b-x", NewTree().Leaf("leaf-3", "v")))
	got := Extract(tree, Options{})
	assert.Equal(t, []string{"a-1/b-x/leaf-3", "a-1/b-x/leaf-3=v"}, got)
}

func TestSymbols_Restartable(t *testing.T) {
	it := Symbols(sampleTree(), DefaultOptions())
	first := slices.Collect(it)
	second := slices.Collect(it)
	assert.Equal(t, first, second)

	// early termination must not panic
	for s := range it {
		assert.NotEmpty(t, s)
		break
	}
}

func TestSequence_DedupAndSort(t *testing.T) {
	seq := Of("b", "a", "b", "c")
	assert.Equal(t, Sequence{"a", "b", "c"}, seq)
	assert.True(t, seq.Contains("c"))
	assert.False(t, seq.Contains("d"))
	assert.Len(t, seq.Set(), 3)
}

func TestFromMap_ListsBecomeSiblings(t *testing.T) {
	tree := FromMap(map[string]any{
		"moov": map[string]any{
			"trak": []any{
				map[string]any{"@id": 1},
				map[string]any{"@id": 2},
			},
			"free": nil,
		},
	})

	got := FromTree(tree, Options{})
	assert.Equal(t, Of(
		"moov/free", "moov/free=",
		"moov/trak/@id", "moov/trak/@id=1", "moov/trak/@id=2",
	), got)
}

func TestDecodeXML(t *testing.T) {
	doc := `<?xml version="1.0"?>
<container>
  <moov>
    <trak-0 handlerType="vide" duration="10"/>
    <trak-1 handlerType="soun">audio</trak-1>
    <udta/>
  </moov>
</container>`

	tree, err := DecodeXML(strings.NewReader(doc))
	require.NoError(t, err)

	seq := FromTree(tree, DefaultOptions())
	assert.Equal(t, Of(
		"container/moov/trak/#text",
		"container/moov/trak/#text=audio",
		"container/moov/trak/@duration",
		"container/moov/trak/@handlerType",
		"container/moov/trak/@handlerType=soun",
		"container/moov/trak/@handlerType=vide",
		"container/moov/udta",
		"container/moov/udta=",
	), seq)
}

func TestDecodeXML_Malformed(t *testing.T) {
	_, err := DecodeXML(strings.NewReader("<moov><trak></moov>"))
	require.Error(t, err)
}
