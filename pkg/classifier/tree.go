package classifier

import (
	"encoding/json"
	"fmt"
	"math"
)

// BackendTree is a CART decision tree over binary features.
const BackendTree = "tree"

const impurityEpsilon = 1e-12

func init() {
	Register(Backend{
		Name: BackendTree,
		New: func(cfg Config) Trainer {
			return &TreeTrainer{MinSamplesLeaf: cfg.MinSamplesLeaf, MaxDepth: cfg.MaxDepth, Balanced: cfg.Balanced}
		},
		Decode: func(raw json.RawMessage) (Model, error) {
			var t Tree
			if err := json.Unmarshal(raw, &t); err != nil {
				return nil, err
			}
			if len(t.Nodes) == 0 {
				return nil, fmt.Errorf("tree has no nodes")
			}
			return &t, nil
		},
	})
}

// TreeTrainer grows a Gini tree. Impure nodes are split on the feature with
// the largest impurity decrease, even when that decrease is zero, as long as
// both children keep MinSamplesLeaf rows. Feature ties go to the lowest index
// and class ties to the lowest label, so training is deterministic.
type TreeTrainer struct {
	MinSamplesLeaf int
	// MaxDepth of zero grows until leaves are pure or too small.
	MaxDepth int
	// Balanced weighs samples by n / (k * n_class).
	Balanced bool
}

// Node is a tree node. Leaves have Feature == -1.
type Node struct {
	Feature  int     `json:"feature"`
	Left     int     `json:"left,omitempty"`
	Right    int     `json:"right,omitempty"`
	Class    int     `json:"class"`
	Samples  int     `json:"samples"`
	Impurity float64 `json:"impurity"`
}

// IsLeaf reports whether n has no children.
func (n Node) IsLeaf() bool { return n.Feature < 0 }

// Tree is a trained decision tree. Rows follow the feature zero branch to
// Left and the one branch to Right.
type Tree struct {
	Nodes    []Node `json:"nodes"`
	Features int    `json:"features"`
	Classes  int    `json:"classes"`
}

// Backend implements Model.
func (t *Tree) Backend() string { return BackendTree }

// Depth returns the length of the longest root to leaf path.
func (t *Tree) Depth() int {
	var walk func(i int) int
	walk = func(i int) int {
		n := t.Nodes[i]
		if n.IsLeaf() {
			return 0
		}
		return 1 + max(walk(n.Left), walk(n.Right))
	}
	return walk(0)
}

// Predict implements Model.
func (t *Tree) Predict(x [][]uint8) ([]int, error) {
	out := make([]int, len(x))
	for i, row := range x {
		if len(row) != t.Features {
			return nil, fmt.Errorf("%w: row %d has %d features, tree expects %d", ErrDimensionMismatch, i, len(row), t.Features)
		}
		n := t.Nodes[0]
		for !n.IsLeaf() {
			if row[n.Feature] == 0 {
				n = t.Nodes[n.Left]
			} else {
				n = t.Nodes[n.Right]
			}
		}
		out[i] = n.Class
	}
	return out, nil
}

// Fit implements Trainer.
func (tt *TreeTrainer) Fit(x [][]uint8, y []int, classes int) (Model, error) {
	width, err := validateFit(x, y, classes)
	if err != nil {
		return nil, err
	}
	minLeaf := max(tt.MinSamplesLeaf, 1)

	g := &grower{
		x:        x,
		y:        y,
		classes:  classes,
		width:    width,
		minLeaf:  minLeaf,
		maxDepth: tt.MaxDepth,
		weights:  classWeights(y, classes, tt.Balanced),
		tree:     &Tree{Features: width, Classes: classes},
	}
	idx := make([]int, len(x))
	for i := range idx {
		idx[i] = i
	}
	g.grow(idx, 0)
	return g.tree, nil
}

// classWeights mirrors the usual "balanced" heuristic; classes absent from y
// keep weight zero.
func classWeights(y []int, classes int, balanced bool) []float64 {
	w := make([]float64, classes)
	counts := make([]int, classes)
	for _, label := range y {
		counts[label]++
	}
	present := 0
	for _, n := range counts {
		if n > 0 {
			present++
		}
	}
	for c, n := range counts {
		switch {
		case n == 0:
		case balanced:
			w[c] = float64(len(y)) / (float64(present) * float64(n))
		default:
			w[c] = 1
		}
	}
	return w
}

type grower struct {
	x        [][]uint8
	y        []int
	classes  int
	width    int
	minLeaf  int
	maxDepth int
	weights  []float64
	tree     *Tree
}

func (g *grower) grow(idx []int, depth int) int {
	dist := g.distribution(idx)
	id := len(g.tree.Nodes)
	g.tree.Nodes = append(g.tree.Nodes, Node{
		Feature:  -1,
		Class:    argmax(dist),
		Samples:  len(idx),
		Impurity: gini(dist),
	})

	if g.tree.Nodes[id].Impurity <= impurityEpsilon ||
		(g.maxDepth > 0 && depth >= g.maxDepth) ||
		len(idx) < 2*g.minLeaf {
		return id
	}

	feature, ok := g.bestSplit(idx, dist)
	if !ok {
		return id
	}

	var left, right []int
	for _, i := range idx {
		if g.x[i][feature] == 0 {
			left = append(left, i)
		} else {
			right = append(right, i)
		}
	}
	l := g.grow(left, depth+1)
	r := g.grow(right, depth+1)

	n := &g.tree.Nodes[id]
	n.Feature, n.Left, n.Right = feature, l, r
	return id
}

func (g *grower) distribution(idx []int) []float64 {
	dist := make([]float64, g.classes)
	for _, i := range idx {
		dist[g.y[i]] += g.weights[g.y[i]]
	}
	return dist
}

func (g *grower) bestSplit(idx []int, dist []float64) (int, bool) {
	parent := sum(dist) * gini(dist)
	best, bestGain := -1, math.Inf(-1)

	right := make([]float64, g.classes)
	left := make([]float64, g.classes)
	for f := 0; f < g.width; f++ {
		clear(right)
		nRight := 0
		for _, i := range idx {
			if g.x[i][f] != 0 {
				right[g.y[i]] += g.weights[g.y[i]]
				nRight++
			}
		}
		nLeft := len(idx) - nRight
		if nRight < g.minLeaf || nLeft < g.minLeaf {
			continue
		}
		for c := range left {
			left[c] = dist[c] - right[c]
		}
		gain := parent - sum(left)*gini(left) - sum(right)*gini(right)
		if gain > bestGain {
			best, bestGain = f, gain
		}
	}
	return best, best >= 0
}

func gini(dist []float64) float64 {
	total := sum(dist)
	if total <= 0 {
		return 0
	}
	g := 1.0
	for _, d := range dist {
		p := d / total
		g -= p * p
	}
	return g
}

func sum(v []float64) float64 {
	var s float64
	for _, x := range v {
		s += x
	}
	return s
}

func argmax(v []float64) int {
	best := 0
	for i := 1; i < len(v); i++ {
		if v[i] > v[best] {
			best = i
		}
	}
	return best
}
