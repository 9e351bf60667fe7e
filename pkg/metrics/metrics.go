// Package metrics scores aggregated fold predictions. Every function is pure.
package metrics

import (
	"maps"
	"slices"
)

// Confusion is a square count matrix indexed [true][predicted].
type Confusion [][]int

// NewConfusion counts label pairs over n classes. Labels outside [0, n) are
// ignored.
func NewConfusion(yTrue, yPred []int, n int) Confusion {
	cm := make(Confusion, n)
	for i := range cm {
		cm[i] = make([]int, n)
	}
	for i := range min(len(yTrue), len(yPred)) {
		t, p := yTrue[i], yPred[i]
		if t < 0 || t >= n || p < 0 || p >= n {
			continue
		}
		cm[t][p]++
	}
	return cm
}

// Total returns the number of counted pairs.
func (c Confusion) Total() int {
	total := 0
	for _, row := range c {
		for _, v := range row {
			total += v
		}
	}
	return total
}

// Normalize divides every row by its sum. Empty rows stay zero.
func (c Confusion) Normalize() [][]float64 {
	out := make([][]float64, len(c))
	for i, row := range c {
		out[i] = make([]float64, len(row))
		sum := 0
		for _, v := range row {
			sum += v
		}
		if sum == 0 {
			continue
		}
		for j, v := range row {
			out[i][j] = float64(v) / float64(sum)
		}
	}
	return out
}

// Accuracy computes correct / total. It is 0 for empty input.
func Accuracy(yTrue, yPred []int) float64 {
	n := min(len(yTrue), len(yPred))
	if n == 0 {
		return 0.0
	}
	correct := 0
	for i := range n {
		if yTrue[i] == yPred[i] {
			correct++
		}
	}
	return float64(correct) / float64(n)
}

// BalancedAccuracy is the mean recall over the classes present in yTrue.
func BalancedAccuracy(yTrue, yPred []int) float64 {
	n := min(len(yTrue), len(yPred))
	if n == 0 {
		return 0.0
	}
	support := map[int]int{}
	hits := map[int]int{}
	for i := range n {
		support[yTrue[i]]++
		if yTrue[i] == yPred[i] {
			hits[yTrue[i]]++
		}
	}
	var sum float64
	for _, label := range slices.Sorted(maps.Keys(support)) {
		sum += float64(hits[label]) / float64(support[label])
	}
	return sum / float64(len(support))
}

// CalculateTPR computes True Positive Rate (Recall): TP / (TP + FN)
func CalculateTPR(tp, fn float64) float64 { return ratio(tp, tp+fn) }

// CalculateTNR computes True Negative Rate: TN / (TN + FP)
func CalculateTNR(tn, fp float64) float64 { return ratio(tn, tn+fp) }

// CalculateFNR computes False Negative Rate: FN / (FN + TP)
func CalculateFNR(fn, tp float64) float64 { return ratio(fn, fn+tp) }

// CalculateFPR computes False Positive Rate: FP / (FP + TN)
func CalculateFPR(fp, tn float64) float64 { return ratio(fp, fp+tn) }

// CalculatePrecision computes Precision: TP / (TP + FP)
func CalculatePrecision(tp, fp float64) float64 { return ratio(tp, tp+fp) }

func ratio(num, denom float64) float64 {
	if denom == 0 {
		return 0.0
	}
	return num / denom
}

// BinaryRates are derived from the row-normalised 2×2 confusion matrix, with
// label 0 as the negative class.
type BinaryRates struct {
	TPR float64 `json:"tpr"`
	TNR float64 `json:"tnr"`
	FNR float64 `json:"fnr"`
	FPR float64 `json:"fpr"`
	PPV float64 `json:"ppv"`
}

// Rates computes BinaryRates. It reports ok=false unless c is 2×2.
func (c Confusion) Rates() (BinaryRates, bool) {
	if len(c) != 2 {
		return BinaryRates{}, false
	}
	cm := c.Normalize()
	tn, fp := cm[0][0], cm[0][1]
	fn, tp := cm[1][0], cm[1][1]
	return BinaryRates{
		TPR: CalculateTPR(tp, fn),
		TNR: CalculateTNR(tn, fp),
		FNR: CalculateFNR(fn, tp),
		FPR: CalculateFPR(fp, tn),
		PPV: CalculatePrecision(tp, fp),
	}, true
}
