package metrics

import (
	"cmp"
	"slices"
)

// Labels holds the true and predicted labels of one held-out device.
type Labels struct {
	True []int
	Pred []int
}

// DeviceScore is the accuracy of one fold.
type DeviceScore struct {
	Device           string  `json:"device"`
	Videos           int     `json:"videos"`
	Accuracy         float64 `json:"accuracy"`
	BalancedAccuracy float64 `json:"balanced_accuracy"`
}

// Summary aggregates every fold.
type Summary struct {
	Classes          []string      `json:"classes"`
	Videos           int           `json:"videos"`
	Accuracy         float64       `json:"accuracy"`
	BalancedAccuracy float64       `json:"balanced_accuracy"`
	Confusion        Confusion     `json:"confusion"`
	Rates            *BinaryRates  `json:"rates,omitempty"`
	Devices          []DeviceScore `json:"devices"`
}

// Summarize concatenates per-device labels in device order and scores them.
func Summarize(classes []string, byDevice map[string]Labels) Summary {
	devices := make([]string, 0, len(byDevice))
	for d := range byDevice {
		devices = append(devices, d)
	}
	slices.Sort(devices)

	var yTrue, yPred []int
	s := Summary{Classes: classes}
	for _, d := range devices {
		l := byDevice[d]
		yTrue = append(yTrue, l.True...)
		yPred = append(yPred, l.Pred...)
		s.Devices = append(s.Devices, DeviceScore{
			Device:           d,
			Videos:           len(l.True),
			Accuracy:         Accuracy(l.True, l.Pred),
			BalancedAccuracy: BalancedAccuracy(l.True, l.Pred),
		})
	}

	s.Videos = len(yTrue)
	s.Accuracy = Accuracy(yTrue, yPred)
	s.BalancedAccuracy = BalancedAccuracy(yTrue, yPred)
	s.Confusion = NewConfusion(yTrue, yPred, len(classes))
	if r, ok := s.Confusion.Rates(); ok {
		s.Rates = &r
	}
	return s
}

// ByAccuracy returns device scores sorted by ascending accuracy, then device.
func (s Summary) ByAccuracy() []DeviceScore {
	out := slices.Clone(s.Devices)
	slices.SortStableFunc(out, func(a, b DeviceScore) int {
		if c := cmp.Compare(a.Accuracy, b.Accuracy); c != 0 {
			return c
		}
		return cmp.Compare(a.Device, b.Device)
	})
	return out
}
