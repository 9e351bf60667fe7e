package report

import (
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"github.com/boxprint/boxprint/pkg/metrics"
	"github.com/boxprint/boxprint/pkg/taxonomy"
)

// DeviceRow is the score of one held-out device.
type DeviceRow struct {
	Device           string  `json:"device"`
	Brand            string  `json:"brand"`
	Videos           int     `json:"videos"`
	Accuracy         float64 `json:"accuracy"`
	BalancedAccuracy float64 `json:"balanced_accuracy"`
}

// AccuracyByDevice lists the device scores of s by ascending accuracy.
// Devices missing from tax get an empty brand.
func AccuracyByDevice(s metrics.Summary, tax *taxonomy.Taxonomy) []DeviceRow {
	if tax == nil {
		tax = taxonomy.Default()
	}
	scores := s.ByAccuracy()
	rows := make([]DeviceRow, 0, len(scores))
	for _, d := range scores {
		row := DeviceRow{
			Device:           d.Device,
			Videos:           d.Videos,
			Accuracy:         d.Accuracy,
			BalancedAccuracy: d.BalancedAccuracy,
		}
		if dev, err := tax.Device(d.Device); err == nil {
			row.Brand = dev.Brand
		}
		rows = append(rows, row)
	}
	return rows
}

// Table converts rows to string cells for a table printer.
func Table(rows []DeviceRow) (headers []string, cells [][]string) {
	headers = []string{"device", "brand", "videos", "accuracy", "balanced"}
	for _, r := range rows {
		cells = append(cells, []string{
			r.Device,
			r.Brand,
			fmt.Sprint(r.Videos),
			fmt.Sprintf("%.4f", r.Accuracy),
			fmt.Sprintf("%.4f", r.BalancedAccuracy),
		})
	}
	return headers, cells
}

// WriteConfusion prints the row-normalised confusion matrix of s, rows being
// true labels.
func WriteConfusion(w io.Writer, s metrics.Summary) error {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', tabwriter.AlignRight)
	header := append([]string{""}, s.Classes...)
	if _, err := fmt.Fprintln(tw, strings.Join(header, "\t")+"\t"); err != nil {
		return err
	}
	for i, row := range s.Confusion.Normalize() {
		line := make([]string, 0, len(row)+1)
		line = append(line, s.Classes[i])
		for _, v := range row {
			line = append(line, fmt.Sprintf("%.3f", v))
		}
		if _, err := fmt.Fprintln(tw, strings.Join(line, "\t")+"\t"); err != nil {
			return err
		}
	}
	if err := tw.Flush(); err != nil {
		return err
	}

	if s.Rates != nil {
		r := s.Rates
		_, err := fmt.Fprintf(w, "TPR %.4f  TNR %.4f  FNR %.4f  FPR %.4f  PPV %.4f\n", r.TPR, r.TNR, r.FNR, r.FPR, r.PPV)
		return err
	}
	return nil
}
