// Package report renders ratio tables and cross-validation results as plain
// text files and tables.
package report

import (
	"bufio"
	"fmt"
	"os"
	"path/filepath"

	"github.com/boxprint/boxprint/pkg/likelihood"
)

// SaliencyDir returns the directory holding the saliency files of one table.
func SaliencyDir(root string, t *likelihood.Table) string {
	name := t.Device
	if name == "" {
		name = "all"
	}
	if t.UseOS {
		name += "-os"
	}
	return filepath.Join(root, name)
}

// WriteSaliency writes one "<A>_vs_<B>.txt" file per class pair of t into
// dir. Each line is "%7.4f symbol", ratios ascending. Pairs with no symbol over
// threshold produce no file and are returned as warnings.
func WriteSaliency(dir string, t *likelihood.Table, threshold float64) ([]string, []error, error) {
	lists, warnings := likelihood.Salient(t, threshold)
	if len(lists) == 0 {
		return nil, warnings, nil
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, warnings, fmt.Errorf("create report dir: %w", err)
	}

	paths := make([]string, 0, len(lists))
	for _, s := range lists {
		path := filepath.Join(dir, s.Name()+".txt")
		if err := writeEntries(path, s.Entries); err != nil {
			return paths, warnings, err
		}
		paths = append(paths, path)
	}
	return paths, warnings, nil
}

func writeEntries(path string, entries []likelihood.Entry) (err error) {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	defer func() {
		if cerr := f.Close(); err == nil && cerr != nil {
			err = fmt.Errorf("close %s: %w", path, cerr)
		}
	}()

	w := bufio.NewWriter(f)
	for _, e := range entries {
		if _, err := fmt.Fprintf(w, "%7.4f %s\n", e.Ratio, e.Symbol); err != nil {
			return fmt.Errorf("write %s: %w", path, err)
		}
	}
	return w.Flush()
}
