package corpus

import (
	"os"
	"path/filepath"

	"github.com/boxprint/boxprint/pkg/taxonomy"
)

// Check compares the whitelist with the raw tool directories and reports,
// per platform and tool, every whitelisted video without a metadata file.
// A missing directory is reported once instead of once per video.
func Check(root string, wl *Whitelist, tax *taxonomy.Taxonomy) []ConsistencyWarning {
	if tax == nil {
		tax = taxonomy.Default()
	}
	ids := wl.IDs()

	var warnings []ConsistencyWarning
	for _, platform := range tax.Platforms {
		for _, class := range tax.Classes {
			dir := filepath.Join(root, platform, class)
			entries, err := os.ReadDir(dir)
			if err != nil {
				warnings = append(warnings, ConsistencyWarning{
					Platform: platform,
					Class:    class,
					Reason:   "directory unreadable: " + err.Error(),
				})
				continue
			}

			present := make(map[string]struct{}, len(entries))
			for _, e := range entries {
				present[VideoID(e.Name())] = struct{}{}
			}
			for _, id := range ids {
				if _, ok := present[id]; !ok {
					warnings = append(warnings, ConsistencyWarning{
						Platform: platform,
						Class:    class,
						VideoID:  id,
						Reason:   "missing",
					})
				}
			}
		}
	}
	return warnings
}
