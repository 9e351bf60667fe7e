package corpus

import (
	"encoding/json"
	"fmt"
	"os"
	"slices"
	"strings"
)

// Whitelist is the set of video ids admitted into the corpus.
type Whitelist struct {
	ids map[string]struct{}
}

// NewWhitelist builds a whitelist from video ids.
func NewWhitelist(ids []string) *Whitelist {
	w := &Whitelist{ids: make(map[string]struct{}, len(ids))}
	for _, id := range ids {
		w.ids[id] = struct{}{}
	}
	return w
}

// LoadWhitelist reads a JSON list of video ids.
func LoadWhitelist(path string) (*Whitelist, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, NewStructuralInputError(path, err)
	}
	var ids []string
	if err := json.Unmarshal(data, &ids); err != nil {
		return nil, NewStructuralInputError(path, fmt.Errorf("decode whitelist: %w", err))
	}
	return NewWhitelist(ids), nil
}

// Contains reports whether a video id is whitelisted.
func (w *Whitelist) Contains(videoID string) bool {
	_, ok := w.ids[videoID]
	return ok
}

// Len returns the number of whitelisted videos.
func (w *Whitelist) Len() int { return len(w.ids) }

// IDs returns the whitelisted video ids in sorted order.
func (w *Whitelist) IDs() []string {
	out := make([]string, 0, len(w.ids))
	for id := range w.ids {
		out = append(out, id)
	}
	slices.Sort(out)
	return out
}

// Devices returns the sorted device ids derived from the whitelist.
func (w *Whitelist) Devices(deviceID func(string) string) []string {
	seen := make(map[string]struct{})
	for id := range w.ids {
		seen[deviceID(id)] = struct{}{}
	}
	out := make([]string, 0, len(seen))
	for d := range seen {
		out = append(out, d)
	}
	slices.Sort(out)
	return out
}

// VideoID returns the file name up to its first dot.
func VideoID(fileName string) string {
	id, _, _ := strings.Cut(fileName, ".")
	return id
}
