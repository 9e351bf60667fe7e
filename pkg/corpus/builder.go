package corpus

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/rs/zerolog"

	"github.com/boxprint/boxprint/pkg/symbol"
	"github.com/boxprint/boxprint/pkg/taxonomy"
)

// Builder reads root/<platform>/<tool>/<video_id>.<ext> metadata dumps into a
// Corpus.
type Builder struct {
	Root      string
	Whitelist *Whitelist
	Taxonomy  *taxonomy.Taxonomy
	Options   symbol.Options
	// OnlyDevice, when set, skips videos of every other device.
	OnlyDevice string
	Logger     zerolog.Logger
}

// NewBuilder returns a builder with default symbol options.
func NewBuilder(root string, wl *Whitelist, tax *taxonomy.Taxonomy, logger zerolog.Logger) *Builder {
	return &Builder{
		Root:      root,
		Whitelist: wl,
		Taxonomy:  tax,
		Options:   symbol.DefaultOptions(),
		Logger:    logger,
	}
}

// Build parses every whitelisted video and merges tool families. Whitelisted
// videos that were never found are returned as warnings.
func (b *Builder) Build(ctx context.Context) (*Corpus, []ConsistencyWarning, error) {
	if b.Whitelist == nil {
		return nil, nil, fmt.Errorf("corpus builder: whitelist is required")
	}
	if b.Taxonomy == nil {
		b.Taxonomy = taxonomy.Default()
	}
	tax := b.Taxonomy

	devices := b.Whitelist.Devices(tax.DeviceID)
	b.Logger.Info().
		Int("videos", b.Whitelist.Len()).
		Int("devices", len(devices)).
		Msg("Building corpus")

	c := New(tax.Platforms, tax.Classes, devices)
	found := make(map[string]struct{}, b.Whitelist.Len())

	for _, platform := range tax.Platforms {
		for _, class := range tax.Classes {
			if err := ctx.Err(); err != nil {
				return nil, nil, err
			}
			n, err := b.buildCell(c, platform, class, found)
			if err != nil {
				return nil, nil, err
			}
			b.Logger.Debug().
				Str("platform", platform).
				Str("class", class).
				Int("videos", n).
				Msg("Parsed cell")
		}
	}

	for _, f := range tax.Families {
		if err := c.MergeFamily(f.Name, tax.Variants(f.Name)); err != nil {
			return nil, nil, fmt.Errorf("merge family %s: %w", f.Name, err)
		}
	}

	var warnings []ConsistencyWarning
	for _, id := range b.Whitelist.IDs() {
		if b.OnlyDevice != "" && tax.DeviceID(id) != b.OnlyDevice {
			continue
		}
		if _, ok := found[id]; !ok {
			w := ConsistencyWarning{VideoID: id, Reason: "whitelisted but never found on disk"}
			warnings = append(warnings, w)
			b.Logger.Warn().Str("video_id", id).Msg(w.Reason)
		}
	}

	return c, warnings, nil
}

func (b *Builder) buildCell(c *Corpus, platform, class string, found map[string]struct{}) (int, error) {
	dir := filepath.Join(b.Root, platform, class)
	entries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return 0, NewStructuralInputError(dir, ErrMissingDirectory)
		}
		return 0, NewStructuralInputError(dir, err)
	}

	n := 0
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		videoID := VideoID(entry.Name())
		if !b.Whitelist.Contains(videoID) {
			continue
		}
		device := b.Taxonomy.DeviceID(videoID)
		if b.OnlyDevice != "" && device != b.OnlyDevice {
			continue
		}

		path := filepath.Join(dir, entry.Name())
		seq, err := b.parse(path)
		if err != nil {
			return n, err
		}
		if err := c.Append(platform, class, device, seq); err != nil {
			return n, NewStructuralInputError(path, err)
		}
		found[videoID] = struct{}{}
		n++
	}
	return n, nil
}

func (b *Builder) parse(path string) (symbol.Sequence, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, NewStructuralInputError(path, err)
	}
	defer f.Close()

	tree, err := symbol.DecodeXML(f)
	if err != nil {
		return nil, NewStructuralInputError(path, err)
	}
	return symbol.FromTree(tree, b.Options), nil
}
