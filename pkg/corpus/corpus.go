// Package corpus assembles per-video symbol sequences into the
// platform × manipulation class × device corpus.
package corpus

import (
	"fmt"
	"slices"

	"github.com/boxprint/boxprint/pkg/artifact"
	"github.com/boxprint/boxprint/pkg/symbol"
)

// DeviceSequences maps a device id to the sequences of its videos.
type DeviceSequences map[string][]symbol.Sequence

// Corpus is the three level mapping platform → class → device → sequences.
// Every device is present in every cell, possibly with an empty list.
type Corpus struct {
	Platforms []string                              `json:"platforms"`
	Classes   []string                              `json:"classes"`
	Devices   []string                              `json:"devices"`
	Cells     map[string]map[string]DeviceSequences `json:"cells"`
}

// New creates an empty corpus over the given axes. Devices are kept sorted.
func New(platforms, classes, devices []string) *Corpus {
	devs := slices.Clone(devices)
	slices.Sort(devs)
	devs = slices.Compact(devs)

	c := &Corpus{
		Platforms: slices.Clone(platforms),
		Classes:   slices.Clone(classes),
		Devices:   devs,
		Cells:     make(map[string]map[string]DeviceSequences, len(platforms)),
	}
	for _, p := range c.Platforms {
		c.Cells[p] = make(map[string]DeviceSequences, len(c.Classes))
		for _, cl := range c.Classes {
			c.Cells[p][cl] = c.emptyCell()
		}
	}
	return c
}

func (c *Corpus) emptyCell() DeviceSequences {
	cell := make(DeviceSequences, len(c.Devices))
	for _, d := range c.Devices {
		cell[d] = []symbol.Sequence{}
	}
	return cell
}

// Cell returns the per-device sequences of a taxonomy cell.
func (c *Corpus) Cell(platform, class string) (DeviceSequences, error) {
	byClass, ok := c.Cells[platform]
	if !ok {
		return nil, fmt.Errorf("%w: platform %q", ErrUnknownCell, platform)
	}
	cell, ok := byClass[class]
	if !ok {
		return nil, fmt.Errorf("%w: class %q", ErrUnknownCell, class)
	}
	return cell, nil
}

// Append adds a sequence to a device's list in the given cell.
func (c *Corpus) Append(platform, class, device string, seq symbol.Sequence) error {
	cell, err := c.Cell(platform, class)
	if err != nil {
		return err
	}
	list, ok := cell[device]
	if !ok {
		return fmt.Errorf("%w: device %q", ErrUnknownCell, device)
	}
	cell[device] = append(list, seq)
	return nil
}

// Visit calls fn for every platform, class and device in corpus order.
func (c *Corpus) Visit(fn func(platform, class, device string, seqs []symbol.Sequence)) {
	for _, p := range c.Platforms {
		for _, cl := range c.Classes {
			cell := c.Cells[p][cl]
			for _, d := range c.Devices {
				fn(p, cl, d, cell[d])
			}
		}
	}
}

// DeviceIDs returns the sorted device ids that own at least one sequence.
func (c *Corpus) DeviceIDs() []string {
	seen := make(map[string]struct{})
	c.Visit(func(_, _, d string, seqs []symbol.Sequence) {
		if len(seqs) > 0 {
			seen[d] = struct{}{}
		}
	})
	out := make([]string, 0, len(seen))
	for _, d := range c.Devices {
		if _, ok := seen[d]; ok {
			out = append(out, d)
		}
	}
	return out
}

// Filter restricts AllSymbols to matching coordinates. Nil predicates match all.
type Filter struct {
	Platform func(string) bool
	Class    func(string) bool
	Device   func(string) bool
}

// ExcludeDevice returns a filter that skips one device.
func ExcludeDevice(device string) Filter {
	return Filter{Device: func(d string) bool { return d != device }}
}

func (f Filter) match(platform, class, device string) bool {
	return (f.Platform == nil || f.Platform(platform)) &&
		(f.Class == nil || f.Class(class)) &&
		(f.Device == nil || f.Device(device))
}

// AllSymbols returns the sorted union of symbols of matching sequences.
func (c *Corpus) AllSymbols(f Filter) []string {
	set := make(map[string]struct{})
	c.Visit(func(p, cl, d string, seqs []symbol.Sequence) {
		if !f.match(p, cl, d) {
			return
		}
		for _, seq := range seqs {
			for _, s := range seq {
				set[s] = struct{}{}
			}
		}
	})
	out := make([]string, 0, len(set))
	for s := range set {
		out = append(out, s)
	}
	slices.Sort(out)
	return out
}

// MergeFamily folds the variant classes into one family class. For every
// platform and device the variant lists are concatenated in variant order.
// The family takes the position of its first member; other classes keep
// their order and contents.
func (c *Corpus) MergeFamily(family string, variants []string) error {
	var present []string
	for _, v := range variants {
		if slices.Contains(c.Classes, v) {
			present = append(present, v)
		}
	}
	if len(present) == 0 {
		return nil
	}

	for _, p := range c.Platforms {
		merged, ok := c.Cells[p][family]
		if !ok {
			merged = c.emptyCell()
		}
		for _, v := range present {
			for d, seqs := range c.Cells[p][v] {
				merged[d] = append(merged[d], seqs...)
			}
			delete(c.Cells[p], v)
		}
		c.Cells[p][family] = merged
	}

	classes := make([]string, 0, len(c.Classes))
	for _, cl := range c.Classes {
		if cl != family && !slices.Contains(present, cl) {
			classes = append(classes, cl)
			continue
		}
		if !slices.Contains(classes, family) {
			classes = append(classes, family)
		}
	}
	c.Classes = classes
	return nil
}

// Validate checks that every cell lists every device.
func (c *Corpus) Validate() error {
	for _, p := range c.Platforms {
		byClass, ok := c.Cells[p]
		if !ok {
			return fmt.Errorf("%w: platform %q has no cells", ErrUnknownCell, p)
		}
		for _, cl := range c.Classes {
			cell, ok := byClass[cl]
			if !ok {
				return fmt.Errorf("%w: %s/%s missing", ErrUnknownCell, p, cl)
			}
			for _, d := range c.Devices {
				if _, ok := cell[d]; !ok {
					return fmt.Errorf("%w: %s/%s lacks device %s", ErrUnknownCell, p, cl, d)
				}
			}
		}
	}
	return nil
}

// Save writes the corpus to path.
func Save(path string, c *Corpus) error {
	return artifact.Write(path, artifact.KindCorpus, c)
}

// Load reads a corpus written by Save.
func Load(path string) (*Corpus, error) {
	var c Corpus
	if err := artifact.Read(path, artifact.KindCorpus, &c); err != nil {
		return nil, err
	}
	c.normalize()
	if err := c.Validate(); err != nil {
		return nil, fmt.Errorf("corpus %s: %w", path, err)
	}
	return &c, nil
}

func (c *Corpus) normalize() {
	for _, byClass := range c.Cells {
		for _, cell := range byClass {
			for d, seqs := range cell {
				if seqs == nil {
					cell[d] = []symbol.Sequence{}
				}
				for i, s := range seqs {
					if s == nil {
						seqs[i] = symbol.Sequence{}
					}
				}
			}
		}
	}
}
