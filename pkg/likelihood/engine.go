package likelihood

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/boxprint/boxprint/pkg/corpus"
	"github.com/boxprint/boxprint/pkg/taxonomy"
)

// DefaultOSSplit is the OS cross join used when Engine.OSSplit is empty.
var DefaultOSSplit = []string{"Android", "iOS"}

// Options selects the fold a table is computed for.
type Options struct {
	// ExcludeDevice is left out of the alphabet and of every frequency.
	ExcludeDevice string
	// UseOS crosses every cell with the OS split and restricts each
	// frequency to devices of that OS.
	UseOS bool
}

// Engine computes ratio tables from a corpus.
type Engine struct {
	Taxonomy *taxonomy.Taxonomy
	OSSplit  []string
	Logger   zerolog.Logger
}

// NewEngine returns an engine over tax with the default OS split.
func NewEngine(tax *taxonomy.Taxonomy, logger zerolog.Logger) *Engine {
	return &Engine{Taxonomy: tax, OSSplit: DefaultOSSplit, Logger: logger}
}

// Compute builds the ratio table of every unordered cell pair. Frequencies are
// computed once per cell.
func (e *Engine) Compute(c *corpus.Corpus, opts Options) (*Table, error) {
	var filter corpus.Filter
	if opts.ExcludeDevice != "" {
		filter = corpus.ExcludeDevice(opts.ExcludeDevice)
	}
	alphabet := c.AllSymbols(filter)

	cells, err := e.cells(c, opts.UseOS)
	if err != nil {
		return nil, err
	}

	var osOf map[string]string
	if opts.UseOS {
		if osOf, err = e.deviceOS(c); err != nil {
			return nil, err
		}
	}

	freqs := make([]Frequencies, len(cells))
	for i, cell := range cells {
		seqs, err := c.Cell(cell.Platform, cell.Class)
		if err != nil {
			return nil, err
		}
		wantOS := cell.OS
		freqs[i] = Frequency(seqs, alphabet, func(device string) bool {
			if device == opts.ExcludeDevice {
				return false
			}
			return wantOS == "" || osOf[device] == wantOS
		})
	}

	t := &Table{
		Device:   opts.ExcludeDevice,
		UseOS:    opts.UseOS,
		Alphabet: alphabet,
		Cells:    cells,
		Pairs:    make([]Pair, 0, len(cells)*(len(cells)-1)/2),
	}
	for i := range cells {
		for j := i + 1; j < len(cells); j++ {
			t.Pairs = append(t.Pairs, Pair{A: i, B: j, Entries: Ratios(freqs[i], freqs[j], alphabet)})
		}
	}

	e.Logger.Debug().
		Str("device", opts.ExcludeDevice).
		Bool("use_os", opts.UseOS).
		Int("alphabet", len(alphabet)).
		Int("cells", len(cells)).
		Int("pairs", len(t.Pairs)).
		Msg("Computed ratio table")
	return t, nil
}

// Vocabulary computes the table of a fold and selects its vocabulary.
func (e *Engine) Vocabulary(c *corpus.Corpus, opts Options, threshold float64) ([]string, error) {
	t, err := e.Compute(c, opts)
	if err != nil {
		return nil, err
	}
	return Select(t, threshold), nil
}

// ComputeAll writes one table per observed device into dir and returns the
// written paths in device order.
func (e *Engine) ComputeAll(ctx context.Context, c *corpus.Corpus, useOS bool, dir string) ([]string, error) {
	var paths []string
	for _, device := range c.DeviceIDs() {
		if err := ctx.Err(); err != nil {
			return paths, err
		}
		t, err := e.Compute(c, Options{ExcludeDevice: device, UseOS: useOS})
		if err != nil {
			return paths, fmt.Errorf("device %s: %w", device, err)
		}
		path, err := Save(dir, t)
		if err != nil {
			return paths, fmt.Errorf("device %s: %w", device, err)
		}
		e.Logger.Info().Str("device", device).Str("path", path).Msg("Saved ratio table")
		paths = append(paths, path)
	}
	return paths, nil
}

func (e *Engine) cells(c *corpus.Corpus, useOS bool) ([]Cell, error) {
	var cells []Cell
	split := e.OSSplit
	if len(split) == 0 {
		split = DefaultOSSplit
	}
	for _, p := range c.Platforms {
		for _, cl := range c.Classes {
			if !useOS {
				cells = append(cells, Cell{Platform: p, Class: cl})
				continue
			}
			for _, o := range split {
				cells = append(cells, Cell{OS: o, Platform: p, Class: cl})
			}
		}
	}
	if len(cells) < 2 {
		return nil, fmt.Errorf("ratio table needs at least two cells, corpus has %d", len(cells))
	}
	return cells, nil
}

func (e *Engine) deviceOS(c *corpus.Corpus) (map[string]string, error) {
	tax := e.Taxonomy
	if tax == nil {
		tax = taxonomy.Default()
	}
	out := make(map[string]string, len(c.Devices))
	for _, d := range c.Devices {
		o, err := tax.OS(d)
		if err != nil {
			return nil, err
		}
		out[d] = o
	}
	return out, nil
}
