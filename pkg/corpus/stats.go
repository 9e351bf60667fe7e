package corpus

import "github.com/boxprint/boxprint/pkg/symbol"

// CellStats summarises one taxonomy cell.
type CellStats struct {
	Platform string `json:"platform"`
	Class    string `json:"class"`
	Videos   int    `json:"videos"`
	Devices  int    `json:"devices"`
	Symbols  int    `json:"symbols"`
}

// Stats holds per-cell and per-device video counts.
type Stats struct {
	Cells    []CellStats    `json:"cells"`
	Devices  map[string]int `json:"devices"`
	Videos   int            `json:"videos"`
	Alphabet int            `json:"alphabet"`
}

// Stats computes corpus statistics in corpus order.
func (c *Corpus) Stats() Stats {
	st := Stats{Devices: make(map[string]int, len(c.Devices))}
	for _, d := range c.Devices {
		st.Devices[d] = 0
	}

	for _, p := range c.Platforms {
		for _, cl := range c.Classes {
			cs := CellStats{Platform: p, Class: cl}
			syms := make(map[string]struct{})
			for _, d := range c.Devices {
				seqs := c.Cells[p][cl][d]
				if len(seqs) > 0 {
					cs.Devices++
				}
				cs.Videos += len(seqs)
				st.Devices[d] += len(seqs)
				for _, seq := range seqs {
					addAll(syms, seq)
				}
			}
			cs.Symbols = len(syms)
			st.Videos += cs.Videos
			st.Cells = append(st.Cells, cs)
		}
	}
	st.Alphabet = len(c.AllSymbols(Filter{}))
	return st
}

func addAll(set map[string]struct{}, seq symbol.Sequence) {
	for _, s := range seq {
		set[s] = struct{}{}
	}
}
