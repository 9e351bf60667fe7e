// Package experiment runs leave-one-device-out evaluation over a corpus.
package experiment

import (
	"fmt"
	"slices"

	"github.com/boxprint/boxprint/pkg/corpus"
	"github.com/boxprint/boxprint/pkg/taxonomy"
)

// Kind enumerates the label assignment rules.
type Kind string

const (
	// KindTamper labels native captures Native and everything else Tampered.
	KindTamper Kind = "tamper"
	// KindReencoding is KindTamper with a suffix for videos re-encoded by the
	// sharing platform.
	KindReencoding Kind = "reencoding"
	// KindManipulation labels videos with their manipulation class.
	KindManipulation Kind = "manipulation"
	// KindPlatform labels videos with their origin platform.
	KindPlatform Kind = "platform"
	// KindBlind labels shared videos with the platform and unshared ones with
	// the manipulation class.
	KindBlind Kind = "blind"
)

// Kinds lists every rule kind.
func Kinds() []Kind {
	return []Kind{KindTamper, KindReencoding, KindManipulation, KindPlatform, KindBlind}
}

// Label names used by the tamper rules.
const (
	LabelNative   = "Native"
	LabelTampered = "Tampered"
)

// LabelRule maps (platform, class, device) to a class label.
type LabelRule struct {
	Kind Kind `json:"kind"`
	// UseOS prefixes labels with the device OS, e.g. "iOS-Native".
	UseOS bool `json:"use_os"`
	// Platforms restricts the corpus to these platforms when non-empty.
	Platforms []string `json:"platforms,omitempty"`
}

// ParseKind validates a rule kind name.
func ParseKind(s string) (Kind, error) {
	k := Kind(s)
	if !slices.Contains(Kinds(), k) {
		return "", fmt.Errorf("unknown label rule %q (want one of %v)", s, Kinds())
	}
	return k, nil
}

// Labeler is a LabelRule bound to a corpus and taxonomy.
type Labeler struct {
	rule    LabelRule
	tax     *taxonomy.Taxonomy
	classes []string
	index   map[string]int
	osOf    map[string]string
}

// NewLabeler resolves the ordered label list of rule over c.
func NewLabeler(rule LabelRule, c *corpus.Corpus, tax *taxonomy.Taxonomy) (*Labeler, error) {
	if tax == nil {
		tax = taxonomy.Default()
	}
	if _, err := ParseKind(string(rule.Kind)); err != nil {
		return nil, err
	}
	for _, p := range rule.Platforms {
		if !slices.Contains(c.Platforms, p) {
			return nil, fmt.Errorf("label rule platform %q not in corpus", p)
		}
	}

	l := &Labeler{rule: rule, tax: tax}

	if rule.Kind == KindReencoding {
		platforms := l.platforms(c)
		for _, p := range []string{tax.Reencoding.Before, tax.Reencoding.After} {
			if p == "" || !slices.Contains(platforms, p) {
				return nil, fmt.Errorf("%w: reencoding needs platforms %q and %q, corpus has %v",
					ErrRuleMismatch, tax.Reencoding.Before, tax.Reencoding.After, platforms)
			}
		}
	}

	var oses []string
	if rule.UseOS {
		l.osOf = make(map[string]string, len(c.Devices))
		present := make(map[string]struct{})
		for _, d := range c.Devices {
			o, err := tax.OS(d)
			if err != nil {
				return nil, err
			}
			l.osOf[d] = o
			present[o] = struct{}{}
		}
		oses = tax.OSOrder(present)
	}

	l.classes = l.enumerate(c, oses)
	l.index = make(map[string]int, len(l.classes))
	for i, name := range l.classes {
		l.index[name] = i
	}
	return l, nil
}

func (l *Labeler) platforms(c *corpus.Corpus) []string {
	if len(l.rule.Platforms) == 0 {
		return c.Platforms
	}
	var out []string
	for _, p := range c.Platforms {
		if slices.Contains(l.rule.Platforms, p) {
			out = append(out, p)
		}
	}
	return out
}

func crossOS(bases, oses []string) []string {
	if len(oses) == 0 {
		return bases
	}
	out := make([]string, 0, len(bases)*len(oses))
	for _, b := range bases {
		for _, o := range oses {
			out = append(out, o+"-"+b)
		}
	}
	return out
}

func (l *Labeler) enumerate(c *corpus.Corpus, oses []string) []string {
	platforms := l.platforms(c)
	switch l.rule.Kind {
	case KindTamper:
		return crossOS([]string{LabelNative, LabelTampered}, oses)
	case KindReencoding:
		base := crossOS([]string{LabelNative, LabelTampered}, oses)
		out := slices.Clone(base)
		for _, b := range base {
			out = append(out, b+l.tax.Reencoding.Suffix)
		}
		return out
	case KindManipulation:
		return crossOS(c.Classes, oses)
	case KindPlatform:
		return crossOS(platforms, oses)
	case KindBlind:
		out := crossOS(c.Classes, oses)
		for _, p := range platforms {
			if p != l.tax.NativePlatform {
				out = append(out, p)
			}
		}
		return out
	}
	return nil
}

// Classes returns the fixed, ordered label list.
func (l *Labeler) Classes() []string { return slices.Clone(l.classes) }

// Includes reports whether videos of platform take part in the experiment.
func (l *Labeler) Includes(platform string) bool {
	return len(l.rule.Platforms) == 0 || slices.Contains(l.rule.Platforms, platform)
}

// Name returns the label of a video.
func (l *Labeler) Name(platform, class, device string) string {
	prefix := ""
	if l.rule.UseOS {
		prefix = l.osOf[device] + "-"
	}
	switch l.rule.Kind {
	case KindTamper, KindReencoding:
		name := LabelTampered
		if l.tax.IsNative(class) {
			name = LabelNative
		}
		name = prefix + name
		if l.rule.Kind == KindReencoding && platform == l.tax.Reencoding.After {
			name += l.tax.Reencoding.Suffix
		}
		return name
	case KindManipulation:
		return prefix + class
	case KindPlatform:
		return prefix + platform
	case KindBlind:
		if platform != l.tax.NativePlatform {
			return platform
		}
		return prefix + class
	}
	return ""
}

// Label returns the index of a video's label in Classes.
func (l *Labeler) Label(platform, class, device string) (int, error) {
	name := l.Name(platform, class, device)
	i, ok := l.index[name]
	if !ok {
		return 0, fmt.Errorf("label %q for %s/%s/%s is not a declared class", name, platform, class, device)
	}
	return i, nil
}
