// Package relevance decides whether document text looks like a delinquency report.
package relevance

import (
	"github.com/cloudflare/ahocorasick"

	"github.com/joseph-ayodele/debt-tracker/constants"
)

// Filter passes text containing at least one primary AND one secondary term.
type Filter struct {
	primaryTerms   []string
	secondaryTerms []string
	primary        *ahocorasick.Matcher
	secondary      *ahocorasick.Matcher
}

// Verdict lists the folded terms found in each set.
type Verdict struct {
	Relevant  bool     `json:"relevant"`
	Primary   []string `json:"primary"`
	Secondary []string `json:"secondary"`
}

func NewFilter(primary, secondary []string) *Filter {
	p := foldAll(primary)
	s := foldAll(secondary)
	return &Filter{
		primaryTerms:   p,
		secondaryTerms: s,
		primary:        ahocorasick.NewStringMatcher(p),
		secondary:      ahocorasick.NewStringMatcher(s),
	}
}

// Default uses the built-in Portuguese vocabularies.
func Default() *Filter {
	return NewFilter(constants.PrimaryDelinquencyTerms, constants.SecondaryFinancialTerms)
}

// Check matches case- and accent-insensitively as substrings.
func (f *Filter) Check(text string) Verdict {
	if text == "" {
		return Verdict{}
	}
	folded := []byte(Fold(text))
	v := Verdict{
		Primary:   pick(f.primaryTerms, f.primary.MatchThreadSafe(folded)),
		Secondary: pick(f.secondaryTerms, f.secondary.MatchThreadSafe(folded)),
	}
	v.Relevant = len(v.Primary) > 0 && len(v.Secondary) > 0
	return v
}

func foldAll(terms []string) []string {
	out := make([]string, 0, len(terms))
	seen := make(map[string]bool, len(terms))
	for _, t := range terms {
		f := Fold(t)
		if f == "" || seen[f] {
			continue
		}
		seen[f] = true
		out = append(out, f)
	}
	return out
}

func pick(terms []string, hits []int) []string {
	if len(hits) == 0 {
		return nil
	}
	out := make([]string, 0, len(hits))
	for _, i := range hits {
		out = append(out, terms[i])
	}
	return out
}
