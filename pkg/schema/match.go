package schema

import (
	"golang.org/x/text/cases"
)

// Match is one element proposed for a word of the query.
type Match struct {
	Element    Element `json:"element" yaml:"element"`
	Word       string  `json:"word" yaml:"word"`
	DetectWord string  `json:"detect_word,omitempty" yaml:"detect_word,omitempty"`
	Similarity float64 `json:"similarity" yaml:"similarity"`
	Frequency  int64   `json:"frequency,omitempty" yaml:"frequency,omitempty"`
}

// Decision is the outcome of comparing a candidate with an existing match.
type Decision int

const (
	// Coexist keeps both matches.
	Coexist Decision = iota
	// KeepExisting discards the candidate.
	KeepExisting
	// Replace discards the existing match in favour of the candidate.
	Replace
)

func (d Decision) String() string {
	switch d {
	case KeepExisting:
		return "keep_existing"
	case Replace:
		return "replace"
	default:
		return "coexist"
	}
}

// Decide compares candidate with an existing match of the same dataset.
// Matches of different elements coexist, as do TERM matches and VALUE
// matches found through different words. Otherwise the higher similarity
// wins and a tie keeps the existing match.
func Decide(existing, candidate Match) Decision {
	if !Duplicates(existing, candidate) {
		return Coexist
	}
	if candidate.Similarity > existing.Similarity {
		return Replace
	}
	return KeepExisting
}

// Duplicates reports whether candidate restates existing.
func Duplicates(existing, candidate Match) bool {
	if existing.Element.Key() != candidate.Element.Key() {
		return false
	}
	if existing.Element.Type == TypeTerm || candidate.Element.Type == TypeTerm {
		return false
	}
	if candidate.Element.Type == TypeValue {
		fold := cases.Fold()
		return fold.String(existing.Word) == fold.String(candidate.Word)
	}
	return true
}
