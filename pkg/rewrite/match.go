package rewrite

import (
	"sort"
	"strings"
	"unicode/utf8"

	"github.com/agnivade/levenshtein"
	"golang.org/x/text/cases"
)

// Similarity returns the edit-distance similarity of a and b in [0, 1],
// compared case-insensitively: 1 - distance / longer length in runes.
func Similarity(a, b string) float64 {
	fold := cases.Fold()
	a, b = fold.String(a), fold.String(b)
	longest := max(utf8.RuneCountInString(a), utf8.RuneCountInString(b))
	if longest == 0 {
		return 1
	}
	return 1 - float64(levenshtein.ComputeDistance(a, b))/float64(longest)
}

// lookup resolves word against the keys of m. An exact key always wins. In
// non-exact mode the candidates are keys that contain or are contained in
// word, or whose similarity to word reaches the rewriter's threshold; the
// most similar candidate wins and ties go to the smaller key.
func (r *Rewriter) lookup(word string, m map[string]string, exact bool) (string, bool) {
	if v, ok := m[word]; ok && v != "" {
		return v, true
	}
	if exact || word == "" || len(m) == 0 {
		return "", false
	}

	type candidate struct {
		key        string
		similarity float64
	}
	fold := cases.Fold()
	folded := fold.String(word)

	var cands []candidate
	for key, v := range m {
		if v == "" || key == "" {
			continue
		}
		sim := Similarity(word, key)
		k := fold.String(key)
		if strings.Contains(folded, k) || strings.Contains(k, folded) || sim >= r.minSimilarity {
			cands = append(cands, candidate{key: key, similarity: sim})
		}
	}
	if len(cands) == 0 {
		return "", false
	}
	sort.Slice(cands, func(i, j int) bool {
		if cands[i].similarity != cands[j].similarity {
			return cands[i].similarity > cands[j].similarity
		}
		return cands[i].key < cands[j].key
	})
	return m[cands[0].key], true
}
