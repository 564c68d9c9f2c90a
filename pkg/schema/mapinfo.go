package schema

import (
	"slices"
)

// MapInfo holds the matches of one query, per dataset.
// The zero value is ready to use.
type MapInfo struct {
	matches map[int64][]Match
}

// NewMapInfo returns an empty MapInfo.
func NewMapInfo() *MapInfo {
	return &MapInfo{matches: make(map[int64][]Match)}
}

// Add merges m into the match list of dataSetID. A duplicate with a lower
// similarity is removed; when an existing duplicate scores at least as
// high, m is dropped. It returns whether m was kept.
func (mi *MapInfo) Add(dataSetID int64, m Match) bool {
	if mi.matches == nil {
		mi.matches = make(map[int64][]Match)
	}
	list := mi.matches[dataSetID]

	keep := true
	out := make([]Match, 0, len(list)+1)
	for _, existing := range list {
		switch Decide(existing, m) {
		case Replace:
			continue
		case KeepExisting:
			keep = false
		}
		out = append(out, existing)
	}
	if keep {
		out = append(out, m)
	}
	mi.matches[dataSetID] = out
	return keep
}

// Matches returns the match list of dataSetID in insertion order.
func (mi *MapInfo) Matches(dataSetID int64) []Match {
	return mi.matches[dataSetID]
}

// DataSetIDs returns the datasets with a match list, sorted.
func (mi *MapInfo) DataSetIDs() []int64 {
	ids := make([]int64, 0, len(mi.matches))
	for id := range mi.matches {
		ids = append(ids, id)
	}
	slices.Sort(ids)
	return ids
}

// Len returns the number of matches across datasets.
func (mi *MapInfo) Len() int {
	n := 0
	for _, list := range mi.matches {
		n += len(list)
	}
	return n
}

// Merge adds every match of other, dataset by dataset in ID order.
func (mi *MapInfo) Merge(other *MapInfo) {
	if other == nil {
		return
	}
	for _, id := range other.DataSetIDs() {
		for _, m := range other.matches[id] {
			mi.Add(id, m)
		}
	}
}

// Filter removes matches that do not serve the query data type q. TAG keeps
// tag elements, METRIC drops metrics and DIMENSION drops dimensions and
// values. Entities, datasets and IDs are always kept.
func (mi *MapInfo) Filter(q QueryDataType) {
	remove := removalRule(q)
	if remove == nil {
		return
	}
	for id, list := range mi.matches {
		mi.matches[id] = slices.DeleteFunc(list, func(m Match) bool {
			if m.Element.Type.Protected() {
				return false
			}
			return remove(m.Element)
		})
	}
}

func removalRule(q QueryDataType) func(Element) bool {
	switch q {
	case QueryTag:
		return func(e Element) bool { return !e.IsTag }
	case QueryMetric:
		return func(e Element) bool { return e.Type == TypeMetric }
	case QueryDimension:
		return func(e Element) bool { return e.Type == TypeDimension || e.Type == TypeValue }
	}
	return nil
}

// Snapshot returns a copy of the match lists keyed by dataset.
func (mi *MapInfo) Snapshot() map[int64][]Match {
	out := make(map[int64][]Match, len(mi.matches))
	for id, list := range mi.matches {
		out[id] = slices.Clone(list)
	}
	return out
}
