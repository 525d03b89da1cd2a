package genre

import (
	"sort"
	"sync"
)

// topGroupCount is how many parent groups are shown before the rest are
// folded into "Other".
const topGroupCount = 9

// OtherGroup is the synthetic parent group holding everything outside
// the top groups.
const OtherGroup = "Other"

// SubGroup is a distinct sub genre under a parent with its song count.
type SubGroup struct {
	Name  string
	Count int
}

// Group is a parent genre with its total song count and nested sub
// genres, both sorted descending by count.
type Group struct {
	Name      string
	Count     int
	SubGroups []SubGroup
}

// Aggregate groups catalog labels by parent genre, keeps the topGroupCount
// largest groups and folds the remainder into OtherGroup. The folded
// group's count is the sum of the folded groups and its subgroups are the
// union of their sub genres.
func Aggregate(labels []Label) []Group {
	parents := make(map[string]map[string]int)
	for _, l := range labels {
		subs, ok := parents[l.Parent]
		if !ok {
			subs = make(map[string]int)
			parents[l.Parent] = subs
		}
		subs[l.Sub]++
	}

	groups := make([]Group, 0, len(parents))
	for name, subs := range parents {
		g := Group{Name: name, SubGroups: make([]SubGroup, 0, len(subs))}
		for sub, n := range subs {
			g.Count += n
			g.SubGroups = append(g.SubGroups, SubGroup{Name: sub, Count: n})
		}
		sortSubGroups(g.SubGroups)
		groups = append(groups, g)
	}
	sortGroups(groups)

	if len(groups) <= topGroupCount {
		return groups
	}

	top := groups[:topGroupCount:topGroupCount]
	other := Group{Name: OtherGroup}
	for _, g := range groups[topGroupCount:] {
		other.Count += g.Count
		if len(g.SubGroups) > 0 {
			other.SubGroups = append(other.SubGroups, g.SubGroups...)
		} else {
			other.SubGroups = append(other.SubGroups, SubGroup{Name: g.Name, Count: g.Count})
		}
	}
	sortSubGroups(other.SubGroups)
	return append(top, other)
}

func sortGroups(groups []Group) {
	sort.SliceStable(groups, func(i, j int) bool {
		if groups[i].Count != groups[j].Count {
			return groups[i].Count > groups[j].Count
		}
		return groups[i].Name < groups[j].Name
	})
}

func sortSubGroups(subs []SubGroup) {
	sort.SliceStable(subs, func(i, j int) bool {
		if subs[i].Count != subs[j].Count {
			return subs[i].Count > subs[j].Count
		}
		return subs[i].Name < subs[j].Name
	})
}

// Aggregator caches the last aggregation keyed by catalog size.
//
// Catalog size is a cheap invalidation signal: two different catalogs of
// identical size will not invalidate the cache. The catalog is replaced
// wholesale on reload so this is acceptable in practice.
type Aggregator struct {
	mu        sync.Mutex
	cachedLen int
	cached    []Group
}

// Groups returns the aggregation for the given labels, recomputing only
// when the catalog size changed.
func (a *Aggregator) Groups(labels []Label) []Group {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.cached != nil && a.cachedLen == len(labels) {
		return a.cached
	}
	a.cached = Aggregate(labels)
	a.cachedLen = len(labels)
	return a.cached
}

// Invalidate drops the cached aggregation.
func (a *Aggregator) Invalidate() {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.cached = nil
	a.cachedLen = 0
}

// TopNames returns the displayed parent group names, excluding the
// synthetic OtherGroup. Used to resolve "Other" membership dynamically.
func TopNames(groups []Group) []string {
	names := make([]string, 0, len(groups))
	for _, g := range groups {
		if g.Name == OtherGroup {
			continue
		}
		names = append(names, g.Name)
	}
	return names
}
