package labels

import (
	"slices"
	"strings"
)

// Group is the set of source pages that share a key, in ascending page order.
type Group struct {
	Key        string `json:"key"`
	LabelCount int    `json:"label_count"`
	Pages      []int  `json:"pages"`
}

// groupSet is an insertion-ordered key -> pages map built once per call.
type groupSet struct {
	order []string
	pages map[string][]int
}

func newGroupSet() *groupSet {
	return &groupSet{pages: make(map[string][]int)}
}

// add appends page to the group whose trimmed key is byte-identical to key,
// creating the group on first sight.
func (g *groupSet) add(key string, page int) {
	key = strings.TrimSpace(key)
	if _, ok := g.pages[key]; !ok {
		g.order = append(g.order, key)
	}
	g.pages[key] = append(g.pages[key], page)
}

func (g *groupSet) groups() []Group {
	groups := make([]Group, 0, len(g.order))
	for _, key := range g.order {
		pages := slices.Clone(g.pages[key])
		slices.Sort(pages)
		groups = append(groups, Group{
			Key:        key,
			LabelCount: len(pages),
			Pages:      pages,
		})
	}
	return groups
}

// Consolidate groups page keys, where keys[i] is the key of page i.
// Groups appear in order of first occurrence.
func Consolidate(keys []string) []Group {
	set := newGroupSet()
	for page, key := range keys {
		set.add(key, page)
	}
	return set.groups()
}

// Synthesize assigns names[i % len(names)] to page i and consolidates the
// result. It groups documents whose text could not be read.
func Synthesize(totalPages int, names []string) []Group {
	if len(names) == 0 {
		return nil
	}
	keys := make([]string, totalPages)
	for i := range keys {
		keys[i] = names[i%len(names)]
	}
	return Consolidate(keys)
}

// PageMapping indexes groups by key.
func PageMapping(groups []Group) map[string][]int {
	m := make(map[string][]int, len(groups))
	for _, g := range groups {
		m[g.Key] = slices.Clone(g.Pages)
	}
	return m
}

// Keys returns the group keys in group order.
func Keys(groups []Group) []string {
	keys := make([]string, len(groups))
	for i, g := range groups {
		keys[i] = g.Key
	}
	return keys
}

// Find returns the group with the given key.
func Find(groups []Group, key string) (Group, bool) {
	i := slices.IndexFunc(groups, func(g Group) bool { return g.Key == key })
	if i < 0 {
		return Group{}, false
	}
	return groups[i], true
}
