// Package selection tracks the set of checked rows in an admin list
// view. The set is transient: it travels with each action request and is
// reconciled against the currently displayed rows, so ids that fell out
// of the filtered view are dropped rather than silently kept.
package selection

import "sort"

// Set of selected submission ids.
type Set map[int]struct{}

func New(ids ...int) Set {
	s := make(Set, len(ids))
	for _, id := range ids {
		s[id] = struct{}{}
	}
	return s
}

// SelectAll replaces the set with all ids on the current page, or empties
// it when unchecked.
func (s Set) SelectAll(checked bool, pageIDs []int) Set {
	out := make(Set)
	if !checked {
		return out
	}
	for _, id := range pageIDs {
		out[id] = struct{}{}
	}
	return out
}

// SelectOne adds or removes a single id. Adding twice is a no-op.
func (s Set) SelectOne(id int, checked bool) Set {
	out := make(Set, len(s)+1)
	for k := range s {
		out[k] = struct{}{}
	}
	if checked {
		out[id] = struct{}{}
	} else {
		delete(out, id)
	}
	return out
}

// Reconcile drops every id not present in pageIDs. Every id surviving a
// reconcile is guaranteed to exist in the displayed data.
func (s Set) Reconcile(pageIDs []int) Set {
	page := make(map[int]struct{}, len(pageIDs))
	for _, id := range pageIDs {
		page[id] = struct{}{}
	}
	out := make(Set)
	for id := range s {
		if _, ok := page[id]; ok {
			out[id] = struct{}{}
		}
	}
	return out
}

func (s Set) Has(id int) bool {
	_, ok := s[id]
	return ok
}

func (s Set) Len() int { return len(s) }

// IDs returns the members in ascending order, for stable requests and
// stable test assertions.
func (s Set) IDs() []int {
	out := make([]int, 0, len(s))
	for id := range s {
		out = append(out, id)
	}
	sort.Ints(out)
	return out
}

// HeaderState is the visual state of the select-all checkbox.
type HeaderState int

const (
	HeaderNone HeaderState = iota
	HeaderIndeterminate
	HeaderChecked
)

// HeaderFor computes the select-all checkbox state: checked iff the set
// covers the whole non-empty page, indeterminate iff partially covered.
func HeaderFor(s Set, pageIDs []int) HeaderState {
	if len(pageIDs) == 0 || len(s) == 0 {
		return HeaderNone
	}
	on := 0
	for _, id := range pageIDs {
		if s.Has(id) {
			on++
		}
	}
	switch {
	case on == 0:
		return HeaderNone
	case on == len(pageIDs):
		return HeaderChecked
	default:
		return HeaderIndeterminate
	}
}
