package view

import (
	"slices"
	"strings"
)

// Filter hides list entries whose visible text does not contain query,
// ignoring case. An empty query shows every entry. The input page is not
// modified.
func Filter(p Page, query string) Page {
	q := strings.ToLower(query)
	p.Query = query
	p.Entries = slices.Clone(p.Entries)
	for i := range p.Entries {
		p.Entries[i].Hidden = !strings.Contains(strings.ToLower(p.Entries[i].Text()), q)
	}
	return p
}

// Visible returns the entries Filter left shown.
func (p Page) Visible() []ListEntry {
	var out []ListEntry
	for _, e := range p.Entries {
		if !e.Hidden {
			out = append(out, e)
		}
	}
	return out
}

// ExpandAll opens every detail block.
func ExpandAll(p Page) Page {
	return setCollapsed(p, false)
}

// CollapseAll closes every detail block.
func CollapseAll(p Page) Page {
	return setCollapsed(p, true)
}

func setCollapsed(p Page, collapsed bool) Page {
	p.Details = slices.Clone(p.Details)
	for i := range p.Details {
		p.Details[i].Collapsed = collapsed
	}
	return p
}

// ScrollTo returns the navigation target bound to the list entry with the
// given anchor.
func ScrollTo(p Page, anchor string) (ScrollTarget, bool) {
	for _, e := range p.Entries {
		if e.Anchor == anchor {
			return e.Target, true
		}
	}
	return ScrollTarget{}, false
}
