// Package view turns a ComparisonResult into a page model and renders it.
//
// Build is a pure function: it takes the decoded payload and returns a Page
// describing everything the results region shows, in order. Render and
// RenderText only format a Page; they never look at the payload.
package view

import (
	"fmt"
	"hash/fnv"
	"regexp"
	"slices"
	"strconv"
	"strings"
	"time"
	"unicode"

	"golang.org/x/text/collate"
	"golang.org/x/text/language"

	"github.com/paulstuart/trinover/pkg/model"
)

// DefaultEcosystem names the product in headers and notices.
const DefaultEcosystem = "Trino"

// Navigation constants shared by the HTML script and the Go controller.
const (
	ResultsAnchor  = "comparison-results"
	ScrollOffset   = 20
	NavDuration    = 400 * time.Millisecond
	RevealDuration = 500 * time.Millisecond
)

const emptyConnectorNotice = "No changes detected for this connector between these versions."

// Options controls Build.
type Options struct {
	Ecosystem string
}

// Page is the rendered state of the results region.
type Page struct {
	Header      string
	FromVersion string
	ToVersion   string
	// Notice is set only when the comparison has no connectors; Entries
	// and Details are then empty.
	Notice  string
	Entries []ListEntry
	Details []Detail
	Query   string
}

// Empty reports whether the page shows the no-changes notice.
func (p Page) Empty() bool {
	return len(p.Entries) == 0
}

// ListEntry is one navigable row in the connector list.
type ListEntry struct {
	Name     string
	Anchor   string
	Total    int
	Breaking int
	Hidden   bool
	Target   ScrollTarget
}

// HasBreaking reports whether the severe badge is shown.
func (e ListEntry) HasBreaking() bool {
	return e.Breaking > 0
}

// Text is the visible text of the entry: its name followed by its badges.
func (e ListEntry) Text() string {
	parts := []string{e.Name, strconv.Itoa(e.Total)}
	if e.HasBreaking() {
		parts = append(parts, strconv.Itoa(e.Breaking))
	}
	return strings.Join(parts, " ")
}

// Detail is the block describing one connector.
type Detail struct {
	Name          string
	Anchor        string
	Title         string
	BreakingCount int
	FeatureCount  int
	Breaking      []Change
	Features      []Change
	// Notice is set when the connector has neither breaking changes nor features.
	Notice    string
	Collapsed bool
}

// Change is one entry inside a detail group.
type Change struct {
	Tag         string
	Description string
}

// ScrollTarget describes a smooth scroll to an anchored element.
type ScrollTarget struct {
	Anchor   string
	Offset   int
	Duration time.Duration
}

// Build converts a comparison into a Page. It does not modify result.
func Build(result model.ComparisonResult, opts Options) Page {
	eco := opts.Ecosystem
	if eco == "" {
		eco = DefaultEcosystem
	}

	p := Page{
		Header:      fmt.Sprintf("Changes from %s %s to %s %s", eco, result.FromVersion, eco, result.ToVersion),
		FromVersion: result.FromVersion,
		ToVersion:   result.ToVersion,
	}
	if len(result.Connectors) == 0 {
		p.Notice = fmt.Sprintf("No changes found between %s %s and %s %s.", eco, result.FromVersion, eco, result.ToVersion)
		return p
	}

	names := make([]string, 0, len(result.Connectors))
	for name := range result.Connectors {
		names = append(names, name)
	}
	SortConnectors(names)
	anchors := Anchors(names)

	p.Entries = make([]ListEntry, 0, len(names))
	p.Details = make([]Detail, 0, len(names))
	for i, name := range names {
		diff := result.Connectors[name]
		anchor := anchors[i]

		p.Entries = append(p.Entries, ListEntry{
			Name:     name,
			Anchor:   anchor,
			Total:    diff.Total(),
			Breaking: len(diff.BreakingChanges),
			Target:   ScrollTarget{Anchor: anchor, Offset: ScrollOffset, Duration: NavDuration},
		})

		d := Detail{
			Name:          name,
			Anchor:        anchor,
			Title:         name + " Connector",
			BreakingCount: len(diff.BreakingChanges),
			FeatureCount:  len(diff.NewFeatures),
			Breaking:      changes(diff.BreakingChanges),
			Features:      changes(diff.NewFeatures),
		}
		if d.BreakingCount == 0 && d.FeatureCount == 0 {
			d.Notice = emptyConnectorNotice
		}
		p.Details = append(p.Details, d)
	}
	return p
}

func changes(entries []model.ChangeEntry) []Change {
	if len(entries) == 0 {
		return nil
	}
	out := make([]Change, len(entries))
	for i, e := range entries {
		out[i] = Change{Tag: "v" + e.Version, Description: e.Description}
	}
	return out
}

// SortConnectors orders names with model.General first and the rest by
// English collation, falling back to byte order for collation ties.
func SortConnectors(names []string) {
	col := collate.New(language.English)
	slices.SortStableFunc(names, func(a, b string) int {
		switch {
		case a == b:
			return 0
		case a == model.General:
			return -1
		case b == model.General:
			return 1
		}
		if c := col.CompareString(a, b); c != 0 {
			return c
		}
		return strings.Compare(a, b)
	})
}

var whitespaceRe = regexp.MustCompile(`\s+`)

// Slug derives an anchor from a connector name: whitespace runs become a
// hyphen and anything other than letters, digits, '-' and '_' is dropped.
// Names with nothing usable left get a hash-based anchor.
func Slug(name string) string {
	s := whitespaceRe.ReplaceAllString(strings.TrimSpace(name), "-")
	s = strings.Map(func(r rune) rune {
		if unicode.IsLetter(r) || unicode.IsDigit(r) || r == '-' || r == '_' {
			return r
		}
		return -1
	}, s)
	if strings.Trim(s, "-_") == "" {
		h := fnv.New32a()
		h.Write([]byte(name))
		return fmt.Sprintf("connector-%08x", h.Sum32())
	}
	return s
}

// Anchors slugs names in order, suffixing repeats with -2, -3, ... so every
// anchor is unique.
func Anchors(names []string) []string {
	seen := make(map[string]bool, len(names))
	out := make([]string, len(names))
	for i, name := range names {
		base := Slug(name)
		a := base
		for n := 2; seen[a]; n++ {
			a = base + "-" + strconv.Itoa(n)
		}
		seen[a] = true
		out[i] = a
	}
	return out
}
