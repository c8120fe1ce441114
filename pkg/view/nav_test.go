package view

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/paulstuart/trinover/pkg/model"
)

func names(entries []ListEntry) []string {
	var out []string
	for _, e := range entries {
		out = append(out, e.Name)
	}
	return out
}

func TestFilter(t *testing.T) {
	p := Build(scenario(), Options{})

	filtered := Filter(p, "hiv")
	assert.Equal(t, []string{"Hive"}, names(filtered.Visible()))
	assert.True(t, filtered.Entries[0].Hidden)
	assert.False(t, filtered.Entries[1].Hidden)
	assert.Equal(t, "hiv", filtered.Query)

	assert.False(t, p.Entries[0].Hidden, "input page is left untouched")

	assert.Equal(t, []string{"Hive"}, names(Filter(p, "HIVE").Visible()))
	assert.Equal(t, []string{"General", "Hive"}, names(Filter(p, "").Visible()))
	assert.Empty(t, Filter(p, "kafka").Visible())

	// A later, broader query shows entries an earlier one hid.
	assert.Equal(t, []string{"General", "Hive"}, names(Filter(filtered, "e").Visible()))
}

func TestListEntryText(t *testing.T) {
	p := Build(scenario(), Options{})
	assert.Equal(t, "General 1 1", p.Entries[0].Text())
	assert.Equal(t, "Hive 1", p.Entries[1].Text())
}

func TestExpandCollapseAll(t *testing.T) {
	p := Build(scenario(), Options{})

	collapsed := CollapseAll(p)
	for _, d := range collapsed.Details {
		assert.True(t, d.Collapsed)
	}
	assert.False(t, p.Details[0].Collapsed, "input page is left untouched")

	// Applies uniformly regardless of the current state.
	mixed := collapsed
	mixed.Details = append([]Detail(nil), collapsed.Details...)
	mixed.Details[1].Collapsed = false
	for _, d := range CollapseAll(mixed).Details {
		assert.True(t, d.Collapsed)
	}
	for _, d := range ExpandAll(mixed).Details {
		assert.False(t, d.Collapsed)
	}
}

func TestScrollTo(t *testing.T) {
	p := Build(model.ComparisonResult{Connectors: map[string]model.ConnectorDiff{"Delta Lake": {}}}, Options{})

	target, ok := ScrollTo(p, "Delta-Lake")
	require.True(t, ok)
	assert.Equal(t, ScrollTarget{Anchor: "Delta-Lake", Offset: ScrollOffset, Duration: NavDuration}, target)
	assert.Equal(t, p.Details[0].Anchor, target.Anchor)

	_, ok = ScrollTo(p, "Hive")
	assert.False(t, ok)
}
