package view

import (
	"fmt"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/paulstuart/trinover/pkg/model"
)

func scenario() model.ComparisonResult {
	return model.ComparisonResult{
		FromVersion: "400",
		ToVersion:   "401",
		Connectors: map[string]model.ConnectorDiff{
			"General": {
				BreakingChanges: []model.ChangeEntry{{Version: "401", Description: "X removed"}},
				NewFeatures:     []model.ChangeEntry{},
			},
			"Hive": {
				BreakingChanges: []model.ChangeEntry{},
				NewFeatures:     []model.ChangeEntry{{Version: "401", Description: "Y added"}},
			},
		},
	}
}

func TestBuildScenario(t *testing.T) {
	got := Build(scenario(), Options{})

	want := Page{
		Header:      "Changes from Trino 400 to Trino 401",
		FromVersion: "400",
		ToVersion:   "401",
		Entries: []ListEntry{
			{Name: "General", Anchor: "General", Total: 1, Breaking: 1,
				Target: ScrollTarget{Anchor: "General", Offset: 20, Duration: NavDuration}},
			{Name: "Hive", Anchor: "Hive", Total: 1, Breaking: 0,
				Target: ScrollTarget{Anchor: "Hive", Offset: 20, Duration: NavDuration}},
		},
		Details: []Detail{
			{
				Name: "General", Anchor: "General", Title: "General Connector",
				BreakingCount: 1, FeatureCount: 0,
				Breaking: []Change{{Tag: "v401", Description: "X removed"}},
			},
			{
				Name: "Hive", Anchor: "Hive", Title: "Hive Connector",
				BreakingCount: 0, FeatureCount: 1,
				Features: []Change{{Tag: "v401", Description: "Y added"}},
			},
		},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("Build mismatch (-want +got):\n%s", diff)
	}
	assert.True(t, got.Entries[0].HasBreaking())
	assert.False(t, got.Entries[1].HasBreaking())
}

func TestBuildEmpty(t *testing.T) {
	for _, connectors := range []map[string]model.ConnectorDiff{nil, {}} {
		p := Build(model.ComparisonResult{FromVersion: "473", ToVersion: "474", Connectors: connectors}, Options{})
		assert.Equal(t, "No changes found between Trino 473 and Trino 474.", p.Notice)
		assert.Empty(t, p.Entries)
		assert.Empty(t, p.Details)
		assert.True(t, p.Empty())
	}
}

func TestBuildEcosystem(t *testing.T) {
	p := Build(model.ComparisonResult{FromVersion: "1", ToVersion: "2"}, Options{Ecosystem: "Presto"})
	assert.Equal(t, "Changes from Presto 1 to Presto 2", p.Header)
	assert.Equal(t, "No changes found between Presto 1 and Presto 2.", p.Notice)
}

func TestBuildGeneralFirst(t *testing.T) {
	for _, others := range [][]string{
		{"Accumulo", "BigQuery"},
		{"Zeta", "Alpha", "Mid"},
		{"generic", "Gen", "GENERAL"},
	} {
		connectors := map[string]model.ConnectorDiff{model.General: {}}
		for _, name := range others {
			connectors[name] = model.ConnectorDiff{}
		}
		p := Build(model.ComparisonResult{Connectors: connectors}, Options{})
		require.NotEmpty(t, p.Entries)
		assert.Equal(t, model.General, p.Entries[0].Name)
		assert.Equal(t, model.General, p.Details[0].Name)
	}
}

func TestSortConnectorsLocaleOrder(t *testing.T) {
	names := []string{"delta Lake", "Élan", "BigQuery", "bigquery", "Zebra", "apache", "General", "Echo"}
	SortConnectors(names)
	assert.Equal(t, []string{"General", "apache", "bigquery", "BigQuery", "delta Lake", "Echo", "Élan", "Zebra"}, names)
}

func TestBuildBadgeCounts(t *testing.T) {
	connectors := map[string]model.ConnectorDiff{}
	for i := 0; i < 5; i++ {
		d := model.ConnectorDiff{}
		for j := 0; j < i; j++ {
			d.BreakingChanges = append(d.BreakingChanges, model.ChangeEntry{Version: "401", Description: "b"})
		}
		for j := 0; j < 2*i+1; j++ {
			d.NewFeatures = append(d.NewFeatures, model.ChangeEntry{Version: "402", Description: "f"})
		}
		connectors[fmt.Sprintf("C%d", i)] = d
	}
	p := Build(model.ComparisonResult{Connectors: connectors}, Options{})
	for i, e := range p.Entries {
		d := connectors[e.Name]
		assert.Equal(t, len(d.BreakingChanges)+len(d.NewFeatures), e.Total)
		assert.Equal(t, len(d.BreakingChanges), e.Breaking)
		assert.Equal(t, len(d.BreakingChanges), p.Details[i].BreakingCount)
		assert.Equal(t, len(d.NewFeatures), p.Details[i].FeatureCount)
	}
}

func TestBuildEmptyConnector(t *testing.T) {
	p := Build(model.ComparisonResult{Connectors: map[string]model.ConnectorDiff{"Kudu": {}}}, Options{})
	require.Len(t, p.Details, 1)
	d := p.Details[0]
	assert.Equal(t, "No changes detected for this connector between these versions.", d.Notice)
	assert.Empty(t, d.Breaking)
	assert.Empty(t, d.Features)
	assert.Equal(t, 0, p.Entries[0].Total)
}

func TestBuildKeepsPayloadOrder(t *testing.T) {
	result := model.ComparisonResult{Connectors: map[string]model.ConnectorDiff{
		"Hive": {BreakingChanges: []model.ChangeEntry{
			{Version: "410", Description: "third"},
			{Version: "402", Description: "first"},
			{Version: "405", Description: "second"},
		}},
	}}
	p := Build(result, Options{})
	assert.Equal(t, []Change{
		{Tag: "v410", Description: "third"},
		{Tag: "v402", Description: "first"},
		{Tag: "v405", Description: "second"},
	}, p.Details[0].Breaking)
}

func TestBuildIsDeterministic(t *testing.T) {
	a := Build(scenario(), Options{})
	b := Build(scenario(), Options{})
	assert.Equal(t, a, b)
}

func TestSlug(t *testing.T) {
	tests := []struct {
		name string
		want string
	}{
		{"Hive", "Hive"},
		{"Delta Lake", "Delta-Lake"},
		{"SQL   Server", "SQL-Server"},
		{" Black\tHole ", "Black-Hole"},
		{"Foo.Bar/Baz", "FooBarBaz"},
		{"Café", "Café"},
		{`"><script>`, "script"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Slug(tt.name))
		})
	}

	hashed := Slug("!!!")
	assert.Regexp(t, `^connector-[0-9a-f]{8}$`, hashed)
	assert.NotEqual(t, hashed, Slug("???"))
}

func TestAnchorsAreUnique(t *testing.T) {
	got := Anchors([]string{"Delta Lake", "Delta  Lake", "Delta-Lake", "Hive"})
	assert.Equal(t, []string{"Delta-Lake", "Delta-Lake-2", "Delta-Lake-3", "Hive"}, got)
}
