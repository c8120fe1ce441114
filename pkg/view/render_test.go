package view

import (
	"bytes"
	"strings"
	"testing"

	"github.com/PuerkitoBio/goquery"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/paulstuart/trinover/pkg/model"
)

func renderDoc(t *testing.T, p Page) *goquery.Document {
	t.Helper()
	var buf bytes.Buffer
	require.NoError(t, Render(&buf, p))
	doc, err := goquery.NewDocumentFromReader(&buf)
	require.NoError(t, err)
	return doc
}

func TestRenderScenario(t *testing.T) {
	doc := renderDoc(t, Build(scenario(), Options{}))

	assert.Equal(t, "Changes from Trino 400 to Trino 401", doc.Find("#comparison-header").Text())

	links := doc.Find("#connector-list .connector-link")
	require.Equal(t, 2, links.Length())

	general := links.Eq(0)
	assert.Equal(t, "#General", general.AttrOr("href", ""))
	assert.Equal(t, "1", general.Find(".total-badge").Text())
	assert.Equal(t, "1", general.Find(".breaking-badge").Text())
	assert.Equal(t, "20", general.AttrOr("data-offset", ""))
	assert.Equal(t, "400", general.AttrOr("data-duration", ""))

	hive := links.Eq(1)
	assert.Equal(t, "1", hive.Find(".total-badge").Text())
	assert.Equal(t, 0, hive.Find(".breaking-badge").Length())

	sections := doc.Find("#connector-details .connector-section")
	require.Equal(t, 2, sections.Length())

	gs := doc.Find("#General")
	assert.Equal(t, "General Connector", gs.Find(".connector-title").Text())
	assert.Equal(t, "1 Breaking", gs.Find(".breaking-count").Text())
	assert.Equal(t, "0 Features", gs.Find(".feature-count").Text())
	assert.Equal(t, "v401", gs.Find(".change-item.breaking .version-pill").Text())
	assert.Equal(t, "X removed", gs.Find(".change-item.breaking p").Text())
	assert.Equal(t, 0, gs.Find(".group-features").Length())

	hs := doc.Find("#Hive")
	assert.Equal(t, "v401", hs.Find(".change-item.feature .version-pill").Text())
	assert.Equal(t, "Y added", hs.Find(".change-item.feature p").Text())
	assert.Equal(t, 0, hs.Find(".group-breaking").Length())
}

func TestRenderEmpty(t *testing.T) {
	doc := renderDoc(t, Build(model.ComparisonResult{FromVersion: "473", ToVersion: "474"}, Options{}))

	assert.Equal(t, 1, doc.Find(".notice").Length())
	assert.Equal(t, 0, doc.Find(".connector-link").Length())
	assert.Equal(t, 0, doc.Find(".connector-section").Length())
	assert.Contains(t, doc.Find(".notice").Text(), "Trino 473")
	assert.Contains(t, doc.Find(".notice").Text(), "Trino 474")
}

func TestRenderEmptyConnector(t *testing.T) {
	doc := renderDoc(t, Build(model.ComparisonResult{Connectors: map[string]model.ConnectorDiff{"Kudu": {}}}, Options{}))

	s := doc.Find("#Kudu")
	assert.Equal(t, 1, s.Find(".notice").Length())
	assert.Equal(t, 0, s.Find(".group-title").Length())
	assert.Equal(t, "0 Breaking", s.Find(".breaking-count").Text())
	assert.Equal(t, "0 Features", s.Find(".feature-count").Text())
}

func TestRenderEscapes(t *testing.T) {
	result := model.ComparisonResult{
		FromVersion: "400",
		ToVersion:   "<b>401</b>",
		Connectors: map[string]model.ConnectorDiff{
			`<img src=x onerror=alert(1)>`: {
				NewFeatures: []model.ChangeEntry{{Version: "401", Description: `<script>alert("x")</script>`}},
			},
		},
	}
	var buf bytes.Buffer
	require.NoError(t, Render(&buf, Build(result, Options{})))
	out := buf.String()

	assert.NotContains(t, out, "<script>")
	assert.NotContains(t, out, "<img")
	assert.NotContains(t, out, "<b>")
	assert.Contains(t, out, "&lt;script&gt;")

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(out))
	require.NoError(t, err)
	assert.Equal(t, `<script>alert("x")</script>`, doc.Find(".change-item p").Text())
}

func TestRenderHiddenAndCollapsed(t *testing.T) {
	p := CollapseAll(Filter(Build(scenario(), Options{}), "hiv"))
	doc := renderDoc(t, p)

	links := doc.Find(".connector-link")
	_, hidden := links.Eq(0).Attr("hidden")
	assert.True(t, hidden)
	_, hidden = links.Eq(1).Attr("hidden")
	assert.False(t, hidden)

	assert.Equal(t, 0, doc.Find(".collapse.show").Length())
	doc = renderDoc(t, ExpandAll(p))
	assert.Equal(t, 2, doc.Find(".collapse.show").Length())
}

func TestRenderIdempotent(t *testing.T) {
	var a, b bytes.Buffer
	require.NoError(t, Render(&a, Build(scenario(), Options{})))
	require.NoError(t, Render(&b, Build(scenario(), Options{})))
	assert.Equal(t, a.String(), b.String())
}

func TestRenderDocument(t *testing.T) {
	p := Build(scenario(), Options{})
	var buf bytes.Buffer
	require.NoError(t, RenderDocument(&buf, Document{
		Versions:    []string{"401", "400"},
		Connectors:  []string{"Hive"},
		FromVersion: "400",
		ToVersion:   "401",
		Results:     &p,
	}))

	doc, err := goquery.NewDocumentFromReader(&buf)
	require.NoError(t, err)
	assert.Equal(t, "Trino Breaking Changes", doc.Find("title").Text())
	assert.Equal(t, "400", doc.Find("#fromVersion option[selected]").AttrOr("value", ""))
	assert.Equal(t, "401", doc.Find("#toVersion option[selected]").AttrOr("value", ""))
	assert.Equal(t, 1, doc.Find("#results-container #comparison-results").Length())
	assert.Equal(t, 1, doc.Find("#connector-search").Length())
	assert.Equal(t, 1, doc.Find("#expand-all").Length())
	assert.Equal(t, 1, doc.Find("#collapse-all").Length())
}

func TestRenderDocumentWithoutResults(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, RenderDocument(&buf, Document{Versions: []string{"401"}, Error: "unknown version"}))

	doc, err := goquery.NewDocumentFromReader(&buf)
	require.NoError(t, err)
	assert.Equal(t, 0, doc.Find("#comparison-results").Length())
	assert.Equal(t, "unknown version", doc.Find("#comparison-error").Text())
}

func TestRenderRevealTarget(t *testing.T) {
	doc := renderDoc(t, Build(scenario(), Options{}))
	results := doc.Find("#comparison-results")
	assert.Equal(t, "20", results.AttrOr("data-offset", ""))
	assert.Equal(t, "500", results.AttrOr("data-duration", ""))
}
