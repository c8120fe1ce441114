package trinover

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/paulstuart/trinover/pkg/config"
	"github.com/paulstuart/trinover/pkg/model"
)

func releaseSite(t *testing.T) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		switch r.URL.Path {
		case "/release.html":
			fmt.Fprint(w, `<html><body><ul>
<li><a href="release/release-401.html">Release 401</a></li>
<li><a href="release/release-400.html">Release 400</a></li>
</ul></body></html>`)
		case "/release/release-401.html":
			fmt.Fprint(w, `<html><body>
<h2>General</h2><ul><li>⚠️ Breaking change: X removed</li></ul>
<h2>Hive connector</h2><ul><li>Y added</li></ul>
</body></html>`)
		default:
			http.NotFound(w, r)
		}
	}))
	t.Cleanup(srv.Close)
	return srv
}

func testConfig(site string) *config.Config {
	cfg := config.Default()
	cfg.DB = ":memory:"
	cfg.Scraper.ReleaseURL = site + "/release/release-%s.html"
	cfg.Scraper.IndexURL = site + "/release.html"
	cfg.Scraper.Delay = 0
	return cfg
}

func TestAppCompare(t *testing.T) {
	site := releaseSite(t)
	app, err := Open(testConfig(site.URL), zaptest.NewLogger(t))
	require.NoError(t, err)
	defer app.Close()

	got, err := app.Service.Compare(context.Background(), "400", "401")
	require.NoError(t, err)
	assert.Equal(t, model.ComparisonResult{
		FromVersion: "400",
		ToVersion:   "401",
		Connectors: map[string]model.ConnectorDiff{
			"General": {
				BreakingChanges: []model.ChangeEntry{{Version: "401", Description: "⚠️ Breaking change: X removed"}},
				NewFeatures:     []model.ChangeEntry{},
			},
			"Hive": {
				BreakingChanges: []model.ChangeEntry{},
				NewFeatures:     []model.ChangeEntry{{Version: "401", Description: "Y added"}},
			},
		},
	}, got)
}

func TestAppRefreshVersions(t *testing.T) {
	site := releaseSite(t)
	app, err := Open(testConfig(site.URL), zaptest.NewLogger(t))
	require.NoError(t, err)
	defer app.Close()

	versions, err := app.RefreshVersions(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []string{"401", "400"}, versions)
	assert.NotNil(t, app.Server())
}
