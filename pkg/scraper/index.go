package scraper

import (
	"context"
	"fmt"
	"net/url"
	"regexp"
	"sync"

	"github.com/gocolly/colly/v2"
	"go.uber.org/zap"

	"github.com/paulstuart/trinover/pkg/version"
)

var releaseLinkRe = regexp.MustCompile(`release-(\d+(?:\.\d+)*)\.html(?:#.*)?$`)

// ListVersions scrapes the release index and returns every version it links
// to, newest first.
func (s *Scraper) ListVersions(ctx context.Context) ([]string, error) {
	u, err := url.Parse(s.cfg.IndexURL)
	if err != nil || u.Hostname() == "" {
		return nil, fmt.Errorf("invalid index url %q", s.cfg.IndexURL)
	}

	var mu sync.Mutex
	seen := make(map[string]bool)

	c := colly.NewCollector(
		colly.AllowedDomains(u.Hostname()),
		colly.StdlibContext(ctx),
	)
	c.UserAgent = s.cfg.UserAgent
	c.SetRequestTimeout(s.cfg.Timeout)

	var fetchErr error
	c.OnError(func(r *colly.Response, err error) {
		s.log.Warn("release index request failed",
			zap.String("url", r.Request.URL.String()),
			zap.Int("status", r.StatusCode),
			zap.Error(err))
		fetchErr = err
	})

	c.OnHTML("a[href]", func(e *colly.HTMLElement) {
		m := releaseLinkRe.FindStringSubmatch(e.Attr("href"))
		if m == nil {
			return
		}
		mu.Lock()
		if !seen[m[1]] {
			seen[m[1]] = true
			s.log.Debug("found release", zap.String("version", m[1]))
		}
		mu.Unlock()
	})

	if err := c.Visit(s.cfg.IndexURL); err != nil {
		return nil, fmt.Errorf("failed to visit release index: %w", err)
	}
	c.Wait()

	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if fetchErr != nil {
		return nil, fmt.Errorf("failed to fetch release index: %w", fetchErr)
	}
	if len(seen) == 0 {
		return nil, fmt.Errorf("no releases found on %s", s.cfg.IndexURL)
	}

	versions := make([]string, 0, len(seen))
	for v := range seen {
		versions = append(versions, v)
	}
	version.SortDescending(versions)
	return versions, nil
}
