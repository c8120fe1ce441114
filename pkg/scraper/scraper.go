package scraper

import (
	"context"
	"fmt"
	"io"
	"net/url"
	"regexp"
	"slices"
	"strings"
	"sync"
	"time"
	"unicode"
	"unicode/utf8"

	"github.com/PuerkitoBio/goquery"
	"github.com/gocolly/colly/v2"
	"go.uber.org/zap"

	"github.com/paulstuart/trinover/pkg/connector"
	"github.com/paulstuart/trinover/pkg/model"
	"github.com/paulstuart/trinover/pkg/version"
)

// DefaultReleaseURL is the Trino release-notes page, with %s replaced by the release number.
const DefaultReleaseURL = "https://trino.io/docs/current/release/release-%s.html"

// DefaultIndexURL lists every published release.
const DefaultIndexURL = "https://trino.io/docs/current/release.html"

const defaultUserAgent = "trinover-scraper/1.0 (+https://github.com/paulstuart/trinover)"

// Config controls how release pages are fetched.
type Config struct {
	ReleaseURL  string        `yaml:"release_url"`
	IndexURL    string        `yaml:"index_url"`
	UserAgent   string        `yaml:"user_agent"`
	Parallelism int           `yaml:"parallelism"`
	Delay       time.Duration `yaml:"delay"`
	Timeout     time.Duration `yaml:"timeout"`
}

// DefaultConfig returns the settings used against trino.io.
func DefaultConfig() Config {
	return Config{
		ReleaseURL:  DefaultReleaseURL,
		IndexURL:    DefaultIndexURL,
		UserAgent:   defaultUserAgent,
		Parallelism: 2,
		Delay:       500 * time.Millisecond,
		Timeout:     10 * time.Second,
	}
}

// Scraper downloads and parses Trino release notes.
type Scraper struct {
	cfg Config
	log *zap.Logger
}

// New returns a Scraper. Zero-valued config fields fall back to DefaultConfig.
func New(cfg Config, log *zap.Logger) *Scraper {
	def := DefaultConfig()
	if cfg.ReleaseURL == "" {
		cfg.ReleaseURL = def.ReleaseURL
	}
	if cfg.IndexURL == "" {
		cfg.IndexURL = def.IndexURL
	}
	if cfg.UserAgent == "" {
		cfg.UserAgent = def.UserAgent
	}
	if cfg.Parallelism <= 0 {
		cfg.Parallelism = def.Parallelism
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = def.Timeout
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &Scraper{cfg: cfg, log: log}
}

// FetchReleases scrapes the release notes for each version. Pages that fail
// to load are logged and skipped; the result is sorted oldest first.
func (s *Scraper) FetchReleases(ctx context.Context, versions []string) ([]model.ReleaseNotes, error) {
	host, err := s.host()
	if err != nil {
		return nil, err
	}

	var (
		mu       sync.Mutex
		releases []model.ReleaseNotes
	)

	c := colly.NewCollector(
		colly.AllowedDomains(host),
		colly.Async(true),
		colly.StdlibContext(ctx),
	)
	c.UserAgent = s.cfg.UserAgent
	c.SetRequestTimeout(s.cfg.Timeout)

	if err := c.Limit(&colly.LimitRule{
		DomainGlob:  "*",
		Parallelism: s.cfg.Parallelism,
		Delay:       s.cfg.Delay,
	}); err != nil {
		return nil, fmt.Errorf("failed to set scrape limits: %w", err)
	}

	c.OnError(func(r *colly.Response, err error) {
		s.log.Warn("failed to fetch release notes",
			zap.String("url", r.Request.URL.String()),
			zap.Int("status", r.StatusCode),
			zap.Error(err))
	})

	c.OnHTML("html", func(e *colly.HTMLElement) {
		v := e.Request.Ctx.Get("version")
		notes := parseDocument(v, e.DOM)
		s.log.Debug("parsed release notes",
			zap.String("version", v),
			zap.Int("breaking", len(notes.BreakingChanges)),
			zap.Int("features", len(notes.NewFeatures)),
			zap.Int("connector_sections", len(notes.ConnectorSections)))

		mu.Lock()
		releases = append(releases, notes)
		mu.Unlock()
	})

	for _, v := range versions {
		u := s.URL(v)
		rc := colly.NewContext()
		rc.Put("version", v)
		s.log.Info("fetching release notes", zap.String("url", u))
		if err := c.Request("GET", u, nil, rc, nil); err != nil {
			s.log.Warn("could not queue release page", zap.String("url", u), zap.Error(err))
		}
	}
	c.Wait()

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	slices.SortFunc(releases, func(a, b model.ReleaseNotes) int {
		return version.Compare(a.Version, b.Version)
	})
	return releases, nil
}

// URL returns the release page address for a version.
func (s *Scraper) URL(v string) string {
	return fmt.Sprintf(s.cfg.ReleaseURL, v)
}

func (s *Scraper) host() (string, error) {
	u, err := url.Parse(s.URL("0"))
	if err != nil {
		return "", fmt.Errorf("invalid release url %q: %w", s.cfg.ReleaseURL, err)
	}
	if u.Hostname() == "" {
		return "", fmt.Errorf("release url %q has no host", s.cfg.ReleaseURL)
	}
	return u.Hostname(), nil
}

// ParseRelease extracts breaking changes, new features and connector sections
// from a release-notes page.
func ParseRelease(v string, r io.Reader) (model.ReleaseNotes, error) {
	doc, err := goquery.NewDocumentFromReader(r)
	if err != nil {
		return model.ReleaseNotes{}, fmt.Errorf("failed to parse release %s: %w", v, err)
	}
	return parseDocument(v, doc.Selection), nil
}

var (
	breakingHeadingRe = regexp.MustCompile(`(?i)breaking changes`)
	featureHeadingRe  = regexp.MustCompile(`(?i)new features|feature changes`)
	connectorRe       = regexp.MustCompile(`(?i)connector`)
	breakingMarkerRe  = regexp.MustCompile(`(?i)^(?:⚠️\s*)?breaking change:`)
)

type sectionKind int

const (
	sectionOther sectionKind = iota
	sectionBreaking
	sectionFeatures
	sectionConnector
)

type section struct {
	kind      sectionKind
	connector *model.ConnectorSection
}

func parseDocument(v string, root *goquery.Selection) model.ReleaseNotes {
	notes := model.ReleaseNotes{Version: v}
	var cur *section

	root.Find("h2, h3, ul, p").Each(func(_ int, s *goquery.Selection) {
		switch goquery.NodeName(s) {
		case "h2", "h3":
			heading := headingText(s)
			if !startsWithLetter(heading) {
				return
			}
			if cur != nil && cur.connector != nil && len(cur.connector.Items)+len(cur.connector.Breaking) > 0 {
				notes.ConnectorSections = append(notes.ConnectorSections, *cur.connector)
			}
			cur = classifyHeading(heading)
		case "ul":
			if cur == nil || s.ParentsFiltered("li").Length() > 0 {
				return
			}
			s.ChildrenFiltered("li").Each(func(_ int, li *goquery.Selection) {
				cur.add(&notes, cleanText(li.Text()))
			})
		case "p":
			if cur == nil || cur.kind != sectionBreaking || s.ParentsFiltered("li").Length() > 0 {
				return
			}
			text := cleanText(s.Text())
			lower := strings.ToLower(text)
			if text == "" || strings.HasPrefix(lower, "note:") || strings.HasPrefix(lower, "warning:") {
				return
			}
			notes.BreakingChanges = append(notes.BreakingChanges, text)
		}
	})
	if cur != nil && cur.connector != nil && len(cur.connector.Items)+len(cur.connector.Breaking) > 0 {
		notes.ConnectorSections = append(notes.ConnectorSections, *cur.connector)
	}
	return notes
}

func classifyHeading(heading string) *section {
	switch {
	case breakingHeadingRe.MatchString(heading):
		return &section{kind: sectionBreaking}
	case featureHeadingRe.MatchString(heading):
		return &section{kind: sectionFeatures}
	case connectorRe.MatchString(heading):
		return &section{
			kind:      sectionConnector,
			connector: &model.ConnectorSection{Connector: connector.FromHeading(heading)},
		}
	default:
		return &section{kind: sectionOther}
	}
}

func (sec *section) add(notes *model.ReleaseNotes, item string) {
	if item == "" {
		return
	}
	breaking := breakingMarkerRe.MatchString(item)
	switch sec.kind {
	case sectionBreaking:
		notes.BreakingChanges = append(notes.BreakingChanges, item)
	case sectionFeatures:
		if breaking {
			notes.BreakingChanges = append(notes.BreakingChanges, item)
			return
		}
		notes.NewFeatures = append(notes.NewFeatures, item)
	case sectionConnector:
		if breaking {
			sec.connector.Breaking = append(sec.connector.Breaking, item)
			return
		}
		sec.connector.Items = append(sec.connector.Items, item)
	default:
		if breaking {
			notes.BreakingChanges = append(notes.BreakingChanges, item)
		}
	}
}

// headingText drops the permalink glyph Sphinx appends to headings.
func headingText(s *goquery.Selection) string {
	h := s.Clone()
	h.Find("a.headerlink").Remove()
	return strings.TrimRight(cleanText(h.Text()), " #¶")
}

// startsWithLetter reports whether a heading opens a new section. Headings
// such as "2024-01-05" or "#" continue the section above them.
func startsWithLetter(s string) bool {
	r, _ := utf8.DecodeRuneInString(s)
	return r != utf8.RuneError && unicode.IsLetter(r)
}

func cleanText(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
