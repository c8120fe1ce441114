// Package compare builds per-connector comparisons between two Trino
// releases, scraping release notes on a cache miss.
package compare

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/paulstuart/trinover/pkg/connector"
	"github.com/paulstuart/trinover/pkg/model"
	"github.com/paulstuart/trinover/pkg/store"
	"github.com/paulstuart/trinover/pkg/version"
)

// ErrMissingVersion is returned when either side of the comparison is empty.
var ErrMissingVersion = errors.New("both from_version and to_version are required")

// InputError marks a comparison rejected because of the versions requested
// rather than a failure to fetch or store release notes.
type InputError struct {
	Err error
}

func (e *InputError) Error() string { return e.Err.Error() }

func (e *InputError) Unwrap() error { return e.Err }

// DefaultVersions seeds an empty version table.
var DefaultVersions = []string{"401", "406", "414", "424", "438", "442", "446", "451", "458", "465", "473", "474"}

// Fetcher returns the release notes for the given releases.
type Fetcher interface {
	FetchReleases(ctx context.Context, versions []string) ([]model.ReleaseNotes, error)
}

// VersionLister discovers published releases.
type VersionLister interface {
	ListVersions(ctx context.Context) ([]string, error)
}

// Config tunes the service.
type Config struct {
	CacheTTL     time.Duration `yaml:"cache_ttl"`
	SeedVersions []string      `yaml:"seed_versions"`
}

// DefaultConfig keeps comparisons for 30 days.
func DefaultConfig() Config {
	return Config{
		CacheTTL:     30 * 24 * time.Hour,
		SeedVersions: DefaultVersions,
	}
}

// Service answers comparison and connector-history queries.
type Service struct {
	store   *store.Store
	fetcher Fetcher
	cfg     Config
	log     *zap.Logger
	now     func() time.Time
}

// New returns a Service backed by st and f.
func New(st *store.Store, f Fetcher, cfg Config, log *zap.Logger) *Service {
	if cfg.CacheTTL <= 0 {
		cfg.CacheTTL = DefaultConfig().CacheTTL
	}
	if len(cfg.SeedVersions) == 0 {
		cfg.SeedVersions = DefaultVersions
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &Service{store: st, fetcher: f, cfg: cfg, log: log, now: time.Now}
}

// Compare returns the changes between two releases grouped by connector.
// The pair may be given in either order; the result echoes the request.
func (s *Service) Compare(ctx context.Context, from, to string) (model.ComparisonResult, error) {
	if from == "" || to == "" {
		return model.ComparisonResult{}, &InputError{Err: ErrMissingVersion}
	}
	lo, hi, swapped := version.Normalize(from, to)
	if swapped {
		s.log.Info("swapping versions to keep chronological order",
			zap.String("from", from), zap.String("to", to))
	}

	cs, err := s.changeSet(ctx, lo, hi)
	if err != nil {
		return model.ComparisonResult{}, err
	}

	connectors, changes := Group(cs, s.now())
	if added, err := s.store.AddConnectorChanges(ctx, changes); err != nil {
		s.log.Error("failed to store connector changes", zap.Error(err))
	} else {
		s.log.Info("stored connector changes",
			zap.String("from", lo), zap.String("to", hi), zap.Int("added", added))
	}

	return model.ComparisonResult{
		FromVersion: from,
		ToVersion:   to,
		Connectors:  connectors,
	}, nil
}

func (s *Service) changeSet(ctx context.Context, from, to string) (model.ChangeSet, error) {
	cs, err := s.store.GetComparison(ctx, from, to, s.now())
	switch {
	case err == nil:
		s.log.Info("using cached comparison", zap.String("from", from), zap.String("to", to))
		return cs, nil
	case errors.Is(err, store.ErrNotFound):
		s.log.Info("no cached comparison, fetching release notes", zap.String("from", from), zap.String("to", to))
	default:
		s.log.Warn("error reading cached comparison", zap.Error(err))
	}

	versions, err := version.Range(from, to)
	if err != nil {
		return model.ChangeSet{}, &InputError{Err: err}
	}
	releases, err := s.fetcher.FetchReleases(ctx, versions)
	if err != nil {
		return model.ChangeSet{}, fmt.Errorf("failed to fetch release notes: %w", err)
	}

	cs = Collect(releases)
	if err := s.store.PutComparison(ctx, from, to, cs, s.now(), s.cfg.CacheTTL); err != nil {
		s.log.Error("failed to cache comparison", zap.Error(err))
	}
	return cs, nil
}

// Collect flattens scraped releases into a change set.
func Collect(releases []model.ReleaseNotes) model.ChangeSet {
	cs := model.ChangeSet{
		BreakingChanges: []model.VersionItems{},
		NewFeatures:     []model.VersionItems{},
	}
	for _, r := range releases {
		if len(r.BreakingChanges) > 0 {
			cs.BreakingChanges = append(cs.BreakingChanges, model.VersionItems{Version: r.Version, Items: r.BreakingChanges})
		}
		if len(r.NewFeatures) > 0 {
			cs.NewFeatures = append(cs.NewFeatures, model.VersionItems{Version: r.Version, Items: r.NewFeatures})
		}
		for _, sec := range r.ConnectorSections {
			if len(sec.Breaking) > 0 {
				cs.BreakingChanges = append(cs.BreakingChanges, model.VersionItems{Version: r.Version, Connector: sec.Connector, Items: sec.Breaking})
			}
			if len(sec.Items) > 0 {
				cs.NewFeatures = append(cs.NewFeatures, model.VersionItems{Version: r.Version, Connector: sec.Connector, Items: sec.Items})
			}
		}
	}
	return cs
}

// Group attributes every item in cs to a connector. Items from a connector
// section keep that section's name; the rest are classified by their text.
func Group(cs model.ChangeSet, now time.Time) (map[string]model.ConnectorDiff, []model.ConnectorChange) {
	connectors := map[string]model.ConnectorDiff{}
	var changes []model.ConnectorChange

	add := func(vi model.VersionItems, kind string) {
		for _, item := range vi.Items {
			name := vi.Connector
			if name == "" {
				name = connector.Identify(item)
			}
			d, ok := connectors[name]
			if !ok {
				d = model.ConnectorDiff{BreakingChanges: []model.ChangeEntry{}, NewFeatures: []model.ChangeEntry{}}
			}
			entry := model.ChangeEntry{Version: vi.Version, Description: item}
			impact := "medium"
			if kind == model.ChangeBreaking {
				d.BreakingChanges = append(d.BreakingChanges, entry)
				impact = "high"
			} else {
				d.NewFeatures = append(d.NewFeatures, entry)
			}
			connectors[name] = d
			changes = append(changes, model.ConnectorChange{
				Connector:   name,
				Version:     vi.Version,
				ChangeType:  kind,
				Description: item,
				Impact:      impact,
				CreatedAt:   now,
			})
		}
	}
	for _, vi := range cs.BreakingChanges {
		add(vi, model.ChangeBreaking)
	}
	for _, vi := range cs.NewFeatures {
		add(vi, model.ChangeFeature)
	}
	return connectors, changes
}

// ConnectorHistory returns every stored change for one connector.
func (s *Service) ConnectorHistory(ctx context.Context, name string) (model.ConnectorHistory, error) {
	changes, err := s.store.ConnectorChanges(ctx, name)
	if err != nil {
		return model.ConnectorHistory{}, fmt.Errorf("error fetching connector changes: %w", err)
	}
	h := model.ConnectorHistory{
		Connector:       name,
		BreakingChanges: []model.HistoryEntry{},
		Features:        []model.HistoryEntry{},
	}
	for _, c := range changes {
		e := model.HistoryEntry{Version: c.Version, Description: c.Description, Impact: c.Impact}
		if !c.CreatedAt.IsZero() {
			e.Date = c.CreatedAt.Format("2006-01-02")
		}
		switch c.ChangeType {
		case model.ChangeBreaking:
			h.BreakingChanges = append(h.BreakingChanges, e)
		case model.ChangeFeature:
			h.Features = append(h.Features, e)
		}
	}
	return h, nil
}

// Versions lists known releases newest first, seeding the defaults on first use.
func (s *Service) Versions(ctx context.Context) ([]string, error) {
	versions, err := s.store.Versions(ctx)
	if err != nil {
		return nil, err
	}
	if len(versions) > 0 {
		return versions, nil
	}
	if err := s.store.AddVersions(ctx, s.cfg.SeedVersions...); err != nil {
		return nil, fmt.Errorf("failed to seed versions: %w", err)
	}
	s.log.Info("added initial versions", zap.Strings("versions", s.cfg.SeedVersions))
	return s.store.Versions(ctx)
}

// Refresh records every release l knows about and returns the full list.
func (s *Service) Refresh(ctx context.Context, l VersionLister) ([]string, error) {
	found, err := l.ListVersions(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list releases: %w", err)
	}
	if err := s.store.AddVersions(ctx, found...); err != nil {
		return nil, fmt.Errorf("failed to store releases: %w", err)
	}
	s.log.Info("refreshed versions", zap.Int("found", len(found)))
	return s.store.Versions(ctx)
}

// Connectors lists connectors that have stored changes.
func (s *Service) Connectors(ctx context.Context) ([]string, error) {
	return s.store.ConnectorNames(ctx)
}
