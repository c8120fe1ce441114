// Package trinover reports the breaking changes and new features between two
// Trino releases, grouped by connector.
package trinover

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/paulstuart/trinover/pkg/compare"
	"github.com/paulstuart/trinover/pkg/config"
	"github.com/paulstuart/trinover/pkg/model"
	"github.com/paulstuart/trinover/pkg/scraper"
	"github.com/paulstuart/trinover/pkg/server"
	"github.com/paulstuart/trinover/pkg/store"
)

// App holds the wired components for one configuration.
type App struct {
	Config  *config.Config
	Store   *store.Store
	Scraper *scraper.Scraper
	Service *compare.Service

	log *zap.Logger
}

// Open wires the store, scraper and comparison service described by cfg.
func Open(cfg *config.Config, log *zap.Logger) (*App, error) {
	if log == nil {
		log = zap.NewNop()
	}
	st, err := store.Open(cfg.DB)
	if err != nil {
		return nil, fmt.Errorf("failed to open store: %w", err)
	}
	sc := scraper.New(cfg.Scraper, log.Named("scraper"))
	return &App{
		Config:  cfg,
		Store:   st,
		Scraper: sc,
		Service: compare.New(st, sc, cfg.Compare, log.Named("compare")),
		log:     log,
	}, nil
}

// Close releases the store.
func (a *App) Close() error {
	return a.Store.Close()
}

// Server returns an HTTP server for the app.
func (a *App) Server() *server.Server {
	return server.New(a.Service, server.Options{
		Addr:      a.Config.Server.Addr,
		Ecosystem: a.Config.Server.Ecosystem,
	}, a.log.Named("http"))
}

// RefreshVersions records every release listed on the release index.
func (a *App) RefreshVersions(ctx context.Context) ([]string, error) {
	return a.Service.Refresh(ctx, a.Scraper)
}

// Compare scrapes trino.io for the releases after from up to and including
// to, using the default settings and an in-memory cache.
func Compare(ctx context.Context, from, to string) (model.ComparisonResult, error) {
	cfg := config.Default()
	cfg.DB = ":memory:"
	app, err := Open(cfg, nil)
	if err != nil {
		return model.ComparisonResult{}, err
	}
	defer app.Close()
	return app.Service.Compare(ctx, from, to)
}
