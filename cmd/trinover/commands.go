package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/paulstuart/trinover"
	"github.com/paulstuart/trinover/pkg/client"
	"github.com/paulstuart/trinover/pkg/model"
	"github.com/paulstuart/trinover/pkg/view"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the comparison web UI and JSON API",
	Args:  cobra.NoArgs,
	RunE:  runServe,
}

var compareCmd = &cobra.Command{
	Use:   "compare FROM TO",
	Short: "Compare two Trino releases",
	Long: `Fetches the changes between FROM and TO and prints them grouped by
connector. By default the running server at client.base_url is asked; use
--local to scrape and cache directly.

Example:
  trinover compare 401 474 --filter hive`,
	Args: cobra.ExactArgs(2),
	RunE: runCompare,
}

var renderCmd = &cobra.Command{
	Use:   "render FILE",
	Short: "Render a saved comparison result (use - for stdin)",
	Args:  cobra.ExactArgs(1),
	RunE:  runRender,
}

var versionsCmd = &cobra.Command{
	Use:   "versions",
	Short: "List known Trino releases, newest first",
	Args:  cobra.NoArgs,
	RunE:  runVersions,
}

var (
	serveAddr string

	outJSON   bool
	outHTML   bool
	outPage   bool
	filter    string
	collapsed bool
	local     bool
	baseURL   string

	refresh bool
)

func init() {
	serveCmd.Flags().StringVar(&serveAddr, "addr", "", "Listen address (overrides config)")

	compareCmd.Flags().BoolVar(&outJSON, "json", false, "Print the raw comparison result as JSON")
	compareCmd.Flags().BoolVar(&outHTML, "html", false, "Print the results region as HTML")
	compareCmd.Flags().StringVar(&filter, "filter", "", "Only list connectors matching this text")
	compareCmd.Flags().BoolVar(&collapsed, "collapsed", false, "Show only connector headers")
	compareCmd.Flags().BoolVar(&local, "local", false, "Scrape and cache locally instead of calling a server")
	compareCmd.Flags().StringVar(&baseURL, "url", "", "Server base URL (overrides config)")
	compareCmd.MarkFlagsMutuallyExclusive("json", "html")

	renderCmd.Flags().BoolVar(&outHTML, "html", false, "Render HTML instead of terminal text")
	renderCmd.Flags().BoolVar(&outPage, "page", false, "Render a complete HTML page")
	renderCmd.Flags().StringVar(&filter, "filter", "", "Only list connectors matching this text")
	renderCmd.Flags().BoolVar(&collapsed, "collapsed", false, "Show only connector headers")

	versionsCmd.Flags().BoolVar(&refresh, "refresh", false, "Discover releases from the release index first")
}

func signalContext() (context.Context, context.CancelFunc) {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	ctx, cancel := context.WithTimeout(ctx, timeout)
	return ctx, func() {
		cancel()
		stop()
	}
}

func runServe(cmd *cobra.Command, args []string) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if serveAddr != "" {
		cfg.Server.Addr = serveAddr
	}
	app, err := trinover.Open(cfg, logger)
	if err != nil {
		return err
	}
	defer app.Close()

	if _, err := app.Service.Versions(ctx); err != nil {
		logger.Warn("could not seed versions", zap.Error(err))
	}
	return app.Server().Run(ctx)
}

func runCompare(cmd *cobra.Command, args []string) error {
	ctx, cancel := signalContext()
	defer cancel()

	var comparer client.Comparer
	if local {
		app, err := trinover.Open(cfg, logger)
		if err != nil {
			return err
		}
		defer app.Close()
		comparer = app.Service
	} else {
		u := cfg.Client.BaseURL
		if baseURL != "" {
			u = baseURL
		}
		comparer = client.NewRequester(u,
			client.WithIndicator(newIndicator(cmd.ErrOrStderr())),
			client.WithLogger(logger.Named("client")))
	}

	if outJSON {
		result, err := comparer.Compare(ctx, args[0], args[1])
		if err != nil {
			return fmt.Errorf("%s%w", client.ErrorPrefix, err)
		}
		enc := json.NewEncoder(cmd.OutOrStdout())
		enc.SetIndent("", "  ")
		return enc.Encode(result)
	}

	d := &terminalDisplay{out: cmd.OutOrStdout(), html: outHTML, filter: filter, collapsed: collapsed}
	ctrl := client.NewController(comparer, d, view.Options{Ecosystem: cfg.Server.Ecosystem}, logger.Named("controller"))
	if _, err := ctrl.Submit(ctx, args[0], args[1]); err != nil {
		if d.alert != "" {
			return errors.New(d.alert)
		}
		return err
	}
	return d.err
}

func runRender(cmd *cobra.Command, args []string) error {
	var r io.Reader = cmd.InOrStdin()
	if args[0] != "-" {
		f, err := os.Open(args[0])
		if err != nil {
			return fmt.Errorf("failed to open result: %w", err)
		}
		defer f.Close()
		r = f
	}

	var result model.ComparisonResult
	if err := json.NewDecoder(r).Decode(&result); err != nil {
		return fmt.Errorf("failed to decode result %s: %w", args[0], err)
	}

	p := view.Filter(view.Build(result, view.Options{Ecosystem: cfg.Server.Ecosystem}), filter)
	if collapsed {
		p = view.CollapseAll(p)
	}
	out := cmd.OutOrStdout()
	switch {
	case outPage:
		return view.RenderDocument(out, view.Document{
			Ecosystem:   cfg.Server.Ecosystem,
			Versions:    []string{result.FromVersion, result.ToVersion},
			FromVersion: result.FromVersion,
			ToVersion:   result.ToVersion,
			Results:     &p,
		})
	case outHTML:
		return view.Render(out, p)
	default:
		return view.RenderText(out, p)
	}
}

func runVersions(cmd *cobra.Command, args []string) error {
	ctx, cancel := signalContext()
	defer cancel()

	app, err := trinover.Open(cfg, logger)
	if err != nil {
		return err
	}
	defer app.Close()

	var versions []string
	if refresh {
		versions, err = app.RefreshVersions(ctx)
	} else {
		versions, err = app.Service.Versions(ctx)
	}
	if err != nil {
		return err
	}
	for _, v := range versions {
		fmt.Fprintln(cmd.OutOrStdout(), v)
	}
	return nil
}

// terminalDisplay prints results to a terminal or as HTML.
type terminalDisplay struct {
	out       io.Writer
	html      bool
	filter    string
	collapsed bool

	alert string
	err   error
}

func (d *terminalDisplay) Clear() {}

func (d *terminalDisplay) ShowResults(p view.Page, _ view.ScrollTarget) {
	p = view.Filter(p, d.filter)
	if d.collapsed {
		p = view.CollapseAll(p)
	}
	if d.html {
		d.err = view.Render(d.out, p)
		return
	}
	d.err = view.RenderText(d.out, p)
}

func (d *terminalDisplay) Alert(msg string) { d.alert = msg }

var indicatorStyle = lipgloss.NewStyle().Faint(true)

type indicator struct {
	w io.Writer
}

func newIndicator(w io.Writer) client.Indicator { return indicator{w: w} }

func (i indicator) Show() { fmt.Fprint(i.w, indicatorStyle.Render("Comparing versions...")) }

// Hide clears the line written by Show.
func (i indicator) Hide() { fmt.Fprint(i.w, "\r\033[K") }
