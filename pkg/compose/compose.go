// Package compose orchestrates metadata composition: it processes a set
// of software units into catalog metadata, exported media and diagnostic
// hints.
//
// A [Compose] run fans out over its units, building one [result.Result]
// per unit, then merges the results into a single catalog:
//
//	c, err := compose.NewCompose(settings)
//	c.AddUnit(unit.NewDirectoryUnit("/path/to/tree"))
//	results, err := c.Run(ctx)
package compose

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"golang.org/x/sync/errgroup"

	"github.com/appstream-tools/compose/pkg/appstream"
	"github.com/appstream-tools/compose/pkg/cache"
	"github.com/appstream-tools/compose/pkg/httputil"
	"github.com/appstream-tools/compose/pkg/observability"
	"github.com/appstream-tools/compose/pkg/result"
	"github.com/appstream-tools/compose/pkg/unit"
)

// Compose drives metadata composition over a set of units.
//
// The zero value is not usable, create instances with [NewCompose].
// AddUnit must not be called concurrently with Run; everything else the
// Compose does is safe for concurrent use.
type Compose struct {
	settings   Settings
	downloader *httputil.Downloader
	logger     *log.Logger

	mu      sync.Mutex
	units   []unit.Unit
	results []*result.Result
}

// Option configures a Compose beyond its settings.
type Option func(*Compose)

// WithLogger sets the logger used during runs.
func WithLogger(logger *log.Logger) Option {
	return func(c *Compose) {
		if logger != nil {
			c.logger = logger
		}
	}
}

// WithCache attaches a download cache so repeated runs do not re-fetch
// unchanged screenshot media.
func WithCache(cc cache.Cache) Option {
	return func(c *Compose) {
		c.downloader = httputil.NewDownloader(httputil.DownloaderOptions{
			Cache:    cc,
			MaxBytes: c.settings.MaxScreenshotBytes,
		})
	}
}

// WithDownloader replaces the media downloader entirely.
func WithDownloader(dl *httputil.Downloader) Option {
	return func(c *Compose) {
		if dl != nil {
			c.downloader = dl
		}
	}
}

// NewCompose creates a Compose for the given settings.
func NewCompose(settings Settings, opts ...Option) (*Compose, error) {
	if err := settings.ValidateAndSetDefaults(); err != nil {
		return nil, err
	}
	c := &Compose{
		settings: settings,
		logger:   log.Default(),
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.downloader == nil {
		c.downloader = httputil.NewDownloader(httputil.DownloaderOptions{
			MaxBytes: settings.MaxScreenshotBytes,
		})
	}
	return c, nil
}

// Settings returns a copy of the effective run settings.
func (c *Compose) Settings() Settings { return c.settings }

// AddUnit registers a unit for the next run.
func (c *Compose) AddUnit(u unit.Unit) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.units = append(c.units, u)
}

// Units returns the registered units.
func (c *Compose) Units() []unit.Unit {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]unit.Unit(nil), c.units...)
}

// Results returns the per-unit results of the last run.
func (c *Compose) Results() []*result.Result {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]*result.Result(nil), c.results...)
}

// Run processes all registered units and writes the configured outputs.
// It returns the per-unit results; processing problems surface as hints
// on the results, the returned error covers run-level failures only.
func (c *Compose) Run(ctx context.Context) ([]*result.Result, error) {
	units := c.Units()
	if len(units) == 0 {
		return nil, fmt.Errorf("no units to process for origin %q", c.settings.Origin)
	}

	c.logger.Info("starting compose run",
		"origin", c.settings.Origin,
		"units", len(units),
		"format", c.settings.Format)

	results := make([]*result.Result, len(units))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(c.settings.MaxThreads)
	for i, u := range units {
		i, u := i, u
		g.Go(func() error {
			results[i] = c.processUnit(gctx, u)
			return gctx.Err()
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	// cross-unit duplicate ids: the first unit to claim an id wins,
	// later ones are invalidated with a hint
	seen := make(map[string]string)
	for _, res := range results {
		for _, cpt := range res.Components() {
			if owner, dup := seen[cpt.ID]; dup {
				c.logger.Warn("duplicate component id",
					"id", cpt.ID, "unit", res.UnitID(), "owner", owner)
				res.AddHint(cpt, "duplicate-component")
				continue
			}
			seen[cpt.ID] = res.UnitID()
		}
	}

	c.mu.Lock()
	c.results = results
	c.mu.Unlock()

	if err := c.writeCatalog(ctx, results); err != nil {
		return results, err
	}
	if err := c.writeHintsReport(results); err != nil {
		return results, err
	}
	return results, nil
}

// writeCatalog serializes all valid components to the data directory.
func (c *Compose) writeCatalog(ctx context.Context, results []*result.Result) error {
	if c.settings.DataDir == "" {
		return nil
	}

	var cpts []*appstream.Component
	for _, res := range results {
		cpts = append(cpts, res.Components()...)
	}
	sort.Slice(cpts, func(i, j int) bool { return cpts[i].ID < cpts[j].ID })

	name := c.settings.Origin + ".xml.gz"
	if c.settings.Format == FormatYAML {
		name = c.settings.Origin + ".yml.gz"
	}
	dest := filepath.Join(c.settings.DataDir, name)

	observability.Compose().OnCatalogWriteStart(ctx, c.settings.Format, len(cpts))
	start := time.Now()
	err := func() error {
		if err := os.MkdirAll(c.settings.DataDir, 0o755); err != nil {
			return err
		}
		f, err := os.Create(dest)
		if err != nil {
			return err
		}
		defer f.Close()

		if c.settings.Format == FormatYAML {
			return appstream.WriteCatalogYAML(f, c.settings.Origin, c.settings.MediaBaseURL, cpts)
		}
		return appstream.WriteCatalogXML(f, c.settings.Origin, c.settings.MediaBaseURL, cpts)
	}()
	observability.Compose().OnCatalogWriteComplete(ctx, c.settings.Format, time.Since(start), err)
	if err != nil {
		return fmt.Errorf("writing catalog %s: %w", dest, err)
	}

	c.logger.Info("catalog written", "file", dest, "components", len(cpts))
	return nil
}
