package cli

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/appstream-tools/compose/pkg/compose"
	"github.com/appstream-tools/compose/pkg/hints"
	"github.com/appstream-tools/compose/pkg/icons"
	"github.com/appstream-tools/compose/pkg/result"
	"github.com/appstream-tools/compose/pkg/unit"
)

// runOpts holds the command-line flags for the run command.
type runOpts struct {
	config           string // config file path (default: ascompose.toml if present)
	prefix           string // installation prefix inside the units
	origin           string // catalog origin name
	dataDir          string // catalog output directory
	mediaDir         string // media pool output directory
	hintsDir         string // hints report output directory
	mediaBaseURL     string // public URL of the media pool
	format           string // catalog format: xml or yaml
	iconPolicy       string // icon export policy text form
	components       string // comma-separated component-id allow-list
	minL10nPercent   int    // minimum translation completeness
	maxScreenshotMiB int64  // screenshot download cap in MiB
	threads          int    // unit fan-out limit
	noNet            bool   // never touch the network
	noScreenshots    bool   // do not store screenshot media
	noVideos         bool   // do not download and probe videos
	noFonts          bool   // do not render font specimens
	noL10n           bool   // do not compute translation status
	noCache          bool   // disable the download cache
	redisURL         string // use a Redis download cache instead of files
}

// runCommand creates the run command, the main entry point for composing
// catalog metadata from units.
func (c *CLI) runCommand() *cobra.Command {
	var opts runOpts

	cmd := &cobra.Command{
		Use:   "run [unit...]",
		Short: "Compose catalog metadata from software units",
		Long: `Compose AppStream catalog metadata from one or more software units.

A unit is either a directory tree or a (optionally gzip-compressed) tarball
laid out like an installed filesystem, e.g. containing usr/share/metainfo/.
The composed catalog, media pool and hints report are written to the
configured output directories.`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runCompose(cmd, args, &opts)
		},
	}

	cmd.Flags().StringVar(&opts.config, "config", "", "config file (default: ./"+defaultConfigFile+" if present)")
	cmd.Flags().StringVar(&opts.prefix, "prefix", compose.DefaultPrefix, "installation prefix inside the units")
	cmd.Flags().StringVar(&opts.origin, "origin", "", "catalog origin name, e.g. a repository suite")
	cmd.Flags().StringVar(&opts.dataDir, "data-dir", "", "output directory for the catalog")
	cmd.Flags().StringVar(&opts.mediaDir, "media-dir", "", "output directory for exported icons and screenshots")
	cmd.Flags().StringVar(&opts.hintsDir, "hints-dir", "", "output directory for the hints report")
	cmd.Flags().StringVar(&opts.mediaBaseURL, "media-baseurl", "", "public URL the media pool will be served from")
	cmd.Flags().StringVar(&opts.format, "format", "", "catalog format: xml (default), yaml")
	cmd.Flags().StringVar(&opts.iconPolicy, "icon-policy", "", "icon export policy, e.g. \"64x64=cached,128x128=cached-remote\"")
	cmd.Flags().StringVar(&opts.components, "components", "", "restrict processing to these component-ids (comma-separated)")
	cmd.Flags().IntVar(&opts.minL10nPercent, "min-l10n-percentage", compose.DefaultMinL10nPercentage, "minimum translation completeness for listed locales")
	cmd.Flags().Int64Var(&opts.maxScreenshotMiB, "max-screenshot-size", compose.DefaultMaxScreenshotBytes>>20, "screenshot download cap in MiB")
	cmd.Flags().IntVar(&opts.threads, "threads", 0, "number of units processed in parallel (0 = all CPUs)")
	cmd.Flags().BoolVar(&opts.noNet, "no-net", false, "never access the network (skips screenshot processing)")
	cmd.Flags().BoolVar(&opts.noScreenshots, "no-screenshots", false, "validate screenshots but keep upstream URLs")
	cmd.Flags().BoolVar(&opts.noVideos, "no-videos", false, "pass video screenshots through untouched")
	cmd.Flags().BoolVar(&opts.noFonts, "no-fonts", false, "skip font specimen rendering")
	cmd.Flags().BoolVar(&opts.noL10n, "no-l10n", false, "skip translation status computation")
	cmd.Flags().BoolVar(&opts.noCache, "no-cache", false, "disable the download cache")
	cmd.Flags().StringVar(&opts.redisURL, "cache-redis", "", "use a Redis download cache at this URL")

	return cmd
}

func (c *CLI) runCompose(cmd *cobra.Command, args []string, opts *runOpts) error {
	ctx := cmd.Context()
	logger := loggerFromContext(ctx)

	cfg, err := loadConfig(opts.config)
	if err != nil {
		return err
	}
	settings := compose.DefaultSettings()
	if err := cfg.apply(&settings); err != nil {
		return err
	}
	if err := applyFlags(cmd, opts, &settings); err != nil {
		return err
	}

	units, err := unitsFromArgs(args)
	if err != nil {
		return err
	}

	cc, err := newCache(ctx, opts.noCache, opts.redisURL)
	if err != nil {
		return fmt.Errorf("setting up download cache: %w", err)
	}
	defer cc.Close()

	cp, err := compose.NewCompose(settings,
		compose.WithLogger(logger),
		compose.WithCache(cc))
	if err != nil {
		return err
	}
	for _, u := range units {
		cp.AddUnit(u)
	}

	prog := newProgress(logger)
	var spin *Spinner
	if logger.GetLevel() > LogDebug {
		spin = newSpinner(ctx, fmt.Sprintf("Composing %d unit(s)...", len(units)))
		spin.Start()
	}
	results, err := cp.Run(ctx)
	if spin != nil {
		spin.Stop()
	}
	if err != nil {
		return err
	}
	prog.done(fmt.Sprintf("Composed %d unit(s)", len(units)))

	return printRunSummary(cp.Settings(), results)
}

// applyFlags overrides settings with flags the user actually set, so the
// precedence stays flag over config file over default.
func applyFlags(cmd *cobra.Command, opts *runOpts, s *compose.Settings) error {
	fl := cmd.Flags()
	if fl.Changed("prefix") {
		s.Prefix = opts.prefix
	}
	if fl.Changed("origin") {
		s.Origin = opts.origin
	}
	if fl.Changed("data-dir") {
		s.DataDir = opts.dataDir
	}
	if fl.Changed("media-dir") {
		s.MediaDir = opts.mediaDir
	}
	if fl.Changed("hints-dir") {
		s.HintsDir = opts.hintsDir
	}
	if fl.Changed("media-baseurl") {
		s.MediaBaseURL = opts.mediaBaseURL
	}
	if fl.Changed("format") {
		s.Format = opts.format
	}
	if fl.Changed("icon-policy") {
		policy, err := icons.ParsePolicy(opts.iconPolicy)
		if err != nil {
			return err
		}
		s.IconPolicy = policy
	}
	if fl.Changed("components") {
		s.AllowedComponentIDs = splitList(opts.components)
	}
	if fl.Changed("min-l10n-percentage") {
		s.MinL10nPercentage = opts.minL10nPercent
	}
	if fl.Changed("max-screenshot-size") {
		s.MaxScreenshotBytes = opts.maxScreenshotMiB << 20
	}
	if fl.Changed("threads") {
		s.MaxThreads = opts.threads
	}
	if fl.Changed("no-net") {
		s.NoNet = opts.noNet
	}
	if fl.Changed("no-screenshots") {
		s.StoreScreenshots = !opts.noScreenshots
	}
	if fl.Changed("no-videos") {
		s.AllowScreencasts = !opts.noVideos
	}
	if fl.Changed("no-fonts") {
		s.ProcessFonts = !opts.noFonts
	}
	if fl.Changed("no-l10n") {
		s.ProcessTranslations = !opts.noL10n
	}
	return nil
}

// unitsFromArgs builds a unit per path argument. Directories become
// directory units, tarballs become tar units.
func unitsFromArgs(args []string) ([]unit.Unit, error) {
	units := make([]unit.Unit, 0, len(args))
	for _, arg := range args {
		fi, err := os.Stat(arg)
		if err != nil {
			return nil, fmt.Errorf("unit %s: %w", arg, err)
		}
		if fi.IsDir() {
			u := unit.NewDirectoryUnit(arg)
			u.SetID(filepath.Base(filepath.Clean(arg)))
			units = append(units, u)
			continue
		}
		if isTarball(arg) {
			units = append(units, unit.NewTarUnit(arg))
			continue
		}
		return nil, fmt.Errorf("unit %s: not a directory or tar archive", arg)
	}
	return units, nil
}

func isTarball(path string) bool {
	for _, suffix := range []string{".tar", ".tar.gz", ".tgz"} {
		if strings.HasSuffix(path, suffix) {
			return true
		}
	}
	return false
}

// splitList parses a comma-separated flag value into a clean slice.
func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

// printRunSummary reports the outcome of a run and fails the command when
// error-severity hints were emitted.
func printRunSummary(s compose.Settings, results []*result.Result) error {
	components := 0
	countBySeverity := map[hints.Severity]int{}
	for _, res := range results {
		components += res.ComponentsCount()
		for _, cid := range res.ComponentIDsWithHints() {
			for _, h := range res.Hints(cid) {
				countBySeverity[h.Severity()]++
			}
		}
	}

	printSuccess("Composed %d component(s) from %d unit(s)", components, len(results))
	if s.DataDir != "" {
		name := s.Origin + ".xml.gz"
		if s.Format == compose.FormatYAML {
			name = s.Origin + ".yml.gz"
		}
		printFile(filepath.Join(s.DataDir, name))
	}
	if s.HintsDir != "" {
		printFile(filepath.Join(s.HintsDir, s.Origin+".hints.json"))
	}

	errors := countBySeverity[hints.SeverityError]
	warnings := countBySeverity[hints.SeverityWarning]
	infos := countBySeverity[hints.SeverityInfo] + countBySeverity[hints.SeverityPedantic]
	if errors+warnings+infos > 0 {
		printDetail("hints: %d error(s), %d warning(s), %d info", errors, warnings, infos)
	}
	if errors > 0 {
		return fmt.Errorf("composition finished with %d error hint(s)", errors)
	}
	return nil
}
