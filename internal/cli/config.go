package cli

import (
	"fmt"
	"os"

	"github.com/BurntSushi/toml"

	"github.com/appstream-tools/compose/pkg/compose"
	"github.com/appstream-tools/compose/pkg/icons"
)

// defaultConfigFile is picked up from the working directory when no
// explicit --config flag is given.
const defaultConfigFile = "ascompose.toml"

// fileConfig mirrors the ascompose.toml layout. Booleans are pointers so
// an absent key can be told apart from an explicit false.
type fileConfig struct {
	Prefix            string   `toml:"prefix"`
	Origin            string   `toml:"origin"`
	DataDir           string   `toml:"data_dir"`
	MediaDir          string   `toml:"media_dir"`
	HintsDir          string   `toml:"hints_dir"`
	MediaBaseURL      string   `toml:"media_baseurl"`
	Format            string   `toml:"format"`
	IconPolicy        string   `toml:"icon_policy"`
	MinL10nPercentage int      `toml:"min_l10n_percentage"`
	Components        []string `toml:"components"`
	MaxScreenshotMiB  int64    `toml:"max_screenshot_size_mib"`
	Threads           int      `toml:"threads"`

	NoNet         *bool `toml:"no_net"`
	NoScreenshots *bool `toml:"no_screenshots"`
	NoVideos      *bool `toml:"no_videos"`
	NoFonts       *bool `toml:"no_fonts"`
	NoL10n        *bool `toml:"no_l10n"`
}

// loadConfig reads a TOML config file. A missing default config file is
// not an error; a missing explicit path is.
func loadConfig(path string) (*fileConfig, error) {
	explicit := path != ""
	if !explicit {
		path = defaultConfigFile
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) && !explicit {
			return &fileConfig{}, nil
		}
		return nil, fmt.Errorf("reading config %s: %w", path, err)
	}

	var cfg fileConfig
	if err := toml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parsing config %s: %w", path, err)
	}
	return &cfg, nil
}

// apply copies the config values onto the settings. Flags are applied
// afterwards, so the precedence is flag over file over default.
func (cfg *fileConfig) apply(s *compose.Settings) error {
	if cfg.Prefix != "" {
		s.Prefix = cfg.Prefix
	}
	if cfg.Origin != "" {
		s.Origin = cfg.Origin
	}
	if cfg.DataDir != "" {
		s.DataDir = cfg.DataDir
	}
	if cfg.MediaDir != "" {
		s.MediaDir = cfg.MediaDir
	}
	if cfg.HintsDir != "" {
		s.HintsDir = cfg.HintsDir
	}
	if cfg.MediaBaseURL != "" {
		s.MediaBaseURL = cfg.MediaBaseURL
	}
	if cfg.Format != "" {
		s.Format = cfg.Format
	}
	if cfg.IconPolicy != "" {
		policy, err := icons.ParsePolicy(cfg.IconPolicy)
		if err != nil {
			return fmt.Errorf("config icon_policy: %w", err)
		}
		s.IconPolicy = policy
	}
	if cfg.MinL10nPercentage > 0 {
		s.MinL10nPercentage = cfg.MinL10nPercentage
	}
	if len(cfg.Components) > 0 {
		s.AllowedComponentIDs = cfg.Components
	}
	if cfg.MaxScreenshotMiB > 0 {
		s.MaxScreenshotBytes = cfg.MaxScreenshotMiB << 20
	}
	if cfg.Threads > 0 {
		s.MaxThreads = cfg.Threads
	}

	if cfg.NoNet != nil {
		s.NoNet = *cfg.NoNet
	}
	if cfg.NoScreenshots != nil {
		s.StoreScreenshots = !*cfg.NoScreenshots
	}
	if cfg.NoVideos != nil {
		s.AllowScreencasts = !*cfg.NoVideos
	}
	if cfg.NoFonts != nil {
		s.ProcessFonts = !*cfg.NoFonts
	}
	if cfg.NoL10n != nil {
		s.ProcessTranslations = !*cfg.NoL10n
	}
	return nil
}
