package config

import (
	"encoding/json"
	"os"
	"path/filepath"
	"time"

	"github.com/marcus/lightface/internal/workdir"
	"github.com/marcus/lightface/pkg/lightface"
)

// DialogSettings is the persisted subset of lightface.Config.
type DialogSettings struct {
	Width          lightface.Extent `json:"width"`
	Height         lightface.Extent `json:"height"`
	Draggable      bool             `json:"draggable"`
	FadeDurationMS int              `json:"fade_duration_ms"`
	FadeDelayMS    int              `json:"fade_delay_ms"`
	Pad            int              `json:"pad"`
	OverlayAll     bool             `json:"overlay_all"`
	Constrain      bool             `json:"constrain"`
	ResetOnScroll  bool             `json:"reset_on_scroll"`
	Markdown       bool             `json:"markdown"`
	LegacyOverlay  bool             `json:"legacy_overlay"`
	ShowHints      bool             `json:"show_hints"`
	FrameRate      int              `json:"frame_rate"`
}

// DashboardSettings configures the demo dashboard.
type DashboardSettings struct {
	DBPath     string `json:"db_path"`
	LatencyMS  int    `json:"latency_ms"`
	NoticeSecs int    `json:"notice_secs"`
}

// Config is the on-disk configuration.
type Config struct {
	Dialog    DialogSettings    `json:"dialog"`
	Dashboard DashboardSettings `json:"dashboard"`
}

// Default returns the configuration used when no file exists. Fields
// missing from a file keep these values.
func Default() *Config {
	d := lightface.DefaultConfig()
	return &Config{
		Dialog: DialogSettings{
			Width:          d.Width,
			Height:         d.Height,
			FadeDurationMS: int(d.FadeDuration / time.Millisecond),
			FadeDelayMS:    int(d.FadeDelay / time.Millisecond),
			Pad:            d.Pad,
			ResetOnScroll:  d.ResetOnScroll,
			ShowHints:      true,
			FrameRate:      d.FrameRate,
		},
		Dashboard: DashboardSettings{
			DBPath:     filepath.Join(workdir.StateDir, "lightface.db"),
			LatencyMS:  800,
			NoticeSecs: 8,
		},
	}
}

// Load reads the project config from disk
func Load(p workdir.Project) (*Config, error) {
	configPath := p.ConfigPath()

	cfg := Default()
	data, err := os.ReadFile(configPath)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return nil, err
	}

	if err := json.Unmarshal(data, cfg); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Save writes the project config to disk
func Save(p workdir.Project, cfg *Config) error {
	configPath := p.ConfigPath()

	// Ensure directory exists
	if err := os.MkdirAll(filepath.Dir(configPath), 0755); err != nil {
		return err
	}

	data, err := json.MarshalIndent(cfg, "", "  ")
	if err != nil {
		return err
	}

	// Atomic write: temp file + rename
	tmp, err := os.CreateTemp(filepath.Dir(configPath), "config-*.json.tmp")
	if err != nil {
		return err
	}
	tmpName := tmp.Name()

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return err
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return err
	}

	return os.Rename(tmpName, configPath)
}

// Apply copies the dialog settings onto base, leaving content, buttons
// and runtime hooks alone.
func (s DialogSettings) Apply(base lightface.Config) lightface.Config {
	base.Width = s.Width
	base.Height = s.Height
	base.Draggable = s.Draggable
	base.FadeDuration = time.Duration(s.FadeDurationMS) * time.Millisecond
	base.FadeDelay = time.Duration(s.FadeDelayMS) * time.Millisecond
	base.Pad = s.Pad
	base.OverlayAll = s.OverlayAll
	base.Constrain = s.Constrain
	base.ResetOnScroll = s.ResetOnScroll
	base.Markdown = s.Markdown
	base.LegacyOverlay = s.LegacyOverlay
	base.ShowHints = s.ShowHints
	base.FrameRate = s.FrameRate
	return base
}

// DBPath resolves the database path against the project root.
func (c *Config) DBPath(p workdir.Project) string {
	return p.Path(c.Dashboard.DBPath)
}

// Latency is the simulated backend latency.
func (c *Config) Latency() time.Duration {
	return time.Duration(c.Dashboard.LatencyMS) * time.Millisecond
}

// NoticeTimeout is how long the dashboard notice stays visible.
func (c *Config) NoticeTimeout() time.Duration {
	if c.Dashboard.NoticeSecs <= 0 {
		return 8 * time.Second
	}
	return time.Duration(c.Dashboard.NoticeSecs) * time.Second
}
