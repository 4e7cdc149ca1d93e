package cliconfig

import (
	"os"
	"path/filepath"

	toml "github.com/pelletier/go-toml/v2"
)

// FileConfig mirrors Config but uses strings for durations to make TOML
// friendly, and pointers for bools so an absent key leaves the existing
// value alone.
type FileConfig struct {
	Preset string `toml:"preset"`

	StorePath    string `toml:"store_path"`
	HTTPTimeout  string `toml:"http_timeout"`
	PollInterval string `toml:"poll_interval"`

	MaxDeferralTime  string `toml:"max_deferral_time"`
	MinBatchInterval string `toml:"min_batch_interval"`
	PiggybackWindow  string `toml:"piggyback_window"`
	MaxQueueSize     int    `toml:"max_queue_size"`
	MaxPayloadSize   int    `toml:"max_payload_size"`
	MaxBatchSize     int    `toml:"max_batch_size"`

	PreferWiFi     *bool `toml:"prefer_wifi"`
	PreferCharging *bool `toml:"prefer_charging"`

	PiggybackOnUserRequests *bool `toml:"piggyback_on_user_requests"`
	FlushOnBackground       *bool `toml:"flush_on_background"`
	AllowCellular           *bool `toml:"allow_cellular"`
	RequireWiFiForBulk      *bool `toml:"require_wifi_for_bulk"`

	ImmediateDomains  []string `toml:"immediate_domains"`
	DeferrableDomains []string `toml:"deferrable_domains"`

	EnableLogging *bool `toml:"enable_logging"`
	EnableMetrics *bool `toml:"enable_metrics"`
}

// LoadFileConfig reads and parses a TOML config file from the given path.
func LoadFileConfig(path string) (FileConfig, error) {
	var fc FileConfig
	b, err := os.ReadFile(path)
	if err != nil {
		return fc, err
	}
	if err := toml.Unmarshal(b, &fc); err != nil {
		return fc, err
	}
	return fc, nil
}

// DefaultConfigPath returns ~/.netbatch/config.toml if the user's home
// directory is accessible, or "" otherwise.
func DefaultConfigPath() string {
	if h, err := os.UserHomeDir(); err == nil {
		return filepath.Join(h, ".netbatch", "config.toml")
	}
	return ""
}

// ApplyFileConfig applies configuration from a file to cfg, respecting
// flags that have already been explicitly set on the command line
// (changed).
func ApplyFileConfig(cfg *Config, fc FileConfig, changed map[string]bool) error {
	s := newConfigSetter(changed)

	if fc.Preset != "" && !changed["preset"] {
		if err := ApplyPreset(cfg, fc.Preset); err != nil {
			return err
		}
	}

	s.setString("store-path", fc.StorePath, &cfg.StorePath)

	if err := s.setDuration("http-timeout", fc.HTTPTimeout, &cfg.HTTPTimeout); err != nil {
		return err
	}
	if err := s.setDuration("poll-interval", fc.PollInterval, &cfg.PollInterval); err != nil {
		return err
	}
	if err := s.setDuration("max-deferral-time", fc.MaxDeferralTime, &cfg.MaxDeferralTime); err != nil {
		return err
	}
	if err := s.setDuration("min-batch-interval", fc.MinBatchInterval, &cfg.MinBatchInterval); err != nil {
		return err
	}
	if err := s.setDuration("piggyback-window", fc.PiggybackWindow, &cfg.PiggybackWindow); err != nil {
		return err
	}

	s.setInt("max-queue-size", fc.MaxQueueSize, &cfg.MaxQueueSize)
	s.setInt("max-payload-size", fc.MaxPayloadSize, &cfg.MaxPayloadSize)
	s.setInt("max-batch-size", fc.MaxBatchSize, &cfg.MaxBatchSize)

	s.setBool("prefer-wifi", fc.PreferWiFi, &cfg.PreferWiFi)
	s.setBool("prefer-charging", fc.PreferCharging, &cfg.PreferCharging)
	s.setBool("piggyback-on-user-requests", fc.PiggybackOnUserRequests, &cfg.PiggybackOnUserRequests)
	s.setBool("flush-on-background", fc.FlushOnBackground, &cfg.FlushOnBackground)
	s.setBool("allow-cellular", fc.AllowCellular, &cfg.AllowCellular)
	s.setBool("require-wifi-for-bulk", fc.RequireWiFiForBulk, &cfg.RequireWiFiForBulk)
	s.setBool("enable-logging", fc.EnableLogging, &cfg.EnableLogging)
	s.setBool("enable-metrics", fc.EnableMetrics, &cfg.EnableMetrics)

	s.setStringSlice("immediate-domains", fc.ImmediateDomains, &cfg.ImmediateDomains)
	s.setStringSlice("deferrable-domains", fc.DeferrableDomains, &cfg.DeferrableDomains)

	return nil
}

// FileExists checks if a file exists at the given path.
func FileExists(p string) bool {
	_, err := os.Stat(p)
	return err == nil
}
