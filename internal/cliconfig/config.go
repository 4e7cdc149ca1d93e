// Package cliconfig assembles a batcher.Config from a file, environment
// variables, and command-line flags, in that precedence order (flags win,
// then env, then file, then the preset defaults).
package cliconfig

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/netbatch/netbatchd/internal/domain"
	"github.com/netbatch/netbatchd/pkg/batcher"
)

// DefaultStorePath is where the CLI keeps its durable queue absent an
// override.
var DefaultStorePath = batcher.DefaultStorePath

// Config holds CLI configuration for netbatchd. Durations and the domain
// lists are flattened from domain.Configuration so cobra can bind flags
// directly to its fields.
type Config struct {
	Preset string

	StorePath    string
	HTTPTimeout  time.Duration
	PollInterval time.Duration

	MaxDeferralTime  time.Duration
	MinBatchInterval time.Duration
	PiggybackWindow  time.Duration
	MaxQueueSize     int
	MaxPayloadSize   int
	MaxBatchSize     int

	PreferWiFi     bool
	PreferCharging bool

	PiggybackOnUserRequests bool
	FlushOnBackground       bool
	AllowCellular           bool
	RequireWiFiForBulk      bool

	ImmediateDomains  []string
	DeferrableDomains []string

	EnableLogging bool
	EnableMetrics bool
}

// DefaultConfig returns a Config seeded from the balanced preset.
func DefaultConfig() Config {
	return fromDomainConfiguration(domain.PresetBalanced(), "balanced")
}

func fromDomainConfiguration(dc domain.Configuration, preset string) Config {
	return Config{
		Preset:                  preset,
		StorePath:               DefaultStorePath,
		HTTPTimeout:             batcher.DefaultHTTPTimeout,
		PollInterval:            batcher.DefaultPollInterval,
		MaxDeferralTime:         dc.MaxDeferralTime,
		MinBatchInterval:        dc.MinBatchInterval,
		PiggybackWindow:         dc.PiggybackWindow,
		MaxQueueSize:            dc.MaxQueueSize,
		MaxPayloadSize:          dc.MaxPayloadSize,
		MaxBatchSize:            dc.MaxBatchSize,
		PreferWiFi:              dc.PreferWiFi,
		PreferCharging:          dc.PreferCharging,
		PiggybackOnUserRequests: dc.PiggybackOnUserRequests,
		FlushOnBackground:       dc.FlushOnBackground,
		AllowCellular:           dc.AllowCellular,
		RequireWiFiForBulk:      dc.RequireWiFiForBulk,
		ImmediateDomains:        dc.ImmediateDomains,
		DeferrableDomains:       dc.DeferrableDomains,
		EnableLogging:           dc.EnableLogging,
		EnableMetrics:           dc.EnableMetrics,
	}
}

// ApplyPreset resets the domain.Configuration-derived fields to the named
// preset, leaving the infrastructure fields (store path, timeouts) alone.
// Called when --preset is given explicitly, before file/env/flag overrides
// are layered on.
func ApplyPreset(cfg *Config, name string) error {
	var dc domain.Configuration
	switch name {
	case "balanced":
		dc = domain.PresetBalanced()
	case "battery_saver":
		dc = domain.PresetBatterySaver()
	case "minimal":
		dc = domain.PresetMinimal()
	default:
		return fmt.Errorf("unknown preset %q (want balanced, battery_saver, or minimal)", name)
	}

	replaced := fromDomainConfiguration(dc, name)
	replaced.StorePath = cfg.StorePath
	replaced.HTTPTimeout = cfg.HTTPTimeout
	replaced.PollInterval = cfg.PollInterval
	*cfg = replaced
	return nil
}

// Validate checks the configuration for errors and fills in derived
// defaults.
func (c *Config) Validate() error {
	if c.StorePath == "" {
		c.StorePath = DefaultStorePath
	}
	if c.MaxBatchSize <= 0 {
		return fmt.Errorf("max-batch-size must be positive")
	}
	if c.MaxQueueSize <= 0 {
		return fmt.Errorf("max-queue-size must be positive")
	}
	if c.MaxPayloadSize <= 0 {
		return fmt.Errorf("max-payload-size must be positive")
	}
	if c.MinBatchInterval <= 0 {
		return fmt.Errorf("min-batch-interval must be positive")
	}
	if c.MaxDeferralTime <= 0 {
		return fmt.Errorf("max-deferral-time must be positive")
	}
	return nil
}

// ToBatcherConfig converts the flattened CLI config back into a
// batcher.Config ready for batcher.New.
func (c Config) ToBatcherConfig() batcher.Config {
	return batcher.Config{
		Configuration: domain.Configuration{
			MaxDeferralTime:         c.MaxDeferralTime,
			MinBatchInterval:        c.MinBatchInterval,
			PiggybackWindow:         c.PiggybackWindow,
			MaxQueueSize:            c.MaxQueueSize,
			MaxPayloadSize:          c.MaxPayloadSize,
			MaxBatchSize:            c.MaxBatchSize,
			PreferWiFi:              c.PreferWiFi,
			PreferCharging:          c.PreferCharging,
			PiggybackOnUserRequests: c.PiggybackOnUserRequests,
			FlushOnBackground:       c.FlushOnBackground,
			AllowCellular:           c.AllowCellular,
			RequireWiFiForBulk:      c.RequireWiFiForBulk,
			ImmediateDomains:        c.ImmediateDomains,
			DeferrableDomains:       c.DeferrableDomains,
			EnableLogging:           c.EnableLogging,
			EnableMetrics:           c.EnableMetrics,
		},
		StorePath:    c.StorePath,
		HTTPTimeout:  c.HTTPTimeout,
		PollInterval: c.PollInterval,
	}
}

// configSetter applies configuration values while respecting flag
// precedence: a value is only applied if the corresponding flag has not
// already been explicitly set on the command line.
type configSetter struct {
	changed map[string]bool
}

func newConfigSetter(changed map[string]bool) *configSetter {
	return &configSetter{changed: changed}
}

func (s *configSetter) setString(flag, value string, dst *string) {
	if value == "" || s.changed[flag] {
		return
	}
	*dst = value
}

func (s *configSetter) setStringSlice(flag string, value []string, dst *[]string) {
	if len(value) == 0 || s.changed[flag] {
		return
	}
	*dst = value
}

func (s *configSetter) setInt(flag string, value int, dst *int) {
	if value <= 0 || s.changed[flag] {
		return
	}
	*dst = value
}

func (s *configSetter) setDuration(flag, value string, dst *time.Duration) error {
	if value == "" || s.changed[flag] {
		return nil
	}
	d, err := time.ParseDuration(value)
	if err != nil {
		return fmt.Errorf("parse %s: %w", flag, err)
	}
	*dst = d
	return nil
}

func (s *configSetter) setBool(flag string, value *bool, dst *bool) {
	if value == nil || s.changed[flag] {
		return
	}
	*dst = *value
}

func (s *configSetter) setIntFromString(flag, value string, dst *int) error {
	if value == "" || s.changed[flag] {
		return nil
	}
	i, err := strconv.Atoi(value)
	if err != nil {
		return fmt.Errorf("parse %s: %w", flag, err)
	}
	if i <= 0 {
		return nil
	}
	*dst = i
	return nil
}

func (s *configSetter) setBoolFromString(flag, value string, dst *bool) {
	if value == "" || s.changed[flag] {
		return
	}
	*dst = value == "true" || value == "1"
}

func (s *configSetter) setStringSliceFromCSV(flag, value string, dst *[]string) {
	if value == "" || s.changed[flag] {
		return
	}
	parts := strings.Split(value, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	*dst = out
}
