package batcher

import (
	"fmt"
	"time"

	"github.com/netbatch/netbatchd/internal/adapters/sqlstore"
	"github.com/netbatch/netbatchd/internal/domain"
)

// DefaultStorePath is where the durable request queue lives when Config
// does not set one explicitly: <per-app config dir>/NetworkBatcher/default.sqlite.
var DefaultStorePath = sqlstore.DefaultPath("default")

// DefaultHTTPTimeout bounds a single request sent by the built-in
// transport. SetDefaults substitutes it for a zero Config.HTTPTimeout.
const DefaultHTTPTimeout = 30 * time.Second

// DefaultPollInterval is how often the device-state monitor re-reads
// PlatformSignals absent a push-based hook.
const DefaultPollInterval = 10 * time.Second

// Config holds the configuration for a Batcher instance. The embedded
// domain.Configuration carries the tuning knobs the scheduler and policy
// evaluator read; everything else here is infrastructure the façade needs
// to wire the store and transport.
type Config struct {
	domain.Configuration

	// StorePath is the path to the SQLite database backing the durable
	// request queue. Defaults to DefaultStorePath.
	StorePath string

	// HTTPTimeout bounds each request issued by the built-in transport.
	// Ignored if WithTransport supplies a custom transport.
	HTTPTimeout time.Duration

	// PollInterval is how often the device-state monitor polls
	// PlatformSignals. The monitor has no push-based path; it always
	// re-reads the signals at this interval.
	PollInterval time.Duration
}

// DefaultConfig returns a Config seeded with domain.PresetBalanced and the
// infrastructure defaults above.
func DefaultConfig() Config {
	return Config{
		Configuration: domain.PresetBalanced(),
		StorePath:     DefaultStorePath,
		HTTPTimeout:   DefaultHTTPTimeout,
		PollInterval:  DefaultPollInterval,
	}
}

// SetDefaults fills in zero-valued fields. A Config whose MaxBatchSize,
// MinBatchInterval and MaxDeferralTime are all zero is assumed to be
// wholly unconfigured and gets the full PresetBalanced; a partially-configured Config only has its
// infrastructure fields defaulted, so callers that set a couple of
// Configuration fields directly are not silently overwritten.
func (c *Config) SetDefaults() {
	if c.MaxBatchSize == 0 && c.MinBatchInterval == 0 && c.MaxDeferralTime == 0 {
		c.Configuration = domain.PresetBalanced()
	}
	if c.StorePath == "" {
		c.StorePath = DefaultStorePath
	}
	if c.HTTPTimeout == 0 {
		c.HTTPTimeout = DefaultHTTPTimeout
	}
	if c.PollInterval == 0 {
		c.PollInterval = DefaultPollInterval
	}
}

// Validate checks the configuration for errors after SetDefaults has run.
func (c Config) Validate() error {
	if c.StorePath == "" {
		return fmt.Errorf("%w: store path is required", domain.ErrInvalidConfig)
	}
	if c.MaxBatchSize <= 0 {
		return fmt.Errorf("%w: max batch size must be positive", domain.ErrInvalidConfig)
	}
	if c.MaxQueueSize <= 0 {
		return fmt.Errorf("%w: max queue size must be positive", domain.ErrInvalidConfig)
	}
	if c.MaxPayloadSize <= 0 {
		return fmt.Errorf("%w: max payload size must be positive", domain.ErrInvalidConfig)
	}
	if c.MinBatchInterval <= 0 {
		return fmt.Errorf("%w: min batch interval must be positive", domain.ErrInvalidConfig)
	}
	if c.MaxDeferralTime <= 0 {
		return fmt.Errorf("%w: max deferral time must be positive", domain.ErrInvalidConfig)
	}
	return nil
}
