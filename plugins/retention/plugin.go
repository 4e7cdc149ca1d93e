// Package retention provides periodic pruning of the durable store for the
// batcher. When enabled, it removes expired pending requests and trims the
// transmission log so a long-running device does not grow its queue
// database without bound.
package retention

import (
	"context"
	"sync"
	"time"

	"github.com/netbatch/netbatchd/internal/ports"
	"github.com/netbatch/netbatchd/pkg/batcher"
)

// Plugin implements periodic retention for the durable store.
type Plugin struct {
	mu sync.Mutex

	checkInterval time.Duration
	logMaxAge     time.Duration
	runImmediately bool

	store  ports.Store
	logger batcher.Logger
	cancel context.CancelFunc
	wg     sync.WaitGroup
}

// Config holds configuration options for the retention plugin.
type Config struct {
	// CheckInterval is how often to run a pruning pass. Default: 1 hour.
	CheckInterval time.Duration

	// LogMaxAge is how long a transmission log record is kept before it is
	// eligible for pruning. Default: 30 days.
	LogMaxAge time.Duration

	// RunImmediately, if true, runs a pruning pass on startup instead of
	// waiting for the first tick. DefaultConfig sets it to true; New does
	// not default it, so a zero Config leaves it false.
	RunImmediately bool
}

// DefaultConfig returns a Config with sensible defaults.
func DefaultConfig() Config {
	return Config{
		CheckInterval:  time.Hour,
		LogMaxAge:      30 * 24 * time.Hour,
		RunImmediately: true,
	}
}

// New creates a new retention plugin with the given configuration.
func New(cfg Config) *Plugin {
	if cfg.CheckInterval <= 0 {
		cfg.CheckInterval = time.Hour
	}
	if cfg.LogMaxAge <= 0 {
		cfg.LogMaxAge = 30 * 24 * time.Hour
	}
	return &Plugin{
		checkInterval:  cfg.CheckInterval,
		logMaxAge:      cfg.LogMaxAge,
		runImmediately: cfg.RunImmediately,
	}
}

// Name returns the plugin identifier.
func (p *Plugin) Name() string { return "retention" }

// Initialize sets up the plugin and starts the pruning loop.
func (p *Plugin) Initialize(ctx context.Context, cfg batcher.PluginConfig) error {
	p.mu.Lock()
	p.store = cfg.Store
	p.logger = cfg.Logger
	p.mu.Unlock()

	if p.store == nil {
		p.logger.Warn("retention disabled: no store configured")
		return nil
	}

	pruneCtx, cancel := context.WithCancel(ctx)
	p.cancel = cancel

	p.wg.Add(1)
	go p.pruneLoop(pruneCtx)

	p.logger.Info("retention plugin initialized")
	return nil
}

// Shutdown stops the pruning loop.
func (p *Plugin) Shutdown(ctx context.Context) error {
	if p.cancel != nil {
		p.cancel()
	}
	p.wg.Wait()
	return nil
}

func (p *Plugin) pruneLoop(ctx context.Context) {
	defer p.wg.Done()

	if p.runImmediately {
		p.pruneOnce(ctx)
	}

	ticker := time.NewTicker(p.checkInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			p.pruneOnce(ctx)
		}
	}
}

func (p *Plugin) pruneOnce(ctx context.Context) {
	expired, err := p.store.DeleteExpired(ctx, time.Now())
	if err != nil {
		p.logger.Error("retention: delete expired failed")
	} else if expired > 0 {
		p.logger.Info("retention: removed expired pending requests")
	}

	pruned, err := p.store.PruneTransmissionLog(ctx, time.Now().Add(-p.logMaxAge))
	if err != nil {
		p.logger.Error("retention: prune transmission log failed")
	} else if pruned > 0 {
		p.logger.Info("retention: pruned transmission log records")
	}
}

// Ensure Plugin implements batcher.Plugin.
var _ batcher.Plugin = (*Plugin)(nil)
