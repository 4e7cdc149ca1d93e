package retention

import "github.com/netbatch/netbatchd/pkg/batcher"

// WithRetention returns a batcher Option that enables periodic pruning of
// the durable store: expired pending requests and transmission log records
// past cfg.LogMaxAge are removed on every cfg.CheckInterval.
//
// Usage:
//
//	b, err := batcher.New(cfg, retention.WithRetention(retention.DefaultConfig()))
func WithRetention(cfg Config) batcher.Option {
	plugin := New(cfg)
	return batcher.WithPlugin(plugin)
}

// WithDefaultRetention returns a batcher Option that enables retention
// pruning with default settings (hourly checks, 30-day log retention).
func WithDefaultRetention() batcher.Option {
	return WithRetention(DefaultConfig())
}
