package batcher

import (
	"github.com/netbatch/netbatchd/internal/ports"
)

// Option configures optional behavior of a Batcher.
type Option func(*options)

// options holds the optional configuration for a Batcher instance.
type options struct {
	httpClient      ports.HTTPClient
	logger          ports.Logger
	eventHandler    EventHandler
	plugins         []Plugin
	platformSignals ports.PlatformSignals
	transport       ports.Transport
	store           ports.Store
}

// WithHTTPClient sets a custom HTTP client for the built-in transport. If
// not provided, a new http.Client with Config.HTTPTimeout as its timeout is
// used. Ignored if WithTransport is also given.
func WithHTTPClient(client ports.HTTPClient) Option {
	return func(o *options) {
		o.httpClient = client
	}
}

// WithLogger sets a custom logger for structured logging. If not
// provided, a no-op logger is used.
func WithLogger(logger ports.Logger) Option {
	return func(o *options) {
		o.logger = logger
	}
}

// WithEventHandler sets a handler for batcher events. Events are called
// synchronously from the scheduler's drain loop. If not provided, no
// events are emitted.
func WithEventHandler(handler EventHandler) Option {
	return func(o *options) {
		o.eventHandler = handler
	}
}

// WithPlugin registers a plugin to be initialized when the Batcher
// starts. Plugins are initialized in registration order and shut down in
// reverse order.
func WithPlugin(plugin Plugin) Option {
	return func(o *options) {
		o.plugins = append(o.plugins, plugin)
	}
}

// WithPlatformSignals sets the source of device network/power state the
// monitor polls. If not provided, the Batcher starts with a Static source
// reporting disconnected, which only a caller driving it directly (or a
// host wiring in its own adapter) will ever change.
func WithPlatformSignals(signals ports.PlatformSignals) Option {
	return func(o *options) {
		o.platformSignals = signals
	}
}

// WithTransport overrides the built-in HTTP transport entirely, e.g. to
// route requests through a test double or a non-HTTP channel.
func WithTransport(transport ports.Transport) Option {
	return func(o *options) {
		o.transport = transport
	}
}

// WithStore overrides the built-in SQLite-backed store, e.g. with an
// in-memory store for tests.
func WithStore(store ports.Store) Option {
	return func(o *options) {
		o.store = store
	}
}
