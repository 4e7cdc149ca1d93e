package batcher

import (
	"context"

	"github.com/netbatch/netbatchd/internal/ports"
)

// Plugin is optional add-on behavior initialized when the Batcher starts
// and shut down when it stops. Built-in plugins (plugins/domainrules,
// plugins/retention) implement this; so can caller-supplied plugins
// registered via WithPlugin.
type Plugin interface {
	// Name identifies the plugin in logs and error messages.
	Name() string

	// Initialize is called once, in registration order, when Start runs.
	// A returned error aborts Start and crashes the Batcher.
	Initialize(ctx context.Context, cfg PluginConfig) error

	// Shutdown is called once, in reverse registration order, when Stop
	// runs. Errors are logged but do not abort shutdown.
	Shutdown(ctx context.Context) error
}

// PluginConfig is what a Plugin receives at Initialize time: the pieces of
// the running Batcher it is allowed to touch.
type PluginConfig struct {
	// StorePath is the path to the durable request queue's database.
	StorePath string

	// Store is the same store the scheduler drains from. A retention
	// plugin prunes it directly; most plugins never need it.
	Store ports.Store

	// SetClassifierRules lets a plugin (e.g. domainrules) hot-swap the
	// immediate/deferrable domain lists the façade classifies new
	// requests with. Nil if the Batcher has no classifier, which never
	// happens in practice but keeps the field optional in shape.
	SetClassifierRules func(immediateDomains, deferrableDomains []string)

	Logger ports.Logger
}
