// Package domainrules provides hot-reloadable domain classification rules
// for the batcher. When enabled, it watches a TOML rules file and pushes
// updated immediate/deferrable domain lists into the classifier without
// requiring a restart.
package domainrules

import (
	"context"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	toml "github.com/pelletier/go-toml/v2"

	"github.com/netbatch/netbatchd/pkg/batcher"
)

// rulesFile is the on-disk shape of the rules file.
type rulesFile struct {
	ImmediateDomains  []string `toml:"immediate_domains"`
	DeferrableDomains []string `toml:"deferrable_domains"`
}

// Plugin watches a rules file and reclassifies new requests as it changes.
type Plugin struct {
	mu sync.Mutex

	path          string
	debounceDelay time.Duration

	setRules func(immediateDomains, deferrableDomains []string)
	logger   batcher.Logger
	cancel   context.CancelFunc
	wg       sync.WaitGroup
	debounce *time.Timer
}

// Config holds configuration options for the domain rules plugin.
type Config struct {
	// Path is the rules TOML file to watch. Required.
	Path string

	// DebounceDelay is the delay to wait after a file change before
	// reloading. Default: 100 milliseconds.
	DebounceDelay time.Duration
}

// New creates a new domain rules plugin with the given configuration.
func New(cfg Config) *Plugin {
	if cfg.DebounceDelay <= 0 {
		cfg.DebounceDelay = 100 * time.Millisecond
	}
	return &Plugin{
		path:          cfg.Path,
		debounceDelay: cfg.DebounceDelay,
	}
}

// Name returns the plugin identifier.
func (p *Plugin) Name() string { return "domainrules" }

// Initialize loads the rules file and starts watching it for changes.
func (p *Plugin) Initialize(ctx context.Context, cfg batcher.PluginConfig) error {
	p.mu.Lock()
	p.setRules = cfg.SetClassifierRules
	p.logger = cfg.Logger
	p.mu.Unlock()

	if p.path == "" || p.setRules == nil {
		p.logger.Warn("domainrules disabled: no rules path configured")
		return nil
	}

	p.loadOnce()

	watchCtx, cancel := context.WithCancel(ctx)
	p.cancel = cancel

	ready := make(chan struct{})
	p.wg.Add(1)
	go p.watchLoop(watchCtx, ready)
	<-ready

	p.logger.Info("domainrules plugin initialized")
	return nil
}

// Shutdown stops the file watcher.
func (p *Plugin) Shutdown(ctx context.Context) error {
	if p.cancel != nil {
		p.cancel()
	}
	p.wg.Wait()
	return nil
}

func (p *Plugin) watchLoop(ctx context.Context, ready chan<- struct{}) {
	defer p.wg.Done()

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		close(ready)
		p.logger.Error("domainrules: failed to create watcher")
		return
	}
	defer watcher.Close()

	dir := filepath.Dir(p.path)
	err = watcher.Add(dir)
	close(ready)
	if err != nil {
		p.logger.Error("domainrules: failed to watch directory")
		return
	}

	for {
		select {
		case <-ctx.Done():
			return

		case event, ok := <-watcher.Events:
			if !ok {
				return
			}
			if filepath.Clean(event.Name) != filepath.Clean(p.path) {
				continue
			}
			if event.Op&(fsnotify.Write|fsnotify.Create) == 0 {
				continue
			}
			p.debounceReload(ctx)

		case _, ok := <-watcher.Errors:
			if !ok {
				return
			}
			p.logger.Error("domainrules: watcher error")
		}
	}
}

func (p *Plugin) debounceReload(ctx context.Context) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.debounce != nil {
		p.debounce.Stop()
	}
	p.debounce = time.AfterFunc(p.debounceDelay, p.loadOnce)
	_ = ctx
}

func (p *Plugin) loadOnce() {
	data, err := os.ReadFile(p.path)
	if err != nil {
		p.logger.Error("domainrules: read failed")
		return
	}

	var rf rulesFile
	if err := toml.Unmarshal(data, &rf); err != nil {
		p.logger.Error("domainrules: parse failed")
		return
	}

	p.setRules(rf.ImmediateDomains, rf.DeferrableDomains)
	p.logger.Info("domainrules: rules reloaded")
}

// Ensure Plugin implements batcher.Plugin.
var _ batcher.Plugin = (*Plugin)(nil)
