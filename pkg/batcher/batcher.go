package batcher

import (
	"context"
	"net/http"
	"sync"
	"sync/atomic"
	"time"

	"github.com/netbatch/netbatchd/internal/adapters/httptransport"
	logAdapter "github.com/netbatch/netbatchd/internal/adapters/log"
	"github.com/netbatch/netbatchd/internal/adapters/platform"
	"github.com/netbatch/netbatchd/internal/adapters/sqlstore"
	"github.com/netbatch/netbatchd/internal/app"
	"github.com/netbatch/netbatchd/internal/domain"
	"github.com/netbatch/netbatchd/internal/ports"
)

// Batcher is an energy-aware request batcher that can be embedded in other
// applications. Use New() to create an instance, then Start() to begin
// draining in the background.
type Batcher struct {
	config Config
	opts   options

	lifecycle   *app.Lifecycle
	monitor     *app.Monitor
	classifier  *app.Classifier
	scheduler   *app.Scheduler
	transmitter *app.Transmitter

	store     ports.Store
	transport ports.Transport
	logger    ports.Logger

	plugins []Plugin

	enqueueEnabled int32 // atomic bool; see SetEnabled

	mu     sync.RWMutex
	ctx    context.Context
	cancel context.CancelFunc
}

// New creates a new Batcher from cfg. The instance is created in
// StateStopped; call Start() to begin draining. Returns an error if the
// configuration is invalid or the store cannot be opened.
func New(cfg Config, opts ...Option) (*Batcher, error) {
	cfg.SetDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	o := options{
		httpClient:      &http.Client{Timeout: cfg.HTTPTimeout},
		platformSignals: platform.NewStatic(),
	}
	for _, opt := range opts {
		opt(&o)
	}

	var logger ports.Logger
	if o.logger != nil {
		logger = o.logger
	} else {
		logger = logAdapter.NewNoopLogger()
	}

	store := o.store
	if store == nil {
		var err error
		store, err = sqlstore.Open(cfg.StorePath, logger)
		if err != nil {
			return nil, err
		}
	}

	transport := o.transport
	if transport == nil {
		transport = httptransport.New(o.httpClient, logger, cfg.HTTPTimeout)
	}

	var emitter eventEmitterWrapper
	if o.eventHandler != nil {
		emitter = eventEmitterWrapper{handler: o.eventHandler}
	}

	lifecycle := app.NewLifecycle(logger, &emitter)
	monitor := app.NewMonitor(o.platformSignals, logger)
	monitor.SetPollInterval(cfg.PollInterval)
	classifier := app.NewClassifier(cfg.Configuration)
	transmitter := app.NewTransmitter(transport, store, logger)
	scheduler := app.NewScheduler(store, transmitter, monitor, logger, &emitter, cfg.Configuration)

	b := &Batcher{
		config:      cfg,
		opts:        o,
		lifecycle:   lifecycle,
		monitor:     monitor,
		classifier:  classifier,
		scheduler:   scheduler,
		transmitter: transmitter,
		store:       store,
		transport:   transport,
		logger:      logger,
		plugins:     o.plugins,
	}
	atomic.StoreInt32(&b.enqueueEnabled, 1)
	return b, nil
}

// Start begins polling device state and draining the queue in the
// background. Returns immediately after starting the internal goroutines.
// Returns an error if already running or if plugin initialization fails.
// The provided context governs the lifetime of the running Batcher; Stop
// can also be used to end it explicitly.
func (b *Batcher) Start(ctx context.Context) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if !b.lifecycle.CanStart() {
		return domain.ErrAlreadyRunning
	}

	if err := b.lifecycle.TransitionTo(app.StateStarting, "Start() called"); err != nil {
		return err
	}

	runCtx, cancel := context.WithCancel(ctx)
	b.ctx = runCtx
	b.cancel = cancel
	b.lifecycle.SetCancel(cancel)

	pluginCfg := PluginConfig{
		StorePath:          b.config.StorePath,
		Store:              b.store,
		SetClassifierRules: b.classifier.SetRules,
		Logger:             b.logger,
	}
	for _, p := range b.plugins {
		if err := p.Initialize(runCtx, pluginCfg); err != nil {
			b.logger.Error("plugin initialization failed",
				ports.String("plugin", p.Name()),
				ports.Err(err))
			cancel()
			_ = b.lifecycle.TransitionTo(app.StateCrashed, "plugin init failed: "+p.Name())
			return err
		}
		b.logger.Info("plugin initialized", ports.String("plugin", p.Name()))
	}

	b.lifecycle.AddWorker()
	go func() {
		defer b.lifecycle.WorkerDone()
		b.monitor.Run(runCtx)
	}()

	if err := b.lifecycle.TransitionTo(app.StateRunning, "scheduler starting"); err != nil {
		b.logger.Error("failed to transition to running", ports.Err(err))
		cancel()
		return err
	}

	b.lifecycle.AddWorker()
	go func() {
		defer b.lifecycle.WorkerDone()
		b.scheduler.Run(runCtx)
	}()

	return nil
}

// Stop gracefully shuts down the Batcher. If flush_on_background is set in
// the configuration, one forced drain of up to max_batch_size pending
// requests runs before the background goroutines are canceled; it is
// skipped if a drain is already in flight.
// Waits up to 30 seconds before forcing shutdown.
// Returns nil on graceful shutdown, domain.ErrShutdownTimeout if forced.
func (b *Batcher) Stop() error {
	b.mu.Lock()

	if !b.lifecycle.CanStop() {
		b.mu.Unlock()
		return domain.ErrNotRunning
	}

	if err := b.lifecycle.TransitionTo(app.StateStopping, "Stop() called"); err != nil {
		b.mu.Unlock()
		return err
	}

	if b.config.FlushOnBackground && b.ctx != nil {
		b.scheduler.Flush(b.ctx)
	}

	if b.cancel != nil {
		b.cancel()
	}
	b.mu.Unlock()

	err := b.lifecycle.WaitWithTimeout(app.ShutdownTimeout)

	shutdownCtx := context.Background()
	for i := len(b.plugins) - 1; i >= 0; i-- {
		p := b.plugins[i]
		if shutdownErr := p.Shutdown(shutdownCtx); shutdownErr != nil {
			b.logger.Error("plugin shutdown failed",
				ports.String("plugin", p.Name()),
				ports.Err(shutdownErr))
		} else {
			b.logger.Info("plugin shutdown complete", ports.String("plugin", p.Name()))
		}
	}

	if err != nil {
		_ = b.lifecycle.TransitionTo(app.StateCrashed, "shutdown timeout")
	} else {
		_ = b.lifecycle.TransitionTo(app.StateStopped, "graceful shutdown")
	}

	return err
}

// Status returns the current lifecycle state. Safe to call concurrently
// from any goroutine.
func (b *Batcher) Status() State {
	return convertState(b.lifecycle.State())
}

// Enqueue submits a request. If priority is PriorityAuto, the configured
// domain classifier assigns one. Immediate-priority requests bypass the
// queue entirely: Enqueue calls the transport directly and returns once
// that call completes, surfacing a *domain.RequestFailedError for a
// non-2xx response. Every other priority is persisted to the durable
// store and returns as soon as the write completes; transmission happens
// later, on a drain. For an immediate request the returned id is freshly
// generated and never stored, so it cannot be used for any later lookup.
func (b *Batcher) Enqueue(ctx context.Context, method, rawURL string, headers map[string]string, body []byte, priority Priority) (RequestID, error) {
	if atomic.LoadInt32(&b.enqueueEnabled) == 0 {
		return "", domain.ErrDisabled
	}
	if domain.HostOf(rawURL) == "" {
		return "", domain.ErrInvalidRequest
	}

	if priority == PriorityAuto {
		priority = b.classifier.Classify(rawURL)
	}

	id := domain.NewRequestID()
	req := domain.DeferredRequest{
		ID:          id,
		URL:         rawURL,
		Method:      method,
		Headers:     headers,
		Body:        body,
		Priority:    priority,
		EnqueuedAt:  time.Now(),
		MaxDeferral: b.config.MaxDeferralTime,
	}

	if priority == domain.PriorityImmediate {
		if err := b.transport.Send(ctx, req); err != nil {
			return id, err
		}
		b.monitor.RecordUserNetworkActivity()
		b.scheduler.Notify(app.TriggerEnqueue)
		return id, nil
	}

	if err := b.store.Save(ctx, req); err != nil {
		return "", err
	}
	b.scheduler.Notify(app.TriggerEnqueue)
	return id, nil
}

// Flush forces an immediate drain attempt, bypassing the policy
// evaluator. It blocks until that attempt completes or is skipped because
// a drain is already in flight.
func (b *Batcher) Flush(ctx context.Context) {
	b.scheduler.Flush(ctx)
}

// SetEnabled pauses (false) or resumes (true) the batcher. While
// disabled, Enqueue returns ErrDisabled and the periodic tick and
// event-triggered drains stop firing; Flush still works, since it is a
// direct caller action.
func (b *Batcher) SetEnabled(enabled bool) {
	if enabled {
		atomic.StoreInt32(&b.enqueueEnabled, 1)
	} else {
		atomic.StoreInt32(&b.enqueueEnabled, 0)
	}
	b.scheduler.SetEnabled(enabled)
}

// NotifyUserNetworkActivity records that the caller just made its own
// network request outside the batcher, e.g. a foreground API call. If
// piggyback_on_user_requests is set, this also nudges the scheduler to
// consider a drain while the radio is warm.
func (b *Batcher) NotifyUserNetworkActivity() {
	b.monitor.RecordUserNetworkActivity()
	if b.config.PiggybackOnUserRequests {
		b.scheduler.Notify(app.TriggerUserActivity)
	}
}

// Statistics returns the current queue and transmission aggregates
// composed with a live device-state snapshot. Returns a zero Statistics
// if enable_metrics is false.
func (b *Batcher) Statistics(ctx context.Context) (Statistics, error) {
	if !b.config.EnableMetrics {
		return Statistics{}, nil
	}

	stats, err := b.store.TransmissionStats(ctx)
	if err != nil {
		return Statistics{}, err
	}

	state := b.monitor.State()
	stats.NetworkType = state.NetworkType
	stats.IsCharging = state.IsCharging
	stats.BatteryLevel = state.BatteryLevel
	return stats, nil
}

// Subscribe returns a channel of device-state snapshots, useful for a
// host that wants to react to connectivity or power changes itself. The
// returned cancel function must be called once the caller is done
// reading.
func (b *Batcher) Subscribe() (<-chan domain.DeviceState, func()) {
	return b.monitor.Subscribe()
}
