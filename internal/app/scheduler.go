package app

import (
	"context"
	"sync"
	"time"

	"github.com/netbatch/netbatchd/internal/domain"
	"github.com/netbatch/netbatchd/internal/ports"
)

// DrainTrigger identifies what caused the Scheduler to consider a drain.
type DrainTrigger int

const (
	TriggerTick DrainTrigger = iota
	TriggerEnqueue
	TriggerUserActivity
	TriggerLifecycleBackground
	TriggerManualFlush
)

func (t DrainTrigger) String() string {
	switch t {
	case TriggerEnqueue:
		return "enqueue"
	case TriggerUserActivity:
		return "user_activity"
	case TriggerLifecycleBackground:
		return "lifecycle_background"
	case TriggerManualFlush:
		return "manual_flush"
	default:
		return "tick"
	}
}

// DrainEmitter is notified after each drain attempt that actually ran.
type DrainEmitter interface {
	OnDrainComplete(result DrainResult, trigger DrainTrigger)
	OnDrainError(err error, trigger DrainTrigger)
}

// Scheduler is the single serialization point for drain attempts: the
// generalization of the teacher's Agent+Batcher pair into an event-driven
// loop with the same "one thing in flight, coalesce bursts" shape. There is
// no per-request backoff: failed requests stay in the store and are retried
// on a later drain, paced by min_batch_interval and the policy evaluator.
type Scheduler struct {
	store       ports.Store
	transmitter *Transmitter
	monitor     *Monitor
	logger      ports.Logger
	emitter     DrainEmitter

	configMu sync.RWMutex
	config   domain.Configuration

	enabledMu sync.RWMutex
	enabled   bool

	drainMu               sync.Mutex
	isTransmitting        bool
	lastTransmissionTime  time.Time

	events   chan DrainTrigger
	configCh chan domain.Configuration
}

// NewScheduler creates a Scheduler. It starts enabled.
func NewScheduler(store ports.Store, transmitter *Transmitter, monitor *Monitor, logger ports.Logger, emitter DrainEmitter, cfg domain.Configuration) *Scheduler {
	return &Scheduler{
		store:       store,
		transmitter: transmitter,
		monitor:     monitor,
		logger:      logger,
		emitter:     emitter,
		config:      cfg,
		enabled:     true,
		events:      make(chan DrainTrigger, 16),
		configCh:    make(chan domain.Configuration, 1),
	}
}

// SetEnabled pauses (false) or resumes (true) the periodic tick and
// event-triggered drains; events that arrive while disabled are discarded.
// This flag only gates the scheduler: rejecting Enqueue while disabled is
// the façade's job. Flush is a direct caller action, not gated by this flag.
func (s *Scheduler) SetEnabled(enabled bool) {
	s.enabledMu.Lock()
	s.enabled = enabled
	s.enabledMu.Unlock()
}

func (s *Scheduler) isEnabled() bool {
	s.enabledMu.RLock()
	defer s.enabledMu.RUnlock()
	return s.enabled
}

// SetConfig hot-swaps the configuration snapshot; periodic ticks are
// rescheduled to the new min_batch_interval.
func (s *Scheduler) SetConfig(cfg domain.Configuration) {
	s.configMu.Lock()
	s.config = cfg
	s.configMu.Unlock()

	select {
	case s.configCh <- cfg:
	default:
	}
}

func (s *Scheduler) configSnapshot() domain.Configuration {
	s.configMu.RLock()
	defer s.configMu.RUnlock()
	return s.config
}

// Notify posts a maybe-drain event. Non-blocking: a full inbox means a
// drain decision is already pending, so the event is redundant.
func (s *Scheduler) Notify(trigger DrainTrigger) {
	select {
	case s.events <- trigger:
	default:
	}
}

// Flush forces an immediate drain attempt, bypassing the policy evaluator
// and the enabled gate. Concurrent flushes coalesce via the same
// isTransmitting guard every other trigger uses.
func (s *Scheduler) Flush(ctx context.Context) {
	s.attemptDrain(ctx, TriggerManualFlush)
}

// Run is the Scheduler's event loop. It exits when ctx is canceled.
func (s *Scheduler) Run(ctx context.Context) {
	cfg := s.configSnapshot()
	ticker := time.NewTicker(cfg.MinBatchInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return

		case newCfg := <-s.configCh:
			ticker.Reset(newCfg.MinBatchInterval)

		case <-ticker.C:
			if s.isEnabled() {
				s.attemptDrain(ctx, TriggerTick)
			}

		case trigger := <-s.events:
			s.drainCoalescedEvents(trigger)
			if !s.isEnabled() {
				continue
			}
			s.attemptDrain(ctx, trigger)
		}
	}
}

// drainCoalescedEvents consumes every event already buffered in the inbox
// without blocking, so a burst of enqueue/user-activity triggers collapses
// into the single drain attemptDrain is about to make.
func (s *Scheduler) drainCoalescedEvents(first DrainTrigger) {
	for {
		select {
		case <-s.events:
		default:
			return
		}
	}
}

func (s *Scheduler) attemptDrain(ctx context.Context, trigger DrainTrigger) {
	s.drainMu.Lock()
	if s.isTransmitting {
		s.drainMu.Unlock()
		return
	}
	s.isTransmitting = true
	s.drainMu.Unlock()

	defer func() {
		s.drainMu.Lock()
		s.isTransmitting = false
		s.drainMu.Unlock()
	}()

	cfg := s.configSnapshot()
	now := time.Now()

	if removed, err := s.store.DeleteExpired(ctx, now); err != nil {
		s.logger.Warn("delete_expired failed", ports.Err(err))
	} else if removed > 0 && cfg.EnableLogging {
		s.logger.Info("expired requests dropped", ports.Int("count", removed))
	}

	forced := trigger == TriggerManualFlush ||
		(trigger == TriggerLifecycleBackground && cfg.FlushOnBackground)

	if !forced {
		count, err := s.store.Count(ctx)
		if err != nil {
			s.logger.Warn("count failed", ports.Err(err))
			return
		}
		totalBytes, err := s.store.TotalPayloadSize(ctx)
		if err != nil {
			s.logger.Warn("total_payload_size failed", ports.Err(err))
			return
		}
		forced = count >= cfg.MaxQueueSize || totalBytes >= cfg.MaxPayloadSize
	}

	if !forced {
		s.drainMu.Lock()
		last := s.lastTransmissionTime
		s.drainMu.Unlock()

		if !last.IsZero() && now.Sub(last) < cfg.MinBatchInterval {
			return
		}

		decision := EvaluatePolicy(s.monitor.State(), cfg, domain.PriorityDeferrable)
		if !decision.Transmit {
			return
		}
	}

	batch, err := s.store.FetchBatch(ctx, cfg.MaxBatchSize)
	if err != nil {
		s.logger.Warn("fetch_batch failed", ports.Err(err))
		if s.emitter != nil {
			s.emitter.OnDrainError(err, trigger)
		}
		return
	}
	if len(batch) == 0 {
		return
	}

	result, err := s.transmitter.Drain(ctx, batch)
	if err != nil {
		s.logger.Warn("drain aborted by store error", ports.Err(err))
		if s.emitter != nil {
			s.emitter.OnDrainError(err, trigger)
		}
		return
	}

	s.drainMu.Lock()
	s.lastTransmissionTime = now
	s.drainMu.Unlock()

	record := domain.TransmissionLogRecord{
		Timestamp:     now,
		RequestCount:  result.SuccessCount,
		TotalBytes:    result.SuccessBytes,
		NetworkType:   s.monitor.State().NetworkType,
		IsCharging:    s.monitor.State().IsCharging,
		TriggerReason: trigger.String(),
	}
	if err := s.store.LogTransmission(ctx, record); err != nil {
		s.logger.Warn("log_transmission failed", ports.Err(err))
	}

	if cfg.EnableLogging {
		s.logger.Info("drain complete",
			ports.String("trigger", trigger.String()),
			ports.Int("success", result.SuccessCount),
			ports.Int("failure", result.FailureCount),
		)
	}
	if s.emitter != nil {
		s.emitter.OnDrainComplete(result, trigger)
	}
}
