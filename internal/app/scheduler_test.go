package app

import (
	"context"
	"testing"
	"time"

	"github.com/netbatch/netbatchd/internal/domain"
	"github.com/netbatch/netbatchd/internal/ports"
)

type fakePlatformSignals struct{}

func (fakePlatformSignals) NetworkType(ctx context.Context) (ports.NetworkKind, error) {
	return ports.NetworkKindNone, nil
}
func (fakePlatformSignals) IsCharging(ctx context.Context) (bool, error)    { return false, nil }
func (fakePlatformSignals) BatteryLevel(ctx context.Context) (float64, error) { return 1.0, nil }

type countingStore struct {
	fakeStore
	pending []domain.DeferredRequest
}

func (c *countingStore) FetchBatch(ctx context.Context, limit int) ([]domain.DeferredRequest, error) {
	if limit >= 0 && limit < len(c.pending) {
		return c.pending[:limit], nil
	}
	return c.pending, nil
}

func (c *countingStore) Count(ctx context.Context) (int, error) {
	return len(c.pending), nil
}

func (c *countingStore) TotalPayloadSize(ctx context.Context) (int, error) {
	total := 0
	for _, r := range c.pending {
		total += r.PayloadSize()
	}
	return total, nil
}

func newMonitorWithState(state domain.DeviceState) *Monitor {
	m := NewMonitor(fakePlatformSignals{}, silentLogger{})
	m.state = state
	return m
}

func TestScheduler_Flush_IgnoresPolicy(t *testing.T) {
	store := &countingStore{pending: []domain.DeferredRequest{
		{ID: "1", URL: "https://a.example.com", Method: "GET", Priority: domain.PrioritySoon, EnqueuedAt: time.Now()},
	}}
	transport := &fakeTransport{responses: map[string]error{
		"1": errConnFailed,
	}}
	tr := NewTransmitter(transport, store, silentLogger{})

	notConnected := domain.DeviceState{IsConnected: false}
	mon := newMonitorWithState(notConnected)

	cfg := domain.PresetBalanced()
	sched := NewScheduler(store, tr, mon, silentLogger{}, nil, cfg)

	sched.Flush(context.Background())

	if len(transport.calls) != 1 {
		t.Fatalf("transport calls = %d, want 1 (flush should ignore wait policy)", len(transport.calls))
	}
}

func TestScheduler_QueueSizeForcing(t *testing.T) {
	cfg := domain.PresetBalanced()
	cfg.MaxQueueSize = 3
	cfg.MinBatchInterval = time.Hour // would block a non-forced drain

	pending := make([]domain.DeferredRequest, 3)
	for i := range pending {
		pending[i] = domain.DeferredRequest{ID: domain.RequestID(string(rune('a' + i))), URL: "https://a.example.com", Method: "GET", Priority: domain.PriorityDeferrable, EnqueuedAt: time.Now()}
	}
	store := &countingStore{pending: pending}
	transport := &fakeTransport{responses: map[string]error{}}
	tr := NewTransmitter(transport, store, silentLogger{})

	mon := newMonitorWithState(domain.DeviceState{IsConnected: false})
	sched := NewScheduler(store, tr, mon, silentLogger{}, nil, cfg)

	sched.attemptDrain(context.Background(), TriggerEnqueue)

	if len(transport.calls) != 3 {
		t.Fatalf("transport calls = %d, want 3 (queue size should force drain despite min_batch_interval)", len(transport.calls))
	}
}

func TestScheduler_NoConcurrentDrains(t *testing.T) {
	store := &countingStore{pending: []domain.DeferredRequest{
		{ID: "1", URL: "https://a.example.com", Method: "GET", Priority: domain.PrioritySoon, EnqueuedAt: time.Now()},
	}}
	transport := &fakeTransport{responses: map[string]error{}}
	tr := NewTransmitter(transport, store, silentLogger{})
	mon := newMonitorWithState(domain.DeviceState{IsConnected: false})
	cfg := domain.PresetBalanced()
	sched := NewScheduler(store, tr, mon, silentLogger{}, nil, cfg)

	sched.drainMu.Lock()
	sched.isTransmitting = true
	sched.drainMu.Unlock()

	sched.attemptDrain(context.Background(), TriggerManualFlush)

	if len(transport.calls) != 0 {
		t.Fatalf("transport calls = %d, want 0: a drain already in flight must block a new one", len(transport.calls))
	}
}

var errConnFailed = &domain.RequestFailedError{Status: 0}
