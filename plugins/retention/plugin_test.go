package retention

import (
	"context"
	"sync"
	"testing"
	"time"

	logAdapter "github.com/netbatch/netbatchd/internal/adapters/log"
	"github.com/netbatch/netbatchd/internal/domain"
	"github.com/netbatch/netbatchd/pkg/batcher"
)

type fakeStore struct {
	mu sync.Mutex

	expiredCalls int
	prunedCalls  int
	prunedBefore time.Time
}

func (f *fakeStore) Save(ctx context.Context, req domain.DeferredRequest) error { return nil }
func (f *fakeStore) FetchBatch(ctx context.Context, limit int) ([]domain.DeferredRequest, error) {
	return nil, nil
}
func (f *fakeStore) Delete(ctx context.Context, ids []domain.RequestID) error { return nil }
func (f *fakeStore) DeleteExpired(ctx context.Context, now time.Time) (int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.expiredCalls++
	return 0, nil
}
func (f *fakeStore) Count(ctx context.Context) (int, error)            { return 0, nil }
func (f *fakeStore) TotalPayloadSize(ctx context.Context) (int, error) { return 0, nil }
func (f *fakeStore) Clear(ctx context.Context) error                   { return nil }
func (f *fakeStore) LogTransmission(ctx context.Context, rec domain.TransmissionLogRecord) error {
	return nil
}
func (f *fakeStore) TransmissionStats(ctx context.Context) (domain.Statistics, error) {
	return domain.Statistics{}, nil
}
func (f *fakeStore) PruneTransmissionLog(ctx context.Context, olderThan time.Time) (int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.prunedCalls++
	f.prunedBefore = olderThan
	return 1, nil
}
func (f *fakeStore) Close() error { return nil }

func (f *fakeStore) calls() (expired, pruned int) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.expiredCalls, f.prunedCalls
}

func TestPlugin_Name(t *testing.T) {
	p := New(DefaultConfig())
	if p.Name() != "retention" {
		t.Errorf("Name() = %v, want retention", p.Name())
	}
}

func TestPlugin_RunsImmediatelyOnStart(t *testing.T) {
	store := &fakeStore{}
	p := New(Config{
		CheckInterval:  time.Hour,
		LogMaxAge:      24 * time.Hour,
		RunImmediately: true,
	})

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	err := p.Initialize(ctx, batcher.PluginConfig{
		Store:  store,
		Logger: logAdapter.NewNoopLogger(),
	})
	if err != nil {
		t.Fatalf("Initialize() error = %v", err)
	}
	defer p.Shutdown(ctx)

	deadline := time.Now().Add(time.Second)
	for time.Now().Before(deadline) {
		expired, pruned := store.calls()
		if expired >= 1 && pruned >= 1 {
			return
		}
		time.Sleep(10 * time.Millisecond)
	}
	t.Fatal("pruning did not run on startup")
}

func TestPlugin_PrunesOnInterval(t *testing.T) {
	store := &fakeStore{}
	p := New(Config{
		CheckInterval:  20 * time.Millisecond,
		LogMaxAge:      time.Hour,
		RunImmediately: false,
	})

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	err := p.Initialize(ctx, batcher.PluginConfig{
		Store:  store,
		Logger: logAdapter.NewNoopLogger(),
	})
	if err != nil {
		t.Fatalf("Initialize() error = %v", err)
	}
	defer p.Shutdown(ctx)

	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		_, pruned := store.calls()
		if pruned >= 2 {
			return
		}
		time.Sleep(10 * time.Millisecond)
	}
	t.Fatal("pruning did not run on the configured interval")
}

func TestPlugin_DisabledWhenStoreNil(t *testing.T) {
	p := New(DefaultConfig())

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if err := p.Initialize(ctx, batcher.PluginConfig{Logger: logAdapter.NewNoopLogger()}); err != nil {
		t.Fatalf("Initialize() error = %v", err)
	}
	defer p.Shutdown(ctx)
}
