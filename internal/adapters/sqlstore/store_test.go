package sqlstore

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/netbatch/netbatchd/internal/domain"
	"github.com/netbatch/netbatchd/internal/ports"
)

// testLogger implements ports.Logger by discarding all log messages.
type testLogger struct{}

func (testLogger) Debug(string, ...ports.Field) {}
func (testLogger) Info(string, ...ports.Field)  {}
func (testLogger) Warn(string, ...ports.Field)  {}
func (testLogger) Error(string, ...ports.Field) {}

func newTestStore(t *testing.T) *Store {
	t.Helper()
	path := filepath.Join(t.TempDir(), "queue.db")
	s, err := Open(path, testLogger{})
	if err != nil {
		t.Fatalf("Open() error = %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func TestStore_SaveAndFetchBatch_OrdersByPriorityThenAge(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	base := time.Now()

	reqs := []domain.DeferredRequest{
		{ID: domain.NewRequestID(), URL: "https://a.example.com", Method: "GET", Priority: domain.PriorityBulk, EnqueuedAt: base},
		{ID: domain.NewRequestID(), URL: "https://b.example.com", Method: "GET", Priority: domain.PrioritySoon, EnqueuedAt: base.Add(time.Second)},
		{ID: domain.NewRequestID(), URL: "https://c.example.com", Method: "GET", Priority: domain.PrioritySoon, EnqueuedAt: base},
	}
	for _, r := range reqs {
		if err := s.Save(ctx, r); err != nil {
			t.Fatalf("Save() error = %v", err)
		}
	}

	got, err := s.FetchBatch(ctx, 10)
	if err != nil {
		t.Fatalf("FetchBatch() error = %v", err)
	}
	if len(got) != 3 {
		t.Fatalf("got %d requests, want 3", len(got))
	}
	if got[0].ID != reqs[2].ID || got[1].ID != reqs[1].ID || got[2].ID != reqs[0].ID {
		t.Errorf("order = %v, %v, %v; want c, b, a", got[0].URL, got[1].URL, got[2].URL)
	}
}

func TestStore_Delete_RemovesOnlyGivenIDs(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	a := domain.DeferredRequest{ID: domain.NewRequestID(), URL: "https://a.example.com", Method: "GET", Priority: domain.PrioritySoon, EnqueuedAt: time.Now()}
	b := domain.DeferredRequest{ID: domain.NewRequestID(), URL: "https://b.example.com", Method: "GET", Priority: domain.PrioritySoon, EnqueuedAt: time.Now()}
	s.Save(ctx, a)
	s.Save(ctx, b)

	if err := s.Delete(ctx, []domain.RequestID{a.ID}); err != nil {
		t.Fatalf("Delete() error = %v", err)
	}

	got, err := s.FetchBatch(ctx, 10)
	if err != nil {
		t.Fatalf("FetchBatch() error = %v", err)
	}
	if len(got) != 1 || got[0].ID != b.ID {
		t.Fatalf("got %v, want only b", got)
	}
}

func TestStore_DeleteExpired(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	now := time.Now()

	expired := domain.DeferredRequest{
		ID: domain.NewRequestID(), URL: "https://a.example.com", Method: "GET",
		Priority: domain.PriorityBulk, EnqueuedAt: now.Add(-time.Hour), MaxDeferral: time.Minute,
	}
	fresh := domain.DeferredRequest{
		ID: domain.NewRequestID(), URL: "https://b.example.com", Method: "GET",
		Priority: domain.PriorityBulk, EnqueuedAt: now, MaxDeferral: time.Hour,
	}
	s.Save(ctx, expired)
	s.Save(ctx, fresh)

	n, err := s.DeleteExpired(ctx, now)
	if err != nil {
		t.Fatalf("DeleteExpired() error = %v", err)
	}
	if n != 1 {
		t.Fatalf("DeleteExpired() removed %d, want 1", n)
	}

	count, _ := s.Count(ctx)
	if count != 1 {
		t.Errorf("Count() = %d, want 1", count)
	}
}

func TestStore_TransmissionStats_Aggregates(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	s.LogTransmission(ctx, domain.TransmissionLogRecord{Timestamp: time.Now(), RequestCount: 3, TotalBytes: 900, TriggerReason: "queue_size"})
	s.LogTransmission(ctx, domain.TransmissionLogRecord{Timestamp: time.Now(), RequestCount: 2, TotalBytes: 600, TriggerReason: "min_interval"})

	stats, err := s.TransmissionStats(ctx)
	if err != nil {
		t.Fatalf("TransmissionStats() error = %v", err)
	}
	if stats.BatchCount != 2 || stats.TotalRequests != 5 || stats.TotalBytes != 1500 {
		t.Errorf("stats = %+v, want BatchCount=2 TotalRequests=5 TotalBytes=1500", stats)
	}
}
