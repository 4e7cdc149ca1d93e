package app

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/netbatch/netbatchd/internal/domain"
	"github.com/netbatch/netbatchd/internal/ports"
)

type fakeTransport struct {
	mu        sync.Mutex
	responses map[string]error
	calls     []domain.RequestID
}

func (f *fakeTransport) Send(ctx context.Context, req domain.DeferredRequest) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, req.ID)
	return f.responses[string(req.ID)]
}

type fakeStore struct {
	mu      sync.Mutex
	deleted []domain.RequestID
	failDelete error
}

func (f *fakeStore) Save(ctx context.Context, req domain.DeferredRequest) error { return nil }
func (f *fakeStore) FetchBatch(ctx context.Context, limit int) ([]domain.DeferredRequest, error) {
	return nil, nil
}
func (f *fakeStore) Delete(ctx context.Context, ids []domain.RequestID) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failDelete != nil {
		return f.failDelete
	}
	f.deleted = append(f.deleted, ids...)
	return nil
}
func (f *fakeStore) DeleteExpired(ctx context.Context, now time.Time) (int, error)   { return 0, nil }
func (f *fakeStore) Count(ctx context.Context) (int, error)                          { return 0, nil }
func (f *fakeStore) TotalPayloadSize(ctx context.Context) (int, error)               { return 0, nil }
func (f *fakeStore) Clear(ctx context.Context) error                                 { return nil }
func (f *fakeStore) LogTransmission(ctx context.Context, rec domain.TransmissionLogRecord) error {
	return nil
}
func (f *fakeStore) TransmissionStats(ctx context.Context) (domain.Statistics, error) {
	return domain.Statistics{}, nil
}
func (f *fakeStore) PruneTransmissionLog(ctx context.Context, olderThan time.Time) (int, error) {
	return 0, nil
}
func (f *fakeStore) Close() error { return nil }

type silentLogger struct{}

func (silentLogger) Debug(string, ...ports.Field) {}
func (silentLogger) Info(string, ...ports.Field)  {}
func (silentLogger) Warn(string, ...ports.Field)  {}
func (silentLogger) Error(string, ...ports.Field) {}

func TestTransmitter_Drain_PartialSuccess(t *testing.T) {
	ok1 := domain.DeferredRequest{ID: "ok1", URL: "https://a.example.com/1", Method: "GET"}
	fail := domain.DeferredRequest{ID: "fail", URL: "https://a.example.com/2", Method: "GET"}
	ok2 := domain.DeferredRequest{ID: "ok2", URL: "https://b.example.com/1", Method: "GET"}

	transport := &fakeTransport{responses: map[string]error{
		"fail": &domain.RequestFailedError{Status: 500},
	}}
	store := &fakeStore{}

	tr := NewTransmitter(transport, store, silentLogger{})
	result, err := tr.Drain(context.Background(), []domain.DeferredRequest{ok1, fail, ok2})
	if err != nil {
		t.Fatalf("Drain() error = %v", err)
	}

	if result.SuccessCount != 2 || result.FailureCount != 1 {
		t.Errorf("result = %+v, want SuccessCount=2 FailureCount=1", result)
	}

	store.mu.Lock()
	deleted := append([]domain.RequestID{}, store.deleted...)
	store.mu.Unlock()

	if len(deleted) != 2 {
		t.Fatalf("deleted = %v, want 2 ids", deleted)
	}
	for _, id := range deleted {
		if id == fail.ID {
			t.Errorf("deleted the failed request %v", id)
		}
	}
}

func TestTransmitter_Drain_Empty(t *testing.T) {
	tr := NewTransmitter(&fakeTransport{}, &fakeStore{}, silentLogger{})
	result, err := tr.Drain(context.Background(), nil)
	if err != nil {
		t.Fatalf("Drain() error = %v", err)
	}
	if result.SuccessCount != 0 || result.FailureCount != 0 {
		t.Errorf("result = %+v, want zero", result)
	}
}

func TestTransmitter_Drain_PreservesPerHostOrder(t *testing.T) {
	reqs := []domain.DeferredRequest{
		{ID: "1", URL: "https://a.example.com/1", Method: "GET"},
		{ID: "2", URL: "https://a.example.com/2", Method: "GET"},
		{ID: "3", URL: "https://a.example.com/3", Method: "GET"},
	}
	transport := &fakeTransport{responses: map[string]error{}}
	store := &fakeStore{}

	tr := NewTransmitter(transport, store, silentLogger{})
	if _, err := tr.Drain(context.Background(), reqs); err != nil {
		t.Fatalf("Drain() error = %v", err)
	}

	transport.mu.Lock()
	calls := append([]domain.RequestID{}, transport.calls...)
	transport.mu.Unlock()

	want := []domain.RequestID{"1", "2", "3"}
	if len(calls) != len(want) {
		t.Fatalf("calls = %v, want %v", calls, want)
	}
	for i := range want {
		if calls[i] != want[i] {
			t.Errorf("calls[%d] = %v, want %v", i, calls[i], want[i])
		}
	}
}
