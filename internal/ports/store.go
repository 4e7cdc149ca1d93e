package ports

import (
	"context"
	"time"

	"github.com/netbatch/netbatchd/internal/domain"
)

// Store is the durable persistence port for the pending-request queue and
// the transmission log. Implementations must survive a crash between Save
// and the corresponding Delete: a request that was saved but never
// transmitted must still be present on the next FetchBatch after restart.
type Store interface {
	// Save persists a single deferred request. Priority == PriorityImmediate
	// must never be passed here; immediate requests bypass the store.
	Save(ctx context.Context, req domain.DeferredRequest) error

	// FetchBatch returns up to limit pending requests ordered by priority
	// (ascending, so immediate-adjacent priorities sort first) and then by
	// EnqueuedAt ascending within the same priority.
	FetchBatch(ctx context.Context, limit int) ([]domain.DeferredRequest, error)

	// Delete removes the requests with the given IDs, e.g. after a
	// successful transmission. Deleting an ID that does not exist is not an
	// error.
	Delete(ctx context.Context, ids []domain.RequestID) error

	// DeleteExpired removes every request whose deadline has passed as of
	// now and returns how many were removed.
	DeleteExpired(ctx context.Context, now time.Time) (int, error)

	// Count returns the number of pending requests.
	Count(ctx context.Context) (int, error)

	// TotalPayloadSize returns the summed PayloadSize of every pending
	// request, used by the forcing rule that drains on queue-byte pressure.
	TotalPayloadSize(ctx context.Context) (int, error)

	// Clear removes every pending request; the transmission log is kept.
	Clear(ctx context.Context) error

	// LogTransmission appends a record to the transmission log.
	LogTransmission(ctx context.Context, rec domain.TransmissionLogRecord) error

	// TransmissionStats aggregates the transmission log into the running
	// totals the façade's Statistics operation reports.
	TransmissionStats(ctx context.Context) (domain.Statistics, error)

	// PruneTransmissionLog removes log records older than olderThan and
	// returns how many were removed. The log is append-only otherwise, so
	// something has to bound its growth on a long-running device.
	PruneTransmissionLog(ctx context.Context, olderThan time.Time) (int, error)

	// Close releases the underlying storage handle.
	Close() error
}
