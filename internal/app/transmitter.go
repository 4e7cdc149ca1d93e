package app

import (
	"context"
	"errors"
	"sync"

	"golang.org/x/sync/errgroup"

	"github.com/netbatch/netbatchd/internal/domain"
	"github.com/netbatch/netbatchd/internal/ports"
)

// DrainResult is what the Transmitter hands back to the Scheduler after one
// drain attempt.
type DrainResult struct {
	SuccessCount int
	SuccessBytes int64
	FailureCount int
}

// Transmitter groups a batch by host and fans the groups out concurrently,
// one goroutine per host via errgroup, while preserving submission order
// within each host group — splitting a single host across workers would
// give up the connection-reuse benefit the grouping exists for.
type Transmitter struct {
	transport ports.Transport
	store     ports.Store
	logger    ports.Logger
}

// NewTransmitter creates a Transmitter over transport and store.
func NewTransmitter(transport ports.Transport, store ports.Store, logger ports.Logger) *Transmitter {
	return &Transmitter{transport: transport, store: store, logger: logger}
}

// Drain submits every request in batch, deletes the ids of successes in one
// atomic store call, and returns aggregate counts. A per-request failure
// does not abort the batch; only a store error during the final delete
// propagates, since that is the "catastrophic" failure mode the scheduler
// must abandon the drain for.
func (t *Transmitter) Drain(ctx context.Context, batch []domain.DeferredRequest) (DrainResult, error) {
	if len(batch) == 0 {
		return DrainResult{}, nil
	}

	groups := groupByHost(batch)

	var mu sync.Mutex
	var successIDs []domain.RequestID
	var successBytes int64
	var successCount, failureCount int

	g, gctx := errgroup.WithContext(ctx)
	for _, group := range groups {
		group := group
		g.Go(func() error {
			for _, req := range group {
				err := t.transport.Send(gctx, req)

				mu.Lock()
				if err == nil {
					successIDs = append(successIDs, req.ID)
					successBytes += int64(req.PayloadSize())
					successCount++
				} else {
					failureCount++
					t.logger.Debug("request failed, kept for retry",
						ports.String("request_id", string(req.ID)),
						ports.String("url", req.URL),
						ports.Err(err),
					)
				}
				mu.Unlock()
			}
			return nil
		})
	}

	// Transport failures are per-request and swallowed above; g.Wait only
	// ever returns non-nil if a goroutine returns a genuine error, which
	// none do here, but errgroup's cancellation wiring is still useful for
	// ctx-driven shutdown mid-fan-out.
	if err := g.Wait(); err != nil && !errors.Is(err, context.Canceled) {
		return DrainResult{}, err
	}

	if len(successIDs) > 0 {
		if err := t.store.Delete(ctx, successIDs); err != nil {
			return DrainResult{}, err
		}
	}

	return DrainResult{
		SuccessCount: successCount,
		SuccessBytes: successBytes,
		FailureCount: failureCount,
	}, nil
}

func groupByHost(batch []domain.DeferredRequest) [][]domain.DeferredRequest {
	order := make([]string, 0)
	byHost := make(map[string][]domain.DeferredRequest)
	for _, req := range batch {
		host := req.Domain()
		if _, ok := byHost[host]; !ok {
			order = append(order, host)
		}
		byHost[host] = append(byHost[host], req)
	}

	groups := make([][]domain.DeferredRequest, 0, len(order))
	for _, host := range order {
		groups = append(groups, byHost[host])
	}
	return groups
}
