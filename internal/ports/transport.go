package ports

import (
	"context"
	"net/http"

	"github.com/netbatch/netbatchd/internal/domain"
)

// Transport sends one deferred request over the network and reports the
// outcome. Adapters wrap *http.Client, a mock, or any other request path.
type Transport interface {
	// Send issues req and returns nil on a successful response, a
	// *domain.RequestFailedError carrying the status for a non-2xx
	// response, or another error for a transport-level failure. Send must
	// not retry; a failed queued request stays in the store and is retried
	// on a later drain.
	Send(ctx context.Context, req domain.DeferredRequest) error
}

// HTTPClient abstracts HTTP operations for dependency injection. The
// standard *http.Client satisfies this interface.
type HTTPClient interface {
	Do(req *http.Request) (*http.Response, error)
}
