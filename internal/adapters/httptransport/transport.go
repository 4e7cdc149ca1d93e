// Package httptransport implements ports.Transport over the standard
// library HTTP client.
package httptransport

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/netbatch/netbatchd/internal/domain"
	"github.com/netbatch/netbatchd/internal/ports"
)

// Transport implements ports.Transport using an injected ports.HTTPClient,
// so tests can substitute a stub without standing up a listener.
type Transport struct {
	client  ports.HTTPClient
	logger  ports.Logger
	timeout time.Duration
}

// New creates an HTTP-backed Transport. timeout bounds each individual
// request; zero means no additional timeout beyond the context deadline.
func New(client ports.HTTPClient, logger ports.Logger, timeout time.Duration) *Transport {
	return &Transport{client: client, logger: logger, timeout: timeout}
}

// Send issues req and reports success for any 2xx response.
func (t *Transport) Send(ctx context.Context, req domain.DeferredRequest) error {
	if t.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, t.timeout)
		defer cancel()
	}

	var body io.Reader
	if len(req.Body) > 0 {
		body = bytes.NewReader(req.Body)
	}

	httpReq, err := http.NewRequestWithContext(ctx, req.Method, req.URL, body)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	for k, v := range req.Headers {
		httpReq.Header.Set(k, v)
	}

	resp, err := t.client.Do(httpReq)
	if err != nil {
		t.logger.Warn("request failed",
			ports.String("request_id", string(req.ID)),
			ports.String("url", req.URL),
			ports.Err(err),
		)
		return fmt.Errorf("send request: %w", err)
	}
	defer resp.Body.Close()
	io.Copy(io.Discard, resp.Body)

	if resp.StatusCode/100 != 2 {
		return &domain.RequestFailedError{Status: resp.StatusCode}
	}

	t.logger.Debug("request sent",
		ports.String("request_id", string(req.ID)),
		ports.String("url", req.URL),
		ports.Int("status", resp.StatusCode),
	)
	return nil
}
