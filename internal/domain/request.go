package domain

import (
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"
)

// RequestID uniquely identifies a DeferredRequest. Immediate-priority
// requests are assigned one too, but since they never enter the store it
// cannot be used to look anything up afterward.
type RequestID string

// NewRequestID generates a fresh, randomly-assigned RequestID.
func NewRequestID() RequestID {
	return RequestID(uuid.NewString())
}

// DeferredRequest is a single queued outbound HTTP request awaiting a drain.
// A row with Priority == PriorityImmediate must never exist in the store:
// immediate requests bypass the queue and go straight to the transport.
type DeferredRequest struct {
	ID          RequestID
	URL         string
	Method      string
	Headers     map[string]string
	Body        []byte
	Priority    Priority
	EnqueuedAt  time.Time
	MaxDeferral time.Duration
}

// Domain returns the lowercased host of the request's URL, or "" if the URL
// cannot be parsed. Used both for priority classification and for grouping
// a batch by host before transmission.
func (r DeferredRequest) Domain() string {
	return HostOf(r.URL)
}

// HostOf extracts and lowercases the host component of a URL, tolerating a
// bare host with no scheme (treated as the host itself).
func HostOf(rawURL string) string {
	u, err := url.Parse(rawURL)
	if err != nil || u.Host == "" {
		// Fall back to treating the whole string as a host, which lets
		// callers pass "example.com" directly in tests and rule files.
		if strings.Contains(rawURL, "://") {
			return ""
		}
		host := rawURL
		if i := strings.IndexAny(host, "/?#"); i >= 0 {
			host = host[:i]
		}
		return strings.ToLower(host)
	}
	return strings.ToLower(u.Hostname())
}

// PayloadSize is the byte cost the policy and forcing rules reason about:
// URL length plus header name/value lengths plus body length.
func (r DeferredRequest) PayloadSize() int {
	size := len(r.URL) + len(r.Body)
	for k, v := range r.Headers {
		size += len(k) + len(v)
	}
	return size
}

// IsExpired reports whether now is past the request's deadline.
func (r DeferredRequest) IsExpired(now time.Time) bool {
	return now.After(r.EnqueuedAt.Add(r.MaxDeferral))
}

// TransmissionLogRecord is an append-only record of one completed drain,
// used only for statistics.
type TransmissionLogRecord struct {
	ID            int64
	Timestamp     time.Time
	RequestCount  int
	TotalBytes    int64
	NetworkType   NetworkType
	IsCharging    bool
	TriggerReason string
}
