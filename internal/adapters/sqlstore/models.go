package sqlstore

import (
	"time"

	"github.com/netbatch/netbatchd/internal/domain"
)

// requestRow is the GORM model backing the pending-request queue. Header
// maps are flattened to a JSON blob rather than a join table: the queue is
// read back whole on every FetchBatch, so there is nothing to gain from
// normalizing headers into their own rows. Column names and types mirror
// the persisted schema verbatim: timestamps and durations are stored as
// REAL seconds since the Unix epoch, not GORM's default datetime encoding.
type requestRow struct {
	ID              string  `gorm:"column:id;primaryKey"`
	URL             string  `gorm:"column:url"`
	Method          string  `gorm:"column:method"`
	HeadersJSON     string  `gorm:"column:headers"`
	Body            []byte  `gorm:"column:body"`
	Priority        int     `gorm:"column:priority;index"`
	EnqueuedAt      float64 `gorm:"column:enqueued_at;index"`
	MaxDeferralTime float64 `gorm:"column:max_deferral_time"`
}

func (requestRow) TableName() string { return "deferred_requests" }

// transmissionLogRow is the GORM model backing the append-only transmission
// log that Statistics aggregates from.
type transmissionLogRow struct {
	ID            int64   `gorm:"column:id;primaryKey;autoIncrement"`
	Timestamp     float64 `gorm:"column:timestamp;index"`
	RequestCount  int     `gorm:"column:request_count"`
	TotalBytes    int64   `gorm:"column:total_bytes"`
	NetworkType   string  `gorm:"column:network_type"`
	IsCharging    bool    `gorm:"column:is_charging"`
	TriggerReason string  `gorm:"column:trigger_reason"`
}

func (transmissionLogRow) TableName() string { return "transmission_log" }

// epochSeconds and timeFromEpoch convert between time.Time and the REAL
// seconds-since-epoch encoding spec.md's schema uses for every timestamp.
func epochSeconds(t time.Time) float64 {
	return float64(t.UnixNano()) / float64(time.Second)
}

func timeFromEpoch(f float64) time.Time {
	return time.Unix(0, int64(f*float64(time.Second)))
}

func fromDomain(r domain.DeferredRequest, headersJSON string) requestRow {
	return requestRow{
		ID:              string(r.ID),
		URL:             r.URL,
		Method:          r.Method,
		HeadersJSON:     headersJSON,
		Body:            r.Body,
		Priority:        int(r.Priority),
		EnqueuedAt:      epochSeconds(r.EnqueuedAt),
		MaxDeferralTime: r.MaxDeferral.Seconds(),
	}
}

func toDomain(row requestRow, headers map[string]string) domain.DeferredRequest {
	return domain.DeferredRequest{
		ID:          domain.RequestID(row.ID),
		URL:         row.URL,
		Method:      row.Method,
		Headers:     headers,
		Body:        row.Body,
		Priority:    domain.Priority(row.Priority),
		EnqueuedAt:  timeFromEpoch(row.EnqueuedAt),
		MaxDeferral: time.Duration(row.MaxDeferralTime * float64(time.Second)),
	}
}

func fromLogRecord(rec domain.TransmissionLogRecord) transmissionLogRow {
	return transmissionLogRow{
		Timestamp:     epochSeconds(rec.Timestamp),
		RequestCount:  rec.RequestCount,
		TotalBytes:    rec.TotalBytes,
		NetworkType:   rec.NetworkType.String(),
		IsCharging:    rec.IsCharging,
		TriggerReason: rec.TriggerReason,
	}
}
