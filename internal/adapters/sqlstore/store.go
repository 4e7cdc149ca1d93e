// Package sqlstore implements ports.Store over a pure-Go SQLite database,
// durable across process restarts and safe for a single writer.
package sqlstore

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/glebarez/sqlite"
	"gorm.io/gorm"

	"github.com/netbatch/netbatchd/internal/domain"
	"github.com/netbatch/netbatchd/internal/ports"
)

// DefaultPath returns the per-app writable database path for identifier:
// <per-app config dir>/NetworkBatcher/<identifier>.sqlite. Falls back to the
// user's home directory if the OS-specific config directory is unavailable.
func DefaultPath(identifier string) string {
	dir, err := os.UserConfigDir()
	if err != nil {
		if h, herr := os.UserHomeDir(); herr == nil {
			dir = filepath.Join(h, ".config")
		} else {
			dir = "."
		}
	}
	return filepath.Join(dir, "NetworkBatcher", identifier+".sqlite")
}

// Store implements ports.Store over GORM and glebarez/sqlite, a cgo-free
// SQLite driver. Writes arrive from several goroutines (Enqueue, the
// scheduler's drain loop, the retention plugin), so the store pins the
// underlying *sql.DB to a single open connection, which serializes them:
// SQLite serializes writers at the file level regardless, and
// capping the pool avoids "database is locked" errors under WAL without
// hand-rolling a write queue.
type Store struct {
	db *gorm.DB
}

// Open creates or attaches to the SQLite database at path, running
// migrations and configuring WAL journaling for crash safety.
func Open(path string, logger ports.Logger) (*Store, error) {
	dsn := fmt.Sprintf("%s?_pragma=journal_mode(WAL)&_pragma=synchronous(NORMAL)&_pragma=busy_timeout(5000)", path)

	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: newAdapterLogger(logger),
	})
	if err != nil {
		return nil, domain.NewStorageError("open", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, domain.NewStorageError("open", err)
	}
	sqlDB.SetMaxOpenConns(1)

	if err := db.AutoMigrate(&requestRow{}, &transmissionLogRow{}); err != nil {
		return nil, domain.NewStorageError("migrate", err)
	}

	return &Store{db: db}, nil
}

func (s *Store) Save(ctx context.Context, req domain.DeferredRequest) error {
	headersJSON, err := json.Marshal(req.Headers)
	if err != nil {
		return domain.NewStorageError("save", err)
	}
	row := fromDomain(req, string(headersJSON))
	if err := s.db.WithContext(ctx).Create(&row).Error; err != nil {
		return domain.NewStorageError("save", err)
	}
	return nil
}

func (s *Store) FetchBatch(ctx context.Context, limit int) ([]domain.DeferredRequest, error) {
	var rows []requestRow
	err := s.db.WithContext(ctx).
		Order("priority ASC, enqueued_at ASC").
		Limit(limit).
		Find(&rows).Error
	if err != nil {
		return nil, domain.NewStorageError("fetch_batch", err)
	}

	out := make([]domain.DeferredRequest, 0, len(rows))
	for _, row := range rows {
		var headers map[string]string
		if row.HeadersJSON != "" {
			if err := json.Unmarshal([]byte(row.HeadersJSON), &headers); err != nil {
				return nil, domain.NewStorageError("fetch_batch", err)
			}
		}
		out = append(out, toDomain(row, headers))
	}
	return out, nil
}

func (s *Store) Delete(ctx context.Context, ids []domain.RequestID) error {
	if len(ids) == 0 {
		return nil
	}
	strIDs := make([]string, len(ids))
	for i, id := range ids {
		strIDs[i] = string(id)
	}
	err := s.db.WithContext(ctx).Where("id IN ?", strIDs).Delete(&requestRow{}).Error
	if err != nil {
		return domain.NewStorageError("delete", err)
	}
	return nil
}

func (s *Store) DeleteExpired(ctx context.Context, now time.Time) (int, error) {
	var rows []requestRow
	err := s.db.WithContext(ctx).Find(&rows).Error
	if err != nil {
		return 0, domain.NewStorageError("delete_expired", err)
	}

	var expired []string
	for _, row := range rows {
		req := toDomain(row, nil)
		if req.IsExpired(now) {
			expired = append(expired, row.ID)
		}
	}
	if len(expired) == 0 {
		return 0, nil
	}

	err = s.db.WithContext(ctx).Where("id IN ?", expired).Delete(&requestRow{}).Error
	if err != nil {
		return 0, domain.NewStorageError("delete_expired", err)
	}
	return len(expired), nil
}

func (s *Store) Count(ctx context.Context) (int, error) {
	var count int64
	if err := s.db.WithContext(ctx).Model(&requestRow{}).Count(&count).Error; err != nil {
		return 0, domain.NewStorageError("count", err)
	}
	return int(count), nil
}

func (s *Store) TotalPayloadSize(ctx context.Context) (int, error) {
	rows, err := s.FetchBatch(ctx, -1)
	if err != nil {
		return 0, err
	}
	total := 0
	for _, r := range rows {
		total += r.PayloadSize()
	}
	return total, nil
}

func (s *Store) Clear(ctx context.Context) error {
	err := s.db.WithContext(ctx).Where("1 = 1").Delete(&requestRow{}).Error
	if err != nil {
		return domain.NewStorageError("clear", err)
	}
	return nil
}

func (s *Store) LogTransmission(ctx context.Context, rec domain.TransmissionLogRecord) error {
	row := fromLogRecord(rec)
	if err := s.db.WithContext(ctx).Create(&row).Error; err != nil {
		return domain.NewStorageError("log_transmission", err)
	}
	return nil
}

func (s *Store) TransmissionStats(ctx context.Context) (domain.Statistics, error) {
	var agg struct {
		BatchCount    int64
		TotalRequests int64
		TotalBytes    int64
	}
	err := s.db.WithContext(ctx).Model(&transmissionLogRow{}).
		Select("COUNT(*) as batch_count, COALESCE(SUM(request_count),0) as total_requests, COALESCE(SUM(total_bytes),0) as total_bytes").
		Scan(&agg).Error
	if err != nil {
		return domain.Statistics{}, domain.NewStorageError("transmission_stats", err)
	}

	queued, err := s.Count(ctx)
	if err != nil {
		return domain.Statistics{}, err
	}
	queuedBytes, err := s.TotalPayloadSize(ctx)
	if err != nil {
		return domain.Statistics{}, err
	}

	return domain.Statistics{
		BatchCount:     agg.BatchCount,
		TotalRequests:  agg.TotalRequests,
		TotalBytes:     agg.TotalBytes,
		QueuedRequests: int64(queued),
		QueuedBytes:    int64(queuedBytes),
	}, nil
}

func (s *Store) PruneTransmissionLog(ctx context.Context, olderThan time.Time) (int, error) {
	result := s.db.WithContext(ctx).Where("timestamp < ?", epochSeconds(olderThan)).Delete(&transmissionLogRow{})
	if result.Error != nil {
		return 0, domain.NewStorageError("prune_transmission_log", result.Error)
	}
	return int(result.RowsAffected), nil
}

func (s *Store) Close() error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return domain.NewStorageError("close", err)
	}
	return sqlDB.Close()
}
