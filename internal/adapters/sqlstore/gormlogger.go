package sqlstore

import (
	"context"
	"time"

	gormlogger "gorm.io/gorm/logger"

	"github.com/netbatch/netbatchd/internal/ports"
)

// adapterLogger routes GORM's own logging through ports.Logger so SQL
// errors and slow queries show up in the same structured stream as the
// rest of the application instead of on a separate stdlib logger.
type adapterLogger struct {
	logger ports.Logger
	level  gormlogger.LogLevel
}

func newAdapterLogger(l ports.Logger) *adapterLogger {
	return &adapterLogger{logger: l, level: gormlogger.Warn}
}

func (l *adapterLogger) LogMode(level gormlogger.LogLevel) gormlogger.Interface {
	clone := *l
	clone.level = level
	return &clone
}

func (l *adapterLogger) Info(_ context.Context, msg string, data ...interface{}) {
	if l.level >= gormlogger.Info {
		l.logger.Info(msg, ports.Any("data", data))
	}
}

func (l *adapterLogger) Warn(_ context.Context, msg string, data ...interface{}) {
	if l.level >= gormlogger.Warn {
		l.logger.Warn(msg, ports.Any("data", data))
	}
}

func (l *adapterLogger) Error(_ context.Context, msg string, data ...interface{}) {
	if l.level >= gormlogger.Error {
		l.logger.Error(msg, ports.Any("data", data))
	}
}

func (l *adapterLogger) Trace(_ context.Context, begin time.Time, fc func() (string, int64), err error) {
	if l.level <= gormlogger.Silent {
		return
	}
	elapsed := time.Since(begin)
	sql, rows := fc()

	switch {
	case err != nil && l.level >= gormlogger.Error:
		l.logger.Error("sql error",
			ports.String("sql", sql),
			ports.Int64("rows", rows),
			ports.Duration("elapsed", elapsed),
			ports.Err(err),
		)
	case elapsed > time.Second && l.level >= gormlogger.Warn:
		l.logger.Warn("slow query",
			ports.String("sql", sql),
			ports.Int64("rows", rows),
			ports.Duration("elapsed", elapsed),
		)
	case l.level == gormlogger.Info:
		l.logger.Debug("sql",
			ports.String("sql", sql),
			ports.Int64("rows", rows),
			ports.Duration("elapsed", elapsed),
		)
	}
}
