package database

import (
	"context"
	"errors"
	"time"

	"github.com/go-arcade/qaboard/pkg/log"
	"go.uber.org/zap"
	gormlogger "gorm.io/gorm/logger"
)

// gormLogger sends gorm output to zap under the "database" component. SQL
// traces go to debug, failures to error and slow statements to warn.
type gormLogger struct {
	log   *zap.SugaredLogger
	level gormlogger.LogLevel
	slow  time.Duration
}

func newGormLogger(cfg Database) gormlogger.Interface {
	if !cfg.OutPut {
		return gormlogger.Default.LogMode(gormlogger.Silent)
	}
	return &gormLogger{
		// 跳过 gorm 内部调用栈，定位到仓储代码
		log:   log.GetLogger().Desugar().WithOptions(zap.AddCallerSkip(3)).Sugar().With("component", "database"),
		level: gormlogger.Info,
		slow:  time.Second,
	}
}

// LogMode returns a copy at level; gorm calls it per session.
func (l *gormLogger) LogMode(level gormlogger.LogLevel) gormlogger.Interface {
	cp := *l
	cp.level = level
	return &cp
}

func (l *gormLogger) Info(_ context.Context, msg string, data ...any) {
	if l.level >= gormlogger.Info {
		l.log.Infof(msg, data...)
	}
}

func (l *gormLogger) Warn(_ context.Context, msg string, data ...any) {
	if l.level >= gormlogger.Warn {
		l.log.Warnf(msg, data...)
	}
}

func (l *gormLogger) Error(_ context.Context, msg string, data ...any) {
	if l.level >= gormlogger.Error {
		l.log.Errorf(msg, data...)
	}
}

func (l *gormLogger) Trace(_ context.Context, begin time.Time, fc func() (string, int64), err error) {
	if l.level <= gormlogger.Silent {
		return
	}

	elapsed := time.Since(begin)
	switch {
	case err != nil && l.level >= gormlogger.Error && !errors.Is(err, gormlogger.ErrRecordNotFound):
		sql, rows := fc()
		l.log.Errorw("sql failed", "sql", sql, "rows", rows, "elapsed", elapsed, "error", err)
	case l.slow > 0 && elapsed > l.slow && l.level >= gormlogger.Warn:
		sql, rows := fc()
		l.log.Warnw("slow sql", "sql", sql, "rows", rows, "elapsed", elapsed)
	case l.level >= gormlogger.Info:
		sql, rows := fc()
		l.log.Debugw("sql", "sql", sql, "rows", rows, "elapsed", elapsed)
	}
}
