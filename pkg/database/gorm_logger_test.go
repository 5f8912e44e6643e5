package database

import (
	"context"
	"errors"
	"testing"
	"time"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

func newObservedGormLogger(level gormlogger.LogLevel) (gormlogger.Interface, *observer.ObservedLogs) {
	core, logs := observer.New(zapcore.DebugLevel)
	return newGormLogger(zap.New(core), level), logs
}

func sqlFn() (string, int64) { return "SELECT 1", 1 }

func TestGormLogger_Trace(t *testing.T) {
	tests := []struct {
		name      string
		level     gormlogger.LogLevel
		elapsed   time.Duration
		err       error
		wantLevel zapcore.Level
		wantLogs  int
	}{
		{"SQL 错误", gormlogger.Warn, 0, errors.New("syntax error"), zapcore.ErrorLevel, 1},
		{"记录不存在不报错", gormlogger.Warn, 0, gorm.ErrRecordNotFound, 0, 0},
		{"慢查询", gormlogger.Warn, time.Second, nil, zapcore.WarnLevel, 1},
		{"普通查询在 Warn 级别不记录", gormlogger.Warn, 0, nil, 0, 0},
		{"普通查询在 Info 级别记为 Debug", gormlogger.Info, 0, nil, zapcore.DebugLevel, 1},
		{"Silent 不记录", gormlogger.Silent, time.Second, errors.New("x"), 0, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			l, logs := newObservedGormLogger(tt.level)
			l.Trace(context.Background(), time.Now().Add(-tt.elapsed), sqlFn, tt.err)

			if logs.Len() != tt.wantLogs {
				t.Fatalf("期望 %d 条日志，实际: %d", tt.wantLogs, logs.Len())
			}
			if tt.wantLogs > 0 {
				entry := logs.All()[0]
				if entry.Level != tt.wantLevel {
					t.Errorf("期望级别 %s，实际: %s", tt.wantLevel, entry.Level)
				}
				if entry.ContextMap()["sql"] != "SELECT 1" {
					t.Errorf("期望记录 SQL，实际: %v", entry.ContextMap())
				}
			}
		})
	}
}

func TestGormLogger_LogModeCopies(t *testing.T) {
	l, logs := newObservedGormLogger(gormlogger.Warn)
	silent := l.LogMode(gormlogger.Silent)

	silent.Error(context.Background(), "boom %d", 1)
	if logs.Len() != 0 {
		t.Errorf("Silent 副本不应输出，实际: %d", logs.Len())
	}

	l.Error(context.Background(), "boom %d", 1)
	if logs.Len() != 1 || logs.All()[0].Message != "boom 1" {
		t.Errorf("原实例级别不应被修改，实际: %v", logs.All())
	}
}
