package logger

import (
	"bytes"
	"context"
	"errors"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/Tomlord1122/todo/internal/config"
)

func TestNewWithWriter(t *testing.T) {
	tests := []struct {
		name    string
		cfg     config.LogConfig
		emit    func(l zerolog.Logger)
		want    string
		wantOut bool
	}{
		{
			name:    "json info",
			cfg:     config.LogConfig{Level: "info", Format: "json"},
			emit:    func(l zerolog.Logger) { l.Info().Msg("hello") },
			want:    `"message":"hello"`,
			wantOut: true,
		},
		{
			name:    "debug filtered at info",
			cfg:     config.LogConfig{Level: "info", Format: "json"},
			emit:    func(l zerolog.Logger) { l.Debug().Msg("hidden") },
			wantOut: false,
		},
		{
			name:    "unknown level falls back to info",
			cfg:     config.LogConfig{Level: "", Format: "json"},
			emit:    func(l zerolog.Logger) { l.Info().Msg("fallback") },
			want:    `"level":"info"`,
			wantOut: true,
		},
		{
			name:    "console",
			cfg:     config.LogConfig{Level: "debug", Format: "console"},
			emit:    func(l zerolog.Logger) { l.Debug().Msg("pretty") },
			want:    "pretty",
			wantOut: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			tt.emit(NewWithWriter(tt.cfg, &buf))
			if !tt.wantOut {
				assert.Empty(t, buf.String())
				return
			}
			assert.Contains(t, buf.String(), tt.want)
		})
	}
}

func TestGormLoggerLevels(t *testing.T) {
	tests := []struct {
		level zerolog.Level
		want  gormlogger.LogLevel
	}{
		{zerolog.TraceLevel, gormlogger.Info},
		{zerolog.DebugLevel, gormlogger.Info},
		{zerolog.InfoLevel, gormlogger.Warn},
		{zerolog.WarnLevel, gormlogger.Warn},
		{zerolog.ErrorLevel, gormlogger.Error},
		{zerolog.Disabled, gormlogger.Silent},
	}
	for _, tt := range tests {
		l := NewGormLogger(zerolog.Nop().Level(tt.level), time.Second)
		assert.Equal(t, tt.want, l.level, tt.level.String())
	}
}

func TestGormLoggerTrace(t *testing.T) {
	sql := func() (string, int64) { return "SELECT 1", 1 }

	t.Run("record not found is not an error", func(t *testing.T) {
		var buf bytes.Buffer
		l := NewGormLogger(zerolog.New(&buf).Level(zerolog.InfoLevel), time.Second)
		l.Trace(context.Background(), time.Now(), sql, gorm.ErrRecordNotFound)
		assert.Empty(t, buf.String())
	})

	t.Run("errors are logged", func(t *testing.T) {
		var buf bytes.Buffer
		l := NewGormLogger(zerolog.New(&buf).Level(zerolog.InfoLevel), time.Second)
		l.Trace(context.Background(), time.Now(), sql, errors.New("boom"))
		assert.Contains(t, buf.String(), `"error":"boom"`)
		assert.Contains(t, buf.String(), `"sql":"SELECT 1"`)
	})

	t.Run("slow queries warn", func(t *testing.T) {
		var buf bytes.Buffer
		l := NewGormLogger(zerolog.New(&buf).Level(zerolog.InfoLevel), time.Millisecond)
		l.Trace(context.Background(), time.Now().Add(-time.Second), sql, nil)
		assert.Contains(t, buf.String(), `"level":"warn"`)
	})

	t.Run("statements traced at debug", func(t *testing.T) {
		var buf bytes.Buffer
		l := NewGormLogger(zerolog.New(&buf).Level(zerolog.DebugLevel), time.Second)
		l.Trace(context.Background(), time.Now(), sql, nil)
		assert.Contains(t, buf.String(), `"message":"query"`)
	})

	t.Run("silent", func(t *testing.T) {
		var buf bytes.Buffer
		l := NewGormLogger(zerolog.New(&buf), time.Second).LogMode(gormlogger.Silent)
		l.Trace(context.Background(), time.Now(), sql, errors.New("boom"))
		assert.Empty(t, buf.String())
	})
}

func TestGooseLogger(t *testing.T) {
	var buf bytes.Buffer
	l := NewGooseLogger(zerolog.New(&buf))

	l.Printf("OK   %s (%v)\n", "00001_create_todos.sql", "1ms")
	assert.Contains(t, buf.String(), `"message":"OK   00001_create_todos.sql (1ms)"`)
	assert.Contains(t, buf.String(), `"component":"migrate"`)
}
