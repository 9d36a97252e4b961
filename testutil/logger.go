// Copyright (C) 2019-2025, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package testutil

import (
	"os"
	"strings"
	"sync"
	"testing"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

type TestLogger struct {
	*zap.Logger
	traceVerboseLogger *zap.Logger
}

func (t *TestLogger) Intercept(hook func(entry zapcore.Entry) error) {
	t.Logger = t.Logger.WithOptions(zap.Hooks(hook))
	t.traceVerboseLogger = t.traceVerboseLogger.WithOptions(zap.Hooks(hook))
}

func (t *TestLogger) Silence() {
	atomicLevel := zap.NewAtomicLevelAt(zapcore.FatalLevel)
	t.Logger = t.Logger.WithOptions(zap.IncreaseLevel(atomicLevel))
	t.traceVerboseLogger = t.traceVerboseLogger.WithOptions(zap.IncreaseLevel(atomicLevel))
}

func (tl *TestLogger) Trace(msg string, fields ...zap.Field) {
	tl.traceVerboseLogger.Log(zapcore.DebugLevel, msg, fields...)
}

func (tl *TestLogger) Verbo(msg string, fields ...zap.Field) {
	tl.traceVerboseLogger.Log(zapcore.DebugLevel, msg, fields...)
}

// Messages starts recording the message of every entry written from now on.
// The returned function reports what was recorded so far.
func (t *TestLogger) Messages() func() []string {
	var lock sync.Mutex
	var msgs []string
	t.Intercept(func(entry zapcore.Entry) error {
		lock.Lock()
		defer lock.Unlock()
		msgs = append(msgs, entry.Message)
		return nil
	})
	return func() []string {
		lock.Lock()
		defer lock.Unlock()
		return append([]string(nil), msgs...)
	}
}

func MakeLogger(t *testing.T) *TestLogger {
	config := zapcore.EncoderConfig{
		TimeKey:        "timestamp",
		LevelKey:       "level",
		NameKey:        "logger",
		CallerKey:      "caller",
		MessageKey:     "msg",
		StacktraceKey:  "stacktrace",
		EncodeDuration: zapcore.StringDurationEncoder,
		EncodeCaller:   zapcore.ShortCallerEncoder,
	}
	config.EncodeLevel = func(l zapcore.Level, enc zapcore.PrimitiveArrayEncoder) {
		enc.AppendString(strings.ToUpper(l.String()))
	}
	config.EncodeTime = zapcore.TimeEncoderOfLayout("[01-02|15:04:05.000]")
	config.ConsoleSeparator = " "
	encoder := zapcore.NewConsoleEncoder(config)

	atomicLevel := zap.NewAtomicLevelAt(zapcore.DebugLevel)

	core := zapcore.NewCore(encoder, zapcore.AddSync(os.Stdout), atomicLevel)

	logger := zap.New(core, zap.AddCaller()).With(zap.String("test", t.Name()))
	traceVerboseLogger := zap.New(core, zap.AddCaller(), zap.AddCallerSkip(1)).With(zap.String("test", t.Name()))

	return &TestLogger{Logger: logger, traceVerboseLogger: traceVerboseLogger}
}
