// Copyright (C) 2019-2025, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package crossroads

import (
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

var _ Logger = (*ZapLogger)(nil)

// ZapLogger exposes a *zap.Logger as a Logger.
// zap has no trace or verbo levels, so both are written at debug level.
type ZapLogger struct {
	*zap.Logger
	traceVerboseLogger *zap.Logger
}

func NewZapLogger(logger *zap.Logger) *ZapLogger {
	return &ZapLogger{
		Logger:             logger,
		traceVerboseLogger: logger.WithOptions(zap.AddCallerSkip(1)),
	}
}

func (zl *ZapLogger) Trace(msg string, fields ...zap.Field) {
	zl.traceVerboseLogger.Log(zapcore.DebugLevel, msg, fields...)
}

func (zl *ZapLogger) Verbo(msg string, fields ...zap.Field) {
	zl.traceVerboseLogger.Log(zapcore.DebugLevel, msg, fields...)
}
