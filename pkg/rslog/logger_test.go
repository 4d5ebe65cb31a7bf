package rslog

import (
	"testing"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

func TestLogger(t *testing.T) {
	opts := NewOptions()
	opts.Level = zapcore.DebugLevel
	opts.LogDir = t.TempDir()
	Configure(opts)

	lg := NewRSLog("Connection[127.0.0.1:5552]")
	lg.Debug("frame read", zap.Uint64("numFrames", 1))
	lg.Info("connected")
	lg.Warn("no waiter for correlation id", zap.Uint32("correlationId", 42))
	lg.Error("frame too large", zap.Uint32("payload", 1<<21))
}
