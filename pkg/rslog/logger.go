package rslog

import (
	"fmt"
	"os"
	"path"
	"strings"
	"time"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"gopkg.in/natefinch/lumberjack.v2"
)

var logger *zap.Logger
var warnLogger *zap.Logger
var errorLogger *zap.Logger
var panicLogger *zap.Logger
var atom = zap.NewAtomicLevel()

var opts *Options

func Configure(op *Options) {
	atom.SetLevel(op.Level)
	opts = op

	loggerOpts := make([]zap.Option, 0)
	if opts.LineNum {
		loggerOpts = append(loggerOpts, zap.AddCaller(), zap.AddCallerSkip(2))
	}

	writers := make([]zapcore.WriteSyncer, 0)
	if !opts.NoStdout {
		writers = append(writers, zapcore.AddSync(os.Stdout))
	}

	infoWriter := zapcore.AddSync(&lumberjack.Logger{
		Filename:   path.Join(opts.LogDir, "info.log"),
		MaxSize:    500, // megabytes
		MaxBackups: 3,
		MaxAge:     28, // days
	})
	core := zapcore.NewCore(
		zapcore.NewJSONEncoder(newEncoderConfig()),
		zapcore.NewMultiWriteSyncer(append(writers, zapcore.AddSync(infoWriter))...),
		atom,
	)
	logger = zap.New(core, loggerOpts...)

	warnWriter := zapcore.AddSync(&lumberjack.Logger{
		Filename:   path.Join(opts.LogDir, "warn.log"),
		MaxSize:    500, // megabytes
		MaxBackups: 3,
		MaxAge:     28, // days
	})
	core = zapcore.NewCore(
		zapcore.NewJSONEncoder(newEncoderConfig()),
		zapcore.NewMultiWriteSyncer(append(writers, zapcore.AddSync(warnWriter))...),
		zap.WarnLevel,
	)
	warnLogger = zap.New(core, loggerOpts...)

	errorWriter := zapcore.AddSync(&lumberjack.Logger{
		Filename:   path.Join(opts.LogDir, "error.log"),
		MaxSize:    500, // megabytes
		MaxBackups: 3,
		MaxAge:     28, // days
	})
	core = zapcore.NewCore(
		zapcore.NewJSONEncoder(newEncoderConfig()),
		zapcore.NewMultiWriteSyncer(append(writers, zapcore.AddSync(errorWriter))...),
		zap.ErrorLevel,
	)
	errorLogger = zap.New(core, loggerOpts...)

	panicWriter := zapcore.AddSync(&lumberjack.Logger{
		Filename:   path.Join(opts.LogDir, "panic.log"),
		MaxSize:    500, // megabytes
		MaxBackups: 3,
		MaxAge:     28, // days
	})
	core = zapcore.NewCore(
		zapcore.NewJSONEncoder(newEncoderConfig()),
		zapcore.NewMultiWriteSyncer(append(writers, zapcore.AddSync(panicWriter))...),
		zap.PanicLevel,
	)
	panicLogger = zap.New(core, append(loggerOpts, zap.AddStacktrace(zapcore.PanicLevel))...)
}

func Level() zapcore.Level {
	return opts.Level
}

func newEncoderConfig() zapcore.EncoderConfig {
	return zapcore.EncoderConfig{
		TimeKey:       "time",
		LevelKey:      "level",
		NameKey:       "logger",
		CallerKey:     "linenum",
		MessageKey:    "msg",
		StacktraceKey: "stacktrace",
		LineEnding:    zapcore.DefaultLineEnding,
		EncodeLevel:   zapcore.LowercaseLevelEncoder,
		EncodeCaller:  zapcore.FullCallerEncoder,
		EncodeName:    zapcore.FullNameEncoder,
		EncodeTime: func(t time.Time, enc zapcore.PrimitiveArrayEncoder) {
			enc.AppendString(t.Format("2006-01-02T15:04:05.999999999-07:00"))
		},
		EncodeDuration: func(d time.Duration, enc zapcore.PrimitiveArrayEncoder) {
			enc.AppendInt64(int64(d) / 1000000)
		},
	}
}

// Info Info
func Info(msg string, fields ...zap.Field) {
	if logger == nil {
		Configure(NewOptions())
	}
	logger.Info(msg, fields...)
}

// Debug Debug
func Debug(msg string, fields ...zap.Field) {
	if logger == nil {
		Configure(NewOptions())
	}
	logger.Debug(msg, fields...)
}

// Warn Warn
func Warn(msg string, fields ...zap.Field) {
	if warnLogger == nil {
		Configure(NewOptions())
	}
	warnLogger.Warn(msg, fields...)
}

// Error Error
func Error(msg string, fields ...zap.Field) {
	if errorLogger == nil {
		Configure(NewOptions())
	}
	errorLogger.Error(msg, fields...)
}

func Fatal(msg string, fields ...zap.Field) {
	if panicLogger == nil {
		Configure(NewOptions())
	}
	panicLogger.Fatal(msg, fields...)
}

func Panic(msg string, fields ...zap.Field) {
	if panicLogger == nil {
		Configure(NewOptions())
	}
	panicLogger.Panic(msg, fields...)
}

func Sync() error {
	for _, l := range []*zap.Logger{panicLogger, errorLogger, warnLogger, logger} {
		if l == nil {
			continue
		}
		if err := l.Sync(); err != nil {
			fmt.Println("logger sync error", err)
		}
	}
	return nil
}

// Log Log
type Log interface {
	Info(msg string, fields ...zap.Field)
	Debug(msg string, fields ...zap.Field)
	Warn(msg string, fields ...zap.Field)
	Error(msg string, fields ...zap.Field)
	Fatal(msg string, fields ...zap.Field)
	Panic(msg string, fields ...zap.Field)
}

// RSLog a prefixed logger, meant to be embedded in components
type RSLog struct {
	prefix string
}

// NewRSLog NewRSLog
func NewRSLog(prefix string) *RSLog {
	return &RSLog{prefix: prefix}
}

func (t *RSLog) fmtMsg(msg string) string {
	var b strings.Builder
	b.WriteString("[")
	b.WriteString(t.prefix)
	b.WriteString("] ")
	b.WriteString(msg)
	return b.String()
}

// Info Info
func (t *RSLog) Info(msg string, fields ...zap.Field) {
	Info(t.fmtMsg(msg), fields...)
}

// Debug Debug
func (t *RSLog) Debug(msg string, fields ...zap.Field) {
	Debug(t.fmtMsg(msg), fields...)
}

// Warn Warn
func (t *RSLog) Warn(msg string, fields ...zap.Field) {
	Warn(t.fmtMsg(msg), fields...)
}

// Error Error
func (t *RSLog) Error(msg string, fields ...zap.Field) {
	Error(t.fmtMsg(msg), fields...)
}

func (t *RSLog) Fatal(msg string, fields ...zap.Field) {
	Fatal(t.fmtMsg(msg), fields...)
}

func (t *RSLog) Panic(msg string, fields ...zap.Field) {
	Panic(t.fmtMsg(msg), fields...)
}
