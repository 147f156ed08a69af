package logger

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/goliatone/go-activityform/pkg/submission"
)

// Logger wraps a named zap sugared logger. It satisfies the Logger
// interfaces of the submission and invalidate packages.
type Logger struct {
	*zap.SugaredLogger
}

// New builds a logger for serviceName. env selects the preset:
// development, debug, production, or anything else for a colourised info
// logger.
func New(serviceName, env string, outputPaths ...string) (*Logger, error) {
	cfg, withCaller := buildConfig(env)
	if len(outputPaths) > 0 {
		cfg.OutputPaths = outputPaths
	}

	z, err := cfg.Build(zap.WithCaller(withCaller))
	if err != nil {
		return nil, fmt.Errorf("logger: cannot init zap logger: %w", err)
	}
	return &Logger{SugaredLogger: z.Named(serviceName).Sugar()}, nil
}

// Nop returns a logger that discards everything.
func Nop() *Logger {
	return &Logger{SugaredLogger: zap.NewNop().Sugar()}
}

func buildConfig(env string) (zap.Config, bool) {
	var cfg zap.Config
	withCaller := false

	switch strings.ToLower(strings.TrimSpace(env)) {
	case "development":
		cfg = zap.NewDevelopmentConfig()
		cfg.Level = zap.NewAtomicLevelAt(zap.DebugLevel)
		cfg.EncoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder
		cfg.DisableStacktrace = true
	case "debug":
		cfg = zap.NewDevelopmentConfig()
		cfg.Level = zap.NewAtomicLevelAt(zap.DebugLevel)
		cfg.EncoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder
		withCaller = true
	case "production":
		cfg = zap.NewProductionConfig()
		cfg.Level = zap.NewAtomicLevelAt(zap.InfoLevel)
		cfg.DisableStacktrace = true
	default:
		cfg = zap.NewDevelopmentConfig()
		cfg.Level = zap.NewAtomicLevelAt(zap.InfoLevel)
		cfg.EncoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder
		cfg.DisableStacktrace = true
	}

	cfg.EncoderConfig.TimeKey = "timestamp"
	cfg.EncoderConfig.LevelKey = "level"
	cfg.EncoderConfig.MessageKey = "msg"
	cfg.EncoderConfig.NameKey = "logger"
	if withCaller {
		cfg.EncoderConfig.CallerKey = "caller"
	} else {
		cfg.EncoderConfig.CallerKey = zapcore.OmitKey
	}
	cfg.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	cfg.OutputPaths = []string{"stdout"}
	return cfg, withCaller
}

// Ctx returns a child logger carrying the request id stored in ctx.
func (l *Logger) Ctx(ctx context.Context) *zap.SugaredLogger {
	if id := submission.RequestID(ctx); id != "" {
		return l.With("request_id", id)
	}
	return l.SugaredLogger
}

// SafeSync flushes buffered entries, ignoring the errors terminals return
// for stdout.
func (l *Logger) SafeSync() {
	if l == nil {
		return
	}
	if err := l.Desugar().Sync(); err != nil && !isIgnorableSyncError(err) {
		l.Errorf("log sync error: %v", err)
	}
}

func isIgnorableSyncError(err error) bool {
	if err == nil {
		return false
	}
	s := strings.ToLower(err.Error())
	return strings.Contains(s, "invalid argument") ||
		strings.Contains(s, "inappropriate ioctl for device")
}
