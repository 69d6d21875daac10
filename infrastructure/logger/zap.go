package logger

import (
	"context"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"google.golang.org/grpc/metadata"
)

var contextKeys = []string{
	"real-ip",
	"user-agent",
	"forwarded-host",
	"request-id",
	"user-id",
}

// InitZap builds the production zap logger used by the service.
func InitZap(level string) (*zap.Logger, error) {
	conf, err := newZapConfig(level)
	if err != nil {
		return nil, err
	}
	return conf.Build()
}

// newZapConfig is the JSON production config without caller or stacktrace.
func newZapConfig(level string) (zap.Config, error) {
	conf := zap.NewProductionConfig()
	lvl := zapcore.DebugLevel
	if level != "" {
		if err := lvl.UnmarshalText([]byte(level)); err != nil {
			return conf, err
		}
	}
	conf.Level = zap.NewAtomicLevelAt(lvl)
	conf.DisableCaller = true
	conf.DisableStacktrace = true
	return conf, nil
}

// NewZapLogger returns a Logger backed by the provided zap instance.
func NewZapLogger(lg *zap.Logger) Logger {
	return zpLg{
		lg: lg.Sugar(),
	}
}

// NewNop discards everything, used by tests.
func NewNop() Logger {
	return NewZapLogger(zap.NewNop())
}

type zpLg struct {
	lg *zap.SugaredLogger
}

func (l zpLg) With(keyvals ...interface{}) Logger {
	return zpLg{
		lg: l.lg.With(keyvals...),
	}
}

func (l zpLg) FromContext(ctx context.Context) Logger {
	md, ok := metadata.FromIncomingContext(ctx)
	if !ok {
		return l
	}

	valarray := make([]interface{}, 0, len(contextKeys)*2)
	for _, key := range contextKeys {
		if val, ok := md[key]; ok && len(val) > 0 {
			valarray = append(valarray, key, val[0])
		}
	}

	if len(valarray) == 0 {
		return l
	}
	return zpLg{
		lg: l.lg.With(valarray...),
	}
}

func (l zpLg) Debug(msg string, keyvals ...interface{}) {
	l.lg.Debugw(msg, keyvals...)
}

func (l zpLg) Info(msg string, keyvals ...interface{}) {
	l.lg.Infow(msg, keyvals...)
}

func (l zpLg) Warn(msg string, keyvals ...interface{}) {
	l.lg.Warnw(msg, keyvals...)
}

func (l zpLg) Error(msg string, keyvals ...interface{}) {
	l.lg.Errorw(msg, keyvals...)
}

func (l zpLg) Fatal(msg string, keyvals ...interface{}) {
	l.lg.Fatalw(msg, keyvals...)
}

// RequestId returns the request-id carried in the incoming gRPC metadata, if any.
func RequestId(ctx context.Context) string {
	md, ok := metadata.FromIncomingContext(ctx)
	if !ok {
		return ""
	}
	if val := md.Get("request-id"); len(val) > 0 {
		return val[0]
	}
	return ""
}
