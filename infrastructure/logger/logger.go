package logger

import "context"

// Logger abstracts key-value structured logging.
type Logger interface {
	With(keyvals ...interface{}) Logger
	FromContext(ctx context.Context) Logger

	Debug(msg string, keyvals ...interface{})
	Info(msg string, keyvals ...interface{})
	Warn(msg string, keyvals ...interface{})
	Error(msg string, keyvals ...interface{})
	Fatal(msg string, keyvals ...interface{})
}
