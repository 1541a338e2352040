package observability

import (
	"context"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// ZapObserver emits events to a zap.Logger. The event type becomes the log
// message, Source becomes a "source" field, and Data keys are flattened as
// top-level fields.
type ZapObserver struct {
	logger *zap.Logger
}

// NewZapObserver creates a ZapObserver that emits to the given logger.
func NewZapObserver(logger *zap.Logger) *ZapObserver {
	return &ZapObserver{logger: logger}
}

func (o *ZapObserver) OnEvent(_ context.Context, event Event) {
	fields := make([]zap.Field, 0, len(event.Data)+1)
	fields = append(fields, zap.String("source", event.Source))
	for k, v := range event.Data {
		fields = append(fields, zap.Any(k, v))
	}

	if ce := o.logger.Check(zapLevel(event.Level), string(event.Type)); ce != nil {
		ce.Write(fields...)
	}
}

func zapLevel(l Level) zapcore.Level {
	switch {
	case l <= 8:
		return zapcore.DebugLevel
	case l <= 12:
		return zapcore.InfoLevel
	case l <= 16:
		return zapcore.WarnLevel
	default:
		return zapcore.ErrorLevel
	}
}
