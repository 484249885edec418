package logger

import (
	"context"

	"go.uber.org/zap"
)

type (
	loggerKey    struct{}
	requestIDKey struct{}
)

// WithRequest returns ctx carrying the request id and base tagged with it.
// Sync work spawned from the request keeps both, so its lines join the
// request's wide event.
func WithRequest(ctx context.Context, base *zap.Logger, requestID string) context.Context {
	ctx = context.WithValue(ctx, requestIDKey{}, requestID)
	return context.WithValue(ctx, loggerKey{}, base.With(RequestID(requestID)))
}

// RequestIDFrom returns the request id stored by WithRequest, or "".
func RequestIDFrom(ctx context.Context) string {
	id, _ := ctx.Value(requestIDKey{}).(string)
	return id
}

// FromContext returns the request logger, or a nop logger outside a request.
func FromContext(ctx context.Context) *zap.Logger {
	if l, ok := ctx.Value(loggerKey{}).(*zap.Logger); ok {
		return l
	}
	return zap.NewNop()
}

// With returns ctx whose logger carries fields in addition to the current ones.
func With(ctx context.Context, fields ...zap.Field) context.Context {
	return context.WithValue(ctx, loggerKey{}, FromContext(ctx).With(fields...))
}

// Scoped tags base with the request id found in ctx, if any.
// Components that own their logger use it instead of FromContext.
func Scoped(ctx context.Context, base *zap.Logger) *zap.Logger {
	if id := RequestIDFrom(ctx); id != "" {
		return base.With(RequestID(id))
	}
	return base
}
