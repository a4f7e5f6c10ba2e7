package core

import (
	"context"
	"errors"

	"github.com/dibaihss/serverless-api-Azure-Ludo/internal/mediator"

	"go.uber.org/zap"
)

const loggerContextKey contextKey = "logger"

func WithLogger(ctx context.Context, logger *zap.Logger) context.Context {
	return context.WithValue(ctx, loggerContextKey, logger)
}

// Logger returns the request scoped logger, or a no-op logger when none was
// stored.
func Logger(ctx context.Context) *zap.Logger {
	if logger, ok := ctx.Value(loggerContextKey).(*zap.Logger); ok && logger != nil {
		return logger
	}
	return zap.NewNop()
}

func LogError(ctx context.Context, msg string, fields ...zap.Field) {
	Logger(ctx).Error(msg, fields...)
}

var _ mediator.PipelineBehavior = (*RequestLoggingBehavior)(nil)

type RequestLoggingBehavior struct {
	Logger *zap.Logger
}

func (b *RequestLoggingBehavior) Handle(
	ctx context.Context,
	request interface{},
	next mediator.RequestHandlerFunc,
) (interface{}, error) {
	logFields := []zap.Field{zap.String("request_type", mediator.RequestName(request))}

	correlationID := CorrelationID(ctx)
	if correlationID != "" {
		logFields = append(logFields, zap.String("correlation_id", correlationID))
	}

	if session := Session(ctx); session.Authenticated() {
		logFields = append(logFields, zap.Int64("user_id", session.UserID))
	}

	if request != nil {
		logFields = append(logFields, zap.Any("request_body", request))
	}

	b.Logger.Info("processing request", logFields...)

	return next(ctx, request)
}

var _ mediator.PipelineBehavior = (*HandlerErrorLoggingBehavior)(nil)

type HandlerErrorLoggingBehavior struct {
	Logger *zap.Logger
}

func (b *HandlerErrorLoggingBehavior) Handle(
	ctx context.Context,
	request interface{},
	next mediator.RequestHandlerFunc,
) (interface{}, error) {
	response, err := next(ctx, request)
	if err == nil {
		return response, nil
	}

	fields := []zap.Field{
		zap.String("request_type", mediator.RequestName(request)),
		zap.Error(err),
	}

	if errors.Is(err, context.Canceled) {
		b.Logger.Debug("request cancelled", fields...)
		return response, err
	}

	// Rejections are part of normal traffic.
	if kind, ok := KindOf(err); ok && kind != KindTransient {
		b.Logger.Info("request rejected", append(fields, zap.Stringer("kind", kind))...)
		return response, err
	}

	b.Logger.Error("handler returned error", fields...)
	return response, err
}
