package core

import (
	"context"

	"github.com/dibaihss/serverless-api-Azure-Ludo/internal/mediator"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

var _ mediator.PipelineBehavior = (*TracingBehavior)(nil)

// TracingBehavior opens one span per dispatched request.
type TracingBehavior struct {
	Tracer trace.Tracer
}

func (b *TracingBehavior) Handle(
	ctx context.Context,
	request interface{},
	next mediator.RequestHandlerFunc,
) (interface{}, error) {
	requestType := mediator.RequestName(request)

	ctx, span := b.Tracer.Start(ctx, requestType, trace.WithAttributes(
		attribute.String("request.type", requestType),
		attribute.String("correlation.id", CorrelationID(ctx)),
	))
	defer span.End()

	response, err := next(ctx, request)
	RecordSpanError(span, err)

	return response, err
}

// RecordSpanError marks span as failed for anything but a client rejection.
func RecordSpanError(span trace.Span, err error) {
	if err == nil {
		return
	}

	span.RecordError(err)

	if kind, ok := KindOf(err); ok && kind != KindTransient {
		span.SetAttributes(attribute.String("error.kind", kind.String()))
		return
	}

	span.SetStatus(codes.Error, err.Error())
}
