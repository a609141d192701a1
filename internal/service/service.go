package service

import (
	"context"
	"errors"
	"saas-billing/internal/apperr"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"gorm.io/gorm"
)

var tracer = otel.Tracer("saas-billing/internal/service")

// startSpan opens a span and returns a finisher that records err on it.
func startSpan(ctx context.Context, name string, opts ...trace.SpanStartOption) (context.Context, func(*error)) {
	ctx, span := tracer.Start(ctx, name, opts...)
	return ctx, func(errp *error) {
		if errp != nil && *errp != nil {
			span.RecordError(*errp)
			span.SetStatus(codes.Error, (*errp).Error())
		}
		span.End()
	}
}

// notFound turns gorm's missing-row error into a NotFound with msg.
func notFound(err error, msg string) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return apperr.NotFound(msg)
	}
	return err
}
