package observability

import (
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

// FinishSpan ends span, marking it failed when the surrounding function
// returned an error. Designed for named error returns:
//
//	ctx, span := observability.TraceReportFunction(ctx, "CreateReport")
//	defer observability.FinishSpan(span, &err)
func FinishSpan(span trace.Span, errPtr *error) {
	if span == nil {
		return
	}
	defer span.End()
	if errPtr == nil || *errPtr == nil {
		return
	}
	span.RecordError(*errPtr, trace.WithStackTrace(true))
	span.SetStatus(codes.Error, (*errPtr).Error())
}
