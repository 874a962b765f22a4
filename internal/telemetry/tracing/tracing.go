package tracing

import (
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

var GlobalTracer = otel.Tracer("main-backend")
var GlobalWorkoutsBackupTracer = otel.Tracer("gdrive-workouts-backup")

// EndSpanWithErrCheck ends the span, marking it as failed
// and recording the error if err is not nil
func EndSpanWithErrCheck(span trace.Span, err error) {
	if err != nil {
		span.SetStatus(codes.Error, err.Error())
		span.RecordError(err)
	}
	span.End()
}
