package observability

import (
	"errors"

	contextutils "ireporter/internal/utils"

	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

// GinMiddleware wraps otelgin and marks failed requests on the server span
// so traces carry the error status and the handler that produced it.
func GinMiddleware(serviceName string) gin.HandlerFunc {
	instrument := otelgin.Middleware(serviceName)
	return func(c *gin.Context) {
		instrument(c)
		c.Next()

		span := trace.SpanFromContext(c.Request.Context())
		statusCode := c.Writer.Status()
		if span == nil || statusCode < 400 {
			return
		}

		errorMsg := "client error"
		if statusCode >= 500 {
			errorMsg = "server error"
		}
		for _, ginErr := range c.Errors {
			var appErr *contextutils.AppError
			if errors.As(ginErr.Err, &appErr) {
				errorMsg = appErr.Message
				break
			}
			errorMsg = ginErr.Error()
		}

		span.RecordError(errors.New(errorMsg))
		span.SetStatus(codes.Error, errorMsg)
		span.SetAttributes(
			attribute.Int("http.status_code", statusCode),
			attribute.String("http.method", c.Request.Method),
			attribute.String("http.path", c.Request.URL.Path),
			attribute.String("error.handler", c.HandlerName()),
		)
	}
}
