package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

// MaxProfileAttrLength bounds the profile query value copied onto spans
const MaxProfileAttrLength = 50

// TracingConfig holds configuration for the tracing middleware.
type TracingConfig struct {
	// ServiceName names the server in otelgin spans.
	ServiceName string
	// Enabled controls whether tracing is active.
	Enabled bool
}

// DefaultTracingConfig returns default tracing configuration.
func DefaultTracingConfig() TracingConfig {
	return TracingConfig{
		ServiceName: "bakeops-backend",
		Enabled:     true,
	}
}

// Tracing returns OpenTelemetry tracing middleware with default configuration.
func Tracing() gin.HandlerFunc {
	return TracingWithConfig(DefaultTracingConfig())
}

// TracingWithConfig wraps otelgin. The server span is named
// "METHOD route" and propagates incoming trace context; the costing
// service spans become its children.
func TracingWithConfig(cfg TracingConfig) gin.HandlerFunc {
	if !cfg.Enabled {
		return func(c *gin.Context) {
			c.Next()
		}
	}
	return otelgin.Middleware(cfg.ServiceName)
}

// TracingAttributeInjector copies request_id and the requested pricing
// profile onto the server span. Place it after Tracing and RequestID.
func TracingAttributeInjector() gin.HandlerFunc {
	return func(c *gin.Context) {
		span := trace.SpanFromContext(c.Request.Context())
		if span.IsRecording() {
			enrichSpanWithAttributes(c, span)
		}
		c.Next()
	}
}

func enrichSpanWithAttributes(c *gin.Context, span trace.Span) {
	if requestID := getRequestID(c); requestID != "" {
		span.SetAttributes(attribute.String("request_id", requestID))
	}
	if profile := c.Query("profile"); profile != "" && len(profile) <= MaxProfileAttrLength {
		span.SetAttributes(attribute.String("costing.profile", profile))
	}
}

// getRequestID prefers the ID set by RequestID and falls back to a bounded
// header value.
func getRequestID(c *gin.Context) string {
	if id := c.GetString(RequestIDKey); id != "" {
		return id
	}
	headerID := c.GetHeader(RequestIDHeader)
	if len(headerID) > MaxRequestIDLength {
		return headerID[:MaxRequestIDLength]
	}
	return headerID
}

// SpanErrorMarker marks the server span as failed for 4xx and 5xx
// responses. otelgin alone only flags 5xx. Place it after Tracing.
func SpanErrorMarker() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		span := trace.SpanFromContext(c.Request.Context())
		if !span.IsRecording() {
			return
		}

		status := c.Writer.Status()
		if status < http.StatusBadRequest {
			return
		}
		span.SetStatus(codes.Error, errorDescription(status))
		span.SetAttributes(attribute.Int("http.status_code", status))
	}
}

func errorDescription(status int) string {
	switch {
	case status >= http.StatusInternalServerError:
		return "Internal Server Error"
	case status == http.StatusNotFound:
		return "Not Found"
	case status == http.StatusRequestTimeout:
		return "Request Timeout"
	case status == http.StatusRequestEntityTooLarge:
		return "Payload Too Large"
	case status == http.StatusUnprocessableEntity:
		return "Unprocessable Entity"
	default:
		return "Client Error"
	}
}
