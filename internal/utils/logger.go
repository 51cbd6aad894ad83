package utils

import (
	"context"
	"log"
	"strings"
)

type requestIDKey struct{}

// LogEvent prints standardized log line with module/action/request_id.
// Avoid logging sensitive payload; message should be summarized.
func LogEvent(requestID, module, action, message string) {
	req := strings.TrimSpace(requestID)
	log.Printf("[%s] action=%s request_id=%s msg=%s", strings.ToUpper(module), action, req, message)
}

// LogCtx is LogEvent with the request id taken from ctx.
func LogCtx(ctx context.Context, module, action, message string) {
	LogEvent(RequestIDFrom(ctx), module, action, message)
}

// WithRequestID stores the request id so services can log it without gin.
func WithRequestID(ctx context.Context, id string) context.Context {
	if id == "" {
		return ctx
	}
	return context.WithValue(ctx, requestIDKey{}, id)
}

func RequestIDFrom(ctx context.Context) string {
	if ctx == nil {
		return ""
	}
	if v, ok := ctx.Value(requestIDKey{}).(string); ok {
		return v
	}
	return ""
}
