package logging

import (
	"context"
	"maps"
)

type contextKey string

const contextFieldsKey contextKey = "asar.logging.fields"

// ContextWithFields stores structured fields on the context so loggers bound
// with WithContext include them. Fields already present are kept unless the
// new map overrides the same key.
func ContextWithFields(ctx context.Context, fields map[string]any) context.Context {
	if ctx == nil || len(fields) == 0 {
		return ctx
	}
	merged := ContextFields(ctx)
	if merged == nil {
		merged = make(map[string]any, len(fields))
	}
	maps.Copy(merged, fields)
	return context.WithValue(ctx, contextFieldsKey, merged)
}

// ContextFields returns a copy of the fields attached to ctx, or nil.
func ContextFields(ctx context.Context) map[string]any {
	if ctx == nil {
		return nil
	}
	fields, ok := ctx.Value(contextFieldsKey).(map[string]any)
	if !ok || len(fields) == 0 {
		return nil
	}
	return maps.Clone(fields)
}

// RequestIDField is the key used for request correlation across log entries.
const RequestIDField = "request_id"

// ContextWithRequestID is a shorthand for tagging a context with the request id.
func ContextWithRequestID(ctx context.Context, requestID string) context.Context {
	if requestID == "" {
		return ctx
	}
	return ContextWithFields(ctx, map[string]any{RequestIDField: requestID})
}
