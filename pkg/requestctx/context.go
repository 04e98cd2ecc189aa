package requestctx

import (
	"context"
	"time"

	"github.com/google/uuid"
)

type KeyContext string

var (
	keyTraceID   KeyContext = "trace_id"
	keyRequestID KeyContext = "request_id"
	keyFormat    KeyContext = "request_format"
	keyStartTime KeyContext = "request_start_time"
	keyCaller    KeyContext = "caller"
)

// Request formats accepted by the messages endpoint
const (
	FormatDirect   = "direct"
	FormatActivity = "activity"
)

// Caller identifies the authenticated principal of a request
type Caller struct {
	Subject  string
	AppID    string
	TenantID string
	Scopes   []string
	Roles    []string
}

// RequestMetadata holds metadata for one inbound request
type RequestMetadata struct {
	TraceID   string
	RequestID string
	Format    string
	StartTime time.Time
}

// Begin initializes a request context. An empty traceID generates a new one.
func Begin(parentCtx context.Context, traceID, requestID string) context.Context {
	if traceID == "" {
		traceID = uuid.NewString()
	}
	ctx := context.WithValue(parentCtx, keyTraceID, traceID)
	ctx = context.WithValue(ctx, keyRequestID, requestID)
	ctx = context.WithValue(ctx, keyStartTime, time.Now())
	return ctx
}

// GetTraceID extracts the trace id from context
func GetTraceID(ctx context.Context) string {
	traceID, _ := ctx.Value(keyTraceID).(string)
	return traceID
}

// GetRequestID extracts the request id from context
func GetRequestID(ctx context.Context) string {
	requestID, _ := ctx.Value(keyRequestID).(string)
	return requestID
}

// SetFormat records which request shape was detected
func SetFormat(ctx context.Context, format string) context.Context {
	return context.WithValue(ctx, keyFormat, format)
}

// GetFormat extracts the detected request format
func GetFormat(ctx context.Context) string {
	format, _ := ctx.Value(keyFormat).(string)
	return format
}

// GetStartTime extracts request start time from context
func GetStartTime(ctx context.Context) (time.Time, bool) {
	startTime, ok := ctx.Value(keyStartTime).(time.Time)
	return startTime, ok
}

// Elapsed returns time since Begin, or zero when unknown
func Elapsed(ctx context.Context) time.Duration {
	start, ok := GetStartTime(ctx)
	if !ok {
		return 0
	}
	return time.Since(start)
}

// WithCaller stores the authenticated caller
func WithCaller(ctx context.Context, caller *Caller) context.Context {
	return context.WithValue(ctx, keyCaller, caller)
}

// GetCaller extracts the authenticated caller, if any
func GetCaller(ctx context.Context) (*Caller, bool) {
	caller, ok := ctx.Value(keyCaller).(*Caller)
	return caller, ok && caller != nil
}

// GetMetadata extracts all request metadata from context
func GetMetadata(ctx context.Context) *RequestMetadata {
	startTime, _ := GetStartTime(ctx)
	return &RequestMetadata{
		TraceID:   GetTraceID(ctx),
		RequestID: GetRequestID(ctx),
		Format:    GetFormat(ctx),
		StartTime: startTime,
	}
}
