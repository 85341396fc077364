package ctxutil

import "context"

type traceKey struct{}

// TraceData correlates a request's log lines with its span.
type TraceData struct {
	TraceID   string
	RequestID string
}

func WithTraceData(ctx context.Context, td *TraceData) context.Context {
	return context.WithValue(Default(ctx), traceKey{}, td)
}

func GetTraceData(ctx context.Context) *TraceData {
	if td, ok := Default(ctx).Value(traceKey{}).(*TraceData); ok {
		return td
	}
	return nil
}

// LogFields returns the trace and profile key/values present on ctx, in
// the order request logs print them.
func LogFields(ctx context.Context) []interface{} {
	var fields []interface{}
	if td := GetTraceData(ctx); td != nil {
		fields = append(fields, "trace_id", td.TraceID, "request_id", td.RequestID)
	}
	if pd := GetProfile(ctx); pd != nil {
		fields = append(fields, "profile_id", pd.ProfileID, "profile_source", pd.Source)
	}
	return fields
}
