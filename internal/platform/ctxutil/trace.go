package ctxutil

import (
	"context"
	"encoding/json"
	"strings"
)

type traceDataKey struct{}

// TraceData follows one request into the jobs it enqueues. The ids travel in
// job payloads under "trace_id" and "request_id".
type TraceData struct {
	TraceID   string `json:"trace_id,omitempty"`
	RequestID string `json:"request_id,omitempty"`
}

func (td *TraceData) empty() bool {
	return td == nil || (td.TraceID == "" && td.RequestID == "")
}

func WithTraceData(ctx context.Context, td *TraceData) context.Context {
	return context.WithValue(Default(ctx), traceDataKey{}, td)
}

func GetTraceData(ctx context.Context) *TraceData {
	if ctx == nil {
		return nil
	}
	td, _ := ctx.Value(traceDataKey{}).(*TraceData)
	return td
}

// Stamp copies the ids into fields without overwriting keys already set.
func (td *TraceData) Stamp(fields map[string]any) {
	if td.empty() || fields == nil {
		return
	}
	if _, ok := fields["trace_id"]; !ok && td.TraceID != "" {
		fields["trace_id"] = td.TraceID
	}
	if _, ok := fields["request_id"]; !ok && td.RequestID != "" {
		fields["request_id"] = td.RequestID
	}
}

// TraceDataFromPayload recovers ids stamped into a job payload. It returns
// nil for payloads without them.
func TraceDataFromPayload(raw []byte) *TraceData {
	if len(raw) == 0 {
		return nil
	}
	var td TraceData
	if err := json.Unmarshal(raw, &td); err != nil {
		return nil
	}
	td.TraceID = strings.TrimSpace(td.TraceID)
	td.RequestID = strings.TrimSpace(td.RequestID)
	if td.empty() {
		return nil
	}
	return &td
}

// LogFields returns the ids as logger key-value pairs.
func LogFields(ctx context.Context) []interface{} {
	td := GetTraceData(ctx)
	if td.empty() {
		return nil
	}
	out := make([]interface{}, 0, 4)
	if td.TraceID != "" {
		out = append(out, "trace_id", td.TraceID)
	}
	if td.RequestID != "" {
		out = append(out, "request_id", td.RequestID)
	}
	return out
}

func Default(ctx context.Context) context.Context {
	if ctx == nil {
		return context.Background()
	}
	return ctx
}
