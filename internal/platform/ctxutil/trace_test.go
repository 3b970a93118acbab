package ctxutil

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStampKeepsExistingKeys(t *testing.T) {
	td := &TraceData{TraceID: "t-1", RequestID: "r-1"}
	fields := map[string]any{"course_id": "c", "request_id": "caller"}
	td.Stamp(fields)
	assert.Equal(t, "t-1", fields["trace_id"])
	assert.Equal(t, "caller", fields["request_id"])

	var nilTD *TraceData
	nilTD.Stamp(fields)
}

func TestTraceDataFromPayload(t *testing.T) {
	td := TraceDataFromPayload([]byte(`{"course_id":"c","trace_id":" t-2 ","request_id":"r-2"}`))
	require.NotNil(t, td)
	assert.Equal(t, "t-2", td.TraceID)
	assert.Equal(t, "r-2", td.RequestID)

	assert.Nil(t, TraceDataFromPayload([]byte(`{"course_id":"c"}`)))
	assert.Nil(t, TraceDataFromPayload([]byte(`not json`)))
	assert.Nil(t, TraceDataFromPayload(nil))
}

func TestLogFields(t *testing.T) {
	assert.Nil(t, LogFields(context.Background()))
	ctx := WithTraceData(context.Background(), &TraceData{RequestID: "r-3"})
	assert.Equal(t, []interface{}{"request_id", "r-3"}, LogFields(ctx))
}
