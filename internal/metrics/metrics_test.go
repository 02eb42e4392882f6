package metrics

import (
	"errors"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestRecordInterpretation(t *testing.T) {
	before := testutil.ToFloat64(interpretCounter.WithLabelValues(MatchKeyword))
	RecordInterpretation(MatchKeyword)
	assert.Equal(t, before+1, testutil.ToFloat64(interpretCounter.WithLabelValues(MatchKeyword)))
}

func TestRecordWrite_Outcome(t *testing.T) {
	okBefore := testutil.ToFloat64(recordWriteCounter.WithLabelValues("expenses", "insert", "ok"))
	errBefore := testutil.ToFloat64(recordWriteCounter.WithLabelValues("expenses", "insert", "error"))

	RecordWrite("expenses", "insert", nil)
	RecordWrite("expenses", "insert", errors.New("down"))

	assert.Equal(t, okBefore+1, testutil.ToFloat64(recordWriteCounter.WithLabelValues("expenses", "insert", "ok")))
	assert.Equal(t, errBefore+1, testutil.ToFloat64(recordWriteCounter.WithLabelValues("expenses", "insert", "error")))
}

func TestClientGauge(t *testing.T) {
	before := testutil.ToFloat64(wsClientsGauge)
	ClientConnected()
	ClientConnected()
	ClientDisconnected()
	assert.Equal(t, before+1, testutil.ToFloat64(wsClientsGauge))
}

func TestRecordRateLimited(t *testing.T) {
	route := "/api/v1/voice/interpret"
	before := testutil.ToFloat64(rateLimitedCounter.WithLabelValues(route))
	RecordRateLimited(route)
	assert.Equal(t, before+1, testutil.ToFloat64(rateLimitedCounter.WithLabelValues(route)))
}
