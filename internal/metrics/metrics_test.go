package metrics

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestRecordSessionCreated(t *testing.T) {
	before := testutil.ToFloat64(SessionsCreatedTotal)
	RecordSessionCreated()
	assert.Equal(t, before+1, testutil.ToFloat64(SessionsCreatedTotal))
}

func TestRecordCallbackOutcome(t *testing.T) {
	c := CallbackOutcomesTotal.WithLabelValues("google", "profile")
	before := testutil.ToFloat64(c)

	RecordCallbackOutcome("google", "profile")

	assert.Equal(t, before+1, testutil.ToFloat64(c))
}

func TestRecordCallbackOutcomeUnknownClient(t *testing.T) {
	c := CallbackOutcomesTotal.WithLabelValues("unknown", "failure")
	before := testutil.ToFloat64(c)

	RecordCallbackOutcome("", "failure")

	assert.Equal(t, before+1, testutil.ToFloat64(c))
}

func TestRecordProfileLookup(t *testing.T) {
	hit := ProfileLookupsTotal.WithLabelValues("hit")
	miss := ProfileLookupsTotal.WithLabelValues("miss")
	hitBefore, missBefore := testutil.ToFloat64(hit), testutil.ToFloat64(miss)

	RecordProfileLookup(true)
	RecordProfileLookup(false)
	RecordProfileLookup(false)

	assert.Equal(t, hitBefore+1, testutil.ToFloat64(hit))
	assert.Equal(t, missBefore+2, testutil.ToFloat64(miss))
}

func TestRecordLoginRedirectAndLogout(t *testing.T) {
	r := LoginRedirectsTotal.WithLabelValues("form")
	rBefore := testutil.ToFloat64(r)
	lBefore := testutil.ToFloat64(LogoutsTotal)

	RecordLoginRedirect("form")
	RecordLogout()

	assert.Equal(t, rBefore+1, testutil.ToFloat64(r))
	assert.Equal(t, lBefore+1, testutil.ToFloat64(LogoutsTotal))
}
