package metrics

import (
	"errors"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/wagus-labs/agent-portal/portal/economy/pricing"
)

func TestMetrics_ObserveCycle(t *testing.T) {
	m := New()

	m.ObserveCycle(pricing.Snapshot{Price: 0.0112, TreasuryValueUSD: 51750, EffectiveSupply: 7.9e6, DailyVolume: 5000}, time.Millisecond, nil)
	assert.Equal(t, 0.0112, testutil.ToFloat64(m.price))
	assert.Equal(t, 51750.0, testutil.ToFloat64(m.treasury))
	assert.Equal(t, 0.0, testutil.ToFloat64(m.stale))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.cycles.WithLabelValues("ok")))

	m.ObserveCycle(pricing.Snapshot{Price: 0.0112}, time.Millisecond, errors.New("economic invariant violated"))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.stale))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.cycles.WithLabelValues("failed")))
	assert.Equal(t, 0.0112, testutil.ToFloat64(m.price), "failed cycles keep the last price")
}

func TestMetrics_ObserveRequest(t *testing.T) {
	m := New()

	m.ObserveRequest("GET", "/api/token/", 200, time.Millisecond)
	m.ObserveRequest("GET", "/api/token/", 401, time.Millisecond)
	m.ObserveRequest("GET", "/api/token/", 200, time.Millisecond)

	assert.Equal(t, 2.0, testutil.ToFloat64(m.httpRequests.WithLabelValues("GET", "/api/token/", "200")))
	assert.Equal(t, 1, testutil.CollectAndCount(m.httpDuration))
}
