package metrics_test

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"

	"storefront/internal/application/usecase"
	"storefront/internal/infra/metrics"
)

var _ usecase.Metrics = (*metrics.Metrics)(nil)

func TestMetrics_Counters(t *testing.T) {
	m := metrics.New(false)

	m.CartMutated("add")
	m.CartMutated("add")
	m.CartMutated("remove")
	m.OrderPlaced()
	m.OrderFailed()
	m.SessionsActive(3)

	assert.Equal(t, 2.0, testutil.ToFloat64(m.CartMutations.WithLabelValues("add")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.OrdersPlaced))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.OrdersFailed))
	assert.Equal(t, 3.0, testutil.ToFloat64(m.ActiveSessions))
}
