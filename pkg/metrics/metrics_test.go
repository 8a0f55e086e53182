package metrics

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestTimer(t *testing.T) {
	timer := NewTimer("build")
	time.Sleep(time.Millisecond)
	first := timer.Stop()
	assert.GreaterOrEqual(t, first, time.Millisecond)
	assert.GreaterOrEqual(t, timer.Stop(), first)
	assert.Equal(t, "build", timer.Name())
}

func TestThroughputTracker(t *testing.T) {
	tracker := NewThroughputTracker("fluss.metrics_test")
	tracker.Increment(10)
	tracker.Increment(5)
	time.Sleep(5 * time.Millisecond)

	rps := tracker.GetAndReset()
	assert.Greater(t, rps, 0.0)
	assert.Equal(t, rps, testutil.ToFloat64(Throughput.WithLabelValues("fluss.metrics_test")))

	time.Sleep(time.Millisecond)
	assert.Equal(t, 0.0, tracker.GetAndReset())
}

func TestCollectorsRegistered(t *testing.T) {
	before := testutil.ToFloat64(AppendsRejected.WithLabelValues(ReasonFull))
	AppendsRejected.WithLabelValues(ReasonFull).Inc()
	assert.Equal(t, before+1, testutil.ToFloat64(AppendsRejected.WithLabelValues(ReasonFull)))

	BatchSizeBytes.WithLabelValues("test").Observe(1024)
	assert.GreaterOrEqual(t, testutil.CollectAndCount(BatchSizeBytes), 1)
}
