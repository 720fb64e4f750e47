package metrics

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestObserveStoreOp(t *testing.T) {
	m := New(prometheus.NewRegistry())

	m.ObserveStoreOp("list", "ok")
	m.ObserveStoreOp("list", "ok")
	m.ObserveStoreOp("delete", "failed")

	assert.Equal(t, 2.0, testutil.ToFloat64(m.StoreOps.WithLabelValues("list", "ok")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.StoreOps.WithLabelValues("delete", "failed")))
}

func TestNew_SeparateRegistries(t *testing.T) {
	// Registering twice on distinct registries must not panic.
	New(prometheus.NewRegistry())
	New(prometheus.NewRegistry())
}
