package metrics

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRegistryGathersRuntimeAndCustomMetrics(t *testing.T) {
	out := ProvideRegistry()

	counter := prometheus.NewCounter(prometheus.CounterOpts{Name: "traitproof_test_total", Help: "test"})
	require.NoError(t, out.Registerer.Register(counter))
	counter.Inc()

	families, err := out.Gatherer.Gather()
	require.NoError(t, err)

	names := make(map[string]bool, len(families))
	for _, f := range families {
		names[f.GetName()] = true
	}
	assert.True(t, names["traitproof_test_total"])
	assert.True(t, names["go_goroutines"])
}
