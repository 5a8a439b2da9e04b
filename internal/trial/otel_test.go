package trial

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/metric/noop"
)

func TestNewMetrics(t *testing.T) {
	metrics, err := NewMetrics(noop.NewMeterProvider().Meter("test"))
	require.NoError(t, err)

	assert.NotNil(t, metrics.ActivationAttempts)
	assert.NotNil(t, metrics.ActivationSuccess)
	assert.NotNil(t, metrics.ActivationFailures)
	assert.NotNil(t, metrics.StatusChecks)
	assert.NotNil(t, metrics.StatusCheckDuration)
	assert.NotNil(t, metrics.TamperEvents)
	assert.NotNil(t, metrics.ReplicaWrites)
}

func TestDefaultMetrics(t *testing.T) {
	metrics, err := DefaultMetrics()
	require.NoError(t, err)
	require.NotNil(t, metrics)
}

func TestManagerRecordsMetricsWithoutProvider(t *testing.T) {
	m := newTestManager(t)
	metrics, err := NewMetrics(noop.NewMeterProvider().Meter("test"))
	require.NoError(t, err)
	m.SetMetrics(metrics)

	ctx := context.Background()
	_, err = m.Activate(ctx)
	require.NoError(t, err)
	assert.True(t, m.IsValid(ctx))
}
