package trial

import (
	"fmt"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/metric"
)

// MeterName identifies the trial subsystem to the meter provider.
const MeterName = "trial-manager"

// Metrics holds the trial-specific OpenTelemetry instruments. The
// component records through the metric API only; installing a provider
// and exporter is the host's business.
type Metrics struct {
	ActivationAttempts  metric.Int64Counter
	ActivationSuccess   metric.Int64Counter
	ActivationFailures  metric.Int64Counter
	StatusChecks        metric.Int64Counter
	StatusCheckDuration metric.Float64Histogram
	TamperEvents        metric.Int64Counter
	ReplicaWrites       metric.Int64Counter
}

// NewMetrics creates the trial instruments on the given meter. Pass
// otel.Meter(MeterName) to use the globally registered provider.
func NewMetrics(meter metric.Meter) (*Metrics, error) {
	metrics := &Metrics{}

	var err error

	metrics.ActivationAttempts, err = meter.Int64Counter(
		"trial_activation_attempts_total",
		metric.WithDescription("Total number of trial activation attempts"),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create activation attempts counter: %w", err)
	}

	metrics.ActivationSuccess, err = meter.Int64Counter(
		"trial_activation_success_total",
		metric.WithDescription("Total number of successful trial activations"),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create activation success counter: %w", err)
	}

	metrics.ActivationFailures, err = meter.Int64Counter(
		"trial_activation_failures_total",
		metric.WithDescription("Total number of failed trial activations by reason"),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create activation failures counter: %w", err)
	}

	metrics.StatusChecks, err = meter.Int64Counter(
		"trial_status_checks_total",
		metric.WithDescription("Total number of trial status checks by resulting state"),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create status checks counter: %w", err)
	}

	metrics.StatusCheckDuration, err = meter.Float64Histogram(
		"trial_status_check_duration_ms",
		metric.WithDescription("Trial status check duration in milliseconds"),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create status check duration histogram: %w", err)
	}

	metrics.TamperEvents, err = meter.Int64Counter(
		"trial_tamper_events_total",
		metric.WithDescription("Total number of detected tamper conditions"),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create tamper events counter: %w", err)
	}

	metrics.ReplicaWrites, err = meter.Int64Counter(
		"trial_replica_writes_total",
		metric.WithDescription("Total number of trial record replicas written"),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create replica writes counter: %w", err)
	}

	return metrics, nil
}

// DefaultMetrics creates the instruments on the globally registered
// meter provider.
func DefaultMetrics() (*Metrics, error) {
	return NewMetrics(otel.Meter(MeterName))
}
