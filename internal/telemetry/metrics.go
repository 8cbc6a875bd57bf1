// Package telemetry provides OpenTelemetry instrumentation for the registration server.
package telemetry

import (
	"context"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

// RegistrationMetricsMeterName is the name used for the registration metrics meter
const RegistrationMetricsMeterName = "github.com/stacklok/event-registration-server/registration"

// Registration results recorded by RecordRegistration
const (
	ResultAccepted  = "accepted"
	ResultInvalid   = "invalid"
	ResultDuplicate = "duplicate"
	ResultError     = "error"
)

// RegistrationMetrics holds the OpenTelemetry instruments for registration metrics
type RegistrationMetrics struct {
	registrations metric.Int64Counter
	exports       metric.Int64Counter
	storedTotal   metric.Int64Gauge
}

// NewRegistrationMetrics creates a new RegistrationMetrics instance with the given meter provider.
// If provider is nil, it returns nil (no-op metrics).
func NewRegistrationMetrics(provider metric.MeterProvider) (*RegistrationMetrics, error) {
	if provider == nil {
		return nil, nil
	}

	meter := provider.Meter(RegistrationMetricsMeterName)

	registrations, err := meter.Int64Counter(
		"reg_srv_registrations_total",
		metric.WithDescription("Registration attempts by result"),
		metric.WithUnit("{registration}"),
	)
	if err != nil {
		return nil, err
	}

	exports, err := meter.Int64Counter(
		"reg_srv_exports_total",
		metric.WithDescription("CSV exports served"),
		metric.WithUnit("{export}"),
	)
	if err != nil {
		return nil, err
	}

	storedTotal, err := meter.Int64Gauge(
		"reg_srv_registrations_stored",
		metric.WithDescription("Number of stored registrations"),
		metric.WithUnit("{registration}"),
	)
	if err != nil {
		return nil, err
	}

	return &RegistrationMetrics{
		registrations: registrations,
		exports:       exports,
		storedTotal:   storedTotal,
	}, nil
}

// RecordRegistration counts a registration attempt with its result
func (m *RegistrationMetrics) RecordRegistration(ctx context.Context, result string) {
	if m == nil || m.registrations == nil {
		return
	}
	m.registrations.Add(ctx, 1, metric.WithAttributes(attribute.String("result", result)))
}

// RecordExport counts a CSV export
func (m *RegistrationMetrics) RecordExport(ctx context.Context, rows int) {
	if m == nil || m.exports == nil {
		return
	}
	m.exports.Add(ctx, 1)
	m.RecordStoredTotal(ctx, int64(rows))
}

// RecordStoredTotal records the current number of stored registrations
func (m *RegistrationMetrics) RecordStoredTotal(ctx context.Context, count int64) {
	if m == nil || m.storedTotal == nil {
		return
	}
	m.storedTotal.Record(ctx, count)
}
