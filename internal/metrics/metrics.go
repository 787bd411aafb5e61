// Package metrics holds the OpenTelemetry instruments of the import pipeline.
package metrics

import (
	"context"
	"fmt"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

const instrumentationName = "github.com/optics-dcs/miz-import/internal/metrics"

func meter() metric.Meter {
	return otel.Meter(instrumentationName)
}

// Recorder records parse and import measurements.
type Recorder struct {
	imports       metric.Int64Counter
	failures      metric.Int64Counter
	parseDuration metric.Float64Histogram
}

// New creates a Recorder from the global OTel provider (no-op if not configured).
func New() (*Recorder, error) {
	return NewWithMeter(meter())
}

// NewWithMeter creates a Recorder on the given meter.
func NewWithMeter(m metric.Meter) (*Recorder, error) {
	r := &Recorder{}
	var err error

	r.imports, err = m.Int64Counter(
		"miz_import.imports",
		metric.WithDescription("Selected tree ids materialized into a package"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating imports counter: %w", err)
	}

	r.failures, err = m.Int64Counter(
		"miz_import.import_failures",
		metric.WithDescription("Selected tree ids that failed to materialize"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating failures counter: %w", err)
	}

	r.parseDuration, err = m.Float64Histogram(
		"miz_import.parse_duration_ms",
		metric.WithDescription("Time spent loading a mission archive"),
		metric.WithUnit("ms"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating parse duration histogram: %w", err)
	}

	return r, nil
}

// RecordParse records a mission load. A nil Recorder records nothing.
func (r *Recorder) RecordParse(ctx context.Context, d time.Duration, terrain string, err error) {
	if r == nil {
		return
	}
	r.parseDuration.Record(ctx, float64(d)/float64(time.Millisecond),
		metric.WithAttributes(
			attribute.String("terrain", terrain),
			attribute.Bool("error", err != nil),
		))
}

// RecordImport records the outcome of one materialization call.
func (r *Recorder) RecordImport(ctx context.Context, succeeded, failed int) {
	if r == nil {
		return
	}
	if succeeded > 0 {
		r.imports.Add(ctx, int64(succeeded))
	}
	if failed > 0 {
		r.failures.Add(ctx, int64(failed))
	}
}
