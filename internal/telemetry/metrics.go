package telemetry

import (
	"context"
	"sync"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

const (
	meterName = "github.com/wolfeidau/assetforge"
)

// Metrics holds all the OpenTelemetry metric instruments
type Metrics struct {
	BuildsTotal      metric.Int64Counter
	BuildErrorsTotal metric.Int64Counter
	BuildDuration    metric.Float64Histogram

	OutputFilesTotal metric.Int64Counter
	OutputBytesTotal metric.Int64Counter
}

var (
	once    sync.Once
	metrics *Metrics
)

// GetMetrics returns the singleton Metrics instance, initializing it if necessary
func GetMetrics() *Metrics {
	once.Do(func() {
		metrics = initMetrics()
	})
	return metrics
}

// initMetrics creates and registers all metric instruments
func initMetrics() *Metrics {
	meter := otel.GetMeterProvider().Meter(meterName)

	m := &Metrics{}

	m.BuildsTotal, _ = meter.Int64Counter(
		"assetforge.build.total",
		metric.WithDescription("Total number of asset builds"),
		metric.WithUnit("{build}"),
	)

	m.BuildErrorsTotal, _ = meter.Int64Counter(
		"assetforge.build.errors.total",
		metric.WithDescription("Total number of failed asset builds"),
		metric.WithUnit("{error}"),
	)

	m.BuildDuration, _ = meter.Float64Histogram(
		"assetforge.build.duration",
		metric.WithDescription("Duration of asset builds"),
		metric.WithUnit("ms"),
	)

	m.OutputFilesTotal, _ = meter.Int64Counter(
		"assetforge.outputs.files.total",
		metric.WithDescription("Total number of bundle files written"),
		metric.WithUnit("{file}"),
	)

	m.OutputBytesTotal, _ = meter.Int64Counter(
		"assetforge.outputs.bytes.total",
		metric.WithDescription("Total number of bundle bytes written"),
		metric.WithUnit("By"),
	)

	return m
}

// RecordBuild records one build attempt for mode.
func RecordBuild(ctx context.Context, mode string, duration time.Duration, err error) {
	m := GetMetrics()
	attrs := metric.WithAttributes(attribute.String("mode", mode))

	m.BuildsTotal.Add(ctx, 1, attrs)
	m.BuildDuration.Record(ctx, float64(duration.Milliseconds()), attrs)
	if err != nil {
		m.BuildErrorsTotal.Add(ctx, 1, attrs)
	}
}

// RecordOutputs records the files written by a build.
func RecordOutputs(ctx context.Context, files int, bytes int64) {
	m := GetMetrics()
	m.OutputFilesTotal.Add(ctx, int64(files))
	m.OutputBytesTotal.Add(ctx, bytes)
}
