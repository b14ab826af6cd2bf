// SPDX-FileCopyrightText: 2025 Pickatale AS
//
// SPDX-License-Identifier: AGPL-3.0-only

// Package monitoring wires the pipeline's OpenTelemetry metrics. Metrics are
// optional: the CLI only constructs a Manager when an OTLP endpoint is
// configured.
package monitoring

import (
	"context"
	"fmt"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/exporters/otlp/otlpmetric/otlpmetricgrpc"
	"go.opentelemetry.io/otel/metric"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/resource"
	semconv "go.opentelemetry.io/otel/semconv/v1.26.0"
)

type Config struct {
	ServiceName    string
	ServiceVersion string
	OTLPEndpoint   string
}

// Manager owns the meter provider and the pipeline's instruments.
type Manager struct {
	meterProvider   *sdkmetric.MeterProvider
	pipelineMetrics *PipelineMetrics
}

// NewManager builds the OTLP metric pipeline and the pipeline instruments.
func NewManager(config Config) (*Manager, error) {
	ctx := context.Background()

	res, err := resource.New(ctx,
		resource.WithAttributes(
			semconv.ServiceName(config.ServiceName),
			semconv.ServiceVersion(config.ServiceVersion),
		),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create resource: %w", err)
	}

	if config.OTLPEndpoint == "" {
		return nil, fmt.Errorf("OTLP endpoint is required")
	}

	otlpExporter, err := otlpmetricgrpc.New(ctx,
		otlpmetricgrpc.WithEndpoint(config.OTLPEndpoint),
		otlpmetricgrpc.WithInsecure(),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create OTLP exporter: %w", err)
	}

	meterProvider := sdkmetric.NewMeterProvider(
		sdkmetric.WithResource(res),
		sdkmetric.WithReader(sdkmetric.NewPeriodicReader(otlpExporter)),
	)
	otel.SetMeterProvider(meterProvider)

	pipelineMetrics, err := NewPipelineMetrics(meterProvider.Meter("github.com/pickatale/bookrec"))
	if err != nil {
		return nil, fmt.Errorf("failed to create pipeline metrics: %w", err)
	}

	return &Manager{
		meterProvider:   meterProvider,
		pipelineMetrics: pipelineMetrics,
	}, nil
}

// GetPipelineMetrics returns the pipeline instruments.
func (m *Manager) GetPipelineMetrics() *PipelineMetrics {
	return m.pipelineMetrics
}

// GetMeter returns a meter for additional instrumentation.
func (m *Manager) GetMeter(instrumentationName string) metric.Meter {
	return m.meterProvider.Meter(instrumentationName)
}

// Shutdown flushes and stops the metric pipeline.
func (m *Manager) Shutdown(ctx context.Context) error {
	return m.meterProvider.Shutdown(ctx)
}
