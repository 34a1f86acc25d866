package telemetry

import (
	"context"
	"testing"

	"github.com/billing/backend/internal/infrastructure/config"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/metric/metricdata"
	"go.uber.org/zap"
)

func TestInvoiceMetrics(t *testing.T) {
	ctx := context.Background()
	reader := sdkmetric.NewManualReader()
	provider := sdkmetric.NewMeterProvider(sdkmetric.WithReader(reader))
	t.Cleanup(func() { _ = provider.Shutdown(ctx) })

	m, err := NewInvoiceMetrics(provider.Meter("test"))
	require.NoError(t, err)

	m.InvoiceCreated(ctx)
	m.InvoiceCreated(ctx)
	m.InvoicePaid(ctx, "sent", decimal.RequireFromString("110.50"))
	m.InvoicePaid(ctx, "draft", decimal.RequireFromString("40"))

	var rm metricdata.ResourceMetrics
	require.NoError(t, reader.Collect(ctx, &rm))
	require.Len(t, rm.ScopeMetrics, 1)

	byName := map[string]metricdata.Aggregation{}
	for _, metric := range rm.ScopeMetrics[0].Metrics {
		byName[metric.Name] = metric.Data
	}

	created, ok := byName["billing.invoices.created"].(metricdata.Sum[int64])
	require.True(t, ok)
	require.Len(t, created.DataPoints, 1)
	assert.Equal(t, int64(2), created.DataPoints[0].Value)

	paid, ok := byName["billing.invoices.paid"].(metricdata.Sum[int64])
	require.True(t, ok)
	var paidTotal int64
	for _, dp := range paid.DataPoints {
		paidTotal += dp.Value
	}
	assert.Equal(t, int64(2), paidTotal)
	assert.Len(t, paid.DataPoints, 2)

	amounts, ok := byName["billing.invoices.paid_amount"].(metricdata.Histogram[float64])
	require.True(t, ok)
	var sum float64
	var count uint64
	for _, dp := range amounts.DataPoints {
		sum += dp.Sum
		count += dp.Count
	}
	assert.Equal(t, uint64(2), count)
	assert.InDelta(t, 150.5, sum, 0.001)
}

func TestProviders_InvoiceMetrics(t *testing.T) {
	t.Run("nil without a meter provider", func(t *testing.T) {
		p, err := Setup(context.Background(), config.TelemetryConfig{BusinessMetricsEnabled: true}, "test", zap.NewNop())
		require.NoError(t, err)

		m, err := p.InvoiceMetrics()
		require.NoError(t, err)
		assert.Nil(t, m)
	})

	t.Run("nil when switched off", func(t *testing.T) {
		p := &Providers{meter: sdkmetric.NewMeterProvider()}
		t.Cleanup(func() { _ = p.meter.Shutdown(context.Background()) })

		m, err := p.InvoiceMetrics()
		require.NoError(t, err)
		assert.Nil(t, m)
	})

	t.Run("created when switched on", func(t *testing.T) {
		p := &Providers{
			cfg:   config.TelemetryConfig{BusinessMetricsEnabled: true},
			meter: sdkmetric.NewMeterProvider(),
		}
		t.Cleanup(func() { _ = p.meter.Shutdown(context.Background()) })

		m, err := p.InvoiceMetrics()
		require.NoError(t, err)
		assert.NotNil(t, m)
	})
}
