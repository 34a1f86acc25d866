package telemetry

import (
	"context"

	"github.com/shopspring/decimal"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

// InvoiceMetrics records invoice activity: how many invoices are created,
// how many are paid and how much was paid.
type InvoiceMetrics struct {
	created    metric.Int64Counter
	paid       metric.Int64Counter
	paidAmount metric.Float64Histogram
}

// NewInvoiceMetrics creates the invoice instruments on meter
func NewInvoiceMetrics(meter metric.Meter) (*InvoiceMetrics, error) {
	created, err := meter.Int64Counter("billing.invoices.created",
		metric.WithDescription("Number of invoices created"),
		metric.WithUnit("{invoice}"))
	if err != nil {
		return nil, err
	}
	paid, err := meter.Int64Counter("billing.invoices.paid",
		metric.WithDescription("Number of invoices marked paid"),
		metric.WithUnit("{invoice}"))
	if err != nil {
		return nil, err
	}
	paidAmount, err := meter.Float64Histogram("billing.invoices.paid_amount",
		metric.WithDescription("Grand total of invoices marked paid"),
		metric.WithUnit("{currency}"),
		metric.WithExplicitBucketBoundaries(10, 50, 100, 500, 1000, 5000, 10000, 50000, 100000))
	if err != nil {
		return nil, err
	}
	return &InvoiceMetrics{created: created, paid: paid, paidAmount: paidAmount}, nil
}

// InvoiceCreated counts one created invoice
func (m *InvoiceMetrics) InvoiceCreated(ctx context.Context) {
	m.created.Add(ctx, 1)
}

// InvoicePaid counts one paid invoice and records its grand total. from is
// the status it left.
func (m *InvoiceMetrics) InvoicePaid(ctx context.Context, from string, amount decimal.Decimal) {
	attrs := metric.WithAttributes(attribute.String("invoice.from_status", from))
	m.paid.Add(ctx, 1, attrs)
	m.paidAmount.Record(ctx, amount.InexactFloat64(), attrs)
}

// InvoiceMetrics returns the invoice instruments when business metrics are
// enabled and a meter provider is running, and nil otherwise.
func (p *Providers) InvoiceMetrics() (*InvoiceMetrics, error) {
	if p == nil || p.meter == nil || !p.cfg.BusinessMetricsEnabled {
		return nil, nil
	}
	return NewInvoiceMetrics(p.Meter("billing.invoices"))
}
