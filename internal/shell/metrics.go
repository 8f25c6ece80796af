package shell

import (
	"context"
	"time"

	"github.com/go-faster/errors"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

const meterName = "github.com/xenking/stock-keeper/internal/shell"

// Command outcomes recorded on the stock.commands counter.
const (
	outcomeOK        = "ok"
	outcomeInvalid   = "invalid"
	outcomeDuplicate = "duplicate"
	outcomeNotFound  = "not_found"
	outcomeCancelled = "cancelled"
	outcomeFailed    = "failed"
	outcomePanic     = "panic"
)

type metrics struct {
	commands metric.Int64Counter
	duration metric.Float64Histogram
	products metric.Int64Gauge
}

func newMetrics(mp metric.MeterProvider) (*metrics, error) {
	meter := mp.Meter(meterName)

	var (
		m   metrics
		err error
	)
	m.commands, err = meter.Int64Counter("stock.commands",
		metric.WithDescription("Menu commands executed"),
		metric.WithUnit("{command}"),
	)
	if err != nil {
		return nil, errors.Wrap(err, "commands counter")
	}
	m.duration, err = meter.Float64Histogram("stock.command.duration",
		metric.WithDescription("Time spent in a menu command, including prompts"),
		metric.WithUnit("s"),
	)
	if err != nil {
		return nil, errors.Wrap(err, "duration histogram")
	}
	m.products, err = meter.Int64Gauge("stock.products",
		metric.WithDescription("Products in the catalog after the last command"),
		metric.WithUnit("{product}"),
	)
	if err != nil {
		return nil, errors.Wrap(err, "products gauge")
	}
	return &m, nil
}

func (m *metrics) record(ctx context.Context, command, outcome string, took time.Duration, products int) {
	attrs := metric.WithAttributes(
		attribute.String("command", command),
		attribute.String("outcome", outcome),
	)
	m.commands.Add(ctx, 1, attrs)
	m.duration.Record(ctx, took.Seconds(), attrs)
	m.products.Record(ctx, int64(products))
}
