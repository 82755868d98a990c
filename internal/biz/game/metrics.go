package game

import (
	"context"

	"github.com/go-kratos/kratos/v2/log"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/metric/noop"
)

const meterName = "github.com/yola1107/yut/internal/biz/game"

// 指标名
const (
	MetricThrows   = "yut.throws"
	MetricMoves    = "yut.moves"
	MetricCaptures = "yut.captures"
	MetricFinished = "yut.tokens.finished"
	MetricGames    = "yut.games.ended"
)

type metrics struct {
	throws   metric.Int64Counter
	moves    metric.Int64Counter
	captures metric.Int64Counter
	finished metric.Int64Counter
	games    metric.Int64Counter
}

func defaultMetrics() *metrics {
	return newMetrics(otel.Meter(meterName))
}

func newMetrics(m metric.Meter) *metrics {
	fallback := noop.NewMeterProvider().Meter(meterName)
	counter := func(name, desc string) metric.Int64Counter {
		c, err := m.Int64Counter(name, metric.WithDescription(desc))
		if err != nil {
			log.Warnf("create counter %s failed: %v", name, err)
			c, _ = fallback.Int64Counter(name)
		}
		return c
	}
	return &metrics{
		throws:   counter(MetricThrows, "stick throws"),
		moves:    counter(MetricMoves, "resolved moves"),
		captures: counter(MetricCaptures, "captured tokens"),
		finished: counter(MetricFinished, "tokens that walked off the board"),
		games:    counter(MetricGames, "games ended"),
	}
}

func (m *metrics) throw(v int32) {
	m.throws.Add(context.Background(), 1, metric.WithAttributes(attribute.Int("value", int(v))))
}

func (m *metrics) move(player int32, captured, finished int) {
	ctx := context.Background()
	attrs := metric.WithAttributes(attribute.Int("player", int(player)))
	m.moves.Add(ctx, 1, attrs)
	if captured > 0 {
		m.captures.Add(ctx, int64(captured), attrs)
	}
	if finished > 0 {
		m.finished.Add(ctx, int64(finished), attrs)
	}
}

func (m *metrics) gameEnded(winner int32) {
	m.games.Add(context.Background(), 1, metric.WithAttributes(attribute.Int("winner", int(winner))))
}
