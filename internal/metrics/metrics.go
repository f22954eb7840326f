// Package metrics exports runner progress as Prometheus metrics.
package metrics

import (
	"net/http"
	"strconv"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/san-kum/tapesim/internal/runner"
)

// Collector is a runner observer. One collector tracks one machine.
type Collector[S, Y comparable] struct {
	steps    prometheus.Counter
	halts    *prometheus.CounterVec
	heads    *prometheus.GaugeVec
	cells    *prometheus.GaugeVec
	lastStep int
	halted   bool
}

// New registers the collector's metrics with reg.
func New[S, Y comparable](reg prometheus.Registerer) (*Collector[S, Y], error) {
	c := &Collector[S, Y]{
		steps: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "tapesim_steps_total",
			Help: "Total number of machine steps executed",
		}),
		halts: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "tapesim_halts_total",
			Help: "Number of halts by outcome",
		}, []string{"outcome"}),
		heads: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Name: "tapesim_head_position",
			Help: "Current head position per tape",
		}, []string{"tape"}),
		cells: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Name: "tapesim_tape_cells",
			Help: "Cells ever written per tape",
		}, []string{"tape"}),
	}
	for _, col := range []prometheus.Collector{c.steps, c.halts, c.heads, c.cells} {
		if err := reg.Register(col); err != nil {
			return nil, err
		}
	}
	return c, nil
}

func (c *Collector[S, Y]) OnStep(s runner.Snapshot[S, Y]) {
	if s.Step > c.lastStep {
		c.steps.Add(float64(s.Step - c.lastStep))
	}
	c.lastStep = s.Step

	for i, h := range s.Heads {
		c.heads.WithLabelValues(strconv.Itoa(i)).Set(float64(h))
	}
	for i, n := range s.Written {
		c.cells.WithLabelValues(strconv.Itoa(i)).Set(float64(n))
	}

	if s.Halted && !c.halted {
		c.halts.WithLabelValues(s.Outcome.String()).Inc()
	}
	c.halted = s.Halted
}

// Handler serves the metrics gathered by g.
func Handler(g prometheus.Gatherer) http.Handler {
	return promhttp.HandlerFor(g, promhttp.HandlerOpts{})
}
