// Package stats records generation outcomes as Prometheus metrics.
package stats

import (
	"github.com/prometheus/client_golang/prometheus"

	"github.com/strongdm/cedar-go-generators/ast"
	"github.com/strongdm/cedar-go-generators/generator"
)

// Recorder counts generation attempts by operation and outcome, and tracks
// the size of the expressions produced. It implements generator.Observer.
type Recorder struct {
	Attempts *prometheus.CounterVec
	Nodes    *prometheus.HistogramVec
	Depth    *prometheus.HistogramVec
}

var _ generator.Observer = (*Recorder)(nil)

// New returns a Recorder whose collectors are registered on reg.
func New(reg prometheus.Registerer) *Recorder {
	r := &Recorder{
		Attempts: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "cedargen_attempts_total",
				Help: "Total number of generation attempts by operation and outcome",
			},
			[]string{"op", "outcome"},
		),
		Nodes: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "cedargen_expression_nodes",
				Help:    "Number of nodes in generated expressions",
				Buckets: prometheus.ExponentialBuckets(1, 2, 10),
			},
			[]string{"op"},
		),
		Depth: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "cedargen_expression_depth",
				Help:    "Depth of generated expressions",
				Buckets: prometheus.LinearBuckets(1, 1, 10),
			},
			[]string{"op"},
		),
	}
	reg.MustRegister(r.Attempts, r.Nodes, r.Depth)
	return r
}

// Observe counts one attempt of op. A nil err counts as "ok".
func (r *Recorder) Observe(op string, err error) {
	r.Attempts.WithLabelValues(op, generator.Kind(err)).Inc()
}

// ObserveExpr records the shape of an expression produced by op.
func (r *Recorder) ObserveExpr(op string, n ast.IsNode) {
	r.Nodes.WithLabelValues(op).Observe(float64(ast.Count(n)))
	r.Depth.WithLabelValues(op).Observe(float64(ast.Depth(n)))
}
