package main

import (
	"errors"

	"github.com/prometheus/client_golang/prometheus"

	compiler "tagc-go/packages/compiler/src"
	"tagc-go/packages/compiler/src/util"
)

// compileMetrics counts one batch of compilations
type compileMetrics struct {
	registry   *prometheus.Registry
	compiled   prometheus.Counter
	components *prometheus.CounterVec
	failures   *prometheus.CounterVec
	duration   prometheus.Histogram
}

func newCompileMetrics() *compileMetrics {
	m := &compileMetrics{
		registry: prometheus.NewRegistry(),
		compiled: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "tagc",
			Name:      "templates_compiled_total",
			Help:      "Number of templates compiled successfully.",
		}),
		components: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "tagc",
			Name:      "components_matched_total",
			Help:      "Number of component elements replaced by render calls.",
		}, []string{"component"}),
		failures: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "tagc",
			Name:      "compile_failures_total",
			Help:      "Number of templates that failed to compile, by error kind.",
		}, []string{"kind"}),
		duration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "tagc",
			Name:      "compile_duration_seconds",
			Help:      "Time spent compiling one template.",
			Buckets:   prometheus.ExponentialBuckets(0.0001, 4, 8),
		}),
	}
	m.registry.MustRegister(m.compiled, m.components, m.failures, m.duration)
	return m
}

func (m *compileMetrics) observe(result *compiler.CompileResult) {
	m.compiled.Inc()
	m.duration.Observe(result.Duration.Seconds())
	for _, call := range result.Calls {
		m.components.WithLabelValues(call.Target).Inc()
	}
}

func (m *compileMetrics) fail(err error) {
	kind := "io"
	var parseErr *util.ParseError
	if errors.As(err, &parseErr) {
		kind = parseErr.Kind.String()
	}
	m.failures.WithLabelValues(kind).Inc()
}

// writeTextfile writes the metrics in the node exporter textfile format
func (m *compileMetrics) writeTextfile(path string) error {
	return prometheus.WriteToTextfile(path, m.registry)
}
