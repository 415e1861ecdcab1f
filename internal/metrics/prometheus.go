package metrics

import (
	"strconv"
	"sync"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/arloliu/shapley/types"
)

// PrometheusCollector implements types.MetricsCollector backed by Prometheus.
type PrometheusCollector struct {
	reg       prometheus.Registerer
	namespace string
	once      sync.Once

	oracleEvalDuration prometheus.Histogram
	estimationDuration *prometheus.HistogramVec
	estimationSamples  *prometheus.CounterVec

	stateTransitions *prometheus.CounterVec
	updatesMerged    *prometheus.CounterVec
	permutations     *prometheus.CounterVec
	convergenceRatio prometheus.Gauge

	permutationDuration prometheus.Histogram
}

// Compile-time assertion that PrometheusCollector implements MetricsCollector.
var _ types.MetricsCollector = (*PrometheusCollector)(nil)

// NewPrometheus creates a new Prometheus-backed metrics collector.
//
// Parameters:
//   - reg: Prometheus registerer interface (uses prometheus.DefaultRegisterer if nil)
//   - namespace: Prometheus metrics namespace (defaults to "shapley" if empty)
//
// Returns:
//   - *PrometheusCollector: A MetricsCollector implementation using Prometheus
func NewPrometheus(reg prometheus.Registerer, namespace string) *PrometheusCollector {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	if namespace == "" {
		namespace = "shapley"
	}

	return &PrometheusCollector{reg: reg, namespace: namespace}
}

func (p *PrometheusCollector) ensureRegistered() {
	p.once.Do(func() {
		p.oracleEvalDuration = prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: p.namespace,
			Subsystem: "estimator",
			Name:      "oracle_evaluation_seconds",
			Help:      "Latency of utility oracle evaluations in seconds.",
			Buckets:   prometheus.ExponentialBuckets(0.0001, 4, 10), // 100µs .. ~26s
		})

		p.estimationDuration = prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: p.namespace,
			Subsystem: "estimator",
			Name:      "estimation_seconds",
			Help:      "Wall-clock duration of completed estimation runs by method.",
			Buckets:   prometheus.ExponentialBuckets(0.01, 2.5, 12),
		}, []string{"method"})

		p.estimationSamples = prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: p.namespace,
			Subsystem: "estimator",
			Name:      "samples_total",
			Help:      "Total Monte Carlo samples drawn by method.",
		}, []string{"method"})

		p.stateTransitions = prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: p.namespace,
			Subsystem: "coordinator",
			Name:      "state_transitions_total",
			Help:      "Coordinator state transitions by from/to state.",
		}, []string{"from", "to"})

		p.updatesMerged = prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: p.namespace,
			Subsystem: "coordinator",
			Name:      "updates_merged_total",
			Help:      "Worker updates merged into the aggregate by worker.",
		}, []string{"worker"})

		p.permutations = prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: p.namespace,
			Subsystem: "worker",
			Name:      "permutations_total",
			Help:      "Permutations processed by worker.",
		}, []string{"worker"})

		p.convergenceRatio = prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: p.namespace,
			Subsystem: "coordinator",
			Name:      "convergence_ratio",
			Help:      "Worst standard-deviation-to-value ratio across items.",
		})

		p.permutationDuration = prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: p.namespace,
			Subsystem: "worker",
			Name:      "permutation_seconds",
			Help:      "Time to process one permutation, dominated by oracle calls.",
			Buckets:   prometheus.ExponentialBuckets(0.001, 3, 10),
		})

		collectors := []prometheus.Collector{
			p.oracleEvalDuration,
			p.estimationDuration,
			p.estimationSamples,
			p.stateTransitions,
			p.updatesMerged,
			p.permutations,
			p.convergenceRatio,
			p.permutationDuration,
		}
		for _, c := range collectors {
			// AlreadyRegisteredError is tolerated so multiple estimators can
			// share one registry.
			if err := p.reg.Register(c); err != nil {
				if _, ok := err.(prometheus.AlreadyRegisteredError); !ok {
					panic(err)
				}
			}
		}
	})
}

// RecordOracleEvaluation records a single oracle call duration.
func (p *PrometheusCollector) RecordOracleEvaluation(duration float64) {
	p.ensureRegistered()
	p.oracleEvalDuration.Observe(duration)
}

// RecordEstimation records a completed estimation run.
func (p *PrometheusCollector) RecordEstimation(method string, duration float64, nSamples int) {
	p.ensureRegistered()
	p.estimationDuration.WithLabelValues(method).Observe(duration)
	p.estimationSamples.WithLabelValues(method).Add(float64(nSamples))
}

// RecordStateTransition records a coordinator state transition.
func (p *PrometheusCollector) RecordStateTransition(from, to types.RunState) {
	p.ensureRegistered()
	p.stateTransitions.WithLabelValues(from.String(), to.String()).Inc()
}

// RecordUpdateMerged records a merged worker update.
func (p *PrometheusCollector) RecordUpdateMerged(workerID int, permutations int) {
	p.ensureRegistered()
	p.updatesMerged.WithLabelValues(strconv.Itoa(workerID)).Add(float64(permutations))
}

// RecordConvergence sets the current convergence ratio gauge.
func (p *PrometheusCollector) RecordConvergence(ratio float64) {
	p.ensureRegistered()
	p.convergenceRatio.Set(ratio)
}

// RecordPermutation records one processed permutation on a worker.
func (p *PrometheusCollector) RecordPermutation(workerID int, duration float64) {
	p.ensureRegistered()
	p.permutations.WithLabelValues(strconv.Itoa(workerID)).Inc()
	p.permutationDuration.Observe(duration)
}
