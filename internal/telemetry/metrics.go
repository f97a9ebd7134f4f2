// Package telemetry exposes Prometheus metrics for digest extraction.
package telemetry

import (
	"errors"
	"fmt"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Metrics records extraction outcomes. A nil *Metrics is a valid no-op.
type Metrics struct {
	extractions    prometheus.Counter
	clusters       prometheus.Counter
	taskSessions   prometheus.Counter
	searchMissions prometheus.Counter
	clusterSize    prometheus.Histogram
	duration       prometheus.Histogram
}

// NewMetrics creates the collectors and registers them with reg. Collectors
// that are already registered are reused.
func NewMetrics(reg prometheus.Registerer, namespace string) (*Metrics, error) {
	if reg == nil {
		return nil, errors.New("telemetry: nil registerer")
	}
	if namespace == "" {
		namespace = "daydigest"
	}
	m := &Metrics{
		extractions: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "extractions_total",
			Help:      "Day digests processed by the semantic extractor.",
		}),
		clusters: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "article_clusters_total",
			Help:      "Article clusters emitted after dropping singletons.",
		}),
		taskSessions: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "task_sessions_total",
			Help:      "Task sessions built from conversation turns.",
		}),
		searchMissions: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "search_missions_total",
			Help:      "Search missions assembled from query chains.",
		}),
		clusterSize: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "cluster_size",
			Help:      "Articles per emitted cluster.",
			Buckets:   []float64{2, 3, 5, 8, 13, 21},
		}),
		duration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "extraction_duration_seconds",
			Help:      "Wall time spent extracting one day digest.",
			Buckets:   prometheus.ExponentialBuckets(0.0005, 4, 8),
		}),
	}
	var err error
	if m.extractions, err = registerCounter(reg, m.extractions); err != nil {
		return nil, err
	}
	if m.clusters, err = registerCounter(reg, m.clusters); err != nil {
		return nil, err
	}
	if m.taskSessions, err = registerCounter(reg, m.taskSessions); err != nil {
		return nil, err
	}
	if m.searchMissions, err = registerCounter(reg, m.searchMissions); err != nil {
		return nil, err
	}
	if m.clusterSize, err = registerHistogram(reg, m.clusterSize); err != nil {
		return nil, err
	}
	if m.duration, err = registerHistogram(reg, m.duration); err != nil {
		return nil, err
	}
	return m, nil
}

func registerCounter(reg prometheus.Registerer, c prometheus.Counter) (prometheus.Counter, error) {
	if err := reg.Register(c); err != nil {
		var are prometheus.AlreadyRegisteredError
		if errors.As(err, &are) {
			if existing, ok := are.ExistingCollector.(prometheus.Counter); ok {
				return existing, nil
			}
		}
		return nil, fmt.Errorf("register counter: %w", err)
	}
	return c, nil
}

func registerHistogram(reg prometheus.Registerer, h prometheus.Histogram) (prometheus.Histogram, error) {
	if err := reg.Register(h); err != nil {
		var are prometheus.AlreadyRegisteredError
		if errors.As(err, &are) {
			if existing, ok := are.ExistingCollector.(prometheus.Histogram); ok {
				return existing, nil
			}
		}
		return nil, fmt.Errorf("register histogram: %w", err)
	}
	return h, nil
}

// ObserveExtraction records the result sizes of one extraction.
func (m *Metrics) ObserveExtraction(clusterSizes []int, sessions, missions int, took time.Duration) {
	if m == nil {
		return
	}
	m.extractions.Inc()
	m.clusters.Add(float64(len(clusterSizes)))
	for _, n := range clusterSizes {
		m.clusterSize.Observe(float64(n))
	}
	m.taskSessions.Add(float64(sessions))
	m.searchMissions.Add(float64(missions))
	m.duration.Observe(took.Seconds())
}
