// Package metrics содержит счётчики Prometheus для поиска каналов, заявок и доставки отчётов.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "ytg"

var (
	// Lookups считает обращения к сервису метаданных по виду запроса и исходу.
	Lookups = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "lookups_total",
		Help:      "Metadata lookups by kind and outcome.",
	}, []string{"kind", "outcome"})

	// Discovered считает каналы, впервые найденные поиском.
	Discovered = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "discovered_channels_total",
		Help:      "Channel mappings created by discovery.",
	})

	// Resolutions: длительность полного прохода по подпискам.
	Resolutions = promauto.NewHistogram(prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "resolution_duration_seconds",
		Help:      "Duration of subscription resolution runs.",
		Buckets:   prometheus.ExponentialBuckets(0.5, 2, 10),
	})

	// Submissions считает заявки и решения модератора по итоговому статусу.
	Submissions = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "submissions_total",
		Help:      "Submission workflow transitions by status.",
	}, []string{"status"})

	// Deliveries считает отправленные страницы отчёта.
	Deliveries = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "report_pages_total",
		Help:      "Report pages sent, by outcome.",
	}, []string{"outcome"})
)

// Handler отдаёт метрики для /metrics.
func Handler() http.Handler {
	return promhttp.Handler()
}
