package service

import (
	"strconv"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// Метрики предсказаний
	predictionDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "predmaint_prediction_duration_seconds",
		Help:    "Duration of a full prediction request (load, fit, predict)",
		Buckets: prometheus.DefBuckets,
	})

	predictionsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "predmaint_predictions_total",
		Help: "Total number of predictions produced",
	}, []string{"source"})

	predictionErrors = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "predmaint_prediction_errors_total",
		Help: "Total number of failed prediction requests",
	}, []string{"kind"})

	// Метрики кэша
	cacheHits = promauto.NewCounter(prometheus.CounterOpts{
		Name: "predmaint_cache_hits_total",
		Help: "Total number of prediction cache hits",
	})

	cacheMisses = promauto.NewCounter(prometheus.CounterOpts{
		Name: "predmaint_cache_misses_total",
		Help: "Total number of prediction cache misses",
	})

	// Метрики импорта
	importDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "predmaint_import_duration_seconds",
		Help:    "Duration of dataset workbook import",
		Buckets: prometheus.DefBuckets,
	})

	recordsClassified = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "predmaint_records_classified_total",
		Help: "Total number of records classified during import",
	}, []string{"category"})

	// Метрики HTTP
	httpRequestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "predmaint_http_request_duration_seconds",
		Help:    "Duration of HTTP requests",
		Buckets: prometheus.DefBuckets,
	}, []string{"method", "path", "status"})
)

// RecordHTTPRequest записывает метрику HTTP запроса
func RecordHTTPRequest(method, path string, duration float64, status int) {
	httpRequestDuration.WithLabelValues(method, path, strconv.Itoa(status)).Observe(duration)
}
