// internal/common/metrics/metrics.go
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	MessagesProcessed = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "assistant_messages_processed_total",
			Help: "Total number of chat messages processed by the assistant",
		},
		[]string{"intent", "status"},
	)

	IntentsDetected = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "assistant_intents_detected_total",
			Help: "Total number of intents detected by name",
		},
		[]string{"intent"},
	)

	IntentCacheHits = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "assistant_intent_cache_hits_total",
			Help: "Total number of intent classification cache hits",
		},
	)

	ProcessingDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name: "assistant_processing_duration_seconds",
			Help: "Duration of message processing in seconds",
		},
		[]string{"intent"},
	)

	LowStockAlertsSent = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "assistant_low_stock_alerts_sent_total",
			Help: "Total number of low stock alerts dispatched",
		},
	)
)
