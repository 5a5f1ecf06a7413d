package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	HTTPRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "cverra_http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "path", "status"},
	)

	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "cverra_http_request_duration_seconds",
			Help:    "HTTP request duration in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "path"},
	)

	WalletReservationsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "cverra_wallet_reservations_total",
			Help: "Total number of coin reservations",
		},
		[]string{"outcome"},
	)

	WalletCommitsTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "cverra_wallet_commits_total",
			Help: "Total number of committed reservations",
		},
	)

	WalletRefundsTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "cverra_wallet_refunds_total",
			Help: "Total number of refunded reservations",
		},
	)

	WalletRefundFailuresTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "cverra_wallet_refund_failures_total",
			Help: "Refund attempts that failed and require operator attention",
		},
	)

	WalletTopUpsTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "cverra_wallet_topups_total",
			Help: "Total number of wallet top-ups",
		},
	)

	PurchasesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "cverra_article_purchases_total",
			Help: "Total number of premium article purchases",
		},
		[]string{"outcome"},
	)

	TranslationsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "cverra_translations_total",
			Help: "Total number of translation requests",
		},
		[]string{"status"},
	)

	TranslationCacheHitsTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "cverra_translation_cache_hits_total",
			Help: "Translation requests served from cache",
		},
	)

	TranslationQueueLength = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "cverra_translation_queue_length",
			Help: "Current length of the translation job queue",
		},
	)

	AIRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "cverra_ai_requests_total",
			Help: "Total number of AI completion calls",
		},
		[]string{"model", "status"},
	)

	AITokensUsedTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "cverra_ai_tokens_used_total",
			Help: "Total tokens consumed by AI completion calls",
		},
	)
)

func RecordHTTPRequest(method, path, status string, duration float64) {
	HTTPRequestsTotal.WithLabelValues(method, path, status).Inc()
	HTTPRequestDuration.WithLabelValues(method, path).Observe(duration)
}

func RecordReservation(outcome string) {
	WalletReservationsTotal.WithLabelValues(outcome).Inc()
}

func RecordCommit() {
	WalletCommitsTotal.Inc()
}

func RecordRefund() {
	WalletRefundsTotal.Inc()
}

func RecordRefundFailure() {
	WalletRefundFailuresTotal.Inc()
}

func RecordWalletTopUp() {
	WalletTopUpsTotal.Inc()
}

func RecordPurchase(outcome string) {
	PurchasesTotal.WithLabelValues(outcome).Inc()
}

func RecordTranslation(status string) {
	TranslationsTotal.WithLabelValues(status).Inc()
}

func RecordTranslationCacheHit() {
	TranslationCacheHitsTotal.Inc()
}

func RecordAIRequest(model, status string, tokens int) {
	AIRequestsTotal.WithLabelValues(model, status).Inc()
	if tokens > 0 {
		AITokensUsedTotal.Add(float64(tokens))
	}
}
