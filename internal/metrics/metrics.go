package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	CampaignsStarted = prometheus.NewCounter(
		prometheus.CounterOpts{Name: "dispatch_campaigns_started_total", Help: "Campaigns accepted for dispatch"},
	)
	CampaignsFinished = prometheus.NewCounterVec(
		prometheus.CounterOpts{Name: "dispatch_campaigns_finished_total", Help: "Campaigns finished, by reason"},
		[]string{"reason"},
	)
	MessagesSent = prometheus.NewCounter(
		prometheus.CounterOpts{Name: "dispatch_messages_sent_total", Help: "Messages sent successfully"},
	)
	MessagesFailed = prometheus.NewCounter(
		prometheus.CounterOpts{Name: "dispatch_messages_failed_total", Help: "Messages that failed to send"},
	)
	SendDuration = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "dispatch_send_duration_seconds",
			Help:    "Time spent in one transport send",
			Buckets: prometheus.DefBuckets,
		},
	)
	BatchesPromoted = prometheus.NewCounterVec(
		prometheus.CounterOpts{Name: "promoter_batches_total", Help: "Scheduled batches processed, by terminal status"},
		[]string{"status"},
	)
	RecordingErrors = prometheus.NewCounter(
		prometheus.CounterOpts{Name: "dispatch_recording_errors_total", Help: "Sent-record writes that failed and were swallowed"},
	)
)

func init() {
	prometheus.MustRegister(
		CampaignsStarted, CampaignsFinished,
		MessagesSent, MessagesFailed, SendDuration,
		BatchesPromoted, RecordingErrors,
	)
}

func Handler() http.Handler { return promhttp.Handler() }
