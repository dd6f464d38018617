// Package metrics provides Prometheus metrics collection for the article
// tracker bot. It covers the polling loop, sitemap contents and webhook
// delivery, exposed on the bot's metrics endpoint.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds all Prometheus metrics for the tracker bot.
type Metrics struct {
	// Polling metrics
	PollsTotal          prometheus.Counter   // Total number of poll cycles
	PollFailures        prometheus.Counter   // Total number of failed poll cycles
	PollDuration        prometheus.Histogram // Duration of a poll cycle
	ConsecutiveFailures prometheus.Gauge     // Current run of failed cycles
	LastPollTimestamp   prometheus.Gauge     // Unix time of the last completed cycle
	SitemapEntries      prometheus.Gauge     // URL entries in the last fetched sitemap

	// Detection metrics
	ArticlesDetected prometheus.Counter // Total number of new articles detected

	// Webhook metrics
	WebhookSends    prometheus.Counter // Total number of webhook deliveries
	WebhookFailures prometheus.Counter // Total number of failed webhook deliveries

	// System metrics
	ErrorsTotal prometheus.Counter // Total number of errors encountered
}

// New creates and registers all Prometheus metrics using the default registry.
func New() *Metrics {
	return NewWithRegistry(prometheus.DefaultRegisterer)
}

// NewWithRegistry creates metrics with a custom registry (useful for testing).
func NewWithRegistry(registerer prometheus.Registerer) *Metrics {
	factory := promauto.With(registerer)
	return &Metrics{
		PollsTotal: factory.NewCounter(prometheus.CounterOpts{
			Name: "polls_total",
			Help: "Total number of sitemap poll cycles",
		}),
		PollFailures: factory.NewCounter(prometheus.CounterOpts{
			Name: "poll_failures_total",
			Help: "Total number of failed poll cycles",
		}),
		PollDuration: factory.NewHistogram(prometheus.HistogramOpts{
			Name:    "poll_duration_seconds",
			Help:    "Duration of a poll cycle in seconds",
			Buckets: prometheus.DefBuckets,
		}),
		ConsecutiveFailures: factory.NewGauge(prometheus.GaugeOpts{
			Name: "consecutive_poll_failures",
			Help: "Current run of consecutive failed poll cycles",
		}),
		LastPollTimestamp: factory.NewGauge(prometheus.GaugeOpts{
			Name: "last_poll_timestamp_seconds",
			Help: "Unix timestamp of the last completed poll cycle",
		}),
		SitemapEntries: factory.NewGauge(prometheus.GaugeOpts{
			Name: "sitemap_entries",
			Help: "Number of URL entries in the last fetched sitemap",
		}),
		ArticlesDetected: factory.NewCounter(prometheus.CounterOpts{
			Name: "articles_detected_total",
			Help: "Total number of new articles detected",
		}),
		WebhookSends: factory.NewCounter(prometheus.CounterOpts{
			Name: "webhook_sends_total",
			Help: "Total number of Discord webhook deliveries",
		}),
		WebhookFailures: factory.NewCounter(prometheus.CounterOpts{
			Name: "webhook_failures_total",
			Help: "Total number of failed Discord webhook deliveries",
		}),
		ErrorsTotal: factory.NewCounter(prometheus.CounterOpts{
			Name: "errors_total",
			Help: "Total number of errors encountered",
		}),
	}
}
