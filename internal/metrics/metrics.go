// Package metrics holds the Prometheus collectors exported on /metrics.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

type Metrics struct {
	Registry *prometheus.Registry

	HTTPRequests        *prometheus.CounterVec
	HTTPRequestDuration *prometheus.HistogramVec
	MailsRegistered     prometheus.Counter
	MailsPickedUp       *prometheus.CounterVec
	PhotosUploaded      prometheus.Counter
	NotificationErrors  prometheus.Counter
}

func New() *Metrics {
	reg := prometheus.NewRegistry()
	m := &Metrics{
		Registry: reg,
		HTTPRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "mailtrack",
			Name:      "http_requests_total",
			Help:      "HTTP requests by route, method and status code.",
		}, []string{"route", "method", "code"}),
		HTTPRequestDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "mailtrack",
			Name:      "http_request_duration_seconds",
			Help:      "HTTP request latency by route.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"route", "method"}),
		MailsRegistered: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "mailtrack",
			Name:      "mails_registered_total",
			Help:      "Mails registered by staff.",
		}),
		MailsPickedUp: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "mailtrack",
			Name:      "mails_picked_up_total",
			Help:      "Mails marked as picked up, by pickup method.",
		}, []string{"method"}),
		PhotosUploaded: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "mailtrack",
			Name:      "photos_uploaded_total",
			Help:      "Mail photos written to storage.",
		}),
		NotificationErrors: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "mailtrack",
			Name:      "notification_errors_total",
			Help:      "Mail registered events that a subscriber failed to handle.",
		}),
	}
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		m.HTTPRequests,
		m.HTTPRequestDuration,
		m.MailsRegistered,
		m.MailsPickedUp,
		m.PhotosUploaded,
		m.NotificationErrors,
	)
	return m
}

func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.Registry, promhttp.HandlerOpts{Registry: m.Registry})
}
