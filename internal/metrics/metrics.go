package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	// HTTPRequestsTotal counts handled requests by route template and status
	HTTPRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "crm_http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "route", "status"},
	)

	// HTTPRequestDuration tracks request latency
	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "crm_http_request_duration_seconds",
			Help:    "Duration of HTTP requests in seconds",
			Buckets: []float64{.001, .005, .01, .025, .05, .1, .25, .5, 1, 2.5},
		},
		[]string{"method", "route"},
	)

	ContactsRegisteredTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "crm_contacts_registered_total",
			Help: "Total number of contact events committed",
		},
	)

	// ContactRegistrationFailuresTotal is labelled by validation, not_found or storage
	ContactRegistrationFailuresTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "crm_contact_registration_failures_total",
			Help: "Total number of rejected or rolled back contact registrations",
		},
		[]string{"reason"},
	)

	BusinessesCreatedTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "crm_businesses_created_total",
			Help: "Total number of businesses created",
		},
	)

	BusinessesDeletedTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "crm_businesses_deleted_total",
			Help: "Total number of businesses deleted",
		},
	)
)

// Handler exposes the default registry for scraping
func Handler() http.Handler { return promhttp.Handler() }
