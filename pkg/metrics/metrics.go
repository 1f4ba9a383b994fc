package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

var (
	RateLimitAllowed = prometheus.NewCounterVec(
		prometheus.CounterOpts{Namespace: "portfolio", Name: "rate_limit_allowed_total", Help: "Number of allowed requests by limiter type and class."},
		[]string{"limiter", "class"},
	)
	RateLimitRejected = prometheus.NewCounterVec(
		prometheus.CounterOpts{Namespace: "portfolio", Name: "rate_limit_rejected_total", Help: "Number of rejected requests by limiter type and class."},
		[]string{"limiter", "class"},
	)
	HTTPRequests = prometheus.NewCounterVec(
		prometheus.CounterOpts{Namespace: "portfolio", Name: "http_requests_total", Help: "Total number of HTTP requests processed."},
		[]string{"method", "route", "status"},
	)
	ContactSubmissions = prometheus.NewCounterVec(
		prometheus.CounterOpts{Namespace: "portfolio", Name: "contact_submissions_total", Help: "Contact form submissions by outcome."},
		[]string{"outcome"},
	)
	MailSent = prometheus.NewCounterVec(
		prometheus.CounterOpts{Namespace: "portfolio", Name: "mail_sent_total", Help: "Notification emails by provider and outcome."},
		[]string{"provider", "outcome"},
	)
	Uploads = prometheus.NewCounterVec(
		prometheus.CounterOpts{Namespace: "portfolio", Name: "uploads_total", Help: "File uploads by kind and outcome."},
		[]string{"kind", "outcome"},
	)
)

// RegisterCollectors registers every collector above. Call once per registry.
func RegisterCollectors(reg prometheus.Registerer) {
	reg.MustRegister(RateLimitAllowed)
	reg.MustRegister(RateLimitRejected)
	reg.MustRegister(HTTPRequests)
	reg.MustRegister(ContactSubmissions)
	reg.MustRegister(MailSent)
	reg.MustRegister(Uploads)
}
