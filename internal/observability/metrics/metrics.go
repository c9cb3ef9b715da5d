package metrics

import "github.com/prometheus/client_golang/prometheus"

const defaultService = "accounts"

var (
	httpRequests = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "Total number of HTTP requests.",
		},
		[]string{"service", "method", "path", "status"},
	)

	httpRequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "Duration of HTTP requests.",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"service", "method", "path"},
	)

	registrations = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "accounts_registrations_total",
			Help: "Total number of registration attempts.",
		},
		[]string{"service", "result"},
	)

	logins = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "accounts_logins_total",
			Help: "Total number of login attempts.",
		},
		[]string{"service", "result"},
	)

	activations = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "accounts_email_activations_total",
			Help: "Total number of email activation attempts.",
		},
		[]string{"service", "result"},
	)

	activationEmails = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "accounts_activation_emails_total",
			Help: "Total number of activation emails sent, skipped or failed.",
		},
		[]string{"service", "result"},
	)

	sessionsIssued = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "accounts_sessions_issued_total",
			Help: "Total number of login sessions issued or revoked.",
		},
		[]string{"service", "result"},
	)
)

// Curried views with the service label bound. Callers pass the remaining labels.
var (
	HTTPRequestsTotal          *prometheus.CounterVec
	HTTPRequestDurationSeconds prometheus.ObserverVec
	RegistrationsTotal         *prometheus.CounterVec
	LoginsTotal                *prometheus.CounterVec
	ActivationsTotal           *prometheus.CounterVec
	ActivationEmailsTotal      *prometheus.CounterVec
	SessionsTotal              *prometheus.CounterVec
)

func init() {
	curry(defaultService)
}

func curry(serviceName string) {
	labels := prometheus.Labels{"service": serviceName}
	HTTPRequestsTotal = httpRequests.MustCurryWith(labels)
	HTTPRequestDurationSeconds = httpRequestDuration.MustCurryWith(labels)
	RegistrationsTotal = registrations.MustCurryWith(labels)
	LoginsTotal = logins.MustCurryWith(labels)
	ActivationsTotal = activations.MustCurryWith(labels)
	ActivationEmailsTotal = activationEmails.MustCurryWith(labels)
	SessionsTotal = sessionsIssued.MustCurryWith(labels)
}

// MustRegister binds serviceName as the service label and registers every
// collector with reg. A nil reg uses the default Prometheus registerer.
func MustRegister(reg prometheus.Registerer, serviceName string) {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	curry(serviceName)
	reg.MustRegister(
		httpRequests,
		httpRequestDuration,
		registrations,
		logins,
		activations,
		activationEmails,
		sessionsIssued,
	)
}
