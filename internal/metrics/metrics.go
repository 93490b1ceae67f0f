package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "educhain"

var (
	// Outcome of every issuance request, labelled by the last saga state reached.
	IssuanceTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "certificate_issuance_total",
			Help:      "Total number of certificate issuance attempts by outcome",
		},
		[]string{"outcome"},
	)

	VerificationTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "certificate_verification_total",
			Help:      "Total number of certificate verifications by result",
		},
		[]string{"result"},
	)

	// Tokens that exist on chain without a matching minted row.
	InconsistencyTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "certificate_inconsistency_total",
			Help:      "Total number of minted tokens that could not be recorded locally",
		},
		[]string{"kind"},
	)

	CertificatesByStatus = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "certificates",
			Help:      "Number of stored certificates by status",
		},
		[]string{"status"},
	)

	httpRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "path", "status"},
	)

	httpRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "HTTP request duration in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "path"},
	)
)
