// Package metrics exposes Prometheus counters for the login and payment flows.
package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Result labels.
const (
	ResultSuccess  = "success"
	ResultRejected = "rejected"
	ResultError    = "error"
)

// Recorder is what services report to.
type Recorder interface {
	RecordChallengeIssued()
	RecordLogin(result string)
	RecordPaymentCheck(result string)
	ObserveChainQuery(d time.Duration)
}

type Collector struct {
	challengesIssued  prometheus.Counter
	logins            *prometheus.CounterVec
	paymentChecks     *prometheus.CounterVec
	chainQueryLatency prometheus.Histogram
}

// NewCollector creates a Collector and registers it on reg.
func NewCollector(reg prometheus.Registerer) *Collector {
	c := &Collector{
		challengesIssued: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "cryptobackend_challenges_issued_total",
			Help: "Login challenges issued.",
		}),
		logins: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "cryptobackend_logins_total",
			Help: "Signature verifications by result.",
		}, []string{"result"}),
		paymentChecks: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "cryptobackend_payment_checks_total",
			Help: "Payment checks by result.",
		}, []string{"result"}),
		chainQueryLatency: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "cryptobackend_chain_query_seconds",
			Help:    "Latency of the transfer-event chain query.",
			Buckets: prometheus.DefBuckets,
		}),
	}

	reg.MustRegister(c.challengesIssued, c.logins, c.paymentChecks, c.chainQueryLatency)
	return c
}

func (c *Collector) RecordChallengeIssued() {
	c.challengesIssued.Inc()
}

func (c *Collector) RecordLogin(result string) {
	c.logins.WithLabelValues(result).Inc()
}

func (c *Collector) RecordPaymentCheck(result string) {
	c.paymentChecks.WithLabelValues(result).Inc()
}

func (c *Collector) ObserveChainQuery(d time.Duration) {
	c.chainQueryLatency.Observe(d.Seconds())
}

// Handler serves the registry in the Prometheus text format.
func Handler(g prometheus.Gatherer) http.Handler {
	return promhttp.HandlerFor(g, promhttp.HandlerOpts{})
}
