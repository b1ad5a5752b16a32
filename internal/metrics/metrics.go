// Package metrics collects and exposes Prometheus metrics for the login core.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Collector counts authentication outcomes. Used by the auth service and
// session registry; a nil *Collector is safe and records nothing.
type Collector struct {
	authSuccess     prometheus.Counter
	authFailure     prometheus.Counter
	lockouts        prometheus.Counter
	lockedRejects   prometheus.Counter
	otpIssued       prometheus.Counter
	otpVerdicts     *prometheus.CounterVec
	sessionTimeouts prometheus.Counter
}

// NewCollector registers the login metrics on reg and returns the collector.
func NewCollector(reg prometheus.Registerer) *Collector {
	c := &Collector{
		authSuccess: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "wms_auth_success_total",
			Help: "Successful password authentications.",
		}),
		authFailure: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "wms_auth_failure_total",
			Help: "Failed password authentications.",
		}),
		lockouts: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "wms_auth_lockout_activations_total",
			Help: "Times an identity crossed the failure threshold and was locked.",
		}),
		lockedRejects: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "wms_auth_locked_rejects_total",
			Help: "Login attempts rejected because the identity was locked.",
		}),
		otpIssued: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "wms_otp_issued_total",
			Help: "OTP challenges issued.",
		}),
		otpVerdicts: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "wms_otp_verify_total",
			Help: "OTP verification attempts by verdict.",
		}, []string{"verdict"}),
		sessionTimeouts: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "wms_session_idle_timeouts_total",
			Help: "Sessions terminated by idle expiry.",
		}),
	}
	reg.MustRegister(c.authSuccess, c.authFailure, c.lockouts, c.lockedRejects,
		c.otpIssued, c.otpVerdicts, c.sessionTimeouts)
	return c
}

func (c *Collector) RecordAuthSuccess() {
	if c != nil {
		c.authSuccess.Inc()
	}
}

func (c *Collector) RecordAuthFailure() {
	if c != nil {
		c.authFailure.Inc()
	}
}

func (c *Collector) RecordLockoutActivation() {
	if c != nil {
		c.lockouts.Inc()
	}
}

func (c *Collector) RecordLockedReject() {
	if c != nil {
		c.lockedRejects.Inc()
	}
}

func (c *Collector) RecordOTPIssued() {
	if c != nil {
		c.otpIssued.Inc()
	}
}

// RecordOTPVerdict counts one verification attempt under the given verdict
// label (success, expired, invalid, attempts_exceeded).
func (c *Collector) RecordOTPVerdict(verdict string) {
	if c != nil {
		c.otpVerdicts.WithLabelValues(verdict).Inc()
	}
}

func (c *Collector) RecordSessionTimeout() {
	if c != nil {
		c.sessionTimeouts.Inc()
	}
}

// Handler returns the /metrics handler for the given gatherer.
func Handler(g prometheus.Gatherer) http.Handler {
	return promhttp.HandlerFor(g, promhttp.HandlerOpts{})
}
