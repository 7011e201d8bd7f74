package core

import (
	"github.com/prometheus/client_golang/prometheus"

	"github.com/INDUS0007/soul/pkg/metrics"
)

type Metrics struct {
	apiErrorCounter    *prometheus.CounterVec
	chatMessageCounter *prometheus.CounterVec
	wsConnections      *prometheus.GaugeVec
	billingDebit       *prometheus.CounterVec
	sweepCounter       *prometheus.CounterVec
}

func SetupMetrics(ns, system string) *Metrics {
	metrics.SetupMetricsManager(ns, system, prometheus.NewRegistry())
	return &Metrics{
		apiErrorCounter:    metrics.NewCounterVec("api_error", []string{"path", "code"}),
		chatMessageCounter: metrics.NewCounterVec("chat_message", []string{"role"}),
		wsConnections:      metrics.NewGaugeVec("ws_connections", []string{}),
		billingDebit:       metrics.NewCounterVec("billing_debit", []string{"outcome"}),
		sweepCounter:       metrics.NewCounterVec("chat_sweep", []string{}),
	}
}

func (m *Metrics) ApiErrorInc(path, code string) {
	m.apiErrorCounter.WithLabelValues(path, code).Inc()
}

func (m *Metrics) ChatMessageInc(role string) {
	m.chatMessageCounter.WithLabelValues(role).Inc()
}

func (m *Metrics) WSConnInc() {
	m.wsConnections.WithLabelValues().Inc()
}

func (m *Metrics) WSConnDec() {
	m.wsConnections.WithLabelValues().Dec()
}

func (m *Metrics) BillingDebitInc(outcome string) {
	m.billingDebit.WithLabelValues(outcome).Inc()
}

func (m *Metrics) SweepInc(n int) {
	m.sweepCounter.WithLabelValues().Add(float64(n))
}
