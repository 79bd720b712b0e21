package metrics

import "github.com/prometheus/client_golang/prometheus"

const namespace = "fortis"

// LeadMetrics exposes counters/histograms for chat and lead flows.
type LeadMetrics struct {
	chatMessages   *prometheus.CounterVec
	notifications  *prometheus.CounterVec
	aiReplies      *prometheus.CounterVec
	activeSessions prometheus.Gauge
	sweepDuration  prometheus.Histogram
	sweepDeleted   prometheus.Counter
}

func NewLeadMetrics(reg prometheus.Registerer) *LeadMetrics {
	m := &LeadMetrics{
		chatMessages: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "chat",
			Name:      "messages_total",
			Help:      "Inbound chat messages by qualification outcome",
		}, []string{"outcome"}),
		notifications: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "leads",
			Name:      "notifications_total",
			Help:      "Lead notification attempts by kind and status",
		}, []string{"kind", "status"}),
		aiReplies: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "ai",
			Name:      "replies_total",
			Help:      "AI reply generations by status",
		}, []string{"status"}),
		activeSessions: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "leads",
			Name:      "active_sessions",
			Help:      "Lead sessions currently held in memory",
		}),
		sweepDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "leads",
			Name:      "sweep_duration_seconds",
			Help:      "Duration of lead session sweep passes",
			Buckets:   prometheus.DefBuckets,
		}),
		sweepDeleted: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "leads",
			Name:      "sessions_expired_total",
			Help:      "Lead sessions removed by the sweep",
		}),
	}
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	reg.MustRegister(m.chatMessages, m.notifications, m.aiReplies, m.activeSessions, m.sweepDuration, m.sweepDeleted)
	return m
}

// ObserveChatMessage counts an inbound message ("ignored", "qualified", "continued", ...).
func (m *LeadMetrics) ObserveChatMessage(outcome string) {
	if m == nil {
		return
	}
	m.chatMessages.WithLabelValues(outcome).Inc()
}

// ObserveNotification counts a lead notification attempt.
func (m *LeadMetrics) ObserveNotification(kind string, success bool) {
	if m == nil {
		return
	}
	status := "failed"
	if success {
		status = "sent"
	}
	m.notifications.WithLabelValues(kind, status).Inc()
}

func (m *LeadMetrics) ObserveAIReply(status string) {
	if m == nil {
		return
	}
	m.aiReplies.WithLabelValues(status).Inc()
}

func (m *LeadMetrics) SetActiveSessions(n int) {
	if m == nil {
		return
	}
	m.activeSessions.Set(float64(n))
}

// ObserveSweep records one sweep pass.
func (m *LeadMetrics) ObserveSweep(seconds float64, deleted int) {
	if m == nil {
		return
	}
	m.sweepDuration.Observe(seconds)
	if deleted > 0 {
		m.sweepDeleted.Add(float64(deleted))
	}
}
