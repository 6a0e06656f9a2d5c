package metrics

import "github.com/prometheus/client_golang/prometheus"

// ChatMetrics exposes counters/histograms for chat exchange flows.
type ChatMetrics struct {
	exchangesTotal  *prometheus.CounterVec
	replySegments   prometheus.Counter
	exchangeSeconds *prometheus.HistogramVec
}

func NewChatMetrics(reg prometheus.Registerer) *ChatMetrics {
	m := &ChatMetrics{
		exchangesTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "campus",
			Subsystem: "chat",
			Name:      "exchanges_total",
			Help:      "Total chat exchanges dispatched to the bot",
		}, []string{"outcome"}),
		replySegments: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "campus",
			Subsystem: "chat",
			Name:      "reply_segments_total",
			Help:      "Total bot reply segments rendered",
		}),
		exchangeSeconds: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "campus",
			Subsystem: "chat",
			Name:      "exchange_seconds",
			Help:      "Latency of bot exchanges",
			Buckets:   prometheus.DefBuckets,
		}, []string{"outcome"}),
	}
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	reg.MustRegister(m.exchangesTotal, m.replySegments, m.exchangeSeconds)
	return m
}

func (m *ChatMetrics) ObserveExchange(outcome string, seconds float64) {
	if m == nil {
		return
	}
	m.exchangesTotal.WithLabelValues(outcome).Inc()
	m.exchangeSeconds.WithLabelValues(outcome).Observe(seconds)
}

func (m *ChatMetrics) AddReplySegments(n int) {
	if m == nil || n <= 0 {
		return
	}
	m.replySegments.Add(float64(n))
}

// IngestMetrics exposes counters for snapshot refresh jobs.
type IngestMetrics struct {
	jobsTotal *prometheus.CounterVec
}

func NewIngestMetrics(reg prometheus.Registerer) *IngestMetrics {
	m := &IngestMetrics{
		jobsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "campus",
			Subsystem: "ingest",
			Name:      "jobs_total",
			Help:      "Total snapshot refresh jobs processed",
		}, []string{"kind", "status"}),
	}
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	reg.MustRegister(m.jobsTotal)
	return m
}

func (m *IngestMetrics) ObserveJob(kind, status string) {
	if m == nil {
		return
	}
	m.jobsTotal.WithLabelValues(kind, status).Inc()
}
