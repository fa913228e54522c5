package metrics

import (
	"net/http"

	prom "github.com/prometheus/client_golang/prometheus"
	promhttp "github.com/prometheus/client_golang/prometheus/promhttp"
)

// Prometheus is a Recorder backed by Prometheus collectors.
type Prometheus struct {
	registry   *prom.Registry
	replies    *prom.CounterVec
	seconds    *prom.HistogramVec
	confidence prom.Histogram
}

// NewPrometheus registers kbot's collectors on a fresh registry.
func NewPrometheus() *Prometheus {
	p := &Prometheus{
		registry: prom.NewRegistry(),
		replies: prom.NewCounterVec(prom.CounterOpts{
			Name: "kbot_replies_total",
			Help: "Total number of chatbot replies by kind",
		}, []string{"kind"}),
		seconds: prom.NewHistogramVec(prom.HistogramOpts{
			Name:    "kbot_reply_seconds",
			Help:    "Time spent producing a reply in seconds",
			Buckets: prom.DefBuckets,
		}, []string{"kind"}),
		confidence: prom.NewHistogram(prom.HistogramOpts{
			Name:    "kbot_match_confidence",
			Help:    "Confidence of knowledge base matches",
			Buckets: prom.LinearBuckets(0.6, 0.05, 9),
		}),
	}
	p.registry.MustRegister(p.replies, p.seconds, p.confidence)
	return p
}

func (p *Prometheus) IncReplyTotal(kind string) {
	p.replies.WithLabelValues(kind).Inc()
}

func (p *Prometheus) ObserveReplySeconds(kind string, seconds float64) {
	p.seconds.WithLabelValues(kind).Observe(seconds)
}

func (p *Prometheus) ObserveMatchConfidence(confidence float64) {
	p.confidence.Observe(confidence)
}

// Handler serves the registry in the Prometheus exposition format.
func (p *Prometheus) Handler() http.Handler {
	return promhttp.HandlerFor(p.registry, promhttp.HandlerOpts{})
}
