package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "missionboard"

// Upstream call outcomes.
const (
	OutcomeOK     = "ok"
	OutcomeFailed = "failed"
)

// Recorder holds the client-layer counters. A nil Recorder records nothing.
type Recorder struct {
	upstream    *prometheus.CounterVec
	fallbacks   *prometheus.CounterVec
	cacheResets *prometheus.CounterVec
}

// NewRecorder creates the counters and registers them on reg. A nil reg
// leaves the counters unregistered, which is useful for tests.
func NewRecorder(reg prometheus.Registerer) (*Recorder, error) {
	r := &Recorder{
		upstream: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "upstream_requests_total",
			Help:      "Mission-board API calls by operation and outcome.",
		}, []string{"op", "outcome"}),
		fallbacks: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "fallback_reads_total",
			Help:      "Reads answered from synthetic or locally cached data because upstream failed.",
		}, []string{"op"}),
		cacheResets: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "cache_resets_total",
			Help:      "Persisted cache blobs discarded because they could not be decoded.",
		}, []string{"key"}),
	}
	if reg == nil {
		return r, nil
	}
	for _, c := range []prometheus.Collector{r.upstream, r.fallbacks, r.cacheResets} {
		if err := reg.Register(c); err != nil {
			return nil, err
		}
	}
	return r, nil
}

// ObserveUpstream counts one upstream call.
func (r *Recorder) ObserveUpstream(op string, err error) {
	if r == nil {
		return
	}
	outcome := OutcomeOK
	if err != nil {
		outcome = OutcomeFailed
	}
	r.upstream.WithLabelValues(op, outcome).Inc()
}

// ObserveFallback counts one degraded read.
func (r *Recorder) ObserveFallback(op string) {
	if r == nil {
		return
	}
	r.fallbacks.WithLabelValues(op).Inc()
}

// ObserveCacheReset counts one discarded cache blob.
func (r *Recorder) ObserveCacheReset(key string) {
	if r == nil {
		return
	}
	r.cacheResets.WithLabelValues(key).Inc()
}
