package service

import (
	"github.com/aussiebroadwan/consultboard/pkg/boardevents"
	"github.com/prometheus/client_golang/prometheus"
)

// Metrics counts committed mutations and event publications. A nil *Metrics
// records nothing.
type Metrics struct {
	mutations *prometheus.CounterVec
	published *prometheus.CounterVec
}

// NewMetrics registers the board counters on reg.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		mutations: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "board",
			Name:      "mutations_total",
			Help:      "Committed board mutations by entity and operation.",
		}, []string{"entity", "op"}),
		published: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "board",
			Name:      "events_published_total",
			Help:      "Board change events handed to the publisher, by kind and result.",
		}, []string{"kind", "result"}),
	}
	reg.MustRegister(m.mutations, m.published)
	return m
}

func (m *Metrics) mutation(entity boardevents.Entity, op string) {
	if m == nil {
		return
	}
	m.mutations.WithLabelValues(string(entity), op).Inc()
}

func (m *Metrics) publication(kind boardevents.Kind, err error) {
	if m == nil {
		return
	}
	result := "ok"
	if err != nil {
		result = "error"
	}
	m.published.WithLabelValues(string(kind), result).Inc()
}
