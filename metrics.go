package ltemac

// metrics.go holds the prometheus counters a scheduler keeps.  A nil *SchedMetrics
// is valid and records nothing.

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Metric labels
const (
	LabelDirection = "direction"
	LabelPolicy    = "policy"
)

// SchedMetrics holds the counters of one or more schedulers
type SchedMetrics struct {
	allocatedRbs   *prometheus.CounterVec
	newTx          *prometheus.CounterVec
	retx           *prometheus.CounterVec
	purged         *prometheus.CounterVec
	scheduledBytes *prometheus.CounterVec
}

// CreateSchedMetrics builds the counters and registers them with reg
func CreateSchedMetrics(reg prometheus.Registerer) *SchedMetrics {
	sm := new(SchedMetrics)
	sm.allocatedRbs = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "ltemac_allocated_rbs_total",
		Help: "Resource blocks allocated, retransmissions included",
	}, []string{LabelDirection, LabelPolicy})
	sm.newTx = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "ltemac_new_transmissions_total",
		Help: "Allocations carrying new data",
	}, []string{LabelDirection})
	sm.retx = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "ltemac_retransmissions_total",
		Help: "HARQ retransmissions scheduled",
	}, []string{LabelDirection})
	sm.purged = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "ltemac_purged_results_total",
		Help: "New-data allocations dropped for carrying no bytes",
	}, []string{LabelDirection})
	sm.scheduledBytes = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "ltemac_scheduled_bytes_total",
		Help: "Bytes of new data scheduled",
	}, []string{LabelDirection})

	reg.MustRegister(sm.allocatedRbs, sm.newTx, sm.retx, sm.purged, sm.scheduledBytes)
	return sm
}

func (sm *SchedMetrics) observeDl(policy PolicyKind, results []*DlSchedulingResult) {
	if sm == nil {
		return
	}
	dir := Downlink.String()
	for _, dr := range results {
		sm.allocatedRbs.WithLabelValues(dir, string(policy)).Add(float64(dr.Rbs.Count()))
		if dr.NewData() {
			sm.newTx.WithLabelValues(dir).Inc()
			sm.scheduledBytes.WithLabelValues(dir).Add(float64(dr.DequeueSize()))
		} else {
			sm.retx.WithLabelValues(dir).Inc()
		}
	}
}

func (sm *SchedMetrics) observeUl(policy PolicyKind, results []*UlSchedulingResult) {
	if sm == nil {
		return
	}
	dir := Uplink.String()
	for _, ur := range results {
		sm.allocatedRbs.WithLabelValues(dir, string(policy)).Add(float64(ur.NumRb))
		if ur.NewData() {
			sm.newTx.WithLabelValues(dir).Inc()
			sm.scheduledBytes.WithLabelValues(dir).Add(float64(ur.Tb.DequeueSize))
		} else {
			sm.retx.WithLabelValues(dir).Inc()
		}
	}
}

func (sm *SchedMetrics) addPurged(dir Direction, n int) {
	if sm == nil || n <= 0 {
		return
	}
	sm.purged.WithLabelValues(dir.String()).Add(float64(n))
}
