// Package metrics records per-run parse counters in a Prometheus registry.
//
// The analyzer is a batch job, so the registry is exported in the
// node-exporter textfile format instead of being scraped.
package metrics

import (
	"sort"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	dto "github.com/prometheus/client_model/go"

	"github.com/bwprot/bwprotanalyzer/pkg/model"
)

const namespace = "bwprot"

// Registry holds the counters for one analyzer run.
type Registry struct {
	reg               *prometheus.Registry
	events            *prometheus.CounterVec
	fieldChanges      prometheus.Counter
	suppressedChanges prometheus.Counter
	droppedEvents     prometheus.Counter
	skippedBlocks     prometheus.Counter
	droppedTrailing   prometheus.Gauge
	duration          prometheus.Gauge
}

// NewRegistry creates a registry with all analyzer metrics registered.
func NewRegistry() *Registry {
	r := &Registry{
		reg: prometheus.NewRegistry(),
		events: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "events_total",
			Help:      "Protocol events parsed, by status keyword and record type.",
		}, []string{"status", "record_type"}),
		fieldChanges: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "field_changes_total",
			Help:      "Attribute edits seen in parsed events.",
		}),
		suppressedChanges: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "suppressed_changes_total",
			Help:      "Attribute edits whose value equals the previous value.",
		}),
		droppedEvents: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "dropped_events_total",
			Help:      "Events the renderer produced no output for.",
		}),
		skippedBlocks: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "skipped_blocks_total",
			Help:      "Malformed blocks skipped.",
		}),
		droppedTrailing: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "dropped_trailing_block",
			Help:      "1 if the final block was dropped for lack of a following header.",
		}),
		duration: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "parse_duration_seconds",
			Help:      "Wall time of the last pass.",
		}),
	}
	r.reg.MustRegister(
		r.events,
		r.fieldChanges,
		r.suppressedChanges,
		r.droppedEvents,
		r.skippedBlocks,
		r.droppedTrailing,
		r.duration,
	)
	return r
}

// RecordEvent counts ev and its attribute edits.
func (r *Registry) RecordEvent(ev model.Event) {
	r.events.WithLabelValues(ev.Status.Keyword(), ev.RecordType).Inc()
	for _, c := range ev.Changes {
		r.fieldChanges.Inc()
		if !c.Changed() {
			r.suppressedChanges.Inc()
		}
	}
}

// RecordPass stores the totals known once the pass has ended.
func (r *Registry) RecordPass(duration time.Duration, skipped, dropped int, droppedTrailing bool) {
	r.duration.Set(duration.Seconds())
	r.skippedBlocks.Add(float64(skipped))
	r.droppedEvents.Add(float64(dropped))
	if droppedTrailing {
		r.droppedTrailing.Set(1)
	} else {
		r.droppedTrailing.Set(0)
	}
}

// WriteTextfile writes the registry to path in the Prometheus text format.
func (r *Registry) WriteTextfile(path string) error {
	return prometheus.WriteToTextfile(path, r.reg)
}

// Count is one labelled event counter value.
type Count struct {
	Status     string `json:"status"`
	RecordType string `json:"record_type"`
	Events     int    `json:"events"`
}

// Summary is the registry content in plain form.
type Summary struct {
	Events            int     `json:"events"`
	ByType            []Count `json:"by_type"`
	ByStatus          []Count `json:"by_status"`
	FieldChanges      int     `json:"field_changes"`
	SuppressedChanges int     `json:"suppressed_changes"`
	DroppedEvents     int     `json:"dropped_events"`
	SkippedBlocks     int     `json:"skipped_blocks"`
	DroppedTrailing   bool    `json:"dropped_trailing_block"`
}

// Summary gathers the registry.
func (r *Registry) Summary() (Summary, error) {
	families, err := r.reg.Gather()
	if err != nil {
		return Summary{}, err
	}

	var s Summary
	byStatus := map[string]int{}
	for _, mf := range families {
		for _, m := range mf.GetMetric() {
			switch mf.GetName() {
			case namespace + "_events_total":
				labels := labelMap(m)
				n := int(m.GetCounter().GetValue())
				s.Events += n
				s.ByType = append(s.ByType, Count{Status: labels["status"], RecordType: labels["record_type"], Events: n})
				byStatus[labels["status"]] += n
			case namespace + "_field_changes_total":
				s.FieldChanges = int(m.GetCounter().GetValue())
			case namespace + "_suppressed_changes_total":
				s.SuppressedChanges = int(m.GetCounter().GetValue())
			case namespace + "_dropped_events_total":
				s.DroppedEvents = int(m.GetCounter().GetValue())
			case namespace + "_skipped_blocks_total":
				s.SkippedBlocks = int(m.GetCounter().GetValue())
			case namespace + "_dropped_trailing_block":
				s.DroppedTrailing = m.GetGauge().GetValue() > 0
			}
		}
	}

	sort.Slice(s.ByType, func(i, j int) bool {
		if s.ByType[i].RecordType != s.ByType[j].RecordType {
			return s.ByType[i].RecordType < s.ByType[j].RecordType
		}
		return s.ByType[i].Status < s.ByType[j].Status
	})
	for status, n := range byStatus {
		s.ByStatus = append(s.ByStatus, Count{Status: status, Events: n})
	}
	sort.Slice(s.ByStatus, func(i, j int) bool { return s.ByStatus[i].Status < s.ByStatus[j].Status })
	return s, nil
}

func labelMap(m *dto.Metric) map[string]string {
	out := make(map[string]string, len(m.GetLabel()))
	for _, lp := range m.GetLabel() {
		out[lp.GetName()] = lp.GetValue()
	}
	return out
}
