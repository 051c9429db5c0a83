// Package metrics counts bridge requests and renders them, together with the
// store gauges, in the Prometheus text exposition format.
package metrics

import (
	"io"
	"sort"
	"sync"
	"time"

	dto "github.com/prometheus/client_model/go"
	"github.com/prometheus/common/expfmt"
	"google.golang.org/protobuf/proto"
)

// Exposed metric names.
const (
	RequestsTotal   = "hostbridge_requests_total"
	RequestDuration = "hostbridge_request_duration_seconds"
	StoreKeys       = "hostbridge_store_keys"
	StoreCapacity   = "hostbridge_store_capacity"
	StoreEvictions  = "hostbridge_store_evictions_total"
)

// ContentType is the Content-Type for WriteText output.
var ContentType = string(expfmt.NewFormat(expfmt.TypeTextPlain))

// StoreStats is a point-in-time view of the store for the gauges.
type StoreStats struct {
	Keys      int
	Capacity  int
	Evictions uint64
}

type requestKey struct {
	command string
	outcome string
}

type durationAgg struct {
	count uint64
	sum   float64
}

// Recorder accumulates per-command request counts and latencies.
// It is safe for concurrent use.
type Recorder struct {
	mu        sync.Mutex
	requests  map[requestKey]uint64
	durations map[string]*durationAgg
}

// New creates an empty Recorder.
func New() *Recorder {
	return &Recorder{
		requests:  make(map[requestKey]uint64),
		durations: make(map[string]*durationAgg),
	}
}

// Observe records one dispatched request. command should come from a closed
// set so label cardinality stays bounded.
func (r *Recorder) Observe(command, outcome string, d time.Duration) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.requests[requestKey{command, outcome}]++
	agg, ok := r.durations[command]
	if !ok {
		agg = &durationAgg{}
		r.durations[command] = agg
	}
	agg.count++
	agg.sum += d.Seconds()
}

// Count returns the number of requests recorded for command and outcome.
func (r *Recorder) Count(command, outcome string) uint64 {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.requests[requestKey{command, outcome}]
}

// Families builds the metric families for the current state, sorted by label
// values so output is stable.
func (r *Recorder) Families(st StoreStats) []*dto.MetricFamily {
	r.mu.Lock()
	reqKeys := make([]requestKey, 0, len(r.requests))
	for k := range r.requests {
		reqKeys = append(reqKeys, k)
	}
	sort.Slice(reqKeys, func(i, j int) bool {
		if reqKeys[i].command != reqKeys[j].command {
			return reqKeys[i].command < reqKeys[j].command
		}
		return reqKeys[i].outcome < reqKeys[j].outcome
	})
	requests := make([]*dto.Metric, 0, len(reqKeys))
	for _, k := range reqKeys {
		requests = append(requests, &dto.Metric{
			Label: []*dto.LabelPair{
				label("command", k.command),
				label("outcome", k.outcome),
			},
			Counter: &dto.Counter{Value: proto.Float64(float64(r.requests[k]))},
		})
	}

	cmds := make([]string, 0, len(r.durations))
	for c := range r.durations {
		cmds = append(cmds, c)
	}
	sort.Strings(cmds)
	durations := make([]*dto.Metric, 0, len(cmds))
	for _, c := range cmds {
		agg := r.durations[c]
		durations = append(durations, &dto.Metric{
			Label: []*dto.LabelPair{label("command", c)},
			Summary: &dto.Summary{
				SampleCount: proto.Uint64(agg.count),
				SampleSum:   proto.Float64(agg.sum),
			},
		})
	}
	r.mu.Unlock()

	return []*dto.MetricFamily{
		{
			Name:   proto.String(RequestsTotal),
			Help:   proto.String("Bridge requests by command and outcome."),
			Type:   dto.MetricType_COUNTER.Enum(),
			Metric: requests,
		},
		{
			Name:   proto.String(RequestDuration),
			Help:   proto.String("Time spent dispatching bridge requests."),
			Type:   dto.MetricType_SUMMARY.Enum(),
			Metric: durations,
		},
		gauge(StoreKeys, "Keys currently held by the store.", float64(st.Keys)),
		gauge(StoreCapacity, "Maximum number of keys the store holds.", float64(st.Capacity)),
		{
			Name: proto.String(StoreEvictions),
			Help: proto.String("Keys evicted from the store since start."),
			Type: dto.MetricType_COUNTER.Enum(),
			Metric: []*dto.Metric{{
				Counter: &dto.Counter{Value: proto.Float64(float64(st.Evictions))},
			}},
		},
	}
}

// WriteText writes every family in text exposition format. Families without
// samples are skipped.
func (r *Recorder) WriteText(w io.Writer, st StoreStats) error {
	for _, mf := range r.Families(st) {
		if len(mf.GetMetric()) == 0 {
			continue
		}
		if _, err := expfmt.MetricFamilyToText(w, mf); err != nil {
			return err
		}
	}
	return nil
}

func label(name, value string) *dto.LabelPair {
	return &dto.LabelPair{Name: proto.String(name), Value: proto.String(value)}
}

func gauge(name, help string, v float64) *dto.MetricFamily {
	return &dto.MetricFamily{
		Name:   proto.String(name),
		Help:   proto.String(help),
		Type:   dto.MetricType_GAUGE.Enum(),
		Metric: []*dto.Metric{{Gauge: &dto.Gauge{Value: proto.Float64(v)}}},
	}
}
