// Package metrics counts what the calculator does and renders the counts
// in the Prometheus text exposition format.
package metrics

import (
	"context"
	"io"
	"sort"
	"sync"
	"time"

	dto "github.com/prometheus/client_model/go"
	"github.com/prometheus/common/expfmt"

	"github.com/hammamikhairi/ottoegg/internal/domain"
)

// Metric names.
const (
	Calculations    = "ottoegg_calculations_total"
	InvalidInputs   = "ottoegg_invalid_inputs_total"
	TimersStarted   = "ottoegg_timers_started_total"
	TimersCompleted = "ottoegg_timers_completed_total"
	WeatherFailures = "ottoegg_weather_lookup_failures_total"
	LastCooking     = "ottoegg_last_cooking_seconds"
)

var help = map[string]string{
	Calculations:    "Cooking time calculations with a valid result.",
	InvalidInputs:   "Calculations rejected because the inputs do not describe a cook.",
	TimersStarted:   "Egg timers started.",
	TimersCompleted: "Egg timers that ran to zero.",
	WeatherFailures: "Surface pressure lookups that failed.",
	LastCooking:     "Cooking time of the most recent valid calculation.",
}

// Compile-time interface check.
var _ domain.TimerObserver = (*Registry)(nil)

// Registry holds the counters. A nil *Registry is valid and records
// nothing. Safe for concurrent use.
type Registry struct {
	mu       sync.Mutex
	counters map[string]float64
	gauges   map[string]float64
}

// New creates a registry with every metric at zero.
func New() *Registry {
	r := &Registry{
		counters: make(map[string]float64),
		gauges:   make(map[string]float64),
	}
	for _, name := range []string{Calculations, InvalidInputs, TimersStarted, TimersCompleted, WeatherFailures} {
		r.counters[name] = 0
	}
	r.gauges[LastCooking] = 0
	return r
}

func (r *Registry) inc(name string) {
	if r == nil {
		return
	}
	r.mu.Lock()
	r.counters[name]++
	r.mu.Unlock()
}

// CalculationDone records a valid calculation and its cooking time.
func (r *Registry) CalculationDone(cooking time.Duration) {
	if r == nil {
		return
	}
	r.mu.Lock()
	r.counters[Calculations]++
	r.gauges[LastCooking] = cooking.Seconds()
	r.mu.Unlock()
}

// InvalidInput records a calculation that had no result.
func (r *Registry) InvalidInput() { r.inc(InvalidInputs) }

// WeatherFailed records a failed pressure lookup.
func (r *Registry) WeatherFailed() { r.inc(WeatherFailures) }

// OnTimerEvent counts timer starts and completions.
func (r *Registry) OnTimerEvent(ctx context.Context, ev domain.TimerEvent) {
	switch ev.Type {
	case domain.TimerStarted:
		r.inc(TimersStarted)
	case domain.TimerCompleted:
		r.inc(TimersCompleted)
	}
}

// Value returns the current value of one metric.
func (r *Registry) Value(name string) float64 {
	if r == nil {
		return 0
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if v, ok := r.counters[name]; ok {
		return v
	}
	return r.gauges[name]
}

// Families returns every metric as a Prometheus metric family, sorted by
// name.
func (r *Registry) Families() []*dto.MetricFamily {
	if r == nil {
		return nil
	}
	r.mu.Lock()
	defer r.mu.Unlock()

	out := make([]*dto.MetricFamily, 0, len(r.counters)+len(r.gauges))
	for name, v := range r.counters {
		out = append(out, family(name, dto.MetricType_COUNTER, &dto.Metric{
			Counter: &dto.Counter{Value: float64Ptr(v)},
		}))
	}
	for name, v := range r.gauges {
		out = append(out, family(name, dto.MetricType_GAUGE, &dto.Metric{
			Gauge: &dto.Gauge{Value: float64Ptr(v)},
		}))
	}
	sort.Slice(out, func(i, j int) bool { return out[i].GetName() < out[j].GetName() })
	return out
}

// WriteText writes the text exposition format to w.
func (r *Registry) WriteText(w io.Writer) error {
	for _, mf := range r.Families() {
		if _, err := expfmt.MetricFamilyToText(w, mf); err != nil {
			return err
		}
	}
	return nil
}

// ContentType is the HTTP content type of WriteText's output.
func ContentType() string {
	return string(expfmt.NewFormat(expfmt.TypeTextPlain))
}

func family(name string, typ dto.MetricType, m *dto.Metric) *dto.MetricFamily {
	h := help[name]
	return &dto.MetricFamily{
		Name:   &name,
		Help:   &h,
		Type:   typ.Enum(),
		Metric: []*dto.Metric{m},
	}
}

func float64Ptr(v float64) *float64 { return &v }
