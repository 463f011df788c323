package profiler

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/Carmen-Shannon/oxy-scene/engine/scene"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics bundles the Prometheus collectors fed once per rendered frame.
type Metrics struct {
	gatherer prometheus.Gatherer

	Frames      prometheus.Counter
	FrameErrors prometheus.Counter
	Phases      *prometheus.HistogramVec

	ActiveEntities prometheus.Gauge
	ActiveVertices prometheus.Gauge
	TotalVertices  prometheus.Gauge
	ActiveBones    prometheus.Gauge
	DrawCalls      prometheus.Gauge
}

// NewMetrics registers the frame collectors against reg, defaulting to the global registry when
// nil. Registering twice against the same registry reuses the existing collectors.
//
// Parameters:
//   - reg: the registerer to use
//
// Returns:
//   - *Metrics: the collectors
//   - error: an error if a collector with the same name but a different type is registered
func NewMetrics(reg prometheus.Registerer) (*Metrics, error) {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	gatherer := prometheus.DefaultGatherer
	if g, ok := reg.(prometheus.Gatherer); ok {
		gatherer = g
	}

	m := &Metrics{gatherer: gatherer}
	var err error

	if m.Frames, err = register(reg, prometheus.NewCounter(prometheus.CounterOpts{
		Name: "oxy_frames_total",
		Help: "Total number of rendered frames.",
	}), "oxy_frames_total"); err != nil {
		return nil, err
	}
	if m.FrameErrors, err = register(reg, prometheus.NewCounter(prometheus.CounterOpts{
		Name: "oxy_frame_errors_total",
		Help: "Total number of frames aborted with an error.",
	}), "oxy_frame_errors_total"); err != nil {
		return nil, err
	}
	if m.Phases, err = register(reg, prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "oxy_frame_phase_seconds",
		Help:    "Time spent per frame phase in seconds.",
		Buckets: []float64{0.0001, 0.0005, 0.001, 0.002, 0.004, 0.008, 0.016, 0.033, 0.066, 0.1},
	}, []string{"phase"}), "oxy_frame_phase_seconds"); err != nil {
		return nil, err
	}

	gauges := []struct {
		dst  *prometheus.Gauge
		name string
		help string
	}{
		{&m.ActiveEntities, "oxy_active_entities", "Entities selected for drawing in the last frame."},
		{&m.ActiveVertices, "oxy_active_vertices", "Vertices of the submeshes selected in the last frame."},
		{&m.TotalVertices, "oxy_total_vertices", "Vertices of every evaluated entity in the last frame."},
		{&m.ActiveBones, "oxy_active_bones", "Bones of the active skeletons in the last frame."},
		{&m.DrawCalls, "oxy_draw_calls", "Draw calls issued in the last frame."},
	}
	for _, g := range gauges {
		if *g.dst, err = register(reg, prometheus.NewGauge(prometheus.GaugeOpts{Name: g.name, Help: g.help}), g.name); err != nil {
			return nil, err
		}
	}
	return m, nil
}

// ObserveFrame records the statistics of one frame.
//
// Parameters:
//   - st: the frame statistics
func (m *Metrics) ObserveFrame(st scene.FrameStatistics) {
	if m == nil {
		return
	}
	m.Frames.Inc()
	m.Phases.WithLabelValues("evaluation").Observe(st.EvaluationDuration.Seconds())
	m.Phases.WithLabelValues("render_targets").Observe(st.RenderTargetsDuration.Seconds())
	m.Phases.WithLabelValues("render").Observe(st.RenderDuration.Seconds())
	m.Phases.WithLabelValues("particles").Observe(st.ParticlesDuration.Seconds())
	m.Phases.WithLabelValues("sprites").Observe(st.SpritesDuration.Seconds())
	m.Phases.WithLabelValues("frame").Observe(st.FrameDuration.Seconds())

	m.ActiveEntities.Set(float64(st.ActiveEntities))
	m.ActiveVertices.Set(float64(st.ActiveVertices))
	m.TotalVertices.Set(float64(st.TotalVertices))
	m.ActiveBones.Set(float64(st.ActiveBones))
	m.DrawCalls.Set(float64(st.DrawCalls))
}

// ObserveError counts a frame that returned an error.
func (m *Metrics) ObserveError() {
	if m == nil {
		return
	}
	m.FrameErrors.Inc()
}

// Handler exposes a /metrics handler over the registry the collectors live in.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.gatherer, promhttp.HandlerOpts{})
}

func register[C prometheus.Collector](reg prometheus.Registerer, c C, name string) (C, error) {
	if err := reg.Register(c); err != nil {
		var are prometheus.AlreadyRegisteredError
		if errors.As(err, &are) {
			if existing, ok := are.ExistingCollector.(C); ok {
				return existing, nil
			}
			var zero C
			return zero, fmt.Errorf("profiler: collector %s already registered with incompatible type", name)
		}
		var zero C
		return zero, err
	}
	return c, nil
}
