package metrics

import (
	"net/http"
	"strconv"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/mcdev12/matchcontrol/go/internal/gateway"
	"github.com/mcdev12/matchcontrol/go/internal/match"
	"github.com/mcdev12/matchcontrol/go/internal/mirror"
)

var (
	_ match.Observer   = (*Service)(nil)
	_ mirror.Recorder  = (*Service)(nil)
	_ gateway.Observer = (*Service)(nil)
)

// NewMetricsHandler returns an http.Handler for the given Gatherer.
// If no gatherer is provided, it uses the default one.
func NewMetricsHandler(gatherer ...prometheus.Gatherer) http.Handler {
	gath := prometheus.DefaultGatherer
	if len(gatherer) > 0 {
		gath = gatherer[0]
	}
	return promhttp.HandlerFor(gath, promhttp.HandlerOpts{})
}

// NewService creates and registers the Prometheus metrics.
// If no registerer is provided, it uses the default Prometheus registerer.
func NewService(registerer ...prometheus.Registerer) *Service {
	reg := prometheus.DefaultRegisterer
	if len(registerer) > 0 {
		reg = registerer[0]
	}

	s := &Service{
		CountdownRemaining: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Name: "matchcontrol_countdown_remaining_seconds",
			Help: "Seconds left on each countdown after its latest tick.",
		}, []string{"timer"}),
		CountdownTicks: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "matchcontrol_countdown_ticks_total",
			Help: "The total number of countdown ticks.",
		}, []string{"timer"}),
		MirrorWrites: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "matchcontrol_mirror_writes_total",
			Help: "State change writes per sink, field and result.",
		}, []string{"sink", "field", "success"}),
		MirrorDropped: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "matchcontrol_mirror_dropped_total",
			Help: "State changes dropped because a sink queue was full.",
		}, []string{"sink"}),
		Subscribers: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Name: "matchcontrol_stream_subscribers",
			Help: "Connected display clients per stream.",
		}, []string{"stream"}),
		FramesDelivered: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "matchcontrol_stream_frames_delivered_total",
			Help: "Frames queued for display clients.",
		}, []string{"stream"}),
		FramesDropped: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "matchcontrol_stream_frames_dropped_total",
			Help: "Frames not delivered because a client was too slow.",
		}, []string{"stream"}),
		HTTPRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "matchcontrol_http_requests_total",
			Help: "Control surface requests by route and status code.",
		}, []string{"route", "code"}),
		StartupTimeSeconds: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "matchcontrol_startup_duration_seconds",
			Help: "The duration of the application startup in seconds.",
		}),
	}

	reg.MustRegister(
		s.CountdownRemaining,
		s.CountdownTicks,
		s.MirrorWrites,
		s.MirrorDropped,
		s.Subscribers,
		s.FramesDelivered,
		s.FramesDropped,
		s.HTTPRequests,
		s.StartupTimeSeconds,
	)

	return s
}

func (s *Service) Tick(timer string, remaining int) {
	s.CountdownTicks.WithLabelValues(timer).Inc()
	s.CountdownRemaining.WithLabelValues(timer).Set(float64(remaining))
}

func (s *Service) ObserveMirrorWrite(sink, field string, err error) {
	s.MirrorWrites.WithLabelValues(sink, field, strconv.FormatBool(err == nil)).Inc()
}

func (s *Service) IncMirrorDropped(sink string) {
	s.MirrorDropped.WithLabelValues(sink).Inc()
}

func (s *Service) SetSubscribers(stream string, n int) {
	s.Subscribers.WithLabelValues(stream).Set(float64(n))
}

func (s *Service) ObserveBroadcast(stream string, delivered, dropped int) {
	s.FramesDelivered.WithLabelValues(stream).Add(float64(delivered))
	s.FramesDropped.WithLabelValues(stream).Add(float64(dropped))
}

func (s *Service) ObserveRequest(route string, code int) {
	s.HTTPRequests.WithLabelValues(route, strconv.Itoa(code)).Inc()
}

func (s *Service) SetStartupTime(duration float64) {
	s.StartupTimeSeconds.Set(duration)
}
