package metrics

import "github.com/prometheus/client_golang/prometheus"

// Service holds every Prometheus collector the control panel exports.
type Service struct {
	CountdownRemaining *prometheus.GaugeVec
	CountdownTicks     *prometheus.CounterVec
	MirrorWrites       *prometheus.CounterVec
	MirrorDropped      *prometheus.CounterVec
	Subscribers        *prometheus.GaugeVec
	FramesDelivered    *prometheus.CounterVec
	FramesDropped      *prometheus.CounterVec
	HTTPRequests       *prometheus.CounterVec
	StartupTimeSeconds prometheus.Gauge
}
