package guidance

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	ticksTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "evacnav_guidance_ticks_total",
		Help: "Guidance ticks by planning outcome",
	}, []string{"outcome"})

	exitsEvaluated = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "evacnav_guidance_exits_evaluated",
		Help:    "Exit nodes searched per planning pass",
		Buckets: prometheus.LinearBuckets(0, 2, 10),
	})

	routeCost = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "evacnav_guidance_route_cost_meters",
		Help: "Cost of the most recently published route",
	})
)
