package server

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var floorPlanReloads = promauto.NewCounterVec(prometheus.CounterOpts{
	Name: "evacnav_floorplan_reloads_total",
	Help: "Floor plan reloads triggered by file changes, by result",
}, []string{"result"})
