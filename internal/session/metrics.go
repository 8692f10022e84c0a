package session

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	milestonesTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "evacnav_session_milestones_total",
		Help: "Drill milestones reached, by event",
	}, []string{"event"})

	reportsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "evacnav_session_reports_total",
		Help: "Session reports by delivery result",
	}, []string{"result"})
)
