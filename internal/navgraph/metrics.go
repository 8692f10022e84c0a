package navgraph

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	pathSearchTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "evacnav_path_searches_total",
		Help: "A* searches by outcome (found, unreachable, trivial, invalid)",
	}, []string{"result"})

	pathSearchExpanded = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "evacnav_path_search_expanded_nodes",
		Help:    "Nodes expanded per A* search",
		Buckets: prometheus.ExponentialBuckets(1, 2, 12), // 1 to 2048
	})

	pathSearchStale = promauto.NewCounter(prometheus.CounterOpts{
		Name: "evacnav_path_search_stale_entries_total",
		Help: "Superseded frontier entries skipped on pop",
	})

	rebuildDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "evacnav_graph_rebuild_duration_seconds",
		Help:    "Time spent reconnecting the whole graph",
		Buckets: prometheus.ExponentialBuckets(0.0001, 2, 14), // 0.1ms to ~800ms
	})

	edgeGauge = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "evacnav_graph_edges",
		Help: "Undirected edges in the most recently mutated graph",
	})
)
