package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	RoomsCreated = promauto.NewCounter(prometheus.CounterOpts{
		Name: "private_chats_rooms_created_total",
		Help: "Number of waiting rooms created by matchmaking.",
	})

	RoomsMatched = promauto.NewCounter(prometheus.CounterOpts{
		Name: "private_chats_rooms_matched_total",
		Help: "Number of rooms that reached two participants.",
	})

	RoomsDeleted = promauto.NewCounter(prometheus.CounterOpts{
		Name: "private_chats_rooms_deleted_total",
		Help: "Number of rooms deleted on leave or reap.",
	})

	MessagesSent = promauto.NewCounter(prometheus.CounterOpts{
		Name: "private_chats_messages_sent_total",
		Help: "Number of chat messages persisted.",
	})

	AICompletions = promauto.NewCounter(prometheus.CounterOpts{
		Name: "private_chats_ai_completions_total",
		Help: "Number of assistant completions served.",
	})

	ReaperRuns = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "private_chats_reaper_runs_total",
		Help: "Number of stale-room reaper runs by outcome.",
	}, []string{"outcome"})

	ReaperRoomsReaped = promauto.NewCounter(prometheus.CounterOpts{
		Name: "private_chats_reaper_rooms_reaped_total",
		Help: "Number of stale rooms deleted by the reaper.",
	})

	ReaperDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "private_chats_reaper_duration_seconds",
		Help:    "Wall-clock duration of reaper runs.",
		Buckets: prometheus.DefBuckets,
	})

	HTTPRequestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "private_chats_http_request_duration_seconds",
		Help:    "HTTP request latency by method, path and status.",
		Buckets: prometheus.DefBuckets,
	}, []string{"method", "path", "status"})

	WSConnections = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "private_chats_ws_connections",
		Help: "Currently open WebSocket sessions.",
	})
)
