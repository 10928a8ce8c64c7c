package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// UpstreamRequests counts provider calls by endpoint and outcome
	UpstreamRequests = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "leaderboard",
		Name:      "upstream_requests_total",
		Help:      "Requests made to the tournament data provider.",
	}, []string{"endpoint", "outcome"})

	// CacheReads counts tournament cache reads by how they were served
	CacheReads = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "leaderboard",
		Name:      "cache_reads_total",
		Help:      "Tournament cache reads by result (fresh, refreshed, stale, unavailable).",
	}, []string{"result"})

	// SnapshotFetchedAt is the unix time of the cached snapshot
	SnapshotFetchedAt = promauto.NewGauge(prometheus.GaugeOpts{
		Namespace: "leaderboard",
		Name:      "snapshot_fetched_timestamp_seconds",
		Help:      "When the currently cached tournament snapshot was fetched.",
	})

	// SkippedRecords counts provider player records that could not be decoded
	SkippedRecords = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "leaderboard",
		Name:      "skipped_player_records_total",
		Help:      "Leaderboard player records dropped because they could not be decoded.",
	})
)
