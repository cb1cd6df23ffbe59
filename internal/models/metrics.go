package models

import "time"

// MetricsSnapshot summarises gateway, snapshot cache and search activity.
type MetricsSnapshot struct {
	RequestsTotal            uint64    `json:"requests_total"`
	AverageRequestDurationMs float64   `json:"average_request_duration_ms"`
	SnapshotHits             uint64    `json:"snapshot_hits"`
	SnapshotMisses           uint64    `json:"snapshot_misses"`
	SnapshotHitRatio         float64   `json:"snapshot_hit_ratio"`
	LiveSearches             uint64    `json:"live_searches"`
	FallbackSearches         uint64    `json:"fallback_searches"`
	DeniedSearches           uint64    `json:"denied_searches"`
	GeneratedAt              time.Time `json:"generated_at"`
}
