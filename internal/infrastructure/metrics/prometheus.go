// Package metrics provides Prometheus metrics for observability.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "gocatalog"

var (
	// CacheOperationsTotal tracks cache operations (get, set, delete).
	// Labels:
	//   - operation: get, set, delete
	//   - status: hit, miss, success, error
	//   - cache_type: redis
	CacheOperationsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "cache_operations_total",
			Help:      "Total number of cache operations",
		},
		[]string{"operation", "status", "cache_type"},
	)

	// DBQueriesTotal tracks database queries.
	// Labels:
	//   - query_type: select, insert, update
	//   - table: videos, categories, genres, cast_members
	DBQueriesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "db_queries_total",
			Help:      "Total number of database queries",
		},
		[]string{"query_type", "table"},
	)

	// SingleflightRequestsTotal tracks singleflight behavior.
	// Labels:
	//   - result: initiated (new execution), shared (reused result)
	SingleflightRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "singleflight_requests_total",
			Help:      "Total number of singleflight requests",
		},
		[]string{"result"},
	)

	// MediaUploadsTotal tracks media uploads performed by write use cases.
	// Labels:
	//   - kind: VIDEO, TRAILER, BANNER, THUMBNAIL, THUMBNAIL_HALF
	//   - result: success, error
	MediaUploadsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "media_uploads_total",
			Help:      "Total number of media uploads",
		},
		[]string{"kind", "result"},
	)

	// CompensationsTotal tracks cleanup of stored media after a failed write.
	// Labels:
	//   - operation: create, update, upload_media
	//   - result: success, error
	CompensationsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "media_compensations_total",
			Help:      "Total number of compensating media cleanups",
		},
		[]string{"operation", "result"},
	)

	// EncoderResultsTotal tracks encoder results received by the worker.
	// Labels:
	//   - status: COMPLETED, PROCESSING, ERROR
	//   - outcome: applied, ignored, discarded, failed
	EncoderResultsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "encoder_results_total",
			Help:      "Total number of encoder results handled",
		},
		[]string{"status", "outcome"},
	)
)

// Cache operation status constants.
const (
	CacheStatusHit     = "hit"
	CacheStatusMiss    = "miss"
	CacheStatusSuccess = "success"
	CacheStatusError   = "error"
)

// Cache operation type constants.
const (
	CacheOpGet    = "get"
	CacheOpSet    = "set"
	CacheOpDelete = "delete"
)

// Cache type constants.
const (
	CacheTypeRedis = "redis"
)

// DB query type constants.
const (
	DBQuerySelect = "select"
	DBQueryInsert = "insert"
	DBQueryUpdate = "update"
)

// Table name constants.
const (
	TableVideos      = "videos"
	TableCategories  = "categories"
	TableGenres      = "genres"
	TableCastMembers = "cast_members"
)

// Singleflight result constants.
const (
	SingleflightInitiated = "initiated"
	SingleflightShared    = "shared"
)

// Generic result constants.
const (
	ResultSuccess = "success"
	ResultError   = "error"
)

// Encoder result outcome constants.
const (
	EncoderOutcomeApplied   = "applied"
	EncoderOutcomeIgnored   = "ignored"
	EncoderOutcomeDiscarded = "discarded"
	EncoderOutcomeFailed    = "failed"
)
