package observability

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// RedisErrorRate counts Redis errors by operation type.
	RedisErrorRate = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "forum_redis_error_rate_total",
		Help: "Total number of Redis errors by operation type",
	}, []string{"operation"})

	// CommentsCreated counts persisted comments by kind (root or reply).
	CommentsCreated = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "forum_comments_created_total",
		Help: "Total number of comments created",
	}, []string{"kind"})

	// CommentDepthRejections counts writes refused because the parent is already a reply.
	CommentDepthRejections = promauto.NewCounter(prometheus.CounterOpts{
		Name: "forum_comment_depth_rejections_total",
		Help: "Total number of replies rejected for exceeding the nesting depth",
	})

	// NotificationsCreated counts persisted notifications by type.
	NotificationsCreated = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "forum_notifications_created_total",
		Help: "Total number of notifications created",
	}, []string{"type"})

	// NotificationDispatchFailures counts dispatch runs that ended in an error.
	NotificationDispatchFailures = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "forum_notification_dispatch_failures_total",
		Help: "Total number of notification dispatch runs that failed",
	}, []string{"event"})

	// WebSocketConnectionsTotal is the gauge of total WebSocket connections.
	WebSocketConnectionsTotal = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "forum_websocket_connections_total",
		Help: "Total number of active WebSocket connections",
	})

	// WebSocketBackpressureDrops counts messages dropped because a client send buffer was full.
	WebSocketBackpressureDrops = promauto.NewCounter(prometheus.CounterOpts{
		Name: "forum_websocket_backpressure_drops_total",
		Help: "Total number of WebSocket messages dropped due to backpressure",
	})
)
