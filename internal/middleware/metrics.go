package middleware

import (
	"sync"

	"github.com/ansrivas/fiberprometheus/v2"
	"github.com/gofiber/fiber/v2"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// RedisErrors counts Redis errors by command name.
	RedisErrors = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "plume_redis_errors_total",
		Help: "Total number of Redis errors by command",
	}, []string{"command"})

	// FeedCacheHits counts feed page cache hits by feed kind.
	FeedCacheHits = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "plume_feed_cache_hits_total",
		Help: "Total number of feed page cache hits",
	}, []string{"feed"})

	// FeedCacheMisses counts feed page cache misses by feed kind.
	FeedCacheMisses = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "plume_feed_cache_misses_total",
		Help: "Total number of feed page cache misses",
	}, []string{"feed"})
)

var (
	promOnce     sync.Once
	promInstance *fiberprometheus.FiberPrometheus
)

// InitMetrics creates the Prometheus middleware for the given service name.
// The HTTP collectors live in the default registry, so the instance is built
// once per process however many apps are assembled.
func InitMetrics(serviceName string) *fiberprometheus.FiberPrometheus {
	promOnce.Do(func() {
		promInstance = fiberprometheus.New(serviceName)
	})
	return promInstance
}

// MetricsMiddleware returns the Fiber handler recording HTTP metrics.
func MetricsMiddleware(prom *fiberprometheus.FiberPrometheus) fiber.Handler {
	return prom.Middleware
}
