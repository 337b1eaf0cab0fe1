package metrics

import (
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Collector bundles the Prometheus instruments the bot updates while
// serving chat commands.
type Collector struct {
	commandsTotal *prometheus.CounterVec
	pingDuration  prometheus.Histogram
	pingFailures  prometheus.Counter
	cacheHits     prometheus.Counter
	cacheMisses   prometheus.Counter
	renderSeconds prometheus.Histogram
}

var (
	collectorInstance *Collector
	once              sync.Once
)

// NewCollector initializes and returns the process-wide Collector
// (singleton). Instruments are registered with the default Prometheus
// registry on first call; later calls return the same instance.
func NewCollector() *Collector {
	once.Do(func() {
		collectorInstance = &Collector{
			commandsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
				Name: "craftwatch_commands_total",
				Help: "Chat commands handled, by command name and outcome",
			}, []string{"command", "outcome"}),
			pingDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
				Name:    "craftwatch_ping_duration_seconds",
				Help:    "Time spent completing a server list ping exchange",
				Buckets: []float64{0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5},
			}),
			pingFailures: prometheus.NewCounter(prometheus.CounterOpts{
				Name: "craftwatch_ping_failures_total",
				Help: "Server list pings that ended in an error",
			}),
			cacheHits: prometheus.NewCounter(prometheus.CounterOpts{
				Name: "craftwatch_status_cache_hits_total",
				Help: "Status lookups answered from the in-memory cache",
			}),
			cacheMisses: prometheus.NewCounter(prometheus.CounterOpts{
				Name: "craftwatch_status_cache_misses_total",
				Help: "Status lookups that had to ping the server",
			}),
			renderSeconds: prometheus.NewHistogram(prometheus.HistogramOpts{
				Name:    "craftwatch_render_duration_seconds",
				Help:    "Time spent composing and encoding a status card",
				Buckets: []float64{0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1},
			}),
		}

		prometheus.MustRegister(
			collectorInstance.commandsTotal,
			collectorInstance.pingDuration,
			collectorInstance.pingFailures,
			collectorInstance.cacheHits,
			collectorInstance.cacheMisses,
			collectorInstance.renderSeconds,
		)
	})

	return collectorInstance
}

// ObserveCommand counts one handled command. Outcome is one of "ok",
// "rejected", or "error".
func (c *Collector) ObserveCommand(command, outcome string) {
	if c == nil {
		return
	}
	c.commandsTotal.WithLabelValues(command, outcome).Inc()
}

// ObservePing records one ping exchange and whether it succeeded.
func (c *Collector) ObservePing(duration time.Duration, err error) {
	if c == nil {
		return
	}
	c.pingDuration.Observe(duration.Seconds())
	if err != nil {
		c.pingFailures.Inc()
	}
}

// ObserveCacheHit counts a status served from cache.
func (c *Collector) ObserveCacheHit() {
	if c == nil {
		return
	}
	c.cacheHits.Inc()
}

// ObserveCacheMiss counts a status that required a live ping.
func (c *Collector) ObserveCacheMiss() {
	if c == nil {
		return
	}
	c.cacheMisses.Inc()
}

// ObserveRender records the wall time of one card render.
func (c *Collector) ObserveRender(duration time.Duration) {
	if c == nil {
		return
	}
	c.renderSeconds.Observe(duration.Seconds())
}
