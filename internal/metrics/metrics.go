package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Collector records gameplay metrics. A nil *Collector is valid and records nothing.
type Collector struct {
	registry     *prometheus.Registry
	gamesStarted prometheus.Counter
	answers      *prometheus.CounterVec
	gameOvers    *prometheus.CounterVec
	levelReached prometheus.Histogram
	sessions     prometheus.Gauge
}

func New() *Collector {
	c := &Collector{
		registry: prometheus.NewRegistry(),
		gamesStarted: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "birds",
			Name:      "games_started_total",
			Help:      "Games started or restarted.",
		}),
		answers: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "birds",
			Name:      "answers_total",
			Help:      "Submitted answers by result.",
		}, []string{"result"}),
		gameOvers: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "birds",
			Name:      "game_overs_total",
			Help:      "Finished games by reason.",
		}, []string{"reason"}),
		levelReached: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "birds",
			Name:      "level_reached",
			Help:      "Level reached when a game ended.",
			Buckets:   prometheus.LinearBuckets(1, 1, 12),
		}),
		sessions: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "birds",
			Name:      "active_sessions",
			Help:      "Game sessions currently held in memory.",
		}),
	}
	c.registry.MustRegister(
		c.gamesStarted,
		c.answers,
		c.gameOvers,
		c.levelReached,
		c.sessions,
		collectors.NewGoCollector(),
	)
	return c
}

func (c *Collector) GameStarted() {
	if c == nil {
		return
	}
	c.gamesStarted.Inc()
}

func (c *Collector) Answer(correct bool) {
	if c == nil {
		return
	}
	result := "incorrect"
	if correct {
		result = "correct"
	}
	c.answers.WithLabelValues(result).Inc()
}

func (c *Collector) GameOver(reason string, level int) {
	if c == nil {
		return
	}
	c.gameOvers.WithLabelValues(reason).Inc()
	c.levelReached.Observe(float64(level))
}

func (c *Collector) SessionOpened() {
	if c == nil {
		return
	}
	c.sessions.Inc()
}

func (c *Collector) SessionClosed() {
	if c == nil {
		return
	}
	c.sessions.Dec()
}

// Handler serves the collector's registry in the Prometheus text format.
func (c *Collector) Handler() http.Handler {
	if c == nil {
		return http.NotFoundHandler()
	}
	return promhttp.HandlerFor(c.registry, promhttp.HandlerOpts{})
}
