package api

import (
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/brettboylen/post-index/store"
)

// Metrics owns a private registry so several servers can live in one process
type Metrics struct {
	registry *prometheus.Registry
	requests *prometheus.CounterVec
}

// NewMetrics registers request counters and store gauges
func NewMetrics(postStore *store.Store) *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		requests: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "postindex_http_requests_total",
				Help: "HTTP requests by route and status code.",
			},
			[]string{"route", "method", "code"},
		),
	}

	m.registry.MustRegister(
		m.requests,
		prometheus.NewGaugeFunc(prometheus.GaugeOpts{
			Name: "postindex_posts",
			Help: "Posts held by the store.",
		}, func() float64 {
			return float64(postStore.Len())
		}),
		prometheus.NewGaugeFunc(prometheus.GaugeOpts{
			Name: "postindex_tree_height",
			Help: "Height of the timestamp tree.",
		}, func() float64 {
			return float64(postStore.Stats().TreeHeight)
		}),
	)

	return m
}

// Middleware counts every request once the handler has written its status
func (m *Metrics) Middleware() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			err := next(c)
			if err != nil {
				c.Error(err)
			}
			m.requests.WithLabelValues(c.Path(), c.Request().Method, strconv.Itoa(c.Response().Status)).Inc()
			return nil
		}
	}
}

// Handler serves the registry in the Prometheus text format
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}
