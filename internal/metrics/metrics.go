// Package metrics exposes the http request metrics served at /metrics.
package metrics

import (
	"errors"
	"strconv"
	"sync"
	"time"

	"github.com/gofiber/fiber/v3"
	"github.com/gofiber/fiber/v3/middleware/adaptor"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	requests  *prometheus.CounterVec   //nolint:gochecknoglobals
	durations *prometheus.HistogramVec //nolint:gochecknoglobals
	inFlight  prometheus.Gauge         //nolint:gochecknoglobals
	register  sync.Once                //nolint:gochecknoglobals
)

func registerCollectors() {
	register.Do(func() {
		requests = promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "http_requests_total",
				Help: "Number of http requests, differentiated by method, route and status.",
			},
			[]string{"method", "route", "status"},
		)
		durations = promauto.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "http_request_duration_seconds",
				Help:    "Duration of http requests, differentiated by method and route.",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"method", "route"},
		)
		inFlight = promauto.NewGauge(prometheus.GaugeOpts{
			Name: "http_requests_in_flight",
			Help: "Number of http requests currently served.",
		})
	})
}

// Middleware records every request. The route label is the registered route
// pattern, never the raw path.
func Middleware(skipPaths ...string) fiber.Handler {
	registerCollectors()

	skip := make(map[string]struct{}, len(skipPaths))
	for _, p := range skipPaths {
		skip[p] = struct{}{}
	}

	return func(c fiber.Ctx) error {
		if _, ok := skip[c.Path()]; ok {
			return c.Next()
		}

		start := time.Now()

		inFlight.Inc()
		defer inFlight.Dec()

		err := c.Next()

		status := c.Response().StatusCode()

		var fe *fiber.Error
		if err != nil && errors.As(err, &fe) {
			status = fe.Code
		} else if err != nil {
			status = fiber.StatusInternalServerError
		}

		method := c.Method()
		route := c.Route().Path

		requests.WithLabelValues(method, route, strconv.Itoa(status)).Inc()
		durations.WithLabelValues(method, route).Observe(time.Since(start).Seconds())

		return err
	}
}

// Handler serves the default prometheus registry.
func Handler() fiber.Handler {
	registerCollectors()

	return adaptor.HTTPHandler(promhttp.Handler())
}
