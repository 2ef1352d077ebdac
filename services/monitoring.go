package services

import (
	"fmt"
	"runtime"
	"strconv"
	"time"

	appContext "github.com/alphabatem/common/context"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/lac-hong-legacy/ven_companion/shared"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog/log"
)

const (
	MONITORING_SVC = "monitoring_svc"
	SERVICE_NAME   = "ven_companion"
)

// HTTP Metrics
var (
	httpRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "Total HTTP requests",
		},
		[]string{"endpoint", "method", "status"},
	)

	httpRequestsActive = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "http_requests_active",
			Help: "Number of active concurrent HTTP requests",
		},
		[]string{"method"},
	)

	httpRequestDurationSeconds = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "HTTP request duration in seconds",
			Buckets: []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30},
		},
		[]string{"endpoint", "method", "status"},
	)
)

// Companion Metrics
var (
	messagesRecordedTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "companion_messages_recorded_total",
			Help: "Chat messages stored, by sender",
		},
		[]string{"sender"},
	)

	levelUpsTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "companion_level_ups_total",
			Help: "Relationship level ups",
		},
	)

	photosUnlockedTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "companion_photos_unlocked_total",
			Help: "Photos unlocked, by source",
		},
		[]string{"source"},
	)

	quotaRejectionsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "companion_quota_rejections_total",
			Help: "Requests rejected by the daily quota, by kind",
		},
		[]string{"kind"},
	)

	gatewayFailuresTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "companion_gateway_failures_total",
			Help: "Reply generation failures, by reason",
		},
		[]string{"reason"},
	)

	gatewayDurationSeconds = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "companion_gateway_duration_seconds",
			Help:    "Reply generation latency in seconds",
			Buckets: []float64{0.25, 0.5, 1, 2, 4, 8, 15, 30},
		},
	)

	versionConflictsTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "companion_store_version_conflicts_total",
			Help: "Progress saves retried after a concurrent write",
		},
	)

	heapAllocBytes = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "heap_alloc_bytes",
			Help: "Heap memory allocated in bytes",
		},
	)
)

type MonitoringService struct {
	appContext.DefaultService

	port     int
	register *prometheus.Registry

	closed chan struct{}
	server *fiber.App
}

func (svc MonitoringService) Id() string {
	return MONITORING_SVC
}

func (svc *MonitoringService) Configure(ctx *appContext.Context) error {
	cfg, err := shared.LoadConfig()
	if err != nil {
		return err
	}
	svc.port = cfg.PrometheusPort
	return svc.DefaultService.Configure(ctx)
}

func (svc *MonitoringService) Start() error {
	svc.closed = make(chan struct{}, 1)

	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	reg.MustRegister(
		httpRequestsTotal,
		httpRequestsActive,
		httpRequestDurationSeconds,
		messagesRecordedTotal,
		levelUpsTotal,
		photosUnlockedTotal,
		quotaRejectionsTotal,
		gatewayFailuresTotal,
		gatewayDurationSeconds,
		versionConflictsTotal,
		heapAllocBytes,
	)
	svc.register = reg

	go svc.updateMemoryMetrics()

	svc.server = fiber.New(fiber.Config{
		DisableStartupMessage: true,
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			return c.Status(fiber.StatusInternalServerError).SendString("Internal Server Error")
		},
	})
	svc.server.Use(recover.New())
	svc.server.Get("/metrics", svc.metricsHandler)
	svc.server.Get("/health", svc.healthHandler)

	go func() {
		if err := svc.server.Listen(fmt.Sprintf(":%v", svc.port)); err != nil {
			log.Error().Err(err).Int("port", svc.port).Msg("Metrics server stopped")
		}
	}()

	log.Info().Int("port", svc.port).Msg("Prometheus metrics server started")
	return nil
}

func (svc *MonitoringService) Shutdown() {
	if svc.closed != nil {
		svc.closed <- struct{}{}
	}
	if svc.server != nil {
		_ = svc.server.Shutdown()
	}
}

func (svc *MonitoringService) metricsHandler(c *fiber.Ctx) error {
	handler := promhttp.HandlerFor(svc.register, promhttp.HandlerOpts{})
	return adaptor.HTTPHandler(handler)(c)
}

func (svc *MonitoringService) healthHandler(c *fiber.Ctx) error {
	return c.Status(fiber.StatusOK).JSON(fiber.Map{
		"status":    "healthy",
		"service":   SERVICE_NAME,
		"timestamp": time.Now().Unix(),
	})
}

func (svc *MonitoringService) updateMemoryMetrics() {
	ticker := time.NewTicker(15 * time.Second)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			var m runtime.MemStats
			runtime.ReadMemStats(&m)
			heapAllocBytes.Set(float64(m.Alloc))
		case <-svc.closed:
			return
		}
	}
}

// RecordRequest records HTTP request metrics
func (svc *MonitoringService) RecordRequest(method, endpoint, status string, duration time.Duration) {
	httpRequestsTotal.WithLabelValues(endpoint, method, status).Inc()
	httpRequestDurationSeconds.WithLabelValues(endpoint, method, status).Observe(duration.Seconds())
}

// MonitoringMiddleware creates a Fiber middleware for monitoring HTTP requests
func MonitoringMiddleware(monitoringSvc *MonitoringService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		start := time.Now()
		method := c.Method()

		httpRequestsActive.WithLabelValues(method).Inc()
		defer httpRequestsActive.WithLabelValues(method).Dec()

		err := c.Next()

		// route pattern, not the concrete path, to keep label cardinality low
		endpoint := c.Route().Path
		status := c.Response().StatusCode()
		if err != nil {
			if appErr, ok := shared.GetAppError(err); ok {
				status = appErr.StatusCode
			} else if fiberErr, ok := err.(*fiber.Error); ok {
				status = fiberErr.Code
			} else {
				status = fiber.StatusInternalServerError
			}
		}
		monitoringSvc.RecordRequest(method, endpoint, strconv.Itoa(status), time.Since(start))
		return err
	}
}

func recordMessageMetric(sender string) {
	messagesRecordedTotal.WithLabelValues(sender).Inc()
}

func recordLevelUp() {
	levelUpsTotal.Inc()
}

func recordPhotoUnlock(source string) {
	photosUnlockedTotal.WithLabelValues(source).Inc()
}

func recordQuotaRejection(kind string) {
	quotaRejectionsTotal.WithLabelValues(kind).Inc()
}

func recordVersionConflict() {
	versionConflictsTotal.Inc()
}

func recordGatewayFailure(reason string, duration time.Duration) {
	gatewayFailuresTotal.WithLabelValues(reason).Inc()
	gatewayDurationSeconds.Observe(duration.Seconds())
}

func recordGatewaySuccess(duration time.Duration) {
	gatewayDurationSeconds.Observe(duration.Seconds())
}
