// Package metrics 提供 Prometheus 指标模板与 HTTP 暴露
package metrics

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/wyfcoding/valuationengine/pkg/logger"
)

// Metrics 估值服务指标集合
type Metrics struct {
	// HTTP 请求计数
	HTTPRequestsTotal *prometheus.CounterVec
	// HTTP 请求耗时
	HTTPRequestDuration *prometheus.HistogramVec

	// 估值计算请求计数
	CalculationsTotal prometheus.Counter
	// 估值计算耗时
	CalculationDuration prometheus.Histogram
	// 按计量失败计数
	MeasureFailuresTotal *prometheus.CounterVec
	// 单次请求场景数
	ScenarioCount prometheus.Histogram

	// Outbox 转发计数
	OutboxRelayedTotal prometheus.Counter
}

// New 创建指标实例
func New(serviceName string) *Metrics {
	return &Metrics{
		HTTPRequestsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "valuation",
			Subsystem: serviceName,
			Name:      "http_requests_total",
			Help:      "Total HTTP requests",
		}, []string{"method", "path", "status"}),
		HTTPRequestDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "valuation",
			Subsystem: serviceName,
			Name:      "http_request_duration_seconds",
			Help:      "HTTP request duration in seconds",
			Buckets:   prometheus.DefBuckets,
		}, []string{"method", "path"}),
		CalculationsTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "valuation",
			Subsystem: serviceName,
			Name:      "calculations_total",
			Help:      "Total measure calculation requests",
		}),
		CalculationDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "valuation",
			Subsystem: serviceName,
			Name:      "calculation_duration_seconds",
			Help:      "Measure calculation duration in seconds",
			Buckets:   []float64{0.001, 0.005, 0.01, 0.05, 0.1, 0.5, 1, 5},
		}),
		MeasureFailuresTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "valuation",
			Subsystem: serviceName,
			Name:      "measure_failures_total",
			Help:      "Per-measure calculation failures",
		}, []string{"measure", "reason"}),
		ScenarioCount: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "valuation",
			Subsystem: serviceName,
			Name:      "scenario_count",
			Help:      "Scenario count per calculation request",
			Buckets:   []float64{1, 2, 8, 32, 128, 256},
		}),
		OutboxRelayedTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "valuation",
			Subsystem: serviceName,
			Name:      "outbox_relayed_total",
			Help:      "Outbox messages relayed to kafka",
		}),
	}
}

// Register 注册所有指标
func (m *Metrics) Register() error {
	collectors := []prometheus.Collector{
		m.HTTPRequestsTotal,
		m.HTTPRequestDuration,
		m.CalculationsTotal,
		m.CalculationDuration,
		m.MeasureFailuresTotal,
		m.ScenarioCount,
		m.OutboxRelayedTotal,
	}
	for _, c := range collectors {
		if err := prometheus.Register(c); err != nil {
			if _, ok := err.(prometheus.AlreadyRegisteredError); !ok {
				return err
			}
		}
	}
	return nil
}

// ObserveCalculation 记录一次计算请求
func (m *Metrics) ObserveCalculation(start time.Time, scenarios int) {
	m.CalculationsTotal.Inc()
	m.CalculationDuration.Observe(time.Since(start).Seconds())
	m.ScenarioCount.Observe(float64(scenarios))
}

// RecordMeasureFailure 记录单个计量失败
func (m *Metrics) RecordMeasureFailure(measure, reason string) {
	m.MeasureFailuresTotal.WithLabelValues(measure, reason).Inc()
}

// StartHTTPServer 启动指标 HTTP 服务
func StartHTTPServer(port int, path string) error {
	mux := http.NewServeMux()
	mux.Handle(path, promhttp.Handler())
	addr := fmt.Sprintf(":%d", port)
	logger.Info(context.Background(), "metrics server starting", "addr", addr, "path", path)
	return http.ListenAndServe(addr, mux)
}
