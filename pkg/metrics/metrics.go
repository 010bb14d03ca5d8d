// Package metrics 定义 LLM 网关、降级路径与缓存的 Prometheus 指标。
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

var (
	// LLMLatency 记录单次模型调用的耗时，status 取 ok / error / rate_limited / timeout。
	LLMLatency = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "curago",
			Subsystem: "llm",
			Name:      "request_latency_seconds",
			Help:      "Latency of single model calls made by the LLM gateway",
			Buckets:   []float64{0.25, 0.5, 1, 2, 4, 8, 15, 30},
		},
		[]string{"model", "status"},
	)

	// LLMNoResult 统计所有模型均失败、网关返回无结果的次数。
	LLMNoResult = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: "curago",
			Subsystem: "llm",
			Name:      "no_result_total",
			Help:      "Generate calls for which no configured model produced text",
		},
	)

	// FallbackTotal 按组件统计本地兜底逻辑的触发次数。
	FallbackTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "curago",
			Subsystem: "triage",
			Name:      "fallback_total",
			Help:      "Local fallbacks taken when the LLM path was unusable",
		},
		[]string{"component", "reason"},
	)

	// CacheLookups 统计响应缓存命中情况，result 取 hit / miss。
	CacheLookups = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "curago",
			Subsystem: "cache",
			Name:      "lookups_total",
			Help:      "Response cache lookups by namespace and result",
		},
		[]string{"namespace", "result"},
	)
)

func init() {
	prometheus.MustRegister(LLMLatency, LLMNoResult, FallbackTotal, CacheLookups)
}

// Fallback 记录一次兜底。
func Fallback(component, reason string) {
	FallbackTotal.WithLabelValues(component, reason).Inc()
}

// CacheLookup 记录一次缓存查询结果。
func CacheLookup(namespace string, hit bool) {
	result := "miss"
	if hit {
		result = "hit"
	}
	CacheLookups.WithLabelValues(namespace, result).Inc()
}
