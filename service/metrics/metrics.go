/*
 * @module service/metrics/metrics
 * @description 漂移监控服务的Prometheus指标定义，通过 /metrics 端点暴露
 * @architecture 监控层 - 指标采集
 * @documentReference dev_docs/drift_requirements.md
 * @stateFlow 请求处理过程中累加计数 -> Prometheus拉取
 * @rules 指标只在请求路径上累加，不引入阻塞
 * @dependencies github.com/prometheus/client_golang
 * @refs api/controllers/ingest_controller.go, main.go
 */

package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// IngestTotal 按处理结果统计的接收记录数
	IngestTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "driftwatch_ingest_total",
		Help: "接收到的观测记录数，按处理结果分类（ok/drift_detected/reference_unavailable/bad_request）",
	}, []string{"status"})

	// DriftedFeatureTotal 累计检测到的漂移字段数
	DriftedFeatureTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "driftwatch_drifted_features_total",
		Help: "累计检测到的漂移字段数",
	})

	// AlertDeliveryTotal 按投递结果统计的告警数
	AlertDeliveryTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "driftwatch_alert_delivery_total",
		Help: "告警投递次数，按结果分类（success/failure/throttled）",
	}, []string{"result"})

	// DetectDuration 单条记录漂移检测耗时
	DetectDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "driftwatch_detect_duration_seconds",
		Help:    "单条记录漂移检测耗时（秒）",
		Buckets: prometheus.DefBuckets,
	})
)
