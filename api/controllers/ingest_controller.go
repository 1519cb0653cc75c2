/*
 * @module api/controllers/ingest_controller
 * @description 观测数据接收控制器，串联记录持久化、对齐、漂移检测和告警投递
 * @architecture MVC架构 - 控制器层
 * @documentReference dev_docs/drift_requirements.md
 * @stateFlow 请求解析 -> 原始记录持久化 -> 记录对齐 -> 漂移检测 -> 告警/事件发布 -> 响应返回
 * @rules 持久化、告警和事件发布均为尽力而为，失败只体现在响应字段中，不中断请求
 * @dependencies driftwatch-service/service/drift, driftwatch-service/service/notification
 * @refs service/drift/detector.go, service/notification/slack.go
 */

package controllers

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"driftwatch-service/service/drift"
	"driftwatch-service/service/eventbus"
	"driftwatch-service/service/metrics"
	"driftwatch-service/service/models"
	"driftwatch-service/service/notification"
	"driftwatch-service/service/ratelimit"
	"driftwatch-service/service/reference"
	"driftwatch-service/service/storage"

	"github.com/go-chi/render"
)

// IngestController 观测数据接收控制器
type IngestController struct {
	profile   *reference.Profile
	store     *storage.RecordStore
	notifier  notification.Notifier
	limiter   *ratelimit.AlertRateLimiter
	publisher *eventbus.DriftEventPublisher
}

// NewIngestController 创建观测数据接收控制器
func NewIngestController(
	profile *reference.Profile,
	store *storage.RecordStore,
	notifier notification.Notifier,
	limiter *ratelimit.AlertRateLimiter,
	publisher *eventbus.DriftEventPublisher,
) *IngestController {
	return &IngestController{
		profile:   profile,
		store:     store,
		notifier:  notifier,
		limiter:   limiter,
		publisher: publisher,
	}
}

// DriftCheckResult 单条记录的检测结果
type DriftCheckResult struct {
	Status          string   `json:"status" example:"ok"` // ok 或 drift_detected
	RecordID        string   `json:"record_id,omitempty"`
	AlertSent       *bool    `json:"alert_sent,omitempty"`
	DriftedFeatures []string `json:"drifted_features,omitempty"`
}

// ReceiveData 接收单条观测记录并执行漂移检测
// @Summary 接收观测数据
// @Description 接收单条JSON观测记录，与参考分布比对后返回漂移检测结果；检测到漂移时推送告警
// @Tags 数据接收
// @Accept json
// @Produce json
// @Param record body map[string]interface{} true "观测记录"
// @Success 200 {object} APIResponse{data=DriftCheckResult}
// @Failure 400 {object} APIResponse
// @Failure 503 {object} APIResponse
// @Router /data [post]
func (c *IngestController) ReceiveData(w http.ResponseWriter, r *http.Request) {
	var record map[string]interface{}
	if err := json.NewDecoder(r.Body).Decode(&record); err != nil {
		metrics.IngestTotal.WithLabelValues("bad_request").Inc()
		sendError(w, http.StatusBadRequest, "解析请求数据失败: "+err.Error())
		return
	}
	if record == nil {
		metrics.IngestTotal.WithLabelValues("bad_request").Inc()
		sendError(w, http.StatusBadRequest, "请求体必须是JSON对象")
		return
	}
	slog.Info("接收到观测数据", "fields", len(record))

	// 尽力持久化原始记录，失败不影响检测流程
	recordID := ""
	if c.store.Available() {
		if stored, err := c.store.StoreIncoming(models.JSONB(record)); err != nil {
			slog.Error("原始记录持久化失败", "error", err)
		} else {
			recordID = stored.ID
		}
	}

	reconciled := drift.Reconcile(record, c.profile)

	start := time.Now()
	verdict, err := drift.Detect(reconciled, c.profile)
	metrics.DetectDuration.Observe(time.Since(start).Seconds())
	if err != nil {
		// 参考数据不可用时跳过检测，向调用方返回明确的状态而不是伪装成正常
		metrics.IngestTotal.WithLabelValues("reference_unavailable").Inc()
		sendError(w, http.StatusServiceUnavailable, "参考数据不可用")
		return
	}

	if !verdict.DriftDetected {
		metrics.IngestTotal.WithLabelValues("ok").Inc()
		render.JSON(w, r, &APIResponse{
			Status: 0,
			Msg:    "检测完成",
			Data: &DriftCheckResult{
				Status:   "ok",
				RecordID: recordID,
			},
		})
		return
	}

	slog.Warn("检测到数据漂移", "features", verdict.DriftedFeatures)
	metrics.IngestTotal.WithLabelValues("drift_detected").Inc()
	metrics.DriftedFeatureTotal.Add(float64(len(verdict.DriftedFeatures)))

	alertSent := c.dispatchAlert(r.Context(), verdict.DriftedFeatures, record)

	event := &models.DriftEvent{
		RecordID:        recordID,
		DriftedFeatures: models.JSONBStringArray(verdict.DriftedFeatures),
		FeatureCount:    len(verdict.DriftedFeatures),
		AlertSent:       alertSent,
		DetectedAt:      time.Now(),
	}
	if c.store.Available() {
		if err := c.store.StoreDriftEvent(event); err != nil {
			slog.Error("漂移事件持久化失败", "error", err)
		}
	}
	if c.publisher != nil {
		if err := c.publisher.Publish(r.Context(), event); err != nil {
			slog.Error("漂移事件发布失败", "error", err)
		}
	}

	render.JSON(w, r, &APIResponse{
		Status: 0,
		Msg:    "检测完成",
		Data: &DriftCheckResult{
			Status:          "drift_detected",
			RecordID:        recordID,
			AlertSent:       &alertSent,
			DriftedFeatures: verdict.DriftedFeatures,
		},
	})
}

// dispatchAlert 发送漂移告警，受限流保护，返回是否投递成功
func (c *IngestController) dispatchAlert(ctx context.Context, features []string, sample map[string]interface{}) bool {
	if !c.limiter.Allow(ctx) {
		metrics.AlertDeliveryTotal.WithLabelValues("throttled").Inc()
		return false
	}

	message := notification.BuildDriftAlertMessage(features, sample)
	if c.notifier == nil || !c.notifier.Notify(message) {
		metrics.AlertDeliveryTotal.WithLabelValues("failure").Inc()
		return false
	}

	metrics.AlertDeliveryTotal.WithLabelValues("success").Inc()
	return true
}
