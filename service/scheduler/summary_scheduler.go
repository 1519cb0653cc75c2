/*
 * @module service/scheduler/summary_scheduler
 * @description 漂移日报调度器，定时统计最近24小时的漂移事件并推送到通知渠道
 * @architecture 分层架构 - 服务层
 * @documentReference dev_docs/drift_requirements.md
 * @stateFlow 启动调度器 -> 定时触发 -> 统计查询 -> 推送日报
 * @rules 存储或通知不可用时只记录日志，调度器本身不中断
 * @dependencies github.com/robfig/cron/v3
 * @refs service/storage/record_store.go, service/notification/slack.go
 */

package scheduler

import (
	"fmt"
	"log/slog"
	"time"

	"driftwatch-service/service/notification"
	"driftwatch-service/service/storage"

	"github.com/robfig/cron/v3"
)

// SummaryScheduler 漂移日报调度器
type SummaryScheduler struct {
	cron     *cron.Cron
	store    *storage.RecordStore
	notifier notification.Notifier
	spec     string
	started  bool
}

// NewSummaryScheduler 创建漂移日报调度器
func NewSummaryScheduler(store *storage.RecordStore, notifier notification.Notifier, spec string) *SummaryScheduler {
	return &SummaryScheduler{
		cron:     cron.New(cron.WithSeconds()),
		store:    store,
		notifier: notifier,
		spec:     spec,
	}
}

// Start 注册并启动定时任务
func (s *SummaryScheduler) Start() error {
	if s.started {
		return nil
	}

	if _, err := s.cron.AddFunc(s.spec, s.pushSummary); err != nil {
		return fmt.Errorf("注册漂移日报任务失败: %w", err)
	}

	s.cron.Start()
	s.started = true
	slog.Info("漂移日报调度器已启动", "cron", s.spec)
	return nil
}

// Stop 停止调度器
func (s *SummaryScheduler) Stop() {
	if !s.started {
		return
	}
	s.cron.Stop()
	s.started = false
	slog.Info("漂移日报调度器已停止")
}

// pushSummary 统计最近24小时漂移事件并推送日报
func (s *SummaryScheduler) pushSummary() {
	if !s.store.Available() {
		slog.Warn("存储不可用，跳过漂移日报")
		return
	}

	summary, err := s.store.DriftSummarySince(time.Now().Add(-24 * time.Hour))
	if err != nil {
		slog.Error("统计漂移事件失败", "error", err)
		return
	}

	message := fmt.Sprintf("📊 漂移监控日报：最近24小时共检测到 %d 次漂移，成功发送告警 %d 次",
		summary.TotalEvents, summary.AlertsSent)

	if s.notifier == nil || !s.notifier.Notify(message) {
		slog.Error("漂移日报发送失败")
		return
	}
	slog.Info("漂移日报发送成功", "total_events", summary.TotalEvents)
}
