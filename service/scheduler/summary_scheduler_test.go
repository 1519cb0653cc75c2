/*
 * @module service/scheduler/summary_scheduler_test
 * @description 漂移日报调度器单元测试
 * @architecture 测试层
 * @documentReference dev_docs/drift_requirements.md
 * @stateFlow 准备漂移事件 -> 触发日报 -> 验证推送内容
 * @rules 直接触发任务函数验证统计和推送，不依赖真实定时
 * @dependencies testing, stretchr/testify, driftwatch-service/testutil
 */

package scheduler

import (
	"testing"
	"time"

	"driftwatch-service/service/models"
	"driftwatch-service/service/storage"
	"driftwatch-service/testutil"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeNotifier struct {
	result   bool
	messages []string
}

func (f *fakeNotifier) Notify(message string) bool {
	f.messages = append(f.messages, message)
	return f.result
}

// TestSummaryScheduler_PushSummary 测试日报统计和推送内容
func TestSummaryScheduler_PushSummary(t *testing.T) {
	tdb := testutil.NewTestDB()
	defer tdb.CleanDB()
	store := storage.NewRecordStore(tdb.DB)

	now := time.Now()
	require.NoError(t, store.StoreDriftEvent(&models.DriftEvent{
		RecordID: "r1", FeatureCount: 1, AlertSent: true, DetectedAt: now.Add(-time.Hour),
	}))
	require.NoError(t, store.StoreDriftEvent(&models.DriftEvent{
		RecordID: "r2", FeatureCount: 2, AlertSent: false, DetectedAt: now.Add(-2 * time.Hour),
	}))

	notifier := &fakeNotifier{result: true}
	s := NewSummaryScheduler(store, notifier, "0 0 8 * * *")
	s.pushSummary()

	require.Len(t, notifier.messages, 1)
	assert.Equal(t, "📊 漂移监控日报：最近24小时共检测到 2 次漂移，成功发送告警 1 次", notifier.messages[0])
}

// TestSummaryScheduler_StoreUnavailable 测试存储不可用时跳过推送
func TestSummaryScheduler_StoreUnavailable(t *testing.T) {
	notifier := &fakeNotifier{result: true}
	s := NewSummaryScheduler(nil, notifier, "0 0 8 * * *")
	s.pushSummary()

	assert.Empty(t, notifier.messages)
}

// TestSummaryScheduler_StartStop 测试调度器启停
func TestSummaryScheduler_StartStop(t *testing.T) {
	tdb := testutil.NewTestDB()
	store := storage.NewRecordStore(tdb.DB)

	s := NewSummaryScheduler(store, &fakeNotifier{result: true}, "0 0 8 * * *")
	require.NoError(t, s.Start())
	// 重复启动幂等
	require.NoError(t, s.Start())
	s.Stop()
}

// TestSummaryScheduler_InvalidCronSpec 测试非法cron表达式返回错误
func TestSummaryScheduler_InvalidCronSpec(t *testing.T) {
	s := NewSummaryScheduler(nil, &fakeNotifier{}, "not-a-cron")
	assert.Error(t, s.Start())
}
