/*
 * @module service/storage/record_store_test
 * @description 记录存储单元测试
 * @architecture 测试层
 * @documentReference dev_docs/drift_requirements.md
 * @stateFlow 内存数据库准备 -> 入库 -> 查询验证
 * @rules 使用内存SQLite验证存储层行为
 * @dependencies testing, stretchr/testify, driftwatch-service/testutil
 */

package storage

import (
	"testing"
	"time"

	"driftwatch-service/service/models"
	"driftwatch-service/testutil"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestRecordStore_StoreIncoming 测试原始记录入库和JSONB载荷往返
func TestRecordStore_StoreIncoming(t *testing.T) {
	tdb := testutil.NewTestDB()
	defer tdb.CleanDB()
	store := NewRecordStore(tdb.DB)

	record, err := store.StoreIncoming(models.JSONB{
		"age":  float64(30),
		"city": "NY",
	})
	require.NoError(t, err)
	assert.NotEmpty(t, record.ID)
	assert.False(t, record.ReceivedAt.IsZero())

	var loaded models.IncomingRecord
	require.NoError(t, tdb.DB.First(&loaded, "id = ?", record.ID).Error)
	assert.Equal(t, float64(30), loaded.Payload["age"])
	assert.Equal(t, "NY", loaded.Payload["city"])
}

// TestRecordStore_StoreDriftEvent 测试漂移事件入库
func TestRecordStore_StoreDriftEvent(t *testing.T) {
	tdb := testutil.NewTestDB()
	defer tdb.CleanDB()
	store := NewRecordStore(tdb.DB)

	event := &models.DriftEvent{
		RecordID:        "rec-1",
		DriftedFeatures: models.JSONBStringArray{"age (z=3.20)", "city (new value: SF)"},
		FeatureCount:    2,
		AlertSent:       true,
		DetectedAt:      time.Now(),
	}
	require.NoError(t, store.StoreDriftEvent(event))
	assert.NotEmpty(t, event.ID)

	var loaded models.DriftEvent
	require.NoError(t, tdb.DB.First(&loaded, "id = ?", event.ID).Error)
	assert.Equal(t, "rec-1", loaded.RecordID)
	assert.Equal(t, models.JSONBStringArray{"age (z=3.20)", "city (new value: SF)"}, loaded.DriftedFeatures)
	assert.True(t, loaded.AlertSent)
}

// TestRecordStore_ListDriftEvents 测试漂移事件分页查询和排序
func TestRecordStore_ListDriftEvents(t *testing.T) {
	tdb := testutil.NewTestDB()
	defer tdb.CleanDB()
	store := NewRecordStore(tdb.DB)

	base := time.Now().Add(-time.Hour)
	for i := 0; i < 5; i++ {
		require.NoError(t, store.StoreDriftEvent(&models.DriftEvent{
			RecordID:        "rec",
			DriftedFeatures: models.JSONBStringArray{"age (z=4.00)"},
			FeatureCount:    1,
			DetectedAt:      base.Add(time.Duration(i) * time.Minute),
		}))
	}

	events, total, err := store.ListDriftEvents(1, 2)
	require.NoError(t, err)
	assert.Equal(t, int64(5), total)
	require.Len(t, events, 2)
	// 按检测时间倒序，最新的在前
	assert.True(t, events[0].DetectedAt.After(events[1].DetectedAt))

	events, _, err = store.ListDriftEvents(3, 2)
	require.NoError(t, err)
	assert.Len(t, events, 1)
}

// TestRecordStore_DriftSummarySince 测试时间窗口内的漂移统计
func TestRecordStore_DriftSummarySince(t *testing.T) {
	tdb := testutil.NewTestDB()
	defer tdb.CleanDB()
	store := NewRecordStore(tdb.DB)

	now := time.Now()
	// 窗口内：2条，其中1条告警成功
	require.NoError(t, store.StoreDriftEvent(&models.DriftEvent{
		RecordID: "r1", FeatureCount: 1, AlertSent: true, DetectedAt: now.Add(-time.Hour),
	}))
	require.NoError(t, store.StoreDriftEvent(&models.DriftEvent{
		RecordID: "r2", FeatureCount: 1, AlertSent: false, DetectedAt: now.Add(-2 * time.Hour),
	}))
	// 窗口外
	require.NoError(t, store.StoreDriftEvent(&models.DriftEvent{
		RecordID: "r3", FeatureCount: 1, AlertSent: true, DetectedAt: now.Add(-48 * time.Hour),
	}))

	summary, err := store.DriftSummarySince(now.Add(-24 * time.Hour))
	require.NoError(t, err)
	assert.Equal(t, int64(2), summary.TotalEvents)
	assert.Equal(t, int64(1), summary.AlertsSent)
}

// TestRecordStore_Available 测试存储可用性判断
func TestRecordStore_Available(t *testing.T) {
	var nilStore *RecordStore
	assert.False(t, nilStore.Available())
	assert.False(t, NewRecordStore(nil).Available())

	tdb := testutil.NewTestDB()
	assert.True(t, NewRecordStore(tdb.DB).Available())
}
