/*
 * @module api/controllers/ingest_controller_test
 * @description 观测数据接收控制器单元测试
 * @architecture 测试层
 * @documentReference dev_docs/drift_requirements.md
 * @stateFlow 构造请求 -> 控制器处理 -> 响应与副作用验证
 * @rules 覆盖正常、漂移、参考数据不可用和非法请求的完整响应契约
 * @dependencies testing, net/http/httptest, stretchr/testify, driftwatch-service/testutil
 */

package controllers

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"driftwatch-service/service/models"
	"driftwatch-service/service/reference"
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

type ingestResponse struct {
	Status int              `json:"status"`
	Msg    string           `json:"msg"`
	Data   DriftCheckResult `json:"data"`
}

func postData(t *testing.T, controller *IngestController, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, "/data", bytes.NewBufferString(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	controller.ReceiveData(w, req)
	return w
}

func decodeIngestResponse(t *testing.T, w *httptest.ResponseRecorder) ingestResponse {
	t.Helper()
	var resp ingestResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	return resp
}

// TestReceiveData_NoDrift 测试正常记录返回ok状态
func TestReceiveData_NoDrift(t *testing.T) {
	tdb := testutil.NewTestDB()
	defer tdb.CleanDB()
	store := storage.NewRecordStore(tdb.DB)
	notifier := &fakeNotifier{result: true}
	controller := NewIngestController(testutil.NewTestProfile(), store, notifier, nil, nil)

	w := postData(t, controller, `{"age": 30, "city": "NY"}`)
	require.Equal(t, http.StatusOK, w.Code)

	resp := decodeIngestResponse(t, w)
	assert.Equal(t, 0, resp.Status)
	assert.Equal(t, "ok", resp.Data.Status)
	assert.NotEmpty(t, resp.Data.RecordID)
	assert.Nil(t, resp.Data.AlertSent)
	assert.Empty(t, resp.Data.DriftedFeatures)
	// 无漂移时不发送告警
	assert.Empty(t, notifier.messages)

	// 原始记录已持久化
	var count int64
	tdb.DB.Model(&models.IncomingRecord{}).Count(&count)
	assert.Equal(t, int64(1), count)
}

// TestReceiveData_DriftDetected 测试漂移记录的响应、告警和事件持久化
func TestReceiveData_DriftDetected(t *testing.T) {
	tdb := testutil.NewTestDB()
	defer tdb.CleanDB()
	store := storage.NewRecordStore(tdb.DB)
	notifier := &fakeNotifier{result: true}
	controller := NewIngestController(testutil.NewTestProfile(), store, notifier, nil, nil)

	w := postData(t, controller, `{"age": 46, "city": "SF"}`)
	require.Equal(t, http.StatusOK, w.Code)

	resp := decodeIngestResponse(t, w)
	assert.Equal(t, 0, resp.Status)
	assert.Equal(t, "drift_detected", resp.Data.Status)
	// 漂移字段按画像顺序累计，描述格式固定
	assert.Equal(t, []string{"age (z=3.20)", "city (new value: SF)"}, resp.Data.DriftedFeatures)
	require.NotNil(t, resp.Data.AlertSent)
	assert.True(t, *resp.Data.AlertSent)

	// 告警文本包含漂移字段和原始样本
	require.Len(t, notifier.messages, 1)
	assert.Contains(t, notifier.messages[0], "age (z=3.20)")
	assert.Contains(t, notifier.messages[0], `"city":"SF"`)

	// 漂移事件已持久化
	var events []models.DriftEvent
	require.NoError(t, tdb.DB.Find(&events).Error)
	require.Len(t, events, 1)
	assert.Equal(t, resp.Data.RecordID, events[0].RecordID)
	assert.Equal(t, 2, events[0].FeatureCount)
	assert.True(t, events[0].AlertSent)
}

// TestReceiveData_AlertDeliveryFailure 测试告警投递失败体现在响应中
func TestReceiveData_AlertDeliveryFailure(t *testing.T) {
	tdb := testutil.NewTestDB()
	defer tdb.CleanDB()
	store := storage.NewRecordStore(tdb.DB)
	notifier := &fakeNotifier{result: false}
	controller := NewIngestController(testutil.NewTestProfile(), store, notifier, nil, nil)

	w := postData(t, controller, `{"age": 46, "city": "NY"}`)
	require.Equal(t, http.StatusOK, w.Code)

	resp := decodeIngestResponse(t, w)
	assert.Equal(t, "drift_detected", resp.Data.Status)
	require.NotNil(t, resp.Data.AlertSent)
	assert.False(t, *resp.Data.AlertSent)

	var events []models.DriftEvent
	require.NoError(t, tdb.DB.Find(&events).Error)
	require.Len(t, events, 1)
	assert.False(t, events[0].AlertSent)
}

// TestReceiveData_ReferenceUnavailable 测试参考数据不可用返回503
func TestReceiveData_ReferenceUnavailable(t *testing.T) {
	notifier := &fakeNotifier{result: true}
	controller := NewIngestController(reference.Empty(), nil, notifier, nil, nil)

	w := postData(t, controller, `{"age": 30}`)
	require.Equal(t, http.StatusServiceUnavailable, w.Code)

	var resp APIResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, -1, resp.Status)
	assert.Contains(t, resp.Msg, "参考数据不可用")
	assert.Empty(t, notifier.messages)
}

// TestReceiveData_InvalidBody 测试非法请求体返回400
func TestReceiveData_InvalidBody(t *testing.T) {
	controller := NewIngestController(testutil.NewTestProfile(), nil, &fakeNotifier{}, nil, nil)

	w := postData(t, controller, `not json`)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = postData(t, controller, `null`)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	var resp APIResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "请求体必须是JSON对象", resp.Msg)
}

// TestReceiveData_StoreUnavailable 测试数据库不可用时检测流程降级运行
func TestReceiveData_StoreUnavailable(t *testing.T) {
	notifier := &fakeNotifier{result: true}
	controller := NewIngestController(testutil.NewTestProfile(), nil, notifier, nil, nil)

	w := postData(t, controller, `{"age": 46, "city": "SF"}`)
	require.Equal(t, http.StatusOK, w.Code)

	resp := decodeIngestResponse(t, w)
	assert.Equal(t, "drift_detected", resp.Data.Status)
	assert.Empty(t, resp.Data.RecordID)
	require.Len(t, notifier.messages, 1)
}
