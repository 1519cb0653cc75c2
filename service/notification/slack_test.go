/*
 * @module service/notification/slack_test
 * @description Slack通知器单元测试
 * @architecture 测试层
 * @documentReference dev_docs/drift_requirements.md
 * @stateFlow 模拟Webhook服务 -> 发送通知 -> 验证投递结果
 * @rules 锁定Webhook载荷格式和失败时返回false的契约
 * @dependencies testing, net/http/httptest, stretchr/testify
 */

package notification

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestSlackNotifier_Notify 测试通知投递成功
func TestSlackNotifier_Notify(t *testing.T) {
	var received map[string]string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
		body, _ := io.ReadAll(r.Body)
		require.NoError(t, json.Unmarshal(body, &received))
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	notifier := NewSlackNotifier(server.URL)
	assert.True(t, notifier.Notify("hello"))
	assert.Equal(t, map[string]string{"text": "hello"}, received)
}

// TestSlackNotifier_NotifyFailure 测试非200响应返回false
func TestSlackNotifier_NotifyFailure(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "invalid_payload", http.StatusInternalServerError)
	}))
	defer server.Close()

	notifier := NewSlackNotifier(server.URL)
	assert.False(t, notifier.Notify("hello"))
}

// TestSlackNotifier_EmptyWebhookURL 测试未配置Webhook时不发送
func TestSlackNotifier_EmptyWebhookURL(t *testing.T) {
	notifier := NewSlackNotifier("")
	assert.False(t, notifier.Notify("hello"))
	assert.False(t, notifier.TestConnection())
}

// TestSlackNotifier_TestConnection 测试启动连通性检查发送的消息
func TestSlackNotifier_TestConnection(t *testing.T) {
	var received map[string]string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)
		require.NoError(t, json.Unmarshal(body, &received))
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	notifier := NewSlackNotifier(server.URL)
	assert.True(t, notifier.TestConnection())
	assert.Equal(t, "✅ 漂移监控服务已正常启动", received["text"])
}

// TestBuildDriftAlertMessage 测试告警文本的内容
func TestBuildDriftAlertMessage(t *testing.T) {
	message := BuildDriftAlertMessage(
		[]string{"age (z=3.20)", "city (new value: SF)"},
		map[string]interface{}{"age": float64(46), "city": "SF"},
	)

	assert.Contains(t, message, "🚨 DATA DRIFT DETECTED!")
	assert.Contains(t, message, "Features drifted: age (z=3.20), city (new value: SF)")
	assert.Contains(t, message, "Data sample: ")
	assert.Contains(t, message, `"city":"SF"`)
}
