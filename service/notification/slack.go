/*
 * @module service/notification/slack
 * @description Slack Webhook通知器，向外部通知渠道投递人类可读的告警文本
 * @architecture 适配器模式 - 封装外部通知渠道
 * @documentReference dev_docs/drift_requirements.md
 * @stateFlow 构造消息 -> Webhook投递 -> 返回投递结果
 * @rules 投递失败只返回false并记录日志，不向调用方抛出错误；不做重试
 * @dependencies net/http, encoding/json
 * @refs api/controllers/ingest_controller.go, service/scheduler/summary_scheduler.go
 */

package notification

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"
)

// Notifier 通知发送接口，返回是否投递成功
type Notifier interface {
	Notify(message string) bool
}

// SlackNotifier Slack Webhook通知器
type SlackNotifier struct {
	WebhookURL string
	Timeout    time.Duration
	client     *http.Client
}

// NewSlackNotifier 创建Slack通知器
func NewSlackNotifier(webhookURL string) *SlackNotifier {
	timeout := 5 * time.Second
	return &SlackNotifier{
		WebhookURL: webhookURL,
		Timeout:    timeout,
		client:     &http.Client{Timeout: timeout},
	}
}

// Notify 发送文本消息到Slack，返回是否投递成功
func (s *SlackNotifier) Notify(message string) bool {
	if s.WebhookURL == "" {
		slog.Error("SLACK_WEBHOOK_URL 未配置，无法发送通知")
		return false
	}

	payload, err := json.Marshal(map[string]string{"text": message})
	if err != nil {
		slog.Error("序列化通知消息失败", "error", err)
		return false
	}

	req, err := http.NewRequest(http.MethodPost, s.WebhookURL, bytes.NewBuffer(payload))
	if err != nil {
		slog.Error("创建Slack请求失败", "error", err)
		return false
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := s.client.Do(req)
	if err != nil {
		slog.Error("发送Slack通知失败", "error", err)
		return false
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		slog.Error("Slack通知响应错误", "status", resp.StatusCode, "body", string(body))
		return false
	}

	slog.Info("Slack通知发送成功")
	return true
}

// TestConnection 启动时验证Webhook连通性
func (s *SlackNotifier) TestConnection() bool {
	if s.WebhookURL == "" {
		slog.Error("无法测试Slack连通性: SLACK_WEBHOOK_URL 未配置")
		return false
	}
	return s.Notify("✅ 漂移监控服务已正常启动")
}

// BuildDriftAlertMessage 构造漂移告警文本
func BuildDriftAlertMessage(features []string, sample map[string]interface{}) string {
	data, _ := json.Marshal(sample)
	return fmt.Sprintf("🚨 DATA DRIFT DETECTED!\nFeatures drifted: %s\nData sample: %s",
		strings.Join(features, ", "), string(data))
}
