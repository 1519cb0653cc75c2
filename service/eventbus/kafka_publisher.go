/*
 * @module service/eventbus/kafka_publisher
 * @description 漂移事件Kafka发布器，把检测到的漂移事件推送到事件流供下游消费
 * @architecture 适配器模式 - 封装第三方Kafka客户端
 * @documentReference dev_docs/drift_requirements.md
 * @stateFlow 事件序列化 -> 异步写入Kafka -> 失败记录日志
 * @rules 发布是尽力而为的旁路操作，失败不影响检测结果的返回
 * @dependencies github.com/segmentio/kafka-go, encoding/json
 * @refs api/controllers/ingest_controller.go, service/models/drift_models.go
 */

package eventbus

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"driftwatch-service/service/models"

	"github.com/segmentio/kafka-go"
)

// DriftEventPublisher 漂移事件Kafka发布器
type DriftEventPublisher struct {
	writer *kafka.Writer
	topic  string
}

// NewDriftEventPublisher 创建漂移事件发布器
func NewDriftEventPublisher(brokers []string, topic string) *DriftEventPublisher {
	writer := &kafka.Writer{
		Addr:         kafka.TCP(brokers...),
		Topic:        topic,
		Balancer:     &kafka.LeastBytes{},
		RequiredAcks: kafka.RequireOne,
		Async:        true,
		BatchTimeout: 100 * time.Millisecond,
	}

	slog.Info("漂移事件发布器初始化完成", "brokers", brokers, "topic", topic)

	return &DriftEventPublisher{
		writer: writer,
		topic:  topic,
	}
}

// Publish 发布一条漂移事件
func (p *DriftEventPublisher) Publish(ctx context.Context, event *models.DriftEvent) error {
	if p == nil || p.writer == nil {
		return nil
	}

	payload, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("序列化漂移事件失败: %w", err)
	}

	err = p.writer.WriteMessages(ctx, kafka.Message{
		Key:   []byte(event.ID),
		Value: payload,
		Time:  time.Now(),
	})
	if err != nil {
		return fmt.Errorf("发布漂移事件失败: %w", err)
	}
	return nil
}

// Close 关闭发布器
func (p *DriftEventPublisher) Close() error {
	if p == nil || p.writer == nil {
		return nil
	}
	return p.writer.Close()
}
