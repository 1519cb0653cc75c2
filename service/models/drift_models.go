/*
 * @module service/models/drift_models
 * @description 漂移监控相关数据模型，包括原始观测记录和漂移事件
 * @architecture 数据模型层
 * @documentReference dev_docs/drift_requirements.md
 * @stateFlow 记录接收 -> 持久化 -> 漂移检测 -> 事件记录
 * @rules 原始记录按接收原样存储，漂移事件记录检测结论和告警投递结果
 * @dependencies gorm.io/gorm, github.com/google/uuid
 * @refs service/storage/record_store.go
 */

package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// IncomingRecord 接收到的原始观测记录
type IncomingRecord struct {
	ID         string    `json:"id" gorm:"primaryKey;type:varchar(36)"`
	Payload    JSONB     `json:"payload" gorm:"type:jsonb;not null"` // 原始请求载荷
	ReceivedAt time.Time `json:"received_at" gorm:"not null;index"`  // 接收时间
	CreatedAt  time.Time `json:"created_at" gorm:"not null;default:CURRENT_TIMESTAMP"`
}

// BeforeCreate 创建前生成主键
func (r *IncomingRecord) BeforeCreate(tx *gorm.DB) error {
	if r.ID == "" {
		r.ID = uuid.New().String()
	}
	if r.ReceivedAt.IsZero() {
		r.ReceivedAt = time.Now()
	}
	return nil
}

// DriftEvent 漂移检测事件
type DriftEvent struct {
	ID              string           `json:"id" gorm:"primaryKey;type:varchar(36)"`
	RecordID        string           `json:"record_id" gorm:"type:varchar(36);index"`    // 关联的原始记录ID，持久化失败时为空
	DriftedFeatures JSONBStringArray `json:"drifted_features" gorm:"type:jsonb"`         // 漂移字段描述，按画像字段顺序
	FeatureCount    int              `json:"feature_count" gorm:"not null;default:0"`    // 漂移字段数量
	AlertSent       bool             `json:"alert_sent" gorm:"not null;default:false"`   // 告警是否投递成功
	DetectedAt      time.Time        `json:"detected_at" gorm:"not null;index"`          // 检测时间
	CreatedAt       time.Time        `json:"created_at" gorm:"not null;default:CURRENT_TIMESTAMP"`
}

// BeforeCreate 创建前生成主键
func (e *DriftEvent) BeforeCreate(tx *gorm.DB) error {
	if e.ID == "" {
		e.ID = uuid.New().String()
	}
	if e.DetectedAt.IsZero() {
		e.DetectedAt = time.Now()
	}
	return nil
}
