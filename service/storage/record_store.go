/*
 * @module service/storage/record_store
 * @description 原始记录与漂移事件存储，持久化失败不影响检测主流程
 * @architecture 分层架构 - 数据访问层
 * @documentReference dev_docs/drift_requirements.md
 * @stateFlow 记录入库 -> 事件入库 -> 分页查询/统计
 * @rules 存储是尽力而为的协作方，数据库不可用时服务降级为不持久化
 * @dependencies gorm.io/gorm, driftwatch-service/service/models
 * @refs api/controllers/ingest_controller.go, service/scheduler/summary_scheduler.go
 */

package storage

import (
	"fmt"
	"time"

	"driftwatch-service/service/models"

	"gorm.io/gorm"
)

// RecordStore 原始记录与漂移事件存储
type RecordStore struct {
	db *gorm.DB
}

// NewRecordStore 创建存储实例
func NewRecordStore(db *gorm.DB) *RecordStore {
	return &RecordStore{db: db}
}

// Available 存储是否可用（数据库连接失败时store为nil）
func (s *RecordStore) Available() bool {
	return s != nil && s.db != nil
}

// AutoMigrate 自动迁移漂移监控相关表结构
func AutoMigrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&models.IncomingRecord{},
		&models.DriftEvent{},
	)
}

// StoreIncoming 持久化一条原始观测记录
func (s *RecordStore) StoreIncoming(payload models.JSONB) (*models.IncomingRecord, error) {
	record := &models.IncomingRecord{
		Payload:    payload,
		ReceivedAt: time.Now(),
	}
	if err := s.db.Create(record).Error; err != nil {
		return nil, fmt.Errorf("原始记录入库失败: %w", err)
	}
	return record, nil
}

// StoreDriftEvent 持久化一条漂移事件
func (s *RecordStore) StoreDriftEvent(event *models.DriftEvent) error {
	if err := s.db.Create(event).Error; err != nil {
		return fmt.Errorf("漂移事件入库失败: %w", err)
	}
	return nil
}

// ListDriftEvents 按检测时间倒序分页查询漂移事件
func (s *RecordStore) ListDriftEvents(page, size int) ([]models.DriftEvent, int64, error) {
	var total int64
	if err := s.db.Model(&models.DriftEvent{}).Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var events []models.DriftEvent
	err := s.db.Order("detected_at DESC").
		Offset((page - 1) * size).
		Limit(size).
		Find(&events).Error
	if err != nil {
		return nil, 0, err
	}
	return events, total, nil
}

// ListIncomingRecords 按接收时间倒序分页查询原始记录
func (s *RecordStore) ListIncomingRecords(page, size int) ([]models.IncomingRecord, int64, error) {
	var total int64
	if err := s.db.Model(&models.IncomingRecord{}).Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var records []models.IncomingRecord
	err := s.db.Order("received_at DESC").
		Offset((page - 1) * size).
		Limit(size).
		Find(&records).Error
	if err != nil {
		return nil, 0, err
	}
	return records, total, nil
}

// DriftSummary 一段时间内的漂移事件统计
type DriftSummary struct {
	Since       time.Time `json:"since"`
	TotalEvents int64     `json:"total_events"`
	AlertsSent  int64     `json:"alerts_sent"`
}

// DriftSummarySince 统计指定时间之后的漂移事件
func (s *RecordStore) DriftSummarySince(since time.Time) (*DriftSummary, error) {
	summary := &DriftSummary{Since: since}

	err := s.db.Model(&models.DriftEvent{}).
		Where("detected_at >= ?", since).
		Count(&summary.TotalEvents).Error
	if err != nil {
		return nil, err
	}

	err = s.db.Model(&models.DriftEvent{}).
		Where("detected_at >= ? AND alert_sent = ?", since, true).
		Count(&summary.AlertsSent).Error
	if err != nil {
		return nil, err
	}

	return summary, nil
}
