/*
 * @module service/init
 * @description 服务初始化模块，负责日志、数据库连接、参考数据加载和协作方初始化
 * @architecture 分层架构 - 服务层
 * @documentReference dev_docs/drift_requirements.md
 * @stateFlow 应用启动时执行初始化流程
 * @rules 除核心检测外的协作方（数据库、Redis、Kafka、Slack）初始化失败均降级运行，不中断启动
 * @dependencies gorm.io/gorm, gorm.io/driver/postgres
 * @refs api/routes.go
 */

package service

import (
	"fmt"
	"log/slog"
	"os"
	"strings"

	"driftwatch-service/logger"
	"driftwatch-service/service/eventbus"
	"driftwatch-service/service/notification"
	"driftwatch-service/service/ratelimit"
	"driftwatch-service/service/reference"
	"driftwatch-service/service/scheduler"
	"driftwatch-service/service/storage"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

var (
	DB                     *gorm.DB
	GlobalProfile          *reference.Profile
	GlobalRecordStore      *storage.RecordStore
	GlobalNotifier         *notification.SlackNotifier
	GlobalAlertLimiter     *ratelimit.AlertRateLimiter
	GlobalDriftPublisher   *eventbus.DriftEventPublisher
	GlobalSummaryScheduler *scheduler.SummaryScheduler
	IngestToken            string
)

func init() {
	logger.InitLogger()
	initDatabase()
	initReference()
	initCollaborators()
	initScheduler()
}

// initDatabase 初始化数据库连接，失败时降级为不持久化
func initDatabase() {
	var dsn string

	// 优先使用DATABASE_URL环境变量
	if databaseURL := os.Getenv("DATABASE_URL"); databaseURL != "" {
		dsn = databaseURL
	} else {
		// 使用分离的环境变量构建连接字符串
		host := getEnvWithDefault("DB_HOST", "localhost")
		port := getEnvWithDefault("DB_PORT", "5432")
		user := getEnvWithDefault("DB_USER", "postgres")
		password := getEnvWithDefault("DB_PASSWORD", "things2024")
		dbname := getEnvWithDefault("DB_NAME", "postgres")
		sslmode := getEnvWithDefault("DB_SSLMODE", "disable")
		schema := getEnvWithDefault("DB_SCHEMA", "public")

		dsn = fmt.Sprintf("host=%s port=%s user=%s password=%s dbname=%s sslmode=%s search_path=%s TimeZone=Asia/Shanghai",
			host, port, user, password, dbname, sslmode, schema)
	}

	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{})
	if err != nil {
		slog.Error("数据库连接失败，原始记录将不会持久化", "error", err)
		return
	}

	if err := storage.AutoMigrate(db); err != nil {
		slog.Error("数据库迁移失败，原始记录将不会持久化", "error", err)
		return
	}

	DB = db
	GlobalRecordStore = storage.NewRecordStore(db)
	slog.Info("数据库连接成功")
}

// initReference 加载参考数据画像，失败时回退为空画像
func initReference() {
	path := getEnvWithDefault("REFERENCE_DATA_PATH", "reference_data.csv")
	encoding := getEnvWithDefault("REFERENCE_DATA_ENCODING", "utf-8")
	GlobalProfile = reference.NewLoader(path, encoding).LoadOrEmpty()
}

// initCollaborators 初始化告警、限流和事件发布协作方
func initCollaborators() {
	GlobalNotifier = notification.NewSlackNotifier(os.Getenv("SLACK_WEBHOOK_URL"))
	if GlobalNotifier.TestConnection() {
		slog.Info("Slack连通性检查通过")
	} else {
		slog.Error("Slack连通性检查失败")
	}

	if os.Getenv("REDIS_HOST") != "" {
		limiter, err := ratelimit.NewAlertRateLimiter()
		if err != nil {
			slog.Error("告警限流器初始化失败，告警将不受限流", "error", err)
		} else {
			GlobalAlertLimiter = limiter
		}
	}

	if brokers := os.Getenv("KAFKA_BROKERS"); brokers != "" {
		topic := getEnvWithDefault("KAFKA_DRIFT_TOPIC", "driftwatch.drift-events")
		GlobalDriftPublisher = eventbus.NewDriftEventPublisher(strings.Split(brokers, ","), topic)
	}

	IngestToken = os.Getenv("INGEST_TOKEN")
}

// initScheduler 启动漂移日报调度器
func initScheduler() {
	spec := getEnvWithDefault("DRIFT_SUMMARY_CRON", "0 0 8 * * *")
	GlobalSummaryScheduler = scheduler.NewSummaryScheduler(GlobalRecordStore, GlobalNotifier, spec)
	if err := GlobalSummaryScheduler.Start(); err != nil {
		slog.Error("漂移日报调度器启动失败", "error", err)
	}
}

// getEnvWithDefault 获取环境变量，如果不存在则返回默认值
func getEnvWithDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
