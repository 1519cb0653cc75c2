/*
 * @module service/ratelimit/alert_limiter
 * @description 基于Redis的告警限流器，固定窗口计数，防止持续漂移造成告警风暴
 * @architecture 工具层 - 提供分布式限流能力
 * @documentReference dev_docs/drift_requirements.md
 * @stateFlow Redis计数 -> 判断是否超限 -> 放行或跳过告警
 * @rules 使用Redis INCR和EXPIRE实现固定窗口限流；Redis不可用时默认放行
 * @dependencies github.com/go-redis/redis/v8
 * @refs api/controllers/ingest_controller.go
 */

package ratelimit

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"time"

	"github.com/go-redis/redis/v8"
)

// AlertRateLimiter Redis告警限流器
type AlertRateLimiter struct {
	client    *redis.Client
	maxAlerts int
	windowSec int
}

// NewAlertRateLimiter 从环境变量创建告警限流器
func NewAlertRateLimiter() (*AlertRateLimiter, error) {
	host := getEnvWithDefault("REDIS_HOST", "localhost")
	port := getEnvWithDefault("REDIS_PORT", "6379")
	password := os.Getenv("REDIS_PASSWORD")
	db := 0
	if dbStr := os.Getenv("REDIS_DB"); dbStr != "" {
		fmt.Sscanf(dbStr, "%d", &db)
	}

	maxAlerts := 10
	if val := os.Getenv("ALERT_RATE_LIMIT"); val != "" {
		if parsed, err := strconv.Atoi(val); err == nil && parsed > 0 {
			maxAlerts = parsed
		}
	}
	windowSec := 60
	if val := os.Getenv("ALERT_RATE_WINDOW_SEC"); val != "" {
		if parsed, err := strconv.Atoi(val); err == nil && parsed > 0 {
			windowSec = parsed
		}
	}

	client := redis.NewClient(&redis.Options{
		Addr:         fmt.Sprintf("%s:%s", host, port),
		Password:     password,
		DB:           db,
		DialTimeout:  5 * time.Second,
		ReadTimeout:  3 * time.Second,
		WriteTimeout: 3 * time.Second,
		PoolSize:     10,
		MinIdleConns: 5,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("redis连接失败: %w", err)
	}

	slog.Info("告警限流器初始化成功",
		"redis_host", host,
		"redis_port", port,
		"max_alerts", maxAlerts,
		"window_sec", windowSec)

	return &AlertRateLimiter{
		client:    client,
		maxAlerts: maxAlerts,
		windowSec: windowSec,
	}, nil
}

// Allow 检查当前窗口内是否还允许发送告警
// 未配置限流器或Redis异常时默认放行，保证告警通路可用
func (l *AlertRateLimiter) Allow(ctx context.Context) bool {
	if l == nil || l.client == nil {
		return true
	}

	window := time.Now().Unix() / int64(l.windowSec)
	key := fmt.Sprintf("driftwatch:alert:%d", window)

	count, err := l.client.Incr(ctx, key).Result()
	if err != nil {
		slog.Warn("告警限流检查失败，默认放行", "error", err)
		return true
	}
	if count == 1 {
		l.client.Expire(ctx, key, time.Duration(l.windowSec)*time.Second)
	}

	if count > int64(l.maxAlerts) {
		slog.Warn("告警超过限流阈值，跳过发送", "count", count, "limit", l.maxAlerts)
		return false
	}
	return true
}

// Close 关闭Redis连接
func (l *AlertRateLimiter) Close() error {
	if l == nil || l.client == nil {
		return nil
	}
	return l.client.Close()
}

// getEnvWithDefault 获取环境变量，如果不存在则返回默认值
func getEnvWithDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
