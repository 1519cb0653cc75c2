/*
 * @module api/controllers/drift_event_controller
 * @description 漂移事件查询控制器，提供漂移事件和原始记录的分页查询与统计
 * @architecture MVC架构 - 控制器层
 * @documentReference dev_docs/drift_requirements.md
 * @stateFlow HTTP请求处理流程
 * @rules 存储不可用时返回明确的服务降级状态
 * @dependencies driftwatch-service/service/storage
 * @refs service/storage/record_store.go
 */

package controllers

import (
	"net/http"
	"strconv"
	"time"

	"driftwatch-service/service/storage"

	"github.com/go-chi/render"
)

// DriftEventController 漂移事件查询控制器
type DriftEventController struct {
	store *storage.RecordStore
}

// NewDriftEventController 创建漂移事件查询控制器
func NewDriftEventController(store *storage.RecordStore) *DriftEventController {
	return &DriftEventController{store: store}
}

// GetDriftEvents 分页查询漂移事件
// @Summary 查询漂移事件列表
// @Description 按检测时间倒序分页查询历史漂移事件
// @Tags 漂移事件
// @Produce json
// @Param page query int false "页码" default(1)
// @Param size query int false "每页大小" default(10)
// @Success 200 {object} PaginatedResponse
// @Failure 503 {object} APIResponse
// @Router /drift-events [get]
func (c *DriftEventController) GetDriftEvents(w http.ResponseWriter, r *http.Request) {
	if !c.store.Available() {
		sendError(w, http.StatusServiceUnavailable, "存储服务不可用")
		return
	}

	page, size := parsePagination(r)
	events, total, err := c.store.ListDriftEvents(page, size)
	if err != nil {
		sendError(w, http.StatusInternalServerError, "查询漂移事件失败: "+err.Error())
		return
	}

	render.JSON(w, r, &PaginatedResponse{
		Status: 0,
		Msg:    "查询成功",
		Data:   events,
		Total:  total,
		Page:   page,
		Size:   size,
	})
}

// GetDriftSummary 查询指定时间范围内的漂移统计
// @Summary 查询漂移统计
// @Description 统计最近N小时内的漂移事件数量和告警投递情况
// @Tags 漂移事件
// @Produce json
// @Param hours query int false "统计时间范围（小时）" default(24)
// @Success 200 {object} APIResponse
// @Failure 503 {object} APIResponse
// @Router /drift-events/summary [get]
func (c *DriftEventController) GetDriftSummary(w http.ResponseWriter, r *http.Request) {
	if !c.store.Available() {
		sendError(w, http.StatusServiceUnavailable, "存储服务不可用")
		return
	}

	hours := 24
	if val := r.URL.Query().Get("hours"); val != "" {
		if parsed, err := strconv.Atoi(val); err == nil && parsed > 0 {
			hours = parsed
		}
	}

	summary, err := c.store.DriftSummarySince(time.Now().Add(-time.Duration(hours) * time.Hour))
	if err != nil {
		sendError(w, http.StatusInternalServerError, "统计漂移事件失败: "+err.Error())
		return
	}

	render.JSON(w, r, &APIResponse{
		Status: 0,
		Msg:    "统计成功",
		Data:   summary,
	})
}

// GetIncomingRecords 分页查询原始观测记录
// @Summary 查询原始记录列表
// @Description 按接收时间倒序分页查询已持久化的原始观测记录
// @Tags 漂移事件
// @Produce json
// @Param page query int false "页码" default(1)
// @Param size query int false "每页大小" default(10)
// @Success 200 {object} PaginatedResponse
// @Failure 503 {object} APIResponse
// @Router /records [get]
func (c *DriftEventController) GetIncomingRecords(w http.ResponseWriter, r *http.Request) {
	if !c.store.Available() {
		sendError(w, http.StatusServiceUnavailable, "存储服务不可用")
		return
	}

	page, size := parsePagination(r)
	records, total, err := c.store.ListIncomingRecords(page, size)
	if err != nil {
		sendError(w, http.StatusInternalServerError, "查询原始记录失败: "+err.Error())
		return
	}

	render.JSON(w, r, &PaginatedResponse{
		Status: 0,
		Msg:    "查询成功",
		Data:   records,
		Total:  total,
		Page:   page,
		Size:   size,
	})
}

// parsePagination 解析分页参数
func parsePagination(r *http.Request) (int, int) {
	page, _ := strconv.Atoi(r.URL.Query().Get("page"))
	if page <= 0 {
		page = 1
	}
	size, _ := strconv.Atoi(r.URL.Query().Get("size"))
	if size <= 0 {
		size = 10
	}
	return page, size
}
