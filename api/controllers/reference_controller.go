/*
 * @module api/controllers/reference_controller
 * @description 参考画像控制器，提供当前加载的参考schema查询
 * @architecture MVC架构 - 控制器层
 * @documentReference dev_docs/drift_requirements.md
 * @stateFlow HTTP请求处理流程
 * @rules 画像为空时返回参考数据不可用状态
 * @dependencies driftwatch-service/service/reference
 * @refs service/reference/profile.go
 */

package controllers

import (
	"net/http"

	"driftwatch-service/service/reference"

	"github.com/go-chi/render"
)

// ReferenceController 参考画像控制器
type ReferenceController struct {
	profile *reference.Profile
}

// NewReferenceController 创建参考画像控制器
func NewReferenceController(profile *reference.Profile) *ReferenceController {
	return &ReferenceController{profile: profile}
}

// GetProfile 查询当前加载的参考画像
// @Summary 查询参考画像
// @Description 返回启动时构建的参考画像schema，包括每个字段的类型分类和分布摘要
// @Tags 参考数据
// @Produce json
// @Success 200 {object} APIResponse
// @Failure 503 {object} APIResponse
// @Router /reference/profile [get]
func (c *ReferenceController) GetProfile(w http.ResponseWriter, r *http.Request) {
	if c.profile.IsEmpty() {
		sendError(w, http.StatusServiceUnavailable, "参考数据不可用")
		return
	}

	render.JSON(w, r, &APIResponse{
		Status: 0,
		Msg:    "获取参考画像成功",
		Data:   c.profile,
	})
}
