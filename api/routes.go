/*
 * @module api/routes
 * @description API路由配置模块，负责初始化和配置所有HTTP路由
 * @architecture RESTful API架构
 * @documentReference dev_docs/drift_requirements.md
 * @stateFlow 无状态HTTP请求处理
 * @rules 遵循RESTful API设计规范，统一错误处理和响应格式
 * @dependencies github.com/go-chi/chi/v5, github.com/go-chi/cors, github.com/go-chi/render
 * @refs api/controllers/
 */

package api

import (
	"driftwatch-service/api/controllers"
	apimiddleware "driftwatch-service/api/middleware"
	"driftwatch-service/service"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/go-chi/render"
)

// InitRoute 初始化所有API路由
func InitRoute(r *chi.Mux) {
	// 基础中间件
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.RequestID)
	r.Use(render.SetContentType(render.ContentTypeJSON))

	// CORS配置
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"*"},
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-CSRF-Token"},
		ExposedHeaders:   []string{"Link"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	// 健康检查
	healthController := controllers.NewHealthController()
	r.Get("/health", healthController.Health)
	r.Get("/ready", healthController.Ready)

	// 观测数据接收（可选Token鉴权）
	ingestController := controllers.NewIngestController(
		service.GlobalProfile,
		service.GlobalRecordStore,
		service.GlobalNotifier,
		service.GlobalAlertLimiter,
		service.GlobalDriftPublisher,
	)
	ingestAuth := apimiddleware.NewIngestAuthMiddleware(service.IngestToken)
	r.With(ingestAuth.Handler).Post("/data", ingestController.ReceiveData)

	// 参考画像查询
	referenceController := controllers.NewReferenceController(service.GlobalProfile)
	r.Get("/reference/profile", referenceController.GetProfile)

	// 漂移事件与原始记录查询
	driftEventController := controllers.NewDriftEventController(service.GlobalRecordStore)
	r.Route("/drift-events", func(r chi.Router) {
		r.Get("/", driftEventController.GetDriftEvents)
		r.Get("/summary", driftEventController.GetDriftSummary)
	})
	r.Get("/records", driftEventController.GetIncomingRecords)
}
