/*
 * @module api/middleware/ingest_auth
 * @description 接收端Token鉴权中间件，校验静态Bearer Token
 * @architecture 中间件模式 - HTTP请求拦截和验证
 * @documentReference dev_docs/drift_requirements.md
 * @stateFlow Token提取 -> Token比对 -> 下一个处理器
 * @rules 未配置Token时直接放行，便于内网部署
 * @dependencies net/http, strings
 * @refs api/routes.go
 */

package middleware

import (
	"net/http"
	"strings"

	"github.com/go-chi/render"
)

// IngestAuthMiddleware 接收端Token鉴权中间件
type IngestAuthMiddleware struct {
	token string
}

// NewIngestAuthMiddleware 创建接收端鉴权中间件
func NewIngestAuthMiddleware(token string) *IngestAuthMiddleware {
	return &IngestAuthMiddleware{token: token}
}

// Handler 校验Bearer Token，未配置Token时直接放行
func (m *IngestAuthMiddleware) Handler(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if m.token == "" {
			next.ServeHTTP(w, r)
			return
		}

		auth := r.Header.Get("Authorization")
		if !strings.HasPrefix(auth, "Bearer ") || strings.TrimPrefix(auth, "Bearer ") != m.token {
			render.Status(r, http.StatusUnauthorized)
			render.JSON(w, r, map[string]interface{}{
				"status": -1,
				"msg":    "未授权的访问",
			})
			return
		}

		next.ServeHTTP(w, r)
	})
}
