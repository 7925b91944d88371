package router

import (
	"sigflow/conf"
	"sigflow/internal/handler/ping"
	"sigflow/internal/handler/record"
	"sigflow/internal/handler/webhook"
	"sigflow/internal/middleware"

	"github.com/gin-gonic/gin"
)

type ApiRouter struct {
	webhookHandler *webhook.Handler
	recordHandler  *record.Handler
}

func NewApiRouter(wh *webhook.Handler, rh *record.Handler) *ApiRouter {
	return &ApiRouter{webhookHandler: wh, recordHandler: rh}
}

func (api *ApiRouter) Load(g *gin.Engine) {
	g.Use(middleware.RequestId(), middleware.Logger)

	g.GET("/ping", ping.Ping())

	// webhook 入口：签名校验 + 防重复提交
	wh := g.Group("/webhook",
		middleware.WebhookAuth(conf.AppConfig.Webhook.Secret),
		middleware.AntiDuplicateMiddleware())
	{
		wh.POST("/signal", api.webhookHandler.HandleSignal())
		wh.POST("/preview", api.webhookHandler.PreviewSignal())
	}

	base := g.Group("/api/v1", middleware.NoCache())
	{
		base.GET("/records", api.recordHandler.RecordGetList())
	}
}
