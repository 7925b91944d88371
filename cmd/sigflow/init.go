package api

import (
	"sigflow/conf"
	"sigflow/internal/advisor"
	"sigflow/internal/dao"
	"sigflow/internal/engine"
	"sigflow/internal/handler/record"
	"sigflow/internal/handler/webhook"
	"sigflow/internal/notify"
	"sigflow/internal/parser"
	"sigflow/internal/risk"
	"sigflow/internal/router"
	"sigflow/internal/service"
	"sigflow/pkg/hyper/rest"
	"sigflow/pkg/logger"

	"gorm.io/gorm"
)

func InitRouter(db *gorm.DB) Router {
	appCfg := conf.AppConfig

	client, err := rest.NewClient(appCfg.Venue.URL(), appCfg.Transport)
	if err != nil {
		logger.Fatalf("init venue client failed: %v", err)
	}

	cache := engine.NewMetadataCache(client, appCfg.Engine.MetadataTTL)
	eng := engine.New(client, cache, appCfg.Engine)

	execDao := dao.NewExecutionDao(db)
	rk := risk.NewEngine(appCfg.Risk, execDao)

	svc := service.NewSignalService(
		parser.New(),
		advisor.New(appCfg.Advisor),
		rk,
		eng,
		execDao,
		notify.NewLogNotifier(),
	)

	wh := webhook.NewHandler(svc)
	rh := record.NewHandler(execDao)

	return router.NewApiRouter(wh, rh)
}
