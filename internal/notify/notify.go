package notify

import (
	"context"

	"sigflow/internal/model"
	"sigflow/pkg/logger"

	"go.uber.org/zap"
)

// 执行结果通知。当前只有日志实现，后续可以挂邮件或推送

type Event struct {
	Status     string
	Signal     *model.TradeSignal
	Risk       model.RiskAssessment
	OrderCount int
	Detail     string
}

type Notifier interface {
	Notify(ctx context.Context, event Event)
}

// LogNotifier 把执行结果写进结构化日志
type LogNotifier struct{}

func NewLogNotifier() *LogNotifier {
	return &LogNotifier{}
}

func (n *LogNotifier) Notify(_ context.Context, event Event) {
	fields := []zap.Field{
		logger.Pair("status", event.Status),
		logger.Pair("orders", event.OrderCount),
	}
	if event.Signal != nil {
		fields = append(fields,
			logger.Pair("symbol", event.Signal.Symbol),
			logger.Pair("side", event.Signal.Side),
			logger.Pair("size", event.Signal.Size))
	}
	if len(event.Risk.Violations) > 0 {
		fields = append(fields, logger.Pair("violations", event.Risk.Violations))
	}
	if event.Detail != "" {
		fields = append(fields, logger.Pair("detail", event.Detail))
	}
	logger.Info("signal execution", fields...)
}
