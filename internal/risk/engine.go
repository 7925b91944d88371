package risk

import (
	"context"
	"fmt"
	"time"

	"sigflow/conf"
	"sigflow/internal/execmath"
	"sigflow/internal/model"
	"sigflow/pkg/hyper/types"
	"sigflow/pkg/logger"

	"github.com/spf13/cast"
)

// 下单前的风控闸门。评估永远完成并返回结论，不抛错，
// 所有违规独立评估，不短路

// DailyMetricsProvider 当日累计指标来源（由执行记录聚合）
type DailyMetricsProvider interface {
	DailyMetrics(ctx context.Context, day time.Time) (model.DailyMetrics, error)
}

// Precomputed 调用方可选传入的预计算值，0 表示让引擎自己算
type Precomputed struct {
	EntryPrice  float64
	NotionalUsd float64
	Leverage    float64
	RiskUsd     float64
}

type Engine struct {
	cfg      conf.RiskConfig
	provider DailyMetricsProvider
}

func NewEngine(cfg conf.RiskConfig, provider DailyMetricsProvider) *Engine {
	return &Engine{cfg: cfg, provider: provider}
}

// Evaluate 评估一笔信号及其订单批次
func (e *Engine) Evaluate(ctx context.Context, sig *model.TradeSignal, payload *types.OrderPayload, pre *Precomputed) model.RiskAssessment {
	if pre == nil {
		pre = &Precomputed{}
	}

	entryPrice := pre.EntryPrice
	if entryPrice <= 0 {
		entryPrice = resolveEntryPrice(sig, payload)
	}

	notional := pre.NotionalUsd
	if notional <= 0 {
		notional = execmath.Notional(sig.Size, entryPrice)
	}

	riskUsd := pre.RiskUsd
	if riskUsd <= 0 {
		riskUsd = e.estimateRisk(sig, entryPrice)
	}

	leverage := pre.Leverage
	if leverage <= 0 {
		leverage = execmath.LeverageEstimate(notional, e.cfg.AccountEquityUsd)
	}

	daily := e.dailyMetrics(ctx)

	violations := make([]model.RiskViolation, 0, 6)
	addIf := func(cond bool, code model.ViolationCode, msg string, observed, limit float64) {
		if cond {
			violations = append(violations, model.RiskViolation{
				Code: code, Message: msg, Observed: observed, Limit: limit,
			})
		}
	}

	addIf(e.cfg.MaxPositionNotionalUsd > 0 && notional > e.cfg.MaxPositionNotionalUsd,
		model.ViolationPositionNotional,
		fmt.Sprintf("notional %.2f exceeds limit %.2f", notional, e.cfg.MaxPositionNotionalUsd),
		notional, e.cfg.MaxPositionNotionalUsd)

	addIf(e.cfg.MaxPositionRiskUsd > 0 && riskUsd > e.cfg.MaxPositionRiskUsd,
		model.ViolationPositionRisk,
		fmt.Sprintf("estimated risk %.2f exceeds limit %.2f", riskUsd, e.cfg.MaxPositionRiskUsd),
		riskUsd, e.cfg.MaxPositionRiskUsd)

	addIf(e.cfg.MaxLeverage > 0 && leverage > e.cfg.MaxLeverage,
		model.ViolationLeverage,
		fmt.Sprintf("leverage %.2f exceeds limit %.2f", leverage, e.cfg.MaxLeverage),
		leverage, e.cfg.MaxLeverage)

	// 当日累计：把本单的贡献加进去之后再比较
	projectedTrades := float64(daily.Trades + 1)
	addIf(e.cfg.MaxDailyTrades > 0 && projectedTrades > float64(e.cfg.MaxDailyTrades),
		model.ViolationDailyTrades,
		fmt.Sprintf("projected trade count %.0f exceeds daily limit %d", projectedTrades, e.cfg.MaxDailyTrades),
		projectedTrades, float64(e.cfg.MaxDailyTrades))

	projectedLoss := daily.LossUsd + riskUsd
	addIf(e.cfg.MaxDailyLossUsd > 0 && projectedLoss > e.cfg.MaxDailyLossUsd,
		model.ViolationDailyLoss,
		fmt.Sprintf("projected loss %.2f exceeds daily limit %.2f", projectedLoss, e.cfg.MaxDailyLossUsd),
		projectedLoss, e.cfg.MaxDailyLossUsd)

	projectedNotional := daily.NotionalUsd + notional
	addIf(e.cfg.MaxDailyNotionalUsd > 0 && projectedNotional > e.cfg.MaxDailyNotionalUsd,
		model.ViolationDailyNotional,
		fmt.Sprintf("projected notional %.2f exceeds daily limit %.2f", projectedNotional, e.cfg.MaxDailyNotionalUsd),
		projectedNotional, e.cfg.MaxDailyNotionalUsd)

	return model.RiskAssessment{
		Allowed:    len(violations) == 0,
		Violations: violations,
		Daily:      daily,
	}
}

// dailyMetrics 指标源出错时退化为零值，不让风控评估失败
func (e *Engine) dailyMetrics(ctx context.Context) model.DailyMetrics {
	if e.provider == nil {
		return model.DailyMetrics{}
	}
	daily, err := e.provider.DailyMetrics(ctx, time.Now())
	if err != nil {
		logger.Errorf("risk engine: load daily metrics failed: %v", err)
		return model.DailyMetrics{}
	}
	return daily
}

// resolveEntryPrice 信号里没有入场价时，从批次里第一个非 reduce-only 订单取
func resolveEntryPrice(sig *model.TradeSignal, payload *types.OrderPayload) float64 {
	if sig.EntryPrice > 0 {
		return sig.EntryPrice
	}
	if payload == nil {
		return 0
	}
	for _, o := range payload.Orders {
		if o.ReduceOnly {
			continue
		}
		if price := cast.ToFloat64(o.Price); price > 0 {
			return price
		}
	}
	return 0
}

// estimateRisk 最坏止损距离 × 数量；只有追踪止损时用追踪距离折算
func (e *Engine) estimateRisk(sig *model.TradeSignal, entryPrice float64) float64 {
	stops := make([]float64, 0, len(sig.StopLosses))
	for _, level := range sig.StopLosses {
		stops = append(stops, level.Price)
	}
	if len(stops) == 0 && sig.Trailing != nil && entryPrice > 0 {
		distance := sig.Trailing.Value
		if sig.Trailing.Mode == model.TrailingPercent {
			distance = entryPrice * sig.Trailing.Value / 100
		}
		if sig.Side.IsBuy() {
			stops = append(stops, entryPrice-distance)
		} else {
			stops = append(stops, entryPrice+distance)
		}
	}
	return execmath.RiskExposure(entryPrice, sig.Side.IsBuy(), stops, sig.Size)
}
