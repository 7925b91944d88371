package advisor

import (
	"fmt"

	"sigflow/internal/model"
)

// 硬性规则评估：固定的一组命名检查，只标记不拦截

const (
	RuleLeverageBounds        = "leverage-bounds"
	RuleExtremeRiskLimitOrder = "extreme-risk-limit-order"
	RuleFastTimeframeMarket   = "fast-timeframe-market"
	RuleSlowTimeframeLimit    = "slow-timeframe-limit"
)

// EvaluateRules 对信号和最终建议跑一遍规则组
func (a *Advisor) EvaluateRules(sig *model.TradeSignal, advice model.SignalAdvice) []model.RuleCheck {
	minLev, maxLev := a.Bounds()
	fastest := FastestTimeframeMinutes(sig.Timeframes)

	checks := make([]model.RuleCheck, 0, 4)

	leverageOut := sig.Leverage > 0 && (sig.Leverage < minLev || sig.Leverage > maxLev)
	checks = append(checks, model.RuleCheck{
		Name:      RuleLeverageBounds,
		Severity:  model.SeverityWarning,
		Triggered: leverageOut,
		Detail:    fmt.Sprintf("signal leverage %.2f, bounds [%.2f, %.2f]", sig.Leverage, minLev, maxLev),
	})

	checks = append(checks, model.RuleCheck{
		Name:      RuleExtremeRiskLimitOrder,
		Severity:  model.SeverityCritical,
		Triggered: sig.Risk == model.RiskExtreme && advice.Execution != model.Limit,
		Detail:    "extreme risk signals should enter with limit orders",
	})

	checks = append(checks, model.RuleCheck{
		Name:      RuleFastTimeframeMarket,
		Severity:  model.SeverityInfo,
		Triggered: fastest > 0 && fastest <= a.cfg.FastExecMaxMinutes && advice.Execution != model.Market,
		Detail:    fmt.Sprintf("fastest timeframe %dm favors market execution", fastest),
	})

	checks = append(checks, model.RuleCheck{
		Name:      RuleSlowTimeframeLimit,
		Severity:  model.SeverityInfo,
		Triggered: fastest >= a.cfg.SlowExecMinMinutes && advice.Execution != model.Limit,
		Detail:    fmt.Sprintf("fastest timeframe %dm favors limit execution", fastest),
	})

	return checks
}
