package advisor

import (
	"fmt"
	"math"

	"sigflow/internal/execmath"
	"sigflow/internal/model"

	"github.com/samber/lo"
)

// 自适应引擎：在基线建议之上叠加市场KPI的调整
// 风险评分权重：波动率0.45、回撤0.35、滑点0.20

const (
	adjLeverageScaleDown = "leverage-scale-down"
	adjLeverageScaleUp   = "leverage-scale-up"
	adjLowLiquidityLimit = "low-liquidity-limit"
	adjStrongTrendMarket = "strong-trend-market"
	adjTrendEntryLadder  = "trend-entry-ladder"
	adjLiquidityGrid     = "liquidity-grid"
)

const (
	scaleDownThreshold = 0.55
	scaleUpThreshold   = 0.35
	scaleUpMinWinRate  = 0.6
	minLiquidityScore  = 120.0
	marketTrendLevel   = 0.7
	ladderTrendLevel   = 0.65
)

// RiskScore 综合风险评分，0~1
func RiskScore(kpi model.MarketKPI) float64 {
	return 0.45*execmath.Clamp01(kpi.VolatilityScore/10) +
		0.35*execmath.Clamp01(kpi.DrawdownPct/35) +
		0.20*execmath.Clamp01(kpi.SlippageBps/150)
}

// AdviseAdaptive 生成叠加了KPI调整的建议
func (a *Advisor) AdviseAdaptive(sig *model.TradeSignal, kpi model.MarketKPI) model.AdaptiveSignalAdvice {
	base := a.Advise(sig)
	score := RiskScore(kpi)
	minLev, maxLev := a.Bounds()

	adjustments := make([]model.Adjustment, 0, 6)

	// 杠杆缩放
	switch {
	case score >= scaleDownThreshold:
		// score 从 0.55 → 1 时，因子从 0.95 线性降到 0.35
		factor := 0.95 - (score-scaleDownThreshold)/(1-scaleDownThreshold)*(0.95-0.35)
		factor = lo.Clamp(factor, 0.35, 0.95)
		base.Leverage = execmath.Round2(lo.Clamp(base.Leverage*factor, minLev, maxLev))
		adjustments = append(adjustments, model.Adjustment{
			Name: adjLeverageScaleDown, Applied: true,
			Rationale: fmt.Sprintf("risk score %.2f >= %.2f, leverage x%.2f", score, scaleDownThreshold, factor),
		})
	case score <= scaleUpThreshold && kpi.WinRate >= scaleUpMinWinRate:
		// score 越低放大越多，上限 1.18
		factor := 1 + 0.18*(scaleUpThreshold-score)/scaleUpThreshold
		factor = math.Min(factor, 1.18)
		base.Leverage = execmath.Round2(lo.Clamp(base.Leverage*factor, minLev, maxLev))
		adjustments = append(adjustments, model.Adjustment{
			Name: adjLeverageScaleUp, Applied: true,
			Rationale: fmt.Sprintf("risk score %.2f with win rate %.2f, leverage x%.2f", score, kpi.WinRate, factor),
		})
	case score <= scaleUpThreshold:
		adjustments = append(adjustments, model.Adjustment{
			Name: adjLeverageScaleUp, Applied: false,
			Rationale: fmt.Sprintf("risk score %.2f low but win rate %.2f < %.2f", score, kpi.WinRate, scaleUpMinWinRate),
		})
	}

	// 执行方式：流动性不足强制限价，强趋势强制市价（趋势优先）
	if kpi.LiquidityScore > 0 && kpi.LiquidityScore < minLiquidityScore {
		base.Execution = model.Limit
		adjustments = append(adjustments, model.Adjustment{
			Name: adjLowLiquidityLimit, Applied: true,
			Rationale: fmt.Sprintf("liquidity score %.0f < %.0f", kpi.LiquidityScore, minLiquidityScore),
		})
	}
	if kpi.TrendStrength >= marketTrendLevel {
		base.Execution = model.Market
		adjustments = append(adjustments, model.Adjustment{
			Name: adjStrongTrendMarket, Applied: true,
			Rationale: fmt.Sprintf("trend strength %.2f >= %.2f", kpi.TrendStrength, marketTrendLevel),
		})
	}

	// 入场策略
	if kpi.TrendStrength >= ladderTrendLevel {
		levels := int(lo.Clamp(2+math.Round(kpi.TrendStrength*2), 2, 4))
		step := execmath.Round2(lo.Clamp(0.45-0.2*kpi.TrendStrength, 0.2, 0.45))
		base.Entry = model.EntryStrategy{Kind: model.EntryTrailing, Levels: levels, Spacing: step, SpacingPct: true}
		adjustments = append(adjustments, model.Adjustment{
			Name: adjTrendEntryLadder, Applied: true,
			Rationale: fmt.Sprintf("trend strength %.2f: trailing ladder %d levels step %.2f%%", kpi.TrendStrength, levels, step),
		})
	} else if kpi.LiquidityScore >= minLiquidityScore && base.Execution == model.Limit {
		levels := int(lo.Clamp(math.Floor(kpi.LiquidityScore/100), 2, 4))
		base.Entry = model.EntryStrategy{Kind: model.EntryGrid, Levels: levels, Spacing: 0.5, SpacingPct: true}
		adjustments = append(adjustments, model.Adjustment{
			Name: adjLiquidityGrid, Applied: true,
			Rationale: fmt.Sprintf("liquidity score %.0f supports a %d level grid", kpi.LiquidityScore, levels),
		})
	}

	return model.AdaptiveSignalAdvice{
		SignalAdvice: base,
		Rules:        a.EvaluateRules(sig, base),
		Adjustments:  adjustments,
		RiskScore:    score,
	}
}
