package engine

import (
	"math"

	"sigflow/internal/model"
)

// 入场阶梯规划：从参考价出发，按策略铺开各档挂单价
// 铺开方向始终是持仓的不利方向（多单向下、空单向上）

// buildEntryPrices 生成各档价格，第一档恒为参考价
func buildEntryPrices(strategy model.EntryStrategy, refPrice float64, side model.Side) []float64 {
	levels := strategy.Levels
	if levels < 1 {
		levels = 1
	}
	prices := make([]float64, levels)
	prices[0] = refPrice

	dir := 1.0
	if side.IsBuy() {
		dir = -1.0
	}

	for i := 1; i < levels; i++ {
		switch strategy.Kind {
		case model.EntryGrid:
			// 等距：第 i 档偏移 i 个间距
			if strategy.SpacingPct {
				prices[i] = refPrice * (1 + dir*float64(i)*strategy.Spacing/100)
			} else {
				prices[i] = refPrice + dir*float64(i)*strategy.Spacing
			}
		case model.EntryTrailing:
			// 递增间距：百分比模式复利叠加，绝对模式三角数叠加
			if strategy.SpacingPct {
				prices[i] = refPrice * math.Pow(1+dir*strategy.Spacing/100, float64(i))
			} else {
				triangular := float64(i*(i+1)) / 2
				prices[i] = refPrice + dir*triangular*strategy.Spacing
			}
		default:
			prices[i] = refPrice
		}
	}
	return prices
}

// extremeEntryPrice 追踪止损的基准档：多单取最高价，空单取最低价
func extremeEntryPrice(prices []float64, side model.Side) float64 {
	if len(prices) == 0 {
		return 0
	}
	extreme := prices[0]
	for _, p := range prices[1:] {
		if side.IsBuy() {
			if p > extreme {
				extreme = p
			}
		} else if p < extreme {
			extreme = p
		}
	}
	return extreme
}
