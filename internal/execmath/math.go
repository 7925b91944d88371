package execmath

import (
	"math"

	"github.com/shopspring/decimal"
)

// 纯数值计算，供风控和建议引擎使用，不依赖任何外部状态

// Notional 名义价值 = 数量 × 价格
func Notional(size, price float64) float64 {
	if size <= 0 || price <= 0 {
		return 0
	}
	v, _ := decimal.NewFromFloat(size).Mul(decimal.NewFromFloat(price)).Float64()
	return v
}

// WorstStopDistance 最坏止损距离：所有止损价里离入场价最远的那个
// 多头取入场价减最低止损，空头取最高止损减入场价
func WorstStopDistance(entryPrice float64, isLong bool, stops []float64) float64 {
	worst := 0.0
	for _, stop := range stops {
		if stop <= 0 {
			continue
		}
		var dist float64
		if isLong {
			dist = entryPrice - stop
		} else {
			dist = stop - entryPrice
		}
		if dist > worst {
			worst = dist
		}
	}
	return worst
}

// RiskExposure 最大亏损敞口 = 最坏止损距离 × 数量
func RiskExposure(entryPrice float64, isLong bool, stops []float64, size float64) float64 {
	return WorstStopDistance(entryPrice, isLong, stops) * size
}

// LeverageEstimate 杠杆估计 = 名义价值 / 账户权益
func LeverageEstimate(notional, equity float64) float64 {
	if equity <= 0 {
		return 0
	}
	return notional / equity
}

// Clamp01 把比值压到 [0,1]
func Clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}

// Round2 保留两位小数
func Round2(v float64) float64 {
	return math.Round(v*100) / 100
}
