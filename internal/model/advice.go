package model

// 建议引擎的输入输出类型

// MarketKPI 外部提供的市场指标快照，引擎本身不做统计预测
type MarketKPI struct {
	VolatilityScore float64 `json:"volatility_score"` // 波动率评分，0~10
	TrendStrength   float64 `json:"trend_strength"`   // 趋势强度，0~1
	DrawdownPct     float64 `json:"drawdown_pct"`     // 近期回撤百分比
	WinRate         float64 `json:"win_rate"`         // 历史胜率，0~1
	LiquidityScore  float64 `json:"liquidity_score"`  // 流动性评分
	SlippageBps     float64 `json:"slippage_bps"`     // 预期滑点（基点）
}

// SignalAdvice 基线建议结果
type SignalAdvice struct {
	Leverage  float64       `json:"leverage"`
	Execution ExecutionMode `json:"execution"`
	Entry     EntryStrategy `json:"entry"`
	Notes     []string      `json:"notes"`
}

// RuleSeverity 硬性规则的严重级别
type RuleSeverity string

const (
	SeverityInfo     RuleSeverity = "info"
	SeverityWarning  RuleSeverity = "warning"
	SeverityCritical RuleSeverity = "critical"
)

// RuleCheck 一条硬性规则的评估结果，只提示不拦截
type RuleCheck struct {
	Name      string       `json:"name"`
	Severity  RuleSeverity `json:"severity"`
	Triggered bool         `json:"triggered"`
	Detail    string       `json:"detail"`
}

// Adjustment 自适应引擎的一次调整记录（含未生效的）
type Adjustment struct {
	Name      string `json:"name"`
	Applied   bool   `json:"applied"`
	Rationale string `json:"rationale"`
}

// AdaptiveSignalAdvice 叠加了KPI调整的建议
type AdaptiveSignalAdvice struct {
	SignalAdvice

	Rules       []RuleCheck  `json:"rules"`
	Adjustments []Adjustment `json:"adjustments"`
	RiskScore   float64      `json:"risk_score"` // 0~1 综合风险评分
}
