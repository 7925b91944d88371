package model

// 风控评估结果。评估永远完成，不抛错，由调用方决定如何处理拒绝

type ViolationCode string

const (
	ViolationPositionNotional ViolationCode = "position-notional"
	ViolationPositionRisk     ViolationCode = "position-risk"
	ViolationLeverage         ViolationCode = "leverage"
	ViolationDailyTrades      ViolationCode = "daily-trades"
	ViolationDailyLoss        ViolationCode = "daily-loss"
	ViolationDailyNotional    ViolationCode = "daily-notional"
)

// RiskViolation 单条违规，Observed 是实际值，Limit 是配置上限
type RiskViolation struct {
	Code     ViolationCode `json:"code"`
	Message  string        `json:"message"`
	Observed float64       `json:"observed"`
	Limit    float64       `json:"limit"`
}

// DailyMetrics 当日累计指标，由外部记录器聚合提供
type DailyMetrics struct {
	Trades      int64   `json:"trades"`
	LossUsd     float64 `json:"loss_usd"`
	NotionalUsd float64 `json:"notional_usd"`
}

// RiskAssessment 评估结论，Allowed 为 true 当且仅当没有任何违规
type RiskAssessment struct {
	Allowed    bool            `json:"allowed"`
	Violations []RiskViolation `json:"violations"`
	Daily      DailyMetrics    `json:"daily"`
}
