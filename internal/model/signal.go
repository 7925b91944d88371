package model

// 从自由文本解析出来的结构化交易信号

type Side string

const (
	Long  Side = "long"
	Short Side = "short"
)

// IsBuy 入场方向是否为买入
func (s Side) IsBuy() bool { return s == Long }

type ExecutionMode string

const (
	// 市价执行
	Market ExecutionMode = "market"
	// 限价执行
	Limit ExecutionMode = "limit"
)

type RiskLabel string

const (
	RiskLow     RiskLabel = "low"
	RiskMedium  RiskLabel = "medium"
	RiskHigh    RiskLabel = "high"
	RiskExtreme RiskLabel = "extreme"
)

// TrailingMode 追踪止损距离的表达方式
type TrailingMode string

const (
	TrailingPercent  TrailingMode = "percent"
	TrailingAbsolute TrailingMode = "absolute"
)

// TrailingStop 追踪止损：相对最优入场价的距离
type TrailingStop struct {
	Value float64
	Mode  TrailingMode
}

// EntryStrategyKind 入场拆分方式
type EntryStrategyKind string

const (
	EntrySingle   EntryStrategyKind = "single"
	EntryGrid     EntryStrategyKind = "grid"
	EntryTrailing EntryStrategyKind = "trailing"
)

// EntryStrategy 入场策略
// Spacing 在 grid 下是层间距、trailing 下是步长；SpacingPct 为 true 时
// Spacing 的单位是百分比（0.45 表示 0.45%），否则是绝对价格
type EntryStrategy struct {
	Kind       EntryStrategyKind
	Levels     int
	Spacing    float64
	SpacingPct bool
}

func SingleEntry() EntryStrategy {
	return EntryStrategy{Kind: EntrySingle, Levels: 1}
}

// PriceLevel 止损/止盈的一个价位
// Fraction 是该价位分到的仓位比例（0~1），0 表示未指定
type PriceLevel struct {
	Price    float64
	Fraction float64
	Label    string
}

// TradeSignal 不可变的信号值对象
// 不变量：Size > 0；至少一个止盈；至少一个止损或有追踪止损；
// 非 single 策略时 Levels > 0
type TradeSignal struct {
	Side        Side
	Symbol      string // 规范化后的交易对，如 BTC
	RawSymbol   string // 原文中的写法
	Size        float64
	EntryPrice  float64 // 0 表示未指定
	StopLosses  []PriceLevel
	TakeProfits []PriceLevel
	Leverage    float64 // 0 表示未指定
	Execution   ExecutionMode
	// ExecutionExplicit 文本里是否显式写了 market/limit，
	// 显式写明时建议引擎不再改写执行方式
	ExecutionExplicit bool
	Trailing          *TrailingStop
	Entry             EntryStrategy
	Risk              RiskLabel // "" 表示未指定
	Timeframes        []string  // 如 15m、4h、scalp
	RawText           string
}

// HasExplicitStops 是否带有显式止损价位
func (s *TradeSignal) HasExplicitStops() bool { return len(s.StopLosses) > 0 }
