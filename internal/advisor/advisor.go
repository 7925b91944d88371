package advisor

import (
	"fmt"
	"math"
	"strconv"

	"sigflow/conf"
	"sigflow/internal/execmath"
	"sigflow/internal/model"

	"github.com/samber/lo"
)

// 基线建议引擎：根据风险标签和周期提示推导杠杆、执行方式和入场策略
// 只做启发式调整，不碰信号本身

// 风险标签对杠杆的乘数
var riskLeverageMultiplier = map[model.RiskLabel]float64{
	model.RiskLow:     1.15,
	model.RiskMedium:  1.0,
	model.RiskHigh:    0.75,
	model.RiskExtreme: 0.55,
}

// 风险标签对入场步长的缩放
var riskStepScale = map[model.RiskLabel]float64{
	model.RiskLow:     0.75,
	model.RiskMedium:  1.0,
	model.RiskHigh:    1.25,
	model.RiskExtreme: 1.4,
}

// 命名周期折算成分钟
var namedTimeframeMinutes = map[string]int{
	"scalp":    5,
	"intraday": 240,
	"swing":    1440,
	"position": 10080,
}

type Advisor struct {
	cfg conf.AdvisorConfig
}

func New(cfg conf.AdvisorConfig) *Advisor {
	if cfg.DefaultLeverage <= 0 {
		cfg.DefaultLeverage = 5
	}
	if cfg.FastEntryMaxMinutes <= 0 {
		cfg.FastEntryMaxMinutes = 20
	}
	if cfg.FastExecMaxMinutes <= 0 {
		cfg.FastExecMaxMinutes = 15
	}
	if cfg.SlowExecMinMinutes <= 0 {
		cfg.SlowExecMinMinutes = 240
	}
	if cfg.SlowEntryMinMinutes <= 0 {
		cfg.SlowEntryMinMinutes = 360
	}
	return &Advisor{cfg: cfg}
}

// Bounds 返回清洗后的杠杆上下限，非法值回落到 [1,25]
func (a *Advisor) Bounds() (float64, float64) {
	minLev, maxLev := a.cfg.MinLeverage, a.cfg.MaxLeverage
	if minLev <= 0 || math.IsNaN(minLev) || math.IsInf(minLev, 0) {
		minLev = 1
	}
	if maxLev <= 0 || math.IsNaN(maxLev) || math.IsInf(maxLev, 0) {
		maxLev = 25
	}
	if maxLev < minLev {
		minLev, maxLev = 1, 25
	}
	return minLev, maxLev
}

// Advise 生成基线建议
func (a *Advisor) Advise(sig *model.TradeSignal) model.SignalAdvice {
	notes := make([]string, 0, 4)

	leverage := sig.Leverage
	if leverage <= 0 {
		leverage = a.cfg.DefaultLeverage
		notes = append(notes, fmt.Sprintf("leverage defaulted to %.1fx", leverage))
	}

	if mult, ok := riskLeverageMultiplier[sig.Risk]; ok {
		leverage *= mult
		notes = append(notes, fmt.Sprintf("risk label %s applied x%.2f", sig.Risk, mult))
	}

	fastest := FastestTimeframeMinutes(sig.Timeframes)
	if fastest > 0 {
		mult := timeframeMultiplier(fastest)
		leverage *= mult
		notes = append(notes, fmt.Sprintf("timeframe %dm applied x%.2f", fastest, mult))
	}

	if a.cfg.VolatilityBias > 0 {
		leverage *= a.cfg.VolatilityBias
		notes = append(notes, fmt.Sprintf("volatility bias applied x%.2f", a.cfg.VolatilityBias))
	}

	minLev, maxLev := a.Bounds()
	leverage = execmath.Round2(lo.Clamp(leverage, minLev, maxLev))

	execution := a.adviseExecution(sig, fastest)
	entry := a.adviseEntry(sig, fastest, &notes)

	return model.SignalAdvice{
		Leverage:  leverage,
		Execution: execution,
		Entry:     entry,
		Notes:     notes,
	}
}

// adviseExecution 执行方式：信号里显式写明的优先；
// 启发式里极端风险(限价)压过快周期(市价)
func (a *Advisor) adviseExecution(sig *model.TradeSignal, fastest int) model.ExecutionMode {
	if sig.ExecutionExplicit {
		return sig.Execution
	}
	execution := sig.Execution
	if fastest > 0 && fastest <= a.cfg.FastExecMaxMinutes {
		execution = model.Market
	}
	if fastest >= a.cfg.SlowExecMinMinutes {
		execution = model.Limit
	}
	if sig.Risk == model.RiskExtreme {
		execution = model.Limit
	}
	return execution
}

// adviseEntry 只在信号是 single 时推导入场策略
func (a *Advisor) adviseEntry(sig *model.TradeSignal, fastest int, notes *[]string) model.EntryStrategy {
	if sig.Entry.Kind != model.EntrySingle {
		return sig.Entry
	}

	scale := 1.0
	if s, ok := riskStepScale[sig.Risk]; ok {
		scale = s
	}

	switch {
	case fastest > 0 && fastest <= a.cfg.FastEntryMaxMinutes:
		levels := 3
		if sig.Risk == model.RiskHigh || sig.Risk == model.RiskExtreme {
			levels = 2
		}
		step := lo.Clamp(execmath.Round2(0.3*scale), 0.2, 0.4)
		*notes = append(*notes, fmt.Sprintf("fast timeframe: trailing entry %d levels step %.2f%%", levels, step))
		return model.EntryStrategy{Kind: model.EntryTrailing, Levels: levels, Spacing: step, SpacingPct: true}

	case fastest >= a.cfg.SlowEntryMinMinutes:
		levels := 3
		switch sig.Risk {
		case model.RiskLow:
			levels = 4
		case model.RiskHigh, model.RiskExtreme:
			levels = 2
		}
		spacing := lo.Clamp(execmath.Round2(0.6*scale), 0.5, 0.8)
		*notes = append(*notes, fmt.Sprintf("slow timeframe: grid %d levels spacing %.2f%%", levels, spacing))
		return model.EntryStrategy{Kind: model.EntryGrid, Levels: levels, Spacing: spacing, SpacingPct: true}

	case fastest == 0 && len(sig.TakeProfits) >= 3:
		*notes = append(*notes, "3+ take-profits without timeframe: grid 3 levels spacing 0.45%")
		return model.EntryStrategy{Kind: model.EntryGrid, Levels: 3, Spacing: 0.45, SpacingPct: true}
	}

	return sig.Entry
}

// timeframeMultiplier 周期越快杠杆越保守
func timeframeMultiplier(minutes int) float64 {
	switch {
	case minutes <= 5:
		return 0.8
	case minutes <= 30:
		return 0.9
	case minutes <= 240:
		return 1.0
	case minutes <= 1440:
		return 1.1
	default:
		return 1.2
	}
}

// FastestTimeframeMinutes 取提示里最快的周期，没有可识别的返回 0
func FastestTimeframeMinutes(hints []string) int {
	fastest := 0
	for _, hint := range hints {
		minutes := TimeframeMinutes(hint)
		if minutes <= 0 {
			continue
		}
		if fastest == 0 || minutes < fastest {
			fastest = minutes
		}
	}
	return fastest
}

// TimeframeMinutes 把 "15m" / "4h" / "1d" / "scalp" 等折算为分钟
func TimeframeMinutes(hint string) int {
	if m, ok := namedTimeframeMinutes[hint]; ok {
		return m
	}
	if len(hint) < 2 {
		return 0
	}
	value, err := strconv.Atoi(hint[:len(hint)-1])
	if err != nil || value <= 0 {
		return 0
	}
	switch hint[len(hint)-1] {
	case 'm':
		return value
	case 'h':
		return value * 60
	case 'd':
		return value * 1440
	case 'w':
		return value * 10080
	}
	return 0
}
