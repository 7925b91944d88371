package parser

import (
	"fmt"

	"sigflow/internal/model"
)

// 信号解析器：把自由文本的交易指令解析成结构化的 TradeSignal
//
// 解析失败的情形（全部返回 *ParseError）：
//   - 文本为空或没有任何词
//   - 缺少方向（long/short/buy/sell）
//   - 找不到可用的交易对
//   - 缺少数量或数量 <= 0
//   - 既没有止损也没有追踪止损
//   - 没有止盈
//   - 同时指定 grid 和 trail entry

type ParseError struct {
	Reason string
}

func (e *ParseError) Error() string {
	return "parse signal: " + e.Reason
}

func parseErrf(format string, args ...interface{}) error {
	return &ParseError{Reason: fmt.Sprintf(format, args...)}
}

// levelWindow 标签后查找价格的窗口：120字符以内且不跨行
const levelWindow = 120

type Parser struct{}

func New() *Parser { return &Parser{} }

// Parse 解析文本为交易信号
func (p *Parser) Parse(text string) (*model.TradeSignal, error) {
	tokens := tokenize(text)
	if countWords(tokens) == 0 {
		return nil, parseErrf("empty signal text")
	}

	st := &parseState{
		text:     text,
		tokens:   tokens,
		consumed: make([]bool, len(tokens)),
	}

	sideIdx, side := st.findSide()
	if sideIdx < 0 {
		return nil, parseErrf("missing side keyword (long/short/buy/sell)")
	}

	// 先摘出追踪止损 / grid / trail entry，避免它们的数字被止损扫描误读
	trailingStop := st.extractTrailingStop()
	grid, hasGrid := st.extractGrid()
	trailEntry, hasTrailEntry := st.extractTrailEntry()
	if hasGrid && hasTrailEntry {
		return nil, parseErrf("grid and trail entry are mutually exclusive")
	}

	entryPrice := st.extractEntryPrice()
	leverage := st.extractLeverage()
	riskLabel := st.extractRiskLabel()
	timeframes := st.extractTimeframes()
	execExplicit, execMode := st.extractExecution()

	takeProfits := st.extractLevels(tpLabel, "tp")
	stopLosses := st.extractLevels(stopLabel, "sl")

	size := st.extractSize(sideIdx)
	if size <= 0 {
		return nil, parseErrf("missing or non-positive size")
	}

	rawSymbol, symbol := st.extractSymbol(sideIdx)
	if symbol == "" {
		return nil, parseErrf("no resolvable symbol found")
	}

	if len(takeProfits) == 0 {
		return nil, parseErrf("at least one take-profit is required")
	}
	if len(stopLosses) == 0 && trailingStop == nil {
		return nil, parseErrf("a stop-loss or trailing stop is required")
	}

	entry := model.SingleEntry()
	if hasGrid {
		entry = grid
	} else if hasTrailEntry {
		entry = trailEntry
	}
	if entry.Kind != model.EntrySingle && entry.Levels <= 0 {
		return nil, parseErrf("entry strategy needs a positive level count")
	}

	// 执行方式：显式关键字优先；有限价入场价则默认限价；否则市价
	if !execExplicit {
		if entryPrice > 0 {
			execMode = model.Limit
		} else {
			execMode = model.Market
		}
	}

	return &model.TradeSignal{
		Side:              side,
		Symbol:            symbol,
		RawSymbol:         rawSymbol,
		Size:              size,
		EntryPrice:        entryPrice,
		StopLosses:        stopLosses,
		TakeProfits:       takeProfits,
		Leverage:          leverage,
		Execution:         execMode,
		ExecutionExplicit: execExplicit,
		Trailing:          trailingStop,
		Entry:             entry,
		Risk:              riskLabel,
		Timeframes:        timeframes,
		RawText:           text,
	}, nil
}

func countWords(tokens []token) int {
	n := 0
	for _, t := range tokens {
		if !t.isNewline() {
			n++
		}
	}
	return n
}

type parseState struct {
	text     string
	tokens   []token
	consumed []bool
}

func (st *parseState) findSide() (int, model.Side) {
	for i, t := range st.tokens {
		if dir, ok := sideKeywords[t.lower]; ok {
			st.consumed[i] = true
			return i, model.Side(dir)
		}
	}
	return -1, ""
}

// extractTrailingStop 匹配 ("trailing"|"trail") "stop" <n>[%]
func (st *parseState) extractTrailingStop() *model.TrailingStop {
	for i := 0; i+2 < len(st.tokens); i++ {
		if st.consumed[i] {
			continue
		}
		if st.tokens[i].lower != "trailing" && st.tokens[i].lower != "trail" {
			continue
		}
		if st.tokens[i+1].lower != "stop" {
			continue
		}
		if v, ok := percent(st.tokens[i+2]); ok && v > 0 {
			st.markConsumed(i, i+2)
			return &model.TrailingStop{Value: v, Mode: model.TrailingPercent}
		}
		if v, ok := numeric(st.tokens[i+2]); ok && v > 0 {
			st.markConsumed(i, i+2)
			return &model.TrailingStop{Value: v, Mode: model.TrailingAbsolute}
		}
	}
	return nil
}

// extractGrid 匹配 "grid" <levels> <spacing>[%]
func (st *parseState) extractGrid() (model.EntryStrategy, bool) {
	for i := 0; i+2 < len(st.tokens); i++ {
		if st.consumed[i] || st.tokens[i].lower != "grid" {
			continue
		}
		levels, ok := numeric(st.tokens[i+1])
		if !ok || levels < 1 {
			continue
		}
		if v, ok := percent(st.tokens[i+2]); ok && v > 0 {
			st.markConsumed(i, i+2)
			return model.EntryStrategy{Kind: model.EntryGrid, Levels: int(levels), Spacing: v, SpacingPct: true}, true
		}
		if v, ok := numeric(st.tokens[i+2]); ok && v > 0 {
			st.markConsumed(i, i+2)
			return model.EntryStrategy{Kind: model.EntryGrid, Levels: int(levels), Spacing: v}, true
		}
	}
	return model.EntryStrategy{}, false
}

// extractTrailEntry 匹配 ("trail"|"trailing") "entry" <levels> <step>[%]
func (st *parseState) extractTrailEntry() (model.EntryStrategy, bool) {
	for i := 0; i+3 < len(st.tokens); i++ {
		if st.consumed[i] {
			continue
		}
		if st.tokens[i].lower != "trail" && st.tokens[i].lower != "trailing" {
			continue
		}
		if st.tokens[i+1].lower != "entry" {
			continue
		}
		levels, ok := numeric(st.tokens[i+2])
		if !ok || levels < 1 {
			continue
		}
		if v, ok := percent(st.tokens[i+3]); ok && v > 0 {
			st.markConsumed(i, i+3)
			return model.EntryStrategy{Kind: model.EntryTrailing, Levels: int(levels), Spacing: v, SpacingPct: true}, true
		}
		if v, ok := numeric(st.tokens[i+3]); ok && v > 0 {
			st.markConsumed(i, i+3)
			return model.EntryStrategy{Kind: model.EntryTrailing, Levels: int(levels), Spacing: v}, true
		}
	}
	return model.EntryStrategy{}, false
}

// extractEntryPrice 关键字 entry/price/at 后跟数字，或 "@63000"
func (st *parseState) extractEntryPrice() float64 {
	for i := 0; i < len(st.tokens); i++ {
		if st.consumed[i] {
			continue
		}
		switch st.tokens[i].lower {
		case "entry", "price", "at":
			if i+1 < len(st.tokens) && !st.consumed[i+1] {
				if v, ok := numeric(st.tokens[i+1]); ok && v > 0 {
					st.markConsumed(i, i+1)
					return v
				}
			}
		}
		if v, ok := atPrice(st.tokens[i]); ok && v > 0 {
			st.consumed[i] = true
			return v
		}
	}
	return 0
}

func (st *parseState) extractLeverage() float64 {
	for i := 0; i < len(st.tokens); i++ {
		if st.consumed[i] {
			continue
		}
		if st.tokens[i].lower == "leverage" || st.tokens[i].lower == "lev" {
			if i+1 < len(st.tokens) && !st.consumed[i+1] {
				if v, ok := leverageToken(st.tokens[i+1]); ok && v > 0 {
					st.markConsumed(i, i+1)
					return v
				}
				if v, ok := numeric(st.tokens[i+1]); ok && v > 0 {
					st.markConsumed(i, i+1)
					return v
				}
			}
			continue
		}
		if v, ok := leverageToken(st.tokens[i]); ok && v > 0 {
			st.consumed[i] = true
			return v
		}
	}
	return 0
}

func (st *parseState) extractRiskLabel() model.RiskLabel {
	for i := 0; i+1 < len(st.tokens); i++ {
		if st.consumed[i] || st.tokens[i].lower != "risk" {
			continue
		}
		switch st.tokens[i+1].lower {
		case "low", "medium", "high", "extreme":
			st.markConsumed(i, i+1)
			return model.RiskLabel(st.tokens[i+1].lower)
		}
	}
	return ""
}

// extractTimeframes 收集周期提示，不影响解析成败
func (st *parseState) extractTimeframes() []string {
	var out []string
	seen := map[string]struct{}{}
	for i, t := range st.tokens {
		if st.consumed[i] {
			continue
		}
		if tf, ok := timeframeToken(t); ok {
			if _, dup := seen[tf]; !dup {
				seen[tf] = struct{}{}
				out = append(out, tf)
			}
			st.consumed[i] = true
		}
	}
	return out
}

func (st *parseState) extractExecution() (bool, model.ExecutionMode) {
	for i, t := range st.tokens {
		if st.consumed[i] {
			continue
		}
		switch t.lower {
		case "market":
			st.consumed[i] = true
			return true, model.Market
		case "limit":
			st.consumed[i] = true
			return true, model.Limit
		}
	}
	return false, model.Market
}

// extractLevels 按标签扫描止盈/止损价位
// 标签后的窗口内（<=120字符且不跨行）读一个价格和一个可选的百分比配比
func (st *parseState) extractLevels(isLabel func(token) bool, kind string) []model.PriceLevel {
	var out []model.PriceLevel
	seen := map[string]struct{}{}

	for i := 0; i < len(st.tokens); i++ {
		if st.consumed[i] {
			continue
		}
		label, labelEnd, width := st.matchLabel(i, isLabel, kind)
		if width == 0 {
			continue
		}

		price := 0.0
		fraction := 0.0
		priceIdx, pctIdx := -1, -1
		for j := i + width; j < len(st.tokens); j++ {
			t := st.tokens[j]
			if t.isNewline() || t.start > labelEnd+levelWindow {
				break
			}
			if st.consumed[j] {
				continue
			}
			if price == 0 {
				if v, ok := numeric(t); ok && v > 0 {
					price, priceIdx = v, j
					continue
				}
				// 标签和价格之间出现别的标签则放弃本标签
				if isLabel(t) || stopLabel(t) || tpLabel(t) {
					break
				}
				continue
			}
			if v, ok := percent(t); ok && v > 0 && v <= 100 {
				fraction, pctIdx = v/100, j
			}
			break
		}
		if price <= 0 {
			continue
		}

		key := fmt.Sprintf("%s|%v|%v", label, price, fraction)
		if _, dup := seen[key]; dup {
			// 重复的 (标签,价格,配比) 三元组直接丢弃
			st.markLevelConsumed(i, width, priceIdx, pctIdx)
			continue
		}
		seen[key] = struct{}{}
		st.markLevelConsumed(i, width, priceIdx, pctIdx)
		out = append(out, model.PriceLevel{Price: price, Fraction: fraction, Label: label})
	}
	return out
}

// matchLabel 匹配单词标签或 "take profit" / "stop loss" 双词标签
// 返回标签文本、标签末尾偏移和占用的token数
func (st *parseState) matchLabel(i int, isLabel func(token) bool, kind string) (string, int, int) {
	t := st.tokens[i]
	if kind == "tp" && t.lower == "take" && i+1 < len(st.tokens) && st.tokens[i+1].lower == "profit" {
		return "take profit", st.tokens[i+1].end, 2
	}
	if kind == "sl" && t.lower == "stop" && i+1 < len(st.tokens) && st.tokens[i+1].lower == "loss" {
		return "stop loss", st.tokens[i+1].end, 2
	}
	if isLabel(t) {
		return t.lower, t.end, 1
	}
	return "", 0, 0
}

func (st *parseState) markLevelConsumed(labelIdx, width, priceIdx, pctIdx int) {
	st.markConsumed(labelIdx, labelIdx+width-1)
	if priceIdx >= 0 {
		st.consumed[priceIdx] = true
	}
	if pctIdx >= 0 {
		st.consumed[pctIdx] = true
	}
}

// extractSize 优先 size 关键字，否则取方向词之后第一个裸数字
func (st *parseState) extractSize(sideIdx int) float64 {
	for i := 0; i+1 < len(st.tokens); i++ {
		if st.consumed[i] {
			continue
		}
		switch st.tokens[i].lower {
		case "size", "qty", "amount":
			if v, ok := numeric(st.tokens[i+1]); ok {
				st.markConsumed(i, i+1)
				return v
			}
		}
	}
	for i := sideIdx + 1; i < len(st.tokens); i++ {
		if st.consumed[i] {
			continue
		}
		if v, ok := numeric(st.tokens[i]); ok {
			st.consumed[i] = true
			return v
		}
	}
	return 0
}

// extractSymbol 在方向词之后找交易对：先找全大写候选，再退回普通字母词
func (st *parseState) extractSymbol(sideIdx int) (string, string) {
	pick := func(capsOnly bool) (string, string) {
		for i := sideIdx + 1; i < len(st.tokens); i++ {
			if st.consumed[i] {
				continue
			}
			t := st.tokens[i]
			if t.isNewline() {
				continue
			}
			if _, kw := valueKeywords[t.lower]; kw {
				continue
			}
			if urlLike(t.text) || !alphabetic(t.text) {
				continue
			}
			if capsOnly && !allCaps(t.text) {
				continue
			}
			if sym := NormalizeSymbol(t.text); sym != "" {
				st.consumed[i] = true
				return t.text, sym
			}
		}
		return "", ""
	}
	if raw, sym := pick(true); sym != "" {
		return raw, sym
	}
	return pick(false)
}

func (st *parseState) markConsumed(from, to int) {
	for i := from; i <= to && i < len(st.consumed); i++ {
		st.consumed[i] = true
	}
}
