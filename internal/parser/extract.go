package parser

import (
	"strings"

	"github.com/spf13/cast"
)

// 词法分类与关键字表。猜测交易对时需要跳过的值关键字集中配置在这里，
// 避免散落在各个提取器里

var sideKeywords = map[string]string{
	"long":  "long",
	"buy":   "long",
	"short": "short",
	"sell":  "short",
}

// valueKeywords 猜测 symbol 时要跳过的关键字
var valueKeywords = map[string]struct{}{
	"long": {}, "short": {}, "buy": {}, "sell": {},
	"size": {}, "qty": {}, "amount": {},
	"entry": {}, "price": {}, "at": {},
	"stop": {}, "sl": {}, "stoploss": {}, "loss": {},
	"tp": {}, "take": {}, "profit": {}, "takeprofit": {}, "target": {},
	"risk": {}, "leverage": {}, "lev": {},
	"trailing": {}, "trail": {}, "grid": {},
	"market": {}, "limit": {},
	"scalp": {}, "swing": {}, "intraday": {}, "position": {},
	"timeframe": {}, "tf": {},
}

// symbolSuffixes 规范化 symbol 时去掉的后缀
var symbolSuffixes = []string{"PERPETUAL", "USDT", "SPOT", "PERP", "USD"}

// symbolAliases 常见别名
var symbolAliases = map[string]string{
	"XBT": "BTC",
}

var namedTimeframes = map[string]struct{}{
	"scalp": {}, "swing": {}, "intraday": {}, "position": {},
}

// numeric 纯数字（允许带千位无关的小数点和正负号）
func numeric(t token) (float64, bool) {
	if t.isNewline() {
		return 0, false
	}
	v, err := cast.ToFloat64E(t.text)
	if err != nil {
		return 0, false
	}
	return v, true
}

// percent 形如 "25%"
func percent(t token) (float64, bool) {
	if !strings.HasSuffix(t.text, "%") {
		return 0, false
	}
	v, err := cast.ToFloat64E(strings.TrimSuffix(t.text, "%"))
	if err != nil {
		return 0, false
	}
	return v, true
}

// atPrice 形如 "@63000"
func atPrice(t token) (float64, bool) {
	if !strings.HasPrefix(t.text, "@") {
		return 0, false
	}
	v, err := cast.ToFloat64E(strings.TrimPrefix(t.text, "@"))
	if err != nil {
		return 0, false
	}
	return v, true
}

// leverageToken 形如 "20x"
func leverageToken(t token) (float64, bool) {
	if !strings.HasSuffix(t.lower, "x") || len(t.lower) < 2 {
		return 0, false
	}
	v, err := cast.ToFloat64E(strings.TrimSuffix(t.lower, "x"))
	if err != nil {
		return 0, false
	}
	return v, true
}

// timeframeToken 形如 "15m"、"4h"、"1d"、"2w" 或 scalp 等命名周期
func timeframeToken(t token) (string, bool) {
	if _, ok := namedTimeframes[t.lower]; ok {
		return t.lower, true
	}
	s := t.lower
	if len(s) < 2 {
		return "", false
	}
	unit := s[len(s)-1]
	if unit != 'm' && unit != 'h' && unit != 'd' && unit != 'w' {
		return "", false
	}
	digits := s[:len(s)-1]
	for i := 0; i < len(digits); i++ {
		if digits[i] < '0' || digits[i] > '9' {
			return "", false
		}
	}
	return s, true
}

// stopLabel 止损标签：sl、sl2、stop、stop2、stoploss3 …
func stopLabel(t token) bool {
	return labelWithOptionalIndex(t.lower, "sl") ||
		labelWithOptionalIndex(t.lower, "stop") ||
		labelWithOptionalIndex(t.lower, "stoploss")
}

// tpLabel 止盈标签：tp、tp2、takeprofit、target …
func tpLabel(t token) bool {
	return labelWithOptionalIndex(t.lower, "tp") ||
		labelWithOptionalIndex(t.lower, "takeprofit") ||
		labelWithOptionalIndex(t.lower, "target")
}

func labelWithOptionalIndex(s, base string) bool {
	if !strings.HasPrefix(s, base) {
		return false
	}
	rest := s[len(base):]
	for i := 0; i < len(rest); i++ {
		if rest[i] < '0' || rest[i] > '9' {
			return false
		}
	}
	return true
}

// urlLike 链接等明显不是交易对的串
func urlLike(s string) bool {
	ls := lowerASCII(s)
	return strings.Contains(ls, "http") || strings.Contains(ls, "www.") ||
		strings.Contains(ls, ".com")
}

func allCaps(s string) bool {
	hasLetter := false
	for i := 0; i < len(s); i++ {
		c := s[i]
		if c >= 'a' && c <= 'z' {
			return false
		}
		if c >= 'A' && c <= 'Z' {
			hasLetter = true
		}
	}
	return hasLetter
}

// alphabetic 交易对候选：字母数字加常见的连接符（BTC、ETH-PERP、BTC/USDT）
func alphabetic(s string) bool {
	hasLetter := false
	for i := 0; i < len(s); i++ {
		c := s[i]
		if (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z') {
			hasLetter = true
			continue
		}
		if (c >= '0' && c <= '9') || c == '-' || c == '_' || c == '/' {
			continue
		}
		return false
	}
	return hasLetter
}

// NormalizeSymbol 去掉非字母数字、去掉已知后缀、套用别名
func NormalizeSymbol(raw string) string {
	var b strings.Builder
	for i := 0; i < len(raw); i++ {
		c := raw[i]
		if (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z') || (c >= '0' && c <= '9') {
			b.WriteByte(c)
		}
	}
	sym := strings.ToUpper(b.String())
	for _, suffix := range symbolSuffixes {
		if len(sym) > len(suffix) && strings.HasSuffix(sym, suffix) {
			sym = strings.TrimSuffix(sym, suffix)
			break
		}
	}
	if alias, ok := symbolAliases[sym]; ok {
		sym = alias
	}
	return sym
}
