package parser

import (
	"testing"

	"sigflow/internal/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseLongSignal(t *testing.T) {
	sig, err := New().Parse("Long BTC 0.75 entry 63000 stop 61500 take profit 64000 tp2 65000")
	require.NoError(t, err)

	assert.Equal(t, model.Long, sig.Side)
	assert.Equal(t, "BTC", sig.Symbol)
	assert.Equal(t, 0.75, sig.Size)
	assert.Equal(t, 63000.0, sig.EntryPrice)
	require.Len(t, sig.StopLosses, 1)
	assert.Equal(t, 61500.0, sig.StopLosses[0].Price)
	require.Len(t, sig.TakeProfits, 2)
	assert.Equal(t, 64000.0, sig.TakeProfits[0].Price)
	assert.Equal(t, 65000.0, sig.TakeProfits[1].Price)
	// 有入场价且没写 market，默认限价
	assert.Equal(t, model.Limit, sig.Execution)
	assert.False(t, sig.ExecutionExplicit)
}

func TestParseShortWithExplicitMarket(t *testing.T) {
	sig, err := New().Parse("short eth size=2 stop 3200 tp1 3000 tp2 2900 market")
	require.NoError(t, err)

	assert.Equal(t, model.Short, sig.Side)
	assert.Equal(t, "ETH", sig.Symbol)
	assert.Equal(t, 2.0, sig.Size)
	assert.Zero(t, sig.EntryPrice)
	assert.Equal(t, model.Market, sig.Execution)
	assert.True(t, sig.ExecutionExplicit)
	require.Len(t, sig.StopLosses, 1)
	assert.Equal(t, 3200.0, sig.StopLosses[0].Price)
	require.Len(t, sig.TakeProfits, 2)
	assert.Equal(t, 3000.0, sig.TakeProfits[0].Price)
	assert.Equal(t, 2900.0, sig.TakeProfits[1].Price)
}

func TestParseGridStrategy(t *testing.T) {
	sig, err := New().Parse("Long BTC 3 entry 60000 stop 58500 tp1 62500 tp2 63500 grid 3 150")
	require.NoError(t, err)

	assert.Equal(t, 3.0, sig.Size)
	assert.Equal(t, 60000.0, sig.EntryPrice)
	assert.Equal(t, model.EntryGrid, sig.Entry.Kind)
	assert.Equal(t, 3, sig.Entry.Levels)
	assert.Equal(t, 150.0, sig.Entry.Spacing)
	assert.False(t, sig.Entry.SpacingPct)
}

func TestParseTrailingStop(t *testing.T) {
	// 追踪止损的数字不能被止损扫描误读，没有显式止损也能解析成功
	sig, err := New().Parse("long BTC 1 entry 60000 trailing stop 500 tp 64000")
	require.NoError(t, err)

	require.NotNil(t, sig.Trailing)
	assert.Equal(t, 500.0, sig.Trailing.Value)
	assert.Equal(t, model.TrailingAbsolute, sig.Trailing.Mode)
	assert.Empty(t, sig.StopLosses)

	sig, err = New().Parse("short ETH 2 entry 3200 trail stop 1.5% tp 3000")
	require.NoError(t, err)
	require.NotNil(t, sig.Trailing)
	assert.Equal(t, 1.5, sig.Trailing.Value)
	assert.Equal(t, model.TrailingPercent, sig.Trailing.Mode)
}

func TestParseLevelFractions(t *testing.T) {
	sig, err := New().Parse("long BTC 1 entry 100 stop 90 tp1 110 60% tp2 120 40%")
	require.NoError(t, err)

	require.Len(t, sig.TakeProfits, 2)
	assert.Equal(t, 0.6, sig.TakeProfits[0].Fraction)
	assert.Equal(t, 0.4, sig.TakeProfits[1].Fraction)
}

func TestParseLeverageAndHints(t *testing.T) {
	sig, err := New().Parse("long SOL 10 entry 150 stop 140 tp 170 leverage 8x risk high 15m")
	require.NoError(t, err)

	assert.Equal(t, 8.0, sig.Leverage)
	assert.Equal(t, model.RiskHigh, sig.Risk)
	assert.Equal(t, []string{"15m"}, sig.Timeframes)
}

func TestParseSymbolNormalization(t *testing.T) {
	cases := []struct {
		text string
		want string
	}{
		{"long XBTUSD 1 entry 60000 stop 59000 tp 62000", "BTC"},
		{"short ETH-PERP 1 entry 3200 stop 3300 tp 3000", "ETH"},
		{"long dogeusdt 100 entry 0.2 stop 0.18 tp 0.25", "DOGE"},
	}
	for _, c := range cases {
		sig, err := New().Parse(c.text)
		require.NoError(t, err, c.text)
		assert.Equal(t, c.want, sig.Symbol, c.text)
	}
}

func TestParseFailures(t *testing.T) {
	cases := []struct {
		name string
		text string
	}{
		{"空文本", "   "},
		{"缺少方向", "BTC 1 entry 60000 stop 59000 tp 62000"},
		{"缺少数量", "long BTC entry 60000 stop 59000 tp 62000"},
		{"缺少止盈", "long BTC 1 entry 60000 stop 59000"},
		{"缺少止损", "long BTC 1 entry 60000 tp 62000"},
		{"grid和trail entry互斥", "long BTC 1 entry 60000 stop 59000 tp 62000 grid 3 150 trail entry 2 0.5%"},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			_, err := New().Parse(c.text)
			require.Error(t, err)
			var pe *ParseError
			assert.ErrorAs(t, err, &pe)
		})
	}
}
