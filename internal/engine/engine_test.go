package engine

import (
	"testing"

	"sigflow/conf"
	"sigflow/internal/model"
	"sigflow/pkg/hyper/types"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func btcMeta() AssetMeta {
	return AssetMeta{ID: 0, Name: "BTC", SzDecimals: 3}
}

func testEngine() *Engine {
	return New(nil, nil, conf.EngineConfig{SlippageBps: 20})
}

func gridSignal() *model.TradeSignal {
	return &model.TradeSignal{
		Side:        model.Long,
		Symbol:      "BTC",
		Size:        3,
		EntryPrice:  60000,
		Execution:   model.Limit,
		Entry:       model.EntryStrategy{Kind: model.EntryGrid, Levels: 3, Spacing: 150},
		StopLosses:  []model.PriceLevel{{Price: 58500}},
		TakeProfits: []model.PriceLevel{{Price: 62500}, {Price: 63500}},
	}
}

func TestBuildPayloadGridEntries(t *testing.T) {
	payload, err := testEngine().BuildPayload(gridSignal(), btcMeta(), 60000)
	require.NoError(t, err)

	// 3 入场 + 2 止盈 + 1 止损
	require.Len(t, payload.Orders, 6)
	assert.Equal(t, types.GroupingPositionTpsl, payload.Grouping)

	entries := payload.Orders[:3]
	wantPrices := []string{"60000", "59850", "59700"}
	for i, order := range entries {
		assert.Equal(t, wantPrices[i], order.Price)
		assert.Equal(t, "1", order.Size)
		assert.True(t, order.IsBuy)
		assert.False(t, order.ReduceOnly)
		require.NotNil(t, order.OrderType.Limit)
		assert.Equal(t, types.TifGtc, order.OrderType.Limit.Tif)
	}
}

func TestBuildPayloadExitOrders(t *testing.T) {
	payload, err := testEngine().BuildPayload(gridSignal(), btcMeta(), 60000)
	require.NoError(t, err)

	exits := payload.Orders[3:]
	for _, order := range exits {
		assert.False(t, order.IsBuy, "平仓方向与持仓相反")
		assert.True(t, order.ReduceOnly)
		require.NotNil(t, order.OrderType.Trigger)
		assert.True(t, order.OrderType.Trigger.IsMarket)
		assert.Equal(t, order.Price, order.OrderType.Trigger.TriggerPrice)
	}
	assert.Equal(t, types.TpslTakeProfit, exits[0].OrderType.Trigger.Tpsl)
	assert.Equal(t, types.TpslTakeProfit, exits[1].OrderType.Trigger.Tpsl)
	assert.Equal(t, types.TpslStopLoss, exits[2].OrderType.Trigger.Tpsl)

	// 止盈未指定配比时均分，两档各 1.5
	assert.Equal(t, "1.5", exits[0].Size)
	assert.Equal(t, "1.5", exits[1].Size)
	// 止损单档吃下全部数量
	assert.Equal(t, "3", exits[2].Size)
}

func TestBuildPayloadMarketEntry(t *testing.T) {
	sig := &model.TradeSignal{
		Side:        model.Long,
		Symbol:      "BTC",
		Size:        1,
		Execution:   model.Market,
		Entry:       model.SingleEntry(),
		StopLosses:  []model.PriceLevel{{Price: 58500}},
		TakeProfits: []model.PriceLevel{{Price: 62500}},
	}
	payload, err := testEngine().BuildPayload(sig, btcMeta(), 60000)
	require.NoError(t, err)

	entry := payload.Orders[0]
	// 多单市价：中间价上浮 20bps 保证成交
	assert.Equal(t, "60120", entry.Price)
	require.NotNil(t, entry.OrderType.Limit)
	assert.Equal(t, types.TifIoc, entry.OrderType.Limit.Tif)

	sig.Side = model.Short
	payload, err = testEngine().BuildPayload(sig, btcMeta(), 60000)
	require.NoError(t, err)
	assert.Equal(t, "59880", payload.Orders[0].Price)
}

func TestBuildPayloadTrailingStopAlone(t *testing.T) {
	sig := &model.TradeSignal{
		Side:        model.Long,
		Symbol:      "BTC",
		Size:        1,
		EntryPrice:  60000,
		Execution:   model.Limit,
		Entry:       model.SingleEntry(),
		Trailing:    &model.TrailingStop{Value: 500, Mode: model.TrailingAbsolute},
		TakeProfits: []model.PriceLevel{{Price: 64000}},
	}
	payload, err := testEngine().BuildPayload(sig, btcMeta(), 60000)
	require.NoError(t, err)

	// 1 入场 + 1 止盈 + 追踪折算出的 1 止损
	require.Len(t, payload.Orders, 3)
	sl := payload.Orders[2]
	assert.Equal(t, types.TpslStopLoss, sl.OrderType.Trigger.Tpsl)
	assert.Equal(t, "59500", sl.OrderType.Trigger.TriggerPrice)
}

func TestBuildPayloadTrailingStopMerge(t *testing.T) {
	sig := &model.TradeSignal{
		Side:        model.Long,
		Symbol:      "BTC",
		Size:        1,
		EntryPrice:  60000,
		Execution:   model.Limit,
		Entry:       model.SingleEntry(),
		Trailing:    &model.TrailingStop{Value: 500, Mode: model.TrailingAbsolute},
		StopLosses:  []model.PriceLevel{{Price: 59000}},
		TakeProfits: []model.PriceLevel{{Price: 64000}},
	}
	payload, err := testEngine().BuildPayload(sig, btcMeta(), 60000)
	require.NoError(t, err)

	// 追踪价 59500 比显式止损 59000 更贴近持仓：收紧而不是加单
	var slOrders []types.OrderWire
	for _, order := range payload.Orders {
		if order.OrderType.Trigger != nil && order.OrderType.Trigger.Tpsl == types.TpslStopLoss {
			slOrders = append(slOrders, order)
		}
	}
	require.Len(t, slOrders, 1)
	assert.Equal(t, "59500", slOrders[0].OrderType.Trigger.TriggerPrice)
}

func TestBuildPayloadTrailingStopKeepsTighterExisting(t *testing.T) {
	sig := &model.TradeSignal{
		Side:        model.Long,
		Symbol:      "BTC",
		Size:        1,
		EntryPrice:  60000,
		Execution:   model.Limit,
		Entry:       model.SingleEntry(),
		Trailing:    &model.TrailingStop{Value: 2000, Mode: model.TrailingAbsolute},
		StopLosses:  []model.PriceLevel{{Price: 59000}},
		TakeProfits: []model.PriceLevel{{Price: 64000}},
	}
	payload, err := testEngine().BuildPayload(sig, btcMeta(), 60000)
	require.NoError(t, err)

	// 追踪价 58000 比显式止损 59000 更远，保留原止损
	for _, order := range payload.Orders {
		if order.OrderType.Trigger != nil && order.OrderType.Trigger.Tpsl == types.TpslStopLoss {
			assert.Equal(t, "59000", order.OrderType.Trigger.TriggerPrice)
		}
	}
}

func TestBuildPayloadTrailingEntryCompounding(t *testing.T) {
	sig := &model.TradeSignal{
		Side:        model.Long,
		Symbol:      "BTC",
		Size:        3,
		EntryPrice:  10000,
		Execution:   model.Limit,
		Entry:       model.EntryStrategy{Kind: model.EntryTrailing, Levels: 3, Spacing: 1, SpacingPct: true},
		StopLosses:  []model.PriceLevel{{Price: 9000}},
		TakeProfits: []model.PriceLevel{{Price: 11000}},
	}
	payload, err := testEngine().BuildPayload(sig, btcMeta(), 10000)
	require.NoError(t, err)

	// 百分比模式复利：10000, 10000*0.99, 10000*0.99^2
	assert.Equal(t, "10000", payload.Orders[0].Price)
	assert.Equal(t, "9900", payload.Orders[1].Price)
	assert.Equal(t, "9801", payload.Orders[2].Price)
}

func TestBuildPayloadFailures(t *testing.T) {
	e := testEngine()

	// 没有止盈
	sig := gridSignal()
	sig.TakeProfits = nil
	_, err := e.BuildPayload(sig, btcMeta(), 60000)
	require.Error(t, err)

	// 没有入场价也没有行情
	sig = gridSignal()
	sig.EntryPrice = 0
	_, err = e.BuildPayload(sig, btcMeta(), 0)
	var stale *StaleMetadataError
	require.ErrorAs(t, err, &stale)

	// 追踪价跌破零
	sig = &model.TradeSignal{
		Side:        model.Long,
		Symbol:      "BTC",
		Size:        1,
		EntryPrice:  100,
		Execution:   model.Limit,
		Entry:       model.SingleEntry(),
		Trailing:    &model.TrailingStop{Value: 200, Mode: model.TrailingAbsolute},
		TakeProfits: []model.PriceLevel{{Price: 110}},
	}
	_, err = e.BuildPayload(sig, btcMeta(), 100)
	require.Error(t, err)

	// 精度太粗无法切分
	sig = gridSignal()
	sig.Size = 0.002
	_, err = e.BuildPayload(sig, btcMeta(), 60000)
	var alloc *AllocationError
	require.ErrorAs(t, err, &alloc)
}

func TestFormatPrice(t *testing.T) {
	cases := []struct {
		in   float64
		want string
	}{
		{60000, "60000"},
		{59850.5, "59850.5"},
		{0.123456789, "0.123457"},
		{1.5000001, "1.5"},
	}
	for _, c := range cases {
		got, err := FormatPrice(c.in)
		require.NoError(t, err)
		assert.Equal(t, c.want, got)
	}

	_, err := FormatPrice(0)
	require.Error(t, err)
	_, err = FormatPrice(-1)
	require.Error(t, err)
}

func TestFormatSize(t *testing.T) {
	got, err := FormatSize(1.23456, 3)
	require.NoError(t, err)
	assert.Equal(t, "1.235", got)

	got, err = FormatSize(2.0, 3)
	require.NoError(t, err)
	assert.Equal(t, "2", got)

	// 四舍五入后归零视为非法
	_, err = FormatSize(0.0001, 3)
	require.Error(t, err)
}
