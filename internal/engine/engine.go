package engine

import (
	"context"
	"fmt"

	"sigflow/conf"
	"sigflow/internal/model"
	"sigflow/pkg/hyper/types"
	"sigflow/pkg/logger"
)

// 订单构造引擎：信号 → 交易所订单批次 → 提交
// 元数据缓存显式注入，不走包级全局

// UnknownSymbolError 交易对不在资产清单里
type UnknownSymbolError struct {
	Symbol string
}

func (e *UnknownSymbolError) Error() string {
	return "unknown symbol: " + e.Symbol
}

// StaleMetadataError 元数据缺失或不可用，无法定价
type StaleMetadataError struct {
	Symbol string
	Reason string
}

func (e *StaleMetadataError) Error() string {
	return fmt.Sprintf("stale metadata for %s: %s", e.Symbol, e.Reason)
}

// VenueClient 交易所侧能力，pkg/hyper/rest 的 Client 实现了它
type VenueClient interface {
	MetadataFetcher
	SubmitOrders(ctx context.Context, payload *types.OrderPayload) (*types.OrderResponse, error)
}

type Engine struct {
	client VenueClient
	cache  *MetadataCache
	cfg    conf.EngineConfig
}

func New(client VenueClient, cache *MetadataCache, cfg conf.EngineConfig) *Engine {
	return &Engine{client: client, cache: cache, cfg: cfg}
}

// PreparedBatch 已构造待提交的订单批次
type PreparedBatch struct {
	Meta     AssetMeta
	MidPrice float64
	Payload  *types.OrderPayload
}

// ExecutionResult 一次执行的完整产物
type ExecutionResult struct {
	Signal   *model.TradeSignal
	Payload  *types.OrderPayload
	Response *types.OrderResponse
}

// Prepare 解析元数据并构造订单批次，不提交
func (e *Engine) Prepare(ctx context.Context, sig *model.TradeSignal) (*PreparedBatch, error) {
	snap, err := e.cache.Snapshot(ctx, e.cfg.RefreshBlocking)
	if err != nil {
		return nil, &StaleMetadataError{Symbol: sig.Symbol, Reason: err.Error()}
	}

	meta, ok := snap.Assets[sig.Symbol]
	if !ok {
		return nil, &UnknownSymbolError{Symbol: sig.Symbol}
	}
	mid := snap.Contexts[sig.Symbol].MidPrice

	payload, err := e.BuildPayload(sig, meta, mid)
	if err != nil {
		return nil, err
	}
	return &PreparedBatch{Meta: meta, MidPrice: mid, Payload: payload}, nil
}

// Submit 提交批次
func (e *Engine) Submit(ctx context.Context, sig *model.TradeSignal, payload *types.OrderPayload) (*types.OrderResponse, error) {
	resp, err := e.client.SubmitOrders(ctx, payload)
	if err != nil {
		return nil, err
	}
	logger.Info("order batch submitted",
		logger.Pair("symbol", sig.Symbol),
		logger.Pair("side", sig.Side),
		logger.Pair("orders", len(payload.Orders)),
		logger.Pair("grouping", payload.Grouping))
	return resp, nil
}

// ExecuteSignal 构造并提交一笔信号对应的订单批次
func (e *Engine) ExecuteSignal(ctx context.Context, sig *model.TradeSignal) (*ExecutionResult, error) {
	batch, err := e.Prepare(ctx, sig)
	if err != nil {
		return nil, err
	}
	resp, err := e.Submit(ctx, sig, batch.Payload)
	if err != nil {
		return nil, err
	}
	return &ExecutionResult{Signal: sig, Payload: batch.Payload, Response: resp}, nil
}

// BuildPayload 纯构造，不发请求
func (e *Engine) BuildPayload(sig *model.TradeSignal, meta AssetMeta, mid float64) (*types.OrderPayload, error) {
	if len(sig.TakeProfits) == 0 {
		return nil, fmt.Errorf("signal for %s has no take profit levels", sig.Symbol)
	}

	ref, tif, err := e.resolveEntry(sig, mid)
	if err != nil {
		return nil, err
	}

	strategy := sig.Entry
	if strategy.Kind == "" {
		strategy = model.SingleEntry()
	}
	prices := buildEntryPrices(strategy, ref, sig.Side)

	entryUnits, err := Allocate(sig.Size, make([]float64, len(prices)), meta.SzDecimals)
	if err != nil {
		return nil, err
	}

	orders := make([]types.OrderWire, 0, len(prices)+len(sig.TakeProfits)+len(sig.StopLosses)+1)
	for i, price := range prices {
		wire, err := entryWire(meta, sig.Side, price, entryUnits[i], tif)
		if err != nil {
			return nil, err
		}
		orders = append(orders, wire)
	}

	stops, err := resolveStops(sig, prices)
	if err != nil {
		return nil, err
	}

	tpOrders, err := triggerWires(meta, sig, sig.TakeProfits, types.TpslTakeProfit)
	if err != nil {
		return nil, err
	}
	orders = append(orders, tpOrders...)

	slOrders, err := triggerWires(meta, sig, stops, types.TpslStopLoss)
	if err != nil {
		return nil, err
	}
	orders = append(orders, slOrders...)

	grouping := types.GroupingNone
	if len(sig.TakeProfits) > 0 {
		grouping = types.GroupingPositionTpsl
	}
	return &types.OrderPayload{Orders: orders, Grouping: grouping}, nil
}

// resolveEntry 定出入场参考价和 TIF
// 显式入场价优先；否则按中间价加滑点，方向利于成交
func (e *Engine) resolveEntry(sig *model.TradeSignal, mid float64) (float64, string, error) {
	tif := types.TifGtc
	if sig.Execution == model.Market {
		tif = types.TifIoc
	}

	if sig.EntryPrice > 0 {
		return sig.EntryPrice, tif, nil
	}
	if mid <= 0 {
		return 0, "", &StaleMetadataError{Symbol: sig.Symbol, Reason: "no mid price available"}
	}

	slip := mid * e.cfg.SlippageBps / 10000
	if sig.Side.IsBuy() {
		return mid + slip, tif, nil
	}
	return mid - slip, tif, nil
}

// resolveStops 把追踪止损折算进显式止损档
// 有显式止损时收紧最贴近持仓的那一档，没有时追踪价自成一档
func resolveStops(sig *model.TradeSignal, entryPrices []float64) ([]model.PriceLevel, error) {
	stops := make([]model.PriceLevel, len(sig.StopLosses))
	copy(stops, sig.StopLosses)

	if sig.Trailing == nil {
		return stops, nil
	}

	basis := extremeEntryPrice(entryPrices, sig.Side)
	dist := sig.Trailing.Value
	if sig.Trailing.Mode == model.TrailingPercent {
		dist = basis * sig.Trailing.Value / 100
	}
	if dist <= 0 {
		return nil, fmt.Errorf("trailing stop distance %v is not positive", sig.Trailing.Value)
	}

	trailPrice := basis - dist
	if !sig.Side.IsBuy() {
		trailPrice = basis + dist
	}
	if trailPrice <= 0 {
		return nil, fmt.Errorf("trailing stop price %v below zero for %s", trailPrice, sig.Symbol)
	}
	if sig.Side.IsBuy() && trailPrice >= basis {
		return nil, fmt.Errorf("trailing stop %v is not below the entry basis %v", trailPrice, basis)
	}
	if !sig.Side.IsBuy() && trailPrice <= basis {
		return nil, fmt.Errorf("trailing stop %v is not above the entry basis %v", trailPrice, basis)
	}

	if len(stops) == 0 {
		return []model.PriceLevel{{Price: trailPrice, Label: "trail"}}, nil
	}

	tightest := 0
	for i, level := range stops {
		if sig.Side.IsBuy() {
			if level.Price > stops[tightest].Price {
				tightest = i
			}
		} else if level.Price < stops[tightest].Price {
			tightest = i
		}
	}
	if sig.Side.IsBuy() {
		if trailPrice > stops[tightest].Price {
			stops[tightest].Price = trailPrice
		}
	} else if trailPrice < stops[tightest].Price {
		stops[tightest].Price = trailPrice
	}
	return stops, nil
}

func entryWire(meta AssetMeta, side model.Side, price float64, units int64, tif string) (types.OrderWire, error) {
	priceStr, err := FormatPrice(price)
	if err != nil {
		return types.OrderWire{}, err
	}
	return types.OrderWire{
		AssetId:    meta.ID,
		IsBuy:      side.IsBuy(),
		Price:      priceStr,
		Size:       UnitsToSize(units, meta.SzDecimals),
		ReduceOnly: false,
		OrderType:  types.OrderTypeWire{Limit: &types.LimitOrderType{Tif: tif}},
	}, nil
}

// triggerWires 平仓侧的触发单：reduce-only、触发即市价
func triggerWires(meta AssetMeta, sig *model.TradeSignal, levels []model.PriceLevel, tpsl string) ([]types.OrderWire, error) {
	if len(levels) == 0 {
		return nil, nil
	}

	fractions := make([]float64, len(levels))
	for i, level := range levels {
		fractions[i] = level.Fraction
	}
	units, err := Allocate(sig.Size, fractions, meta.SzDecimals)
	if err != nil {
		return nil, err
	}

	wires := make([]types.OrderWire, 0, len(levels))
	for i, level := range levels {
		priceStr, err := FormatPrice(level.Price)
		if err != nil {
			return nil, fmt.Errorf("%s level %d: %w", tpsl, i+1, err)
		}
		wires = append(wires, types.OrderWire{
			AssetId:    meta.ID,
			IsBuy:      !sig.Side.IsBuy(),
			Price:      priceStr,
			Size:       UnitsToSize(units[i], meta.SzDecimals),
			ReduceOnly: true,
			OrderType: types.OrderTypeWire{
				Trigger: &types.TriggerOrderType{
					IsMarket:     true,
					TriggerPrice: priceStr,
					Tpsl:         tpsl,
				},
			},
		})
	}
	return wires, nil
}
