package types

// 提交给交易所的订单批次结构

const (
	TifGtc = "Gtc"
	TifIoc = "Ioc"

	TpslTakeProfit = "tp"
	TpslStopLoss   = "sl"

	GroupingPositionTpsl = "positionTpsl"
	GroupingNone         = "na"
)

// LimitOrderType 入场单的限价描述
type LimitOrderType struct {
	Tif string `json:"tif"` // Gtc / Ioc
}

// TriggerOrderType 止盈止损的触发单描述
type TriggerOrderType struct {
	IsMarket     bool   `json:"isMarket"`
	TriggerPrice string `json:"triggerPx"`
	Tpsl         string `json:"tpsl"` // tp / sl
}

// OrderTypeWire 二选一：限价或触发
type OrderTypeWire struct {
	Limit   *LimitOrderType   `json:"limit,omitempty"`
	Trigger *TriggerOrderType `json:"trigger,omitempty"`
}

// OrderWire 单笔订单描述，价格和数量都是已格式化的字符串
type OrderWire struct {
	AssetId    int           `json:"assetId"`
	IsBuy      bool          `json:"isBuy"`
	Price      string        `json:"price"`
	Size       string        `json:"size"`
	ReduceOnly bool          `json:"reduceOnly"`
	OrderType  OrderTypeWire `json:"orderType"`
}

// OrderPayload 一次信号产出的完整订单批次，构造完成后不再修改
type OrderPayload struct {
	Orders   []OrderWire `json:"orders"`
	Grouping string      `json:"grouping"` // positionTpsl / na
}

// OrderResponse 交易所对订单批次的应答
type OrderResponse struct {
	Status   string             `json:"status"`
	Response *OrderResponseData `json:"response,omitempty"`
}

type OrderResponseData struct {
	Type string              `json:"type"`
	Data *OrderResponseBatch `json:"data,omitempty"`
}

type OrderResponseBatch struct {
	Statuses []OrderStatus `json:"statuses"`
}

type OrderStatus struct {
	Resting *RestingOrder `json:"resting,omitempty"`
	Filled  *FilledOrder  `json:"filled,omitempty"`
	Error   string        `json:"error,omitempty"`
}

type RestingOrder struct {
	Oid int64 `json:"oid"`
}

type FilledOrder struct {
	Oid     int64  `json:"oid"`
	TotalSz string `json:"totalSz"`
	AvgPx   string `json:"avgPx"`
}
