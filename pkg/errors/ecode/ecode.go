package ecode

// 业务错误码，0 表示成功
const (
	Success = 0

	InternalErr    = 10001 // 服务内部错误
	InvalidParams  = 10002 // 请求参数错误
	RequireAuthErr = 10003 // 鉴权失败

	ParseErr      = 20001 // 信号文本解析失败
	UnknownSymbol = 20002 // 不支持的交易对
	StaleMetadata = 20003 // 资产元数据不可用
	AllocationErr = 20004 // 仓位数量分配失败
	TransportErr  = 20005 // 请求交易所失败
	RiskRejected  = 20006 // 风控拒绝
	ConstructErr  = 20007 // 订单构造失败
)

var messages = map[int]string{
	Success:        "ok",
	InternalErr:    "internal error",
	InvalidParams:  "invalid request params",
	RequireAuthErr: "auth required",
	ParseErr:       "signal parse failed",
	UnknownSymbol:  "unknown symbol",
	StaleMetadata:  "venue metadata unavailable",
	AllocationErr:  "size allocation failed",
	TransportErr:   "venue request failed",
	RiskRejected:   "rejected by risk engine",
	ConstructErr:   "order construction failed",
}

// Message 返回错误码的默认文案
func Message(code int) string {
	if m, ok := messages[code]; ok {
		return m
	}
	return "unknown error"
}
