package consts

// gin context 中透传的键
const (
	RequestId = "request_id"
	Signature = "X-Signature"
	Timestamp = "X-Timestamp"
)
