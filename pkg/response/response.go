package response

import (
	"net/http"

	"sigflow/internal/consts"
	"sigflow/pkg/errors"
	"sigflow/pkg/errors/ecode"

	"github.com/gin-gonic/gin"
)

// 响应给客户端的消息结构，包括错误码，错误信息，响应数据
type ApiResponse struct {
	RequestId string      `json:"request_id"` // 请求的唯一ID
	Code      int         `json:"code"`       // 错误码 0表示无错误
	Message   string      `json:"message"`    // 提示信息
	Data      interface{} `json:"data"`       // 响应数据
}

// 发送json格式数据
func JSON(c *gin.Context, err error, data interface{}) {
	code, message := errors.DecodeErr(err)
	// code != 0 时返回 http 400，成功返回 200
	var httpStatus int
	if code != ecode.Success {
		httpStatus = http.StatusBadRequest
	} else {
		httpStatus = http.StatusOK
	}
	c.JSON(httpStatus, ApiResponse{
		RequestId: c.GetString(consts.RequestId),
		Code:      code,
		Message:   message,
		Data:      data,
	})
}

// 请求频繁，返回429
func TooManyRequests(c *gin.Context) {
	c.JSON(http.StatusTooManyRequests, ApiResponse{
		RequestId: c.GetString(consts.RequestId),
		Code:      ecode.InvalidParams,
		Message:   "The request is too frequent. Please try again later.",
		Data:      nil,
	})
}

// 缺少签名等基本要素，返回400
func BadRequests(c *gin.Context) {
	c.JSON(http.StatusBadRequest, ApiResponse{
		RequestId: c.GetString(consts.RequestId),
		Code:      ecode.InvalidParams,
		Message:   "Invalid request, missing signature.",
		Data:      nil,
	})
}
