package errors

import (
	"errors"
	"fmt"

	"sigflow/pkg/errors/ecode"
)

// 带业务错误码的错误，供 response 层解码成统一的 JSON 结构

type CodedError struct {
	Code    int
	Message string
	Err     error
}

func (e *CodedError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("code=%d msg=%s err=%v", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("code=%d msg=%s", e.Code, e.Message)
}

func (e *CodedError) Unwrap() error { return e.Err }

// New 创建一个只带错误码的错误
func New(code int, message string) error {
	if message == "" {
		message = ecode.Message(code)
	}
	return &CodedError{Code: code, Message: message}
}

// Wrap 把底层错误包装上业务错误码
func Wrap(err error, code int, message string) error {
	if message == "" {
		message = ecode.Message(code)
	}
	return &CodedError{Code: code, Message: message, Err: err}
}

// DecodeErr 解码出错误码和提示信息
// err 为 nil 时返回成功码
func DecodeErr(err error) (int, string) {
	if err == nil {
		return ecode.Success, ecode.Message(ecode.Success)
	}
	var ce *CodedError
	if errors.As(err, &ce) {
		return ce.Code, ce.Message
	}
	return ecode.InternalErr, err.Error()
}
