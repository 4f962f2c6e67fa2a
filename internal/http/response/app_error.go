package response

import (
	"fmt"

	"github.com/gin-gonic/gin"
)

// AppError 对外错误：状态码与文案返回给客户端，Err 只进日志
type AppError struct {
	Status  int
	Message string
	Err     error
}

// NewAppError 创建对外错误
func NewAppError(status int, message string, err error) *AppError {
	return &AppError{Status: status, Message: message, Err: err}
}

func (e *AppError) Error() string {
	if e.Err == nil {
		return e.Message
	}
	return fmt.Sprintf("%s: %v", e.Message, e.Err)
}

func (e *AppError) Unwrap() error {
	return e.Err
}

// Class 错误类别，日志按类别聚合
func (e *AppError) Class() string {
	switch e.Status {
	case CodeBadRequest:
		return "validation"
	case CodeUnauthorized:
		return "unauthenticated"
	case CodeForbidden:
		return "forbidden"
	case CodeNotFound:
		return "not_found"
	case CodeConflict:
		return "conflict"
	case CodeRequestTooLarge:
		return "too_large"
	case CodeTooManyRequests:
		return "rate_limited"
	case CodeServiceUnavailable:
		return "unavailable"
	default:
		return "internal"
	}
}

// Conflict 409，唯一约束冲突
func Conflict(message string) *AppError {
	return NewAppError(CodeConflict, message, nil)
}

// RateLimited 429，文案带上重试等待秒数
func RateLimited(retryAfterSeconds int) *AppError {
	return NewAppError(CodeTooManyRequests, fmt.Sprintf("%s, retry in %ds", MsgTooManyRequests, retryAfterSeconds), nil)
}

// Internal 500，原始错误只记录不外露
func Internal(err error) *AppError {
	return NewAppError(CodeInternal, MsgInternal, err)
}

// Render 输出错误；abort 为 true 时终止后续中间件
func Render(c *gin.Context, e *AppError, abort bool) {
	if e == nil {
		e = Internal(nil)
	}
	if abort {
		Abort(c, e.Status, e.Message)
		return
	}
	Error(c, e.Status, e.Message)
}
