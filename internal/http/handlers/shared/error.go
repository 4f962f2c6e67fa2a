package shared

import (
	"errors"

	"github.com/inkpost/internal/http/response"
	"github.com/inkpost/internal/logger"
	"github.com/inkpost/internal/service"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// RequestLog 提供携带 request_id 的日志实例。
func RequestLog(c *gin.Context) *zap.SugaredLogger {
	if id := response.RequestID(c); id != "" {
		return logger.SW("request_id", id)
	}
	return logger.S()
}

// RespondError 返回错误响应，并在有原始错误时记录日志。
func RespondError(c *gin.Context, code int, msg string, err error) {
	RespondAppError(c, response.NewAppError(code, msg, err))
}

// RespondAppError 输出对外错误，携带内部原因时按类别记录日志
func RespondAppError(c *gin.Context, appErr *response.AppError) {
	if appErr != nil && appErr.Err != nil {
		RequestLog(c).Errorw("handler_error",
			"class", appErr.Class(),
			"code", appErr.Status,
			"message", appErr.Message,
			"path", c.FullPath(),
			"error", appErr.Err,
		)
	}
	response.Render(c, appErr, false)
}

// MappedError 业务错误到接口错误响应的映射
type MappedError struct {
	Target error
	Code   int
	Msg    string
}

// ServiceErrorRules 通用业务错误映射
var ServiceErrorRules = []MappedError{
	{Target: service.ErrPostNotFound, Code: response.CodeNotFound, Msg: "Post not found"},
	{Target: service.ErrAdminNotFound, Code: response.CodeNotFound, Msg: "Admin not found"},
	{Target: service.ErrNotFound, Code: response.CodeNotFound, Msg: response.MsgNotFound},
	{Target: service.ErrSlugExists, Code: response.CodeConflict, Msg: response.MsgSlugExists},
	{Target: service.ErrInvalidStatus, Code: response.CodeBadRequest, Msg: "status must be one of draft, scheduled, published or all"},
	{Target: service.ErrCredentialsRequired, Code: response.CodeBadRequest, Msg: "Email and password are required"},
	{Target: service.ErrInvalidCredentials, Code: response.CodeUnauthorized, Msg: "Invalid credentials"},
	{Target: service.ErrCaptchaRequired, Code: response.CodeBadRequest, Msg: "Captcha is required"},
	{Target: service.ErrCaptchaInvalid, Code: response.CodeBadRequest, Msg: "Captcha is invalid"},
}

// RespondServiceError 按映射规则输出业务错误，未命中时返回 500 并记录日志。
func RespondServiceError(c *gin.Context, err error) {
	var validationErr *service.ValidationError
	if errors.As(err, &validationErr) {
		RespondError(c, response.CodeBadRequest, validationErr.Message, nil)
		return
	}
	for _, rule := range ServiceErrorRules {
		if errors.Is(err, rule.Target) {
			RespondError(c, rule.Code, rule.Msg, nil)
			return
		}
	}
	RespondAppError(c, response.Internal(err))
}
