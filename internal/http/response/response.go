package response

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// Body 成功响应结构
type Body struct {
	Data interface{} `json:"data"`           // 数据内容
	Meta interface{} `json:"meta,omitempty"` // 分页等附加信息
}

// ErrorBody 错误响应结构
type ErrorBody struct {
	Error     string `json:"error"`
	RequestID string `json:"request_id,omitempty"`
}

// ListMeta 列表分页信息
type ListMeta struct {
	Status string `json:"status,omitempty"`
	Limit  int    `json:"limit"`
	Page   int    `json:"page"`
	Total  int64  `json:"total"`
}

// Success 200 响应
func Success(c *gin.Context, data interface{}) {
	c.JSON(http.StatusOK, Body{Data: data})
}

// SuccessWithMeta 200 响应（带分页信息）
func SuccessWithMeta(c *gin.Context, data interface{}, meta interface{}) {
	c.JSON(http.StatusOK, Body{Data: data, Meta: meta})
}

// Created 201 响应
func Created(c *gin.Context, data interface{}) {
	c.JSON(http.StatusCreated, Body{Data: data})
}

// NoContent 204 响应
func NoContent(c *gin.Context) {
	c.Status(http.StatusNoContent)
}

// Error 错误响应，附带 request_id
func Error(c *gin.Context, statusCode int, msg string) {
	c.JSON(statusCode, ErrorBody{Error: msg, RequestID: RequestID(c)})
}

// Abort 错误响应并终止后续处理（中间件使用）
func Abort(c *gin.Context, statusCode int, msg string) {
	c.AbortWithStatusJSON(statusCode, ErrorBody{Error: msg, RequestID: RequestID(c)})
}

// NotFound 404响应
func NotFound(c *gin.Context, msg string) {
	Error(c, CodeNotFound, msg)
}

// Unauthorized 401响应
func Unauthorized(c *gin.Context) {
	Abort(c, CodeUnauthorized, MsgUnauthorized)
}

// Forbidden 403响应
func Forbidden(c *gin.Context) {
	Abort(c, CodeForbidden, MsgForbidden)
}

// BadRequest 400响应
func BadRequest(c *gin.Context, msg string) {
	Error(c, CodeBadRequest, msg)
}

// RequestID 读取当前请求 ID
func RequestID(c *gin.Context) string {
	if c == nil {
		return ""
	}
	if value, ok := c.Get("request_id"); ok {
		if id, ok := value.(string); ok {
			return id
		}
	}
	return ""
}
