package response

import "net/http"

const (
	CodeBadRequest         = http.StatusBadRequest
	CodeUnauthorized       = http.StatusUnauthorized
	CodeForbidden          = http.StatusForbidden
	CodeNotFound           = http.StatusNotFound
	CodeConflict           = http.StatusConflict
	CodeRequestTooLarge    = http.StatusRequestEntityTooLarge
	CodeTooManyRequests    = http.StatusTooManyRequests
	CodeInternal           = http.StatusInternalServerError
	CodeServiceUnavailable = http.StatusServiceUnavailable
)

// 对外错误文案
const (
	MsgBadRequest      = "Bad request"
	MsgUnauthorized    = "Unauthorized"
	MsgForbidden       = "Forbidden"
	MsgNotFound        = "Not found"
	MsgInternal        = "Internal server error"
	MsgTooLarge        = "Request body too large"
	MsgTooManyRequests = "Too many requests"
	MsgSlugExists      = "Slug already exists"
)
