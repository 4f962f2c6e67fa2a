package service

import "errors"

var (
	ErrNotFound             = errors.New("not found")
	ErrPostNotFound         = errors.New("post not found")
	ErrAdminNotFound        = errors.New("admin not found")
	ErrSlugExists           = errors.New("slug already exists")
	ErrInvalidSlug          = errors.New("slug must contain only lowercase letters, numbers and single hyphens")
	ErrInvalidStatus        = errors.New("invalid status")
	ErrInvalidReference     = errors.New("invalid reference")
	ErrCredentialsRequired  = errors.New("email and password are required")
	ErrInvalidCredentials   = errors.New("invalid credentials")
	ErrInvalidToken         = errors.New("invalid token")
	ErrCaptchaRequired      = errors.New("captcha required")
	ErrCaptchaInvalid       = errors.New("captcha invalid")
	ErrCaptchaConfigInvalid = errors.New("captcha config invalid")
	ErrWeakPassword         = errors.New("password does not meet the policy")
)

// ValidationError 字段级校验错误
type ValidationError struct {
	Field   string
	Message string
	Err     error
}

func (e *ValidationError) Error() string {
	return e.Message
}

func (e *ValidationError) Unwrap() error {
	return e.Err
}

func newValidationError(field, message string) error {
	return &ValidationError{Field: field, Message: message}
}

func newReferenceError(field string) error {
	return &ValidationError{
		Field:   field,
		Message: field + " does not reference an existing record",
		Err:     ErrInvalidReference,
	}
}
