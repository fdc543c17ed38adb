package service

import "errors"

type ErrorCode string

const (
	ErrorCodeNotFound    ErrorCode = "NOT_FOUND"
	ErrorCodeConflict    ErrorCode = "CONFLICT"
	ErrorCodeForbidden   ErrorCode = "FORBIDDEN"
	ErrorCodeValidation  ErrorCode = "VALIDATION"
	ErrorCodeUnspecified ErrorCode = "UNSPECIFIED"
)

type Error struct {
	Code    ErrorCode `json:"code"`
	Message string    `json:"message"`
}

func NewError(code ErrorCode, message string) *Error {
	return &Error{
		Code:    code,
		Message: message,
	}
}

func (e *Error) Error() string {
	return e.Message
}

// asServiceError recovers a typed *Error from an error chain, converting
// anything else (commit failures and the like) into UNSPECIFIED.
func asServiceError(err error) *Error {
	if err == nil {
		return nil
	}
	res := &Error{}
	if errors.As(err, &res) {
		return res
	}
	return NewError(ErrorCodeUnspecified, "internal error")
}
