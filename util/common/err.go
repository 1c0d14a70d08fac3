package common

import (
	"errors"
	"fmt"

	"github.com/ycr/usercenter/logger"
)

// ErrorCode is the numeric code carried in the response envelope.
type ErrorCode int

const (
	CodeSuccess     ErrorCode = 0
	CodeParams      ErrorCode = 40000
	CodeNotLogin    ErrorCode = 40100
	CodeNoAuth      ErrorCode = 40101
	CodeLoginFailed ErrorCode = 40102
	CodeConflict    ErrorCode = 40900
	CodeSystem      ErrorCode = 50000
)

// MessageKey is the translation key describing the code.
func (c ErrorCode) MessageKey() string {
	switch c {
	case CodeSuccess:
		return "code.success"
	case CodeParams:
		return "code.params"
	case CodeNotLogin:
		return "code.notLogin"
	case CodeNoAuth:
		return "code.noAuth"
	case CodeLoginFailed:
		return "code.loginFailed"
	case CodeConflict:
		return "code.conflict"
	default:
		return "code.system"
	}
}

// BizError is a domain failure that the web layer turns into an envelope.
type BizError struct {
	Code   ErrorCode
	Detail string
	Err    error
}

func (e *BizError) Error() string {
	msg := fmt.Sprintf("code %d", e.Code)
	if e.Detail != "" {
		msg += ": " + e.Detail
	}
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *BizError) Unwrap() error {
	return e.Err
}

// Is matches another *BizError by code, so errors.Is(err, ErrNoAuth) works
// whatever the detail.
func (e *BizError) Is(target error) bool {
	t, ok := target.(*BizError)
	return ok && t.Code == e.Code
}

var (
	ErrParams      = &BizError{Code: CodeParams}
	ErrNotLogin    = &BizError{Code: CodeNotLogin}
	ErrNoAuth      = &BizError{Code: CodeNoAuth}
	ErrLoginFailed = &BizError{Code: CodeLoginFailed}
	ErrConflict    = &BizError{Code: CodeConflict}
)

func NewBizError(code ErrorCode, format string, a ...any) *BizError {
	return &BizError{Code: code, Detail: fmt.Sprintf(format, a...)}
}

func Validation(format string, a ...any) error {
	return NewBizError(CodeParams, format, a...)
}

func NoAuth(format string, a ...any) error {
	return NewBizError(CodeNoAuth, format, a...)
}

func Conflict(format string, a ...any) error {
	return NewBizError(CodeConflict, format, a...)
}

// Internal wraps an unexpected store or runtime failure.
func Internal(err error) error {
	if err == nil {
		return nil
	}
	return &BizError{Code: CodeSystem, Err: err}
}

// CodeOf returns the envelope code for err; non-domain errors are internal.
func CodeOf(err error) ErrorCode {
	if err == nil {
		return CodeSuccess
	}
	var bizErr *BizError
	if errors.As(err, &bizErr) {
		return bizErr.Code
	}
	return CodeSystem
}

// DetailOf returns the client-facing detail of err. Causes of internal
// errors are not exposed.
func DetailOf(err error) string {
	var bizErr *BizError
	if errors.As(err, &bizErr) {
		return bizErr.Detail
	}
	return ""
}

func NewErrorf(format string, a ...any) error {
	msg := fmt.Sprintf(format, a...)
	return errors.New(msg)
}

func NewError(a ...any) error {
	msg := fmt.Sprintln(a...)
	return errors.New(msg)
}

// Combine joins the non-nil errors, returning nil when there are none.
func Combine(errs ...error) error {
	return errors.Join(errs...)
}

func Recover(msg string) any {
	panicErr := recover()
	if panicErr != nil {
		if msg != "" {
			logger.Error(msg, "panic:", panicErr)
		}
	}
	return panicErr
}
