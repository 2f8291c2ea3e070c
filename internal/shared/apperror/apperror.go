package apperror

import (
	"errors"
	"fmt"
	"net/http"

	validation "github.com/go-ozzo/ozzo-validation/v4"
)

// Kind groups errors by how callers must react to them
type Kind string

const (
	KindValidation        Kind = "validation"
	KindNotFound          Kind = "not_found"
	KindConflict          Kind = "conflict"
	KindInsufficientFunds Kind = "insufficient_funds"
	KindFraudThreshold    Kind = "fraud_threshold"
	KindForbidden         Kind = "forbidden"
	KindInternal          Kind = "internal"
)

// AppError là error có code ổn định để trả về client
type AppError struct {
	Kind       Kind                   `json:"-"`
	Code       string                 `json:"code"`
	Message    string                 `json:"message"`
	Details    map[string]interface{} `json:"details,omitempty"`
	HTTPStatus int                    `json:"-"`
}

func (e *AppError) Error() string {
	return e.Message
}

// Is matches on Code so that wrapped copies (WithDetails) still compare equal
func (e *AppError) Is(target error) bool {
	t, ok := target.(*AppError)
	if !ok {
		return false
	}
	return e.Code == t.Code
}

// WithDetails returns a copy carrying extra context for the response body
func (e *AppError) WithDetails(details map[string]interface{}) *AppError {
	cp := *e
	cp.Details = details
	return &cp
}

func New(kind Kind, code, message string) *AppError {
	return &AppError{
		Kind:       kind,
		Code:       code,
		Message:    message,
		HTTPStatus: statusFor(kind),
	}
}

func Validation(code, message string) *AppError { return New(KindValidation, code, message) }
func NotFound(code, message string) *AppError   { return New(KindNotFound, code, message) }
func Conflict(code, message string) *AppError   { return New(KindConflict, code, message) }
func Forbidden(code, message string) *AppError  { return New(KindForbidden, code, message) }

func InsufficientFunds(code, message string) *AppError {
	return New(KindInsufficientFunds, code, message)
}

func FraudThreshold(code, message string) *AppError {
	return New(KindFraudThreshold, code, message)
}

// Validationf builds a one-off validation error, used for ozzo-validation output
func Validationf(format string, args ...interface{}) *AppError {
	return Validation("VAL_INVALID_INPUT", fmt.Sprintf(format, args...))
}

// FromValidation converts ozzo-validation output into a validation AppError with per-field details
func FromValidation(err error) *AppError {
	var fieldErrs validation.Errors
	if errors.As(err, &fieldErrs) {
		details := make(map[string]interface{}, len(fieldErrs))
		for field, fieldErr := range fieldErrs {
			details[field] = fieldErr.Error()
		}
		return Validation("VAL_INVALID_INPUT", "Dữ liệu không hợp lệ").WithDetails(details)
	}
	return Validationf("%s", err.Error())
}

// KindOf returns the Kind of the first AppError in the chain, or KindInternal
func KindOf(err error) Kind {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.Kind
	}
	return KindInternal
}

func IsKind(err error, kind Kind) bool {
	return err != nil && KindOf(err) == kind
}

func statusFor(kind Kind) int {
	switch kind {
	case KindValidation:
		return http.StatusBadRequest
	case KindNotFound:
		return http.StatusNotFound
	case KindConflict:
		return http.StatusConflict
	case KindInsufficientFunds:
		return http.StatusUnprocessableEntity
	case KindFraudThreshold:
		return http.StatusForbidden
	case KindForbidden:
		return http.StatusForbidden
	default:
		return http.StatusInternalServerError
	}
}

var ErrAdminRequired = Forbidden("AUTH_ADMIN_REQUIRED", "Yêu cầu quyền quản trị")
