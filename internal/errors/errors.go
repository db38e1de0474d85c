package errors

import (
	stderrors "errors"
	"fmt"
)

type AppError struct {
	Code    string
	Message string
	Cause   error
}

func (e *AppError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("[%s] %s: %v", e.Code, e.Message, e.Cause)
	}
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

func (e *AppError) Unwrap() error {
	return e.Cause
}

// Is matches on Code so wrapped or re-created errors compare equal to the sentinels.
func (e *AppError) Is(target error) bool {
	t, ok := target.(*AppError)
	if !ok {
		return false
	}
	return e.Code == t.Code
}

func New(code, message string, cause ...error) *AppError {
	var c error
	if len(cause) > 0 {
		c = cause[0]
	}
	return &AppError{
		Code:    code,
		Message: message,
		Cause:   c,
	}
}

var (
	ErrConfigNotFound = &AppError{Code: "CONFIG_001", Message: "configuration not found"}
	ErrConfigInvalid  = &AppError{Code: "CONFIG_002", Message: "invalid configuration"}

	ErrMalformedNumber           = &AppError{Code: "AMOUNT_001", Message: "malformed number"}
	ErrMultipleDecimalSeparators = &AppError{Code: "AMOUNT_002", Message: "multiple decimal separators"}
	ErrNonPositiveAmount         = &AppError{Code: "AMOUNT_003", Message: "amount must be greater than zero"}
	ErrAmountTooLarge            = &AppError{Code: "AMOUNT_004", Message: "amount too large"}

	ErrUnrecognizedFormat = &AppError{Code: "PARSE_001", Message: "unrecognized format"}

	ErrInvalidCategory = &AppError{Code: "CATEGORY_001", Message: "invalid category"}

	ErrGoalNotFound  = &AppError{Code: "GOAL_001", Message: "goal not found"}
	ErrGoalNotActive = &AppError{Code: "GOAL_002", Message: "goal is not active"}

	ErrInvalidInput = &AppError{Code: "ONBOARD_001", Message: "invalid input"}

	ErrLedgerUnavailable = &AppError{Code: "LEDGER_001", Message: "ledger unavailable"}

	ErrChannelNotConfigured = &AppError{Code: "CHAN_001", Message: "channel not configured"}

	ErrUnauthorized = &AppError{Code: "AUTH_001", Message: "unauthorized"}

	ErrNotFound   = &AppError{Code: "GEN_001", Message: "resource not found"}
	ErrBadRequest = &AppError{Code: "GEN_002", Message: "bad request"}
	ErrInternal   = &AppError{Code: "GEN_003", Message: "internal error"}
)

func IsAppError(err error) bool {
	var appErr *AppError
	return stderrors.As(err, &appErr)
}

func GetCode(err error) string {
	var appErr *AppError
	if stderrors.As(err, &appErr) {
		return appErr.Code
	}
	return "UNKNOWN"
}

func Wrap(err error, code, message string) *AppError {
	return &AppError{
		Code:    code,
		Message: message,
		Cause:   err,
	}
}

// WithDetail returns a copy of the sentinel carrying a more specific message.
func WithDetail(sentinel *AppError, detail string) *AppError {
	return &AppError{
		Code:    sentinel.Code,
		Message: detail,
	}
}
