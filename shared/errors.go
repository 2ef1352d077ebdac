package shared

import (
	"errors"
	"fmt"
	"net/http"
)

var (
	ErrNotFound           = errors.New("not found")
	ErrValidation         = errors.New("validation failed")
	ErrDailyLimitExceeded = errors.New("daily limit exceeded")
	ErrInsufficientFunds  = errors.New("insufficient funds")
	ErrRateLimited        = errors.New("rate limited")
	ErrGenerationFailed   = errors.New("generation failed")
	ErrVersionConflict    = errors.New("version conflict")
	ErrUnauthorized       = errors.New("unauthorized")
	ErrForbidden          = errors.New("forbidden")
)

const (
	CodeNotFound           = "NOT_FOUND"
	CodeBadRequest         = "BAD_REQUEST"
	CodeValidation         = "VALIDATION_ERROR"
	CodeDailyLimitExceeded = "DAILY_LIMIT_EXCEEDED"
	CodeInsufficientFunds  = "INSUFFICIENT_FUNDS"
	CodeRateLimited        = "RATE_LIMITED"
	CodeGenerationFailed   = "GENERATION_FAILED"
	CodeStorageFailed      = "STORAGE_FAILED"
	CodeUnauthorized       = "UNAUTHORIZED"
	CodeForbidden          = "FORBIDDEN"
	CodeInternal           = "INTERNAL_ERROR"
)

// AppError carries an HTTP status and a client-safe message. Err holds the
// underlying cause for logs and errors.Is, it is never rendered.
type AppError struct {
	StatusCode int
	Code       string
	Message    string
	Data       interface{}
	Err        error
}

func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *AppError) Unwrap() error {
	return e.Err
}

type DailyLimitDetails struct {
	Kind  string `json:"kind"`
	Limit int    `json:"limit"`
}

type InsufficientFundsDetails struct {
	CreditsNeeded  int `json:"creditsNeeded"`
	CurrentCredits int `json:"currentCredits"`
}

func wrap(sentinel, cause error) error {
	if cause == nil {
		return sentinel
	}
	return fmt.Errorf("%w: %w", sentinel, cause)
}

func NewNotFoundError(err error, message string) *AppError {
	return &AppError{StatusCode: http.StatusNotFound, Code: CodeNotFound, Message: message, Err: wrap(ErrNotFound, err)}
}

func NewBadRequestError(err error, message string) *AppError {
	return &AppError{StatusCode: http.StatusBadRequest, Code: CodeBadRequest, Message: message, Err: wrap(ErrValidation, err)}
}

func NewValidationError(message string, details interface{}) *AppError {
	return &AppError{StatusCode: http.StatusBadRequest, Code: CodeValidation, Message: message, Data: details, Err: ErrValidation}
}

func NewUnauthorizedError(err error, message string) *AppError {
	return &AppError{StatusCode: http.StatusUnauthorized, Code: CodeUnauthorized, Message: message, Err: wrap(ErrUnauthorized, err)}
}

func NewForbiddenError(err error, message string) *AppError {
	return &AppError{StatusCode: http.StatusForbidden, Code: CodeForbidden, Message: message, Err: wrap(ErrForbidden, err)}
}

func NewInternalError(err error, message string) *AppError {
	return &AppError{StatusCode: http.StatusInternalServerError, Code: CodeInternal, Message: message, Err: err}
}

func NewDailyLimitError(kind string, limit int) *AppError {
	return &AppError{
		StatusCode: http.StatusTooManyRequests,
		Code:       CodeDailyLimitExceeded,
		Message:    fmt.Sprintf("Daily %s limit of %d reached", kind, limit),
		Data:       DailyLimitDetails{Kind: kind, Limit: limit},
		Err:        ErrDailyLimitExceeded,
	}
}

func NewInsufficientFundsError(needed, current int) *AppError {
	return &AppError{
		StatusCode: http.StatusPaymentRequired,
		Code:       CodeInsufficientFunds,
		Message:    fmt.Sprintf("Unlocking this photo costs %d credits", needed),
		Data:       InsufficientFundsDetails{CreditsNeeded: needed, CurrentCredits: current},
		Err:        ErrInsufficientFunds,
	}
}

func NewRateLimitedError(err error, message string) *AppError {
	return &AppError{StatusCode: http.StatusTooManyRequests, Code: CodeRateLimited, Message: message, Err: wrap(ErrRateLimited, err)}
}

func NewGenerationFailedError(err error) *AppError {
	return &AppError{StatusCode: http.StatusBadGateway, Code: CodeGenerationFailed, Message: "Reply generation failed", Err: wrap(ErrGenerationFailed, err)}
}

func GetAppError(err error) (*AppError, bool) {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr, true
	}
	return nil, false
}
