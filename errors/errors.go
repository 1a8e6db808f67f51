package errors

import (
	stderrors "errors"
	"fmt"
	"net/http"
)

// AppError is the unified error type.
type AppError struct {
	// Code is a machine-readable error code.
	Code ErrorCode `json:"code"`
	// Message is a human-readable error message.
	Message string `json:"message"`
	// HTTPStatus is the recommended HTTP status code for this error.
	HTTPStatus int `json:"-"`
	// Details contains additional context for the error.
	Details map[string]any `json:"details,omitempty"`
	// Cause is the underlying error that caused this error.
	Cause error `json:"-"`
}

// Error returns the string representation of the error.
func (e *AppError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s (cause: %v)", e.Code, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// Unwrap returns the underlying cause of the error.
func (e *AppError) Unwrap() error { return e.Cause }

// WithCause sets the underlying cause of the error and returns the receiver.
func (e *AppError) WithCause(cause error) *AppError {
	e.Cause = cause
	return e
}

// WithDetail sets a single detail key-value pair and returns the receiver.
func (e *AppError) WithDetail(key string, value any) *AppError {
	if e.Details == nil {
		e.Details = make(map[string]any)
	}
	e.Details[key] = value
	return e
}

// New creates a new AppError.
func New(code ErrorCode, message string, httpStatus int) *AppError {
	return &AppError{
		Code:       code,
		Message:    message,
		HTTPStatus: httpStatus,
	}
}

// CodeOf returns the code of the first AppError in err's chain, or "" if there is none.
func CodeOf(err error) ErrorCode {
	if appErr, ok := AsAppError(err); ok {
		return appErr.Code
	}
	return ""
}

// Is reports whether err's chain contains an AppError with the given code.
func Is(err error, code ErrorCode) bool {
	for err != nil {
		var appErr *AppError
		if !stderrors.As(err, &appErr) {
			return false
		}
		if appErr.Code == code {
			return true
		}
		err = appErr.Cause
	}
	return false
}

// --- Constructors ---

// Parse creates an AppError for a malformed expression.
func Parse(reason string) *AppError {
	return &AppError{
		Code: ErrCodeParse, Message: reason,
		HTTPStatus: http.StatusBadRequest,
	}
}

// UnknownConverter creates an AppError for a converter missing from the required table.
// table is "unary" or "n-ary".
func UnknownConverter(name, table string) *AppError {
	return &AppError{
		Code: ErrCodeUnknownConverter, Message: fmt.Sprintf("converter %q not found in %s table", name, table),
		HTTPStatus: http.StatusBadRequest,
		Details:    map[string]any{"name": name, "table": table},
	}
}

// InvalidArgument creates an AppError for a wrong argument count or shape.
func InvalidArgument(converter, reason string) *AppError {
	return &AppError{
		Code: ErrCodeInvalidArgument, Message: fmt.Sprintf("%s: %s", converter, reason),
		HTTPStatus: http.StatusBadRequest,
		Details:    map[string]any{"converter": converter},
	}
}

// TypeMismatch creates an AppError for a value of the wrong type.
func TypeMismatch(converter, expected string, got any) *AppError {
	return &AppError{
		Code: ErrCodeTypeMismatch, Message: fmt.Sprintf("%s: expected %s, got %T", converter, expected, got),
		HTTPStatus: http.StatusUnprocessableEntity,
		Details:    map[string]any{"converter": converter, "expected": expected, "got": fmt.Sprintf("%T", got)},
	}
}

// MethodNotFound creates an AppError for an unknown coercion target.
func MethodNotFound(method string, valueType any) *AppError {
	return &AppError{
		Code: ErrCodeMethodNotFound, Message: fmt.Sprintf("unknown method %s for %T", method, valueType),
		HTTPStatus: http.StatusBadRequest,
		Details:    map[string]any{"method": method, "type": fmt.Sprintf("%T", valueType)},
	}
}

// PropertyNotFound creates an AppError for a property or path that did not resolve.
func PropertyNotFound(path string, object any) *AppError {
	return &AppError{
		Code: ErrCodePropertyNotFound, Message: fmt.Sprintf("property %q not found on %T", path, object),
		HTTPStatus: http.StatusUnprocessableEntity,
		Details:    map[string]any{"path": path},
	}
}

// ProviderExecution creates an AppError for a provider that failed internally.
func ProviderExecution(provider string, cause error) *AppError {
	return &AppError{
		Code: ErrCodeProviderExecution, Message: fmt.Sprintf("%s provider failed", provider),
		HTTPStatus: http.StatusUnprocessableEntity,
		Details:    map[string]any{"provider": provider}, Cause: cause,
	}
}

// ScriptFunctionNotFound creates an AppError for a missing script function.
func ScriptFunctionNotFound(provider, function string) *AppError {
	return &AppError{
		Code: ErrCodeScriptFunctionNotFound, Message: fmt.Sprintf("unknown %s function %s", provider, function),
		HTTPStatus: http.StatusBadRequest,
		Details:    map[string]any{"provider": provider, "function": function},
	}
}

// ResourceLimitExceeded creates an AppError for a script that exceeded a budget.
// limit is one of "timeout", "memory" or "call_depth".
func ResourceLimitExceeded(provider, limit string, cause error) *AppError {
	return &AppError{
		Code: ErrCodeResourceLimitExceeded, Message: fmt.Sprintf("%s provider exceeded its %s limit", provider, limit),
		HTTPStatus: http.StatusUnprocessableEntity,
		Details:    map[string]any{"provider": provider, "limit": limit}, Cause: cause,
	}
}

// AlreadyRegistered creates an AppError for a duplicate converter name.
func AlreadyRegistered(name, table string) *AppError {
	return &AppError{
		Code: ErrCodeAlreadyRegistered, Message: fmt.Sprintf("converter %q already registered in %s table", name, table),
		HTTPStatus: http.StatusConflict,
		Details:    map[string]any{"name": name, "table": table},
	}
}

// RegistrySealed creates an AppError for registration after the registry was sealed.
func RegistrySealed(name string) *AppError {
	return &AppError{
		Code: ErrCodeRegistrySealed, Message: fmt.Sprintf("cannot register %q: registry is sealed", name),
		HTTPStatus: http.StatusConflict,
		Details:    map[string]any{"name": name},
	}
}

// InvalidConfig creates an AppError for configuration that failed validation.
func InvalidConfig(message string) *AppError {
	return &AppError{
		Code: ErrCodeInvalidConfig, Message: message,
		HTTPStatus: http.StatusBadRequest,
	}
}

// Internal creates a new AppError for an unexpected failure.
func Internal(cause error) *AppError {
	return &AppError{
		Code: ErrCodeInternal, Message: "An unexpected error occurred.",
		HTTPStatus: http.StatusInternalServerError, Cause: cause,
	}
}
