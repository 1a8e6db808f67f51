package errors

// ErrorCode represents a machine-readable error code.
type ErrorCode string

// Expression errors
const (
	// ErrCodeParse indicates a malformed or empty stage.
	ErrCodeParse ErrorCode = "PARSE_ERROR"
	// ErrCodeUnknownConverter indicates a converter name absent from the table required by the accumulator.
	ErrCodeUnknownConverter ErrorCode = "UNKNOWN_CONVERTER"
	// ErrCodeInvalidArgument indicates a wrong argument count or shape.
	ErrCodeInvalidArgument ErrorCode = "INVALID_ARGUMENT"
	// ErrCodeTypeMismatch indicates a value that does not have the shape a converter requires.
	ErrCodeTypeMismatch ErrorCode = "TYPE_MISMATCH"
	// ErrCodeMethodNotFound indicates an unknown coercion target or unsupported source type.
	ErrCodeMethodNotFound ErrorCode = "METHOD_NOT_FOUND"
	// ErrCodePropertyNotFound indicates a property or path that could not be resolved.
	ErrCodePropertyNotFound ErrorCode = "PROPERTY_NOT_FOUND"
)

// Provider errors
const (
	// ErrCodeProviderExecution indicates a script, evaluator or resolver failed internally.
	ErrCodeProviderExecution ErrorCode = "PROVIDER_EXECUTION"
	// ErrCodeScriptFunctionNotFound indicates the named script function does not exist.
	ErrCodeScriptFunctionNotFound ErrorCode = "SCRIPT_FUNCTION_NOT_FOUND"
	// ErrCodeResourceLimitExceeded indicates a script exceeded its memory, time or call-depth budget.
	ErrCodeResourceLimitExceeded ErrorCode = "RESOURCE_LIMIT_EXCEEDED"
)

// Setup errors
const (
	// ErrCodeAlreadyRegistered indicates a duplicate converter name in one table.
	ErrCodeAlreadyRegistered ErrorCode = "ALREADY_REGISTERED"
	// ErrCodeRegistrySealed indicates registration after an engine was built.
	ErrCodeRegistrySealed ErrorCode = "REGISTRY_SEALED"
	// ErrCodeInvalidConfig indicates configuration that failed validation.
	ErrCodeInvalidConfig ErrorCode = "INVALID_CONFIG"
	// ErrCodeInternal indicates an unexpected failure.
	ErrCodeInternal ErrorCode = "INTERNAL_ERROR"
)
