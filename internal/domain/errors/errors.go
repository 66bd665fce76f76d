package errors

import (
	"net/http"

	"atelier/internal/errors"
)

// AppError defines the interface for application-specific errors
type AppError interface {
	error
	HTTPCode() int     // HTTP status code
	ErrorCode() string // Business or protocol error code
	Message() string   // User-friendly error message
	Details() string   // Detailed error information (optional)
}

// BaseError is a basic error structure that implements the AppError interface
type BaseError struct {
	httpCode  int
	errorCode string
	message   string
	details   string
}

// NewBaseError creates a new base error
func NewBaseError(httpCode int, errorCode, message, details string) *BaseError {
	return &BaseError{
		httpCode:  httpCode,
		errorCode: errorCode,
		message:   message,
		details:   details,
	}
}

// Error implements the error interface
func (e *BaseError) Error() string {
	return e.message
}

// WrapMessage wraps the error with additional context message
func (e *BaseError) WrapMessage(message string) error {
	return errors.Wrap(e, message)
}

// HTTPCode returns the HTTP status code
func (e *BaseError) HTTPCode() int {
	return e.httpCode
}

// ErrorCode returns the business or protocol error code
func (e *BaseError) ErrorCode() string {
	return e.errorCode
}

// Message returns the user-friendly error message
func (e *BaseError) Message() string {
	return e.message
}

// Details returns detailed error information
func (e *BaseError) Details() string {
	return e.details
}

// WithDetails adds detailed error information
func (e *BaseError) WithDetails(details string) *BaseError {
	return &BaseError{
		httpCode:  e.httpCode,
		errorCode: e.errorCode,
		message:   e.message,
		details:   details,
	}
}

// Predefined error types.
//
// OAuth protocol errors carry the lowercase error codes the token endpoint
// must emit in its {error, error_description} responses.
var (
	// ErrInvalidClient covers unknown client_id, secret mismatch, and grant
	// types the client is not registered for.
	ErrInvalidClient = NewBaseError(
		http.StatusBadRequest,
		"invalid_client",
		"無效的用戶端或密鑰錯誤",
		"",
	)

	// ErrInvalidGrant covers bad account passwords and unknown or expired
	// refresh tokens, as well as unrecognized grant-type strings.
	ErrInvalidGrant = NewBaseError(
		http.StatusBadRequest,
		"invalid_grant",
		"無效的授權憑證",
		"",
	)

	// ErrInvalidScope is returned when the requested scope is not permitted
	// for the client.
	ErrInvalidScope = NewBaseError(
		http.StatusBadRequest,
		"invalid_scope",
		"用戶端不允許請求的權杖範圍",
		"",
	)

	// ErrUnsupportedGrantType is returned for the authorization_code grant,
	// which is recognized but deliberately not implemented.
	ErrUnsupportedGrantType = NewBaseError(
		http.StatusBadRequest,
		"unsupported_grant_type",
		"不支援的授權類型",
		"",
	)

	// ErrInvalidToken is returned when a bearer token cannot be resolved to a
	// live, unexpired token row.
	ErrInvalidToken = NewBaseError(
		http.StatusUnauthorized,
		"invalid_token",
		"無效或已過期的存取權杖",
		"",
	)

	// ErrInsufficientScope is returned when a resolved token's scope does not
	// match the scope a protected resource requires.
	ErrInsufficientScope = NewBaseError(
		http.StatusUnauthorized,
		"insufficient_scope",
		"權杖範圍不足以存取此資源",
		"",
	)

	// ErrTokenCollision is surfaced when a freshly issued token string
	// collides with a stored one even after the internal retry.
	ErrTokenCollision = NewBaseError(
		http.StatusInternalServerError,
		"TOKEN_COLLISION",
		"權杖簽發衝突",
		"",
	)

	// Account-related errors
	ErrAccountNotFound = NewBaseError(
		http.StatusNotFound,
		"ACCOUNT_NOT_FOUND",
		"找不到該帳號",
		"",
	)

	ErrAccountAlreadyExists = NewBaseError(
		http.StatusConflict,
		"ACCOUNT_ALREADY_EXISTS",
		"此使用者名稱已被註冊",
		"",
	)

	ErrAccountCreationFailed = NewBaseError(
		http.StatusInternalServerError,
		"ACCOUNT_CREATION_FAILED",
		"建立帳號失敗",
		"",
	)

	// Credential-related errors
	ErrCredentialNotFound = NewBaseError(
		http.StatusUnauthorized,
		"CREDENTIAL_NOT_FOUND",
		"找不到登入憑證",
		"",
	)

	ErrInvalidCredentials = NewBaseError(
		http.StatusUnauthorized,
		"INVALID_CREDENTIALS",
		"使用者名稱或密碼錯誤",
		"",
	)

	ErrPasswordHashFailed = NewBaseError(
		http.StatusInternalServerError,
		"PASSWORD_HASH_FAILED",
		"密碼處理錯誤",
		"",
	)

	ErrPasswordStrength = NewBaseError(
		http.StatusBadRequest,
		"PASSWORD_STRENGTH",
		"密碼強度不足",
		"",
	)

	ErrPasswordForbiddenWords = NewBaseError(
		http.StatusBadRequest,
		"PASSWORD_FORBIDDEN_WORDS",
		"密碼包含禁止使用的字詞或模式",
		"",
	)

	// Validation-related errors
	ErrValidationFailed = NewBaseError(
		http.StatusBadRequest,
		"VALIDATION_FAILED",
		"輸入資料驗證失敗",
		"",
	)

	// Transaction-related errors
	ErrTransactionFailed = NewBaseError(
		http.StatusInternalServerError,
		"TRANSACTION_FAILED",
		"資料庫交易失敗",
		"",
	)

	// General errors
	ErrInternalError = NewBaseError(
		http.StatusInternalServerError,
		"INTERNAL_ERROR",
		"系統內部錯誤",
		"",
	)

	ErrForbidden = NewBaseError(
		http.StatusForbidden,
		"FORBIDDEN",
		"存取被拒絕",
		"",
	)

	ErrNotFound = NewBaseError(
		http.StatusNotFound,
		"NOT_FOUND",
		"找不到該資源",
		"",
	)

	ErrConflict = NewBaseError(
		http.StatusConflict,
		"CONFLICT",
		"資源衝突",
		"",
	)
)

// DatabaseExecuteError represents a database execution error, implementing the AppError interface
type DatabaseExecuteError struct {
	err     error
	details string
}

// NewDatabaseExecuteError creates a database-related error
func NewDatabaseExecuteError(err error, details string) AppError {
	return &DatabaseExecuteError{
		err:     err,
		details: details,
	}
}

// Error implements the error interface
func (e *DatabaseExecuteError) Error() string {
	return errors.Wrap(e.err, "database execution failed").Error()
}

// HTTPCode returns the HTTP status code
func (e *DatabaseExecuteError) HTTPCode() int {
	return http.StatusInternalServerError
}

// ErrorCode returns the business error code
func (e *DatabaseExecuteError) ErrorCode() string {
	return "DATABASE_EXECUTE_FAILED"
}

// Message returns the user-friendly error message
func (e *DatabaseExecuteError) Message() string {
	return "資料庫執行失敗"
}

// Details returns detailed error information
func (e *DatabaseExecuteError) Details() string {
	return e.details
}
