package errors

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// Error codes
const (
	// Authentication errors
	ErrCodeUnauthorized       = "UNAUTHORIZED"
	ErrCodeInvalidCredentials = "INVALID_CREDENTIALS"

	// Validation errors
	ErrCodeInvalidInput  = "INVALID_INPUT"
	ErrCodeInvalidAction = "INVALID_ACTION"

	// Resource errors
	ErrCodeNotFound = "NOT_FOUND"

	// Business logic errors
	ErrCodeInvalidOperation = "INVALID_OPERATION"
	ErrCodeOperationFailed  = "OPERATION_FAILED"

	// Service errors
	ErrCodeInternalError = "INTERNAL_ERROR"
)

// Response is the envelope of every API reply
type Response struct {
	Success bool        `json:"success"`
	Message string      `json:"message"`
	Code    string      `json:"code,omitempty"`
	Data    interface{} `json:"data"`
}

// Success sends a 200 response carrying data
func Success(c *gin.Context, message string, data interface{}) {
	c.JSON(http.StatusOK, Response{
		Success: true,
		Message: message,
		Data:    data,
	})
}

// RespondWithError sends a failed envelope
func RespondWithError(c *gin.Context, statusCode int, code, message string) {
	c.JSON(statusCode, Response{
		Success: false,
		Message: message,
		Code:    code,
	})
}

// Helper functions for common error responses

// Unauthorized sends a 401 response
func Unauthorized(c *gin.Context, message string) {
	if message == "" {
		message = "Authentication required"
	}
	RespondWithError(c, http.StatusUnauthorized, ErrCodeUnauthorized, message)
}

// InvalidCredentials sends a 401 response for a failed login
func InvalidCredentials(c *gin.Context) {
	RespondWithError(c, http.StatusUnauthorized, ErrCodeInvalidCredentials, "Invalid username or password")
}

// NotFound sends a 404 response
func NotFound(c *gin.Context, message string) {
	if message == "" {
		message = "Resource not found"
	}
	RespondWithError(c, http.StatusNotFound, ErrCodeNotFound, message)
}

// BadRequest sends a 400 response
func BadRequest(c *gin.Context, message string) {
	if message == "" {
		message = "Invalid request"
	}
	RespondWithError(c, http.StatusBadRequest, ErrCodeInvalidInput, message)
}

// InvalidAction sends a 400 response for an unknown dispatcher action
func InvalidAction(c *gin.Context) {
	RespondWithError(c, http.StatusBadRequest, ErrCodeInvalidAction, "invalid action")
}

// Conflict sends a 409 response for an operation the task tree cannot accept
func Conflict(c *gin.Context, message string) {
	if message == "" {
		message = "Operation not allowed"
	}
	RespondWithError(c, http.StatusConflict, ErrCodeInvalidOperation, message)
}

// OperationFailed sends a 404 response when a mutation affected no row
func OperationFailed(c *gin.Context, message string) {
	if message == "" {
		message = "Operation failed"
	}
	RespondWithError(c, http.StatusNotFound, ErrCodeOperationFailed, message)
}

// InternalError sends a 500 response
func InternalError(c *gin.Context, message string) {
	if message == "" {
		message = "Internal server error"
	}
	RespondWithError(c, http.StatusInternalServerError, ErrCodeInternalError, message)
}
