package api

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
)

const (
	ErrCodeInvalidRequest     = "ERR_INVALID_REQUEST"
	ErrCodeUnauthorized       = "ERR_UNAUTHORIZED"
	ErrCodeNotFound           = "ERR_NOT_FOUND"
	ErrCodeInternalError      = "ERR_INTERNAL_ERROR"
	ErrCodeSessionExpired     = "ERR_SESSION_EXPIRED"
	ErrCodeUserNotFound       = "ERR_USER_NOT_FOUND"
	ErrCodeCharacterNotFound  = "ERR_CHARACTER_NOT_FOUND"
	ErrCodeSceneNotFound      = "ERR_SCENE_NOT_FOUND"
	ErrCodeMissingField       = "ERR_MISSING_FIELD"
	ErrCodeInsufficientCredit = "ERR_INSUFFICIENT_CREDITS"
	ErrCodeGenerationFailed   = "ERR_GENERATION_FAILED"
	ErrCodeCreditDeduction    = "ERR_CREDIT_DEDUCTION"
	ErrCodeTranslationFailed  = "ERR_TRANSLATION_FAILED"
	ErrCodeWebhookSignature   = "ERR_WEBHOOK_SIGNATURE"
)

// APIError is the uniform error envelope.
type APIError struct {
	Code      string    `json:"code"`
	Message   string    `json:"message"`
	Details   any       `json:"details,omitempty"`
	Timestamp time.Time `json:"timestamp"`
}

// ErrorResponse writes the uniform error envelope.
func ErrorResponse(c *gin.Context, status int, code string, message string) {
	c.JSON(status, APIError{
		Code:      code,
		Message:   message,
		Timestamp: time.Now().UTC(),
	})
}

// ErrorResponseWithDetails writes the envelope with extra details.
func ErrorResponseWithDetails(c *gin.Context, status int, code string, message string, details any) {
	c.JSON(status, APIError{
		Code:      code,
		Message:   message,
		Details:   details,
		Timestamp: time.Now().UTC(),
	})
}

func BadRequest(c *gin.Context, code string, message string) {
	ErrorResponse(c, http.StatusBadRequest, code, message)
}

func Unauthorized(c *gin.Context, message string) {
	ErrorResponse(c, http.StatusUnauthorized, ErrCodeUnauthorized, message)
}

func NotFound(c *gin.Context, code string, message string) {
	ErrorResponse(c, http.StatusNotFound, code, message)
}

func InternalError(c *gin.Context, message string) {
	ErrorResponse(c, http.StatusInternalServerError, ErrCodeInternalError, message)
}

// MissingField reports a required field absent from the payload.
func MissingField(c *gin.Context, message string, field string) {
	ErrorResponseWithDetails(c, http.StatusBadRequest, ErrCodeMissingField, message, gin.H{"field": field})
}
