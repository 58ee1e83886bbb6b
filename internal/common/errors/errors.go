// Package errors provides standardized error handling for the webhook service.
package errors

import (
	"errors"
	"fmt"
	"time"
)

// ErrorCode represents standardized internal error codes.
type ErrorCode string

const (
	ErrCodeMissingMessage   ErrorCode = "MISSING_MESSAGE"
	ErrCodeMissingContactID ErrorCode = "MISSING_CONTACT_ID"
	ErrCodeInvalidPayload   ErrorCode = "INVALID_PAYLOAD"

	ErrCodeDedupCheckFailed    ErrorCode = "DEDUP_CHECK_FAILED"
	ErrCodeUserLookupFailed    ErrorCode = "USER_LOOKUP_FAILED"
	ErrCodeStoreWriteFailed    ErrorCode = "STORE_WRITE_FAILED"
	ErrCodeKnowledgeSearch     ErrorCode = "KNOWLEDGE_SEARCH_FAILED"
	ErrCodeProductLookupFailed ErrorCode = "PRODUCT_LOOKUP_FAILED"
	ErrCodePipelineFailed      ErrorCode = "PIPELINE_FAILED"
	ErrCodeDeliveryFailed      ErrorCode = "DELIVERY_FAILED"
	ErrCodeAlertFailed         ErrorCode = "ALERT_FAILED"
)

// ValidationError rejects a request outright. It is the only error class the
// webhook handler surfaces to the caller.
type ValidationError struct {
	Code    ErrorCode `json:"code"`
	Field   string    `json:"field"`
	Message string    `json:"message"`
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("validation[%s]: %s", e.Code, e.Message)
}

func NewValidationError(code ErrorCode, field, message string) *ValidationError {
	return &ValidationError{Code: code, Field: field, Message: message}
}

// IsValidation reports whether err is a ValidationError.
func IsValidation(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}

// CollaboratorError wraps a failed downstream call. It is logged at the call
// site and never propagated past the handler; each stage degrades
// independently.
type CollaboratorError struct {
	Code      ErrorCode `json:"code"`
	Stage     string    `json:"stage"`
	Err       error     `json:"-"`
	Timestamp time.Time `json:"timestamp"`
}

func (e *CollaboratorError) Error() string {
	return fmt.Sprintf("collaborator[%s] stage=%s: %v", e.Code, e.Stage, e.Err)
}

func (e *CollaboratorError) Unwrap() error {
	return e.Err
}

func NewCollaboratorError(code ErrorCode, stage string, err error) *CollaboratorError {
	return &CollaboratorError{Code: code, Stage: stage, Err: err, Timestamp: time.Now().UTC()}
}
