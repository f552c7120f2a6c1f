package common

import (
	"errors"
	"fmt"
)

// AppError represents application-specific errors
type AppError struct {
	Code    string
	Message string
	Cause   error
}

func (e *AppError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *AppError) Unwrap() error {
	return e.Cause
}

// Common application errors
var (
	ErrNotFound     = errors.New("resource not found")
	ErrInvalidInput = errors.New("invalid input")
	ErrValidation   = errors.New("validation failed")
	ErrQueueClosed  = errors.New("queue closed")
)

// Error constructors
func NewAppError(code, message string, cause error) *AppError {
	return &AppError{
		Code:    code,
		Message: message,
		Cause:   cause,
	}
}

func WrapError(err error, message string) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%s: %w", message, err)
}

// ErrorKind classifies pipeline failures. Kinds do not overlap.
type ErrorKind string

const (
	KindNone                     ErrorKind = ""
	KindInvalidPath              ErrorKind = "InvalidPath"
	KindEmptyDocument            ErrorKind = "EmptyDocument"
	KindIrrelevantDocument       ErrorKind = "IrrelevantDocument"
	KindExtractionServiceError   ErrorKind = "ExtractionServiceError"
	KindMalformedServiceResponse ErrorKind = "MalformedServiceResponse"
	KindRecordValidationFailure  ErrorKind = "RecordValidationFailure"
)

// Terminal reports whether a failure of this kind aborts the whole run.
// Chunk- and record-level kinds are absorbed by the pipeline.
func (k ErrorKind) Terminal() bool {
	switch k {
	case KindInvalidPath, KindEmptyDocument, KindIrrelevantDocument, KindExtractionServiceError:
		return true
	}
	return false
}

// Reasons refine a kind without adding kinds.
const (
	ReasonEmptyPath      = "empty_path"
	ReasonWrongType      = "wrong_type"
	ReasonNotFound       = "not_found"
	ReasonIsDirectory    = "is_directory"
	ReasonEmptyFile      = "empty_file"
	ReasonPermission     = "permission_denied"
	ReasonNoPages        = "no_pages"
	ReasonNoText         = "no_text"
	ReasonMalformed      = "malformed"
	ReasonNoKeywords     = "no_keywords"
	ReasonTransport      = "transport"
	ReasonCanceled       = "canceled"
	ReasonNoFence        = "no_fence"
	ReasonBadJSON        = "bad_json"
	ReasonNotArray       = "not_array"
	ReasonTruncated      = "truncated"
	ReasonInvalidRecord  = "invalid_record"
	ReasonProtectFailure = "protect_failure"
)

// PipelineError carries a classified pipeline failure.
type PipelineError struct {
	Kind    ErrorKind
	Reason  string
	Message string
	Err     error
}

func (e *PipelineError) Error() string {
	msg := e.Message
	if msg == "" {
		msg = e.Reason
	}
	if e.Err != nil {
		return fmt.Sprintf("%s(%s): %s: %v", e.Kind, e.Reason, msg, e.Err)
	}
	return fmt.Sprintf("%s(%s): %s", e.Kind, e.Reason, msg)
}

func (e *PipelineError) Unwrap() error {
	return e.Err
}

// NewPipelineError builds a classified error.
func NewPipelineError(kind ErrorKind, reason, message string, cause error) *PipelineError {
	return &PipelineError{Kind: kind, Reason: reason, Message: message, Err: cause}
}

// KindOf returns the kind of the first PipelineError in err's chain.
func KindOf(err error) ErrorKind {
	var pe *PipelineError
	if errors.As(err, &pe) {
		return pe.Kind
	}
	return KindNone
}

// ReasonOf returns the reason of the first PipelineError in err's chain.
func ReasonOf(err error) string {
	var pe *PipelineError
	if errors.As(err, &pe) {
		return pe.Reason
	}
	return ""
}
