package domain

import (
	"errors"
	"fmt"
)

// Domain errors represent ingestion outcomes.
// These are distinct from infrastructure errors.
var (
	// ErrNotFound indicates the requested entity does not exist.
	ErrNotFound = errors.New("not found")

	// ErrInvalidInput indicates malformed or invalid input.
	ErrInvalidInput = errors.New("invalid input")

	// ErrNotImplemented indicates functionality is not available in this build.
	ErrNotImplemented = errors.New("not implemented")

	// ErrUnsupportedFormat indicates no parser is registered for the MIME type.
	ErrUnsupportedFormat = errors.New("unsupported format")

	// ErrParseFailure indicates a registered parser failed on the input.
	ErrParseFailure = errors.New("parse failure")

	// ErrInsufficientText indicates too little text could be extracted.
	// This is the expected outcome for scanned, image-only PDFs.
	ErrInsufficientText = errors.New("insufficient extractable text")

	// ErrNoText indicates no text at all could be extracted.
	// It matches ErrInsufficientText under errors.Is.
	ErrNoText = fmt.Errorf("no extractable text: %w", ErrInsufficientText)

	// ErrFallbackStrategy indicates a fallback extractor failed.
	// It is recovered inside the escalator and never surfaced.
	ErrFallbackStrategy = errors.New("fallback strategy failed")

	// ErrStoreUnavailable indicates the maintenance store is not configured.
	ErrStoreUnavailable = errors.New("store unavailable")
)

// User-facing rejection messages.
const (
	MessageInsufficientPDFText = "Too little extractable text found. Please upload a text-searchable copy " +
		"or OCR the PDF (export to TXT) before retrying."
	MessageNoText = "No extractable text found. Please upload a text-searchable copy."
)

// RejectionError is the typed failure of an ingestion call.
// Reason is one of the domain sentinels; Err is the underlying cause, if any.
type RejectionError struct {
	// Reason classifies the rejection (ErrUnsupportedFormat, ErrParseFailure,
	// ErrInsufficientText or ErrNoText).
	Reason error

	// MIMEType is the canonical declared MIME type of the upload.
	MIMEType string

	// Parser names the capability that failed, for ErrParseFailure.
	Parser string

	// Message is safe to show to the end user.
	Message string

	// Err is the wrapped cause.
	Err error
}

// Error implements the error interface.
func (e *RejectionError) Error() string {
	msg := e.Message
	if msg == "" && e.Reason != nil {
		msg = e.Reason.Error()
	}
	if e.Parser != "" {
		msg = fmt.Sprintf("%s (parser %s)", msg, e.Parser)
	}
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", msg, e.Err)
	}
	return msg
}

// Unwrap exposes both the reason and the cause to errors.Is and errors.As.
func (e *RejectionError) Unwrap() []error {
	errs := make([]error, 0, 2)
	if e.Reason != nil {
		errs = append(errs, e.Reason)
	}
	if e.Err != nil {
		errs = append(errs, e.Err)
	}
	return errs
}

// UserMessage returns the message to surface to the caller.
func (e *RejectionError) UserMessage() string {
	if e.Message != "" {
		return e.Message
	}
	if e.Reason != nil {
		return e.Reason.Error()
	}
	return "upload rejected"
}

// NewUnsupportedFormatError builds the rejection for an unregistered MIME type.
func NewUnsupportedFormatError(mimeType string, supported []string) *RejectionError {
	return &RejectionError{
		Reason:   ErrUnsupportedFormat,
		MIMEType: mimeType,
		Message:  fmt.Sprintf("Unsupported file type %q. Supported types: %v", mimeType, supported),
	}
}

// NewParseFailureError builds the rejection for a failing parser.
func NewParseFailureError(mimeType, parser string, cause error) *RejectionError {
	return &RejectionError{
		Reason:   ErrParseFailure,
		MIMEType: mimeType,
		Parser:   parser,
		Message:  fmt.Sprintf("Could not parse the uploaded %s file.", mimeType),
		Err:      cause,
	}
}

// NewInsufficientTextError builds the minimum-content rejection.
// PDFs get the OCR guidance; every other format gets the empty-text message.
func NewInsufficientTextError(mimeType string) *RejectionError {
	if IsPDF(mimeType) {
		return &RejectionError{
			Reason:   ErrInsufficientText,
			MIMEType: mimeType,
			Message:  MessageInsufficientPDFText,
		}
	}
	return &RejectionError{
		Reason:   ErrNoText,
		MIMEType: mimeType,
		Message:  MessageNoText,
	}
}
