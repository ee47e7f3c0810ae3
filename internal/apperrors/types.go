package apperrors

import (
	"errors"
	"fmt"
	"net/http"
)

// Kind identifies one of the closed set of failure classes the pipeline can
// produce. Callers branch on the kind, never on the message text.
type Kind string

const (
	// Client faults (400-equivalent); detected locally before any network call.
	KindDocumentFormat Kind = "DOCUMENT_FORMAT"
	KindEmptyContent   Kind = "EMPTY_CONTENT"
	KindEmptyQuery     Kind = "EMPTY_QUERY"

	// Backend faults (500-equivalent); the underlying cause is preserved.
	KindEmbeddingProvider  Kind = "EMBEDDING_PROVIDER"
	KindGenerationProvider Kind = "GENERATION_PROVIDER"
	KindStoreWrite         Kind = "STORE_WRITE"
	KindStoreRead          Kind = "STORE_READ"

	// Fatal startup condition, never returned from a request handler.
	KindConfiguration Kind = "CONFIGURATION"
)

// AppError carries a kind, a human-readable message and the wrapped cause.
type AppError struct {
	Kind    Kind
	Message string
	Cause   error
}

func (e *AppError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Cause)
	}
	return e.Message
}

func (e *AppError) Unwrap() error {
	return e.Cause
}

// New creates an AppError without a cause.
func New(kind Kind, message string) *AppError {
	return &AppError{Kind: kind, Message: message}
}

// Wrap creates an AppError around an underlying cause.
func Wrap(kind Kind, message string, cause error) *AppError {
	return &AppError{Kind: kind, Message: message, Cause: cause}
}

func DocumentFormat(message string, cause error) *AppError {
	return Wrap(KindDocumentFormat, message, cause)
}

func EmptyContent(message string) *AppError {
	return New(KindEmptyContent, message)
}

func EmptyQuery(message string) *AppError {
	return New(KindEmptyQuery, message)
}

func EmbeddingProvider(cause error) *AppError {
	return Wrap(KindEmbeddingProvider, "embedding provider request failed", cause)
}

func GenerationProvider(cause error) *AppError {
	return Wrap(KindGenerationProvider, "generation provider request failed", cause)
}

func StoreWrite(cause error) *AppError {
	return Wrap(KindStoreWrite, "vector store write failed", cause)
}

func StoreRead(cause error) *AppError {
	return Wrap(KindStoreRead, "vector store read failed", cause)
}

func Configuration(message string) *AppError {
	return New(KindConfiguration, message)
}

// KindOf extracts the kind from err, unwrapping as needed. Unclassified
// errors report as empty kind.
func KindOf(err error) Kind {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.Kind
	}
	return ""
}

// IsClientFault reports whether err is a validation failure the caller can
// fix, as opposed to a backend failure.
func IsClientFault(err error) bool {
	switch KindOf(err) {
	case KindDocumentFormat, KindEmptyContent, KindEmptyQuery:
		return true
	}
	return false
}

// HTTPStatus maps an error to the response status for the HTTP surface.
func HTTPStatus(err error) int {
	if err == nil {
		return http.StatusOK
	}
	if IsClientFault(err) {
		return http.StatusBadRequest
	}
	return http.StatusInternalServerError
}
