package errors

import (
	"fmt"
	"time"
)

// ErrorType represents the type of error
type ErrorType string

const (
	// ErrorTypeNavigation represents page navigation/timeout failures
	ErrorTypeNavigation ErrorType = "navigation"
	// ErrorTypeParsing represents HTML/JSON parsing errors
	ErrorTypeParsing ErrorType = "parsing"
	// ErrorTypePersistence represents record store errors
	ErrorTypePersistence ErrorType = "persistence"
	// ErrorTypeConflict represents secondary-key collisions during upsert
	ErrorTypeConflict ErrorType = "conflict"
	// ErrorTypeCache represents cache-related errors
	ErrorTypeCache ErrorType = "cache"
	// ErrorTypePublisher represents publisher-related errors
	ErrorTypePublisher ErrorType = "publisher"
	// ErrorTypeValidation represents validation errors
	ErrorTypeValidation ErrorType = "validation"
	// ErrorTypeConfiguration represents configuration errors
	ErrorTypeConfiguration ErrorType = "configuration"
)

// PipelineError represents an error raised by one stage of the
// harvest/enrichment pipeline. Listing identifies the item being
// processed when one was in flight.
type PipelineError struct {
	Type    ErrorType
	Listing string
	Message string
	Err     error
	Time    time.Time
}

// Error implements the error interface
func (e *PipelineError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("[%s] %s: %s - %v", e.Type, e.Listing, e.Message, e.Err)
	}
	return fmt.Sprintf("[%s] %s: %s", e.Type, e.Listing, e.Message)
}

// Unwrap returns the underlying error
func (e *PipelineError) Unwrap() error {
	return e.Err
}

// IsBenign returns true when the error should not count as an item
// failure. A slug collision between two external identifiers is logged
// and the batch moves on.
func (e *PipelineError) IsBenign() bool {
	return e.Type == ErrorTypeConflict
}

// New creates a new PipelineError
func New(errType ErrorType, listing, message string, err error) *PipelineError {
	return &PipelineError{
		Type:    errType,
		Listing: listing,
		Message: message,
		Err:     err,
		Time:    time.Now(),
	}
}

// NewNavigation creates a new navigation error
func NewNavigation(listing, message string, err error) *PipelineError {
	return New(ErrorTypeNavigation, listing, message, err)
}

// NewParsing creates a new parsing error
func NewParsing(listing, message string, err error) *PipelineError {
	return New(ErrorTypeParsing, listing, message, err)
}

// NewPersistence creates a new persistence error
func NewPersistence(listing, message string, err error) *PipelineError {
	return New(ErrorTypePersistence, listing, message, err)
}

// NewConflict creates a new conflict error
func NewConflict(listing, message string, err error) *PipelineError {
	return New(ErrorTypeConflict, listing, message, err)
}

// NewCache creates a new cache error
func NewCache(listing, message string, err error) *PipelineError {
	return New(ErrorTypeCache, listing, message, err)
}

// NewPublisher creates a new publisher error
func NewPublisher(listing, message string, err error) *PipelineError {
	return New(ErrorTypePublisher, listing, message, err)
}

// NewValidation creates a new validation error
func NewValidation(listing, message string) *PipelineError {
	return New(ErrorTypeValidation, listing, message, nil)
}

// NewConfiguration creates a new configuration error
func NewConfiguration(message string, err error) *PipelineError {
	return New(ErrorTypeConfiguration, "", message, err)
}
