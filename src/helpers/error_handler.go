package helpers

import (
	"fmt"

	"venue-collections/src/logger"
)

// -----------------------------------------------------------------------------
// Custom Error Types
// -----------------------------------------------------------------------------

type CollectionsError struct {
	Message string
	Cause   error
}

func (e *CollectionsError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Cause)
	}
	return e.Message
}

func (e *CollectionsError) Unwrap() error {
	return e.Cause
}

// Distinct error types for errors.As checks
type ConfigurationError struct{ CollectionsError }
type NetworkError struct{ CollectionsError }
type DatabaseError struct{ CollectionsError }
type ValidationError struct{ CollectionsError }

func NewConfigurationError(message string, cause error) *ConfigurationError {
	return &ConfigurationError{CollectionsError{Message: message, Cause: cause}}
}

func NewValidationError(format string, args ...interface{}) *ValidationError {
	return &ValidationError{CollectionsError{Message: fmt.Sprintf(format, args...)}}
}

func NewDatabaseError(message string, cause error) *DatabaseError {
	return &DatabaseError{CollectionsError{Message: message, Cause: cause}}
}

func NewNetworkError(message string, cause error) *NetworkError {
	return &NetworkError{CollectionsError{Message: message, Cause: cause}}
}

// -----------------------------------------------------------------------------
// Venue Errors
// -----------------------------------------------------------------------------

// VenueRefreshError reports a venue whose listing could not be refreshed.
// Position is the venue's index in the input sequence of the run.
type VenueRefreshError struct {
	Venue    string
	Position int
	Cause    error
}

func (e *VenueRefreshError) Error() string {
	return fmt.Sprintf("venue %s (position %d) failed to refresh listing: %v", e.Venue, e.Position, e.Cause)
}

func (e *VenueRefreshError) Unwrap() error {
	return e.Cause
}

// -----------------------------------------------------------------------------

// MalformedSymbolError reports a listing that cannot be classified as is.
// Index is the offending symbol's index within the venue's listing.
type MalformedSymbolError struct {
	Venue    string
	Position int
	Index    int
	Symbol   string
	Reason   string
}

func (e *MalformedSymbolError) Error() string {
	return fmt.Sprintf("venue %s (position %d) reported malformed symbol %q at index %d: %s",
		e.Venue, e.Position, e.Symbol, e.Index, e.Reason)
}

// -----------------------------------------------------------------------------

// SymbolNotFoundError is returned by lookups for symbols no venue offers.
type SymbolNotFoundError struct {
	Symbol string
}

func (e *SymbolNotFoundError) Error() string {
	return fmt.Sprintf("%s is not listed by any processed venue", e.Symbol)
}

// -----------------------------------------------------------------------------
// Error Handler
// -----------------------------------------------------------------------------

type ErrorHandler struct {
	Logger     *logger.Logger
	ErrorCount int
}

func NewErrorHandler(log *logger.Logger) *ErrorHandler {
	return &ErrorHandler{Logger: log}
}

// -----------------------------------------------------------------------------

// Handle logs a non fatal error and counts it. Returns true if err was non-nil.
func (e *ErrorHandler) Handle(err error, context string) bool {
	if err == nil {
		return false
	}
	e.ErrorCount++
	e.Logger.Error("Error in %s: %v", context, err)
	return true
}
