package domain

import (
	"errors"
	"fmt"
)

var (
	// ErrNotFound signals a missing resource.
	ErrNotFound = errors.New("not found")
	// ErrAlreadyExists signals a duplicate resource.
	ErrAlreadyExists = errors.New("already exists")
	// ErrInvalidSchema signals an invalid schema definition.
	ErrInvalidSchema = errors.New("invalid schema")
	// ErrInvalidDocument signals a record that cannot be stored (bad id or field name).
	ErrInvalidDocument = errors.New("invalid document")
	// ErrModelNotFound signals an unregistered model name.
	ErrModelNotFound = fmt.Errorf("model %w", ErrNotFound)
	// ErrDocumentNotFound signals a missing primary-store record.
	ErrDocumentNotFound = fmt.Errorf("document %w", ErrNotFound)
	// ErrIndexDocumentNotFound signals that the index holds no document under the id.
	ErrIndexDocumentNotFound = errors.New("index document not found")
	// ErrMalformedQuery signals that the backend rejected the query shape.
	ErrMalformedQuery = errors.New("malformed query")
	// ErrMappingSealed signals a mapping install after the index has been opened.
	ErrMappingSealed = errors.New("index mapping sealed")
	// ErrRemovalGivenUp signals that index removal exhausted its retry budget.
	ErrRemovalGivenUp = errors.New("removal given up")
)

// MappingGenerationError is a malformed schema description. It is fatal to registration.
type MappingGenerationError struct {
	Field  string
	Reason string
}

func (e *MappingGenerationError) Error() string {
	if e.Field == "" {
		return fmt.Sprintf("%s: %s", ErrInvalidSchema.Error(), e.Reason)
	}
	return fmt.Sprintf("%s: field %q: %s", ErrInvalidSchema.Error(), e.Field, e.Reason)
}

func (e *MappingGenerationError) Unwrap() error { return ErrInvalidSchema }

// IndexWriteError is an adapter failure on create/update, reported on the indexing signal.
type IndexWriteError struct {
	Index string
	Type  string
	ID    string
	Err   error
}

func (e *IndexWriteError) Error() string {
	return fmt.Sprintf("index %s/%s/%s: %v", e.Index, e.Type, e.ID, e.Err)
}

func (e *IndexWriteError) Unwrap() error { return e.Err }

// IndexDeleteError is a failed removal attempt. Every such failure is retried.
type IndexDeleteError struct {
	ID       string
	Attempt  int
	NotFound bool
	Err      error
}

func (e *IndexDeleteError) Error() string {
	return fmt.Sprintf("remove %s (attempt %d): %v", e.ID, e.Attempt, e.Err)
}

func (e *IndexDeleteError) Unwrap() error { return e.Err }

// RemovalGivenUpError is the terminal outcome after the retry budget is spent.
type RemovalGivenUpError struct {
	ID       string
	Attempts int
	Last     error
}

func (e *RemovalGivenUpError) Error() string {
	return fmt.Sprintf("%s: %s after %d attempts: %v", ErrRemovalGivenUp.Error(), e.ID, e.Attempts, e.Last)
}

// Unwrap exposes both the sentinel and the last attempt error.
func (e *RemovalGivenUpError) Unwrap() []error { return []error{ErrRemovalGivenUp, e.Last} }

// QueryError is a failed or rejected search. No result set accompanies it.
type QueryError struct {
	Model string
	Query string
	Err   error
}

func (e *QueryError) Error() string {
	return fmt.Sprintf("search %s: %v", e.Model, e.Err)
}

func (e *QueryError) Unwrap() error { return e.Err }

// HydrationMissError marks a hit whose primary-store record no longer exists.
type HydrationMissError struct {
	ID string
}

func (e *HydrationMissError) Error() string {
	return fmt.Sprintf("hydrate %s: record missing from primary store", e.ID)
}

func (e *HydrationMissError) Unwrap() error { return ErrDocumentNotFound }
