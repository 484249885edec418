package event

import "github.com/kailas-cloud/searchsync/internal/domain/index"

// State is a synchronization state of one document.
type State string

// Save path: Unindexed -> Indexing -> Indexed.
// Remove path: Indexed -> Removing -> Removed | RetryScheduled -> Removing ... -> RemovalGivenUp.
const (
	Unindexed      State = "unindexed"
	Indexing       State = "indexing"
	Indexed        State = "indexed"
	Removing       State = "removing"
	RetryScheduled State = "retry_scheduled"
	Removed        State = "removed"
	RemovalGivenUp State = "removal_given_up"
)

// IndexedEvent is the single completion signal of a save.
// On failure State stays Unindexed and Err is an *domain.IndexWriteError.
type IndexedEvent struct {
	Model    string
	ID       string
	State    State
	Response index.WriteResult
	Err      error
}

// RemovedEvent is the single completion signal of a remove, sent after success or give-up.
type RemovedEvent struct {
	Model    string
	ID       string
	State    State
	Attempts int
	Err      error
}
