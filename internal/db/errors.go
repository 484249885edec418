package db

import "errors"

var (
	ErrKeyNotFound   = errors.New("db: key not found")
	ErrIndexNotFound = errors.New("db: index not found")
	ErrIndexExists   = errors.New("db: index already exists")
	// ErrQueryRejected means the server refused the query text. The wrapping error carries its diagnostic.
	ErrQueryRejected = errors.New("db: query rejected")
)

// Command names recorded in Error.Op.
const (
	OpCreateIndex = "FT.CREATE"
	OpAlterIndex  = "FT.ALTER"
	OpSearch      = "FT.SEARCH"
	OpJSONSet     = "JSON.SET"
	OpJSONGet     = "JSON.GET"
	OpDel         = "DEL"
)

// Error ties a server failure to the command that produced it.
type Error struct {
	Op  string
	Err error
}

func (e *Error) Error() string { return e.Op + ": " + e.Err.Error() }
func (e *Error) Unwrap() error { return e.Err }
