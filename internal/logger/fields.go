package logger

import "go.uber.org/zap"

// Field keys shared by every component, so log queries can join sync, search and HTTP lines.
const (
	KeyModel   = "model"
	KeyIndex   = "index"
	KeyType    = "type"
	KeyID      = "id"
	KeyAttempt = "attempt"
	KeyRequest = "request_id"
)

func Model(name string) zap.Field { return zap.String(KeyModel, name) }
func Index(name string) zap.Field { return zap.String(KeyIndex, name) }
func Type(name string) zap.Field  { return zap.String(KeyType, name) }
func DocID(id string) zap.Field   { return zap.String(KeyID, id) }
func Attempt(n int) zap.Field     { return zap.Int(KeyAttempt, n) }

func RequestID(id string) zap.Field { return zap.String(KeyRequest, id) }
