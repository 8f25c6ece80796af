package jsonfile

import "fmt"

// Operations reported by PersistenceError.
const (
	OpRead   = "read"
	OpDecode = "decode"
	OpEncode = "encode"
	OpWrite  = "write"
)

// PersistenceError indicates the stock document could not be read, decoded
// or written.
type PersistenceError struct {
	Op   string
	Path string
	Err  error
}

func (e *PersistenceError) Error() string {
	return fmt.Sprintf("%s %s: %v", e.Op, e.Path, e.Err)
}

func (e *PersistenceError) Unwrap() error {
	return e.Err
}
