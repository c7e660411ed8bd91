package logictree

import "fmt"

// Error reports a malformed logic tree: unbalanced branch weights, a
// tectonic region type with no GSIM branch set, or duplicated source IDs.
// It is fatal and aborts the run before any task is scheduled.
type Error struct {
	msg string
}

func (e *Error) Error() string { return e.msg }

func errf(format string, args ...any) *Error {
	return &Error{msg: fmt.Sprintf(format, args...)}
}
