package plc

import (
	"fmt"
)

// OpError fallo de una operación contra el PLC. Desenvuelve tanto al error de dominio
// (domain.ErrPLCConnection, ErrPLCRead, ErrPLCWrite) como a la causa original.
type OpError struct {
	Op       string // connect, read, write
	NodeID   string
	Value    any
	Attempts int
	Kind     error
	Err      error
}

func (e *OpError) Error() string {
	switch e.Op {
	case "connect":
		return fmt.Sprintf("%v after %d attempt(s): %v", e.Kind, e.Attempts, e.Err)
	case "write":
		return fmt.Sprintf("%v: node %s, value %v: %v", e.Kind, e.NodeID, e.Value, e.Err)
	default:
		return fmt.Sprintf("%v: node %s: %v", e.Kind, e.NodeID, e.Err)
	}
}

func (e *OpError) Unwrap() []error {
	return []error{e.Kind, e.Err}
}
