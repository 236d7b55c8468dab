package fifo

import (
	"errors"
	"fmt"
)

var (
	ErrUnresolvable = errors.New("fifo: unresolvable address")
	ErrTruncated    = errors.New("fifo: truncated command")
)

// AddressError reports a command word or argument whose IO offset has no
// backing memory. Applied counts the arguments of the in-flight method that
// were dispatched before the fault.
type AddressError struct {
	Get     uint32 // offset of the faulting word
	Header  uint32 // offset of the command header
	Applied int
}

func (e *AddressError) Error() string {
	return fmt.Sprintf("fifo: unresolvable address %#08x (header %#08x, %d args applied)", e.Get, e.Header, e.Applied)
}

func (e *AddressError) Unwrap() error { return ErrUnresolvable }

// TruncatedError reports a method header whose arguments run past put.
type TruncatedError struct {
	Get   uint32
	Put   uint32
	Count int
}

func (e *TruncatedError) Error() string {
	return fmt.Sprintf("fifo: method at %#08x needs %d args, put is %#08x", e.Get, e.Count, e.Put)
}

func (e *TruncatedError) Unwrap() error { return ErrTruncated }
