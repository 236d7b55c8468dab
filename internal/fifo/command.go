// Package fifo decodes the GPU command stream: it pulls control words from
// the IO-mapped ring buffer, follows jumps, calls and returns, and turns
// method headers into register writes.
package fifo

import "github.com/FabianRolfMatthiasNoll/RSXEmulator/internal/gcm"

// Kind classifies a command word.
type Kind uint8

const (
	KindMethod Kind = iota
	KindOldJump
	KindJump
	KindCall
	KindReturn
	KindNop
)

func (k Kind) String() string {
	switch k {
	case KindMethod:
		return "method"
	case KindOldJump:
		return "jump(old)"
	case KindJump:
		return "jump"
	case KindCall:
		return "call"
	case KindReturn:
		return "return"
	case KindNop:
		return "nop"
	}
	return "unknown"
}

const (
	oldJumpMask = 0xe0000003
	oldJumpCmd  = 0x20000000
	newJumpMask = 0x00000003
	newJumpCmd  = 0x00000001
	callMask    = 0x00000003
	callCmd     = 0x00000002
	returnMask  = 0xffff0003
	returnCmd   = 0x00020000
	nopMask     = 0xbfff0003
	niMask      = 0xe0030003
	niCmd       = 0x40000000
)

// MaxCount is the largest argument count a header can carry.
const MaxCount = 0x7ff

// Command is a classified command word.
type Command struct {
	Raw  uint32
	Kind Kind

	// Method headers
	Reg          gcm.Reg
	Count        int
	NonIncrement bool

	// Jumps and calls
	Target uint32
}

// Classify decodes a command word. The checks run in hardware priority
// order: jumps, call, return, nop, then method header.
func Classify(cmd uint32) Command {
	c := Command{Raw: cmd}
	switch {
	case cmd&oldJumpMask == oldJumpCmd:
		c.Kind = KindOldJump
		c.Target = cmd & 0x1ffffffc
	case cmd&newJumpMask == newJumpCmd:
		c.Kind = KindJump
		c.Target = cmd &^ 3
	case cmd&callMask == callCmd:
		c.Kind = KindCall
		c.Target = cmd &^ 3
	case cmd&returnMask == returnCmd:
		c.Kind = KindReturn
	case cmd&nopMask == 0:
		c.Kind = KindNop
	default:
		c.Kind = KindMethod
		c.Reg = gcm.Reg((cmd & 0xfffc) >> 2)
		c.Count = int((cmd >> 18) & MaxCount)
		c.NonIncrement = cmd&niMask == niCmd
	}
	return c
}

// RegAt returns the register written by argument i of a method header.
// Increment mode wraps at the end of the method space.
func (c Command) RegAt(i int) gcm.Reg {
	if c.NonIncrement {
		return c.Reg
	}
	return (c.Reg + gcm.Reg(i)) & (gcm.RegCount - 1)
}

// Size is the number of stream bytes the command occupies, header included.
func (c Command) Size() uint32 {
	if c.Kind == KindMethod {
		return 4 + 4*uint32(c.Count)
	}
	return 4
}

// Unaligned reports a method header with its low bits set.
func (c Command) Unaligned() bool { return c.Kind == KindMethod && c.Raw&3 != 0 }
