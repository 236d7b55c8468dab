package fifo

import (
	"encoding/binary"

	"github.com/FabianRolfMatthiasNoll/RSXEmulator/internal/gcm"
)

// Builder assembles a command buffer. Offsets are relative to the start of
// the buffer; Base is added to jump and call targets.
type Builder struct {
	Base uint32
	buf  []byte
}

// Header encodes a method header.
func Header(reg gcm.Reg, count int, nonIncrement bool) uint32 {
	h := uint32(count&MaxCount)<<18 | reg.Addr()&0xfffc
	if nonIncrement {
		h |= niCmd
	}
	return h
}

// JumpCmd, CallCmd and ReturnCmd encode control words.
func JumpCmd(target uint32) uint32 { return target&^3 | newJumpCmd }
func OldJumpCmd(target uint32) uint32 {
	return target&0x1ffffffc | oldJumpCmd
}
func CallCmd(target uint32) uint32 { return target&^3 | callCmd }

const ReturnCmd = returnCmd

func (b *Builder) Word(v uint32) *Builder {
	b.buf = binary.BigEndian.AppendUint32(b.buf, v)
	return b
}

// Method emits a header followed by its arguments, incrementing the
// register for each one.
func (b *Builder) Method(reg gcm.Reg, args ...uint32) *Builder {
	b.Word(Header(reg, len(args), false))
	for _, a := range args {
		b.Word(a)
	}
	return b
}

// MethodNI emits a non-increment method: every argument targets reg.
func (b *Builder) MethodNI(reg gcm.Reg, args ...uint32) *Builder {
	b.Word(Header(reg, len(args), true))
	for _, a := range args {
		b.Word(a)
	}
	return b
}

func (b *Builder) Jump(offset uint32) *Builder { return b.Word(JumpCmd(b.Base + offset)) }
func (b *Builder) Call(offset uint32) *Builder { return b.Word(CallCmd(b.Base + offset)) }
func (b *Builder) Return() *Builder            { return b.Word(ReturnCmd) }

func (b *Builder) Nop(n int) *Builder {
	for i := 0; i < n; i++ {
		b.Word(0)
	}
	return b
}

// Len is the current size in bytes, the offset of the next word.
func (b *Builder) Len() uint32 { return uint32(len(b.buf)) }

// Patch overwrites the word at offset.
func (b *Builder) Patch(offset, v uint32) {
	binary.BigEndian.PutUint32(b.buf[offset:], v)
}

func (b *Builder) Bytes() []byte { return b.buf }

func (b *Builder) Reset() { b.buf = b.buf[:0] }
