// Package regs holds the GPU register file and the bitfield views over its
// words.
package regs

import (
	"bytes"
	"encoding/gob"
	"fmt"

	"github.com/FabianRolfMatthiasNoll/RSXEmulator/internal/gcm"
)

// File is the flat register array. It is the single source of truth for GPU
// state and is owned by one emulation session; it is not safe for concurrent
// mutation.
type File struct {
	w [gcm.RegCount]uint32
}

func New() *File { return &File{} }

// Get returns the word at r, or 0 past the end of the file.
func (f *File) Get(r gcm.Reg) uint32 {
	if int(r) >= gcm.RegCount {
		return 0
	}
	return f.w[r]
}

// Set stores v and reports whether the stored word changed. Writes past the
// end of the file are dropped.
func (f *File) Set(r gcm.Reg, v uint32) bool {
	if int(r) >= gcm.RegCount || f.w[r] == v {
		return false
	}
	f.w[r] = v
	return true
}

// Block returns n consecutive words starting at r.
func (f *File) Block(r gcm.Reg, n int) []uint32 {
	out := make([]uint32, n)
	if int(r) < gcm.RegCount {
		copy(out, f.w[int(r):])
	}
	return out
}

// Snapshot returns a deep copy suitable for handing to another goroutine.
func (f *File) Snapshot() *File {
	c := *f
	return &c
}

// Words exposes the backing array. Callers must treat it as read-only.
func (f *File) Words() []uint32 { return f.w[:] }

func (f *File) Reset() { f.w = [gcm.RegCount]uint32{} }

type fileState struct {
	Regs map[uint16]uint32 // non-zero words only
}

func (f *File) SaveState() []byte {
	s := fileState{Regs: make(map[uint16]uint32)}
	for i, v := range f.w {
		if v != 0 {
			s.Regs[uint16(i)] = v
		}
	}
	var buf bytes.Buffer
	_ = gob.NewEncoder(&buf).Encode(s)
	return buf.Bytes()
}

func (f *File) LoadState(data []byte) error {
	var s fileState
	if err := gob.NewDecoder(bytes.NewReader(data)).Decode(&s); err != nil {
		return fmt.Errorf("regs: decode state: %w", err)
	}
	f.Reset()
	for i, v := range s.Regs {
		if int(i) >= gcm.RegCount {
			return fmt.Errorf("regs: register %#x out of range", i)
		}
		f.w[i] = v
	}
	return nil
}
