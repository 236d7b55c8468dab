package regs

import (
	"testing"

	"github.com/FabianRolfMatthiasNoll/RSXEmulator/internal/gcm"
)

func TestSetReportsChange(t *testing.T) {
	f := New()
	if !f.Set(gcm.SetColorClearValue, 0x00FF00FF) {
		t.Fatal("first write should report a change")
	}
	if f.Set(gcm.SetColorClearValue, 0x00FF00FF) {
		t.Fatal("identical write should not report a change")
	}
	if got := f.Get(gcm.SetColorClearValue); got != 0x00FF00FF {
		t.Fatalf("clear color got %08x", got)
	}
	if f.Set(gcm.SetBlendEnable, 0) {
		t.Fatal("writing the reset value should not report a change")
	}
}

func TestSnapshotIsDeepCopy(t *testing.T) {
	f := New()
	f.Set(gcm.SetDepthFunc, gcm.FuncLess)
	s := f.Snapshot()
	f.Set(gcm.SetDepthFunc, gcm.FuncGreater)
	if got := s.Get(gcm.SetDepthFunc); got != gcm.FuncLess {
		t.Fatalf("snapshot changed with source: got %#x", got)
	}
}

func TestBlock(t *testing.T) {
	f := New()
	for i := 0; i < 4; i++ {
		f.Set(gcm.SetTransformProgram+gcm.Reg(i), uint32(i+1))
	}
	b := f.Block(gcm.SetTransformProgram, 4)
	for i, v := range b {
		if v != uint32(i+1) {
			t.Fatalf("word %d got %d", i, v)
		}
	}
	b[0] = 99
	if f.Get(gcm.SetTransformProgram) != 1 {
		t.Fatal("Block must copy")
	}
}

func TestSaveLoadState(t *testing.T) {
	f := New()
	f.Set(gcm.SetSurfaceFormat, 0x12345678)
	f.Set(gcm.FlipCommand, 1)
	data := f.SaveState()

	g := New()
	g.Set(gcm.SetColorMask, 0xdead)
	if err := g.LoadState(data); err != nil {
		t.Fatalf("LoadState: %v", err)
	}
	if g.Get(gcm.SetSurfaceFormat) != 0x12345678 || g.Get(gcm.FlipCommand) != 1 {
		t.Fatal("restored registers mismatch")
	}
	if g.Get(gcm.SetColorMask) != 0 {
		t.Fatal("LoadState should clear registers absent from the state")
	}
	if err := g.LoadState([]byte("junk")); err == nil {
		t.Fatal("expected decode error")
	}
}

func TestOutOfRangeRegister(t *testing.T) {
	f := New()
	past := gcm.Reg(gcm.RegCount + 1)
	if f.Set(past, 7) {
		t.Fatal("write past the file reported a change")
	}
	if v := f.Get(past); v != 0 {
		t.Fatalf("read past the file got %#x", v)
	}
	if b := f.Block(past, 2); len(b) != 2 || b[0] != 0 || b[1] != 0 {
		t.Fatalf("block past the file got %v", b)
	}
}
