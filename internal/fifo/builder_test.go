package fifo

import (
	"testing"

	"github.com/FabianRolfMatthiasNoll/RSXEmulator/internal/gcm"
)

func TestHeaderRoundTrip(t *testing.T) {
	for _, ni := range []bool{false, true} {
		h := Header(gcm.SetVertexDataArrayFormat+3, 0x7ff, ni)
		c := Classify(h)
		if c.Kind != KindMethod || c.Reg != gcm.SetVertexDataArrayFormat+3 || c.Count != 0x7ff || c.NonIncrement != ni {
			t.Fatalf("ni=%v: decoded %+v", ni, c)
		}
		if c.Unaligned() {
			t.Fatal("builder header flagged unaligned")
		}
	}
}

func TestBuilderControlWords(t *testing.T) {
	b := Builder{Base: 0x1000}
	b.Jump(0x20).Call(0x40).Return().Word(OldJumpCmd(0x80))
	p := b.Bytes()
	if len(p) != 16 {
		t.Fatalf("len %d", len(p))
	}
	want := []struct {
		kind   Kind
		target uint32
	}{{KindJump, 0x1020}, {KindCall, 0x1040}, {KindReturn, 0}, {KindOldJump, 0x80}}
	for i, w := range want {
		v := uint32(p[4*i])<<24 | uint32(p[4*i+1])<<16 | uint32(p[4*i+2])<<8 | uint32(p[4*i+3])
		c := Classify(v)
		if c.Kind != w.kind || c.Target != w.target {
			t.Fatalf("word %d: got %v %#x, want %v %#x", i, c.Kind, c.Target, w.kind, w.target)
		}
	}
	b.Patch(0, 0)
	if Classify(uint32(b.Bytes()[3])).Kind != KindNop {
		t.Fatal("patch did not overwrite the first word")
	}
}
